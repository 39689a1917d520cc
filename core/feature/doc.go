// Package feature resolves the input schema a loaded model expects and builds
// feature vectors that match it exactly. A model that exposes its training
// feature names is authoritative; otherwise a statically configured fallback
// schema for the species applies. Vectors always carry the schema's fields in
// the schema's order, with documented defaults filling anything the caller
// did not supply.
package feature
