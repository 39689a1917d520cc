// Package artifact loads pre-trained regression artifacts from disk and keeps
// one immutable handle per species in a process-wide registry. Artifacts are
// frequently produced by a different exporter version or serialization dialect
// than the one the service runs with, so loading tries a fixed list of
// deserialization strategies in priority order and accepts the first one that
// yields a usable predictor. A species whose artifact fails every strategy is
// marked unavailable without affecting any other species.
package artifact
