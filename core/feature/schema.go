package feature

// Field is one named feature with its documented default value. The default is
// the typical operating point used when a request does not carry the dimension.
type Field struct {
	Name    string  `json:"name"`
	Default float64 `json:"default"`
}

// Schema is the ordered list of features a model expects. Order is
// significant: scoring input must match it column for column.
type Schema struct {
	Fields []Field `json:"fields"`
}

// Namer is the optional capability of a predictor that remembers the feature
// names it was fitted on, in training order.
type Namer interface {
	FeatureNames() []string
}

// NewSchema builds a schema from name/default pairs, preserving order.
func NewSchema(fields ...Field) Schema {
	return Schema{Fields: fields}
}

// Names returns the feature names in schema order.
func (s Schema) Names() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

// Len returns the number of features.
func (s Schema) Len() int { return len(s.Fields) }

// SchemaOf resolves the schema for a loaded predictor. If the predictor
// implements Namer, its ordered name list is authoritative; names found in
// the defaults table keep their documented default and all others default to
// zero. Otherwise the fallback schema applies unchanged. The result is fixed
// for the life of the model handle, never re-derived per request.
func SchemaOf(predictor any, fallback Schema, defaults map[string]float64) Schema {
	namer, ok := predictor.(Namer)
	if !ok {
		return fallback
	}
	names := namer.FeatureNames()
	if len(names) == 0 {
		return fallback
	}
	fields := make([]Field, len(names))
	for i, name := range names {
		fields[i] = Field{Name: name, Default: defaults[name]}
	}
	return Schema{Fields: fields}
}
