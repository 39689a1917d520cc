package feature

import "fmt"

// Vector is one row of model input. Its column order and cardinality always
// equal the schema it was built from. Vectors are ephemeral: built per date
// within a request and never persisted.
type Vector struct {
	names  []string
	values []float64
}

// BuildVector constructs a vector for the given schema. For every schema field
// in order, the caller-supplied value is used when present and the schema
// default otherwise. Supplied keys outside the schema are ignored.
func BuildVector(schema Schema, supplied map[string]float64) Vector {
	names := make([]string, schema.Len())
	values := make([]float64, schema.Len())
	for i, f := range schema.Fields {
		names[i] = f.Name
		if v, ok := supplied[f.Name]; ok {
			values[i] = v
		} else {
			values[i] = f.Default
		}
	}
	return Vector{names: names, values: values}
}

// Names returns the column names in order.
func (v Vector) Names() []string { return v.names }

// Values returns the column values in order.
func (v Vector) Values() []float64 { return v.values }

// Len returns the number of columns.
func (v Vector) Len() int { return len(v.values) }

// CheckAgainst verifies that the vector still matches the schema in order and
// cardinality. A mismatch is a wrong-schema error, never silently tolerated.
func (v Vector) CheckAgainst(schema Schema) error {
	if v.Len() != schema.Len() {
		return fmt.Errorf("feature vector has %d columns, schema expects %d", v.Len(), schema.Len())
	}
	for i, f := range schema.Fields {
		if v.names[i] != f.Name {
			return fmt.Errorf("feature column %d is %q, schema expects %q", i, v.names[i], f.Name)
		}
	}
	return nil
}

// String renders the vector as name=value pairs for diagnostics.
func (v Vector) String() string {
	out := ""
	for i, n := range v.names {
		if i > 0 {
			out += " "
		}
		out += fmt.Sprintf("%s=%g", n, v.values[i])
	}
	return out
}
