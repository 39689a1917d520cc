package feature

import (
	"reflect"
	"testing"
)

var tilapiaFallback = NewSchema(
	Field{Name: "Fingerlings", Default: 5000},
	Field{Name: "SurvivalRate", Default: 85},
	Field{Name: "AvgWeight", Default: 250},
)

type namedModel struct{ names []string }

func (m namedModel) FeatureNames() []string { return m.names }

type blindModel struct{}

func TestSchemaOf_PredictorNamesAuthoritative(t *testing.T) {
	defaults := map[string]float64{"Fingerlings": 5000, "SurvivalRate": 85, "AvgWeight": 250}
	m := namedModel{names: []string{"AvgWeight", "Fingerlings", "WaterTempC"}}

	s := SchemaOf(m, tilapiaFallback, defaults)
	want := []Field{
		{Name: "AvgWeight", Default: 250},
		{Name: "Fingerlings", Default: 5000},
		{Name: "WaterTempC", Default: 0},
	}
	if !reflect.DeepEqual(s.Fields, want) {
		t.Fatalf("schema fields %#v, want %#v", s.Fields, want)
	}
}

func TestSchemaOf_FallbackWhenNotExposed(t *testing.T) {
	s := SchemaOf(blindModel{}, tilapiaFallback, nil)
	if !reflect.DeepEqual(s, tilapiaFallback) {
		t.Fatalf("expected fallback schema, got %#v", s)
	}
	// An empty name list is treated the same as no capability.
	s = SchemaOf(namedModel{}, tilapiaFallback, nil)
	if !reflect.DeepEqual(s, tilapiaFallback) {
		t.Fatalf("expected fallback for empty name list, got %#v", s)
	}
}

func TestBuildVector_AllDefaults(t *testing.T) {
	v := BuildVector(tilapiaFallback, nil)
	if !reflect.DeepEqual(v.Names(), []string{"Fingerlings", "SurvivalRate", "AvgWeight"}) {
		t.Fatalf("names %v", v.Names())
	}
	if !reflect.DeepEqual(v.Values(), []float64{5000, 85, 250}) {
		t.Fatalf("values %v", v.Values())
	}
	if err := v.CheckAgainst(tilapiaFallback); err != nil {
		t.Fatalf("fresh vector should match its schema: %v", err)
	}
}

func TestBuildVector_SubsetSupplied(t *testing.T) {
	v := BuildVector(tilapiaFallback, map[string]float64{
		"SurvivalRate": 92.5,
		"PondAreaHa":   3, // outside the schema, must be ignored
	})
	if !reflect.DeepEqual(v.Values(), []float64{5000, 92.5, 250}) {
		t.Fatalf("values %v", v.Values())
	}
	if v.Len() != tilapiaFallback.Len() {
		t.Fatalf("cardinality changed: %d", v.Len())
	}
}

func TestVector_CheckAgainst(t *testing.T) {
	other := NewSchema(Field{Name: "AvgWeight"}, Field{Name: "Fingerlings"}, Field{Name: "SurvivalRate"})
	v := BuildVector(tilapiaFallback, nil)
	if err := v.CheckAgainst(other); err == nil {
		t.Fatalf("reordered schema must be rejected")
	}
	short := NewSchema(Field{Name: "Fingerlings"})
	if err := v.CheckAgainst(short); err == nil {
		t.Fatalf("cardinality mismatch must be rejected")
	}
}
