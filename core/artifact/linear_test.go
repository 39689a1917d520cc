package artifact

import (
	"errors"
	"math"
	"testing"
)

func testDoc() Document {
	return Document{
		Name:         "Tilapia Harvest Forecast Model",
		Species:      "tilapia",
		Version:      "2.1.0",
		FeatureNames: []string{"Fingerlings", "SurvivalRate", "AvgWeight"},
		Coefficients: []float64{0.1, 2.0, 0.5},
		Intercept:    10,
		ResidualStd:  4,
	}
}

func TestLinearModel_Predict(t *testing.T) {
	m, err := NewLinearModel(testDoc())
	if err != nil {
		t.Fatalf("new model: %v", err)
	}
	got, err := m.Predict([]float64{5000, 85, 250})
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	want := 0.1*5000 + 2.0*85 + 0.5*250 + 10
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("predict %v, want %v", got, want)
	}
}

func TestLinearModel_Predict_SchemaMismatch(t *testing.T) {
	m, err := NewLinearModel(testDoc())
	if err != nil {
		t.Fatalf("new model: %v", err)
	}
	if _, err := m.Predict([]float64{1, 2}); !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected schema mismatch, got %v", err)
	}
}

func TestLinearModel_PredictInterval(t *testing.T) {
	m, err := NewLinearModel(testDoc())
	if err != nil {
		t.Fatalf("new model: %v", err)
	}
	features := []float64{5000, 85, 250}
	y, err := m.Predict(features)
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	lo, hi, err := m.PredictInterval(features, 0.05)
	if err != nil {
		t.Fatalf("interval: %v", err)
	}
	if lo >= y || hi <= y {
		t.Fatalf("interval [%v, %v] must bracket %v", lo, hi, y)
	}
	// 95% interval width is 2*1.96*sigma.
	if math.Abs((hi-lo)-2*1.959963984540054*4) > 1e-6 {
		t.Fatalf("interval width %v", hi-lo)
	}
}

func TestLinearModel_NoIntervalCapability(t *testing.T) {
	doc := testDoc()
	doc.ResidualStd = 0
	m, err := NewLinearModel(doc)
	if err != nil {
		t.Fatalf("new model: %v", err)
	}
	if _, _, err := m.PredictInterval([]float64{5000, 85, 250}, 0.05); err == nil {
		t.Fatalf("expected interval error without residual spread")
	}
}

func TestDocument_Validate(t *testing.T) {
	if err := (Document{}).Validate(); err == nil {
		t.Fatalf("empty document must be rejected")
	}
	doc := testDoc()
	doc.FeatureNames = []string{"one"}
	if err := doc.Validate(); err == nil {
		t.Fatalf("name/coefficient count mismatch must be rejected")
	}
}
