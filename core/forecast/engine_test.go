package forecast

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jdalisay/anihan/core/artifact"
	"github.com/jdalisay/anihan/core/feature"
	"github.com/jdalisay/anihan/core/model"
	"github.com/jdalisay/anihan/infra/logger"
)

var tilapiaSchema = feature.NewSchema(
	feature.Field{Name: "Fingerlings", Default: 5000},
	feature.Field{Name: "SurvivalRate", Default: 85},
	feature.Field{Name: "AvgWeight", Default: 250},
)

// stubPredictor scores deterministically and can be told to fail after a
// number of calls. It has no interval capability.
type stubPredictor struct {
	calls     int
	failAfter int
}

func (p *stubPredictor) Predict(features []float64) (float64, error) {
	p.calls++
	if p.failAfter > 0 && p.calls > p.failAfter {
		return 0, fmt.Errorf("numerical breakdown")
	}
	sum := 0.0
	for _, f := range features {
		sum += f
	}
	return sum, nil
}

// intervalPredictor adds the interval capability on top of fixed scoring.
type intervalPredictor struct{}

func (intervalPredictor) Predict([]float64) (float64, error) { return 1200, nil }
func (intervalPredictor) PredictInterval([]float64, float64) (float64, float64, error) {
	return 1100, 1300, nil
}

func handleWith(p artifact.Predictor) *artifact.ModelHandle {
	return &artifact.ModelHandle{
		Species:   "tilapia",
		Name:      "Tilapia Harvest Forecast Model",
		Version:   "1.0.0",
		Strategy:  "gob",
		LoadedAt:  time.Now().UTC(),
		Predictor: p,
		Schema:    tilapiaSchema,
	}
}

func day(s string) time.Time {
	t, err := time.Parse(model.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func january() model.ForecastRequest {
	return model.ForecastRequest{
		Species:  "tilapia",
		Province: "Pampanga",
		City:     "Panabo",
		DateFrom: day("2024-01-01"),
		DateTo:   day("2024-01-31"),
	}
}

func TestEngine_OnePointPerDayAscending(t *testing.T) {
	e := NewEngine(logger.NopLogger{})
	points, err := e.Predict(handleWith(&stubPredictor{}), january())
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if len(points) != 31 {
		t.Fatalf("expected 31 points, got %d", len(points))
	}
	for i, p := range points {
		want := day("2024-01-01").AddDate(0, 0, i)
		if !p.Date.Equal(want) {
			t.Fatalf("point %d has date %s, want %s", i, p.Date, want)
		}
		// All defaults supplied: 5000 + 85 + 250.
		if p.PredictedValue != 5335 {
			t.Fatalf("point %d value %v", i, p.PredictedValue)
		}
		if p.ConfidenceLower != nil || p.ConfidenceUpper != nil {
			t.Fatalf("bounds must be absent without interval capability")
		}
	}
}

func TestEngine_SingleDayRange(t *testing.T) {
	e := NewEngine(logger.NopLogger{})
	req := january()
	req.DateTo = req.DateFrom
	points, err := e.Predict(handleWith(&stubPredictor{}), req)
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if len(points) != 1 {
		t.Fatalf("expected 1 point, got %d", len(points))
	}
}

func TestEngine_SuppliedFeaturesOverrideDefaults(t *testing.T) {
	e := NewEngine(logger.NopLogger{})
	req := january()
	req.Features = map[string]float64{"SurvivalRate": 90}
	points, err := e.Predict(handleWith(&stubPredictor{}), req)
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if points[0].PredictedValue != 5000+90+250 {
		t.Fatalf("value %v", points[0].PredictedValue)
	}
}

func TestEngine_ScoringFailureAbortsRequest(t *testing.T) {
	e := NewEngine(logger.NopLogger{})
	points, err := e.Predict(handleWith(&stubPredictor{failAfter: 10}), january())
	if err == nil {
		t.Fatalf("expected prediction failure")
	}
	if points != nil {
		t.Fatalf("no partial sequence may be returned, got %d points", len(points))
	}
}

func TestEngine_SchemaMismatchSurfaces(t *testing.T) {
	e := NewEngine(logger.NopLogger{})
	m, err := artifact.NewLinearModel(artifact.Document{Coefficients: []float64{1, 2}})
	if err != nil {
		t.Fatalf("model: %v", err)
	}
	// Handle schema says three features, model expects two.
	_, err = e.Predict(handleWith(m), january())
	if !errors.Is(err, artifact.ErrSchemaMismatch) {
		t.Fatalf("expected schema mismatch, got %v", err)
	}
}

func TestEngine_IntervalCapabilityPopulatesBounds(t *testing.T) {
	e := NewEngine(logger.NopLogger{})
	points, err := e.Predict(handleWith(intervalPredictor{}), january())
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	p := points[0]
	if p.ConfidenceLower == nil || p.ConfidenceUpper == nil {
		t.Fatalf("bounds missing")
	}
	if *p.ConfidenceLower != 1100 || *p.ConfidenceUpper != 1300 {
		t.Fatalf("bounds [%v, %v]", *p.ConfidenceLower, *p.ConfidenceUpper)
	}
}
