// Package forecast turns a loaded model handle and a validated request into a
// day-indexed sequence of prediction points, and orchestrates the surrounding
// concerns: request identity, best-effort history persistence and metrics.
package forecast

import (
	"fmt"
	"time"

	"github.com/jdalisay/anihan/core/artifact"
	"github.com/jdalisay/anihan/core/feature"
	"github.com/jdalisay/anihan/core/logger"
	"github.com/jdalisay/anihan/core/model"
)

// intervalAlpha is the significance level for confidence bounds (95%).
const intervalAlpha = 0.05

// Engine scores one feature vector per calendar day. Scoring is synchronous,
// bounded work; the engine holds no cross-request state.
type Engine struct {
	log logger.Logger
}

// NewEngine returns an engine logging through the given logger.
func NewEngine(log logger.Logger) *Engine {
	return &Engine{log: log}
}

// Predict returns one PredictionPoint per calendar day in the request's range,
// inclusive, ascending. A scoring failure on any date aborts the whole request:
// partial sequences are never returned. Confidence bounds are present only when
// the predictor can estimate intervals; otherwise they are simply absent.
func (e *Engine) Predict(h *artifact.ModelHandle, req model.ForecastRequest) ([]model.PredictionPoint, error) {
	from := model.TruncateDay(req.DateFrom)
	to := model.TruncateDay(req.DateTo)

	estimator, hasIntervals := h.Predictor.(artifact.IntervalEstimator)

	var points []model.PredictionPoint
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		vec := feature.BuildVector(h.Schema, req.Features)
		if err := vec.CheckAgainst(h.Schema); err != nil {
			return nil, fmt.Errorf("%w: %v", artifact.ErrSchemaMismatch, err)
		}

		value, err := h.Predictor.Predict(vec.Values())
		if err != nil {
			e.log.Errorf("scoring failed for %s on %s (features %s): %v",
				req.Species, day.Format(model.DateLayout), vec, err)
			return nil, fmt.Errorf("predict %s: %w", day.Format(model.DateLayout), err)
		}

		point := model.PredictionPoint{Date: day, PredictedValue: value}
		if hasIntervals {
			if lo, hi, ierr := estimator.PredictInterval(vec.Values(), intervalAlpha); ierr == nil {
				point.ConfidenceLower = &lo
				point.ConfidenceUpper = &hi
			}
		}
		points = append(points, point)
	}
	return points, nil
}

// horizon is a small helper for logs.
func horizon(from, to time.Time) string {
	return from.Format(model.DateLayout) + ".." + to.Format(model.DateLayout)
}
