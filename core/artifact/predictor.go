package artifact

import "errors"

// ErrSchemaMismatch marks scoring input whose shape disagrees with the schema
// the model was trained on. It is fatal to the request that produced it.
var ErrSchemaMismatch = errors.New("feature schema mismatch")

// Predictor scores one feature vector. Implementations are read-only after
// construction and safe for concurrent use.
type Predictor interface {
	Predict(features []float64) (float64, error)
}

// IntervalEstimator is the optional capability of predictors that can bound
// their estimates. alpha is the significance level (0.05 for a 95% interval).
type IntervalEstimator interface {
	PredictInterval(features []float64, alpha float64) (lower, upper float64, err error)
}

// Describer is the optional capability of predictors that carry their own
// version metadata.
type Describer interface {
	ModelVersion() string
}
