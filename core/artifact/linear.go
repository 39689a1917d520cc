package artifact

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Document is the serialized form of a trained linear regression artifact.
// The same structure is encoded under every supported dialect.
type Document struct {
	Name         string    `json:"name"`
	Species      string    `json:"species"`
	Version      string    `json:"version"`
	FeatureNames []string  `json:"feature_names"`
	Coefficients []float64 `json:"coefficients"`
	Intercept    float64   `json:"intercept"`
	// ResidualStd is the standard deviation of training residuals. Zero means
	// the exporter did not record it and interval estimation is unavailable.
	ResidualStd float64 `json:"residual_std"`
}

// Validate rejects documents that cannot act as predictors.
func (d Document) Validate() error {
	if len(d.Coefficients) == 0 {
		return fmt.Errorf("artifact has no coefficients")
	}
	if len(d.FeatureNames) > 0 && len(d.FeatureNames) != len(d.Coefficients) {
		return fmt.Errorf("artifact has %d feature names but %d coefficients",
			len(d.FeatureNames), len(d.Coefficients))
	}
	return nil
}

// LinearModel is a loaded regression artifact. It exposes its training feature
// names when the exporter recorded them and interval estimation when residual
// spread is known.
type LinearModel struct {
	doc  Document
	coef *mat.VecDense
}

// NewLinearModel builds a predictor from a validated document.
func NewLinearModel(doc Document) (*LinearModel, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &LinearModel{doc: doc, coef: mat.NewVecDense(len(doc.Coefficients), doc.Coefficients)}, nil
}

// Predict scores one feature vector. The vector length must equal the
// coefficient count; anything else is a schema mismatch.
func (m *LinearModel) Predict(features []float64) (float64, error) {
	if len(features) != m.coef.Len() {
		return 0, fmt.Errorf("%w: got %d features, model expects %d",
			ErrSchemaMismatch, len(features), m.coef.Len())
	}
	x := mat.NewVecDense(len(features), features)
	return mat.Dot(x, m.coef) + m.doc.Intercept, nil
}

// PredictInterval returns a symmetric confidence interval around the point
// estimate based on the recorded residual spread.
func (m *LinearModel) PredictInterval(features []float64, alpha float64) (float64, float64, error) {
	if m.doc.ResidualStd <= 0 {
		return 0, 0, fmt.Errorf("artifact carries no residual spread")
	}
	if alpha <= 0 || alpha >= 1 {
		return 0, 0, fmt.Errorf("alpha %g out of range (0,1)", alpha)
	}
	y, err := m.Predict(features)
	if err != nil {
		return 0, 0, err
	}
	z := distuv.Normal{Mu: 0, Sigma: 1}.Quantile(1 - alpha/2)
	margin := z * m.doc.ResidualStd
	return y - margin, y + margin, nil
}

// FeatureNames returns the ordered training feature names, or nil when the
// exporter did not record them.
func (m *LinearModel) FeatureNames() []string {
	if len(m.doc.FeatureNames) == 0 {
		return nil
	}
	names := make([]string, len(m.doc.FeatureNames))
	copy(names, m.doc.FeatureNames)
	return names
}

// ModelVersion returns the exporter-recorded version, or an empty string.
func (m *LinearModel) ModelVersion() string { return m.doc.Version }
