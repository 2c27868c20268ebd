package oracle

import (
	"errors"
	"fmt"
	"math"

	"github.com/bibbank/credit-risk-service/internal/domain/model"
)

// FeatureCoefficient scales one numeric feature and weighs it in the linear term.
type FeatureCoefficient struct {
	Name   string  `yaml:"name" json:"name"`
	Mean   float64 `yaml:"mean" json:"mean"`
	Scale  float64 `yaml:"scale" json:"scale"`
	Weight float64 `yaml:"weight" json:"weight"`
}

// LogisticModel is a portable scoring artifact: standard-scaled numeric
// features, one-hot home ownership weights and a logistic link.
type LogisticModel struct {
	HomeOwnership map[string]float64   `yaml:"home_ownership" json:"home_ownership"`
	Version       string               `yaml:"version" json:"version"`
	Features      []FeatureCoefficient `yaml:"features" json:"features"`
	Intercept     float64              `yaml:"intercept" json:"intercept"`
}

// Validate checks the artifact covers exactly the numeric features, in order,
// with usable scales.
func (m *LogisticModel) Validate() error {
	if m.Version == "" {
		return errors.New("model version is required")
	}
	if len(m.Features) != len(model.NumericFeatureNames) {
		return fmt.Errorf("model has %d numeric features, expected %d", len(m.Features), len(model.NumericFeatureNames))
	}
	for i, f := range m.Features {
		if f.Name != model.NumericFeatureNames[i] {
			return fmt.Errorf("feature %d is %q, expected %q", i, f.Name, model.NumericFeatureNames[i])
		}
		if !(f.Scale > 0) || math.IsInf(f.Scale, 0) {
			return fmt.Errorf("feature %q has invalid scale %v", f.Name, f.Scale)
		}
		if math.IsNaN(f.Mean) || math.IsNaN(f.Weight) || math.IsInf(f.Mean, 0) || math.IsInf(f.Weight, 0) {
			return fmt.Errorf("feature %q has non-finite coefficients", f.Name)
		}
	}
	if math.IsNaN(m.Intercept) || math.IsInf(m.Intercept, 0) {
		return errors.New("model intercept is not finite")
	}
	return nil
}

// PredictProba evaluates the model. Home ownership categories unknown to the
// model contribute nothing to the linear term.
func (m *LogisticModel) PredictProba(f model.NormalizedFeatures) ([2]float64, error) {
	values := f.Numeric()
	if len(values) != len(m.Features) {
		return [2]float64{}, fmt.Errorf("feature vector has %d values, model expects %d", len(values), len(m.Features))
	}

	z := m.Intercept
	for i, c := range m.Features {
		z += c.Weight * (values[i] - c.Mean) / c.Scale
	}
	z += m.HomeOwnership[f.HomeOwnership().String()]

	p1 := sigmoid(z)
	if math.IsNaN(p1) {
		return [2]float64{}, errors.New("model produced a non-finite probability")
	}
	return [2]float64{1 - p1, p1}, nil
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}
