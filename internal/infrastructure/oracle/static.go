package oracle

import (
	"context"
	"log/slog"

	"github.com/bibbank/credit-risk-service/internal/domain/model"
)

// StaticOracle implements port.ScoringOracle with a fixed default probability.
// It is meant for local development and tests.
type StaticOracle struct {
	logger      *slog.Logger
	probability float64
}

// NewStaticOracle creates an oracle that always predicts probability.
func NewStaticOracle(probability float64, logger *slog.Logger) *StaticOracle {
	return &StaticOracle{probability: probability, logger: logger}
}

// PredictProba returns the configured probability regardless of features.
func (o *StaticOracle) PredictProba(_ context.Context, f model.NormalizedFeatures) ([2]float64, error) {
	o.logger.Debug("static oracle prediction requested",
		slog.Float64("debt_to_income", f.DebtToIncomePercent()),
	)
	return [2]float64{1 - o.probability, o.probability}, nil
}

// ModelVersion identifies the static model.
func (o *StaticOracle) ModelVersion() string {
	return "static"
}
