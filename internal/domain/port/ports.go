package port

import (
	"context"

	"github.com/bibbank/credit-risk-service/internal/domain/model"
	"github.com/bibbank/credit-risk-service/pkg/events"
)

// ScoringOracle is the external classifier that turns a feature vector into a
// base default probability.
type ScoringOracle interface {
	// PredictProba returns the two-class probability pair. Index 1 is the
	// probability of default.
	PredictProba(ctx context.Context, features model.NormalizedFeatures) ([2]float64, error)
}

// VersionedOracle is implemented by oracles that can name the model they serve.
type VersionedOracle interface {
	ModelVersion() string
}

// ModelReloader swaps the active scoring model for the latest published one.
type ModelReloader interface {
	// Reload loads the active artifact and returns its version.
	Reload(ctx context.Context) (string, error)
}

// EventPublisher defines the port for publishing domain events.
type EventPublisher interface {
	// Publish sends one or more domain events to the messaging infrastructure.
	Publish(ctx context.Context, evts ...events.DomainEvent) error
}

// MetricsRecorder receives assessment outcomes and failures for telemetry.
type MetricsRecorder interface {
	RecordAssessment(ctx context.Context, assessment *model.RiskAssessment)
	RecordFailure(ctx context.Context, kind string)
}
