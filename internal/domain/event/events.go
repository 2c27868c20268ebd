package event

import (
	"time"

	"github.com/google/uuid"

	"github.com/bibbank/credit-risk-service/pkg/events"
)

const (
	// EventTypeAssessmentCompleted is emitted when an applicant assessment finishes.
	EventTypeAssessmentCompleted = "credit_risk.assessment.completed"

	// EventTypeHighRiskDetected is emitted when an assessment lands in the HIGH category.
	EventTypeHighRiskDetected = "credit_risk.high_risk.detected"

	// AggregateTypeAssessment names the aggregate the events belong to.
	AggregateTypeAssessment = "RiskAssessment"
)

// AssessmentCompleted is published when a default-risk assessment has been
// produced for an applicant.
type AssessmentCompleted struct {
	events.BaseEvent
	AssessedAt          time.Time `json:"assessed_at"`
	Category            string    `json:"category"`
	ModelVersion        string    `json:"model_version,omitempty"`
	Reasons             []string  `json:"reasons"`
	BaseProbability     float64   `json:"base_probability"`
	AdjustedProbability float64   `json:"adjusted_probability"`
	FinalProbability    float64   `json:"final_probability"`
	AssessmentID        uuid.UUID `json:"assessment_id"`
}

// NewAssessmentCompleted creates an AssessmentCompleted event.
func NewAssessmentCompleted(
	assessmentID uuid.UUID,
	base, adjusted, final float64,
	category string,
	reasons []string,
	modelVersion string,
	assessedAt time.Time,
) AssessmentCompleted {
	return AssessmentCompleted{
		BaseEvent:           events.NewBaseEvent(EventTypeAssessmentCompleted, assessmentID, AggregateTypeAssessment),
		AssessmentID:        assessmentID,
		BaseProbability:     base,
		AdjustedProbability: adjusted,
		FinalProbability:    final,
		Category:            category,
		Reasons:             reasons,
		ModelVersion:        modelVersion,
		AssessedAt:          assessedAt,
	}
}

// HighRiskDetected is published for HIGH assessments so downstream
// underwriting can route the application to manual review.
type HighRiskDetected struct {
	events.BaseEvent
	DetectedAt       time.Time `json:"detected_at"`
	Reasons          []string  `json:"reasons"`
	FinalProbability float64   `json:"final_probability"`
	AssessmentID     uuid.UUID `json:"assessment_id"`
}

// NewHighRiskDetected creates a HighRiskDetected event.
func NewHighRiskDetected(assessmentID uuid.UUID, final float64, reasons []string, detectedAt time.Time) HighRiskDetected {
	return HighRiskDetected{
		BaseEvent:        events.NewBaseEvent(EventTypeHighRiskDetected, assessmentID, AggregateTypeAssessment),
		AssessmentID:     assessmentID,
		FinalProbability: final,
		Reasons:          reasons,
		DetectedAt:       detectedAt,
	}
}
