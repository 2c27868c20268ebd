package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/bibbank/credit-risk-service/internal/application/dto"
	"github.com/bibbank/credit-risk-service/internal/domain/event"
	"github.com/bibbank/credit-risk-service/internal/domain/model"
	"github.com/bibbank/credit-risk-service/internal/domain/port"
	"github.com/bibbank/credit-risk-service/internal/domain/service"
	"github.com/bibbank/credit-risk-service/pkg/events"
)

const tracerName = "github.com/bibbank/credit-risk-service/internal/application/usecase"

// Failure kinds reported to the metrics recorder.
const (
	FailureValidation        = "validation"
	FailureOracleUnavailable = "oracle_unavailable"
	FailureScoring           = "scoring"
	FailurePublish           = "publish"
)

// AssessApplicant is the use case for estimating an applicant's default risk.
type AssessApplicant struct {
	oracle    port.ScoringOracle
	publisher port.EventPublisher
	metrics   port.MetricsRecorder
	engine    *service.AdjustmentEngine
	logger    *slog.Logger
	tracer    trace.Tracer
}

// NewAssessApplicant creates a new AssessApplicant use case.
func NewAssessApplicant(
	oracle port.ScoringOracle,
	engine *service.AdjustmentEngine,
	publisher port.EventPublisher,
	metrics port.MetricsRecorder,
	logger *slog.Logger,
) *AssessApplicant {
	return &AssessApplicant{
		oracle:    oracle,
		engine:    engine,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
		tracer:    otel.Tracer(tracerName),
	}
}

// Execute validates the applicant, obtains the base probability from the
// oracle, runs the adjustment rules and assembles the verdict.
func (uc *AssessApplicant) Execute(ctx context.Context, req dto.AssessApplicantRequest) (dto.AssessmentResult, error) {
	ctx, span := uc.tracer.Start(ctx, "AssessApplicant.Execute")
	defer span.End()

	// 1. Validate.
	params, err := req.Params()
	if err != nil {
		return dto.AssessmentResult{}, uc.fail(ctx, span, FailureValidation, fmt.Errorf("invalid applicant: %w", err))
	}
	input, err := model.NewApplicantInput(params)
	if err != nil {
		return dto.AssessmentResult{}, uc.fail(ctx, span, FailureValidation, fmt.Errorf("invalid applicant: %w", err))
	}

	// 2. Normalize and score.
	features := service.Normalize(input)
	probs, err := uc.oracle.PredictProba(ctx, features)
	if err != nil {
		kind := FailureScoring
		switch {
		case errors.Is(err, model.ErrOracleUnavailable):
			kind = FailureOracleUnavailable
		case !errors.Is(err, model.ErrScoring):
			err = model.NewScoringError(err)
		}
		return dto.AssessmentResult{}, uc.fail(ctx, span, kind, fmt.Errorf("failed to score applicant: %w", err))
	}

	base := probs[1]
	if math.IsNaN(base) || base < 0 || base > 1 {
		err := model.NewScoringError(fmt.Errorf("oracle returned default probability %v outside [0, 1]", base))
		return dto.AssessmentResult{}, uc.fail(ctx, span, FailureScoring, fmt.Errorf("failed to score applicant: %w", err))
	}

	// 3. Adjust and classify.
	assessment := uc.engine.Adjust(base, input)
	version := uc.modelVersion()

	span.SetAttributes(
		attribute.Float64("credit_risk.base_probability", assessment.BaseProbability()),
		attribute.Float64("credit_risk.final_probability", assessment.FinalProbability()),
		attribute.String("credit_risk.category", assessment.Category().String()),
		attribute.Int("credit_risk.reasons", len(assessment.Reasons())),
	)
	uc.metrics.RecordAssessment(ctx, assessment)

	// 4. Publish domain events. Delivery problems never change the verdict.
	uc.publish(ctx, assessment, version)

	uc.logger.Debug("applicant assessed",
		slog.String("assessment_id", assessment.ID().String()),
		slog.String("category", assessment.Category().String()),
		slog.Float64("final_probability", assessment.FinalProbability()),
	)

	return dto.FromModel(assessment, version), nil
}

func (uc *AssessApplicant) publish(ctx context.Context, a *model.RiskAssessment, version string) {
	evts := []events.DomainEvent{
		event.NewAssessmentCompleted(
			a.ID(),
			a.BaseProbability(), a.AdjustedProbability(), a.FinalProbability(),
			a.Category().String(), a.Reasons(), version, a.AssessedAt(),
		),
	}
	if a.Category().IsHigh() {
		evts = append(evts, event.NewHighRiskDetected(a.ID(), a.FinalProbability(), a.Reasons(), a.AssessedAt()))
	}

	if err := uc.publisher.Publish(ctx, evts...); err != nil {
		uc.metrics.RecordFailure(ctx, FailurePublish)
		uc.logger.Warn("failed to publish assessment events",
			slog.String("assessment_id", a.ID().String()),
			slog.String("error", err.Error()),
		)
	}
}

func (uc *AssessApplicant) modelVersion() string {
	if v, ok := uc.oracle.(port.VersionedOracle); ok {
		return v.ModelVersion()
	}
	return ""
}

func (uc *AssessApplicant) fail(ctx context.Context, span trace.Span, kind string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, kind)
	uc.metrics.RecordFailure(ctx, kind)
	if kind != FailureValidation {
		uc.logger.Error("assessment failed", slog.String("kind", kind), slog.String("error", err.Error()))
	}
	return err
}
