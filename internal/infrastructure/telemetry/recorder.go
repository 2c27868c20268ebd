// Package telemetry records assessment outcomes as OpenTelemetry metrics.
package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/bibbank/credit-risk-service/internal/domain/model"
)

const meterName = "github.com/bibbank/credit-risk-service"

// Recorder implements port.MetricsRecorder.
type Recorder struct {
	assessments metric.Int64Counter
	reasons     metric.Int64Counter
	failures    metric.Int64Counter
	probability metric.Float64Histogram
}

// NewRecorder creates the instruments on a meter from provider.
func NewRecorder(provider metric.MeterProvider) (*Recorder, error) {
	meter := provider.Meter(meterName)

	assessments, err := meter.Int64Counter("credit_risk_assessments_total",
		metric.WithDescription("Completed assessments by risk category."))
	if err != nil {
		return nil, fmt.Errorf("telemetry: assessments counter: %w", err)
	}

	reasons, err := meter.Int64Counter("credit_risk_reasons_total",
		metric.WithDescription("Adjustment reasons attached to assessments."))
	if err != nil {
		return nil, fmt.Errorf("telemetry: reasons counter: %w", err)
	}

	failures, err := meter.Int64Counter("credit_risk_failures_total",
		metric.WithDescription("Failed assessments by failure kind."))
	if err != nil {
		return nil, fmt.Errorf("telemetry: failures counter: %w", err)
	}

	probability, err := meter.Float64Histogram("credit_risk_final_probability",
		metric.WithDescription("Final default probability after adjustment."),
		metric.WithExplicitBucketBoundaries(0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 0.99),
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry: probability histogram: %w", err)
	}

	return &Recorder{
		assessments: assessments,
		reasons:     reasons,
		failures:    failures,
		probability: probability,
	}, nil
}

// RecordAssessment counts a completed assessment.
func (r *Recorder) RecordAssessment(ctx context.Context, a *model.RiskAssessment) {
	category := attribute.String("category", a.Category().String())

	r.assessments.Add(ctx, 1, metric.WithAttributes(category))
	r.probability.Record(ctx, a.FinalProbability(), metric.WithAttributes(category))
	// Reason texts can carry counts, so series are keyed by rule name.
	for _, rule := range a.ReasonRules() {
		r.reasons.Add(ctx, 1, metric.WithAttributes(attribute.String("rule", rule)))
	}
}

// RecordFailure counts a failed assessment.
func (r *Recorder) RecordFailure(ctx context.Context, kind string) {
	r.failures.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

// NopRecorder discards everything.
type NopRecorder struct{}

func (NopRecorder) RecordAssessment(context.Context, *model.RiskAssessment) {}
func (NopRecorder) RecordFailure(context.Context, string)                   {}
