package oracle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/bibbank/credit-risk-service/internal/domain/model"
)

// ModelSource supplies the currently published model artifact.
type ModelSource interface {
	LoadActive(ctx context.Context) (*LogisticModel, error)
}

// ModelOracle implements port.ScoringOracle over an in-process model that can
// be swapped at runtime without blocking predictions.
type ModelOracle struct {
	current atomic.Pointer[LogisticModel]
	logger  *slog.Logger
}

// NewModelOracle creates an oracle with no model loaded.
func NewModelOracle(logger *slog.Logger) *ModelOracle {
	return &ModelOracle{logger: logger}
}

// Load validates m and makes it the active model.
func (o *ModelOracle) Load(m *LogisticModel) error {
	if m == nil {
		return errors.New("model is nil")
	}
	if err := m.Validate(); err != nil {
		return fmt.Errorf("invalid model artifact: %w", err)
	}
	prev := o.current.Swap(m)

	attrs := []any{slog.String("version", m.Version)}
	if prev != nil {
		attrs = append(attrs, slog.String("previous_version", prev.Version))
	}
	o.logger.Info("scoring model loaded", attrs...)
	return nil
}

// Loaded reports whether a model is available for scoring.
func (o *ModelOracle) Loaded() bool {
	return o.current.Load() != nil
}

// ModelVersion returns the active model version, or "" when none is loaded.
func (o *ModelOracle) ModelVersion() string {
	if m := o.current.Load(); m != nil {
		return m.Version
	}
	return ""
}

// PredictProba scores f with the active model.
func (o *ModelOracle) PredictProba(_ context.Context, f model.NormalizedFeatures) ([2]float64, error) {
	return predictWith(o.current.Load(), f)
}

// Snapshot returns the active model, or nil when none is loaded. The returned
// model is immutable and stays valid across reloads.
func (o *ModelOracle) Snapshot() *LogisticModel {
	return o.current.Load()
}

func predictWith(m *LogisticModel, f model.NormalizedFeatures) ([2]float64, error) {
	if m == nil {
		return [2]float64{}, model.NewOracleUnavailableError("model not loaded", nil)
	}

	probs, err := m.PredictProba(f)
	if err != nil {
		return [2]float64{}, model.NewScoringError(err)
	}
	return probs, nil
}

// Ready returns an error while no model is loaded. It backs the readiness probe.
func (o *ModelOracle) Ready(context.Context) error {
	if !o.Loaded() {
		return errors.New("model not loaded")
	}
	return nil
}

// Reloader implements port.ModelReloader by moving the active artifact from a
// ModelSource into a ModelOracle.
type Reloader struct {
	source ModelSource
	target *ModelOracle
}

// NewReloader creates a Reloader.
func NewReloader(source ModelSource, target *ModelOracle) *Reloader {
	return &Reloader{source: source, target: target}
}

// Reload fetches and activates the published model, returning its version.
// The previous model stays active if anything fails.
func (r *Reloader) Reload(ctx context.Context) (string, error) {
	m, err := r.source.LoadActive(ctx)
	if err != nil {
		return "", fmt.Errorf("load active model: %w", err)
	}
	if err := r.target.Load(m); err != nil {
		return "", err
	}
	return m.Version, nil
}
