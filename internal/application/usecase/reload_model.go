package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bibbank/credit-risk-service/internal/application/dto"
	"github.com/bibbank/credit-risk-service/internal/domain/port"
)

// ErrReloadUnsupported is returned when the configured oracle has no local
// model to reload, e.g. a remote model server.
var ErrReloadUnsupported = errors.New("model reload is not supported by the configured oracle")

// ReloadModel is the use case for swapping in the latest published scoring model.
type ReloadModel struct {
	reloader port.ModelReloader
	logger   *slog.Logger
}

// NewReloadModel creates a new ReloadModel use case. reloader may be nil.
func NewReloadModel(reloader port.ModelReloader, logger *slog.Logger) *ReloadModel {
	return &ReloadModel{reloader: reloader, logger: logger}
}

// Execute reloads the active model artifact.
func (uc *ReloadModel) Execute(ctx context.Context) (dto.ReloadModelResponse, error) {
	if uc.reloader == nil {
		return dto.ReloadModelResponse{}, ErrReloadUnsupported
	}

	version, err := uc.reloader.Reload(ctx)
	if err != nil {
		return dto.ReloadModelResponse{}, fmt.Errorf("failed to reload model: %w", err)
	}

	uc.logger.Info("scoring model reloaded", slog.String("version", version))

	return dto.ReloadModelResponse{
		Version:    version,
		ReloadedAt: time.Now().UTC(),
	}, nil
}
