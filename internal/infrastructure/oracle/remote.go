package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/bibbank/credit-risk-service/internal/domain/model"
)

// maxErrorBody bounds how much of an error response is quoted back.
const maxErrorBody = 512

// RemoteConfig configures the model-serving endpoint.
type RemoteConfig struct {
	// URL is the full prediction endpoint, e.g. http://scorer:8501/v1/predict.
	URL string
	// Timeout bounds a single prediction call.
	Timeout time.Duration
}

type remoteRequest struct {
	Features map[string]any `json:"features"`
}

type remoteResponse struct {
	ModelVersion  string    `json:"model_version"`
	Probabilities []float64 `json:"probabilities"`
}

// RemoteOracle implements port.ScoringOracle against an HTTP model server.
// Each call is attempted exactly once.
type RemoteOracle struct {
	client  *http.Client
	logger  *slog.Logger
	version atomic.Pointer[string]
	config  RemoteConfig
}

// NewRemoteOracle creates a RemoteOracle. A nil client gets a default one with
// the configured timeout.
func NewRemoteOracle(config RemoteConfig, client *http.Client, logger *slog.Logger) *RemoteOracle {
	if client == nil {
		client = &http.Client{Timeout: config.Timeout}
	}
	return &RemoteOracle{config: config, client: client, logger: logger}
}

// PredictProba posts the six features and reads back the probability pair.
// Transport failures and 503 responses mean the oracle is unavailable; any
// other failure is a scoring error.
func (o *RemoteOracle) PredictProba(ctx context.Context, f model.NormalizedFeatures) ([2]float64, error) {
	body, err := json.Marshal(remoteRequest{Features: f.Map()})
	if err != nil {
		return [2]float64{}, model.NewScoringError(fmt.Errorf("encode features: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.config.URL, bytes.NewReader(body))
	if err != nil {
		return [2]float64{}, model.NewOracleUnavailableError("invalid model server URL", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := o.client.Do(req)
	if err != nil {
		return [2]float64{}, model.NewOracleUnavailableError("model server unreachable", err)
	}
	defer resp.Body.Close()

	o.logger.Debug("remote prediction completed",
		slog.Int("status", resp.StatusCode),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()),
	)

	switch {
	case resp.StatusCode == http.StatusServiceUnavailable:
		return [2]float64{}, model.NewOracleUnavailableError("model server not ready", readErrorBody(resp.Body))
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return [2]float64{}, model.NewScoringError(
			fmt.Errorf("model server returned %d: %w", resp.StatusCode, readErrorBody(resp.Body)))
	}

	var out remoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return [2]float64{}, model.NewScoringError(fmt.Errorf("decode model server response: %w", err))
	}
	if len(out.Probabilities) != 2 {
		return [2]float64{}, model.NewScoringError(
			fmt.Errorf("model server returned %d probabilities, expected 2", len(out.Probabilities)))
	}

	if out.ModelVersion != "" {
		if prev := o.version.Swap(&out.ModelVersion); prev != nil && *prev != out.ModelVersion {
			o.logger.Info("remote model version changed",
				slog.String("previous_version", *prev),
				slog.String("version", out.ModelVersion),
			)
		}
	}

	return [2]float64{out.Probabilities[0], out.Probabilities[1]}, nil
}

// ModelVersion returns the version reported by the last successful response,
// or "" before the model server has reported one.
func (o *RemoteOracle) ModelVersion() string {
	if v := o.version.Load(); v != nil {
		return *v
	}
	return ""
}

func readErrorBody(r io.Reader) error {
	b, _ := io.ReadAll(io.LimitReader(r, maxErrorBody))
	msg := string(bytes.TrimSpace(b))
	if msg == "" {
		msg = "empty response body"
	}
	return errors.New(msg)
}
