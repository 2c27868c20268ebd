package rest

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"time"
)

// CheckFunc reports whether a dependency is usable.
type CheckFunc func(ctx context.Context) error

// HealthHandler provides HTTP health check endpoints for the credit risk service.
type HealthHandler struct {
	checks    map[string]CheckFunc
	logger    *slog.Logger
	startTime time.Time
	service   string
}

// NewHealthHandler creates a new health check handler. Every check must pass
// for /readyz to report ready.
func NewHealthHandler(service string, checks map[string]CheckFunc, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		service:   service,
		checks:    checks,
		logger:    logger,
		startTime: time.Now(),
	}
}

// HealthResponse is the JSON response for health checks.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Uptime  string `json:"uptime"`
}

// ReadinessResponse is the JSON response for readiness checks.
type ReadinessResponse struct {
	Checks  map[string]string `json:"checks"`
	Status  string            `json:"status"`
	Service string            `json:"service"`
}

// Healthz handles liveness probe requests.
func (h *HealthHandler) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "healthy",
		Service: h.service,
		Uptime:  time.Since(h.startTime).Round(time.Second).String(),
	})
}

// Readyz handles readiness probe requests.
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	resp := ReadinessResponse{
		Status:  "ready",
		Service: h.service,
		Checks:  make(map[string]string, len(h.checks)),
	}
	code := http.StatusOK
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			h.logger.Warn("readiness check failed", slog.String("check", name), slog.String("error", err.Error()))
			resp.Checks[name] = err.Error()
			resp.Status = "not_ready"
			code = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}

	writeJSON(w, code, resp)
}
