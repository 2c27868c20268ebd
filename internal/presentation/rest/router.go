package rest

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/bibbank/credit-risk-service/pkg/auth"
)

// RouterConfig holds the cross-cutting settings of the REST API.
type RouterConfig struct {
	// Validator enables bearer authentication on the API routes when set.
	Validator      auth.TokenValidator
	MetricsHandler http.Handler
	AllowedOrigins []string
	RPS            float64
	Burst          int
}

// NewRouter wires the REST routes. Probes and /metrics bypass rate limiting
// and authentication.
func NewRouter(cfg RouterConfig, assessments *AssessmentHandler, health *HealthHandler, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggingMiddleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	r.Group(func(r chi.Router) {
		r.Use(RateLimitMiddleware(cfg.RPS, cfg.Burst))
		if cfg.Validator != nil {
			r.Use(auth.HTTPMiddleware(cfg.Validator))
		}

		r.Post("/predict", assessments.Predict)
		r.Post("/v1/assessments", assessments.CreateAssessment)
		r.Post("/v1/models/reload", assessments.ReloadModel)
	})

	return r
}
