package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bibbank/credit-risk-service/internal/application/usecase"
	"github.com/bibbank/credit-risk-service/internal/domain/service"
	"github.com/bibbank/credit-risk-service/internal/infrastructure/config"
	"github.com/bibbank/credit-risk-service/internal/infrastructure/telemetry"
	grpcpresentation "github.com/bibbank/credit-risk-service/internal/presentation/grpc"
	"github.com/bibbank/credit-risk-service/internal/presentation/rest"
	"github.com/bibbank/credit-risk-service/pkg/observability"
	pgutil "github.com/bibbank/credit-risk-service/pkg/postgres"
	"github.com/bibbank/credit-risk-service/pkg/tlsutil"
)

const serviceName = "credit-risk-service"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := observability.InitLogger(observability.LogConfig{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		ServiceName: serviceName,
	})

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("credit-risk-service exited with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting credit-risk-service",
		"http_port", cfg.Server.HTTPPort,
		"grpc_port", cfg.Server.GRPCPort,
		"model_source", cfg.Model.Source,
	)

	// Tracing and metrics.
	shutdownTracer, err := observability.InitTracer(ctx, observability.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Endpoint:    cfg.Telemetry.OTLPEndpoint,
		Insecure:    cfg.Telemetry.Insecure,
	})
	if err != nil {
		logger.Warn("failed to initialize tracer, continuing without tracing", "error", err)
	} else {
		defer func() { _ = shutdownTracer(context.Background()) }()
	}

	meterProvider, metricsHandler, err := observability.InitMetrics(observability.MetricsConfig{
		ServiceName: cfg.Telemetry.ServiceName,
	})
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}
	defer func() { _ = meterProvider.Shutdown(context.Background()) }()

	recorder, err := telemetry.NewRecorder(meterProvider)
	if err != nil {
		return err
	}

	checks := map[string]rest.CheckFunc{}

	// Database, only for the postgres model registry.
	var pool *pgxpool.Pool
	if cfg.NeedsDatabase() {
		if cfg.Database.AutoMigrate {
			version, err := pgutil.RunMigrations(cfg.Database.URL, cfg.Database.MigrationsDir)
			if err != nil {
				return err
			}
			logger.Info("database migrated", "version", version)
		}

		dbCtx, dbCancel := context.WithTimeout(ctx, 10*time.Second)
		pool, err = pgutil.NewPool(dbCtx, pgutil.Config{URL: cfg.Database.URL, MaxConns: cfg.Database.MaxConns})
		dbCancel()
		if err != nil {
			return err
		}
		defer pool.Close()
		logger.Info("connected to database")

		checks["database"] = func(ctx context.Context) error { return pgutil.HealthCheck(ctx, pool) }
	}

	// Wire infrastructure adapters.
	scoring, err := buildOracle(ctx, cfg, pool, logger)
	if err != nil {
		return err
	}
	defer scoring.close()
	for name, check := range scoring.checks {
		checks[name] = check
	}

	publisher, closePublisher, err := buildPublisher(cfg, logger)
	if err != nil {
		return err
	}
	defer closePublisher()

	validator, err := buildValidator(cfg)
	if err != nil {
		return err
	}
	authEnabled := validator != nil

	// Wire use cases.
	assessApplicantUC := usecase.NewAssessApplicant(scoring.oracle, service.NewAdjustmentEngine(), publisher, recorder, logger)
	reloadModelUC := usecase.NewReloadModel(scoring.reloader, logger)

	// gRPC server.
	grpcHandler := grpcpresentation.NewCreditRiskHandler(assessApplicantUC, reloadModelUC, logger, authEnabled)
	grpcServer, err := grpcpresentation.NewServer(grpcHandler, grpcpresentation.ServerConfig{
		Address:     cfg.GRPCAddress(),
		TLSCertFile: cfg.Server.TLSCertFile,
		TLSKeyFile:  cfg.Server.TLSKeyFile,
		Reflection:  cfg.Server.Reflection,
	}, validator, logger)
	if err != nil {
		return err
	}

	// HTTP server.
	router := rest.NewRouter(rest.RouterConfig{
		Validator:      validator,
		MetricsHandler: metricsHandler,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		RPS:            cfg.RateLimit.RPS,
		Burst:          cfg.RateLimit.Burst,
	},
		rest.NewAssessmentHandler(assessApplicantUC, reloadModelUC, logger, authEnabled),
		rest.NewHealthHandler(serviceName, checks, logger),
		logger,
	)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	if cfg.Server.TLSCertFile != "" {
		tlsCfg, err := tlsutil.LoadServerConfig(cfg.Server.TLSCertFile, cfg.Server.TLSKeyFile)
		if err != nil {
			return err
		}
		httpServer.TLSConfig = tlsCfg
	}

	// Start servers.
	errCh := make(chan error, 2)

	go func() {
		if err := grpcServer.Start(); err != nil {
			errCh <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	go func() {
		logger.Info("HTTP server starting", "address", cfg.HTTPAddress())
		var err error
		if httpServer.TLSConfig != nil {
			err = httpServer.ListenAndServeTLS("", "")
		} else {
			err = httpServer.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	logger.Info("credit-risk-service started",
		"grpc_address", cfg.GRPCAddress(),
		"http_address", cfg.HTTPAddress(),
		"environment", cfg.Environment,
		"auth_enabled", authEnabled,
	)

	// Wait for shutdown signal.
	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case serveErr = <-errCh:
		logger.Error("server error", "error", serveErr)
	}

	// Graceful shutdown.
	logger.Info("shutting down credit-risk-service")

	grpcServer.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	logger.Info("credit-risk-service stopped")
	return serveErr
}
