package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bibbank/credit-risk-service/internal/domain/port"
	"github.com/bibbank/credit-risk-service/internal/infrastructure/cache"
	"github.com/bibbank/credit-risk-service/internal/infrastructure/config"
	"github.com/bibbank/credit-risk-service/internal/infrastructure/messaging"
	"github.com/bibbank/credit-risk-service/internal/infrastructure/oracle"
	"github.com/bibbank/credit-risk-service/internal/infrastructure/postgres"
	"github.com/bibbank/credit-risk-service/internal/presentation/rest"
	"github.com/bibbank/credit-risk-service/pkg/auth"
	pkgkafka "github.com/bibbank/credit-risk-service/pkg/kafka"
	"github.com/bibbank/credit-risk-service/pkg/tlsutil"
)

// scoringStack is the assembled oracle chain with its readiness checks.
type scoringStack struct {
	oracle   port.ScoringOracle
	reloader port.ModelReloader
	checks   map[string]rest.CheckFunc
	closers  []func() error
}

func (s *scoringStack) close() {
	for _, c := range s.closers {
		_ = c()
	}
}

func buildOracle(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, logger *slog.Logger) (*scoringStack, error) {
	stack := &scoringStack{checks: map[string]rest.CheckFunc{}}

	switch cfg.Model.Source {
	case config.ModelSourceFile, config.ModelSourcePostgres:
		var source oracle.ModelSource = oracle.NewFileSource(cfg.Model.FilePath)
		if cfg.Model.Source == config.ModelSourcePostgres {
			source = postgres.NewModelStore(pool)
		}

		modelOracle := oracle.NewModelOracle(logger)
		reloader := oracle.NewReloader(source, modelOracle)
		if version, err := reloader.Reload(ctx); err != nil {
			logger.Error("initial model load failed, serving unavailable until reloaded", "error", err)
		} else {
			logger.Info("scoring model loaded", "version", version)
		}

		stack.oracle = modelOracle
		stack.reloader = reloader
		stack.checks["model"] = modelOracle.Ready

	case config.ModelSourceRemote:
		client := &http.Client{Timeout: cfg.Model.RemoteTimeout}
		if cfg.Model.RemoteCAFile != "" {
			tlsCfg, err := tlsutil.ClientTLSConfig(cfg.Model.RemoteCAFile)
			if err != nil {
				return nil, err
			}
			client.Transport = &http.Transport{TLSClientConfig: tlsCfg}
		}
		stack.oracle = oracle.NewRemoteOracle(oracle.RemoteConfig{
			URL:     cfg.Model.RemoteURL,
			Timeout: cfg.Model.RemoteTimeout,
		}, client, logger)

	case config.ModelSourceStatic:
		stack.oracle = oracle.NewStaticOracle(cfg.Model.StaticProbability, logger)

	default:
		return nil, fmt.Errorf("unknown model source %q", cfg.Model.Source)
	}

	// A remote model server can change models without telling us, so a
	// cached score could outlive the model that produced it.
	if cfg.Redis.Addr != "" && cfg.Model.Source == config.ModelSourceRemote {
		logger.Warn("score cache disabled for the remote model source", "addr", cfg.Redis.Addr)
	} else if cfg.Redis.Addr != "" {
		scoreCache := cache.NewRedisScoreCache(cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			TTL:      cfg.Redis.CacheTTL,
		})
		stack.oracle = oracle.NewCachedOracle(stack.oracle, scoreCache, logger)
		stack.checks["redis"] = scoreCache.Ping
		stack.closers = append(stack.closers, scoreCache.Close)
		logger.Info("score cache enabled", "addr", cfg.Redis.Addr)
	}

	return stack, nil
}

func buildPublisher(cfg *config.Config, logger *slog.Logger) (port.EventPublisher, func(), error) {
	if len(cfg.Kafka.Brokers) == 0 {
		logger.Info("no kafka brokers configured, logging events instead")
		return messaging.NewLogPublisher(logger), func() {}, nil
	}

	producer, err := pkgkafka.NewProducer(pkgkafka.Config{
		Brokers:       cfg.Kafka.Brokers,
		TLS:           cfg.Kafka.TLS,
		SASLMechanism: cfg.Kafka.SASLMechanism,
		SASLUsername:  cfg.Kafka.SASLUsername,
		SASLPassword:  cfg.Kafka.SASLPassword,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("kafka producer: %w", err)
	}

	closeFn := func() {
		if err := producer.Close(); err != nil {
			logger.Error("failed to close kafka producer", "error", err)
		}
	}
	return messaging.NewKafkaPublisher(producer, cfg.Kafka.Topic, logger), closeFn, nil
}

// buildValidator returns nil when authentication is disabled.
func buildValidator(cfg *config.Config) (auth.TokenValidator, error) {
	if !cfg.Auth.Enabled() {
		return nil, nil
	}

	jwtCfg := auth.JWTConfig{
		Secret: cfg.Auth.JWTSecret,
		Issuer: cfg.Auth.Issuer,
	}
	if cfg.Auth.PublicKeyFile != "" {
		key, err := auth.LoadKeyFromFile(cfg.Auth.PublicKeyFile)
		if err != nil {
			return nil, err
		}
		jwtCfg.PublicKeyPEM = string(key)
	}

	svc, err := auth.NewJWTService(jwtCfg)
	if err != nil {
		return nil, fmt.Errorf("auth: %w", err)
	}
	return svc, nil
}
