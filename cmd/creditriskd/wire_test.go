package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/credit-risk-service/internal/domain/model"
	"github.com/bibbank/credit-risk-service/internal/domain/service"
	"github.com/bibbank/credit-risk-service/internal/infrastructure/config"
	"github.com/bibbank/credit-risk-service/internal/infrastructure/messaging"
	"github.com/bibbank/credit-risk-service/internal/infrastructure/oracle"
	"github.com/bibbank/credit-risk-service/pkg/testutil"
)

func TestBuildOracle_File(t *testing.T) {
	cfg := &config.Config{Model: config.ModelConfig{Source: config.ModelSourceFile, FilePath: "../../models/default.yaml"}}

	stack, err := buildOracle(context.Background(), cfg, nil, testutil.DiscardLogger())
	require.NoError(t, err)
	defer stack.close()

	require.NotNil(t, stack.reloader)
	require.Contains(t, stack.checks, "model")
	assert.NoError(t, stack.checks["model"](context.Background()))

	features := service.Normalize(testutil.MustApplicant(t, testutil.ScenarioA))
	probs, err := stack.oracle.PredictProba(context.Background(), features)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, probs[0]+probs[1], 1e-9)
	assert.Greater(t, probs[1], 0.0)
	assert.Less(t, probs[1], 1.0)

	version, err := stack.reloader.Reload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "logit-2024.06", version)
}

func TestBuildOracle_MissingFileStartsUnavailable(t *testing.T) {
	cfg := &config.Config{Model: config.ModelConfig{Source: config.ModelSourceFile, FilePath: "does-not-exist.yaml"}}

	stack, err := buildOracle(context.Background(), cfg, nil, testutil.DiscardLogger())
	require.NoError(t, err)

	assert.Error(t, stack.checks["model"](context.Background()))
	_, err = stack.oracle.PredictProba(context.Background(), service.Normalize(testutil.MustApplicant(t, testutil.ScenarioA)))
	assert.ErrorIs(t, err, model.ErrOracleUnavailable)
}

func TestBuildOracle_StaticWithCache(t *testing.T) {
	cfg := &config.Config{
		Model: config.ModelConfig{Source: config.ModelSourceStatic, StaticProbability: 0.42},
		Redis: config.RedisConfig{Addr: "127.0.0.1:1"},
	}

	stack, err := buildOracle(context.Background(), cfg, nil, testutil.DiscardLogger())
	require.NoError(t, err)
	defer stack.close()

	assert.Nil(t, stack.reloader)
	assert.IsType(t, &oracle.CachedOracle{}, stack.oracle)
	assert.Contains(t, stack.checks, "redis")

	// Cache failures fall through to the wrapped oracle.
	probs, err := stack.oracle.PredictProba(context.Background(), service.Normalize(testutil.MustApplicant(t, testutil.ScenarioA)))
	require.NoError(t, err)
	assert.InDelta(t, 0.42, probs[1], 1e-9)
}

func TestBuildOracle_Remote(t *testing.T) {
	cfg := &config.Config{Model: config.ModelConfig{Source: config.ModelSourceRemote, RemoteURL: "http://scorer/v1/predict"}}

	stack, err := buildOracle(context.Background(), cfg, nil, testutil.DiscardLogger())
	require.NoError(t, err)
	assert.IsType(t, &oracle.RemoteOracle{}, stack.oracle)
	assert.Nil(t, stack.reloader)
	assert.Empty(t, stack.checks)

	cfg.Redis.Addr = "127.0.0.1:1"
	stack, err = buildOracle(context.Background(), cfg, nil, testutil.DiscardLogger())
	require.NoError(t, err)
	assert.IsType(t, &oracle.RemoteOracle{}, stack.oracle, "remote scores are never cached")
	assert.NotContains(t, stack.checks, "redis")

		cfg.Model.RemoteCAFile = "missing-ca.pem"
	_, err = buildOracle(context.Background(), cfg, nil, testutil.DiscardLogger())
	assert.Error(t, err)
}

func TestBuildPublisher(t *testing.T) {
	pub, closeFn, err := buildPublisher(&config.Config{}, testutil.DiscardLogger())
	require.NoError(t, err)
	defer closeFn()
	assert.IsType(t, &messaging.LogPublisher{}, pub)

	cfg := &config.Config{Kafka: config.KafkaConfig{Brokers: []string{"kafka:9092"}, Topic: "t"}}
	pub, closeFn, err = buildPublisher(cfg, testutil.DiscardLogger())
	require.NoError(t, err)
	defer closeFn()
	assert.IsType(t, &messaging.KafkaPublisher{}, pub)

	cfg.Kafka.SASLMechanism = "GSSAPI"
	_, _, err = buildPublisher(cfg, testutil.DiscardLogger())
	assert.Error(t, err)
}

func TestBuildValidator(t *testing.T) {
	v, err := buildValidator(&config.Config{})
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = buildValidator(&config.Config{Auth: config.AuthConfig{JWTSecret: "s", Issuer: "bib"}})
	require.NoError(t, err)
	assert.NotNil(t, v)

	_, err = buildValidator(&config.Config{Auth: config.AuthConfig{PublicKeyFile: "missing.pem"}})
	assert.Error(t, err)
}
