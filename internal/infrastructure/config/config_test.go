package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/credit-risk-service/internal/infrastructure/config"
)

// chdir moves into an empty directory so no stray credit-risk.yaml is read.
func chdir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, ":8095", cfg.GRPCAddress())
	assert.Equal(t, ":9095", cfg.HTTPAddress())
	assert.Equal(t, 15*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, config.ModelSourceFile, cfg.Model.Source)
	assert.Equal(t, "models/default.yaml", cfg.Model.FilePath)
	assert.Equal(t, 2*time.Second, cfg.Model.RemoteTimeout)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 50.0, cfg.RateLimit.RPS)
	assert.Equal(t, 100, cfg.RateLimit.Burst)
	assert.False(t, cfg.NeedsDatabase())
	assert.False(t, cfg.Auth.Enabled())
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
	assert.False(t, cfg.Kafka.TLS)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	chdir(t)
	t.Setenv("CREDIT_RISK_SERVER_HTTP_PORT", "7000")
	t.Setenv("CREDIT_RISK_MODEL_SOURCE", "postgres")
	t.Setenv("CREDIT_RISK_DATABASE_URL", "postgres://bib:bib@db:5432/bib_credit_risk")
	t.Setenv("CREDIT_RISK_AUTH_JWT_SECRET", "s3cret")
	t.Setenv("CREDIT_RISK_KAFKA_SASL_MECHANISM", "SCRAM-SHA-512")
	t.Setenv("CREDIT_RISK_KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")
	t.Setenv("CREDIT_RISK_REDIS_CACHE_TTL", "30s")
	t.Setenv("CREDIT_RISK_LOG_LEVEL", "debug")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.HTTPAddress())
	assert.Equal(t, config.ModelSourcePostgres, cfg.Model.Source)
	assert.True(t, cfg.NeedsDatabase())
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 30*time.Second, cfg.Redis.CacheTTL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Auth.Enabled())
	assert.Equal(t, "SCRAM-SHA-512", cfg.Kafka.SASLMechanism)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := chdir(t)
	content := []byte(`
model:
  source: remote
  remote_url: http://scorer:8501/v1/predict
rate_limit:
  rps: 5
  burst: 10
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "credit-risk.yaml"), content, 0o600))

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, config.ModelSourceRemote, cfg.Model.Source)
	assert.Equal(t, "http://scorer:8501/v1/predict", cfg.Model.RemoteURL)
	assert.Equal(t, 5.0, cfg.RateLimit.RPS)
	assert.Equal(t, 10, cfg.RateLimit.Burst)
}

func TestLoad_InvalidModelSource(t *testing.T) {
	chdir(t)
	t.Setenv("CREDIT_RISK_MODEL_SOURCE", "s3")

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown model.source "s3"`)
}

func TestValidate(t *testing.T) {
	valid := func() config.Config {
		return config.Config{
			Model:     config.ModelConfig{Source: config.ModelSourceFile, FilePath: "m.yaml"},
			RateLimit: config.RateLimitConfig{RPS: 1, Burst: 1},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *config.Config)
		wantErr string
	}{
		{"valid", func(*config.Config) {}, ""},
		{"postgres without url", func(c *config.Config) { c.Model.Source = config.ModelSourcePostgres }, "database.url"},
		{"remote without url", func(c *config.Config) { c.Model.Source = config.ModelSourceRemote }, "model.remote_url"},
		{"file without path", func(c *config.Config) { c.Model.FilePath = "" }, "model.file_path"},
		{"zero rps", func(c *config.Config) { c.RateLimit.RPS = 0 }, "rate_limit"},
		{"static probability above one", func(c *config.Config) {
			c.Model.Source = config.ModelSourceStatic
			c.Model.StaticProbability = 1.5
		}, "static_probability"},
		{"cert without key", func(c *config.Config) { c.Server.TLSCertFile = "cert.pem" }, "tls_key_file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
