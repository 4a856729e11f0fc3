package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable Load reads so host state cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"ENV", "GCP_PROJECT_ID", "GCP_LOCATION", "GOOGLE_APPLICATION_CREDENTIALS",
		"GCS_BUCKET_NAME", "GCS_DATA_PREFIX", "FEATURE_STORE_ID", "ENTITY_TYPE_ID",
		"SOURCE_URL", "FALLBACK_PATH", "META_DB_PATH", "LISTEN_ADDR", "SCHEDULE",
		"LOG_LEVEL", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "CORS_ALLOWED_ORIGINS",
	} {
		t.Setenv(key, "")
	}
	// Point the profile file somewhere that does not exist.
	t.Setenv("DATAPREP_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))
}

func TestLoad_DevelopmentProfile(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("development")
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "dev-churn-prediction-project", cfg.ProjectID)
	assert.Equal(t, "dev-churn-prediction-bucket", cfg.Bucket)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "us-central1", cfg.Location)
	assert.Equal(t, "churn_featurestore", cfg.FeatureStoreID)
	assert.Equal(t, "customers", cfg.EntityTypeID)
	assert.Equal(t, "customerID", cfg.IDColumn)
	assert.Equal(t, "Churn", cfg.TargetColumn)
	assert.Len(t, cfg.CategoricalColumns, 15)
	assert.Equal(t, map[string]int{"Yes": 1, "No": 0}, cfg.TargetMapping)
	assert.Empty(t, cfg.Warnings)
}

func TestLoad_ProductionProfile(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("production")
	require.NoError(t, err)

	assert.Equal(t, "prod-churn-prediction-bucket", cfg.Bucket)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, slog.LevelWarn, cfg.SlogLevel())
}

func TestLoad_EnvVarsOverrideProfile(t *testing.T) {
	clearEnv(t)
	t.Setenv("GCS_BUCKET_NAME", "override-bucket")
	t.Setenv("RATE_LIMIT_RPS", "10")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load("staging")
	require.NoError(t, err)

	assert.Equal(t, "override-bucket", cfg.Bucket)
	assert.Equal(t, 10.0, cfg.RateLimitRPS)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
}

func TestLoad_ENVVariableSelectsProfile(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENV", "staging")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "staging", cfg.Env)
	assert.Equal(t, "staging-churn-prediction-bucket", cfg.Bucket)
}

func TestLoad_UnknownEnvironmentWarns(t *testing.T) {
	clearEnv(t)
	t.Setenv("GCS_BUCKET_NAME", "some-bucket")

	cfg, err := Load("qa")
	require.NoError(t, err)
	require.Len(t, cfg.Warnings, 1)
	assert.Contains(t, cfg.Warnings[0], "unknown environment")
}

func TestLoad_MissingBucketFails(t *testing.T) {
	clearEnv(t)

	_, err := Load("qa") // no built-in profile, no bucket anywhere
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GCS_BUCKET_NAME")
}

func TestLoad_ProfileFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
profiles:
  development:
    bucket: file-bucket
    schedule: "0 3 * * *"
    rate-limit-rps: 5
`), 0o644))
	t.Setenv("DATAPREP_CONFIG", path)

	cfg, err := Load("development")
	require.NoError(t, err)

	assert.Equal(t, "file-bucket", cfg.Bucket)
	assert.Equal(t, "0 3 * * *", cfg.Schedule)
	assert.Equal(t, 5.0, cfg.RateLimitRPS)
	// Values the file does not mention keep their profile defaults.
	assert.Equal(t, "dev-churn-prediction-project", cfg.ProjectID)
}

func TestLoad_MalformedProfileFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("profiles: [not a map"), 0o644))
	t.Setenv("DATAPREP_CONFIG", path)

	_, err := Load("development")
	require.Error(t, err)
}

func TestLoad_InvalidRateLimitWarnsAndKeepsDefault(t *testing.T) {
	clearEnv(t)
	t.Setenv("RATE_LIMIT_RPS", "fast")

	cfg, err := Load("development")
	require.NoError(t, err)
	assert.Equal(t, 100.0, cfg.RateLimitRPS)
	require.Len(t, cfg.Warnings, 1)
	assert.Contains(t, cfg.Warnings[0], "RATE_LIMIT_RPS")
}

func TestSlogLevel(t *testing.T) {
	tests := []struct {
		level string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		cfg := &Config{LogLevel: tt.level}
		assert.Equal(t, tt.want, cfg.SlogLevel(), "level %q", tt.level)
	}
}
