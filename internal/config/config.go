// Package config handles application configuration and environment loading.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Config holds every per-environment value the pipeline needs. It is
// resolved once at construction and treated as read-only afterwards.
type Config struct {
	// Google Cloud
	ProjectID       string
	Location        string
	CredentialsFile string // service-account key file, optional (ADC otherwise)

	// Durable storage
	Bucket     string
	DataPrefix string // object prefix for published datasets

	// Feature store
	FeatureStoreID string
	EntityTypeID   string

	// Acquisition
	SourceURL    string // primary remote CSV source
	FallbackPath string // local raw copy, written on successful remote fetch

	// Run metadata and serving
	MetaDBPath         string
	ListenAddr         string
	RateLimitRPS       float64
	RateLimitBurst     int
	CORSAllowedOrigins []string
	Schedule           string // cron expression for recurring runs, optional

	LogLevel string // debug, info, warn, error (default "info")
	Env      string // profile name: development, staging, production

	// Dataset shape
	IDColumn           string
	TargetColumn       string
	NumericColumns     []string
	CategoricalColumns []string
	TargetMapping      map[string]int

	// Model artifact naming, carried for downstream training jobs.
	ModelDisplayName string
	ModelFileName    string

	// Warnings collects non-fatal notes generated during loading. They are
	// logged by the caller once the logger is initialised.
	Warnings []string
}

// Default returns the baseline configuration: the Telco churn dataset shape
// and conservative local paths. Environment profiles and variables override
// these values; they never extend the column sets.
func Default() *Config {
	return &Config{
		Location:           "us-central1",
		DataPrefix:         "data/churn",
		FeatureStoreID:     "churn_featurestore",
		EntityTypeID:       "customers",
		SourceURL:          "https://raw.githubusercontent.com/dphi-official/Datasets/master/Telco-Customer-Churn.csv",
		FallbackPath:       "data/raw_telco_data.csv",
		MetaDBPath:         "dataprep.db",
		ListenAddr:         ":8080",
		RateLimitRPS:       100,
		RateLimitBurst:     200,
		CORSAllowedOrigins: []string{"*"},
		LogLevel:           "info",
		Env:                "development",

		IDColumn:       "customerID",
		TargetColumn:   "Churn",
		NumericColumns: []string{"tenure", "MonthlyCharges", "TotalCharges"},
		CategoricalColumns: []string{
			"gender", "Partner", "Dependents", "PhoneService", "MultipleLines",
			"InternetService", "OnlineSecurity", "OnlineBackup", "DeviceProtection",
			"TechSupport", "StreamingTV", "StreamingMovies", "Contract",
			"PaperlessBilling", "PaymentMethod",
		},
		TargetMapping: map[string]int{"Yes": 1, "No": 0},

		ModelDisplayName: "churn_model",
		ModelFileName:    "churn_model.joblib",
	}
}

// Load resolves the configuration for the named environment: defaults, then
// the built-in profile, then the profile file (if present), then environment
// variables. An empty env selects $ENV or "development".
func Load(env string) (*Config, error) {
	cfg := Default()

	if env == "" {
		env = os.Getenv("ENV")
	}
	if env != "" {
		cfg.Env = env
	}

	if p, ok := builtinProfiles[cfg.Env]; ok {
		p.apply(cfg)
	} else if cfg.Env != "development" {
		cfg.Warnings = append(cfg.Warnings, fmt.Sprintf("unknown environment %q, using defaults", cfg.Env))
	}

	if err := applyProfileFile(cfg); err != nil {
		return nil, err
	}
	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if c.SourceURL == "" && c.FallbackPath == "" {
		return fmt.Errorf("at least one of SOURCE_URL or FALLBACK_PATH must be set")
	}
	if c.Bucket == "" {
		return fmt.Errorf("GCS_BUCKET_NAME is required")
	}
	if c.IDColumn == "" || c.TargetColumn == "" {
		return fmt.Errorf("identifier and target columns are required")
	}
	if len(c.TargetMapping) == 0 {
		return fmt.Errorf("target mapping is required")
	}
	return nil
}

// SlogLevel maps the LogLevel string to an slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// IsProduction returns true when running against the production profile.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// applyEnv overlays environment variables onto the configuration.
func applyEnv(cfg *Config) {
	setString := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setString(&cfg.ProjectID, "GCP_PROJECT_ID")
	setString(&cfg.Location, "GCP_LOCATION")
	setString(&cfg.CredentialsFile, "GOOGLE_APPLICATION_CREDENTIALS")
	setString(&cfg.Bucket, "GCS_BUCKET_NAME")
	setString(&cfg.DataPrefix, "GCS_DATA_PREFIX")
	setString(&cfg.FeatureStoreID, "FEATURE_STORE_ID")
	setString(&cfg.EntityTypeID, "ENTITY_TYPE_ID")
	setString(&cfg.SourceURL, "SOURCE_URL")
	setString(&cfg.FallbackPath, "FALLBACK_PATH")
	setString(&cfg.MetaDBPath, "META_DB_PATH")
	setString(&cfg.ListenAddr, "LISTEN_ADDR")
	setString(&cfg.Schedule, "SCHEDULE")
	setString(&cfg.LogLevel, "LOG_LEVEL")

	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.RateLimitRPS = f
		} else {
			cfg.Warnings = append(cfg.Warnings, fmt.Sprintf("invalid RATE_LIMIT_RPS %q, keeping %g", v, cfg.RateLimitRPS))
		}
	}
	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RateLimitBurst = n
		} else {
			cfg.Warnings = append(cfg.Warnings, fmt.Sprintf("invalid RATE_LIMIT_BURST %q, keeping %d", v, cfg.RateLimitBurst))
		}
	}
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		parts := strings.Split(v, ",")
		origins := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				origins = append(origins, p)
			}
		}
		if len(origins) > 0 {
			cfg.CORSAllowedOrigins = origins
		}
	}
}
