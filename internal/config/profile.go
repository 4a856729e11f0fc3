package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Profile is a named set of configuration overrides. Each environment is a
// value; empty fields leave the current configuration untouched.
type Profile struct {
	ProjectID       string  `yaml:"project-id,omitempty"`
	Location        string  `yaml:"location,omitempty"`
	CredentialsFile string  `yaml:"credentials-file,omitempty"`
	Bucket          string  `yaml:"bucket,omitempty"`
	DataPrefix      string  `yaml:"data-prefix,omitempty"`
	FeatureStoreID  string  `yaml:"feature-store-id,omitempty"`
	EntityTypeID    string  `yaml:"entity-type-id,omitempty"`
	SourceURL       string  `yaml:"source-url,omitempty"`
	FallbackPath    string  `yaml:"fallback-path,omitempty"`
	MetaDBPath      string  `yaml:"meta-db-path,omitempty"`
	ListenAddr      string  `yaml:"listen-addr,omitempty"`
	Schedule        string  `yaml:"schedule,omitempty"`
	LogLevel        string  `yaml:"log-level,omitempty"`
	RateLimitRPS    float64 `yaml:"rate-limit-rps,omitempty"`
	RateLimitBurst  int     `yaml:"rate-limit-burst,omitempty"`
}

// builtinProfiles mirrors the hosted environments: same pipeline, different
// projects and buckets.
var builtinProfiles = map[string]Profile{
	"development": {
		ProjectID: "dev-churn-prediction-project",
		Bucket:    "dev-churn-prediction-bucket",
		LogLevel:  "debug",
	},
	"staging": {
		ProjectID: "staging-churn-prediction-project",
		Bucket:    "staging-churn-prediction-bucket",
	},
	"production": {
		ProjectID: "prod-churn-prediction-project",
		Bucket:    "prod-churn-prediction-bucket",
		LogLevel:  "warn",
	},
}

// profileFile is the on-disk shape of ~/.dataprep/config.yaml.
type profileFile struct {
	Profiles map[string]Profile `yaml:"profiles"`
}

// ProfilePath returns the profile file location: $DATAPREP_CONFIG if set,
// otherwise ~/.dataprep/config.yaml.
func ProfilePath() string {
	if p := os.Getenv("DATAPREP_CONFIG"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".dataprep", "config.yaml")
}

// applyProfileFile overlays the named profile from the profile file, when
// the file exists. A missing file is not an error; a malformed one is.
func applyProfileFile(cfg *Config) error {
	path := ProfilePath()
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read profile file: %w", err)
	}

	var file profileFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse profile file %s: %w", path, err)
	}

	p, ok := file.Profiles[cfg.Env]
	if !ok {
		return nil
	}
	p.apply(cfg)
	return nil
}

// apply overlays non-empty profile fields onto the configuration.
func (p Profile) apply(cfg *Config) {
	if p.ProjectID != "" {
		cfg.ProjectID = p.ProjectID
	}
	if p.Location != "" {
		cfg.Location = p.Location
	}
	if p.CredentialsFile != "" {
		cfg.CredentialsFile = p.CredentialsFile
	}
	if p.Bucket != "" {
		cfg.Bucket = p.Bucket
	}
	if p.DataPrefix != "" {
		cfg.DataPrefix = p.DataPrefix
	}
	if p.FeatureStoreID != "" {
		cfg.FeatureStoreID = p.FeatureStoreID
	}
	if p.EntityTypeID != "" {
		cfg.EntityTypeID = p.EntityTypeID
	}
	if p.SourceURL != "" {
		cfg.SourceURL = p.SourceURL
	}
	if p.FallbackPath != "" {
		cfg.FallbackPath = p.FallbackPath
	}
	if p.MetaDBPath != "" {
		cfg.MetaDBPath = p.MetaDBPath
	}
	if p.ListenAddr != "" {
		cfg.ListenAddr = p.ListenAddr
	}
	if p.Schedule != "" {
		cfg.Schedule = p.Schedule
	}
	if p.LogLevel != "" {
		cfg.LogLevel = p.LogLevel
	}
	if p.RateLimitRPS > 0 {
		cfg.RateLimitRPS = p.RateLimitRPS
	}
	if p.RateLimitBurst > 0 {
		cfg.RateLimitBurst = p.RateLimitBurst
	}
}
