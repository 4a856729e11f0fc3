package cli

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"churnprep/internal/config"
	"churnprep/internal/db"
	"churnprep/internal/db/repository"
	"churnprep/internal/domain"
	"churnprep/internal/featurestore"
	"churnprep/internal/storage"
)

// app bundles the resolved configuration and logger shared by commands.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
}

func newApp(env string) (*app, error) {
	cfg, err := config.Load(env)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	for _, warning := range cfg.Warnings {
		logger.Warn(warning)
	}
	logger.Info("configuration loaded", "env", cfg.Env, "bucket", cfg.Bucket)

	return &app{cfg: cfg, logger: logger}, nil
}

// objectStore builds the durable sink: a local directory when localDir is
// set, the configured GCS bucket otherwise.
func (a *app) objectStore(ctx context.Context, localDir string) (domain.ObjectStore, func(), error) {
	if localDir != "" {
		return storage.NewFileStore(localDir), func() {}, nil
	}
	s, err := storage.NewGCSStore(ctx, a.cfg.Bucket, a.cfg.CredentialsFile)
	if err != nil {
		return nil, nil, fmt.Errorf("create object store: %w", err)
	}
	return s, func() { _ = s.Close() }, nil
}

// featureStore builds the best-effort serving sink. Misconfiguration does
// not abort a run; the publisher records the sink as unavailable instead.
func (a *app) featureStore(ctx context.Context) domain.FeatureStore {
	if a.cfg.ProjectID == "" {
		a.logger.Warn("no GCP project configured, feature store disabled")
		return nil
	}
	fs, err := featurestore.NewVertexStore(ctx, a.cfg.ProjectID, a.cfg.Location, a.cfg.CredentialsFile, a.logger)
	if err != nil {
		a.logger.Warn("feature store unavailable", "error", err)
		return nil
	}
	return fs
}

// openRunRepo opens the metadata store in write mode and migrates it.
func (a *app) openRunRepo() (*repository.RunRepo, *sql.DB, error) {
	conn, err := db.OpenSQLite(a.cfg.MetaDBPath, "write", 0)
	if err != nil {
		return nil, nil, fmt.Errorf("open metadata store: %w", err)
	}
	if err := db.RunMigrations(conn); err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("migrate metadata store: %w", err)
	}
	return repository.NewRunRepo(conn), conn, nil
}
