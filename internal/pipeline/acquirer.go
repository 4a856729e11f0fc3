// Package pipeline implements the churn data-preparation pipeline: a
// single-owner chain of stages that acquires raw customer records, cleans
// them, derives features, validates quality, and publishes the result.
package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"churnprep/internal/domain"
	"churnprep/internal/table"
)

// Acquirer obtains raw rows from a remote primary source with a local
// fallback. Exactly one attempt per source, no retries.
type Acquirer struct {
	client       *http.Client
	sourceURL    string
	fallbackPath string
	schema       table.Schema
	logger       *slog.Logger
}

// NewAcquirer creates an Acquirer. A nil client uses http.DefaultClient.
func NewAcquirer(client *http.Client, sourceURL, fallbackPath string, schema table.Schema, logger *slog.Logger) *Acquirer {
	if client == nil {
		client = http.DefaultClient
	}
	return &Acquirer{
		client:       client,
		sourceURL:    sourceURL,
		fallbackPath: fallbackPath,
		schema:       schema,
		logger:       logger,
	}
}

// Load fetches the dataset from the primary source; on success the raw bytes
// are persisted to the fallback path so later runs can recover if the remote
// becomes unreachable. Any primary failure falls back to the local copy.
// Both sources failing is a DataUnavailableError.
func (a *Acquirer) Load(ctx context.Context) (*table.Table, error) {
	t, primaryErr := a.loadRemote(ctx)
	if primaryErr == nil {
		a.logger.Info("loaded dataset from primary source", "url", a.sourceURL, "rows", t.NumRows())
		return t, nil
	}
	a.logger.Warn("primary source failed, trying fallback", "url", a.sourceURL, "error", primaryErr)

	t, fallbackErr := a.loadFallback()
	if fallbackErr != nil {
		return nil, domain.ErrDataUnavailable(
			"no data source available: primary: %v; fallback %s: %v",
			primaryErr, a.fallbackPath, fallbackErr)
	}
	a.logger.Info("loaded dataset from fallback", "path", a.fallbackPath, "rows", t.NumRows())
	return t, nil
}

func (a *Acquirer) loadRemote(ctx context.Context) (*table.Table, error) {
	if a.sourceURL == "" {
		return nil, fmt.Errorf("no source URL configured")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.sourceURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch: unexpected status %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	t, err := table.ReadCSV(bytes.NewReader(data), a.schema)
	if err != nil {
		return nil, fmt.Errorf("parse remote CSV: %w", err)
	}

	// Persist only after the body parsed, so a malformed remote response
	// never clobbers a good local copy. A failed write is logged and the
	// freshly fetched data is still returned.
	if a.fallbackPath != "" {
		if err := a.persistRaw(data); err != nil {
			a.logger.Warn("failed to persist raw copy", "path", a.fallbackPath, "error", err)
		} else {
			a.logger.Info("saved raw copy", "path", a.fallbackPath)
		}
	}
	return t, nil
}

func (a *Acquirer) loadFallback() (*table.Table, error) {
	f, err := os.Open(a.fallbackPath)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	t, err := table.ReadCSV(f, a.schema)
	if err != nil {
		return nil, fmt.Errorf("parse fallback CSV: %w", err)
	}
	return t, nil
}

func (a *Acquirer) persistRaw(data []byte) error {
	if dir := filepath.Dir(a.fallbackPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(a.fallbackPath, data, 0o644)
}
