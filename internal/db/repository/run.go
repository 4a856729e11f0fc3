// Package repository implements the domain repositories over the SQLite
// run-metadata store.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"churnprep/internal/domain"
)

var _ domain.RunRepository = (*RunRepo)(nil)

// RunRepo persists pipeline run results.
type RunRepo struct {
	db *sql.DB
}

// NewRunRepo creates a RunRepo over the given pool.
func NewRunRepo(db *sql.DB) *RunRepo {
	return &RunRepo{db: db}
}

// Insert stores one run result. The quality report is kept as JSON.
func (r *RunRepo) Insert(ctx context.Context, res *domain.PipelineResult) error {
	if res.RunID == "" {
		return domain.ErrValidation("run_id is required")
	}

	var reportJSON sql.NullString
	if res.Report != nil {
		data, err := json.Marshal(res.Report)
		if err != nil {
			return fmt.Errorf("marshal report: %w", err)
		}
		reportJSON = sql.NullString{String: string(data), Valid: true}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO runs (id, success, row_count, column_count, storage_uri,
			feature_store_ok, report_json, error, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		res.RunID, boolToInt(res.Success), res.Rows, res.Columns, res.StorageURI,
		boolToInt(res.FeatureStoreOK), reportJSON, res.Error,
		res.StartedAt.UTC(), res.FinishedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// List returns the most recent runs, newest first.
func (r *RunRepo) List(ctx context.Context, limit int) ([]domain.PipelineResult, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, success, row_count, column_count, storage_uri,
			feature_store_ok, report_json, error, started_at, finished_at
		FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []domain.PipelineResult
	for rows.Next() {
		res, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *res)
	}
	return out, rows.Err()
}

// Get returns one run by ID.
func (r *RunRepo) Get(ctx context.Context, runID string) (*domain.PipelineResult, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, success, row_count, column_count, storage_uri,
			feature_store_ok, report_json, error, started_at, finished_at
		FROM runs WHERE id = ?`, runID)

	res, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound("run %q not found", runID)
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row rowScanner) (*domain.PipelineResult, error) {
	var (
		res            domain.PipelineResult
		success, fsOK  int
		reportJSON     sql.NullString
		started, ended time.Time
	)
	err := row.Scan(&res.RunID, &success, &res.Rows, &res.Columns, &res.StorageURI,
		&fsOK, &reportJSON, &res.Error, &started, &ended)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan run: %w", err)
	}

	res.Success = success != 0
	res.FeatureStoreOK = fsOK != 0
	res.StartedAt = started
	res.FinishedAt = ended
	if reportJSON.Valid {
		var report domain.QualityReport
		if err := json.Unmarshal([]byte(reportJSON.String), &report); err != nil {
			return nil, fmt.Errorf("unmarshal report: %w", err)
		}
		res.Report = &report
	}
	return &res, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
