package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"churnprep/internal/db"
	"churnprep/internal/domain"
)

func testRepo(t *testing.T) *RunRepo {
	t.Helper()
	conn, err := db.OpenSQLite(filepath.Join(t.TempDir(), "test.db"), "write", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, db.RunMigrations(conn))
	return NewRunRepo(conn)
}

func sampleResult(id string, started time.Time) *domain.PipelineResult {
	return &domain.PipelineResult{
		RunID:          id,
		Success:        true,
		Rows:           7,
		Columns:        9,
		StorageURI:     "gs://test-bucket/data/churn/cleaned_telco_data_20260315_103000.csv",
		FeatureStoreOK: true,
		Report: &domain.QualityReport{
			TotalRows:         7,
			TotalColumns:      9,
			LabelDistribution: map[int]int{0: 4, 1: 3},
			Issues:            []string{"low positive class count"},
		},
		StartedAt:  started,
		FinishedAt: started.Add(2 * time.Second),
	}
}

func TestRunRepo_InsertAndGet(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()
	started := time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)

	require.NoError(t, repo.Insert(ctx, sampleResult("run-1", started)))

	got, err := repo.Get(ctx, "run-1")
	require.NoError(t, err)

	assert.Equal(t, "run-1", got.RunID)
	assert.True(t, got.Success)
	assert.Equal(t, 7, got.Rows)
	assert.Equal(t, 9, got.Columns)
	assert.True(t, got.FeatureStoreOK)
	assert.True(t, got.StartedAt.Equal(started))
	require.NotNil(t, got.Report)
	assert.Equal(t, map[int]int{0: 4, 1: 3}, got.Report.LabelDistribution)
	assert.Equal(t, []string{"low positive class count"}, got.Report.Issues)
}

func TestRunRepo_InsertRequiresRunID(t *testing.T) {
	repo := testRepo(t)

	err := repo.Insert(context.Background(), &domain.PipelineResult{})
	var valErr *domain.ValidationError
	require.ErrorAs(t, err, &valErr)
}

func TestRunRepo_InsertFailedRunWithoutReport(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	res := &domain.PipelineResult{
		RunID:     "run-failed",
		Success:   false,
		Error:     "no data source available",
		StartedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.Insert(ctx, res))

	got, err := repo.Get(ctx, "run-failed")
	require.NoError(t, err)
	assert.False(t, got.Success)
	assert.Equal(t, "no data source available", got.Error)
	assert.Nil(t, got.Report)
}

func TestRunRepo_ListNewestFirst(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

	for i, id := range []string{"run-a", "run-b", "run-c"} {
		require.NoError(t, repo.Insert(ctx, sampleResult(id, base.Add(time.Duration(i)*time.Hour))))
	}

	runs, err := repo.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-c", runs[0].RunID)
	assert.Equal(t, "run-b", runs[1].RunID)

	// Non-positive limits fall back to the default.
	runs, err = repo.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, runs, 3)
}

func TestRunRepo_GetUnknownRun(t *testing.T) {
	repo := testRepo(t)

	_, err := repo.Get(context.Background(), "nope")
	var notFound *domain.NotFoundError
	require.ErrorAs(t, err, &notFound)
}
