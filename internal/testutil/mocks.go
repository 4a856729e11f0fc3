// Package testutil provides shared mock implementations of domain interfaces
// for use in tests across the codebase.
package testutil

import (
	"context"

	"churnprep/internal/domain"
)

// === Object Store Mock ===

// MockObjectStore implements domain.ObjectStore for testing.
type MockObjectStore struct {
	PutFn   func(ctx context.Context, name string, data []byte) (string, error)
	Objects map[string][]byte // collected writes for assertions
}

// Put implements the interface method for testing.
func (m *MockObjectStore) Put(ctx context.Context, name string, data []byte) (string, error) {
	if m.PutFn != nil {
		uri, err := m.PutFn(ctx, name, data)
		if err != nil {
			return "", err
		}
		m.record(name, data)
		return uri, nil
	}
	m.record(name, data)
	return "gs://test-bucket/" + name, nil
}

func (m *MockObjectStore) record(name string, data []byte) {
	if m.Objects == nil {
		m.Objects = make(map[string][]byte)
	}
	m.Objects[name] = append([]byte(nil), data...)
}

var _ domain.ObjectStore = (*MockObjectStore)(nil)

// === Feature Store Mock ===

// MockFeatureStore implements domain.FeatureStore for testing.
type MockFeatureStore struct {
	GetOrCreateStoreFn      func(ctx context.Context, storeID string) (string, error)
	GetOrCreateEntityTypeFn func(ctx context.Context, storeName, entityTypeID string) (string, error)
	IngestFn                func(ctx context.Context, entityTypeName string, batch domain.FeatureBatch) error
	Batches                 []domain.FeatureBatch // collected batches for assertions
}

// GetOrCreateStore implements the interface method for testing.
func (m *MockFeatureStore) GetOrCreateStore(ctx context.Context, storeID string) (string, error) {
	if m.GetOrCreateStoreFn != nil {
		return m.GetOrCreateStoreFn(ctx, storeID)
	}
	return "projects/test/locations/test/featurestores/" + storeID, nil
}

// GetOrCreateEntityType implements the interface method for testing.
func (m *MockFeatureStore) GetOrCreateEntityType(ctx context.Context, storeName, entityTypeID string) (string, error) {
	if m.GetOrCreateEntityTypeFn != nil {
		return m.GetOrCreateEntityTypeFn(ctx, storeName, entityTypeID)
	}
	return storeName + "/entityTypes/" + entityTypeID, nil
}

// Ingest implements the interface method for testing.
func (m *MockFeatureStore) Ingest(ctx context.Context, entityTypeName string, batch domain.FeatureBatch) error {
	if m.IngestFn != nil {
		if err := m.IngestFn(ctx, entityTypeName, batch); err != nil {
			return err
		}
	}
	m.Batches = append(m.Batches, batch)
	return nil
}

// LastBatch returns the last ingested batch, or nil if none.
func (m *MockFeatureStore) LastBatch() *domain.FeatureBatch {
	if len(m.Batches) == 0 {
		return nil
	}
	return &m.Batches[len(m.Batches)-1]
}

var _ domain.FeatureStore = (*MockFeatureStore)(nil)

// === Run Repository Mock ===

// MockRunRepo implements domain.RunRepository for testing.
type MockRunRepo struct {
	InsertFn func(ctx context.Context, r *domain.PipelineResult) error
	ListFn   func(ctx context.Context, limit int) ([]domain.PipelineResult, error)
	GetFn    func(ctx context.Context, runID string) (*domain.PipelineResult, error)
	Results  []*domain.PipelineResult // collected inserts for assertions
}

// Insert implements the interface method for testing.
func (m *MockRunRepo) Insert(ctx context.Context, r *domain.PipelineResult) error {
	if m.InsertFn != nil {
		if err := m.InsertFn(ctx, r); err != nil {
			return err
		}
	}
	m.Results = append(m.Results, r)
	return nil
}

// List implements the interface method for testing.
func (m *MockRunRepo) List(ctx context.Context, limit int) ([]domain.PipelineResult, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, limit)
	}
	out := make([]domain.PipelineResult, 0, len(m.Results))
	for i := len(m.Results) - 1; i >= 0; i-- {
		out = append(out, *m.Results[i])
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// Get implements the interface method for testing.
func (m *MockRunRepo) Get(ctx context.Context, runID string) (*domain.PipelineResult, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, runID)
	}
	for _, r := range m.Results {
		if r.RunID == runID {
			return r, nil
		}
	}
	return nil, domain.ErrNotFound("run %q not found", runID)
}

var _ domain.RunRepository = (*MockRunRepo)(nil)
