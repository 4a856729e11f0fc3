package domain

import (
	"context"
	"time"
)

// ObjectStore is the durable-record sink. Put writes the object and returns
// its URI; faults surface as StorageWriteError at the publisher boundary.
type ObjectStore interface {
	Put(ctx context.Context, name string, data []byte) (string, error)
}

// FeatureValue is one serving-side feature cell: a number or a string.
type FeatureValue struct {
	Number *float64
	Text   *string
}

// EntityFeatures holds the feature values for a single entity.
type EntityFeatures struct {
	EntityID string
	Values   map[string]FeatureValue
}

// FeatureBatch is one ingestion batch: named features for a set of entities,
// all sharing a single feature timestamp.
type FeatureBatch struct {
	FeatureIDs  []string
	FeatureTime time.Time
	Entities    []EntityFeatures
}

// FeatureStore is the best-effort serving sink.
type FeatureStore interface {
	// GetOrCreateStore returns the resource name of the featurestore,
	// creating it when absent.
	GetOrCreateStore(ctx context.Context, storeID string) (string, error)
	// GetOrCreateEntityType returns the resource name of the entity type
	// within the given store, creating it when absent.
	GetOrCreateEntityType(ctx context.Context, storeName, entityTypeID string) (string, error)
	// Ingest writes the batch under the given entity type.
	Ingest(ctx context.Context, entityTypeName string, batch FeatureBatch) error
}

// RunRepository persists pipeline run results.
type RunRepository interface {
	Insert(ctx context.Context, r *PipelineResult) error
	List(ctx context.Context, limit int) ([]PipelineResult, error)
	Get(ctx context.Context, runID string) (*PipelineResult, error)
}
