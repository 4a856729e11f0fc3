package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"churnprep/internal/domain"
	"churnprep/internal/table"
)

// Publisher writes the engineered table to the durable object store and to
// the feature-serving store. Storage faults are fatal; feature-store faults
// are tolerated and reported as a flag; the serving sink is best effort.
type Publisher struct {
	store        domain.ObjectStore
	features     domain.FeatureStore
	prefix       string
	storeID      string
	entityTypeID string
	idColumn     string
	targetColumn string
	now          func() time.Time
	logger       *slog.Logger
}

// NewPublisher creates a Publisher. A nil features store disables ingestion
// (reported as not OK).
func NewPublisher(store domain.ObjectStore, features domain.FeatureStore,
	prefix, storeID, entityTypeID, idColumn, targetColumn string, logger *slog.Logger) *Publisher {
	return &Publisher{
		store:        store,
		features:     features,
		prefix:       prefix,
		storeID:      storeID,
		entityTypeID: entityTypeID,
		idColumn:     idColumn,
		targetColumn: targetColumn,
		now:          time.Now,
		logger:       logger,
	}
}

// Publish serializes the table to a timestamped CSV object and then ingests
// every non-identifier, non-label column into the feature store keyed by the
// identifier with one shared feature timestamp. Returns the object URI and
// whether feature-store ingestion succeeded.
func (p *Publisher) Publish(ctx context.Context, t *table.Table) (string, bool, error) {
	name := fmt.Sprintf("%s/cleaned_telco_data_%s.csv", p.prefix, p.now().Format("20060102_150405"))

	var buf bytes.Buffer
	if err := t.WriteCSV(&buf); err != nil {
		return "", false, domain.ErrStorageWrite(name, err)
	}

	uri, err := p.store.Put(ctx, name, buf.Bytes())
	if err != nil {
		return "", false, domain.ErrStorageWrite(name, err)
	}
	p.logger.Info("dataset uploaded", "uri", uri, "bytes", buf.Len())

	if err := p.ingest(ctx, t); err != nil {
		p.logger.Error("feature store ingestion failed", "error", err)
		return uri, false, nil
	}
	return uri, true, nil
}

func (p *Publisher) ingest(ctx context.Context, t *table.Table) error {
	if p.features == nil {
		return domain.ErrIngest(fmt.Errorf("no feature store configured"))
	}

	idIdx := t.ColumnIndex(p.idColumn)
	if idIdx < 0 {
		return domain.ErrIngest(fmt.Errorf("identifier column %q not in table", p.idColumn))
	}

	storeName, err := p.features.GetOrCreateStore(ctx, p.storeID)
	if err != nil {
		return domain.ErrIngest(err)
	}
	entityTypeName, err := p.features.GetOrCreateEntityType(ctx, storeName, p.entityTypeID)
	if err != nil {
		return domain.ErrIngest(err)
	}

	batch := p.buildBatch(t, idIdx)
	if err := p.features.Ingest(ctx, entityTypeName, batch); err != nil {
		return domain.ErrIngest(err)
	}

	p.logger.Info("ingested features into feature store",
		"features", len(batch.FeatureIDs), "entities", len(batch.Entities))
	return nil
}

// buildBatch converts table columns into a feature batch: every column is a
// named feature except the identifier and the label, keyed by the identifier
// and stamped with a single ingestion time.
func (p *Publisher) buildBatch(t *table.Table, idIdx int) domain.FeatureBatch {
	cols := t.Columns()
	var featureIDs []string
	var featureCols []int
	for i, c := range cols {
		if c.Name == p.idColumn || c.Name == p.targetColumn {
			continue
		}
		featureIDs = append(featureIDs, c.Name)
		featureCols = append(featureCols, i)
	}

	batch := domain.FeatureBatch{
		FeatureIDs:  featureIDs,
		FeatureTime: p.now(),
		Entities:    make([]domain.EntityFeatures, 0, t.NumRows()),
	}
	for row := 0; row < t.NumRows(); row++ {
		values := make(map[string]domain.FeatureValue, len(featureCols))
		for n, col := range featureCols {
			v := t.Value(row, col)
			switch v.Kind {
			case table.KindNumber:
				f := v.Num
				values[featureIDs[n]] = domain.FeatureValue{Number: &f}
			case table.KindString:
				s := v.Text
				values[featureIDs[n]] = domain.FeatureValue{Text: &s}
			}
		}
		batch.Entities = append(batch.Entities, domain.EntityFeatures{
			EntityID: t.Value(row, idIdx).String(),
			Values:   values,
		})
	}
	return batch
}
