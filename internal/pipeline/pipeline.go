package pipeline

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"churnprep/internal/config"
	"churnprep/internal/domain"
	"churnprep/internal/table"
)

// Pipeline composes the five stages into one batch run. The run owns its
// table exclusively: control flows strictly forward and each stage runs to
// completion before the next begins.
type Pipeline struct {
	acquirer  *Acquirer
	cleaner   *Cleaner
	engineer  *Engineer
	validator *Validator
	publisher *Publisher
	runs      domain.RunRepository
	logger    *slog.Logger
	now       func() time.Time
}

// New wires a Pipeline from configuration and collaborators. runs may be nil
// when no run history is kept.
func New(cfg *config.Config, client *http.Client, store domain.ObjectStore,
	features domain.FeatureStore, runs domain.RunRepository, logger *slog.Logger) *Pipeline {

	schema := table.Schema{
		ID:          cfg.IDColumn,
		Target:      cfg.TargetColumn,
		Numeric:     cfg.NumericColumns,
		Categorical: cfg.CategoricalColumns,
	}
	return &Pipeline{
		acquirer:  NewAcquirer(client, cfg.SourceURL, cfg.FallbackPath, schema, logger),
		cleaner:   NewCleaner(schema, cfg.TargetMapping, logger),
		engineer:  NewEngineer(schema, logger),
		validator: NewValidator(schema, logger),
		publisher: NewPublisher(store, features, cfg.DataPrefix, cfg.FeatureStoreID,
			cfg.EntityTypeID, cfg.IDColumn, cfg.TargetColumn, logger),
		runs:   runs,
		logger: logger,
		now:    time.Now,
	}
}

// Run executes one complete preparation run. Stage errors never escape: they
// are converted into a failed PipelineResult with a human-readable message.
// Nothing is published unless the fully engineered table validated first.
func (p *Pipeline) Run(ctx context.Context) *domain.PipelineResult {
	result := &domain.PipelineResult{
		RunID:     uuid.New().String(),
		StartedAt: p.now(),
	}
	logger := p.logger.With("run_id", result.RunID)
	logger.Info("starting data preparation run")

	raw, err := p.acquirer.Load(ctx)
	if err != nil {
		return p.finish(ctx, logger, result, err)
	}

	cleaned, err := p.cleaner.Clean(raw)
	if err != nil {
		return p.finish(ctx, logger, result, err)
	}

	engineered, err := p.engineer.Engineer(cleaned)
	if err != nil {
		return p.finish(ctx, logger, result, err)
	}

	result.Report = p.validator.Validate(engineered)
	result.Rows = engineered.NumRows()
	result.Columns = engineered.NumColumns()

	uri, featureStoreOK, err := p.publisher.Publish(ctx, engineered)
	if err != nil {
		return p.finish(ctx, logger, result, err)
	}
	result.StorageURI = uri
	result.FeatureStoreOK = featureStoreOK
	result.Success = true

	return p.finish(ctx, logger, result, nil)
}

// finish stamps, records, and logs the result.
func (p *Pipeline) finish(ctx context.Context, logger *slog.Logger,
	result *domain.PipelineResult, err error) *domain.PipelineResult {

	result.FinishedAt = p.now()
	if err != nil {
		result.Success = false
		result.Error = err.Error()
		logger.Error("data preparation run failed", "error", err)
	} else {
		logger.Info("data preparation run completed",
			"rows", result.Rows,
			"columns", result.Columns,
			"storage_uri", result.StorageURI,
			"feature_store_ok", result.FeatureStoreOK)
	}

	if p.runs != nil {
		if insertErr := p.runs.Insert(ctx, result); insertErr != nil {
			logger.Error("failed to record run", "error", insertErr)
		}
	}
	return result
}
