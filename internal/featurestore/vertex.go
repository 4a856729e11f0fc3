// Package featurestore implements the Vertex AI feature-store collaborator:
// get-or-create of the featurestore and entity type, plus streaming feature
// ingestion.
package featurestore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	aiplatform "google.golang.org/api/aiplatform/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"churnprep/internal/domain"
)

// writeBatchSize is the WriteFeatureValues payload limit per request.
const writeBatchSize = 10

// operationPollInterval paces long-running operation polling during
// get-or-create.
const operationPollInterval = 5 * time.Second

var _ domain.FeatureStore = (*VertexStore)(nil)

// VertexStore talks to the Vertex AI Feature Store REST API in one region.
type VertexStore struct {
	svc      *aiplatform.Service
	project  string
	location string
	logger   *slog.Logger
}

// NewVertexStore creates a feature-store client pinned to the regional
// endpoint. An empty credentialsFile uses application default credentials.
func NewVertexStore(ctx context.Context, project, location, credentialsFile string, logger *slog.Logger) (*VertexStore, error) {
	if project == "" || location == "" {
		return nil, fmt.Errorf("project and location are required")
	}

	opts := []option.ClientOption{
		option.WithEndpoint(fmt.Sprintf("https://%s-aiplatform.googleapis.com/", location)),
	}
	if credentialsFile != "" {
		opts = append(opts, option.WithAuthCredentialsFile(option.ServiceAccount, credentialsFile))
	}
	svc, err := aiplatform.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create aiplatform service: %w", err)
	}

	return &VertexStore{svc: svc, project: project, location: location, logger: logger}, nil
}

// GetOrCreateStore returns the featurestore resource name, creating the
// store when it does not exist yet.
func (s *VertexStore) GetOrCreateStore(ctx context.Context, storeID string) (string, error) {
	parent := fmt.Sprintf("projects/%s/locations/%s", s.project, s.location)
	name := parent + "/featurestores/" + storeID

	_, err := s.svc.Projects.Locations.Featurestores.Get(name).Context(ctx).Do()
	if err == nil {
		s.logger.Info("using existing feature store", "featurestore", storeID)
		return name, nil
	}
	if !isNotFound(err) {
		return "", fmt.Errorf("get featurestore %s: %w", storeID, err)
	}

	op, err := s.svc.Projects.Locations.Featurestores.Create(parent, &aiplatform.GoogleCloudAiplatformV1Featurestore{}).
		FeaturestoreId(storeID).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("create featurestore %s: %w", storeID, err)
	}
	if err := s.waitOperation(ctx, op.Name); err != nil {
		return "", fmt.Errorf("create featurestore %s: %w", storeID, err)
	}
	s.logger.Info("created feature store", "featurestore", storeID)
	return name, nil
}

// GetOrCreateEntityType returns the entity-type resource name within the
// store, creating it when absent.
func (s *VertexStore) GetOrCreateEntityType(ctx context.Context, storeName, entityTypeID string) (string, error) {
	name := storeName + "/entityTypes/" + entityTypeID

	_, err := s.svc.Projects.Locations.Featurestores.EntityTypes.Get(name).Context(ctx).Do()
	if err == nil {
		s.logger.Info("using existing entity type", "entity_type", entityTypeID)
		return name, nil
	}
	if !isNotFound(err) {
		return "", fmt.Errorf("get entity type %s: %w", entityTypeID, err)
	}

	op, err := s.svc.Projects.Locations.Featurestores.EntityTypes.Create(storeName, &aiplatform.GoogleCloudAiplatformV1EntityType{}).
		EntityTypeId(entityTypeID).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("create entity type %s: %w", entityTypeID, err)
	}
	if err := s.waitOperation(ctx, op.Name); err != nil {
		return "", fmt.Errorf("create entity type %s: %w", entityTypeID, err)
	}
	s.logger.Info("created entity type", "entity_type", entityTypeID)
	return name, nil
}

// Ingest streams the batch via WriteFeatureValues in payload-limit chunks.
// Every value carries the batch's shared feature timestamp.
func (s *VertexStore) Ingest(ctx context.Context, entityTypeName string, batch domain.FeatureBatch) error {
	generateTime := batch.FeatureTime.UTC().Format(time.RFC3339)

	payloads := make([]*aiplatform.GoogleCloudAiplatformV1WriteFeatureValuesPayload, 0, len(batch.Entities))
	for _, e := range batch.Entities {
		values := make(map[string]aiplatform.GoogleCloudAiplatformV1FeatureValue, len(e.Values))
		for id, v := range e.Values {
			values[id] = featureValue(v, generateTime)
		}
		payloads = append(payloads, &aiplatform.GoogleCloudAiplatformV1WriteFeatureValuesPayload{
			EntityId:      e.EntityID,
			FeatureValues: values,
		})
	}

	for start := 0; start < len(payloads); start += writeBatchSize {
		end := start + writeBatchSize
		if end > len(payloads) {
			end = len(payloads)
		}
		req := &aiplatform.GoogleCloudAiplatformV1WriteFeatureValuesRequest{
			Payloads: payloads[start:end],
		}
		if _, err := s.svc.Projects.Locations.Featurestores.EntityTypes.WriteFeatureValues(entityTypeName, req).
			Context(ctx).Do(); err != nil {
			return fmt.Errorf("write feature values [%d:%d]: %w", start, end, err)
		}
	}
	return nil
}

// waitOperation polls a long-running operation until it finishes.
func (s *VertexStore) waitOperation(ctx context.Context, name string) error {
	ticker := time.NewTicker(operationPollInterval)
	defer ticker.Stop()

	for {
		op, err := s.svc.Projects.Locations.Operations.Get(name).Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("poll operation %s: %w", name, err)
		}
		if op.Done {
			if op.Error != nil {
				return fmt.Errorf("operation %s failed: %s", name, op.Error.Message)
			}
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func featureValue(v domain.FeatureValue, generateTime string) aiplatform.GoogleCloudAiplatformV1FeatureValue {
	out := aiplatform.GoogleCloudAiplatformV1FeatureValue{
		Metadata: &aiplatform.GoogleCloudAiplatformV1FeatureValueMetadata{GenerateTime: generateTime},
	}
	switch {
	case v.Number != nil:
		out.DoubleValue = *v.Number
		out.ForceSendFields = []string{"DoubleValue"}
	case v.Text != nil:
		out.StringValue = *v.Text
		out.ForceSendFields = []string{"StringValue"}
	}
	return out
}

func isNotFound(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusNotFound
}
