package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"churnprep/internal/domain"
	"churnprep/internal/table"
	"churnprep/internal/testutil"
)

func testPublisher(store domain.ObjectStore, features domain.FeatureStore) *Publisher {
	p := NewPublisher(store, features, "data/churn", "churn_featurestore", "customers",
		"customerID", "Churn", testLogger())
	p.now = func() time.Time { return time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC) }
	return p
}

func publishTable(t *testing.T) *table.Table {
	t.Helper()
	tbl := table.New([]table.Column{
		{Name: "customerID", Kind: table.Identifier},
		{Name: "tenure", Kind: table.Numeric},
		{Name: "gender_Male", Kind: table.Numeric},
		{Name: "Churn", Kind: table.Label},
	})
	require.NoError(t, tbl.AppendRow([]table.Value{
		table.StringValue("0001"), table.NumberValue(1), table.NumberValue(0), table.NumberValue(0),
	}))
	require.NoError(t, tbl.AppendRow([]table.Value{
		table.StringValue("0002"), table.NumberValue(34), table.NumberValue(1), table.NumberValue(1),
	}))
	return tbl
}

func TestPublish_WritesTimestampedObject(t *testing.T) {
	store := &testutil.MockObjectStore{}
	features := &testutil.MockFeatureStore{}

	uri, ok, err := testPublisher(store, features).Publish(context.Background(), publishTable(t))
	require.NoError(t, err)
	assert.True(t, ok)

	wantName := "data/churn/cleaned_telco_data_20260315_103000.csv"
	assert.Equal(t, "gs://test-bucket/"+wantName, uri)

	data, found := store.Objects[wantName]
	require.True(t, found)
	assert.True(t, strings.HasPrefix(string(data), "customerID,tenure,gender_Male,Churn\n"))
}

func TestPublish_StorageFailureIsFatal(t *testing.T) {
	store := &testutil.MockObjectStore{
		PutFn: func(context.Context, string, []byte) (string, error) {
			return "", errors.New("bucket gone")
		},
	}

	_, _, err := testPublisher(store, &testutil.MockFeatureStore{}).Publish(context.Background(), publishTable(t))
	var storageErr *domain.StorageWriteError
	require.ErrorAs(t, err, &storageErr)
}

func TestPublish_IngestFailureIsTolerated(t *testing.T) {
	store := &testutil.MockObjectStore{}
	features := &testutil.MockFeatureStore{
		IngestFn: func(context.Context, string, domain.FeatureBatch) error {
			return errors.New("quota exceeded")
		},
	}

	uri, ok, err := testPublisher(store, features).Publish(context.Background(), publishTable(t))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NotEmpty(t, uri, "storage URI is returned even when ingestion fails")
}

func TestPublish_NilFeatureStore(t *testing.T) {
	store := &testutil.MockObjectStore{}

	uri, ok, err := testPublisher(store, nil).Publish(context.Background(), publishTable(t))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NotEmpty(t, uri)
}

func TestPublish_BatchExcludesIdentifierAndLabel(t *testing.T) {
	store := &testutil.MockObjectStore{}
	features := &testutil.MockFeatureStore{}

	_, ok, err := testPublisher(store, features).Publish(context.Background(), publishTable(t))
	require.NoError(t, err)
	require.True(t, ok)

	batch := features.LastBatch()
	require.NotNil(t, batch)
	assert.Equal(t, []string{"tenure", "gender_Male"}, batch.FeatureIDs)
	require.Len(t, batch.Entities, 2)

	e := batch.Entities[1]
	assert.Equal(t, "0002", e.EntityID)
	require.Contains(t, e.Values, "tenure")
	require.NotNil(t, e.Values["tenure"].Number)
	assert.Equal(t, 34.0, *e.Values["tenure"].Number)
	assert.NotContains(t, e.Values, "customerID")
	assert.NotContains(t, e.Values, "Churn")
}
