package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/propense/feature-engine/pkg/apperrors"
	"github.com/propense/feature-engine/pkg/models"
	"github.com/propense/feature-engine/pkg/objectstore"
)

func TestExploreFile(t *testing.T) {
	ctx := context.Background()
	store := objectstore.NewMemoryStore()
	require.NoError(t, store.Put(ctx, "s3://data/users.csv",
		[]byte("user_id,calls,tenure\nu1,5,12\nu2,0,3\nu3,9,24\n"), "text/csv"))

	e := NewExplorationService(store, NewRegistry(false, zap.NewNop()), 1000, zap.NewNop())
	s := models.NewSessionState("s1")

	profile, err := e.Explore(ctx, s, "s3://data/users.csv")
	require.NoError(t, err)

	assert.Equal(t, 3, profile.SampleRecords)
	assert.Equal(t, []string{"user_id", "calls", "tenure"}, profile.Columns)
	assert.Equal(t, models.ColumnNumeric, profile.Types["calls"])
	assert.Equal(t, models.StageExplored, s.Stage)
	assert.Equal(t, "s3://data/users.csv", s.SourceLocation)
}

func TestExplorePrefixResolvesFirstDataFile(t *testing.T) {
	ctx := context.Background()
	store := objectstore.NewMemoryStore()
	require.NoError(t, store.Put(ctx, "s3://data/raw/README.txt", []byte("notes"), "text/plain"))
	require.NoError(t, store.Put(ctx, "s3://data/raw/customers.csv",
		[]byte("user_id\nu1\n"), "text/csv"))

	e := NewExplorationService(store, NewRegistry(false, zap.NewNop()), 1000, zap.NewNop())
	s := models.NewSessionState("s1")

	profile, err := e.Explore(ctx, s, "s3://data/raw/")
	require.NoError(t, err)
	assert.Equal(t, "s3://data/raw/customers.csv", profile.Location)
	// The session keeps the prefix as the source for downstream jobs.
	assert.Equal(t, "s3://data/raw/", s.SourceLocation)
}

func TestExploreEmptyPrefix(t *testing.T) {
	e := NewExplorationService(objectstore.NewMemoryStore(), NewRegistry(false, zap.NewNop()), 1000, zap.NewNop())
	s := models.NewSessionState("s1")

	_, err := e.Explore(context.Background(), s, "s3://data/empty/")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Equal(t, models.StageInitial, s.Stage)
}

func TestExploreSampleLimit(t *testing.T) {
	ctx := context.Background()
	store := objectstore.NewMemoryStore()
	require.NoError(t, store.Put(ctx, "s3://data/users.csv",
		[]byte("x\n1\n2\n3\n4\n5\n"), "text/csv"))

	e := NewExplorationService(store, NewRegistry(false, zap.NewNop()), 2, zap.NewNop())
	s := models.NewSessionState("s1")

	profile, err := e.Explore(ctx, s, "s3://data/users.csv")
	require.NoError(t, err)
	assert.Equal(t, 2, profile.SampleRecords)
}
