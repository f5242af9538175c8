package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/propense/feature-engine/pkg/models"
)

func TestExploreTool(t *testing.T) {
	f := newWorkflowFixture(t)

	res, err := exploreHandler(f.exploration)(context.Background(), callRequest(map[string]any{
		"s3_path": "s3://data/users.csv",
	}))
	require.NoError(t, err)

	var out exploreResult
	decodeResult(t, res, &out)
	assert.NotEmpty(t, out.SessionID)
	assert.Equal(t, models.StageExplored, out.ConversationStage)
	require.NotNil(t, out.Profile)
	assert.ElementsMatch(t, []string{"user_id", "calls", "tenure", "churn_after_migration"}, out.Profile.Columns)
}

func TestExploreToolReusesSession(t *testing.T) {
	f := newWorkflowFixture(t)
	id := f.explored(t)

	res, err := exploreHandler(f.exploration)(context.Background(), callRequest(map[string]any{
		"s3_path":    "s3://data/users.csv",
		"session_id": id,
	}))
	require.NoError(t, err)

	var out exploreResult
	decodeResult(t, res, &out)
	assert.Equal(t, id, out.SessionID)
}

func TestExploreToolEmptyPath(t *testing.T) {
	f := newWorkflowFixture(t)

	res, err := exploreHandler(f.exploration)(context.Background(), callRequest(map[string]any{
		"s3_path": "   ",
	}))
	require.NoError(t, err)

	e := decodeError(t, res)
	assert.Equal(t, "invalid_parameters", e.Code)
}

func TestExploreToolMissingRequiredParam(t *testing.T) {
	f := newWorkflowFixture(t)

	_, err := exploreHandler(f.exploration)(context.Background(), callRequest(map[string]any{}))
	require.Error(t, err)
}

func TestExploreToolMissingObject(t *testing.T) {
	f := newWorkflowFixture(t)

	_, err := exploreHandler(f.exploration)(context.Background(), callRequest(map[string]any{
		"s3_path": "s3://data/missing.csv",
	}))
	require.Error(t, err)
}
