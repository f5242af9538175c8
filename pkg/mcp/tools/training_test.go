package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/propense/feature-engine/pkg/automl"
)

func TestTrainTool(t *testing.T) {
	f := newWorkflowFixture(t)
	id := f.jobCreated(t, "churn-features")

	res, err := trainHandler(f.training)(context.Background(), callRequest(map[string]any{
		"session_id": id,
		"model_type": "churn",
	}))
	require.NoError(t, err)

	var out trainResult
	decodeResult(t, res, &out)
	require.NotNil(t, out.Result)
	assert.Equal(t, "churn_propensity", out.Result.ModelName)
	assert.Equal(t, "churn_after_migration", out.Result.Target)
	assert.Equal(t, 10, out.Result.Rows)
	assert.Equal(t, 8, out.Result.TrainSize)
	assert.Equal(t, 2, out.Result.TestSize)

	require.Len(t, f.predictor.FitCalls, 1)
	// No engineered output exists under the job's prefix, so training
	// falls back to the raw explored data.
	assert.Equal(t, "s3://data/users.csv", out.Result.DataSource)
}

func TestTrainToolTimeLimitOverride(t *testing.T) {
	f := newWorkflowFixture(t)
	id := f.jobCreated(t, "churn-features")

	_, err := trainHandler(f.training)(context.Background(), callRequest(map[string]any{
		"session_id":         id,
		"model_type":         "churn",
		"time_limit_seconds": float64(600),
	}))
	require.NoError(t, err)

	require.Len(t, f.predictor.FitCalls, 1)
	assert.Equal(t, 600, f.predictor.FitCalls[0].TimeLimitSeconds)
}

func TestTrainToolInvalidModelType(t *testing.T) {
	f := newWorkflowFixture(t)
	id := f.jobCreated(t, "churn-features")

	res, err := trainHandler(f.training)(context.Background(), callRequest(map[string]any{
		"session_id": id,
		"model_type": "revenue",
	}))
	require.NoError(t, err)

	e := decodeError(t, res)
	assert.Equal(t, "invalid_target_model", e.Code)
}

func TestTrainToolBlockedWhileRunning(t *testing.T) {
	f := newWorkflowFixture(t)
	id := f.jobCreated(t, "churn-features")

	started := make(chan struct{})
	release := make(chan struct{})
	f.predictor.FitFunc = func(ctx context.Context, spec automl.FitSpec) error {
		close(started)
		<-release
		return nil
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := trainHandler(f.training)(context.Background(), callRequest(map[string]any{
			"session_id": id,
			"model_type": "churn",
		}))
		assert.NoError(t, err)
	}()

	<-started
	res, err := trainHandler(f.training)(context.Background(), callRequest(map[string]any{
		"session_id": id,
		"model_type": "call",
	}))
	require.NoError(t, err)
	e := decodeError(t, res)
	assert.Equal(t, "training_in_progress", e.Code)

	close(release)
	<-done
}
