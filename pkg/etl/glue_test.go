package etl

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/glue"
	"github.com/aws/aws-sdk-go-v2/service/glue/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/propense/feature-engine/pkg/apperrors"
)

type mockGlueAPI struct {
	CreateJobFunc   func(ctx context.Context, params *glue.CreateJobInput, optFns ...func(*glue.Options)) (*glue.CreateJobOutput, error)
	StartJobRunFunc func(ctx context.Context, params *glue.StartJobRunInput, optFns ...func(*glue.Options)) (*glue.StartJobRunOutput, error)
}

func (m *mockGlueAPI) CreateJob(ctx context.Context, params *glue.CreateJobInput, optFns ...func(*glue.Options)) (*glue.CreateJobOutput, error) {
	return m.CreateJobFunc(ctx, params)
}

func (m *mockGlueAPI) StartJobRun(ctx context.Context, params *glue.StartJobRunInput, optFns ...func(*glue.Options)) (*glue.StartJobRunOutput, error) {
	return m.StartJobRunFunc(ctx, params)
}

func TestCreateJob(t *testing.T) {
	var captured *glue.CreateJobInput
	mock := &mockGlueAPI{
		CreateJobFunc: func(ctx context.Context, params *glue.CreateJobInput, optFns ...func(*glue.Options)) (*glue.CreateJobOutput, error) {
			captured = params
			return &glue.CreateJobOutput{Name: params.Name}, nil
		},
	}
	r := NewRunner(mock, zap.NewNop())

	spec := JobSpec{
		Name:           "churn-features",
		RoleARN:        "arn:aws:iam::123:role/GlueServiceRole",
		ScriptLocation: "s3://scripts/glue-scripts/churn-features.py",
		InputPath:      "s3://data/users.csv",
		OutputPath:     "s3://data/engineered",
		FeatureCount:   7,
	}
	require.NoError(t, r.CreateJob(context.Background(), spec))
	require.NotNil(t, captured)

	assert.Equal(t, "churn-features", aws.ToString(captured.Name))
	assert.Equal(t, spec.RoleARN, aws.ToString(captured.Role))
	assert.Equal(t, "glueetl", aws.ToString(captured.Command.Name))
	assert.Equal(t, spec.ScriptLocation, aws.ToString(captured.Command.ScriptLocation))
	assert.Equal(t, "3", aws.ToString(captured.Command.PythonVersion))
	assert.Equal(t, int32(1), captured.MaxRetries)
	assert.Equal(t, int32(120), aws.ToInt32(captured.Timeout))
	assert.Equal(t, "3.0", aws.ToString(captured.GlueVersion))
	assert.Equal(t, types.WorkerTypeG1x, captured.WorkerType)
	assert.Equal(t, int32(2), aws.ToInt32(captured.NumberOfWorkers))

	assert.Equal(t, "s3://data/users.csv", captured.DefaultArguments["--input_path"])
	assert.Equal(t, "s3://data/engineered", captured.DefaultArguments["--output_path"])
	assert.Equal(t, "7", captured.DefaultArguments["--feature_count"])
	assert.Equal(t, "python", captured.DefaultArguments["--job-language"])
}

func TestCreateJobError(t *testing.T) {
	mock := &mockGlueAPI{
		CreateJobFunc: func(ctx context.Context, params *glue.CreateJobInput, optFns ...func(*glue.Options)) (*glue.CreateJobOutput, error) {
			return nil, errors.New("access denied")
		},
	}
	r := NewRunner(mock, zap.NewNop())

	err := r.CreateJob(context.Background(), JobSpec{Name: "bad"})
	require.ErrorIs(t, err, apperrors.ErrExternalService)
	assert.Contains(t, err.Error(), "bad")
}

func TestStartRun(t *testing.T) {
	var captured *glue.StartJobRunInput
	mock := &mockGlueAPI{
		StartJobRunFunc: func(ctx context.Context, params *glue.StartJobRunInput, optFns ...func(*glue.Options)) (*glue.StartJobRunOutput, error) {
			captured = params
			return &glue.StartJobRunOutput{JobRunId: aws.String("jr_abc123")}, nil
		},
	}
	r := NewRunner(mock, zap.NewNop())

	runID, err := r.StartRun(context.Background(), "churn-features", "s3://data/users.csv", "s3://data/engineered", 7)
	require.NoError(t, err)
	assert.Equal(t, "jr_abc123", runID)

	require.NotNil(t, captured)
	assert.Equal(t, "churn-features", aws.ToString(captured.JobName))
	assert.Equal(t, "7", captured.Arguments["--feature_count"])
}

func TestStartRunError(t *testing.T) {
	mock := &mockGlueAPI{
		StartJobRunFunc: func(ctx context.Context, params *glue.StartJobRunInput, optFns ...func(*glue.Options)) (*glue.StartJobRunOutput, error) {
			return nil, errors.New("no such job")
		},
	}
	r := NewRunner(mock, zap.NewNop())

	_, err := r.StartRun(context.Background(), "missing", "in", "out", 1)
	require.ErrorIs(t, err, apperrors.ErrExternalService)
}

func TestScriptLocation(t *testing.T) {
	assert.Equal(t, "s3://my-bucket/glue-scripts/job-1.py", ScriptLocation("my-bucket", "job-1"))
}
