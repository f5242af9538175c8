package services

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/glue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/propense/feature-engine/pkg/apperrors"
	"github.com/propense/feature-engine/pkg/etl"
	"github.com/propense/feature-engine/pkg/llm"
	"github.com/propense/feature-engine/pkg/models"
	"github.com/propense/feature-engine/pkg/objectstore"
	"github.com/propense/feature-engine/pkg/spark"
)

type fakeGlue struct {
	createInputs []*glue.CreateJobInput
	startInputs  []*glue.StartJobRunInput
	createErr    error
	startErr     error
}

func (f *fakeGlue) CreateJob(ctx context.Context, params *glue.CreateJobInput, optFns ...func(*glue.Options)) (*glue.CreateJobOutput, error) {
	f.createInputs = append(f.createInputs, params)
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &glue.CreateJobOutput{Name: params.Name}, nil
}

func (f *fakeGlue) StartJobRun(ctx context.Context, params *glue.StartJobRunInput, optFns ...func(*glue.Options)) (*glue.StartJobRunOutput, error) {
	f.startInputs = append(f.startInputs, params)
	if f.startErr != nil {
		return nil, f.startErr
	}
	return &glue.StartJobRunOutput{JobRunId: aws.String("jr_1")}, nil
}

func newJobFixture(t *testing.T, fake *fakeGlue) (*JobService, *models.SessionState, *objectstore.MemoryStore) {
	t.Helper()

	registry := NewRegistry(false, zap.NewNop())
	store := objectstore.NewMemoryStore()
	translator := spark.NewTranslator(&llm.MockClient{}, zap.NewNop())
	assembler := spark.NewAssembler(translator, zap.NewNop())
	runner := etl.NewRunner(fake, zap.NewNop())
	svc := NewJobService(assembler, runner, store, registry, "scripts", "arn:aws:iam::123:role/GlueServiceRole", zap.NewNop())

	s := models.NewSessionState("s1")
	registry.RecordExploration(s, "s3://data/users.csv", testProfile())
	require.NoError(t, registry.RecordCandidates(s, testBatch()))
	_, err := registry.ConfirmFeatures(s, []string{"calls_per_tenure"}, true, []string{"user_id"})
	require.NoError(t, err)

	return svc, s, store
}

func TestCreateJob(t *testing.T) {
	fake := &fakeGlue{}
	svc, s, store := newJobFixture(t, fake)

	record, err := svc.CreateJob(context.Background(), s, "churn-features", "s3://data/engineered/", "")
	require.NoError(t, err)

	t.Run("record reflects the session state", func(t *testing.T) {
		assert.Equal(t, "churn-features", record.JobName)
		assert.Equal(t, "s3://data/users.csv", record.InputPath)
		assert.Equal(t, "s3://data/engineered/", record.OutputPath)
		assert.Equal(t, 2, record.FeatureCount)
		assert.Equal(t, models.JobStatusCreated, record.Status)
		assert.NotEmpty(t, record.Script)
	})

	t.Run("script is uploaded before the job is registered", func(t *testing.T) {
		body, err := store.Get(context.Background(), "s3://scripts/glue-scripts/churn-features.py")
		require.NoError(t, err)
		assert.Contains(t, string(body), "job.commit()")
	})

	t.Run("glue receives the default role and script location", func(t *testing.T) {
		require.Len(t, fake.createInputs, 1)
		in := fake.createInputs[0]
		assert.Equal(t, "arn:aws:iam::123:role/GlueServiceRole", aws.ToString(in.Role))
		assert.Equal(t, "s3://scripts/glue-scripts/churn-features.py", aws.ToString(in.Command.ScriptLocation))
		assert.Equal(t, "2", in.DefaultArguments["--feature_count"])
	})

	t.Run("session tracks the job and stage", func(t *testing.T) {
		assert.Equal(t, models.StageJobCreated, s.Stage)
		assert.Equal(t, "s3://data/engineered/", s.FeaturesOutputPath)
		require.NotNil(t, s.FindJob("churn-features"))
	})
}

func TestCreateJobRoleOverride(t *testing.T) {
	fake := &fakeGlue{}
	svc, s, _ := newJobFixture(t, fake)

	_, err := svc.CreateJob(context.Background(), s, "j", "s3://out/", "arn:aws:iam::999:role/Custom")
	require.NoError(t, err)
	assert.Equal(t, "arn:aws:iam::999:role/Custom", aws.ToString(fake.createInputs[0].Role))
}

func TestCreateJobPreconditions(t *testing.T) {
	fake := &fakeGlue{}
	registry := NewRegistry(false, zap.NewNop())
	translator := spark.NewTranslator(&llm.MockClient{}, zap.NewNop())
	svc := NewJobService(spark.NewAssembler(translator, zap.NewNop()), etl.NewRunner(fake, zap.NewNop()),
		objectstore.NewMemoryStore(), registry, "scripts", "role", zap.NewNop())

	t.Run("no confirmed features", func(t *testing.T) {
		s := models.NewSessionState("s1")
		_, err := svc.CreateJob(context.Background(), s, "j", "s3://out/", "")
		require.ErrorIs(t, err, apperrors.ErrPrecondition)
	})

	t.Run("missing job name", func(t *testing.T) {
		s := models.NewSessionState("s1")
		registry.RecordExploration(s, "s3://data/", testProfile())
		require.NoError(t, registry.RecordCandidates(s, testBatch()))
		_, err := registry.ConfirmFeatures(s, []string{"call_rate"}, false, nil)
		require.NoError(t, err)

		_, err = svc.CreateJob(context.Background(), s, "", "s3://out/", "")
		require.ErrorIs(t, err, apperrors.ErrValidation)
	})
}

func TestCreateJobGlueFailure(t *testing.T) {
	fake := &fakeGlue{createErr: errors.New("throttled")}
	svc, s, _ := newJobFixture(t, fake)

	_, err := svc.CreateJob(context.Background(), s, "j", "s3://out/", "")
	require.ErrorIs(t, err, apperrors.ErrExternalService)
	assert.Empty(t, s.Jobs, "a failed creation must not be recorded")
}

func TestRunJob(t *testing.T) {
	fake := &fakeGlue{}
	svc, s, _ := newJobFixture(t, fake)

	_, err := svc.CreateJob(context.Background(), s, "churn-features", "s3://data/engineered/", "")
	require.NoError(t, err)

	runID, err := svc.RunJob(context.Background(), s, "churn-features")
	require.NoError(t, err)
	assert.Equal(t, "jr_1", runID)

	job := s.FindJob("churn-features")
	require.NotNil(t, job)
	assert.Equal(t, models.JobStatusRunning, job.Status)
	assert.Equal(t, "jr_1", job.RunID)

	t.Run("run reuses the recorded paths", func(t *testing.T) {
		require.Len(t, fake.startInputs, 1)
		assert.Equal(t, "s3://data/users.csv", fake.startInputs[0].Arguments["--input_path"])
		assert.Equal(t, "s3://data/engineered/", fake.startInputs[0].Arguments["--output_path"])
	})
}

func TestRunJobUnknownName(t *testing.T) {
	fake := &fakeGlue{}
	svc, s, _ := newJobFixture(t, fake)

	_, err := svc.RunJob(context.Background(), s, "never-created")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Empty(t, fake.startInputs)
}
