package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/glue"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/propense/feature-engine/pkg/automl"
	"github.com/propense/feature-engine/pkg/config"
	"github.com/propense/feature-engine/pkg/etl"
	"github.com/propense/feature-engine/pkg/llm"
	"github.com/propense/feature-engine/pkg/objectstore"
	"github.com/propense/feature-engine/pkg/services"
	"github.com/propense/feature-engine/pkg/spark"
)

// fakeGlue captures Glue API calls without touching AWS.
type fakeGlue struct {
	createInputs []*glue.CreateJobInput
	startInputs  []*glue.StartJobRunInput
	createErr    error
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
	return &glue.StartJobRunOutput{JobRunId: aws.String("jr_1")}, nil
}

// candidateResponse is a minimal valid LLM candidate batch.
const candidateResponse = `{
  "existing_data_features": {
    "churn_propensity": [
      {"feature_name": "calls_per_tenure", "description": "Call intensity", "formula": "calls / tenure", "source_columns": ["calls", "tenure"], "rationale": "High call rates precede churn", "complexity": "Low"}
    ],
    "call_propensity": [
      {"feature_name": "call_rate", "description": "Daily call rate", "formula": "calls / 30", "source_columns": ["calls"], "rationale": "Baseline usage", "complexity": "Low"}
    ]
  },
  "additional_data_recommendations": {}
}`

const usersCSV = `user_id,calls,tenure,churn_after_migration
u1,10,12,1
u2,2,30,0
u3,8,6,1
u4,1,40,0
u5,12,3,1
u6,3,28,0
u7,9,10,1
u8,2,36,0
u9,11,5,1
u10,4,24,0
`

// workflowFixture wires the full tool dependency graph over in-memory
// fakes.
type workflowFixture struct {
	sessions    *services.SessionManager
	store       *objectstore.MemoryStore
	glue        *fakeGlue
	predictor   *automl.MockPredictor
	exploration *ExplorationToolDeps
	features    *FeatureToolDeps
	jobs        *JobToolDeps
	training    *TrainingToolDeps
}

func newWorkflowFixture(t *testing.T) *workflowFixture {
	t.Helper()
	logger := zap.NewNop()

	store := objectstore.NewMemoryStore()
	require.NoError(t, store.Put(context.Background(), "s3://data/users.csv", []byte(usersCSV), "text/csv"))

	client := &llm.MockClient{
		CompleteFunc: func(ctx context.Context, req llm.Request) (string, error) {
			return candidateResponse, nil
		},
	}

	sessions := services.NewSessionManager(120, logger)
	registry := services.NewRegistry(false, logger)
	exploration := services.NewExplorationService(store, registry, 1000, logger)
	generation := services.NewGenerationService(client, registry, logger)

	glueFake := &fakeGlue{}
	runner := etl.NewRunner(glueFake, logger)
	assembler := spark.NewAssembler(spark.NewTranslator(&llm.MockClient{}, logger), logger)
	jobs := services.NewJobService(assembler, runner, store, registry, "scripts", "arn:aws:iam::123:role/GlueServiceRole", logger)

	predictor := &automl.MockPredictor{}
	training := services.NewTrainingService(predictor, store, config.TrainingConfig{
		TimeLimitSeconds: 120,
		PredictionCap:    300,
		ModelsOutputPath: "s3://models/",
	}, logger)

	return &workflowFixture{
		sessions:    sessions,
		store:       store,
		glue:        glueFake,
		predictor:   predictor,
		exploration: &ExplorationToolDeps{Sessions: sessions, Exploration: exploration, Logger: logger},
		features:    &FeatureToolDeps{Sessions: sessions, Generation: generation, Registry: registry, Logger: logger},
		jobs:        &JobToolDeps{Sessions: sessions, Jobs: jobs, Logger: logger},
		training:    &TrainingToolDeps{Sessions: sessions, Training: training, Logger: logger},
	}
}

// explored seeds a session that has completed exploration.
func (f *workflowFixture) explored(t *testing.T) string {
	t.Helper()
	res, err := exploreHandler(f.exploration)(context.Background(), callRequest(map[string]any{
		"s3_path": "s3://data/users.csv",
	}))
	require.NoError(t, err)
	var out exploreResult
	decodeResult(t, res, &out)
	return out.SessionID
}

// confirmed seeds a session with a confirmed feature list.
func (f *workflowFixture) confirmed(t *testing.T) string {
	t.Helper()
	id := f.explored(t)

	_, err := generateFeaturesHandler(f.features)(context.Background(), callRequest(map[string]any{
		"session_id": id,
	}))
	require.NoError(t, err)

	res, err := confirmFeaturesHandler(f.features)(context.Background(), callRequest(map[string]any{
		"session_id":         id,
		"confirmed_features": []any{"calls_per_tenure"},
		"raw_columns":        []any{"user_id", "churn_after_migration"},
	}))
	require.NoError(t, err)
	require.False(t, res.IsError)
	return id
}

// jobCreated seeds a session with a created Glue job.
func (f *workflowFixture) jobCreated(t *testing.T, jobName string) string {
	t.Helper()
	id := f.confirmed(t)
	res, err := createJobHandler(f.jobs)(context.Background(), callRequest(map[string]any{
		"session_id":  id,
		"job_name":    jobName,
		"output_path": "s3://data/engineered/",
	}))
	require.NoError(t, err)
	require.False(t, res.IsError)
	return id
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")
	return text.Text
}

func decodeResult(t *testing.T, res *mcp.CallToolResult, v any) {
	t.Helper()
	require.False(t, res.IsError, "unexpected error result: %s", resultText(t, res))
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), v))
}

func decodeError(t *testing.T, res *mcp.CallToolResult) ErrorResponse {
	t.Helper()
	require.True(t, res.IsError, "expected an error result")
	var e ErrorResponse
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &e))
	return e
}
