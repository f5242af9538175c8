package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/propense/feature-engine/pkg/models"
	"github.com/propense/feature-engine/pkg/services"
)

// JobToolDeps contains dependencies for Glue job tools.
type JobToolDeps struct {
	Sessions *services.SessionManager
	Jobs     *services.JobService
	Logger   *zap.Logger
}

// RegisterJobTools registers the Glue job creation and execution MCP tools.
func RegisterJobTools(s *server.MCPServer, deps *JobToolDeps) {
	registerCreateJobTool(s, deps)
	registerRunJobTool(s, deps)
}

// createJobResult is the create_glue_job_with_confirmed_features tool
// response. The assembled script itself is omitted; its upload location
// is returned instead.
type createJobResult struct {
	SessionID         string                  `json:"session_id"`
	ConversationStage models.Stage            `json:"conversation_stage"`
	JobName           string                  `json:"job_name"`
	InputPath         string                  `json:"input_path"`
	OutputPath        string                  `json:"output_path"`
	ScriptLocation    string                  `json:"script_location"`
	TotalFeatures     int                     `json:"total_features"`
	Breakdown         models.ProvenanceCounts `json:"feature_breakdown"`
	Status            models.JobStatus        `json:"status"`
}

func registerCreateJobTool(s *server.MCPServer, deps *JobToolDeps) {
	tool := mcp.NewTool("create_glue_job_with_confirmed_features",
		mcp.WithDescription("Assemble a PySpark feature engineering script from the session's confirmed features, upload it to S3 and register an AWS Glue job. Requires confirm_final_feature_list first. The job is created but not started; use run_glue_job."),
		mcp.WithString(
			"session_id",
			mcp.Required(),
			mcp.Description("Workflow session holding the confirmed feature list"),
		),
		mcp.WithString(
			"job_name",
			mcp.Required(),
			mcp.Description("Glue job name; also names the uploaded script (glue-scripts/{job_name}.py)"),
		),
		mcp.WithString(
			"output_path",
			mcp.Required(),
			mcp.Description("S3 prefix for the engineered feature output (e.g., s3://bucket/features/)"),
		),
		mcp.WithString(
			"role_arn",
			mcp.Description("Optional - Glue execution role ARN; falls back to the configured default"),
		),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(true),
	)

	s.AddTool(tool, createJobHandler(deps))
}

func createJobHandler(deps *JobToolDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sessionID, err := req.RequireString("session_id")
		if err != nil {
			return nil, err
		}
		jobName, err := req.RequireString("job_name")
		if err != nil {
			return nil, err
		}
		jobName = trimString(jobName)
		if jobName == "" {
			return NewErrorResult("invalid_parameters", "parameter 'job_name' cannot be empty"), nil
		}
		outputPath, err := req.RequireString("output_path")
		if err != nil {
			return nil, err
		}
		outputPath = trimString(outputPath)
		if outputPath == "" {
			return NewErrorResult("invalid_parameters", "parameter 'output_path' cannot be empty"), nil
		}

		session := deps.Sessions.GetOrCreate(trimString(sessionID))

		record, err := deps.Jobs.CreateJob(ctx, session, jobName, outputPath, getOptionalString(req, "role_arn"))
		if err != nil {
			return serviceResult(err)
		}
		deps.Sessions.Save(session)

		deps.Logger.Info("created glue job",
			zap.String("session_id", session.ID),
			zap.String("job_name", jobName),
			zap.Int("features", record.FeatureCount))

		return jsonResult(createJobResult{
			SessionID:         session.ID,
			ConversationStage: session.Stage,
			JobName:           record.JobName,
			InputPath:         record.InputPath,
			OutputPath:        record.OutputPath,
			ScriptLocation:    deps.Jobs.ScriptLocation(jobName),
			TotalFeatures:     record.FeatureCount,
			Breakdown:         record.Breakdown,
			Status:            record.Status,
		})
	}
}

// runJobResult is the run_glue_job tool response.
type runJobResult struct {
	SessionID string           `json:"session_id"`
	JobName   string           `json:"job_name"`
	RunID     string           `json:"job_run_id"`
	Status    models.JobStatus `json:"status"`
}

func registerRunJobTool(s *server.MCPServer, deps *JobToolDeps) {
	tool := mcp.NewTool("run_glue_job",
		mcp.WithDescription("Start a Glue job previously created in this session and return its run ID. The run executes asynchronously in AWS; the tool does not wait for completion."),
		mcp.WithString(
			"session_id",
			mcp.Required(),
			mcp.Description("Workflow session the job was created in"),
		),
		mcp.WithString(
			"job_name",
			mcp.Required(),
			mcp.Description("Name of the job to start, as given to create_glue_job_with_confirmed_features"),
		),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(true),
	)

	s.AddTool(tool, runJobHandler(deps))
}

func runJobHandler(deps *JobToolDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sessionID, err := req.RequireString("session_id")
		if err != nil {
			return nil, err
		}
		jobName, err := req.RequireString("job_name")
		if err != nil {
			return nil, err
		}
		jobName = trimString(jobName)
		if jobName == "" {
			return NewErrorResult("invalid_parameters", "parameter 'job_name' cannot be empty"), nil
		}

		session := deps.Sessions.GetOrCreate(trimString(sessionID))

		runID, err := deps.Jobs.RunJob(ctx, session, jobName)
		if err != nil {
			return serviceResult(err)
		}
		deps.Sessions.Save(session)

		return jsonResult(runJobResult{
			SessionID: session.ID,
			JobName:   jobName,
			RunID:     runID,
			Status:    models.JobStatusRunning,
		})
	}
}
