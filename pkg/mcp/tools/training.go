package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/propense/feature-engine/pkg/models"
	"github.com/propense/feature-engine/pkg/services"
)

// TrainingToolDeps contains dependencies for the model training tool.
type TrainingToolDeps struct {
	Sessions *services.SessionManager
	Training *services.TrainingService
	Logger   *zap.Logger
}

// RegisterTrainingTools registers the propensity model training MCP tool.
func RegisterTrainingTools(s *server.MCPServer, deps *TrainingToolDeps) {
	tool := mcp.NewTool("train_propensity_models",
		mcp.WithDescription("Train one propensity model on the engineered features: 80/20 split, AutoML fit, leaderboard, and held-out scoring through a temporary endpoint that is always torn down. Only one training run executes at a time; concurrent requests fail immediately."),
		mcp.WithString(
			"session_id",
			mcp.Required(),
			mcp.Description("Workflow session whose feature engineering output (or raw data) is trained on"),
		),
		mcp.WithString(
			"model_type",
			mcp.Required(),
			mcp.Description("Which model to train: 'churn', 'call' or 'spend_change'"),
		),
		mcp.WithString(
			"features_path",
			mcp.Description("Optional - S3 location of the engineered features; defaults to the session's Glue job output, falling back to the raw data"),
		),
		mcp.WithString(
			"output_path",
			mcp.Description("Optional - S3 prefix for model artifacts and results; defaults to the configured models path"),
		),
		mcp.WithNumber(
			"time_limit_seconds",
			mcp.Description("Optional - AutoML fit time limit; defaults to the configured limit"),
		),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(true),
	)

	s.AddTool(tool, trainHandler(deps))
}

// trainResult is the train_propensity_models tool response.
type trainResult struct {
	SessionID string                 `json:"session_id"`
	Result    *models.TrainingResult `json:"result"`
}

func trainHandler(deps *TrainingToolDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sessionID, err := req.RequireString("session_id")
		if err != nil {
			return nil, err
		}
		modelType, err := req.RequireString("model_type")
		if err != nil {
			return nil, err
		}

		session := deps.Sessions.GetOrCreate(trimString(sessionID))

		timeLimit := 0
		if v, ok := getOptionalFloat(req, "time_limit_seconds"); ok {
			timeLimit = int(v)
		}

		result, err := deps.Training.Train(ctx, session,
			models.ModelType(trimString(modelType)),
			getOptionalString(req, "features_path"),
			getOptionalString(req, "output_path"),
			timeLimit)
		if err != nil {
			return serviceResult(err)
		}
		deps.Sessions.Save(session)

		deps.Logger.Info("training run finished",
			zap.String("session_id", session.ID),
			zap.String("model_name", result.ModelName),
			zap.Int("predictions", result.PredictionsCount))

		return jsonResult(trainResult{
			SessionID: session.ID,
			Result:    result,
		})
	}
}
