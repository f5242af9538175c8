// Package tools provides MCP tool implementations for feature-engine.
package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/propense/feature-engine/pkg/models"
	"github.com/propense/feature-engine/pkg/services"
)

// ExplorationToolDeps contains dependencies for the data exploration tool.
type ExplorationToolDeps struct {
	Sessions    *services.SessionManager
	Exploration *services.ExplorationService
	Logger      *zap.Logger
}

// RegisterExplorationTools registers the data exploration MCP tool.
func RegisterExplorationTools(s *server.MCPServer, deps *ExplorationToolDeps) {
	tool := mcp.NewTool("explore_s3_data",
		mcp.WithDescription("Sample and profile raw telecom data in S3. Returns column names, inferred types, missing-value counts and summary statistics. Run this first; later workflow steps validate against the profile it records."),
		mcp.WithString(
			"s3_path",
			mcp.Required(),
			mcp.Description("S3 location of the raw data. Either a concrete object (s3://bucket/data.csv) or a prefix ending in '/' whose first supported data file is profiled"),
		),
		mcp.WithString(
			"session_id",
			mcp.Description("Optional - Workflow session to record the profile on. Omit to start a new session"),
		),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	)

	s.AddTool(tool, exploreHandler(deps))
}

// exploreResult is the explore_s3_data tool response.
type exploreResult struct {
	SessionID         string              `json:"session_id"`
	ConversationStage models.Stage        `json:"conversation_stage"`
	Profile           *models.DataProfile `json:"profile"`
}

func exploreHandler(deps *ExplorationToolDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		s3Path, err := req.RequireString("s3_path")
		if err != nil {
			return nil, err
		}
		s3Path = trimString(s3Path)
		if s3Path == "" {
			return NewErrorResult("invalid_parameters", "parameter 's3_path' cannot be empty"), nil
		}

		session := deps.Sessions.GetOrCreate(getOptionalString(req, "session_id"))

		profile, err := deps.Exploration.Explore(ctx, session, s3Path)
		if err != nil {
			return serviceResult(err)
		}
		deps.Sessions.Save(session)

		deps.Logger.Info("explored data",
			zap.String("session_id", session.ID),
			zap.String("s3_path", s3Path),
			zap.Int("columns", len(profile.Columns)))

		return jsonResult(exploreResult{
			SessionID:         session.ID,
			ConversationStage: session.Stage,
			Profile:           profile,
		})
	}
}
