package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/propense/feature-engine/pkg/models"
	"github.com/propense/feature-engine/pkg/services"
)

// FeatureToolDeps contains dependencies for feature candidate tools.
type FeatureToolDeps struct {
	Sessions   *services.SessionManager
	Generation *services.GenerationService
	Registry   *services.Registry
	Logger     *zap.Logger
}

// RegisterFeatureTools registers the candidate generation, user suggestion
// and confirmation MCP tools.
func RegisterFeatureTools(s *server.MCPServer, deps *FeatureToolDeps) {
	registerGenerateFeaturesTool(s, deps)
	registerAddUserFeatureTool(s, deps)
	registerConfirmFeaturesTool(s, deps)
}

// generateResult is the generate_llm_features tool response.
type generateResult struct {
	SessionID         string                 `json:"session_id"`
	ConversationStage models.Stage           `json:"conversation_stage"`
	TotalCandidates   int                    `json:"total_candidates"`
	Candidates        *models.CandidateBatch `json:"candidates"`
}

func registerGenerateFeaturesTool(s *server.MCPServer, deps *FeatureToolDeps) {
	tool := mcp.NewTool("generate_llm_features",
		mcp.WithDescription("Generate feature candidates for the churn, call and spend-change propensity models from the explored data profile. Requires a prior explore_s3_data call on the session. Re-running replaces the previous batch."),
		mcp.WithString(
			"session_id",
			mcp.Required(),
			mcp.Description("Workflow session holding the data profile from explore_s3_data"),
		),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(true),
	)

	s.AddTool(tool, generateFeaturesHandler(deps))
}

func generateFeaturesHandler(deps *FeatureToolDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sessionID, err := req.RequireString("session_id")
		if err != nil {
			return nil, err
		}
		session := deps.Sessions.GetOrCreate(trimString(sessionID))

		batch, err := deps.Generation.Generate(ctx, session)
		if err != nil {
			return serviceResult(err)
		}
		deps.Sessions.Save(session)

		return jsonResult(generateResult{
			SessionID:         session.ID,
			ConversationStage: session.Stage,
			TotalCandidates:   batch.Count(),
			Candidates:        batch,
		})
	}
}

// addUserFeatureResult is the add_user_suggested_feature tool response.
type addUserFeatureResult struct {
	SessionID         string                  `json:"session_id"`
	ConversationStage models.Stage            `json:"conversation_stage"`
	Feature           models.FeatureCandidate `json:"feature"`
	UserFeatureCount  int                     `json:"user_feature_count"`
}

func registerAddUserFeatureTool(s *server.MCPServer, deps *FeatureToolDeps) {
	tool := mcp.NewTool("add_user_suggested_feature",
		mcp.WithDescription("Add an analyst-defined feature to the session alongside the generated candidates. Source columns are validated against the explored data profile."),
		mcp.WithString(
			"session_id",
			mcp.Required(),
			mcp.Description("Workflow session to add the feature to"),
		),
		mcp.WithString(
			"feature_name",
			mcp.Required(),
			mcp.Description("Name of the engineered feature (e.g., 'avg_monthly_spend')"),
		),
		mcp.WithString(
			"target_model",
			mcp.Required(),
			mcp.Description("Propensity model the feature serves: 'churn_propensity', 'call_propensity' or 'spend_change_propensity'"),
		),
		mcp.WithString(
			"description",
			mcp.Description("Optional - Business description of what the feature captures"),
		),
		mcp.WithString(
			"formula",
			mcp.Description("Optional - Transformation formula over source columns (e.g., 'total_spend / tenure_months')"),
		),
		mcp.WithArray(
			"source_columns",
			mcp.Description("Optional - Raw columns the formula reads; each must exist in the explored data"),
		),
		mcp.WithString(
			"rationale",
			mcp.Description("Optional - Why this feature should help the model"),
		),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, addUserFeatureHandler(deps))
}

func addUserFeatureHandler(deps *FeatureToolDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sessionID, err := req.RequireString("session_id")
		if err != nil {
			return nil, err
		}
		featureName, err := req.RequireString("feature_name")
		if err != nil {
			return nil, err
		}
		featureName = trimString(featureName)
		if featureName == "" {
			return NewErrorResult("invalid_parameters", "parameter 'feature_name' cannot be empty"), nil
		}
		targetModel, err := req.RequireString("target_model")
		if err != nil {
			return nil, err
		}

		session := deps.Sessions.GetOrCreate(trimString(sessionID))

		candidate := models.FeatureCandidate{
			FeatureName:   featureName,
			Description:   getOptionalString(req, "description"),
			Formula:       getOptionalString(req, "formula"),
			SourceColumns: getStringArray(req, "source_columns"),
			TargetModel:   models.TargetModel(trimString(targetModel)),
			Rationale:     getOptionalString(req, "rationale"),
		}
		if err := deps.Registry.AddUserCandidate(session, candidate); err != nil {
			return serviceResult(err)
		}
		deps.Sessions.Save(session)

		return jsonResult(addUserFeatureResult{
			SessionID:         session.ID,
			ConversationStage: session.Stage,
			Feature:           session.UserCandidates[len(session.UserCandidates)-1],
			UserFeatureCount:  len(session.UserCandidates),
		})
	}
}

// confirmResult is the confirm_final_feature_list tool response.
type confirmResult struct {
	SessionID         string                  `json:"session_id"`
	ConversationStage models.Stage            `json:"conversation_stage"`
	TotalFeatures     int                     `json:"total_features"`
	Breakdown         models.ProvenanceCounts `json:"breakdown"`
	Features          models.FeatureList      `json:"features"`
}

func registerConfirmFeaturesTool(s *server.MCPServer, deps *FeatureToolDeps) {
	tool := mcp.NewTool("confirm_final_feature_list",
		mcp.WithDescription("Freeze the feature list for pipeline creation: generated candidates selected by name, optionally all user-suggested features, and raw pass-through columns. Unknown confirmed names are not matched; raw columns missing from the profile are skipped."),
		mcp.WithString(
			"session_id",
			mcp.Required(),
			mcp.Description("Workflow session holding generated candidates"),
		),
		mcp.WithArray(
			"confirmed_features",
			mcp.Required(),
			mcp.Description("Names of generated candidates to keep (e.g., ['avg_monthly_spend', 'support_call_rate'])"),
		),
		mcp.WithBoolean(
			"include_user_features",
			mcp.Description("Optional - Include all user-suggested features (default true)"),
		),
		mcp.WithArray(
			"raw_columns",
			mcp.Description("Optional - Raw columns to pass through unchanged into the feature set"),
		),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, confirmFeaturesHandler(deps))
}

func confirmFeaturesHandler(deps *FeatureToolDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sessionID, err := req.RequireString("session_id")
		if err != nil {
			return nil, err
		}
		session := deps.Sessions.GetOrCreate(trimString(sessionID))

		confirmed := getStringArray(req, "confirmed_features")
		includeUser := getOptionalBool(req, "include_user_features", true)
		rawColumns := getStringArray(req, "raw_columns")

		final, err := deps.Registry.ConfirmFeatures(session, confirmed, includeUser, rawColumns)
		if err != nil {
			return serviceResult(err)
		}
		deps.Sessions.Save(session)

		return jsonResult(confirmResult{
			SessionID:         session.ID,
			ConversationStage: session.Stage,
			TotalFeatures:     len(final),
			Breakdown:         final.CountByProvenance(),
			Features:          final,
		})
	}
}
