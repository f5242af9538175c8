package tools

import (
	"encoding/json"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/propense/feature-engine/pkg/apperrors"
)

// ErrorResponse represents a structured error in tool results.
// This is used to return actionable error information to the model
// as a successful tool result, ensuring error details are visible
// rather than being swallowed by the MCP client.
type ErrorResponse struct {
	Error   bool   `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// NewErrorResult creates a tool result containing a structured error.
// Use this for recoverable/actionable errors that the model should see
// and can potentially fix (e.g., invalid parameters, a skipped workflow
// step).
//
// Do NOT use this for system failures (AWS API errors, LLM provider
// outages) - those should still return Go errors.
func NewErrorResult(code, message string) *mcp.CallToolResult {
	return NewErrorResultWithDetails(code, message, nil)
}

// NewErrorResultWithDetails creates a tool result containing a structured
// error with additional details.
func NewErrorResultWithDetails(code, message string, details any) *mcp.CallToolResult {
	resp := ErrorResponse{
		Error:   true,
		Code:    code,
		Message: message,
		Details: details,
	}

	data, err := json.Marshal(resp)
	if err != nil {
		data = []byte(`{"error":true,"code":"internal","message":"failed to encode error"}`)
	}

	result := mcp.NewToolResultText(string(data))
	result.IsError = true
	return result
}

// errorCode maps the service sentinel errors to stable tool error codes.
// Unrecognized errors map to "" and are treated as system failures.
func errorCode(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return "not_found"
	case errors.Is(err, apperrors.ErrInvalidTargetModel):
		return "invalid_target_model"
	case errors.Is(err, apperrors.ErrValidation):
		return "invalid_parameters"
	case errors.Is(err, apperrors.ErrMissingTargetColumn):
		return "missing_target_column"
	case errors.Is(err, apperrors.ErrPrecondition):
		return "precondition_failed"
	case errors.Is(err, apperrors.ErrTrainingInProgress):
		return "training_in_progress"
	case errors.Is(err, apperrors.ErrExternalService):
		return "external_service_error"
	default:
		return ""
	}
}

// serviceResult converts a service error into either a structured error
// result (for recoverable workflow errors the model can act on) or a Go
// error (for system failures).
func serviceResult(err error) (*mcp.CallToolResult, error) {
	if code := errorCode(err); code != "" {
		return NewErrorResult(code, err.Error()), nil
	}
	return nil, err
}

// jsonResult encodes v as a successful JSON tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}
