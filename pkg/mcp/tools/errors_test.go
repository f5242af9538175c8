package tools

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/propense/feature-engine/pkg/apperrors"
)

func TestNewErrorResult(t *testing.T) {
	res := NewErrorResult("not_found", "no such session")

	require.True(t, res.IsError)
	var e ErrorResponse
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &e))
	assert.True(t, e.Error)
	assert.Equal(t, "not_found", e.Code)
	assert.Equal(t, "no such session", e.Message)
}

func TestNewErrorResultWithDetails(t *testing.T) {
	res := NewErrorResultWithDetails("invalid_parameters", "bad role", map[string]any{"parameter": "role"})

	var e ErrorResponse
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &e))
	require.NotNil(t, e.Details)
}

func TestErrorCode(t *testing.T) {
	tests := []struct {
		err  error
		code string
	}{
		{apperrors.ErrNotFound, "not_found"},
		{apperrors.ErrValidation, "invalid_parameters"},
		{apperrors.ErrInvalidTargetModel, "invalid_target_model"},
		{apperrors.ErrMissingTargetColumn, "missing_target_column"},
		{apperrors.ErrPrecondition, "precondition_failed"},
		{apperrors.ErrTrainingInProgress, "training_in_progress"},
		{apperrors.ErrExternalService, "external_service_error"},
		{errors.New("boom"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.code, errorCode(tt.err))
		})
	}
}

func TestServiceResult(t *testing.T) {
	t.Run("wrapped sentinel becomes an error result", func(t *testing.T) {
		res, err := serviceResult(fmt.Errorf("job %q not found: %w", "x", apperrors.ErrNotFound))
		require.NoError(t, err)
		e := decodeError(t, res)
		assert.Equal(t, "not_found", e.Code)
	})

	t.Run("system failure stays a Go error", func(t *testing.T) {
		res, err := serviceResult(errors.New("connection reset"))
		require.Error(t, err)
		assert.Nil(t, res)
	})
}
