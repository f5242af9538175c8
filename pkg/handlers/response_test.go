package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/propense/feature-engine/pkg/apperrors"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{apperrors.ErrNotFound, http.StatusNotFound},
		{apperrors.ErrValidation, http.StatusBadRequest},
		{apperrors.ErrInvalidTargetModel, http.StatusBadRequest},
		{apperrors.ErrPrecondition, http.StatusConflict},
		{apperrors.ErrMissingTargetColumn, http.StatusConflict},
		{apperrors.ErrTrainingInProgress, http.StatusTooManyRequests},
		{apperrors.ErrExternalService, http.StatusBadGateway},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d", tt.status), func(t *testing.T) {
			assert.Equal(t, tt.status, StatusFor(tt.err))
			assert.Equal(t, tt.status, StatusFor(fmt.Errorf("wrapped: %w", tt.err)))
		})
	}
}
