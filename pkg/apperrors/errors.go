// Package apperrors defines sentinel errors shared across feature-engine.
package apperrors

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrPrecondition        = errors.New("operation invoked before its prerequisites")
	ErrValidation          = errors.New("validation failed")
	ErrInvalidTargetModel  = errors.New("invalid target model")
	ErrMissingTargetColumn = errors.New("target column not present in dataset")
	ErrTrainingInProgress  = errors.New("a training run is already in progress")
	ErrExternalService     = errors.New("external service failure")
)
