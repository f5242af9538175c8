package automl

import (
	"context"

	"github.com/propense/feature-engine/pkg/models"
)

// MockPredictor is a configurable mock for testing training flows.
// Set the function fields to control behavior in tests.
type MockPredictor struct {
	FitFunc             func(ctx context.Context, spec FitSpec) error
	LeaderboardFunc     func(ctx context.Context, jobName string) ([]models.LeaderboardEntry, error)
	DeployFunc          func(ctx context.Context, jobName string) (string, error)
	PredictRealTimeFunc func(ctx context.Context, endpoint string, recordCSV []byte) (string, error)
	CleanupFunc         func(ctx context.Context, endpoint string) error

	// Call tracking for verification
	FitCalls     []FitSpec
	PredictCalls int
	CleanupCalls []string
}

// Fit implements Predictor.
func (m *MockPredictor) Fit(ctx context.Context, spec FitSpec) error {
	m.FitCalls = append(m.FitCalls, spec)
	if m.FitFunc != nil {
		return m.FitFunc(ctx, spec)
	}
	return nil
}

// Leaderboard implements Predictor.
func (m *MockPredictor) Leaderboard(ctx context.Context, jobName string) ([]models.LeaderboardEntry, error) {
	if m.LeaderboardFunc != nil {
		return m.LeaderboardFunc(ctx, jobName)
	}
	return nil, nil
}

// Deploy implements Predictor.
func (m *MockPredictor) Deploy(ctx context.Context, jobName string) (string, error) {
	if m.DeployFunc != nil {
		return m.DeployFunc(ctx, jobName)
	}
	return jobName, nil
}

// PredictRealTime implements Predictor.
func (m *MockPredictor) PredictRealTime(ctx context.Context, endpoint string, recordCSV []byte) (string, error) {
	m.PredictCalls++
	if m.PredictRealTimeFunc != nil {
		return m.PredictRealTimeFunc(ctx, endpoint, recordCSV)
	}
	return "0", nil
}

// Cleanup implements Predictor.
func (m *MockPredictor) Cleanup(ctx context.Context, endpoint string) error {
	m.CleanupCalls = append(m.CleanupCalls, endpoint)
	if m.CleanupFunc != nil {
		return m.CleanupFunc(ctx, endpoint)
	}
	return nil
}

// Ensure MockPredictor implements Predictor at compile time.
var _ Predictor = (*MockPredictor)(nil)
