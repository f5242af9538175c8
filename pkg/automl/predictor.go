// Package automl abstracts the managed AutoML backend used to train and
// serve propensity models.
package automl

import (
	"context"

	"github.com/propense/feature-engine/pkg/models"
)

// FitSpec describes one AutoML training job. TrainDataLocation points at
// a header-first CSV already uploaded to object storage.
type FitSpec struct {
	JobName           string
	TrainDataLocation string
	TargetColumn      string
	Binary            bool
	TimeLimitSeconds  int
	OutputPath        string
}

// Predictor is the AutoML collaborator: fit a model, inspect its
// leaderboard, deploy it behind a real-time endpoint, score single
// records, and tear the endpoint down. Fit blocks until the training job
// finishes or the context is cancelled.
type Predictor interface {
	Fit(ctx context.Context, spec FitSpec) error
	Leaderboard(ctx context.Context, jobName string) ([]models.LeaderboardEntry, error)
	Deploy(ctx context.Context, jobName string) (endpoint string, err error)
	PredictRealTime(ctx context.Context, endpoint string, recordCSV []byte) (string, error)
	Cleanup(ctx context.Context, endpoint string) error
}
