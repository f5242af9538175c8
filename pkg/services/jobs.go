package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/propense/feature-engine/pkg/apperrors"
	"github.com/propense/feature-engine/pkg/etl"
	"github.com/propense/feature-engine/pkg/models"
	"github.com/propense/feature-engine/pkg/objectstore"
	"github.com/propense/feature-engine/pkg/spark"
)

// JobService turns a confirmed feature list into a deployed ETL job:
// assemble the script, upload it, register the Glue job, and track it on
// the session.
type JobService struct {
	assembler      *spark.Assembler
	runner         *etl.Runner
	store          objectstore.Store
	registry       *Registry
	scriptBucket   string
	defaultRoleARN string
	logger         *zap.Logger
}

// NewJobService creates a job service.
func NewJobService(assembler *spark.Assembler, runner *etl.Runner, store objectstore.Store, registry *Registry, scriptBucket, defaultRoleARN string, logger *zap.Logger) *JobService {
	return &JobService{
		assembler:      assembler,
		runner:         runner,
		store:          store,
		registry:       registry,
		scriptBucket:   scriptBucket,
		defaultRoleARN: defaultRoleARN,
		logger:         logger.Named("jobs"),
	}
}

// CreateJob assembles and deploys a Glue job for the session's confirmed
// features. roleARN falls back to the configured default when empty.
func (j *JobService) CreateJob(ctx context.Context, session *models.SessionState, jobName, outputPath, roleARN string) (*models.JobRecord, error) {
	if len(session.Features) == 0 {
		return nil, fmt.Errorf("no confirmed features, confirm the feature list first: %w", apperrors.ErrPrecondition)
	}
	if session.SourceLocation == "" {
		return nil, fmt.Errorf("no explored data source, explore data first: %w", apperrors.ErrPrecondition)
	}
	if jobName == "" {
		return nil, fmt.Errorf("job_name is required: %w", apperrors.ErrValidation)
	}
	if roleARN == "" {
		roleARN = j.defaultRoleARN
	}

	var knownColumns []string
	if session.Profile != nil {
		knownColumns = session.Profile.Columns
	}
	script, err := j.assembler.Assemble(ctx, session.Features, knownColumns)
	if err != nil {
		return nil, err
	}

	scriptLocation := etl.ScriptLocation(j.scriptBucket, jobName)
	if err := j.store.Put(ctx, scriptLocation, []byte(script), "text/plain"); err != nil {
		return nil, fmt.Errorf("upload glue script: %v: %w", err, apperrors.ErrExternalService)
	}

	if err := j.runner.CreateJob(ctx, etl.JobSpec{
		Name:           jobName,
		RoleARN:        roleARN,
		ScriptLocation: scriptLocation,
		InputPath:      session.SourceLocation,
		OutputPath:     outputPath,
		FeatureCount:   len(session.Features),
	}); err != nil {
		return nil, err
	}

	record := &models.JobRecord{
		JobName:      jobName,
		InputPath:    session.SourceLocation,
		OutputPath:   outputPath,
		FeatureCount: len(session.Features),
		Breakdown:    session.Features.CountByProvenance(),
		Script:       script,
		Status:       models.JobStatusCreated,
		CreatedAt:    time.Now().UTC(),
	}
	j.registry.RecordJobCreation(session, record)
	return record, nil
}

// ScriptLocation returns where the named job's assembled script lives in
// the script bucket.
func (j *JobService) ScriptLocation(jobName string) string {
	return etl.ScriptLocation(j.scriptBucket, jobName)
}

// RunJob starts a previously created job and returns its run ID.
func (j *JobService) RunJob(ctx context.Context, session *models.SessionState, jobName string) (string, error) {
	job := session.FindJob(jobName)
	if job == nil {
		return "", fmt.Errorf("job %q not found in session history, create it first: %w", jobName, apperrors.ErrNotFound)
	}

	runID, err := j.runner.StartRun(ctx, jobName, job.InputPath, job.OutputPath, job.FeatureCount)
	if err != nil {
		return "", err
	}

	if err := j.registry.RecordJobRun(session, jobName, runID); err != nil {
		return "", err
	}

	j.logger.Info("started job run",
		zap.String("session_id", session.ID),
		zap.String("job_name", jobName),
		zap.String("run_id", runID))
	return runID, nil
}
