// Package etl manages the AWS Glue jobs that materialize confirmed
// feature lists.
package etl

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/glue"
	"github.com/aws/aws-sdk-go-v2/service/glue/types"
	"go.uber.org/zap"

	"github.com/propense/feature-engine/pkg/apperrors"
)

// Fixed job sizing. Feature engineering workloads are small and uniform,
// so the runner does not expose capacity knobs.
const (
	glueVersion     = "3.0"
	pythonVersion   = "3"
	commandName     = "glueetl"
	maxRetries      = 1
	timeoutMinutes  = 120
	numberOfWorkers = 2
)

// GlueAPI is the subset of the Glue client used by the runner. Narrowed
// for test injection.
type GlueAPI interface {
	CreateJob(ctx context.Context, params *glue.CreateJobInput, optFns ...func(*glue.Options)) (*glue.CreateJobOutput, error)
	StartJobRun(ctx context.Context, params *glue.StartJobRunInput, optFns ...func(*glue.Options)) (*glue.StartJobRunOutput, error)
}

// JobSpec describes one feature engineering job to be registered with
// Glue. ScriptLocation must already hold the uploaded script.
type JobSpec struct {
	Name           string
	RoleARN        string
	ScriptLocation string
	InputPath      string
	OutputPath     string
	FeatureCount   int
}

// Runner registers and starts Glue jobs.
type Runner struct {
	client GlueAPI
	logger *zap.Logger
}

// NewRunner creates a Glue job runner.
func NewRunner(client GlueAPI, logger *zap.Logger) *Runner {
	return &Runner{
		client: client,
		logger: logger.Named("glue-runner"),
	}
}

// CreateJob registers the job definition with Glue. The data paths and
// feature count are baked into the default arguments so a run without
// overrides reproduces the confirmed configuration.
func (r *Runner) CreateJob(ctx context.Context, spec JobSpec) error {
	_, err := r.client.CreateJob(ctx, &glue.CreateJobInput{
		Name: aws.String(spec.Name),
		Role: aws.String(spec.RoleARN),
		Command: &types.JobCommand{
			Name:           aws.String(commandName),
			ScriptLocation: aws.String(spec.ScriptLocation),
			PythonVersion:  aws.String(pythonVersion),
		},
		DefaultArguments: map[string]string{
			"--job-language":                     "python",
			"--enable-metrics":                   "",
			"--enable-continuous-cloudwatch-log": "true",
			"--input_path":                       spec.InputPath,
			"--output_path":                      spec.OutputPath,
			"--feature_count":                    strconv.Itoa(spec.FeatureCount),
		},
		MaxRetries:      maxRetries,
		Timeout:         aws.Int32(timeoutMinutes),
		GlueVersion:     aws.String(glueVersion),
		WorkerType:      types.WorkerTypeG1x,
		NumberOfWorkers: aws.Int32(numberOfWorkers),
	})
	if err != nil {
		return fmt.Errorf("create glue job %s: %v: %w", spec.Name, err, apperrors.ErrExternalService)
	}

	r.logger.Info("created glue job",
		zap.String("job_name", spec.Name),
		zap.String("script_location", spec.ScriptLocation),
		zap.Int("feature_count", spec.FeatureCount))
	return nil
}

// StartRun starts a run of a previously created job and returns the run
// ID assigned by Glue.
func (r *Runner) StartRun(ctx context.Context, jobName, inputPath, outputPath string, featureCount int) (string, error) {
	out, err := r.client.StartJobRun(ctx, &glue.StartJobRunInput{
		JobName: aws.String(jobName),
		Arguments: map[string]string{
			"--input_path":    inputPath,
			"--output_path":   outputPath,
			"--feature_count": strconv.Itoa(featureCount),
		},
	})
	if err != nil {
		return "", fmt.Errorf("start glue job %s: %v: %w", jobName, err, apperrors.ErrExternalService)
	}

	runID := aws.ToString(out.JobRunId)
	r.logger.Info("started glue job run",
		zap.String("job_name", jobName),
		zap.String("run_id", runID))
	return runID, nil
}

// ScriptLocation builds the canonical script object location for a job.
func ScriptLocation(scriptBucket, jobName string) string {
	return fmt.Sprintf("s3://%s/glue-scripts/%s.py", scriptBucket, jobName)
}
