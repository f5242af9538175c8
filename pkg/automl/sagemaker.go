package automl

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sagemaker"
	"github.com/aws/aws-sdk-go-v2/service/sagemaker/types"
	"github.com/aws/aws-sdk-go-v2/service/sagemakerruntime"
	"go.uber.org/zap"

	"github.com/propense/feature-engine/pkg/apperrors"
	"github.com/propense/feature-engine/pkg/models"
)

const (
	pollInterval     = 15 * time.Second
	inferenceVariant = "primary"
)

// sagemakerAPI is the subset of the SageMaker control-plane client used
// by the predictor. Narrowed for test injection.
type sagemakerAPI interface {
	CreateAutoMLJobV2(ctx context.Context, params *sagemaker.CreateAutoMLJobV2Input, optFns ...func(*sagemaker.Options)) (*sagemaker.CreateAutoMLJobV2Output, error)
	DescribeAutoMLJobV2(ctx context.Context, params *sagemaker.DescribeAutoMLJobV2Input, optFns ...func(*sagemaker.Options)) (*sagemaker.DescribeAutoMLJobV2Output, error)
	CreateModel(ctx context.Context, params *sagemaker.CreateModelInput, optFns ...func(*sagemaker.Options)) (*sagemaker.CreateModelOutput, error)
	CreateEndpointConfig(ctx context.Context, params *sagemaker.CreateEndpointConfigInput, optFns ...func(*sagemaker.Options)) (*sagemaker.CreateEndpointConfigOutput, error)
	CreateEndpoint(ctx context.Context, params *sagemaker.CreateEndpointInput, optFns ...func(*sagemaker.Options)) (*sagemaker.CreateEndpointOutput, error)
	DescribeEndpoint(ctx context.Context, params *sagemaker.DescribeEndpointInput, optFns ...func(*sagemaker.Options)) (*sagemaker.DescribeEndpointOutput, error)
	DeleteEndpoint(ctx context.Context, params *sagemaker.DeleteEndpointInput, optFns ...func(*sagemaker.Options)) (*sagemaker.DeleteEndpointOutput, error)
	DeleteEndpointConfig(ctx context.Context, params *sagemaker.DeleteEndpointConfigInput, optFns ...func(*sagemaker.Options)) (*sagemaker.DeleteEndpointConfigOutput, error)
	DeleteModel(ctx context.Context, params *sagemaker.DeleteModelInput, optFns ...func(*sagemaker.Options)) (*sagemaker.DeleteModelOutput, error)
}

// runtimeAPI is the data-plane client used for real-time scoring.
type runtimeAPI interface {
	InvokeEndpoint(ctx context.Context, params *sagemakerruntime.InvokeEndpointInput, optFns ...func(*sagemakerruntime.Options)) (*sagemakerruntime.InvokeEndpointOutput, error)
}

// SageMakerPredictor implements Predictor over SageMaker Autopilot
// tabular jobs and real-time endpoints.
type SageMakerPredictor struct {
	client       sagemakerAPI
	runtime      runtimeAPI
	roleARN      string
	instanceType types.ProductionVariantInstanceType
	logger       *zap.Logger
}

// NewSageMakerPredictor creates a predictor using the given SageMaker
// clients and execution role.
func NewSageMakerPredictor(client sagemakerAPI, runtime runtimeAPI, roleARN string, logger *zap.Logger) *SageMakerPredictor {
	return &SageMakerPredictor{
		client:       client,
		runtime:      runtime,
		roleARN:      roleARN,
		instanceType: types.ProductionVariantInstanceTypeMlM5Large,
		logger:       logger.Named("automl"),
	}
}

// Fit starts an Autopilot tabular job and blocks until it completes.
func (p *SageMakerPredictor) Fit(ctx context.Context, spec FitSpec) error {
	problemType := types.ProblemTypeRegression
	if spec.Binary {
		problemType = types.ProblemTypeBinaryClassification
	}

	_, err := p.client.CreateAutoMLJobV2(ctx, &sagemaker.CreateAutoMLJobV2Input{
		AutoMLJobName: aws.String(spec.JobName),
		RoleArn:       aws.String(p.roleARN),
		AutoMLJobInputDataConfig: []types.AutoMLJobChannel{{
			ChannelType: types.AutoMLChannelTypeTraining,
			ContentType: aws.String("text/csv;header=present"),
			DataSource: &types.AutoMLDataSource{
				S3DataSource: &types.AutoMLS3DataSource{
					S3DataType: types.AutoMLS3DataTypeS3Prefix,
					S3Uri:      aws.String(spec.TrainDataLocation),
				},
			},
		}},
		OutputDataConfig: &types.AutoMLOutputDataConfig{
			S3OutputPath: aws.String(spec.OutputPath),
		},
		AutoMLProblemTypeConfig: &types.AutoMLProblemTypeConfigMemberTabularJobConfig{
			Value: types.TabularJobConfig{
				TargetAttributeName: aws.String(spec.TargetColumn),
				ProblemType:         problemType,
				CompletionCriteria: &types.AutoMLJobCompletionCriteria{
					MaxAutoMLJobRuntimeInSeconds: aws.Int32(int32(spec.TimeLimitSeconds)),
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create automl job %s: %v: %w", spec.JobName, err, apperrors.ErrExternalService)
	}

	p.logger.Info("started automl job",
		zap.String("job_name", spec.JobName),
		zap.String("target", spec.TargetColumn),
		zap.Int("time_limit_seconds", spec.TimeLimitSeconds))

	return p.waitForJob(ctx, spec.JobName)
}

func (p *SageMakerPredictor) waitForJob(ctx context.Context, jobName string) error {
	for {
		out, err := p.client.DescribeAutoMLJobV2(ctx, &sagemaker.DescribeAutoMLJobV2Input{
			AutoMLJobName: aws.String(jobName),
		})
		if err != nil {
			return fmt.Errorf("describe automl job %s: %v: %w", jobName, err, apperrors.ErrExternalService)
		}

		switch out.AutoMLJobStatus {
		case types.AutoMLJobStatusCompleted:
			return nil
		case types.AutoMLJobStatusFailed, types.AutoMLJobStatusStopped:
			reason := aws.ToString(out.FailureReason)
			return fmt.Errorf("automl job %s ended with status %s: %s: %w", jobName, out.AutoMLJobStatus, reason, apperrors.ErrExternalService)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}

// Leaderboard returns the best candidate of a completed job as a single
// leaderboard row. Autopilot exposes only the winning candidate through
// the describe API.
func (p *SageMakerPredictor) Leaderboard(ctx context.Context, jobName string) ([]models.LeaderboardEntry, error) {
	out, err := p.client.DescribeAutoMLJobV2(ctx, &sagemaker.DescribeAutoMLJobV2Input{
		AutoMLJobName: aws.String(jobName),
	})
	if err != nil {
		return nil, fmt.Errorf("describe automl job %s: %v: %w", jobName, err, apperrors.ErrExternalService)
	}
	if out.BestCandidate == nil {
		return nil, fmt.Errorf("automl job %s has no best candidate", jobName)
	}

	entry := models.LeaderboardEntry{Model: aws.ToString(out.BestCandidate.CandidateName)}
	if metric := out.BestCandidate.FinalAutoMLJobObjectiveMetric; metric != nil {
		entry.Score = float64(aws.ToFloat32(metric.Value))
	}
	return []models.LeaderboardEntry{entry}, nil
}

// Deploy stands up a real-time endpoint for the best candidate of a
// completed job and waits until it is in service. The endpoint, its
// config and its model all share the job name.
func (p *SageMakerPredictor) Deploy(ctx context.Context, jobName string) (string, error) {
	out, err := p.client.DescribeAutoMLJobV2(ctx, &sagemaker.DescribeAutoMLJobV2Input{
		AutoMLJobName: aws.String(jobName),
	})
	if err != nil {
		return "", fmt.Errorf("describe automl job %s: %v: %w", jobName, err, apperrors.ErrExternalService)
	}
	if out.BestCandidate == nil || len(out.BestCandidate.InferenceContainers) == 0 {
		return "", fmt.Errorf("automl job %s has no deployable candidate", jobName)
	}

	containers := make([]types.ContainerDefinition, 0, len(out.BestCandidate.InferenceContainers))
	for _, c := range out.BestCandidate.InferenceContainers {
		containers = append(containers, types.ContainerDefinition{
			Image:        c.Image,
			ModelDataUrl: c.ModelDataUrl,
			Environment:  c.Environment,
		})
	}

	if _, err := p.client.CreateModel(ctx, &sagemaker.CreateModelInput{
		ModelName:        aws.String(jobName),
		ExecutionRoleArn: aws.String(p.roleARN),
		Containers:       containers,
	}); err != nil {
		return "", fmt.Errorf("create model %s: %v: %w", jobName, err, apperrors.ErrExternalService)
	}

	if _, err := p.client.CreateEndpointConfig(ctx, &sagemaker.CreateEndpointConfigInput{
		EndpointConfigName: aws.String(jobName),
		ProductionVariants: []types.ProductionVariant{{
			VariantName:          aws.String(inferenceVariant),
			ModelName:            aws.String(jobName),
			InstanceType:         p.instanceType,
			InitialInstanceCount: aws.Int32(1),
		}},
	}); err != nil {
		return "", fmt.Errorf("create endpoint config %s: %v: %w", jobName, err, apperrors.ErrExternalService)
	}

	if _, err := p.client.CreateEndpoint(ctx, &sagemaker.CreateEndpointInput{
		EndpointName:       aws.String(jobName),
		EndpointConfigName: aws.String(jobName),
	}); err != nil {
		return "", fmt.Errorf("create endpoint %s: %v: %w", jobName, err, apperrors.ErrExternalService)
	}

	if err := p.waitForEndpoint(ctx, jobName); err != nil {
		return "", err
	}

	p.logger.Info("deployed inference endpoint", zap.String("endpoint", jobName))
	return jobName, nil
}

func (p *SageMakerPredictor) waitForEndpoint(ctx context.Context, endpoint string) error {
	for {
		out, err := p.client.DescribeEndpoint(ctx, &sagemaker.DescribeEndpointInput{
			EndpointName: aws.String(endpoint),
		})
		if err != nil {
			return fmt.Errorf("describe endpoint %s: %v: %w", endpoint, err, apperrors.ErrExternalService)
		}

		switch out.EndpointStatus {
		case types.EndpointStatusInService:
			return nil
		case types.EndpointStatusFailed:
			return fmt.Errorf("endpoint %s failed: %s: %w", endpoint, aws.ToString(out.FailureReason), apperrors.ErrExternalService)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}

// PredictRealTime scores one headerless CSV record against a deployed
// endpoint and returns the raw prediction text.
func (p *SageMakerPredictor) PredictRealTime(ctx context.Context, endpoint string, recordCSV []byte) (string, error) {
	out, err := p.runtime.InvokeEndpoint(ctx, &sagemakerruntime.InvokeEndpointInput{
		EndpointName: aws.String(endpoint),
		ContentType:  aws.String("text/csv"),
		Body:         recordCSV,
	})
	if err != nil {
		return "", fmt.Errorf("invoke endpoint %s: %v: %w", endpoint, err, apperrors.ErrExternalService)
	}
	return strings.TrimSpace(string(out.Body)), nil
}

// Cleanup tears down the endpoint and its associated config and model.
// Partial failures are joined so every resource gets a delete attempt.
func (p *SageMakerPredictor) Cleanup(ctx context.Context, endpoint string) error {
	var errs []string
	if _, err := p.client.DeleteEndpoint(ctx, &sagemaker.DeleteEndpointInput{EndpointName: aws.String(endpoint)}); err != nil {
		errs = append(errs, fmt.Sprintf("delete endpoint: %v", err))
	}
	if _, err := p.client.DeleteEndpointConfig(ctx, &sagemaker.DeleteEndpointConfigInput{EndpointConfigName: aws.String(endpoint)}); err != nil {
		errs = append(errs, fmt.Sprintf("delete endpoint config: %v", err))
	}
	if _, err := p.client.DeleteModel(ctx, &sagemaker.DeleteModelInput{ModelName: aws.String(endpoint)}); err != nil {
		errs = append(errs, fmt.Sprintf("delete model: %v", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("cleanup %s: %s: %w", endpoint, strings.Join(errs, "; "), apperrors.ErrExternalService)
	}
	p.logger.Info("cleaned up deployment", zap.String("endpoint", endpoint))
	return nil
}

var _ Predictor = (*SageMakerPredictor)(nil)
