package main

import (
	"context"
	"log"
	"net/http"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/glue"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sagemaker"
	"github.com/aws/aws-sdk-go-v2/service/sagemakerruntime"
	"go.uber.org/zap"

	"github.com/propense/feature-engine/pkg/automl"
	"github.com/propense/feature-engine/pkg/config"
	"github.com/propense/feature-engine/pkg/etl"
	"github.com/propense/feature-engine/pkg/handlers"
	"github.com/propense/feature-engine/pkg/llm"
	"github.com/propense/feature-engine/pkg/logging"
	"github.com/propense/feature-engine/pkg/mcp"
	"github.com/propense/feature-engine/pkg/mcp/tools"
	"github.com/propense/feature-engine/pkg/middleware"
	"github.com/propense/feature-engine/pkg/objectstore"
	"github.com/propense/feature-engine/pkg/sandbox"
	"github.com/propense/feature-engine/pkg/services"
	"github.com/propense/feature-engine/pkg/spark"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("aws_region", cfg.AWS.Region),
		zap.String("llm_provider", cfg.LLM.Provider),
		zap.String("script_bucket", cfg.AWS.ScriptBucket))

	// AWS-side collaborators share one SDK configuration.
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.AWS.Region))
	if err != nil {
		logger.Fatal("failed to load AWS configuration", zap.Error(err))
	}
	store := objectstore.NewS3Store(s3.NewFromConfig(awsCfg))
	runner := etl.NewRunner(glue.NewFromConfig(awsCfg), logger)
	predictor := automl.NewSageMakerPredictor(
		sagemaker.NewFromConfig(awsCfg),
		sagemakerruntime.NewFromConfig(awsCfg),
		cfg.AWS.SageMakerRoleARN,
		logger)

	client, err := llm.NewFromConfig(&cfg.LLM, logger)
	if err != nil {
		logger.Fatal("failed to create LLM client", zap.Error(err))
	}

	// Services
	sessions := services.NewSessionManager(cfg.Agent.SessionTTLMinutes, logger)
	registry := services.NewRegistry(cfg.Agent.AllowUnprofiledFeatures, logger)
	exploration := services.NewExplorationService(store, registry, cfg.Agent.SampleSize, logger)
	generation := services.NewGenerationService(client, registry, logger)
	assembler := spark.NewAssembler(spark.NewTranslator(client, logger), logger)
	jobs := services.NewJobService(assembler, runner, store, registry,
		cfg.AWS.ScriptBucket, cfg.AWS.GlueRoleARN, logger)
	training := services.NewTrainingService(predictor, store, cfg.Training, logger)
	chat := services.NewChatService(client, training, logger)
	sb := sandbox.NewHTTPClient(cfg.Sandbox.Endpoint, cfg.Sandbox.SessionTimeoutSeconds, logger)
	segmentation := services.NewSegmentationService(sb, store, client, logger)

	mux := http.NewServeMux()

	// Register handlers
	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewAgentHandler(sessions, chat, logger).RegisterRoutes(mux)
	handlers.NewSegmentationHandler(segmentation, logger).RegisterRoutes(mux)

	// MCP server with the workflow tools, served over streamable HTTP.
	mcpServer := mcp.NewServer("feature-engine", cfg.Version, logger)
	tools.RegisterExplorationTools(mcpServer.MCP(), &tools.ExplorationToolDeps{
		Sessions:    sessions,
		Exploration: exploration,
		Logger:      logger,
	})
	tools.RegisterFeatureTools(mcpServer.MCP(), &tools.FeatureToolDeps{
		Sessions:   sessions,
		Generation: generation,
		Registry:   registry,
		Logger:     logger,
	})
	tools.RegisterJobTools(mcpServer.MCP(), &tools.JobToolDeps{
		Sessions: sessions,
		Jobs:     jobs,
		Logger:   logger,
	})
	tools.RegisterTrainingTools(mcpServer.MCP(), &tools.TrainingToolDeps{
		Sessions: sessions,
		Training: training,
		Logger:   logger,
	})
	mux.Handle("/mcp", mcpServer.NewStreamableHTTPServer())

	handler := middleware.RequestLogger(logger)(mux)

	addr := cfg.BindAddr + ":" + cfg.Port
	logger.Info("starting feature-engine",
		zap.String("addr", addr),
		zap.String("version", cfg.Version))
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}
