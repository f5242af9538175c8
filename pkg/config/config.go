// Package config loads feature-engine configuration.
package config

import (
	"fmt"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for feature-engine.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (API keys) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8080"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// AWS-side collaborators
	AWS AWSConfig `yaml:"aws"`

	// LLM provider configuration
	LLM LLMConfig `yaml:"llm"`

	// Agent behavior switches
	Agent AgentConfig `yaml:"agent"`

	// Training defaults
	Training TrainingConfig `yaml:"training"`

	// Code-execution sandbox for the segmentation agent
	Sandbox SandboxConfig `yaml:"sandbox"`
}

// AWSConfig holds region and bucket settings shared by the S3, Glue and
// SageMaker collaborators.
type AWSConfig struct {
	Region string `yaml:"region" env:"AWS_REGION" env-default:"us-east-1"`

	// ScriptBucket is where assembled Glue scripts are uploaded.
	ScriptBucket string `yaml:"script_bucket" env:"GLUE_SCRIPT_BUCKET" env-default:""`

	// GlueRoleARN is the default execution role for submitted jobs.
	// Callers may override it per job.
	GlueRoleARN string `yaml:"glue_role_arn" env:"GLUE_ROLE_ARN" env-default:""`

	// SageMakerRoleARN is the execution role passed to AutoML jobs.
	SageMakerRoleARN string `yaml:"sagemaker_role_arn" env:"SAGEMAKER_ROLE_ARN" env-default:""`
}

// LLMConfig selects and configures the hosted language-model collaborator.
type LLMConfig struct {
	// Provider is "anthropic" or "openai".
	Provider string `yaml:"provider" env:"LLM_PROVIDER" env-default:"anthropic"`

	// Model is the model identifier for the selected provider.
	Model string `yaml:"model" env:"LLM_MODEL" env-default:"claude-3-7-sonnet-20250219"`

	// BaseURL overrides the provider endpoint. Required for OpenAI-compatible
	// gateways, optional for Anthropic.
	BaseURL string `yaml:"base_url" env:"LLM_BASE_URL" env-default:""`

	APIKey string `yaml:"-" env:"LLM_API_KEY"` // Secret - not in YAML
}

// AgentConfig holds feature-agent behavior switches.
type AgentConfig struct {
	// SampleSize is how many records are read when profiling a dataset.
	SampleSize int `yaml:"sample_size" env:"AGENT_SAMPLE_SIZE" env-default:"1000"`

	// AllowUnprofiledFeatures permits AddUserCandidate before any exploration
	// has recorded a data profile. When false (the default) such calls fail
	// instead of silently skipping column validation.
	AllowUnprofiledFeatures bool `yaml:"allow_unprofiled_features" env:"AGENT_ALLOW_UNPROFILED_FEATURES" env-default:"false"`

	// SessionTTLMinutes is how long idle sessions are retained.
	SessionTTLMinutes int `yaml:"session_ttl_minutes" env:"AGENT_SESSION_TTL_MINUTES" env-default:"120"`
}

// TrainingConfig holds AutoML training defaults.
type TrainingConfig struct {
	// TimeLimitSeconds is the default fit time limit.
	TimeLimitSeconds int `yaml:"time_limit_seconds" env:"TRAINING_TIME_LIMIT_SECONDS" env-default:"120"`

	// PredictionCap bounds the sequential per-record prediction loop.
	PredictionCap int `yaml:"prediction_cap" env:"TRAINING_PREDICTION_CAP" env-default:"300"`

	// ModelsOutputPath is the default s3:// prefix for trained models.
	ModelsOutputPath string `yaml:"models_output_path" env:"TRAINING_MODELS_OUTPUT_PATH" env-default:""`
}

// SandboxConfig holds the code-interpreter collaborator settings.
type SandboxConfig struct {
	Endpoint              string `yaml:"endpoint" env:"SANDBOX_ENDPOINT" env-default:""`
	SessionTimeoutSeconds int    `yaml:"session_timeout_seconds" env:"SANDBOX_SESSION_TIMEOUT_SECONDS" env-default:"1200"`
}

// Load reads configuration from config.yaml with environment variable overrides.
// The version parameter is injected at build time and set on the returned Config.
func Load(version string) (*Config, error) {
	cfg := &Config{Version: version}

	if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
		return nil, fmt.Errorf("failed to read config.yaml: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch strings.ToLower(c.LLM.Provider) {
	case "anthropic":
	case "openai":
		if c.LLM.BaseURL == "" {
			return fmt.Errorf("llm.base_url is required for the openai provider")
		}
	default:
		return fmt.Errorf("unknown llm provider %q", c.LLM.Provider)
	}

	if c.Agent.SampleSize <= 0 {
		return fmt.Errorf("agent.sample_size must be positive")
	}
	if c.Training.PredictionCap <= 0 {
		return fmt.Errorf("training.prediction_cap must be positive")
	}

	return nil
}
