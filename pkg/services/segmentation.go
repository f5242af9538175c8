package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/propense/feature-engine/pkg/llm"
	"github.com/propense/feature-engine/pkg/objectstore"
	"github.com/propense/feature-engine/pkg/prompts"
	"github.com/propense/feature-engine/pkg/sandbox"
)

const segmentationMaxTokens = 4000

// sandboxDataFile is where the customer dataset is staged inside a
// session.
const sandboxDataFile = "data.csv"

// SegmentationResult carries the generated analysis code and its
// execution output.
type SegmentationResult struct {
	Code     string `json:"code"`
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr,omitempty"`
	ExitCode int    `json:"exit_code"`
}

// SegmentationService answers open-ended segmentation questions by
// generating analysis code with the LLM and executing it against the
// customer dataset inside a sandboxed interpreter.
type SegmentationService struct {
	sandbox sandbox.Client
	store   objectstore.Store
	client  llm.Client
	logger  *zap.Logger
}

// NewSegmentationService creates a segmentation service.
func NewSegmentationService(sb sandbox.Client, store objectstore.Store, client llm.Client, logger *zap.Logger) *SegmentationService {
	return &SegmentationService{
		sandbox: sb,
		store:   store,
		client:  client,
		logger:  logger.Named("segmentation"),
	}
}

// Analyze loads the dataset at dataLocation into a fresh sandbox
// session, asks the LLM for analysis code answering the prompt, and runs
// it. The session is stopped on every exit path once started.
func (s *SegmentationService) Analyze(ctx context.Context, dataLocation, prompt string) (*SegmentationResult, error) {
	data, err := s.store.Get(ctx, dataLocation)
	if err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", dataLocation, err)
	}

	sessionID, err := s.sandbox.Start(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := s.sandbox.Stop(ctx, sessionID); err != nil {
			s.logger.Warn("could not stop sandbox session",
				zap.String("session_id", sessionID), zap.Error(err))
		}
	}()

	if err := s.sandbox.WriteFiles(ctx, sessionID, []sandbox.File{{
		Path:    sandboxDataFile,
		Content: string(data),
	}}); err != nil {
		return nil, err
	}

	response, err := s.client.Complete(ctx, llm.Request{
		System:    prompts.SegmentationSystemPrompt,
		Prompt:    prompt,
		MaxTokens: segmentationMaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("generate analysis code: %w", err)
	}
	code := llm.StripCodeFence(response)

	execResult, err := s.sandbox.Execute(ctx, sessionID, code)
	if err != nil {
		return nil, err
	}

	s.logger.Info("segmentation analysis executed",
		zap.String("data_location", dataLocation),
		zap.Int("exit_code", execResult.ExitCode))
	return &SegmentationResult{
		Code:     code,
		Stdout:   execResult.Stdout,
		Stderr:   execResult.Stderr,
		ExitCode: execResult.ExitCode,
	}, nil
}
