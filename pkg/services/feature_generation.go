package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/propense/feature-engine/pkg/apperrors"
	"github.com/propense/feature-engine/pkg/llm"
	"github.com/propense/feature-engine/pkg/models"
	"github.com/propense/feature-engine/pkg/prompts"
)

const (
	generationMaxTokens   = 4000
	generationTemperature = 0.1
)

// GenerationService produces feature candidates from a session's data
// profile via the LLM. The response must decode as a complete candidate
// batch; partial or malformed JSON fails the call rather than yielding a
// truncated batch.
type GenerationService struct {
	client   llm.Client
	registry *Registry
	logger   *zap.Logger
}

// NewGenerationService creates a candidate generation service.
func NewGenerationService(client llm.Client, registry *Registry, logger *zap.Logger) *GenerationService {
	return &GenerationService{
		client:   client,
		registry: registry,
		logger:   logger.Named("feature-generation"),
	}
}

// Generate runs one candidate generation round for the session. Requires
// a prior exploration. A repeated call replaces the previous batch.
func (g *GenerationService) Generate(ctx context.Context, session *models.SessionState) (*models.CandidateBatch, error) {
	if session.Profile == nil {
		return nil, fmt.Errorf("candidate generation requires data exploration first: %w", apperrors.ErrPrecondition)
	}

	prompt, err := prompts.BuildFeatureGenerationPrompt(session.Profile)
	if err != nil {
		return nil, err
	}

	response, err := g.client.Complete(ctx, llm.Request{
		System:      prompts.FeatureGenerationSystemPrompt,
		Prompt:      prompt,
		MaxTokens:   generationMaxTokens,
		Temperature: generationTemperature,
	})
	if err != nil {
		return nil, fmt.Errorf("candidate generation: %w", err)
	}

	batch, err := llm.ParseJSONResponse[models.CandidateBatch](response)
	if err != nil {
		g.logger.Warn("discarding malformed candidate response", zap.Error(err))
		return nil, fmt.Errorf("parse candidate response: %w", err)
	}

	// Tag every candidate with its model and provenance; the LLM contract
	// carries them positionally, not per object.
	for model, candidates := range batch.ByModel {
		for i := range candidates {
			candidates[i].TargetModel = model
			candidates[i].Provenance = models.ProvenanceGenerated
		}
	}

	if err := g.registry.RecordCandidates(session, &batch); err != nil {
		return nil, err
	}
	return &batch, nil
}
