package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/propense/feature-engine/pkg/llm"
	"github.com/propense/feature-engine/pkg/models"
	"github.com/propense/feature-engine/pkg/prompts"
)

const chatMaxTokens = 4000

// trainingKeywords mark chat requests that would start a training run.
// Matching requests are refused while the training slot is held instead
// of queueing behind the active run.
var trainingKeywords = []string{"train", "training", "model", "propensity"}

// trainingBlockedNotice is returned verbatim when a training-flavored
// request arrives during an active run.
const trainingBlockedNotice = `**Training In Progress**

A model training job is currently running. Please wait for it to complete before starting a new training session.

The existing training process is running and should not be interrupted. You can explore other features while waiting, or try again in a few minutes. Training typically takes 2-5 minutes depending on data size and model complexity.`

// TrainingStatus reports whether the training slot is held. Implemented
// by TrainingService.
type TrainingStatus interface {
	InProgress() bool
}

// ChatService is the conversational boundary of the feature agent. It
// relays the user message to the LLM with the agent instructions and a
// stage-aware context block describing what has happened in the session
// and what comes next.
type ChatService struct {
	client   llm.Client
	training TrainingStatus
	logger   *zap.Logger
}

// NewChatService creates a chat service.
func NewChatService(client llm.Client, training TrainingStatus, logger *zap.Logger) *ChatService {
	return &ChatService{
		client:   client,
		training: training,
		logger:   logger.Named("chat"),
	}
}

// TrainingBlocked reports whether the message asks for training while a
// run holds the slot.
func (c *ChatService) TrainingBlocked(message string) bool {
	if !c.training.InProgress() {
		return false
	}
	lower := strings.ToLower(message)
	for _, keyword := range trainingKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// BlockedNotice is the reply for a blocked training request.
func (c *ChatService) BlockedNotice() string {
	return trainingBlockedNotice
}

// Respond produces the agent reply for one user message.
func (c *ChatService) Respond(ctx context.Context, session *models.SessionState, message string) (string, error) {
	full := message + StageContext(session)
	response, err := c.client.Complete(ctx, llm.Request{
		System:    prompts.AgentInstructions,
		Prompt:    full,
		MaxTokens: chatMaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("agent invocation: %w", err)
	}
	return response, nil
}

// StageContext renders the session's progress and the suggested next
// step as a context block appended to every user message.
func StageContext(s *models.SessionState) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n\nConversation Stage: %s", s.Stage)

	switch s.Stage {
	case models.StageExplored:
		if s.Profile != nil {
			fmt.Fprintf(&b, "\nExplored Data: %d records, %d columns", s.Profile.SampleRecords, len(s.Profile.Columns))
		}
	case models.StageCandidatesGenerated:
		if s.Candidates != nil {
			fmt.Fprintf(&b, "\nGenerated Features: %d candidates for 3 propensity models", s.Candidates.Count())
		}
	case models.StageUserCandidatesAdded:
		fmt.Fprintf(&b, "\nUser Features: %d suggested", len(s.UserCandidates))
	case models.StageConfirmed:
		fmt.Fprintf(&b, "\nConfirmed Features: %d total features", len(s.Features))
	case models.StageJobCreated:
		fmt.Fprintf(&b, "\nGlue Jobs: %d created", len(s.Jobs))
	}

	switch s.Stage {
	case models.StageInitial:
		b.WriteString("\nNext: Use explore_s3_data to analyze your raw data")
	case models.StageExplored:
		b.WriteString("\nNext: Use generate_llm_features to get AI-generated feature suggestions")
	case models.StageCandidatesGenerated:
		b.WriteString("\nNext: Review generated features and use add_user_suggested_feature to add your own")
	case models.StageUserCandidatesAdded:
		b.WriteString("\nNext: Use confirm_final_feature_list to finalize your feature selection")
	case models.StageConfirmed:
		b.WriteString("\nNext: Use create_glue_job_with_confirmed_features to build the data pipeline")
	case models.StageJobCreated:
		b.WriteString("\nNext: Use run_glue_job to execute feature engineering, then train_propensity_models for ML training (specify model_type: churn, call, or spend_change)")
	}

	return b.String()
}
