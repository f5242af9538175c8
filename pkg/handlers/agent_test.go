package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/propense/feature-engine/pkg/llm"
	"github.com/propense/feature-engine/pkg/services"
)

// stubTrainingStatus fakes the training slot state.
type stubTrainingStatus struct {
	held bool
}

func (s *stubTrainingStatus) InProgress() bool {
	return s.held
}

func newAgentFixture(mock *llm.MockClient) (*AgentHandler, *stubTrainingStatus) {
	training := &stubTrainingStatus{}
	sessions := services.NewSessionManager(120, zap.NewNop())
	chat := services.NewChatService(mock, training, zap.NewNop())
	return NewAgentHandler(sessions, chat, zap.NewNop()), training
}

func invoke(t *testing.T, h *AgentHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/invocations", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Invoke(rec, req)
	return rec
}

func TestInvoke(t *testing.T) {
	mock := &llm.MockClient{
		CompleteFunc: func(ctx context.Context, req llm.Request) (string, error) {
			return "Let's explore your data.", nil
		},
	}
	h, _ := newAgentFixture(mock)

	rec := invoke(t, h, `{"prompt": "hi", "session_id": "s1"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp InvocationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Let's explore your data.", resp.Response)
	assert.Equal(t, "s1", resp.SessionID)
	assert.Equal(t, "initial", string(resp.ConversationStage))
	assert.False(t, resp.AvailableData.Explored)
}

func TestInvokeAssignsSessionID(t *testing.T) {
	h, _ := newAgentFixture(&llm.MockClient{
		CompleteFunc: func(ctx context.Context, req llm.Request) (string, error) { return "ok", nil },
	})

	rec := invoke(t, h, `{"prompt": "hi"}`)
	var resp InvocationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.SessionID)
}

func TestInvokeEmptyPromptUsesGreeting(t *testing.T) {
	var captured llm.Request
	h, _ := newAgentFixture(&llm.MockClient{
		CompleteFunc: func(ctx context.Context, req llm.Request) (string, error) {
			captured = req
			return "hello", nil
		},
	})

	rec := invoke(t, h, `{"session_id": "s1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, captured.Prompt, "ready to help with feature engineering")
}

func TestInvokeBadBody(t *testing.T) {
	h, _ := newAgentFixture(&llm.MockClient{})

	rec := invoke(t, h, `{"prompt": `)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInvokeTrainingBlocked(t *testing.T) {
	mock := &llm.MockClient{
		CompleteFunc: func(ctx context.Context, req llm.Request) (string, error) {
			t.Fatal("the LLM must not be called for a blocked training request")
			return "", nil
		},
	}
	h, training := newAgentFixture(mock)
	training.held = true

	rec := invoke(t, h, `{"prompt": "train the churn model", "session_id": "s1"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp InvocationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.TrainingBlocked)
	assert.Contains(t, resp.Response, "Training In Progress")
}

func TestInvokeLLMFailure(t *testing.T) {
	h, _ := newAgentFixture(&llm.MockClient{
		CompleteFunc: func(ctx context.Context, req llm.Request) (string, error) {
			return "", assert.AnError
		},
	})

	rec := invoke(t, h, `{"prompt": "hi", "session_id": "s1"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
