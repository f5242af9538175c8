package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/propense/feature-engine/pkg/models"
	"github.com/propense/feature-engine/pkg/services"
)

// InvocationRequest is one chat turn with the feature agent.
type InvocationRequest struct {
	Prompt    string `json:"prompt"`
	SessionID string `json:"session_id"`
}

// InvocationResponse is the agent's reply plus a structured view of the
// session's progress.
type InvocationResponse struct {
	Response          string        `json:"response"`
	ConversationStage models.Stage  `json:"conversation_stage"`
	SessionID         string        `json:"session_id"`
	TrainingBlocked   bool          `json:"training_blocked,omitempty"`
	AvailableData     models.Counts `json:"available_data"`
}

// defaultPrompt greets a caller that sends an empty prompt.
const defaultPrompt = "Hello! I'm ready to help with feature engineering for your telecom migration propensity models. Let's start by exploring your S3 data."

// AgentHandler is the chat boundary of the feature agent.
type AgentHandler struct {
	sessions *services.SessionManager
	chat     *services.ChatService
	logger   *zap.Logger
}

// NewAgentHandler creates a new AgentHandler.
func NewAgentHandler(sessions *services.SessionManager, chat *services.ChatService, logger *zap.Logger) *AgentHandler {
	return &AgentHandler{sessions: sessions, chat: chat, logger: logger}
}

// RegisterRoutes registers the agent handler's routes on the given mux.
func (h *AgentHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /invocations", h.Invoke)
}

// Invoke handles POST /invocations requests.
func (h *AgentHandler) Invoke(w http.ResponseWriter, r *http.Request) {
	var req InvocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "request body must be JSON")
		return
	}
	if req.Prompt == "" {
		req.Prompt = defaultPrompt
	}

	session := h.sessions.GetOrCreate(req.SessionID)

	// Training requests are refused up front while a run holds the slot;
	// everything else continues normally.
	if h.chat.TrainingBlocked(req.Prompt) {
		_ = WriteJSON(w, http.StatusOK, InvocationResponse{
			Response:          h.chat.BlockedNotice(),
			ConversationStage: session.Stage,
			SessionID:         session.ID,
			TrainingBlocked:   true,
			AvailableData:     session.Snapshot(),
		})
		return
	}

	reply, err := h.chat.Respond(r.Context(), session, req.Prompt)
	if err != nil {
		h.logger.Error("agent invocation failed",
			zap.String("session_id", session.ID),
			zap.Error(err))
		_ = ErrorResponse(w, StatusFor(err), "agent_invocation_failed", err.Error())
		return
	}
	h.sessions.Save(session)

	_ = WriteJSON(w, http.StatusOK, InvocationResponse{
		Response:          reply,
		ConversationStage: session.Stage,
		SessionID:         session.ID,
		AvailableData:     session.Snapshot(),
	})
}
