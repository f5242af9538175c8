package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/propense/feature-engine/pkg/services"
)

// SegmentationRequest asks the segmentation agent to analyze a dataset.
type SegmentationRequest struct {
	Prompt       string `json:"prompt"`
	DataLocation string `json:"data_location"`
}

// SegmentationHandler is the chat boundary of the segmentation agent.
type SegmentationHandler struct {
	segmentation *services.SegmentationService
	logger       *zap.Logger
}

// NewSegmentationHandler creates a new SegmentationHandler.
func NewSegmentationHandler(segmentation *services.SegmentationService, logger *zap.Logger) *SegmentationHandler {
	return &SegmentationHandler{segmentation: segmentation, logger: logger}
}

// RegisterRoutes registers the segmentation handler's routes on the given mux.
func (h *SegmentationHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /segmentation/invocations", h.Invoke)
}

// Invoke handles POST /segmentation/invocations requests.
func (h *SegmentationHandler) Invoke(w http.ResponseWriter, r *http.Request) {
	var req SegmentationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "request body must be JSON")
		return
	}
	if req.DataLocation == "" || req.Prompt == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "prompt and data_location are required")
		return
	}

	result, err := h.segmentation.Analyze(r.Context(), req.DataLocation, req.Prompt)
	if err != nil {
		h.logger.Error("segmentation invocation failed",
			zap.String("data_location", req.DataLocation),
			zap.Error(err))
		_ = ErrorResponse(w, StatusFor(err), "segmentation_failed", err.Error())
		return
	}

	_ = WriteJSON(w, http.StatusOK, result)
}
