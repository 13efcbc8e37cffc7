package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
)

// maxChatBodyBytes bounds chat request bodies.
const maxChatBodyBytes = 64 * 1024

// Answerer runs the retrieval pipeline for one query. Its result is always
// presentable text; refusals and generation fallbacks arrive as data.
type Answerer interface {
	Answer(ctx context.Context, query string) string
}

type chatRequest struct {
	Query string `json:"query"`
}

type chatResponse struct {
	Response string `json:"response"`
}

type chatHandler struct {
	pipeline Answerer
	logger   *slog.Logger
}

// send handles POST /api/v1/chat.
func (h *chatHandler) send(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxChatBodyBytes)

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "request body must be JSON with a query field", h.logger)
		return
	}

	query := strings.TrimSpace(req.Query)
	if query == "" {
		writeError(w, http.StatusBadRequest, "empty_query", "query must not be empty", h.logger)
		return
	}

	answer := h.pipeline.Answer(r.Context(), query)
	writeJSON(w, http.StatusOK, chatResponse{Response: answer}, h.logger)
}
