package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/ankitzm/chat-agent-backend/pkg/model"
	"github.com/ankitzm/chat-agent-backend/pkg/usecase/chat"
)

// chatHandler serves both delivery modes of the completion pipeline.
type chatHandler struct {
	chat   *chat.UseCase
	logger *slog.Logger
}

type chatRequest struct {
	Message      string `json:"message"`
	SessionID    string `json:"sessionId"`
	Instructions string `json:"instructions"`
	Model        string `json:"model"`
}

type chatResponse struct {
	Text      string `json:"text"`
	SessionID string `json:"sessionId"`
	Timestamp int64  `json:"timestamp"`
}

// send handles POST /chat, the buffered delivery mode.
func (h *chatHandler) send(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid body", Details: err.Error()})
		return
	}

	out, err := h.chat.Complete(r.Context(), chat.CompleteInput{
		SessionID:    model.SessionID(req.SessionID),
		Message:      req.Message,
		Instructions: req.Instructions,
		Model:        req.Model,
	})
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Text:      out.Text,
		SessionID: string(out.SessionID),
		Timestamp: out.Timestamp,
	})
}

// stream handles GET /stream, the SSE delivery mode. Precondition failures
// are reported as plain JSON; once the event stream starts, failures become
// terminal error events.
func (h *chatHandler) stream(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	sessionID, seq, err := h.chat.Stream(r.Context(), chat.StreamInput{
		SessionID:    model.SessionID(q.Get("sessionId")),
		Query:        q.Get("query"),
		Instructions: q.Get("instructions"),
		Model:        q.Get("model"),
	})
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	sw, err := newSSEWriter(w, r.Header.Get("Origin"))
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	ctx := r.Context()
	for delta, err := range seq {
		if err != nil {
			h.logger.Warn("stream failed", "error", err, "sessionId", sessionID)
			_ = sw.WriteError(streamErrorMessage(err))
			return
		}
		if ctx.Err() != nil {
			// Client is gone; stop consuming so the provider stream closes.
			h.logger.Debug("client disconnected", "sessionId", sessionID)
			return
		}
		if err := sw.WriteDelta(delta); err != nil {
			h.logger.Debug("failed to write delta, stopping stream", "error", err)
			return
		}
	}

	_ = sw.WriteDone(sessionID)
	h.logger.Debug("stream completed", "sessionId", sessionID)
}
