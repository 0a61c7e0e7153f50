package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/m-mizutani/goerr/v2"

	"github.com/ankitzm/chat-agent-backend/pkg/model"
)

type errorBody struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		slog.Error("failed to encode JSON response", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// writeError maps a classified error to HTTP status and body per the error
// taxonomy: validation is a client fault with field details, bad upstream is
// a gateway fault with a normalized message, configuration and all other
// provider failures are server faults.
func writeError(w http.ResponseWriter, err error, logger *slog.Logger) {
	status, body := errorResponse(err)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "error", err, "status", status)
	} else {
		logger.Warn("request rejected", "error", err, "status", status)
	}
	writeJSON(w, status, body)
}

func errorResponse(err error) (int, errorBody) {
	switch {
	case goerr.HasTag(err, model.ErrTagValidation):
		return http.StatusBadRequest, errorBody{
			Error:   "Invalid request",
			Details: goerr.Values(err),
		}
	case goerr.HasTag(err, model.ErrTagBadUpstream):
		return http.StatusBadGateway, errorBody{
			Error:   "Upstream provider returned an invalid response",
			Details: err.Error(),
		}
	case goerr.HasTag(err, model.ErrTagConfig):
		return http.StatusInternalServerError, errorBody{Error: err.Error()}
	default:
		return http.StatusInternalServerError, errorBody{Error: err.Error()}
	}
}

// streamErrorMessage is the error-event counterpart of errorResponse.
func streamErrorMessage(err error) string {
	if goerr.HasTag(err, model.ErrTagBadUpstream) {
		return "Upstream provider returned an invalid response"
	}
	return err.Error()
}
