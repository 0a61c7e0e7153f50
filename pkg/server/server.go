// Package server exposes the chat service over HTTP: JSON endpoints for
// buffered completions and an SSE endpoint for streaming delivery.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/ankitzm/chat-agent-backend/pkg/usecase/chat"
)

// Version is the service version reported by the route directory.
const Version = "1.0.0"

// Config contains configuration for creating the HTTP server.
type Config struct {
	Logger *slog.Logger
	Chat   *chat.UseCase // Required
	// CORSOrigins is the allowlist of origins; empty or containing "*"
	// allows everything.
	CORSOrigins []string
}

// Server is the chat HTTP server.
type Server struct {
	handler http.Handler
}

// New creates the server with all routes and middleware configured.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	h := &chatHandler{
		chat:   cfg.Chat,
		logger: logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", root)
	mux.HandleFunc("GET /health", health)
	mux.HandleFunc("POST /chat", h.send)
	mux.HandleFunc("GET /stream", h.stream)

	var handler http.Handler = mux
	handler = corsMiddleware(cfg.CORSOrigins)(handler)
	handler = loggingMiddleware(logger)(handler)
	handler = recoveryMiddleware(logger)(handler)

	return &Server{handler: handler}
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// root serves the service metadata and route directory.
func root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    "chat-agent-backend",
		"version": Version,
		"routes": map[string]string{
			"chat":   "POST /chat { message, sessionId?, instructions?, model? }",
			"stream": "GET /stream?query=...&sessionId=...&instructions=...&model=...",
			"health": "GET /health",
		},
	})
}

func health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":        true,
		"timestamp": time.Now().UnixMilli(),
	})
}
