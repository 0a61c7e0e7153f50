package server

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/ankitzm/chat-agent-backend/pkg/model"
)

// sseWriter frames one streaming response as server-sent events. Text
// fragments go out as plain "data:" events; "done" and "error" are named
// events with small JSON payloads. After a terminal event no further writes
// are permitted.
type sseWriter struct {
	w       io.Writer
	flusher http.Flusher
}

// newSSEWriter sets the event-stream headers, mirrors the request origin for
// CORS (the raw stream bypasses the regular middleware-written response
// path), and commits the 200 status.
func newSSEWriter(w http.ResponseWriter, origin string) (*sseWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, goerr.New("response writer does not support flushing")
	}

	if origin == "" {
		origin = "*"
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream; charset=utf-8")
	h.Set("Cache-Control", "no-cache, no-transform")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	h.Set("Access-Control-Allow-Origin", origin)
	h.Set("Vary", "Origin")
	w.WriteHeader(http.StatusOK)

	return &sseWriter{w: w, flusher: flusher}, nil
}

// WriteDelta sends one text fragment, unescaped. A fragment containing
// newlines is split across multiple "data:" lines per the SSE format;
// consumers joining data lines with "\n" reconstruct it exactly.
func (s *sseWriter) WriteDelta(text string) error {
	for _, line := range strings.Split(text, "\n") {
		if _, err := fmt.Fprintf(s.w, "data: %s\n", line); err != nil {
			return goerr.Wrap(err, "failed to write data line")
		}
	}
	if _, err := io.WriteString(s.w, "\n"); err != nil {
		return goerr.Wrap(err, "failed to write event terminator")
	}

	s.flusher.Flush()
	return nil
}

// WriteDone sends the terminal "done" event carrying the session identifier.
func (s *sseWriter) WriteDone(sessionID model.SessionID) error {
	return s.writeControl("done", map[string]string{"sessionId": string(sessionID)})
}

// WriteError sends the terminal "error" event with a human-readable message.
func (s *sseWriter) WriteError(message string) error {
	return s.writeControl("error", map[string]string{"message": message})
}

func (s *sseWriter) writeControl(event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return goerr.Wrap(err, "failed to marshal event payload")
	}

	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return goerr.Wrap(err, "failed to write event")
	}

	s.flusher.Flush()
	return nil
}

// SSEEvent is one parsed server-sent event. Type is "message" for unnamed
// events (text deltas).
type SSEEvent struct {
	Type string
	Data string
}

// IsControl reports whether the event payload is a JSON control payload
// rather than a literal text delta. This is the wire contract for stream
// consumers: payloads that parse as a JSON object (done/error events) are
// control events; anything else is text to append verbatim.
func (e SSEEvent) IsControl() bool {
	data := strings.TrimSpace(e.Data)
	return strings.HasPrefix(data, "{") && json.Valid([]byte(data))
}

// ParseSSEStream is the client-side counterpart of sseWriter: it reads an
// entire event stream and returns the events in order. Multiple "data:"
// lines within one event are joined with "\n".
func ParseSSEStream(r io.Reader) ([]SSEEvent, error) {
	var (
		events    []SSEEvent
		eventType string
		dataLines []string
		hasData   bool
	)

	flush := func() {
		if eventType == "" && !hasData {
			return
		}
		if eventType == "" {
			eventType = "message"
		}
		events = append(events, SSEEvent{
			Type: eventType,
			Data: strings.Join(dataLines, "\n"),
		})
		eventType = ""
		dataLines = nil
		hasData = false
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			flush()
		case strings.HasPrefix(line, "event: "):
			eventType = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			dataLines = append(dataLines, strings.TrimPrefix(line, "data: "))
			hasData = true
		case strings.HasPrefix(line, ":"):
			// comment line, ignore
		default:
			return nil, goerr.New("unexpected line in event stream", goerr.V("line", line))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to read event stream")
	}
	flush()

	return events, nil
}

// CollectSSEText concatenates the payloads of all non-control events in
// order, reconstructing the streamed text.
func CollectSSEText(events []SSEEvent) string {
	var sb strings.Builder
	for _, e := range events {
		if e.Type == "message" && !e.IsControl() {
			sb.WriteString(e.Data)
		}
	}
	return sb.String()
}
