package server_test

import (
	"strings"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/ankitzm/chat-agent-backend/pkg/server"
)

func TestParseSSEStream(t *testing.T) {
	raw := strings.Join([]string{
		"data: hello",
		"",
		"data: line one",
		"data: line two",
		"",
		"event: done",
		`data: {"sessionId":"abc"}`,
		"",
		"",
	}, "\n")

	events, err := server.ParseSSEStream(strings.NewReader(raw))
	gt.NoError(t, err)
	gt.A(t, events).Length(3)

	gt.Equal(t, events[0], server.SSEEvent{Type: "message", Data: "hello"})

	// Multiple data lines within one event join with a newline.
	gt.Equal(t, events[1], server.SSEEvent{Type: "message", Data: "line one\nline two"})

	gt.Equal(t, events[2].Type, "done")
	gt.Equal(t, events[2].Data, `{"sessionId":"abc"}`)
}

func TestParseSSEStreamIgnoresComments(t *testing.T) {
	raw := ": keep-alive\n\ndata: hi\n\n"

	events, err := server.ParseSSEStream(strings.NewReader(raw))
	gt.NoError(t, err)
	gt.A(t, events).Length(1)
	gt.Equal(t, events[0].Data, "hi")
}

func TestParseSSEStreamRejectsGarbage(t *testing.T) {
	_, err := server.ParseSSEStream(strings.NewReader("not an event\n"))
	gt.Error(t, err)
}

func TestEventIsControl(t *testing.T) {
	cases := map[string]struct {
		data    string
		control bool
	}{
		"json object":          {`{"sessionId":"abc"}`, true},
		"json with whitespace": {`  {"message":"x"} `, true},
		"plain text":           {"hello", false},
		"bare number":          {"1", false},
		"quoted string":        {`"quoted"`, false},
		"malformed brace":      {"{not json", false},
		"text with open brace": {"use {brackets} here", false},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			e := server.SSEEvent{Type: "message", Data: tc.data}
			gt.Equal(t, e.IsControl(), tc.control)
		})
	}
}
