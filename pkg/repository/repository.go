package repository

import "github.com/ankitzm/chat-agent-backend/pkg/model"

// Memory defines session-scoped conversation state: a single current
// instructions value and an append-only message history per session.
// Sessions are created implicitly by the first append and live for the
// process lifetime; nothing is ever evicted.
type Memory interface {
	// AppendUserMessage appends a user turn with the current timestamp.
	// Content is stored verbatim; validation is the caller's concern.
	AppendUserMessage(id model.SessionID, content string)

	// AppendAssistantMessage appends an assistant turn with the current timestamp.
	AppendAssistantMessage(id model.SessionID, content string)

	// SetInstructions replaces the session's instructions with the trimmed
	// input. An input that trims to empty is a no-op and keeps any existing
	// instructions.
	SetInstructions(id model.SessionID, instructions string)

	// GetInstructions returns the current instructions, or ok=false if
	// never set for this session.
	GetInstructions(id model.SessionID) (string, bool)

	// GetHistory returns the session's messages in append order, or an
	// empty slice for an unknown session. The returned slice is a copy;
	// mutating it does not affect the stored history, and calling this
	// for an unknown session does not create one.
	GetHistory(id model.SessionID) []model.Message
}
