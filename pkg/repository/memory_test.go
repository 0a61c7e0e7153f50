package repository_test

import (
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/ankitzm/chat-agent-backend/pkg/model"
	"github.com/ankitzm/chat-agent-backend/pkg/repository"
)

func TestMemoryAppendOrder(t *testing.T) {
	mem := repository.NewMemory()
	id := model.NewSessionID()

	mem.AppendUserMessage(id, "hello")
	mem.AppendAssistantMessage(id, "hi there")
	mem.AppendUserMessage(id, "how are you?")

	history := mem.GetHistory(id)
	gt.A(t, history).Length(3)
	gt.Equal(t, history[0].Role, model.RoleUser)
	gt.Equal(t, history[0].Content, "hello")
	gt.Equal(t, history[1].Role, model.RoleAssistant)
	gt.Equal(t, history[1].Content, "hi there")
	gt.Equal(t, history[2].Role, model.RoleUser)
	gt.Equal(t, history[2].Content, "how are you?")

	for _, msg := range history {
		gt.True(t, msg.Timestamp > 0)
	}
}

func TestMemoryEmptyContentAllowed(t *testing.T) {
	mem := repository.NewMemory()
	id := model.SessionID("empty-content")

	mem.AppendUserMessage(id, "")

	history := mem.GetHistory(id)
	gt.A(t, history).Length(1)
	gt.Equal(t, history[0].Content, "")
}

func TestMemoryInstructions(t *testing.T) {
	mem := repository.NewMemory()
	id := model.SessionID("session-1")

	_, ok := mem.GetInstructions(id)
	gt.False(t, ok)

	mem.SetInstructions(id, " hi ")
	instructions, ok := mem.GetInstructions(id)
	gt.True(t, ok)
	gt.Equal(t, instructions, "hi")

	// Empty and whitespace-only inputs are no-ops.
	mem.SetInstructions(id, "")
	mem.SetInstructions(id, "   ")
	instructions, ok = mem.GetInstructions(id)
	gt.True(t, ok)
	gt.Equal(t, instructions, "hi")

	// A real value replaces outright.
	mem.SetInstructions(id, "be brief")
	instructions, _ = mem.GetInstructions(id)
	gt.Equal(t, instructions, "be brief")
}

func TestMemoryUnknownSession(t *testing.T) {
	mem := repository.NewMemory()
	id := model.SessionID("never-seen")

	gt.A(t, mem.GetHistory(id)).Length(0)

	// Reading history must not materialize the session.
	_, ok := mem.GetInstructions(id)
	gt.False(t, ok)
	gt.A(t, mem.GetHistory(id)).Length(0)
}

func TestMemoryHistoryIsCopy(t *testing.T) {
	mem := repository.NewMemory()
	id := model.SessionID("copy-check")

	mem.AppendUserMessage(id, "original")

	history := mem.GetHistory(id)
	history[0].Content = "mutated"

	fresh := mem.GetHistory(id)
	gt.Equal(t, fresh[0].Content, "original")
}
