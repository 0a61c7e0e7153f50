package repository

import (
	"slices"
	"strings"
	"sync"

	"github.com/ankitzm/chat-agent-backend/pkg/model"
)

// chatMemory implements Memory with process-local maps. The RWMutex makes
// individual operations safe under concurrent requests; it does not
// serialize whole turns, so interleaved appends from concurrent requests
// on the same session land in completion order.
type chatMemory struct {
	mu           sync.RWMutex
	instructions map[model.SessionID]string
	histories    map[model.SessionID][]model.Message
}

// NewMemory creates an empty in-process session memory.
func NewMemory() Memory {
	return &chatMemory{
		instructions: make(map[model.SessionID]string),
		histories:    make(map[model.SessionID][]model.Message),
	}
}

func (m *chatMemory) AppendUserMessage(id model.SessionID, content string) {
	m.append(id, model.NewMessage(model.RoleUser, content))
}

func (m *chatMemory) AppendAssistantMessage(id model.SessionID, content string) {
	m.append(id, model.NewMessage(model.RoleAssistant, content))
}

func (m *chatMemory) append(id model.SessionID, msg model.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.histories[id] = append(m.histories[id], msg)
}

func (m *chatMemory) SetInstructions(id model.SessionID, instructions string) {
	trimmed := strings.TrimSpace(instructions)
	if trimmed == "" {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.instructions[id] = trimmed
}

func (m *chatMemory) GetInstructions(id model.SessionID) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	instructions, ok := m.instructions[id]
	return instructions, ok
}

func (m *chatMemory) GetHistory(id model.SessionID) []model.Message {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.histories[id])
}
