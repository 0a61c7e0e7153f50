package chat

import (
	"fmt"
	"strings"

	"github.com/ankitzm/chat-agent-backend/pkg/model"
)

const contextPreamble = "You are given the following context documents. Use them to answer the user succinctly. If unsure, say you don't know."

// BuildContextPrompt renders retrieved documents as a single system prompt
// block, preserving the retriever's ranking order. Returns "" when there is
// nothing to add.
func BuildContextPrompt(docs []model.RetrievedDoc) string {
	if len(docs) == 0 {
		return ""
	}

	blocks := make([]string, 0, len(docs))
	for i, doc := range docs {
		blocks = append(blocks, fmt.Sprintf("[[Doc %d | score=%.3f]]\n%s", i+1, doc.Score, doc.Content))
	}

	return contextPreamble + "\n\n" + strings.Join(blocks, "\n\n")
}

// assemble builds the ordered provider message list for one request:
// optional context block, optional instructions block, then the full session
// history. The current user turn is already the last history entry because
// callers append it before assembly.
func (uc *UseCase) assemble(sessionID model.SessionID, contextPrompt string) []model.Message {
	var messages []model.Message

	if contextPrompt != "" {
		messages = append(messages, model.NewMessage(model.RoleSystem, contextPrompt))
	}
	if instructions, ok := uc.memory.GetInstructions(sessionID); ok {
		messages = append(messages, model.NewMessage(model.RoleSystem, instructions))
	}

	return append(messages, uc.memory.GetHistory(sessionID)...)
}
