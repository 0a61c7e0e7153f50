package chat

import (
	"context"
	"iter"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/ankitzm/chat-agent-backend/pkg/adapter"
	"github.com/ankitzm/chat-agent-backend/pkg/model"
	"github.com/ankitzm/chat-agent-backend/pkg/repository"
)

const defaultModel = "meta-llama/llama-3.1-8b-instruct:free"

// UseCase orchestrates chat completions against the provider: it resolves
// the session, assembles the prompt, drives buffered or streaming delivery,
// and records the result in session memory.
type UseCase struct {
	memory       repository.Memory
	llm          adapter.LLM
	retriever    Retriever
	defaultModel string
}

// NewInput contains dependencies for creating a chat UseCase.
type NewInput struct {
	Memory repository.Memory
	// LLM may be nil when no provider credential is configured; operations
	// then fail with a configuration error before touching memory.
	LLM adapter.LLM
	// Retriever is optional; nil disables context retrieval.
	Retriever Retriever
	// DefaultModel is used when a request does not override the model.
	DefaultModel string
}

func New(input NewInput) *UseCase {
	uc := &UseCase{
		memory:       input.Memory,
		llm:          input.LLM,
		retriever:    input.Retriever,
		defaultModel: input.DefaultModel,
	}
	if uc.defaultModel == "" {
		uc.defaultModel = defaultModel
	}
	return uc
}

// CompleteInput contains parameters for one buffered completion.
type CompleteInput struct {
	SessionID    model.SessionID // empty generates a fresh session
	Message      string
	Instructions string
	Model        string
}

type CompleteOutput struct {
	Text      string
	SessionID model.SessionID
	Timestamp int64
}

// Complete runs the buffered delivery mode. The user turn is appended to
// history before the provider call, so a provider failure leaves the session
// with the user message and no assistant reply; a retry sees that turn as
// the last history entry.
func (uc *UseCase) Complete(ctx context.Context, input CompleteInput) (*CompleteOutput, error) {
	sessionID, err := uc.begin(input.SessionID, input.Message, "message", input.Instructions)
	if err != nil {
		return nil, err
	}

	messages := uc.assemble(sessionID, "")

	text, err := uc.llm.Complete(ctx, messages, uc.resolveModel(input.Model))
	if err != nil {
		return nil, classifyProviderError(err)
	}

	uc.memory.AppendAssistantMessage(sessionID, text)

	return &CompleteOutput{
		Text:      text,
		SessionID: sessionID,
		Timestamp: time.Now().UnixMilli(),
	}, nil
}

// StreamInput contains parameters for one streaming completion.
type StreamInput struct {
	SessionID    model.SessionID // empty generates a fresh session
	Query        string
	Instructions string
	Model        string
}

// Stream runs the streaming delivery mode. Precondition failures
// (configuration, validation) are returned immediately so callers can reject
// the request before committing to a streaming response.
//
// The returned sequence is single-use. It yields text fragments in provider
// order; a failure terminates it with a single non-nil error. The full
// assistant text is appended to history exactly once, after the final
// fragment; nothing is appended when the stream fails or the consumer stops
// early.
func (uc *UseCase) Stream(ctx context.Context, input StreamInput) (model.SessionID, iter.Seq2[string, error], error) {
	sessionID, err := uc.begin(input.SessionID, input.Query, "query", input.Instructions)
	if err != nil {
		return "", nil, err
	}

	seq := func(yield func(string, error) bool) {
		contextPrompt := uc.retrieveContext(ctx, input.Query)
		messages := uc.assemble(sessionID, contextPrompt)

		var assembled strings.Builder
		for delta, err := range uc.llm.StreamComplete(ctx, messages, uc.resolveModel(input.Model)) {
			if err != nil {
				yield("", classifyProviderError(err))
				return
			}
			if !yield(delta, nil) {
				return
			}
			assembled.WriteString(delta)
		}

		uc.memory.AppendAssistantMessage(sessionID, assembled.String())
	}

	return sessionID, seq, nil
}

// begin performs the shared setup of both delivery modes: configuration and
// validation checks, session resolution, instructions override, and the
// pre-call user append.
func (uc *UseCase) begin(sessionID model.SessionID, message, field, instructions string) (model.SessionID, error) {
	if uc.llm == nil {
		return "", goerr.New("missing OPENROUTER_API_KEY. Set it in your environment.",
			goerr.T(model.ErrTagConfig))
	}
	if message == "" {
		return "", goerr.New(field+" is required",
			goerr.T(model.ErrTagValidation), goerr.V("field", field))
	}

	if sessionID == "" {
		sessionID = model.NewSessionID()
	}

	if instructions != "" {
		uc.memory.SetInstructions(sessionID, instructions)
	}

	uc.memory.AppendUserMessage(sessionID, message)

	return sessionID, nil
}

func (uc *UseCase) resolveModel(override string) string {
	if override != "" {
		return override
	}
	return uc.defaultModel
}

// classifyProviderError normalizes upstream failures: anything that looks
// like a malformed provider payload becomes a distinguished bad-upstream
// error, everything else keeps its message as a provider error.
func classifyProviderError(err error) error {
	msg := err.Error()
	if strings.Contains(msg, "Invalid JSON response") || strings.Contains(msg, "JSON") {
		return goerr.Wrap(err, "Upstream provider returned an invalid response",
			goerr.T(model.ErrTagBadUpstream))
	}
	return goerr.Wrap(err, "chat completion request failed",
		goerr.T(model.ErrTagProvider))
}
