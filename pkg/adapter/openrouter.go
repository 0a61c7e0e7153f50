package adapter

import (
	"context"
	"iter"

	"github.com/m-mizutani/goerr/v2"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/ankitzm/chat-agent-backend/pkg/model"
)

// LLM is the interface for the completion/embedding provider.
type LLM interface {
	// Complete sends messages for a single buffered completion and returns
	// the generated text.
	Complete(ctx context.Context, messages []model.Message, modelID string) (string, error)

	// StreamComplete sends messages for an incremental completion. The
	// returned sequence yields text fragments in provider order and is
	// single-use; it terminates after yielding a non-nil error. Stopping
	// early closes the underlying provider stream.
	StreamComplete(ctx context.Context, messages []model.Message, modelID string) iter.Seq2[string, error]

	// Embed returns one vector per input text. Empty input yields empty output.
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

// OpenRouterClient implements LLM against OpenRouter's OpenAI-compatible API.
type OpenRouterClient struct {
	client         openai.Client
	embeddingModel string
}

type OpenRouterOption func(*openRouterConfig)

type openRouterConfig struct {
	baseURL        string
	referer        string
	appTitle       string
	embeddingModel string
	requestOpts    []option.RequestOption
}

func WithBaseURL(baseURL string) OpenRouterOption {
	return func(c *openRouterConfig) {
		c.baseURL = baseURL
	}
}

// WithReferer sets the HTTP-Referer header OpenRouter uses for app attribution.
func WithReferer(referer string) OpenRouterOption {
	return func(c *openRouterConfig) {
		c.referer = referer
	}
}

// WithAppTitle sets the X-Title header OpenRouter uses for app attribution.
func WithAppTitle(title string) OpenRouterOption {
	return func(c *openRouterConfig) {
		c.appTitle = title
	}
}

func WithEmbeddingModel(modelID string) OpenRouterOption {
	return func(c *openRouterConfig) {
		c.embeddingModel = modelID
	}
}

// WithRequestOption passes an extra option through to the underlying SDK
// client. Used by tests to inject an HTTP client.
func WithRequestOption(opt option.RequestOption) OpenRouterOption {
	return func(c *openRouterConfig) {
		c.requestOpts = append(c.requestOpts, opt)
	}
}

// NewOpenRouter creates a new OpenRouter API client.
func NewOpenRouter(apiKey string, opts ...OpenRouterOption) *OpenRouterClient {
	cfg := &openRouterConfig{
		baseURL:        "https://openrouter.ai/api/v1",
		referer:        "http://localhost",
		appTitle:       "chat-agent-backend",
		embeddingModel: "openai/text-embedding-3-small",
	}
	for _, opt := range opts {
		opt(cfg)
	}

	requestOpts := append([]option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithBaseURL(cfg.baseURL),
		option.WithHeader("HTTP-Referer", cfg.referer),
		option.WithHeader("X-Title", cfg.appTitle),
	}, cfg.requestOpts...)

	return &OpenRouterClient{
		client:         openai.NewClient(requestOpts...),
		embeddingModel: cfg.embeddingModel,
	}
}

func (c *OpenRouterClient) Complete(ctx context.Context, messages []model.Message, modelID string) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(modelID),
		Messages: toMessageParams(messages),
	})
	if err != nil {
		return "", goerr.Wrap(err, "failed to create chat completion", goerr.V("model", modelID))
	}

	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *OpenRouterClient) StreamComplete(ctx context.Context, messages []model.Message, modelID string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		stream := c.client.Chat.Completions.NewStreaming(ctx, openai.ChatCompletionNewParams{
			Model:    openai.ChatModel(modelID),
			Messages: toMessageParams(messages),
		})
		defer stream.Close()

		for stream.Next() {
			chunk := stream.Current()
			if len(chunk.Choices) == 0 {
				continue
			}
			delta := chunk.Choices[0].Delta.Content
			if delta == "" {
				continue
			}
			if !yield(delta, nil) {
				return
			}
		}

		if err := stream.Err(); err != nil {
			yield("", goerr.Wrap(err, "chat completion stream failed", goerr.V("model", modelID)))
		}
	}
}

func (c *OpenRouterClient) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := c.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(c.embeddingModel),
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: texts,
		},
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create embeddings", goerr.V("model", c.embeddingModel))
	}

	vectors := make([][]float64, len(resp.Data))
	for i, d := range resp.Data {
		vectors[i] = d.Embedding
	}
	return vectors, nil
}

func toMessageParams(messages []model.Message) []openai.ChatCompletionMessageParamUnion {
	params := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case model.RoleSystem:
			params = append(params, openai.SystemMessage(msg.Content))
		case model.RoleAssistant:
			params = append(params, openai.AssistantMessage(msg.Content))
		default:
			params = append(params, openai.UserMessage(msg.Content))
		}
	}
	return params
}
