package cli

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/ankitzm/chat-agent-backend/pkg/adapter"
	"github.com/ankitzm/chat-agent-backend/pkg/usecase/chat"
)

// config holds configuration values
type config struct {
	// Provider
	apiKey          string
	baseURL         string
	model           string
	embeddingsModel string
	referer         string
	appTitle        string

	// Vector index
	databaseURL     string
	vectorTable     string
	vectorNamespace string
	vectorTopK      int64

	// Server
	host          string
	port          int64
	corsAllowlist string
	logLevel      string
}

// providerFlags returns flags for the completion provider with destination config
func providerFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "api-key",
			Usage:       "OpenRouter API key",
			Sources:     cli.EnvVars("OPENROUTER_API_KEY"),
			Destination: &cfg.apiKey,
		},
		&cli.StringFlag{
			Name:        "base-url",
			Usage:       "OpenRouter API base URL",
			Value:       "https://openrouter.ai/api/v1",
			Sources:     cli.EnvVars("OPENROUTER_BASE_URL"),
			Destination: &cfg.baseURL,
		},
		&cli.StringFlag{
			Name:        "model",
			Usage:       "Default completion model",
			Value:       "meta-llama/llama-3.1-8b-instruct:free",
			Sources:     cli.EnvVars("OPENROUTER_MODEL"),
			Destination: &cfg.model,
		},
		&cli.StringFlag{
			Name:        "embeddings-model",
			Usage:       "Embeddings model for retrieval",
			Value:       "openai/text-embedding-3-small",
			Sources:     cli.EnvVars("EMBEDDINGS_MODEL"),
			Destination: &cfg.embeddingsModel,
		},
		&cli.StringFlag{
			Name:        "http-referer",
			Usage:       "HTTP-Referer header for OpenRouter app attribution",
			Value:       "http://localhost",
			Sources:     cli.EnvVars("OPENROUTER_HTTP_REFERER"),
			Destination: &cfg.referer,
		},
		&cli.StringFlag{
			Name:        "app-title",
			Usage:       "X-Title header for OpenRouter app attribution",
			Value:       "chat-agent-backend",
			Sources:     cli.EnvVars("OPENROUTER_APP_TITLE"),
			Destination: &cfg.appTitle,
		},
	}
}

// retrieverFlags returns flags for the vector search backend with destination config
func retrieverFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "database-url",
			Usage:       "PostgreSQL connection URL for the vector index (empty disables retrieval)",
			Sources:     cli.EnvVars("DATABASE_URL"),
			Destination: &cfg.databaseURL,
		},
		&cli.StringFlag{
			Name:        "vector-table",
			Usage:       "Table holding indexed documents",
			Value:       "documents",
			Sources:     cli.EnvVars("VECTOR_TABLE"),
			Destination: &cfg.vectorTable,
		},
		&cli.StringFlag{
			Name:        "vector-namespace",
			Usage:       "Namespace to search (empty searches all)",
			Sources:     cli.EnvVars("VECTOR_NAMESPACE"),
			Destination: &cfg.vectorNamespace,
		},
		&cli.IntFlag{
			Name:        "vector-top-k",
			Usage:       "Number of documents to retrieve per query",
			Value:       4,
			Sources:     cli.EnvVars("VECTOR_TOP_K"),
			Destination: &cfg.vectorTopK,
		},
	}
}

// serverFlags returns flags for the HTTP server with destination config
func serverFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "host",
			Usage:       "Listen host",
			Value:       "0.0.0.0",
			Sources:     cli.EnvVars("HOST"),
			Destination: &cfg.host,
		},
		&cli.IntFlag{
			Name:        "port",
			Usage:       "Listen port",
			Value:       3141,
			Sources:     cli.EnvVars("PORT"),
			Destination: &cfg.port,
		},
		&cli.StringFlag{
			Name:        "cors-allowlist",
			Usage:       "Allowed CORS origins: '*' or comma-separated list",
			Value:       "*",
			Sources:     cli.EnvVars("CORS_ALLOWLIST"),
			Destination: &cfg.corsAllowlist,
		},
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Value:       "info",
			Sources:     cli.EnvVars("LOG_LEVEL"),
			Destination: &cfg.logLevel,
		},
	}
}

// newLLM creates the provider client, or nil when no credential is
// configured. A nil provider makes chat operations fail per-request with a
// configuration error instead of preventing startup.
func (cfg *config) newLLM() adapter.LLM {
	if strings.TrimSpace(cfg.apiKey) == "" {
		return nil
	}
	return adapter.NewOpenRouter(cfg.apiKey,
		adapter.WithBaseURL(cfg.baseURL),
		adapter.WithReferer(cfg.referer),
		adapter.WithAppTitle(cfg.appTitle),
		adapter.WithEmbeddingModel(cfg.embeddingsModel),
	)
}

// newRetriever creates the optional vector retriever. Returns a nil
// retriever when no database URL is configured. The returned closer releases
// the connection pool.
func (cfg *config) newRetriever(ctx context.Context, llm adapter.LLM) (chat.Retriever, func(), error) {
	if strings.TrimSpace(cfg.databaseURL) == "" || llm == nil {
		return nil, nil, nil
	}

	index, err := adapter.NewPgVector(ctx, cfg.databaseURL, cfg.vectorTable)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to create vector index")
	}

	retriever := chat.NewVectorRetriever(llm, index, int(cfg.vectorTopK), cfg.vectorNamespace)
	return retriever, index.Close, nil
}

// corsOrigins parses the allowlist into the server's origin list. "*" (the
// default) means allow everything.
func (cfg *config) corsOrigins() []string {
	raw := strings.TrimSpace(cfg.corsAllowlist)
	if raw == "" || raw == "*" {
		return nil
	}

	var origins []string
	for _, origin := range strings.Split(raw, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}
