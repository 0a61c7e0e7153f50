package chat

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/ankitzm/chat-agent-backend/pkg/adapter"
	"github.com/ankitzm/chat-agent-backend/pkg/model"
	"github.com/ankitzm/chat-agent-backend/pkg/utils/logging"
)

// Retriever produces ranked context documents for a query, most relevant
// first. Callers treat any failure as "no context available".
type Retriever interface {
	Retrieve(ctx context.Context, query string) ([]model.RetrievedDoc, error)
}

// VectorRetriever embeds the query through the provider and searches a
// vector index with the resulting vector.
type VectorRetriever struct {
	llm       adapter.LLM
	index     adapter.VectorIndex
	topK      int
	namespace string
}

// NewVectorRetriever creates a retriever over the given index. topK <= 0
// falls back to 4.
func NewVectorRetriever(llm adapter.LLM, index adapter.VectorIndex, topK int, namespace string) *VectorRetriever {
	if topK <= 0 {
		topK = 4
	}
	return &VectorRetriever{
		llm:       llm,
		index:     index,
		topK:      topK,
		namespace: namespace,
	}
}

func (r *VectorRetriever) Retrieve(ctx context.Context, query string) ([]model.RetrievedDoc, error) {
	vectors, err := r.llm.Embed(ctx, []string{query})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to embed query")
	}
	if len(vectors) == 0 {
		return nil, goerr.New("provider returned no embedding")
	}

	docs, err := r.index.Query(ctx, vectors[0], r.topK, r.namespace)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query vector index")
	}
	return docs, nil
}

// retrieveContext runs best-effort retrieval and returns the rendered
// context prompt. Retrieval failures degrade to no context, never to a
// request failure.
func (uc *UseCase) retrieveContext(ctx context.Context, query string) string {
	if uc.retriever == nil {
		return ""
	}

	docs, err := uc.retriever.Retrieve(ctx, query)
	if err != nil {
		logging.From(ctx).Debug("context retrieval failed, continuing without context", "error", err)
		return ""
	}
	return BuildContextPrompt(docs)
}
