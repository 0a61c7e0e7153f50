package adapter

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/m-mizutani/goerr/v2"
	"github.com/pgvector/pgvector-go"
	pgxvector "github.com/pgvector/pgvector-go/pgx"

	"github.com/ankitzm/chat-agent-backend/pkg/model"
)

// VectorIndex is the interface for the vector search backend.
type VectorIndex interface {
	// Query returns up to topK documents ranked most-relevant first.
	// An empty namespace searches all namespaces.
	Query(ctx context.Context, vector []float64, topK int, namespace string) ([]model.RetrievedDoc, error)
}

// PgVectorIndex implements VectorIndex over PostgreSQL + pgvector. The
// indexed table needs (content text, namespace text, embedding vector)
// columns; similarity is cosine distance.
type PgVectorIndex struct {
	pool  *pgxpool.Pool
	table string
}

// NewPgVector connects to PostgreSQL and prepares pgvector type support.
func NewPgVector(ctx context.Context, databaseURL, table string) (*PgVectorIndex, error) {
	if table == "" {
		table = "documents"
	}

	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse database URL")
	}
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvector.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create connection pool")
	}

	return &PgVectorIndex{pool: pool, table: table}, nil
}

func (x *PgVectorIndex) Query(ctx context.Context, vector []float64, topK int, namespace string) ([]model.RetrievedDoc, error) {
	if topK <= 0 {
		topK = 4
	}

	embedding := pgvector.NewVector(toFloat32(vector))

	// Table name cannot be a bind parameter; it comes from server
	// configuration and is identifier-quoted here.
	query := fmt.Sprintf(
		`SELECT content, 1 - (embedding <=> $1) AS score
		 FROM %s
		 WHERE $2 = '' OR namespace = $2
		 ORDER BY embedding <=> $1
		 LIMIT $3`,
		pgx.Identifier{x.table}.Sanitize(),
	)

	rows, err := x.pool.Query(ctx, query, embedding, namespace, topK)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query vector index", goerr.V("table", x.table))
	}
	defer rows.Close()

	var docs []model.RetrievedDoc
	for rows.Next() {
		var doc model.RetrievedDoc
		if err := rows.Scan(&doc.Content, &doc.Score); err != nil {
			return nil, goerr.Wrap(err, "failed to scan document row")
		}
		if doc.Content == "" {
			continue
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to read document rows")
	}

	return docs, nil
}

// Close releases the underlying connection pool.
func (x *PgVectorIndex) Close() {
	x.pool.Close()
}

func toFloat32(vector []float64) []float32 {
	out := make([]float32, len(vector))
	for i, v := range vector {
		out[i] = float32(v)
	}
	return out
}
