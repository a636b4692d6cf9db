package retrieval

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// Embedder turns text into embedding vectors.
// PgVector needs one; the other stores do not.
type Embedder interface {
	// Embed returns one vector per input text, in input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// PgVector is a Postgres+pgvector backed Store for multi-process
// deployments. Ranking is by embedding distance.
type PgVector struct {
	pool     *pgxpool.Pool
	embedder Embedder
}

// Compile-time interface check.
var _ Store = (*PgVector)(nil)

// NewPgVector creates a pgvector-backed store over an existing pool.
// The pool's lifetime is owned by the caller.
func NewPgVector(pool *pgxpool.Pool, embedder Embedder) *PgVector {
	return &PgVector{pool: pool, embedder: embedder}
}

// Init creates the documents table and the vector extension.
// dims is the embedding dimensionality of the configured Embedder.
func (p *PgVector) Init(ctx context.Context, dims int) error {
	if _, err := p.pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		return fmt.Errorf("create vector extension: %w", err)
	}
	_, err := p.pool.Exec(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS documents (
			id SERIAL PRIMARY KEY,
			content TEXT NOT NULL,
			metadata JSONB NOT NULL,
			embedding vector(%d)
		)`, dims))
	if err != nil {
		return fmt.Errorf("create documents table: %w", err)
	}
	return nil
}

// Add implements Store. The whole batch is embedded in one Embed call,
// then inserted row by row.
func (p *PgVector) Add(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}

	texts := make([]string, len(docs))
	for i, doc := range docs {
		texts[i] = doc.Content
	}

	embeddings, err := p.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed documents: %w", err)
	}
	if len(embeddings) != len(docs) {
		return fmt.Errorf("embedder returned %d vectors for %d documents", len(embeddings), len(docs))
	}

	for i, doc := range docs {
		meta, err := json.Marshal(doc.Metadata)
		if err != nil {
			return fmt.Errorf("marshal metadata: %w", err)
		}
		_, err = p.pool.Exec(ctx,
			"INSERT INTO documents (content, metadata, embedding) VALUES ($1, $2, $3)",
			doc.Content, meta, pgvector.NewVector(embeddings[i]))
		if err != nil {
			return fmt.Errorf("insert document: %w", err)
		}
	}
	return nil
}

// Search implements Store. The query is embedded and the top-k nearest
// documents by embedding distance are returned. Score is the negated
// distance so that higher still means more relevant.
func (p *PgVector) Search(ctx context.Context, query string, k int) ([]Snippet, error) {
	if k <= 0 {
		return nil, nil
	}

	embeddings, err := p.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(embeddings) != 1 {
		return nil, fmt.Errorf("embedder returned %d vectors for query", len(embeddings))
	}

	rows, err := p.pool.Query(ctx,
		`SELECT content, metadata, embedding <-> $1 AS distance
		 FROM documents ORDER BY distance LIMIT $2`,
		pgvector.NewVector(embeddings[0]), k)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	var results []Snippet
	for rows.Next() {
		var (
			content  string
			metaJSON []byte
			distance float64
		)
		if err := rows.Scan(&content, &metaJSON, &distance); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}

		var meta map[string]string
		if err := json.Unmarshal(metaJSON, &meta); err != nil {
			return nil, fmt.Errorf("unmarshal metadata: %w", err)
		}

		results = append(results, Snippet{Content: content, Metadata: meta, Score: -distance})
	}
	return results, rows.Err()
}
