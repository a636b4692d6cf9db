// Package retrieval provides the similarity-search capability the
// pipelines consume: the query pipeline reads ranked snippets for prompt
// context, the ingestion pipeline writes document chunks.
//
// Ranking internals are deliberately opaque to callers. MemoryStore and
// SQLiteStore rank by term overlap; PgVector ranks by embedding
// distance. Callers only see ordered snippets with a relevance score.
package retrieval

import (
	"context"
	"errors"
	"regexp"
	"strings"
)

// ErrStoreClosed indicates the store has been closed.
var ErrStoreClosed = errors.New("retrieval store closed")

// Document is a chunk of text to index, with provenance metadata.
type Document struct {
	// Content is the chunk text.
	Content string
	// Metadata carries provenance (filename, file type, source).
	Metadata map[string]string
}

// Snippet is one ranked search result.
type Snippet struct {
	// Content is the matched chunk text.
	Content string
	// Metadata is the document's metadata.
	Metadata map[string]string
	// Score is the relevance score; higher is more relevant.
	Score float64
}

// Store is the retrieval capability.
// Implementations must be safe for concurrent use by multiple in-flight
// pipeline runs.
type Store interface {
	// Search returns up to k snippets ranked by relevance to the query.
	Search(ctx context.Context, query string, k int) ([]Snippet, error)

	// Add indexes all documents in one call.
	Add(ctx context.Context, docs []Document) error
}

// wordRe splits text into lowercase word tokens for overlap scoring.
var wordRe = regexp.MustCompile(`[a-z0-9_]+`)

// tokenize returns the set of lowercase word tokens in s.
func tokenize(s string) map[string]bool {
	tokens := make(map[string]bool)
	for _, w := range wordRe.FindAllString(strings.ToLower(s), -1) {
		tokens[w] = true
	}
	return tokens
}

// termOverlap scores content against query terms: the fraction of query
// tokens present in the content. Returns 0 when nothing matches.
func termOverlap(queryTokens map[string]bool, content string) float64 {
	if len(queryTokens) == 0 {
		return 0
	}
	contentTokens := tokenize(content)
	matched := 0
	for t := range queryTokens {
		if contentTokens[t] {
			matched++
		}
	}
	return float64(matched) / float64(len(queryTokens))
}
