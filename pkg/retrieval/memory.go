package retrieval

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is an in-memory Store for testing and small corpora.
// Data is lost when the process exits.
type MemoryStore struct {
	mu   sync.RWMutex
	docs []Document
}

// Compile-time interface check.
var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates a new in-memory retrieval store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Add implements Store.
func (m *MemoryStore) Add(_ context.Context, docs []Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, doc := range docs {
		// Copy metadata to avoid retaining the caller's map
		meta := make(map[string]string, len(doc.Metadata))
		for k, v := range doc.Metadata {
			meta[k] = v
		}
		m.docs = append(m.docs, Document{Content: doc.Content, Metadata: meta})
	}
	return nil
}

// Search implements Store. Documents with no overlapping terms are not
// returned, so results may be fewer than k.
func (m *MemoryStore) Search(_ context.Context, query string, k int) ([]Snippet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if k <= 0 {
		return nil, nil
	}

	queryTokens := tokenize(query)

	var results []Snippet
	for _, doc := range m.docs {
		score := termOverlap(queryTokens, doc.Content)
		if score == 0 {
			continue
		}
		results = append(results, Snippet{
			Content:  doc.Content,
			Metadata: doc.Metadata,
			Score:    score,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// Len returns the number of indexed documents.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.docs)
}
