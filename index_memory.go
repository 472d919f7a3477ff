package admsg

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
)

// ──────────────────────────────────────────────
// In-memory index — brute-force cosine search
// ──────────────────────────────────────────────

type memoryIndexRecord struct {
	id       string
	vector   []float32
	document string
	metadata map[string]string
}

// MemoryProductIndex is an in-process ProductIndex for tests, examples and
// small catalogs. Brute-force cosine similarity; supports text queries
// when constructed with an EmbedFunc.
type MemoryProductIndex struct {
	mu      sync.RWMutex
	records map[string]memoryIndexRecord
	embed   EmbedFunc
}

// NewMemoryProductIndex creates an empty in-memory index. embed may be nil
// when only vector queries are needed.
func NewMemoryProductIndex(embed EmbedFunc) *MemoryProductIndex {
	return &MemoryProductIndex{
		records: make(map[string]memoryIndexRecord),
		embed:   embed,
	}
}

func (m *MemoryProductIndex) Upsert(_ context.Context, id string, embedding []float32, document string, metadata map[string]string) error {
	if id == "" {
		return fmt.Errorf("upsert requires an id")
	}
	copied := make(map[string]string, len(metadata))
	for k, v := range metadata {
		copied[k] = v
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[id] = memoryIndexRecord{id: id, vector: embedding, document: document, metadata: copied}
	return nil
}

func (m *MemoryProductIndex) Get(_ context.Context, ids []string) ([]IndexHit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	hits := make([]IndexHit, 0, len(ids))
	for _, id := range ids {
		rec, ok := m.records[id]
		if !ok {
			continue
		}
		hits = append(hits, recordToHit(rec, 1))
	}
	return hits, nil
}

func (m *MemoryProductIndex) QueryVector(_ context.Context, vector []float32, filter map[string]string, topK int) ([]IndexHit, error) {
	if topK <= 0 {
		topK = 10
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var hits []IndexHit
	for _, rec := range m.records {
		if !matchesFilter(rec.metadata, filter) {
			continue
		}
		hits = append(hits, recordToHit(rec, cosineSimilarity(vector, rec.vector)))
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

func (m *MemoryProductIndex) QueryText(ctx context.Context, text string, filter map[string]string, topK int) ([]IndexHit, error) {
	if m.embed == nil {
		return nil, fmt.Errorf("memory index has no embed function for text queries")
	}
	vector, err := m.embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return m.QueryVector(ctx, vector, filter, topK)
}

// Len returns the number of stored records.
func (m *MemoryProductIndex) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

func recordToHit(rec memoryIndexRecord, score float32) IndexHit {
	meta := make(map[string]string, len(rec.metadata))
	for k, v := range rec.metadata {
		meta[k] = v
	}
	return IndexHit{ID: rec.id, Score: score, Document: rec.document, Metadata: meta}
}

func matchesFilter(metadata, filter map[string]string) bool {
	for k, v := range filter {
		if metadata[k] != v {
			return false
		}
	}
	return true
}

func cosineSimilarity(a, b []float32) float32 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}

// Compile-time interface checks.
var (
	_ VectorQueryIndex = (*MemoryProductIndex)(nil)
	_ TextQueryIndex   = (*MemoryProductIndex)(nil)
)
