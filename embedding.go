package admsg

import (
	"context"
	"fmt"
)

// ──────────────────────────────────────────────
// Embedding + Index abstractions — vector retrieval layer
// ──────────────────────────────────────────────

// EmbedFunc generates a dense embedding vector for a text string.
// Callers wire this to their embedding provider (OpenAI, Snowflake Arctic,
// a local model, etc.). Must be deterministic for identical input within
// one model version.
type EmbedFunc func(ctx context.Context, text string) ([]float32, error)

// Embedder describes a named, fixed-dimension embedding model.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimension() int
	Name() string
}

// EmbedderFunc adapts an Embedder into the plain EmbedFunc shape most
// components take.
func EmbedderFunc(e Embedder) EmbedFunc {
	return e.Embed
}

// IndexHit is a single result from a similarity or id lookup.
type IndexHit struct {
	ID       string            `json:"id"`
	Score    float32           `json:"score"`
	Document string            `json:"document"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// ProductIndex is the pluggable storage interface shared by all index
// backends (pgvector, Qdrant, Chroma, in-memory). Query capability is
// expressed by the two sub-interfaces below, resolved once at
// construction time rather than branched per call.
type ProductIndex interface {
	// Upsert inserts or overwrites a record. Re-running with the same id
	// must overwrite, never duplicate.
	Upsert(ctx context.Context, id string, embedding []float32, document string, metadata map[string]string) error

	// Get retrieves records by exact id. Missing ids are simply absent
	// from the result, not an error.
	Get(ctx context.Context, ids []string) ([]IndexHit, error)
}

// VectorQueryIndex is a ProductIndex queried with a pre-computed embedding.
type VectorQueryIndex interface {
	ProductIndex
	QueryVector(ctx context.Context, vector []float32, filter map[string]string, topK int) ([]IndexHit, error)
}

// TextQueryIndex is a ProductIndex that embeds query text on the server
// side (Chroma-style query_texts).
type TextQueryIndex interface {
	ProductIndex
	QueryText(ctx context.Context, text string, filter map[string]string, topK int) ([]IndexHit, error)
}

// IndexQuerier issues a similarity query in whatever form the backing
// index supports. Retrieval components hold one of these instead of
// sniffing index capabilities on every call.
type IndexQuerier interface {
	Query(ctx context.Context, text string, filter map[string]string, topK int) ([]IndexHit, error)
}

type vectorQuerier struct {
	index VectorQueryIndex
	embed EmbedFunc
}

func (q *vectorQuerier) Query(ctx context.Context, text string, filter map[string]string, topK int) ([]IndexHit, error) {
	vector, err := q.embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return q.index.QueryVector(ctx, vector, filter, topK)
}

type textQuerier struct {
	index TextQueryIndex
}

func (q *textQuerier) Query(ctx context.Context, text string, filter map[string]string, topK int) ([]IndexHit, error) {
	return q.index.QueryText(ctx, text, filter, topK)
}

// NewVectorQuerier pairs a vector-query index with an embedding function.
func NewVectorQuerier(index VectorQueryIndex, embed EmbedFunc) IndexQuerier {
	return &vectorQuerier{index: index, embed: embed}
}

// NewTextQuerier wraps a text-native index.
func NewTextQuerier(index TextQueryIndex) IndexQuerier {
	return &textQuerier{index: index}
}

// ResolveQuerier picks the query path for an index: client-side embedding
// when an EmbedFunc is supplied and the index accepts vectors, otherwise
// the index's own text query. Mirrors how the surrounding system is
// deployed with either kind of store.
func ResolveQuerier(index ProductIndex, embed EmbedFunc) (IndexQuerier, error) {
	if vi, ok := index.(VectorQueryIndex); ok && embed != nil {
		return NewVectorQuerier(vi, embed), nil
	}
	if ti, ok := index.(TextQueryIndex); ok {
		return NewTextQuerier(ti), nil
	}
	if _, ok := index.(VectorQueryIndex); ok {
		return nil, fmt.Errorf("index supports vector queries but no embed function was provided")
	}
	return nil, fmt.Errorf("index supports neither vector nor text queries")
}
