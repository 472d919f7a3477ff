package admsg

import (
	"context"
	"testing"
)

// getOnlyIndex implements ProductIndex but neither query capability.
type getOnlyIndex struct{}

func (getOnlyIndex) Upsert(context.Context, string, []float32, string, map[string]string) error {
	return nil
}
func (getOnlyIndex) Get(context.Context, []string) ([]IndexHit, error) { return nil, nil }

func TestResolveQuerierRejectsQuerylessIndex(t *testing.T) {
	if _, err := ResolveQuerier(getOnlyIndex{}, nil); err == nil {
		t.Fatal("index without query capability must be rejected at construction")
	}
	// A client-side embedder does not help an index that cannot take vectors.
	if _, err := ResolveQuerier(getOnlyIndex{}, fakeEmbed); err == nil {
		t.Fatal("embedder alone cannot make a get-only index queryable")
	}
}

func TestVectorQuerierUsesEmbedder(t *testing.T) {
	ctx := context.Background()
	index := NewMemoryProductIndex(nil)
	vec, _ := fakeEmbed(ctx, "상품명: 에센스")
	if err := index.Upsert(ctx, "p1", vec, "상품명: 에센스", nil); err != nil {
		t.Fatal(err)
	}

	q := NewVectorQuerier(index, fakeEmbed)
	hits, err := q.Query(ctx, "상품명: 에센스", nil, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 || hits[0].ID != "p1" {
		t.Fatalf("unexpected hits: %+v", hits)
	}
	if hits[0].Score < 0.99 {
		t.Fatalf("identical text should score ~1, got %f", hits[0].Score)
	}
}

func TestTextQuerierDelegates(t *testing.T) {
	ctx := context.Background()
	index := NewMemoryProductIndex(fakeEmbed)
	vec, _ := fakeEmbed(ctx, "상품명: 크림")
	if err := index.Upsert(ctx, "p2", vec, "상품명: 크림", nil); err != nil {
		t.Fatal(err)
	}

	q := NewTextQuerier(index)
	hits, err := q.Query(ctx, "상품명: 크림", nil, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 || hits[0].ID != "p2" {
		t.Fatalf("unexpected hits: %+v", hits)
	}
}

func TestMemoryIndexUpsertOverwrites(t *testing.T) {
	ctx := context.Background()
	index := NewMemoryProductIndex(nil)

	if err := index.Upsert(ctx, "", nil, "doc", nil); err == nil {
		t.Fatal("empty id must be rejected")
	}

	if err := index.Upsert(ctx, "p", []float32{1}, "old", map[string]string{"v": "1"}); err != nil {
		t.Fatal(err)
	}
	if err := index.Upsert(ctx, "p", []float32{1}, "new", map[string]string{"v": "2"}); err != nil {
		t.Fatal(err)
	}

	hits, err := index.Get(ctx, []string{"p", "missing"})
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 {
		t.Fatalf("got %d hits, missing ids must be absent not errors", len(hits))
	}
	if hits[0].Document != "new" || hits[0].Metadata["v"] != "2" {
		t.Fatalf("overwrite failed: %+v", hits[0])
	}
}
