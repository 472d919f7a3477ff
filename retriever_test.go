package admsg

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

// fakeEmbed produces deterministic vectors: texts sharing more words land
// closer together.
func fakeEmbed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, 8)
	for i, word := range strings.Fields(text) {
		vec[(i+len(word))%8] += float32(len(word))
	}
	return vec, nil
}

func failingEmbed(_ context.Context, _ string) ([]float32, error) {
	return nil, fmt.Errorf("embedding backend down")
}

func seedProducts(t *testing.T, index *MemoryProductIndex) {
	t.Helper()
	ctx := context.Background()
	records := []struct {
		id   string
		meta map[string]string
	}{
		{"product_1", map[string]string{
			"brand": "설화수", "product_name": "자음생 에센스", "price": "180000",
			"original_price": "225000", "discount_rate": "20%", "rating": "4.8", "review_count": "2134",
		}},
		{"product_2", map[string]string{
			"brand": "설화수", "product_name": "자음생 크림", "price": "0",
			"original_price": "220000", "rating": "4.7", "review_count": "980",
		}},
		{"product_3", map[string]string{
			"brand": "라네즈", "product_name": "워터 슬리핑 마스크", "price": "32000",
			"rating": "4.6", "review_count": "5012",
		}},
	}
	for _, r := range records {
		vec, _ := fakeEmbed(ctx, r.meta["product_name"])
		if err := index.Upsert(ctx, r.id, vec, "상품명: "+r.meta["product_name"], r.meta); err != nil {
			t.Fatalf("seed %s: %v", r.id, err)
		}
	}
}

func TestRetrieverFiltersByBrand(t *testing.T) {
	index := NewMemoryProductIndex(fakeEmbed)
	seedProducts(t, index)

	querier, err := ResolveQuerier(index, fakeEmbed)
	if err != nil {
		t.Fatal(err)
	}
	r := NewProductRetriever(index, querier)

	products := r.Search(context.Background(), "설화수", testPersona(t), 0)
	if len(products) != 2 {
		t.Fatalf("got %d products, want 2", len(products))
	}
	for _, p := range products {
		if p.Brand != "설화수" {
			t.Fatalf("foreign brand leaked: %+v", p)
		}
	}
}

func TestRetrieverPriceFallsBackToOriginal(t *testing.T) {
	index := NewMemoryProductIndex(fakeEmbed)
	seedProducts(t, index)

	querier, err := ResolveQuerier(index, fakeEmbed)
	if err != nil {
		t.Fatal(err)
	}
	r := NewProductRetriever(index, querier)

	products := r.Search(context.Background(), "설화수", testPersona(t), 0)
	byID := make(map[string]ProductRecord, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	if byID["product_1"].Price != 180000 {
		t.Fatalf("sale price overridden: %d", byID["product_1"].Price)
	}
	if byID["product_2"].Price != 220000 {
		t.Fatalf("zero sale price must fall back to original: %d", byID["product_2"].Price)
	}
}

func TestRetrieverDegradesOnError(t *testing.T) {
	index := NewMemoryProductIndex(nil)
	querier := NewVectorQuerier(index, failingEmbed)
	r := NewProductRetriever(index, querier)

	products := r.Search(context.Background(), "설화수", testPersona(t), 0)
	if products != nil {
		t.Fatalf("failed retrieval must yield empty result, got %d", len(products))
	}
}

func TestRetrieverNilSafe(t *testing.T) {
	var r *ProductRetriever
	if got := r.Search(context.Background(), "설화수", nil, 3); got != nil {
		t.Fatal("nil retriever must return nothing")
	}
}

func TestBuildSearchQueryOrder(t *testing.T) {
	persona := testPersona(t)
	query := buildSearchQuery("설화수", persona)

	lines := strings.Split(query, "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d query lines: %q", len(lines), query)
	}
	if !strings.HasPrefix(lines[0], "브랜드:") || !strings.HasPrefix(lines[1], "연령대:") || !strings.HasPrefix(lines[2], "피부 고민:") {
		t.Fatalf("unexpected query structure: %q", query)
	}

	// Empty fields drop out instead of rendering blanks.
	if q := buildSearchQuery("", nil); q != "" {
		t.Fatalf("empty inputs must produce an empty query, got %q", q)
	}
}

func TestResolveQuerierCapabilities(t *testing.T) {
	index := NewMemoryProductIndex(fakeEmbed)

	// With a client-side embedder, vector querying wins.
	if _, err := ResolveQuerier(index, fakeEmbed); err != nil {
		t.Fatalf("vector-capable index rejected: %v", err)
	}

	// Without one, the index's own text capability is used.
	if _, err := ResolveQuerier(index, nil); err != nil {
		t.Fatalf("text-capable index rejected: %v", err)
	}
}
