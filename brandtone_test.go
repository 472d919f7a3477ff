package admsg

import (
	"context"
	"strings"
	"testing"
)

func TestBrandToneExactLookup(t *testing.T) {
	ctx := context.Background()
	index := NewMemoryProductIndex(fakeEmbed)

	guideline := "브랜드: 설화수\n\n우아하고 격조있는 표현을 사용합니다."
	vec, _ := fakeEmbed(ctx, guideline)
	if err := index.Upsert(ctx, BrandKey("설화수"), vec, guideline, map[string]string{"brand": "설화수"}); err != nil {
		t.Fatal(err)
	}

	querier, err := ResolveQuerier(index, fakeEmbed)
	if err != nil {
		t.Fatal(err)
	}
	s := NewBrandToneStore(index, querier)

	got := s.Guideline(ctx, "설화수")
	if got != guideline {
		t.Fatalf("exact lookup returned %q", got)
	}
}

func TestBrandToneSimilarityFallback(t *testing.T) {
	ctx := context.Background()
	index := NewMemoryProductIndex(fakeEmbed)

	// Indexed under a key that exact lookup for the short name misses.
	guideline := "브랜드: 설화수 프리미엄\n\n한방 헤리티지를 강조합니다."
	vec, _ := fakeEmbed(ctx, guideline)
	if err := index.Upsert(ctx, BrandKey("설화수 프리미엄"), vec, guideline, nil); err != nil {
		t.Fatal(err)
	}

	querier, err := ResolveQuerier(index, fakeEmbed)
	if err != nil {
		t.Fatal(err)
	}
	s := NewBrandToneStore(index, querier)

	got := s.Guideline(ctx, "설화수")
	if got != guideline {
		t.Fatalf("similarity fallback returned %q", got)
	}
}

func TestBrandTonePlaceholder(t *testing.T) {
	ctx := context.Background()
	index := NewMemoryProductIndex(fakeEmbed)
	querier, err := ResolveQuerier(index, fakeEmbed)
	if err != nil {
		t.Fatal(err)
	}
	s := NewBrandToneStore(index, querier)

	got := s.Guideline(ctx, "미지의브랜드")
	if !strings.Contains(got, "미지의브랜드") || !strings.Contains(got, "가이드라인 없음") {
		t.Fatalf("placeholder malformed: %q", got)
	}

	// Same placeholder every call.
	if got != s.Guideline(ctx, "미지의브랜드") {
		t.Fatal("placeholder must be deterministic")
	}
}

func TestBrandToneNilStore(t *testing.T) {
	var s *BrandToneStore
	got := s.Guideline(context.Background(), "설화수")
	if got != PlaceholderGuideline("설화수") {
		t.Fatalf("nil store must degrade to placeholder, got %q", got)
	}
}
