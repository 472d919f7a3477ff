package admsg

import (
	"context"
	"log"
)

// ──────────────────────────────────────────────
// Brand Tone Store — voice guideline lookup with safe fallback
// ──────────────────────────────────────────────

// BrandToneRecord pairs a brand with its voice/guideline text.
type BrandToneRecord struct {
	Brand     string `json:"brand"`
	Guideline string `json:"guideline"`
}

// BrandToneStore looks up brand voice guidelines from an indexed
// collection. Lookups never fail: a missing guideline degrades to a
// deterministic placeholder so message generation is never blocked.
type BrandToneStore struct {
	index   ProductIndex
	querier IndexQuerier
}

// NewBrandToneStore creates a store over the brand-guideline collection.
// querier may be nil when the index has no query capability; only the
// similarity fallback is lost.
func NewBrandToneStore(index ProductIndex, querier IndexQuerier) *BrandToneStore {
	return &BrandToneStore{index: index, querier: querier}
}

// BrandKey is the exact-lookup id under which a brand's guideline is indexed.
func BrandKey(brand string) string {
	return "brand_" + brand
}

// PlaceholderGuideline is the deterministic stand-in used when no
// guideline record exists for the brand.
func PlaceholderGuideline(brand string) string {
	return "브랜드: " + brand + "\n(가이드라인 없음)"
}

// Guideline returns the guideline text for brand. Exact-key lookup first,
// then single-nearest similarity, then the placeholder. Errors are logged
// and absorbed.
func (s *BrandToneStore) Guideline(ctx context.Context, brand string) string {
	if s == nil || s.index == nil {
		return PlaceholderGuideline(brand)
	}

	hits, err := s.index.Get(ctx, []string{BrandKey(brand)})
	if err != nil {
		log.Printf("[BrandToneStore] exact lookup failed for %s: %v", brand, err)
	}
	if len(hits) > 0 && hits[0].Document != "" {
		return hits[0].Document
	}

	if s.querier != nil {
		hits, err = s.querier.Query(ctx, "브랜드: "+brand, nil, 1)
		if err != nil {
			log.Printf("[BrandToneStore] similarity lookup failed for %s: %v", brand, err)
		}
		if len(hits) > 0 && hits[0].Document != "" {
			return hits[0].Document
		}
	}

	return PlaceholderGuideline(brand)
}
