package admsg

import (
	"context"
	"log"
	"strconv"
	"strings"
)

// ──────────────────────────────────────────────
// Product Retriever — persona-conditioned similarity search
// ──────────────────────────────────────────────

// ProductRecord is one catalog product as surfaced to the prompt and the
// final result. Immutable during a generation request.
type ProductRecord struct {
	ID           string  `json:"id"`
	Brand        string  `json:"brand"`
	ProductName  string  `json:"product_name"`
	Price        int     `json:"price"`
	DiscountRate string  `json:"discount_rate"`
	Rating       float64 `json:"rating"`
	ReviewCount  int     `json:"review_count"`
	URL          string  `json:"url"`
	Description  string  `json:"description"`
}

// ProductRetrieverConfig configures the retriever.
type ProductRetrieverConfig struct {
	TopK int // default 5
}

// ProductRetriever finds catalog products matching a brand and persona via
// similarity search with an exact brand filter. Read-only; retrieval
// failures degrade to an empty result instead of propagating.
type ProductRetriever struct {
	index   ProductIndex
	querier IndexQuerier
	topK    int
}

// NewProductRetriever creates a retriever over the product collection.
func NewProductRetriever(index ProductIndex, querier IndexQuerier, config ...ProductRetrieverConfig) *ProductRetriever {
	cfg := ProductRetrieverConfig{TopK: 5}
	if len(config) > 0 {
		cfg = config[0]
	}
	if cfg.TopK <= 0 {
		cfg.TopK = 5
	}
	return &ProductRetriever{index: index, querier: querier, topK: cfg.TopK}
}

// Search returns up to topK products for the brand, ranked by decreasing
// similarity to the persona-conditioned query. topK <= 0 uses the
// configured default. An empty result is not an error; downstream
// generation proceeds without product grounding.
func (r *ProductRetriever) Search(ctx context.Context, brand string, persona *Persona, topK int) []ProductRecord {
	if r == nil || r.querier == nil {
		return nil
	}
	if topK <= 0 {
		topK = r.topK
	}

	query := buildSearchQuery(brand, persona)
	hits, err := r.querier.Query(ctx, query, map[string]string{"brand": brand}, topK)
	if err != nil {
		log.Printf("[ProductRetriever] search failed for brand %s: %v", brand, err)
		return nil
	}

	products := make([]ProductRecord, 0, len(hits))
	for _, h := range hits {
		p := hitToProduct(h)
		if p.Brand != brand {
			// The metadata filter should already guarantee this; a store
			// that ignores filters must not leak foreign brands.
			continue
		}
		products = append(products, p)
	}
	return products
}

// buildSearchQuery concatenates brand and persona attributes in fixed
// order. Empty fields are omitted so the query text stays dense.
func buildSearchQuery(brand string, persona *Persona) string {
	var lines []string
	if brand != "" {
		lines = append(lines, "브랜드: "+brand)
	}
	if persona != nil {
		if persona.Metadata.AgeGroup != "" {
			lines = append(lines, "연령대: "+persona.Metadata.AgeGroup)
		}
		if len(persona.Metadata.SkinConcerns) > 0 {
			lines = append(lines, "피부 고민: "+strings.Join(persona.Metadata.SkinConcerns, ", "))
		}
		if len(persona.Metadata.Interests) > 0 {
			lines = append(lines, "관심사: "+strings.Join(persona.Metadata.Interests, ", "))
		}
	}
	return strings.Join(lines, "\n")
}

// hitToProduct maps an index hit onto a ProductRecord. Price policy: a
// missing or zero sale price falls back to the record's original price;
// when both are absent the price stays zero.
func hitToProduct(h IndexHit) ProductRecord {
	price := metaInt(h.Metadata, "price")
	if price == 0 {
		price = metaInt(h.Metadata, "original_price")
	}
	return ProductRecord{
		ID:           h.ID,
		Brand:        h.Metadata["brand"],
		ProductName:  h.Metadata["product_name"],
		Price:        price,
		DiscountRate: h.Metadata["discount_rate"],
		Rating:       metaFloat(h.Metadata, "rating"),
		ReviewCount:  metaInt(h.Metadata, "review_count"),
		URL:          h.Metadata["url"],
		Description:  h.Document,
	}
}

func metaInt(m map[string]string, key string) int {
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(m[key]))
	if err != nil {
		return 0
	}
	return n
}

func metaFloat(m map[string]string, key string) float64 {
	if m == nil {
		return 0
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(m[key]), 64)
	if err != nil {
		return 0
	}
	return f
}
