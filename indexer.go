package admsg

import (
	"bufio"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// ──────────────────────────────────────────────
// Catalog Indexer — offline embedding of brands, products, personas
// ──────────────────────────────────────────────

// CatalogProduct is one catalog row to index, as produced by the external
// crawl pipeline.
type CatalogProduct struct {
	ID            string
	Brand         string
	ProductName   string
	Price         int // sale price
	OriginalPrice int
	DiscountRate  int // percent
	Rating        float64
	ReviewCount   int
	URL           string
	SkinTypeStats map[string]float64
	AgeGroupStats map[string]float64
}

// StableID returns the idempotent index id for the product: re-running
// indexing for the same record overwrites instead of duplicating.
func (p CatalogProduct) StableID() string {
	if p.ID != "" {
		return "product_" + p.ID
	}
	sum := sha1.Sum([]byte(p.Brand + "\x1f" + p.ProductName))
	return "product_" + hex.EncodeToString(sum[:])[:12]
}

// CatalogIndexerOptions groups the indexer's targets. Any nil index skips
// that collection.
type CatalogIndexerOptions struct {
	Products ProductIndex
	Brands   ProductIndex
	Personas ProductIndex
	Embed    EmbedFunc
	Workers  int // bounded parallelism across records, default 4
}

// CatalogIndexer embeds and upserts brand guidelines, catalog products and
// personas into their collections. Logically separate from the request
// path; re-runnable at any time.
type CatalogIndexer struct {
	products ProductIndex
	brands   ProductIndex
	personas ProductIndex
	embed    EmbedFunc
	workers  int
}

// NewCatalogIndexer creates an indexer from options.
func NewCatalogIndexer(opts CatalogIndexerOptions) (*CatalogIndexer, error) {
	if opts.Embed == nil {
		return nil, fmt.Errorf("catalog indexer requires an embed function")
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = 4
	}
	return &CatalogIndexer{
		products: opts.Products,
		brands:   opts.Brands,
		personas: opts.Personas,
		embed:    opts.Embed,
		workers:  workers,
	}, nil
}

// IndexProducts embeds and upserts catalog products with bounded
// parallelism. Per-record failures are logged and counted; an error is
// returned when any record failed so operators can re-run.
func (x *CatalogIndexer) IndexProducts(ctx context.Context, items []CatalogProduct) error {
	if x.products == nil {
		return fmt.Errorf("no product index configured")
	}

	sem := make(chan struct{}, x.workers)
	var wg sync.WaitGroup
	var mu sync.Mutex
	failed := 0

	for _, item := range items {
		item := item
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			if err := x.indexProduct(ctx, item); err != nil {
				log.Printf("[CatalogIndexer] product %q failed: %v", item.ProductName, err)
				mu.Lock()
				failed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if failed > 0 {
		return fmt.Errorf("%d of %d products failed to index", failed, len(items))
	}
	log.Printf("[CatalogIndexer] indexed %d products", len(items))
	return nil
}

func (x *CatalogIndexer) indexProduct(ctx context.Context, p CatalogProduct) error {
	doc := ProductDocument(p)
	vector, err := x.embed(ctx, doc)
	if err != nil {
		return fmt.Errorf("embed: %w", err)
	}
	metadata := map[string]string{
		"brand":          p.Brand,
		"product_name":   p.ProductName,
		"price":          strconv.Itoa(p.Price),
		"original_price": strconv.Itoa(p.OriginalPrice),
		"discount_rate":  strconv.Itoa(p.DiscountRate) + "%",
		"rating":         strconv.FormatFloat(p.Rating, 'f', -1, 64),
		"review_count":   strconv.Itoa(p.ReviewCount),
		"url":            p.URL,
		"type":           "product",
	}
	return x.products.Upsert(ctx, p.StableID(), vector, doc, metadata)
}

// IndexBrandGuidelines embeds and upserts brand tone guidelines keyed as
// brand_{name}.
func (x *CatalogIndexer) IndexBrandGuidelines(ctx context.Context, guidelines map[string]string) error {
	if x.brands == nil {
		return fmt.Errorf("no brand index configured")
	}

	// Deterministic order keeps re-runs comparable in logs.
	names := make([]string, 0, len(guidelines))
	for name := range guidelines {
		names = append(names, name)
	}
	sort.Strings(names)

	failed := 0
	for _, name := range names {
		doc := "브랜드: " + name + "\n\n" + guidelines[name]
		vector, err := x.embed(ctx, doc)
		if err != nil {
			log.Printf("[CatalogIndexer] brand %q embed failed: %v", name, err)
			failed++
			continue
		}
		metadata := map[string]string{
			"brand":    name,
			"category": "guidelines",
			"type":     "brand_tone",
		}
		if err := x.brands.Upsert(ctx, BrandKey(name), vector, doc, metadata); err != nil {
			log.Printf("[CatalogIndexer] brand %q upsert failed: %v", name, err)
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d brand guidelines failed to index", failed, len(names))
	}
	log.Printf("[CatalogIndexer] indexed %d brand guidelines", len(names))
	return nil
}

// IndexPersonas embeds and upserts personas for similarity lookups.
func (x *CatalogIndexer) IndexPersonas(ctx context.Context, personas []*Persona) error {
	if x.personas == nil {
		return fmt.Errorf("no persona index configured")
	}

	failed := 0
	for _, p := range personas {
		doc := p.EmbeddingText()
		vector, err := x.embed(ctx, doc)
		if err != nil {
			log.Printf("[CatalogIndexer] persona %q embed failed: %v", p.ID, err)
			failed++
			continue
		}
		metadata := map[string]string{
			"persona_id":   p.ID,
			"persona_name": p.Name,
			"type":         "persona",
		}
		if p.Metadata.AgeGroup != "" {
			metadata["age_group"] = p.Metadata.AgeGroup
		}
		if len(p.Metadata.SkinConcerns) > 0 {
			metadata["skin_concerns"] = strings.Join(p.Metadata.SkinConcerns, ", ")
		}
		if err := x.personas.Upsert(ctx, p.ID, vector, doc, metadata); err != nil {
			log.Printf("[CatalogIndexer] persona %q upsert failed: %v", p.ID, err)
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d personas failed to index", failed, len(personas))
	}
	log.Printf("[CatalogIndexer] indexed %d personas", len(personas))
	return nil
}

// ProductDocument renders the embedding document for a catalog product.
func ProductDocument(p CatalogProduct) string {
	var sb strings.Builder
	sb.WriteString("브랜드: " + orNA(p.Brand) + "\n")
	sb.WriteString("상품명: " + orNA(p.ProductName) + "\n")
	sb.WriteString("원가: ₩" + formatComma(p.OriginalPrice) + "\n")
	sb.WriteString("할인율: " + strconv.Itoa(p.DiscountRate) + "%\n")
	sb.WriteString("판매가: ₩" + formatComma(p.Price) + "\n")
	sb.WriteString(fmt.Sprintf("별점: %.1f/5.0\n", p.Rating))
	sb.WriteString("리뷰: " + strconv.Itoa(p.ReviewCount) + "개\n")
	sb.WriteString("피부타입별 구매비율: " + formatStats(p.SkinTypeStats) + "\n")
	sb.WriteString("연령대별 구매비율: " + formatStats(p.AgeGroupStats))
	return sb.String()
}

func formatStats(stats map[string]float64) string {
	if len(stats) == 0 {
		return "N/A"
	}
	keys := make([]string, 0, len(stats))
	for k := range stats {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %g%%", k, stats[k]))
	}
	return strings.Join(parts, ", ")
}

// ──────────────────────────────────────────────
// Catalog file loaders
// ──────────────────────────────────────────────

// crawledProduct mirrors the crawl pipeline's JSONL field names.
type crawledProduct struct {
	Brand         string   `json:"브랜드"`
	ProductName   string   `json:"상품명"`
	Price         int      `json:"판매가"`
	OriginalPrice int      `json:"원가"`
	DiscountRate  int      `json:"할인율"`
	Rating        *float64 `json:"별점"`
	ReviewCount   *int     `json:"리뷰_갯수"`
	URL           string   `json:"url"`
	BuyerStats    *struct {
		SkinType map[string]float64 `json:"피부타입별"`
		AgeGroup map[string]float64 `json:"연령대별"`
	} `json:"구매자_통계"`
}

// LoadProductJSONL reads crawled products from a JSONL file. Unparseable
// lines are skipped, matching how the crawl output is consumed elsewhere.
func LoadProductJSONL(path string) ([]CatalogProduct, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var products []CatalogProduct
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var row crawledProduct
		if err := json.Unmarshal([]byte(line), &row); err != nil {
			continue
		}
		if row.Brand == "" && row.ProductName == "" {
			continue
		}
		p := CatalogProduct{
			Brand:         row.Brand,
			ProductName:   row.ProductName,
			Price:         row.Price,
			OriginalPrice: row.OriginalPrice,
			DiscountRate:  row.DiscountRate,
			URL:           row.URL,
		}
		if row.Rating != nil {
			p.Rating = *row.Rating
		}
		if row.ReviewCount != nil {
			p.ReviewCount = *row.ReviewCount
		}
		if row.BuyerStats != nil {
			p.SkinTypeStats = row.BuyerStats.SkinType
			p.AgeGroupStats = row.BuyerStats.AgeGroup
		}
		products = append(products, p)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return products, nil
}

// LoadBrandToneYAML reads the brand_ton.yaml guideline file: a
// brand_ton_prompt mapping of brand name to guideline text.
func LoadBrandToneYAML(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	var doc struct {
		BrandTonPrompt map[string]string `yaml:"brand_ton_prompt"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if doc.BrandTonPrompt == nil {
		return nil, fmt.Errorf("%s has no brand_ton_prompt section", path)
	}
	return doc.BrandTonPrompt, nil
}
