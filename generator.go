package admsg

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
)

// ──────────────────────────────────────────────
// AdMessageGenerator — the end-to-end RAG pipeline
// ──────────────────────────────────────────────

// GenerateRequest is one message-generation invocation.
type GenerateRequest struct {
	Brand        string `json:"brand"`
	PersonaID    string `json:"persona_id"`
	CampaignGoal string `json:"campaign_goal,omitempty"` // empty uses the configured default
}

// CampaignGoals returns the preset campaign goals offered to operators.
// Any free-text goal is equally valid.
func CampaignGoals() []string {
	return []string{
		"신규 고객 유치",
		"재구매 유도",
		"신제품 프로모션",
		"계절 맞춤 프로모션",
		"재고 소진",
		"브랜드 인지도 제고",
	}
}

// AdMessageGeneratorOptions groups the pipeline's collaborators. Registry,
// prompts and validator default when nil; Client is required. Tones,
// Retriever and Cache are optional: without them the pipeline runs with
// placeholder guidelines, no product grounding, and no memoization.
type AdMessageGeneratorOptions struct {
	Registry            *PersonaRegistry
	Tones               *BrandToneStore
	Retriever           *ProductRetriever
	Client              *GenerationClient
	Validator           *OutputValidator
	Cache               ResultCache
	DefaultCampaignGoal string // default "재구매 유도"
}

// AdMessageGenerator runs the retrieval-augmented generation pipeline:
// persona lookup → brand tone lookup → product retrieval → prompt assembly
// → generation → validation → result assembly. Single-request,
// synchronous; safe for concurrent use since all shared state is read-only.
type AdMessageGenerator struct {
	registry    *PersonaRegistry
	tones       *BrandToneStore
	retriever   *ProductRetriever
	prompts     *PromptBuilder
	client      *GenerationClient
	validator   *OutputValidator
	cache       ResultCache
	defaultGoal string
}

// NewAdMessageGenerator wires the pipeline from options.
func NewAdMessageGenerator(opts AdMessageGeneratorOptions) *AdMessageGenerator {
	g := &AdMessageGenerator{
		registry:    opts.Registry,
		tones:       opts.Tones,
		retriever:   opts.Retriever,
		prompts:     NewPromptBuilder(),
		client:      opts.Client,
		validator:   opts.Validator,
		cache:       opts.Cache,
		defaultGoal: opts.DefaultCampaignGoal,
	}
	if g.registry == nil {
		g.registry = DefaultPersonaRegistry()
	}
	if g.validator == nil {
		g.validator = NewOutputValidator()
	}
	if g.defaultGoal == "" {
		g.defaultGoal = "재구매 유도"
	}
	return g
}

// Generate runs one end-to-end request. Retrieval problems degrade to safe
// defaults; generation problems return typed errors carrying the request's
// identity and failure stage.
func (g *AdMessageGenerator) Generate(ctx context.Context, req GenerateRequest) (*GenerationResult, error) {
	if req.CampaignGoal == "" {
		req.CampaignGoal = g.defaultGoal
	}

	key := CacheKey(req.Brand, req.PersonaID, req.CampaignGoal)
	if g.cache != nil {
		if cached, ok := g.cache.Get(ctx, key); ok {
			log.Printf("[AdMessageGenerator] cache hit: brand=%s persona=%s", req.Brand, req.PersonaID)
			return cached, nil
		}
	}

	persona, err := g.registry.Get(req.PersonaID)
	if err != nil {
		return nil, err
	}

	guideline := g.tones.Guideline(ctx, req.Brand)
	products := g.retriever.Search(ctx, req.Brand, persona, 0)
	log.Printf("[AdMessageGenerator] brand=%s persona=%s goal=%s products=%d",
		req.Brand, req.PersonaID, req.CampaignGoal, len(products))

	system := g.prompts.BuildSystemPrompt()
	user := g.prompts.BuildUserPrompt(guideline, persona, products, req.CampaignGoal)

	raw, err := g.client.Generate(ctx, system, user)
	if err != nil {
		return nil, tagRequest(err, req.Brand, req.PersonaID)
	}

	variants := g.screen(raw.Variants)
	log.Printf("[AdMessageGenerator] %d of %d variants survived validation", len(variants), len(raw.Variants))

	meta := GenerationMeta{
		RequestID:        uuid.NewString(),
		Model:            g.client.Model(),
		Temperature:      g.client.Temperature(),
		PromptTokens:     raw.Usage.PromptTokens,
		CompletionTokens: raw.Usage.CompletionTokens,
		TotalTokens:      raw.Usage.TotalTokens,
	}
	result := AssembleResult(req, persona, products, variants, meta)

	if g.cache != nil {
		g.cache.Set(ctx, key, result)
	}
	return result, nil
}

// screen parses strategies and enforces length limits. Violating variants
// are dropped individually with the reason logged; the batch survives.
func (g *AdMessageGenerator) screen(raw []RawVariant) []MessageVariant {
	variants := make([]MessageVariant, 0, len(raw))
	for _, rv := range raw {
		strategy, err := ParseMessageStrategy(rv.Strategy)
		if err != nil {
			log.Printf("[AdMessageGenerator] dropping variant: %v", err)
			continue
		}
		if violation := g.validator.Check(rv); violation != nil {
			log.Printf("[AdMessageGenerator] dropping variant (%s): %s", strategy, violation)
			continue
		}
		variants = append(variants, MessageVariant{
			Strategy:              strategy,
			Subject:               rv.Subject,
			Body:                  rv.Body,
			RecommendedProductIDs: rv.RecommendedProductIDs,
			BrandAlignmentScore:   rv.BrandAlignmentScore,
			EmotionScore:          rv.EmotionScore,
		})
	}
	return variants
}

// GenerateWithRetry retries Generate on transient failures (backend
// transport errors and timeouts) with doubling backoff. Parse failures and
// unknown personas are returned immediately. attempts <= 0 means 3.
func (g *AdMessageGenerator) GenerateWithRetry(ctx context.Context, req GenerateRequest, attempts int) (*GenerationResult, error) {
	if attempts <= 0 {
		attempts = 3
	}
	backoff := time.Second

	var lastErr error
	for i := 0; i < attempts; i++ {
		result, err := g.Generate(ctx, req)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if !IsTransient(err) {
			return nil, err
		}
		if i == attempts-1 {
			break
		}
		log.Printf("[AdMessageGenerator] attempt %d/%d failed, retrying in %s: %v", i+1, attempts, backoff, err)
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return nil, lastErr
		}
		backoff *= 2
	}
	return nil, lastErr
}
