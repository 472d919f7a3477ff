package admsg

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"
)

// ──────────────────────────────────────────────
// Result Aggregator — final result assembly + persistence
// ──────────────────────────────────────────────

// MessageVariant is one validated marketing message variation.
type MessageVariant struct {
	Strategy              MessageStrategy `json:"strategy"`
	Subject               string          `json:"subject"`
	Body                  string          `json:"body"`
	RecommendedProductIDs []string        `json:"recommended_product_ids"`
	BrandAlignmentScore   float64         `json:"brand_alignment_score"`
	EmotionScore          float64         `json:"emotion_score"`
}

// GenerationMeta carries model and token accounting for one request.
type GenerationMeta struct {
	RequestID        string  `json:"request_id"`
	Model            string  `json:"model"`
	Temperature      float32 `json:"temperature"`
	PromptTokens     int     `json:"prompt_tokens"`
	CompletionTokens int     `json:"completion_tokens"`
	TotalTokens      int     `json:"total_tokens"`
}

// GenerationResult is the final output of one generation request. Never
// mutated after assembly. Zero surviving variations is a valid, if
// degenerate, outcome.
type GenerationResult struct {
	PersonaID           string           `json:"persona_id"`
	PersonaName         string           `json:"persona_name"`
	Brand               string           `json:"brand"`
	CampaignGoal        string           `json:"campaign_goal"`
	Variations          []MessageVariant `json:"variations"`
	RecommendedProducts []ProductRecord  `json:"recommended_products"`
	Metadata            GenerationMeta   `json:"metadata"`
}

// AssembleResult packages surviving variants, retrieved products and
// generation metadata into the final result. Pure composition, no I/O.
func AssembleResult(req GenerateRequest, persona *Persona, products []ProductRecord, variants []MessageVariant, meta GenerationMeta) *GenerationResult {
	if variants == nil {
		variants = []MessageVariant{}
	}
	if products == nil {
		products = []ProductRecord{}
	}
	return &GenerationResult{
		PersonaID:           req.PersonaID,
		PersonaName:         persona.Name,
		Brand:               req.Brand,
		CampaignGoal:        req.CampaignGoal,
		Variations:          variants,
		RecommendedProducts: products,
		Metadata:            meta,
	}
}

// Save writes the result to path as human-readable UTF-8 JSON, overwriting
// any existing file. Write failures surface as PersistError.
func (r *GenerationResult) Save(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return &PersistError{Path: path, Err: err}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return &PersistError{Path: path, Err: err}
	}
	return nil
}

// LoadResult reads a persisted result back from path.
func LoadResult(path string) (*GenerationResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read result %s: %w", path, err)
	}
	var r GenerationResult
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode result %s: %w", path, err)
	}
	return &r, nil
}

// FormatResult renders a result for console display.
func FormatResult(r *GenerationResult) string {
	var sb strings.Builder
	sb.WriteString("브랜드: " + r.Brand + "\n")
	sb.WriteString("페르소나: " + r.PersonaName + "\n")
	sb.WriteString("캠페인 목표: " + r.CampaignGoal + "\n")
	sb.WriteString(fmt.Sprintf("총 %d개 배리에이션 생성\n", len(r.Variations)))

	if len(r.RecommendedProducts) > 0 {
		sb.WriteString(fmt.Sprintf("\n추천 상품 (%d개):\n", len(r.RecommendedProducts)))
		for i, p := range r.RecommendedProducts {
			if i == 3 {
				break
			}
			sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, p.ProductName))
			sb.WriteString(fmt.Sprintf("     가격: ₩%s (할인: %s)\n", formatComma(p.Price), p.DiscountRate))
			sb.WriteString(fmt.Sprintf("     평점: %.1f/5.0 (%s개 리뷰)\n", p.Rating, formatComma(p.ReviewCount)))
		}
	}

	for i, v := range r.Variations {
		sb.WriteString(fmt.Sprintf("\n【배리에이션 %d: %s】\n", i+1, v.Strategy))
		sb.WriteString(fmt.Sprintf("제목 (%d자): %s\n", utf8.RuneCountInString(v.Subject), v.Subject))
		sb.WriteString(fmt.Sprintf("본문 (%d자):\n%s\n", utf8.RuneCountInString(v.Body), v.Body))
		sb.WriteString(fmt.Sprintf("브랜드 일치도: %.2f / 감성 점수: %.2f\n", v.BrandAlignmentScore, v.EmotionScore))
	}

	sb.WriteString(fmt.Sprintf("\n모델: %s | 총 토큰: %s (프롬프트 %s / 응답 %s)\n",
		r.Metadata.Model,
		formatComma(r.Metadata.TotalTokens),
		formatComma(r.Metadata.PromptTokens),
		formatComma(r.Metadata.CompletionTokens)))
	return sb.String()
}
