package admsg

import (
	"fmt"
	"strconv"
	"strings"
)

// ──────────────────────────────────────────────
// Prompt Assembler — deterministic system/user prompt construction
// ──────────────────────────────────────────────

// systemPrompt is static: role, hard constraints and the mandatory output
// contract. Generated prompts must be byte-identical for identical inputs.
const systemPrompt = `당신은 아모레퍼시픽의 전문 마케팅 카피라이터입니다.

역할:
- 브랜드별 톤앤매너를 정확히 준수
- 페르소나에 맞는 공감형 메시지 작성
- 감성적이면서도 구체적인 혜택 전달
- 추천 상품의 구체적인 이름, 가격, 혜택을 반드시 포함
- 제약 조건을 철저히 지킴

제약 조건:
- 제목: 40자 이내 (공백 포함)
- 본문: 300-350자 (최대한 350자에 가깝게 작성)
- 브랜드 금지어 사용 금지
- 이모티콘 사용 금지 (단, 브랜드가 명시적으로 허용한 경우만 예외)

중요 작성 원칙:
1. 본문은 반드시 300자 이상으로 풍부하게 작성
2. 추천 상품의 구체적인 이름을 본문에 2-3개 명시
3. 가격, 할인율 등 구체적인 수치 정보 포함
4. 상품의 핵심 성분이나 기술을 구체적으로 언급
5. 페르소나의 피부 고민과 상품의 효능을 명확히 연결

출력 형식:
반드시 JSON 형식으로 5개의 배리에이션을 생성하세요.
각 배리에이션은 다음 전략 중 하나를 따라야 합니다:
1. 효능 중심: 제품의 핵심 베네핏, 성분, 기술을 구체적으로 강조
2. 감성 중심: 페르소나의 감정과 라이프스타일에 공감하되 상품 연계
3. 혜택 중심: 할인율, 가격, 프로모션을 구체적 수치와 함께 전달
4. 사회적 증거: 리뷰 평점, 구매자 수를 구체적으로 언급
5. 희소성: 기간 한정, 수량 한정 등 긴급성 부여

JSON 스키마:
{
  "variations": [
    {
      "strategy": "효능 중심",
      "subject": "제목 (40자 이내)",
      "body": "본문 (300-350자, 상품명 2-3개 포함, 구체적 수치 포함)",
      "brand_alignment_score": 0.95,
      "emotion_score": 0.85
    }
  ]
}
`

const bodyLengthExample = `"40대가 되면서 눈가 주름과 탄력 저하가 고민이셨죠? 설화수 자음생 에센스(₩180,000, 20% 할인)는 3000년 한방 연구의 정수를 담아 피부 깊은 곳부터 탄력을 채워줍니다. 여기에 자음생 크림(₩220,000)을 함께 사용하시면 더욱 강력한 안티에이징 효과를 경험하실 수 있습니다. 실제 사용자 평점 4.8점, 2,000개 이상의 리뷰가 그 효과를 증명합니다. 오늘만 특별히 세트 구매 시 추가 10% 할인 혜택을 드립니다."`

// PromptBuilder assembles the system and user prompts. Stateless: output
// depends only on the arguments, never on time or randomness.
type PromptBuilder struct{}

// NewPromptBuilder creates a prompt builder.
func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildSystemPrompt returns the static system instruction.
func (b *PromptBuilder) BuildSystemPrompt() string {
	return systemPrompt
}

// BuildUserPrompt renders the brand guideline, persona summary, product
// table and campaign goal into the user instruction, restating the eight
// authoring requirements.
func (b *PromptBuilder) BuildUserPrompt(guideline string, persona *Persona, products []ProductRecord, campaignGoal string) string {
	concerns := persona.SkinConcernsText()

	var sb strings.Builder
	sb.WriteString("## 브랜드 정보\n")
	sb.WriteString(guideline)
	sb.WriteString("\n\n## 타겟 페르소나\n")
	sb.WriteString("이름: " + persona.Name + "\n")
	sb.WriteString("연령대: " + orNA(persona.Metadata.AgeGroup) + "\n")
	sb.WriteString("주요 피부 고민: " + orNA(concerns) + "\n")
	sb.WriteString("구매 패턴: " + orNA(persona.DecisionFactorsText()) + "\n")
	sb.WriteString("\n페르소나 상세:\n")
	sb.WriteString(persona.Description)
	sb.WriteString("\n\n## 추천 상품 (페르소나 맞춤)\n")
	sb.WriteString(formatProductTable(products))
	sb.WriteString("\n## 캠페인 목표\n")
	sb.WriteString(campaignGoal)
	sb.WriteString("\n\n---\n\n위 정보를 바탕으로 5가지 마케팅 메시지 배리에이션을 생성해주세요.\n\n")
	sb.WriteString("**필수 작성 요구사항**:\n")
	sb.WriteString("1. 본문은 반드시 300-350자로 풍부하게 작성\n")
	sb.WriteString("2. 추천 상품 중 최소 2-3개의 구체적인 상품명을 본문에 언급\n")
	sb.WriteString("3. 가격(₩), 할인율(%), 평점 등 구체적 수치 포함\n")
	sb.WriteString("4. 상품의 핵심 성분, 기술, 효능을 구체적으로 언급\n")
	sb.WriteString("5. 페르소나의 피부 고민(" + concerns + ")과 상품 효능을 명확히 연결\n")
	sb.WriteString("6. 브랜드 톤앤매너를 정확히 반영\n")
	sb.WriteString("7. 제목 40자 이내 준수\n")
	sb.WriteString("8. 금지 표현 절대 사용 금지\n")
	sb.WriteString("\n**작성 예시 (본문 길이 참고)**:\n")
	sb.WriteString(bodyLengthExample)
	sb.WriteString("\n\n반드시 JSON 형식으로만 응답하세요.\n")
	return sb.String()
}

// formatProductTable renders up to five products with their numeric
// grounding data and the first lines of their descriptions.
func formatProductTable(products []ProductRecord) string {
	if len(products) == 0 {
		return "(추천 상품 없음)\n"
	}
	if len(products) > 5 {
		products = products[:5]
	}

	var sb strings.Builder
	for i, p := range products {
		sb.WriteString(fmt.Sprintf("%d. 상품명: %s\n", i+1, p.ProductName))
		sb.WriteString("   브랜드: " + p.Brand + "\n")
		sb.WriteString("   가격: ₩" + formatComma(p.Price) + "\n")
		sb.WriteString("   할인: " + p.DiscountRate + "\n")
		sb.WriteString(fmt.Sprintf("   평점: %.1f/5.0 (리뷰 %s개)\n", p.Rating, formatComma(p.ReviewCount)))
		details := descriptionLines(p.Description, 4)
		if len(details) > 0 {
			sb.WriteString("   상세 정보:\n")
			for _, line := range details {
				sb.WriteString("   " + line + "\n")
			}
		}
	}
	return sb.String()
}

// descriptionLines returns the first max non-empty, trimmed lines.
func descriptionLines(description string, max int) []string {
	var out []string
	for _, line := range strings.Split(description, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out = append(out, line)
		if len(out) == max {
			break
		}
	}
	return out
}

// formatComma renders n with thousands separators (180000 → "180,000").
func formatComma(n int) string {
	s := strconv.Itoa(n)
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	joined := strings.Join(parts, ",")
	if neg {
		return "-" + joined
	}
	return joined
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
