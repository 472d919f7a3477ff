package admsg

import (
	"strings"
	"testing"
)

func testPersona(t *testing.T) *Persona {
	t.Helper()
	p, err := DefaultPersonaRegistry().Get("premium_antiaging_40s")
	if err != nil {
		t.Fatalf("builtin persona missing: %v", err)
	}
	return p
}

func testProducts() []ProductRecord {
	return []ProductRecord{
		{
			ID:           "product_1",
			Brand:        "설화수",
			ProductName:  "자음생 에센스",
			Price:        180000,
			DiscountRate: "20%",
			Rating:       4.8,
			ReviewCount:  2134,
			Description:  "브랜드: 설화수\n상품명: 자음생 에센스\n원가: ₩225,000",
		},
		{
			ID:          "product_2",
			Brand:       "설화수",
			ProductName: "자음생 크림",
			Price:       220000,
			Rating:      4.7,
			ReviewCount: 980,
		},
	}
}

func TestBuildUserPromptDeterministic(t *testing.T) {
	b := NewPromptBuilder()
	persona := testPersona(t)
	products := testProducts()

	first := b.BuildUserPrompt("브랜드: 설화수\n격조있는 톤", persona, products, "재구매 유도")
	second := b.BuildUserPrompt("브랜드: 설화수\n격조있는 톤", persona, products, "재구매 유도")
	if first != second {
		t.Fatal("identical inputs must produce byte-identical prompts")
	}
}

func TestBuildUserPromptContent(t *testing.T) {
	b := NewPromptBuilder()
	persona := testPersona(t)

	prompt := b.BuildUserPrompt("브랜드: 설화수\n격조있는 톤", persona, testProducts(), "재구매 유도")

	for _, want := range []string{
		"## 브랜드 정보",
		"## 타겟 페르소나",
		"이름: 프리미엄 안티에이징 추구자",
		"연령대: 40-50대",
		"주요 피부 고민: 주름, 탄력 저하, 피부 노화",
		"## 추천 상품 (페르소나 맞춤)",
		"상품명: 자음생 에센스",
		"가격: ₩180,000",
		"평점: 4.8/5.0 (리뷰 2,134개)",
		"## 캠페인 목표",
		"재구매 유도",
		"필수 작성 요구사항",
		"반드시 JSON 형식으로만 응답하세요.",
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q", want)
		}
	}
}

func TestBuildUserPromptEmptyFieldsUseNA(t *testing.T) {
	b := NewPromptBuilder()
	persona := &Persona{ID: "bare", Name: "빈 페르소나", Description: "설명"}

	prompt := b.BuildUserPrompt("가이드", persona, nil, "신규 고객 유치")
	if !strings.Contains(prompt, "연령대: N/A") {
		t.Fatal("empty age group must render as N/A")
	}
	if !strings.Contains(prompt, "(추천 상품 없음)") {
		t.Fatal("empty product list must render the explicit empty marker")
	}
}

func TestBuildUserPromptCapsProductsAtFive(t *testing.T) {
	b := NewPromptBuilder()
	persona := testPersona(t)

	var products []ProductRecord
	for i := 0; i < 7; i++ {
		products = append(products, ProductRecord{ProductName: "상품", Brand: "설화수"})
	}
	prompt := b.BuildUserPrompt("가이드", persona, products, "재고 소진")
	if strings.Contains(prompt, "6. 상품명") {
		t.Fatal("product table must cap at five entries")
	}
	if !strings.Contains(prompt, "5. 상품명") {
		t.Fatal("product table lost the fifth entry")
	}
}

func TestBuildSystemPromptStable(t *testing.T) {
	b := NewPromptBuilder()
	system := b.BuildSystemPrompt()
	for _, want := range []string{"마케팅 카피라이터", "40자 이내", "300-350자", "variations"} {
		if !strings.Contains(system, want) {
			t.Fatalf("system prompt missing %q", want)
		}
	}
	if system != b.BuildSystemPrompt() {
		t.Fatal("system prompt must be static")
	}
}

func TestFormatComma(t *testing.T) {
	cases := map[int]string{
		0:        "0",
		999:      "999",
		1000:     "1,000",
		180000:   "180,000",
		-1234567: "-1,234,567",
	}
	for n, want := range cases {
		if got := formatComma(n); got != want {
			t.Fatalf("formatComma(%d) = %q, want %q", n, got, want)
		}
	}
}
