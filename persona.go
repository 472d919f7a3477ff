package admsg

import (
	"fmt"
	"strings"
	"sync"
)

// ──────────────────────────────────────────────
// Persona Registry — static customer archetype catalog
// ──────────────────────────────────────────────

// PersonaMetadata holds the structured attributes of a persona. Fields not
// applicable to a given archetype stay empty and are omitted from prompts.
type PersonaMetadata struct {
	AgeGroup        string   `json:"age_group,omitempty"`
	IncomeLevel     string   `json:"income_level,omitempty"`
	SkinConcerns    []string `json:"skin_concerns,omitempty"`
	SkinType        []string `json:"skin_type,omitempty"`
	Interests       []string `json:"interests,omitempty"`
	Lifestyle       []string `json:"lifestyle,omitempty"`
	PreferredBrands []string `json:"preferred_brands,omitempty"`
	DecisionFactors []string `json:"decision_factors,omitempty"`
	Tone            string   `json:"tone,omitempty"`
	Keywords        []string `json:"keywords,omitempty"`
}

// Persona is a named customer archetype used to condition message
// generation. Immutable once registered.
type Persona struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Metadata    PersonaMetadata `json:"metadata"`
}

// SkinConcernsText joins the persona's skin concerns for prompt injection.
func (p *Persona) SkinConcernsText() string {
	return strings.Join(p.Metadata.SkinConcerns, ", ")
}

// DecisionFactorsText joins the persona's decision factors.
func (p *Persona) DecisionFactorsText() string {
	return strings.Join(p.Metadata.DecisionFactors, ", ")
}

// EmbeddingText renders the persona as a document for offline indexing.
func (p *Persona) EmbeddingText() string {
	return fmt.Sprintf("페르소나 ID: %s\n페르소나 이름: %s\n%s", p.ID, p.Name, p.Description)
}

// PersonaRegistry is a read-only-after-startup catalog of personas.
type PersonaRegistry struct {
	mu       sync.RWMutex
	personas map[string]*Persona
	order    []string
}

// NewPersonaRegistry creates an empty registry.
func NewPersonaRegistry() *PersonaRegistry {
	return &PersonaRegistry{personas: make(map[string]*Persona)}
}

// DefaultPersonaRegistry returns a registry pre-loaded with the built-in
// customer archetypes.
func DefaultPersonaRegistry() *PersonaRegistry {
	r := NewPersonaRegistry()
	for _, p := range BuiltinPersonas() {
		r.Register(p)
	}
	return r
}

// Register adds a persona. Registering an already-known id is an error:
// the catalog is fixed at process start, not mutated per request.
func (r *PersonaRegistry) Register(p *Persona) error {
	if p == nil || p.ID == "" {
		return fmt.Errorf("persona must have an id")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.personas[p.ID]; exists {
		return fmt.Errorf("persona %s already registered", p.ID)
	}
	r.personas[p.ID] = p
	r.order = append(r.order, p.ID)
	return nil
}

// Get looks up a persona by id.
func (r *PersonaRegistry) Get(id string) (*Persona, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.personas[id]
	if !ok {
		return nil, &PersonaNotFoundError{PersonaID: id}
	}
	return p, nil
}

// List returns all personas in registration order.
func (r *PersonaRegistry) List() []*Persona {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Persona, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.personas[id])
	}
	return out
}

// BuiltinPersonas returns the five built-in customer archetypes.
func BuiltinPersonas() []*Persona {
	return []*Persona{
		{
			ID:   "premium_antiaging_40s",
			Name: "프리미엄 안티에이징 추구자",
			Description: `연령: 40-50대
소득: 상위 20%
직업: 전문직, 경영진

뷰티 특성:
- 주요 고민: 주름, 탄력 저하, 피부 노화
- 구매 패턴: 고가 라인 선호, 세트 구매, 백화점/공식몰
- 의사결정: 효능 중심, 성분 분석, 브랜드 신뢰도

라이프스타일:
- 자기관리에 투자하는 시간과 비용
- 프리미엄 경험 추구
- SNS보다 입소문/전문가 추천 신뢰

선호 톤: 우아하고 격조있는 표현, 효능과 과학적 근거 강조
감성 키워드: 여유, 품격, 지혜, 투자, 근본`,
			Metadata: PersonaMetadata{
				AgeGroup:        "40-50대",
				IncomeLevel:     "high",
				SkinConcerns:    []string{"주름", "탄력 저하", "피부 노화"},
				PreferredBrands: []string{"설화수", "헤라", "후"},
				DecisionFactors: []string{"효능", "성분", "브랜드 신뢰도"},
				Tone:            "elegant_professional",
				Keywords:        []string{"여유", "품격", "지혜", "투자", "근본"},
			},
		},
		{
			ID:   "trendy_beauty_20s",
			Name: "트렌디 뷰티 얼리어답터",
			Description: `연령: 20-30대
소득: 중상위
직업: 직장인, 대학생

뷰티 특성:
- 주요 관심: SNS 트렌드, 신제품, 컬러 메이크업
- 구매 패턴: 소량 다품목, 시즌 한정 선호, 모바일 구매
- 의사결정: 비주얼, 후기, 인플루언서 추천

라이프스타일:
- 인스타그램/틱톡 활발
- 새로운 것 시도 좋아함
- YOLO 소비 성향

선호 톤: 발랄하고 트렌디한 표현, 감성과 비주얼 중심
감성 키워드: 지금, 핫한, 요즘, 득템, 완판`,
			Metadata: PersonaMetadata{
				AgeGroup:        "20-30대",
				IncomeLevel:     "mid_high",
				Interests:       []string{"SNS 트렌드", "신제품", "컬러 메이크업"},
				PreferredBrands: []string{"에스쁘아", "에뛰드", "마몽드"},
				DecisionFactors: []string{"비주얼", "후기", "인플루언서"},
				Tone:            "trendy_energetic",
				Keywords:        []string{"지금", "핫한", "요즘", "득템", "완판"},
			},
		},
		{
			ID:   "value_seeker_30s",
			Name: "합리적 가성비 추구자",
			Description: `연령: 30-40대
소득: 중위
직업: 직장인, 주부

뷰티 특성:
- 주요 관심: 프로모션, 세트 상품, 대용량
- 구매 패턴: 리뷰 꼼꼼히 확인, 가격 비교, 기획세트
- 의사결정: 가성비, 실용성, 사회적 증거

라이프스타일:
- 알뜰한 소비 습관
- 쿠폰/적립금 적극 활용
- 커뮤니티 정보 공유

선호 톤: 실용적이고 구체적인 표현, 혜택과 절약 강조
감성 키워드: 할인, 득템, 가성비, 혜택, 실속`,
			Metadata: PersonaMetadata{
				AgeGroup:        "30-40대",
				IncomeLevel:     "mid",
				Interests:       []string{"프로모션", "세트 상품", "대용량"},
				PreferredBrands: []string{"브랜드 무관"},
				DecisionFactors: []string{"가성비", "실용성", "리뷰"},
				Tone:            "practical_specific",
				Keywords:        []string{"할인", "득템", "가성비", "혜택", "실속"},
			},
		},
		{
			ID:   "sensitive_skin_care",
			Name: "민감성 피부 케어 집중자",
			Description: `연령: 전 연령대
피부 타입: 민감성, 아토피, 건조함

뷰티 특성:
- 주요 관심: 성분, 저자극, 피부과 추천
- 구매 패턴: 성분 분석, 샘플 테스트, 신중한 구매
- 의사결정: 안전성, 저자극, 전문가 의견

라이프스타일:
- 피부 고민으로 스트레스
- 정보 탐색 많이 함
- 장기적 관점의 피부 관리

선호 톤: 신뢰감 있고 전문적인 표현, 안심과 안전 강조
감성 키워드: 순한, 저자극, 안심, 전문가, 테스트 완료`,
			Metadata: PersonaMetadata{
				AgeGroup:        "전연령",
				SkinType:        []string{"민감성", "건조성", "아토피"},
				Interests:       []string{"성분", "저자극", "피부과 추천"},
				PreferredBrands: []string{"일리윤", "아모레퍼시픽", "라보에이치"},
				DecisionFactors: []string{"안전성", "저자극", "전문가 의견"},
				Tone:            "trustworthy_professional",
				Keywords:        []string{"순한", "저자극", "안심", "전문가", "테스트완료"},
			},
		},
		{
			ID:   "busy_working_mom",
			Name: "바쁜 워킹맘 실속파",
			Description: `연령: 30-40대
직업: 직장인 + 육아
특징: 시간 부족, 멀티태스킹

뷰티 특성:
- 주요 관심: 빠른 효과, 간편한 루틴, 시간 절약
- 구매 패턴: 정기 구독, 대용량, 한 번에 구매
- 의사결정: 편리함, 효율성, 시간 대비 효과

라이프스타일:
- 아침 루틴 5분 이내
- 밤늦게 퇴근 후 육아
- 나를 위한 시간 부족

선호 톤: 공감형, 친근한 표현, 편리함과 시간 절약 강조
감성 키워드: 간편, 5분, 올인원, 바쁜, 시간절약`,
			Metadata: PersonaMetadata{
				AgeGroup:        "30-40대",
				Lifestyle:       []string{"시간부족", "멀티태스킹", "육아"},
				Interests:       []string{"올인원", "빠른효과", "간편루틴"},
				PreferredBrands: []string{"라네즈", "아이오페"},
				DecisionFactors: []string{"편리함", "효율성", "시간절약"},
				Tone:            "empathetic_friendly",
				Keywords:        []string{"간편", "5분", "올인원", "바쁜", "시간절약"},
			},
		},
	}
}
