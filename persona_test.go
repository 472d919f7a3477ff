package admsg

import (
	"errors"
	"strings"
	"testing"
)

func TestBuiltinPersonas(t *testing.T) {
	personas := BuiltinPersonas()
	if len(personas) != 5 {
		t.Fatalf("got %d builtin personas", len(personas))
	}

	wantIDs := []string{
		"premium_antiaging_40s",
		"trendy_beauty_20s",
		"value_seeker_30s",
		"sensitive_skin_care",
		"busy_working_mom",
	}
	for i, p := range personas {
		if p.ID != wantIDs[i] {
			t.Fatalf("persona %d: got %q, want %q", i, p.ID, wantIDs[i])
		}
		if p.Name == "" || p.Description == "" {
			t.Fatalf("persona %s incomplete", p.ID)
		}
	}
}

func TestRegistryGetAndList(t *testing.T) {
	r := DefaultPersonaRegistry()

	p, err := r.Get("busy_working_mom")
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "바쁜 워킹맘 실속파" {
		t.Fatalf("name: %q", p.Name)
	}

	list := r.List()
	if len(list) != 5 {
		t.Fatalf("List returned %d personas", len(list))
	}
	// Registration order preserved.
	if list[0].ID != "premium_antiaging_40s" || list[4].ID != "busy_working_mom" {
		t.Fatalf("order not preserved: %s ... %s", list[0].ID, list[4].ID)
	}
}

func TestRegistryUnknownPersona(t *testing.T) {
	r := DefaultPersonaRegistry()
	_, err := r.Get("ghost")
	var notFound *PersonaNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("want PersonaNotFoundError, got %v", err)
	}
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	r := NewPersonaRegistry()
	p := &Persona{ID: "dup", Name: "이름"}
	if err := r.Register(p); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(p); err == nil {
		t.Fatal("duplicate registration must fail")
	}
	if err := r.Register(&Persona{Name: "no id"}); err == nil {
		t.Fatal("empty id must fail")
	}
	if err := r.Register(nil); err == nil {
		t.Fatal("nil persona must fail")
	}
}

func TestPersonaTextHelpers(t *testing.T) {
	p, err := DefaultPersonaRegistry().Get("premium_antiaging_40s")
	if err != nil {
		t.Fatal(err)
	}

	if got := p.SkinConcernsText(); got != "주름, 탄력 저하, 피부 노화" {
		t.Fatalf("SkinConcernsText: %q", got)
	}
	if got := p.DecisionFactorsText(); got != "효능, 성분, 브랜드 신뢰도" {
		t.Fatalf("DecisionFactorsText: %q", got)
	}

	doc := p.EmbeddingText()
	if !strings.Contains(doc, "페르소나 ID: premium_antiaging_40s") ||
		!strings.Contains(doc, "페르소나 이름: 프리미엄 안티에이징 추구자") {
		t.Fatalf("embedding text malformed:\n%s", doc)
	}
}
