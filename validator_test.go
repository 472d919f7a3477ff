package admsg

import (
	"strings"
	"testing"
)

func TestValidatorCountsRunesNotBytes(t *testing.T) {
	v := NewOutputValidator()

	// 40 Korean characters are 120 bytes but exactly at the limit.
	variant := RawVariant{
		Subject: strings.Repeat("가", 40),
		Body:    strings.Repeat("나", 350),
	}
	if violation := v.Check(variant); violation != nil {
		t.Fatalf("at-limit variant rejected: %s", violation)
	}
}

func TestValidatorRejectsOverLimit(t *testing.T) {
	v := NewOutputValidator()

	violation := v.Check(RawVariant{Subject: strings.Repeat("가", 41)})
	if violation == nil {
		t.Fatal("41-rune subject must be rejected")
	}
	if violation.Field != "subject" || violation.Length != 41 || violation.Limit != 40 {
		t.Fatalf("unexpected violation: %+v", violation)
	}

	violation = v.Check(RawVariant{Body: strings.Repeat("나", 351)})
	if violation == nil {
		t.Fatal("351-rune body must be rejected")
	}
	if violation.Field != "body" || violation.Length != 351 || violation.Limit != 350 {
		t.Fatalf("unexpected violation: %+v", violation)
	}
}

func TestValidatorDeterministic(t *testing.T) {
	v := NewOutputValidator()
	variant := RawVariant{Subject: strings.Repeat("다", 45)}

	first := v.Check(variant)
	second := v.Check(variant)
	if first == nil || second == nil {
		t.Fatal("expected violations on both checks")
	}
	if *first != *second {
		t.Fatalf("checks disagree: %+v vs %+v", first, second)
	}
}

func TestValidatorCustomLimits(t *testing.T) {
	v := NewOutputValidator(OutputValidatorConfig{MaxSubjectLength: 10, MaxBodyLength: 20})
	if v.Validate(RawVariant{Subject: strings.Repeat("가", 11)}) {
		t.Fatal("custom subject limit not enforced")
	}
	if !v.Validate(RawVariant{Subject: strings.Repeat("가", 10), Body: strings.Repeat("나", 20)}) {
		t.Fatal("at-limit variant rejected under custom limits")
	}
}
