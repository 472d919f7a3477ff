package admsg

import (
	"fmt"
	"unicode/utf8"
)

// ──────────────────────────────────────────────
// Output Validator — per-variant length constraints
// ──────────────────────────────────────────────

// LengthViolation records why a variant was rejected: the offending field,
// the measured rune count, and the configured limit.
type LengthViolation struct {
	Field  string `json:"field"` // "subject" or "body"
	Length int    `json:"length"`
	Limit  int    `json:"limit"`
}

func (v *LengthViolation) String() string {
	return fmt.Sprintf("%s too long: %d runes (limit %d)", v.Field, v.Length, v.Limit)
}

// OutputValidatorConfig configures the validator limits.
type OutputValidatorConfig struct {
	MaxSubjectLength int // default 40
	MaxBodyLength    int // default 350
}

// OutputValidator checks generated variants against the length contract.
// A violating variant is dropped by the caller, never truncated:
// truncation would corrupt the message's meaning.
type OutputValidator struct {
	maxSubject int
	maxBody    int
}

// NewOutputValidator creates a validator with the given limits.
func NewOutputValidator(config ...OutputValidatorConfig) *OutputValidator {
	cfg := OutputValidatorConfig{MaxSubjectLength: 40, MaxBodyLength: 350}
	if len(config) > 0 {
		cfg = config[0]
	}
	if cfg.MaxSubjectLength <= 0 {
		cfg.MaxSubjectLength = 40
	}
	if cfg.MaxBodyLength <= 0 {
		cfg.MaxBodyLength = 350
	}
	return &OutputValidator{maxSubject: cfg.MaxSubjectLength, maxBody: cfg.MaxBodyLength}
}

// Check returns nil when the variant satisfies the length bounds, or a
// LengthViolation describing the first violated field. Pure: no side
// effects, same answer for the same variant.
func (v *OutputValidator) Check(variant RawVariant) *LengthViolation {
	// Korean copy counts in characters, not bytes.
	if n := utf8.RuneCountInString(variant.Subject); n > v.maxSubject {
		return &LengthViolation{Field: "subject", Length: n, Limit: v.maxSubject}
	}
	if n := utf8.RuneCountInString(variant.Body); n > v.maxBody {
		return &LengthViolation{Field: "body", Length: n, Limit: v.maxBody}
	}
	return nil
}

// Validate is the boolean form of Check.
func (v *OutputValidator) Validate(variant RawVariant) bool {
	return v.Check(variant) == nil
}
