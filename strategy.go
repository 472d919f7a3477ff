package admsg

import (
	"fmt"
	"strings"
)

// MessageStrategy is the rhetorical angle a generated message follows.
// The set is closed: model output naming a strategy outside it is rejected
// at parse time instead of being carried through as a free string.
type MessageStrategy string

const (
	StrategyEfficacy    MessageStrategy = "효능 중심"
	StrategyEmotional   MessageStrategy = "감성 중심"
	StrategyBenefit     MessageStrategy = "혜택 중심"
	StrategySocialProof MessageStrategy = "사회적 증거"
	StrategyScarcity    MessageStrategy = "희소성"
)

// AllStrategies returns the five strategies in prompt order.
func AllStrategies() []MessageStrategy {
	return []MessageStrategy{
		StrategyEfficacy,
		StrategyEmotional,
		StrategyBenefit,
		StrategySocialProof,
		StrategyScarcity,
	}
}

// Valid reports whether s is one of the five known strategies.
func (s MessageStrategy) Valid() bool {
	switch s {
	case StrategyEfficacy, StrategyEmotional, StrategyBenefit, StrategySocialProof, StrategyScarcity:
		return true
	}
	return false
}

// strategyAliases maps shorthand names the model tends to emit to the
// canonical strategy. The prompt describes strategies as 효능/감성/혜택/리뷰/희소성,
// so single-word answers must resolve too.
var strategyAliases = map[string]MessageStrategy{
	"효능":    StrategyEfficacy,
	"효능중심":  StrategyEfficacy,
	"감성":    StrategyEmotional,
	"감성중심":  StrategyEmotional,
	"혜택":    StrategyBenefit,
	"혜택중심":  StrategyBenefit,
	"리뷰":    StrategySocialProof,
	"리뷰중심":  StrategySocialProof,
	"사회적증거": StrategySocialProof,
	"희소성중심": StrategyScarcity,
}

// ParseMessageStrategy resolves raw model output into a MessageStrategy.
// Unknown names return an error so malformed output is dropped, not stored.
func ParseMessageStrategy(raw string) (MessageStrategy, error) {
	trimmed := strings.TrimSpace(raw)
	if s := MessageStrategy(trimmed); s.Valid() {
		return s, nil
	}
	compact := strings.ReplaceAll(trimmed, " ", "")
	if s := MessageStrategy(compact); s.Valid() {
		return s, nil
	}
	if s, ok := strategyAliases[compact]; ok {
		return s, nil
	}
	return "", fmt.Errorf("unknown message strategy: %q", raw)
}
