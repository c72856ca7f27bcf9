package models

import (
	"fmt"
	"strings"
)

// MaxRiskScore is the inclusive upper bound of a risk score.
const MaxRiskScore = 100

// RiskLevel is the categorical assessment stored alongside the score.
// It is supplied by the verifier and never derived from the score.
type RiskLevel uint8

const (
	RiskLevelLow RiskLevel = iota
	RiskLevelMedium
	RiskLevelHigh
)

var riskLevelNames = [...]string{
	RiskLevelLow:    "low",
	RiskLevelMedium: "medium",
	RiskLevelHigh:   "high",
}

// ParseRiskLevel accepts the text forms "low", "medium" and "high" in any case.
func ParseRiskLevel(s string) (RiskLevel, error) {
	switch strings.ToLower(s) {
	case "low":
		return RiskLevelLow, nil
	case "medium":
		return RiskLevelMedium, nil
	case "high":
		return RiskLevelHigh, nil
	default:
		return 0, fmt.Errorf("unknown risk level %q", s)
	}
}

func (l RiskLevel) IsValid() bool {
	return int(l) < len(riskLevelNames)
}

func (l RiskLevel) String() string {
	if !l.IsValid() {
		return fmt.Sprintf("RiskLevel(%d)", uint8(l))
	}
	return riskLevelNames[l]
}

func (l RiskLevel) MarshalText() ([]byte, error) {
	if !l.IsValid() {
		return nil, fmt.Errorf("unknown risk level %d", uint8(l))
	}
	return []byte(l.String()), nil
}

func (l *RiskLevel) UnmarshalText(text []byte) error {
	parsed, err := ParseRiskLevel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// ValidRiskScore reports whether score lies in [0, MaxRiskScore].
func ValidRiskScore(score int) bool {
	return score >= 0 && score <= MaxRiskScore
}
