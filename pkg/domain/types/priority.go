package types

import "fmt"

// Priority is the tier derived from a 0-10 score
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

func (p Priority) String() string {
	return string(p)
}

// RiskAppetite is the organizational tolerance for risk
type RiskAppetite string

const (
	RiskAppetiteLow      RiskAppetite = "low"
	RiskAppetiteModerate RiskAppetite = "moderate"
	RiskAppetiteHigh     RiskAppetite = "high"
)

// IsValid checks if the appetite is valid. Empty means unspecified.
func (a RiskAppetite) IsValid() bool {
	switch a {
	case "", RiskAppetiteLow, RiskAppetiteModerate, RiskAppetiteHigh:
		return true
	default:
		return false
	}
}

func (a RiskAppetite) String() string {
	return string(a)
}

// ParseRiskAppetite parses a string into a RiskAppetite
func ParseRiskAppetite(s string) (RiskAppetite, error) {
	a := RiskAppetite(s)
	if !a.IsValid() {
		return "", fmt.Errorf("invalid risk appetite: %s", s)
	}
	return a, nil
}
