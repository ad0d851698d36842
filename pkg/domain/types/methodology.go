package types

import (
	"fmt"
	"strings"
)

// Methodology selects the risk scoring algorithm
type Methodology string

const (
	MethodologySimpleMultiplication Methodology = "simple_multiplication"
	MethodologyWeightedAverage      Methodology = "weighted_average"
	MethodologyQuantitative         Methodology = "quantitative"
	MethodologyExpertJudgment       Methodology = "expert_judgment"
)

const residualPrefix = "residual_"

// AllMethodologies returns all scoring methodologies
func AllMethodologies() []Methodology {
	return []Methodology{
		MethodologySimpleMultiplication,
		MethodologyWeightedAverage,
		MethodologyQuantitative,
		MethodologyExpertJudgment,
	}
}

// IsValid checks if the methodology is one of the base methodologies
func (m Methodology) IsValid() bool {
	switch m {
	case MethodologySimpleMultiplication,
		MethodologyWeightedAverage,
		MethodologyQuantitative,
		MethodologyExpertJudgment:
		return true
	default:
		return false
	}
}

// Residual returns the tag used for residual-risk scores computed with m
func (m Methodology) Residual() Methodology {
	return Methodology(residualPrefix + string(m))
}

// IsResidual reports whether m is a residual tag
func (m Methodology) IsResidual() bool {
	return strings.HasPrefix(string(m), residualPrefix)
}

func (m Methodology) String() string {
	return string(m)
}

// ParseMethodology parses a string into a base Methodology
func ParseMethodology(s string) (Methodology, error) {
	m := Methodology(s)
	if !m.IsValid() {
		return "", fmt.Errorf("invalid methodology: %s", s)
	}
	return m, nil
}
