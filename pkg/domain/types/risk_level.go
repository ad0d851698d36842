package types

import "fmt"

// Likelihood is the six-level ordinal likelihood rating of a risk
type Likelihood string

const (
	LikelihoodVeryLow  Likelihood = "very_low"
	LikelihoodLow      Likelihood = "low"
	LikelihoodMedium   Likelihood = "medium"
	LikelihoodHigh     Likelihood = "high"
	LikelihoodVeryHigh Likelihood = "very_high"
	LikelihoodCertain  Likelihood = "certain"
)

// AllLikelihoods returns all likelihood levels in ascending order
func AllLikelihoods() []Likelihood {
	return []Likelihood{
		LikelihoodVeryLow,
		LikelihoodLow,
		LikelihoodMedium,
		LikelihoodHigh,
		LikelihoodVeryHigh,
		LikelihoodCertain,
	}
}

// IsValid checks if the likelihood is valid
func (l Likelihood) IsValid() bool {
	switch l {
	case LikelihoodVeryLow,
		LikelihoodLow,
		LikelihoodMedium,
		LikelihoodHigh,
		LikelihoodVeryHigh,
		LikelihoodCertain:
		return true
	default:
		return false
	}
}

func (l Likelihood) String() string {
	return string(l)
}

// ParseLikelihood parses a string into a Likelihood
func ParseLikelihood(s string) (Likelihood, error) {
	l := Likelihood(s)
	if !l.IsValid() {
		return "", fmt.Errorf("invalid likelihood: %s", s)
	}
	return l, nil
}

// Impact is the five-level ordinal impact rating of a risk
type Impact string

const (
	ImpactNegligible Impact = "negligible"
	ImpactMinor      Impact = "minor"
	ImpactModerate   Impact = "moderate"
	ImpactMajor      Impact = "major"
	ImpactSevere     Impact = "severe"
)

// AllImpacts returns all impact levels in ascending order
func AllImpacts() []Impact {
	return []Impact{
		ImpactNegligible,
		ImpactMinor,
		ImpactModerate,
		ImpactMajor,
		ImpactSevere,
	}
}

// IsValid checks if the impact is valid
func (i Impact) IsValid() bool {
	switch i {
	case ImpactNegligible,
		ImpactMinor,
		ImpactModerate,
		ImpactMajor,
		ImpactSevere:
		return true
	default:
		return false
	}
}

func (i Impact) String() string {
	return string(i)
}

// ParseImpact parses a string into an Impact
func ParseImpact(s string) (Impact, error) {
	i := Impact(s)
	if !i.IsValid() {
		return "", fmt.Errorf("invalid impact: %s", s)
	}
	return i, nil
}
