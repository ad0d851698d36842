package types

// Scenario names a failure scenario for impact projection. Unknown names are
// accepted and degrade to ImpactLevelUnknown.
type Scenario string

const (
	ScenarioCompleteFailure    Scenario = "complete_failure"
	ScenarioPartialDegradation Scenario = "partial_degradation"
	ScenarioPerformanceImpact  Scenario = "performance_impact"
)

// KnownScenarios returns the scenarios with calibrated impact tables
func KnownScenarios() []Scenario {
	return []Scenario{
		ScenarioCompleteFailure,
		ScenarioPartialDegradation,
		ScenarioPerformanceImpact,
	}
}

// IsKnown reports whether the scenario has calibrated tables
func (s Scenario) IsKnown() bool {
	switch s {
	case ScenarioCompleteFailure,
		ScenarioPartialDegradation,
		ScenarioPerformanceImpact:
		return true
	default:
		return false
	}
}

func (s Scenario) String() string {
	return string(s)
}

// ImpactLevel is the projected impact of a failure on a dependent asset
type ImpactLevel string

const (
	ImpactLevelSevere     ImpactLevel = "severe"
	ImpactLevelModerate   ImpactLevel = "moderate"
	ImpactLevelMinor      ImpactLevel = "minor"
	ImpactLevelNegligible ImpactLevel = "negligible"
	ImpactLevelUnknown    ImpactLevel = "unknown"
)

// IsSignificant reports whether the level affects business functions
func (l ImpactLevel) IsSignificant() bool {
	return l == ImpactLevelSevere || l == ImpactLevelModerate
}

func (l ImpactLevel) String() string {
	return string(l)
}

// ServiceImpactLevel classifies the impact on a user-facing service
type ServiceImpactLevel string

const (
	ServiceImpactHigh   ServiceImpactLevel = "high"
	ServiceImpactMedium ServiceImpactLevel = "medium"
)
