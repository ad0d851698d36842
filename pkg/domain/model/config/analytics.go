package config

import (
	"math"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskgraph/pkg/domain/types"
)

// AnalyticsConfig holds every calibration table used by the analytics core.
// A value is treated as immutable once handed to a use case.
type AnalyticsConfig struct {
	StrengthWeights map[types.RelationshipStrength]float64
	// TraversalTypes is the whitelist of relationship types followed when
	// building dependency and dependent graphs.
	TraversalTypes []types.RelationshipType
	Priority       PriorityThresholds
	Traversal      TraversalConfig
	Metrics        MetricsConfig
	Impact         ImpactConfig
	Scoring        ScoringConfig
	Criticality    CriticalityConfig
}

// PriorityThresholds are the lower bounds of each tier on the 0-10 scale.
// The same value is used by risk scoring and criticality scoring.
type PriorityThresholds struct {
	Medium   float64
	High     float64
	Critical float64
}

// Tier maps a score to its priority tier
func (p PriorityThresholds) Tier(score float64) types.Priority {
	switch {
	case score >= p.Critical:
		return types.PriorityCritical
	case score >= p.High:
		return types.PriorityHigh
	case score >= p.Medium:
		return types.PriorityMedium
	default:
		return types.PriorityLow
	}
}

// TraversalConfig bounds graph traversal work
type TraversalConfig struct {
	DefaultDepth int
	MinDepth     int
	MaxDepth     int
	// MaxNodes caps the number of nodes recorded per traversal direction.
	MaxNodes int
	// MaxCriticalPathLength caps the number of assets in a critical path.
	MaxCriticalPathLength int
	// MaxPathSteps caps the number of DFS stack pops in critical path search.
	MaxPathSteps int
}

// ClampDepth bounds a caller supplied depth. Zero or negative selects the default.
func (t TraversalConfig) ClampDepth(depth int) int {
	if depth <= 0 {
		depth = t.DefaultDepth
	}
	if depth < t.MinDepth {
		return t.MinDepth
	}
	if depth > t.MaxDepth {
		return t.MaxDepth
	}
	return depth
}

// MetricsConfig holds the SPOF and cascade factors
type MetricsConfig struct {
	CriticalConcentrationStep float64
	CascadeFactor             float64
}

// StrengthWeight returns the numeric weight of a relationship strength, 0 for unknown strengths
func (c *AnalyticsConfig) StrengthWeight(s types.RelationshipStrength) float64 {
	return c.StrengthWeights[s]
}

// IsTraversable reports whether a relationship type participates in graph building
func (c *AnalyticsConfig) IsTraversable(t types.RelationshipType) bool {
	for _, allowed := range c.TraversalTypes {
		if allowed == t {
			return true
		}
	}
	return false
}

// Default returns the standard calibration
func Default() *AnalyticsConfig {
	return &AnalyticsConfig{
		StrengthWeights: map[types.RelationshipStrength]float64{
			types.StrengthWeak:     0.25,
			types.StrengthModerate: 0.5,
			types.StrengthStrong:   0.75,
			types.StrengthCritical: 1.0,
		},
		TraversalTypes: []types.RelationshipType{
			types.RelationshipDependsOn,
			types.RelationshipHostedOn,
			types.RelationshipLoadBalancedBy,
			types.RelationshipProcessesDataFrom,
		},
		Priority: PriorityThresholds{
			Medium:   4.0,
			High:     7.0,
			Critical: 8.5,
		},
		Traversal: TraversalConfig{
			DefaultDepth:          5,
			MinDepth:              1,
			MaxDepth:              10,
			MaxNodes:              10000,
			MaxCriticalPathLength: 64,
			MaxPathSteps:          100000,
		},
		Metrics: MetricsConfig{
			CriticalConcentrationStep: 0.2,
			CascadeFactor:             0.1,
		},
		Impact:      defaultImpactConfig(),
		Scoring:     defaultScoringConfig(),
		Criticality: defaultCriticalityConfig(),
	}
}

const weightSumTolerance = 1e-6

// Validate checks the invariants every component relies on
func (c *AnalyticsConfig) Validate() error {
	prev := 0.0
	for _, s := range types.AllRelationshipStrengths() {
		w, ok := c.StrengthWeights[s]
		if !ok {
			return goerr.Wrap(ErrInvalidCalibration, "strength weight is missing", goerr.V("strength", s))
		}
		if w <= prev {
			return goerr.Wrap(ErrInvalidCalibration, "strength weights must be strictly increasing",
				goerr.V("strength", s), goerr.V("weight", w), goerr.V("previous", prev))
		}
		prev = w
	}

	if len(c.TraversalTypes) == 0 {
		return goerr.Wrap(ErrInvalidCalibration, "traversal types must not be empty")
	}
	for _, t := range c.TraversalTypes {
		if !t.IsValid() {
			return goerr.Wrap(ErrInvalidCalibration, "invalid traversal type", goerr.V("type", t))
		}
	}

	p := c.Priority
	if !(0 < p.Medium && p.Medium < p.High && p.High < p.Critical && p.Critical <= 10) {
		return goerr.Wrap(ErrInvalidCalibration, "priority thresholds must be ascending within (0, 10]",
			goerr.V("medium", p.Medium), goerr.V("high", p.High), goerr.V("critical", p.Critical))
	}

	tr := c.Traversal
	if tr.MinDepth < 1 || tr.MaxDepth < tr.MinDepth || tr.DefaultDepth < tr.MinDepth || tr.DefaultDepth > tr.MaxDepth {
		return goerr.Wrap(ErrInvalidCalibration, "invalid traversal depth bounds",
			goerr.V("min", tr.MinDepth), goerr.V("max", tr.MaxDepth), goerr.V("default", tr.DefaultDepth))
	}
	if tr.MaxNodes < 1 || tr.MaxCriticalPathLength < 1 || tr.MaxPathSteps < 1 {
		return goerr.Wrap(ErrInvalidCalibration, "traversal budgets must be positive")
	}

	if err := c.Impact.validate(); err != nil {
		return err
	}
	if err := c.Scoring.validate(); err != nil {
		return err
	}
	if err := c.Criticality.validate(); err != nil {
		return err
	}

	return nil
}

func sumsToOne(values ...float64) bool {
	var total float64
	for _, v := range values {
		total += v
	}
	return math.Abs(total-1.0) < weightSumTolerance
}
