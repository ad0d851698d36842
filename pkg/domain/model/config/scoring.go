package config

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskgraph/pkg/domain/types"
)

// ScoringConfig holds the risk scoring scales and adjustment factors
type ScoringConfig struct {
	LikelihoodScale       map[types.Likelihood]float64
	ImpactScale           map[types.Impact]float64
	LikelihoodProbability map[types.Likelihood]float64

	MinScore float64
	MaxScore float64

	DefaultMethodology types.Methodology
	BulkConcurrency    int

	Context    ContextConfig
	History    HistoryConfig
	Trend      TrendConfig
	Confidence ConfidenceConfig

	ImpactWeights          ImpactWeights
	FinancialSteps         []FinancialStep
	FinancialTopScore      float64
	ReputationalCategories []types.CategoryID
}

// ContextConfig holds the organizational context nudges
type ContextConfig struct {
	SectorImpactMultiplier     map[string]float64
	RegulationImpactStep       float64
	RegulationImpactCap        float64
	MarketLikelihoodMultiplier map[string]float64
	AppetiteMultiplier         map[types.RiskAppetite]float64
	MaxAcceptableLoss          map[types.RiskAppetite]float64
	DefaultMaxAcceptableLoss   float64
}

// HistoryConfig controls the incident-history likelihood adjustment
type HistoryConfig struct {
	LookbackDays           int
	HighIncidentThreshold  int
	HighIncidentMultiplier float64
	NoIncidentMultiplier   float64
}

// TrendConfig controls the assessment trend adjustment
type TrendConfig struct {
	Window int
	Bound  float64
}

// ConfidenceConfig controls the data-completeness confidence estimate
type ConfidenceConfig struct {
	MinDescriptionLength int
	MaxReviewAgeDays     int
	ControlSaturation    int
	ExpertFallbackFactor float64
	SourceBonus          float64
	SourceBonusCap       float64
}

// ImpactWeights combine the impact components of the weighted average methodology
type ImpactWeights struct {
	Financial    float64
	Operational  float64
	Reputational float64
	Compliance   float64
}

// FinancialStep maps amounts strictly below Below to Score
type FinancialStep struct {
	Below float64
	Score float64
}

// FinancialScore steps a monetary amount onto the 1-10 scale
func (c ScoringConfig) FinancialScore(amount float64) float64 {
	for _, step := range c.FinancialSteps {
		if amount < step.Below {
			return step.Score
		}
	}
	return c.FinancialTopScore
}

// Clamp bounds an overall score to [MinScore, MaxScore]
func (c ScoringConfig) Clamp(score float64) float64 {
	if score < c.MinScore {
		return c.MinScore
	}
	if score > c.MaxScore {
		return c.MaxScore
	}
	return score
}

// IsReputational reports whether a category carries reputational exposure
func (c ScoringConfig) IsReputational(category types.CategoryID) bool {
	for _, cat := range c.ReputationalCategories {
		if cat == category {
			return true
		}
	}
	return false
}

func defaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		LikelihoodScale: map[types.Likelihood]float64{
			types.LikelihoodVeryLow:  1,
			types.LikelihoodLow:      3,
			types.LikelihoodMedium:   5,
			types.LikelihoodHigh:     7,
			types.LikelihoodVeryHigh: 9,
			types.LikelihoodCertain:  10,
		},
		ImpactScale: map[types.Impact]float64{
			types.ImpactNegligible: 1,
			types.ImpactMinor:      3,
			types.ImpactModerate:   5,
			types.ImpactMajor:      7,
			types.ImpactSevere:     10,
		},
		LikelihoodProbability: map[types.Likelihood]float64{
			types.LikelihoodVeryLow:  0.05,
			types.LikelihoodLow:      0.15,
			types.LikelihoodMedium:   0.35,
			types.LikelihoodHigh:     0.6,
			types.LikelihoodVeryHigh: 0.8,
			types.LikelihoodCertain:  0.95,
		},
		MinScore:           0.1,
		MaxScore:           10.0,
		DefaultMethodology: types.MethodologySimpleMultiplication,
		BulkConcurrency:    8,
		Context: ContextConfig{
			SectorImpactMultiplier: map[string]float64{
				"financial_services": 1.1,
				"healthcare":         1.1,
				"energy":             1.05,
				"government":         1.05,
			},
			RegulationImpactStep: 0.05,
			RegulationImpactCap:  0.2,
			MarketLikelihoodMultiplier: map[string]float64{
				"volatile":  1.1,
				"recession": 1.15,
				"stable":    0.95,
			},
			AppetiteMultiplier: map[types.RiskAppetite]float64{
				types.RiskAppetiteLow:      1.1,
				types.RiskAppetiteModerate: 1.0,
				types.RiskAppetiteHigh:     0.9,
			},
			MaxAcceptableLoss: map[types.RiskAppetite]float64{
				types.RiskAppetiteLow:      100000,
				types.RiskAppetiteModerate: 500000,
				types.RiskAppetiteHigh:     1000000,
			},
			DefaultMaxAcceptableLoss: 500000,
		},
		History: HistoryConfig{
			LookbackDays:           365,
			HighIncidentThreshold:  5,
			HighIncidentMultiplier: 1.3,
			NoIncidentMultiplier:   0.9,
		},
		Trend: TrendConfig{
			Window: 5,
			Bound:  0.2,
		},
		Confidence: ConfidenceConfig{
			MinDescriptionLength: 50,
			MaxReviewAgeDays:     90,
			ControlSaturation:    3,
			ExpertFallbackFactor: 0.7,
			SourceBonus:          0.05,
			SourceBonusCap:       0.2,
		},
		ImpactWeights: ImpactWeights{
			Financial:    0.35,
			Operational:  0.30,
			Reputational: 0.20,
			Compliance:   0.15,
		},
		FinancialSteps: []FinancialStep{
			{Below: 10000, Score: 2},
			{Below: 100000, Score: 4},
			{Below: 1000000, Score: 6},
			{Below: 10000000, Score: 8},
		},
		FinancialTopScore: 10,
		ReputationalCategories: []types.CategoryID{
			"reputational",
			"compliance",
			"security",
			"privacy",
		},
	}
}

func (c ScoringConfig) validate() error {
	for _, l := range types.AllLikelihoods() {
		if _, ok := c.LikelihoodScale[l]; !ok {
			return goerr.Wrap(ErrInvalidCalibration, "likelihood scale is missing a level", goerr.V("likelihood", l))
		}
		p, ok := c.LikelihoodProbability[l]
		if !ok || p < 0 || p > 1 {
			return goerr.Wrap(ErrInvalidCalibration, "likelihood probability must be within [0, 1]", goerr.V("likelihood", l))
		}
	}
	for _, i := range types.AllImpacts() {
		if _, ok := c.ImpactScale[i]; !ok {
			return goerr.Wrap(ErrInvalidCalibration, "impact scale is missing a level", goerr.V("impact", i))
		}
	}
	if !(0 <= c.MinScore && c.MinScore < c.MaxScore) {
		return goerr.Wrap(ErrInvalidCalibration, "invalid score range",
			goerr.V("min", c.MinScore), goerr.V("max", c.MaxScore))
	}
	if !c.DefaultMethodology.IsValid() {
		return goerr.Wrap(ErrInvalidCalibration, "invalid default methodology", goerr.V("methodology", c.DefaultMethodology))
	}
	if c.BulkConcurrency < 1 {
		return goerr.Wrap(ErrInvalidCalibration, "bulk concurrency must be positive")
	}
	w := c.ImpactWeights
	if !sumsToOne(w.Financial, w.Operational, w.Reputational, w.Compliance) {
		return goerr.Wrap(ErrInvalidCalibration, "impact weights must sum to 1.0")
	}
	prev := 0.0
	for _, step := range c.FinancialSteps {
		if step.Below <= prev {
			return goerr.Wrap(ErrInvalidCalibration, "financial steps must be ascending", goerr.V("below", step.Below))
		}
		prev = step.Below
	}
	if c.Trend.Window < 2 || c.Trend.Bound < 0 {
		return goerr.Wrap(ErrInvalidCalibration, "invalid trend settings",
			goerr.V("window", c.Trend.Window), goerr.V("bound", c.Trend.Bound))
	}
	if c.Context.DefaultMaxAcceptableLoss <= 0 {
		return goerr.Wrap(ErrInvalidCalibration, "default max acceptable loss must be positive")
	}
	for appetite, loss := range c.Context.MaxAcceptableLoss {
		if loss <= 0 {
			return goerr.Wrap(ErrInvalidCalibration, "max acceptable loss must be positive", goerr.V("appetite", appetite))
		}
	}
	return nil
}
