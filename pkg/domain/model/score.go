package model

import (
	"time"

	"github.com/secmon-lab/riskgraph/pkg/domain/types"
)

// RiskScore is the computed score of a risk under one methodology
type RiskScore struct {
	RiskID          int64              `json:"risk_id"`
	LikelihoodScore float64            `json:"likelihood_score"`
	ImpactScore     float64            `json:"impact_score"`
	OverallScore    float64            `json:"overall_score"`
	Priority        types.Priority     `json:"priority"`
	Confidence      float64            `json:"confidence"`
	Methodology     types.Methodology  `json:"methodology"`
	Details         CalculationDetails `json:"details"`
	CalculatedAt    time.Time          `json:"calculated_at"`
}

// CalculationDetails records the intermediate values of a score for auditability
type CalculationDetails struct {
	Likelihood types.Likelihood `json:"likelihood"`
	Impact     types.Impact     `json:"impact"`

	BaseLikelihoodScore float64 `json:"base_likelihood_score"`
	BaseImpactScore     float64 `json:"base_impact_score"`

	ContextLikelihoodMultiplier float64 `json:"context_likelihood_multiplier"`
	ContextImpactMultiplier     float64 `json:"context_impact_multiplier"`
	AppetiteMultiplier          float64 `json:"appetite_multiplier"`
	HistoricalMultiplier        float64 `json:"historical_multiplier"`
	RecentIncidents             int     `json:"recent_incidents"`
	TrendAdjustment             float64 `json:"trend_adjustment"`
	TrendPoints                 int     `json:"trend_points"`

	RawScore float64 `json:"raw_score"`

	// Weighted average components
	FinancialComponent    float64 `json:"financial_component,omitempty"`
	OperationalComponent  float64 `json:"operational_component,omitempty"`
	ReputationalComponent float64 `json:"reputational_component,omitempty"`
	ComplianceComponent   float64 `json:"compliance_component,omitempty"`

	// Quantitative values
	Probability        float64 `json:"probability,omitempty"`
	ExpectedAnnualLoss float64 `json:"expected_annual_loss,omitempty"`
	MaxAcceptableLoss  float64 `json:"max_acceptable_loss,omitempty"`
	LossRatio          float64 `json:"loss_ratio,omitempty"`

	// Expert judgment values
	AssessmentID      AssessmentID `json:"assessment_id,omitempty"`
	AssessmentQuality float64      `json:"assessment_quality,omitempty"`
	DataSources       int          `json:"data_sources,omitempty"`
	ExpertFallback    bool         `json:"expert_fallback,omitempty"`

	BaseConfidence float64 `json:"base_confidence"`
}

// RiskComparison is the outcome of comparing two risks under the default methodology
type RiskComparison struct {
	RiskA *RiskScore `json:"risk_a"`
	RiskB *RiskScore `json:"risk_b"`
	// HigherRiskID is 0 when both scores are equal
	HigherRiskID int64   `json:"higher_risk_id"`
	Difference   float64 `json:"difference"`
	Summary      string  `json:"summary"`
}
