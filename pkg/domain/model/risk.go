package model

import (
	"time"

	"github.com/secmon-lab/riskgraph/pkg/domain/types"
)

// Risk is an organizational risk register entry
type Risk struct {
	ID           int64
	Title        string
	Description  string
	Category     types.CategoryID
	BusinessUnit string
	ProcessArea  string

	InherentLikelihood types.Likelihood
	InherentImpact     types.Impact
	// ResidualLikelihood and ResidualImpact are empty until treatments are assessed
	ResidualLikelihood types.Likelihood
	ResidualImpact     types.Impact

	FinancialImpactMin float64
	FinancialImpactMax float64

	RegulatoryRequirements []string
	ExternalDependencies   []string
	AffectedAssets         []int64
	Controls               []string

	LastReviewDate time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// HasFinancialImpact reports whether a quantified financial impact range is present
func (r *Risk) HasFinancialImpact() bool {
	return r.FinancialImpactMax > 0 && r.FinancialImpactMin >= 0 && r.FinancialImpactMin <= r.FinancialImpactMax
}

// ResidualRatings returns residual ratings, falling back to inherent ratings when unset
func (r *Risk) ResidualRatings() (types.Likelihood, types.Impact) {
	likelihood := r.ResidualLikelihood
	if likelihood == "" {
		likelihood = r.InherentLikelihood
	}
	impact := r.ResidualImpact
	if impact == "" {
		impact = r.InherentImpact
	}
	return likelihood, impact
}

// Copy returns a deep copy of the risk
func (r *Risk) Copy() *Risk {
	if r == nil {
		return nil
	}
	copied := *r
	copied.RegulatoryRequirements = append([]string(nil), r.RegulatoryRequirements...)
	copied.ExternalDependencies = append([]string(nil), r.ExternalDependencies...)
	copied.AffectedAssets = append([]int64(nil), r.AffectedAssets...)
	copied.Controls = append([]string(nil), r.Controls...)
	return &copied
}

// RiskContext is caller supplied organizational context used only to adjust scores
type RiskContext struct {
	IndustrySector        string
	RegulatoryEnvironment []string
	MarketConditions      string
	RiskAppetite          types.RiskAppetite
	// BusinessUnit overrides the risk's business unit for history lookups
	BusinessUnit string
}
