package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskgraph/pkg/domain/model"
	"github.com/secmon-lab/riskgraph/pkg/domain/model/config"
)

type contextAdjustment struct {
	likelihood float64
	impact     float64
	appetite   float64
}

func normalizeLabel(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "_")
}

// contextMultipliers turns organizational context into score multipliers. Nil context is neutral.
func (uc *ScoringUseCase) contextMultipliers(riskCtx *model.RiskContext) contextAdjustment {
	adj := contextAdjustment{likelihood: 1.0, impact: 1.0, appetite: 1.0}
	if riskCtx == nil {
		return adj
	}
	c := uc.cfg.Scoring.Context

	if m, ok := c.SectorImpactMultiplier[normalizeLabel(riskCtx.IndustrySector)]; ok {
		adj.impact *= m
	}
	adj.impact *= 1 + min(float64(len(riskCtx.RegulatoryEnvironment))*c.RegulationImpactStep, c.RegulationImpactCap)

	if m, ok := c.MarketLikelihoodMultiplier[normalizeLabel(riskCtx.MarketConditions)]; ok {
		adj.likelihood *= m
	}
	if m, ok := c.AppetiteMultiplier[riskCtx.RiskAppetite]; ok {
		adj.appetite = m
	}
	return adj
}

func (uc *ScoringUseCase) maxAcceptableLoss(riskCtx *model.RiskContext) float64 {
	c := uc.cfg.Scoring.Context
	if riskCtx != nil {
		if loss, ok := c.MaxAcceptableLoss[riskCtx.RiskAppetite]; ok && loss > 0 {
			return loss
		}
	}
	return c.DefaultMaxAcceptableLoss
}

// historicalMultiplier adjusts likelihood by the number of incidents recorded for the
// risk's category and business unit within the lookback window
func (uc *ScoringUseCase) historicalMultiplier(ctx context.Context, risk *model.Risk, riskCtx *model.RiskContext) (float64, int, error) {
	h := uc.cfg.Scoring.History

	businessUnit := risk.BusinessUnit
	if riskCtx != nil && riskCtx.BusinessUnit != "" {
		businessUnit = riskCtx.BusinessUnit
	}

	query := model.IncidentQuery{
		Category:     risk.Category,
		BusinessUnit: businessUnit,
		Since:        uc.now().Add(-time.Duration(h.LookbackDays) * 24 * time.Hour),
	}
	count, err := uc.repo.Assessment().CountIncidents(ctx, query)
	if err != nil {
		return 0, 0, goerr.Wrap(err, "failed to count incidents",
			goerr.V(RiskIDKey, risk.ID), goerr.V("category", risk.Category), goerr.V("business_unit", businessUnit))
	}

	switch {
	case count >= h.HighIncidentThreshold:
		return h.HighIncidentMultiplier, count, nil
	case count == 0:
		return h.NoIncidentMultiplier, count, nil
	default:
		return 1.0, count, nil
	}
}

// trendAdjustment derives a bounded relative adjustment from recent assessment scores
func (uc *ScoringUseCase) trendAdjustment(ctx context.Context, riskID int64) (float64, int, error) {
	t := uc.cfg.Scoring.Trend

	recent, err := uc.repo.Assessment().ListRecent(ctx, riskID, t.Window)
	if err != nil {
		return 0, 0, goerr.Wrap(err, "failed to list recent assessments", goerr.V(RiskIDKey, riskID))
	}

	scores := make([]float64, len(recent))
	for i, a := range recent {
		scores[i] = a.OverallScore
	}
	return trendFromScores(t, scores), len(scores), nil
}

func trendFromScores(t config.TrendConfig, scores []float64) float64 {
	if len(scores) < 2 {
		return 0
	}
	return clamp(slope(scores)/10, -t.Bound, t.Bound)
}

// slope is the least squares slope of values over their index
func slope(values []float64) float64 {
	n := float64(len(values))
	var sumX, sumY, sumXY, sumXX float64
	for i, y := range values {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	denominator := n*sumXX - sumX*sumX
	if denominator == 0 {
		return 0
	}
	return (n*sumXY - sumX*sumY) / denominator
}

// baseConfidence rates the completeness and recency of the data behind a risk
func (uc *ScoringUseCase) baseConfidence(risk *model.Risk) float64 {
	c := uc.cfg.Scoring.Confidence
	const share = 0.25

	var confidence float64
	if len([]rune(risk.Description)) >= c.MinDescriptionLength {
		confidence += share
	}
	if !risk.LastReviewDate.IsZero() {
		age := uc.now().Sub(risk.LastReviewDate)
		if age <= time.Duration(c.MaxReviewAgeDays)*24*time.Hour {
			confidence += share
		}
	}
	if risk.HasFinancialImpact() {
		confidence += share
	}
	if c.ControlSaturation > 0 {
		confidence += min(float64(len(risk.Controls))/float64(c.ControlSaturation), 1.0) * share
	}
	return clampUnit(confidence)
}

type components struct {
	financial    float64
	operational  float64
	reputational float64
	compliance   float64
}

// impactComponents decomposes impact for the weighted average methodology. Each is within [1, 10].
func impactComponents(sc config.ScoringConfig, risk *model.Risk, baseImpact float64) components {
	var comp components

	if risk.HasFinancialImpact() {
		comp.financial = sc.FinancialScore(risk.FinancialImpactMax)
	} else {
		comp.financial = baseImpact
	}

	exposure := min(len(risk.AffectedAssets)+len(risk.ExternalDependencies), 4)
	comp.operational = baseImpact + 0.5*float64(exposure)

	if sc.IsReputational(risk.Category) {
		comp.reputational = baseImpact
	} else {
		comp.reputational = baseImpact * 0.6
	}

	if n := len(risk.RegulatoryRequirements); n > 0 {
		comp.compliance = 3 + 2*float64(n)
	} else {
		comp.compliance = 1
	}

	comp.financial = clamp(comp.financial, 1, 10)
	comp.operational = clamp(comp.operational, 1, 10)
	comp.reputational = clamp(comp.reputational, 1, 10)
	comp.compliance = clamp(comp.compliance, 1, 10)
	return comp
}
