package usecase_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/riskgraph/pkg/domain/model"
	"github.com/secmon-lab/riskgraph/pkg/domain/model/config"
	"github.com/secmon-lab/riskgraph/pkg/domain/types"
	"github.com/secmon-lab/riskgraph/pkg/repository/memory"
	"github.com/secmon-lab/riskgraph/pkg/usecase"
)

func baseRisk(id int64) *model.Risk {
	return &model.Risk{
		ID:                 id,
		Title:              "Payment outage",
		Description:        "short",
		Category:           "operational",
		BusinessUnit:       "commerce",
		InherentLikelihood: types.LikelihoodHigh,
		InherentImpact:     types.ImpactMajor,
	}
}

func detailedRisk(id int64) *model.Risk {
	r := baseRisk(id)
	r.Description = strings.Repeat("Payment processor outage blocks checkout. ", 2)
	r.Category = "security"
	r.LastReviewDate = fixedNow.Add(-10 * 24 * time.Hour)
	r.FinancialImpactMin = 100000
	r.FinancialImpactMax = 300000
	r.RegulatoryRequirements = []string{"PCI-DSS", "SOX"}
	r.AffectedAssets = []int64{1, 2}
	r.ExternalDependencies = []string{"stripe"}
	r.Controls = []string{"failover", "monitoring", "runbook"}
	return r
}

func putRisks(t *testing.T, repo *memory.Memory, risks ...*model.Risk) {
	t.Helper()
	for _, r := range risks {
		gt.NoError(t, repo.Risk().Put(context.Background(), r)).Required()
	}
}

func putIncidents(t *testing.T, repo *memory.Memory, n int, category types.CategoryID, businessUnit string) {
	t.Helper()
	for i := range n {
		gt.NoError(t, repo.Assessment().PutIncident(context.Background(), &model.Incident{
			Title:        "incident",
			Category:     category,
			BusinessUnit: businessUnit,
			OccurredAt:   fixedNow.Add(-time.Duration(i+1) * 24 * time.Hour),
		})).Required()
	}
}

func TestAssessRiskSimpleMultiplication(t *testing.T) {
	testCases := []struct {
		name       string
		incidents  int
		likelihood float64
		overall    float64
		priority   types.Priority
	}{
		{name: "no incidents lowers likelihood", incidents: 0, likelihood: 6.3, overall: 4.41, priority: types.PriorityMedium},
		{name: "few incidents are neutral", incidents: 3, likelihood: 7, overall: 4.9, priority: types.PriorityMedium},
		{name: "frequent incidents raise likelihood", incidents: 5, likelihood: 9.1, overall: 6.37, priority: types.PriorityMedium},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			repo := memory.New()
			putRisks(t, repo, baseRisk(1))
			putIncidents(t, repo, tc.incidents, "operational", "commerce")
			// Other business units and old incidents are not counted
			putIncidents(t, repo, 6, "operational", "logistics")
			gt.NoError(t, repo.Assessment().PutIncident(context.Background(), &model.Incident{
				Category: "operational", BusinessUnit: "commerce", OccurredAt: fixedNow.Add(-400 * 24 * time.Hour),
			})).Required()

			uc := newTestUseCases(t, repo)
			score, err := uc.Scoring.AssessRisk(context.Background(), 1, types.MethodologySimpleMultiplication, nil)
			gt.NoError(t, err).Required()

			gt.Value(t, score.Details.RecentIncidents).Equal(tc.incidents)
			assertApprox(t, score.LikelihoodScore, tc.likelihood)
			assertApprox(t, score.ImpactScore, 7)
			assertApprox(t, score.OverallScore, tc.overall)
			gt.Value(t, score.Priority).Equal(tc.priority)
			gt.Value(t, score.Methodology).Equal(types.MethodologySimpleMultiplication)
			gt.Value(t, score.CalculatedAt).Equal(fixedNow)
		})
	}
}

func TestAssessRiskDefaultsMethodology(t *testing.T) {
	repo := memory.New()
	putRisks(t, repo, baseRisk(1))
	uc := newTestUseCases(t, repo)

	score, err := uc.Scoring.AssessRisk(context.Background(), 1, "", nil)
	gt.NoError(t, err).Required()
	gt.Value(t, score.Methodology).Equal(types.MethodologySimpleMultiplication)
}

func TestAssessRiskWeightedAverage(t *testing.T) {
	repo := memory.New()
	putRisks(t, repo, detailedRisk(1))
	uc := newTestUseCases(t, repo)

	score, err := uc.Scoring.AssessRisk(context.Background(), 1, types.MethodologyWeightedAverage, nil)
	gt.NoError(t, err).Required()

	assertApprox(t, score.Details.FinancialComponent, 6)
	assertApprox(t, score.Details.OperationalComponent, 8.5)
	assertApprox(t, score.Details.ReputationalComponent, 7)
	assertApprox(t, score.Details.ComplianceComponent, 7)
	assertApprox(t, score.ImpactScore, 7.1)
	assertApprox(t, score.OverallScore, (6.3+7.1)/2)
	gt.Value(t, score.Priority).Equal(types.PriorityMedium)
	assertApprox(t, score.Confidence, 1.0)
}

func TestAssessRiskQuantitative(t *testing.T) {
	t.Run("requires a financial range", func(t *testing.T) {
		repo := memory.New()
		putRisks(t, repo, baseRisk(1))
		uc := newTestUseCases(t, repo)

		_, err := uc.Scoring.AssessRisk(context.Background(), 1, types.MethodologyQuantitative, nil)
		gt.Error(t, err).Is(usecase.ErrMissingInput)
	})

	t.Run("loss ratio against default acceptable loss", func(t *testing.T) {
		repo := memory.New()
		putRisks(t, repo, detailedRisk(1))
		uc := newTestUseCases(t, repo)

		score, err := uc.Scoring.AssessRisk(context.Background(), 1, types.MethodologyQuantitative, nil)
		gt.NoError(t, err).Required()
		assertApprox(t, score.Details.Probability, 0.54)
		assertApprox(t, score.Details.ExpectedAnnualLoss, 108000)
		assertApprox(t, score.Details.MaxAcceptableLoss, 500000)
		assertApprox(t, score.OverallScore, 2.16)
		gt.Value(t, score.Priority).Equal(types.PriorityLow)
	})

	t.Run("low appetite lowers the acceptable loss", func(t *testing.T) {
		repo := memory.New()
		putRisks(t, repo, detailedRisk(1))
		uc := newTestUseCases(t, repo)

		score, err := uc.Scoring.AssessRisk(context.Background(), 1, types.MethodologyQuantitative,
			&model.RiskContext{RiskAppetite: types.RiskAppetiteLow})
		gt.NoError(t, err).Required()
		assertApprox(t, score.Details.MaxAcceptableLoss, 100000)
		gt.Value(t, score.OverallScore).Equal(10.0)
		gt.Value(t, score.Priority).Equal(types.PriorityCritical)
	})
}

func TestAssessRiskExpertJudgment(t *testing.T) {
	t.Run("falls back to inherent ratings with reduced confidence", func(t *testing.T) {
		repo := memory.New()
		putRisks(t, repo, detailedRisk(1))
		uc := newTestUseCases(t, repo)

		score, err := uc.Scoring.AssessRisk(context.Background(), 1, types.MethodologyExpertJudgment, nil)
		gt.NoError(t, err).Required()
		gt.B(t, score.Details.ExpertFallback).True()
		gt.Value(t, score.Details.Likelihood).Equal(types.LikelihoodHigh)
		assertApprox(t, score.Confidence, 0.7)
	})

	t.Run("uses the latest validated assessment", func(t *testing.T) {
		repo := memory.New()
		risk := baseRisk(1)
		risk.Description = strings.Repeat("x", 60)
		risk.FinancialImpactMin = 1000
		risk.FinancialImpactMax = 2000
		putRisks(t, repo, risk)

		ctx := context.Background()
		gt.NoError(t, repo.Assessment().PutAssessment(ctx, &model.Assessment{
			RiskID: 1, Likelihood: types.LikelihoodCertain, Impact: types.ImpactSevere,
			OverallScore: 5, QualityScore: 0.8, DataSources: []string{"audit", "interview", "audit"},
			Validated: true, AssessedAt: fixedNow.Add(-48 * time.Hour),
		})).Required()
		gt.NoError(t, repo.Assessment().PutAssessment(ctx, &model.Assessment{
			RiskID: 1, Likelihood: types.LikelihoodVeryLow, Impact: types.ImpactNegligible,
			OverallScore: 5, Validated: false, AssessedAt: fixedNow.Add(-24 * time.Hour),
		})).Required()

		uc := newTestUseCases(t, repo)
		score, err := uc.Scoring.AssessRisk(ctx, 1, types.MethodologyExpertJudgment, nil)
		gt.NoError(t, err).Required()

		gt.B(t, score.Details.ExpertFallback).False()
		gt.Value(t, score.Details.Likelihood).Equal(types.LikelihoodCertain)
		gt.Value(t, score.Details.DataSources).Equal(2)
		gt.Value(t, score.Details.TrendPoints).Equal(2)
		assertApprox(t, score.Details.BaseConfidence, 0.5)
		assertApprox(t, score.Confidence, 0.5*0.9+0.1)
		assertApprox(t, score.OverallScore, 9.0)
		gt.Value(t, score.Priority).Equal(types.PriorityCritical)
	})
}

func TestAssessRiskContextAdjustment(t *testing.T) {
	repo := memory.New()
	putRisks(t, repo, baseRisk(1))
	uc := newTestUseCases(t, repo)

	riskCtx := &model.RiskContext{
		IndustrySector:        "Financial Services",
		RegulatoryEnvironment: []string{"GDPR", "PCI-DSS"},
		MarketConditions:      "volatile",
		RiskAppetite:          types.RiskAppetiteLow,
	}
	score, err := uc.Scoring.AssessRisk(context.Background(), 1, types.MethodologySimpleMultiplication, riskCtx)
	gt.NoError(t, err).Required()

	assertApprox(t, score.Details.ContextLikelihoodMultiplier, 1.1)
	assertApprox(t, score.Details.ContextImpactMultiplier, 1.21)
	assertApprox(t, score.Details.AppetiteMultiplier, 1.1)
	assertApprox(t, score.LikelihoodScore, 6.93)
	assertApprox(t, score.ImpactScore, 8.47)
	assertApprox(t, score.OverallScore, 6.93*8.47/10*1.1)
}

func TestAssessRiskBusinessUnitOverride(t *testing.T) {
	repo := memory.New()
	putRisks(t, repo, baseRisk(1))
	putIncidents(t, repo, 5, "operational", "logistics")
	uc := newTestUseCases(t, repo)

	score, err := uc.Scoring.AssessRisk(context.Background(), 1, types.MethodologySimpleMultiplication,
		&model.RiskContext{BusinessUnit: "logistics"})
	gt.NoError(t, err).Required()
	gt.Value(t, score.Details.RecentIncidents).Equal(5)
	assertApprox(t, score.Details.HistoricalMultiplier, 1.3)
}

func TestAssessRiskTrend(t *testing.T) {
	repo := memory.New()
	putRisks(t, repo, baseRisk(1))
	for i, overall := range []float64{1, 2, 4, 6, 8, 10} {
		gt.NoError(t, repo.Assessment().PutAssessment(context.Background(), &model.Assessment{
			RiskID:       1,
			OverallScore: overall,
			AssessedAt:   fixedNow.Add(-time.Duration(10-i) * 24 * time.Hour),
		})).Required()
	}
	uc := newTestUseCases(t, repo)

	score, err := uc.Scoring.AssessRisk(context.Background(), 1, types.MethodologySimpleMultiplication, nil)
	gt.NoError(t, err).Required()
	gt.Value(t, score.Details.TrendPoints).Equal(5)
	assertApprox(t, score.Details.TrendAdjustment, 0.2)
	assertApprox(t, score.LikelihoodScore, 7*0.9*1.2)
	assertApprox(t, score.ImpactScore, 7*1.2)
}

func TestTrendFromScores(t *testing.T) {
	cfg := config.Default().Scoring.Trend

	testCases := []struct {
		name   string
		scores []float64
		want   float64
	}{
		{name: "no history", scores: nil, want: 0},
		{name: "single point", scores: []float64{5}, want: 0},
		{name: "gentle rise", scores: []float64{1, 2}, want: 0.1},
		{name: "flat", scores: []float64{5, 5, 5}, want: 0},
		{name: "steep fall is bounded", scores: []float64{10, 0}, want: -0.2},
		{name: "steep rise is bounded", scores: []float64{2, 4, 6, 8, 10}, want: 0.2},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assertApprox(t, usecase.TrendFromScores(cfg, tc.scores), tc.want)
		})
	}

	assertApprox(t, usecase.Slope([]float64{1, 3, 5, 7}), 2)
}

func TestAssessRiskErrors(t *testing.T) {
	repo := memory.New()
	noRating := baseRisk(2)
	noRating.InherentLikelihood = ""
	putRisks(t, repo, baseRisk(1), noRating)
	uc := newTestUseCases(t, repo)
	ctx := context.Background()

	_, err := uc.Scoring.AssessRisk(ctx, 404, "", nil)
	gt.Error(t, err).Is(usecase.ErrRiskNotFound)

	_, err = uc.Scoring.AssessRisk(ctx, 1, types.Methodology("magic"), nil)
	gt.Error(t, err).Is(usecase.ErrInvalidMethodology)

	_, err = uc.Scoring.AssessRisk(ctx, 2, types.MethodologySimpleMultiplication, nil)
	gt.Error(t, err).Is(usecase.ErrMissingInput)
}

func TestCalculateResidualRisk(t *testing.T) {
	repo := memory.New()
	risk := baseRisk(1)
	risk.ResidualLikelihood = types.LikelihoodLow
	putRisks(t, repo, risk)
	uc := newTestUseCases(t, repo)

	score, err := uc.Scoring.CalculateResidualRisk(context.Background(), 1, types.MethodologySimpleMultiplication, nil)
	gt.NoError(t, err).Required()
	gt.Value(t, score.Methodology).Equal(types.Methodology("residual_simple_multiplication"))
	gt.Value(t, score.Details.Likelihood).Equal(types.LikelihoodLow)
	gt.Value(t, score.Details.Impact).Equal(types.ImpactMajor)
	assertApprox(t, score.OverallScore, 2.7*7/10)
	gt.Value(t, score.Priority).Equal(types.PriorityLow)
}

func TestCompareRiskScores(t *testing.T) {
	repo := memory.New()
	low := baseRisk(2)
	low.InherentLikelihood = types.LikelihoodLow
	low.InherentImpact = types.ImpactMinor
	putRisks(t, repo, baseRisk(1), low)
	uc := newTestUseCases(t, repo)

	result, err := uc.Scoring.CompareRiskScores(context.Background(), 1, 2)
	gt.NoError(t, err).Required()
	gt.Value(t, result.HigherRiskID).Equal(int64(1))
	assertApprox(t, result.Difference, 4.41-0.81)
	gt.Value(t, result.Summary).Equal("Risk 1 (4.41) > Risk 2 (0.81)")

	reversed, err := uc.Scoring.CompareRiskScores(context.Background(), 2, 1)
	gt.NoError(t, err).Required()
	gt.Value(t, reversed.HigherRiskID).Equal(int64(1))
	gt.Value(t, reversed.Summary).Equal("Risk 2 (0.81) < Risk 1 (4.41)")

	same := usecase.CompareScores(&model.RiskScore{RiskID: 3, OverallScore: 5}, &model.RiskScore{RiskID: 4, OverallScore: 5})
	gt.Value(t, same.HigherRiskID).Equal(int64(0))
	gt.Value(t, same.Summary).Equal("Risk 3 (5.00) = Risk 4 (5.00)")
}

func TestBulkAssessRisks(t *testing.T) {
	t.Run("one score per valid id in input order", func(t *testing.T) {
		repo := memory.New()
		putRisks(t, repo, baseRisk(1), baseRisk(2), baseRisk(3))
		uc := newTestUseCases(t, repo)

		scores, err := uc.Scoring.BulkAssessRisks(context.Background(), []int64{3, 999, 1, 3}, "", nil)
		gt.NoError(t, err).Required()
		gt.Array(t, scores).Length(2).Required()
		gt.Value(t, scores[0].RiskID).Equal(int64(3))
		gt.Value(t, scores[1].RiskID).Equal(int64(1))
	})

	t.Run("skips risks lacking quantitative input", func(t *testing.T) {
		repo := memory.New()
		putRisks(t, repo, baseRisk(1), detailedRisk(2))
		uc := newTestUseCases(t, repo)

		scores, err := uc.Scoring.BulkAssessRisks(context.Background(), []int64{1, 2}, types.MethodologyQuantitative, nil)
		gt.NoError(t, err).Required()
		gt.Array(t, scores).Length(1).Required()
		gt.Value(t, scores[0].RiskID).Equal(int64(2))
	})

	t.Run("invalid methodology fails the batch", func(t *testing.T) {
		repo := memory.New()
		putRisks(t, repo, baseRisk(1))
		uc := newTestUseCases(t, repo)

		_, err := uc.Scoring.BulkAssessRisks(context.Background(), []int64{1}, types.Methodology("magic"), nil)
		gt.Error(t, err).Is(usecase.ErrInvalidMethodology)
	})
}

func TestRiskPriorityUsesSharedThresholds(t *testing.T) {
	repo := memory.New()
	var ids []int64
	id := int64(0)
	for _, l := range types.AllLikelihoods() {
		for _, i := range types.AllImpacts() {
			id++
			r := baseRisk(id)
			r.InherentLikelihood = l
			r.InherentImpact = i
			putRisks(t, repo, r)
			ids = append(ids, id)
		}
	}
	uc := newTestUseCases(t, repo)

	scores, err := uc.Scoring.BulkAssessRisks(context.Background(), ids, types.MethodologySimpleMultiplication, nil)
	gt.NoError(t, err).Required()
	gt.Array(t, scores).Length(len(ids))
	for _, s := range scores {
		gt.Value(t, s.Priority).Equal(uc.Config().Priority.Tier(s.OverallScore))
		gt.B(t, s.OverallScore >= 0.1 && s.OverallScore <= 10).True()
		gt.B(t, s.Confidence >= 0 && s.Confidence <= 1).True()
	}
}
