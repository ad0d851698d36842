package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskgraph/pkg/domain/interfaces"
	"github.com/secmon-lab/riskgraph/pkg/domain/model"
	"github.com/secmon-lab/riskgraph/pkg/domain/model/config"
	"github.com/secmon-lab/riskgraph/pkg/domain/types"
	"github.com/secmon-lab/riskgraph/pkg/utils/logging"
	"github.com/secmon-lab/riskgraph/pkg/utils/metrics"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"
)

type ScoringUseCase struct {
	repo interfaces.Repository
	cfg  *config.AnalyticsConfig
	now  func() time.Time
}

func NewScoringUseCase(repo interfaces.Repository, cfg *config.AnalyticsConfig, now func() time.Time) *ScoringUseCase {
	return &ScoringUseCase{
		repo: repo,
		cfg:  cfg,
		now:  now,
	}
}

func (uc *ScoringUseCase) getRisk(ctx context.Context, riskID int64) (*model.Risk, error) {
	risk, err := uc.repo.Risk().Get(ctx, riskID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, goerr.Wrap(ErrRiskNotFound, "risk not found", goerr.V(RiskIDKey, riskID))
		}
		return nil, goerr.Wrap(err, "failed to get risk", goerr.V(RiskIDKey, riskID))
	}
	return risk, nil
}

// AssessRisk scores a stored risk with its inherent ratings. An empty method selects
// the default methodology and riskCtx may be nil.
func (uc *ScoringUseCase) AssessRisk(ctx context.Context, riskID int64, method types.Methodology, riskCtx *model.RiskContext) (*model.RiskScore, error) {
	risk, err := uc.getRisk(ctx, riskID)
	if err != nil {
		return nil, err
	}
	return uc.AssessRiskEntity(ctx, risk, method, riskCtx)
}

// AssessRiskEntity scores an already loaded risk with its inherent ratings
func (uc *ScoringUseCase) AssessRiskEntity(ctx context.Context, risk *model.Risk, method types.Methodology, riskCtx *model.RiskContext) (*model.RiskScore, error) {
	return uc.score(ctx, risk, method, riskCtx, false)
}

// CalculateResidualRisk scores a stored risk with its residual ratings, falling back
// to inherent ratings where residual ones are unset
func (uc *ScoringUseCase) CalculateResidualRisk(ctx context.Context, riskID int64, method types.Methodology, riskCtx *model.RiskContext) (*model.RiskScore, error) {
	risk, err := uc.getRisk(ctx, riskID)
	if err != nil {
		return nil, err
	}
	return uc.score(ctx, risk, method, riskCtx, true)
}

// CompareRiskScores scores two risks with the default methodology and reports the higher one
func (uc *ScoringUseCase) CompareRiskScores(ctx context.Context, riskIDA, riskIDB int64) (*model.RiskComparison, error) {
	a, err := uc.AssessRisk(ctx, riskIDA, "", nil)
	if err != nil {
		return nil, err
	}
	b, err := uc.AssessRisk(ctx, riskIDB, "", nil)
	if err != nil {
		return nil, err
	}
	return CompareScores(a, b), nil
}

// CompareScores builds the comparison of two computed scores
func CompareScores(a, b *model.RiskScore) *model.RiskComparison {
	result := &model.RiskComparison{
		RiskA:      a,
		RiskB:      b,
		Difference: math.Abs(a.OverallScore - b.OverallScore),
	}

	switch {
	case a.OverallScore > b.OverallScore:
		result.HigherRiskID = a.RiskID
		result.Summary = fmt.Sprintf("Risk %d (%.2f) > Risk %d (%.2f)", a.RiskID, a.OverallScore, b.RiskID, b.OverallScore)
	case a.OverallScore < b.OverallScore:
		result.HigherRiskID = b.RiskID
		result.Summary = fmt.Sprintf("Risk %d (%.2f) < Risk %d (%.2f)", a.RiskID, a.OverallScore, b.RiskID, b.OverallScore)
	default:
		result.Summary = fmt.Sprintf("Risk %d (%.2f) = Risk %d (%.2f)", a.RiskID, a.OverallScore, b.RiskID, b.OverallScore)
	}
	return result
}

// BulkAssessRisks scores each risk independently. Unknown ids and risks lacking the
// input a methodology requires are skipped, so the result holds one score per
// assessable id in input order.
func (uc *ScoringUseCase) BulkAssessRisks(ctx context.Context, riskIDs []int64, method types.Methodology, riskCtx *model.RiskContext) (_ []*model.RiskScore, err error) {
	ctx, span := tracer.Start(ctx, "BulkAssessRisks")
	defer span.End()
	span.SetAttributes(attribute.Int("requested_risks", len(riskIDs)))

	start := time.Now()
	defer func() {
		metrics.Observe("bulk_assess_risks", start, err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	logger := logging.From(ctx)

	var unique []int64
	seen := make(map[int64]bool, len(riskIDs))
	for _, id := range riskIDs {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}

	risks, err := uc.repo.Risk().GetMany(ctx, unique)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get risks", goerr.V("count", len(unique)))
	}
	byID := make(map[int64]*model.Risk, len(risks))
	for _, r := range risks {
		byID[r.ID] = r
	}

	var targets []*model.Risk
	for _, id := range unique {
		risk, ok := byID[id]
		if !ok {
			logger.Warn("skipping unknown risk in bulk assessment", RiskIDKey, id)
			continue
		}
		targets = append(targets, risk)
	}

	scores := make([]*model.RiskScore, len(targets))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(uc.cfg.Scoring.BulkConcurrency)

	for i, risk := range targets {
		eg.Go(func() error {
			score, err := uc.AssessRiskEntity(egCtx, risk, method, riskCtx)
			if err != nil {
				if errors.Is(err, ErrMissingInput) {
					logger.Warn("skipping risk lacking required input", RiskIDKey, risk.ID, "error", err)
					return nil
				}
				return err
			}
			scores[i] = score
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, goerr.Wrap(err, "bulk assessment failed")
	}

	result := make([]*model.RiskScore, 0, len(scores))
	for _, s := range scores {
		if s != nil {
			result = append(result, s)
		}
	}
	return result, nil
}

func (uc *ScoringUseCase) score(ctx context.Context, risk *model.Risk, method types.Methodology, riskCtx *model.RiskContext, residual bool) (_ *model.RiskScore, err error) {
	ctx, span := tracer.Start(ctx, "ScoreRisk")
	defer span.End()

	start := time.Now()
	defer func() {
		metrics.Observe("assess_risk", start, err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	sc := uc.cfg.Scoring
	if method == "" {
		method = sc.DefaultMethodology
	}
	if !method.IsValid() {
		return nil, goerr.Wrap(ErrInvalidMethodology, "unsupported methodology",
			goerr.V(MethodologyKey, method), goerr.V(RiskIDKey, risk.ID))
	}
	span.SetAttributes(
		attribute.Int64(RiskIDKey, risk.ID),
		attribute.String(MethodologyKey, method.String()),
		attribute.Bool("residual", residual),
	)

	likelihood, impact := risk.InherentLikelihood, risk.InherentImpact
	if residual {
		likelihood, impact = risk.ResidualRatings()
	}

	details := model.CalculationDetails{
		BaseConfidence: uc.baseConfidence(risk),
	}
	confidence := details.BaseConfidence

	if method == types.MethodologyExpertJudgment {
		assessment, err := uc.repo.Assessment().GetLatestValidated(ctx, risk.ID)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to get latest validated assessment", goerr.V(RiskIDKey, risk.ID))
		}
		if assessment != nil && assessment.Likelihood.IsValid() && assessment.Impact.IsValid() {
			likelihood, impact = assessment.Likelihood, assessment.Impact
			quality := clampUnit(assessment.QualityScore)
			sources := assessment.DistinctDataSources()
			bonus := min(float64(sources)*sc.Confidence.SourceBonus, sc.Confidence.SourceBonusCap)

			confidence = details.BaseConfidence*(0.5+0.5*quality) + bonus
			details.AssessmentID = assessment.ID
			details.AssessmentQuality = quality
			details.DataSources = sources
		} else {
			confidence = details.BaseConfidence * sc.Confidence.ExpertFallbackFactor
			details.ExpertFallback = true
		}
	}

	baseL, ok := sc.LikelihoodScale[likelihood]
	if !ok {
		return nil, goerr.Wrap(ErrMissingInput, "likelihood rating is missing or invalid",
			goerr.V(RiskIDKey, risk.ID), goerr.V("likelihood", likelihood))
	}
	baseI, ok := sc.ImpactScale[impact]
	if !ok {
		return nil, goerr.Wrap(ErrMissingInput, "impact rating is missing or invalid",
			goerr.V(RiskIDKey, risk.ID), goerr.V("impact", impact))
	}
	details.Likelihood = likelihood
	details.Impact = impact
	details.BaseLikelihoodScore = baseL
	details.BaseImpactScore = baseI

	adj := uc.contextMultipliers(riskCtx)
	details.ContextLikelihoodMultiplier = adj.likelihood
	details.ContextImpactMultiplier = adj.impact
	details.AppetiteMultiplier = adj.appetite

	historical, incidents, err := uc.historicalMultiplier(ctx, risk, riskCtx)
	if err != nil {
		return nil, err
	}
	details.HistoricalMultiplier = historical
	details.RecentIncidents = incidents

	trend, points, err := uc.trendAdjustment(ctx, risk.ID)
	if err != nil {
		return nil, err
	}
	details.TrendAdjustment = trend
	details.TrendPoints = points
	trendFactor := 1 + trend

	likelihoodScore := sc.Clamp(baseL * adj.likelihood * historical * trendFactor)
	impactScore := sc.Clamp(baseI * adj.impact * trendFactor)
	appetite := adj.appetite

	var raw float64
	switch method {
	case types.MethodologySimpleMultiplication, types.MethodologyExpertJudgment:
		raw = likelihoodScore * impactScore / 10

	case types.MethodologyWeightedAverage:
		comp := impactComponents(sc, risk, baseI)
		details.FinancialComponent = comp.financial
		details.OperationalComponent = comp.operational
		details.ReputationalComponent = comp.reputational
		details.ComplianceComponent = comp.compliance

		w := sc.ImpactWeights
		weighted := comp.financial*w.Financial + comp.operational*w.Operational +
			comp.reputational*w.Reputational + comp.compliance*w.Compliance
		impactScore = sc.Clamp(weighted * adj.impact * trendFactor)
		raw = (likelihoodScore + impactScore) / 2

	case types.MethodologyQuantitative:
		if !risk.HasFinancialImpact() {
			return nil, goerr.Wrap(ErrMissingInput, "quantitative methodology requires a financial impact range",
				goerr.V(RiskIDKey, risk.ID),
				goerr.V("financial_impact_min", risk.FinancialImpactMin),
				goerr.V("financial_impact_max", risk.FinancialImpactMax))
		}
		probability := clampUnit(sc.LikelihoodProbability[likelihood] * adj.likelihood * historical * trendFactor)
		expectedLoss := probability * (risk.FinancialImpactMin + risk.FinancialImpactMax) / 2 * adj.impact
		maxLoss := uc.maxAcceptableLoss(riskCtx)

		details.Probability = probability
		details.ExpectedAnnualLoss = expectedLoss
		details.MaxAcceptableLoss = maxLoss
		details.LossRatio = expectedLoss / maxLoss
		raw = 10 * details.LossRatio
		// Appetite is already reflected in the acceptable loss
		appetite = 1.0
		details.AppetiteMultiplier = appetite
	}
	details.RawScore = raw

	overall := sc.Clamp(raw * appetite)
	priority := uc.cfg.Priority.Tier(overall)

	tag := method
	if residual {
		tag = method.Residual()
	}
	metrics.RiskScoresTotal.WithLabelValues(tag.String(), priority.String()).Inc()

	return &model.RiskScore{
		RiskID:          risk.ID,
		LikelihoodScore: likelihoodScore,
		ImpactScore:     impactScore,
		OverallScore:    overall,
		Priority:        priority,
		Confidence:      clampUnit(confidence),
		Methodology:     tag,
		Details:         details,
		CalculatedAt:    uc.now(),
	}, nil
}
