package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskgraph/pkg/domain/interfaces"
	"github.com/secmon-lab/riskgraph/pkg/domain/model"
	"github.com/secmon-lab/riskgraph/pkg/domain/model/config"
	"github.com/secmon-lab/riskgraph/pkg/domain/types"
	"github.com/secmon-lab/riskgraph/pkg/utils/metrics"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type CriticalityUseCase struct {
	repo interfaces.Repository
	cfg  *config.AnalyticsConfig
}

func NewCriticalityUseCase(repo interfaces.Repository, cfg *config.AnalyticsConfig) *CriticalityUseCase {
	return &CriticalityUseCase{
		repo: repo,
		cfg:  cfg,
	}
}

var (
	businessKeywords    = []string{"payment", "billing", "customer", "revenue", "order", "checkout"}
	sensitiveKeywords   = []string{"pii", "personal", "payment", "card", "health", "credential", "secret"}
	availabilityKeyword = []string{"primary", "gateway", "core", "auth"}
)

// ScoreAsset computes the criticality of a stored asset
func (uc *CriticalityUseCase) ScoreAsset(ctx context.Context, assetID int64) (_ *model.CriticalityScore, err error) {
	ctx, span := tracer.Start(ctx, "ScoreAssetCriticality")
	defer span.End()
	span.SetAttributes(attribute.Int64(AssetIDKey, assetID))

	start := time.Now()
	defer func() {
		metrics.Observe("score_asset_criticality", start, err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	asset, err := uc.repo.Asset().Get(ctx, assetID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, goerr.Wrap(ErrAssetNotFound, "asset not found", goerr.V(AssetIDKey, assetID))
		}
		return nil, goerr.Wrap(err, "failed to get asset", goerr.V(AssetIDKey, assetID))
	}

	incoming, err := uc.repo.Relationship().ListByTarget(ctx, assetID, model.RelationshipFilter{ActiveOnly: true})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list incoming relationships", goerr.V(AssetIDKey, assetID))
	}

	score := ScoreAssetEntity(uc.cfg, asset, incoming)
	metrics.CriticalityScoresTotal.WithLabelValues(score.Priority.String()).Inc()
	return score, nil
}

// ScoreAssetEntity computes the criticality of an asset given its active incoming relationships
func ScoreAssetEntity(cfg *config.AnalyticsConfig, asset *model.Asset, incoming []*model.AssetRelationship) *model.CriticalityScore {
	factors := model.CriticalityFactors{
		BusinessImpact:         businessImpactFactor(asset),
		DataSensitivity:        dataSensitivityFactor(asset),
		SystemAvailability:     availabilityFactor(asset),
		ComplianceRequirements: complianceFactor(asset),
		RecoveryTimeObjective:  rtoFactor(asset),
		FinancialImpact:        financialFactor(cfg.Scoring, asset),
		OperationalDependency:  operationalFactor(incoming),
	}

	w := cfg.Criticality.Weights
	total := factors.BusinessImpact*w.BusinessImpact +
		factors.DataSensitivity*w.DataSensitivity +
		factors.SystemAvailability*w.SystemAvailability +
		factors.ComplianceRequirements*w.ComplianceRequirements +
		factors.RecoveryTimeObjective*w.RecoveryTimeObjective +
		factors.FinancialImpact*w.FinancialImpact +
		factors.OperationalDependency*w.OperationalDependency
	total = clamp(total, 0, 10)

	return &model.CriticalityScore{
		AssetID:         asset.ID,
		AssetName:       asset.Name,
		Factors:         factors,
		TotalScore:      total,
		Priority:        cfg.Priority.Tier(total),
		Recommendations: recommendations(cfg.Criticality.Thresholds, factors),
	}
}

func assetText(asset *model.Asset) string {
	parts := append([]string{asset.Name, asset.Description}, asset.Tags...)
	return strings.ToLower(strings.Join(parts, " "))
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

func factor(v float64) float64 {
	return clamp(v, 1, 10)
}

func businessImpactFactor(asset *model.Asset) float64 {
	var score float64
	switch asset.Environment {
	case types.EnvironmentProduction:
		score = 8
	case types.EnvironmentStaging:
		score = 5
	case types.EnvironmentDevelopment:
		score = 3
	default:
		score = 4
	}
	if asset.Type == types.AssetTypeDatabase || asset.Type == types.AssetTypeApplication {
		score++
	}
	if containsAny(assetText(asset), businessKeywords) {
		score++
	}
	return factor(score)
}

func dataSensitivityFactor(asset *model.Asset) float64 {
	var score float64
	switch asset.DataClassification {
	case types.DataClassificationRestricted:
		score = 10
	case types.DataClassificationConfidential:
		score = 8
	case types.DataClassificationInternal:
		score = 5
	case types.DataClassificationPublic:
		score = 2
	default:
		if asset.Type == types.AssetTypeDatabase {
			score = 7
		} else {
			score = 4
		}
	}
	if containsAny(assetText(asset), sensitiveKeywords) {
		score++
	}
	return factor(score)
}

func availabilityFactor(asset *model.Asset) float64 {
	score := 4.0
	if asset.Environment == types.EnvironmentProduction {
		score = 8
	}
	switch asset.Criticality {
	case types.CriticalityCritical:
		score += 2
	case types.CriticalityHigh:
		score++
	}
	if containsAny(assetText(asset), availabilityKeyword) {
		score++
	}
	return factor(score)
}

func complianceFactor(asset *model.Asset) float64 {
	return factor(2 + 2*float64(len(asset.ComplianceFrameworks)))
}

func rtoFactor(asset *model.Asset) float64 {
	rto := asset.RecoveryTimeObjective
	switch {
	case rto <= 0:
		return 5
	case rto <= 15:
		return 10
	case rto <= 60:
		return 8
	case rto <= 240:
		return 6
	case rto <= 1440:
		return 4
	default:
		return 2
	}
}

func financialFactor(sc config.ScoringConfig, asset *model.Asset) float64 {
	if asset.FinancialValue <= 0 {
		return 3
	}
	return factor(sc.FinancialScore(asset.FinancialValue))
}

func operationalFactor(incoming []*model.AssetRelationship) float64 {
	var score float64
	switch n := len(incoming); {
	case n == 0:
		score = 1
	case n <= 2:
		score = 3
	case n <= 5:
		score = 5
	case n <= 10:
		score = 7
	default:
		score = 9
	}
	for _, rel := range incoming {
		if rel.Strength == types.StrengthCritical {
			score++
			break
		}
	}
	return factor(score)
}

func recommendations(th config.CriticalityThresholds, f model.CriticalityFactors) []string {
	var recs []string
	if f.BusinessImpact >= th.BusinessImpact {
		recs = append(recs,
			"Implement redundancy for this business-critical asset",
			"Maintain and regularly test a disaster recovery plan")
	}
	if f.DataSensitivity >= th.DataSensitivity {
		recs = append(recs,
			"Enforce encryption at rest and in transit",
			"Deploy data loss prevention controls")
	}
	if f.SystemAvailability >= th.SystemAvailability {
		recs = append(recs, "Configure high availability and continuous availability monitoring")
	}
	if f.ComplianceRequirements >= th.ComplianceRequirements {
		recs = append(recs, "Schedule regular compliance audits for the applicable frameworks")
	}
	if f.RecoveryTimeObjective >= th.RecoveryTimeObjective {
		recs = append(recs, "Provision a hot standby to meet the recovery time objective")
	}
	if f.FinancialImpact >= th.FinancialImpact {
		recs = append(recs, "Review insurance coverage against the asset's financial exposure")
	}
	if f.OperationalDependency >= th.OperationalDependency {
		recs = append(recs, "Reduce coupling of dependent assets to limit cascading failures")
	}
	if len(recs) == 0 {
		recs = append(recs, "Continue standard periodic review")
	}
	return recs
}
