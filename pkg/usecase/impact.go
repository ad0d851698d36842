package usecase

import (
	"cmp"
	"context"
	"math"
	"slices"
	"strings"
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
)

type ImpactUseCase struct {
	repo       interfaces.Repository
	cfg        *config.AnalyticsConfig
	dependency *DependencyUseCase
}

func NewImpactUseCase(repo interfaces.Repository, cfg *config.AnalyticsConfig, dependency *DependencyUseCase) *ImpactUseCase {
	return &ImpactUseCase{
		repo:       repo,
		cfg:        cfg,
		dependency: dependency,
	}
}

// AnalyzeImpactScenario projects a failure scenario of an asset onto its dependents.
// Unknown scenarios are accepted and yield the unknown impact level.
func (uc *ImpactUseCase) AnalyzeImpactScenario(ctx context.Context, assetID int64, scenario types.Scenario) (_ *model.ImpactAnalysis, err error) {
	ctx, span := tracer.Start(ctx, "AnalyzeImpactScenario")
	defer span.End()
	span.SetAttributes(attribute.Int64(AssetIDKey, assetID), attribute.String(ScenarioKey, scenario.String()))

	start := time.Now()
	defer func() {
		metrics.Observe("analyze_impact_scenario", start, err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	if !scenario.IsKnown() {
		logging.From(ctx).Warn("impact analysis for unknown scenario", AssetIDKey, assetID, ScenarioKey, scenario)
	}

	root, err := uc.dependency.getAsset(ctx, assetID)
	if err != nil {
		return nil, err
	}

	graph, err := uc.dependency.BuildDependencyGraph(ctx, assetID, uc.cfg.Traversal.DefaultDepth)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build dependency graph", goerr.V(AssetIDKey, assetID))
	}

	return ProjectImpact(uc.cfg, root, graph, scenario), nil
}

// ProjectImpact is the pure scenario projection over an already built graph
func ProjectImpact(cfg *config.AnalyticsConfig, root *model.Asset, graph *model.DependencyGraph, scenario types.Scenario) *model.ImpactAnalysis {
	tables := cfg.Impact

	result := &model.ImpactAnalysis{
		RootAssetID:       root.ID,
		RootAssetName:     root.Name,
		Scenario:          scenario,
		AffectedAssets:    []model.AssetImpact{},
		AffectedServices:  []model.ServiceImpact{},
		BusinessFunctions: []string{},
		RecoverySteps:     []model.RecoveryStep{},
		Partial:           graph.Partial,
	}

	for _, node := range graph.Dependents {
		level := tables.Level(scenario, node.RelationshipStrength)
		downtime := int(math.Floor(math.Max(tables.Downtime(level, node.Criticality), 0)))
		revenue := math.Max(tables.Revenue(node.Type, node.Criticality, float64(downtime)), 0)

		result.AffectedAssets = append(result.AffectedAssets, model.AssetImpact{
			AssetID:                  node.AssetID,
			Name:                     node.Name,
			Type:                     node.Type,
			Criticality:              node.Criticality,
			Level:                    node.Level,
			RelationshipStrength:     node.RelationshipStrength,
			ImpactLevel:              level,
			EstimatedDowntimeMinutes: downtime,
			EstimatedRevenueImpact:   revenue,
		})

		result.EstimatedDowntimeMinutes = max(result.EstimatedDowntimeMinutes, downtime)
		result.EstimatedRevenueImpact += revenue

		if node.Type.IsService() {
			result.AffectedServices = append(result.AffectedServices, serviceImpact(tables, node))
		}
	}

	result.BusinessFunctions = businessFunctions(root, result.AffectedAssets)

	hasDependents := len(graph.Dependents) > 0
	if scenario == types.ScenarioCompleteFailure {
		result.RecoverySteps = completeFailureRecovery(root, hasDependents)
	}

	recovery := tables.RecoveryBase(root.Type) + tables.RecoveryPerAffectedAsset*float64(len(result.AffectedAssets))
	if scenario == types.ScenarioCompleteFailure {
		recovery *= tables.CompleteFailureFactor
	}
	result.RecoveryTimeMinutes = int(math.Floor(math.Max(recovery, 0)))
	result.ScenarioProbability = tables.Probability(scenario, root.Environment)

	return result
}

func serviceImpact(tables config.ImpactConfig, node model.DependencyNode) model.ServiceImpact {
	level := types.ServiceImpactMedium
	if node.Criticality == types.CriticalityCritical || node.Criticality == types.CriticalityHigh {
		level = types.ServiceImpactHigh
	}
	users := tables.DefaultServiceUsers
	if node.Criticality == types.CriticalityCritical {
		users = tables.CriticalServiceUsers
	}
	return model.ServiceImpact{
		AssetID:       node.AssetID,
		Name:          node.Name,
		ImpactLevel:   level,
		AffectedUsers: users,
	}
}

func businessFunctions(root *model.Asset, affected []model.AssetImpact) []string {
	functions := []string{}
	add := func(name string) {
		if !slices.Contains(functions, name) {
			functions = append(functions, name)
		}
	}

	if root.BusinessUnit != "" {
		add(root.BusinessUnit + " Operations")
	}
	if root.Environment == types.EnvironmentProduction {
		add("Customer Services")
		add("Revenue Generation")
	}

	for _, a := range affected {
		if !a.ImpactLevel.IsSignificant() {
			continue
		}
		add("IT Operations")
		name := strings.ToLower(a.Name)
		if strings.Contains(name, "database") {
			add("Data Management")
		}
		if strings.Contains(name, "web") {
			add("Web Services")
		}
	}

	slices.Sort(functions)
	return functions
}

func completeFailureRecovery(root *model.Asset, hasDependents bool) []model.RecoveryStep {
	steps := []model.RecoveryStep{
		{Action: "isolate", Description: "Isolate " + root.Name + " to prevent further propagation of the failure"},
		{Action: "root_cause_analysis", Description: "Identify the root cause of the failure"},
		{Action: "failover", Description: "Activate failover or backup systems for " + root.Name},
	}
	if hasDependents {
		steps = append(steps,
			model.RecoveryStep{Action: "notify_stakeholders", Description: "Notify owners of dependent assets and affected business stakeholders"},
			model.RecoveryStep{Action: "workaround", Description: "Implement temporary workarounds for dependent services"},
		)
	}
	steps = append(steps,
		model.RecoveryStep{Action: "recover", Description: "Restore " + root.Name + " from backup or rebuild it"},
		model.RecoveryStep{Action: "validate", Description: "Validate functionality and data integrity of " + root.Name},
		model.RecoveryStep{Action: "restore_dependents", Description: "Restore dependent assets and verify their connectivity"},
		model.RecoveryStep{Action: "post_incident_review", Description: "Conduct a post-incident review and update recovery procedures"},
	)

	for i := range steps {
		steps[i].Order = i + 1
	}
	return steps
}

// GetAssetNetworkMap returns the subgraph induced by a set of assets.
// Every active relationship type is included.
func (uc *ImpactUseCase) GetAssetNetworkMap(ctx context.Context, assetIDs []int64) (_ *model.NetworkMap, err error) {
	ctx, span := tracer.Start(ctx, "GetAssetNetworkMap")
	defer span.End()
	span.SetAttributes(attribute.Int("requested_assets", len(assetIDs)))

	start := time.Now()
	defer func() {
		metrics.Observe("get_asset_network_map", start, err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	if len(assetIDs) > MaxNetworkMapAssets {
		return nil, goerr.Wrap(ErrTooManyAssets, "network map asset set is too large",
			goerr.V("count", len(assetIDs)), goerr.V("max", MaxNetworkMapAssets))
	}

	assets, err := uc.repo.Asset().GetMany(ctx, assetIDs)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get assets", goerr.V("count", len(assetIDs)))
	}
	slices.SortFunc(assets, func(a, b *model.Asset) int {
		return cmp.Compare(a.ID, b.ID)
	})

	ids := make([]int64, len(assets))
	for i, a := range assets {
		ids[i] = a.ID
	}

	var rels []*model.AssetRelationship
	if len(ids) > 0 {
		rels, err = uc.repo.Relationship().ListAmong(ctx, ids, model.RelationshipFilter{ActiveOnly: true})
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list relationships among assets", goerr.V("count", len(ids)))
		}
	}

	return BuildNetworkMap(assets, rels), nil
}

// BuildNetworkMap assembles nodes, edges and density from already loaded data
func BuildNetworkMap(assets []*model.Asset, rels []*model.AssetRelationship) *model.NetworkMap {
	result := &model.NetworkMap{
		Nodes: make([]model.NetworkNode, 0, len(assets)),
		Edges: make([]model.NetworkEdge, 0, len(rels)),
	}

	for _, a := range assets {
		result.Nodes = append(result.Nodes, model.NetworkNode{
			AssetID:     a.ID,
			Name:        a.Name,
			Type:        a.Type,
			Criticality: a.Criticality,
			Environment: a.Environment,
		})
	}
	for _, rel := range rels {
		result.Edges = append(result.Edges, model.NetworkEdge{
			RelationshipID: rel.ID,
			Source:         rel.SourceAssetID,
			Target:         rel.TargetAssetID,
			Type:           rel.Type,
			Strength:       rel.Strength,
		})
	}

	n := len(result.Nodes)
	if n > 1 {
		result.Density = clampUnit(float64(len(result.Edges)) / float64(n*(n-1)))
	}
	return result
}
