package usecase

import (
	"context"
	"errors"
	"slices"
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

type DependencyUseCase struct {
	repo interfaces.Repository
	cfg  *config.AnalyticsConfig
}

func NewDependencyUseCase(repo interfaces.Repository, cfg *config.AnalyticsConfig) *DependencyUseCase {
	return &DependencyUseCase{
		repo: repo,
		cfg:  cfg,
	}
}

type direction int

const (
	dirDependencies direction = iota
	dirDependents
)

func (d direction) String() string {
	if d == dirDependents {
		return "dependents"
	}
	return "dependencies"
}

type frontier struct {
	assetID int64
	depth   int
}

func (uc *DependencyUseCase) getAsset(ctx context.Context, assetID int64) (*model.Asset, error) {
	asset, err := uc.repo.Asset().Get(ctx, assetID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, goerr.Wrap(ErrAssetNotFound, "asset not found", goerr.V(AssetIDKey, assetID))
		}
		return nil, goerr.Wrap(err, "failed to get asset", goerr.V(AssetIDKey, assetID))
	}
	return asset, nil
}

// BuildDependencyGraph traverses the forward and reverse dependency graphs of an asset
// up to maxDepth levels and discovers its critical path. maxDepth is expected to be
// bounded by the caller.
func (uc *DependencyUseCase) BuildDependencyGraph(ctx context.Context, assetID int64, maxDepth int) (_ *model.DependencyGraph, err error) {
	ctx, span := tracer.Start(ctx, "BuildDependencyGraph")
	defer span.End()
	span.SetAttributes(attribute.Int64(AssetIDKey, assetID), attribute.Int("max_depth", maxDepth))

	start := time.Now()
	defer func() {
		metrics.Observe("build_dependency_graph", start, err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	root, err := uc.getAsset(ctx, assetID)
	if err != nil {
		return nil, err
	}

	dependencies, depPartial, err := uc.traverse(ctx, root, maxDepth, dirDependencies)
	if err != nil {
		return nil, err
	}
	dependents, revPartial, err := uc.traverse(ctx, root, maxDepth, dirDependents)
	if err != nil {
		return nil, err
	}

	path, pathPartial, err := uc.criticalPath(ctx, root.ID)
	if err != nil {
		return nil, err
	}

	metrics.GraphNodesVisited.WithLabelValues(dirDependencies.String()).Observe(float64(len(dependencies)))
	metrics.GraphNodesVisited.WithLabelValues(dirDependents.String()).Observe(float64(len(dependents)))

	graph := &model.DependencyGraph{
		RootAssetID:       root.ID,
		RootAssetName:     root.Name,
		MaxDepth:          maxDepth,
		Dependencies:      dependencies,
		Dependents:        dependents,
		TotalDependencies: len(dependencies),
		TotalDependents:   len(dependents),
		CriticalPath:      path,
		Partial:           depPartial || revPartial || pathPartial,
	}
	span.SetAttributes(
		attribute.Int("dependencies", graph.TotalDependencies),
		attribute.Int("dependents", graph.TotalDependents),
		attribute.Bool("partial", graph.Partial),
	)
	return graph, nil
}

// traverse runs a breadth-first search in one direction. Each asset is recorded once,
// at the level it is first discovered. The root is never recorded.
func (uc *DependencyUseCase) traverse(ctx context.Context, root *model.Asset, maxDepth int, dir direction) ([]model.DependencyNode, bool, error) {
	filter := model.RelationshipFilter{
		ActiveOnly: true,
		Types:      uc.cfg.TraversalTypes,
	}
	logger := logging.From(ctx)

	nodes := []model.DependencyNode{}
	recorded := map[int64]bool{root.ID: true}
	queue := []frontier{{assetID: root.ID, depth: 0}}

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, false, goerr.Wrap(err, "dependency traversal canceled",
				goerr.V(AssetIDKey, root.ID), goerr.V("direction", dir.String()))
		}

		cur := queue[0]
		queue = queue[1:]
		if cur.depth >= maxDepth {
			continue
		}

		var rels []*model.AssetRelationship
		var err error
		if dir == dirDependencies {
			rels, err = uc.repo.Relationship().ListBySource(ctx, cur.assetID, filter)
		} else {
			rels, err = uc.repo.Relationship().ListByTarget(ctx, cur.assetID, filter)
		}
		if err != nil {
			return nil, false, goerr.Wrap(err, "failed to list relationships",
				goerr.V(AssetIDKey, cur.assetID), goerr.V("direction", dir.String()))
		}

		var neighborIDs []int64
		for _, rel := range rels {
			id := neighborOf(rel, dir)
			if !recorded[id] && !slices.Contains(neighborIDs, id) {
				neighborIDs = append(neighborIDs, id)
			}
		}
		if len(neighborIDs) == 0 {
			continue
		}

		assets, err := uc.repo.Asset().GetMany(ctx, neighborIDs)
		if err != nil {
			return nil, false, goerr.Wrap(err, "failed to get neighbor assets", goerr.V(AssetIDKey, cur.assetID))
		}
		byID := make(map[int64]*model.Asset, len(assets))
		for _, a := range assets {
			byID[a.ID] = a
		}

		for _, rel := range rels {
			id := neighborOf(rel, dir)
			if recorded[id] {
				continue
			}
			asset, ok := byID[id]
			if !ok {
				logger.Warn("relationship points to unknown asset",
					"relationship_id", rel.ID, AssetIDKey, id, "direction", dir.String())
				continue
			}
			if len(nodes) >= uc.cfg.Traversal.MaxNodes {
				logger.Warn("dependency traversal node budget exhausted",
					AssetIDKey, root.ID, "direction", dir.String(), "max_nodes", uc.cfg.Traversal.MaxNodes)
				return nodes, true, nil
			}

			recorded[id] = true
			nodes = append(nodes, model.DependencyNode{
				AssetID:              asset.ID,
				Name:                 asset.Name,
				Type:                 asset.Type,
				Criticality:          asset.Criticality,
				Environment:          asset.Environment,
				Level:                cur.depth + 1,
				RelationshipType:     rel.Type,
				RelationshipStrength: rel.Strength,
				ImpactPercentage:     rel.ImpactPercentage,
			})
			queue = append(queue, frontier{assetID: id, depth: cur.depth + 1})
		}
	}

	return nodes, false, nil
}

func neighborOf(rel *model.AssetRelationship, dir direction) int64 {
	if dir == dirDependencies {
		return rel.TargetAssetID
	}
	return rel.SourceAssetID
}

// pathNode is a persistent linked path. Branches share their common prefix.
type pathNode struct {
	assetID int64
	parent  *pathNode
	length  int
}

func (p *pathNode) contains(assetID int64) bool {
	for n := p; n != nil; n = n.parent {
		if n.assetID == assetID {
			return true
		}
	}
	return false
}

func (p *pathNode) ids() []int64 {
	ids := make([]int64, p.length)
	for n, i := p, p.length-1; n != nil; n, i = n.parent, i-1 {
		ids[i] = n.assetID
	}
	return ids
}

// criticalPath returns the longest simple chain of active critical-strength relationships
// starting at the root. The first path found wins ties.
func (uc *DependencyUseCase) criticalPath(ctx context.Context, rootID int64) ([]int64, bool, error) {
	rels, err := uc.repo.Relationship().ListActiveCritical(ctx)
	if err != nil {
		return nil, false, goerr.Wrap(err, "failed to list critical relationships")
	}

	adjacency := make(map[int64][]int64)
	for _, rel := range rels {
		targets := adjacency[rel.SourceAssetID]
		if !slices.Contains(targets, rel.TargetAssetID) {
			adjacency[rel.SourceAssetID] = append(targets, rel.TargetAssetID)
		}
	}
	for _, targets := range adjacency {
		slices.Sort(targets)
	}

	limits := uc.cfg.Traversal
	best := &pathNode{assetID: rootID, length: 1}
	stack := []*pathNode{best}
	partial := false

	for steps := 0; len(stack) > 0; steps++ {
		if steps >= limits.MaxPathSteps {
			logging.From(ctx).Warn("critical path search step budget exhausted",
				AssetIDKey, rootID, "max_steps", limits.MaxPathSteps)
			partial = true
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, false, goerr.Wrap(err, "critical path search canceled", goerr.V(AssetIDKey, rootID))
		}

		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur.length > best.length {
			best = cur
		}

		next := adjacency[cur.assetID]
		if cur.length >= limits.MaxCriticalPathLength {
			for _, id := range next {
				if !cur.contains(id) {
					partial = true
					break
				}
			}
			continue
		}

		// Push in reverse so the lowest target id is explored first
		for i := len(next) - 1; i >= 0; i-- {
			if cur.contains(next[i]) {
				continue
			}
			stack = append(stack, &pathNode{assetID: next[i], parent: cur, length: cur.length + 1})
		}
	}

	return best.ids(), partial, nil
}

// CalculateRiskMetrics derives single point of failure and cascade failure risk
// from the active relationships of an asset
func (uc *DependencyUseCase) CalculateRiskMetrics(ctx context.Context, assetID int64) (_ *model.RiskMetrics, err error) {
	ctx, span := tracer.Start(ctx, "CalculateRiskMetrics")
	defer span.End()
	span.SetAttributes(attribute.Int64(AssetIDKey, assetID))

	start := time.Now()
	defer func() {
		metrics.Observe("calculate_risk_metrics", start, err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	if _, err := uc.getAsset(ctx, assetID); err != nil {
		return nil, err
	}

	filter := model.RelationshipFilter{ActiveOnly: true}
	incoming, err := uc.repo.Relationship().ListByTarget(ctx, assetID, filter)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list incoming relationships", goerr.V(AssetIDKey, assetID))
	}
	outgoing, err := uc.repo.Relationship().ListBySource(ctx, assetID, filter)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list outgoing relationships", goerr.V(AssetIDKey, assetID))
	}

	result := ComputeRiskMetrics(uc.cfg, incoming, outgoing)
	result.AssetID = assetID
	return result, nil
}

// ComputeRiskMetrics is the pure metric calculation over already loaded relationships
func ComputeRiskMetrics(cfg *config.AnalyticsConfig, incoming, outgoing []*model.AssetRelationship) *model.RiskMetrics {
	result := &model.RiskMetrics{
		IncomingCount: len(incoming),
		OutgoingCount: len(outgoing),
	}

	if len(incoming) > 0 {
		kinds := make(map[types.RelationshipType]struct{}, len(incoming))
		for _, rel := range incoming {
			if rel.Strength == types.StrengthCritical {
				result.CriticalIncomingCount++
			}
			kinds[rel.Type] = struct{}{}
		}
		result.DistinctIncomingTypes = len(kinds)

		base := min(float64(result.CriticalIncomingCount)*cfg.Metrics.CriticalConcentrationStep, 1.0)
		result.RedundancyFactor = float64(result.DistinctIncomingTypes) / float64(len(incoming))
		result.SPOFRisk = clampUnit(base * (2 - result.RedundancyFactor))
	}

	if len(outgoing) > 0 {
		var cascade float64
		for _, rel := range outgoing {
			cascade += cfg.StrengthWeight(rel.Strength) * cfg.Metrics.CascadeFactor
		}
		result.CascadeRisk = clampUnit(cascade)
	}

	result.OverallDependencyRisk = (result.SPOFRisk + result.CascadeRisk) / 2
	return result
}

func clampUnit(v float64) float64 {
	return clamp(v, 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
