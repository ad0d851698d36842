package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskgraph/pkg/domain/model"
	"github.com/secmon-lab/riskgraph/pkg/domain/types"
)

type relationshipRepository struct {
	mu            sync.RWMutex
	relationships map[int64]*model.AssetRelationship
	bySource      map[int64][]int64
	byTarget      map[int64][]int64
}

func newRelationshipRepository() *relationshipRepository {
	return &relationshipRepository{
		relationships: make(map[int64]*model.AssetRelationship),
		bySource:      make(map[int64][]int64),
		byTarget:      make(map[int64][]int64),
	}
}

// collect returns copies of the indexed relationships that pass the filter, ordered by ID
func (r *relationshipRepository) collect(ids []int64, match func(*model.AssetRelationship) bool) []*model.AssetRelationship {
	result := make([]*model.AssetRelationship, 0, len(ids))
	for _, id := range ids {
		rel := r.relationships[id]
		if rel != nil && match(rel) {
			result = append(result, rel.Copy())
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result
}

func (r *relationshipRepository) ListBySource(ctx context.Context, assetID int64, filter model.RelationshipFilter) ([]*model.AssetRelationship, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.collect(r.bySource[assetID], filter.Match), nil
}

func (r *relationshipRepository) ListByTarget(ctx context.Context, assetID int64, filter model.RelationshipFilter) ([]*model.AssetRelationship, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.collect(r.byTarget[assetID], filter.Match), nil
}

func (r *relationshipRepository) ListAmong(ctx context.Context, assetIDs []int64, filter model.RelationshipFilter) ([]*model.AssetRelationship, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members := make(map[int64]bool, len(assetIDs))
	for _, id := range assetIDs {
		members[id] = true
	}

	var candidates []int64
	for id := range members {
		candidates = append(candidates, r.bySource[id]...)
	}

	return r.collect(candidates, func(rel *model.AssetRelationship) bool {
		return members[rel.TargetAssetID] && filter.Match(rel)
	}), nil
}

func (r *relationshipRepository) ListActiveCritical(ctx context.Context) ([]*model.AssetRelationship, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]int64, 0, len(r.relationships))
	for id := range r.relationships {
		ids = append(ids, id)
	}

	return r.collect(ids, func(rel *model.AssetRelationship) bool {
		return rel.IsActive && rel.Strength == types.StrengthCritical
	}), nil
}

func (r *relationshipRepository) Put(ctx context.Context, rel *model.AssetRelationship) error {
	if rel == nil {
		return goerr.New("relationship is nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, exists := r.relationships[rel.ID]; exists {
		r.bySource[existing.SourceAssetID] = removeID(r.bySource[existing.SourceAssetID], rel.ID)
		r.byTarget[existing.TargetAssetID] = removeID(r.byTarget[existing.TargetAssetID], rel.ID)
	}

	r.relationships[rel.ID] = rel.Copy()
	r.bySource[rel.SourceAssetID] = append(r.bySource[rel.SourceAssetID], rel.ID)
	r.byTarget[rel.TargetAssetID] = append(r.byTarget[rel.TargetAssetID], rel.ID)
	return nil
}

func removeID(ids []int64, target int64) []int64 {
	result := ids[:0]
	for _, id := range ids {
		if id != target {
			result = append(result, id)
		}
	}
	return result
}
