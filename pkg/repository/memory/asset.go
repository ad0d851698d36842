package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskgraph/pkg/domain/model"
)

type assetRepository struct {
	mu     sync.RWMutex
	assets map[int64]*model.Asset
}

func newAssetRepository() *assetRepository {
	return &assetRepository{
		assets: make(map[int64]*model.Asset),
	}
}

func (r *assetRepository) Get(ctx context.Context, id int64) (*model.Asset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	asset, exists := r.assets[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "asset not found", goerr.V("id", id))
	}

	// Return a copy to prevent external modification
	return asset.Copy(), nil
}

func (r *assetRepository) GetMany(ctx context.Context, ids []int64) ([]*model.Asset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.Asset, 0, len(ids))
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if asset, exists := r.assets[id]; exists {
			result = append(result, asset.Copy())
		}
	}

	return result, nil
}

func (r *assetRepository) List(ctx context.Context) ([]*model.Asset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.Asset, 0, len(r.assets))
	for _, asset := range r.assets {
		result = append(result, asset.Copy())
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result, nil
}

func (r *assetRepository) Put(ctx context.Context, asset *model.Asset) error {
	if asset == nil {
		return goerr.New("asset is nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.assets[asset.ID] = asset.Copy()
	return nil
}
