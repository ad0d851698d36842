package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskgraph/pkg/domain/model"
)

type riskRepository struct {
	mu    sync.RWMutex
	risks map[int64]*model.Risk
}

func newRiskRepository() *riskRepository {
	return &riskRepository{
		risks: make(map[int64]*model.Risk),
	}
}

func (r *riskRepository) Get(ctx context.Context, id int64) (*model.Risk, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	risk, exists := r.risks[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "risk not found", goerr.V("id", id))
	}

	return risk.Copy(), nil
}

func (r *riskRepository) GetMany(ctx context.Context, ids []int64) ([]*model.Risk, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.Risk, 0, len(ids))
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if risk, exists := r.risks[id]; exists {
			result = append(result, risk.Copy())
		}
	}

	return result, nil
}

func (r *riskRepository) List(ctx context.Context) ([]*model.Risk, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	risks := make([]*model.Risk, 0, len(r.risks))
	for _, risk := range r.risks {
		risks = append(risks, risk.Copy())
	}
	sort.Slice(risks, func(i, j int) bool {
		return risks[i].ID < risks[j].ID
	})

	return risks, nil
}

func (r *riskRepository) Put(ctx context.Context, risk *model.Risk) error {
	if risk == nil {
		return goerr.New("risk is nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored := risk.Copy()
	now := time.Now().UTC()
	if existing, exists := r.risks[risk.ID]; exists {
		stored.CreatedAt = existing.CreatedAt
	} else if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now

	r.risks[stored.ID] = stored
	return nil
}
