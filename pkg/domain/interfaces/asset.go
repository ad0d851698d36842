package interfaces

import (
	"context"

	"github.com/secmon-lab/riskgraph/pkg/domain/model"
)

type AssetRepository interface {
	// Get retrieves an asset by ID
	Get(ctx context.Context, id int64) (*model.Asset, error)

	// GetMany retrieves the assets that exist among ids. Missing ids are skipped.
	GetMany(ctx context.Context, ids []int64) ([]*model.Asset, error)

	// List retrieves all assets ordered by ID
	List(ctx context.Context) ([]*model.Asset, error)

	// Put creates or replaces an asset
	Put(ctx context.Context, asset *model.Asset) error
}
