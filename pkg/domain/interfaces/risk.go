package interfaces

import (
	"context"

	"github.com/secmon-lab/riskgraph/pkg/domain/model"
)

type RiskRepository interface {
	// Get retrieves a risk by ID
	Get(ctx context.Context, id int64) (*model.Risk, error)

	// GetMany retrieves the risks that exist among ids. Missing ids are skipped.
	GetMany(ctx context.Context, ids []int64) ([]*model.Risk, error)

	// List retrieves all risks ordered by ID
	List(ctx context.Context) ([]*model.Risk, error)

	// Put creates or replaces a risk
	Put(ctx context.Context, risk *model.Risk) error
}
