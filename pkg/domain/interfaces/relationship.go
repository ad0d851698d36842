package interfaces

import (
	"context"

	"github.com/secmon-lab/riskgraph/pkg/domain/model"
)

type RelationshipRepository interface {
	// ListBySource retrieves relationships whose source is assetID, ordered by ID
	ListBySource(ctx context.Context, assetID int64, filter model.RelationshipFilter) ([]*model.AssetRelationship, error)

	// ListByTarget retrieves relationships whose target is assetID, ordered by ID
	ListByTarget(ctx context.Context, assetID int64, filter model.RelationshipFilter) ([]*model.AssetRelationship, error)

	// ListAmong retrieves relationships whose source and target are both in assetIDs
	ListAmong(ctx context.Context, assetIDs []int64, filter model.RelationshipFilter) ([]*model.AssetRelationship, error)

	// ListActiveCritical retrieves every active relationship of critical strength
	ListActiveCritical(ctx context.Context) ([]*model.AssetRelationship, error)

	// Put creates or replaces a relationship
	Put(ctx context.Context, rel *model.AssetRelationship) error
}
