package model

import "github.com/secmon-lab/riskgraph/pkg/domain/types"

// AssetRelationship is a directed edge: the source asset relates to the target asset.
// For depends_on the source depends on the target.
type AssetRelationship struct {
	ID               int64
	SourceAssetID    int64
	TargetAssetID    int64
	Type             types.RelationshipType
	Strength         types.RelationshipStrength
	ImpactPercentage float64
	IsActive         bool
	Description      string
}

// Copy returns a copy of the relationship
func (r *AssetRelationship) Copy() *AssetRelationship {
	if r == nil {
		return nil
	}
	copied := *r
	return &copied
}

// RelationshipFilter narrows relationship lookups
type RelationshipFilter struct {
	ActiveOnly bool
	// Types restricts results to the listed types. Empty means any type.
	Types []types.RelationshipType
}

// Match reports whether a relationship passes the filter
func (f RelationshipFilter) Match(r *AssetRelationship) bool {
	if f.ActiveOnly && !r.IsActive {
		return false
	}
	if len(f.Types) == 0 {
		return true
	}
	for _, t := range f.Types {
		if r.Type == t {
			return true
		}
	}
	return false
}
