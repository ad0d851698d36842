package model

import "github.com/secmon-lab/riskgraph/pkg/domain/types"

// DependencyNode is an asset discovered while traversing the dependency graph
type DependencyNode struct {
	AssetID              int64                      `json:"asset_id"`
	Name                 string                     `json:"name"`
	Type                 types.AssetType            `json:"type"`
	Criticality          types.Criticality          `json:"criticality"`
	Environment          types.Environment          `json:"environment"`
	Level                int                        `json:"level"`
	RelationshipType     types.RelationshipType     `json:"relationship_type"`
	RelationshipStrength types.RelationshipStrength `json:"relationship_strength"`
	ImpactPercentage     float64                    `json:"impact_percentage"`
}

// DependencyGraph is the bounded forward and reverse traversal around a root asset
type DependencyGraph struct {
	RootAssetID       int64            `json:"root_asset_id"`
	RootAssetName     string           `json:"root_asset_name"`
	MaxDepth          int              `json:"max_depth"`
	Dependencies      []DependencyNode `json:"dependencies"`
	Dependents        []DependencyNode `json:"dependents"`
	TotalDependencies int              `json:"total_dependencies"`
	TotalDependents   int              `json:"total_dependents"`
	CriticalPath      []int64          `json:"critical_path"`
	// Partial is set when a traversal budget ran out before the graph was complete
	Partial bool `json:"partial"`
}

// RiskMetrics are the dependency-derived risk indicators of one asset
type RiskMetrics struct {
	AssetID               int64   `json:"asset_id"`
	SPOFRisk              float64 `json:"single_point_of_failure_risk"`
	CascadeRisk           float64 `json:"cascade_failure_risk"`
	OverallDependencyRisk float64 `json:"overall_dependency_risk"`
	IncomingCount         int     `json:"incoming_relationships"`
	OutgoingCount         int     `json:"outgoing_relationships"`
	CriticalIncomingCount int     `json:"critical_incoming_relationships"`
	DistinctIncomingTypes int     `json:"distinct_incoming_types"`
	RedundancyFactor      float64 `json:"redundancy_factor"`
}

// NetworkNode is an asset in a network map
type NetworkNode struct {
	AssetID     int64             `json:"asset_id"`
	Name        string            `json:"name"`
	Type        types.AssetType   `json:"type"`
	Criticality types.Criticality `json:"criticality"`
	Environment types.Environment `json:"environment"`
}

// NetworkEdge is a relationship between two members of a network map
type NetworkEdge struct {
	RelationshipID int64                      `json:"relationship_id"`
	Source         int64                      `json:"source"`
	Target         int64                      `json:"target"`
	Type           types.RelationshipType     `json:"type"`
	Strength       types.RelationshipStrength `json:"strength"`
}

// NetworkMap is the subgraph induced by a set of assets
type NetworkMap struct {
	Nodes   []NetworkNode `json:"nodes"`
	Edges   []NetworkEdge `json:"edges"`
	Density float64       `json:"density"`
}
