package model

import "github.com/secmon-lab/riskgraph/pkg/domain/types"

// AssetImpact is the projected effect of a scenario on one dependent asset
type AssetImpact struct {
	AssetID                  int64                      `json:"asset_id"`
	Name                     string                     `json:"name"`
	Type                     types.AssetType            `json:"type"`
	Criticality              types.Criticality          `json:"criticality"`
	Level                    int                        `json:"level"`
	RelationshipStrength     types.RelationshipStrength `json:"relationship_strength"`
	ImpactLevel              types.ImpactLevel          `json:"impact_level"`
	EstimatedDowntimeMinutes int                        `json:"estimated_downtime_minutes"`
	EstimatedRevenueImpact   float64                    `json:"estimated_revenue_impact"`
}

// ServiceImpact is a user-facing service affected by a scenario
type ServiceImpact struct {
	AssetID       int64                    `json:"asset_id"`
	Name          string                   `json:"name"`
	ImpactLevel   types.ServiceImpactLevel `json:"impact_level"`
	AffectedUsers int                      `json:"affected_users"`
}

// RecoveryStep is one step of a recovery procedure
type RecoveryStep struct {
	Order       int    `json:"order"`
	Action      string `json:"action"`
	Description string `json:"description"`
}

// ImpactAnalysis is the projection of a failure scenario on a root asset
type ImpactAnalysis struct {
	RootAssetID   int64          `json:"root_asset_id"`
	RootAssetName string         `json:"root_asset_name"`
	Scenario      types.Scenario `json:"scenario"`

	AffectedAssets []AssetImpact `json:"affected_assets"`
	// EstimatedDowntimeMinutes is the maximum across dependents, assuming parallel recovery
	EstimatedDowntimeMinutes int `json:"estimated_downtime_minutes"`
	// EstimatedRevenueImpact is the sum across dependents
	EstimatedRevenueImpact float64         `json:"estimated_revenue_impact"`
	AffectedServices       []ServiceImpact `json:"affected_services"`
	BusinessFunctions      []string        `json:"business_functions"`

	RecoverySteps       []RecoveryStep `json:"recovery_steps"`
	RecoveryTimeMinutes int            `json:"recovery_time_minutes"`
	ScenarioProbability float64        `json:"scenario_probability"`
	Partial             bool           `json:"partial"`
}
