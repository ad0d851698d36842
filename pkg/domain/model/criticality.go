package model

import "github.com/secmon-lab/riskgraph/pkg/domain/types"

// CriticalityFactors are the seven factor scores, each within [1, 10]
type CriticalityFactors struct {
	BusinessImpact         float64 `json:"business_impact"`
	DataSensitivity        float64 `json:"data_sensitivity"`
	SystemAvailability     float64 `json:"system_availability"`
	ComplianceRequirements float64 `json:"compliance_requirements"`
	RecoveryTimeObjective  float64 `json:"recovery_time_objective"`
	FinancialImpact        float64 `json:"financial_impact"`
	OperationalDependency  float64 `json:"operational_dependency"`
}

// CriticalityScore is the weighted criticality assessment of an asset
type CriticalityScore struct {
	AssetID         int64              `json:"asset_id"`
	AssetName       string             `json:"asset_name"`
	Factors         CriticalityFactors `json:"factors"`
	TotalScore      float64            `json:"total_score"`
	Priority        types.Priority     `json:"priority"`
	Recommendations []string           `json:"recommendations"`
}
