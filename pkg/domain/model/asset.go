package model

import "github.com/secmon-lab/riskgraph/pkg/domain/types"

// Asset is an infrastructure or application component tracked for dependency analysis
type Asset struct {
	ID           int64
	Name         string
	Type         types.AssetType
	Criticality  types.Criticality
	Environment  types.Environment
	BusinessUnit string
	Description  string

	DataClassification   types.DataClassification
	ComplianceFrameworks []string
	// RecoveryTimeObjective in minutes, 0 when not defined
	RecoveryTimeObjective int
	// FinancialValue is the annual business value attributed to the asset in USD
	FinancialValue float64
	Tags           []string
}

// Copy returns a deep copy of the asset
func (a *Asset) Copy() *Asset {
	if a == nil {
		return nil
	}
	copied := *a
	copied.ComplianceFrameworks = append([]string(nil), a.ComplianceFrameworks...)
	copied.Tags = append([]string(nil), a.Tags...)
	return &copied
}
