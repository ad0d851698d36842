package config

import "github.com/m-mizutani/goerr/v2"

// CriticalityConfig holds the asset criticality factor weights and recommendation gates
type CriticalityConfig struct {
	Weights    CriticalityWeights
	Thresholds CriticalityThresholds
}

// CriticalityWeights must sum to 1.0
type CriticalityWeights struct {
	BusinessImpact         float64
	DataSensitivity        float64
	SystemAvailability     float64
	ComplianceRequirements float64
	RecoveryTimeObjective  float64
	FinancialImpact        float64
	OperationalDependency  float64
}

// CriticalityThresholds are the per-factor scores at which recommendations are issued
type CriticalityThresholds struct {
	BusinessImpact         float64
	DataSensitivity        float64
	SystemAvailability     float64
	ComplianceRequirements float64
	RecoveryTimeObjective  float64
	FinancialImpact        float64
	OperationalDependency  float64
}

func defaultCriticalityConfig() CriticalityConfig {
	return CriticalityConfig{
		Weights: CriticalityWeights{
			BusinessImpact:         0.25,
			DataSensitivity:        0.20,
			SystemAvailability:     0.15,
			ComplianceRequirements: 0.15,
			RecoveryTimeObjective:  0.10,
			FinancialImpact:        0.10,
			OperationalDependency:  0.05,
		},
		Thresholds: CriticalityThresholds{
			BusinessImpact:         8,
			DataSensitivity:        8,
			SystemAvailability:     8,
			ComplianceRequirements: 7,
			RecoveryTimeObjective:  8,
			FinancialImpact:        8,
			OperationalDependency:  7,
		},
	}
}

func (c CriticalityConfig) validate() error {
	w := c.Weights
	if !sumsToOne(w.BusinessImpact, w.DataSensitivity, w.SystemAvailability,
		w.ComplianceRequirements, w.RecoveryTimeObjective, w.FinancialImpact, w.OperationalDependency) {
		return goerr.Wrap(ErrInvalidCalibration, "criticality weights must sum to 1.0")
	}
	return nil
}
