package config

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskgraph/pkg/domain/types"
)

// ImpactConfig holds the failure scenario projection tables
type ImpactConfig struct {
	Levels map[types.Scenario]map[types.RelationshipStrength]types.ImpactLevel

	DowntimeMinutes        map[types.ImpactLevel]float64
	DefaultDowntimeMinutes float64
	DowntimeModifier       map[types.Criticality]float64

	HourlyRevenue            map[types.AssetType]float64
	DefaultHourlyRevenue     float64
	RevenueMultiplier        map[types.Criticality]float64
	DefaultRevenueMultiplier float64

	RecoveryBaseMinutes        map[types.AssetType]float64
	DefaultRecoveryBaseMinutes float64
	RecoveryPerAffectedAsset   float64
	CompleteFailureFactor      float64

	ScenarioProbability        map[types.Scenario]float64
	DefaultScenarioProbability float64
	EnvironmentModifier        map[types.Environment]float64

	CriticalServiceUsers int
	DefaultServiceUsers  int
}

// Level returns the impact level for a dependent reached through an edge of the given strength
func (c ImpactConfig) Level(scenario types.Scenario, strength types.RelationshipStrength) types.ImpactLevel {
	byStrength, ok := c.Levels[scenario]
	if !ok {
		return types.ImpactLevelUnknown
	}
	level, ok := byStrength[strength]
	if !ok {
		return types.ImpactLevelUnknown
	}
	return level
}

// Downtime returns the base downtime of an impact level scaled by the asset criticality
func (c ImpactConfig) Downtime(level types.ImpactLevel, criticality types.Criticality) float64 {
	base, ok := c.DowntimeMinutes[level]
	if !ok {
		base = c.DefaultDowntimeMinutes
	}
	modifier, ok := c.DowntimeModifier[criticality]
	if !ok {
		modifier = 1.0
	}
	return base * modifier
}

// Revenue returns the revenue lost while an asset is down for downtimeMinutes
func (c ImpactConfig) Revenue(assetType types.AssetType, criticality types.Criticality, downtimeMinutes float64) float64 {
	hourly, ok := c.HourlyRevenue[assetType]
	if !ok {
		hourly = c.DefaultHourlyRevenue
	}
	multiplier, ok := c.RevenueMultiplier[criticality]
	if !ok {
		multiplier = c.DefaultRevenueMultiplier
	}
	return hourly * multiplier * downtimeMinutes / 60
}

// RecoveryBase returns the base recovery time for an asset type
func (c ImpactConfig) RecoveryBase(assetType types.AssetType) float64 {
	if base, ok := c.RecoveryBaseMinutes[assetType]; ok {
		return base
	}
	return c.DefaultRecoveryBaseMinutes
}

// Probability returns the scenario probability for an environment, capped at 1.0
func (c ImpactConfig) Probability(scenario types.Scenario, env types.Environment) float64 {
	base, ok := c.ScenarioProbability[scenario]
	if !ok {
		base = c.DefaultScenarioProbability
	}
	modifier, ok := c.EnvironmentModifier[env]
	if !ok {
		modifier = 1.0
	}
	p := base * modifier
	if p > 1.0 {
		return 1.0
	}
	if p < 0 {
		return 0
	}
	return p
}

func defaultImpactConfig() ImpactConfig {
	return ImpactConfig{
		Levels: map[types.Scenario]map[types.RelationshipStrength]types.ImpactLevel{
			types.ScenarioCompleteFailure: {
				types.StrengthCritical: types.ImpactLevelSevere,
				types.StrengthStrong:   types.ImpactLevelSevere,
				types.StrengthModerate: types.ImpactLevelModerate,
				types.StrengthWeak:     types.ImpactLevelMinor,
			},
			types.ScenarioPartialDegradation: {
				types.StrengthCritical: types.ImpactLevelModerate,
				types.StrengthStrong:   types.ImpactLevelModerate,
				types.StrengthModerate: types.ImpactLevelMinor,
				types.StrengthWeak:     types.ImpactLevelNegligible,
			},
			types.ScenarioPerformanceImpact: {
				types.StrengthCritical: types.ImpactLevelModerate,
				types.StrengthStrong:   types.ImpactLevelMinor,
				types.StrengthModerate: types.ImpactLevelMinor,
				types.StrengthWeak:     types.ImpactLevelNegligible,
			},
		},
		DowntimeMinutes: map[types.ImpactLevel]float64{
			types.ImpactLevelSevere:     240,
			types.ImpactLevelModerate:   120,
			types.ImpactLevelMinor:      30,
			types.ImpactLevelNegligible: 5,
		},
		DefaultDowntimeMinutes: 60,
		DowntimeModifier: map[types.Criticality]float64{
			types.CriticalityCritical: 0.5,
			types.CriticalityLow:      2.0,
		},
		HourlyRevenue: map[types.AssetType]float64{
			types.AssetTypeServer:        10000,
			types.AssetTypeDatabase:      25000,
			types.AssetTypeApplication:   15000,
			types.AssetTypeCloudService:  20000,
			types.AssetTypeNetworkDevice: 5000,
		},
		DefaultHourlyRevenue: 5000,
		RevenueMultiplier: map[types.Criticality]float64{
			types.CriticalityCritical: 3.0,
			types.CriticalityHigh:     2.0,
			types.CriticalityMedium:   1.0,
			types.CriticalityLow:      0.5,
		},
		DefaultRevenueMultiplier: 1.0,
		RecoveryBaseMinutes: map[types.AssetType]float64{
			types.AssetTypeServer:        120,
			types.AssetTypeDatabase:      180,
			types.AssetTypeApplication:   60,
			types.AssetTypeCloudService:  90,
			types.AssetTypeNetworkDevice: 45,
		},
		DefaultRecoveryBaseMinutes: 90,
		RecoveryPerAffectedAsset:   15,
		CompleteFailureFactor:      1.5,
		ScenarioProbability: map[types.Scenario]float64{
			types.ScenarioCompleteFailure:    0.05,
			types.ScenarioPartialDegradation: 0.15,
			types.ScenarioPerformanceImpact:  0.30,
		},
		DefaultScenarioProbability: 0.10,
		EnvironmentModifier: map[types.Environment]float64{
			types.EnvironmentProduction:  0.8,
			types.EnvironmentDevelopment: 1.5,
		},
		CriticalServiceUsers: 1000,
		DefaultServiceUsers:  100,
	}
}

func (c ImpactConfig) validate() error {
	for level, minutes := range c.DowntimeMinutes {
		if minutes < 0 {
			return goerr.Wrap(ErrInvalidCalibration, "downtime must not be negative", goerr.V("level", level))
		}
	}
	for crit, m := range c.DowntimeModifier {
		if m < 0 {
			return goerr.Wrap(ErrInvalidCalibration, "downtime modifier must not be negative", goerr.V("criticality", crit))
		}
	}
	for assetType, rate := range c.HourlyRevenue {
		if rate < 0 {
			return goerr.Wrap(ErrInvalidCalibration, "hourly revenue must not be negative", goerr.V("asset_type", assetType))
		}
	}
	for scenario, p := range c.ScenarioProbability {
		if p < 0 || p > 1 {
			return goerr.Wrap(ErrInvalidCalibration, "scenario probability must be within [0, 1]",
				goerr.V("scenario", scenario), goerr.V("probability", p))
		}
	}
	if c.DefaultDowntimeMinutes < 0 || c.DefaultHourlyRevenue < 0 || c.DefaultRecoveryBaseMinutes < 0 ||
		c.RecoveryPerAffectedAsset < 0 || c.CompleteFailureFactor < 0 {
		return goerr.Wrap(ErrInvalidCalibration, "impact defaults must not be negative")
	}
	if c.DefaultScenarioProbability < 0 || c.DefaultScenarioProbability > 1 {
		return goerr.Wrap(ErrInvalidCalibration, "default scenario probability must be within [0, 1]")
	}
	return nil
}
