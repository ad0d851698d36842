package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	domainConfig "github.com/secmon-lab/riskgraph/pkg/domain/model/config"
	"github.com/secmon-lab/riskgraph/pkg/domain/types"
	"github.com/urfave/cli/v3"
)

// Analytics holds the CLI flag for the calibration file
type Analytics struct {
	path string
}

// Flags returns CLI flags for calibration configuration
func (x *Analytics) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "analytics-config",
			Usage:       "Path to a TOML calibration file overriding default weights and thresholds",
			Category:    "Analytics",
			Sources:     cli.EnvVars("RISKGRAPH_ANALYTICS_CONFIG"),
			Destination: &x.path,
		},
	}
}

// LogValue implements slog.LogValuer
func (x Analytics) LogValue() slog.Value {
	return slog.GroupValue(slog.String("path", x.path))
}

// Configure returns the default calibration overlaid with the file, if any
func (x *Analytics) Configure() (*domainConfig.AnalyticsConfig, error) {
	if x.path == "" {
		return domainConfig.Default(), nil
	}
	return LoadAnalyticsConfig(x.path)
}

// analyticsFile is the TOML shape of a calibration file. Every field is optional.
type analyticsFile struct {
	StrengthWeights map[string]float64 `toml:"strength_weights"`
	TraversalTypes  []string           `toml:"traversal_types"`

	Priority *struct {
		Medium   *float64 `toml:"medium"`
		High     *float64 `toml:"high"`
		Critical *float64 `toml:"critical"`
	} `toml:"priority"`

	Traversal *struct {
		DefaultDepth          *int `toml:"default_depth"`
		MinDepth              *int `toml:"min_depth"`
		MaxDepth              *int `toml:"max_depth"`
		MaxNodes              *int `toml:"max_nodes"`
		MaxCriticalPathLength *int `toml:"max_critical_path_length"`
		MaxPathSteps          *int `toml:"max_path_steps"`
	} `toml:"traversal"`

	Metrics *struct {
		CriticalConcentrationStep *float64 `toml:"critical_concentration_step"`
		CascadeFactor             *float64 `toml:"cascade_factor"`
	} `toml:"metrics"`

	Impact *struct {
		DowntimeMinutes     map[string]float64 `toml:"downtime_minutes"`
		HourlyRevenue       map[string]float64 `toml:"hourly_revenue"`
		RecoveryBaseMinutes map[string]float64 `toml:"recovery_base_minutes"`
		ScenarioProbability map[string]float64 `toml:"scenario_probability"`
		EnvironmentModifier map[string]float64 `toml:"environment_modifier"`
	} `toml:"impact"`

	Scoring *struct {
		LikelihoodScale       map[string]float64 `toml:"likelihood_scale"`
		ImpactScale           map[string]float64 `toml:"impact_scale"`
		LikelihoodProbability map[string]float64 `toml:"likelihood_probability"`
		DefaultMethodology    *string            `toml:"default_methodology"`
		BulkConcurrency       *int               `toml:"bulk_concurrency"`

		SectorImpactMultiplier     map[string]float64 `toml:"sector_impact_multiplier"`
		MarketLikelihoodMultiplier map[string]float64 `toml:"market_likelihood_multiplier"`
		MaxAcceptableLoss          map[string]float64 `toml:"max_acceptable_loss"`

		History *struct {
			LookbackDays           *int     `toml:"lookback_days"`
			HighIncidentThreshold  *int     `toml:"high_incident_threshold"`
			HighIncidentMultiplier *float64 `toml:"high_incident_multiplier"`
			NoIncidentMultiplier   *float64 `toml:"no_incident_multiplier"`
		} `toml:"history"`

		Trend *struct {
			Window *int     `toml:"window"`
			Bound  *float64 `toml:"bound"`
		} `toml:"trend"`

		ImpactWeights *struct {
			Financial    *float64 `toml:"financial"`
			Operational  *float64 `toml:"operational"`
			Reputational *float64 `toml:"reputational"`
			Compliance   *float64 `toml:"compliance"`
		} `toml:"impact_weights"`
	} `toml:"scoring"`

	Criticality *struct {
		Weights    map[string]float64 `toml:"weights"`
		Thresholds map[string]float64 `toml:"thresholds"`
	} `toml:"criticality"`
}

// LoadAnalyticsConfig reads a calibration file, overlays it on the defaults and validates the result
func LoadAnalyticsConfig(path string) (*domainConfig.AnalyticsConfig, error) {
	// #nosec G304 - path is provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, goerr.Wrap(ErrConfigNotFound, "calibration file not found", goerr.V(ConfigPathKey, path))
		}
		return nil, goerr.Wrap(err, "failed to read calibration file", goerr.V(ConfigPathKey, path))
	}

	cfg, err := ParseAnalyticsConfig(data)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid calibration file", goerr.V(ConfigPathKey, path))
	}
	return cfg, nil
}

// ParseAnalyticsConfig overlays TOML calibration data on the defaults
func ParseAnalyticsConfig(data []byte) (*domainConfig.AnalyticsConfig, error) {
	var file analyticsFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, goerr.Wrap(ErrInvalidConfig, "failed to parse TOML", goerr.V("error", err.Error()))
	}

	cfg := domainConfig.Default()
	if err := file.apply(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, goerr.Wrap(err, "calibration validation failed")
	}
	return cfg, nil
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// overlay copies src into dst after checking each key with valid
func overlay[K ~string](dst map[K]float64, src map[string]float64, section string, valid func(K) bool) error {
	for k, v := range src {
		key := K(k)
		if valid != nil && !valid(key) {
			return goerr.Wrap(ErrInvalidConfig, "unknown key in calibration table",
				goerr.V("section", section), goerr.V("key", k))
		}
		dst[key] = v
	}
	return nil
}

func (f *analyticsFile) apply(cfg *domainConfig.AnalyticsConfig) error {
	if err := overlay(cfg.StrengthWeights, f.StrengthWeights, "strength_weights", types.RelationshipStrength.IsValid); err != nil {
		return err
	}
	if len(f.TraversalTypes) > 0 {
		cfg.TraversalTypes = cfg.TraversalTypes[:0:0]
		for _, s := range f.TraversalTypes {
			t, err := types.ParseRelationshipType(s)
			if err != nil {
				return goerr.Wrap(ErrInvalidConfig, "invalid traversal type", goerr.V("type", s))
			}
			cfg.TraversalTypes = append(cfg.TraversalTypes, t)
		}
	}

	if p := f.Priority; p != nil {
		set(&cfg.Priority.Medium, p.Medium)
		set(&cfg.Priority.High, p.High)
		set(&cfg.Priority.Critical, p.Critical)
	}

	if t := f.Traversal; t != nil {
		set(&cfg.Traversal.DefaultDepth, t.DefaultDepth)
		set(&cfg.Traversal.MinDepth, t.MinDepth)
		set(&cfg.Traversal.MaxDepth, t.MaxDepth)
		set(&cfg.Traversal.MaxNodes, t.MaxNodes)
		set(&cfg.Traversal.MaxCriticalPathLength, t.MaxCriticalPathLength)
		set(&cfg.Traversal.MaxPathSteps, t.MaxPathSteps)
	}

	if m := f.Metrics; m != nil {
		set(&cfg.Metrics.CriticalConcentrationStep, m.CriticalConcentrationStep)
		set(&cfg.Metrics.CascadeFactor, m.CascadeFactor)
	}

	if i := f.Impact; i != nil {
		if err := overlay(cfg.Impact.DowntimeMinutes, i.DowntimeMinutes, "impact.downtime_minutes", nil); err != nil {
			return err
		}
		if err := overlay(cfg.Impact.HourlyRevenue, i.HourlyRevenue, "impact.hourly_revenue", types.AssetType.IsValid); err != nil {
			return err
		}
		if err := overlay(cfg.Impact.RecoveryBaseMinutes, i.RecoveryBaseMinutes, "impact.recovery_base_minutes", types.AssetType.IsValid); err != nil {
			return err
		}
		if err := overlay(cfg.Impact.ScenarioProbability, i.ScenarioProbability, "impact.scenario_probability", types.Scenario.IsKnown); err != nil {
			return err
		}
		if err := overlay(cfg.Impact.EnvironmentModifier, i.EnvironmentModifier, "impact.environment_modifier", types.Environment.IsValid); err != nil {
			return err
		}
	}

	if s := f.Scoring; s != nil {
		if err := f.applyScoring(&cfg.Scoring); err != nil {
			return err
		}
	}

	if c := f.Criticality; c != nil {
		if err := applyCriticality(&cfg.Criticality, c.Weights, c.Thresholds); err != nil {
			return err
		}
	}
	return nil
}

func (f *analyticsFile) applyScoring(sc *domainConfig.ScoringConfig) error {
	s := f.Scoring
	if err := overlay(sc.LikelihoodScale, s.LikelihoodScale, "scoring.likelihood_scale", types.Likelihood.IsValid); err != nil {
		return err
	}
	if err := overlay(sc.ImpactScale, s.ImpactScale, "scoring.impact_scale", types.Impact.IsValid); err != nil {
		return err
	}
	if err := overlay(sc.LikelihoodProbability, s.LikelihoodProbability, "scoring.likelihood_probability", types.Likelihood.IsValid); err != nil {
		return err
	}
	if s.DefaultMethodology != nil {
		sc.DefaultMethodology = types.Methodology(*s.DefaultMethodology)
	}
	set(&sc.BulkConcurrency, s.BulkConcurrency)

	for k, v := range s.SectorImpactMultiplier {
		sc.Context.SectorImpactMultiplier[k] = v
	}
	for k, v := range s.MarketLikelihoodMultiplier {
		sc.Context.MarketLikelihoodMultiplier[k] = v
	}
	if err := overlay(sc.Context.MaxAcceptableLoss, s.MaxAcceptableLoss, "scoring.max_acceptable_loss", types.RiskAppetite.IsValid); err != nil {
		return err
	}

	if h := s.History; h != nil {
		set(&sc.History.LookbackDays, h.LookbackDays)
		set(&sc.History.HighIncidentThreshold, h.HighIncidentThreshold)
		set(&sc.History.HighIncidentMultiplier, h.HighIncidentMultiplier)
		set(&sc.History.NoIncidentMultiplier, h.NoIncidentMultiplier)
	}
	if t := s.Trend; t != nil {
		set(&sc.Trend.Window, t.Window)
		set(&sc.Trend.Bound, t.Bound)
	}
	if w := s.ImpactWeights; w != nil {
		set(&sc.ImpactWeights.Financial, w.Financial)
		set(&sc.ImpactWeights.Operational, w.Operational)
		set(&sc.ImpactWeights.Reputational, w.Reputational)
		set(&sc.ImpactWeights.Compliance, w.Compliance)
	}
	return nil
}

func applyCriticality(cc *domainConfig.CriticalityConfig, weights, thresholds map[string]float64) error {
	wt := map[string]*float64{
		"business_impact":         &cc.Weights.BusinessImpact,
		"data_sensitivity":        &cc.Weights.DataSensitivity,
		"system_availability":     &cc.Weights.SystemAvailability,
		"compliance_requirements": &cc.Weights.ComplianceRequirements,
		"recovery_time_objective": &cc.Weights.RecoveryTimeObjective,
		"financial_impact":        &cc.Weights.FinancialImpact,
		"operational_dependency":  &cc.Weights.OperationalDependency,
	}
	th := map[string]*float64{
		"business_impact":         &cc.Thresholds.BusinessImpact,
		"data_sensitivity":        &cc.Thresholds.DataSensitivity,
		"system_availability":     &cc.Thresholds.SystemAvailability,
		"compliance_requirements": &cc.Thresholds.ComplianceRequirements,
		"recovery_time_objective": &cc.Thresholds.RecoveryTimeObjective,
		"financial_impact":        &cc.Thresholds.FinancialImpact,
		"operational_dependency":  &cc.Thresholds.OperationalDependency,
	}

	if err := setFactors(wt, weights, "criticality.weights"); err != nil {
		return err
	}
	return setFactors(th, thresholds, "criticality.thresholds")
}

func setFactors(dst map[string]*float64, src map[string]float64, section string) error {
	for k, v := range src {
		p, ok := dst[k]
		if !ok {
			return goerr.Wrap(ErrInvalidConfig, "unknown criticality factor",
				goerr.V("section", section), goerr.V("key", k))
		}
		*p = v
	}
	return nil
}
