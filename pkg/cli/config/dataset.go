package config

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/secmon-lab/riskgraph/pkg/domain/interfaces"
	"github.com/secmon-lab/riskgraph/pkg/domain/model"
	"github.com/secmon-lab/riskgraph/pkg/domain/types"
	"github.com/secmon-lab/riskgraph/pkg/utils/logging"
	"github.com/secmon-lab/riskgraph/pkg/utils/safe"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

const gcsScheme = "gs://"

// Dataset holds the CLI flag for the asset and risk dataset
type Dataset struct {
	path string
}

// Flags returns CLI flags for dataset configuration
func (x *Dataset) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "dataset",
			Usage:       "Dataset file (TOML or YAML) as a local path or gs://bucket/object",
			Category:    "Dataset",
			Sources:     cli.EnvVars("RISKGRAPH_DATASET"),
			Destination: &x.path,
		},
	}
}

// Path returns the configured dataset location
func (x *Dataset) Path() string {
	return x.path
}

// LogValue implements slog.LogValuer
func (x Dataset) LogValue() slog.Value {
	return slog.GroupValue(slog.String("path", x.path))
}

// Load reads the dataset. It returns nil without error when no dataset is configured.
func (x *Dataset) Load(ctx context.Context) (*DatasetFile, error) {
	if x.path == "" {
		return nil, nil
	}

	data, err := readLocation(ctx, x.path)
	if err != nil {
		return nil, err
	}

	ds, err := ParseDataset(data, path.Ext(x.path))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse dataset", goerr.V(DatasetPathKey, x.path))
	}
	return ds, nil
}

func readLocation(ctx context.Context, location string) ([]byte, error) {
	if !strings.HasPrefix(location, gcsScheme) {
		// #nosec G304 - path is provided by CLI argument
		data, err := os.ReadFile(location)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read dataset file", goerr.V(DatasetPathKey, location))
		}
		return data, nil
	}

	bucket, object, ok := strings.Cut(strings.TrimPrefix(location, gcsScheme), "/")
	if !ok || bucket == "" || object == "" {
		return nil, goerr.Wrap(ErrInvalidDataset, "malformed GCS location", goerr.V(DatasetPathKey, location))
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client")
	}
	defer safe.Close(ctx, client)

	r, err := client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open dataset object",
			goerr.V("bucket", bucket), goerr.V("object", object))
	}
	defer safe.Close(ctx, r)

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read dataset object",
			goerr.V("bucket", bucket), goerr.V("object", object))
	}
	logging.From(ctx).Debug("dataset loaded from GCS", "bucket", bucket, "object", object, "size", len(data))
	return data, nil
}

// DatasetFile is the on-disk dataset shape shared by TOML and YAML
type DatasetFile struct {
	Assets        []AssetRecord        `toml:"asset" yaml:"assets"`
	Relationships []RelationshipRecord `toml:"relationship" yaml:"relationships"`
	Risks         []RiskRecord         `toml:"risk" yaml:"risks"`
	Assessments   []AssessmentRecord   `toml:"assessment" yaml:"assessments"`
	Incidents     []IncidentRecord     `toml:"incident" yaml:"incidents"`
}

type AssetRecord struct {
	ID                    int64    `toml:"id" yaml:"id"`
	Name                  string   `toml:"name" yaml:"name"`
	Type                  string   `toml:"type" yaml:"type"`
	Criticality           string   `toml:"criticality" yaml:"criticality"`
	Environment           string   `toml:"environment" yaml:"environment"`
	BusinessUnit          string   `toml:"business_unit" yaml:"business_unit"`
	Description           string   `toml:"description" yaml:"description"`
	DataClassification    string   `toml:"data_classification" yaml:"data_classification"`
	ComplianceFrameworks  []string `toml:"compliance_frameworks" yaml:"compliance_frameworks"`
	RecoveryTimeObjective int      `toml:"recovery_time_objective" yaml:"recovery_time_objective"`
	FinancialValue        float64  `toml:"financial_value" yaml:"financial_value"`
	Tags                  []string `toml:"tags" yaml:"tags"`
}

type RelationshipRecord struct {
	ID               int64   `toml:"id" yaml:"id"`
	Source           int64   `toml:"source" yaml:"source"`
	Target           int64   `toml:"target" yaml:"target"`
	Type             string  `toml:"type" yaml:"type"`
	Strength         string  `toml:"strength" yaml:"strength"`
	ImpactPercentage float64 `toml:"impact_percentage" yaml:"impact_percentage"`
	// Active defaults to true when omitted
	Active      *bool  `toml:"active" yaml:"active"`
	Description string `toml:"description" yaml:"description"`
}

type RiskRecord struct {
	ID                     int64     `toml:"id" yaml:"id"`
	Title                  string    `toml:"title" yaml:"title"`
	Description            string    `toml:"description" yaml:"description"`
	Category               string    `toml:"category" yaml:"category"`
	BusinessUnit           string    `toml:"business_unit" yaml:"business_unit"`
	ProcessArea            string    `toml:"process_area" yaml:"process_area"`
	InherentLikelihood     string    `toml:"inherent_likelihood" yaml:"inherent_likelihood"`
	InherentImpact         string    `toml:"inherent_impact" yaml:"inherent_impact"`
	ResidualLikelihood     string    `toml:"residual_likelihood" yaml:"residual_likelihood"`
	ResidualImpact         string    `toml:"residual_impact" yaml:"residual_impact"`
	FinancialImpactMin     float64   `toml:"financial_impact_min" yaml:"financial_impact_min"`
	FinancialImpactMax     float64   `toml:"financial_impact_max" yaml:"financial_impact_max"`
	RegulatoryRequirements []string  `toml:"regulatory_requirements" yaml:"regulatory_requirements"`
	ExternalDependencies   []string  `toml:"external_dependencies" yaml:"external_dependencies"`
	AffectedAssets         []int64   `toml:"affected_assets" yaml:"affected_assets"`
	Controls               []string  `toml:"controls" yaml:"controls"`
	LastReviewDate         time.Time `toml:"last_review_date" yaml:"last_review_date"`
}

type AssessmentRecord struct {
	RiskID       int64     `toml:"risk_id" yaml:"risk_id"`
	Likelihood   string    `toml:"likelihood" yaml:"likelihood"`
	Impact       string    `toml:"impact" yaml:"impact"`
	OverallScore float64   `toml:"overall_score" yaml:"overall_score"`
	QualityScore float64   `toml:"quality_score" yaml:"quality_score"`
	DataSources  []string  `toml:"data_sources" yaml:"data_sources"`
	Validated    bool      `toml:"validated" yaml:"validated"`
	AssessedAt   time.Time `toml:"assessed_at" yaml:"assessed_at"`
}

type IncidentRecord struct {
	Title        string    `toml:"title" yaml:"title"`
	Category     string    `toml:"category" yaml:"category"`
	BusinessUnit string    `toml:"business_unit" yaml:"business_unit"`
	OccurredAt   time.Time `toml:"occurred_at" yaml:"occurred_at"`
}

// ParseDataset decodes dataset bytes. The extension selects the format; YAML is
// used for .yaml and .yml, TOML otherwise.
func ParseDataset(data []byte, ext string) (*DatasetFile, error) {
	var ds DatasetFile
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &ds); err != nil {
			return nil, goerr.Wrap(ErrInvalidDataset, "failed to parse YAML", goerr.V("error", err.Error()))
		}
	default:
		if err := toml.Unmarshal(data, &ds); err != nil {
			return nil, goerr.Wrap(ErrInvalidDataset, "failed to parse TOML", goerr.V("error", err.Error()))
		}
	}

	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return &ds, nil
}

// Validate checks enum values and identifiers across records
func (ds *DatasetFile) Validate() error {
	assetIDs := make(map[int64]bool, len(ds.Assets))
	for i, a := range ds.Assets {
		if _, err := a.toModel(); err != nil {
			return goerr.Wrap(err, "invalid asset", goerr.V(RecordKey, i))
		}
		if assetIDs[a.ID] {
			return goerr.Wrap(ErrInvalidDataset, "duplicate asset id", goerr.V("id", a.ID))
		}
		assetIDs[a.ID] = true
	}

	relIDs := make(map[int64]bool, len(ds.Relationships))
	for i, r := range ds.Relationships {
		if _, err := r.toModel(); err != nil {
			return goerr.Wrap(err, "invalid relationship", goerr.V(RecordKey, i))
		}
		if relIDs[r.ID] {
			return goerr.Wrap(ErrInvalidDataset, "duplicate relationship id", goerr.V("id", r.ID))
		}
		relIDs[r.ID] = true
	}

	riskIDs := make(map[int64]bool, len(ds.Risks))
	for i, r := range ds.Risks {
		if _, err := r.toModel(); err != nil {
			return goerr.Wrap(err, "invalid risk", goerr.V(RecordKey, i))
		}
		if riskIDs[r.ID] {
			return goerr.Wrap(ErrInvalidDataset, "duplicate risk id", goerr.V("id", r.ID))
		}
		riskIDs[r.ID] = true
	}

	for i, a := range ds.Assessments {
		if !riskIDs[a.RiskID] {
			return goerr.Wrap(ErrInvalidDataset, "assessment references unknown risk",
				goerr.V(RecordKey, i), goerr.V("risk_id", a.RiskID))
		}
		if _, err := a.toModel(); err != nil {
			return goerr.Wrap(err, "invalid assessment", goerr.V(RecordKey, i))
		}
	}

	for i, rec := range ds.Incidents {
		if _, err := rec.toModel(); err != nil {
			return goerr.Wrap(err, "invalid incident", goerr.V(RecordKey, i))
		}
	}
	return nil
}

func (a AssetRecord) toModel() (*model.Asset, error) {
	if a.ID <= 0 {
		return nil, goerr.Wrap(ErrInvalidDataset, "asset id must be positive", goerr.V("id", a.ID))
	}
	assetType, err := types.ParseAssetType(a.Type)
	if err != nil {
		return nil, goerr.Wrap(ErrInvalidDataset, err.Error(), goerr.V("id", a.ID))
	}
	criticality, err := types.ParseCriticality(a.Criticality)
	if err != nil {
		return nil, goerr.Wrap(ErrInvalidDataset, err.Error(), goerr.V("id", a.ID))
	}
	env, err := types.ParseEnvironment(a.Environment)
	if err != nil {
		return nil, goerr.Wrap(ErrInvalidDataset, err.Error(), goerr.V("id", a.ID))
	}
	class := types.DataClassification(a.DataClassification)
	if !class.IsValid() {
		return nil, goerr.Wrap(ErrInvalidDataset, "invalid data classification",
			goerr.V("id", a.ID), goerr.V("data_classification", a.DataClassification))
	}

	return &model.Asset{
		ID:                    a.ID,
		Name:                  a.Name,
		Type:                  assetType,
		Criticality:           criticality,
		Environment:           env,
		BusinessUnit:          a.BusinessUnit,
		Description:           a.Description,
		DataClassification:    class,
		ComplianceFrameworks:  a.ComplianceFrameworks,
		RecoveryTimeObjective: a.RecoveryTimeObjective,
		FinancialValue:        a.FinancialValue,
		Tags:                  a.Tags,
	}, nil
}

func (r RelationshipRecord) toModel() (*model.AssetRelationship, error) {
	if r.ID <= 0 {
		return nil, goerr.Wrap(ErrInvalidDataset, "relationship id must be positive", goerr.V("id", r.ID))
	}
	relType, err := types.ParseRelationshipType(r.Type)
	if err != nil {
		return nil, goerr.Wrap(ErrInvalidDataset, err.Error(), goerr.V("id", r.ID))
	}
	strength, err := types.ParseRelationshipStrength(r.Strength)
	if err != nil {
		return nil, goerr.Wrap(ErrInvalidDataset, err.Error(), goerr.V("id", r.ID))
	}
	if r.ImpactPercentage < 0 || r.ImpactPercentage > 100 {
		return nil, goerr.Wrap(ErrInvalidDataset, "impact percentage must be within [0, 100]",
			goerr.V("id", r.ID), goerr.V("impact_percentage", r.ImpactPercentage))
	}

	active := true
	if r.Active != nil {
		active = *r.Active
	}
	return &model.AssetRelationship{
		ID:               r.ID,
		SourceAssetID:    r.Source,
		TargetAssetID:    r.Target,
		Type:             relType,
		Strength:         strength,
		ImpactPercentage: r.ImpactPercentage,
		IsActive:         active,
		Description:      r.Description,
	}, nil
}

func optionalLikelihood(s string) (types.Likelihood, error) {
	if s == "" {
		return "", nil
	}
	return types.ParseLikelihood(s)
}

func optionalImpact(s string) (types.Impact, error) {
	if s == "" {
		return "", nil
	}
	return types.ParseImpact(s)
}

func (r RiskRecord) toModel() (*model.Risk, error) {
	if r.ID <= 0 {
		return nil, goerr.Wrap(ErrInvalidDataset, "risk id must be positive", goerr.V("id", r.ID))
	}

	category, err := types.ParseCategoryID(r.Category, true)
	if err != nil {
		return nil, goerr.Wrap(ErrInvalidDataset, err.Error(), goerr.V("id", r.ID), goerr.V("category", r.Category))
	}
	il, err := optionalLikelihood(r.InherentLikelihood)
	if err != nil {
		return nil, goerr.Wrap(ErrInvalidDataset, err.Error(), goerr.V("id", r.ID))
	}
	ii, err := optionalImpact(r.InherentImpact)
	if err != nil {
		return nil, goerr.Wrap(ErrInvalidDataset, err.Error(), goerr.V("id", r.ID))
	}
	rl, err := optionalLikelihood(r.ResidualLikelihood)
	if err != nil {
		return nil, goerr.Wrap(ErrInvalidDataset, err.Error(), goerr.V("id", r.ID))
	}
	ri, err := optionalImpact(r.ResidualImpact)
	if err != nil {
		return nil, goerr.Wrap(ErrInvalidDataset, err.Error(), goerr.V("id", r.ID))
	}

	if r.FinancialImpactMin < 0 || (r.FinancialImpactMax > 0 && r.FinancialImpactMin > r.FinancialImpactMax) {
		return nil, goerr.Wrap(ErrInvalidDataset, "invalid financial impact range",
			goerr.V("id", r.ID), goerr.V("min", r.FinancialImpactMin), goerr.V("max", r.FinancialImpactMax))
	}

	return &model.Risk{
		ID:                     r.ID,
		Title:                  r.Title,
		Description:            r.Description,
		Category:               category,
		BusinessUnit:           r.BusinessUnit,
		ProcessArea:            r.ProcessArea,
		InherentLikelihood:     il,
		InherentImpact:         ii,
		ResidualLikelihood:     rl,
		ResidualImpact:         ri,
		FinancialImpactMin:     r.FinancialImpactMin,
		FinancialImpactMax:     r.FinancialImpactMax,
		RegulatoryRequirements: r.RegulatoryRequirements,
		ExternalDependencies:   r.ExternalDependencies,
		AffectedAssets:         r.AffectedAssets,
		Controls:               r.Controls,
		LastReviewDate:         r.LastReviewDate,
	}, nil
}

func (a AssessmentRecord) toModel() (*model.Assessment, error) {
	likelihood, err := optionalLikelihood(a.Likelihood)
	if err != nil {
		return nil, goerr.Wrap(ErrInvalidDataset, err.Error(), goerr.V("risk_id", a.RiskID))
	}
	impact, err := optionalImpact(a.Impact)
	if err != nil {
		return nil, goerr.Wrap(ErrInvalidDataset, err.Error(), goerr.V("risk_id", a.RiskID))
	}
	if a.QualityScore < 0 || a.QualityScore > 1 {
		return nil, goerr.Wrap(ErrInvalidDataset, "quality score must be within [0, 1]",
			goerr.V("risk_id", a.RiskID), goerr.V("quality_score", a.QualityScore))
	}
	return &model.Assessment{
		ID:           model.AssessmentIDFromKey(fmt.Sprintf("%d/%s", a.RiskID, a.AssessedAt.Format(time.RFC3339Nano))),
		RiskID:       a.RiskID,
		Likelihood:   likelihood,
		Impact:       impact,
		OverallScore: a.OverallScore,
		QualityScore: a.QualityScore,
		DataSources:  a.DataSources,
		Validated:    a.Validated,
		AssessedAt:   a.AssessedAt,
	}, nil
}

func (i IncidentRecord) toModel() (*model.Incident, error) {
	category, err := types.ParseCategoryID(i.Category, false)
	if err != nil {
		return nil, goerr.Wrap(ErrInvalidDataset, err.Error(), goerr.V("title", i.Title), goerr.V("category", i.Category))
	}
	return &model.Incident{
		ID: model.IncidentIDFromKey(fmt.Sprintf("%s/%s/%s/%s",
			i.Title, i.Category, i.BusinessUnit, i.OccurredAt.Format(time.RFC3339Nano))),
		Title:        i.Title,
		Category:     category,
		BusinessUnit: i.BusinessUnit,
		OccurredAt:   i.OccurredAt,
	}, nil
}

// ImportStats counts the records written by Import
type ImportStats struct {
	Assets        int
	Relationships int
	Risks         int
	Assessments   int
	Incidents     int
}

// LogValue implements slog.LogValuer
func (s ImportStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("assets", s.Assets),
		slog.Int("relationships", s.Relationships),
		slog.Int("risks", s.Risks),
		slog.Int("assessments", s.Assessments),
		slog.Int("incidents", s.Incidents),
	)
}

// Import writes every dataset record to repo. Records are validated by ParseDataset.
func (ds *DatasetFile) Import(ctx context.Context, repo interfaces.Repository) (*ImportStats, error) {
	var stats ImportStats

	for _, rec := range ds.Assets {
		asset, err := rec.toModel()
		if err != nil {
			return nil, err
		}
		if err := repo.Asset().Put(ctx, asset); err != nil {
			return nil, goerr.Wrap(err, "failed to put asset", goerr.V("id", asset.ID))
		}
		stats.Assets++
	}

	for _, rec := range ds.Relationships {
		rel, err := rec.toModel()
		if err != nil {
			return nil, err
		}
		if err := repo.Relationship().Put(ctx, rel); err != nil {
			return nil, goerr.Wrap(err, "failed to put relationship", goerr.V("id", rel.ID))
		}
		stats.Relationships++
	}

	for _, rec := range ds.Risks {
		risk, err := rec.toModel()
		if err != nil {
			return nil, err
		}
		if err := repo.Risk().Put(ctx, risk); err != nil {
			return nil, goerr.Wrap(err, "failed to put risk", goerr.V("id", risk.ID))
		}
		stats.Risks++
	}

	for _, rec := range ds.Assessments {
		assessment, err := rec.toModel()
		if err != nil {
			return nil, err
		}
		if err := repo.Assessment().PutAssessment(ctx, assessment); err != nil {
			return nil, goerr.Wrap(err, "failed to put assessment", goerr.V("risk_id", assessment.RiskID))
		}
		stats.Assessments++
	}

	for _, rec := range ds.Incidents {
		incident, err := rec.toModel()
		if err != nil {
			return nil, err
		}
		if err := repo.Assessment().PutIncident(ctx, incident); err != nil {
			return nil, goerr.Wrap(err, "failed to put incident", goerr.V("title", rec.Title))
		}
		stats.Incidents++
	}

	return &stats, nil
}
