package usecase

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskgraph/pkg/domain/model"
)

// ValidationIssue represents a single consistency issue found in stored data
type ValidationIssue struct {
	AssetID        int64
	RelationshipID int64
	RiskID         int64
	Message        string
}

// ValidationResult holds the results of repository validation
type ValidationResult struct {
	Assets        int
	Relationships int
	Risks         int
	Issues        []ValidationIssue
}

// HasIssues returns true if there are any validation issues
func (r *ValidationResult) HasIssues() bool {
	return len(r.Issues) > 0
}

// AddIssue adds a validation issue to the result
func (r *ValidationResult) AddIssue(issue ValidationIssue) {
	r.Issues = append(r.Issues, issue)
}

// ValidateRepository checks stored data for references the analytics would skip:
// relationships whose other end is not a stored asset, self referencing
// relationships, relationships of unknown strength, and risks pointing at
// unknown assets. It does NOT modify any data.
func (uc *UseCases) ValidateRepository(ctx context.Context) (*ValidationResult, error) {
	result := &ValidationResult{}

	assets, err := uc.repo.Asset().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list assets")
	}
	result.Assets = len(assets)

	known := make(map[int64]bool, len(assets))
	for _, a := range assets {
		known[a.ID] = true
	}

	seen := make(map[int64]bool)
	check := func(rel *model.AssetRelationship, other int64) {
		if !known[other] {
			result.AddIssue(ValidationIssue{
				AssetID:        other,
				RelationshipID: rel.ID,
				Message:        fmt.Sprintf("relationship %d references unknown asset %d", rel.ID, other),
			})
		}
		if seen[rel.ID] {
			return
		}
		seen[rel.ID] = true
		result.Relationships++

		if rel.SourceAssetID == rel.TargetAssetID {
			result.AddIssue(ValidationIssue{
				AssetID:        rel.SourceAssetID,
				RelationshipID: rel.ID,
				Message:        "relationship references its own source",
			})
		}
		if _, ok := uc.cfg.StrengthWeights[rel.Strength]; !ok {
			result.AddIssue(ValidationIssue{
				RelationshipID: rel.ID,
				Message:        fmt.Sprintf("relationship has unknown strength %q", rel.Strength),
			})
		}
	}

	for _, a := range assets {
		outgoing, err := uc.repo.Relationship().ListBySource(ctx, a.ID, model.RelationshipFilter{})
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list relationships", goerr.V(AssetIDKey, a.ID))
		}
		for _, rel := range outgoing {
			check(rel, rel.TargetAssetID)
		}

		incoming, err := uc.repo.Relationship().ListByTarget(ctx, a.ID, model.RelationshipFilter{})
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list relationships", goerr.V(AssetIDKey, a.ID))
		}
		for _, rel := range incoming {
			check(rel, rel.SourceAssetID)
		}
	}

	risks, err := uc.repo.Risk().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list risks")
	}
	result.Risks = len(risks)

	for _, risk := range risks {
		for _, assetID := range risk.AffectedAssets {
			if !known[assetID] {
				result.AddIssue(ValidationIssue{
					AssetID: assetID,
					RiskID:  risk.ID,
					Message: fmt.Sprintf("risk %d lists unknown affected asset %d", risk.ID, assetID),
				})
			}
		}
	}

	return result, nil
}
