package model_test

import (
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/riskgraph/pkg/domain/model"
	"github.com/secmon-lab/riskgraph/pkg/domain/types"
)

func TestRelationshipFilter_Match(t *testing.T) {
	active := &model.AssetRelationship{Type: types.RelationshipDependsOn, IsActive: true}
	inactive := &model.AssetRelationship{Type: types.RelationshipDependsOn, IsActive: false}
	peer := &model.AssetRelationship{Type: types.RelationshipCommunicatesWith, IsActive: true}

	t.Run("active only", func(t *testing.T) {
		f := model.RelationshipFilter{ActiveOnly: true}
		gt.B(t, f.Match(active)).True()
		gt.B(t, f.Match(inactive)).False()
		gt.B(t, f.Match(peer)).True()
	})

	t.Run("type whitelist", func(t *testing.T) {
		f := model.RelationshipFilter{Types: []types.RelationshipType{types.RelationshipDependsOn}}
		gt.B(t, f.Match(active)).True()
		gt.B(t, f.Match(inactive)).True()
		gt.B(t, f.Match(peer)).False()
	})
}

func TestRisk_ResidualRatings(t *testing.T) {
	t.Run("falls back to inherent", func(t *testing.T) {
		r := &model.Risk{InherentLikelihood: types.LikelihoodHigh, InherentImpact: types.ImpactMajor}
		l, i := r.ResidualRatings()
		gt.Value(t, l).Equal(types.LikelihoodHigh)
		gt.Value(t, i).Equal(types.ImpactMajor)
	})

	t.Run("uses residual when set", func(t *testing.T) {
		r := &model.Risk{
			InherentLikelihood: types.LikelihoodHigh,
			InherentImpact:     types.ImpactMajor,
			ResidualLikelihood: types.LikelihoodLow,
		}
		l, i := r.ResidualRatings()
		gt.Value(t, l).Equal(types.LikelihoodLow)
		gt.Value(t, i).Equal(types.ImpactMajor)
	})
}

func TestRisk_HasFinancialImpact(t *testing.T) {
	gt.B(t, (&model.Risk{}).HasFinancialImpact()).False()
	gt.B(t, (&model.Risk{FinancialImpactMin: 1000, FinancialImpactMax: 5000}).HasFinancialImpact()).True()
	gt.B(t, (&model.Risk{FinancialImpactMin: 9000, FinancialImpactMax: 5000}).HasFinancialImpact()).False()
}

func TestRisk_CopyIsDeep(t *testing.T) {
	r := &model.Risk{ID: 1, Controls: []string{"mfa"}, AffectedAssets: []int64{3}}
	c := r.Copy()
	c.Controls[0] = "changed"
	c.AffectedAssets[0] = 99
	gt.Value(t, r.Controls[0]).Equal("mfa")
	gt.Value(t, r.AffectedAssets[0]).Equal(int64(3))
}

func TestAssessment_DistinctDataSources(t *testing.T) {
	a := &model.Assessment{DataSources: []string{"siem", "siem", "", "interview"}}
	gt.Value(t, a.DistinctDataSources()).Equal(2)
}

func TestIncidentQuery_Match(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	inc := &model.Incident{Category: "security", BusinessUnit: "payments", OccurredAt: now}

	gt.B(t, model.IncidentQuery{}.Match(inc)).True()
	gt.B(t, model.IncidentQuery{Category: "security", Since: now.AddDate(0, -1, 0)}.Match(inc)).True()
	gt.B(t, model.IncidentQuery{Category: "privacy"}.Match(inc)).False()
	gt.B(t, model.IncidentQuery{BusinessUnit: "retail"}.Match(inc)).False()
	gt.B(t, model.IncidentQuery{Since: now.AddDate(0, 0, 1)}.Match(inc)).False()
}

func TestNewAssessmentID_Unique(t *testing.T) {
	gt.Value(t, model.NewAssessmentID()).NotEqual(model.NewAssessmentID())
}
