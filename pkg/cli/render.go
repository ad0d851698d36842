package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskgraph/pkg/domain/model"
	"github.com/secmon-lab/riskgraph/pkg/domain/types"
)

const (
	formatText = "text"
	formatJSON = "json"
)

var (
	heading   = color.New(color.Bold).SprintFunc()
	faint     = color.New(color.Faint).SprintFunc()
	priorityC = map[types.Priority]*color.Color{
		types.PriorityCritical: color.New(color.FgRed, color.Bold),
		types.PriorityHigh:     color.New(color.FgRed),
		types.PriorityMedium:   color.New(color.FgYellow),
		types.PriorityLow:      color.New(color.FgGreen),
	}
	impactC = map[types.ImpactLevel]*color.Color{
		types.ImpactLevelSevere:   color.New(color.FgRed, color.Bold),
		types.ImpactLevelModerate: color.New(color.FgYellow),
		types.ImpactLevelMinor:    color.New(color.FgGreen),
	}
)

func priority(p types.Priority) string {
	if c, ok := priorityC[p]; ok {
		return c.Sprint(strings.ToUpper(p.String()))
	}
	return p.String()
}

func impactLevel(l types.ImpactLevel) string {
	if c, ok := impactC[l]; ok {
		return c.Sprint(l.String())
	}
	return l.String()
}

// render writes v as indented JSON or as a human readable summary
func render(w io.Writer, format string, v any) error {
	if format == formatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return goerr.Wrap(err, "failed to encode output")
		}
		return nil
	}

	var b strings.Builder
	switch r := v.(type) {
	case *model.DependencyGraph:
		renderGraph(&b, r)
	case *model.RiskMetrics:
		renderMetrics(&b, r)
	case *model.ImpactAnalysis:
		renderImpact(&b, r)
	case *model.NetworkMap:
		renderNetwork(&b, r)
	case *model.RiskScore:
		renderScore(&b, r)
	case []*model.RiskScore:
		renderScores(&b, r)
	case *model.RiskComparison:
		renderScore(&b, r.RiskA)
		b.WriteString("\n")
		renderScore(&b, r.RiskB)
		fmt.Fprintf(&b, "\n%s %s (difference %.2f)\n", heading("Result:"), r.Summary, r.Difference)
	case *model.CriticalityScore:
		renderCriticality(&b, r)
	default:
		fmt.Fprintf(&b, "%+v\n", v)
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return goerr.Wrap(err, "failed to write output")
	}
	return nil
}

func renderNodes(b *strings.Builder, title string, nodes []model.DependencyNode) {
	fmt.Fprintf(b, "%s (%d)\n", heading(title), len(nodes))
	for _, n := range nodes {
		fmt.Fprintf(b, "  %s[%d] %s %s %s\n",
			strings.Repeat("  ", max(n.Level-1, 0)), n.AssetID, n.Name,
			faint(fmt.Sprintf("(%s, %s)", n.Type, n.Criticality)),
			faint(fmt.Sprintf("%s/%s L%d", n.RelationshipType, n.RelationshipStrength, n.Level)))
	}
}

func renderGraph(b *strings.Builder, g *model.DependencyGraph) {
	fmt.Fprintf(b, "%s [%d] %s (depth %d)\n", heading("Asset"), g.RootAssetID, g.RootAssetName, g.MaxDepth)
	renderNodes(b, "Dependencies", g.Dependencies)
	renderNodes(b, "Dependents", g.Dependents)

	path := make([]string, len(g.CriticalPath))
	for i, id := range g.CriticalPath {
		path[i] = fmt.Sprint(id)
	}
	fmt.Fprintf(b, "%s %s\n", heading("Critical path:"), strings.Join(path, " -> "))
	if g.Partial {
		fmt.Fprintf(b, "%s\n", color.YellowString("result is partial: traversal budget exhausted"))
	}
}

func renderMetrics(b *strings.Builder, m *model.RiskMetrics) {
	fmt.Fprintf(b, "%s [%d]\n", heading("Dependency risk of asset"), m.AssetID)
	fmt.Fprintf(b, "  single point of failure  %.3f\n", m.SPOFRisk)
	fmt.Fprintf(b, "  cascade failure          %.3f\n", m.CascadeRisk)
	fmt.Fprintf(b, "  overall                  %.3f\n", m.OverallDependencyRisk)
	fmt.Fprintf(b, "  incoming %d (critical %d, types %d), outgoing %d\n",
		m.IncomingCount, m.CriticalIncomingCount, m.DistinctIncomingTypes, m.OutgoingCount)
}

func renderImpact(b *strings.Builder, r *model.ImpactAnalysis) {
	fmt.Fprintf(b, "%s %s on [%d] %s\n", heading("Scenario"), r.Scenario, r.RootAssetID, r.RootAssetName)
	if r.Partial {
		fmt.Fprintf(b, "%s\n", color.YellowString("result is partial: traversal budget exhausted"))
	}
	for _, a := range r.AffectedAssets {
		fmt.Fprintf(b, "  [%d] %-24s %-10s %5d min  $%.0f\n",
			a.AssetID, a.Name, impactLevel(a.ImpactLevel), a.EstimatedDowntimeMinutes, a.EstimatedRevenueImpact)
	}
	fmt.Fprintf(b, "%s %d min, $%.0f revenue at risk\n", heading("Total:"), r.EstimatedDowntimeMinutes, r.EstimatedRevenueImpact)
	fmt.Fprintf(b, "%s %d min, probability %.2f\n", heading("Recovery:"), r.RecoveryTimeMinutes, r.ScenarioProbability)
	if len(r.BusinessFunctions) > 0 {
		fmt.Fprintf(b, "%s %s\n", heading("Business functions:"), strings.Join(r.BusinessFunctions, ", "))
	}
	for _, s := range r.RecoverySteps {
		fmt.Fprintf(b, "  %d. %s %s\n", s.Order, s.Description, faint(s.Action))
	}
}

func renderNetwork(b *strings.Builder, m *model.NetworkMap) {
	fmt.Fprintf(b, "%s %d nodes, %d edges, density %.3f\n", heading("Network:"), len(m.Nodes), len(m.Edges), m.Density)
	for _, e := range m.Edges {
		fmt.Fprintf(b, "  %d -> %d %s\n", e.Source, e.Target, faint(fmt.Sprintf("(%s/%s)", e.Type, e.Strength)))
	}
}

func renderScore(b *strings.Builder, s *model.RiskScore) {
	fmt.Fprintf(b, "%s [%d] %s %.2f %s\n", heading("Risk"), s.RiskID, s.Methodology, s.OverallScore, priority(s.Priority))
	fmt.Fprintf(b, "  likelihood %.2f  impact %.2f  confidence %.2f\n", s.LikelihoodScore, s.ImpactScore, s.Confidence)
	if s.Details.ExpertFallback {
		fmt.Fprintf(b, "  %s\n", color.YellowString("no validated assessment; inherent ratings used"))
	}
}

func renderScores(b *strings.Builder, scores []*model.RiskScore) {
	for _, s := range scores {
		fmt.Fprintf(b, "[%d] %-28s %6.2f %s\n", s.RiskID, s.Methodology, s.OverallScore, priority(s.Priority))
	}
	fmt.Fprintf(b, "%s %d\n", heading("Scored:"), len(scores))
}

func renderCriticality(b *strings.Builder, s *model.CriticalityScore) {
	f := s.Factors
	fmt.Fprintf(b, "%s [%d] %s %.2f %s\n", heading("Criticality"), s.AssetID, s.AssetName, s.TotalScore, priority(s.Priority))
	fmt.Fprintf(b, "  business %.0f  data %.0f  availability %.0f  compliance %.0f  rto %.0f  financial %.0f  operational %.0f\n",
		f.BusinessImpact, f.DataSensitivity, f.SystemAvailability, f.ComplianceRequirements,
		f.RecoveryTimeObjective, f.FinancialImpact, f.OperationalDependency)
	for _, rec := range s.Recommendations {
		fmt.Fprintf(b, "  - %s\n", rec)
	}
}
