package validators

import (
	"fmt"

	"flowforge-backend/domain/core/aggregates"
	"flowforge-backend/domain/core/entities"
	"flowforge-backend/domain/core/valueobjects"
)

// WarningCode classifies a validation finding
type WarningCode string

const (
	// WarningDanglingRoute is a routing target that names a node no longer
	// present in the flow. Deliberately never auto-repaired: silently
	// rewiring call routing would change IVR behavior without operator
	// awareness.
	WarningDanglingRoute WarningCode = "dangling_route_target"

	// WarningUnresolvedRoute is an empty routing target the operator has
	// not wired yet
	WarningUnresolvedRoute WarningCode = "unresolved_route_target"

	// WarningOrphanEdge is an edge referencing a missing node on either end
	WarningOrphanEdge WarningCode = "orphan_edge"

	// WarningDuplicateMenuKey is two menu options sharing the same keypress
	WarningDuplicateMenuKey WarningCode = "duplicate_menu_key"
)

// Warning is a single validation finding. Findings are advisory: the flow
// stays editable, the operator fixes routing before deployment.
type Warning struct {
	Code   WarningCode `json:"code"`
	NodeID string      `json:"nodeId,omitempty"`
	EdgeID string      `json:"edgeId,omitempty"`
	Detail string      `json:"detail"`
}

// Report summarizes a validation pass over one flow
type Report struct {
	Warnings         []Warning `json:"warnings"`
	UnresolvedRoutes int       `json:"unresolvedRoutes"`
	DanglingRoutes   int       `json:"danglingRoutes"`
	OrphanEdges      int       `json:"orphanEdges"`
}

// Valid reports whether the flow produced no findings
func (r Report) Valid() bool {
	return len(r.Warnings) == 0
}

// ValidateFlow checks referential integrity of routing references and edges.
// Nothing here mutates the flow.
func ValidateFlow(flow aggregates.Flow) Report {
	report := Report{Warnings: []Warning{}}

	for _, node := range flow.Nodes {
		for _, route := range node.RouteTargets() {
			switch {
			case route.TargetNodeID == "":
				report.UnresolvedRoutes++
				report.Warnings = append(report.Warnings, Warning{
					Code:   WarningUnresolvedRoute,
					NodeID: node.ID,
					Detail: fmt.Sprintf("route %q has no target", route.Label),
				})
			case !flow.HasNode(route.TargetNodeID):
				report.DanglingRoutes++
				report.Warnings = append(report.Warnings, Warning{
					Code:   WarningDanglingRoute,
					NodeID: node.ID,
					Detail: fmt.Sprintf("route %q targets missing node %s", route.Label, route.TargetNodeID),
				})
			}
		}

		if node.Type == valueobjects.KindMenu {
			report.Warnings = append(report.Warnings, duplicateKeyWarnings(node)...)
		}
	}

	for _, edge := range flow.Edges {
		if !flow.HasNode(edge.Source) || !flow.HasNode(edge.Target) {
			report.OrphanEdges++
			report.Warnings = append(report.Warnings, Warning{
				Code:   WarningOrphanEdge,
				EdgeID: edge.ID,
				Detail: fmt.Sprintf("edge %s references a missing node", edge.ID),
			})
		}
	}

	return report
}

// duplicateKeyWarnings flags menu options sharing a keypress. A warning, not
// an error: the model does not enforce key uniqueness.
func duplicateKeyWarnings(node entities.Node) []Warning {
	menu, ok := node.Data.(*entities.MenuData)
	if !ok {
		return nil
	}

	seen := map[string]bool{}
	reported := map[string]bool{}
	var warnings []Warning
	for _, opt := range menu.Options {
		if opt.Key == "" {
			continue
		}
		if seen[opt.Key] && !reported[opt.Key] {
			reported[opt.Key] = true
			warnings = append(warnings, Warning{
				Code:   WarningDuplicateMenuKey,
				NodeID: node.ID,
				Detail: fmt.Sprintf("menu key %q is used by multiple options", opt.Key),
			})
		}
		seen[opt.Key] = true
	}
	return warnings
}
