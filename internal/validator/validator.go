// Package validator checks authored graphs for the problems the editor
// surfaces before publishing: unwired rules, rule targets pointing at
// removed steps, and steps no visitor can reach.
package validator

import (
	"fmt"

	"github.com/kinoflow/kinoflow/pkg/domain"
)

// Severity classifies an issue. Warnings never block publishing.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Issue is one finding against a graph.
type Issue struct {
	Severity Severity `json:"severity"`
	NodeID   string   `json:"nodeId,omitempty"`
	Message  string   `json:"message"`
}

// Validate inspects the whole graph. Incomplete rules are warnings (a
// fallback covers them at runtime); rules pointing at a node id that no
// longer exists are errors; steps unreachable from the entry step are
// warnings.
func Validate(g *domain.Graph) []Issue {
	var issues []Issue

	for i := range g.Nodes {
		n := &g.Nodes[i]
		if !n.IsStep() {
			continue
		}
		for _, r := range n.Rules {
			if r.Incomplete() {
				issues = append(issues, Issue{
					Severity: SeverityWarning,
					NodeID:   n.ID,
					Message:  fmt.Sprintf("rule %q on %q has no destination", r.Condition, n.Label),
				})
				continue
			}
			if r.TargetType == domain.TargetNode && g.NodeByID(r.Target) == nil {
				issues = append(issues, Issue{
					Severity: SeverityError,
					NodeID:   n.ID,
					Message:  fmt.Sprintf("rule %q on %q points at missing step %s", r.Condition, n.Label, r.Target),
				})
			}
		}
	}

	issues = append(issues, unreachable(g)...)
	return issues
}

// unreachable crawls from the first step following rule targets and the
// sequential fallback chain, then reports steps never visited.
func unreachable(g *domain.Graph) []Issue {
	first := g.FirstStep()
	if first == nil {
		return nil
	}

	visited := make(map[string]bool)
	queue := []string{first.ID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if visited[id] {
			continue
		}
		visited[id] = true

		n := g.NodeByID(id)
		if n == nil {
			continue
		}
		for _, r := range n.Rules {
			if r.TargetType == domain.TargetNode && r.Target != "" {
				if dest := g.NodeByID(r.Target); dest != nil && !visited[dest.ID] {
					queue = append(queue, dest.ID)
				}
			}
		}
		// Unwired branches fall through to the next step in order. A step
		// whose every rule routes elsewhere never takes that edge.
		if canFallThrough(n) {
			if next := g.NextStepAfter(n.Order); next != nil && !visited[next.ID] {
				queue = append(queue, next.ID)
			}
		}
	}

	var issues []Issue
	for _, n := range g.Steps() {
		if !visited[n.ID] {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				NodeID:   n.ID,
				Message:  fmt.Sprintf("step %q is unreachable from the entry step", n.Label),
			})
		}
	}
	return issues
}

// canFallThrough reports whether playback can reach the sequential
// fallback from the step: it has no rules, or at least one rule still
// points at a node without naming one.
func canFallThrough(n *domain.Node) bool {
	if len(n.Rules) == 0 {
		return true
	}
	for _, r := range n.Rules {
		if r.Incomplete() {
			return true
		}
	}
	return false
}

// HasErrors reports whether any issue is an error.
func HasErrors(issues []Issue) bool {
	for _, i := range issues {
		if i.Severity == SeverityError {
			return true
		}
	}
	return false
}
