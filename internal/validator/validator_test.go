package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kinoflow/kinoflow/pkg/domain"
)

func TestValidateCleanGraph(t *testing.T) {
	g := &domain.Graph{
		Nodes: []domain.Node{
			{ID: "start", Kind: domain.NodeKindStart},
			{
				ID: "a", Kind: domain.NodeKindStep, Order: 1, Label: "A",
				Rules: []domain.LogicRule{
					{Condition: "text", TargetType: domain.TargetNode, Target: "b"},
					{Condition: "skipped", TargetType: domain.TargetEnd},
				},
			},
			{ID: "b", Kind: domain.NodeKindStep, Order: 2, Label: "B"},
		},
	}
	assert.Empty(t, Validate(g))
}

func TestValidateIncompleteRuleIsWarning(t *testing.T) {
	g := &domain.Graph{
		Nodes: []domain.Node{
			{ID: "start", Kind: domain.NodeKindStart},
			{
				ID: "a", Kind: domain.NodeKindStep, Order: 1, Label: "A",
				Rules: []domain.LogicRule{{Condition: "text", TargetType: domain.TargetNode}},
			},
		},
	}
	issues := Validate(g)
	require.Len(t, issues, 1)
	assert.Equal(t, SeverityWarning, issues[0].Severity)
	assert.Equal(t, "a", issues[0].NodeID)
	assert.False(t, HasErrors(issues))
}

func TestValidateMissingTargetIsError(t *testing.T) {
	g := &domain.Graph{
		Nodes: []domain.Node{
			{ID: "start", Kind: domain.NodeKindStart},
			{
				ID: "a", Kind: domain.NodeKindStep, Order: 1, Label: "A",
				Rules: []domain.LogicRule{{Condition: "text", TargetType: domain.TargetNode, Target: "ghost"}},
			},
		},
	}
	issues := Validate(g)
	require.Len(t, issues, 1)
	assert.Equal(t, SeverityError, issues[0].Severity)
	assert.True(t, HasErrors(issues))
}

func TestValidateLegacyAliasTargetIsNotAnError(t *testing.T) {
	g := &domain.Graph{
		Nodes: []domain.Node{
			{ID: "start", Kind: domain.NodeKindStart},
			{
				ID: "a", Kind: domain.NodeKindStep, Order: 1, Label: "A",
				Rules: []domain.LogicRule{{Condition: "text", TargetType: domain.TargetNode, Target: "old-b"}},
			},
			{ID: "b", LegacyID: "old-b", Kind: domain.NodeKindStep, Order: 2, Label: "B"},
		},
	}
	assert.Empty(t, Validate(g))
}

func TestValidateUnreachableStep(t *testing.T) {
	// Step "a" routes every branch straight to end, so "b" can never be
	// visited: no rule points at it and the fallback edge is unused.
	g := &domain.Graph{
		Nodes: []domain.Node{
			{ID: "start", Kind: domain.NodeKindStart},
			{
				ID: "a", Kind: domain.NodeKindStep, Order: 1, Label: "A",
				Rules: []domain.LogicRule{
					{Condition: "text", TargetType: domain.TargetEnd},
					{Condition: "skipped", TargetType: domain.TargetEnd},
				},
			},
			{ID: "b", Kind: domain.NodeKindStep, Order: 2, Label: "Orphan"},
		},
	}
	issues := Validate(g)
	require.Len(t, issues, 1)
	assert.Equal(t, SeverityWarning, issues[0].Severity)
	assert.Equal(t, "b", issues[0].NodeID)
	assert.Contains(t, issues[0].Message, "unreachable")
}

func TestValidateReachableThroughFallback(t *testing.T) {
	// "a" has an unwired rule, so playback can fall through to "b".
	g := &domain.Graph{
		Nodes: []domain.Node{
			{ID: "start", Kind: domain.NodeKindStart},
			{
				ID: "a", Kind: domain.NodeKindStep, Order: 1, Label: "A",
				Rules: []domain.LogicRule{{Condition: "text", TargetType: domain.TargetNode}},
			},
			{ID: "b", Kind: domain.NodeKindStep, Order: 2, Label: "B"},
		},
	}
	issues := Validate(g)
	// Only the incomplete-rule warning; "b" is reachable.
	require.Len(t, issues, 1)
	assert.NotContains(t, issues[0].Message, "unreachable")
}

func TestValidateEmptyGraph(t *testing.T) {
	g := &domain.Graph{Nodes: []domain.Node{{ID: "start", Kind: domain.NodeKindStart}}}
	assert.Empty(t, Validate(g))
}
