package builder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kinoflow/kinoflow/pkg/domain"
)

func TestNewStoreSeedsStartNode(t *testing.T) {
	s := NewStore("Demo")
	g := s.Graph()

	require.NotEmpty(t, g.ID)
	assert.Equal(t, "Demo", g.Name)
	require.NotNil(t, g.StartNode())
	assert.Equal(t, 0, g.StepCount())
}

func TestAddStepDefaults(t *testing.T) {
	ed := NewEditor(NewStore("Demo"))

	n := ed.AddStep(domain.Position{X: 100, Y: 50})
	require.NotNil(t, n)
	assert.Equal(t, 1, n.Order)
	assert.Equal(t, "Step 1", n.Label)
	assert.Equal(t, domain.MechanismOpenEnded, n.Mechanism)
	assert.True(t, n.Config.Video)
	assert.True(t, n.Config.Audio)
	assert.True(t, n.Config.Text)
	// video, audio, text, skipped
	assert.Len(t, n.Rules, 4)

	n2 := ed.AddStep(domain.Position{})
	assert.Equal(t, 2, n2.Order)
	assert.Equal(t, "Step 2", n2.Label)
}

func TestAddStepOrderNeverReused(t *testing.T) {
	ed := NewEditor(NewStore("Demo"))
	ed.AddStep(domain.Position{})
	n2 := ed.AddStep(domain.Position{})
	ed.AddStep(domain.Position{})

	ed.DeleteStep(n2.ID)

	// Orders keep growing past the highest ever used, so the sequential
	// fallback never revisits a deleted slot.
	n4 := ed.AddStep(domain.Position{})
	assert.Equal(t, 4, n4.Order)
}

func TestDuplicateStep(t *testing.T) {
	ed := NewEditor(NewStore("Demo"))
	src := ed.AddStep(domain.Position{X: 10, Y: 20})
	ed.SetAnswerMechanism(src.ID, domain.MechanismMultipleChoice, domain.MechanismConfig{Options: []string{"Yes", "No"}})
	ed.SetRuleTarget(src.ID, 0, FieldTarget, "somewhere")
	src.LegacyID = "historic"

	dup := ed.DuplicateStep(src.ID)
	require.NotNil(t, dup)

	assert.NotEqual(t, src.ID, dup.ID)
	assert.Empty(t, dup.LegacyID)
	assert.Equal(t, src.Label+" (Copy)", dup.Label)
	assert.Equal(t, domain.Position{X: 50, Y: 60}, dup.Position)
	assert.Equal(t, 2, dup.Order)

	// Rules come along wiring included, as an independent copy.
	require.Len(t, dup.Rules, 2)
	assert.Equal(t, "somewhere", dup.Rules[0].Target)
	dup.Rules[0].Target = "changed"
	assert.Equal(t, "somewhere", ed.Store().NodeByID(src.ID).Rules[0].Target)
}

func TestDuplicateUnknownStepIsNoop(t *testing.T) {
	ed := NewEditor(NewStore("Demo"))
	assert.Nil(t, ed.DuplicateStep("missing"))
}

func TestDeleteStepCascadesConnections(t *testing.T) {
	ed := NewEditor(NewStore("Demo"))
	a := ed.AddStep(domain.Position{})
	b := ed.AddStep(domain.Position{})
	ed.Store().AddConnection(domain.Connection{From: a.ID, To: b.ID, Kind: domain.ConnectionRule})
	ed.Store().AddConnection(domain.Connection{From: b.ID, To: a.ID, Kind: domain.ConnectionStructural})

	require.True(t, ed.DeleteStep(b.ID))
	assert.Empty(t, ed.Store().Connections())
	assert.False(t, ed.DeleteStep(b.ID))
}

func TestStartNodeCannotBeDeleted(t *testing.T) {
	ed := NewEditor(NewStore("Demo"))
	start := ed.Store().Graph().StartNode()
	assert.False(t, ed.DeleteStep(start.ID))
	assert.NotNil(t, ed.Store().Graph().StartNode())
}

func TestSetOptionsMergesRules(t *testing.T) {
	ed := NewEditor(NewStore("Demo"))
	n := ed.AddStep(domain.Position{})
	ed.SetAnswerMechanism(n.ID, domain.MechanismMultipleChoice, domain.MechanismConfig{Options: []string{"Yes", "No"}})
	ed.SetRuleTarget(n.ID, 0, FieldTargetType, string(domain.TargetEnd))
	ed.SetRuleTarget(n.ID, 0, FieldEndMessage, "Great!")

	ed.SetOptions(n.ID, []string{"Yes", "No", "Maybe"})

	n = ed.Store().NodeByID(n.ID)
	require.Len(t, n.Rules, 3)
	assert.Equal(t, domain.TargetEnd, n.Rules[0].TargetType)
	assert.Equal(t, "Great!", n.Rules[0].EndMessage)
	assert.True(t, n.Rules[2].Incomplete())
}

func TestSetResponseChannels(t *testing.T) {
	ed := NewEditor(NewStore("Demo"))
	n := ed.AddStep(domain.Position{})

	ed.SetResponseChannels(n.ID, false, false, true)

	n = ed.Store().NodeByID(n.ID)
	require.Len(t, n.Rules, 2)
	assert.Equal(t, domain.ChannelText, n.Rules[0].Condition)
	assert.Equal(t, domain.ConditionSkipped, n.Rules[1].Condition)
}

func TestSetRuleTargetClearsNodeTargetOnTypeSwitch(t *testing.T) {
	ed := NewEditor(NewStore("Demo"))
	n := ed.AddStep(domain.Position{})
	ed.SetRuleTarget(n.ID, 0, FieldTarget, "dest")

	ed.SetRuleTarget(n.ID, 0, FieldTargetType, string(domain.TargetURL))
	ed.SetRuleTarget(n.ID, 0, FieldURL, "example.com")

	r := ed.Store().NodeByID(n.ID).Rules[0]
	assert.Equal(t, domain.TargetURL, r.TargetType)
	assert.Empty(t, r.Target)
	assert.Equal(t, "example.com", r.URL)
}

func TestSetRuleTargetRejectsUnknownTypeAndIndex(t *testing.T) {
	ed := NewEditor(NewStore("Demo"))
	n := ed.AddStep(domain.Position{})

	ed.SetRuleTarget(n.ID, 0, FieldTargetType, "teleport")
	assert.Equal(t, domain.TargetNode, ed.Store().NodeByID(n.ID).Rules[0].TargetType)

	// Out-of-range index and unknown node are silent no-ops.
	ed.SetRuleTarget(n.ID, 99, FieldTarget, "x")
	ed.SetRuleTarget("missing", 0, FieldTarget, "x")
}

func TestCommitStepWarningsAndEdges(t *testing.T) {
	ed := NewEditor(NewStore("Demo"))
	a := ed.AddStep(domain.Position{})
	b := ed.AddStep(domain.Position{})
	ed.SetAnswerMechanism(a.ID, domain.MechanismMultipleChoice, domain.MechanismConfig{Options: []string{"Yes", "No", "Maybe"}})
	ed.SetRuleTarget(a.ID, 0, FieldTarget, b.ID)
	ed.SetRuleTarget(a.ID, 1, FieldTargetType, string(domain.TargetEnd))
	// rule 2 stays unwired

	warnings := ed.CommitStep(a.ID)
	require.Len(t, warnings, 1)
	assert.Equal(t, "option_2", warnings[0].Condition)
	assert.Equal(t, 2, warnings[0].RuleIndex)

	// One rule edge per wired node rule; end rules produce no edge.
	edges := ed.Store().Connections()
	require.Len(t, edges, 1)
	assert.Equal(t, domain.Connection{From: a.ID, To: b.ID, Kind: domain.ConnectionRule}, edges[0])
}

func TestCommitStepRecomputesEdges(t *testing.T) {
	ed := NewEditor(NewStore("Demo"))
	a := ed.AddStep(domain.Position{})
	b := ed.AddStep(domain.Position{})
	c := ed.AddStep(domain.Position{})
	ed.SetRuleTarget(a.ID, 0, FieldTarget, b.ID)
	ed.CommitStep(a.ID)

	// Rewire and recommit: the old edge is dropped, not accumulated.
	ed.SetRuleTarget(a.ID, 0, FieldTarget, c.ID)
	ed.CommitStep(a.ID)

	var tos []string
	for _, e := range ed.Store().Connections() {
		if e.From == a.ID && e.Kind == domain.ConnectionRule {
			tos = append(tos, e.To)
		}
	}
	assert.Equal(t, []string{c.ID}, tos)
}

func TestRenameMoveMediaRef(t *testing.T) {
	ed := NewEditor(NewStore("Demo"))
	n := ed.AddStep(domain.Position{})

	ed.RenameStep(n.ID, "Welcome")
	ed.MoveStep(n.ID, domain.Position{X: 5, Y: 7})
	ed.SetMediaRef(n.ID, "media/welcome.mp4")

	n = ed.Store().NodeByID(n.ID)
	assert.Equal(t, "Welcome", n.Label)
	assert.Equal(t, domain.Position{X: 5, Y: 7}, n.Position)
	assert.Equal(t, "media/welcome.mp4", n.MediaRef)

	// Unknown ids never panic.
	ed.RenameStep("missing", "x")
	ed.SetMediaRef("missing", "x")
}
