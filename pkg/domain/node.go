package domain

// NodeKind distinguishes the singular start marker from presentable steps.
type NodeKind string

const (
	// NodeKindStart is the non-deletable entry marker. It carries no
	// answer mechanism and is never shown to the visitor.
	NodeKindStart NodeKind = "start"
	// NodeKindStep is a presentable step.
	NodeKindStep NodeKind = "step"
)

// Position is the node's canvas coordinate. The runtime never reads it.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is a unit of the conversation graph.
type Node struct {
	ID string `json:"id"`

	// LegacyID is an optional historical alias retained when a node is
	// recreated from a template. Rule targets wired before the recreation
	// may still reference it; the runtime falls back to it when an exact
	// id lookup fails.
	LegacyID string `json:"legacyId,omitempty"`

	Kind     NodeKind `json:"kind"`
	Position Position `json:"position"`

	// Order is the sequence number among step nodes, used for the default
	// sequential fallback and for display ("Step N"). The start node is 0.
	Order int `json:"order"`

	Label string `json:"label"`

	// MediaRef points at the presented media, owned by an external
	// collaborator. Empty is valid and renders a placeholder.
	MediaRef string `json:"mediaRef,omitempty"`

	Mechanism Mechanism       `json:"answerMechanism,omitempty"`
	Config    MechanismConfig `json:"mechanismConfig,omitempty"`

	// Rules is the ordered branch list, one per possible outcome of the
	// mechanism. It is kept in lockstep with Mechanism and Config by the
	// editor; stale rules are a bug.
	Rules []LogicRule `json:"rules,omitempty"`
}

// IsStep reports whether the node is a presentable step.
func (n *Node) IsStep() bool {
	return n.Kind == NodeKindStep
}

// Clone returns a deep copy of the node.
func (n *Node) Clone() Node {
	out := *n
	out.Rules = append([]LogicRule(nil), n.Rules...)
	out.Config.Options = append([]string(nil), n.Config.Options...)
	out.Config.Buttons = append([]ButtonSpec(nil), n.Config.Buttons...)
	out.Config.Fields = append([]FormField(nil), n.Config.Fields...)
	return out
}

// ConnectionKind distinguishes editor-drawn structural edges from edges
// derived from a node's rules.
type ConnectionKind string

const (
	ConnectionStructural ConnectionKind = "structural"
	ConnectionRule       ConnectionKind = "rule"
)

// Connection is a directed edge used for structural visualization only.
// The runtime reads rules on the node, never the edge list. Rule-derived
// edges are a recomputed artifact: one exists if and only if a node rule
// with TargetType node and a non-empty Target points at the destination.
type Connection struct {
	From string         `json:"from"`
	To   string         `json:"to"`
	Kind ConnectionKind `json:"kind"`
}
