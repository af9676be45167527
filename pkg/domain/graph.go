package domain

import "sort"

// Graph is the serialized conversation document: the node set (including
// the start marker), the derived connection set, and the campaign settings
// persisted alongside them. During authoring it is mutated only through
// the builder; during playback it is read-only.
type Graph struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Nodes       []Node       `json:"steps"`
	Connections []Connection `json:"connections"`
	Settings    Settings     `json:"settings"`
}

// NodeByID looks a node up by exact id first, then by historical alias.
func (g *Graph) NodeByID(id string) *Node {
	if id == "" {
		return nil
	}
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return &g.Nodes[i]
		}
	}
	for i := range g.Nodes {
		if g.Nodes[i].LegacyID != "" && g.Nodes[i].LegacyID == id {
			return &g.Nodes[i]
		}
	}
	return nil
}

// StartNode returns the start marker, or nil for a malformed document.
func (g *Graph) StartNode() *Node {
	for i := range g.Nodes {
		if g.Nodes[i].Kind == NodeKindStart {
			return &g.Nodes[i]
		}
	}
	return nil
}

// FirstStep returns the step with the lowest order, or nil if the graph
// has no steps.
func (g *Graph) FirstStep() *Node {
	return g.NextStepAfter(0)
}

// NextStepAfter returns the step with the smallest order strictly greater
// than the given order, or nil if none exists. This is the sequential
// fallback walk.
func (g *Graph) NextStepAfter(order int) *Node {
	var best *Node
	for i := range g.Nodes {
		n := &g.Nodes[i]
		if !n.IsStep() || n.Order <= order {
			continue
		}
		if best == nil || n.Order < best.Order {
			best = n
		}
	}
	return best
}

// Steps returns the step nodes sorted by order.
func (g *Graph) Steps() []*Node {
	var out []*Node
	for i := range g.Nodes {
		if g.Nodes[i].IsStep() {
			out = append(out, &g.Nodes[i])
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// StepCount returns the number of step nodes.
func (g *Graph) StepCount() int {
	c := 0
	for i := range g.Nodes {
		if g.Nodes[i].IsStep() {
			c++
		}
	}
	return c
}

// Clone returns a deep copy of the graph.
func (g *Graph) Clone() *Graph {
	out := &Graph{
		ID:       g.ID,
		Name:     g.Name,
		Settings: g.Settings,
	}
	out.Nodes = make([]Node, 0, len(g.Nodes))
	for i := range g.Nodes {
		out.Nodes = append(out.Nodes, g.Nodes[i].Clone())
	}
	out.Connections = append([]Connection(nil), g.Connections...)
	return out
}
