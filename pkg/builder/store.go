// Package builder owns the authoring side of Kinoflow: the in-memory
// graph store, the editing operations an interactive canvas invokes, the
// canvas view transform and the debounced autosaver. Editing is
// single-threaded and event-driven; there is exactly one writer per graph.
package builder

import (
	"github.com/google/uuid"

	"github.com/kinoflow/kinoflow/pkg/domain"
)

// Store holds the authoritative in-memory graph. All mutation goes
// through explicit operations; persistence is the caller's concern.
// The start node is created on construction and is never removed.
type Store struct {
	graph *domain.Graph
}

// NewStore creates a store with a fresh graph containing only the start
// marker.
func NewStore(name string) *Store {
	return &Store{
		graph: &domain.Graph{
			ID:   uuid.NewString(),
			Name: name,
			Nodes: []domain.Node{{
				ID:    uuid.NewString(),
				Kind:  domain.NodeKindStart,
				Label: "Start",
			}},
		},
	}
}

// Open wraps an existing graph document for editing.
func Open(g *domain.Graph) *Store {
	return &Store{graph: g}
}

// Graph returns the underlying document. Callers must not mutate it
// outside store operations.
func (s *Store) Graph() *domain.Graph {
	return s.graph
}

// Snapshot returns a deep copy suitable for serialization while editing
// continues.
func (s *Store) Snapshot() *domain.Graph {
	return s.graph.Clone()
}

// NodeByID resolves a node by id or historical alias.
func (s *Store) NodeByID(id string) *domain.Node {
	return s.graph.NodeByID(id)
}

// AddNode appends a node to the graph.
func (s *Store) AddNode(n domain.Node) *domain.Node {
	s.graph.Nodes = append(s.graph.Nodes, n)
	return &s.graph.Nodes[len(s.graph.Nodes)-1]
}

// UpdateNode replaces the node with the same id. Unknown ids are ignored.
func (s *Store) UpdateNode(n domain.Node) {
	for i := range s.graph.Nodes {
		if s.graph.Nodes[i].ID == n.ID {
			s.graph.Nodes[i] = n
			return
		}
	}
}

// RemoveNode deletes a step node and every connection touching it.
// The start node is never removed. Reports whether a node was deleted.
func (s *Store) RemoveNode(id string) bool {
	for i := range s.graph.Nodes {
		n := &s.graph.Nodes[i]
		if n.ID != id || n.Kind == domain.NodeKindStart {
			continue
		}
		s.graph.Nodes = append(s.graph.Nodes[:i], s.graph.Nodes[i+1:]...)
		s.removeConnectionsTouching(id)
		return true
	}
	return false
}

func (s *Store) removeConnectionsTouching(id string) {
	kept := s.graph.Connections[:0]
	for _, c := range s.graph.Connections {
		if c.From == id || c.To == id {
			continue
		}
		kept = append(kept, c)
	}
	s.graph.Connections = kept
}

// AddConnection appends an edge.
func (s *Store) AddConnection(c domain.Connection) {
	s.graph.Connections = append(s.graph.Connections, c)
}

// RemoveConnectionsFrom drops every edge of the given kind leaving the node.
func (s *Store) RemoveConnectionsFrom(id string, kind domain.ConnectionKind) {
	kept := s.graph.Connections[:0]
	for _, c := range s.graph.Connections {
		if c.From == id && c.Kind == kind {
			continue
		}
		kept = append(kept, c)
	}
	s.graph.Connections = kept
}

// RemoveConnectionsTo drops every edge pointing at the node.
func (s *Store) RemoveConnectionsTo(id string) {
	kept := s.graph.Connections[:0]
	for _, c := range s.graph.Connections {
		if c.To == id {
			continue
		}
		kept = append(kept, c)
	}
	s.graph.Connections = kept
}

// ReplaceConnections swaps the node's outgoing edges of the given kind for
// the provided set.
func (s *Store) ReplaceConnections(from string, kind domain.ConnectionKind, edges []domain.Connection) {
	s.RemoveConnectionsFrom(from, kind)
	s.graph.Connections = append(s.graph.Connections, edges...)
}

// Connections returns the current edge set.
func (s *Store) Connections() []domain.Connection {
	return s.graph.Connections
}

// MaxOrder returns the highest order among step nodes, 0 for none.
func (s *Store) MaxOrder() int {
	max := 0
	for i := range s.graph.Nodes {
		if n := &s.graph.Nodes[i]; n.IsStep() && n.Order > max {
			max = n.Order
		}
	}
	return max
}
