package memory

import (
	"context"
	"sync"

	"github.com/kinoflow/kinoflow/pkg/domain"
)

// Repository implements ports.GraphRepository in memory.
type Repository struct {
	graphs map[string]*domain.Graph
	mu     sync.RWMutex
}

// NewRepository creates a new in-memory graph repository.
func NewRepository() *Repository {
	return &Repository{
		graphs: make(map[string]*domain.Graph),
	}
}

// Save stores a deep copy of the graph under its id.
func (r *Repository) Save(ctx context.Context, g *domain.Graph) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.graphs[g.ID] = g.Clone()
	return nil
}

// Load retrieves a copy of the graph.
func (r *Repository) Load(ctx context.Context, id string) (*domain.Graph, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.graphs[id]
	if !ok {
		return nil, domain.ErrGraphNotFound
	}
	return g.Clone(), nil
}

// Delete removes the graph.
func (r *Repository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.graphs, id)
	return nil
}

// List returns the stored graph ids.
func (r *Repository) List(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.graphs))
	for id := range r.graphs {
		ids = append(ids, id)
	}
	return ids, nil
}
