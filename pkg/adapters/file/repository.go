// Package file persists Kinoflow graphs and sessions as JSON files on the
// local filesystem.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kinoflow/kinoflow/pkg/domain"
)

// Repository implements ports.GraphRepository on disk, one JSON document
// per graph.
type Repository struct {
	BasePath string
}

// NewRepository creates a repository rooted at basePath. If basePath is
// empty, it defaults to ".kinoflow/graphs".
func NewRepository(basePath string) *Repository {
	if basePath == "" {
		basePath = filepath.Join(".kinoflow", "graphs")
	}
	return &Repository{BasePath: basePath}
}

func (r *Repository) path(id string) string {
	return filepath.Join(r.BasePath, id+".json")
}

// Save writes the graph document.
func (r *Repository) Save(ctx context.Context, g *domain.Graph) error {
	if g.ID == "" {
		return fmt.Errorf("graph id cannot be empty")
	}
	if err := os.MkdirAll(r.BasePath, 0755); err != nil {
		return fmt.Errorf("failed to ensure graph directory: %w", err)
	}

	data, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal graph: %w", err)
	}
	if err := os.WriteFile(r.path(g.ID), data, 0644); err != nil {
		return fmt.Errorf("failed to write graph file: %w", err)
	}
	return nil
}

// Load reads a graph document.
func (r *Repository) Load(ctx context.Context, id string) (*domain.Graph, error) {
	if id == "" {
		return nil, fmt.Errorf("graph id cannot be empty")
	}
	data, err := os.ReadFile(r.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrGraphNotFound
		}
		return nil, fmt.Errorf("failed to read graph file: %w", err)
	}

	var g domain.Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("failed to unmarshal graph: %w", err)
	}
	return &g, nil
}

// Delete removes the graph file. Deleting a missing graph is not an error.
func (r *Repository) Delete(ctx context.Context, id string) error {
	err := os.Remove(r.path(id))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete graph file: %w", err)
	}
	return nil
}

// LoadPath reads a graph document from an arbitrary file path. Used by
// the CLI, which takes graph files directly.
func LoadPath(path string) (*domain.Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var g domain.Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &g, nil
}
