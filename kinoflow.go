// Package kinoflow is the high-level entry point for embedding the
// conversation engine as a library. It wraps the internal runtime and the
// builder behind a small API; the adapters under pkg/adapters cover the
// served surfaces.
package kinoflow

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kinoflow/kinoflow/internal/logging"
	"github.com/kinoflow/kinoflow/internal/runtime"
	"github.com/kinoflow/kinoflow/pkg/adapters/file"
	"github.com/kinoflow/kinoflow/pkg/builder"
	"github.com/kinoflow/kinoflow/pkg/domain"
	"github.com/kinoflow/kinoflow/pkg/ports"
)

// Version is stamped by the release workflow; dev builds report the
// placeholder.
var Version = "0.1.0-dev"

// Flow couples a loaded graph with a playback engine.
type Flow struct {
	graph  *domain.Graph
	engine *runtime.Engine
	logger *slog.Logger
}

// Option configures a Flow.
type Option func(*Flow)

// WithLogger sets the structured logger used by the runtime.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Flow) { f.logger = logger }
}

// Open loads a graph document from the repository and prepares it for
// playback.
func Open(ctx context.Context, repo ports.GraphRepository, graphID string, opts ...Option) (*Flow, error) {
	g, err := repo.Load(ctx, graphID)
	if err != nil {
		return nil, fmt.Errorf("load graph %q: %w", graphID, err)
	}
	return NewFlow(g, opts...), nil
}

// OpenFile loads a graph document directly from a JSON file.
func OpenFile(path string, opts ...Option) (*Flow, error) {
	g, err := file.LoadPath(path)
	if err != nil {
		return nil, err
	}
	return NewFlow(g, opts...), nil
}

// NewFlow wraps an in-memory graph.
func NewFlow(g *domain.Graph, opts ...Option) *Flow {
	f := &Flow{graph: g, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(f)
	}
	f.engine = runtime.NewEngine(g, runtime.WithLogger(f.logger))
	return f
}

// Graph returns the underlying document.
func (f *Flow) Graph() *domain.Graph { return f.graph }

// Edit returns an editor over the flow's graph.
func (f *Flow) Edit() *builder.Editor {
	return builder.NewEditor(builder.Open(f.graph), builder.WithLogger(f.logger))
}

// Start begins a playback session.
func (f *Flow) Start(ctx context.Context) *domain.SessionState {
	return f.engine.Start(ctx)
}

// Submit records the visitor's answer for the session's current step and
// advances the session.
func (f *Flow) Submit(ctx context.Context, st *domain.SessionState, ans domain.Answer) (domain.Outcome, error) {
	return f.engine.SubmitAnswer(ctx, st, ans)
}
