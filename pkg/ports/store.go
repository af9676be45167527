package ports

import (
	"context"

	"github.com/kinoflow/kinoflow/pkg/domain"
)

// GraphRepository persists conversation graphs. Saves are last-write-wins
// and idempotent for identical payloads; the builder relies on this when
// an explicit save supersedes a pending autosave.
type GraphRepository interface {
	// Save persists the graph under its ID.
	Save(ctx context.Context, g *domain.Graph) error

	// Load retrieves a graph by ID.
	// Returns domain.ErrGraphNotFound if it does not exist.
	Load(ctx context.Context, id string) (*domain.Graph, error)

	// Delete removes the graph.
	Delete(ctx context.Context, id string) error
}

// SessionStore persists visitor session state.
type SessionStore interface {
	// Save persists the state for a given session ID.
	Save(ctx context.Context, sessionID string, state *domain.SessionState) error

	// Load retrieves the state for a given session ID.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (*domain.SessionState, error)

	// Delete removes the state for a given session ID.
	Delete(ctx context.Context, sessionID string) error
}

// ResponseRecorder receives one submission per answered step. Recording
// happens after the transition decision; a failed recording never stalls
// playback.
type ResponseRecorder interface {
	Record(ctx context.Context, sub domain.Submission) error
}
