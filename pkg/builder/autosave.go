package builder

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/kinoflow/kinoflow/internal/logging"
	"github.com/kinoflow/kinoflow/pkg/ports"
)

// DefaultQuietPeriod is how long the editor must sit idle before an
// autosave fires.
const DefaultQuietPeriod = 30 * time.Second

// Autosaver persists the graph after a quiet period with unsaved changes.
// It is fire-and-forget from the editor's perspective: local state stays
// authoritative and a failed save is logged and retried on the next edit.
// An explicit Save supersedes, not cancels, a pending autosave; the last
// request to complete wins, which is safe because saves are idempotent
// given the same payload.
type Autosaver struct {
	store *Store
	repo  ports.GraphRepository
	quiet time.Duration
	log   *slog.Logger

	mu    sync.Mutex
	timer *time.Timer
	dirty bool
}

// AutosaverOption configures the Autosaver.
type AutosaverOption func(*Autosaver)

// WithQuietPeriod overrides the debounce interval.
func WithQuietPeriod(d time.Duration) AutosaverOption {
	return func(a *Autosaver) { a.quiet = d }
}

// WithAutosaveLogger sets the autosaver's logger.
func WithAutosaveLogger(logger *slog.Logger) AutosaverOption {
	return func(a *Autosaver) { a.log = logger }
}

// NewAutosaver wires a store to a repository.
func NewAutosaver(store *Store, repo ports.GraphRepository, opts ...AutosaverOption) *Autosaver {
	a := &Autosaver{
		store: store,
		repo:  repo,
		quiet: DefaultQuietPeriod,
		log:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// MarkDirty notes an unsaved change and (re)schedules the debounced save.
// Autosave only arms once the graph has an assigned identifier.
func (a *Autosaver) MarkDirty() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.dirty = true
	if a.store.Graph().ID == "" {
		return
	}
	if a.timer != nil {
		a.timer.Stop()
	}
	a.timer = time.AfterFunc(a.quiet, a.autosave)
}

func (a *Autosaver) autosave() {
	a.mu.Lock()
	if !a.dirty {
		a.mu.Unlock()
		return
	}
	snapshot := a.store.Snapshot()
	a.dirty = false
	a.mu.Unlock()

	if err := a.repo.Save(context.Background(), snapshot); err != nil {
		a.log.Warn("autosave failed, local state retained", "graph", snapshot.ID, "err", err)
		a.mu.Lock()
		a.dirty = true
		a.mu.Unlock()
		return
	}
	a.log.Debug("autosaved", "graph", snapshot.ID)
}

// Save persists immediately. A pending autosave stays armed but becomes a
// no-op because the dirty flag clears.
func (a *Autosaver) Save(ctx context.Context) error {
	a.mu.Lock()
	snapshot := a.store.Snapshot()
	a.dirty = false
	a.mu.Unlock()

	return a.repo.Save(ctx, snapshot)
}

// Close stops any pending autosave without firing it.
func (a *Autosaver) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
}
