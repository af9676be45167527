package builder

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kinoflow/kinoflow/pkg/domain"
)

// countingRepo records saves and can be told to fail.
type countingRepo struct {
	mu    sync.Mutex
	saves []*domain.Graph
	fail  bool
}

func (r *countingRepo) Save(ctx context.Context, g *domain.Graph) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errors.New("backend down")
	}
	r.saves = append(r.saves, g)
	return nil
}

func (r *countingRepo) Load(ctx context.Context, id string) (*domain.Graph, error) {
	return nil, domain.ErrGraphNotFound
}

func (r *countingRepo) Delete(ctx context.Context, id string) error { return nil }

func (r *countingRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.saves)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestAutosaveFiresAfterQuietPeriod(t *testing.T) {
	repo := &countingRepo{}
	store := NewStore("Demo")
	saver := NewAutosaver(store, repo, WithQuietPeriod(20*time.Millisecond))
	defer saver.Close()

	ed := NewEditor(store, WithAutosaver(saver))
	ed.AddStep(domain.Position{})

	waitFor(t, func() bool { return repo.count() == 1 })
}

func TestAutosaveDebounces(t *testing.T) {
	repo := &countingRepo{}
	store := NewStore("Demo")
	saver := NewAutosaver(store, repo, WithQuietPeriod(50*time.Millisecond))
	defer saver.Close()

	ed := NewEditor(store, WithAutosaver(saver))
	for i := 0; i < 5; i++ {
		ed.AddStep(domain.Position{})
		time.Sleep(10 * time.Millisecond)
	}

	// A burst of edits coalesces into one save once the editor goes quiet.
	waitFor(t, func() bool { return repo.count() == 1 })
	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, 1, repo.count())
}

func TestAutosaveSkipsGraphsWithoutID(t *testing.T) {
	repo := &countingRepo{}
	store := Open(&domain.Graph{}) // unsaved draft, no id yet
	saver := NewAutosaver(store, repo, WithQuietPeriod(10*time.Millisecond))
	defer saver.Close()

	saver.MarkDirty()
	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, repo.count())
}

func TestExplicitSaveClearsPendingAutosave(t *testing.T) {
	repo := &countingRepo{}
	store := NewStore("Demo")
	saver := NewAutosaver(store, repo, WithQuietPeriod(40*time.Millisecond))
	defer saver.Close()

	saver.MarkDirty()
	require.NoError(t, saver.Save(context.Background()))
	assert.Equal(t, 1, repo.count())

	// The armed timer still fires but finds nothing dirty.
	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, 1, repo.count())
}

func TestFailedAutosaveRetriesOnNextEdit(t *testing.T) {
	repo := &countingRepo{fail: true}
	store := NewStore("Demo")
	saver := NewAutosaver(store, repo, WithQuietPeriod(10*time.Millisecond))
	defer saver.Close()

	ed := NewEditor(store, WithAutosaver(saver))
	ed.AddStep(domain.Position{})
	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, repo.count())

	// Local state stays authoritative; once the backend recovers the next
	// edit saves everything.
	repo.mu.Lock()
	repo.fail = false
	repo.mu.Unlock()
	ed.AddStep(domain.Position{})

	waitFor(t, func() bool { return repo.count() == 1 })
	assert.Equal(t, 2, repo.saves[0].StepCount())
}
