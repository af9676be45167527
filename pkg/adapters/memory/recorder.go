package memory

import (
	"context"
	"sync"

	"github.com/kinoflow/kinoflow/pkg/domain"
)

// Recorder implements ports.ResponseRecorder in memory, keeping the
// latest submission per session and step.
type Recorder struct {
	mu   sync.Mutex
	subs []domain.Submission
}

// NewRecorder creates a new in-memory recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Record stores the submission, replacing an earlier one for the same
// session and step.
func (r *Recorder) Record(ctx context.Context, sub domain.Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.subs {
		if r.subs[i].SessionID == sub.SessionID && r.subs[i].StepID == sub.StepID {
			r.subs[i] = sub
			return nil
		}
	}
	r.subs = append(r.subs, sub)
	return nil
}

// Submissions returns a copy of everything recorded so far.
func (r *Recorder) Submissions() []domain.Submission {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Submission(nil), r.subs...)
}

// CountFor returns how many submissions exist for the session.
func (r *Recorder) CountFor(sessionID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := 0
	for i := range r.subs {
		if r.subs[i].SessionID == sessionID {
			c++
		}
	}
	return c
}
