package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/kinoflow/kinoflow/pkg/domain"
)

// Recorder implements ports.ResponseRecorder as an append-only JSON Lines
// file per session. Re-submissions append a new line; readers take the
// last line per step as authoritative.
type Recorder struct {
	BasePath string
	mu       sync.Mutex
}

// NewRecorder creates a recorder rooted at basePath. If basePath is
// empty, it defaults to ".kinoflow/responses".
func NewRecorder(basePath string) *Recorder {
	if basePath == "" {
		basePath = filepath.Join(".kinoflow", "responses")
	}
	return &Recorder{BasePath: basePath}
}

// Record appends the submission to the session's response log.
func (r *Recorder) Record(ctx context.Context, sub domain.Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.MkdirAll(r.BasePath, 0755); err != nil {
		return fmt.Errorf("failed to ensure response directory: %w", err)
	}

	data, err := json.Marshal(sub)
	if err != nil {
		return fmt.Errorf("failed to marshal submission: %w", err)
	}

	path := filepath.Join(r.BasePath, sub.SessionID+".jsonl")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open response log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to append submission: %w", err)
	}
	return nil
}
