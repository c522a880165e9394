// Package ledger records fix runs and the per-record outcomes they produced,
// so operators can see what each run inserted and what it left unresolved.
package ledger

import (
	"crypto/rand"
	"fmt"
	"slices"
	"sync"
	"time"
)

// Counts tallies the outcomes of one fix run.
type Counts struct {
	Total      int `json:"total"`
	Patched    int `json:"patched"`
	Partial    int `json:"partial"`
	Unresolved int `json:"unresolved"`
	Stale      int `json:"stale"`
}

// RunStatus is the lifecycle state of a fix run.
type RunStatus string

const (
	RunRunning  RunStatus = "running"
	RunFinished RunStatus = "finished"
	// RunAborted marks a run cancelled before its document was saved.
	RunAborted RunStatus = "aborted"
)

// Run is one invocation of the fixer against a document.
type Run struct {
	ID         string     `json:"id"`
	Document   string     `json:"document"`
	Status     RunStatus  `json:"status"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Counts     Counts     `json:"counts"`
}

// RunStore persists fix runs.
type RunStore interface {
	StartRun(document string) (Run, error)
	// FinishRun closes a run with its final counts and status.
	FinishRun(id string, counts Counts, status RunStatus) error
	GetRun(id string) (*Run, error)
	// ListRuns returns the most recent runs first.
	ListRuns(limit int) ([]Run, error)
}

// MemoryStore is an in-memory implementation of RunStore.
type MemoryStore struct {
	runs map[string]*Run
	mu   sync.RWMutex
}

// NewMemoryStore creates a new in-memory run store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		runs: make(map[string]*Run),
	}
}

func (s *MemoryStore) StartRun(document string) (Run, error) {
	if document == "" {
		return Run{}, fmt.Errorf("document is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	run := Run{
		ID:        generateID(),
		Document:  document,
		Status:    RunRunning,
		StartedAt: time.Now(),
	}
	s.runs[run.ID] = &run
	return run, nil
}

func (s *MemoryStore) FinishRun(id string, counts Counts, status RunStatus) error {
	if status == RunRunning || status == "" {
		return fmt.Errorf("invalid final status %q", status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	run, ok := s.runs[id]
	if !ok {
		return fmt.Errorf("run not found: %s", id)
	}
	now := time.Now()
	run.FinishedAt = &now
	run.Counts = counts
	run.Status = status
	return nil
}

func (s *MemoryStore) GetRun(id string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	if !ok {
		return nil, fmt.Errorf("run not found: %s", id)
	}
	out := *run
	return &out, nil
}

func (s *MemoryStore) ListRuns(limit int) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]Run, 0, len(s.runs))
	for _, run := range s.runs {
		runs = append(runs, *run)
	}
	slices.SortFunc(runs, func(a, b Run) int {
		return b.StartedAt.Compare(a.StartedAt)
	})
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

func generateID() string {
	b := make([]byte, 16)
	rand.Read(b)
	return fmt.Sprintf("%x", b)
}
