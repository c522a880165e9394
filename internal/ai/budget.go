package ai

import (
	"fmt"
	"sync"
)

// BudgetChecker checks and records token usage against per-scope limits.
// A scope is whatever the caller meters separately, e.g. one fix run.
type BudgetChecker interface {
	// Check returns true if the scope has budget remaining.
	Check(scope string) (bool, error)
	// Record records token usage for a scope.
	Record(scope string, tokens int) error
	// Usage returns current usage and limit for a scope.
	Usage(scope string) (used int64, limit int64, err error)
}

// InMemoryBudget tracks token usage for the lifetime of the process.
type InMemoryBudget struct {
	mu     sync.RWMutex
	limits map[string]int64 // scope -> token limit
	usage  map[string]int64 // scope -> tokens used
}

// NewInMemoryBudget creates a new in-memory budget tracker.
func NewInMemoryBudget() *InMemoryBudget {
	return &InMemoryBudget{
		limits: make(map[string]int64),
		usage:  make(map[string]int64),
	}
}

// SetLimit sets the token limit for a scope. Zero or less removes the limit.
func (b *InMemoryBudget) SetLimit(scope string, tokens int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if tokens <= 0 {
		delete(b.limits, scope)
		return
	}
	b.limits[scope] = tokens
}

func (b *InMemoryBudget) Check(scope string) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	limit, hasLimit := b.limits[scope]
	if !hasLimit {
		// No limit set means unlimited.
		return true, nil
	}
	return b.usage[scope] < limit, nil
}

func (b *InMemoryBudget) Record(scope string, tokens int) error {
	if tokens < 0 {
		return fmt.Errorf("tokens must be non-negative, got %d", tokens)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.usage[scope] += int64(tokens)
	return nil
}

func (b *InMemoryBudget) Usage(scope string) (int64, int64, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.usage[scope], b.limits[scope], nil
}
