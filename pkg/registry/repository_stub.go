package registry

import (
	"context"
	"sync"
)

// RepositoryStub keeps a private copy of the saved state in memory. It backs
// the "memory" storage driver and the tests.
type RepositoryStub struct {
	mu      sync.RWMutex
	state   State
	saved   bool
	saves   int
	saveErr error
	loadErr error
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{}
}

func (r *RepositoryStub) Save(ctx context.Context, state State) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.saveErr != nil {
		return persistenceError("save", r.saveErr)
	}
	r.state = state.Clone()
	r.saved = true
	r.saves++
	return nil
}

func (r *RepositoryStub) Load(ctx context.Context) (State, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.loadErr != nil {
		return nil, persistenceError("load", r.loadErr)
	}
	if !r.saved {
		return nil, ErrNoSnapshot
	}
	return r.state.Clone(), nil
}

// Helper method to make the next calls fail (for testing error paths)
func (r *RepositoryStub) SetErrors(saveErr, loadErr error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saveErr = saveErr
	r.loadErr = loadErr
}

// Helper method to count successful saves (useful for test assertions)
func (r *RepositoryStub) Saves() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.saves
}
