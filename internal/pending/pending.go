// Package pending guards against a second submission from the same form
// while the first is still in flight. Keys held by different forms are
// independent; a rejected submission is not queued.
package pending

import (
	"context"
	"errors"
	"sync"
)

// ErrAlreadyPending is returned by Acquire when the key is held.
var ErrAlreadyPending = errors.New("submission already pending")

// Release frees a key acquired with Acquire. Calling it more than once is a
// no-op.
type Release func(ctx context.Context) error

// Tracker hands out exclusive in-flight slots by key.
type Tracker interface {
	Acquire(ctx context.Context, key string) (Release, error)
}

// Key scopes a form identifier to the action it submits to.
func Key(action, formID string) string {
	return action + ":" + formID
}

// MemoryTracker keeps in-flight keys in process memory.
type MemoryTracker struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewMemoryTracker() *MemoryTracker {
	return &MemoryTracker{held: make(map[string]struct{})}
}

func (t *MemoryTracker) Acquire(ctx context.Context, key string) (Release, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.held[key]; ok {
		return nil, ErrAlreadyPending
	}
	t.held[key] = struct{}{}

	var once sync.Once
	return func(context.Context) error {
		once.Do(func() {
			t.mu.Lock()
			delete(t.held, key)
			t.mu.Unlock()
		})
		return nil
	}, nil
}

// Pending reports whether key is currently held.
func (t *MemoryTracker) Pending(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.held[key]
	return ok
}
