package task

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/metricscope/internal/logfields"
)

// Handle is the pending result of a spawned task.
type Handle[T any] struct {
	id     string
	done   chan struct{}
	result T
}

// Spawn runs fn on p and returns a handle to its result. It fails with
// ErrPoolStopped when p no longer accepts work.
func Spawn[T any](p *Pool, fn func() T) (*Handle[T], error) {
	h := &Handle[T]{id: uuid.NewString(), done: make(chan struct{})}
	ok := p.Go(func() {
		defer close(h.done)
		h.result = fn()
	})
	if !ok {
		return nil, ErrPoolStopped
	}
	slog.Debug("Task spawned", logfields.TaskID(h.id))
	return h, nil
}

// ID identifies the task in logs.
func (h *Handle[T]) ID() string { return h.id }

// Done is closed when the task has finished.
func (h *Handle[T]) Done() <-chan struct{} { return h.done }

// Finished reports whether the task has finished.
func (h *Handle[T]) Finished() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// Poll returns the result without blocking. ok is false while the task is
// still running.
func (h *Handle[T]) Poll() (result T, ok bool) {
	if !h.Finished() {
		return result, false
	}
	return h.result, true
}

// Wait blocks until the task finishes or ctx is done.
func (h *Handle[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-h.done:
			return h.result, nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
