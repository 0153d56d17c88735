// Package task runs background units of work that a render or aggregation
// cycle polls without blocking.
package task

import (
	"context"
	"runtime"
	"sync"

	ferrors "git.home.luguber.info/inful/metricscope/internal/foundation/errors"
)

// ErrPoolStopped is returned by Spawn once the pool is shutting down.
var ErrPoolStopped = ferrors.RuntimeError("task pool is stopped").Build()

// Pool tracks background goroutines, bounds how many run at once, and provides
// a safe shutdown boundary so we never call WaitGroup.Add concurrently with Wait.
type Pool struct {
	mu       sync.Mutex
	wg       sync.WaitGroup
	stopping bool
	slots    chan struct{}
}

// NewPool creates a pool running at most size tasks concurrently. A size
// below 1 uses GOMAXPROCS.
func NewPool(size int) *Pool {
	if size < 1 {
		size = runtime.GOMAXPROCS(0)
	}
	return &Pool{slots: make(chan struct{}, size)}
}

// Size returns the concurrency limit.
func (p *Pool) Size() int { return cap(p.slots) }

// Reset prepares the pool for reuse after a full stop.
//
// This must only be called when all workers have already exited.
func (p *Pool) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopping = false
	p.wg = sync.WaitGroup{}
}

// Go starts fn if the pool is not stopping. It never blocks: fn waits for a
// free slot on its own goroutine.
func (p *Pool) Go(fn func()) bool {
	if fn == nil {
		return false
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopping {
		return false
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.slots <- struct{}{}
		defer func() { <-p.slots }()
		fn()
	}()
	return true
}

// StopAndWait prevents new tasks from being started and waits for all current
// tasks to exit, bounded by ctx.
func (p *Pool) StopAndWait(ctx context.Context) error {
	p.mu.Lock()
	p.stopping = true
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
