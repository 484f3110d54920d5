// Package transition abstracts the visual transition primitive that frames
// a document swap: an update phase during which the DOM mutates, and a
// finished phase once the animation settles. Platforms without a native
// primitive use the simulated starter, which resolves both phases around a
// synchronous swap so the orchestration above is identical either way.
package transition

import (
	"context"
	"sync"
	"time"
)

// Handle tracks one transition. At most one handle is active per session;
// starting a new one requires skipping and awaiting the previous handle's
// update phase first, so DOM mutations never overlap.
type Handle struct {
	updateApplied chan struct{}
	finished      chan struct{}

	mu        sync.Mutex
	updateErr error
	skipOnce  sync.Once
	skipCh    chan struct{}
}

func newHandle() *Handle {
	return &Handle{
		updateApplied: make(chan struct{}),
		finished:      make(chan struct{}),
		skipCh:        make(chan struct{}),
	}
}

// AwaitUpdate blocks until the update callback has run (or failed), or ctx
// is done. It returns the update callback's error, if any.
func (h *Handle) AwaitUpdate(ctx context.Context) error {
	select {
	case <-h.updateApplied:
		h.mu.Lock()
		defer h.mu.Unlock()
		return h.updateErr
	case <-ctx.Done():
		return ctx.Err()
	}
}

// AwaitFinished blocks until the transition has fully settled or ctx is done.
func (h *Handle) AwaitFinished(ctx context.Context) error {
	select {
	case <-h.finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Skip asks the transition to cut its animation short. The update phase
// still completes; only the settle delay is abandoned.
func (h *Handle) Skip() {
	h.skipOnce.Do(func() { close(h.skipCh) })
}

func (h *Handle) completeUpdate(err error) {
	h.mu.Lock()
	h.updateErr = err
	h.mu.Unlock()
	close(h.updateApplied)
}

// Starter starts transitions. Implementations wrap the platform primitive;
// Simulated stands in where none exists.
type Starter interface {
	Start(ctx context.Context, update func(context.Context) error) *Handle
}

// Simulated is the no-primitive fallback. The update callback runs
// synchronously in the caller's goroutine; the finished signal resolves
// after Delay (immediately when zero or skipped).
type Simulated struct {
	// Delay approximates the animation duration. Zero means finish as soon
	// as the update has been applied.
	Delay time.Duration
}

// Start runs update synchronously and returns a handle whose signals are
// already (or imminently) resolved.
func (s *Simulated) Start(ctx context.Context, update func(context.Context) error) *Handle {
	h := newHandle()
	h.completeUpdate(update(ctx))

	if s.Delay <= 0 {
		close(h.finished)
		return h
	}

	go func() {
		t := time.NewTimer(s.Delay)
		defer t.Stop()
		select {
		case <-t.C:
		case <-h.skipCh:
		case <-ctx.Done():
		}
		close(h.finished)
	}()
	return h
}
