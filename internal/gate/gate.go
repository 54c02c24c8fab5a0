// Package gate provides a one-shot initialisation barrier.
//
// A Gate runs its init function exactly once. Callers block in Wait until
// it resolves; afterwards Wait returns immediately with the same result.
// A failed init is permanent for the life of the Gate.
package gate

import (
	"context"
	"sync"
)

// InitFunc opens whatever the gate guards.
type InitFunc func(ctx context.Context) error

// Gate is safe for concurrent use.
type Gate struct {
	init  InitFunc
	once  sync.Once
	ready chan struct{}
	err   error
}

// New returns a gate that has not started yet.
func New(init InitFunc) *Gate {
	return &Gate{init: init, ready: make(chan struct{})}
}

// Start launches init in the background. Only the first call has any
// effect; ctx is handed to init and should outlive the open.
func (g *Gate) Start(ctx context.Context) {
	g.once.Do(func() {
		go g.run(ctx)
	})
}

func (g *Gate) run(ctx context.Context) {
	defer close(g.ready)
	defer func() {
		if r := recover(); r != nil {
			g.err = &PanicError{Value: r}
		}
	}()
	g.err = g.init(ctx)
}

// Wait blocks until init has resolved or ctx is done. It starts the gate
// when nobody has yet. The returned error is init's error, shared by every
// caller, or ctx.Err() if the caller gave up first.
func (g *Gate) Wait(ctx context.Context) error {
	select {
	case <-g.ready:
		return g.err
	default:
	}

	g.Start(context.WithoutCancel(ctx))

	select {
	case <-g.ready:
		return g.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Ready is closed once init has resolved, successfully or not.
func (g *Gate) Ready() <-chan struct{} {
	return g.ready
}

// Err returns init's error once resolved, nil before that.
func (g *Gate) Err() error {
	select {
	case <-g.ready:
		return g.err
	default:
		return nil
	}
}

// Resolved reports whether init has finished.
func (g *Gate) Resolved() bool {
	select {
	case <-g.ready:
		return true
	default:
		return false
	}
}
