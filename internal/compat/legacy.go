package compat

import (
	"context"
	"sync"

	"github.com/MrSnakeDoc/pathways/internal/logger"
)

// Legacy exposes Adapter with the historical callback signatures. Each
// call runs on its own goroutine and its callback fires exactly once.
// Errors never reach the callback: they are logged and the result
// degrades to empty (or to the supplied defaults for a defaults map).
type Legacy struct {
	adapter *Adapter
	log     logger.Logger
	ctx     context.Context
	wg      sync.WaitGroup
}

// NewLegacy wraps a. ctx bounds every call; it is usually the process
// lifetime context.
func NewLegacy(ctx context.Context, a *Adapter, log logger.Logger) *Legacy {
	return &Legacy{adapter: a, log: log.Named("legacy"), ctx: ctx}
}

func (l *Legacy) Get(keys any, callback func(result map[string]any)) {
	if callback == nil {
		callback = func(map[string]any) {}
	}
	l.run("get", func() func() {
		result, err := l.adapter.Get(l.ctx, keys)
		if err != nil {
			l.log.Warn("get failed, returning empty result", logger.Error(err))
			result = degradedResult(keys)
		}
		return func() { callback(result) }
	}, func() { callback(degradedResult(keys)) })
}

func (l *Legacy) Set(items map[string]any, callback func()) {
	l.run("set", func() func() {
		if err := l.adapter.Set(l.ctx, items); err != nil {
			l.log.Error("set failed", logger.Error(err), logger.Strings("keys", sortedKeys(items)))
		}
		return callback
	}, callback)
}

func (l *Legacy) Remove(keys any, callback func()) {
	l.run("remove", func() func() {
		if err := l.adapter.Remove(l.ctx, keys); err != nil {
			l.log.Error("remove failed", logger.Error(err))
		}
		return callback
	}, callback)
}

func (l *Legacy) Clear(callback func()) {
	l.run("clear", func() func() {
		if err := l.adapter.Clear(l.ctx); err != nil {
			l.log.Error("clear failed", logger.Error(err))
		}
		return callback
	}, callback)
}

// Wait blocks until every in-flight call has run its callback.
func (l *Legacy) Wait() {
	l.wg.Wait()
}

// run executes work in the background and then invokes the reply it
// returns. When work panics, fallback is invoked instead.
func (l *Legacy) run(op string, work func() (reply func()), fallback func()) {
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		reply, ok := l.safely(op, work)
		if !ok {
			reply = fallback
		}
		if reply != nil {
			reply()
		}
	}()
}

func (l *Legacy) safely(op string, work func() func()) (reply func(), ok bool) {
	defer func() {
		if r := recover(); r != nil {
			l.log.Error("legacy call panicked", logger.String("op", op), logger.Any("panic", r))
			ok = false
		}
	}()
	return work(), true
}

// degradedResult is what a failed get hands its callback.
func degradedResult(keys any) map[string]any {
	defaults, ok := keys.(map[string]any)
	if !ok {
		return map[string]any{}
	}
	out := make(map[string]any, len(defaults))
	for k, v := range defaults {
		out[k] = v
	}
	return out
}
