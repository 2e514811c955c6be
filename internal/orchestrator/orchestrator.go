// Package orchestrator fans out to every configured provider adapter
// concurrently and collects their results with per-adapter isolation.
//
// Join-all semantics: the run waits for every adapter to settle and never
// short-circuits on a failure. A slow adapter is bounded by its own timeout;
// a crashed one contributes nothing. Each adapter writes into its own result
// slot, so no locking is needed and the output order follows configuration
// order, not completion order.
package orchestrator

import (
	"context"
	"fmt"
	"sync"

	"github.com/stockii/event-skill-for-openclaw/internal/daterange"
	"github.com/stockii/event-skill-for-openclaw/internal/event"
	"github.com/stockii/event-skill-for-openclaw/internal/logger"
	"github.com/stockii/event-skill-for-openclaw/internal/provider"
)

// Run invokes all providers concurrently, waits for every one to settle,
// and concatenates the events of successful and skipped results in
// configuration order.
func Run(ctx context.Context, providers []provider.Provider, r daterange.Range) []*event.Event {
	results := make([]provider.Result, len(providers))

	var wg sync.WaitGroup
	for i, p := range providers {
		wg.Add(1)
		go func(i int, p provider.Provider) {
			defer wg.Done()
			results[i] = settle(ctx, p, r)
		}(i, p)
	}
	wg.Wait()

	var events []*event.Event
	for i, res := range results {
		name := providers[i].Name()
		switch {
		case res.Failed():
			logger.Warn("source failed", logger.Fields{"source": name, "status": res.Status})
		case res.Skipped():
			logger.Info("source skipped", logger.Fields{"source": name, "status": res.Status})
		default:
			logger.Info("source settled", logger.Fields{"source": name, "status": res.Status})
			logger.IncrCounter("events.fetched", int64(len(res.Events)))
		}
		if !res.Failed() {
			events = append(events, res.Events...)
		}
	}
	return events
}

// settle calls one adapter and converts a panic into an error result. A
// panicking adapter is logged distinctly from one returning a structured
// error; either way it contributes no events.
func settle(ctx context.Context, p provider.Provider, r daterange.Range) (res provider.Result) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("source panicked", logger.Fields{"source": p.Name()}, fmt.Errorf("%v", rec))
			res = provider.Errorf("panic: %v", rec)
		}
	}()
	return p.Fetch(ctx, r)
}
