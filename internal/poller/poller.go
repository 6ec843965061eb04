// Copyright (c) 2026 TopLivres. All rights reserved.
// Author: fleuronvilik

/*
Package poller keeps the mounted views eventually consistent with server
state through a fixed-interval pull.

Architecture:

  - One shared ticker per mounted controller; re-mounting never creates a
    second concurrent timer.
  - Ticks skip entirely while the document is hidden — no wasted calls for
    background tabs.
  - Each tick refreshes only the loaders registered for the currently
    active tab pane, in parallel; individual failures are logged at debug
    level and silently retried on the next tick, never surfaced.
  - Manual triggers (tab switch, hash change) go through a token-bucket
    limiter so rapid pane flipping cannot stampede the API.
*/
package poller

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/fleuronvilik/toplivres-devgdk/internal/view"
)

// RefreshFunc re-pulls one server resource. It must be idempotent and safe
// to call repeatedly.
type RefreshFunc func(ctx context.Context) error

// DefaultInterval is the poll period when none is configured.
const DefaultInterval = 10 * time.Second

// Poller drives the auto-refresh protocol of one mounted controller.
type Poller struct {
	doc      *view.Document
	interval time.Duration
	log      *slog.Logger
	limiter  *rate.Limiter

	mu         sync.Mutex
	byPane     map[string][]RefreshFunc
	stop       chan struct{}
	unbindHash func()
}

// New constructs a stopped Poller. interval <= 0 falls back to
// [DefaultInterval]; log may be nil.
func New(doc *view.Document, interval time.Duration, log *slog.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if log == nil {
		log = slog.Default()
	}
	return &Poller{
		doc:      doc,
		interval: interval,
		log:      log,
		// One manual refresh per second, with headroom for a double
		// tab-switch.
		limiter: rate.NewLimiter(rate.Limit(1), 2),
		byPane:  map[string][]RefreshFunc{},
	}
}

// Register declares which loaders serve one tab pane.
func (p *Poller) Register(pane string, loaders ...RefreshFunc) {
	p.mu.Lock()
	p.byPane[pane] = append(p.byPane[pane], loaders...)
	p.mu.Unlock()
}

// # Lifecycle

// Start launches the shared ticker and the hash-change subscription.
// Starting an already running poller is a no-op, so a re-entrant mount can
// never accumulate a second timer.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	if p.stop != nil {
		p.mu.Unlock()
		return
	}
	stop := make(chan struct{})
	p.stop = stop
	p.unbindHash = p.doc.OnHashChange(func(string) {
		p.Trigger(ctx)
	})
	p.mu.Unlock()

	go func() {
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				p.tick(ctx)
			case <-stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop tears the timer down and releases the hash subscription. Stopping a
// stopped poller is a no-op.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stop == nil {
		return
	}
	close(p.stop)
	p.stop = nil
	if p.unbindHash != nil {
		p.unbindHash()
		p.unbindHash = nil
	}
}

// Running reports whether the shared timer is active.
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stop != nil
}

// # Refresh

// Trigger runs a manual refresh for the active pane, throttled. A hidden
// document never fetches, same as the ticker path.
func (p *Poller) Trigger(ctx context.Context) {
	if p.doc.Hidden() {
		return
	}
	if !p.limiter.Allow() {
		return
	}
	p.refreshActive(ctx)
}

// Tick forces one poll cycle (visibility check included). Exposed for
// tests; production code relies on the shared ticker.
func (p *Poller) Tick(ctx context.Context) {
	p.tick(ctx)
}

func (p *Poller) tick(ctx context.Context) {
	if p.doc.Hidden() {
		return
	}
	p.refreshActive(ctx)
}

// refreshActive invokes the loaders of the currently active pane in
// parallel, tolerating individual failures: a failed poll is retried on
// the next tick, never surfaced to the user.
func (p *Poller) refreshActive(ctx context.Context) {
	pane := p.doc.ActivePane()

	p.mu.Lock()
	loaders := make([]RefreshFunc, len(p.byPane[pane]))
	copy(loaders, p.byPane[pane])
	p.mu.Unlock()

	var wg sync.WaitGroup
	for _, refresh := range loaders {
		wg.Add(1)
		go func(refresh RefreshFunc) {
			defer wg.Done()
			if err := refresh(ctx); err != nil {
				p.log.Debug("poll_refresh_failed",
					slog.String("pane", pane),
					slog.Any("error", err),
				)
			}
		}(refresh)
	}
	wg.Wait()
}
