// Package poller runs a fetch function on a fixed interval and hands each
// completed result to a publish function. Cycles may overlap (an explicit
// Refresh does not wait for a slow tick), so every cycle is numbered and
// only the most recently started one is allowed to publish.
package poller

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rustyeddy/traderdash/internal/id"
	"github.com/rustyeddy/traderdash/internal/logger"
)

// DefaultInterval is the refresh period used when New is given zero.
const DefaultInterval = 10 * time.Second

var (
	ErrStarted = errors.New("poller already started")
	ErrStopped = errors.New("poller stopped")
)

// Poller owns one ticker and the cycles it starts.
type Poller[S any] struct {
	interval time.Duration
	fetch    func(context.Context) S
	publish  func(S)

	mu       sync.Mutex
	ctx      context.Context
	cancel   context.CancelFunc
	running  bool
	stopped  bool
	seq      uint64 // most recently started cycle
	inflight int

	// pubMu orders the seq check with the publish call.
	pubMu sync.Mutex

	wg sync.WaitGroup
}

// New returns a poller. publish must not call Stop.
func New[S any](interval time.Duration, fetch func(context.Context) S, publish func(S)) *Poller[S] {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller[S]{
		interval: interval,
		fetch:    fetch,
		publish:  publish,
	}
}

// Interval returns the tick period.
func (p *Poller[S]) Interval() time.Duration { return p.interval }

// Start runs a first cycle immediately and then one per interval until
// ctx is done or Stop is called.
func (p *Poller[S]) Start(ctx context.Context) error {
	p.mu.Lock()
	switch {
	case p.stopped:
		p.mu.Unlock()
		return ErrStopped
	case p.running:
		p.mu.Unlock()
		return ErrStarted
	}
	p.ctx, p.cancel = context.WithCancel(ctx)
	p.running = true
	p.mu.Unlock()

	p.begin(false)

	p.wg.Add(1)
	go p.loop()
	return nil
}

func (p *Poller[S]) loop() {
	defer p.wg.Done()

	t := time.NewTicker(p.interval)
	defer t.Stop()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-t.C:
			p.begin(true)
		}
	}
}

// Refresh starts a cycle now, even if one is already in flight. It
// reports false when the poller is not running.
func (p *Poller[S]) Refresh() bool {
	return p.begin(false)
}

// begin starts a cycle. Tick-driven cycles are skipped while another
// cycle is still running.
func (p *Poller[S]) begin(tick bool) bool {
	p.mu.Lock()
	if !p.running || p.stopped || p.ctx.Err() != nil {
		p.mu.Unlock()
		return false
	}
	if tick && p.inflight > 0 {
		p.mu.Unlock()
		logger.L.Debug("poll tick skipped, cycle in flight")
		return false
	}
	p.seq++
	seq := p.seq
	p.inflight++
	ctx := p.ctx
	p.wg.Add(1)
	p.mu.Unlock()

	go p.cycle(ctx, seq)
	return true
}

func (p *Poller[S]) cycle(ctx context.Context, seq uint64) {
	defer p.wg.Done()

	cycleID := id.New()
	start := time.Now()
	s := p.fetch(ctx)

	p.pubMu.Lock()
	defer p.pubMu.Unlock()

	p.mu.Lock()
	p.inflight--
	latest := p.seq
	stopped := p.stopped
	p.mu.Unlock()

	switch {
	case stopped, ctx.Err() != nil:
		logger.L.Debug("poll result discarded after stop", "cycle", cycleID, "seq", seq)
		return
	case seq != latest:
		logger.L.Debug("stale poll result discarded", "cycle", cycleID, "seq", seq, "latest", latest)
		return
	}

	p.publish(s)
	logger.L.Debug("poll published", "cycle", cycleID, "seq", seq, "took", time.Since(start))
}

// Stop cancels the ticker and every in-flight cycle and waits for their
// goroutines to return. No publish happens after Stop returns. Calling
// Stop more than once is harmless.
func (p *Poller[S]) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	if p.cancel != nil {
		p.cancel()
	}
	p.mu.Unlock()

	// wait out a publish that passed its checks before stopped was set
	p.pubMu.Lock()
	p.pubMu.Unlock()

	p.wg.Wait()
}

// Gather runs every fn concurrently and returns once all have returned.
// Each fn fills its own part of a snapshot, so the caller sees the whole
// snapshot or nothing.
func Gather(ctx context.Context, fns ...func(context.Context)) {
	var wg sync.WaitGroup
	wg.Add(len(fns))
	for _, fn := range fns {
		go func(fn func(context.Context)) {
			defer wg.Done()
			fn(ctx)
		}(fn)
	}
	wg.Wait()
}
