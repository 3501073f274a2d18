package scheduler

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/omnipost/omnipost/domains/publisher"
	"github.com/omnipost/omnipost/domains/subscriber"
	"github.com/omnipost/omnipost/repository"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Config tunes the dispatch engine.
type Config struct {
	// AdapterTimeout bounds every adapter call so a stalled publish cannot
	// stall the whole tick.
	AdapterTimeout time.Duration
	// SendRatePerSec paces single-recipient sends inside a broadcast batch.
	SendRatePerSec int
}

// Deps are the collaborators the engine dispatches against. Entities are
// re-read from the store every tick; the engine never caches them.
type Deps struct {
	Posts       repository.IPostRepository
	Newsletters repository.INewsletterRepository
	Episodes    repository.IPodcastRepository
	Broadcasts  repository.IBroadcastRepository
	Resolver    subscriber.Resolver
	Registry    *publisher.Registry
	// Ping checks that the item store is reachable. A failing ping turns
	// the whole tick into a no-op.
	Ping func(ctx context.Context) error
}

// Stats is a snapshot of the engine counters, exposed through /health so an
// unconfigured channel cannot retry forever unnoticed.
type Stats struct {
	TicksRun         int64 `json:"ticks_run"`
	TicksSkipped     int64 `json:"ticks_skipped"`
	ItemsPublished   int64 `json:"items_published"`
	ItemsFailed      int64 `json:"items_failed"`
	UnroutableItems  int64 `json:"unroutable_items"`
	RecipientsSent   int64 `json:"recipients_sent"`
	RecipientsFailed int64 `json:"recipients_failed"`
}

// Engine discovers due work each tick, routes it to the matching channel
// adapter, applies the per-item state machine, and drains broadcast batches.
type Engine struct {
	deps Deps
	cfg  Config

	limiter *rate.Limiter
	now     func() time.Time

	tickRunning int32

	ticksRun         int64
	ticksSkipped     int64
	itemsPublished   int64
	itemsFailed      int64
	unroutableItems  int64
	recipientsSent   int64
	recipientsFailed int64
}

func NewEngine(deps Deps, cfg Config) *Engine {
	if cfg.AdapterTimeout <= 0 {
		cfg.AdapterTimeout = 30 * time.Second
	}
	rps := cfg.SendRatePerSec
	if rps <= 0 {
		rps = 5
	}
	return &Engine{
		deps:    deps,
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Limit(rps), rps),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Tick runs one full dispatch cycle: episodes, posts, newsletters, then
// broadcast batches, in that order. A tick that finds the previous one
// still in flight returns immediately; overlap is never queued.
func (e *Engine) Tick(ctx context.Context) {
	if !atomic.CompareAndSwapInt32(&e.tickRunning, 0, 1) {
		logrus.Warn("[SCHEDULER] Previous tick still in flight, skipping")
		return
	}
	defer atomic.StoreInt32(&e.tickRunning, 0)

	if e.deps.Ping != nil {
		if err := e.deps.Ping(ctx); err != nil {
			atomic.AddInt64(&e.ticksSkipped, 1)
			logrus.WithError(err).Warn("[SCHEDULER] Item store unreachable, skipping tick")
			return
		}
	}

	now := e.now()
	e.dispatchEpisodes(ctx, now)
	e.dispatchPosts(ctx, now)
	e.dispatchNewsletters(ctx, now)
	e.drainBroadcasts(ctx, now)

	atomic.AddInt64(&e.ticksRun, 1)
}

// Stats returns a point-in-time snapshot of the engine counters.
func (e *Engine) Stats() Stats {
	return Stats{
		TicksRun:         atomic.LoadInt64(&e.ticksRun),
		TicksSkipped:     atomic.LoadInt64(&e.ticksSkipped),
		ItemsPublished:   atomic.LoadInt64(&e.itemsPublished),
		ItemsFailed:      atomic.LoadInt64(&e.itemsFailed),
		UnroutableItems:  atomic.LoadInt64(&e.unroutableItems),
		RecipientsSent:   atomic.LoadInt64(&e.recipientsSent),
		RecipientsFailed: atomic.LoadInt64(&e.recipientsFailed),
	}
}

// publishWithTimeout wraps one adapter publish in the configured deadline.
// A timed-out call reports as a failure, never as still pending.
func (e *Engine) publishWithTimeout(ctx context.Context, adapter publisher.Publisher, item publisher.Item) (publisher.PublishResult, error) {
	callCtx, cancel := context.WithTimeout(ctx, e.cfg.AdapterTimeout)
	defer cancel()
	return adapter.Publish(callCtx, item)
}
