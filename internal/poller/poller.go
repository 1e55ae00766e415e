// Package poller drives the check cycle: fetch the feed, decide
// novelty, and hand novel items to the dispatcher.
package poller

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"eilbot/internal/feed"
	"eilbot/internal/model"
	"eilbot/internal/notify"
)

// Dispatcher fans a rendered item out to the subscriber set.
type Dispatcher interface {
	Dispatch(ctx context.Context, group, private notify.Payload) error
}

// Poller runs the check cycle on a fixed interval and on demand.
type Poller struct {
	feed  *feed.Client
	dedup *notify.Dedup
	disp  Dispatcher
	log   *slog.Logger
	tick  time.Duration

	// guards the cycle as a whole: a trigger firing while a cycle is in
	// flight is skipped, never run concurrently with it.
	busy sync.Mutex
}

// New creates a Poller checking at the given interval.
func New(feedClient *feed.Client, dedup *notify.Dedup, disp Dispatcher, log *slog.Logger, tick time.Duration) *Poller {
	return &Poller{
		feed:  feedClient,
		dedup: dedup,
		disp:  disp,
		log:   log,
		tick:  tick,
	}
}

// Run starts the polling loop, blocking until ctx is cancelled. The
// first check runs immediately; an in-flight cycle is allowed to finish
// after cancellation.
func (p *Poller) Run(ctx context.Context) {
	p.Check(ctx)

	ticker := time.NewTicker(p.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Check(ctx)
		}
	}
}

// Check runs one cycle. It is single-flight: when a cycle is already in
// progress the call is logged and dropped, so a manual trigger can
// never double-dispatch the item a timer cycle is working on.
func (p *Poller) Check(ctx context.Context) {
	if !p.busy.TryLock() {
		p.log.Debug("check already in progress, skipping trigger")
		return
	}
	defer p.busy.Unlock()

	p.cycle(ctx)
}

// cycle performs fetch → dedup → commit → render → dispatch. Every
// failure aborts the cycle without mutating state; the next tick
// retries naturally.
func (p *Poller) cycle(ctx context.Context) {
	item, err := p.feed.FetchBreaking(ctx)
	if err != nil {
		p.log.Error("fetch breaking news", "error", err)
		return
	}
	if item == nil {
		p.log.Debug("no breaking item")
		return
	}
	if item.Title == "" || item.URL == "" {
		p.log.Warn("breaking item missing rendering fields, ignoring", "id", item.ID)
		return
	}

	novel, err := p.dedup.IsNovel(ctx, *item)
	if err != nil {
		p.log.Error("check novelty", "id", item.ID, "error", err)
		return
	}
	if !novel {
		p.log.Debug("already notified", "id", item.ID)
		return
	}

	// the marker moves before any send goes out; see Dedup.Commit
	if err := p.dedup.Commit(ctx, *item); err != nil {
		p.log.Error("commit marker", "id", item.ID, "error", err)
		return
	}

	p.log.Info("new breaking item", "id", item.ID, "title", item.Title)

	group := notify.Render(*item, model.ClassGroup)
	private := notify.Render(*item, model.ClassPrivate)
	if err := p.disp.Dispatch(ctx, group, private); err != nil {
		p.log.Error("dispatch", "id", item.ID, "error", err)
	}
}
