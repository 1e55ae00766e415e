package notify

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"eilbot/internal/model"
	"eilbot/internal/storage"
)

const (
	// Telegram allows roughly 30 messages per second bot-wide.
	defaultRatePerSec = 20
	defaultWorkers    = 8
)

// Dispatcher fans one breaking item out to every current subscriber
// and reconciles the subscriber set from the delivery outcomes.
type Dispatcher struct {
	store   storage.Storage
	sender  Sender
	log     *slog.Logger
	limiter *rate.Limiter
	workers int
}

// NewDispatcher creates a Dispatcher with default concurrency and rate
// limits.
func NewDispatcher(store storage.Storage, sender Sender, log *slog.Logger) *Dispatcher {
	return &Dispatcher{
		store:   store,
		sender:  sender,
		log:     log,
		limiter: rate.NewLimiter(rate.Limit(defaultRatePerSec), 1),
		workers: defaultWorkers,
	}
}

// Dispatch delivers the rendered payloads to a point-in-time snapshot
// of the subscriber set. Subscribers added after the snapshot are
// simply excluded from this cycle. A store error short-circuits before
// any send: an unreadable set must not be mistaken for an empty one.
//
// Each recipient is handled independently and exactly once per cycle;
// a failure on one never aborts the rest.
func (d *Dispatcher) Dispatch(ctx context.Context, group, private Payload) error {
	subscribers, err := d.store.Subscribers(ctx)
	if err != nil {
		return fmt.Errorf("snapshot subscribers: %w", err)
	}

	var g errgroup.Group
	g.SetLimit(d.workers)

	for _, chatID := range subscribers {
		g.Go(func() error {
			payload := private
			if model.ClassOf(chatID) == model.ClassGroup {
				payload = group
			}
			d.deliver(ctx, chatID, payload)
			return nil
		})
	}

	_ = g.Wait()
	return nil
}

// deliver sends one payload and applies the outcome's reconciliation
// action. Reconciliation mutations touch only the recipient's own ID
// (the migration pair is atomic in the store), so concurrent deliveries
// never interfere.
func (d *Dispatcher) deliver(ctx context.Context, chatID int64, payload Payload) {
	if err := d.limiter.Wait(ctx); err != nil {
		d.log.Warn("send cancelled", "chat_id", chatID, "error", err)
		return
	}

	res := d.sender.Send(ctx, chatID, payload)
	switch res.Outcome {
	case Delivered:

	case Gone:
		d.log.Info("chat gone, removing subscriber", "chat_id", chatID, "error", res.Err)
		if err := d.store.RemoveSubscriber(ctx, chatID); err != nil {
			d.log.Error("remove subscriber", "chat_id", chatID, "error", err)
		}

	case Migrated:
		d.log.Info("chat migrated", "chat_id", chatID, "new_chat_id", res.MigratedTo)
		if err := d.store.ReplaceSubscriber(ctx, chatID, res.MigratedTo); err != nil {
			d.log.Error("replace subscriber", "chat_id", chatID, "new_chat_id", res.MigratedTo, "error", err)
			return
		}
		// one resend to the new identifier, no further reconciliation
		if resend := d.sender.Send(ctx, res.MigratedTo, payload); resend.Outcome != Delivered {
			d.log.Warn("resend after migration failed", "chat_id", res.MigratedTo, "outcome", resend.Outcome, "error", resend.Err)
		}

	case Transient:
		d.log.Warn("transient send failure", "chat_id", chatID, "error", res.Err)

	case Malformed:
		d.log.Error("malformed send request", "chat_id", chatID, "error", res.Err)
	}
}
