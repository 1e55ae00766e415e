package notify

import (
	"context"
	"fmt"

	"eilbot/internal/model"
	"eilbot/internal/storage"
)

// Dedup decides whether a fetched candidate is genuinely new by
// comparing it against the persisted last-seen marker.
type Dedup struct {
	store storage.Storage
}

// NewDedup creates a Dedup backed by the given store.
func NewDedup(store storage.Storage) *Dedup {
	return &Dedup{store: store}
}

// IsNovel reports whether the candidate has not been dispatched yet:
// true when no marker exists or the marker differs from the candidate's
// ID. Store errors propagate; an unreadable marker must never pass as
// "not seen".
func (d *Dedup) IsNovel(ctx context.Context, item model.NewsItem) (bool, error) {
	last, err := d.store.LastSeen(ctx)
	if err != nil {
		return false, fmt.Errorf("read last-seen marker: %w", err)
	}
	return last != item.ID, nil
}

// Commit overwrites the marker with the candidate's ID. Callers commit
// before starting fan-out: a crash after commit drops the rest of that
// cycle's deliveries, where committing afterwards would re-send the
// item to everyone on every retry.
func (d *Dedup) Commit(ctx context.Context, item model.NewsItem) error {
	if err := d.store.SetLastSeen(ctx, item.ID); err != nil {
		return fmt.Errorf("write last-seen marker: %w", err)
	}
	return nil
}
