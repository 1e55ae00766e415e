// Package storage defines the persistence interface and its implementations.
package storage

import "context"

// Storage is the interface for all persistence operations: the
// subscriber set and the last-seen marker.
//
// AddSubscriber and RemoveSubscriber are idempotent: adding a present
// ID or removing an absent one is a no-op, not an error.
type Storage interface {
	AddSubscriber(ctx context.Context, chatID int64) error
	RemoveSubscriber(ctx context.Context, chatID int64) error
	// ReplaceSubscriber removes oldID and adds newID as one atomic pair,
	// used when a chat migrates to a new identifier.
	ReplaceSubscriber(ctx context.Context, oldID, newID int64) error
	IsSubscriber(ctx context.Context, chatID int64) (bool, error)
	Subscribers(ctx context.Context) ([]int64, error)

	// LastSeen returns the external ID of the most recently dispatched
	// item, or "" when none has been dispatched yet.
	LastSeen(ctx context.Context) (string, error)
	SetLastSeen(ctx context.Context, id string) error

	Close() error
}
