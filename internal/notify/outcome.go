package notify

import "context"

// Outcome classifies the result of delivering a payload to one chat.
// It is a closed set: Dispatch handles every value exhaustively.
type Outcome int

const (
	// Delivered means the message reached the chat.
	Delivered Outcome = iota
	// Gone means the chat will never be reachable again: the bot was
	// blocked, kicked, or the chat was deleted.
	Gone
	// Migrated means the chat now lives under a new identifier,
	// carried in SendResult.MigratedTo.
	Migrated
	// Transient means a timing or rate failure; the subscription state
	// must not change.
	Transient
	// Malformed means the request itself was rejected, indicating a
	// payload defect rather than a subscriber problem.
	Malformed
)

// String returns the outcome name for logging.
func (o Outcome) String() string {
	switch o {
	case Delivered:
		return "delivered"
	case Gone:
		return "gone"
	case Migrated:
		return "migrated"
	case Transient:
		return "transient"
	case Malformed:
		return "malformed"
	}
	return "unknown"
}

// SendResult is the typed delivery outcome of a single send.
type SendResult struct {
	Outcome    Outcome
	MigratedTo int64 // set when Outcome is Migrated
	Err        error // underlying error for logging, nil on Delivered
}

// Sender delivers one payload to one chat and classifies the outcome.
type Sender interface {
	Send(ctx context.Context, chatID int64, p Payload) SendResult
}
