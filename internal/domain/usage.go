package domain

import (
	"context"
	"time"
)

// UsageRecord is one admitted action. Records are immutable once written;
// the log is append-only so daily counts are always aggregations over
// recorded facts, never mutable counters.
type UsageRecord struct {
	ID         string
	UserID     string
	TextLength int
	CreatedAt  time.Time
}

// UsageLog defines the durable append-only usage store.
type UsageLog interface {
	// CountSince returns the number of records for the user with
	// CreatedAt >= since. A user with no records yields 0, not an error.
	CountSince(ctx context.Context, userID string, since time.Time) (int, error)

	// Append durably writes one record.
	Append(ctx context.Context, rec UsageRecord) error
}
