package repo

import (
	"context"
	"testing"
	"time"

	"server/internal/domain"
)

func TestMemoryUsageLogCountSinceExcludesPriorDay(t *testing.T) {
	log := NewMemoryUsageLog()
	midnight := time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)

	// Just before the UTC day boundary.
	err := log.Append(context.Background(), domain.UsageRecord{
		ID: "a", UserID: "user-1", TextLength: 10, CreatedAt: midnight.Add(-time.Second),
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	// Just after.
	err = log.Append(context.Background(), domain.UsageRecord{
		ID: "b", UserID: "user-1", TextLength: 10, CreatedAt: midnight.Add(time.Second),
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}

	count, err := log.CountSince(context.Background(), "user-1", midnight)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("count = %d, want 1: records before 00:00 UTC must be excluded", count)
	}
}

func TestMemoryUsageLogUnknownUserYieldsZero(t *testing.T) {
	log := NewMemoryUsageLog()
	count, err := log.CountSince(context.Background(), "nobody", time.Unix(0, 0).UTC())
	if err != nil {
		t.Fatalf("count for unknown user errored: %v", err)
	}
	if count != 0 {
		t.Fatalf("count = %d, want 0", count)
	}
}

func TestMemoryUsageLogCountsPerUser(t *testing.T) {
	log := NewMemoryUsageLog()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	for i, user := range []string{"u1", "u1", "u2"} {
		err := log.Append(context.Background(), domain.UsageRecord{
			ID: string(rune('a' + i)), UserID: user, TextLength: 5, CreatedAt: now,
		})
		if err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	count, err := log.CountSince(context.Background(), "u1", now.Add(-time.Hour))
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Fatalf("u1 count = %d, want 2", count)
	}
}
