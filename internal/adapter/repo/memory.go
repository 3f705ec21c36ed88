package repo

import (
	"context"
	"sync"
	"time"

	"server/internal/domain"
)

// MemoryUsageLog is an in-memory UsageLog for development and tests.
type MemoryUsageLog struct {
	mu      sync.RWMutex
	records map[string][]domain.UsageRecord
}

func NewMemoryUsageLog() *MemoryUsageLog {
	return &MemoryUsageLog{records: make(map[string][]domain.UsageRecord)}
}

var _ domain.UsageLog = (*MemoryUsageLog)(nil)

func (m *MemoryUsageLog) CountSince(_ context.Context, userID string, since time.Time) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, rec := range m.records[userID] {
		if !rec.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (m *MemoryUsageLog) Append(_ context.Context, rec domain.UsageRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records[rec.UserID] = append(m.records[rec.UserID], rec)
	return nil
}

// Len reports the total number of stored records.
func (m *MemoryUsageLog) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	total := 0
	for _, recs := range m.records {
		total += len(recs)
	}
	return total
}
