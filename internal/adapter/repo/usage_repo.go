package repo

import (
	"context"
	"fmt"
	"time"

	"server/internal/domain"
	"server/internal/infra"
	"server/internal/sqlinline"
)

// UsageLogPG persists usage records in PostgreSQL. The table is
// append-only: there is no update or delete path, so daily counts are
// always aggregations over immutable rows.
type UsageLogPG struct {
	sql infra.SQLExecutor
}

func NewUsageLog(sql infra.SQLExecutor) *UsageLogPG {
	return &UsageLogPG{sql: sql}
}

var _ domain.UsageLog = (*UsageLogPG)(nil)

// CountSince returns the number of records for the user created at or
// after the given instant. Users with no records yield 0.
func (r *UsageLogPG) CountSince(ctx context.Context, userID string, since time.Time) (int, error) {
	var count int
	row := r.sql.QueryRow(ctx, sqlinline.QCountTTSUsageSince, userID, since.UTC())
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: count usage: %v", domain.ErrPersistenceFailure, err)
	}
	return count, nil
}

// Append writes one usage record.
func (r *UsageLogPG) Append(ctx context.Context, rec domain.UsageRecord) error {
	_, err := r.sql.Exec(ctx, sqlinline.QInsertTTSUsage, rec.ID, rec.UserID, rec.TextLength, rec.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("%w: append usage: %v", domain.ErrPersistenceFailure, err)
	}
	return nil
}
