package entitlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"server/internal/domain"
	"server/internal/infra"
	"server/internal/sqlinline"
)

// PGResolver resolves a user's tier from the users table. An unknown user
// is a resolution failure, not a free user: an unverified identity must
// fail closed.
type PGResolver struct {
	sql     infra.SQLExecutor
	timeout time.Duration
}

func NewPGResolver(sql infra.SQLExecutor, timeout time.Duration) *PGResolver {
	return &PGResolver{sql: sql, timeout: timeout}
}

func (r *PGResolver) ResolveTier(ctx context.Context, userID string) (domain.Tier, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	var plan string
	row := r.sql.QueryRow(ctx, sqlinline.QSelectUserTier, userID)
	if err := row.Scan(&plan); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("%w: user %s not found", domain.ErrResolutionFailure, userID)
		}
		return "", fmt.Errorf("%w: load plan: %v", domain.ErrResolutionFailure, err)
	}

	tier, ok := domain.ParseTier(plan)
	if !ok {
		return "", fmt.Errorf("%w: unknown plan label %q", domain.ErrResolutionFailure, plan)
	}
	return tier, nil
}
