package gate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"server/internal/domain"
	"server/internal/entitlement"
	"server/internal/quota"
)

// Gate is the only entry point that may cause a durable usage write. It
// resolves the tier, evaluates the quota policy against today's usage and
// commits one record on admission. The read-count-then-append sequence is
// serialized per user, so concurrent near-limit attempts cannot overshoot
// the daily cap.
type Gate struct {
	resolver entitlement.Resolver
	log      domain.UsageLog
	limits   quota.Table

	resolveTimeout time.Duration
	storeTimeout   time.Duration

	logger zerolog.Logger
	now    func() time.Time

	mu    sync.Mutex
	users map[string]*sync.Mutex
}

// Options configures a Gate.
type Options struct {
	Resolver       entitlement.Resolver
	UsageLog       domain.UsageLog
	Limits         quota.Table
	ResolveTimeout time.Duration
	StoreTimeout   time.Duration
	Logger         zerolog.Logger
	Now            func() time.Time
}

func New(opts Options) *Gate {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.ResolveTimeout <= 0 {
		opts.ResolveTimeout = 5 * time.Second
	}
	if opts.StoreTimeout <= 0 {
		opts.StoreTimeout = 5 * time.Second
	}
	if (opts.Limits == quota.Table{}) {
		opts.Limits = quota.DefaultTable()
	}
	return &Gate{
		resolver:       opts.Resolver,
		log:            opts.UsageLog,
		limits:         opts.Limits,
		resolveTimeout: opts.ResolveTimeout,
		storeTimeout:   opts.StoreTimeout,
		logger:         opts.Logger,
		now:            opts.Now,
		users:          make(map[string]*sync.Mutex),
	}
}

// Attempt decides whether the user may perform the action and, on
// admission, commits exactly one usage record before returning. The
// returned error is nil for policy denies; it is non-nil only for
// dependency failures (resolution, persistence), which always deny.
func (g *Gate) Attempt(ctx context.Context, userID, text string) (domain.Decision, error) {
	if strings.TrimSpace(text) == "" {
		// Cheap precondition: no quota consumed, no dependency calls.
		return domain.Decision{Reason: domain.DenyEmptyInput}, nil
	}

	tier, err := g.resolveTier(ctx, userID)
	if err != nil {
		g.logger.Error().Err(err).Str("user_id", userID).Msg("tier resolution failed")
		return domain.Decision{Reason: domain.DenyResolutionError}, err
	}

	limits := g.limits.For(tier)
	textLength := utf8.RuneCountInString(text)

	unlock := g.lockUser(userID)
	defer unlock()

	now := g.now().UTC()
	used, err := g.countToday(ctx, userID, now)
	if err != nil {
		g.logger.Error().Err(err).Str("user_id", userID).Msg("usage count failed")
		return domain.Decision{Reason: domain.DenyPersistenceError}, err
	}

	dec := quota.Evaluate(limits, used, textLength)
	if !dec.Admitted {
		return dec, nil
	}

	rec := domain.UsageRecord{
		ID:         uuid.NewString(),
		UserID:     userID,
		TextLength: textLength,
		CreatedAt:  now,
	}
	if err := g.append(ctx, rec); err != nil {
		g.logger.Error().Err(err).Str("user_id", userID).Msg("usage append failed")
		// Fail closed: the action is not admitted even though the policy
		// check passed, and the allowance is reported unconsumed.
		return domain.Decision{
			Reason:    domain.DenyPersistenceError,
			Remaining: dec.Remaining + 1,
		}, err
	}

	return dec, nil
}

// Standing reports the user's current quota position without consuming
// anything.
type Standing struct {
	Tier      domain.Tier
	Used      int
	Limits    quota.Limits
	Remaining int
	ResetsAt  time.Time
}

func (g *Gate) Standing(ctx context.Context, userID string) (Standing, error) {
	tier, err := g.resolveTier(ctx, userID)
	if err != nil {
		return Standing{}, err
	}

	now := g.now().UTC()
	used, err := g.countToday(ctx, userID, now)
	if err != nil {
		return Standing{}, err
	}

	limits := g.limits.For(tier)
	remaining := limits.MaxActionsPerDay - used
	if remaining < 0 {
		remaining = 0
	}
	return Standing{
		Tier:      tier,
		Used:      used,
		Limits:    limits,
		Remaining: remaining,
		ResetsAt:  quota.NextResetUTC(now),
	}, nil
}

func (g *Gate) resolveTier(ctx context.Context, userID string) (domain.Tier, error) {
	ctx, cancel := context.WithTimeout(ctx, g.resolveTimeout)
	defer cancel()

	tier, err := g.resolver.ResolveTier(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrResolutionFailure) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", domain.ErrResolutionFailure, err)
	}
	return tier, nil
}

func (g *Gate) countToday(ctx context.Context, userID string, now time.Time) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, g.storeTimeout)
	defer cancel()

	count, err := g.log.CountSince(ctx, userID, quota.StartOfDayUTC(now))
	if err != nil {
		return 0, asPersistenceFailure(err)
	}
	return count, nil
}

func (g *Gate) append(ctx context.Context, rec domain.UsageRecord) error {
	ctx, cancel := context.WithTimeout(ctx, g.storeTimeout)
	defer cancel()

	if err := g.log.Append(ctx, rec); err != nil {
		return asPersistenceFailure(err)
	}
	return nil
}

func asPersistenceFailure(err error) error {
	if errors.Is(err, domain.ErrPersistenceFailure) {
		return err
	}
	return fmt.Errorf("%w: %v", domain.ErrPersistenceFailure, err)
}

// lockUser serializes attempts for a single user. Locks are never held
// across calls for different users, and a lock outlives the request only
// as a map entry.
func (g *Gate) lockUser(userID string) func() {
	g.mu.Lock()
	lock, ok := g.users[userID]
	if !ok {
		lock = &sync.Mutex{}
		g.users[userID] = lock
	}
	g.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
