package entitlement

import (
	"context"
	"sync"
	"time"

	"server/internal/domain"
)

// Resolver maps a user identifier to an entitlement tier. Resolution is
// read-only; implementations must fail closed (return an error wrapping
// domain.ErrResolutionFailure) when the identity cannot be verified or the
// backing lookup is unreachable.
type Resolver interface {
	ResolveTier(ctx context.Context, userID string) (domain.Tier, error)
}

// Static always resolves the same tier. Used in development and tests.
type Static struct {
	Tier domain.Tier
}

func (s Static) ResolveTier(context.Context, string) (domain.Tier, error) {
	return s.Tier, nil
}

// FailOpen wraps a resolver with an explicit fail-safe default: a failed
// lookup resolves to the free tier instead of an error. Without this
// wrapper resolution failures deny the action. It can only narrow an
// entitlement, never grant premium.
type FailOpen struct {
	Inner Resolver
}

func (f FailOpen) ResolveTier(ctx context.Context, userID string) (domain.Tier, error) {
	tier, err := f.Inner.ResolveTier(ctx, userID)
	if err != nil {
		return domain.TierFree, nil
	}
	return tier, nil
}

type cacheEntry struct {
	tier    domain.Tier
	expires time.Time
}

// Cached wraps a resolver with a short, explicit expiry so a tier is never
// assumed static for a whole session. Failed lookups are not cached.
type Cached struct {
	inner Resolver
	ttl   time.Duration
	now   func() time.Time

	mu      sync.Mutex
	entries map[string]cacheEntry
}

// NewCached builds a caching resolver. A non-positive ttl disables caching
// entirely and every call hits the inner resolver.
func NewCached(inner Resolver, ttl time.Duration) *Cached {
	return &Cached{
		inner:   inner,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

func (c *Cached) ResolveTier(ctx context.Context, userID string) (domain.Tier, error) {
	if c.ttl <= 0 {
		return c.inner.ResolveTier(ctx, userID)
	}

	now := c.now()
	c.mu.Lock()
	entry, ok := c.entries[userID]
	c.mu.Unlock()
	if ok && now.Before(entry.expires) {
		return entry.tier, nil
	}

	tier, err := c.inner.ResolveTier(ctx, userID)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.entries[userID] = cacheEntry{tier: tier, expires: now.Add(c.ttl)}
	c.mu.Unlock()
	return tier, nil
}
