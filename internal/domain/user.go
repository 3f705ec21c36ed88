package domain

import (
	"strings"
	"time"
)

// Tier enumerates entitlement classes.
type Tier string

const (
	TierFree    Tier = "free"
	TierPremium Tier = "premium"
)

// ParseTier maps a policy-lookup label onto a known tier.
func ParseTier(s string) (Tier, bool) {
	switch Tier(strings.ToLower(strings.TrimSpace(s))) {
	case TierFree:
		return TierFree, true
	case TierPremium:
		return TierPremium, true
	}
	return "", false
}

// User represents an account as seen by the entitlement layer. The
// enforcement core owns no mutable user state; this struct exists for
// operator tooling and plan lookups.
type User struct {
	ID        string
	Email     string
	Plan      Tier
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsFree reports whether the user is on the free plan.
func (u User) IsFree() bool {
	return u.Plan == TierFree
}
