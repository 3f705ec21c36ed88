package quota

import "server/internal/domain"

// Limits bounds a single tier. Pure configuration, never per-user state.
type Limits struct {
	MaxCharsPerAction int
	MaxActionsPerDay  int
}

// Table holds the limits for every tier.
type Table struct {
	Free    Limits
	Premium Limits
}

// DefaultTable returns the stock plan limits.
func DefaultTable() Table {
	return Table{
		Free:    Limits{MaxCharsPerAction: 200, MaxActionsPerDay: 5},
		Premium: Limits{MaxCharsPerAction: 2000, MaxActionsPerDay: 50},
	}
}

// For returns the limits for a tier. Unknown tiers get free limits so a
// bad label can never widen an allowance.
func (t Table) For(tier domain.Tier) Limits {
	if tier == domain.TierPremium {
		return t.Premium
	}
	return t.Free
}
