package quota

import "server/internal/domain"

// Evaluate validates a candidate action against tier limits and current
// usage. The character-limit check runs before the daily-limit check so
// the surfaced reason is deterministic when both would fail. Remaining is
// the anticipated post-commit allowance on admit, and the unchanged
// allowance on a character-limit deny.
func Evaluate(limits Limits, usedToday, textLength int) domain.Decision {
	if textLength > limits.MaxCharsPerAction {
		return domain.Decision{
			Reason:    domain.DenyTextTooLong,
			Remaining: clampNonNegative(limits.MaxActionsPerDay - usedToday),
		}
	}
	if usedToday >= limits.MaxActionsPerDay {
		return domain.Decision{Reason: domain.DenyDailyLimitExceeded, Remaining: 0}
	}
	return domain.Decision{
		Admitted:  true,
		Remaining: limits.MaxActionsPerDay - usedToday - 1,
	}
}

func clampNonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
