package domain

// DenyReason classifies why an attempt was not admitted.
type DenyReason string

const (
	DenyEmptyInput         DenyReason = "EmptyInput"
	DenyTextTooLong        DenyReason = "TextTooLong"
	DenyDailyLimitExceeded DenyReason = "DailyLimitExceeded"
	DenyResolutionError    DenyReason = "ResolutionError"
	DenyPersistenceError   DenyReason = "PersistenceError"
)

// Decision is the outcome of one gate evaluation. It is never persisted,
// always recomputed.
type Decision struct {
	Admitted  bool
	Reason    DenyReason // empty when admitted
	Remaining int        // actions left in the current UTC day after this decision
}
