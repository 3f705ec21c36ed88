package domain

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrEmptyText          = errors.New("empty text")
	ErrUnknownTier        = errors.New("unknown tier")
	ErrResolutionFailure  = errors.New("entitlement resolution failure")
	ErrPersistenceFailure = errors.New("usage persistence failure")
)
