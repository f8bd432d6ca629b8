package services

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrForbidden         = errors.New("forbidden")
	ErrSessionNotFound   = errors.New("session not found")
	ErrAccountNotFound   = errors.New("account not found")
	ErrAccountExists     = errors.New("account already exists")
	ErrInsufficientFunds = errors.New("insufficient points")
	ErrCapacityExceeded  = errors.New("session capacity exceeded")
	ErrAlreadyJoined     = errors.New("already joined this session")
	ErrConflict          = errors.New("concurrent update conflict")
	ErrStoreUnavailable  = errors.New("document store unavailable")
)

// Kind is the machine-readable name of a failure, stable across wrapping.
type Kind string

const (
	KindUnknown           Kind = "UNKNOWN"
	KindInvalidInput      Kind = "INVALID_INPUT"
	KindForbidden         Kind = "FORBIDDEN"
	KindSessionNotFound   Kind = "SESSION_NOT_FOUND"
	KindAccountNotFound   Kind = "ACCOUNT_NOT_FOUND"
	KindAccountExists     Kind = "ACCOUNT_EXISTS"
	KindInsufficientFunds Kind = "INSUFFICIENT_FUNDS"
	KindCapacityExceeded  Kind = "CAPACITY_EXCEEDED"
	KindAlreadyJoined     Kind = "ALREADY_JOINED"
	KindConflict          Kind = "CONFLICT"
	KindStoreUnavailable  Kind = "STORE_UNAVAILABLE"
)

var kinds = []struct {
	err  error
	kind Kind
}{
	{ErrInvalidInput, KindInvalidInput},
	{ErrForbidden, KindForbidden},
	{ErrSessionNotFound, KindSessionNotFound},
	{ErrAccountNotFound, KindAccountNotFound},
	{ErrAccountExists, KindAccountExists},
	{ErrInsufficientFunds, KindInsufficientFunds},
	{ErrCapacityExceeded, KindCapacityExceeded},
	{ErrAlreadyJoined, KindAlreadyJoined},
	{ErrConflict, KindConflict},
	{ErrStoreUnavailable, KindStoreUnavailable},
}

// KindOf extracts the failure kind from any error returned by this package.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindUnknown
}

// Retryable reports whether the caller may retry the same request unchanged.
func (k Kind) Retryable() bool {
	return k == KindConflict || k == KindStoreUnavailable
}

func storeError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStoreUnavailable, op, err)
}
