// Package common defines shared sentinel errors and small helpers used across
// SecureBank layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Input validation.
	ErrInvalidInput = errors.New("invalid input")

	// Credential store.
	ErrAlreadyExists      = errors.New("already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Challenge lifecycle.
	ErrChallengeExpired          = errors.New("challenge expired")
	ErrChallengeMismatch         = errors.New("challenge mismatch")
	ErrChallengeRetriesExhausted = errors.New("challenge retries exhausted")

	// Session errors (invalid, expired or revoked token).
	ErrInvalidSession = errors.New("invalid session")

	// Ledger errors.
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrStoreUnavailable marks transient persistence failures. It is the only
	// error a caller may retry with backoff.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// IsRetryable reports whether err may be retried by the caller.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}
