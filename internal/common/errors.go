// Package common defines shared constants, sentinel errors and small helpers
// used across client and server layers of VaultShare. Callers should use
// errors.Is / errors.As to match these values.
package common

import (
	"errors"
	"strings"
)

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal      = errors.New("internal error")
	ErrorUnauthorized  = errors.New("unauthorized")
	ErrorForbidden     = errors.New("forbidden")
	ErrVersionConflict = errors.New("version conflict")

	// Input errors.
	ErrValidation = errors.New("validation error")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired = errors.New("token expired")

	// Share access errors. ErrInvalidCredentials is the only failure an
	// anonymous caller sees for unknown tokens, wrong passwords, corrupted
	// envelopes and allowlist denials.
	ErrInvalidCredentials = errors.New("invalid share token or password")
	ErrRateLimited        = errors.New("too many attempts, try again later")
	ErrShareExpired       = errors.New("share has expired")

	// ErrQuotaExceeded covers both the per-user storage quota and the
	// per-share download budget.
	ErrQuotaExceeded  = errors.New("quota exceeded")
	ErrShareExhausted = &quotaError{msg: "share download limit reached"}

	// ErrConcurrencyConflict is returned by conditional updates that matched
	// no row. Share access converts it to ErrShareExhausted.
	ErrConcurrencyConflict = errors.New("concurrency conflict")
)

type quotaError struct{ msg string }

func (e *quotaError) Error() string { return e.msg }
func (e *quotaError) Unwrap() error { return ErrQuotaExceeded }

// ValidationError lists every problem found in a request. It matches
// ErrValidation via errors.Is.
type ValidationError struct {
	Problems []string
}

// NewValidationError returns nil when problems is empty.
func NewValidationError(problems []string) error {
	if len(problems) == 0 {
		return nil
	}
	return &ValidationError{Problems: problems}
}

func (e *ValidationError) Error() string {
	return "validation error: " + strings.Join(e.Problems, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }
