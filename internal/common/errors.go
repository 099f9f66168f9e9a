// Package common contains shared constants and sentinel errors used across
// client components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Auth/session errors.
	ErrUnauthorized = errors.New("unauthorized")
	ErrUserGone     = errors.New("account no longer exists")
	ErrNoSession    = errors.New("no active session")

	// Client-side validation errors. The message is surfaced to the user as-is.
	ErrPasswordMismatch = errors.New("Passwords do not match")

	// Two-factor state errors.
	ErrTwoFactorNotEnrolling   = errors.New("two-factor enrollment not in progress")
	ErrTwoFactorAlreadyEnabled = errors.New("two-factor authentication already enabled")
	ErrTwoFactorNotEnabled     = errors.New("two-factor authentication not enabled")
	ErrInvalidTwoFactorCode    = errors.New("invalid two-factor code")
)
