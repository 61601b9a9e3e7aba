// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across service/router layers.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrPasswordMismatch indicates sign-up password and confirmation differ.
	ErrPasswordMismatch = errors.New("password mismatch")

	// ErrPasswordTooShort indicates the sign-up password is under the minimum length.
	ErrPasswordTooShort = errors.New("password too short")

	// ErrAuthPending rejects a duplicate submit while a login/sign-up is in flight.
	ErrAuthPending = errors.New("auth pending")

	// ErrInsufficientFunds rejects a purchase when coins < price.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrScanActive rejects starting a scan while one is already running.
	ErrScanActive = errors.New("scan active")

	// ErrBadTransition rejects a navigation the hub-and-spoke model forbids.
	ErrBadTransition = errors.New("bad transition")

	// ErrUnauthorized is reserved for a real authentication backend
	// (the simulated one cannot fail).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrAlreadyExists indicates the account email is taken.
	ErrAlreadyExists = errors.New("already exists")
)
