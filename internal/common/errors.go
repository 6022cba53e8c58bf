// Package common defines shared sentinel errors used across FireVault
// components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound       = errors.New("not found")
	ErrStorageFailure = errors.New("storage failure")

	// Account registration errors.
	ErrDuplicateUsername = errors.New("username already exists")
	ErrCapacityExceeded  = errors.New("maximum number of accounts reached")

	// Auth errors. ErrInvalidCredentials deliberately does not distinguish
	// an unknown username from a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")

	// Crypto errors (wrong passphrase or corrupt ciphertext).
	ErrDecryptionFailed = errors.New("decryption failed")

	// Input validation.
	ErrValidation = errors.New("validation error")

	// Generic internal flow control.
	ErrInternal = errors.New("internal error")
)
