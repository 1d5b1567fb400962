// Package common defines shared sentinel errors and small helpers used
// across the archive components. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Encryption-layer errors.
	ErrInvalidCiphertext = errors.New("invalid ciphertext")
	ErrInvalidSalt       = errors.New("invalid salt")
)
