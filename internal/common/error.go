// Package common defines shared constants and sentinel errors used across
// the migration packages. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Configuration errors, reported before any work starts.
	ErrConfigValidation = errors.New("configuration validation failed")

	// Storage errors.
	ErrConnection   = errors.New("storage connection failed")
	ErrUploadFailed = errors.New("upload failed")

	// Ledger or output document could not be written.
	ErrPersistence = errors.New("persistence error")

	// Run stopped by a signal; the last checkpoint is the resume point.
	ErrInterrupted = errors.New("interrupted")
)
