package store

import (
	"errors"
	"fmt"
)

var (
	// ErrStoreUnavailable means the backend could not be opened. It is
	// permanent for the life of the process.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrNotFound means a lookup referenced a missing key. Callers treat it
	// as an empty result, never as a failure.
	ErrNotFound = errors.New("record not found")

	// ErrSerialization means a value could not be encoded or decoded.
	ErrSerialization = errors.New("serialization failure")

	// ErrUnknownCollection is returned for a collection outside Collections().
	ErrUnknownCollection = errors.New("unknown collection")

	// ErrNotInitialized is returned by backends used before Init.
	ErrNotInitialized = errors.New("store not initialized")
)

// Unavailable wraps cause so that errors.Is(err, ErrStoreUnavailable) holds.
func Unavailable(cause error) error {
	if cause == nil {
		return ErrStoreUnavailable
	}
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, cause)
}

// IsNotFound reports whether err is a missing-record error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
