package rememberme

import "errors"

var (
	// ErrNotFound is returned by a Store when no record exists for the given series.
	ErrNotFound = errors.New("remember-me token not found")
	// ErrStoreUnavailable wraps infrastructure failures (timeouts, connection errors).
	// It never causes records to be deleted.
	ErrStoreUnavailable = errors.New("remember-me token store unavailable")
	// ErrInvalidCredential is returned when a credential is missing its series or token.
	ErrInvalidCredential = errors.New("invalid remember-me credential")
	// ErrTokenGeneration is returned when the random source fails.
	ErrTokenGeneration = errors.New("failed to generate remember-me token")
	// ErrHashFailed is returned when a secret cannot be hashed.
	ErrHashFailed = errors.New("failed to hash remember-me secret")
	// ErrInvalidUserID is returned when issuing a chain for uuid.Nil.
	ErrInvalidUserID = errors.New("invalid user ID")
	// ErrNoStore is returned when a lifecycle is built without a store.
	ErrNoStore = errors.New("remember-me token store is required")
	// ErrInvalidConfig is returned for configuration values that can never work.
	ErrInvalidConfig = errors.New("invalid remember-me configuration")
)
