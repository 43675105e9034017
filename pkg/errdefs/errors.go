package errdefs

import "errors"

var (
	// ErrNotFound signals that no object exists at the requested location.
	ErrNotFound = errors.New("not found")

	// ErrInvalidParameter signals that the caller input is invalid.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrUnavailable signals that the storage backend cannot be reached or
	// the target bucket cannot be created or verified.
	ErrUnavailable = errors.New("unavailable")

	// ErrWriteFailed signals that a write was attempted and the backend
	// reported failure. Distinct from ErrUnavailable so callers can choose
	// to retry writes specifically.
	ErrWriteFailed = errors.New("write failed")

	// ErrCorrupted signals that retrieved bytes do not hash to the recorded
	// digest. Fatal for that read, never auto-repaired.
	ErrCorrupted = errors.New("corrupted")

	// ErrUnsupported indicates that the action was not supported.
	ErrUnsupported = errors.New("unsupported")
)

// IsNotFound returns true when err wraps ErrNotFound.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsCorrupted returns true when err wraps ErrCorrupted.
func IsCorrupted(err error) bool { return errors.Is(err, ErrCorrupted) }
