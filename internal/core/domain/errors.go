package domain

import (
	"errors"
	"fmt"
)

// Error kinds used across the service. Adapters map infrastructure
// failures onto these so that callers can branch without knowing
// which backend produced the failure.
var (
	ErrMalformedDocument       = errors.New("malformed document")
	ErrInvalidClassifierOutput = errors.New("invalid classifier output")
	ErrServiceUnavailable      = errors.New("service unavailable")
	ErrNotFound                = errors.New("not found")
	ErrValidation              = errors.New("validation failed")
)

// WrapError attaches an error kind and the failing operation to err.
// Both the kind and the original error stay reachable via errors.Is.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return fmt.Errorf("%s: %w", operation, kind)
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

// IsKind reports whether err carries the given error kind.
func IsKind(err, kind error) bool {
	return errors.Is(err, kind)
}
