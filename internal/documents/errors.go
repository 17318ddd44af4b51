package documents

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("document not found")
	ErrRateLimited  = errors.New("upload rate limit exceeded")
	ErrNotRetryable = errors.New("document is not in a retryable state")
)

// ValidationError rejects an upload at the boundary, before any record is
// created.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid upload: %s", e.Reason)
}

func validationErrorf(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}
