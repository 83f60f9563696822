package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport marks network or HTTP-level failures that are safe to
	// retry on the next poll.
	ErrTransport = errors.New("transport failure")
	// ErrRejected marks a backend refusal (4xx); fatal for the job.
	ErrRejected = errors.New("rejected by backend")
	// ErrUnauthorized marks a denied user; no retry, no job created.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrTimedOut marks a job whose processing was not confirmed within
	// the tracking deadline. Advisory, not fatal.
	ErrTimedOut = errors.New("tracking deadline exceeded")
	ErrNotFound = errors.New("not found")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
