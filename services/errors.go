package services

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel errors for the retrieval pipeline. Services classify every
// collaborator failure into one of these at their boundary; controllers
// translate them to HTTP statuses with errors.Is and never surface the
// wrapped detail to the caller.
var (
	// ErrValidation indicates bad or missing caller input.
	ErrValidation = errors.New("invalid input")

	// ErrNotFound indicates the referenced note does not exist.
	ErrNotFound = errors.New("note not found")

	// ErrProvider indicates the embedding provider returned no usable vector
	// or the call could not complete.
	ErrProvider = errors.New("embedding provider failure")

	// ErrEmbedding indicates embedding generation failed for an operation.
	ErrEmbedding = errors.New("embedding generation failed")

	// ErrPersistence indicates a storage read, write, or query failed.
	ErrPersistence = errors.New("storage operation failed")

	// ErrTimeout indicates the operation exceeded its time budget.
	ErrTimeout = errors.New("operation timed out")
)

// classify wraps err with the given sentinel, except that deadline expiry
// always wins so an exceeded time budget surfaces as ErrTimeout regardless
// of which collaborator noticed it first.
func classify(sentinel, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", sentinel, err)
}
