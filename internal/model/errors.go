package model

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when an operation references a memory id that
// does not exist or has been soft-deleted.
var ErrNotFound = errors.New("memory not found")

// ValidationError reports out-of-range or malformed external input.
// It is returned before any write happens; internal score math clamps
// instead of erroring.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// StorageError wraps a read/write failure of the backing store. Callers
// in the conversation path treat it as non-fatal: the turn proceeds
// without memory context.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
