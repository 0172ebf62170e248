package models

import "errors"

// ErrValidation indicates missing or malformed input to a create or
// transition operation. Surfaced to the caller, never retried.
var ErrValidation = errors.New("invalid input")

// ErrNotFound indicates an operation referenced an unknown unit id.
var ErrNotFound = errors.New("unit not found")

// ErrUnitFinalized indicates an attempt to re-transition a unit that was
// already sold or returned.
var ErrUnitFinalized = errors.New("unit already sold or returned")

// ErrPersistence wraps failures reported by the backing store.
var ErrPersistence = errors.New("persistence failure")
