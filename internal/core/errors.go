package core

import "errors"

// Errors shared between the engine and any store implementation.
var (
	// ErrStoreUnavailable means the persistence layer was used before it was
	// initialized. Fatal to the operation that hit it.
	ErrStoreUnavailable = errors.New("store not initialized")

	// ErrNotFound is returned by updates and deletes that reference an
	// unknown id. Surfaced to the caller, never retried.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateID is returned by add when the id already exists. The
	// materializer treats it as an idempotent no-op.
	ErrDuplicateID = errors.New("duplicate id")

	// ErrMalformedImport means the import payload's top level was not a
	// sequence of transaction records. The whole import is rejected and the
	// existing data left untouched.
	ErrMalformedImport = errors.New("malformed import: expected an array of transactions")
)
