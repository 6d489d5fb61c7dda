package domain

import "errors"

// Domain errors represent pipeline failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed configuration or arguments.
	// Stages fail fast with this before touching the store.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates a file type no normaliser handles.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrStoreContention indicates the store stayed locked for the whole
	// retry budget.
	ErrStoreContention = errors.New("store contention: retry ceiling exhausted")

	// ErrExtractionFailed indicates a document could not be converted to text.
	// The document is recorded in the failure list and never retried.
	ErrExtractionFailed = errors.New("extraction failed")

	// ErrToolUnavailable indicates a document could not be extracted because
	// an external tool is missing. The document is retried on the next run.
	ErrToolUnavailable = errors.New("required tool unavailable")

	// ErrNoSeedLabels indicates a topic has no labelled documents to train on.
	// Callers treat it as a skip signal, not a failure.
	ErrNoSeedLabels = errors.New("no seed labels")

	// ErrStageInProgress indicates a stage is already running in this process.
	ErrStageInProgress = errors.New("stage in progress")
)
