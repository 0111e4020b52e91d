package db

import "errors"

// Sentinel errors returned by the event store.
var (
	// ErrFetchFailed wraps transport or query failures when reading
	// events. The caller keeps its last snapshot and surfaces a notice.
	ErrFetchFailed = errors.New("event fetch failed")

	// ErrInvalidEvent indicates an ingest payload that cannot be stored.
	ErrInvalidEvent = errors.New("invalid event")
)
