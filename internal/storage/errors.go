package storage

import "errors"

var (
	// ErrNotFound means no journal entry has the requested id.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey is returned when a journal id or observation id is
	// already stored. Stores never overwrite.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrInvalidInput rejects records the stores cannot persist, such as an
	// empty id, an unparsable price or a bad identifier.
	ErrInvalidInput = errors.New("invalid input")
)
