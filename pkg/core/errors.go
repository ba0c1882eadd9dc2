package core

import "errors"

// Common errors.
var (
	// ErrPinLimit is returned when pinning would exceed MaxPinnedNotes.
	ErrPinLimit = errors.New("pinned note limit reached")

	// ErrNotFound is returned when a note id is not in the collection.
	ErrNotFound = errors.New("note not found")

	// ErrNoOwner is returned by operations that require an
	// authenticated owner when there is none.
	ErrNoOwner = errors.New("no authenticated owner")

	// ErrBadSnapshot is returned by import when the serialized
	// snapshot cannot be parsed.
	ErrBadSnapshot = errors.New("malformed notes snapshot")
)
