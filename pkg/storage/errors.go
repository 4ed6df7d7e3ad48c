package storage

import "errors"

var (
	// ErrNotFound indicates the requested object does not exist.
	ErrNotFound = errors.New("object not found")
	// ErrExists indicates an object is already stored at the key. Objects are write-once.
	ErrExists = errors.New("object already exists")
	// ErrEmptyKey indicates an empty storage key was provided.
	ErrEmptyKey = errors.New("storage key must not be empty")
	// ErrInvalidKey indicates the storage key contains a path segment or separator.
	ErrInvalidKey = errors.New("storage key contains invalid path segment")
	// ErrNotStarted indicates the storage root has not been created yet.
	ErrNotStarted = errors.New("storage not started")
)
