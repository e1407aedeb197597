package bookmarks

import "errors"

var (
	// ErrDuplicateID means the id is already in the collection. Nothing changed.
	ErrDuplicateID = errors.New("bookmark already exists")

	// ErrNotFound means no bookmark carries the id. Nothing changed.
	ErrNotFound = errors.New("bookmark not found")

	// ErrMissingTitle rejects a candidate without a title.
	ErrMissingTitle = errors.New("bookmark title is required")

	// ErrPersistence means the in-memory change was applied but could not be
	// written to the storage backend.
	ErrPersistence = errors.New("bookmarks not persisted")

	// ErrParse means an import document was not valid JSON. Nothing changed.
	ErrParse = errors.New("invalid bookmarks document")
)
