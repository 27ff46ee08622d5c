package services

import "errors"

var (
	// ErrNoText marks a document whose extraction produced nothing usable;
	// the writer rejects it before chunking rather than persisting an empty
	// chunk set.
	ErrNoText = errors.New("no extractable text")

	// ErrInvalidFile marks paths that are not ingestable document types.
	ErrInvalidFile = errors.New("not a supported document file")
)
