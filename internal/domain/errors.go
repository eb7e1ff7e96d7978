package domain

import "errors"

var (
	// ErrSearch marks a provider failure or an empty candidate list.
	ErrSearch = errors.New("search failed")
	// ErrNoResults is returned when the provider answered with no usable candidates.
	ErrNoResults = errors.New("no search results found")
	// ErrExtraction marks a text-generation failure.
	ErrExtraction = errors.New("extraction failed")
	// ErrInvalidURL rejects URLs before any network activity.
	ErrInvalidURL = errors.New("invalid url")
	// ErrUnexpectedStatus is returned for non-2xx upstream responses.
	ErrUnexpectedStatus = errors.New("unexpected status")
	// ErrNotFound is returned by the report store for unknown slugs.
	ErrNotFound = errors.New("report not found")
)
