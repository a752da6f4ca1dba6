package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// Pipeline Errors.

	// ErrUnreachable indicates a network or transport failure while fetching.
	// Terminal for the URL: the failure is recorded and never retried.
	ErrUnreachable = errors.New("document unreachable")

	// ErrMalformed indicates the fetched body could not be parsed as a document.
	ErrMalformed = errors.New("document malformed")

	// ErrOversized indicates the document exceeds the size ceiling.
	// The blob is dropped but text extraction is still attempted.
	ErrOversized = errors.New("document oversized")

	// ErrEmbeddingUnavailable indicates the embedding model returned nothing.
	// Non-fatal: the record is persisted without an embedding.
	ErrEmbeddingUnavailable = errors.New("embedding unavailable")

	// ErrExtractionFailed indicates the metadata model response could not be parsed.
	// Non-fatal: the record is persisted with empty metadata.
	ErrExtractionFailed = errors.New("metadata extraction failed")

	// Store Errors.

	// ErrDuplicateKey indicates an insert for a URL that already has a record.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrStoreTransient indicates the storage engine was locked or busy.
	ErrStoreTransient = errors.New("store busy")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("store closed")
)
