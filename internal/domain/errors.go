package domain

import "errors"

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrInvalidDocument signals a document with a bad ID or oversized content.
	ErrInvalidDocument = errors.New("invalid document")
	// ErrInvalidQuery signals malformed search parameters.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrInvalidVector signals an empty or non-finite vector.
	ErrInvalidVector = errors.New("invalid vector")
	// ErrNoFingerprint signals a vector too short to produce any fingerprint token.
	// Such a document could never be retrieved, so it is not stored.
	ErrNoFingerprint = errors.New("vector produced no fingerprint")
	// ErrEmbeddingNotConfigured signals text input without an embedding provider.
	ErrEmbeddingNotConfigured = errors.New("text input requires an embedding provider")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrTextSearchNotSupported signals that the backend lacks TEXT fields and BM25.
	ErrTextSearchNotSupported = errors.New("text search not supported by backend")
	// ErrBatchTooLarge signals a batch above the configured maximum.
	ErrBatchTooLarge = errors.New("batch too large")
	// ErrEncodingMismatch signals an index written with different encoder options.
	// Its stored fingerprints cannot be compared with new ones.
	ErrEncodingMismatch = errors.New("encoder options differ from the index")
)
