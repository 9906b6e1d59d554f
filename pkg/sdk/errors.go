package lexlsh

import "github.com/kailas-cloud/lexlsh/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound               = domain.ErrNotFound
	ErrInvalidDocument        = domain.ErrInvalidDocument
	ErrInvalidQuery           = domain.ErrInvalidQuery
	ErrInvalidVector          = domain.ErrInvalidVector
	ErrNoFingerprint          = domain.ErrNoFingerprint
	ErrEmbeddingNotConfigured = domain.ErrEmbeddingNotConfigured
	ErrEmbeddingProviderError = domain.ErrEmbeddingProviderError
	ErrTextSearchNotSupported = domain.ErrTextSearchNotSupported
	ErrBatchTooLarge          = domain.ErrBatchTooLarge
	ErrEncodingMismatch       = domain.ErrEncodingMismatch
)
