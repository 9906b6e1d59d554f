package search

import (
	"context"

	domdoc "github.com/kailas-cloud/lexlsh/internal/domain/document"
	"github.com/kailas-cloud/lexlsh/internal/domain/search/result"
	"github.com/kailas-cloud/lexlsh/internal/lsh"
)

// Repository defines the storage contract for fingerprint search.
type Repository interface {
	SearchFingerprint(
		ctx context.Context, tokens []string, candidates int, useText, includeVectors bool,
	) ([]result.Candidate, error)

	SupportsTextSearch(ctx context.Context) bool
}

// DocumentReader reads documents for fingerprint retrieval (used by Similar).
type DocumentReader interface {
	Get(ctx context.Context, id string) (domdoc.Document, error)
}

// Encoder fingerprints query vectors and embeds query text.
type Encoder interface {
	Encode(ctx context.Context, vector []float32) (lsh.Result, error)
	Embed(ctx context.Context, text string) ([]float32, error)
}
