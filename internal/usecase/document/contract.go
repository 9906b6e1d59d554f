package document

import (
	"context"

	domdoc "github.com/kailas-cloud/lexlsh/internal/domain/document"
	"github.com/kailas-cloud/lexlsh/internal/lsh"
)

// Repository defines the storage contract for documents.
type Repository interface {
	Upsert(ctx context.Context, doc *domdoc.Document) (created bool, err error)
	Get(ctx context.Context, id string) (domdoc.Document, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

// Encoder fingerprints vectors and embeds text.
type Encoder interface {
	Encode(ctx context.Context, vector []float32) (lsh.Result, error)
	Embed(ctx context.Context, text string) ([]float32, error)
}
