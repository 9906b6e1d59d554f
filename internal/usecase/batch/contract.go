package batch

import (
	"context"

	domdoc "github.com/kailas-cloud/lexlsh/internal/domain/document"
	"github.com/kailas-cloud/lexlsh/internal/lsh"
)

// BulkUpserter stores many fingerprinted documents in one round-trip.
type BulkUpserter interface {
	UpsertMany(ctx context.Context, docs []domdoc.Document) error
}

// DocumentDeleter deletes a document from storage.
type DocumentDeleter interface {
	Delete(ctx context.Context, id string) error
}

// Encoder fingerprints vectors in parallel and embeds text in bulk.
type Encoder interface {
	EncodeBatch(ctx context.Context, vectors [][]float32, workers int) ([]lsh.Result, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}
