package lexlsh

import (
	"context"
	"fmt"
	"time"

	dombatch "github.com/kailas-cloud/lexlsh/internal/domain/batch"
	domdoc "github.com/kailas-cloud/lexlsh/internal/domain/document"
	batchuc "github.com/kailas-cloud/lexlsh/internal/usecase/batch"
	documentuc "github.com/kailas-cloud/lexlsh/internal/usecase/document"
)

// DocumentService manages stored documents.
type DocumentService struct {
	docSvc   documentUseCase
	batchSvc batchUseCase
	obs      *observer
}

// Upsert fingerprints and stores a document, returning it with its fingerprint and
// whether it was created. An empty ID gets a generated ULID. A vector too short to
// produce any token fails with ErrNoFingerprint and is not stored.
func (s *DocumentService) Upsert(ctx context.Context, doc Document) (out Document, created bool, err error) {
	start := time.Now()
	defer func() { s.obs.observe("upsert", start, err) }()

	d, created, err := s.docSvc.Upsert(ctx, doc.ID, documentuc.Input{
		Vector:  doc.Vector,
		Text:    doc.Text,
		Content: doc.Content,
	})
	if err != nil {
		return Document{}, false, fmt.Errorf("upsert: %w", err)
	}
	return fromInternalDocument(&d), created, nil
}

// Get retrieves a document by ID.
func (s *DocumentService) Get(ctx context.Context, id string) (doc Document, err error) {
	start := time.Now()
	defer func() { s.obs.observe("get", start, err) }()

	d, err := s.docSvc.Get(ctx, id)
	if err != nil {
		return Document{}, fmt.Errorf("get document: %w", err)
	}
	return fromInternalDocument(&d), nil
}

// Delete removes a document by ID.
func (s *DocumentService) Delete(ctx context.Context, id string) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("delete", start, err) }()

	if err = s.docSvc.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

// Count returns the number of stored documents.
func (s *DocumentService) Count(ctx context.Context) (int, error) {
	n, err := s.docSvc.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}

// BatchUpsert stores documents in bulk. Failures are reported per item.
func (s *DocumentService) BatchUpsert(ctx context.Context, docs []Document) []BatchResult {
	start := time.Now()

	items := make([]batchuc.Item, len(docs))
	for i, d := range docs {
		items[i] = batchuc.Item{ID: d.ID, Vector: d.Vector, Text: d.Text, Content: d.Content}
	}
	out := fromBatchResults(s.batchSvc.Upsert(ctx, items))

	s.obs.observe("batch_upsert", start, firstError(out))
	return out
}

// BatchDelete removes documents by IDs.
func (s *DocumentService) BatchDelete(ctx context.Context, ids []string) []BatchResult {
	start := time.Now()

	out := fromBatchResults(s.batchSvc.Delete(ctx, ids))

	s.obs.observe("batch_delete", start, firstError(out))
	return out
}

func fromInternalDocument(d *domdoc.Document) Document {
	return Document{
		ID:          d.ID(),
		Content:     d.Content(),
		Vector:      d.Vector(),
		Fingerprint: d.Fingerprint(),
	}
}

func fromBatchResults(results []dombatch.Result) []BatchResult {
	out := make([]BatchResult, len(results))
	for i, r := range results {
		out[i] = BatchResult{
			ID:     r.ID(),
			OK:     r.Status() == dombatch.StatusOK,
			Tokens: r.Tokens(),
			Err:    r.Err(),
		}
	}
	return out
}

func firstError(results []BatchResult) error {
	for _, r := range results {
		if r.Err != nil {
			return r.Err
		}
	}
	return nil
}
