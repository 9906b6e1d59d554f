package batch

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/lexlsh/internal/domain"
	dombatch "github.com/kailas-cloud/lexlsh/internal/domain/batch"
	domdoc "github.com/kailas-cloud/lexlsh/internal/domain/document"
	"github.com/kailas-cloud/lexlsh/internal/logger"
)

// MaxBatchSize is the default maximum number of items per batch request.
const MaxBatchSize = 100

// Item is one document of a batch upsert. An empty ID gets a generated ULID.
type Item struct {
	ID      string
	Vector  []float32
	Text    string
	Content string
}

// Service handles batch document operations with per-item error reporting.
type Service struct {
	docs         BulkUpserter
	del          DocumentDeleter
	enc          Encoder
	maxBatchSize int
	workers      int
}

// New creates a batch service.
func New(docs BulkUpserter, del DocumentDeleter, enc Encoder) *Service {
	return &Service{docs: docs, del: del, enc: enc, maxBatchSize: MaxBatchSize}
}

// WithMaxBatchSize configures the maximum batch size.
func (s *Service) WithMaxBatchSize(size int) *Service {
	if size > 0 {
		s.maxBatchSize = size
	}
	return s
}

// WithWorkers bounds the parallelism of fingerprinting.
func (s *Service) WithWorkers(n int) *Service {
	if n > 0 {
		s.workers = n
	}
	return s
}

// pending is an item that passed validation and awaits storage.
type pending struct {
	idx int
	doc domdoc.Document
}

// Upsert fingerprints and stores items. Texts are embedded in bulk, vectors are
// fingerprinted in parallel and all documents are written in one pipeline.
// Items that fail do not stop the others.
func (s *Service) Upsert(ctx context.Context, items []Item) []dombatch.Result {
	results := make([]dombatch.Result, len(items))
	ids := make([]string, len(items))
	for i := range items {
		ids[i] = items[i].ID
		if ids[i] == "" {
			ids[i] = domdoc.NewID()
		}
	}

	if len(items) > s.maxBatchSize {
		err := fmt.Errorf("batch of %d exceeds %d: %w", len(items), s.maxBatchSize, domain.ErrBatchTooLarge)
		for i := range items {
			results[i] = dombatch.NewError(ids[i], err)
		}
		return results
	}

	vectors := s.resolveVectors(ctx, items, ids, results)

	valid := make([]pending, 0, len(items))
	for i := range items {
		if results[i].Status() == dombatch.StatusError {
			continue
		}
		content := items[i].Content
		if content == "" {
			content = items[i].Text
		}
		doc, err := domdoc.New(ids[i], content, vectors[i])
		if err != nil {
			results[i] = dombatch.NewError(ids[i], err)
			continue
		}
		valid = append(valid, pending{idx: i, doc: doc})
	}
	if len(valid) == 0 {
		return results
	}

	valid = s.fingerprint(ctx, valid, results)
	if len(valid) == 0 {
		return results
	}

	docs := make([]domdoc.Document, len(valid))
	for j, p := range valid {
		docs[j] = p.doc
	}
	if err := s.docs.UpsertMany(ctx, docs); err != nil {
		for _, p := range valid {
			results[p.idx] = dombatch.NewError(p.doc.ID(), fmt.Errorf("batch upsert: %w", err))
		}
		return results
	}

	for _, p := range valid {
		results[p.idx] = dombatch.NewOK(p.doc.ID(), len(p.doc.Fingerprint()))
	}

	logger.FromContext(ctx).Debug("Batch stored",
		zap.Int("items", len(items)),
		zap.Int("stored", len(valid)),
	)
	return results
}

// resolveVectors returns one vector per item and records failures in results.
// All text items share a single embedding call.
func (s *Service) resolveVectors(
	ctx context.Context, items []Item, ids []string, results []dombatch.Result,
) [][]float32 {
	vectors := make([][]float32, len(items))
	var texts []string
	var textIdx []int

	for i := range items {
		switch {
		case len(items[i].Vector) > 0 && items[i].Text != "":
			results[i] = dombatch.NewError(ids[i],
				fmt.Errorf("vector and text are mutually exclusive: %w", domain.ErrInvalidDocument))
		case len(items[i].Vector) > 0:
			vectors[i] = items[i].Vector
		case items[i].Text != "":
			texts = append(texts, items[i].Text)
			textIdx = append(textIdx, i)
		default:
			results[i] = dombatch.NewError(ids[i],
				fmt.Errorf("vector or text is required: %w", domain.ErrInvalidVector))
		}
	}

	if len(texts) == 0 {
		return vectors
	}

	embedded, err := s.enc.EmbedBatch(ctx, texts)
	if err != nil {
		for _, i := range textIdx {
			results[i] = dombatch.NewError(ids[i], err)
		}
		return vectors
	}
	for j, i := range textIdx {
		vectors[i] = embedded[j]
	}
	return vectors
}

// fingerprint encodes the pending documents and drops those without a fingerprint.
func (s *Service) fingerprint(
	ctx context.Context, valid []pending, results []dombatch.Result,
) []pending {
	vecs := make([][]float32, len(valid))
	for j, p := range valid {
		vecs[j] = p.doc.Vector()
	}

	encoded, err := s.enc.EncodeBatch(ctx, vecs, s.workers)
	if err != nil {
		for _, p := range valid {
			results[p.idx] = dombatch.NewError(p.doc.ID(), fmt.Errorf("encode: %w", err))
		}
		return nil
	}

	kept := valid[:0]
	for j, p := range valid {
		if encoded[j].Empty() {
			results[p.idx] = dombatch.NewError(p.doc.ID(), fmt.Errorf(
				"%d dimensions: %w", p.doc.Dimensions(), domain.ErrNoFingerprint))
			continue
		}
		p.doc = p.doc.WithFingerprint(encoded[j].Tokens)
		kept = append(kept, p)
	}
	return kept
}

// Delete removes documents by ID in batch.
func (s *Service) Delete(ctx context.Context, ids []string) []dombatch.Result {
	results := make([]dombatch.Result, len(ids))

	if len(ids) > s.maxBatchSize {
		err := fmt.Errorf("batch of %d exceeds %d: %w", len(ids), s.maxBatchSize, domain.ErrBatchTooLarge)
		for i, id := range ids {
			results[i] = dombatch.NewError(id, err)
		}
		return results
	}

	for i, id := range ids {
		if err := s.del.Delete(ctx, id); err != nil {
			results[i] = dombatch.NewError(id, fmt.Errorf("delete: %w", err))
			continue
		}
		results[i] = dombatch.NewOK(id, 0)
	}

	return results
}
