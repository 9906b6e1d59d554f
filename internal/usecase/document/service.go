package document

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/lexlsh/internal/domain"
	domdoc "github.com/kailas-cloud/lexlsh/internal/domain/document"
	"github.com/kailas-cloud/lexlsh/internal/logger"
)

// Input is the payload of an upsert: a vector, or text to embed, plus optional content.
type Input struct {
	Vector  []float32
	Text    string
	Content string
}

// ResolveVector returns the input vector, embedding Text when no vector is given.
// Content falls back to Text.
func ResolveVector(ctx context.Context, enc Encoder, in *Input) ([]float32, error) {
	switch {
	case len(in.Vector) > 0 && in.Text != "":
		return nil, fmt.Errorf("vector and text are mutually exclusive: %w", domain.ErrInvalidDocument)
	case len(in.Vector) > 0:
		return in.Vector, nil
	case in.Text != "":
		if in.Content == "" {
			in.Content = in.Text
		}
		return enc.Embed(ctx, in.Text)
	default:
		return nil, fmt.Errorf("vector or text is required: %w", domain.ErrInvalidVector)
	}
}

// Service handles document storage with automatic fingerprinting.
type Service struct {
	repo Repository
	enc  Encoder
}

// New creates a document service.
func New(repo Repository, enc Encoder) *Service {
	return &Service{repo: repo, enc: enc}
}

// Upsert fingerprints and stores a document. An empty id gets a generated ULID.
// Vectors that produce no fingerprint are rejected with domain.ErrNoFingerprint.
// Returns the stored document and true if it was created.
func (s *Service) Upsert(ctx context.Context, id string, in Input) (domdoc.Document, bool, error) {
	if id == "" {
		id = domdoc.NewID()
	}
	if err := domdoc.ValidateID(id); err != nil {
		return domdoc.Document{}, false, err
	}

	vector, err := ResolveVector(ctx, s.enc, &in)
	if err != nil {
		return domdoc.Document{}, false, err
	}

	doc, err := domdoc.New(id, in.Content, vector)
	if err != nil {
		return domdoc.Document{}, false, err
	}

	res, err := s.enc.Encode(ctx, doc.Vector())
	if err != nil {
		return domdoc.Document{}, false, fmt.Errorf("encode document %s: %w", id, err)
	}
	if res.Empty() {
		return domdoc.Document{}, false, fmt.Errorf(
			"document %s with %d dimensions: %w", id, doc.Dimensions(), domain.ErrNoFingerprint)
	}
	doc = doc.WithFingerprint(res.Tokens)

	created, err := s.repo.Upsert(ctx, &doc)
	if err != nil {
		return domdoc.Document{}, false, fmt.Errorf("upsert document: %w", err)
	}

	logger.FromContext(ctx).Debug("Document stored",
		zap.String("id", id),
		zap.Bool("created", created),
		zap.Int("dimensions", doc.Dimensions()),
		zap.Int("tokens", len(res.Tokens)),
	)

	return doc, created, nil
}

// Get returns a document by ID.
func (s *Service) Get(ctx context.Context, id string) (domdoc.Document, error) {
	doc, err := s.repo.Get(ctx, id)
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

// Delete removes a document.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

// Count returns the number of stored documents.
func (s *Service) Count(ctx context.Context) (int, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return n, nil
}
