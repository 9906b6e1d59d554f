package encoding

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/lexlsh/internal/domain"
	domdoc "github.com/kailas-cloud/lexlsh/internal/domain/document"
	"github.com/kailas-cloud/lexlsh/internal/logger"
	"github.com/kailas-cloud/lexlsh/internal/lsh"
	"github.com/kailas-cloud/lexlsh/internal/metrics"
	"github.com/kailas-cloud/lexlsh/internal/vectortext"
)

// Metric source labels.
const (
	SourceVector = "vector"
	SourceText   = "text"
	SourceValues = "values"
)

// Encoded is the fingerprint of an input together with the vector it was computed from.
type Encoded struct {
	lsh.Result
	Vector []float32
}

// Service fingerprints vectors and text with one shared encoder.
type Service struct {
	enc     *lsh.Encoder
	embed   Embedder
	workers int
}

// New creates an encoding service. embed may be nil, which disables text input.
func New(enc *lsh.Encoder, embed Embedder, workers int) *Service {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Service{enc: enc, embed: embed, workers: workers}
}

// Encoder returns the underlying encoder.
func (s *Service) Encoder() *lsh.Encoder { return s.enc }

// Options returns the encoder configuration.
func (s *Service) Options() lsh.Options { return s.enc.Options() }

// TextEnabled reports whether text input can be embedded.
func (s *Service) TextEnabled() bool { return s.embed != nil }

// Encode fingerprints a vector. An empty Result is not an error.
func (s *Service) Encode(ctx context.Context, vector []float32) (lsh.Result, error) {
	if err := domdoc.ValidateVector(vector); err != nil {
		return lsh.Result{}, err
	}
	return s.encode(ctx, vectortext.FromFloats(vector), SourceVector), nil
}

// EncodeValues fingerprints pre-rendered dimension values. Non-decimal values are
// treated as keywords and skip truncation.
func (s *Service) EncodeValues(ctx context.Context, values []string) (lsh.Result, error) {
	if len(values) == 0 {
		return lsh.Result{}, fmt.Errorf("values are required: %w", domain.ErrInvalidVector)
	}
	return s.encode(ctx, vectortext.FromStrings(values), SourceValues), nil
}

// EncodeText embeds text and fingerprints the resulting vector.
func (s *Service) EncodeText(ctx context.Context, text string) (Encoded, error) {
	vector, err := s.Embed(ctx, text)
	if err != nil {
		return Encoded{}, err
	}
	res := s.encode(ctx, vectortext.FromFloats(vector), SourceText)
	return Encoded{Result: res, Vector: vector}, nil
}

// Embed turns text into a vector with the configured provider.
func (s *Service) Embed(ctx context.Context, text string) ([]float32, error) {
	if s.embed == nil {
		return nil, domain.ErrEmbeddingNotConfigured
	}
	res, err := s.embed.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed text: %w", err)
	}
	if err := domdoc.ValidateVector(res.Embedding); err != nil {
		return nil, fmt.Errorf("embedding: %w", err)
	}
	return res.Embedding, nil
}

// EmbedBatch embeds texts in as few provider calls as the embedder allows.
func (s *Service) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if s.embed == nil {
		return nil, domain.ErrEmbeddingNotConfigured
	}
	if len(texts) == 0 {
		return nil, nil
	}

	var (
		res domain.BatchEmbeddingResult
		err error
	)
	if be, ok := s.embed.(domain.BatchEmbedder); ok {
		res, err = be.BatchEmbed(ctx, texts)
	} else {
		res, err = domain.BatchFallback(ctx, s.embed, texts)
	}
	if err != nil {
		return nil, fmt.Errorf("embed %d texts: %w", len(texts), err)
	}
	if len(res.Embeddings) != len(texts) {
		return nil, fmt.Errorf("embedded %d of %d texts: %w",
			len(res.Embeddings), len(texts), domain.ErrEmbeddingProviderError)
	}
	return res.Embeddings, nil
}

// Explain runs the pipeline on a vector and returns every intermediate stage.
func (s *Service) Explain(_ context.Context, vector []float32) (lsh.Trace, error) {
	if err := domdoc.ValidateVector(vector); err != nil {
		return lsh.Trace{}, err
	}
	return s.enc.Explain(vectortext.FromFloats(vector)), nil
}

// ExplainValues is Explain for pre-rendered dimension values.
func (s *Service) ExplainValues(_ context.Context, values []string) (lsh.Trace, error) {
	if len(values) == 0 {
		return lsh.Trace{}, fmt.Errorf("values are required: %w", domain.ErrInvalidVector)
	}
	return s.enc.Explain(vectortext.FromStrings(values)), nil
}

// EncodeBatch fingerprints vectors in parallel with at most workers goroutines
// (the service default when workers <= 0). Results keep the input order.
// The first invalid vector or a cancelled context aborts the batch.
func (s *Service) EncodeBatch(ctx context.Context, vectors [][]float32, workers int) ([]lsh.Result, error) {
	if workers <= 0 {
		workers = s.workers
	}

	results := make([]lsh.Result, len(vectors))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, vec := range vectors {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := domdoc.ValidateVector(vec); err != nil {
				return fmt.Errorf("vector %d: %w", i, err)
			}
			results[i] = s.encode(gctx, vectortext.FromFloats(vec), SourceVector)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) encode(ctx context.Context, tokens []lsh.Token, source string) lsh.Result {
	start := time.Now()
	res := s.enc.Encode(tokens)
	metrics.EncodeDuration.WithLabelValues(source).Observe(time.Since(start).Seconds())
	metrics.EncodeTokens.Observe(float64(len(res.Tokens)))
	metrics.EncodeShingles.Observe(float64(res.Shingles))

	if res.Empty() {
		metrics.EncodeEmptyTotal.WithLabelValues(source).Inc()
		logger.FromContext(ctx).Debug("Vector produced no fingerprint",
			zap.String("source", source),
			zap.Int("dimensions", len(tokens)),
		)
	}
	return res
}
