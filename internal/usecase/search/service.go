package search

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/kailas-cloud/lexlsh/internal/domain"
	"github.com/kailas-cloud/lexlsh/internal/domain/search/mode"
	"github.com/kailas-cloud/lexlsh/internal/domain/search/request"
	"github.com/kailas-cloud/lexlsh/internal/domain/search/result"
	"github.com/kailas-cloud/lexlsh/internal/logger"
	"github.com/kailas-cloud/lexlsh/internal/metrics"
)

// Limits bounds result and candidate counts.
type Limits struct {
	DefaultLimit        int
	MaxLimit            int
	CandidateMultiplier int
}

// DefaultLimits matches the config defaults.
func DefaultLimits() Limits {
	return Limits{DefaultLimit: 10, MaxLimit: 100, CandidateMultiplier: 4}
}

// Service finds stored vectors whose fingerprints overlap the query fingerprint.
type Service struct {
	repo   Repository
	docs   DocumentReader
	enc    Encoder
	limits Limits
}

// New creates a search service. Zero limits fall back to DefaultLimits.
func New(repo Repository, docs DocumentReader, enc Encoder, limits Limits) *Service {
	def := DefaultLimits()
	if limits.DefaultLimit <= 0 {
		limits.DefaultLimit = def.DefaultLimit
	}
	if limits.MaxLimit <= 0 {
		limits.MaxLimit = def.MaxLimit
	}
	if limits.CandidateMultiplier <= 0 {
		limits.CandidateMultiplier = def.CandidateMultiplier
	}
	return &Service{repo: repo, docs: docs, enc: enc, limits: limits}
}

// query is a resolved search: fingerprint plus the options that shape the result.
type query struct {
	tokens         []string
	mode           mode.Mode
	limit          int
	minOverlap     float64
	includeVectors bool
	exclude        string
}

// Search fingerprints the request vector or text and ranks stored documents by overlap.
func (s *Service) Search(ctx context.Context, req *request.Request) (result.Page, error) {
	vector := req.Vector()
	if req.Text() != "" {
		v, err := s.enc.Embed(ctx, req.Text())
		if err != nil {
			return result.Page{}, fmt.Errorf("vectorize query: %w", err)
		}
		vector = v
	}

	fp, err := s.enc.Encode(ctx, vector)
	if err != nil {
		return result.Page{}, fmt.Errorf("encode query: %w", err)
	}

	return s.run(ctx, query{
		tokens:         fp.Tokens,
		mode:           req.Mode(),
		limit:          req.Limit(),
		minOverlap:     req.MinOverlap(),
		includeVectors: req.IncludeVectors(),
	})
}

// Similar ranks documents against the stored fingerprint of document id, excluding it.
func (s *Service) Similar(
	ctx context.Context, id string, m mode.Mode, limit int, minOverlap float64, includeVectors bool,
) (result.Page, error) {
	doc, err := s.docs.Get(ctx, id)
	if err != nil {
		return result.Page{}, fmt.Errorf("get document: %w", err)
	}
	if m == "" {
		m = mode.Auto
	}

	return s.run(ctx, query{
		tokens:         doc.Fingerprint(),
		mode:           m,
		limit:          limit,
		minOverlap:     minOverlap,
		includeVectors: includeVectors,
		exclude:        id,
	})
}

func (s *Service) run(ctx context.Context, q query) (result.Page, error) {
	page := result.Page{QueryTokens: len(q.tokens)}
	if len(q.tokens) == 0 {
		page.Unsearchable = true
		return page, nil
	}

	textSupported := s.repo.SupportsTextSearch(ctx)
	resolved := q.mode.Resolve(textSupported)
	if resolved == mode.Text && !textSupported {
		return result.Page{}, domain.ErrTextSearchNotSupported
	}

	limit := q.limit
	if limit <= 0 {
		limit = s.limits.DefaultLimit
	}
	limit = min(limit, s.limits.MaxLimit)

	candidates := limit * s.limits.CandidateMultiplier
	if q.exclude != "" {
		candidates++
	}

	hits, err := s.repo.SearchFingerprint(ctx, q.tokens, candidates, resolved == mode.Text, q.includeVectors)
	if err != nil {
		return result.Page{}, fmt.Errorf("search fingerprint: %w", err)
	}
	page.Candidates = len(hits)
	metrics.SearchCandidates.WithLabelValues(string(resolved)).Observe(float64(len(hits)))

	page.Results = rank(q, hits, limit)

	logger.FromContext(ctx).Debug("Search completed",
		zap.String("mode", string(resolved)),
		zap.Int("query_tokens", len(q.tokens)),
		zap.Int("candidates", len(hits)),
		zap.Int("results", len(page.Results)),
	)
	return page, nil
}

// rank scores candidates by the share of query tokens they hold, drops those under
// minOverlap and orders by overlap, then backend score, then id.
func rank(q query, hits []result.Candidate, limit int) []result.Result {
	want := make(map[string]struct{}, len(q.tokens))
	for _, t := range q.tokens {
		want[t] = struct{}{}
	}

	out := make([]result.Result, 0, len(hits))
	for _, h := range hits {
		if h.ID == q.exclude {
			continue
		}
		matched := 0
		for _, t := range h.Fingerprint {
			if _, ok := want[t]; ok {
				matched++
			}
		}
		if matched == 0 {
			continue
		}
		overlap := float64(matched) / float64(len(want))
		if overlap < q.minOverlap {
			continue
		}
		out = append(out, result.New(h.ID, overlap, matched, h.Score, h.Content, h.Vector))
	}

	slices.SortFunc(out, func(a, b result.Result) int {
		if c := cmp.Compare(b.Overlap(), a.Overlap()); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Score(), a.Score()); c != 0 {
			return c
		}
		return cmp.Compare(a.ID(), b.ID())
	})

	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
