package lexlsh

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/lexlsh/internal/domain/search/mode"
	"github.com/kailas-cloud/lexlsh/internal/domain/search/request"
	"github.com/kailas-cloud/lexlsh/internal/domain/search/result"
)

// SearchService ranks stored documents by fingerprint overlap with a query.
type SearchService struct {
	svc searchUseCase
	obs *observer
}

// Vector finds documents similar to a query vector.
func (s *SearchService) Vector(ctx context.Context, vector []float32, opts SearchOptions) (SearchResponse, error) {
	return s.run(ctx, "search_vector", vector, "", opts)
}

// Text embeds a query with the configured Embedder and finds similar documents.
func (s *SearchService) Text(ctx context.Context, text string, opts SearchOptions) (SearchResponse, error) {
	return s.run(ctx, "search_text", nil, text, opts)
}

// Similar finds documents similar to a stored document, excluding the document itself.
func (s *SearchService) Similar(ctx context.Context, id string, opts SearchOptions) (resp SearchResponse, err error) {
	start := time.Now()
	defer func() { s.obs.observe("search_similar", start, err) }()

	m := mode.Mode(opts.Mode)
	if m != "" && !m.IsValid() {
		return SearchResponse{}, fmt.Errorf("similar: invalid search mode %q: %w", opts.Mode, ErrInvalidQuery)
	}

	page, err := s.svc.Similar(ctx, id, m, opts.Limit, opts.MinOverlap, opts.IncludeVectors)
	if err != nil {
		return SearchResponse{}, fmt.Errorf("similar: %w", err)
	}
	if page.Unsearchable {
		s.obs.emptyFingerprint("search_similar")
	}
	return fromPage(&page), nil
}

func (s *SearchService) run(
	ctx context.Context, op string, vector []float32, text string, opts SearchOptions,
) (resp SearchResponse, err error) {
	start := time.Now()
	defer func() { s.obs.observe(op, start, err) }()

	req, err := request.New(vector, text, mode.Mode(opts.Mode), opts.Limit, opts.MinOverlap, opts.IncludeVectors)
	if err != nil {
		return SearchResponse{}, fmt.Errorf("search: %w", err)
	}

	page, err := s.svc.Search(ctx, &req)
	if err != nil {
		return SearchResponse{}, fmt.Errorf("search: %w", err)
	}
	if page.Unsearchable {
		s.obs.emptyFingerprint(op)
	}
	return fromPage(&page), nil
}

func fromPage(page *result.Page) SearchResponse {
	out := SearchResponse{
		Results:      make([]SearchResult, len(page.Results)),
		QueryTokens:  page.QueryTokens,
		Candidates:   page.Candidates,
		Unsearchable: page.Unsearchable,
	}
	for i := range page.Results {
		r := &page.Results[i]
		out.Results[i] = SearchResult{
			ID:      r.ID(),
			Overlap: r.Overlap(),
			Matched: r.Matched(),
			Score:   r.Score(),
			Content: r.Content(),
			Vector:  r.Vector(),
		}
	}
	return out
}
