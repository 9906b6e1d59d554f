package search

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/kailas-cloud/lexlsh/internal/db"
	"github.com/kailas-cloud/lexlsh/internal/domain"
	"github.com/kailas-cloud/lexlsh/internal/domain/search/result"
	docrepo "github.com/kailas-cloud/lexlsh/internal/repository/document"
)

// store is the consumer interface for search operations (ISP).
type store interface {
	SearchTags(ctx context.Context, q *db.TermQuery) (*db.SearchResult, error)
	SearchText(ctx context.Context, q *db.TermQuery) (*db.SearchResult, error)
	SupportsTextSearch(ctx context.Context) bool
}

// DefaultMaxTagCandidates caps the TAG candidate window when none is configured.
const DefaultMaxTagCandidates = 1000

// Repo finds documents sharing fingerprint tokens with a query.
type Repo struct {
	store            store
	keys             domain.Keyspace
	maxTagCandidates int
}

// New creates a search repository.
func New(s store, keys domain.Keyspace) *Repo {
	return &Repo{store: s, keys: keys, maxTagCandidates: DefaultMaxTagCandidates}
}

// WithMaxTagCandidates sets how many TAG hits are paged in before ranking.
// Values not above the requested candidate count disable paging.
func (r *Repo) WithMaxTagCandidates(n int) *Repo {
	if n > 0 {
		r.maxTagCandidates = n
	}
	return r
}

// SupportsTextSearch proxies the capability check from the store.
func (r *Repo) SupportsTextSearch(ctx context.Context) bool {
	return r.store.SupportsTextSearch(ctx)
}

// SearchFingerprint returns documents holding at least one of tokens.
// With useText the TEXT field is queried for up to candidates hits carrying a BM25 score.
// Otherwise the TAG field is queried; its hits come back in no useful order, so pages of
// candidates are read until the matches run out or the TAG window cap is reached.
func (r *Repo) SearchFingerprint(
	ctx context.Context, tokens []string, candidates int, useText, includeVectors bool,
) ([]result.Candidate, error) {
	if len(tokens) == 0 || candidates <= 0 {
		return nil, nil
	}

	returnFields := []string{docrepo.FieldFingerprint, docrepo.FieldContent}
	if includeVectors {
		returnFields = append(returnFields, docrepo.FieldVector)
	}

	q := &db.TermQuery{
		IndexName:    r.keys.IndexName(),
		Terms:        tokens,
		Limit:        candidates,
		ReturnFields: returnFields,
	}

	var (
		sr  *db.SearchResult
		err error
	)
	if useText {
		q.Field = docrepo.FieldFingerprintText
		sr, err = r.store.SearchText(ctx, q)
	} else {
		q.Field = docrepo.FieldFingerprint
		sr, err = r.searchTagPages(ctx, q)
	}
	if err != nil {
		return nil, fmt.Errorf("search fingerprint (%d tokens): %w", len(tokens), err)
	}

	return r.parseCandidates(sr, includeVectors), nil
}

// searchTagPages reads q.Limit sized pages until the backend runs dry or the window is full.
func (r *Repo) searchTagPages(ctx context.Context, q *db.TermQuery) (*db.SearchResult, error) {
	pageSize := q.Limit
	window := max(r.maxTagCandidates, pageSize)

	out := &db.SearchResult{}
	seen := make(map[string]struct{})
	for q.Offset < window {
		q.Limit = min(pageSize, window-q.Offset)
		sr, err := r.store.SearchTags(ctx, q)
		if err != nil {
			return nil, err
		}
		if sr == nil {
			break
		}
		out.Total = sr.Total
		for _, e := range sr.Entries {
			// Writes between pages can shift a document onto the next page.
			if _, dup := seen[e.Key]; dup {
				continue
			}
			seen[e.Key] = struct{}{}
			out.Entries = append(out.Entries, e)
		}
		q.Offset += len(sr.Entries)
		if len(sr.Entries) < q.Limit || q.Offset >= sr.Total {
			break
		}
	}
	return out, nil
}

func (r *Repo) parseCandidates(sr *db.SearchResult, includeVectors bool) []result.Candidate {
	if sr == nil || len(sr.Entries) == 0 {
		return nil
	}

	out := make([]result.Candidate, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		c := result.Candidate{
			ID:          r.keys.IDFromKey(entry.Key),
			Score:       entry.Score,
			Fingerprint: docrepo.ParseFingerprint(entry.Fields[docrepo.FieldFingerprint]),
			Content:     entry.Fields[docrepo.FieldContent],
		}
		if includeVectors {
			c.Vector = decodeVector(entry.Fields[docrepo.FieldVector])
		}
		out = append(out, c)
	}
	return out
}

// decodeVector reads a little-endian float32 blob.
func decodeVector(s string) []float32 {
	if s == "" || len(s)%4 != 0 {
		return nil
	}
	b := []byte(s)
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}
