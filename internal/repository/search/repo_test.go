package search

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/kailas-cloud/lexlsh/internal/db"
)

func TestSearchFingerprint_Tags(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.searchTagsFn = func(_ context.Context, q *db.TermQuery) (*db.SearchResult, error) {
		if q.IndexName != "lexlsh:idx" {
			t.Errorf("index = %q", q.IndexName)
		}
		if q.Field != "fp" {
			t.Errorf("field = %q, want fp", q.Field)
		}
		if q.Limit != 40 {
			t.Errorf("limit = %d, want 40", q.Limit)
		}
		if slices.Contains(q.ReturnFields, "vector") {
			t.Error("vector requested without includeVectors")
		}
		return &db.SearchResult{Total: 1, Entries: []db.SearchEntry{{
			Key:    "lexlsh:doc:a",
			Fields: map[string]string{"fp": "t1,t2,t3", "content": "alpha"},
		}}}, nil
	}
	ms.searchTextFn = func(_ context.Context, _ *db.TermQuery) (*db.SearchResult, error) {
		t.Error("SearchText must not be called in tag mode")
		return nil, nil
	}

	got, err := repo.SearchFingerprint(context.Background(), []string{"t1", "t9"}, 40, false, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(got))
	}
	c := got[0]
	if c.ID != "a" || c.Content != "alpha" || len(c.Fingerprint) != 3 {
		t.Errorf("candidate = %+v", c)
	}
	if c.Vector != nil {
		t.Errorf("unexpected vector %v", c.Vector)
	}
}

func TestSearchFingerprint_Text(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.textSearch = true

	ms.searchTextFn = func(_ context.Context, q *db.TermQuery) (*db.SearchResult, error) {
		if q.Field != "fp_text" {
			t.Errorf("field = %q, want fp_text", q.Field)
		}
		if !slices.Contains(q.ReturnFields, "vector") {
			t.Error("vector not requested")
		}
		return &db.SearchResult{Total: 1, Entries: []db.SearchEntry{{
			Key:    "lexlsh:doc:b",
			Score:  2.5,
			Fields: map[string]string{"fp": "t1", "vector": encodeVector([]float32{0.5, 1})},
		}}}, nil
	}

	got, err := repo.SearchFingerprint(context.Background(), []string{"t1"}, 10, true, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Score != 2.5 {
		t.Fatalf("candidates = %+v", got)
	}
	if len(got[0].Vector) != 2 || got[0].Vector[1] != 1 {
		t.Errorf("vector = %v", got[0].Vector)
	}
	if !repo.SupportsTextSearch(context.Background()) {
		t.Error("SupportsTextSearch() = false")
	}
}

func TestSearchFingerprint_NoTokens(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.searchTagsFn = func(_ context.Context, _ *db.TermQuery) (*db.SearchResult, error) {
		t.Error("store must not be queried without tokens")
		return nil, nil
	}

	got, err := repo.SearchFingerprint(context.Background(), nil, 10, false, false)
	if err != nil || got != nil {
		t.Fatalf("got %v, %v; want nil, nil", got, err)
	}
}

func TestSearchFingerprint_StoreError(t *testing.T) {
	repo, ms := newTestRepo(t)
	boom := errors.New("boom")
	ms.searchTagsFn = func(_ context.Context, _ *db.TermQuery) (*db.SearchResult, error) { return nil, boom }

	_, err := repo.SearchFingerprint(context.Background(), []string{"t"}, 10, false, false)
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
}

// pagedTags serves entries in backend order, honouring Offset and Limit.
func pagedTags(entries []db.SearchEntry, offsets, limits *[]int) func(context.Context, *db.TermQuery) (*db.SearchResult, error) {
	return func(_ context.Context, q *db.TermQuery) (*db.SearchResult, error) {
		*offsets = append(*offsets, q.Offset)
		*limits = append(*limits, q.Limit)
		lo := min(q.Offset, len(entries))
		hi := min(q.Offset+q.Limit, len(entries))
		return &db.SearchResult{Total: len(entries), Entries: entries[lo:hi]}, nil
	}
}

func TestSearchFingerprint_TagPagesPastFirstWindow(t *testing.T) {
	repo, ms := newTestRepo(t)

	// The backend returns weak matches first; the full match sits on the last page.
	entries := []db.SearchEntry{
		{Key: "lexlsh:doc:a", Fields: map[string]string{"fp": "t1,x1,x2"}},
		{Key: "lexlsh:doc:b", Fields: map[string]string{"fp": "t2,x3"}},
		{Key: "lexlsh:doc:c", Fields: map[string]string{"fp": "t3"}},
		{Key: "lexlsh:doc:d", Fields: map[string]string{"fp": "x4,t1"}},
		{Key: "lexlsh:doc:best", Fields: map[string]string{"fp": "t1,t2,t3"}},
	}
	var offsets, limits []int
	ms.searchTagsFn = pagedTags(entries, &offsets, &limits)

	got, err := repo.SearchFingerprint(context.Background(), []string{"t1", "t2", "t3"}, 2, false, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != len(entries) {
		t.Fatalf("expected %d candidates, got %d", len(entries), len(got))
	}
	if got[4].ID != "best" || len(got[4].Fingerprint) != 3 {
		t.Errorf("last candidate = %+v, want best", got[4])
	}
	if !slices.Equal(offsets, []int{0, 2, 4}) || !slices.Equal(limits, []int{2, 2, 2}) {
		t.Errorf("pages offsets=%v limits=%v", offsets, limits)
	}
}

func TestSearchFingerprint_TagWindowCap(t *testing.T) {
	repo, ms := newTestRepo(t)
	repo.WithMaxTagCandidates(3)

	entries := make([]db.SearchEntry, 10)
	for i := range entries {
		entries[i] = db.SearchEntry{Key: "lexlsh:doc:" + string(rune('a'+i)), Fields: map[string]string{"fp": "t1"}}
	}
	var offsets, limits []int
	ms.searchTagsFn = pagedTags(entries, &offsets, &limits)

	got, err := repo.SearchFingerprint(context.Background(), []string{"t1"}, 2, false, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("expected window of 3 candidates, got %d", len(got))
	}
	if !slices.Equal(offsets, []int{0, 2}) || !slices.Equal(limits, []int{2, 1}) {
		t.Errorf("pages offsets=%v limits=%v", offsets, limits)
	}
}

func TestSearchFingerprint_TagPageDuplicates(t *testing.T) {
	repo, ms := newTestRepo(t)

	calls := 0
	ms.searchTagsFn = func(_ context.Context, q *db.TermQuery) (*db.SearchResult, error) {
		calls++
		switch q.Offset {
		case 0:
			return &db.SearchResult{Total: 3, Entries: []db.SearchEntry{
				{Key: "lexlsh:doc:a", Fields: map[string]string{"fp": "t1"}},
				{Key: "lexlsh:doc:b", Fields: map[string]string{"fp": "t1"}},
			}}, nil
		default:
			// A write between pages pushed b onto the second page.
			return &db.SearchResult{Total: 3, Entries: []db.SearchEntry{
				{Key: "lexlsh:doc:b", Fields: map[string]string{"fp": "t1"}},
			}}, nil
		}
	}

	got, err := repo.SearchFingerprint(context.Background(), []string{"t1"}, 2, false, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "b" {
		t.Errorf("candidates = %+v", got)
	}
}

func TestSearchFingerprint_TextReadsOnePage(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.textSearch = true

	calls := 0
	ms.searchTextFn = func(_ context.Context, q *db.TermQuery) (*db.SearchResult, error) {
		calls++
		if q.Offset != 0 || q.Limit != 2 {
			t.Errorf("offset=%d limit=%d, want 0 and 2", q.Offset, q.Limit)
		}
		return &db.SearchResult{Total: 50, Entries: []db.SearchEntry{
			{Key: "lexlsh:doc:a", Score: 3, Fields: map[string]string{"fp": "t1"}},
			{Key: "lexlsh:doc:b", Score: 2, Fields: map[string]string{"fp": "t1"}},
		}}, nil
	}

	got, err := repo.SearchFingerprint(context.Background(), []string{"t1"}, 2, true, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 || len(got) != 2 {
		t.Errorf("calls = %d, candidates = %d", calls, len(got))
	}
}
