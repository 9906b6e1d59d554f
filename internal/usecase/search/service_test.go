package search

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/kailas-cloud/lexlsh/internal/domain"
	domdoc "github.com/kailas-cloud/lexlsh/internal/domain/document"
	"github.com/kailas-cloud/lexlsh/internal/domain/search/mode"
	"github.com/kailas-cloud/lexlsh/internal/domain/search/request"
	"github.com/kailas-cloud/lexlsh/internal/domain/search/result"
	"github.com/kailas-cloud/lexlsh/internal/lsh"
	"github.com/kailas-cloud/lexlsh/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterEncodingMetrics()
	os.Exit(m.Run())
}

// --- Mocks ---

type mockRepo struct {
	textSearch bool
	hits       []result.Candidate
	err        error

	gotTokens     []string
	gotCandidates int
	gotUseText    bool
	calls         int
}

func (m *mockRepo) SearchFingerprint(
	_ context.Context, tokens []string, candidates int, useText, _ bool,
) ([]result.Candidate, error) {
	m.calls++
	m.gotTokens = tokens
	m.gotCandidates = candidates
	m.gotUseText = useText
	return m.hits, m.err
}

func (m *mockRepo) SupportsTextSearch(_ context.Context) bool { return m.textSearch }

type mockDocs struct {
	doc domdoc.Document
	err error
}

func (m *mockDocs) Get(_ context.Context, _ string) (domdoc.Document, error) { return m.doc, m.err }

type mockEncoder struct {
	tokens   []string
	embedErr error
	embedded []string
}

func (m *mockEncoder) Encode(_ context.Context, _ []float32) (lsh.Result, error) {
	return lsh.Result{Tokens: m.tokens}, nil
}

func (m *mockEncoder) Embed(_ context.Context, text string) ([]float32, error) {
	m.embedded = append(m.embedded, text)
	return []float32{0.1, 0.2}, m.embedErr
}

func newTestService(repo *mockRepo, enc *mockEncoder) *Service {
	return New(repo, &mockDocs{}, enc, Limits{})
}

func vectorRequest(t *testing.T, m mode.Mode, limit int, minOverlap float64) *request.Request {
	t.Helper()
	req, err := request.New([]float32{0.1, 0.2, 0.3}, "", m, limit, minOverlap, false)
	if err != nil {
		t.Fatalf("request.New: %v", err)
	}
	return &req
}

func candidate(id string, score float64, tokens ...string) result.Candidate {
	return result.Candidate{ID: id, Score: score, Fingerprint: tokens}
}

// --- Search ---

func TestSearch_RanksByOverlap(t *testing.T) {
	repo := &mockRepo{hits: []result.Candidate{
		candidate("one", 0, "q1", "x"),
		candidate("all", 0, "q1", "q2", "q3", "q4"),
		candidate("half", 0, "q3", "q4", "y"),
	}}
	svc := newTestService(repo, &mockEncoder{tokens: []string{"q1", "q2", "q3", "q4"}})

	page, err := svc.Search(context.Background(), vectorRequest(t, "", 0, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantIDs := []string{"all", "half", "one"}
	wantOverlap := []float64{1, 0.5, 0.25}
	if len(page.Results) != 3 {
		t.Fatalf("results = %d, want 3", len(page.Results))
	}
	for i, r := range page.Results {
		if r.ID() != wantIDs[i] || r.Overlap() != wantOverlap[i] {
			t.Errorf("result %d = %s/%.2f, want %s/%.2f", i, r.ID(), r.Overlap(), wantIDs[i], wantOverlap[i])
		}
	}
	if page.Results[1].Matched() != 2 {
		t.Errorf("Matched() = %d, want 2", page.Results[1].Matched())
	}
	if page.QueryTokens != 4 || page.Candidates != 3 {
		t.Errorf("page = %+v", page)
	}
}

func TestSearch_TieBreakByScoreThenID(t *testing.T) {
	repo := &mockRepo{textSearch: true, hits: []result.Candidate{
		candidate("b", 1.0, "q1"),
		candidate("c", 2.0, "q1"),
		candidate("a", 1.0, "q1"),
	}}
	svc := newTestService(repo, &mockEncoder{tokens: []string{"q1", "q2"}})

	page, err := svc.Search(context.Background(), vectorRequest(t, "", 0, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := []string{page.Results[0].ID(), page.Results[1].ID(), page.Results[2].ID()}
	if want := []string{"c", "a", "b"}; got[0] != want[0] || got[1] != want[1] || got[2] != want[2] {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestSearch_MinOverlapAndLimit(t *testing.T) {
	repo := &mockRepo{hits: []result.Candidate{
		candidate("a", 0, "q1", "q2"),
		candidate("b", 0, "q1", "q2"),
		candidate("c", 0, "q1"),
	}}
	svc := newTestService(repo, &mockEncoder{tokens: []string{"q1", "q2"}})

	page, err := svc.Search(context.Background(), vectorRequest(t, "", 1, 0.75))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Results) != 1 || page.Results[0].ID() != "a" {
		t.Errorf("results = %+v", page.Results)
	}
	if repo.gotCandidates != 4 {
		t.Errorf("candidates requested = %d, want limit*multiplier = 4", repo.gotCandidates)
	}
}

func TestSearch_DefaultAndMaxLimit(t *testing.T) {
	repo := &mockRepo{}
	svc := New(repo, &mockDocs{}, &mockEncoder{tokens: []string{"q"}},
		Limits{DefaultLimit: 5, MaxLimit: 20, CandidateMultiplier: 3})

	if _, err := svc.Search(context.Background(), vectorRequest(t, "", 0, 0)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.gotCandidates != 15 {
		t.Errorf("default candidates = %d, want 15", repo.gotCandidates)
	}

	if _, err := svc.Search(context.Background(), vectorRequest(t, "", 500, 0)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.gotCandidates != 60 {
		t.Errorf("clamped candidates = %d, want 60", repo.gotCandidates)
	}
}

func TestSearch_Unsearchable(t *testing.T) {
	repo := &mockRepo{}
	svc := newTestService(repo, &mockEncoder{})

	page, err := svc.Search(context.Background(), vectorRequest(t, "", 0, 0))
	if err != nil {
		t.Fatalf("empty fingerprint must not be an error, got %v", err)
	}
	if !page.Unsearchable || len(page.Results) != 0 {
		t.Errorf("page = %+v", page)
	}
	if repo.calls != 0 {
		t.Error("index must not be queried without tokens")
	}
}

func TestSearch_ModeResolution(t *testing.T) {
	tests := []struct {
		name       string
		textSearch bool
		m          mode.Mode
		wantText   bool
		wantErr    error
	}{
		{"auto with text", true, mode.Auto, true, nil},
		{"auto tag only", false, mode.Auto, false, nil},
		{"forced tag", true, mode.Tag, false, nil},
		{"text unsupported", false, mode.Text, false, domain.ErrTextSearchNotSupported},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			repo := &mockRepo{textSearch: tc.textSearch}
			svc := newTestService(repo, &mockEncoder{tokens: []string{"q"}})

			_, err := svc.Search(context.Background(), vectorRequest(t, tc.m, 0, 0))
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("err = %v, want %v", err, tc.wantErr)
			}
			if tc.wantErr == nil && repo.gotUseText != tc.wantText {
				t.Errorf("useText = %v, want %v", repo.gotUseText, tc.wantText)
			}
		})
	}
}

func TestSearch_Text(t *testing.T) {
	enc := &mockEncoder{tokens: []string{"q"}}
	svc := newTestService(&mockRepo{}, enc)

	req, err := request.New(nil, "red shoes", "", 0, 0, false)
	if err != nil {
		t.Fatalf("request.New: %v", err)
	}
	if _, err := svc.Search(context.Background(), &req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(enc.embedded) != 1 || enc.embedded[0] != "red shoes" {
		t.Errorf("embedded = %v", enc.embedded)
	}

	enc.embedErr = domain.ErrEmbeddingNotConfigured
	if _, err := svc.Search(context.Background(), &req); !errors.Is(err, domain.ErrEmbeddingNotConfigured) {
		t.Errorf("expected ErrEmbeddingNotConfigured, got %v", err)
	}
}

func TestSearch_RepoError(t *testing.T) {
	boom := errors.New("boom")
	svc := newTestService(&mockRepo{err: boom}, &mockEncoder{tokens: []string{"q"}})

	if _, err := svc.Search(context.Background(), vectorRequest(t, "", 0, 0)); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped repo error, got %v", err)
	}
}

// --- Similar ---

func TestSimilar_ExcludesSelf(t *testing.T) {
	repo := &mockRepo{hits: []result.Candidate{
		candidate("self", 0, "q1", "q2"),
		candidate("other", 0, "q1"),
	}}
	docs := &mockDocs{doc: domdoc.Reconstruct("self", "", []float32{1}, []string{"q1", "q2"})}
	svc := New(repo, docs, &mockEncoder{}, Limits{})

	page, err := svc.Similar(context.Background(), "self", "", 5, 0, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Results) != 1 || page.Results[0].ID() != "other" {
		t.Errorf("results = %+v", page.Results)
	}
	if repo.gotCandidates != 21 {
		t.Errorf("candidates = %d, want 21", repo.gotCandidates)
	}
}

func TestSimilar_NotFound(t *testing.T) {
	svc := New(&mockRepo{}, &mockDocs{err: domain.ErrNotFound}, &mockEncoder{}, Limits{})

	if _, err := svc.Similar(context.Background(), "missing", "", 0, 0, false); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
