package document

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/lexlsh/internal/domain"
	domdoc "github.com/kailas-cloud/lexlsh/internal/domain/document"
	"github.com/kailas-cloud/lexlsh/internal/lsh"
)

// --- Mocks ---

type mockRepo struct {
	stored    []domdoc.Document
	exists    bool
	upsertErr error
	getDoc    domdoc.Document
	getErr    error
	deleteErr error
	count     int
}

func (m *mockRepo) Upsert(_ context.Context, doc *domdoc.Document) (bool, error) {
	if m.upsertErr != nil {
		return false, m.upsertErr
	}
	m.stored = append(m.stored, *doc)
	return !m.exists, nil
}

func (m *mockRepo) Get(_ context.Context, _ string) (domdoc.Document, error) {
	return m.getDoc, m.getErr
}

func (m *mockRepo) Delete(_ context.Context, _ string) error { return m.deleteErr }

func (m *mockRepo) Count(_ context.Context) (int, error) { return m.count, nil }

type mockEncoder struct {
	tokens   []string
	embedVec []float32
	embedErr error
	embedded []string
}

func (m *mockEncoder) Encode(_ context.Context, _ []float32) (lsh.Result, error) {
	return lsh.Result{Tokens: m.tokens}, nil
}

func (m *mockEncoder) Embed(_ context.Context, text string) ([]float32, error) {
	m.embedded = append(m.embedded, text)
	return m.embedVec, m.embedErr
}

func newTestService() (*Service, *mockRepo, *mockEncoder) {
	repo := &mockRepo{}
	enc := &mockEncoder{tokens: []string{"b0_01", "b1_02"}, embedVec: []float32{0.3, 0.4, 0.5}}
	return New(repo, enc), repo, enc
}

// --- Upsert ---

func TestUpsert_Vector(t *testing.T) {
	svc, repo, _ := newTestService()

	doc, created, err := svc.Upsert(context.Background(), "doc-1", Input{
		Vector:  []float32{0.1, 0.2, 0.3},
		Content: "hello",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !created {
		t.Error("expected created=true")
	}
	if doc.ID() != "doc-1" || doc.Content() != "hello" {
		t.Errorf("doc = %+v", doc)
	}
	if len(repo.stored) != 1 || len(repo.stored[0].Fingerprint()) != 2 {
		t.Fatalf("stored = %+v", repo.stored)
	}
}

func TestUpsert_Replace(t *testing.T) {
	svc, repo, _ := newTestService()
	repo.exists = true

	_, created, err := svc.Upsert(context.Background(), "doc-1", Input{Vector: []float32{1, 2}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created {
		t.Error("expected created=false on replace")
	}
}

func TestUpsert_GeneratesID(t *testing.T) {
	svc, _, _ := newTestService()

	doc, _, err := svc.Upsert(context.Background(), "", Input{Vector: []float32{1, 2}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.ID()) != 26 {
		t.Errorf("generated ID %q is not a ULID", doc.ID())
	}
}

func TestUpsert_Text(t *testing.T) {
	svc, repo, enc := newTestService()

	doc, _, err := svc.Upsert(context.Background(), "doc-2", Input{Text: "red shoes"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(enc.embedded) != 1 || enc.embedded[0] != "red shoes" {
		t.Errorf("embedded = %v", enc.embedded)
	}
	if doc.Content() != "red shoes" {
		t.Errorf("content should default to text, got %q", doc.Content())
	}
	if repo.stored[0].Dimensions() != 3 {
		t.Errorf("stored dims = %d, want 3", repo.stored[0].Dimensions())
	}
}

func TestUpsert_TextEmbeddingError(t *testing.T) {
	svc, repo, enc := newTestService()
	enc.embedErr = domain.ErrEmbeddingNotConfigured

	_, _, err := svc.Upsert(context.Background(), "doc-2", Input{Text: "x"})
	if !errors.Is(err, domain.ErrEmbeddingNotConfigured) {
		t.Fatalf("expected ErrEmbeddingNotConfigured, got %v", err)
	}
	if len(repo.stored) != 0 {
		t.Error("nothing should be stored")
	}
}

func TestUpsert_NoFingerprint(t *testing.T) {
	svc, repo, enc := newTestService()
	enc.tokens = nil

	_, _, err := svc.Upsert(context.Background(), "doc-1", Input{Vector: []float32{0.5}})
	if !errors.Is(err, domain.ErrNoFingerprint) {
		t.Fatalf("expected ErrNoFingerprint, got %v", err)
	}
	if len(repo.stored) != 0 {
		t.Error("unfingerprinted document must not be stored")
	}
}

func TestUpsert_InvalidInput(t *testing.T) {
	svc, _, _ := newTestService()

	tests := []struct {
		name string
		id   string
		in   Input
		want error
	}{
		{"no input", "doc-1", Input{}, domain.ErrInvalidVector},
		{"both inputs", "doc-1", Input{Vector: []float32{1}, Text: "x"}, domain.ErrInvalidDocument},
		{"bad id", "doc 1", Input{Vector: []float32{1}}, domain.ErrInvalidDocument},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := svc.Upsert(context.Background(), tc.id, tc.in)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestUpsert_RepoError(t *testing.T) {
	svc, repo, _ := newTestService()
	repo.upsertErr = errors.New("connection reset")

	if _, _, err := svc.Upsert(context.Background(), "doc-1", Input{Vector: []float32{1, 2}}); err == nil {
		t.Fatal("expected error")
	}
}

// --- Get / Delete / Count ---

func TestGet_NotFound(t *testing.T) {
	svc, repo, _ := newTestService()
	repo.getErr = domain.ErrNotFound

	if _, err := svc.Get(context.Background(), "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDelete_NotFound(t *testing.T) {
	svc, repo, _ := newTestService()
	repo.deleteErr = domain.ErrNotFound

	if err := svc.Delete(context.Background(), "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCount(t *testing.T) {
	svc, repo, _ := newTestService()
	repo.count = 12

	n, err := svc.Count(context.Background())
	if err != nil || n != 12 {
		t.Fatalf("Count() = %d, %v", n, err)
	}
}
