package search

import (
	"context"
	"encoding/binary"
	"math"
	"testing"

	"github.com/kailas-cloud/lexlsh/internal/db"
	"github.com/kailas-cloud/lexlsh/internal/domain"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	textSearch   bool
	searchTagsFn func(ctx context.Context, q *db.TermQuery) (*db.SearchResult, error)
	searchTextFn func(ctx context.Context, q *db.TermQuery) (*db.SearchResult, error)
}

func (m *mockStore) SearchTags(ctx context.Context, q *db.TermQuery) (*db.SearchResult, error) {
	if m.searchTagsFn != nil {
		return m.searchTagsFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) SearchText(ctx context.Context, q *db.TermQuery) (*db.SearchResult, error) {
	if m.searchTextFn != nil {
		return m.searchTextFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) SupportsTextSearch(_ context.Context) bool { return m.textSearch }

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, domain.NewKeyspace("")), ms
}

func encodeVector(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}
