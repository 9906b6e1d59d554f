package encoding

import (
	"context"
	"errors"
	"math"
	"os"
	"slices"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kailas-cloud/lexlsh/internal/domain"
	"github.com/kailas-cloud/lexlsh/internal/lsh"
	"github.com/kailas-cloud/lexlsh/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterEncodingMetrics()
	os.Exit(m.Run())
}

type mockEmbedder struct {
	vec   []float32
	err   error
	calls int
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.calls++
	return domain.EmbeddingResult{Embedding: m.vec}, m.err
}

func newTestService(t *testing.T, embed Embedder) *Service {
	t.Helper()
	enc, err := lsh.NewEncoder(lsh.DefaultOptions())
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}
	return New(enc, embed, 4)
}

func testVector(n int, salt float32) []float32 {
	v := make([]float32, n)
	for i := range v {
		v[i] = float32(math.Sin(float64(i)+float64(salt))) * 0.9
	}
	return v
}

func TestEncode(t *testing.T) {
	svc := newTestService(t, nil)

	res, err := svc.Encode(context.Background(), testVector(32, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Empty() {
		t.Fatal("expected a fingerprint for a 32-dim vector")
	}
	if len(res.Tokens) > svc.Encoder().MaxTokens() {
		t.Errorf("tokens = %d exceeds max %d", len(res.Tokens), svc.Encoder().MaxTokens())
	}
}

func TestEncode_MatchesEncoder(t *testing.T) {
	svc := newTestService(t, nil)
	vec := []float32{0.15, -0.25, 0.35, 0.45}

	res, err := svc.Encode(context.Background(), vec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	direct := svc.Encoder().EncodeStrings([]string{"0.15", "-0.25", "0.35", "0.45"})
	if !slices.Equal(res.Tokens, direct.Tokens) {
		t.Errorf("service tokens %v differ from encoder tokens %v", res.Tokens, direct.Tokens)
	}
}

func TestEncode_InvalidVector(t *testing.T) {
	svc := newTestService(t, nil)

	_, err := svc.Encode(context.Background(), nil)
	if !errors.Is(err, domain.ErrInvalidVector) {
		t.Fatalf("expected ErrInvalidVector, got %v", err)
	}
}

func TestEncode_EmptyFingerprintCounted(t *testing.T) {
	svc := newTestService(t, nil)
	before := testutil.ToFloat64(metrics.EncodeEmptyTotal.WithLabelValues(SourceVector))

	res, err := svc.Encode(context.Background(), []float32{0.5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Empty() {
		t.Fatalf("expected empty fingerprint for 1-dim vector, got %v", res.Tokens)
	}
	after := testutil.ToFloat64(metrics.EncodeEmptyTotal.WithLabelValues(SourceVector))
	if after != before+1 {
		t.Errorf("encode_empty_total = %f, want %f", after, before+1)
	}
}

func TestEncodeValues_Keywords(t *testing.T) {
	svc := newTestService(t, nil)

	res, err := svc.EncodeValues(context.Background(), []string{"0.11", "cat:red", "0.33"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Empty() {
		t.Fatal("expected fingerprint")
	}

	if _, err := svc.EncodeValues(context.Background(), nil); !errors.Is(err, domain.ErrInvalidVector) {
		t.Errorf("expected ErrInvalidVector for no values, got %v", err)
	}
}

func TestEncodeText(t *testing.T) {
	emb := &mockEmbedder{vec: testVector(16, 1)}
	svc := newTestService(t, emb)

	got, err := svc.EncodeText(context.Background(), "red shoes")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if emb.calls != 1 {
		t.Errorf("embed calls = %d, want 1", emb.calls)
	}
	if len(got.Vector) != 16 {
		t.Errorf("vector len = %d", len(got.Vector))
	}
	want, _ := svc.Encode(context.Background(), emb.vec)
	if !slices.Equal(got.Tokens, want.Tokens) {
		t.Error("text fingerprint differs from fingerprint of its embedding")
	}
}

func TestEncodeText_NotConfigured(t *testing.T) {
	svc := newTestService(t, nil)
	if svc.TextEnabled() {
		t.Fatal("TextEnabled() = true without embedder")
	}

	_, err := svc.EncodeText(context.Background(), "x")
	if !errors.Is(err, domain.ErrEmbeddingNotConfigured) {
		t.Fatalf("expected ErrEmbeddingNotConfigured, got %v", err)
	}
}

func TestEncodeText_ProviderError(t *testing.T) {
	svc := newTestService(t, &mockEmbedder{err: domain.ErrEmbeddingProviderError})

	_, err := svc.EncodeText(context.Background(), "x")
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("expected ErrEmbeddingProviderError, got %v", err)
	}
}

func TestExplain(t *testing.T) {
	svc := newTestService(t, nil)

	tr, err := svc.Explain(context.Background(), []float32{0.123, 0.456, 0.789})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := []string{"0.1", "0.4", "0.7"}; !slices.Equal(tr.Truncated, want) {
		t.Errorf("Truncated = %v, want %v", tr.Truncated, want)
	}
	if want := []string{"1_0.1", "2_0.4", "3_0.7"}; !slices.Equal(tr.Tagged, want) {
		t.Errorf("Tagged = %v, want %v", tr.Tagged, want)
	}
	if len(tr.Shingles) != 2 {
		t.Errorf("Shingles = %v, want 2 bigrams", tr.Shingles)
	}
}

func TestExplainValues_KeywordSkipsTruncation(t *testing.T) {
	svc := newTestService(t, nil)

	tr, err := svc.ExplainValues(context.Background(), []string{"0.123", "cat:red"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := []string{"0.1", "cat:red"}; !slices.Equal(tr.Truncated, want) {
		t.Errorf("Truncated = %v, want %v", tr.Truncated, want)
	}
	if want := []string{"1_0.1", "2_cat:red"}; !slices.Equal(tr.Tagged, want) {
		t.Errorf("Tagged = %v, want %v", tr.Tagged, want)
	}

	if _, err := svc.ExplainValues(context.Background(), nil); !errors.Is(err, domain.ErrInvalidVector) {
		t.Errorf("expected ErrInvalidVector, got %v", err)
	}
}

func TestEncodeBatch_PreservesOrder(t *testing.T) {
	svc := newTestService(t, nil)
	vectors := make([][]float32, 20)
	for i := range vectors {
		vectors[i] = testVector(24, float32(i))
	}

	got, err := svc.EncodeBatch(context.Background(), vectors, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != len(vectors) {
		t.Fatalf("results = %d, want %d", len(got), len(vectors))
	}
	for i, vec := range vectors {
		want, _ := svc.Encode(context.Background(), vec)
		if !slices.Equal(got[i].Tokens, want.Tokens) {
			t.Errorf("result %d out of order", i)
		}
	}
}

func TestEncodeBatch_InvalidItem(t *testing.T) {
	svc := newTestService(t, nil)
	vectors := [][]float32{testVector(8, 0), {float32(math.NaN())}}

	_, err := svc.EncodeBatch(context.Background(), vectors, 0)
	if !errors.Is(err, domain.ErrInvalidVector) {
		t.Fatalf("expected ErrInvalidVector, got %v", err)
	}
}

func TestEncodeBatch_Cancelled(t *testing.T) {
	svc := newTestService(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.EncodeBatch(ctx, [][]float32{testVector(8, 0)}, 1)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestEmbedBatch_Fallback(t *testing.T) {
	emb := &mockEmbedder{vec: []float32{0.1, 0.2}}
	svc := newTestService(t, emb)

	got, err := svc.EmbedBatch(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 || emb.calls != 3 {
		t.Errorf("got %d vectors with %d calls, want 3 and 3", len(got), emb.calls)
	}

	if _, err := newTestService(t, nil).EmbedBatch(context.Background(), []string{"a"}); !errors.Is(err, domain.ErrEmbeddingNotConfigured) {
		t.Errorf("expected ErrEmbeddingNotConfigured, got %v", err)
	}
}
