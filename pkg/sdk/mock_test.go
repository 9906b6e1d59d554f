package lexlsh

import (
	"context"

	dombatch "github.com/kailas-cloud/lexlsh/internal/domain/batch"
	domdoc "github.com/kailas-cloud/lexlsh/internal/domain/document"
	"github.com/kailas-cloud/lexlsh/internal/domain/search/mode"
	"github.com/kailas-cloud/lexlsh/internal/domain/search/request"
	"github.com/kailas-cloud/lexlsh/internal/domain/search/result"
	"github.com/kailas-cloud/lexlsh/internal/lsh"
	batchuc "github.com/kailas-cloud/lexlsh/internal/usecase/batch"
	documentuc "github.com/kailas-cloud/lexlsh/internal/usecase/document"
	encodinguc "github.com/kailas-cloud/lexlsh/internal/usecase/encoding"
	healthuc "github.com/kailas-cloud/lexlsh/internal/usecase/health"
)

// --- encodingUseCase mock ---

type mockEncodingUC struct {
	encodeFn       func(ctx context.Context, vector []float32) (lsh.Result, error)
	encodeValuesFn func(ctx context.Context, values []string) (lsh.Result, error)
	encodeTextFn   func(ctx context.Context, text string) (encodinguc.Encoded, error)
	explainFn      func(ctx context.Context, vector []float32) (lsh.Trace, error)
}

func (m *mockEncodingUC) Encode(ctx context.Context, vector []float32) (lsh.Result, error) {
	return m.encodeFn(ctx, vector)
}

func (m *mockEncodingUC) EncodeValues(ctx context.Context, values []string) (lsh.Result, error) {
	return m.encodeValuesFn(ctx, values)
}

func (m *mockEncodingUC) EncodeText(ctx context.Context, text string) (encodinguc.Encoded, error) {
	return m.encodeTextFn(ctx, text)
}

func (m *mockEncodingUC) Explain(ctx context.Context, vector []float32) (lsh.Trace, error) {
	return m.explainFn(ctx, vector)
}

// --- documentUseCase mock ---

type mockDocumentUC struct {
	upsertFn func(ctx context.Context, id string, in documentuc.Input) (domdoc.Document, bool, error)
	getFn    func(ctx context.Context, id string) (domdoc.Document, error)
	deleteFn func(ctx context.Context, id string) error
	countFn  func(ctx context.Context) (int, error)
}

func (m *mockDocumentUC) Upsert(ctx context.Context, id string, in documentuc.Input) (domdoc.Document, bool, error) {
	return m.upsertFn(ctx, id, in)
}

func (m *mockDocumentUC) Get(ctx context.Context, id string) (domdoc.Document, error) {
	return m.getFn(ctx, id)
}

func (m *mockDocumentUC) Delete(ctx context.Context, id string) error {
	return m.deleteFn(ctx, id)
}

func (m *mockDocumentUC) Count(ctx context.Context) (int, error) {
	return m.countFn(ctx)
}

// --- batchUseCase mock ---

type mockBatchUC struct {
	upsertFn func(ctx context.Context, items []batchuc.Item) []dombatch.Result
	deleteFn func(ctx context.Context, ids []string) []dombatch.Result
}

func (m *mockBatchUC) Upsert(ctx context.Context, items []batchuc.Item) []dombatch.Result {
	return m.upsertFn(ctx, items)
}

func (m *mockBatchUC) Delete(ctx context.Context, ids []string) []dombatch.Result {
	return m.deleteFn(ctx, ids)
}

// --- searchUseCase mock ---

type mockSearchUC struct {
	searchFn  func(ctx context.Context, req *request.Request) (result.Page, error)
	similarFn func(
		ctx context.Context, id string, m mode.Mode, limit int, minOverlap float64, includeVectors bool,
	) (result.Page, error)
}

func (m *mockSearchUC) Search(ctx context.Context, req *request.Request) (result.Page, error) {
	return m.searchFn(ctx, req)
}

func (m *mockSearchUC) Similar(
	ctx context.Context, id string, md mode.Mode, limit int, minOverlap float64, includeVectors bool,
) (result.Page, error) {
	return m.similarFn(ctx, id, md, limit, minOverlap, includeVectors)
}

// --- healthUseCase mock ---

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(_ context.Context) healthuc.Report { return m.report }

// --- Embedder mocks ---

type mockEmbedder struct {
	fn func(ctx context.Context, text string) (EmbeddingResult, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	return m.fn(ctx, text)
}

type mockBatchEmbedder struct {
	mockEmbedder
	batchFn func(ctx context.Context, texts []string) (BatchEmbeddingResult, error)
}

func (m *mockBatchEmbedder) BatchEmbed(ctx context.Context, texts []string) (BatchEmbeddingResult, error) {
	return m.batchFn(ctx, texts)
}

type healthyEmbedder struct {
	mockEmbedder
	err error
}

func (h *healthyEmbedder) HealthCheck(_ context.Context) error { return h.err }
