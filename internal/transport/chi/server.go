package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	gochi "github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"go.uber.org/zap"

	"github.com/kailas-cloud/lexlsh/internal/domain"
	dombatch "github.com/kailas-cloud/lexlsh/internal/domain/batch"
	domdoc "github.com/kailas-cloud/lexlsh/internal/domain/document"
	"github.com/kailas-cloud/lexlsh/internal/domain/search/mode"
	"github.com/kailas-cloud/lexlsh/internal/domain/search/request"
	"github.com/kailas-cloud/lexlsh/internal/domain/search/result"
	"github.com/kailas-cloud/lexlsh/internal/logger"
	"github.com/kailas-cloud/lexlsh/internal/lsh"
	batchuc "github.com/kailas-cloud/lexlsh/internal/usecase/batch"
	documentuc "github.com/kailas-cloud/lexlsh/internal/usecase/document"
	encodinguc "github.com/kailas-cloud/lexlsh/internal/usecase/encoding"
	healthuc "github.com/kailas-cloud/lexlsh/internal/usecase/health"
)

// EncodingService fingerprints raw input.
type EncodingService interface {
	Encode(ctx context.Context, vector []float32) (lsh.Result, error)
	EncodeValues(ctx context.Context, values []string) (lsh.Result, error)
	EncodeText(ctx context.Context, text string) (encodinguc.Encoded, error)
	Embed(ctx context.Context, text string) ([]float32, error)
	Explain(ctx context.Context, vector []float32) (lsh.Trace, error)
	ExplainValues(ctx context.Context, values []string) (lsh.Trace, error)
	Options() lsh.Options
	TextEnabled() bool
}

// DocumentService manages single documents.
type DocumentService interface {
	Upsert(ctx context.Context, id string, in documentuc.Input) (domdoc.Document, bool, error)
	Get(ctx context.Context, id string) (domdoc.Document, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

// BatchService manages documents in bulk.
type BatchService interface {
	Upsert(ctx context.Context, items []batchuc.Item) []dombatch.Result
	Delete(ctx context.Context, ids []string) []dombatch.Result
}

// SearchService ranks documents by fingerprint overlap.
type SearchService interface {
	Search(ctx context.Context, req *request.Request) (result.Page, error)
	Similar(
		ctx context.Context, id string, m mode.Mode, limit int, minOverlap float64, includeVectors bool,
	) (result.Page, error)
}

// HealthService reports component health.
type HealthService interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server holds the HTTP handlers of the lexlsh API.
type Server struct {
	encoding      EncodingService
	documents     DocumentService
	batch         BatchService
	search        SearchService
	health        HealthService
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	encoding EncodingService,
	documents DocumentService,
	batch BatchService,
	search SearchService,
	health HealthService,
	logger *zap.Logger,
) *Server {
	s := &Server{
		encoding:  encoding,
		documents: documents,
		batch:     batch,
		search:    search,
		health:    health,
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, CodeDocumentNotFound),
		sentinelHandler(domain.ErrNoFingerprint, http.StatusUnprocessableEntity, CodeNoFingerprint),
		sentinelHandler(domain.ErrInvalidVector, http.StatusBadRequest, CodeInvalidVector),
		sentinelHandler(domain.ErrInvalidDocument, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrBatchTooLarge, http.StatusRequestEntityTooLarge, CodeBatchTooLarge),
		sentinelHandler(domain.ErrEmbeddingNotConfigured, http.StatusBadRequest, CodeEmbeddingNotConfigured),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, CodeEmbeddingProviderError),
		sentinelHandler(domain.ErrTextSearchNotSupported, http.StatusNotImplemented, CodeTextSearchNotSupported),
	}
	return s
}

// Encode handles POST /encode.
func (s *Server) Encode(w http.ResponseWriter, r *http.Request) {
	var explain *bool
	if err := runtime.BindQueryParameter("form", true, false, "explain", r.URL.Query(), &explain); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid format for parameter explain: "+err.Error())
		return
	}

	var req EncodeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	set := 0
	for _, ok := range []bool{len(req.Vector) > 0, len(req.Values) > 0, req.Text != ""} {
		if ok {
			set++
		}
	}
	if set != 1 {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "exactly one of vector, values or text is required")
		return
	}

	ctx := r.Context()
	if explain != nil && *explain {
		s.explain(w, r, req)
		return
	}

	var (
		res    lsh.Result
		vector []float32
		err    error
	)
	switch {
	case len(req.Vector) > 0:
		res, err = s.encoding.Encode(ctx, req.Vector)
	case len(req.Values) > 0:
		res, err = s.encoding.EncodeValues(ctx, req.Values)
	default:
		var enc encodinguc.Encoded
		enc, err = s.encoding.EncodeText(ctx, req.Text)
		res, vector = enc.Result, enc.Vector
	}
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, encodeToResponse(res, vector))
}

func (s *Server) explain(w http.ResponseWriter, r *http.Request, req EncodeRequest) {
	ctx := r.Context()

	var (
		tr     lsh.Trace
		vector []float32
		err    error
	)
	switch {
	case len(req.Values) > 0:
		tr, err = s.encoding.ExplainValues(ctx, req.Values)
	case req.Text != "":
		vector, err = s.encoding.Embed(ctx, req.Text)
		if err == nil {
			tr, err = s.encoding.Explain(ctx, vector)
		}
	default:
		tr, err = s.encoding.Explain(ctx, req.Vector)
	}
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	resp := encodeToResponse(lsh.Result{Tokens: tr.Tokens, Shingles: len(tr.Shingles)}, vector)
	resp.Trace = &TraceResponse{
		Truncated: nonNil(tr.Truncated),
		Tagged:    nonNil(tr.Tagged),
		Shingles:  nonNil(tr.Shingles),
		Hashed:    nonNil(tr.Hashed),
		Tokens:    nonNil(tr.Tokens),
	}
	writeJSON(w, http.StatusOK, resp)
}

// CreateDocument handles POST /documents. The service assigns the id.
func (s *Server) CreateDocument(w http.ResponseWriter, r *http.Request) {
	var req DocumentRequest
	if !decodeBody(w, r, &req) {
		return
	}

	doc, _, err := s.documents.Upsert(r.Context(), "", documentInput(req))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	w.Header().Set("Location", "/documents/"+doc.ID())
	writeJSON(w, http.StatusCreated, documentToResponse(&doc, false))
}

// UpsertDocument handles PUT /documents/{id}.
func (s *Server) UpsertDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req DocumentRequest
	if !decodeBody(w, r, &req) {
		return
	}

	doc, created, err := s.documents.Upsert(r.Context(), id, documentInput(req))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
		w.Header().Set("Location", "/documents/"+doc.ID())
	}
	writeJSON(w, status, documentToResponse(&doc, false))
}

// GetDocument handles GET /documents/{id}.
func (s *Server) GetDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var includeVector *bool
	if err := runtime.BindQueryParameter(
		"form", true, false, "include_vector", r.URL.Query(), &includeVector,
	); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest,
			"Invalid format for parameter include_vector: "+err.Error())
		return
	}

	doc, err := s.documents.Get(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, documentToResponse(&doc, includeVector != nil && *includeVector))
}

// DeleteDocument handles DELETE /documents/{id}.
func (s *Server) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := s.documents.Delete(r.Context(), id); err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SimilarDocuments handles POST /documents/{id}/similar.
func (s *Server) SimilarDocuments(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	// The body is optional.
	var req SimilarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	m := mode.Mode(req.Mode)
	if m != "" && !m.IsValid() {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, fmt.Sprintf("invalid search mode %q", req.Mode))
		return
	}
	if req.Limit < 0 || req.MinOverlap < 0 || req.MinOverlap > 1 {
		writeError(w, http.StatusBadRequest, CodeValidationFailed,
			"limit must not be negative and min_overlap must be between 0 and 1")
		return
	}

	page, err := s.search.Similar(r.Context(), id, m, req.Limit, req.MinOverlap, req.IncludeVectors)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, pageToResponse(&page))
}

// BatchUpsert handles POST /documents/batch.
func (s *Server) BatchUpsert(w http.ResponseWriter, r *http.Request) {
	var req BatchUpsertRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if len(req.Documents) == 0 {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "documents must not be empty")
		return
	}

	items := make([]batchuc.Item, len(req.Documents))
	for i, d := range req.Documents {
		items[i] = batchuc.Item{ID: d.ID, Vector: d.Vector, Text: d.Text, Content: d.Content}
	}

	s.writeBatch(w, r, s.batch.Upsert(r.Context(), items))
}

// BatchDelete handles DELETE /documents/batch.
func (s *Server) BatchDelete(w http.ResponseWriter, r *http.Request) {
	var req BatchDeleteRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if len(req.IDs) == 0 {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "ids must not be empty")
		return
	}

	s.writeBatch(w, r, s.batch.Delete(r.Context(), req.IDs))
}

// writeBatch renders per-item results. An oversize batch fails every item with the same
// error and is reported as a request error instead.
func (s *Server) writeBatch(w http.ResponseWriter, r *http.Request, results []dombatch.Result) {
	if len(results) > 0 && errors.Is(results[0].Err(), domain.ErrBatchTooLarge) {
		s.handleDomainError(w, r, results[0].Err())
		return
	}

	resp := BatchResponse{Items: make([]BatchResultItem, len(results))}
	for i, res := range results {
		resp.Items[i] = batchResultToResponse(res)
		if res.Status() == dombatch.StatusOK {
			resp.Succeeded++
		} else {
			resp.Failed++
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// Search handles POST /search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if !decodeBody(w, r, &req) {
		return
	}

	searchReq, err := request.New(
		req.Vector, req.Text, mode.Mode(req.Mode), req.Limit, req.MinOverlap, req.IncludeVectors,
	)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	page, err := s.search.Search(r.Context(), &searchReq)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, pageToResponse(&page))
}

// Stats handles GET /stats.
func (s *Server) Stats(w http.ResponseWriter, r *http.Request) {
	count, err := s.documents.Count(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	opts := s.encoding.Options()
	writeJSON(w, http.StatusOK, StatsResponse{
		Documents:   count,
		TextEnabled: s.encoding.TextEnabled(),
		Encoding: EncodingOptions{
			Decimals:      opts.Decimals,
			ShingleMin:    opts.ShingleMin,
			ShingleMax:    opts.ShingleMax,
			HashCount:     opts.HashCount,
			BucketCount:   opts.BucketCount,
			HashSetSize:   opts.HashSetSize,
			PositionStart: opts.PositionStart,
			Rotation:      opts.RotationEnabled(),
			Seed:          opts.Seed,
		},
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status:     string(report.Status),
		Checks:     checks,
		TextSearch: report.TextSearch,
	})
}

// pathID binds the {id} path parameter. It writes a 400 and returns false on failure.
func pathID(w http.ResponseWriter, r *http.Request) (string, bool) {
	var id string
	err := runtime.BindStyledParameterWithOptions("simple", "id", gochi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid format for parameter id: "+err.Error())
		return "", false
	}
	return id, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

var clientSentinels = []error{
	domain.ErrNotFound,
	domain.ErrNoFingerprint,
	domain.ErrInvalidVector,
	domain.ErrInvalidDocument,
	domain.ErrInvalidQuery,
	domain.ErrBatchTooLarge,
	domain.ErrEmbeddingNotConfigured,
	domain.ErrEmbeddingProviderError,
	domain.ErrTextSearchNotSupported,
}

// safeDomainMessage returns a client-facing message without exposing internals.
// Validation errors keep their detail since it only describes the caller's input.
func safeDomainMessage(err error) string {
	for _, s := range clientSentinels {
		if !errors.Is(err, s) {
			continue
		}
		switch s {
		case domain.ErrInvalidVector, domain.ErrInvalidDocument, domain.ErrInvalidQuery, domain.ErrBatchTooLarge:
			return err.Error()
		}
		return s.Error()
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			log.Warn("domain error", zap.Error(err))
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}

func documentInput(req DocumentRequest) documentuc.Input {
	return documentuc.Input{Vector: req.Vector, Text: req.Text, Content: req.Content}
}

func encodeToResponse(res lsh.Result, vector []float32) EncodeResponse {
	return EncodeResponse{
		Tokens:   nonNil(res.Tokens),
		Shingles: res.Shingles,
		Empty:    res.Empty(),
		Vector:   vector,
	}
}

func documentToResponse(doc *domdoc.Document, includeVector bool) DocumentResponse {
	resp := DocumentResponse{
		ID:          doc.ID(),
		Content:     doc.Content(),
		Dimensions:  doc.Dimensions(),
		Fingerprint: nonNil(doc.Fingerprint()),
	}
	if includeVector {
		resp.Vector = doc.Vector()
	}
	return resp
}

func pageToResponse(page *result.Page) SearchResponse {
	items := make([]SearchResultItem, len(page.Results))
	for i := range page.Results {
		res := &page.Results[i]
		items[i] = SearchResultItem{
			ID:      res.ID(),
			Overlap: res.Overlap(),
			Matched: res.Matched(),
			Score:   res.Score(),
			Content: res.Content(),
			Vector:  res.Vector(),
		}
	}
	return SearchResponse{
		Items:        items,
		Total:        len(items),
		QueryTokens:  page.QueryTokens,
		Candidates:   page.Candidates,
		Unsearchable: page.Unsearchable,
	}
}

func batchResultToResponse(r dombatch.Result) BatchResultItem {
	item := BatchResultItem{
		ID:     r.ID(),
		Status: string(r.Status()),
		Tokens: r.Tokens(),
	}
	if r.Err() != nil {
		item.Error = &ErrorResponse{
			Code:    batchErrorCode(r.Err()),
			Message: safeDomainMessage(r.Err()),
		}
	}
	return item
}

func batchErrorCode(err error) ErrorCode {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return CodeDocumentNotFound
	case errors.Is(err, domain.ErrNoFingerprint):
		return CodeNoFingerprint
	case errors.Is(err, domain.ErrInvalidVector):
		return CodeInvalidVector
	case errors.Is(err, domain.ErrInvalidDocument):
		return CodeValidationFailed
	case errors.Is(err, domain.ErrEmbeddingNotConfigured):
		return CodeEmbeddingNotConfigured
	case errors.Is(err, domain.ErrEmbeddingProviderError):
		return CodeEmbeddingProviderError
	default:
		return CodeInternalError
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
