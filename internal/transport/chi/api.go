package chi

// ErrorCode is a machine-readable error identifier returned in ErrorResponse.
type ErrorCode string

// Error codes.
const (
	CodeBadRequest             ErrorCode = "bad_request"
	CodeUnauthorized           ErrorCode = "unauthorized"
	CodeValidationFailed       ErrorCode = "validation_failed"
	CodeInvalidVector          ErrorCode = "invalid_vector"
	CodeNoFingerprint          ErrorCode = "no_fingerprint"
	CodeDocumentNotFound       ErrorCode = "document_not_found"
	CodeBatchTooLarge          ErrorCode = "batch_too_large"
	CodeEmbeddingNotConfigured ErrorCode = "embedding_not_configured"
	CodeEmbeddingProviderError ErrorCode = "embedding_provider_error"
	CodeTextSearchNotSupported ErrorCode = "text_search_not_supported"
	CodeInternalError          ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// EncodeRequest carries exactly one of vector, values or text.
type EncodeRequest struct {
	Vector []float32 `json:"vector,omitempty"`
	Values []string  `json:"values,omitempty"`
	Text   string    `json:"text,omitempty"`
}

// EncodeResponse is the fingerprint of one input.
type EncodeResponse struct {
	Tokens   []string       `json:"tokens"`
	Shingles int            `json:"shingles"`
	Empty    bool           `json:"empty"`
	Vector   []float32      `json:"vector,omitempty"`
	Trace    *TraceResponse `json:"trace,omitempty"`
}

// TraceResponse holds every pipeline stage when ?explain=true.
type TraceResponse struct {
	Truncated []string `json:"truncated"`
	Tagged    []string `json:"tagged"`
	Shingles  []string `json:"shingles"`
	Hashed    []string `json:"hashed"`
	Tokens    []string `json:"tokens"`
}

// DocumentRequest is the body of PUT /documents/{id} and POST /documents.
type DocumentRequest struct {
	Vector  []float32 `json:"vector,omitempty"`
	Text    string    `json:"text,omitempty"`
	Content string    `json:"content,omitempty"`
}

// DocumentResponse is a stored document.
type DocumentResponse struct {
	ID          string    `json:"id"`
	Content     string    `json:"content,omitempty"`
	Dimensions  int       `json:"dimensions"`
	Fingerprint []string  `json:"fingerprint"`
	Vector      []float32 `json:"vector,omitempty"`
}

// BatchDocument is one item of a batch upsert.
type BatchDocument struct {
	ID      string    `json:"id,omitempty"`
	Vector  []float32 `json:"vector,omitempty"`
	Text    string    `json:"text,omitempty"`
	Content string    `json:"content,omitempty"`
}

// BatchUpsertRequest is the body of POST /documents/batch.
type BatchUpsertRequest struct {
	Documents []BatchDocument `json:"documents"`
}

// BatchDeleteRequest is the body of DELETE /documents/batch.
type BatchDeleteRequest struct {
	IDs []string `json:"ids"`
}

// BatchResultItem reports the outcome for one batch item.
type BatchResultItem struct {
	ID     string         `json:"id"`
	Status string         `json:"status"`
	Tokens int            `json:"tokens,omitempty"`
	Error  *ErrorResponse `json:"error,omitempty"`
}

// BatchResponse summarizes a batch operation.
type BatchResponse struct {
	Items     []BatchResultItem `json:"items"`
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
}

// SearchRequest is the body of POST /search.
type SearchRequest struct {
	Vector         []float32 `json:"vector,omitempty"`
	Text           string    `json:"text,omitempty"`
	Mode           string    `json:"mode,omitempty"`
	Limit          int       `json:"limit,omitempty"`
	MinOverlap     float64   `json:"min_overlap,omitempty"`
	IncludeVectors bool      `json:"include_vectors,omitempty"`
}

// SimilarRequest is the optional body of POST /documents/{id}/similar.
type SimilarRequest struct {
	Mode           string  `json:"mode,omitempty"`
	Limit          int     `json:"limit,omitempty"`
	MinOverlap     float64 `json:"min_overlap,omitempty"`
	IncludeVectors bool    `json:"include_vectors,omitempty"`
}

// SearchResultItem is one ranked document.
type SearchResultItem struct {
	ID      string    `json:"id"`
	Overlap float64   `json:"overlap"`
	Matched int       `json:"matched"`
	Score   float64   `json:"score,omitempty"`
	Content string    `json:"content,omitempty"`
	Vector  []float32 `json:"vector,omitempty"`
}

// SearchResponse is a ranked result page.
type SearchResponse struct {
	Items        []SearchResultItem `json:"items"`
	Total        int                `json:"total"`
	QueryTokens  int                `json:"query_tokens"`
	Candidates   int                `json:"candidates"`
	Unsearchable bool               `json:"unsearchable,omitempty"`
}

// EncodingOptions mirrors the active encoder configuration.
type EncodingOptions struct {
	Decimals      int    `json:"decimals"`
	ShingleMin    int    `json:"shingle_min"`
	ShingleMax    int    `json:"shingle_max"`
	HashCount     int    `json:"hash_count"`
	BucketCount   int    `json:"bucket_count"`
	HashSetSize   int    `json:"hash_set_size"`
	PositionStart int    `json:"position_start"`
	Rotation      bool   `json:"rotation"`
	Seed          uint64 `json:"seed"`
}

// StatsResponse is the body of GET /stats.
type StatsResponse struct {
	Documents   int             `json:"documents"`
	TextEnabled bool            `json:"text_enabled"`
	Encoding    EncodingOptions `json:"encoding"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status     string            `json:"status"`
	Checks     map[string]string `json:"checks"`
	TextSearch bool              `json:"text_search"`
}
