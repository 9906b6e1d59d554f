package lexlsh

// SearchMode controls how fingerprint tokens are matched.
type SearchMode string

// Search mode constants.
const (
	// ModeAuto uses ModeText on Redis and ModeTag on Valkey.
	ModeAuto SearchMode = "auto"
	// ModeTag matches tokens as exact TAG values.
	ModeTag SearchMode = "tag"
	// ModeText matches tokens as TEXT terms ranked by BM25. Redis only.
	ModeText SearchMode = "text"
)

// Document is a stored vector with its fingerprint.
// On upsert, set exactly one of Vector and Text; Fingerprint is ignored.
type Document struct {
	ID          string
	Content     string
	Vector      []float32
	Text        string
	Fingerprint []string
}

// Fingerprint is the encoding of one input.
type Fingerprint struct {
	Tokens   []string
	Shingles int
	// Vector is the embedding when the input was text.
	Vector []float32
}

// Empty reports that the input produced no tokens and could never be matched.
func (f Fingerprint) Empty() bool { return len(f.Tokens) == 0 }

// Trace holds the output of every pipeline stage.
type Trace struct {
	Truncated []string
	Tagged    []string
	Shingles  []string
	Hashed    []string
	Tokens    []string
}

// SearchOptions tune a query. Zero values take the service defaults.
type SearchOptions struct {
	Mode           SearchMode
	Limit          int
	MinOverlap     float64
	IncludeVectors bool
}

// SearchResult is a single search hit.
type SearchResult struct {
	ID string
	// Overlap is the share of query tokens the document holds, in [0, 1].
	Overlap float64
	Matched int
	// Score is the BM25 score in text mode, zero otherwise.
	Score   float64
	Content string
	Vector  []float32
}

// SearchResponse is one page of ranked hits.
type SearchResponse struct {
	Results     []SearchResult
	QueryTokens int
	Candidates  int
	// Unsearchable is set when the query produced no fingerprint.
	Unsearchable bool
}

// BatchResult is the outcome of one item in a batch operation.
type BatchResult struct {
	ID     string
	OK     bool
	Tokens int
	Err    error
}
