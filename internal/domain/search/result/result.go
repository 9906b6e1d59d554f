package result

// Result is a single nearest-neighbour hit.
type Result struct {
	id      string
	overlap float64
	matched int
	score   float64
	content string
	vector  []float32
}

// New creates a search result.
func New(id string, overlap float64, matched int, score float64, content string, vector []float32) Result {
	return Result{
		id: id, overlap: overlap, matched: matched, score: score,
		content: content, vector: vector,
	}
}

// ID returns the document identifier.
func (r *Result) ID() string { return r.id }

// Overlap returns the fraction of query tokens found in the document fingerprint.
// It estimates the similarity of the two vectors.
func (r *Result) Overlap() float64 { return r.overlap }

// Matched returns the number of shared fingerprint tokens.
func (r *Result) Matched() int { return r.matched }

// Score returns the backend relevance score (BM25 in text mode, 0 in tag mode).
func (r *Result) Score() float64 { return r.score }

// Content returns the document content.
func (r *Result) Content() string { return r.content }

// Vector returns the document vector when requested.
func (r *Result) Vector() []float32 { return r.vector }

// Page is the outcome of one search.
type Page struct {
	Results []Result
	// Candidates is the number of documents the index returned before scoring.
	Candidates int
	// QueryTokens is the size of the query fingerprint.
	QueryTokens int
	// Unsearchable is set when the query produced no fingerprint, so nothing can match.
	Unsearchable bool
}

// Candidate is a raw index hit before overlap scoring.
type Candidate struct {
	ID          string
	Score       float64
	Fingerprint []string
	Content     string
	Vector      []float32
}
