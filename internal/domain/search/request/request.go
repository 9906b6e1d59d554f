package request

import (
	"fmt"

	"github.com/kailas-cloud/lexlsh/internal/domain"
	"github.com/kailas-cloud/lexlsh/internal/domain/document"
	"github.com/kailas-cloud/lexlsh/internal/domain/search/mode"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed text query length.
	MaxQueryLength = 4096
	MaxLimit       = 1000
)

// Request is a validated nearest-neighbour query. Exactly one of vector and text is set.
type Request struct {
	vector         []float32
	text           string
	searchMode     mode.Mode
	limit          int
	minOverlap     float64
	includeVectors bool
}

// New validates and normalizes search parameters.
// A zero limit means "use the service default"; mode defaults to auto.
func New(
	vector []float32,
	text string,
	m mode.Mode,
	limit int,
	minOverlap float64,
	includeVectors bool,
) (Request, error) {
	switch {
	case len(vector) == 0 && text == "":
		return Request{}, fmt.Errorf("vector or text is required: %w", domain.ErrInvalidQuery)
	case len(vector) > 0 && text != "":
		return Request{}, fmt.Errorf("vector and text are mutually exclusive: %w", domain.ErrInvalidQuery)
	}
	if len(vector) > 0 {
		if err := document.ValidateVector(vector); err != nil {
			return Request{}, err
		}
	}
	if len(text) > MaxQueryLength {
		return Request{}, fmt.Errorf("query too long (max %d chars): %w", MaxQueryLength, domain.ErrInvalidQuery)
	}
	if m == "" {
		m = mode.Auto
	}
	if !m.IsValid() {
		return Request{}, fmt.Errorf("invalid search mode %q: %w", m, domain.ErrInvalidQuery)
	}
	if limit < 0 {
		return Request{}, fmt.Errorf("limit must not be negative: %w", domain.ErrInvalidQuery)
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if minOverlap < 0 || minOverlap > 1 {
		return Request{}, fmt.Errorf("min_overlap must be between 0 and 1: %w", domain.ErrInvalidQuery)
	}

	return Request{
		vector:         vector,
		text:           text,
		searchMode:     m,
		limit:          limit,
		minOverlap:     minOverlap,
		includeVectors: includeVectors,
	}, nil
}

// Vector returns the query vector (nil for text queries).
func (r *Request) Vector() []float32 { return r.vector }

// Text returns the query text (empty for vector queries).
func (r *Request) Text() string { return r.text }

// Mode returns the token matching strategy.
func (r *Request) Mode() mode.Mode { return r.searchMode }

// Limit returns the maximum results to return, 0 when unset.
func (r *Request) Limit() int { return r.limit }

// MinOverlap returns the minimum fraction of query tokens a hit must share.
func (r *Request) MinOverlap() float64 { return r.minOverlap }

// IncludeVectors reports whether vectors should be included in results.
func (r *Request) IncludeVectors() bool { return r.includeVectors }
