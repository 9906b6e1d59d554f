package document

import (
	"fmt"
	"math"
	"regexp"
	"slices"

	"github.com/kailas-cloud/lexlsh/internal/domain"
)

var (
	idRegex     = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	reservedIDs = map[string]bool{"batch": true}
)

// MaxContentSize is the maximum document content size in bytes.
const MaxContentSize = 163840 // 160KB

// MaxDimensions bounds the vector length.
const MaxDimensions = 65536

// Document is the document aggregate: a vector, its fingerprint and optional content.
type Document struct {
	id          string
	content     string
	vector      []float32
	fingerprint []string
}

// New validates and creates a Document without a fingerprint.
// ID: ^[a-zA-Z0-9_-]+$, 1-256 chars, not reserved. Vector: 1..MaxDimensions finite values.
func New(id, content string, vector []float32) (Document, error) {
	if err := ValidateID(id); err != nil {
		return Document{}, err
	}
	if err := ValidateVector(vector); err != nil {
		return Document{}, err
	}
	if len(content) > MaxContentSize {
		return Document{}, fmt.Errorf("content too large (max %d bytes): %w", MaxContentSize, domain.ErrInvalidDocument)
	}

	return Document{
		id:      id,
		content: content,
		vector:  slices.Clone(vector),
	}, nil
}

// Reconstruct creates a Document without validation (storage hydration).
func Reconstruct(id, content string, vector []float32, fingerprint []string) Document {
	return Document{id: id, content: content, vector: vector, fingerprint: fingerprint}
}

// ValidateID checks the identifier rules.
func ValidateID(id string) error {
	if id == "" {
		return fmt.Errorf("document ID is required: %w", domain.ErrInvalidDocument)
	}
	if len(id) > 256 {
		return fmt.Errorf("document ID too long (max 256): %w", domain.ErrInvalidDocument)
	}
	if !idRegex.MatchString(id) {
		return fmt.Errorf("document ID must be alphanumeric with underscores and hyphens: %w", domain.ErrInvalidDocument)
	}
	if reservedIDs[id] {
		return fmt.Errorf("document ID %q is reserved: %w", id, domain.ErrInvalidDocument)
	}
	return nil
}

// ValidateVector rejects empty, oversized and non-finite vectors.
func ValidateVector(vector []float32) error {
	if len(vector) == 0 {
		return fmt.Errorf("vector is required: %w", domain.ErrInvalidVector)
	}
	if len(vector) > MaxDimensions {
		return fmt.Errorf("vector has %d dimensions (max %d): %w", len(vector), MaxDimensions, domain.ErrInvalidVector)
	}
	for i, v := range vector {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("dimension %d is not finite: %w", i, domain.ErrInvalidVector)
		}
	}
	return nil
}

// ID returns the document identifier.
func (d *Document) ID() string { return d.id }

// Content returns the document text content.
func (d *Document) Content() string { return d.content }

// Vector returns the stored vector.
func (d *Document) Vector() []float32 { return d.vector }

// Dimensions returns the vector length.
func (d *Document) Dimensions() int { return len(d.vector) }

// Fingerprint returns the fingerprint tokens.
func (d *Document) Fingerprint() []string { return d.fingerprint }

// WithFingerprint returns a copy carrying the given tokens.
func (d *Document) WithFingerprint(tokens []string) Document {
	return Document{id: d.id, content: d.content, vector: d.vector, fingerprint: tokens}
}
