// Package vectortext converts between vectors and the per-dimension tokens the
// fingerprint encoder consumes.
package vectortext

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/kailas-cloud/lexlsh/internal/lsh"
)

// ErrEmpty is returned by Floats when the text holds no values.
var ErrEmpty = errors.New("vectortext: no values")

// FromFloats renders each dimension with the shortest decimal form that round-trips float32.
// Whole numbers keep a ".0" so they truncate alongside their fractional neighbours.
func FromFloats(vec []float32) []lsh.Token {
	out := make([]lsh.Token, len(vec))
	for i, v := range vec {
		out[i] = lsh.NumericToken(decimal(float64(v), 32))
	}
	return out
}

func decimal(v float64, bitSize int) string {
	s := strconv.FormatFloat(v, 'f', -1, bitSize)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}

// Parse splits text on whitespace and commas. Fields that parse as decimals become numeric
// tokens; anything else is kept as a keyword.
func Parse(text string) []lsh.Token {
	return FromStrings(Fields(text))
}

// FromStrings classifies pre-split values the same way Parse does. Numeric values written
// in exponent notation are rewritten as plain decimals; others are kept as given.
func FromStrings(values []string) []lsh.Token {
	if len(values) == 0 {
		return nil
	}
	out := make([]lsh.Token, len(values))
	for i, f := range values {
		if v, err := strconv.ParseFloat(f, 64); err == nil {
			if strings.ContainsAny(f, "eE") && !math.IsInf(v, 0) && !math.IsNaN(v) {
				f = decimal(v, 64)
			}
			out[i] = lsh.NumericToken(f)
		} else {
			out[i] = lsh.KeywordToken(f)
		}
	}
	return out
}

// Floats parses every field of text as float32.
func Floats(text string) ([]float32, error) {
	fields := Fields(text)
	if len(fields) == 0 {
		return nil, ErrEmpty
	}
	out := make([]float32, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return nil, fmt.Errorf("dimension %d: %w", i, err)
		}
		out[i] = float32(v)
	}
	return out, nil
}

// Fields splits text on whitespace and commas, dropping empty fields.
func Fields(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
}
