package lsh

import (
	"fmt"
	"iter"
	"slices"
	"strings"
)

// ShingleSeparator joins the tokens of one shingle.
const ShingleSeparator = " "

// Shingler combines consecutive tokens into fixed-size windows.
type Shingler struct {
	min int
	max int
}

// NewShingler creates a shingler emitting every window of min..max tokens.
func NewShingler(minSize, maxSize int) (*Shingler, error) {
	if minSize < 1 || minSize > maxSize {
		return nil, fmt.Errorf("%w, got min=%d max=%d", ErrInvalidShingleSize, minSize, maxSize)
	}
	return &Shingler{min: minSize, max: maxSize}, nil
}

// Bypass reports whether the shingler is configured for unigrams only. Unigrams are never
// emitted as shingles, so the encoder feeds tagged tokens to MinHash directly instead.
func (s *Shingler) Bypass() bool {
	return s.max == 1
}

// Apply emits, for every end position, the windows of size min..max ending there.
// Windows of size 1 are skipped. Inputs shorter than min yield nothing.
func (s *Shingler) Apply(seq iter.Seq[Token]) iter.Seq[string] {
	minSize := max(s.min, 2)
	return func(yield func(string) bool) {
		if minSize > s.max {
			return
		}
		window := make([]string, 0, s.max)
		for tok := range seq {
			if len(window) == s.max {
				copy(window, window[1:])
				window = window[:s.max-1]
			}
			window = append(window, tok.Text())

			for size := minSize; size <= len(window); size++ {
				if !yield(strings.Join(window[len(window)-size:], ShingleSeparator)) {
					return
				}
			}
		}
	}
}

// Shingles is a convenience wrapper collecting Apply over a slice.
func (s *Shingler) Shingles(tokens []Token) []string {
	var out []string
	for sh := range s.Apply(slices.Values(tokens)) {
		out = append(out, sh)
	}
	return out
}
