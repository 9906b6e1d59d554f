package lsh

import (
	"fmt"
	"iter"
	"strings"
)

// Truncator cuts numeric tokens to a fixed number of decimal places.
type Truncator struct {
	decimals int
}

// NewTruncator creates a truncator keeping decimals digits after the decimal point.
func NewTruncator(decimals int) (*Truncator, error) {
	if decimals < 1 {
		return nil, fmt.Errorf("%w, got %d", ErrInvalidDecimals, decimals)
	}
	return &Truncator{decimals: decimals}, nil
}

// Decimals returns the configured number of decimal places.
func (t *Truncator) Decimals() int { return t.decimals }

// Truncate applies the decimal cut to a single token.
//
// The cut is a plain prefix cut at indexOf('.') + 1 + decimals, no rounding. Tokens without
// a decimal point are returned unchanged, and so are keywords. Numeric tokens that do not
// parse as decimals are cut by the same string rule.
func (t *Truncator) Truncate(tok Token) Token {
	switch tok.Kind() {
	case Keyword:
		return tok
	case Numeric:
		dot := strings.IndexByte(tok.Text(), '.')
		if dot < 0 {
			return tok
		}
		threshold := dot + 1 + t.decimals
		if len(tok.Text()) <= threshold {
			return tok
		}
		return tok.withText(tok.Text()[:threshold])
	default:
		panic(fmt.Sprintf("lsh: unhandled token kind %d", tok.Kind()))
	}
}

// Apply truncates every token of seq.
func (t *Truncator) Apply(seq iter.Seq[Token]) iter.Seq[Token] {
	return func(yield func(Token) bool) {
		for tok := range seq {
			if !yield(t.Truncate(tok)) {
				return
			}
		}
	}
}
