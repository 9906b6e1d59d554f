package lsh

import (
	"fmt"
	"iter"
	"strconv"
)

// PositionTagger prefixes tokens with their 1-based ordinal in the vector.
//
// A tagger counts across calls; Reset must be called before each new vector.
// It is not safe for concurrent use.
type PositionTagger struct {
	start int
	count int
}

// NewPositionTagger creates a tagger that strips start leading characters of each value.
func NewPositionTagger(start int) (*PositionTagger, error) {
	if start < 0 {
		return nil, fmt.Errorf("%w, got %d", ErrInvalidPositionStart, start)
	}
	return &PositionTagger{start: start}, nil
}

// Reset returns the ordinal counter to zero.
func (p *PositionTagger) Reset() {
	p.count = 0
}

// Count returns the number of tokens tagged since the last Reset.
func (p *PositionTagger) Count() int { return p.count }

// Tag emits "{n}_{value}" for the next token.
func (p *PositionTagger) Tag(tok Token) Token {
	p.count++
	return tok.withText(strconv.Itoa(p.count) + "_" + p.strip(tok.Text()))
}

// strip removes the first start characters, keeping a leading minus sign.
func (p *PositionTagger) strip(value string) string {
	if p.start == 0 || p.start >= len(value) {
		return value
	}
	if value[0] == '-' {
		rest := value[1:]
		if p.start >= len(rest) {
			return value
		}
		return "-" + rest[p.start:]
	}
	return value[p.start:]
}

// Apply tags every token of seq. The counter is not reset.
func (p *PositionTagger) Apply(seq iter.Seq[Token]) iter.Seq[Token] {
	return func(yield func(Token) bool) {
		for tok := range seq {
			if !yield(p.Tag(tok)) {
				return
			}
		}
	}
}
