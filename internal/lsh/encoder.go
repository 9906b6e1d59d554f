package lsh

import (
	"iter"
	"slices"
	"sync"
)

// Result is the fingerprint of one vector.
type Result struct {
	Tokens   []string // deduplicated fingerprint tokens
	Shingles int      // size of the set MinHash ran over
}

// Empty reports that no fingerprint was produced, which happens when the vector has fewer
// dimensions than the smallest shingle window. Such a vector cannot be found by
// fingerprint matching.
func (r Result) Empty() bool { return len(r.Tokens) == 0 }

// Trace holds the output of every stage for one vector.
type Trace struct {
	Truncated []string
	Tagged    []string
	Shingles  []string
	Hashed    []string
	Tokens    []string
}

// Encoder runs the full pipeline. It is immutable after construction and safe for
// concurrent use; per-vector state lives in pooled position taggers.
type Encoder struct {
	opts      Options
	truncator *Truncator
	shingler  *Shingler
	hasher    *MinHasher
	taggers   sync.Pool
}

// NewEncoder validates opts and builds every stage.
func NewEncoder(opts Options) (*Encoder, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	truncator, err := NewTruncator(opts.Decimals)
	if err != nil {
		return nil, err
	}
	shingler, err := NewShingler(opts.ShingleMin, opts.ShingleMax)
	if err != nil {
		return nil, err
	}
	hasher, err := NewMinHasher(opts.minHashConfig())
	if err != nil {
		return nil, err
	}

	e := &Encoder{
		opts:      opts,
		truncator: truncator,
		shingler:  shingler,
		hasher:    hasher,
	}
	start := opts.PositionStart
	e.taggers.New = func() any {
		return &PositionTagger{start: start}
	}
	return e, nil
}

// Options returns the options the encoder was built with.
func (e *Encoder) Options() Options { return e.opts }

// MaxTokens is the upper bound on fingerprint size.
func (e *Encoder) MaxTokens() int { return e.hasher.MaxTokens() }

// Encode fingerprints one vector given as its per-dimension tokens in dimension order.
func (e *Encoder) Encode(tokens []Token) Result {
	tagger := e.tagger()
	defer e.taggers.Put(tagger)

	set := e.materialize(e.stream(slices.Values(tokens), tagger))
	return Result{
		Tokens:   Dedup(e.hasher.Fingerprint(set)),
		Shingles: len(set),
	}
}

// EncodeStrings fingerprints a vector whose dimensions are all numeric tokens.
func (e *Encoder) EncodeStrings(values []string) Result {
	return e.Encode(NumericTokens(values))
}

// Explain runs the pipeline and records the output of every stage.
func (e *Encoder) Explain(tokens []Token) Trace {
	tagger := e.tagger()
	defer e.taggers.Put(tagger)

	var tr Trace
	truncated := make([]Token, 0, len(tokens))
	for tok := range e.truncator.Apply(slices.Values(tokens)) {
		truncated = append(truncated, tok)
		tr.Truncated = append(tr.Truncated, tok.Text())
	}
	tagged := make([]Token, 0, len(tokens))
	for tok := range tagger.Apply(slices.Values(truncated)) {
		tagged = append(tagged, tok)
		tr.Tagged = append(tr.Tagged, tok.Text())
	}
	tr.Shingles = e.materialize(slices.Values(tagged))
	tr.Hashed = e.hasher.Fingerprint(tr.Shingles)
	tr.Tokens = Dedup(tr.Hashed)
	return tr
}

func (e *Encoder) tagger() *PositionTagger {
	t := e.taggers.Get().(*PositionTagger)
	t.Reset()
	return t
}

// stream chains the streaming stages: truncate, then position tag.
func (e *Encoder) stream(seq iter.Seq[Token], tagger *PositionTagger) iter.Seq[Token] {
	return tagger.Apply(e.truncator.Apply(seq))
}

// materialize collects the set MinHash runs over: the shingles, or the tagged tokens
// themselves when the shingle stage is bypassed.
func (e *Encoder) materialize(tagged iter.Seq[Token]) []string {
	if e.shingler.Bypass() {
		var out []string
		for tok := range tagged {
			out = append(out, tok.Text())
		}
		return out
	}
	return slices.Collect(e.shingler.Apply(tagged))
}
