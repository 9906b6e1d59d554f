package lsh

// Kind tells numeric dimension values apart from keyword tokens.
type Kind uint8

const (
	// Numeric is a decimal dimension value; it is subject to truncation.
	Numeric Kind = iota
	// Keyword is a sentinel or category token that bypasses truncation.
	Keyword
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case Numeric:
		return "numeric"
	case Keyword:
		return "keyword"
	default:
		return "unknown"
	}
}

// Token is a single element of the stream flowing through the encoder.
type Token struct {
	kind Kind
	text string
}

// NumericToken wraps a decimal dimension value.
func NumericToken(text string) Token {
	return Token{kind: Numeric, text: text}
}

// KeywordToken wraps a token that must not be truncated.
func KeywordToken(text string) Token {
	return Token{kind: Keyword, text: text}
}

// Kind returns the token kind.
func (t Token) Kind() Kind { return t.kind }

// Text returns the token text.
func (t Token) Text() string { return t.text }

// withText returns a token of the same kind carrying text.
func (t Token) withText(text string) Token {
	return Token{kind: t.kind, text: text}
}

// NumericTokens wraps every string as a numeric token.
func NumericTokens(values []string) []Token {
	out := make([]Token, len(values))
	for i, v := range values {
		out[i] = NumericToken(v)
	}
	return out
}
