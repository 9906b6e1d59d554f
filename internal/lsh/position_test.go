package lsh

import (
	"errors"
	"fmt"
	"iter"
	"slices"
	"testing"
)

func sliceOf(values ...string) iter.Seq[Token] {
	return slices.Values(NumericTokens(values))
}

func texts(seq iter.Seq[Token]) []string {
	var out []string
	for tok := range seq {
		out = append(out, tok.Text())
	}
	return out
}

func TestNewPositionTagger_RejectsNegativeStart(t *testing.T) {
	if _, err := NewPositionTagger(-1); !errors.Is(err, ErrInvalidPositionStart) {
		t.Fatalf("got %v, want ErrInvalidPositionStart", err)
	}
}

func TestPositionTagger_Tag(t *testing.T) {
	tests := []struct {
		name  string
		start int
		in    []string
		want  []string
	}{
		{"no strip", 0, []string{"0.1", "-0.2", "3"}, []string{"1_0.1", "2_-0.2", "3_3"}},
		{"strip one", 1, []string{"0.12", "-0.12"}, []string{"1_.12", "2_-.12"}},
		{"strip two", 2, []string{"0.12", "-0.12"}, []string{"1_12", "2_-12"}},
		{"start beyond length", 5, []string{"0.1", "-0.1"}, []string{"1_0.1", "2_-0.1"}},
		{"start equals length", 3, []string{"0.1"}, []string{"1_0.1"}},
		{"negative remainder too short", 3, []string{"-0.1"}, []string{"1_-0.1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewPositionTagger(tt.start)
			if err != nil {
				t.Fatalf("NewPositionTagger: %v", err)
			}
			got := texts(p.Apply(sliceOf(tt.in...)))
			if !slices.Equal(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPositionTagger_OrdinalsStrictlyIncreasing(t *testing.T) {
	p, _ := NewPositionTagger(0)
	in := make([]string, 50)
	for i := range in {
		in[i] = fmt.Sprintf("0.%d", i)
	}
	got := texts(p.Apply(sliceOf(in...)))
	if len(got) != len(in) {
		t.Fatalf("emitted %d tokens, want %d", len(got), len(in))
	}
	for i, tok := range got {
		want := fmt.Sprintf("%d_%s", i+1, in[i])
		if tok != want {
			t.Fatalf("token %d = %q, want %q", i, tok, want)
		}
	}
}

func TestPositionTagger_Reset(t *testing.T) {
	p, _ := NewPositionTagger(0)
	_ = texts(p.Apply(sliceOf("0.1", "0.2", "0.3")))
	if p.Count() != 3 {
		t.Fatalf("Count = %d, want 3", p.Count())
	}

	p.Reset()
	got := texts(p.Apply(sliceOf("0.9")))
	if !slices.Equal(got, []string{"1_0.9"}) {
		t.Errorf("after Reset got %v, want [1_0.9]", got)
	}
}

func TestPositionTagger_KeepsKind(t *testing.T) {
	p, _ := NewPositionTagger(0)
	got := p.Tag(KeywordToken("cat"))
	if got.Kind() != Keyword || got.Text() != "1_cat" {
		t.Errorf("got %v %q, want keyword 1_cat", got.Kind(), got.Text())
	}
}
