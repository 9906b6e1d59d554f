package request

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/kailas-cloud/lexlsh/internal/domain"
	"github.com/kailas-cloud/lexlsh/internal/domain/search/mode"
)

func TestNew_Defaults(t *testing.T) {
	r, err := New([]float32{0.1, 0.2}, "", "", 0, 0, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Mode() != mode.Auto {
		t.Errorf("Mode() = %q, want auto (default)", r.Mode())
	}
	if r.Limit() != 0 {
		t.Errorf("Limit() = %d, want 0 (unset)", r.Limit())
	}
	if r.MinOverlap() != 0 {
		t.Errorf("MinOverlap() = %f", r.MinOverlap())
	}
	if r.IncludeVectors() {
		t.Error("IncludeVectors() = true")
	}
}

func TestNew_ExplicitValues(t *testing.T) {
	r, err := New(nil, "red shoes", mode.Text, 20, 0.25, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Text() != "red shoes" || r.Vector() != nil {
		t.Errorf("unexpected input: %q %v", r.Text(), r.Vector())
	}
	if r.Mode() != mode.Text || r.Limit() != 20 || r.MinOverlap() != 0.25 || !r.IncludeVectors() {
		t.Errorf("unexpected request: %+v", r)
	}
}

func TestNew_LimitClamped(t *testing.T) {
	r, err := New([]float32{1}, "", "", MaxLimit+50, 0, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Limit() != MaxLimit {
		t.Errorf("Limit() = %d, want %d", r.Limit(), MaxLimit)
	}
}

func TestNew_Errors(t *testing.T) {
	tests := []struct {
		name       string
		vector     []float32
		text       string
		m          mode.Mode
		limit      int
		minOverlap float64
		want       string
	}{
		{"no input", nil, "", "", 0, 0, "required"},
		{"both inputs", []float32{1}, "x", "", 0, 0, "mutually exclusive"},
		{"long text", nil, strings.Repeat("q", MaxQueryLength+1), "", 0, 0, "too long"},
		{"bad mode", []float32{1}, "", "hybrid", 0, 0, "invalid search mode"},
		{"negative limit", []float32{1}, "", "", -1, 0, "limit"},
		{"overlap above one", []float32{1}, "", "", 0, 1.5, "min_overlap"},
		{"negative overlap", []float32{1}, "", "", 0, -0.1, "min_overlap"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.vector, tc.text, tc.m, tc.limit, tc.minOverlap, false)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error = %q, want containing %q", err, tc.want)
			}
			if !errors.Is(err, domain.ErrInvalidQuery) {
				t.Errorf("expected ErrInvalidQuery, got %v", err)
			}
		})
	}
}

func TestNew_NonFiniteVector(t *testing.T) {
	_, err := New([]float32{float32(math.NaN())}, "", "", 0, 0, false)
	if !errors.Is(err, domain.ErrInvalidVector) {
		t.Fatalf("expected ErrInvalidVector, got %v", err)
	}
}
