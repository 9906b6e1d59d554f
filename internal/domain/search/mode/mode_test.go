package mode

import "testing"

func TestIsValid(t *testing.T) {
	for _, m := range []Mode{Auto, Tag, Text} {
		if !m.IsValid() {
			t.Errorf("%q should be valid", m)
		}
	}
	for _, m := range []Mode{"", "hybrid", "TEXT"} {
		if m.IsValid() {
			t.Errorf("%q should be invalid", m)
		}
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		m    Mode
		text bool
		want Mode
	}{
		{Auto, true, Text},
		{Auto, false, Tag},
		{Tag, true, Tag},
		{Text, false, Text},
	}
	for _, tc := range tests {
		if got := tc.m.Resolve(tc.text); got != tc.want {
			t.Errorf("%q.Resolve(%v) = %q, want %q", tc.m, tc.text, got, tc.want)
		}
	}
}
