package results_test

import (
	"testing"

	"artidicia/internal/results"
)

func TestReflow(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"[SUBJECT] a woman [POSE] standing [lighting] soft", "[SUBJECT] a woman\n\n[POSE] standing\n\n[lighting] soft"},
		{"[SUBJECT] a\n[POSE] b", "[SUBJECT] a\n[POSE] b"},
		{"see [note] and [STYLE] noir", "see [note] and\n\n[STYLE] noir"},
		{"plain text", "plain text"},
	}
	for _, tc := range cases {
		got := results.Reflow(tc.in)
		if got != tc.want {
			t.Fatalf("Reflow(%q) = %q, want %q", tc.in, got, tc.want)
		}
		if again := results.Reflow(got); again != got {
			t.Fatalf("Reflow not idempotent: %q -> %q", got, again)
		}
	}
}
