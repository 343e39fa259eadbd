package composition_test

import (
	"testing"

	"artidicia/internal/composition"
)

func TestParseFocus(t *testing.T) {
	tests := []struct {
		in   string
		want composition.Focus
	}{
		{"", composition.FocusAll},
		{"face", composition.FocusFace},
		{"Character/Face", composition.FocusFace},
		{"POSE", composition.FocusPose},
		{"Colors/Palette", composition.FocusColors},
		{"style", composition.FocusStyle},
	}
	for _, tc := range tests {
		got, err := composition.ParseFocus(tc.in)
		if err != nil || got != tc.want {
			t.Fatalf("ParseFocus(%q) = %v, %v; want %v", tc.in, got, err, tc.want)
		}
	}
	if _, err := composition.ParseFocus("elbow"); err == nil {
		t.Fatal("expected error for unknown focus")
	}
}

func TestFocusNames(t *testing.T) {
	if composition.FocusFace.String() != "Face" {
		t.Fatalf("unexpected short name %q", composition.FocusFace.String())
	}
	if composition.FocusBackground.Label() != "Background" || composition.FocusAll.Label() != "All Image" {
		t.Fatal("unexpected labels")
	}
	var f composition.Focus
	if err := f.UnmarshalText([]byte("clothing")); err != nil || f != composition.FocusClothing {
		t.Fatalf("UnmarshalText = %v, %v", f, err)
	}
	text, err := composition.FocusPose.MarshalText()
	if err != nil || string(text) != "pose" {
		t.Fatalf("MarshalText = %q, %v", text, err)
	}
}
