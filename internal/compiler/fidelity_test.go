package compiler_test

import (
	"testing"

	"artidicia/internal/compiler"
)

func TestLookBandBoundaries(t *testing.T) {
	cases := map[int]string{
		-5: "preserve", 0: "preserve", 45: "preserve",
		46: "blend", 75: "blend",
		76: "look-dominant", 85: "look-dominant",
		86: "transform", 100: "transform", 130: "transform",
	}
	for v, want := range cases {
		if got := compiler.LookBand(v).Name; got != want {
			t.Fatalf("LookBand(%d) = %s, want %s", v, got, want)
		}
	}
}

func TestStyleBandBoundaries(t *testing.T) {
	cases := map[int]string{
		0: "modernize", 39: "modernize",
		40: "balanced", 80: "balanced",
		81: "preserve-texture", 100: "preserve-texture",
	}
	for v, want := range cases {
		if got := compiler.StyleBand(v).Name; got != want {
			t.Fatalf("StyleBand(%d) = %s, want %s", v, got, want)
		}
	}
}

func TestBandsCoverFullRange(t *testing.T) {
	for _, bands := range [][]compiler.Band{compiler.LookBands, compiler.StyleBands} {
		prev := -1
		for _, b := range bands {
			if b.Max <= prev {
				t.Fatalf("bands not ascending at %s", b.Name)
			}
			prev = b.Max
		}
		if prev != 100 {
			t.Fatalf("last band ends at %d", prev)
		}
	}
}
