package results_test

import (
	"testing"

	"artidicia/internal/results"
	"artidicia/internal/stream"
)

func titles(cs []results.Classified) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Block.Title
	}
	return out
}

func TestClassifyOrdersFinalFirst(t *testing.T) {
	text := "## 🎯 Unified Prompt\n```\nA\n```\n## 🧠 Reasoning Layer\n```\nB\n```\n## 🚀 Final Variant\n```\nC\n```\n"
	parsed := stream.Parse(text, stream.Greedy)
	got := results.Classify(parsed.Blocks)

	want := []string{"🎯 Unified Prompt", "🚀 Final Variant", "🧠 Reasoning Layer"}
	for i, title := range titles(got) {
		if title != want[i] {
			t.Fatalf("order = %v, want %v", titles(got), want)
		}
	}
	if !got[0].Expanded || !got[1].Expanded || got[2].Expanded {
		t.Fatalf("expanded = %v %v %v", got[0].Expanded, got[1].Expanded, got[2].Expanded)
	}
}

func TestClassifyIsIdempotent(t *testing.T) {
	blocks := []stream.Block{
		{Title: "JSON Layer"}, {Title: "Look Catalog"}, {Title: "Fusion Logic"},
		{Title: "Notes"}, {Title: "Deep Analysis"}, {Title: "Reproduction"},
	}
	first := results.Classify(blocks)
	second := results.Classify(results.Blocks(first))
	a, b := titles(first), titles(second)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("reclassification changed order: %v -> %v", a, b)
		}
	}
	want := []string{"Look Catalog", "Notes", "Reproduction", "JSON Layer", "Fusion Logic", "Deep Analysis"}
	for i := range want {
		if a[i] != want[i] {
			t.Fatalf("order = %v, want %v", a, want)
		}
	}
}

func TestClassifySmallSetsExpandEverything(t *testing.T) {
	got := results.Classify([]stream.Block{{Title: "Reasoning Layer"}, {Title: "Fusion Logic"}})
	for _, c := range got {
		if c.Final || !c.Expanded {
			t.Fatalf("block %q: final=%v expanded=%v", c.Block.Title, c.Final, c.Expanded)
		}
	}
}

func TestIsFinal(t *testing.T) {
	cases := map[string]bool{
		"🎯 Unified Prompt":      true,
		"Prompt Analysis":       true,
		"🧠 Reasoning Layer":     false,
		"Biometric JSON":        false,
		"Untitled Observations": true,
	}
	for title, want := range cases {
		if got := results.IsFinal(title); got != want {
			t.Fatalf("IsFinal(%q) = %v, want %v", title, got, want)
		}
	}
}

func TestClassifyAttachesLookSplit(t *testing.T) {
	got := results.Classify([]stream.Block{{Title: "Alt POV Looks", Content: "intro\n**LOOK 1: A**\none\n**LOOK 2: B**\ntwo"}})
	if got[0].Looks == nil || len(got[0].Looks.Looks) != 2 {
		t.Fatalf("look split missing: %+v", got[0].Looks)
	}
}
