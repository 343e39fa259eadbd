package results_test

import (
	"testing"

	"artidicia/internal/prompts"
	"artidicia/internal/results"
)

func TestSplitLooks(t *testing.T) {
	content := "Shared identity notes.\n\n**LOOK 3: Industrial Abyss (Worm's Eye)**\n[SUBJECT] steel\n\n**LOOK 7: Submerged (Underwater)**\n[SUBJECT] water\nLOOK 21: Lingerie Riot\nlast"
	split, ok := results.SplitLooks(content)
	if !ok {
		t.Fatalf("expected markers")
	}
	if split.Intro != "Shared identity notes." {
		t.Fatalf("intro = %q", split.Intro)
	}
	if len(split.Looks) != 3 {
		t.Fatalf("looks = %+v", split.Looks)
	}
	first := split.Looks[0]
	if first.Number != 3 || first.Title != "LOOK 3: Industrial Abyss (Worm's Eye)" {
		t.Fatalf("first look = %+v", first)
	}
	if first.Content != "**LOOK 3: Industrial Abyss (Worm's Eye)**\n[SUBJECT] steel" {
		t.Fatalf("first content = %q", first.Content)
	}
	last, ok := split.Look(21)
	if !ok || last.Content != "LOOK 21: Lingerie Riot\nlast" {
		t.Fatalf("last look = %+v", last)
	}
}

func TestSplitLooksWithoutMarkers(t *testing.T) {
	if _, ok := results.SplitLooks("LOOK here: no number, LOOK 4 without colon"); ok {
		t.Fatalf("no valid markers expected")
	}
}

func TestGroupLooks(t *testing.T) {
	split := results.LookSplit{Looks: []results.LookSegment{{Number: 2}, {Number: 7}, {Number: 3}, {Number: 40}}}
	groups := []prompts.LookGroup{
		{Name: "Dark", From: 1, To: 5},
		{Name: "Tech", From: 6, To: 10},
		{Name: "Color", From: 11, To: 15},
	}
	tabs := results.GroupLooks(split, groups)
	if len(tabs) != 3 {
		t.Fatalf("tabs = %+v", tabs)
	}
	if tabs[0].Name != "Dark" || len(tabs[0].Looks) != 2 || tabs[0].Looks[1].Number != 3 {
		t.Fatalf("dark tab = %+v", tabs[0])
	}
	if tabs[1].Name != "Tech" || tabs[2].Name != results.OtherTab || tabs[2].Looks[0].Number != 40 {
		t.Fatalf("tabs = %+v", tabs)
	}
}
