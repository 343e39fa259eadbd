package stream_test

import (
	"strings"
	"testing"

	"artidicia/internal/stream"
)

func TestEarlyDetectionThenGreedyFinalizationFails(t *testing.T) {
	p := stream.NewParser(stream.Options{MinLength: 10, DetectJSON: true})

	ev, err := p.Append(`prefix {"a":1}`)
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if ev == nil || ev.Raw != `{"a":1}` || ev.Data["a"] != float64(1) {
		t.Fatalf("expected early {\"a\":1}, got %+v", ev)
	}

	ev, err = p.Append(` suffix {"b":2}`)
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if ev != nil {
		t.Fatalf("early event fired twice: %+v", ev)
	}

	res, err := p.Finalize()
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if res.JSONData != nil {
		t.Fatalf("greedy span should not parse, got %v", res.JSONData)
	}
	if res.JSONError == "" {
		t.Fatalf("expected a json diagnostic")
	}
	if res.RawText != `prefix {"a":1} suffix {"b":2}` {
		t.Fatalf("raw text = %q", res.RawText)
	}
}

func TestBalancedFinalizationTakesFirstObject(t *testing.T) {
	res := stream.Parse(`prefix {"a":"}{"} suffix {"b":2}`, stream.Balanced)
	if res.JSONData == nil || res.JSONData["a"] != "}{" {
		t.Fatalf("balanced extraction = %v (%s)", res.JSONData, res.JSONError)
	}
}

func TestEarlyDetectionRespectsMinLength(t *testing.T) {
	p := stream.NewParser(stream.DefaultOptions())
	if ev, _ := p.Append(`{"a":1}`); ev != nil {
		t.Fatalf("short buffer should not trigger detection")
	}
	if ev, _ := p.Append(" and some more text"); ev == nil {
		t.Fatalf("expected detection once the buffer is long enough")
	}
}

func TestEarlyDetectionDisabled(t *testing.T) {
	p := stream.NewParser(stream.Options{DetectJSON: false})
	if ev, _ := p.Append(`here is {"face":{"shape":"oval"}} done`); ev != nil {
		t.Fatalf("detection should be disabled")
	}
	res, _ := p.Finalize()
	if res.JSONData == nil {
		t.Fatalf("finalization runs regardless of early detection")
	}
}

func TestEarlyDetectionFiresAtMostOnce(t *testing.T) {
	p := stream.NewParser(stream.Options{DetectJSON: true})
	text := `{"a":1} {"b":2} {"c":3} {"d":{"e":4}}`
	fired := 0
	for _, r := range text {
		ev, err := p.Append(string(r))
		if err != nil {
			t.Fatalf("append: %v", err)
		}
		if ev != nil {
			fired++
		}
	}
	if fired != 1 || !p.Emitted() {
		t.Fatalf("fired %d times", fired)
	}
}

func TestIncompleteJSONIsSilent(t *testing.T) {
	p := stream.NewParser(stream.Options{DetectJSON: true})
	for _, chunk := range []string{`Analysis: {"face": {"eyes": "green"}`, `, "hair": `} {
		if ev, err := p.Append(chunk); err != nil || ev != nil {
			t.Fatalf("unexpected event or error: %v %v", ev, err)
		}
	}
	ev, _ := p.Append(`"red"}`)
	if ev == nil || ev.Data["hair"] != "red" {
		t.Fatalf("expected full object once closed, got %+v", ev)
	}
}

func TestFinalizePrefersJSONFence(t *testing.T) {
	text := strings.Join([]string{
		"Some {stray} prose.",
		"```json",
		`{"face": {"shape": "oval"}}`,
		"```",
		"## 🎯 Unified Prompt",
		"```",
		"A woman in a red coat.",
		"```",
	}, "\n")
	res := stream.Parse(text, stream.Greedy)
	face, ok := res.JSONData["face"].(map[string]any)
	if !ok || face["shape"] != "oval" {
		t.Fatalf("json data = %v (%s)", res.JSONData, res.JSONError)
	}
	if len(res.Blocks) != 1 || res.Blocks[0].Title != "🎯 Unified Prompt" {
		t.Fatalf("blocks = %+v", res.Blocks)
	}
}

func TestFinalizeUntaggedFenceJSON(t *testing.T) {
	res := stream.Parse("```\n{\"x\": true}\n```\ntrailing }", stream.Greedy)
	if res.JSONData["x"] != true {
		t.Fatalf("json data = %v", res.JSONData)
	}
}

func TestFinalizeNoJSONIsNotAnError(t *testing.T) {
	res := stream.Parse("just words", stream.Greedy)
	if res.JSONData != nil || res.JSONError != "" || res.HasBlocks() {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestBlocksTitledAndNumbered(t *testing.T) {
	text := strings.Join([]string{
		"## 🎯 Unified Prompt",
		"intro",
		"```markdown",
		"[SUBJECT] A dancer",
		"## not a header inside a fence",
		"```",
		"```",
		"second block",
		"```",
		"### 🧠 Reasoning Layer",
		"```",
		"why",
		"```",
	}, "\n")
	res := stream.Parse(text, stream.Greedy)
	want := []stream.Block{
		{Title: "🎯 Unified Prompt", Content: "[SUBJECT] A dancer\n## not a header inside a fence"},
		{Title: "Prompt 2", Content: "second block"},
		{Title: "🧠 Reasoning Layer", Content: "why"},
	}
	if len(res.Blocks) != len(want) {
		t.Fatalf("blocks = %+v", res.Blocks)
	}
	for i := range want {
		if res.Blocks[i] != want[i] {
			t.Fatalf("block %d = %+v, want %+v", i, res.Blocks[i], want[i])
		}
	}
}

func TestBlocksFallbackNumbering(t *testing.T) {
	res := stream.Parse("```\none\n```\n\n```text\ntwo\n```", stream.Greedy)
	if len(res.Blocks) != 2 || res.Blocks[0].Title != "Prompt 1" || res.Blocks[1].Title != "Prompt 2" {
		t.Fatalf("blocks = %+v", res.Blocks)
	}
}

func TestUnterminatedFenceIsKept(t *testing.T) {
	res := stream.Parse("## 🚀 Final Variant\n```\ncut off mid", stream.Greedy)
	if len(res.Blocks) != 1 || res.Blocks[0].Content != "cut off mid" {
		t.Fatalf("blocks = %+v", res.Blocks)
	}
}

func TestCancelDiscardsState(t *testing.T) {
	p := stream.NewParser(stream.DefaultOptions())
	if _, err := p.Append("partial"); err != nil {
		t.Fatalf("append: %v", err)
	}
	p.Cancel()
	if _, err := p.Append("more"); err != stream.ErrCancelled {
		t.Fatalf("append after cancel: %v", err)
	}
	if _, err := p.Finalize(); err != stream.ErrCancelled {
		t.Fatalf("finalize after cancel: %v", err)
	}
	if p.Text() != "" {
		t.Fatalf("buffer should be discarded")
	}
}

func TestParseExtraction(t *testing.T) {
	if e, err := stream.ParseExtraction("Balanced"); err != nil || e != stream.Balanced {
		t.Fatalf("balanced: %v %v", e, err)
	}
	if e, err := stream.ParseExtraction(""); err != nil || e != stream.Greedy {
		t.Fatalf("default: %v %v", e, err)
	}
	if _, err := stream.ParseExtraction("lazy"); err == nil {
		t.Fatalf("expected error")
	}
}
