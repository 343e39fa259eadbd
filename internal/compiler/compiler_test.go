package compiler_test

import (
	"errors"
	"strings"
	"testing"

	"artidicia/internal/compiler"
	"artidicia/internal/composition"
	"artidicia/internal/frames"
	"artidicia/internal/prompts"
	"artidicia/internal/services"
)

func catalogMode(t *testing.T, key string) prompts.Mode {
	t.Helper()
	cat, err := prompts.Default()
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	mode, err := cat.Mode(key)
	if err != nil {
		t.Fatalf("mode %s: %v", key, err)
	}
	return mode
}

func mustLock(t *testing.T, raw string) *composition.IdentityLock {
	t.Helper()
	lock, err := composition.NewIdentityLock([]byte(raw))
	if err != nil {
		t.Fatalf("NewIdentityLock: %v", err)
	}
	return lock
}

func TestCompileIsDeterministic(t *testing.T) {
	mode := catalogMode(t, "alt_pov")
	a, b := frames.NewFrameID(), frames.NewFrameID()
	ctx := composition.New(a, b)
	ctx.Annotate(a, composition.ItemAnnotation{Weight: 1.5, Focus: composition.FocusFace})
	ctx.Identity = mustLock(t, `{"face":{"shape":"oval"}}`)
	ctx.UseIdentity = true
	ctx.Looks = []string{"3", "Latex Noir"}
	ctx.Override = "Use warm light."

	first, err := compiler.CompileText(mode.Template, mode, ctx)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	for range 5 {
		next, err := compiler.CompileText(mode.Template, mode, ctx)
		if err != nil {
			t.Fatalf("compile: %v", err)
		}
		if next != first {
			t.Fatalf("output changed between identical runs")
		}
	}
}

func TestCompileLookFidelityThirtyPreservesOutfit(t *testing.T) {
	mode := catalogMode(t, "alt_pov")
	ctx := composition.New(frames.NewFrameID())
	ctx.Fidelity = composition.FidelitySpec{Look: 30, Style: 50}

	res, err := compiler.Compile(mode.Template, mode, ctx)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if !strings.Contains(res.Text, "PRESERVE SOURCE OUTFIT") {
		t.Fatalf("expected preserve directive in output")
	}
	if strings.Contains(res.Text, "FULL TRANSFORMATION ALLOWED") {
		t.Fatalf("unexpected transformation directive in output")
	}
	if !res.Applied(compiler.StageFidelity) {
		t.Fatalf("fidelity stage should apply to alt_pov")
	}
}

func TestCompileSkipsFidelityForPlainModes(t *testing.T) {
	mode := catalogMode(t, "single_image_reproduction")
	res, err := compiler.Compile(mode.Template, mode, composition.New(frames.NewFrameID()))
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if res.Applied(compiler.StageFidelity) || strings.Contains(res.Text, "LOOK FIDELITY") {
		t.Fatalf("fidelity directives should be absent: %q", res.Text)
	}
	if len(res.Trace) != len(compiler.Stages) {
		t.Fatalf("expected %d trace entries, got %d", len(compiler.Stages), len(res.Trace))
	}
	for i, tr := range res.Trace {
		if tr.Stage != compiler.Stages[i] {
			t.Fatalf("trace[%d] = %s, want %s", i, tr.Stage, compiler.Stages[i])
		}
	}
}

func TestCompileIdentityJSONAppearsOnce(t *testing.T) {
	mode := catalogMode(t, "biometric_complete")
	ctx := composition.New(frames.NewFrameID())
	lock := mustLock(t, `{"face":{"shape":"heart","eyes":"green"},"hair":{"color":"auburn"}}`)
	ctx.Identity = lock
	ctx.UseIdentity = true
	ctx.Override = "Reference data:\n" + lock.String()

	res, err := compiler.Compile(mode.Template, mode, ctx)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if got := strings.Count(res.Text, lock.String()); got != 1 {
		t.Fatalf("identity payload appears %d times", got)
	}
	if strings.Contains(res.Text, "PART 1: IDENTITY DATA") {
		t.Fatalf("identity request section should be stripped")
	}
	if strings.Contains(res.Text, "OUTPUT ORDER") {
		t.Fatalf("output order notice should be stripped")
	}
	if !strings.Contains(res.Text, "Unified Prompt") {
		t.Fatalf("reproduction section should remain")
	}
	if !strings.HasPrefix(res.Text, "═") {
		t.Fatalf("identity lock should lead the output")
	}
}

func TestCompileIdentityDisabledLeavesTemplate(t *testing.T) {
	mode := catalogMode(t, "biometric_complete")
	ctx := composition.New(frames.NewFrameID())
	ctx.Identity = mustLock(t, `{"face":{}}`)

	res, err := compiler.Compile(mode.Template, mode, ctx)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if res.Applied(compiler.StageIdentity) {
		t.Fatalf("identity stage should be skipped when not in use")
	}
	if !strings.Contains(res.Text, "PART 1: IDENTITY DATA") {
		t.Fatalf("template should be intact")
	}
}

func TestCompileFusionAnnotations(t *testing.T) {
	mode := catalogMode(t, "qwen_weighted_fusion")
	a, b := frames.NewFrameID(), frames.NewFrameID()
	ctx := composition.New(a, b)
	ctx.Annotate(a, composition.ItemAnnotation{Weight: 1.5, Focus: composition.FocusFace})
	ctx.Annotate(b, composition.ItemAnnotation{Weight: 0.8, Focus: composition.FocusBackground})

	res, err := compiler.Compile(mode.Template, mode, ctx)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	for _, want := range []string{
		"Image 1: weight=1.5, focus=Face (STRICTLY EXTRACT FACE GEOMETRY",
		"Image 2: weight=0.8, focus=Background (STRICTLY EXTRACT ENVIRONMENT. IGNORE SUBJECT)",
		"FUSION PRIORITY PROTOCOL",
		"OVERRIDES numeric weights",
		"DO NOT use the Face image for body or outfit description",
	} {
		if !strings.Contains(res.Text, want) {
			t.Fatalf("missing %q in %q", want, res.Text)
		}
	}
	if strings.Index(res.Text, "Image 1:") > strings.Index(res.Text, "Fuse the provided images") {
		t.Fatalf("annotations should precede the template body")
	}
}

func TestCompileFusionPriorityOverridesWeights(t *testing.T) {
	mode := catalogMode(t, "qwen_weighted_fusion")
	a, b := frames.NewFrameID(), frames.NewFrameID()
	ctx := composition.New(a, b)
	ctx.Annotate(a, composition.ItemAnnotation{Weight: 0.25, Focus: composition.FocusFace})
	ctx.Annotate(b, composition.ItemAnnotation{Weight: 1.25, Focus: composition.FocusClothing})

	text, err := compiler.CompileText(mode.Template, mode, ctx)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	for _, want := range []string{
		"Image 1: weight=0.25, focus=Face",
		"Image 2: weight=1.25, focus=Clothing",
		"FACE/HEAD/HAIR: use ONLY the image focused on Face",
		"OVERRIDES numeric weights",
		"DO NOT use the Face image for body or outfit description",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("missing %q in %q", want, text)
		}
	}
}

func TestCompileFusionWholeWeights(t *testing.T) {
	mode := catalogMode(t, "qwen_weighted_fusion")
	a, b := frames.NewFrameID(), frames.NewFrameID()
	ctx := composition.New(a, b)
	ctx.Annotate(a, composition.ItemAnnotation{Weight: 1, Focus: composition.FocusAll})
	ctx.Annotate(b, composition.ItemAnnotation{Weight: 2, Focus: composition.FocusPose})

	text, err := compiler.CompileText(mode.Template, mode, ctx)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if !strings.Contains(text, "Image 1: weight=1.0,") || !strings.Contains(text, "Image 2: weight=2.0,") {
		t.Fatalf("expected one decimal on whole weights, got %q", text)
	}
}

func TestCompileFusionNeedsTwoFrames(t *testing.T) {
	mode := catalogMode(t, "qwen_weighted_fusion")
	res, err := compiler.Compile(mode.Template, mode, composition.New(frames.NewFrameID()))
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if res.Applied(compiler.StageFusion) || strings.Contains(res.Text, "Image 1:") {
		t.Fatalf("fusion block should be absent for a single frame")
	}
}

func TestCompileLookRestriction(t *testing.T) {
	mode := catalogMode(t, "alt_pov")
	ctx := composition.New(frames.NewFrameID())
	ctx.Looks = []string{"3", "1. Latex Noir (Low Angle)"}

	text, err := compiler.CompileText(mode.Template, mode, ctx)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	want := "You MUST generate ONLY the following looks: 3. Industrial Abyss (Worm's Eye), 1. Latex Noir (Low Angle)"
	if !strings.Contains(text, want) {
		t.Fatalf("missing restriction %q", want)
	}

	ctx.Looks = []string{"Nonexistent"}
	if _, err := compiler.CompileText(mode.Template, mode, ctx); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown look, got %v", err)
	}
}

func TestCompileOverrideIsLast(t *testing.T) {
	mode := catalogMode(t, "alt_pov")
	ctx := composition.New(frames.NewFrameID())
	ctx.Looks = []string{"7"}
	ctx.Override = "  Make it rain.  "

	text, err := compiler.CompileText(mode.Template, mode, ctx)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	want := "⚠️ **IMPORTANT USER OVERRIDE / CUSTOM INSTRUCTION:**\nMake it rain.\n(This instruction takes PRIORITY over all previous instructions.)\n"
	if !strings.HasSuffix(text, want) {
		t.Fatalf("override should close the output, got tail %q", text[max(0, len(text)-200):])
	}
	if strings.Index(text, "CRITICAL OVERRIDE - MANDATORY") > strings.Index(text, "LOOK FIDELITY") {
		t.Fatalf("look restriction should precede fidelity directives")
	}
}

func TestCompileRendersStyle(t *testing.T) {
	mode := catalogMode(t, "style_transfer_pro")
	ctx := composition.New(frames.NewFrameID())
	ctx.Style = "Film Noir"

	text, err := compiler.CompileText(mode.Template, mode, ctx)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if !strings.Contains(text, "in the style of **Film Noir**") || strings.Contains(text, "{{") {
		t.Fatalf("style not substituted: %q", text)
	}
}

func TestCompileRenderFallsBackOnUnparsableTemplate(t *testing.T) {
	mode := prompts.Mode{Key: "custom"}
	ctx := composition.New(frames.NewFrameID())
	ctx.Style = "Vaporwave"

	res, err := compiler.Compile("Style {{ style }} and {{ .Broken", mode, ctx)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if !strings.Contains(res.Text, "Style Vaporwave and {{ .Broken") {
		t.Fatalf("unexpected fallback render: %q", res.Text)
	}
}

func TestCompileRejectsInvalidContext(t *testing.T) {
	mode := catalogMode(t, "alt_pov")
	ctx := composition.New(frames.NewFrameID())
	ctx.Fidelity.Look = 140
	if _, err := compiler.Compile(mode.Template, mode, ctx); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}
