package compiler

import (
	"strings"

	"artidicia/internal/composition"
	"artidicia/internal/prompts"
)

// Stage names one compilation step.
type Stage string

const (
	StageRender   Stage = "render"
	StageIdentity Stage = "identity_lock"
	StageFusion   Stage = "fusion"
	StageLooks    Stage = "look_restriction"
	StageFidelity Stage = "fidelity"
	StageOverride Stage = "override"
)

// Stages lists every stage in execution order.
var Stages = []Stage{StageRender, StageIdentity, StageFusion, StageLooks, StageFidelity, StageOverride}

// StageTrace records whether a stage contributed and why.
type StageTrace struct {
	Stage   Stage
	Applied bool
	Detail  string
}

// Result is the compiled instruction and its per-stage trace.
type Result struct {
	Text  string
	Trace []StageTrace
}

// Applied reports whether stage contributed to the output.
func (r Result) Applied(stage Stage) bool {
	for _, t := range r.Trace {
		if t.Stage == stage {
			return t.Applied
		}
	}
	return false
}

type assembly struct {
	preamble []string
	body     string
	tail     []string
	trace    []StageTrace
}

func (a *assembly) record(stage Stage, applied bool, detail string) {
	a.trace = append(a.trace, StageTrace{Stage: stage, Applied: applied, Detail: detail})
}

func (a *assembly) text() string {
	parts := make([]string, 0, len(a.preamble)+len(a.tail)+1)
	for _, p := range a.preamble {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if body := strings.TrimSpace(a.body); body != "" {
		parts = append(parts, body)
	}
	for _, p := range a.tail {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "\n\n") + "\n"
}

// Compile produces the instruction text for template under mode and ctx.
// Identical inputs always yield byte-identical output.
func Compile(template string, mode prompts.Mode, ctx composition.Context) (Result, error) {
	if err := ctx.Validate(); err != nil {
		return Result{}, err
	}
	a := &assembly{}

	body, detail := render(template, mode, ctx)
	a.body = body
	a.record(StageRender, true, detail)

	applyIdentity(a, ctx)
	applyFusion(a, mode, ctx)
	if err := applyLooks(a, mode, ctx); err != nil {
		return Result{}, err
	}
	applyFidelity(a, mode, ctx)
	applyOverride(a, ctx)

	text := a.text()
	if ctx.IdentityActive() {
		text = dedupeIdentity(text, blockJSON(ctx.Identity))
	}
	return Result{Text: text, Trace: a.trace}, nil
}

// CompileText is Compile without the trace.
func CompileText(template string, mode prompts.Mode, ctx composition.Context) (string, error) {
	res, err := Compile(template, mode, ctx)
	if err != nil {
		return "", err
	}
	return res.Text, nil
}

func applyOverride(a *assembly, ctx composition.Context) {
	if !ctx.HasOverride() {
		a.record(StageOverride, false, "no custom override")
		return
	}
	a.tail = append(a.tail, "⚠️ **IMPORTANT USER OVERRIDE / CUSTOM INSTRUCTION:**\n"+
		strings.TrimSpace(ctx.Override)+
		"\n(This instruction takes PRIORITY over all previous instructions.)")
	a.record(StageOverride, true, "")
}
