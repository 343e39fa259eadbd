package compiler

import (
	"fmt"

	"artidicia/internal/composition"
	"artidicia/internal/prompts"
)

// Band is one fidelity range. A value v falls in the first band with v <= Max.
type Band struct {
	Max       int
	Name      string
	Directive string
}

// LookBands govern how far generated looks may drift from the source
// outfit and setting. Higher values allow more transformation.
var LookBands = []Band{
	{Max: 45, Name: "preserve", Directive: "**PRESERVE SOURCE OUTFIT.** Keep the original clothing and environment. Each look changes only camera angle, lighting, and mood."},
	{Max: 75, Name: "blend", Directive: "**BLEND.** Keep the core of the source outfit and add accessories, textures, or palette cues from the requested look."},
	{Max: 85, Name: "look-dominant", Directive: "**LOOK DOMINANT.** Replace the outfit with the requested look's wardrobe. Keep only the source silhouette and setting cues."},
	{Max: 100, Name: "transform", Directive: "**FULL TRANSFORMATION ALLOWED.** Change outfit and scenario completely to match the requested look. IGNORE the original clothes."},
}

// StyleBands govern how much of the source texture survives.
var StyleBands = []Band{
	{Max: 39, Name: "modernize", Directive: "MODERNIZE the image. Remove noise, sharpen details, and use a clean 4K digital aesthetic."},
	{Max: 80, Name: "balanced", Directive: "Balance source texture with a clean finish. Keep the character of the light but reduce heavy noise."},
	{Max: 100, Name: "preserve-texture", Directive: "PRESERVE all film grain, noise, blur, and lighting imperfections from the source. Do NOT clean it up."},
}

func bandFor(bands []Band, v int) Band {
	v = min(max(v, 0), 100)
	for _, b := range bands {
		if v <= b.Max {
			return b
		}
	}
	return bands[len(bands)-1]
}

// LookBand returns the look band containing v (clamped to [0,100]).
func LookBand(v int) Band { return bandFor(LookBands, v) }

// StyleBand returns the style band containing v (clamped to [0,100]).
func StyleBand(v int) Band { return bandFor(StyleBands, v) }

func applyFidelity(a *assembly, mode prompts.Mode, ctx composition.Context) {
	if !mode.FidelityAware {
		a.record(StageFidelity, false, "mode is not fidelity-aware")
		return
	}
	f := ctx.Fidelity.Clamped()
	look := LookBand(f.Look)
	style := StyleBand(f.Style)
	a.tail = append(a.tail,
		fmt.Sprintf("🎚️ **LOOK FIDELITY: %d%%** (%s)\n%s", f.Look, look.Name, look.Directive),
		fmt.Sprintf("🎞️ **AESTHETIC/TEXTURE FIDELITY: %d%%** (%s)\n%s", f.Style, style.Name, style.Directive),
	)
	a.record(StageFidelity, true, fmt.Sprintf("look=%s style=%s", look.Name, style.Name))
}
