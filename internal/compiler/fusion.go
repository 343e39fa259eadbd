package compiler

import (
	"fmt"
	"strconv"
	"strings"

	"artidicia/internal/composition"
	"artidicia/internal/prompts"
)

// FocusDirectives maps each focus area to the extraction directive shown
// next to an image's weight. Areas without an entry use "Focus on <label>".
var FocusDirectives = map[composition.Focus]string{
	composition.FocusAll:        "Extract EVERYTHING: Face, Pose, Clothing, Background",
	composition.FocusFace:       "STRICTLY EXTRACT FACE GEOMETRY & IDENTITY. IGNORE BACKGROUND. STOP ANALYSIS BELOW THE NECK. EXTRACT PRECISE HAIR STYLE & TEXTURE",
	composition.FocusPose:       "STRICTLY EXTRACT POSE & BODY SHAPE. IGNORE FACE IDENTITY. IGNORE CLOTHING TEXTURE/DETAILS",
	composition.FocusClothing:   "STRICTLY EXTRACT OUTFIT DETAILS/FABRIC. IGNORE FACE. IGNORE POSE. **IGNORE HAIR** - Hair belongs to Face Source!",
	composition.FocusBackground: "STRICTLY EXTRACT ENVIRONMENT. IGNORE SUBJECT",
}

// Directive returns the extraction directive for focus.
func Directive(focus composition.Focus) string {
	if d, ok := FocusDirectives[focus]; ok {
		return d
	}
	return "Focus on " + focus.Label()
}

const priorityProtocol = `**⚖️ FUSION PRIORITY PROTOCOL (STRICT IDENTITY):**
1. FACE/HEAD/HAIR: use ONLY the image focused on Face. This focus OVERRIDES numeric weights, regardless of which image weighs more.
2. BODY/POSE/CLOTHING: use ONLY images focused on Pose or Clothing. DO NOT use the Face image for body or outfit description unless an image is set to All.
3. Background images contribute ONLY the environment.
4. Weights rank images only within the same focus area.`

// formatWeight prints the shortest exact form of w, keeping one decimal for
// whole numbers.
func formatWeight(w float64) string {
	s := strconv.FormatFloat(w, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// annotationLine renders one image's weight and focus.
func annotationLine(n int, a composition.ItemAnnotation) string {
	return fmt.Sprintf("Image %d: weight=%s, focus=%s (%s)", n, formatWeight(a.Weight), a.Focus, Directive(a.Focus))
}

func applyFusion(a *assembly, mode prompts.Mode, ctx composition.Context) {
	if !mode.Annotated() {
		a.record(StageFusion, false, "mode does not accept per-image annotations")
		return
	}
	if len(ctx.Selection) < 2 {
		a.record(StageFusion, false, "fewer than two frames selected")
		return
	}
	var b strings.Builder
	b.WriteString("**🎛️ USER ASSIGNED WEIGHTS & FOCUS:**\n")
	for i, ann := range ctx.AnnotationsInOrder() {
		b.WriteString("- ")
		b.WriteString(annotationLine(i+1, ann))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(priorityProtocol)
	a.preamble = append(a.preamble, b.String())
	a.record(StageFusion, true, fmt.Sprintf("%d image annotation(s)", len(ctx.Selection)))
}
