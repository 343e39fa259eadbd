package compiler

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"
	"text/template"

	"artidicia/internal/composition"
	"artidicia/internal/prompts"
)

// bareVariable matches jinja-style "{{ style }}" placeholders that lack the
// leading dot text/template expects.
var bareVariable = regexp.MustCompile(`\{\{-?\s*([A-Za-z_][A-Za-z0-9_]*)\s*-?\}\}`)

func templateData(mode prompts.Mode, ctx composition.Context) map[string]string {
	frames := strconv.Itoa(len(ctx.Selection))
	return map[string]string{
		"style": ctx.Style, "Style": ctx.Style,
		"mode": mode.Key, "Mode": mode.Key,
		"frames": frames, "Frames": frames,
	}
}

// render substitutes template variables. Templates text/template cannot
// parse fall back to plain placeholder replacement.
func render(src string, mode prompts.Mode, ctx composition.Context) (string, string) {
	if !strings.Contains(src, "{{") {
		return src, "no placeholders"
	}
	data := templateData(mode, ctx)
	normalised := bareVariable.ReplaceAllStringFunc(src, func(m string) string {
		name := bareVariable.FindStringSubmatch(m)[1]
		if _, known := data[name]; !known {
			return m
		}
		return "{{ ." + name + " }}"
	})
	tmpl, err := template.New(mode.Key).Option("missingkey=zero").Parse(normalised)
	if err == nil {
		var buf bytes.Buffer
		if err = tmpl.Execute(&buf, data); err == nil {
			return buf.String(), "rendered"
		}
	}
	out := bareVariable.ReplaceAllStringFunc(src, func(m string) string {
		name := bareVariable.FindStringSubmatch(m)[1]
		if v, ok := data[name]; ok {
			return v
		}
		return m
	})
	return out, "template syntax not recognised; placeholders replaced literally"
}
