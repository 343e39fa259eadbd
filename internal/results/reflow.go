package results

import "strings"

// SectionTags are the bracketed section openers Reflow separates.
var SectionTags = []string{
	"[SUBJECT", "[MAIN SUBJECT", "[MODEL SPECS",
	"[FASHION", "[FETISH FASHION", "[EXPERIMENTAL FASHION",
	"[POSE", "[POV", "[CONTEXT",
	"[LIGHTING", "[VISUAL DETAILS", "[TECHNICAL",
	"[STYLE", "[AESTHETIC", "[ENVIRONMENT", "[TYPOGRAPHY",
	"[LOOK DESCRIPTION]",
}

func tagAt(s string, i int) bool {
	for _, tag := range SectionTags {
		if len(s)-i >= len(tag) && strings.EqualFold(s[i:i+len(tag)], tag) {
			return true
		}
	}
	return false
}

// Reflow starts every inline section tag on a new paragraph. Tags already
// at the start of a line are left alone, so Reflow is idempotent.
func Reflow(content string) string {
	var b strings.Builder
	b.Grow(len(content) + 32)
	last := 0
	for i := 1; i < len(content); i++ {
		if content[i] != '[' || content[i-1] == '\n' || !tagAt(content, i) {
			continue
		}
		head := strings.TrimRight(content[last:i], " \t")
		if head == "" || strings.HasSuffix(head, "\n") {
			continue
		}
		b.WriteString(head)
		b.WriteString("\n\n")
		last = i
	}
	b.WriteString(content[last:])
	return b.String()
}
