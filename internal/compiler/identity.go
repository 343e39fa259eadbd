package compiler

import (
	"fmt"
	"regexp"
	"strings"

	"artidicia/internal/composition"
)

const (
	identityBeginMarker = "<!-- identity:begin -->"
	identityEndMarker   = "<!-- identity:end -->"
	rule                = "═══════════════════════════════════════════════════════════════"
)

var excessBlankLines = regexp.MustCompile(`\n{3,}`)

func blockJSON(lock *composition.IdentityLock) string {
	return strings.TrimSpace(lock.String())
}

func identityBlock(lock *composition.IdentityLock) string {
	var b strings.Builder
	b.WriteString(rule + "\n")
	b.WriteString("⚠️ **CRITICAL INSTRUCTION: CHARACTER CONSISTENCY LOCK** ⚠️\n")
	b.WriteString(rule + "\n\n")
	b.WriteString("The subject's identity has already been extracted. Treat the data below as the only\n")
	b.WriteString("source of truth for face geometry, skin, hair, and body proportions.\n\n")
	b.WriteString("**🧬 MASTER IDENTITY DATA (Immutable):**\n")
	b.WriteString("```json\n")
	b.WriteString(blockJSON(lock))
	b.WriteString("\n```\n\n")
	b.WriteString("1. Apply these traits to every prompt you write.\n")
	b.WriteString("2. Do not re-derive identity from the images.\n")
	b.WriteString("3. **DO NOT** output the JSON block again. It is provided above as reference only.\n")
	b.WriteString(rule)
	return b.String()
}

func applyIdentity(a *assembly, ctx composition.Context) {
	switch {
	case ctx.Identity == nil:
		a.record(StageIdentity, false, "no identity lock")
		return
	case !ctx.UseIdentity:
		a.record(StageIdentity, false, "identity lock disabled")
		return
	}
	stripped, removed := StripIdentityRequests(a.body)
	a.body = stripped
	a.preamble = append(a.preamble, identityBlock(ctx.Identity))
	a.record(StageIdentity, true, fmt.Sprintf("removed %d identity request region(s)", removed))
}

// StripIdentityRequests removes template regions that ask the model to
// produce identity data. Recognised regions:
//
//   - text between identity begin/end comment markers
//   - a heading section whose body holds a ```json fence
//   - a paragraph opening with a CRITICAL OUTPUT ORDER notice
//
// Text without these markers is returned unchanged.
func StripIdentityRequests(text string) (string, int) {
	lines := strings.Split(text, "\n")
	drop := make([]bool, len(lines))
	removed := 0

	removed += markMarkerRegions(lines, drop)
	removed += markJSONSections(lines, drop)
	removed += markOrderNotices(lines, drop)

	if removed == 0 {
		return text, 0
	}
	kept := make([]string, 0, len(lines))
	for i, line := range lines {
		if !drop[i] {
			kept = append(kept, line)
		}
	}
	out := excessBlankLines.ReplaceAllString(strings.Join(kept, "\n"), "\n\n")
	return strings.TrimLeft(out, "\n"), removed
}

func markMarkerRegions(lines []string, drop []bool) int {
	count := 0
	start := -1
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case start < 0 && trimmed == identityBeginMarker:
			start = i
		case start >= 0 && trimmed == identityEndMarker:
			for j := start; j <= i; j++ {
				drop[j] = true
			}
			count++
			start = -1
		}
	}
	return count
}

// headingLevel returns the markdown heading depth of line, or 0.
func headingLevel(line string) int {
	trimmed := strings.TrimLeft(line, " ")
	level := 0
	for level < len(trimmed) && trimmed[level] == '#' {
		level++
	}
	if level == 0 || level > 6 || level == len(trimmed) || trimmed[level] != ' ' {
		return 0
	}
	return level
}

func isFence(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "```")
}

func isJSONFence(line string) bool {
	return strings.EqualFold(strings.TrimSpace(line), "```json")
}

func markJSONSections(lines []string, drop []bool) int {
	type section struct {
		start, level int
		hasJSON      bool
	}
	count := 0
	var stack []section
	inFence := false

	pop := func(end int) {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if top.hasJSON {
			for j := top.start; j < end; j++ {
				drop[j] = true
			}
			count++
		}
	}

	for i, line := range lines {
		if isFence(line) {
			if !inFence && len(stack) > 0 && isJSONFence(line) {
				stack[len(stack)-1].hasJSON = true
			}
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		level := headingLevel(line)
		if level == 0 {
			continue
		}
		for len(stack) > 0 && stack[len(stack)-1].level >= level {
			pop(i)
		}
		stack = append(stack, section{start: i, level: level})
	}
	for len(stack) > 0 {
		pop(len(lines))
	}
	return count
}

func isOrderNotice(line string) bool {
	upper := strings.ToUpper(line)
	return strings.Contains(upper, "CRITICAL") && strings.Contains(upper, "OUTPUT ORDER")
}

func markOrderNotices(lines []string, drop []bool) int {
	count := 0
	inFence := false
	for i := 0; i < len(lines); i++ {
		if isFence(lines[i]) {
			inFence = !inFence
			continue
		}
		if inFence || drop[i] || !isOrderNotice(lines[i]) {
			continue
		}
		j := i
		for j < len(lines) && strings.TrimSpace(lines[j]) != "" {
			drop[j] = true
			j++
		}
		count++
		i = j
	}
	return count
}

// dedupeIdentity keeps only the first verbatim occurrence of payload.
func dedupeIdentity(text, payload string) string {
	if payload == "" {
		return text
	}
	first := strings.Index(text, payload)
	if first < 0 {
		return text
	}
	end := first + len(payload)
	return text[:end] + strings.ReplaceAll(text[end:], payload, "")
}
