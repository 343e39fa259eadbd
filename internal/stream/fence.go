package stream

import (
	"strconv"
	"strings"
)

type fence struct {
	lang   string
	title  string
	body   string
	closed bool
}

func (f fence) isJSON() bool {
	return strings.EqualFold(f.lang, "json")
}

// headerTitle returns the title of a "## " (or deeper) markdown header.
func headerTitle(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "##") {
		return "", false
	}
	title := strings.TrimSpace(strings.TrimLeft(trimmed, "#"))
	return title, title != ""
}

// scanFences walks text line by line and records every fenced block with
// the most recent header seen since the previous block.
func scanFences(text string) []fence {
	var (
		out     []fence
		pending string
		current *fence
		body    []string
	)
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if current != nil {
			if strings.HasPrefix(trimmed, "```") && strings.TrimSpace(strings.TrimLeft(trimmed, "`")) == "" {
				current.body = strings.Join(body, "\n")
				current.closed = true
				out = append(out, *current)
				current, body = nil, nil
				continue
			}
			body = append(body, line)
			continue
		}
		if strings.HasPrefix(trimmed, "```") {
			current = &fence{lang: strings.TrimSpace(strings.TrimLeft(trimmed, "`")), title: pending}
			pending = ""
			continue
		}
		if title, ok := headerTitle(line); ok {
			pending = title
		}
	}
	if current != nil {
		current.body = strings.Join(body, "\n")
		out = append(out, *current)
	}
	return out
}

// blocksFrom turns fences into prompt blocks. JSON fences are data, not
// prompts, and are skipped. Blocks without a preceding header are named
// by position.
func blocksFrom(fences []fence) []Block {
	blocks := make([]Block, 0, len(fences))
	for _, f := range fences {
		if f.isJSON() {
			continue
		}
		content := strings.TrimSpace(f.body)
		if content == "" {
			continue
		}
		blocks = append(blocks, Block{Title: f.title, Content: content})
	}
	for i := range blocks {
		if blocks[i].Title == "" {
			blocks[i].Title = "Prompt " + strconv.Itoa(i+1)
		}
	}
	return blocks
}
