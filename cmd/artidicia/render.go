package main

import (
	"fmt"
	"io"
	"strings"

	"artidicia/internal/prompts"
	"artidicia/internal/results"
	"artidicia/internal/stream"
)

const (
	ansiBold  = "\033[1m"
	ansiDim   = "\033[2m"
	ansiReset = "\033[0m"
)

// resultView is the JSON shape printed by --json.
type resultView struct {
	SessionID string         `json:"session_id,omitempty"`
	Blocks    []blockView    `json:"blocks"`
	JSON      map[string]any `json:"json,omitempty"`
	JSONError string         `json:"json_error,omitempty"`
	Saved     int64          `json:"history_id,omitempty"`
	Exported  []string       `json:"exported,omitempty"`
}

type blockView struct {
	Title    string     `json:"title"`
	Final    bool       `json:"final"`
	Expanded bool       `json:"expanded"`
	Content  string     `json:"content"`
	Looks    []lookView `json:"looks,omitempty"`
}

type lookView struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
	Tab    string `json:"tab,omitempty"`
}

func newResultView(parsed stream.ParsedResult, classified []results.Classified, mode *prompts.Mode) resultView {
	view := resultView{JSON: parsed.JSONData, JSONError: parsed.JSONError, Blocks: make([]blockView, 0, len(classified))}
	for _, c := range classified {
		bv := blockView{Title: c.Block.Title, Final: c.Final, Expanded: c.Expanded, Content: c.Block.Content}
		if c.Looks != nil {
			for _, look := range c.Looks.Looks {
				lv := lookView{Number: look.Number, Title: look.Title}
				if mode != nil {
					if g, ok := mode.GroupFor(look.Number); ok {
						lv.Tab = g.Name
					}
				}
				bv.Looks = append(bv.Looks, lv)
			}
		}
		view.Blocks = append(view.Blocks, bv)
	}
	return view
}

// renderClassified writes blocks in display order. Collapsed blocks show
// only their title unless all is set.
func renderClassified(out io.Writer, classified []results.Classified, mode *prompts.Mode, all, colorize bool) {
	for i, c := range classified {
		if i > 0 {
			fmt.Fprintln(out)
		}
		marker := "▸"
		if c.Expanded || all {
			marker = "▾"
		}
		heading := fmt.Sprintf("%s %s", marker, c.Block.Title)
		if !c.Final {
			heading += " (working)"
		}
		if colorize {
			style := ansiBold
			if !c.Final {
				style = ansiDim
			}
			heading = style + heading + ansiReset
		}
		fmt.Fprintln(out, heading)
		if !c.Expanded && !all {
			continue
		}
		if c.Looks != nil && mode != nil && len(mode.LookGroups) > 0 {
			renderLookTabs(out, *c.Looks, mode.LookGroups)
			continue
		}
		fmt.Fprintln(out, strings.TrimRight(results.Reflow(c.Block.Content), "\n"))
	}
}

func renderLookTabs(out io.Writer, split results.LookSplit, groups []prompts.LookGroup) {
	if intro := strings.TrimSpace(split.Intro); intro != "" {
		fmt.Fprintln(out, results.Reflow(intro))
	}
	for _, tab := range results.GroupLooks(split, groups) {
		fmt.Fprintf(out, "\n[%s]\n", strings.TrimSpace(tab.Icon+" "+tab.Name))
		for _, look := range tab.Looks {
			fmt.Fprintln(out, strings.TrimRight(results.Reflow(look.Content), "\n"))
		}
	}
}

func renderJSONSummary(out io.Writer, parsed stream.ParsedResult) {
	switch {
	case parsed.HasJSON():
		data, err := parsed.JSON("  ")
		if err == nil {
			fmt.Fprintf(out, "\nJSON:\n%s\n", data)
		}
	case parsed.JSONError != "":
		fmt.Fprintf(out, "\nJSON could not be parsed: %s\n", parsed.JSONError)
	}
}
