package results

import (
	"strconv"
	"strings"

	"artidicia/internal/prompts"
)

const lookMarker = "LOOK "

// LookSegment is one look's share of a look-catalog block.
type LookSegment struct {
	Number  int
	Title   string
	Content string
}

// LookSplit is a block divided at its LOOK markers.
type LookSplit struct {
	Intro string
	Looks []LookSegment
}

type marker struct {
	start  int
	number int
}

// findMarkers records every "LOOK {n}:" position, widened to include a
// leading "**" when present.
func findMarkers(content string) []marker {
	var out []marker
	for offset := 0; offset < len(content); {
		idx := strings.Index(content[offset:], lookMarker)
		if idx < 0 {
			break
		}
		pos := offset + idx
		offset = pos + len(lookMarker)
		digits := offset
		for digits < len(content) && content[digits] >= '0' && content[digits] <= '9' {
			digits++
		}
		if digits == offset || digits >= len(content) || content[digits] != ':' {
			continue
		}
		n, err := strconv.Atoi(content[offset:digits])
		if err != nil {
			continue
		}
		start := pos
		if start >= 2 && content[start-2:start] == "**" {
			start -= 2
		}
		out = append(out, marker{start: start, number: n})
		offset = digits + 1
	}
	return out
}

// SplitLooks divides content at LOOK markers. Each look runs up to the
// next marker or the end of content. It reports false when content has no
// markers.
func SplitLooks(content string) (LookSplit, bool) {
	markers := findMarkers(content)
	if len(markers) == 0 {
		return LookSplit{}, false
	}
	split := LookSplit{Intro: strings.TrimSpace(content[:markers[0].start])}
	for i, m := range markers {
		end := len(content)
		if i+1 < len(markers) {
			end = markers[i+1].start
		}
		segment := strings.TrimSpace(content[m.start:end])
		title, _, _ := strings.Cut(segment, "\n")
		split.Looks = append(split.Looks, LookSegment{
			Number:  m.number,
			Title:   strings.TrimSpace(strings.Trim(title, "*# ")),
			Content: segment,
		})
	}
	return split, true
}

// Look returns the segment numbered n.
func (s LookSplit) Look(n int) (LookSegment, bool) {
	for _, l := range s.Looks {
		if l.Number == n {
			return l, true
		}
	}
	return LookSegment{}, false
}

// LookTab is a named group of look segments.
type LookTab struct {
	Name  string
	Icon  string
	Looks []LookSegment
}

// OtherTab collects looks outside every group.
const OtherTab = "Other"

// GroupLooks files segments under groups in group order. Empty groups are
// omitted; unmatched looks go to a trailing OtherTab.
func GroupLooks(split LookSplit, groups []prompts.LookGroup) []LookTab {
	tabs := make([]LookTab, 0, len(groups)+1)
	placed := make([]bool, len(split.Looks))
	for _, g := range groups {
		tab := LookTab{Name: g.Name, Icon: g.Icon}
		for i, l := range split.Looks {
			if !placed[i] && g.Contains(l.Number) {
				tab.Looks = append(tab.Looks, l)
				placed[i] = true
			}
		}
		if len(tab.Looks) > 0 {
			tabs = append(tabs, tab)
		}
	}
	other := LookTab{Name: OtherTab}
	for i, l := range split.Looks {
		if !placed[i] {
			other.Looks = append(other.Looks, l)
		}
	}
	if len(other.Looks) > 0 {
		tabs = append(tabs, other)
	}
	return tabs
}
