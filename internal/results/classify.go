package results

import (
	"strings"

	"artidicia/internal/stream"
)

// FinalKeywords mark a block title as a final prompt.
var FinalKeywords = []string{"unified", "final", "reproduction", "prompt", "look", "variant"}

// IntermediateKeywords mark a block title as working output.
var IntermediateKeywords = []string{"logic", "reasoning", "analysis", "layer", "json"}

// ExpandAllThreshold is the block count at or below which every block is
// expanded.
const ExpandAllThreshold = 2

// Classified is a block with its display hints.
type Classified struct {
	Block    stream.Block
	Final    bool
	Expanded bool
	// Looks is set when the block content holds LOOK markers.
	Looks *LookSplit
}

// IsFinal reports whether title names a final prompt. Titles that match
// neither keyword set count as final.
func IsFinal(title string) bool {
	lower := strings.ToLower(title)
	if containsAny(lower, FinalKeywords) {
		return true
	}
	return !containsAny(lower, IntermediateKeywords)
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// Classify returns blocks with final blocks first. Relative order within
// each group is preserved, so classifying the output again is a no-op.
func Classify(blocks []stream.Block) []Classified {
	finals := make([]Classified, 0, len(blocks))
	var intermediates []Classified
	expandAll := len(blocks) <= ExpandAllThreshold
	for _, b := range blocks {
		c := Classified{Block: b, Final: IsFinal(b.Title)}
		c.Expanded = expandAll || c.Final
		if split, ok := SplitLooks(b.Content); ok {
			c.Looks = &split
		}
		if c.Final {
			finals = append(finals, c)
		} else {
			intermediates = append(intermediates, c)
		}
	}
	return append(finals, intermediates...)
}

// Blocks strips the display hints.
func Blocks(classified []Classified) []stream.Block {
	out := make([]stream.Block, len(classified))
	for i, c := range classified {
		out[i] = c.Block
	}
	return out
}
