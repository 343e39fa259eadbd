package stream

import (
	"fmt"
	"strings"
)

// Extraction selects how a raw JSON span is located in free text.
type Extraction int

const (
	// Greedy takes the first '{' through the last '}'.
	Greedy Extraction = iota
	// Balanced takes the first brace-balanced span starting at the first '{'.
	Balanced
)

// DefaultMinLength is the buffer length early detection waits for.
const DefaultMinLength = 20

func (e Extraction) String() string {
	if e == Balanced {
		return "balanced"
	}
	return "greedy"
}

// ParseExtraction accepts "greedy" or "balanced".
func ParseExtraction(value string) (Extraction, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "greedy":
		return Greedy, nil
	case "balanced":
		return Balanced, nil
	default:
		return Greedy, fmt.Errorf("unknown json extraction %q", value)
	}
}

// Options configures a Parser.
type Options struct {
	// MinLength suppresses early detection until the buffer is longer
	// than this many bytes.
	MinLength int
	// DetectJSON enables early detection. It is turned off while an
	// identity lock is in use, since no new identity JSON is expected.
	DetectJSON bool
	Extraction Extraction
}

// DefaultOptions returns early detection enabled with greedy extraction.
func DefaultOptions() Options {
	return Options{MinLength: DefaultMinLength, DetectJSON: true, Extraction: Greedy}
}
