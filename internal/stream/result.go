package stream

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Block is one titled prompt section.
type Block struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// ParsedResult is the authoritative view of a completed generation.
type ParsedResult struct {
	Blocks []Block `json:"blocks"`
	// JSONData is nil when no object was found or it failed to parse.
	JSONData map[string]any `json:"json_data,omitempty"`
	// JSONError explains why JSONData is nil, when a candidate existed.
	JSONError string `json:"json_error,omitempty"`
	RawText   string `json:"raw_text"`
}

// HasBlocks reports whether any prompt block was found. Callers fall back
// to RawText otherwise.
func (r ParsedResult) HasBlocks() bool { return len(r.Blocks) > 0 }

// HasJSON reports whether a JSON document was extracted.
func (r ParsedResult) HasJSON() bool { return r.JSONData != nil }

// JSON returns JSONData encoded with the given indent.
func (r ParsedResult) JSON(indent string) ([]byte, error) {
	if r.JSONData == nil {
		return nil, fmt.Errorf("no json data")
	}
	return json.MarshalIndent(r.JSONData, "", indent)
}

// Parse runs finalization over text.
func Parse(text string, extraction Extraction) ParsedResult {
	fences := scanFences(text)
	res := ParsedResult{RawText: text, Blocks: blocksFrom(fences)}
	raw, found := jsonCandidate(text, fences, extraction)
	if !found {
		return res
	}
	data, err := decodeObject(raw)
	if err != nil {
		res.JSONError = err.Error()
		return res
	}
	res.JSONData = data
	return res
}

// jsonCandidate picks the JSON text in priority order: a ```json fence,
// then the first fence whose body opens with '{', then a raw brace span.
func jsonCandidate(text string, fences []fence, extraction Extraction) (string, bool) {
	for _, f := range fences {
		if f.isJSON() {
			return strings.TrimSpace(f.body), true
		}
	}
	if len(fences) > 0 {
		if body := strings.TrimSpace(fences[0].body); strings.HasPrefix(body, "{") {
			return body, true
		}
	}
	open := strings.IndexByte(text, '{')
	closing := strings.LastIndexByte(text, '}')
	if open < 0 || closing <= open {
		return "", false
	}
	return rawSpan(text, open, closing, extraction)
}

// rawSpan returns the candidate between open and closing according to
// extraction. Balanced scanning honours JSON string quoting.
func rawSpan(text string, open, closing int, extraction Extraction) (string, bool) {
	if extraction != Balanced {
		return text[open : closing+1], true
	}
	depth := 0
	inString, escaped := false, false
	for i := open; i <= closing; i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[open : i+1], true
			}
		}
	}
	return "", false
}
