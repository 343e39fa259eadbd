package artifacts

import (
	"encoding/json"
	"fmt"
	"maps"
	"strings"
	"time"

	"artidicia/internal/stream"
	"artidicia/internal/textutil"
)

const (
	footerRule      = "# ========================================"
	footerTimestamp = "2006-01-02 15:04:05"
	textStamp       = "02012006_150405"
	jsonStamp       = "02012006150405"
	titleWords      = 5
)

// Artifact is a named file payload.
type Artifact struct {
	Name string
	Data []byte
}

// Footer renders the generation metadata appended to text artifacts.
func Footer(at time.Time, mode, style string) string {
	var b strings.Builder
	b.WriteString("\n" + footerRule + "\n")
	b.WriteString("# GENERATION INFO\n")
	b.WriteString(footerRule + "\n")
	fmt.Fprintf(&b, "# Generated: %s\n", at.Format(footerTimestamp))
	fmt.Fprintf(&b, "# Analysis Mode: %s\n", mode)
	if style = strings.TrimSpace(style); style != "" {
		fmt.Fprintf(&b, "# Style: %s\n", style)
	}
	b.WriteString(footerRule + "\n")
	return b.String()
}

// TextFileName builds "<first five title words>_<ddmmYYYY_HHMMSS>.txt".
func TextFileName(title string, at time.Time) string {
	return textutil.TitleStem(title, titleWords) + "_" + at.Format(textStamp) + ".txt"
}

// Text renders block as a text artifact.
func Text(block stream.Block, mode, style string, at time.Time) Artifact {
	return Artifact{
		Name: TextFileName(block.Title, at),
		Data: []byte(block.Content + Footer(at, mode, style)),
	}
}

// DocumentID returns the id injected into JSON artifacts generated at at.
func DocumentID(at time.Time) string {
	return "ID_" + at.Format(jsonStamp)
}

// JSONDocument renders data with an injected "id" field. data is not
// modified.
func JSONDocument(data map[string]any, at time.Time) (Artifact, error) {
	if data == nil {
		return Artifact{}, fmt.Errorf("no json data to export")
	}
	doc := maps.Clone(data)
	doc["id"] = DocumentID(at)
	encoded, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return Artifact{}, fmt.Errorf("encode json artifact: %w", err)
	}
	return Artifact{
		Name: "biome_" + DocumentID(at) + ".json",
		Data: append(encoded, '\n'),
	}, nil
}

// FromResult renders every block of res and, when present, its JSON.
func FromResult(res stream.ParsedResult, mode, style string, at time.Time) ([]Artifact, error) {
	out := make([]Artifact, 0, len(res.Blocks)+1)
	for _, block := range res.Blocks {
		out = append(out, Text(block, mode, style, at))
	}
	if !res.HasBlocks() && strings.TrimSpace(res.RawText) != "" {
		out = append(out, Text(stream.Block{Title: "raw output", Content: res.RawText}, mode, style, at))
	}
	if res.HasJSON() {
		doc, err := JSONDocument(res.JSONData, at)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, nil
}

// SelectionDirName names the folder a frame selection is saved into.
func SelectionDirName(at time.Time) string {
	return "selection_" + at.Format("20060102_150405")
}
