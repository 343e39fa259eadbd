package composition

import (
	"fmt"
	"strings"
)

// Focus names the region of an image a downstream consumer should attend to.
type Focus int

const (
	FocusAll Focus = iota
	FocusFace
	FocusPose
	FocusClothing
	FocusBackground
	FocusColors
	FocusStyle
)

var focusNames = [...]struct {
	key   string
	label string
}{
	FocusAll:        {"all", "All Image"},
	FocusFace:       {"face", "Character/Face"},
	FocusPose:       {"pose", "Pose/Body"},
	FocusClothing:   {"clothing", "Clothing"},
	FocusBackground: {"background", "Background"},
	FocusColors:     {"colors", "Colors/Palette"},
	FocusStyle:      {"style", "Style/Ambiance"},
}

// Foci lists every focus in display order.
func Foci() []Focus {
	return []Focus{FocusAll, FocusFace, FocusPose, FocusClothing, FocusBackground, FocusColors, FocusStyle}
}

// String returns the short name used in compiled annotations ("Face", "Pose", ...).
func (f Focus) String() string {
	if !f.valid() {
		return fmt.Sprintf("Focus(%d)", int(f))
	}
	key := focusNames[f].key
	return strings.ToUpper(key[:1]) + key[1:]
}

// Key returns the lowercase identifier used in flags and config.
func (f Focus) Key() string {
	if !f.valid() {
		return ""
	}
	return focusNames[f].key
}

// Label returns the human-facing selector label.
func (f Focus) Label() string {
	if !f.valid() {
		return ""
	}
	return focusNames[f].label
}

func (f Focus) valid() bool {
	return f >= FocusAll && int(f) < len(focusNames)
}

// ParseFocus accepts a key ("face"), short name ("Face"), or label
// ("Character/Face"). Empty input means FocusAll.
func ParseFocus(value string) (Focus, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return FocusAll, nil
	}
	for _, f := range Foci() {
		n := focusNames[f]
		if strings.EqualFold(value, n.key) || strings.EqualFold(value, n.label) {
			return f, nil
		}
	}
	return FocusAll, fmt.Errorf("unknown focus %q", value)
}

// MarshalText implements encoding.TextMarshaler.
func (f Focus) MarshalText() ([]byte, error) {
	if !f.valid() {
		return nil, fmt.Errorf("invalid focus %d", int(f))
	}
	return []byte(f.Key()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Focus) UnmarshalText(text []byte) error {
	parsed, err := ParseFocus(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}
