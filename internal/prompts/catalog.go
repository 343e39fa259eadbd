package prompts

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"artidicia/internal/services"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Look is one entry of a mode's looks catalog.
type Look struct {
	Number int    `yaml:"number"`
	Name   string `yaml:"name"`
	Angle  string `yaml:"angle"`
}

// Label renders the look as "3. Industrial Abyss (Worm's Eye)".
func (l Look) Label() string {
	label := fmt.Sprintf("%d. %s", l.Number, l.Name)
	if l.Angle != "" {
		label += " (" + l.Angle + ")"
	}
	return label
}

// LookGroup is a contiguous, inclusive range of look numbers shown together.
type LookGroup struct {
	Name string `yaml:"name"`
	Icon string `yaml:"icon"`
	From int    `yaml:"from"`
	To   int    `yaml:"to"`
}

// Contains reports whether look number n falls in the group.
func (g LookGroup) Contains(n int) bool {
	return n >= g.From && n <= g.To
}

// Mode is one analysis mode.
type Mode struct {
	Key           string      `yaml:"key"`
	Description   string      `yaml:"description"`
	Template      string      `yaml:"template"`
	Fusion        bool        `yaml:"fusion"`
	Biometric     bool        `yaml:"biometric"`
	FidelityAware bool        `yaml:"fidelity_aware"`
	UsesStyle     bool        `yaml:"uses_style"`
	JSONOutput    bool        `yaml:"json_output"`
	Looks         []Look      `yaml:"looks"`
	LookGroups    []LookGroup `yaml:"look_groups"`
}

// Annotated reports whether per-image weight and focus annotations apply.
// Any mode whose key mentions fusion qualifies even without the flag.
func (m Mode) Annotated() bool {
	return m.Fusion || m.Biometric || strings.Contains(strings.ToLower(m.Key), "fusion")
}

// HasLooks reports whether the mode offers a looks catalog.
func (m Mode) HasLooks() bool {
	return len(m.Looks) > 0
}

// DisplayName renders the key as a title with an icon derived from the
// image-count tag in the description.
func (m Mode) DisplayName() string {
	name := cases.Title(language.English).String(strings.ReplaceAll(m.Key, "_", " "))
	switch {
	case strings.Contains(m.Description, "[1 Image]"):
		return "📸 " + name
	case strings.Contains(m.Description, "[2 Images]"):
		return "👥 " + name
	case strings.Contains(m.Description, "[Multi-Image]"):
		return "🎨 " + name
	default:
		return "⚙️ " + name
	}
}

// ResolveLooks maps user selections to catalog looks. Each selection may be
// a look number ("3"), a name ("Industrial Abyss"), or a full label. Order
// follows the selection; duplicates are dropped.
func (m Mode) ResolveLooks(selection []string) ([]Look, error) {
	if len(selection) == 0 {
		return nil, nil
	}
	if !m.HasLooks() {
		return nil, services.Wrap(services.ErrValidation, "compile", "resolve looks",
			fmt.Sprintf("Mode %s has no looks catalog", m.Key), nil)
	}
	seen := make(map[int]struct{}, len(selection))
	out := make([]Look, 0, len(selection))
	for _, raw := range selection {
		look, ok := m.findLook(strings.TrimSpace(raw))
		if !ok {
			return nil, services.Wrap(services.ErrNotFound, "compile", "resolve looks",
				fmt.Sprintf("Unknown look %q for mode %s", raw, m.Key), nil)
		}
		if _, dup := seen[look.Number]; dup {
			continue
		}
		seen[look.Number] = struct{}{}
		out = append(out, look)
	}
	return out, nil
}

func (m Mode) findLook(value string) (Look, bool) {
	if n, err := strconv.Atoi(value); err == nil {
		for _, l := range m.Looks {
			if l.Number == n {
				return l, true
			}
		}
		return Look{}, false
	}
	for _, l := range m.Looks {
		if strings.EqualFold(value, l.Name) || strings.EqualFold(value, l.Label()) {
			return l, true
		}
	}
	return Look{}, false
}

// GroupFor returns the look group containing look number n.
func (m Mode) GroupFor(n int) (LookGroup, bool) {
	for _, g := range m.LookGroups {
		if g.Contains(n) {
			return g, true
		}
	}
	return LookGroup{}, false
}

// StyleCategory groups related styles for two-level selection.
type StyleCategory struct {
	Name   string   `yaml:"name"`
	Styles []string `yaml:"styles"`
}

// Catalog is the ordered set of modes and style categories.
type Catalog struct {
	Modes           []Mode          `yaml:"modes"`
	StyleCategories []StyleCategory `yaml:"style_categories"`
}

// Default returns the embedded catalog.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Load reads a catalog from path, or returns the embedded catalog when path is empty.
func Load(path string) (*Catalog, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "prompts", "read catalog", "Unable to read "+path, err)
	}
	catalog, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return catalog, nil
}

// Parse decodes and validates catalog YAML.
func Parse(data []byte) (*Catalog, error) {
	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "prompts", "parse catalog", "Invalid catalog YAML", err)
	}
	if err := catalog.validate(); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "prompts", "validate catalog", err.Error(), nil)
	}
	return &catalog, nil
}

func (c *Catalog) validate() error {
	if len(c.Modes) == 0 {
		return errors.New("catalog defines no modes")
	}
	seen := make(map[string]struct{}, len(c.Modes))
	for i := range c.Modes {
		m := &c.Modes[i]
		m.Key = strings.TrimSpace(m.Key)
		if m.Key == "" {
			return fmt.Errorf("mode %d has no key", i)
		}
		if _, dup := seen[m.Key]; dup {
			return fmt.Errorf("duplicate mode key %s", m.Key)
		}
		seen[m.Key] = struct{}{}
		if strings.TrimSpace(m.Template) == "" {
			return fmt.Errorf("mode %s has an empty template", m.Key)
		}
		numbers := make(map[int]struct{}, len(m.Looks))
		for _, l := range m.Looks {
			if l.Number <= 0 || strings.TrimSpace(l.Name) == "" {
				return fmt.Errorf("mode %s has an invalid look %+v", m.Key, l)
			}
			if _, dup := numbers[l.Number]; dup {
				return fmt.Errorf("mode %s repeats look %d", m.Key, l.Number)
			}
			numbers[l.Number] = struct{}{}
		}
		for _, g := range m.LookGroups {
			if g.From <= 0 || g.To < g.From {
				return fmt.Errorf("mode %s has an invalid look group %s", m.Key, g.Name)
			}
		}
	}
	return nil
}

// Mode returns the mode with key.
func (c *Catalog) Mode(key string) (Mode, error) {
	key = strings.TrimSpace(key)
	for _, m := range c.Modes {
		if m.Key == key {
			return m, nil
		}
	}
	return Mode{}, services.Wrap(services.ErrNotFound, "prompts", "lookup mode", fmt.Sprintf("Unknown mode %q", key), nil)
}

// Keys returns mode keys in catalog order.
func (c *Catalog) Keys() []string {
	keys := make([]string, len(c.Modes))
	for i, m := range c.Modes {
		keys[i] = m.Key
	}
	return keys
}

// Styles returns every style across all categories, in catalog order.
func (c *Catalog) Styles() []string {
	var out []string
	for _, cat := range c.StyleCategories {
		out = append(out, cat.Styles...)
	}
	return out
}

// CategoryOf returns the category containing style.
func (c *Catalog) CategoryOf(style string) (StyleCategory, bool) {
	for _, cat := range c.StyleCategories {
		for _, s := range cat.Styles {
			if strings.EqualFold(s, style) {
				return cat, true
			}
		}
	}
	return StyleCategory{}, false
}
