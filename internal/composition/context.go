package composition

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"artidicia/internal/frames"
	"artidicia/internal/services"
)

const (
	// MinWeight and MaxWeight bound ItemAnnotation.Weight.
	MinWeight = 0.0
	MaxWeight = 2.0

	DefaultLookFidelity  = 30
	DefaultStyleFidelity = 50
)

// ItemAnnotation carries the per-frame fusion settings.
type ItemAnnotation struct {
	Weight float64 `json:"weight"`
	Focus  Focus   `json:"focus"`
}

// DefaultAnnotation is applied to frames without explicit settings.
func DefaultAnnotation() ItemAnnotation {
	return ItemAnnotation{Weight: 1.0, Focus: FocusAll}
}

// Clamped returns the annotation with Weight forced into [MinWeight, MaxWeight].
func (a ItemAnnotation) Clamped() ItemAnnotation {
	a.Weight = min(max(a.Weight, MinWeight), MaxWeight)
	return a
}

// FidelitySpec holds the two fidelity sliders, each in [0,100].
type FidelitySpec struct {
	Look  int `json:"look_fidelity"`
	Style int `json:"style_fidelity"`
}

// DefaultFidelity returns the reset values {30, 50}.
func DefaultFidelity() FidelitySpec {
	return FidelitySpec{Look: DefaultLookFidelity, Style: DefaultStyleFidelity}
}

// Clamped returns the spec with both fields forced into [0,100].
func (f FidelitySpec) Clamped() FidelitySpec {
	return FidelitySpec{Look: min(max(f.Look, 0), 100), Style: min(max(f.Style, 0), 100)}
}

// IdentityLock is previously extracted identity data treated as
// authoritative. The payload is canonicalised on construction and cannot
// be modified afterwards.
type IdentityLock struct {
	canonical []byte
}

// NewIdentityLock validates that data is a JSON object and stores an
// indented copy.
func NewIdentityLock(data []byte) (*IdentityLock, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, services.Wrap(services.ErrValidation, "compose", "identity lock", "Identity data must be a JSON object", nil)
	}
	if !json.Valid(trimmed) {
		return nil, services.Wrap(services.ErrValidation, "compose", "identity lock", "Identity data is not valid JSON", nil)
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, trimmed, "", "  "); err != nil {
		return nil, services.Wrap(services.ErrValidation, "compose", "identity lock", "Identity data is not valid JSON", err)
	}
	return &IdentityLock{canonical: buf.Bytes()}, nil
}

// IdentityLockFromValue marshals v (typically a decoded JSON object) into a lock.
func IdentityLockFromValue(v map[string]any) (*IdentityLock, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal identity: %w", err)
	}
	return NewIdentityLock(data)
}

// JSON returns a copy of the canonical, indented payload.
func (l *IdentityLock) JSON() []byte {
	if l == nil {
		return nil
	}
	return append([]byte(nil), l.canonical...)
}

// String returns the canonical payload as text.
func (l *IdentityLock) String() string {
	if l == nil {
		return ""
	}
	return string(l.canonical)
}

// Context aggregates everything the compiler needs beyond the template and mode.
type Context struct {
	// Selection lists the selected frames in selection order.
	Selection   []frames.FrameID
	Annotations map[frames.FrameID]ItemAnnotation
	Fidelity    FidelitySpec
	Identity    *IdentityLock
	// UseIdentity opts into the identity-lock stage when Identity is set.
	UseIdentity bool
	Override    string
	// Style is substituted into templates that reference it.
	Style string
	// Looks restricts look-catalog modes to the chosen entries.
	Looks []string
}

// New returns a context for the given selection with default fidelity.
func New(selection ...frames.FrameID) Context {
	return Context{
		Selection:   append([]frames.FrameID(nil), selection...),
		Annotations: make(map[frames.FrameID]ItemAnnotation),
		Fidelity:    DefaultFidelity(),
	}
}

// FromWorkingSet builds a context from the working set's current selection.
func FromWorkingSet(ws *frames.WorkingSet) Context {
	return New(ws.SelectedIDs()...)
}

// Annotate sets the annotation for a selected frame.
func (c *Context) Annotate(id frames.FrameID, a ItemAnnotation) {
	if c.Annotations == nil {
		c.Annotations = make(map[frames.FrameID]ItemAnnotation)
	}
	c.Annotations[id] = a.Clamped()
}

// Annotation returns the settings for id, or the default.
func (c Context) Annotation(id frames.FrameID) ItemAnnotation {
	if a, ok := c.Annotations[id]; ok {
		return a.Clamped()
	}
	return DefaultAnnotation()
}

// AnnotationsInOrder returns one annotation per selected frame, aligned with Selection.
func (c Context) AnnotationsInOrder() []ItemAnnotation {
	out := make([]ItemAnnotation, len(c.Selection))
	for i, id := range c.Selection {
		out[i] = c.Annotation(id)
	}
	return out
}

// Prune drops annotations for frames that are no longer selected.
func (c *Context) Prune() {
	if len(c.Annotations) == 0 {
		return
	}
	keep := make(map[frames.FrameID]struct{}, len(c.Selection))
	for _, id := range c.Selection {
		keep[id] = struct{}{}
	}
	for id := range c.Annotations {
		if _, ok := keep[id]; !ok {
			delete(c.Annotations, id)
		}
	}
}

// IdentityActive reports whether the identity-lock stage should run.
func (c Context) IdentityActive() bool {
	return c.UseIdentity && c.Identity != nil
}

// HasOverride reports whether a non-blank custom override is set.
func (c Context) HasOverride() bool {
	return strings.TrimSpace(c.Override) != ""
}

// Validate checks ranges and that annotations reference selected frames.
func (c Context) Validate() error {
	var errs []error
	if c.Fidelity.Look < 0 || c.Fidelity.Look > 100 {
		errs = append(errs, fmt.Errorf("look fidelity %d outside [0,100]", c.Fidelity.Look))
	}
	if c.Fidelity.Style < 0 || c.Fidelity.Style > 100 {
		errs = append(errs, fmt.Errorf("style fidelity %d outside [0,100]", c.Fidelity.Style))
	}
	selected := make(map[frames.FrameID]struct{}, len(c.Selection))
	for _, id := range c.Selection {
		if _, dup := selected[id]; dup {
			errs = append(errs, fmt.Errorf("frame %s selected twice", id))
		}
		selected[id] = struct{}{}
	}
	for id, a := range c.Annotations {
		if _, ok := selected[id]; !ok {
			errs = append(errs, fmt.Errorf("annotation for unselected frame %s", id))
		}
		if a.Weight < MinWeight || a.Weight > MaxWeight {
			errs = append(errs, fmt.Errorf("weight %g for frame %s outside [%g,%g]", a.Weight, id, MinWeight, MaxWeight))
		}
		if !a.Focus.valid() {
			errs = append(errs, fmt.Errorf("invalid focus for frame %s", id))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return services.Wrap(services.ErrValidation, "compose", "validate context", errors.Join(errs...).Error(), nil)
}
