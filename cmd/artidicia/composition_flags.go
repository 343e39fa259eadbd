package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"artidicia/internal/composition"
	"artidicia/internal/config"
	"artidicia/internal/frames"
	"artidicia/internal/prompts"
)

// compositionFlags carries the per-run instruction settings shared by
// compile and analyze.
type compositionFlags struct {
	mode          string
	style         string
	looks         []string
	weights       []string
	foci          []string
	lookFidelity  int
	styleFidelity int
	identityFile  string
	override      string
	templateFile  string
}

func (f *compositionFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&f.mode, "mode", "m", "", "Analysis mode key (see `artidicia modes`)")
	flags.StringVarP(&f.style, "style", "s", "", "Target style for style-aware modes")
	flags.StringSliceVar(&f.looks, "look", nil, "Restrict look-catalog modes to these looks (number or name, repeatable)")
	flags.StringArrayVar(&f.weights, "weight", nil, "Per-image weight as index=value, e.g. 2=1.5 (repeatable)")
	flags.StringArrayVar(&f.foci, "focus", nil, "Per-image focus as index=focus, e.g. 1=face (repeatable)")
	flags.IntVar(&f.lookFidelity, "look-fidelity", composition.DefaultLookFidelity, "Fidelity to the target look, 0-100")
	flags.IntVar(&f.styleFidelity, "style-fidelity", composition.DefaultStyleFidelity, "Fidelity to the source texture, 0-100")
	flags.StringVar(&f.identityFile, "identity", "", "JSON file with locked identity data")
	flags.StringVar(&f.override, "override", "", "Custom instruction appended with top priority")
	flags.StringVar(&f.templateFile, "template", "", "Use this template file instead of the mode template")
	_ = cmd.MarkFlagRequired("mode")
}

// resolve loads the mode and template and builds the composition context for
// the given selection.
func (f compositionFlags) resolve(catalog *prompts.Catalog, selection []frames.FrameID) (prompts.Mode, string, composition.Context, error) {
	mode, err := catalog.Mode(f.mode)
	if err != nil {
		return prompts.Mode{}, "", composition.Context{}, err
	}
	template := mode.Template
	if strings.TrimSpace(f.templateFile) != "" {
		path, err := config.ExpandPath(f.templateFile)
		if err != nil {
			return prompts.Mode{}, "", composition.Context{}, err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return prompts.Mode{}, "", composition.Context{}, fmt.Errorf("read template: %w", err)
		}
		template = string(data)
	}

	ctx := composition.New(selection...)
	ctx.Style = strings.TrimSpace(f.style)
	ctx.Looks = f.looks
	ctx.Override = f.override
	ctx.Fidelity = composition.FidelitySpec{Look: f.lookFidelity, Style: f.styleFidelity}

	if strings.TrimSpace(f.identityFile) != "" {
		path, err := config.ExpandPath(f.identityFile)
		if err != nil {
			return prompts.Mode{}, "", composition.Context{}, err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return prompts.Mode{}, "", composition.Context{}, fmt.Errorf("read identity: %w", err)
		}
		lock, err := composition.NewIdentityLock(data)
		if err != nil {
			return prompts.Mode{}, "", composition.Context{}, err
		}
		ctx.Identity = lock
		ctx.UseIdentity = true
	}

	annotations := make(map[int]composition.ItemAnnotation)
	for _, raw := range f.weights {
		index, value, err := splitIndexed(raw, len(selection))
		if err != nil {
			return prompts.Mode{}, "", composition.Context{}, fmt.Errorf("--weight %q: %w", raw, err)
		}
		weight, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return prompts.Mode{}, "", composition.Context{}, fmt.Errorf("--weight %q: %w", raw, err)
		}
		a := annotationAt(annotations, index)
		a.Weight = weight
		annotations[index] = a
	}
	for _, raw := range f.foci {
		index, value, err := splitIndexed(raw, len(selection))
		if err != nil {
			return prompts.Mode{}, "", composition.Context{}, fmt.Errorf("--focus %q: %w", raw, err)
		}
		focus, err := composition.ParseFocus(value)
		if err != nil {
			return prompts.Mode{}, "", composition.Context{}, fmt.Errorf("--focus %q: %w", raw, err)
		}
		a := annotationAt(annotations, index)
		a.Focus = focus
		annotations[index] = a
	}
	for index, a := range annotations {
		ctx.Annotate(selection[index], a)
	}
	return mode, template, ctx, nil
}

func annotationAt(annotations map[int]composition.ItemAnnotation, index int) composition.ItemAnnotation {
	if a, ok := annotations[index]; ok {
		return a
	}
	return composition.DefaultAnnotation()
}

// splitIndexed parses "i=value" with a 1-based i and returns the 0-based index.
func splitIndexed(raw string, count int) (int, string, error) {
	key, value, ok := strings.Cut(raw, "=")
	if !ok {
		return 0, "", fmt.Errorf("expected index=value")
	}
	n, err := strconv.Atoi(strings.TrimSpace(key))
	if err != nil {
		return 0, "", fmt.Errorf("invalid image index %q", key)
	}
	if n < 1 || n > count {
		return 0, "", fmt.Errorf("image index %d outside 1-%d", n, count)
	}
	return n - 1, strings.TrimSpace(value), nil
}
