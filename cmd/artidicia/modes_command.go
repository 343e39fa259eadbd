package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"artidicia/internal/prompts"
)

func newModesCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "modes",
		Short: "List analysis modes from the prompt catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := ctx.ensureCatalog()
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(catalog.Modes))
			for _, m := range catalog.Modes {
				rows = append(rows, []string{m.Key, m.DisplayName(), modeCapabilities(m), strconv.Itoa(len(m.Looks)), m.Description})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Key", "Name", "Capabilities", "Looks", "Description"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}

	cmd.AddCommand(newModesStylesCommand(ctx))
	cmd.AddCommand(newModesLooksCommand(ctx))
	return cmd
}

func newModesStylesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "styles",
		Short: "List style categories for style-aware modes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := ctx.ensureCatalog()
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(catalog.StyleCategories))
			for _, c := range catalog.StyleCategories {
				rows = append(rows, []string{c.Name, strings.Join(c.Styles, ", ")})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Category", "Styles"}, rows, nil))
			return nil
		},
	}
}

func newModesLooksCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "looks <mode>",
		Short: "List the looks catalog of a mode",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := ctx.ensureCatalog()
			if err != nil {
				return err
			}
			mode, err := catalog.Mode(args[0])
			if err != nil {
				return err
			}
			if !mode.HasLooks() {
				return fmt.Errorf("mode %s has no looks catalog", mode.Key)
			}
			rows := make([][]string, 0, len(mode.Looks))
			for _, l := range mode.Looks {
				group := ""
				if g, ok := mode.GroupFor(l.Number); ok {
					group = strings.TrimSpace(g.Icon + " " + g.Name)
				}
				rows = append(rows, []string{strconv.Itoa(l.Number), l.Name, l.Angle, group})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"#", "Look", "Angle", "Group"},
				rows,
				[]columnAlignment{alignRight},
			))
			return nil
		},
	}
}

func modeCapabilities(m prompts.Mode) string {
	var caps []string
	if m.Annotated() {
		caps = append(caps, "fusion")
	}
	if m.Biometric {
		caps = append(caps, "biometric")
	}
	if m.FidelityAware {
		caps = append(caps, "fidelity")
	}
	if m.UsesStyle {
		caps = append(caps, "style")
	}
	if m.JSONOutput {
		caps = append(caps, "json")
	}
	if m.HasLooks() {
		caps = append(caps, "looks")
	}
	return strings.Join(caps, ", ")
}
