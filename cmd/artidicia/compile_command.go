package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"artidicia/internal/compiler"
	"artidicia/internal/frames"
)

func newCompileCommand(ctx *commandContext) *cobra.Command {
	var comp compositionFlags
	var imageCount int
	var showTrace bool

	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Print the instruction a mode would send for the given settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := ctx.ensureCatalog()
			if err != nil {
				return err
			}
			if imageCount < 1 {
				return fmt.Errorf("--frames must be at least 1")
			}
			selection := make([]frames.FrameID, imageCount)
			for i := range selection {
				selection[i] = frames.FrameID("image-" + strconv.Itoa(i+1))
			}
			mode, template, composed, err := comp.resolve(catalog, selection)
			if err != nil {
				return err
			}
			result, err := compiler.Compile(template, mode, composed)
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), result.Text)
			if showTrace {
				fmt.Fprintln(cmd.ErrOrStderr(), renderTrace(result.Trace))
			}
			return nil
		},
	}

	comp.register(cmd)
	cmd.Flags().IntVarP(&imageCount, "frames", "n", 1, "Number of selected images the instruction is compiled for")
	cmd.Flags().BoolVar(&showTrace, "trace", false, "Print which compilation stages applied to stderr")
	return cmd
}

func renderTrace(trace []compiler.StageTrace) string {
	rows := make([][]string, 0, len(trace))
	for _, tr := range trace {
		rows = append(rows, []string{string(tr.Stage), yesNo(tr.Applied), tr.Detail})
	}
	return renderTable([]string{"Stage", "Applied", "Detail"}, rows, nil)
}
