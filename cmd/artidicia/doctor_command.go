package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"artidicia/internal/preflight"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	var offline bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check decoders, directories, the prompt catalog, and the generation endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			var rows [][]string
			failures := 0
			for _, status := range preflight.CheckSystemDeps(cfg) {
				if status.Blocking() {
					failures++
				}
				rows = append(rows, []string{status.Name, passLabel(status.Available), status.Summary()})
			}
			for _, result := range preflight.RunAll(cmd.Context(), cfg, preflight.Options{SkipLLM: offline}) {
				if !result.Passed {
					failures++
				}
				rows = append(rows, []string{result.Name, passLabel(result.Passed), result.Detail})
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Check", "Status", "Detail"}, rows, nil))
			if failures > 0 {
				return fmt.Errorf("%d check(s) failed", failures)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&offline, "offline", false, "Skip the generation endpoint check")
	return cmd
}

func passLabel(ok bool) string {
	if ok {
		return "ok"
	}
	return "FAIL"
}
