package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"artidicia/internal/artifacts"
	"artidicia/internal/frames"
)

func newSampleCommand(ctx *commandContext) *cobra.Command {
	var sampling samplingFlags
	var outDir string
	var save bool

	cmd := &cobra.Command{
		Use:   "sample <video | images...>",
		Short: "Sample frames from a video or load still images",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger(cmd)
			if err != nil {
				return err
			}
			spec, err := sampling.spec(cfg)
			if err != nil {
				return err
			}

			sampled, label, err := loadFrames(cmd.Context(), cmd, cfg, logger, args, spec)
			if err != nil {
				return err
			}

			target := strings.TrimSpace(outDir)
			if target == "" && save {
				target = filepath.Join(cfg.Paths.ExportDir, artifacts.SelectionDirName(time.Now()))
			}
			var paths []string
			if target != "" {
				paths, err = frames.WriteFrames(target, sampled)
				if err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %d frame(s) (%s)\n", label, len(sampled), spec)
			fmt.Fprintln(out, renderFrameTable(sampled, paths))
			if target != "" {
				fmt.Fprintf(out, "Saved to %s\n", target)
			}
			return nil
		},
	}

	sampling.register(cmd)
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Write the frames as PNG files into this directory")
	cmd.Flags().BoolVar(&save, "save", false, "Write the frames into a timestamped folder under the export directory")
	return cmd
}

func renderFrameTable(sampled []frames.Frame, paths []string) string {
	headers := []string{"#", "Source", "Position", "Label", "Size", "Bytes"}
	rows := make([][]string, 0, len(sampled))
	for i, f := range sampled {
		bounds := f.Image.Bounds()
		size := uint64(len(f.Image.Pix))
		if i < len(paths) {
			if info, err := os.Stat(paths[i]); err == nil {
				size = uint64(info.Size())
			}
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			f.Source.String(),
			strconv.Itoa(f.Position),
			f.Label,
			fmt.Sprintf("%dx%d", bounds.Dx(), bounds.Dy()),
			humanize.Bytes(size),
		})
	}
	return renderTable(headers, rows, []columnAlignment{alignRight, alignLeft, alignRight, alignLeft, alignRight, alignRight})
}
