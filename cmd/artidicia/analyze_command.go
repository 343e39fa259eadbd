package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"artidicia/internal/analysis"
	"artidicia/internal/artifacts"
	"artidicia/internal/config"
	"artidicia/internal/frames"
	"artidicia/internal/preflight"
	"artidicia/internal/services/llm"
	"artidicia/internal/stream"
)

// generatorFactory builds the generator for analyze; tests replace it.
var generatorFactory = func(cfg *config.Config, cmd *cobra.Command, ctx *commandContext) (llm.Generator, error) {
	logger, err := ctx.logger(cmd)
	if err != nil {
		return nil, err
	}
	return llm.NewClient(preflight.LLMConfig(cfg), llm.WithLogger(logger)), nil
}

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	var sampling samplingFlags
	var comp compositionFlags
	var pick []int
	var save bool
	var export bool
	var jsonOutput bool
	var live bool
	var expandAll bool
	var lockPath string

	cmd := &cobra.Command{
		Use:   "analyze <video | images...>",
		Short: "Sample, compile, generate, and classify in one run",
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
			catalog, err := ctx.ensureCatalog()
			if err != nil {
				return err
			}
			if failed := preflight.Failed(preflight.RunAll(cmd.Context(), cfg, preflight.Options{SkipLLM: true})); len(failed) > 0 {
				return fmt.Errorf("preflight: %s: %s", failed[0].Name, failed[0].Detail)
			}

			spec, err := sampling.spec(cfg)
			if err != nil {
				return err
			}
			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			sampled, label, err := loadFrames(runCtx, cmd, cfg, logger, args, spec)
			if err != nil {
				return err
			}
			ws := frames.NewWorkingSet(sampled...)
			if len(pick) == 0 {
				ws.SelectAll()
			} else {
				ids := make([]frames.FrameID, 0, len(pick))
				for _, n := range pick {
					f, ok := ws.At(n - 1)
					if !ok {
						return fmt.Errorf("--pick %d outside 1-%d", n, ws.Len())
					}
					ids = append(ids, f.ID)
				}
				if err := ws.Select(ids...); err != nil {
					return err
				}
			}
			selected := ws.Selected()

			mode, template, composed, err := comp.resolve(catalog, ws.SelectedIDs())
			if err != nil {
				return err
			}
			opts, err := streamOptions(cfg, cmd, 0, "", false)
			if err != nil {
				return err
			}

			generator, err := generatorFactory(cfg, cmd, ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			analyzerOpts := []analysis.Option{
				analysis.WithLogger(logger),
				analysis.WithModel(cfg.LLM.Model),
				analysis.WithStreamOptions(opts),
				analysis.WithJPEGQuality(cfg.Media.JPEGQuality),
			}
			if live && !jsonOutput {
				analyzerOpts = append(analyzerOpts, analysis.WithObserver(stream.Observer{
					Chunk: func(chunk, _ string) { fmt.Fprint(out, chunk) },
				}))
			}
			if save {
				store, err := ctx.openHistory(runCtx)
				if err != nil {
					return err
				}
				defer store.Close()
				analyzerOpts = append(analyzerOpts, analysis.WithRecorder(store))
			}
			if export {
				analyzerOpts = append(analyzerOpts, analysis.WithExporter(artifacts.NewExporter(cfg.Paths.ExportDir, logger)))
			}

			res, err := analysis.New(generator, analyzerOpts...).Run(runCtx, analysis.Request{
				Mode:        mode,
				Template:    template,
				Frames:      selected,
				Context:     composed,
				SourceLabel: label,
			})
			if err != nil {
				if errors.Is(err, stream.ErrCancelled) && res != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "\nGeneration stopped after %d characters.\n", len(res.Partial))
				}
				return err
			}

			if strings.TrimSpace(lockPath) != "" {
				if err := writeIdentityLock(res, lockPath); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Identity locked to %s\n", lockPath)
			}

			if jsonOutput {
				view := newResultView(res.Parsed, res.Classified, &mode)
				view.SessionID = res.SessionID
				view.Exported = res.Exported
				if res.Record != nil {
					view.Saved = res.Record.ID
				}
				return writeJSON(cmd, view)
			}
			if live {
				fmt.Fprintln(out)
				fmt.Fprintln(out, strings.Repeat("─", 40))
			}
			renderClassified(out, res.Classified, &mode, expandAll, isTerminal(out))
			renderJSONSummary(out, res.Parsed)
			printRunFooter(out, res)
			return nil
		},
	}

	sampling.register(cmd)
	comp.register(cmd)
	cmd.Flags().IntSliceVar(&pick, "pick", nil, "Select only these frame numbers (1-based) from the sampled set")
	cmd.Flags().BoolVar(&save, "save", false, "Record the reply in history")
	cmd.Flags().BoolVar(&export, "export", false, "Write text and JSON artifacts to the export directory")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the result as JSON")
	cmd.Flags().BoolVar(&live, "live", isTerminal(os.Stdout), "Echo the reply while it streams")
	cmd.Flags().BoolVar(&expandAll, "all", false, "Expand working blocks too")
	cmd.Flags().StringVar(&lockPath, "lock-identity", "", "Save the reply's JSON as an identity file for later --identity runs")
	return cmd
}

func writeIdentityLock(res *analysis.Result, path string) error {
	lock, err := res.LockIdentity()
	if err != nil {
		return err
	}
	expanded, err := config.ExpandPath(path)
	if err != nil {
		return err
	}
	if err := os.WriteFile(expanded, lock.JSON(), 0o644); err != nil {
		return fmt.Errorf("write identity lock: %w", err)
	}
	return nil
}

func printRunFooter(out io.Writer, res *analysis.Result) {
	finals := 0
	for _, c := range res.Classified {
		if c.Final {
			finals++
		}
	}
	parts := []string{
		fmt.Sprintf("%d block(s), %d final", len(res.Classified), finals),
		"took " + res.Finished.Sub(res.Started).Round(100*time.Millisecond).String(),
	}
	if res.Record != nil {
		parts = append(parts, "history #"+strconv.FormatInt(res.Record.ID, 10))
	}
	if len(res.Exported) > 0 {
		parts = append(parts, fmt.Sprintf("%d file(s) exported", len(res.Exported)))
	}
	fmt.Fprintf(out, "\n%s\n", strings.Join(parts, " · "))
}
