package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"artidicia/internal/config"
	"artidicia/internal/logging"
	"artidicia/internal/prompts"
	"artidicia/internal/results"
	"artidicia/internal/stream"
)

func newParseCommand(ctx *commandContext) *cobra.Command {
	var chunkSize int
	var minLength int
	var extraction string
	var noDetect bool
	var modeKey string
	var jsonOutput bool
	var expandAll bool

	cmd := &cobra.Command{
		Use:   "parse [file|-]",
		Short: "Stream a saved reply through the parser and classify its blocks",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger(cmd)
			if err != nil {
				return err
			}

			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			opts, err := streamOptions(cfg, cmd, minLength, extraction, noDetect)
			if err != nil {
				return err
			}
			var mode *prompts.Mode
			if strings.TrimSpace(modeKey) != "" {
				catalog, err := ctx.ensureCatalog()
				if err != nil {
					return err
				}
				m, err := catalog.Mode(modeKey)
				if err != nil {
					return err
				}
				mode = &m
			}

			out := cmd.OutOrStdout()
			observer := stream.Observer{}
			if !jsonOutput {
				observer.JSON = func(ev stream.Event) {
					fmt.Fprintf(out, "early JSON detected after %d bytes (%d keys)\n\n", ev.Offset, len(ev.Data))
				}
			}
			session := stream.NewSession(opts, observer, logger)
			parsed, err := session.Run(cmd.Context(), chunkText(cmd.Context(), text, chunkSize))
			if err != nil {
				return err
			}
			logger.Debug("reply parsed",
				logging.Int("chunk_size", chunkSize),
				logging.String("extraction", opts.Extraction.String()),
			)

			classified := results.Classify(parsed.Blocks)
			if jsonOutput {
				return writeJSON(cmd, newResultView(parsed, classified, mode))
			}
			if !parsed.HasBlocks() {
				fmt.Fprintln(out, "No prompt blocks found.")
			}
			renderClassified(out, classified, mode, expandAll, isTerminal(out))
			renderJSONSummary(out, parsed)
			return nil
		},
	}

	cmd.Flags().IntVar(&chunkSize, "chunk-size", 64, "Bytes per simulated stream chunk")
	cmd.Flags().IntVar(&minLength, "min-length", 0, "Override the early detection threshold")
	cmd.Flags().StringVar(&extraction, "extraction", "", "JSON extraction strategy (greedy, balanced)")
	cmd.Flags().BoolVar(&noDetect, "no-detect", false, "Disable early JSON detection")
	cmd.Flags().StringVarP(&modeKey, "mode", "m", "", "Mode whose look groups organise look-catalog output")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the parsed result as JSON")
	cmd.Flags().BoolVar(&expandAll, "all", false, "Expand working blocks too")
	return cmd
}

func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	path, err := config.ExpandPath(args[0])
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read reply: %w", err)
	}
	return string(data), nil
}

// streamOptions starts from the [stream] config section and applies flags
// that were explicitly set.
func streamOptions(cfg *config.Config, cmd *cobra.Command, minLength int, extraction string, noDetect bool) (stream.Options, error) {
	opts := stream.DefaultOptions()
	opts.MinLength = cfg.Stream.MinDetectLength
	mode, err := stream.ParseExtraction(cfg.Stream.JSONExtraction)
	if err != nil {
		return opts, err
	}
	opts.Extraction = mode
	if cmd.Flags().Changed("min-length") {
		opts.MinLength = minLength
	}
	if strings.TrimSpace(extraction) != "" {
		if opts.Extraction, err = stream.ParseExtraction(extraction); err != nil {
			return opts, err
		}
	}
	opts.DetectJSON = !noDetect
	return opts, nil
}

// chunkText replays text as a stream of fixed-size chunks.
func chunkText(ctx context.Context, text string, size int) <-chan string {
	if size < 1 {
		size = len(text) + 1
	}
	chunks := make(chan string)
	go func() {
		defer close(chunks)
		for start := 0; start < len(text); start += size {
			end := min(start+size, len(text))
			select {
			case chunks <- text[start:end]:
			case <-ctx.Done():
				return
			}
		}
	}()
	return chunks
}
