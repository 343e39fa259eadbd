package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"artidicia/internal/config"
	"artidicia/internal/frames"
)

var stillExtensions = map[string]struct{}{
	".jpg": {}, ".jpeg": {}, ".png": {}, ".gif": {},
	".webp": {}, ".bmp": {}, ".tif": {}, ".tiff": {},
}

func isStillImage(path string) bool {
	_, ok := stillExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

type samplingFlags struct {
	interval float64
	count    int
}

func (f *samplingFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.interval, "interval", 0, "Sample one frame every N seconds")
	cmd.Flags().IntVar(&f.count, "count", 0, "Sample N frames spread over the video")
	cmd.MarkFlagsMutuallyExclusive("interval", "count")
}

// spec resolves the flags against the configured default strategy.
func (f samplingFlags) spec(cfg *config.Config) (frames.SampleSpec, error) {
	switch {
	case f.interval > 0:
		return frames.Interval(f.interval), nil
	case f.count > 0:
		return frames.Count(f.count), nil
	}
	strategy, err := frames.ParseStrategy(cfg.Sampling.Strategy)
	if err != nil {
		return frames.SampleSpec{}, err
	}
	return frames.SampleSpec{Strategy: strategy, Value: cfg.Sampling.Value}, nil
}

// loadFrames samples a single video or decodes a set of stills. It returns
// the frames and a label describing the input.
func loadFrames(ctx context.Context, cmd *cobra.Command, cfg *config.Config, logger *slog.Logger, inputs []string, spec frames.SampleSpec) ([]frames.Frame, string, error) {
	if len(inputs) == 0 {
		return nil, "", errors.New("at least one video or image path is required")
	}
	paths := make([]string, 0, len(inputs))
	for _, in := range inputs {
		path, err := config.ExpandPath(in)
		if err != nil {
			return nil, "", err
		}
		paths = append(paths, path)
	}

	stills := 0
	for _, p := range paths {
		if isStillImage(p) {
			stills++
		}
	}
	switch {
	case stills == len(paths):
		sources := make([]frames.ImageSource, 0, len(paths))
		for _, p := range paths {
			sources = append(sources, frames.FileSource(p))
		}
		loaded, err := frames.LoadImages(ctx, sources, cfg.Media.MaxDimension)
		if err != nil {
			return nil, "", err
		}
		label := filepath.Base(paths[0])
		if len(paths) > 1 {
			label = fmt.Sprintf("%s (+%d more)", label, len(paths)-1)
		}
		return loaded, label, nil
	case len(paths) == 1:
		bar := newSampleProgress(cmd.ErrOrStderr())
		sampler := frames.NewSampler(
			frames.NewFFmpegDecoder(cfg.Media.FFmpegBinary, cfg.Media.FFprobeBinary),
			frames.WithLogger(logger),
			frames.WithFallbackFPS(cfg.Media.FallbackFPS),
			frames.WithMaxDimension(cfg.Media.MaxDimension),
			frames.WithProgress(bar.update),
		)
		sampled, err := sampler.Sample(ctx, paths[0], spec)
		bar.finish()
		if err != nil {
			return nil, "", err
		}
		return sampled, filepath.Base(paths[0]), nil
	default:
		return nil, "", errors.New("mixing a video with other inputs is not supported; pass one video or only images")
	}
}

// sampleProgress draws a progress bar on terminals and does nothing otherwise.
type sampleProgress struct {
	out io.Writer
	bar *progressbar.ProgressBar
	on  bool
}

func newSampleProgress(out io.Writer) *sampleProgress {
	return &sampleProgress{out: out, on: isTerminal(out)}
}

func (p *sampleProgress) update(kept, expected int) {
	if !p.on {
		return
	}
	if p.bar == nil {
		total := expected
		if total <= 0 {
			total = -1
		}
		p.bar = progressbar.NewOptions(total,
			progressbar.OptionSetWriter(p.out),
			progressbar.OptionSetDescription("sampling"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}
	_ = p.bar.Set(kept)
}

func (p *sampleProgress) finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
	}
}
