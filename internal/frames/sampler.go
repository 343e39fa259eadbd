package frames

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"artidicia/internal/logging"
	"artidicia/internal/services"
)

// ProgressFunc receives the number of kept frames and the expected total
// (0 when unknown).
type ProgressFunc func(kept, expected int)

// Sampler selects frames from a decoded video.
type Sampler struct {
	decoder      Decoder
	logger       *slog.Logger
	fallbackFPS  float64
	maxDimension int
	progress     ProgressFunc
}

// Option configures a Sampler.
type Option func(*Sampler)

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Sampler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithFallbackFPS overrides the rate assumed when the container reports none.
func WithFallbackFPS(fps float64) Option {
	return func(s *Sampler) {
		if fps > 0 {
			s.fallbackFPS = fps
		}
	}
}

// WithMaxDimension downscales kept frames to the given long edge.
func WithMaxDimension(px int) Option {
	return func(s *Sampler) {
		s.maxDimension = px
	}
}

// WithProgress registers a callback invoked after each kept frame.
func WithProgress(fn ProgressFunc) Option {
	return func(s *Sampler) {
		s.progress = fn
	}
}

// NewSampler constructs a sampler over decoder.
func NewSampler(decoder Decoder, opts ...Option) *Sampler {
	s := &Sampler{decoder: decoder, logger: logging.NewNop(), fallbackFPS: DefaultFPS}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.NewComponentLogger(s.logger, "sampler")
	return s
}

// Sample decodes source once and returns the kept frames in time order. Any
// decode failure, or a source with no frames, fails the whole call with an
// error matching ErrDecode; no partial result is returned. The source is
// released before Sample returns.
func (s *Sampler) Sample(ctx context.Context, source string, spec SampleSpec) (frames []Frame, err error) {
	if err := spec.Validate(); err != nil {
		return nil, services.Wrap(services.ErrValidation, "sample", "validate spec", err.Error(), nil)
	}
	if s.decoder == nil {
		return nil, services.Wrap(services.ErrConfiguration, "sample", "open", "No decoder configured", nil)
	}
	stream, err := s.decoder.Open(ctx, source)
	if err != nil {
		if errors.Is(err, services.ErrDecode) || errors.Is(err, services.ErrExternalTool) {
			return nil, err
		}
		return nil, services.Wrap(services.ErrDecode, "sample", "open", "Unable to open "+source, err)
	}
	defer func() {
		closeErr := stream.Close()
		switch {
		case closeErr == nil:
		case err == nil:
			frames = nil
			err = services.Wrap(services.ErrDecode, "sample", "decode", "Decoder failed on "+source, closeErr)
		case errors.Is(err, services.ErrDecode):
			err = fmt.Errorf("%w; %v", err, closeErr)
		default:
			s.logger.Warn("decoder reported an error after sampling",
				logging.String("source", source), logging.Error(closeErr))
		}
	}()

	info := stream.Info()
	fps := info.FPS
	if !(fps > 0) {
		s.logger.Debug("container reported no frame rate; using fallback",
			logging.String("source", source), logging.Float64("fallback_fps", s.fallbackFPS))
		fps = s.fallbackFPS
	}
	plan := NewPlan(spec, fps, info.FrameCount)
	expected := plan.Expected(info.FrameCount)
	s.logger.Debug("sampling plan",
		logging.String("source", source),
		logging.String("spec", spec.String()),
		logging.Float64("fps", fps),
		logging.Int("frame_count", info.FrameCount),
		logging.Int("step", plan.Step),
		logging.Int("limit", plan.Limit),
	)

	progressLog := logging.NewProgressSampler(25)
	for n := 0; !plan.Done(len(frames)); n++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !plan.Selects(n) {
			if err := stream.Skip(); err != nil {
				if errors.Is(err, io.EOF) {
					break
				}
				return nil, decodeFailure(source, n, err)
			}
			continue
		}
		img, err := stream.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, decodeFailure(source, n, err)
		}
		frames = append(frames, Frame{
			ID:       NewFrameID(),
			Index:    len(frames),
			Image:    Downscale(img, s.maxDimension),
			Source:   SourceVideo,
			Label:    fmt.Sprintf("Frame %d", len(frames)+1),
			Position: n,
		})
		if s.progress != nil {
			s.progress(len(frames), expected)
		}
		if expected > 0 && progressLog.ShouldLog(len(frames), expected) {
			s.logger.Debug("sampling progress",
				logging.Int("kept", len(frames)),
				logging.Int("expected", expected),
			)
		}
	}

	if len(frames) == 0 {
		return nil, services.Wrap(services.ErrDecode, "sample", "decode", "No frames decoded from "+source, nil)
	}
	s.logger.Info("frames sampled",
		logging.String("source", source),
		logging.Int("frames", len(frames)),
		logging.String("spec", spec.String()),
	)
	return frames, nil
}

func decodeFailure(source string, n int, err error) error {
	if errors.Is(err, services.ErrDecode) {
		return err
	}
	return services.Wrap(services.ErrDecode, "sample", "decode", fmt.Sprintf("Frame %d of %s", n, source), err)
}
