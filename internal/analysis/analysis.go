package analysis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"artidicia/internal/artifacts"
	"artidicia/internal/compiler"
	"artidicia/internal/composition"
	"artidicia/internal/frames"
	"artidicia/internal/history"
	"artidicia/internal/logging"
	"artidicia/internal/prompts"
	"artidicia/internal/results"
	"artidicia/internal/services"
	"artidicia/internal/services/llm"
	"artidicia/internal/stream"
)

const chunkBuffer = 32

// Recorder persists finished generations.
type Recorder interface {
	Save(ctx context.Context, rec history.Record) (*history.Record, error)
}

// Request describes one analysis.
type Request struct {
	Mode prompts.Mode
	// Template overrides Mode.Template when non-empty.
	Template string
	// Frames are the selected frames in selection order. Their IDs must match
	// Context.Selection.
	Frames  []frames.Frame
	Context composition.Context
	// SourceLabel names the input (video file, image set) for history.
	SourceLabel string
}

// Result is the outcome of a completed analysis.
type Result struct {
	SessionID   string
	Model       string
	Instruction compiler.Result
	Parsed      stream.ParsedResult
	Classified  []results.Classified
	// EarlyJSON is set when the parser detected JSON before the stream ended.
	EarlyJSON *stream.Event
	Record    *history.Record
	Exported  []string
	// Partial holds the reply received before a cancellation or stream error.
	Partial  string
	Started  time.Time
	Finished time.Time
}

// Analyzer coordinates compile, generate, parse, and classify.
type Analyzer struct {
	generator llm.Generator
	model     string
	stream    stream.Options
	quality   int
	logger    *slog.Logger
	recorder  Recorder
	exporter  *artifacts.Exporter
	observer  stream.Observer
	now       func() time.Time
}

// Option customizes an Analyzer.
type Option func(*Analyzer)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Analyzer) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithModel records the model name on results and history.
func WithModel(model string) Option {
	return func(a *Analyzer) { a.model = strings.TrimSpace(model) }
}

// WithStreamOptions sets the parser tuning.
func WithStreamOptions(opts stream.Options) Option {
	return func(a *Analyzer) { a.stream = opts }
}

// WithJPEGQuality sets the quality used when encoding frames for the generator.
func WithJPEGQuality(quality int) Option {
	return func(a *Analyzer) { a.quality = quality }
}

// WithRecorder saves every completed reply.
func WithRecorder(recorder Recorder) Option {
	return func(a *Analyzer) { a.recorder = recorder }
}

// WithExporter writes artifacts for every completed reply.
func WithExporter(exporter *artifacts.Exporter) Option {
	return func(a *Analyzer) { a.exporter = exporter }
}

// WithObserver receives live stream notifications.
func WithObserver(observer stream.Observer) Option {
	return func(a *Analyzer) { a.observer = observer }
}

// WithClock overrides the time source used for timestamps and artifact names.
func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) {
		if now != nil {
			a.now = now
		}
	}
}

// New constructs an Analyzer around generator.
func New(generator llm.Generator, opts ...Option) *Analyzer {
	a := &Analyzer{
		generator: generator,
		stream:    stream.DefaultOptions(),
		quality:   90,
		logger:    logging.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = logging.NewComponentLogger(a.logger, "analysis")
	return a
}

// Run performs one analysis. On cancellation or a stream failure the
// returned Result carries Partial and the error wraps stream.ErrCancelled or
// the generator error.
func (a *Analyzer) Run(ctx context.Context, req Request) (*Result, error) {
	if a.generator == nil {
		return nil, services.Wrap(services.ErrConfiguration, "analysis", "run", "No generator configured", nil)
	}
	if len(req.Frames) == 0 {
		return nil, services.Wrap(services.ErrValidation, "analysis", "run", "No frames selected", nil)
	}

	res := &Result{
		SessionID: uuid.NewString(),
		Model:     a.model,
		Started:   a.now(),
	}
	ctx = services.WithSessionID(ctx, res.SessionID)
	ctx = services.WithMode(ctx, req.Mode.Key)
	logger := logging.WithContext(services.WithStage(ctx, "compile"), a.logger)

	if len(req.Context.Selection) == 0 {
		for _, f := range req.Frames {
			req.Context.Selection = append(req.Context.Selection, f.ID)
		}
	}
	req.Context.Annotations = maps.Clone(req.Context.Annotations)
	req.Context.Prune()
	template := req.Template
	if strings.TrimSpace(template) == "" {
		template = req.Mode.Template
	}
	instruction, err := compiler.Compile(template, req.Mode, req.Context)
	if err != nil {
		return nil, fmt.Errorf("compile instruction: %w", err)
	}
	res.Instruction = instruction
	for _, tr := range instruction.Trace {
		logger.Debug("compile stage",
			logging.String("stage", string(tr.Stage)),
			logging.Bool("applied", tr.Applied),
			logging.String("detail", tr.Detail),
		)
	}

	images, err := encodeFrames(ctx, req.Frames, a.quality)
	if err != nil {
		return nil, err
	}

	opts := a.stream
	if req.Context.IdentityActive() {
		// A locked identity means the reply must not mint new identity JSON mid-stream.
		opts.DetectJSON = false
	}
	observer := a.observer
	userJSON := observer.JSON
	observer.JSON = func(ev stream.Event) {
		res.EarlyJSON = &ev
		if userJSON != nil {
			userJSON(ev)
		}
	}

	logger.Info("analysis started",
		logging.String("source", req.SourceLabel),
		logging.Int("frames", len(images)),
		logging.Int("instruction_chars", len(instruction.Text)),
		logging.Bool("early_json", opts.DetectJSON),
	)

	genCtx := services.WithRequestID(services.WithStage(ctx, "generate"), uuid.NewString())
	logger = logging.WithContext(genCtx, a.logger)
	parsed, partial, err := a.generate(genCtx, logger, llm.Request{Instruction: instruction.Text, Images: images}, opts, observer)
	res.Partial = partial
	if err != nil {
		res.Finished = a.now()
		logFailure(logger, err, len(partial))
		return res, err
	}
	res.Parsed = parsed
	res.Classified = results.Classify(parsed.Blocks)
	if parsed.JSONError != "" {
		logging.WarnWithContext(logger, "reply JSON could not be parsed", "json_malformed",
			logging.String("detail", parsed.JSONError),
		)
	}

	persistCtx := services.WithStage(ctx, "persist")
	persistLogger := logging.WithContext(persistCtx, a.logger)
	if err := a.persist(persistCtx, persistLogger, req, res); err != nil {
		res.Finished = a.now()
		logFailure(persistLogger, err, 0)
		return res, err
	}
	res.Finished = a.now()
	logger.Info("analysis complete",
		logging.Int("blocks", len(parsed.Blocks)),
		logging.Bool("json", parsed.HasJSON()),
		logging.Duration("elapsed", res.Finished.Sub(res.Started)),
	)
	return res, nil
}

// IdentityData returns the reply's JSON document, falling back to the object
// detected mid-stream.
func (r *Result) IdentityData() map[string]any {
	if r.Parsed.JSONData != nil {
		return r.Parsed.JSONData
	}
	if r.EarlyJSON != nil {
		return r.EarlyJSON.Data
	}
	return nil
}

// LockIdentity turns the reply's JSON into an identity lock for later runs.
func (r *Result) LockIdentity() (*composition.IdentityLock, error) {
	data := r.IdentityData()
	if data == nil {
		return nil, services.Wrap(services.ErrNotFound, "analysis", "lock identity", "Reply contained no JSON to lock", nil)
	}
	return composition.IdentityLockFromValue(data)
}

func logFailure(logger *slog.Logger, err error, partialChars int) {
	if errors.Is(err, stream.ErrCancelled) {
		logger.Info("analysis cancelled", logging.Int("partial_chars", partialChars))
		return
	}
	logging.WarnWithContext(logger, "analysis failed", "analysis_failed",
		logging.String("error_kind", services.Kind(err)),
		logging.String(logging.FieldImpact, "analysis produced no result"),
		logging.Int("partial_chars", partialChars),
		logging.Error(err),
	)
}

func (a *Analyzer) generate(ctx context.Context, logger *slog.Logger, req llm.Request, opts stream.Options, observer stream.Observer) (stream.ParsedResult, string, error) {
	g, gctx := errgroup.WithContext(ctx)
	reply, err := a.generator.Generate(gctx, req)
	if err != nil {
		return stream.ParsedResult{}, "", fmt.Errorf("start generation: %w", err)
	}

	chunks := make(chan string, chunkBuffer)
	g.Go(func() error {
		defer close(chunks)
		defer reply.Close()
		for {
			chunk, err := reply.Recv()
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("receive reply: %w", err)
			}
			select {
			case chunks <- chunk:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
	})

	session := stream.NewSession(opts, observer, logger)
	var parsed stream.ParsedResult
	g.Go(func() error {
		var err error
		parsed, err = session.Run(gctx, chunks)
		return err
	})

	if err := g.Wait(); err != nil {
		if ctx.Err() != nil {
			return stream.ParsedResult{}, session.Text(), fmt.Errorf("%w: %w", stream.ErrCancelled, ctx.Err())
		}
		return stream.ParsedResult{}, session.Text(), err
	}
	return parsed, "", nil
}

func (a *Analyzer) persist(ctx context.Context, logger *slog.Logger, req Request, res *Result) error {
	style := req.Context.Style
	if a.recorder != nil && strings.TrimSpace(res.Parsed.RawText) != "" {
		rec, err := a.recorder.Save(ctx, history.Record{
			CreatedAt:   res.Started,
			SourceLabel: req.SourceLabel,
			Mode:        req.Mode.Key,
			Style:       style,
			Model:       res.Model,
			Content:     res.Parsed.RawText,
			JSONData:    res.Parsed.JSONData,
			SessionID:   res.SessionID,
		})
		if err != nil {
			return fmt.Errorf("save history: %w", err)
		}
		res.Record = rec
		logger.Info("history saved", logging.Int("record_id", int(rec.ID)))
	}
	if a.exporter != nil {
		docs, err := artifacts.FromResult(res.Parsed, req.Mode.DisplayName(), style, a.now())
		if err != nil {
			return fmt.Errorf("render artifacts: %w", err)
		}
		paths, err := a.exporter.Write(ctx, docs...)
		res.Exported = paths
		if err != nil {
			return fmt.Errorf("export artifacts: %w", err)
		}
	}
	return nil
}
