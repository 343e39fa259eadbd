package llm

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"artidicia/internal/logging"
	"artidicia/internal/services"
)

const (
	defaultHTTPTimeout    = 10 * time.Minute
	defaultRetryMaxDelay  = 10 * time.Second
	defaultRetryBaseDelay = 1 * time.Second
	defaultRetryAttempts  = 5
	defaultMaxTemperature = 2.0
)

// Config captures the runtime settings required to talk to the endpoint.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	Temperature    float64
	MaxTemperature float64
	TimeoutSeconds int
}

// Image is one encoded frame.
type Image struct {
	MIME string
	Data []byte
}

// Request is one generation.
type Request struct {
	Instruction string
	Images      []Image
}

// Stream yields reply text. Recv returns io.EOF after the last chunk.
type Stream interface {
	Recv() (string, error)
	Close() error
}

// Generator produces a reply stream for a request.
type Generator interface {
	Generate(ctx context.Context, req Request) (Stream, error)
}

// Client talks to an OpenAI-compatible chat completion endpoint.
type Client struct {
	cfg        Config
	api        *openai.Client
	httpClient *http.Client
	logger     *slog.Logger

	retryMaxAttempts int
	retryBaseDelay   time.Duration
	retryMaxDelay    time.Duration
	sleeper          func(time.Duration)
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRetryMaxAttempts overrides the default retry count (defaults to 5).
func WithRetryMaxAttempts(attempts int) Option {
	return func(c *Client) {
		c.retryMaxAttempts = attempts
	}
}

// WithRetryBackoff overrides the retry backoff delays.
func WithRetryBackoff(baseDelay, maxDelay time.Duration) Option {
	return func(c *Client) {
		c.retryBaseDelay = baseDelay
		c.retryMaxDelay = maxDelay
	}
}

// WithSleeper overrides how retry sleeps are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Client) {
		c.sleeper = sleeper
	}
}

// WithLogger sets the logger used for retry and fallback notices.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient constructs a client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg: Config{
			APIKey:         strings.TrimSpace(cfg.APIKey),
			BaseURL:        strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
			Model:          strings.TrimSpace(cfg.Model),
			Temperature:    cfg.Temperature,
			MaxTemperature: cfg.MaxTemperature,
			TimeoutSeconds: cfg.TimeoutSeconds,
		},
		httpClient:       &http.Client{Timeout: timeout},
		logger:           logging.NewNop(),
		retryMaxAttempts: defaultRetryAttempts,
		retryBaseDelay:   defaultRetryBaseDelay,
		retryMaxDelay:    defaultRetryMaxDelay,
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.cfg.MaxTemperature <= 0 {
		client.cfg.MaxTemperature = defaultMaxTemperature
	}
	client.logger = logging.NewComponentLogger(client.logger, "llm")

	apiCfg := openai.DefaultConfig(client.cfg.APIKey)
	if client.cfg.BaseURL != "" {
		apiCfg.BaseURL = client.cfg.BaseURL
	}
	apiCfg.HTTPClient = client.httpClient
	client.api = openai.NewClientWithConfig(apiCfg)
	return client
}

// Model returns the configured model name.
func (c *Client) Model() string { return c.cfg.Model }

// DataURI encodes img for an image_url message part.
func DataURI(img Image) string {
	mime := img.MIME
	if mime == "" {
		mime = "image/jpeg"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}

func (c *Client) buildRequest(req Request, temperature float64) openai.ChatCompletionRequest {
	parts := make([]openai.ChatMessagePart, 0, len(req.Images)+1)
	parts = append(parts, openai.ChatMessagePart{Type: openai.ChatMessagePartTypeText, Text: req.Instruction})
	for _, img := range req.Images {
		parts = append(parts, openai.ChatMessagePart{
			Type:     openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{URL: DataURI(img), Detail: openai.ImageURLDetailAuto},
		})
	}
	return openai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		Temperature: float32(temperature),
		Stream:      true,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, MultiContent: parts},
		},
	}
}

// Generate opens a reply stream for req.
func (c *Client) Generate(ctx context.Context, req Request) (Stream, error) {
	if c.cfg.Model == "" {
		return nil, services.Wrap(services.ErrConfiguration, "generate", "validate", "llm.model is required", nil)
	}
	if strings.TrimSpace(req.Instruction) == "" {
		return nil, services.Wrap(services.ErrValidation, "generate", "validate", "instruction is empty", nil)
	}

	temperature := c.cfg.Temperature
	stream, err := c.openWithRetry(ctx, c.buildRequest(req, temperature))
	if err != nil && temperature > c.cfg.MaxTemperature && isTemperatureRejection(err) {
		c.logger.Warn("temperature rejected; retrying at maximum",
			logging.Float64("temperature", temperature),
			logging.Float64("max_temperature", c.cfg.MaxTemperature),
		)
		stream, err = c.openWithRetry(ctx, c.buildRequest(req, c.cfg.MaxTemperature))
	}
	if err != nil {
		return nil, classifyError(err)
	}
	c.logger.Debug("reply stream opened",
		logging.String("model", c.cfg.Model),
		logging.Int("images", len(req.Images)),
		logging.Int("instruction_bytes", len(req.Instruction)),
	)
	return &chatStream{stream: stream}, nil
}

func (c *Client) openWithRetry(ctx context.Context, req openai.ChatCompletionRequest) (*openai.ChatCompletionStream, error) {
	attempts := c.retryAttempts()
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		stream, err := c.api.CreateChatCompletionStream(ctx, req)
		if err == nil {
			return stream, nil
		}
		delay, retry := c.retryDelay(ctx, err, attempt, attempts)
		if !retry {
			return nil, err
		}
		c.logger.Warn("llm request failed; retrying",
			logging.Int("attempt", attempt),
			logging.Duration("delay", delay),
			logging.Error(err),
		)
		if err := c.sleep(ctx, delay); err != nil {
			return nil, err
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = errors.New("unknown retry failure")
	}
	return nil, fmt.Errorf("open stream: failed after %d attempts: %w", attempts, lastErr)
}

// HealthCheck verifies the endpoint answers and lists the configured model.
func (c *Client) HealthCheck(ctx context.Context) error {
	models, err := c.Models(ctx)
	if err != nil {
		return err
	}
	if c.cfg.Model != "" && !slices.Contains(models, c.cfg.Model) {
		return services.Wrap(services.ErrNotFound, "llm", "health", fmt.Sprintf("model %q not offered by %s", c.cfg.Model, c.cfg.BaseURL), nil)
	}
	return nil
}

// Models lists the model ids the endpoint offers.
func (c *Client) Models(ctx context.Context) ([]string, error) {
	list, err := c.api.ListModels(ctx)
	if err != nil {
		return nil, classifyError(err)
	}
	ids := make([]string, 0, len(list.Models))
	for _, m := range list.Models {
		ids = append(ids, m.ID)
	}
	slices.Sort(ids)
	return ids, nil
}

type chatStream struct {
	stream *openai.ChatCompletionStream
}

func (s *chatStream) Recv() (string, error) {
	for {
		resp, err := s.stream.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return "", io.EOF
			}
			return "", classifyError(err)
		}
		var b strings.Builder
		for _, choice := range resp.Choices {
			b.WriteString(choice.Delta.Content)
		}
		if b.Len() > 0 {
			return b.String(), nil
		}
	}
}

func (s *chatStream) Close() error {
	return s.stream.Close()
}

// Collect drains stream and returns the full reply.
func Collect(stream Stream) (string, error) {
	defer stream.Close()
	var b strings.Builder
	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return b.String(), nil
		}
		if err != nil {
			return b.String(), err
		}
		b.WriteString(chunk)
	}
}
