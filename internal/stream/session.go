package stream

import (
	"context"
	"fmt"
	"log/slog"

	"artidicia/internal/logging"
)

// Observer receives live notifications from a Session. Nil fields are
// ignored.
type Observer struct {
	// Chunk is called after each chunk with the chunk and the full text so far.
	Chunk func(chunk, text string)
	// JSON is called at most once, when early detection fires.
	JSON func(Event)
}

// Session drives one Parser from a chunk channel.
type Session struct {
	parser   *Parser
	observer Observer
	logger   *slog.Logger
	partial  string
}

// NewSession returns a session with a fresh parser.
func NewSession(opts Options, observer Observer, logger *slog.Logger) *Session {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Session{
		parser:   NewParser(opts),
		observer: observer,
		logger:   logging.NewComponentLogger(logger, "stream"),
	}
}

// Run consumes chunks until the channel closes, then finalizes. If ctx is
// cancelled first the parser is discarded, Partial holds the text seen so
// far, and the returned error wraps both ErrCancelled and ctx.Err().
func (s *Session) Run(ctx context.Context, chunks <-chan string) (ParsedResult, error) {
	for {
		select {
		case <-ctx.Done():
			return s.cancel(ctx)
		case chunk, ok := <-chunks:
			if !ok {
				res, err := s.parser.Finalize()
				if err != nil {
					return ParsedResult{}, err
				}
				s.logger.Debug("stream finalized",
					logging.Int("bytes", len(res.RawText)),
					logging.Int("blocks", len(res.Blocks)),
					logging.Bool("json", res.HasJSON()),
				)
				return res, nil
			}
			if ctx.Err() != nil {
				return s.cancel(ctx)
			}
			event, err := s.parser.Append(chunk)
			if err != nil {
				return ParsedResult{}, err
			}
			if s.observer.Chunk != nil {
				s.observer.Chunk(chunk, s.parser.Text())
			}
			if event != nil {
				s.logger.Debug("early json detected", logging.Int("offset", event.Offset))
				if s.observer.JSON != nil {
					s.observer.JSON(*event)
				}
			}
		}
	}
}

func (s *Session) cancel(ctx context.Context) (ParsedResult, error) {
	s.partial = s.parser.Text()
	s.parser.Cancel()
	s.logger.Info("stream cancelled", logging.Int("bytes", len(s.partial)))
	return ParsedResult{}, fmt.Errorf("%w: %w", ErrCancelled, ctx.Err())
}

// Partial returns the text received before cancellation.
func (s *Session) Partial() string { return s.partial }

// Text returns the text received so far.
func (s *Session) Text() string {
	if s.partial != "" {
		return s.partial
	}
	return s.parser.Text()
}
