package stream

import (
	"encoding/json"
	"errors"
	"strings"
)

// ErrCancelled is returned by a Parser after Cancel.
var ErrCancelled = errors.New("stream cancelled")

// Event reports a JSON object found before the stream ended.
type Event struct {
	// Offset is the byte position of the object's opening brace.
	Offset int
	Raw    string
	Data   map[string]any
}

// Parser accumulates one generation's chunks. It is not safe for
// concurrent use; Session serialises access.
type Parser struct {
	opts Options
	buf  strings.Builder

	firstOpen int
	lastClose int
	tried     int

	emitted   bool
	cancelled bool
	final     *ParsedResult
}

// NewParser returns an empty parser.
func NewParser(opts Options) *Parser {
	if opts.MinLength < 0 {
		opts.MinLength = 0
	}
	return &Parser{opts: opts, firstOpen: -1, lastClose: -1, tried: -1}
}

// Append adds chunk to the buffer and returns an Event the first time a
// candidate JSON object parses. It returns at most one non-nil Event over
// the parser's lifetime.
func (p *Parser) Append(chunk string) (*Event, error) {
	if p.cancelled {
		return nil, ErrCancelled
	}
	if p.final != nil {
		return nil, errors.New("stream already finalized")
	}
	base := p.buf.Len()
	p.buf.WriteString(chunk)
	for i := 0; i < len(chunk); i++ {
		switch chunk[i] {
		case '{':
			if p.firstOpen < 0 {
				p.firstOpen = base + i
			}
		case '}':
			p.lastClose = base + i
		}
	}
	return p.detect(), nil
}

func (p *Parser) detect() *Event {
	if p.emitted || !p.opts.DetectJSON || p.buf.Len() <= p.opts.MinLength {
		return nil
	}
	if p.firstOpen < 0 || p.lastClose <= p.firstOpen || p.lastClose == p.tried {
		return nil
	}
	p.tried = p.lastClose
	text := p.buf.String()
	raw, ok := rawSpan(text, p.firstOpen, p.lastClose, p.opts.Extraction)
	if !ok {
		return nil
	}
	data, err := decodeObject(raw)
	if err != nil {
		return nil
	}
	p.emitted = true
	return &Event{Offset: p.firstOpen, Raw: raw, Data: data}
}

// Emitted reports whether the early JSON event has fired.
func (p *Parser) Emitted() bool { return p.emitted }

// Text returns everything appended so far.
func (p *Parser) Text() string { return p.buf.String() }

// Len returns the buffered byte count.
func (p *Parser) Len() int { return p.buf.Len() }

// Cancel discards the buffer. Later calls to Append and Finalize fail
// with ErrCancelled.
func (p *Parser) Cancel() {
	p.cancelled = true
	p.buf.Reset()
	p.final = nil
}

// Finalize extracts blocks and JSON from the complete buffer. Repeated
// calls return the same result.
func (p *Parser) Finalize() (ParsedResult, error) {
	if p.cancelled {
		return ParsedResult{}, ErrCancelled
	}
	if p.final == nil {
		res := Parse(p.buf.String(), p.opts.Extraction)
		p.final = &res
	}
	return *p.final, nil
}

func decodeObject(raw string) (map[string]any, error) {
	var data map[string]any
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, err
	}
	if data == nil {
		return nil, errors.New("json value is not an object")
	}
	return data, nil
}
