package frames

import (
	"context"
	"image"
)

// StreamInfo describes a decodable video stream.
type StreamInfo struct {
	Width      int
	Height     int
	FPS        float64
	FrameCount int
	Duration   float64
}

// Stream yields decoded frames in presentation order. Next and Skip return
// io.EOF after the last frame. Close releases the underlying source and must
// be safe to call after any error. A Close error after io.EOF means the
// source ended early and fails the sample.
type Stream interface {
	Info() StreamInfo
	Next() (*image.RGBA, error)
	Skip() error
	Close() error
}

// Decoder opens sources for sequential decoding.
type Decoder interface {
	Open(ctx context.Context, source string) (Stream, error)
}
