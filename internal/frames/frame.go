package frames

import (
	"image"

	"github.com/google/uuid"

	"artidicia/internal/services"
)

// ErrDecode marks unreadable or empty media. It matches services.ErrDecode.
var ErrDecode = services.ErrDecode

// FrameID is a stable opaque frame identifier, independent of position.
type FrameID string

// NewFrameID returns a fresh random identifier.
func NewFrameID() FrameID {
	return FrameID(uuid.NewString())
}

// Source records where a frame came from.
type Source int

const (
	SourceVideo Source = iota
	SourceUpload
)

func (s Source) String() string {
	switch s {
	case SourceVideo:
		return "video"
	case SourceUpload:
		return "upload"
	default:
		return "unknown"
	}
}

// Frame is one sampled bitmap. Frames are immutable once sampled; callers
// must not draw into Image.
type Frame struct {
	ID     FrameID
	Index  int
	Image  *image.RGBA
	Source Source
	Label  string
	// Position is the decoded frame number for video frames and the upload
	// order for stills.
	Position int
}

// Timestamp returns the frame offset in seconds for video frames sampled at fps.
func (f Frame) Timestamp(fps float64) float64 {
	if f.Source != SourceVideo || fps <= 0 {
		return 0
	}
	return float64(f.Position) / fps
}
