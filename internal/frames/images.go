package frames

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"runtime"

	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"

	"artidicia/internal/services"
)

// ImageSource is one uploaded still image.
type ImageSource struct {
	Label string
	Open  func() (io.ReadCloser, error)
}

// FileSource reads a still image from disk, labelled by its base name.
func FileSource(path string) ImageSource {
	return ImageSource{
		Label: filepath.Base(path),
		Open:  func() (io.ReadCloser, error) { return os.Open(path) },
	}
}

// BytesSource wraps in-memory image bytes.
func BytesSource(label string, data []byte) ImageSource {
	return ImageSource{
		Label: label,
		Open:  func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(data)), nil },
	}
}

// LoadImages decodes stills into frames in upload order. Decoding runs in
// parallel but output order always matches sources. Any unreadable image
// fails the whole call with an error matching ErrDecode.
func LoadImages(ctx context.Context, sources []ImageSource, maxDimension int) ([]Frame, error) {
	if len(sources) == 0 {
		return nil, services.Wrap(services.ErrDecode, "sample", "load images", "No images supplied", nil)
	}
	out := make([]Frame, len(sources))
	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(runtime.GOMAXPROCS(0))
	for i, src := range sources {
		group.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			img, err := decodeStill(src)
			if err != nil {
				return services.Wrap(services.ErrDecode, "sample", "load images",
					fmt.Sprintf("Unable to decode %s", src.Label), err)
			}
			out[i] = Frame{
				ID:       NewFrameID(),
				Index:    i,
				Image:    Downscale(img, maxDimension),
				Source:   SourceUpload,
				Label:    src.Label,
				Position: i,
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func decodeStill(src ImageSource) (*image.RGBA, error) {
	if src.Open == nil {
		return nil, fmt.Errorf("no reader for %s", src.Label)
	}
	rc, err := src.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	img, _, err := image.Decode(rc)
	if err != nil {
		return nil, err
	}
	return Flatten(img), nil
}

// Flatten converts img to opaque RGBA, compositing any transparency onto white.
func Flatten(img image.Image) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, xdraw.Src)
	xdraw.Draw(dst, dst.Bounds(), img, b.Min, xdraw.Over)
	return dst
}
