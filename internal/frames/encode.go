package frames

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"

	"artidicia/internal/textutil"
)

// EncodeJPEG encodes a frame bitmap for hand-off to a generation client.
func EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	if img == nil {
		return nil, fmt.Errorf("encode jpeg: nil image")
	}
	if quality < 1 || quality > 100 {
		quality = jpeg.DefaultQuality
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFrames saves frames as PNG files named "<nnn>_<label>.png" inside dir,
// numbered by working-set position. It returns the written paths in order.
func WriteFrames(dir string, frames []Frame) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create frame directory: %w", err)
	}
	paths := make([]string, 0, len(frames))
	for i, f := range frames {
		label := textutil.SafeLabel(f.Label)
		if label == "" {
			label = "frame"
		}
		path := filepath.Join(dir, fmt.Sprintf("%03d_%s.png", i+1, label))
		if err := writePNG(path, f.Image); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writePNG(path string, img image.Image) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(file, img); err != nil {
		file.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return file.Close()
}
