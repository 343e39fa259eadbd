package frames_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"artidicia/internal/frames"
)

func pngBytes(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestLoadImagesKeepsUploadOrder(t *testing.T) {
	var sources []frames.ImageSource
	for i := 0; i < 12; i++ {
		sources = append(sources, frames.BytesSource(
			string(rune('a'+i))+".png",
			pngBytes(t, 4+i, 4, color.NRGBA{R: uint8(i * 10), A: 255}),
		))
	}
	got, err := frames.LoadImages(context.Background(), sources, 0)
	if err != nil {
		t.Fatalf("LoadImages returned error: %v", err)
	}
	if len(got) != len(sources) {
		t.Fatalf("expected %d frames, got %d", len(sources), len(got))
	}
	for i, f := range got {
		if f.Index != i || f.Position != i {
			t.Fatalf("frame %d has index %d position %d", i, f.Index, f.Position)
		}
		if f.Label != sources[i].Label {
			t.Fatalf("frame %d label %q, want %q", i, f.Label, sources[i].Label)
		}
		if f.Image.Bounds().Dx() != 4+i {
			t.Fatalf("frame %d width %d, want %d", i, f.Image.Bounds().Dx(), 4+i)
		}
		if f.Source != frames.SourceUpload {
			t.Fatalf("unexpected source %v", f.Source)
		}
	}
}

func TestLoadImagesFlattensAlphaOntoWhite(t *testing.T) {
	src := frames.BytesSource("clear.png", pngBytes(t, 2, 2, color.NRGBA{}))
	got, err := frames.LoadImages(context.Background(), []frames.ImageSource{src}, 0)
	if err != nil {
		t.Fatalf("LoadImages returned error: %v", err)
	}
	r, g, b, a := got[0].Image.At(0, 0).RGBA()
	if r != 0xffff || g != 0xffff || b != 0xffff || a != 0xffff {
		t.Fatalf("expected opaque white, got %d %d %d %d", r, g, b, a)
	}
}

func TestLoadImagesDownscales(t *testing.T) {
	src := frames.BytesSource("big.png", pngBytes(t, 400, 100, color.NRGBA{G: 200, A: 255}))
	got, err := frames.LoadImages(context.Background(), []frames.ImageSource{src}, 100)
	if err != nil {
		t.Fatalf("LoadImages returned error: %v", err)
	}
	if b := got[0].Image.Bounds(); b.Dx() != 100 || b.Dy() != 25 {
		t.Fatalf("unexpected bounds %v", b)
	}
}

func TestLoadImagesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "still.png")
	if err := os.WriteFile(path, pngBytes(t, 3, 3, color.Black), 0o644); err != nil {
		t.Fatalf("write png: %v", err)
	}
	got, err := frames.LoadImages(context.Background(), []frames.ImageSource{frames.FileSource(path)}, 0)
	if err != nil {
		t.Fatalf("LoadImages returned error: %v", err)
	}
	if got[0].Label != "still.png" {
		t.Fatalf("unexpected label %q", got[0].Label)
	}
}

func TestLoadImagesFailures(t *testing.T) {
	if _, err := frames.LoadImages(context.Background(), nil, 0); !errors.Is(err, frames.ErrDecode) {
		t.Fatalf("expected ErrDecode for empty input, got %v", err)
	}
	sources := []frames.ImageSource{
		frames.BytesSource("ok.png", pngBytes(t, 2, 2, color.White)),
		frames.BytesSource("notes.txt", []byte("not an image")),
	}
	got, err := frames.LoadImages(context.Background(), sources, 0)
	if !errors.Is(err, frames.ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
	if got != nil {
		t.Fatal("expected no partial result")
	}
}

func TestWriteFrames(t *testing.T) {
	src := frames.BytesSource("my photo?.png", pngBytes(t, 2, 2, color.White))
	got, err := frames.LoadImages(context.Background(), []frames.ImageSource{src}, 0)
	if err != nil {
		t.Fatalf("LoadImages returned error: %v", err)
	}
	dir := filepath.Join(t.TempDir(), "selection")
	paths, err := frames.WriteFrames(dir, got)
	if err != nil {
		t.Fatalf("WriteFrames returned error: %v", err)
	}
	want := filepath.Join(dir, "001_my photo.png.png")
	if len(paths) != 1 || paths[0] != want {
		t.Fatalf("unexpected paths %v, want %s", paths, want)
	}
	if _, err := os.Stat(want); err != nil {
		t.Fatalf("stat written frame: %v", err)
	}
	data, err := frames.EncodeJPEG(got[0].Image, 85)
	if err != nil || len(data) == 0 {
		t.Fatalf("EncodeJPEG = %d bytes, %v", len(data), err)
	}
}
