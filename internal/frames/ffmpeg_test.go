package frames

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"slices"
	"strings"
	"testing"

	"artidicia/internal/media/ffprobe"
)

func stubProbe(t *testing.T, result ffprobe.Result, err error) {
	t.Helper()
	original := probe
	probe = func(context.Context, string, string) (ffprobe.Result, error) {
		return result, err
	}
	t.Cleanup(func() { probe = original })
}

func stubFFmpeg(t *testing.T, mode string, captured *[]string) {
	t.Helper()
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		if captured != nil {
			*captured = append([]string(nil), args...)
		}
		cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestHelperProcess")
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1", "FFMPEG_HELPER_MODE="+mode)
		return cmd
	}
	t.Cleanup(func() { commandContext = original })
}

func twoByTwoProbe(rate, frames string) ffprobe.Result {
	return ffprobe.Result{Streams: []ffprobe.Stream{{
		Index: 0, CodecType: "video", Width: 2, Height: 2, RFrameRate: rate, NBFrames: frames,
	}}}
}

func TestFFmpegDecoderSamplesRawFrames(t *testing.T) {
	stubProbe(t, twoByTwoProbe("2/1", "6"), nil)
	var args []string
	stubFFmpeg(t, "six", &args)

	sampler := NewSampler(NewFFmpegDecoder("", ""))
	got, err := sampler.Sample(context.Background(), "/media/clip.mp4", Count(3))
	if err != nil {
		t.Fatalf("Sample returned error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 frames, got %d", len(got))
	}
	for i, f := range got {
		wantValue := byte(i * 2)
		if f.Image.Bounds().Dx() != 2 || f.Image.Bounds().Dy() != 2 {
			t.Fatalf("unexpected bounds %v", f.Image.Bounds())
		}
		if f.Image.Pix[0] != wantValue || f.Image.Pix[3] != 0xff {
			t.Fatalf("frame %d: pixel %v, want red=%d opaque", i, f.Image.Pix[:4], wantValue)
		}
	}
	for _, want := range []string{"rawvideo", "rgb24", "pipe:1", "/media/clip.mp4"} {
		if !slices.Contains(args, want) {
			t.Fatalf("expected ffmpeg args to contain %q, got %v", want, args)
		}
	}
}

func TestFFmpegDecoderKillsProcessOnEarlyClose(t *testing.T) {
	stubProbe(t, twoByTwoProbe("30/1", ""), nil)
	stubFFmpeg(t, "endless", nil)

	got, err := NewSampler(NewFFmpegDecoder("ffmpeg", "ffprobe")).Sample(context.Background(), "live.ts", Count(2))
	if err != nil {
		t.Fatalf("Sample returned error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(got))
	}
}

func TestFFmpegDecoderFailureIsDecodeError(t *testing.T) {
	stubProbe(t, twoByTwoProbe("30/1", "10"), nil)
	stubFFmpeg(t, "failure", nil)

	_, err := NewSampler(NewFFmpegDecoder("", "")).Sample(context.Background(), "bad.mp4", Interval(1))
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
}

func TestFFmpegDecoderExitAfterPartialOutputFailsSample(t *testing.T) {
	stubProbe(t, twoByTwoProbe("1/1", "10"), nil)
	stubFFmpeg(t, "truncated", nil)

	got, err := NewSampler(NewFFmpegDecoder("", "")).Sample(context.Background(), "corrupt.mp4", Interval(1))
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
	if got != nil {
		t.Fatalf("expected no frames on decoder failure, got %d", len(got))
	}
	if !strings.Contains(err.Error(), "Invalid NAL unit size") {
		t.Fatalf("expected ffmpeg stderr in error, got %v", err)
	}
}

func TestFFmpegDecoderRequiresVideoStream(t *testing.T) {
	stubProbe(t, ffprobe.Result{Streams: []ffprobe.Stream{{CodecType: "audio"}}}, nil)
	_, err := NewFFmpegDecoder("", "").Open(context.Background(), "song.mp3")
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
}

func TestFFmpegDecoderProbeFailure(t *testing.T) {
	stubProbe(t, ffprobe.Result{}, errors.New("invalid data"))
	_, err := NewFFmpegDecoder("", "").Open(context.Background(), "junk.bin")
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
}

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	frame := func(n int) []byte {
		buf := make([]byte, 2*2*3)
		for i := 0; i < len(buf); i += 3 {
			buf[i] = byte(n)
		}
		return buf
	}
	switch os.Getenv("FFMPEG_HELPER_MODE") {
	case "six":
		for n := 0; n < 6; n++ {
			os.Stdout.Write(frame(n))
		}
		os.Exit(0)
	case "endless":
		for n := 0; ; n++ {
			if _, err := os.Stdout.Write(frame(n)); err != nil {
				os.Exit(0)
			}
		}
	case "truncated":
		for n := 0; n < 3; n++ {
			os.Stdout.Write(frame(n))
		}
		os.Stderr.WriteString("Invalid NAL unit size\n")
		os.Exit(1)
	case "failure":
		os.Stderr.WriteString("moov atom not found\n")
		os.Exit(1)
	default:
		os.Exit(0)
	}
}
