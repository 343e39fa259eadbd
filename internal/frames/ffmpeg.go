package frames

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os/exec"
	"strings"
	"sync"

	"artidicia/internal/media/ffprobe"
	"artidicia/internal/services"
)

var (
	commandContext = exec.CommandContext
	probe          = ffprobe.Inspect
)

// FFmpegDecoder decodes video through an ffmpeg rawvideo pipe after probing
// geometry and timing with ffprobe.
type FFmpegDecoder struct {
	FFmpegBinary  string
	FFprobeBinary string
}

// NewFFmpegDecoder constructs a decoder using the given binaries, defaulting
// to ffmpeg and ffprobe on PATH.
func NewFFmpegDecoder(ffmpegBinary, ffprobeBinary string) *FFmpegDecoder {
	if strings.TrimSpace(ffmpegBinary) == "" {
		ffmpegBinary = "ffmpeg"
	}
	if strings.TrimSpace(ffprobeBinary) == "" {
		ffprobeBinary = "ffprobe"
	}
	return &FFmpegDecoder{FFmpegBinary: ffmpegBinary, FFprobeBinary: ffprobeBinary}
}

// Open probes the source and starts one ffmpeg process for it.
func (d *FFmpegDecoder) Open(ctx context.Context, source string) (Stream, error) {
	result, err := probe(ctx, d.FFprobeBinary, source)
	if err != nil {
		return nil, services.Wrap(services.ErrDecode, "sample", "probe", "Unable to read video metadata", err)
	}
	video, ok := result.VideoStream()
	if !ok {
		return nil, services.Wrap(services.ErrDecode, "sample", "probe", "No video stream in "+source, nil)
	}
	if video.Width <= 0 || video.Height <= 0 {
		return nil, services.Wrap(services.ErrDecode, "sample", "probe",
			fmt.Sprintf("Invalid video dimensions %dx%d", video.Width, video.Height), nil)
	}
	duration := video.DurationSeconds()
	if duration <= 0 {
		duration = result.DurationSeconds()
	}
	info := StreamInfo{
		Width:      video.Width,
		Height:     video.Height,
		FPS:        video.FrameRate(),
		FrameCount: video.FrameCount(),
		Duration:   duration,
	}

	args := []string{
		"-v", "error", "-nostdin", "-noautorotate",
		"-i", source,
		"-map", "0:v:0",
		"-f", "rawvideo", "-pix_fmt", "rgb24",
		"pipe:1",
	}
	cmd := commandContext(ctx, d.FFmpegBinary, args...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	stream := &ffmpegStream{cmd: cmd, stdout: stdout, info: info, buf: make([]byte, info.Width*info.Height*3)}
	cmd.Stderr = &stream.stderr
	if err := cmd.Start(); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "sample", "start ffmpeg", "Unable to launch ffmpeg", err)
	}
	return stream, nil
}

type ffmpegStream struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
	stderr bytes.Buffer
	info   StreamInfo
	buf    []byte
	eof    bool

	closeOnce sync.Once
	closeErr  error
}

func (s *ffmpegStream) Info() StreamInfo { return s.info }

func (s *ffmpegStream) read() error {
	if s.eof {
		return io.EOF
	}
	if _, err := io.ReadFull(s.stdout, s.buf); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			s.eof = true
			return io.EOF
		}
		return services.Wrap(services.ErrDecode, "sample", "read frame", "ffmpeg pipe read failed", err)
	}
	return nil
}

func (s *ffmpegStream) Next() (*image.RGBA, error) {
	if err := s.read(); err != nil {
		return nil, err
	}
	return rgb24ToRGBA(s.buf, s.info.Width, s.info.Height), nil
}

func (s *ffmpegStream) Skip() error {
	return s.read()
}

// Close stops ffmpeg if it is still running and reaps it. Exit errors are
// reported only after the pipe hit EOF; a process killed for a capped sample
// exits non-zero as well.
func (s *ffmpegStream) Close() error {
	s.closeOnce.Do(func() {
		if !s.eof && s.cmd.Process != nil {
			_ = s.cmd.Process.Kill()
		}
		_ = s.stdout.Close()
		err := s.cmd.Wait()
		if err != nil && s.eof {
			msg := strings.TrimSpace(s.stderr.String())
			if msg == "" {
				msg = "ffmpeg exited with an error"
			}
			s.closeErr = services.Wrap(services.ErrExternalTool, "sample", "ffmpeg", msg, err)
		}
	})
	return s.closeErr
}

func rgb24ToRGBA(src []byte, width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	pix := img.Pix
	for i, j := 0, 0; i+2 < len(src) && j+3 < len(pix); i, j = i+3, j+4 {
		pix[j] = src[i]
		pix[j+1] = src[i+1]
		pix[j+2] = src[i+2]
		pix[j+3] = 0xff
	}
	return img
}

var _ Decoder = (*FFmpegDecoder)(nil)
