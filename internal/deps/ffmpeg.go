package deps

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// MediaRequirements lists the decoder binaries frame sampling needs.
func MediaRequirements(ffmpegCommand, ffprobeCommand string) []Requirement {
	return []Requirement{
		{Name: "FFmpeg", Command: ffmpegCommand, Description: "Decodes video frames for sampling"},
		{Name: "FFprobe", Command: ffprobeCommand, Description: "Reads frame rate and frame count"},
	}
}

// ResolveFFprobe reports the ffprobe binary to use alongside ffmpegCommand.
//
// A configured ffprobe that resolves on PATH wins. Otherwise an ffprobe
// sitting next to the resolved ffmpeg is used, which covers static builds
// unpacked outside PATH.
func ResolveFFprobe(ffmpegCommand, ffprobeCommand string) Status {
	result := Status{
		Name:        "FFprobe",
		Description: "Reads frame rate and frame count",
	}

	probe := strings.TrimSpace(ffprobeCommand)
	if probe == "" {
		probe = "ffprobe"
	}
	if resolved, err := exec.LookPath(probe); err == nil {
		result.Command = probe
		result.Path = resolved
		result.Available = true
		return result
	}

	if ffmpegBinary := strings.TrimSpace(ffmpegCommand); ffmpegBinary != "" {
		if resolved, err := exec.LookPath(ffmpegBinary); err == nil {
			candidate := siblingBinary(resolved, "ffprobe")
			if info, statErr := os.Stat(candidate); statErr == nil && isExecutable(info) {
				result.Command = candidate
				result.Path = candidate
				result.Available = true
				return result
			}
		}
	}

	result.Command = probe
	result.Detail = fmt.Sprintf("binary %q not found", probe)
	return result
}

func siblingBinary(path, name string) string {
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	return filepath.Join(filepath.Dir(path), name)
}

func isExecutable(info os.FileInfo) bool {
	if info == nil || info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}
