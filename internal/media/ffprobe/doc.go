// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Stream: individual stream properties, including frame rate and frame count
//   - Format: container-level metadata (duration, size, bitrate)
//
// Inspect executes ffprobe and returns the parsed Result. Helper methods pick
// the primary video stream and turn ffprobe's rational frame rates and string
// counters into numbers the frame sampler can plan against.
package ffprobe
