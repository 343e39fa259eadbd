// Package composition holds the caller-owned record that drives prompt
// compilation: the selected frames, per-frame weight and focus, fidelity
// sliders, an optional identity lock, and a free-text override.
//
// Per-frame settings are keyed by frames.FrameID, never by position, so
// removing a frame from a working set cannot shift settings onto its
// neighbours.
package composition
