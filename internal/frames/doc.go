// Package frames selects a bounded set of representative frames from a video
// or a list of still images.
//
// Sampler drives a Decoder (FFmpegDecoder in production) through a single
// sequential pass and keeps every Plan.Step-th frame. The interval strategy
// is unbounded; the count strategy stops once its target is reached. Stills
// bypass decoding strategy entirely and keep upload order.
//
// Every Frame carries an opaque FrameID. WorkingSet keeps frames in display
// order and renumbers Index on removal, so per-frame settings should always
// be keyed by ID rather than position.
package frames
