// Package analysis runs one end-to-end generation: compile the instruction,
// hand the selected frames to a generator, stream the reply through the
// parser, and classify the resulting blocks.
//
// The reply stream is consumed by two goroutines joined with an errgroup: a
// producer pulls chunks from the generator and a stream.Session consumes
// them. Cancelling the caller's context aborts both and leaves the partial
// reply text on the returned error path via Result.Partial.
//
// Persisting the reply (history) and writing artifacts (exports) are
// optional and configured with Options.
package analysis
