// Package stream parses model output as it arrives.
//
// A Parser owns the buffer for exactly one generation. Append is called
// once per chunk in arrival order and may report an early JSON candidate
// the first time the buffered text contains a parseable object. Finalize
// runs authoritative extraction over the complete text and returns the
// titled prompt blocks plus any JSON document. Early detection is a hint
// for live display only; finalization never depends on it.
//
// Session wires a Parser to a chunk channel and a context. Cancelling the
// context discards the parser without producing a ParsedResult.
package stream
