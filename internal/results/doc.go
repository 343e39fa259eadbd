// Package results orders and reshapes parsed prompt blocks for display.
//
// Classify puts final prompts ahead of intermediate reasoning and marks
// which blocks start expanded. SplitLooks breaks look-catalog output into
// one segment per look, and GroupLooks files those segments under the
// mode's look groups. Reflow spaces out inline section tags.
package results
