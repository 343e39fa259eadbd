// Package main hosts the artidicia CLI entrypoint and command graph.
//
// The Cobra-based command tree turns terminal invocations into frame
// sampling, instruction compilation, reply parsing, and end-to-end analysis
// runs against an OpenAI-compatible vision endpoint. It centralizes
// configuration resolution, catalog loading, and structured logging setup so
// subcommands can focus on presentation instead of wiring.
//
// Keep this package lean: add new functionality to the internal packages
// first, then surface it through dedicated commands or flags here.
package main
