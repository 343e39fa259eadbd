// Package services defines shared utilities consumed by the sampling, compile,
// and streaming stages and by the external model adapter.
//
// Key responsibilities:
//   - Context helpers that stamp session IDs, stage names, analysis modes, and
//     correlation identifiers for logging.
//   - Structured error markers plus the Wrap helper so failures carry a
//     consistent classification (decode, validation, external tool, ...).
//
// Use these helpers when wiring new stage logic so error handling and
// observability stay uniform across the pipeline.
package services
