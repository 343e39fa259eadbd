// Package config loads, normalizes, and validates artidicia configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// ARTIDICIA_API_KEY. The Config type centralizes every knob the CLI needs:
// decoder binaries, the default sampling strategy, the generation endpoint,
// and streaming parser thresholds.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
