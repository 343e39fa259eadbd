// Package logging assembles structured slog loggers and formatting helpers used
// across artidicia.
//
// It owns the console, colour (tint), and JSON handlers, centralizes level and
// output plumbing, and exposes context-aware helpers so pipeline code can tag
// log lines with session IDs, stages, and analysis modes. The package also
// provides a no-op logger for tests and wiring code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so every component
// emits records with the same shape.
package logging
