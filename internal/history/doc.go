// Package history persists accepted generation results in SQLite.
//
// Each record keeps the source label, mode, style, model, prompt content,
// a 0-5 rating, and a free-form comment. Records are listed newest first
// and removed by id. The database runs in WAL mode and retries briefly on
// SQLITE_BUSY so the CLI and a long-running analysis can share it.
package history
