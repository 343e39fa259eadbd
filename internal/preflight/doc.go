// Package preflight provides readiness checks for the external binaries,
// directories, prompt catalog, and generation endpoint artidicia depends on.
//
// These checks run in two contexts:
//   - The "artidicia doctor" command runs every check and prints a table.
//   - The analyze command calls RunAll (without the endpoint check) before
//     sampling so a broken catalog or unwritable directory fails fast instead
//     of after decoding a video.
package preflight
