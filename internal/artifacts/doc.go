// Package artifacts renders generation results as downloadable files and
// writes them to the export directory.
//
// Text artifacts carry one prompt block plus a metadata footer. JSON
// artifacts carry the extracted identity document with an injected id.
// Exporter serialises writers across processes with a lock file in the
// export directory.
package artifacts
