// Package prompts loads the analysis-mode catalog: each mode's base
// template, its capability flags, and the optional looks and style
// catalogs it offers.
//
// The built-in catalog is embedded; Load accepts a replacement YAML file
// with the same shape.
package prompts
