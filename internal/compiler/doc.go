// Package compiler assembles the final instruction text sent to a
// generation model.
//
// Compile is a pure function of its template, mode, and composition
// context. It runs six stages in a fixed order: template render, identity
// lock, fusion annotations, look restriction, fidelity bands, and custom
// override. Every stage either contributes text or records why it was
// skipped in the returned trace. Skipped stages are never errors.
//
// The output has three regions. The preamble holds the identity lock
// followed by fusion annotations. The body is the rendered template. The
// tail holds restrictions, fidelity directives, and the override, in stage
// order. Later stages only add to these regions and never reorder earlier
// contributions.
package compiler
