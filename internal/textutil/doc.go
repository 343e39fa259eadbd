// Package textutil provides filename sanitization helpers.
//
// The primary use cases are:
//   - Naming exported text artifacts after the first words of a block title
//   - Turning frame labels into safe path segments
//   - Normalizing free-form tokens for file stems
package textutil
