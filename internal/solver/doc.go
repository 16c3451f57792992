// Package solver resolves six-character CAPTCHA images to text.
//
// A Solver holds a read-only corpus.Store and runs the full pipeline on each
// call:
//
//  1. Segmentation: detection.ExtractGlyphs splits the image into glyphs.
//  2. Repair: detection.MergeWrapped joins a wrapped last character.
//  3. Fingerprinting: each glyph becomes a string of '0'/'1', one symbol per
//     pixel in row-major order, '1' for ink.
//  4. Classification: exact lookup in the store, otherwise the most similar
//     reference entry.
//
// The characters are joined left to right and lower-cased.
//
// # Result Guarantees
//
// Resolve never fails once a Solver exists. An image without ink resolves to
// the empty string, and every glyph resolves to some character because the
// similarity fallback always picks a candidate. The only error in this
// package comes from loading the reference corpus.
//
// # Concurrency
//
// Solver has no mutable state after New returns. Any number of goroutines may
// call Resolve on the same Solver; each call allocates only its own scratch
// data.
package solver
