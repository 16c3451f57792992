// Package detection splits a CAPTCHA image into per-character glyphs.
//
// # Segmentation
//
// The image is converted to grayscale and scanned one column at a time. A
// column holds ink when any of its pixels is at or below InkThreshold. Runs
// of inked columns become GlyphRegion values:
//
//	column:  0 1 2 3 4 5 6 7 8 9
//	ink:     . # # . . # # # . #
//	regions:   [1,3)   [5,8)   [9,10)
//
// A run that reaches the right edge closes at the image width. Regions are
// always ordered left to right, never empty, and span the full image height.
// An image with no ink produces no regions; that is not an error.
//
// # Wrapped Characters
//
// Challenges hold ExpectedGlyphs characters. Some variants wrap the last
// character around the image edge, so its right half shows up as a leading
// fragment and segmentation yields WrappedRegionCount regions. MergeWrapped
// stitches the trailing fragment (left) to the leading fragment (right) and
// puts the result in the last position:
//
//	before:  [F2] [A] [B] [C] [D] [E] [F1]
//	after:        [A] [B] [C] [D] [E] [F1|F2]
//
// The merged glyph is as wide as both fragments together and as tall as the
// taller of them.
//
// # Coordinate System
//
// Region columns are relative to the image bounds: Start 0 is the leftmost
// column even for sub-images with a non-zero origin. Cropped glyphs always
// have their origin at (0, 0).
package detection
