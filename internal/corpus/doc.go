// Package corpus holds the reference store used to classify captcha glyphs.
//
// A Store is an immutable mapping from a glyph fingerprint (a string over
// '0' and '1', one symbol per pixel in row-major order) to the character the
// glyph depicts. It is decoded once from a binary dataset and never mutated
// afterwards, so a single Store may be shared by any number of goroutines.
//
// # Dataset Format
//
// The dataset uses the protobuf wire format without generated code:
//
//	Dataset {
//	  uint32 glyph_height = 2; // raster height the fingerprints were taken at
//	  repeated Entry entries = 1;
//	}
//	Entry {
//	  string fingerprint = 1;
//	  string character   = 2;
//	}
//
// Unknown fields are skipped. Duplicate fingerprints collapse to a single
// entry and the last one read wins.
//
// # Lookups
//
// Lookup performs exact matching. MostSimilar scans every entry and scores it
// with Similarity; the scan order is fixed (by character, then fingerprint)
// and only a strictly higher score replaces the current best, so ties go to
// the smallest character.
//
// # Errors
//
// Every decoding failure is reported as a *LoadError. A Store is never
// returned alongside an error.
package corpus
