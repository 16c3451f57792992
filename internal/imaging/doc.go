// Package imaging provides the raster plumbing used by the captcha solver.
//
// It decodes images from disk, raw bytes or base64 payloads, converts them to
// single-channel grayscale, crops column spans out of a grayscale raster and
// joins two rasters side by side. Every function returns new images and never
// modifies its inputs.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based and relative to the
// image's bounds:
//   - X: horizontal position (0 = leftmost column)
//   - Y: vertical position (0 = topmost row)
//   - For spans, x1 is inclusive and x2 is exclusive
//
// # Grayscale
//
// Images that are already *image.Gray are used as is. Everything else goes
// through bild with Rec.709 luma weights (0.2126R + 0.7152G + 0.0722B).
//
// # Supported Formats
//
// PNG, JPEG and GIF through the standard library, plus BMP, TIFF and WebP
// through golang.org/x/image.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. All other functions are
// stateless.
package imaging
