package imaging

import (
	"image"

	"github.com/anthonynsimon/bild/effect"
)

// Rec.709 luma weights.
const (
	lumaR = 0.2126
	lumaG = 0.7152
	lumaB = 0.0722
)

// Grayscale returns img as a single-channel raster with its origin at (0, 0).
// *image.Gray inputs are returned unchanged; callers must treat the result
// as read-only.
func Grayscale(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	if img.Bounds().Empty() {
		return image.NewGray(image.Rect(0, 0, 0, 0))
	}

	// bild writes the luma into R, G and B alike; keep R.
	rgba := effect.GrayscaleWithWeights(img, lumaR, lumaG, lumaB)
	rb := rgba.Bounds()

	out := image.NewGray(image.Rect(0, 0, rb.Dx(), rb.Dy()))
	for y := 0; y < rb.Dy(); y++ {
		for x := 0; x < rb.Dx(); x++ {
			out.Pix[y*out.Stride+x] = rgba.Pix[rgba.PixOffset(rb.Min.X+x, rb.Min.Y+y)]
		}
	}
	return out
}
