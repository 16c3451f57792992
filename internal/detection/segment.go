package detection

import (
	"image"

	"github.com/ironsheep/captcha-tools-mcp/internal/imaging"
)

// InkThreshold is the darkest-pixel cutoff: a grayscale intensity at or below
// it counts as ink, anything above is background.
const InkThreshold uint8 = 1

// GlyphRegion is a run of adjacent columns that contain ink. Start is
// inclusive, End exclusive; both are relative to the image bounds. A region
// always spans the full image height.
type GlyphRegion struct {
	Start  int `json:"start"`
	End    int `json:"end"`
	Height int `json:"height"`
}

// Width returns the number of columns in the region.
func (r GlyphRegion) Width() int {
	return r.End - r.Start
}

// IsInk reports whether a grayscale intensity counts as ink.
func IsInk(v uint8) bool {
	return v <= InkThreshold
}

// FindGlyphRegions scans gray column by column and returns the inked column
// runs in left-to-right order. An image without ink yields an empty slice.
func FindGlyphRegions(gray *image.Gray) []GlyphRegion {
	bounds := gray.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	regions := make([]GlyphRegion, 0, 8)
	start := -1

	for x := 0; x < width; x++ {
		inked := columnHasInk(gray, bounds.Min.X+x)

		switch {
		case inked && start < 0:
			start = x
		case !inked && start >= 0:
			regions = append(regions, GlyphRegion{Start: start, End: x, Height: height})
			start = -1
		}
	}

	// Ink running into the right edge closes at the image width.
	if start >= 0 {
		regions = append(regions, GlyphRegion{Start: start, End: width, Height: height})
	}

	return regions
}

// ExtractGlyphs converts img to grayscale and crops every glyph region out of
// it, left to right. Each crop keeps the full image height.
func ExtractGlyphs(img image.Image) []*image.Gray {
	gray := imaging.Grayscale(img)
	regions := FindGlyphRegions(gray)

	glyphs := make([]*image.Gray, 0, len(regions))
	for _, r := range regions {
		glyph, err := imaging.CropColumns(gray, r.Start, r.End)
		if err != nil {
			// Regions come from the same bounds, so this cannot happen.
			continue
		}
		glyphs = append(glyphs, glyph)
	}

	return glyphs
}

func columnHasInk(gray *image.Gray, x int) bool {
	bounds := gray.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		if IsInk(gray.Pix[gray.PixOffset(x, y)]) {
			return true
		}
	}
	return false
}
