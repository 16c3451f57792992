package solver

import (
	"image"
	"strings"

	"github.com/ironsheep/captcha-tools-mcp/internal/detection"
)

// Fingerprint encodes every pixel of glyph, row by row from the top-left,
// as '1' for ink and '0' for background.
func Fingerprint(glyph *image.Gray) string {
	bounds := glyph.Bounds()

	var sb strings.Builder
	sb.Grow(bounds.Dx() * bounds.Dy())

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		row := glyph.Pix[glyph.PixOffset(bounds.Min.X, y):]
		for x := 0; x < bounds.Dx(); x++ {
			if detection.IsInk(row[x]) {
				sb.WriteByte('1')
			} else {
				sb.WriteByte('0')
			}
		}
	}

	return sb.String()
}
