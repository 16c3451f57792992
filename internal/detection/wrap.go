package detection

import (
	"image"

	"github.com/ironsheep/captcha-tools-mcp/internal/imaging"
)

// ExpectedGlyphs is the number of characters in a challenge.
const ExpectedGlyphs = 6

// WrappedRegionCount is the region count produced when the last character
// wraps around to the left edge of the image.
const WrappedRegionCount = ExpectedGlyphs + 1

// MergeWrapped repairs a wrapped segmentation. When glyphs holds exactly
// WrappedRegionCount images, the last glyph is joined side by side with the
// first one (last on the left) into a single image that takes the last
// slot, and the leading fragment is dropped. Any other count is returned
// unchanged. The boolean reports whether a merge happened.
//
// The input slice is not modified.
func MergeWrapped(glyphs []*image.Gray) ([]*image.Gray, bool) {
	if len(glyphs) != WrappedRegionCount {
		return glyphs, false
	}

	last := len(glyphs) - 1
	merged := imaging.MergeSideBySide(glyphs[last], glyphs[0])

	out := make([]*image.Gray, 0, ExpectedGlyphs)
	out = append(out, glyphs[1:last]...)
	out = append(out, merged)

	return out, true
}
