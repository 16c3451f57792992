// Package captchatest renders synthetic challenge images from reference
// glyphs for use in tests.
package captchatest

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ironsheep/captcha-tools-mcp/internal/corpus"
)

const (
	// Margin is the white border left and right of the rendered text.
	Margin = 16
	// Gap is the white space between neighbouring glyphs.
	Gap = 8
)

// GlyphImage paints a fingerprint back into pixels: '1' becomes black, '0'
// white. The fingerprint length must be a multiple of height.
func GlyphImage(fingerprint string, height int) *image.Gray {
	width := len(fingerprint) / height
	img := image.NewGray(image.Rect(0, 0, width, height))

	for i := 0; i < width*height; i++ {
		if fingerprint[i] == '1' {
			img.Pix[i] = 0
		} else {
			img.Pix[i] = 255
		}
	}
	return img
}

// Blank returns an all-white image.
func Blank(width, height int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	return img
}

// Glyph returns the reference glyph for ch from store.
func Glyph(tb testing.TB, store *corpus.Store, ch rune) *image.Gray {
	tb.Helper()

	height := store.GlyphHeight()
	require.Positive(tb, height, "store has no glyph height")

	for _, e := range store.Entries() {
		if e.Char == ch {
			return GlyphImage(e.Fingerprint, height)
		}
	}
	tb.Fatalf("no reference glyph for %q", ch)
	return nil
}

// RenderText lays out the reference glyphs for text left to right with
// Margin and Gap spacing.
func RenderText(tb testing.TB, store *corpus.Store, text string) *image.Gray {
	tb.Helper()

	glyphs := make([]*image.Gray, 0, len(text))
	for _, ch := range text {
		glyphs = append(glyphs, Glyph(tb, store, ch))
	}
	return layout(glyphs, store.GlyphHeight())
}

// RenderWrapped renders text with its last glyph wrapped around the image
// edge: columns from split onwards appear first, columns before split
// appear last.
func RenderWrapped(tb testing.TB, store *corpus.Store, text string, split int) *image.Gray {
	tb.Helper()

	runes := []rune(text)
	require.NotEmpty(tb, runes)

	last := Glyph(tb, store, runes[len(runes)-1])
	width := last.Bounds().Dx()
	require.True(tb, split > 0 && split < width, "split %d outside glyph width %d", split, width)

	head := last.SubImage(image.Rect(0, 0, split, last.Bounds().Dy())).(*image.Gray)
	tail := last.SubImage(image.Rect(split, 0, width, last.Bounds().Dy())).(*image.Gray)

	glyphs := []*image.Gray{tail}
	for _, ch := range runes[:len(runes)-1] {
		glyphs = append(glyphs, Glyph(tb, store, ch))
	}
	glyphs = append(glyphs, head)

	return layout(glyphs, store.GlyphHeight())
}

// AddNoise blackens count pixels of img in the given column, starting at the
// top row.
func AddNoise(img *image.Gray, column, count int) {
	for y := 0; y < count && y < img.Bounds().Dy(); y++ {
		img.SetGray(column, y, color.Gray{Y: 0})
	}
}

// PNG encodes img.
func PNG(tb testing.TB, img image.Image) []byte {
	tb.Helper()

	var buf bytes.Buffer
	require.NoError(tb, png.Encode(&buf, img))
	return buf.Bytes()
}

// WritePNG writes img to dir/name and returns the path.
func WritePNG(tb testing.TB, dir, name string, img image.Image) string {
	tb.Helper()

	path := filepath.Join(dir, name)
	require.NoError(tb, os.WriteFile(path, PNG(tb, img), 0644))
	return path
}

func layout(glyphs []*image.Gray, height int) *image.Gray {
	width := 2 * Margin
	for i, g := range glyphs {
		width += g.Bounds().Dx()
		if i > 0 {
			width += Gap
		}
	}

	canvas := Blank(width, height)
	x := Margin
	for _, g := range glyphs {
		b := g.Bounds()
		draw.Draw(canvas, image.Rect(x, 0, x+b.Dx(), b.Dy()), g, b.Min, draw.Src)
		x += b.Dx() + Gap
	}
	return canvas
}
