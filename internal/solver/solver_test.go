package solver

import (
	"image"
	"image/color"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/captcha-tools-mcp/internal/captchatest"
	"github.com/ironsheep/captcha-tools-mcp/internal/corpus"
	"github.com/ironsheep/captcha-tools-mcp/internal/imaging"
)

func newDefaultSolver(t *testing.T) *Solver {
	t.Helper()

	s, err := NewDefault()
	require.NoError(t, err)
	return s
}

func TestFingerprint(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 3, 2))
	copy(img.Pix, []uint8{0, 1, 2, 255, 1, 128})

	assert.Equal(t, "110010", Fingerprint(img))
}

func TestFingerprint_SubImage(t *testing.T) {
	img := captchatest.Blank(6, 3)
	img.SetGray(3, 1, color.Gray{Y: 0})

	sub := img.SubImage(image.Rect(2, 0, 5, 3)).(*image.Gray)
	assert.Equal(t, "000010000", Fingerprint(sub))
}

func TestFingerprint_Empty(t *testing.T) {
	assert.Equal(t, "", Fingerprint(image.NewGray(image.Rect(0, 0, 0, 0))))
}

func TestClassify_ExactForEveryEntry(t *testing.T) {
	s := newDefaultSolver(t)
	height := s.Store().GlyphHeight()

	for _, e := range s.Store().Entries() {
		glyph := captchatest.GlyphImage(e.Fingerprint, height)
		fp := Fingerprint(glyph)
		require.Equal(t, e.Fingerprint, fp, "round trip for %q", e.Char)

		m := s.Classify(fp)
		assert.Equal(t, e.Char, m.Char)
		assert.Equal(t, MethodExact, m.Method)
		assert.Equal(t, 1.0, m.Score)
	}
}

func TestClassify_SimilarFallback(t *testing.T) {
	store, err := corpus.New(1, []corpus.Entry{
		{Fingerprint: "1100", Char: 'A'},
		{Fingerprint: "0011", Char: 'B'},
	})
	require.NoError(t, err)
	s, err := New(store)
	require.NoError(t, err)

	m := s.Classify("1000")
	assert.Equal(t, 'A', m.Char)
	assert.Equal(t, MethodSimilar, m.Method)
	assert.InDelta(t, 0.75, m.Score, 1e-9)

	m = s.Classify("0111")
	assert.Equal(t, 'B', m.Char)
	assert.InDelta(t, 0.75, m.Score, 1e-9)
}

func TestResolve_SixGlyphs(t *testing.T) {
	s := newDefaultSolver(t)
	img := captchatest.RenderText(t, s.Store(), "AATMAG")

	result := s.ResolveDetailed(img)

	assert.Equal(t, "aatmag", result.Text)
	assert.False(t, result.Merged)
	require.Len(t, result.Glyphs, 6)
	for i, g := range result.Glyphs {
		assert.Equal(t, i, g.Index)
		assert.Equal(t, MethodExact, g.Method)
		assert.Equal(t, s.Store().GlyphHeight(), g.Height)
	}
	assert.Equal(t, "t", result.Glyphs[2].Char)
}

func TestResolve_Alphabet(t *testing.T) {
	s := newDefaultSolver(t)

	for _, text := range []string{"ABCDEF", "GHIJKL", "MNOPQR", "STUVWX", "YZYZYZ"} {
		img := captchatest.RenderText(t, s.Store(), text)
		assert.Len(t, s.Resolve(img), 6)
	}

	img := captchatest.RenderText(t, s.Store(), "QUIZJV")
	assert.Equal(t, "quizjv", s.Resolve(img))
}

func TestResolve_WrappedLastGlyph(t *testing.T) {
	s := newDefaultSolver(t)

	for _, split := range []int{8, 16, 24, 32} {
		img := captchatest.RenderWrapped(t, s.Store(), "AATMAG", split)

		glyphs, merged := s.Glyphs(img)
		require.True(t, merged, "split %d", split)
		require.Len(t, glyphs, 6)

		result := s.ResolveDetailed(img)
		assert.Equal(t, "aatmag", result.Text, "split %d", split)
		assert.True(t, result.Merged)
		assert.Equal(t, MethodExact, result.Glyphs[5].Method)
		assert.Equal(t, 40, result.Glyphs[5].Width)
	}
}

func TestResolve_NoInk(t *testing.T) {
	s := newDefaultSolver(t)

	for _, size := range [][2]int{{1, 1}, {200, 70}, {0, 0}} {
		result := s.ResolveDetailed(captchatest.Blank(size[0], size[1]))
		assert.Equal(t, "", result.Text)
		assert.Empty(t, result.Glyphs)
		assert.False(t, result.Merged)
	}
}

func TestResolve_NoisyGlyphFallsBack(t *testing.T) {
	s := newDefaultSolver(t)
	img := captchatest.RenderText(t, s.Store(), "AATMAG")
	captchatest.AddNoise(img, captchatest.Margin+3, 6)

	result := s.ResolveDetailed(img)

	assert.Equal(t, "aatmag", result.Text)
	require.Len(t, result.Glyphs, 6)
	assert.Equal(t, MethodSimilar, result.Glyphs[0].Method)
	assert.InDelta(t, float64(40*72-6)/float64(40*72), result.Glyphs[0].Score, 1e-9)
	assert.Equal(t, MethodExact, result.Glyphs[1].Method)
}

func TestResolve_JPEGFixture(t *testing.T) {
	s := newDefaultSolver(t)

	img, err := imaging.LoadFile(filepath.Join("testdata", "aatmag.jpg"))
	require.NoError(t, err)

	assert.Equal(t, "aatmag", s.Resolve(img))
}

func TestResolve_ColorInput(t *testing.T) {
	s := newDefaultSolver(t)
	gray := captchatest.RenderText(t, s.Store(), "MAGMAT")

	rgba := image.NewRGBA(gray.Bounds())
	for y := 0; y < gray.Bounds().Dy(); y++ {
		for x := 0; x < gray.Bounds().Dx(); x++ {
			rgba.Set(x, y, gray.At(x, y))
		}
	}

	assert.Equal(t, "magmat", s.Resolve(rgba))
}

func TestResolve_LowercasesNonASCII(t *testing.T) {
	store, err := corpus.New(2, []corpus.Entry{{Fingerprint: "11", Char: 'É'}})
	require.NoError(t, err)
	s, err := New(store)
	require.NoError(t, err)

	img := captchatest.Blank(5, 2)
	img.SetGray(2, 0, color.Gray{Y: 0})
	img.SetGray(2, 1, color.Gray{Y: 0})

	assert.Equal(t, "é", s.Resolve(img))
}

func TestResolve_Concurrent(t *testing.T) {
	s := newDefaultSolver(t)
	img := captchatest.RenderText(t, s.Store(), "AATMAG")
	wrapped := captchatest.RenderWrapped(t, s.Store(), "AATMAG", 16)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			src := img
			if i%2 == 1 {
				src = wrapped
			}
			assert.Equal(t, "aatmag", s.Resolve(src))
		}(i)
	}
	wg.Wait()
}

func TestNew_NilStore(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
}
