package bench

import (
	"bytes"
	"context"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/captcha-tools-mcp/internal/captchatest"
	"github.com/ironsheep/captcha-tools-mcp/internal/solver"
)

func newSolver(t *testing.T) *solver.Solver {
	t.Helper()

	slv, err := solver.NewDefault()
	require.NoError(t, err)
	return slv
}

func TestExpectedAnswer(t *testing.T) {
	tests := []struct {
		name   string
		want   string
		wantOK bool
	}{
		{"aatmag.jpg", "aatmag", true},
		{"/data/set/abcdefg.png", "abcdefg", true},
		{"aatmag.v2.jpg", "aatmag", true},
		{"17.jpg", "17", false},
		{"short", "short", false},
		{"noextsix", "noextsix", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExpectedAnswer(tt.name)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestRunPrecision(t *testing.T) {
	slv := newSolver(t)
	dir := t.TempDir()

	captchatest.WritePNG(t, dir, "aatmag.png", captchatest.RenderText(t, slv.Store(), "AATMAG"))
	captchatest.WritePNG(t, dir, "gammat.png", captchatest.RenderWrapped(t, slv.Store(), "GAMMAT", 16))
	// Labelled wrong on purpose.
	captchatest.WritePNG(t, dir, "magmat.png", captchatest.RenderText(t, slv.Store(), "AATMAG"))
	captchatest.WritePNG(t, dir, "7.png", captchatest.RenderText(t, slv.Store(), "AATMAG"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "garbage.png"), []byte("nope"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "subdirectory"), 0755))

	report, err := RunPrecision(context.Background(), slv, dir, nil)
	require.NoError(t, err)

	assert.Equal(t, 4, report.Total)
	assert.Equal(t, 2, report.Solved)
	assert.Equal(t, 1, report.Skipped)
	assert.InDelta(t, 50.0, report.Precision(), 1e-9)

	require.Len(t, report.Failures, 2)
	assert.Equal(t, filepath.Join(dir, "garbage.png"), report.Failures[0].File)
	assert.NotEmpty(t, report.Failures[0].Err)
	assert.Equal(t, Failure{File: filepath.Join(dir, "magmat.png"), Expected: "magmat", Got: "aatmag"}, report.Failures[1])

	var out bytes.Buffer
	report.Write(&out)
	assert.Contains(t, out.String(), "Solved: 2/4\n")
	assert.Contains(t, out.String(), "Precision: 50.00%\n")
	assert.Contains(t, out.String(), `expected "magmat", got "aatmag"`)
	assert.Contains(t, out.String(), "failed to load")
}

func TestRunPrecision_Empty(t *testing.T) {
	report, err := RunPrecision(context.Background(), newSolver(t), t.TempDir(), nil)
	require.NoError(t, err)

	assert.Equal(t, 0, report.Total)
	assert.Equal(t, 0.0, report.Precision())
	assert.Equal(t, int64(0), int64(report.AverageTime()))
}

func TestRunPrecision_Errors(t *testing.T) {
	_, err := RunPrecision(context.Background(), newSolver(t), filepath.Join(t.TempDir(), "missing"), nil)
	assert.ErrorIs(t, err, os.ErrNotExist)

	dir := t.TempDir()
	captchatest.WritePNG(t, dir, "aatmag.png", captchatest.Blank(10, 10))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = RunPrecision(ctx, resolverFunc(func(image.Image) string { return "" }), dir, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

type resolverFunc func(image.Image) string

func (f resolverFunc) Resolve(img image.Image) string { return f(img) }
