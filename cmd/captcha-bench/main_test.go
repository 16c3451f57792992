package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/captcha-tools-mcp/internal/captchatest"
	"github.com/ironsheep/captcha-tools-mcp/internal/config"
	"github.com/ironsheep/captcha-tools-mcp/internal/corpus"
)

func writeConfig(t *testing.T, pageURL string) string {
	t.Helper()

	cfg := config.Default()
	cfg.LogLevel = "error"
	if pageURL != "" {
		cfg.Challenge.PageURL = pageURL
	}
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, config.Save(path, cfg))
	return path
}

func defaultStore(t *testing.T) *corpus.Store {
	t.Helper()
	store, err := corpus.Default()
	require.NoError(t, err)
	return store
}

func TestRun_Usage(t *testing.T) {
	var out bytes.Buffer
	assert.Error(t, run(context.Background(), nil, &out, &out))
	assert.Error(t, run(context.Background(), []string{"bogus"}, &out, &out))
	require.NoError(t, run(context.Background(), []string{"help"}, &out, &out))
	assert.Contains(t, out.String(), "precision <dir>")
}

func TestRun_Precision(t *testing.T) {
	store := defaultStore(t)
	dir := t.TempDir()
	captchatest.WritePNG(t, dir, "solved.png", captchatest.RenderText(t, store, "SOLVED"))
	captchatest.WritePNG(t, dir, "wrongs.png", captchatest.RenderText(t, store, "RIGHTS"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))

	var out bytes.Buffer
	err := run(context.Background(), []string{"precision", "--config", writeConfig(t, ""), dir}, &out, &out)
	require.NoError(t, err)

	assert.Contains(t, out.String(), `wrongs.png: expected "wrongs", got "rights"`)
	assert.Contains(t, out.String(), "Solved: 1/2")
}

func TestRun_PrecisionNeedsDir(t *testing.T) {
	err := run(context.Background(), []string{"precision", "--config", writeConfig(t, "")}, &bytes.Buffer{}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestRun_Download(t *testing.T) {
	site := captchatest.NewSite(t, defaultStore(t), "AATMAG")
	dir := filepath.Join(t.TempDir(), "images")

	var out bytes.Buffer
	err := run(context.Background(), []string{"download", "--config", writeConfig(t, site.PageURL()), "-n", "2", dir}, &out, &out)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, "0.jpg"))
	assert.FileExists(t, filepath.Join(dir, "1.jpg"))
	assert.Equal(t, int64(2), site.Images.Load())
}

func TestRun_Live(t *testing.T) {
	site := captchatest.NewSite(t, defaultStore(t), "QWERTY")

	var out bytes.Buffer
	err := run(context.Background(), []string{"live", "--config", writeConfig(t, site.PageURL()), "-n", "3"}, &out, &out)
	require.NoError(t, err)

	assert.Contains(t, out.String(), "Resolved: 3/3")
	assert.Equal(t, int64(3), site.Accepted.Load())
}
