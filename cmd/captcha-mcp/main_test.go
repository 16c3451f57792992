package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/captcha-tools-mcp/internal/config"
	"github.com/ironsheep/captcha-tools-mcp/internal/corpus"
)

func writeConfig(t *testing.T, mutate func(*config.Config)) string {
	t.Helper()

	cfg := config.Default()
	mutate(cfg)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, config.Save(path, cfg))
	return path
}

func TestRun_Version(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run([]string{"--version"}, nil, &out, &out))
	assert.Contains(t, out.String(), "captcha-tools-mcp dev")
}

func TestRun_Help(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run([]string{"-h"}, nil, &out, &out))
	assert.Contains(t, out.String(), "--http")
}

func TestRun_MCPOverStdio(t *testing.T) {
	path := writeConfig(t, func(c *config.Config) { c.LogLevel = "error" })

	in := strings.NewReader(`{"jsonrpc":"2.0","id":7,"method":"tools/call","params":{"name":"corpus_info"}}` + "\n")
	var out, errOut bytes.Buffer
	require.NoError(t, run([]string{"--config", path}, in, &out, &errOut))

	var resp struct {
		ID     float64 `json:"id"`
		Result struct {
			Content []struct {
				Text string `json:"text"`
			} `json:"content"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.Equal(t, float64(7), resp.ID)
	require.Len(t, resp.Result.Content, 1)
	assert.Contains(t, resp.Result.Content[0].Text, `"entries": 26`)
}

func TestRun_CustomDataset(t *testing.T) {
	dataset := filepath.Join(t.TempDir(), "tiny.bin")
	require.NoError(t, os.WriteFile(dataset, corpus.Encode(1, []corpus.Entry{{Fingerprint: "1", Char: 'X'}}), 0644))
	path := writeConfig(t, func(c *config.Config) {
		c.LogLevel = "error"
		c.DatasetPath = dataset
	})

	in := strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"corpus_info"}}` + "\n")
	var out bytes.Buffer
	require.NoError(t, run([]string{"--config", path}, in, &out, &bytes.Buffer{}))
	assert.Contains(t, out.String(), `\"entries\": 1`)
}

func TestRun_BadDataset(t *testing.T) {
	dataset := filepath.Join(t.TempDir(), "empty.bin")
	require.NoError(t, os.WriteFile(dataset, nil, 0644))
	path := writeConfig(t, func(c *config.Config) {
		c.LogLevel = "error"
		c.DatasetPath = dataset
	})

	err := run([]string{"--config", path}, strings.NewReader(""), &bytes.Buffer{}, &bytes.Buffer{})
	var loadErr *corpus.LoadError
	assert.ErrorAs(t, err, &loadErr)
}

func TestRun_IssueToken(t *testing.T) {
	path := writeConfig(t, func(c *config.Config) { c.HTTP.JWTSecret = "s3cret" })

	var out bytes.Buffer
	require.NoError(t, run([]string{"--config", path, "--issue-token", "bench", "--token-ttl", time.Minute.String()}, nil, &out, &out))
	assert.Equal(t, 2, strings.Count(strings.TrimSpace(out.String()), "."))

	noSecret := writeConfig(t, func(*config.Config) {})
	assert.Error(t, run([]string{"--config", noSecret, "--issue-token", "bench"}, nil, &out, &out))
}

func TestRun_WriteConfig(t *testing.T) {
	src := writeConfig(t, func(c *config.Config) {
		c.LogLevel = "warn"
		c.HTTP.Addr = ":9090"
	})
	dst := filepath.Join(t.TempDir(), "effective.yaml")

	var out bytes.Buffer
	require.NoError(t, run([]string{"--config", src, "--write-config", dst}, nil, &out, &out))
	assert.Contains(t, out.String(), dst)

	written, err := config.Load(dst)
	require.NoError(t, err)
	assert.Equal(t, "warn", written.LogLevel)
	assert.Equal(t, ":9090", written.HTTP.Addr)
}

func TestRun_BadFlag(t *testing.T) {
	assert.Error(t, run([]string{"--nope"}, nil, &bytes.Buffer{}, &bytes.Buffer{}))
}
