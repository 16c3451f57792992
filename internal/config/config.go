package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/ironsheep/captcha-tools-mcp/internal/logging"
)

// DefaultPageURL is the challenge page the original tooling scraped.
const DefaultPageURL = "https://www.amazon.com/errors/validateCaptcha"

// Config holds every setting of the server and the benchmark tools.
type Config struct {
	LogLevel string `yaml:"log_level"`
	// DatasetPath replaces the embedded reference dataset when set.
	DatasetPath string          `yaml:"dataset_path,omitempty"`
	HTTP        HTTPConfig      `yaml:"http"`
	Challenge   ChallengeConfig `yaml:"challenge"`
}

// HTTPConfig configures the REST front end.
type HTTPConfig struct {
	Addr            string        `yaml:"addr"`
	MaxUploadBytes  int64         `yaml:"max_upload_bytes"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	// JWTSecret enables bearer auth on /solve when non-empty.
	JWTSecret   string `yaml:"jwt_secret,omitempty"`
	JWTAudience string `yaml:"jwt_audience,omitempty"`
}

// ChallengeConfig configures the live challenge client.
type ChallengeConfig struct {
	PageURL   string        `yaml:"page_url"`
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		HTTP: HTTPConfig{
			Addr:            ":8080",
			MaxUploadBytes:  5 << 20,
			ShutdownTimeout: 10 * time.Second,
		},
		Challenge: ChallengeConfig{
			PageURL:   DefaultPageURL,
			Timeout:   15 * time.Second,
			UserAgent: "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36",
		},
	}
}

// Environment variables that override file settings.
const (
	EnvLogLevel    = "CAPTCHA_MCP_LOG_LEVEL"
	EnvDataset     = "CAPTCHA_DATASET"
	EnvHTTPAddr    = "CAPTCHA_HTTP_ADDR"
	EnvJWTSecret   = "JWT_SECRET"
	EnvJWTAudience = "JWT_AUDIENCE"
	EnvPageURL     = "CAPTCHA_PAGE_URL"
)

// ApplyEnv overrides fields with non-empty environment values. getenv is
// usually os.Getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}

	set(&c.LogLevel, EnvLogLevel)
	set(&c.DatasetPath, EnvDataset)
	set(&c.HTTP.Addr, EnvHTTPAddr)
	set(&c.HTTP.JWTSecret, EnvJWTSecret)
	set(&c.HTTP.JWTAudience, EnvJWTAudience)
	set(&c.Challenge.PageURL, EnvPageURL)
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.HTTP.Addr == "" {
		errs = append(errs, errors.New("http.addr is required"))
	}
	if c.HTTP.MaxUploadBytes <= 0 {
		errs = append(errs, fmt.Errorf("http.max_upload_bytes must be positive, got %d", c.HTTP.MaxUploadBytes))
	}
	if c.HTTP.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("http.shutdown_timeout must be positive, got %s", c.HTTP.ShutdownTimeout))
	}
	if c.HTTP.JWTAudience != "" && c.HTTP.JWTSecret == "" {
		errs = append(errs, errors.New("http.jwt_audience requires http.jwt_secret"))
	}
	if u, err := url.Parse(c.Challenge.PageURL); err != nil || u.Host == "" ||
		(u.Scheme != "http" && u.Scheme != "https") {
		errs = append(errs, fmt.Errorf("challenge.page_url must be an absolute http(s) URL, got %q", c.Challenge.PageURL))
	}
	if c.Challenge.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("challenge.timeout must be positive, got %s", c.Challenge.Timeout))
	}

	return errors.Join(errs...)
}
