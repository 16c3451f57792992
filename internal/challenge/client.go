package challenge

import (
	"context"
	"fmt"
	"image"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/ironsheep/captcha-tools-mcp/internal/config"
	"github.com/ironsheep/captcha-tools-mcp/internal/imaging"
	"github.com/ironsheep/captcha-tools-mcp/internal/logging"
)

// maxBodyBytes caps page and image downloads.
const maxBodyBytes = 4 << 20

// Client talks to a challenge site: it fetches pages and images and submits
// answers. A Client keeps session cookies between calls and is safe for
// concurrent use.
type Client struct {
	http      *http.Client
	pageURL   *url.URL
	userAgent string
	logger    *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Its Jar is used as is.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger sets the client logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient builds a Client for the page URL, timeout and user agent in cfg.
func NewClient(cfg config.ChallengeConfig, opts ...Option) (*Client, error) {
	pageURL, err := url.Parse(cfg.PageURL)
	if err != nil || pageURL.Host == "" {
		return nil, fmt.Errorf("invalid challenge page url %q", cfg.PageURL)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	c := &Client{
		http:      &http.Client{Timeout: timeout, Jar: jar},
		pageURL:   pageURL,
		userAgent: cfg.UserAgent,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// FetchPage downloads and parses a fresh challenge page.
func (c *Client) FetchPage(ctx context.Context) (*Page, error) {
	resp, err := c.get(ctx, c.pageURL.String())
	if err != nil {
		return nil, logging.NewOperationError("fetch page", "", err)
	}
	defer resp.Body.Close()

	page, err := ParsePage(io.LimitReader(resp.Body, maxBodyBytes), resp.Request.URL)
	if err != nil {
		return nil, logging.NewOperationError("fetch page", "", err)
	}

	c.logger.Debug("fetched challenge page", zap.String("image_url", page.ImageURL))
	return page, nil
}

// FetchImage downloads the page's challenge image and decodes it. The raw
// bytes are returned as well so callers can store them.
func (c *Client) FetchImage(ctx context.Context, page *Page) (image.Image, []byte, error) {
	resp, err := c.get(ctx, page.ImageURL)
	if err != nil {
		return nil, nil, logging.NewOperationError("fetch image", "", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, nil, logging.NewOperationError("fetch image", "", err)
	}

	img, _, err := imaging.Decode(data)
	if err != nil {
		return nil, data, logging.NewOperationError("fetch image", "", err)
	}
	return img, data, nil
}

// Submit sends answer for page and reports whether the site accepted it.
// An accepted answer redirects to the site root.
func (c *Client) Submit(ctx context.Context, page *Page, answer string) (bool, error) {
	target := page.Action
	if target == "" {
		target = c.pageURL.String()
	}

	u, err := url.Parse(target)
	if err != nil {
		return false, logging.NewOperationError("submit", "", err)
	}
	q := u.Query()
	q.Set(fieldToken, page.Token)
	q.Set(fieldRedirect, page.Redirect)
	q.Set(fieldAnswer, answer)
	u.RawQuery = q.Encode()

	resp, err := c.get(ctx, u.String())
	if err != nil {
		return false, logging.NewOperationError("submit", "", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes)) //nolint:errcheck

	final := resp.Request.URL
	accepted := final.Scheme == c.pageURL.Scheme && final.Host == c.pageURL.Host && final.Path == "/"

	c.logger.Debug("submitted answer",
		zap.String("answer", answer),
		zap.String("final_url", final.String()),
		zap.Bool("accepted", accepted),
	)
	return accepted, nil
}

func (c *Client) get(ctx context.Context, target string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("GET %s: unexpected status %s", target, resp.Status)
	}
	return resp, nil
}
