package bench

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/ironsheep/captcha-tools-mcp/internal/challenge"
	"github.com/ironsheep/captcha-tools-mcp/internal/logging"
)

// ProgressInterval is how many live attempts pass between progress reports.
const ProgressInterval = 10

// Challenger is the part of challenge.Client the live tools need.
type Challenger interface {
	FetchPage(ctx context.Context) (*challenge.Page, error)
	FetchImage(ctx context.Context, page *challenge.Page) (image.Image, []byte, error)
	Submit(ctx context.Context, page *challenge.Page, answer string) (bool, error)
}

// LiveStats counts live attempts.
type LiveStats struct {
	Total    int `json:"total"`
	Resolved int `json:"resolved"`
}

// Precision returns the accepted share in percent.
func (s LiveStats) Precision() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Resolved) / float64(s.Total) * 100
}

// String formats the stats the way progress lines print them.
func (s LiveStats) String() string {
	return fmt.Sprintf("Resolved: %d/%d\nPrecision: %.2f%%", s.Resolved, s.Total, s.Precision())
}

// Runner drives the live tools against a challenge site.
type Runner struct {
	Client   Challenger
	Resolver Resolver
	Retry    RetryPolicy
	Logger   *zap.Logger
}

func (r *Runner) logger() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}

// Download saves n challenge images into dir as 0.jpg, 1.jpg, ... and returns
// their paths. dir is created if needed.
func (r *Runner) Download(ctx context.Context, dir string, n int) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, logging.NewOperationError("download", "", err)
	}

	logger := logging.WithOperation(r.logger(), "download", "")
	paths := make([]string, 0, n)

	for i := 0; i < n; i++ {
		var data []byte
		err := withRetry(ctx, r.Retry, logger, "download image", func() error {
			page, err := r.Client.FetchPage(ctx)
			if err != nil {
				return err
			}
			_, data, err = r.Client.FetchImage(ctx, page)
			return err
		})
		if err != nil {
			return paths, err
		}

		path := filepath.Join(dir, fmt.Sprintf("%d.jpg", i))
		if err := os.WriteFile(path, data, 0644); err != nil {
			return paths, logging.NewOperationError("download", "", err)
		}
		paths = append(paths, path)
		logger.Debug("saved challenge image", zap.String("file", path))
	}

	return paths, nil
}

// Attempt solves one live challenge and reports whether the site accepted
// the answer.
func (r *Runner) Attempt(ctx context.Context) (bool, error) {
	logger := logging.WithOperation(r.logger(), "live", "")

	var (
		page *challenge.Page
		img  image.Image
	)
	err := withRetry(ctx, r.Retry, logger, "fetch challenge", func() error {
		var err error
		if page, err = r.Client.FetchPage(ctx); err != nil {
			return err
		}
		img, _, err = r.Client.FetchImage(ctx, page)
		return err
	})
	if err != nil {
		return false, err
	}

	answer := r.Resolver.Resolve(img)

	var accepted bool
	err = withRetry(ctx, r.Retry, logger, "submit answer", func() error {
		var err error
		accepted, err = r.Client.Submit(ctx, page, answer)
		return err
	})
	if err != nil {
		return false, err
	}

	logger.Debug("attempt finished", zap.String("answer", answer), zap.Bool("accepted", accepted))
	return accepted, nil
}

// RunLive repeats Attempt n times, or until ctx is done when n is 0. progress
// is called every ProgressInterval attempts. A failed attempt ends the run
// with the stats so far.
func (r *Runner) RunLive(ctx context.Context, n int, progress func(LiveStats)) (LiveStats, error) {
	var stats LiveStats

	for n == 0 || stats.Total < n {
		if err := ctx.Err(); err != nil {
			return stats, nil
		}

		ok, err := r.Attempt(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return stats, nil
			}
			return stats, err
		}

		stats.Total++
		if ok {
			stats.Resolved++
		}
		if progress != nil && stats.Total%ProgressInterval == 0 {
			progress(stats)
		}
	}

	return stats, nil
}
