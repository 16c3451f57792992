package bench

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ironsheep/captcha-tools-mcp/internal/logging"
)

// RetryPolicy controls how network steps are retried.
type RetryPolicy struct {
	Attempts       int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// DefaultRetryPolicy retries three times starting at 200ms.
var DefaultRetryPolicy = RetryPolicy{
	Attempts:       3,
	InitialBackoff: 200 * time.Millisecond,
	MaxBackoff:     2 * time.Second,
}

func withRetry(ctx context.Context, policy RetryPolicy, logger *zap.Logger, operation string, fn func() error) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	if policy.Attempts <= 1 {
		return logging.NewOperationError(operation, "", fn())
	}

	backoff := policy.InitialBackoff
	var err error
	for attempt := 0; attempt < policy.Attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return logging.NewOperationError(operation, "", ctx.Err())
			case <-time.After(backoff):
			}
			if next := backoff * 2; next <= policy.MaxBackoff {
				backoff = next
			}
		}

		err = fn()
		if err == nil {
			if attempt > 0 {
				logger.Info("operation succeeded after retry", zap.String("operation", operation), zap.Int("attempt", attempt+1))
			}
			return nil
		}
		if ctx.Err() != nil {
			break
		}

		logger.Warn("operation failed", zap.String("operation", operation), zap.Int("attempt", attempt+1), zap.Error(err))
	}
	return logging.NewOperationError(operation, "", err)
}
