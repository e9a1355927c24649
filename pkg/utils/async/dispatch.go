package async

import (
	"context"

	"github.com/createai-lab/createai/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// Dispatch runs fn on a fresh goroutine detached from the request context,
// carrying over only the request logger. Errors and panics are logged, never
// propagated; dispatched work is fire-and-forget.
func Dispatch(ctx context.Context, fn func(ctx context.Context) error) {
	detached := context.Background()
	if logger := logging.From(ctx); logger != nil {
		detached = logging.With(detached, logger)
	}

	go func() {
		logger := logging.From(detached)
		defer func() {
			if r := recover(); r != nil {
				logger.Error("background task panicked", "panic", r)
			}
		}()

		if err := fn(detached); err != nil {
			logger.Error("background task failed", "error", goerr.Unwrap(err))
		}
	}()
}
