package integrations

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"
)

// FetchJSON GETs url through c's cache, decodes the body into T and hands it
// to extract. Any failure, including a non-2xx status, is logged and
// reported as (zero, false), as is an extractor that finds nothing.
func FetchJSON[T, R any](ctx context.Context, c *Client, logger *log.Logger, url string, extract func(*T) (R, bool)) (R, bool) {
	var zero R
	var body T
	err := c.Cached(ctx, url, false, &body, func() error {
		return c.Get(ctx, url, &body)
	})
	if err != nil {
		logFailure(logger, err, "request failed", "url", url)
		return zero, false
	}
	return extract(&body)
}

// SafeCall runs call and returns its result, or def when it fails. Failures
// are logged: not-found at debug level, everything else as a warning.
func SafeCall[T any](ctx context.Context, logger *log.Logger, what string, call func(context.Context) (T, error), def T) T {
	v, err := call(ctx)
	if err != nil {
		logFailure(logger, err, what+" failed")
		return def
	}
	return v
}

func logFailure(logger *log.Logger, err error, msg string, keyvals ...any) {
	if logger == nil {
		logger = log.Default()
	}
	keyvals = append(keyvals, "err", err)
	switch {
	case errors.Is(err, ErrNotFound):
		logger.Debug(msg, keyvals...)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		logger.Warn(msg+" (interrupted)", keyvals...)
	default:
		logger.Warn(msg, keyvals...)
	}
}
