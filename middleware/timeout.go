package middleware

import (
	"context"
	"log/slog"

	"github.com/reecejunior/newrouteplanner/upload"
)

// Timeout returns middleware that enforces a per-upload execution deadline.
// If the upload has a non-zero Timeout, a context.WithTimeout wraps the
// extraction call. When the deadline is exceeded the context is cancelled
// and the service should return context.DeadlineExceeded. A zero Timeout
// imposes no deadline: a stalled extraction then occupies its slot until
// the service gives up on its own.
func Timeout(logger *slog.Logger) Middleware {
	return func(ctx context.Context, u *upload.Upload, next Handler) error {
		if u.Timeout > 0 {
			logger.Debug("extraction deadline set",
				slog.String("upload_id", u.ID.String()),
				slog.Duration("timeout", u.Timeout),
			)
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, u.Timeout)
			defer cancel()
		}
		return next(ctx)
	}
}
