package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/reecejunior/newrouteplanner/upload"
)

// Logging returns middleware that logs extraction start and completion.
func Logging(logger *slog.Logger) Middleware {
	return func(ctx context.Context, u *upload.Upload, next Handler) error {
		logger.Info("extraction started",
			slog.String("upload_id", u.ID.String()),
			slog.String("media_type", u.MediaType),
			slog.Int("payload_size", len(u.Payload)),
		)

		start := time.Now()
		err := next(ctx)
		elapsed := time.Since(start)

		if err != nil {
			logger.Error("extraction failed",
				slog.String("upload_id", u.ID.String()),
				slog.Duration("elapsed", elapsed),
				slog.String("error", err.Error()),
			)
		} else {
			logger.Info("extraction completed",
				slog.String("upload_id", u.ID.String()),
				slog.Duration("elapsed", elapsed),
			)
		}

		return err
	}
}
