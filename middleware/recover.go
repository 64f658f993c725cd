package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/reecejunior/newrouteplanner/upload"
)

// Recover returns middleware that recovers from panics in the handler chain.
// Panics are converted to errors and logged with a stack trace, so a
// single bad upload can never take down the queue or strand its slot.
func Recover(logger *slog.Logger) Middleware {
	return func(ctx context.Context, u *upload.Upload, next Handler) (retErr error) {
		defer func() {
			if r := recover(); r != nil {
				stack := string(debug.Stack())
				logger.Error("extraction panicked",
					slog.String("upload_id", u.ID.String()),
					slog.Any("panic", r),
					slog.String("stack", stack),
				)
				retErr = fmt.Errorf("panic in upload %s: %v", u.ID.String(), r)
			}
		}()
		return next(ctx)
	}
}
