// Package ext defines the extension system for the upload queue.
// Extensions are notified of lifecycle events (upload queued, started,
// completed, failed, retried, removed) and can react to them — logging,
// metrics, UI fan-out, etc.
//
// Each lifecycle hook is a separate interface so extensions opt in only
// to the events they care about.
package ext

import (
	"context"
	"time"

	"github.com/reecejunior/newrouteplanner/id"
	"github.com/reecejunior/newrouteplanner/upload"
)

// Extension is the base interface all extensions must implement.
type Extension interface {
	// Name returns a unique human-readable name for the extension.
	Name() string
}

// UploadQueued is called after an upload enters the backlog, both at
// submission and when a failed upload is re-queued by a retry.
type UploadQueued interface {
	OnUploadQueued(ctx context.Context, u *upload.Upload) error
}

// UploadStarted is called when an upload is admitted and its extraction
// call begins.
type UploadStarted interface {
	OnUploadStarted(ctx context.Context, u *upload.Upload) error
}

// UploadCompleted is called after an upload's extraction finishes
// successfully.
type UploadCompleted interface {
	OnUploadCompleted(ctx context.Context, u *upload.Upload, elapsed time.Duration) error
}

// UploadFailed is called when an upload's extraction fails.
type UploadFailed interface {
	OnUploadFailed(ctx context.Context, u *upload.Upload, err error) error
}

// UploadRetried is called when a failed upload is explicitly retried.
type UploadRetried interface {
	OnUploadRetried(ctx context.Context, u *upload.Upload, attempt int) error
}

// UploadRemoved is called after an upload is removed from the live set.
// No other hook fires for that upload afterwards.
type UploadRemoved interface {
	OnUploadRemoved(ctx context.Context, uploadID id.UploadID) error
}

// Shutdown is called during graceful shutdown.
type Shutdown interface {
	OnShutdown(ctx context.Context) error
}
