package ext

import (
	"context"
	"log/slog"
	"time"

	"github.com/reecejunior/newrouteplanner/id"
	"github.com/reecejunior/newrouteplanner/upload"
)

// Named entry types pair a hook implementation with the extension name
// captured at registration time. This avoids type-asserting back to
// Extension inside the emit methods.
type uploadQueuedEntry struct {
	name string
	hook UploadQueued
}

type uploadStartedEntry struct {
	name string
	hook UploadStarted
}

type uploadCompletedEntry struct {
	name string
	hook UploadCompleted
}

type uploadFailedEntry struct {
	name string
	hook UploadFailed
}

type uploadRetriedEntry struct {
	name string
	hook UploadRetried
}

type uploadRemovedEntry struct {
	name string
	hook UploadRemoved
}

type shutdownEntry struct {
	name string
	hook Shutdown
}

// Registry holds registered extensions and dispatches lifecycle events
// to them. It type-caches extensions at registration time so emit calls
// iterate only over extensions that implement the relevant hook.
type Registry struct {
	extensions []Extension
	logger     *slog.Logger

	// Type-cached slices for each lifecycle hook.
	uploadQueued    []uploadQueuedEntry
	uploadStarted   []uploadStartedEntry
	uploadCompleted []uploadCompletedEntry
	uploadFailed    []uploadFailedEntry
	uploadRetried   []uploadRetriedEntry
	uploadRemoved   []uploadRemovedEntry
	shutdown        []shutdownEntry
}

// NewRegistry creates an extension registry with the given logger.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{logger: logger}
}

// Register adds an extension and type-asserts it into all applicable
// hook caches. Extensions are notified in registration order.
func (r *Registry) Register(e Extension) {
	r.extensions = append(r.extensions, e)
	name := e.Name()

	if h, ok := e.(UploadQueued); ok {
		r.uploadQueued = append(r.uploadQueued, uploadQueuedEntry{name, h})
	}
	if h, ok := e.(UploadStarted); ok {
		r.uploadStarted = append(r.uploadStarted, uploadStartedEntry{name, h})
	}
	if h, ok := e.(UploadCompleted); ok {
		r.uploadCompleted = append(r.uploadCompleted, uploadCompletedEntry{name, h})
	}
	if h, ok := e.(UploadFailed); ok {
		r.uploadFailed = append(r.uploadFailed, uploadFailedEntry{name, h})
	}
	if h, ok := e.(UploadRetried); ok {
		r.uploadRetried = append(r.uploadRetried, uploadRetriedEntry{name, h})
	}
	if h, ok := e.(UploadRemoved); ok {
		r.uploadRemoved = append(r.uploadRemoved, uploadRemovedEntry{name, h})
	}
	if h, ok := e.(Shutdown); ok {
		r.shutdown = append(r.shutdown, shutdownEntry{name, h})
	}
}

// Extensions returns all registered extensions.
func (r *Registry) Extensions() []Extension { return r.extensions }

// EmitUploadQueued notifies all extensions that implement UploadQueued.
func (r *Registry) EmitUploadQueued(ctx context.Context, u *upload.Upload) {
	for _, e := range r.uploadQueued {
		if err := e.hook.OnUploadQueued(ctx, u); err != nil {
			r.logHookError("OnUploadQueued", e.name, err)
		}
	}
}

// EmitUploadStarted notifies all extensions that implement UploadStarted.
func (r *Registry) EmitUploadStarted(ctx context.Context, u *upload.Upload) {
	for _, e := range r.uploadStarted {
		if err := e.hook.OnUploadStarted(ctx, u); err != nil {
			r.logHookError("OnUploadStarted", e.name, err)
		}
	}
}

// EmitUploadCompleted notifies all extensions that implement UploadCompleted.
func (r *Registry) EmitUploadCompleted(ctx context.Context, u *upload.Upload, elapsed time.Duration) {
	for _, e := range r.uploadCompleted {
		if err := e.hook.OnUploadCompleted(ctx, u, elapsed); err != nil {
			r.logHookError("OnUploadCompleted", e.name, err)
		}
	}
}

// EmitUploadFailed notifies all extensions that implement UploadFailed.
func (r *Registry) EmitUploadFailed(ctx context.Context, u *upload.Upload, uploadErr error) {
	for _, e := range r.uploadFailed {
		if err := e.hook.OnUploadFailed(ctx, u, uploadErr); err != nil {
			r.logHookError("OnUploadFailed", e.name, err)
		}
	}
}

// EmitUploadRetried notifies all extensions that implement UploadRetried.
func (r *Registry) EmitUploadRetried(ctx context.Context, u *upload.Upload, attempt int) {
	for _, e := range r.uploadRetried {
		if err := e.hook.OnUploadRetried(ctx, u, attempt); err != nil {
			r.logHookError("OnUploadRetried", e.name, err)
		}
	}
}

// EmitUploadRemoved notifies all extensions that implement UploadRemoved.
func (r *Registry) EmitUploadRemoved(ctx context.Context, uploadID id.UploadID) {
	for _, e := range r.uploadRemoved {
		if err := e.hook.OnUploadRemoved(ctx, uploadID); err != nil {
			r.logHookError("OnUploadRemoved", e.name, err)
		}
	}
}

// EmitShutdown notifies all extensions that implement Shutdown.
func (r *Registry) EmitShutdown(ctx context.Context) {
	for _, e := range r.shutdown {
		if err := e.hook.OnShutdown(ctx); err != nil {
			r.logHookError("OnShutdown", e.name, err)
		}
	}
}

// logHookError logs a warning when a lifecycle hook returns an error.
// Errors from hooks are never propagated — they must not block the pipeline.
func (r *Registry) logHookError(hook, extName string, err error) {
	r.logger.Warn("extension hook error",
		slog.String("hook", hook),
		slog.String("extension", extName),
		slog.String("error", err.Error()),
	)
}
