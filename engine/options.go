package engine

import (
	"log/slog"
	"time"

	routeplanner "github.com/reecejunior/newrouteplanner"
	"github.com/reecejunior/newrouteplanner/ext"
	"github.com/reecejunior/newrouteplanner/extract"
	"github.com/reecejunior/newrouteplanner/middleware"
	"github.com/reecejunior/newrouteplanner/upload"
)

// Option configures a Queue.
type Option func(*Queue) error

// WithConfig replaces the whole configuration.
func WithConfig(cfg routeplanner.Config) Option {
	return func(q *Queue) error {
		q.cfg = cfg
		return nil
	}
}

// WithMaxConcurrency sets the maximum number of uploads processed
// concurrently.
func WithMaxConcurrency(n int) Option {
	return func(q *Queue) error {
		q.cfg.MaxConcurrency = n
		return nil
	}
}

// WithExtractTimeout sets the per-upload deadline for the extraction
// call. Zero disables the deadline.
func WithExtractTimeout(d time.Duration) Option {
	return func(q *Queue) error {
		q.cfg.ExtractTimeout = d
		return nil
	}
}

// WithAdmitRate enables token-bucket rate limiting of admissions.
func WithAdmitRate(perSecond float64, burst int) Option {
	return func(q *Queue) error {
		q.cfg.AdmitRate = perSecond
		q.cfg.AdmitBurst = burst
		return nil
	}
}

// WithLogger sets the structured logger for the queue.
func WithLogger(l *slog.Logger) Option {
	return func(q *Queue) error {
		q.logger = l
		return nil
	}
}

// WithStore sets the upload store. Defaults to the in-memory store.
func WithStore(s upload.Store) Option {
	return func(q *Queue) error {
		q.store = s
		return nil
	}
}

// WithExtractor sets the external extraction service. Required.
func WithExtractor(svc extract.Service) Option {
	return func(q *Queue) error {
		q.extractor = svc
		return nil
	}
}

// WithExtensions registers lifecycle extensions. Extensions are notified
// in registration order.
func WithExtensions(exts ...ext.Extension) Option {
	return func(q *Queue) error {
		q.exts = append(q.exts, exts...)
		return nil
	}
}

// WithMiddleware adds execution middleware wrapping the extraction call.
// A panic-recovery wrapper is always installed regardless.
func WithMiddleware(mws ...middleware.Middleware) Option {
	return func(q *Queue) error {
		q.mws = append(q.mws, mws...)
		return nil
	}
}

// submitConfig holds per-submission settings.
type submitConfig struct {
	onUpdate func(upload.Snapshot)
}

// SubmitOption configures a single submission.
type SubmitOption func(*submitConfig)

// OnUpdate registers the observer for this upload. It is invoked exactly
// once per state transition, in transition order, and never after the
// upload has been removed.
func OnUpdate(fn func(upload.Snapshot)) SubmitOption {
	return func(sc *submitConfig) { sc.onUpdate = fn }
}
