// Package engine wires the upload queue subsystems together: the store,
// the preview manager, the admission scheduler, the worker dispatcher,
// and the extension registry. The Queue it exposes is the public
// controller for the upload pipeline.
//
// All admission and completion bookkeeping passes through one critical
// section, so no upload is admitted twice, no slot is double-counted,
// and the processing count never exceeds the configured cap at any
// observable instant.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	routeplanner "github.com/reecejunior/newrouteplanner"
	"github.com/reecejunior/newrouteplanner/ext"
	"github.com/reecejunior/newrouteplanner/extract"
	"github.com/reecejunior/newrouteplanner/id"
	"github.com/reecejunior/newrouteplanner/middleware"
	"github.com/reecejunior/newrouteplanner/preview"
	"github.com/reecejunior/newrouteplanner/queue"
	"github.com/reecejunior/newrouteplanner/store/memory"
	"github.com/reecejunior/newrouteplanner/upload"
	"github.com/reecejunior/newrouteplanner/worker"
)

// Queue is the upload processing controller. It accepts submissions,
// answers snapshot queries, accepts retry and removal requests, and
// drives the admission → extraction → notification pipeline.
//
// Create one with New and functional options; an extraction service is
// the only required dependency. Submit never blocks on processing: all
// progress after submission is driven internally by admission sweeps.
type Queue struct {
	cfg        routeplanner.Config
	logger     *slog.Logger
	store      upload.Store
	previews   *preview.Manager
	sched      *queue.Scheduler
	extractor  extract.Service
	dispatcher *worker.Dispatcher
	extensions *ext.Registry
	exts       []ext.Extension
	mws        []middleware.Middleware

	// mu is the single serialized decision point: every state
	// transition, backlog mutation, and slot count change happens
	// while holding it.
	mu         sync.Mutex
	watchers   map[string]*watcher
	sweepTimer *time.Timer
	closed     bool

	// wg counts in-flight extraction goroutines; Add happens inside
	// the critical section so Close observes a consistent count.
	wg sync.WaitGroup
}

// New creates a Queue with the given options. WithExtractor is required.
func New(opts ...Option) (*Queue, error) {
	q := &Queue{
		cfg:      routeplanner.DefaultConfig(),
		logger:   slog.Default(),
		watchers: make(map[string]*watcher),
	}
	for _, opt := range opts {
		if err := opt(q); err != nil {
			return nil, err
		}
	}

	if q.extractor == nil {
		return nil, routeplanner.ErrNoExtractor
	}
	if q.store == nil {
		q.store = memory.New()
	}

	q.previews = preview.NewManager(q.logger)
	q.sched = queue.NewScheduler(queue.Config{
		MaxConcurrency: q.cfg.MaxConcurrency,
		AdmitRate:      q.cfg.AdmitRate,
		AdmitBurst:     q.cfg.AdmitBurst,
	})
	q.extensions = ext.NewRegistry(q.logger)
	for _, e := range q.exts {
		q.extensions.Register(e)
	}
	q.dispatcher = worker.NewDispatcher(q.extractor, q.logger, q.mws...)

	return q, nil
}

// Config returns a copy of the queue's configuration.
func (q *Queue) Config() routeplanner.Config { return q.cfg }

// Submit validates the payload, allocates its preview resource, creates
// a queued upload, attempts admission, and returns the new ID without
// waiting for processing. It fails only on admission-time validation
// (empty payload, unsupported media type) or after Close; then no upload
// exists.
func (q *Queue) Submit(ctx context.Context, payload []byte, mediaType string, opts ...SubmitOption) (id.UploadID, error) {
	var sc submitConfig
	for _, opt := range opts {
		opt(&sc)
	}

	uploadID := id.NewUploadID()

	// Allocate the preview first: it doubles as payload validation and
	// must exist before the upload does.
	handle, err := q.previews.Allocate(uploadID, payload, mediaType)
	if err != nil {
		return id.Nil, err
	}

	now := time.Now().UTC()
	u := &upload.Upload{
		Entity:      routeplanner.Entity{CreatedAt: now, UpdatedAt: now},
		ID:          uploadID,
		Payload:     payload,
		MediaType:   handle.MediaType,
		State:       upload.StateQueued,
		PreviewID:   handle.ID,
		SubmittedAt: now,
		Timeout:     q.cfg.ExtractTimeout,
	}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		q.previews.Release(handle.ID)
		return id.Nil, routeplanner.ErrQueueClosed
	}
	if err := q.store.CreateUpload(ctx, u); err != nil {
		q.mu.Unlock()
		q.previews.Release(handle.ID)
		return id.Nil, err
	}
	if sc.onUpdate != nil {
		q.watchers[uploadID.String()] = newWatcher(sc.onUpdate)
	}
	q.sched.Enqueue(uploadID)
	q.notifyLocked(u)
	admitted := q.sweepLocked(ctx)
	q.mu.Unlock()

	q.logger.Info("upload submitted",
		slog.String("upload_id", uploadID.String()),
		slog.String("media_type", u.MediaType),
		slog.Int("payload_size", len(payload)),
	)
	q.extensions.EmitUploadQueued(ctx, u)
	q.dispatchAdmitted(ctx, admitted)

	return uploadID, nil
}

// Retry re-queues a failed upload at the back of the backlog and sweeps
// admission. Calling it in any other state mutates nothing and returns
// ErrInvalidState; an unknown ID returns ErrUploadNotFound.
func (q *Queue) Retry(ctx context.Context, uploadID id.UploadID) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return routeplanner.ErrQueueClosed
	}

	u, err := q.store.GetUpload(ctx, uploadID)
	if err != nil {
		q.mu.Unlock()
		return err
	}
	if u.State != upload.StateFailed {
		q.mu.Unlock()
		return fmt.Errorf("%w: cannot retry upload in state %q", routeplanner.ErrInvalidState, u.State)
	}

	now := time.Now().UTC()
	u.State = upload.StateQueued
	u.LastError = ""
	u.Addresses = nil
	u.RetryCount++
	u.StartedAt = nil
	u.CompletedAt = nil
	u.UpdatedAt = now

	if err := q.store.UpdateUpload(ctx, u); err != nil {
		q.mu.Unlock()
		return err
	}
	q.sched.Enqueue(uploadID)
	q.notifyLocked(u)
	admitted := q.sweepLocked(ctx)
	q.mu.Unlock()

	q.logger.Info("upload retried",
		slog.String("upload_id", uploadID.String()),
		slog.Int("attempt", u.RetryCount),
	)
	q.extensions.EmitUploadRetried(ctx, u, u.RetryCount)
	q.extensions.EmitUploadQueued(ctx, u)
	q.dispatchAdmitted(ctx, admitted)

	return nil
}

// Remove deletes the upload from the live set, releases its preview
// resource, and drops any undelivered notifications. It is idempotent:
// removing an unknown or already-removed ID is a no-op. If the upload is
// processing, the in-flight extraction runs to completion but its
// outcome is discarded and never delivered.
func (q *Queue) Remove(ctx context.Context, uploadID id.UploadID) error {
	key := uploadID.String()

	q.mu.Lock()
	u, err := q.store.GetUpload(ctx, uploadID)
	if err != nil {
		q.mu.Unlock()
		return nil
	}
	if u.State == upload.StateQueued {
		q.sched.Drop(uploadID)
	}
	if err := q.store.DeleteUpload(ctx, uploadID); err != nil {
		q.logger.Error("failed to delete upload",
			slog.String("upload_id", key),
			slog.String("error", err.Error()),
		)
	}
	w := q.watchers[key]
	delete(q.watchers, key)
	q.mu.Unlock()

	// Closing outside the critical section: close waits for an in-flight
	// delivery, and that callback may be calling back into the queue.
	if w != nil {
		w.close()
	}

	q.previews.Release(u.PreviewID)

	q.logger.Info("upload removed",
		slog.String("upload_id", key),
		slog.String("state", string(u.State)),
	)
	q.extensions.EmitUploadRemoved(ctx, uploadID)

	return nil
}

// Get returns a snapshot of the upload. It never blocks on in-flight
// work.
func (q *Queue) Get(ctx context.Context, uploadID id.UploadID) (upload.Snapshot, error) {
	u, err := q.store.GetUpload(ctx, uploadID)
	if err != nil {
		return upload.Snapshot{}, err
	}
	return u.Snapshot(), nil
}

// List returns snapshots of all live uploads ordered by submission time.
// It never blocks on in-flight work.
func (q *Queue) List(ctx context.Context) ([]upload.Snapshot, error) {
	uploads, err := q.store.ListUploads(ctx, upload.ListOpts{})
	if err != nil {
		return nil, err
	}
	snapshots := make([]upload.Snapshot, len(uploads))
	for i, u := range uploads {
		snapshots[i] = u.Snapshot()
	}
	return snapshots, nil
}

// Preview returns the preview handle allocated for the upload at
// submission time.
func (q *Queue) Preview(ctx context.Context, uploadID id.UploadID) (*preview.Handle, error) {
	u, err := q.store.GetUpload(ctx, uploadID)
	if err != nil {
		return nil, err
	}
	return q.previews.Get(u.PreviewID)
}

// ProcessingCount returns the number of uploads currently in flight.
func (q *Queue) ProcessingCount() int { return q.sched.ProcessingCount() }

// BacklogLen returns the number of uploads waiting for admission.
func (q *Queue) BacklogLen() int { return q.sched.BacklogLen() }

// Close stops accepting submissions and retries, lets in-flight
// extractions run to completion (bounded by the context deadline or the
// configured ShutdownTimeout), and notifies Shutdown extensions. Remove
// and the read queries keep working after Close.
func (q *Queue) Close(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	if q.sweepTimer != nil {
		q.sweepTimer.Stop()
		q.sweepTimer = nil
	}
	q.mu.Unlock()

	q.logger.Info("upload queue closing")

	if _, hasDeadline := ctx.Deadline(); !hasDeadline && q.cfg.ShutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, q.cfg.ShutdownTimeout)
		defer cancel()
	}

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		q.logger.Info("upload queue closed gracefully")
	case <-ctx.Done():
		q.logger.Warn("upload queue shutdown timed out with extractions in flight")
	}

	q.extensions.EmitShutdown(ctx)
	return nil
}

// sweepLocked admits backlog entries while slots are free, marking each
// one processing and queueing its notification. It returns the admitted
// uploads; the caller emits their hooks and launches their extraction
// goroutines after releasing the lock. Callers must hold q.mu.
func (q *Queue) sweepLocked(ctx context.Context) []*upload.Upload {
	if q.closed {
		return nil
	}

	var admitted []*upload.Upload
	for {
		uploadID, ok, retryAfter := q.sched.TryAdmit()
		if !ok {
			if retryAfter > 0 {
				q.scheduleSweepLocked(retryAfter)
			}
			return admitted
		}

		u, err := q.store.GetUpload(ctx, uploadID)
		if err != nil {
			// Backlog entry without a live record; free the slot and
			// keep sweeping.
			q.sched.Release()
			continue
		}

		now := time.Now().UTC()
		u.State = upload.StateProcessing
		u.StartedAt = &now
		u.UpdatedAt = now
		if err := q.store.UpdateUpload(ctx, u); err != nil {
			q.logger.Error("failed to mark upload processing",
				slog.String("upload_id", uploadID.String()),
				slog.String("error", err.Error()),
			)
			q.sched.Release()
			continue
		}

		q.notifyLocked(u)
		q.wg.Add(1)
		admitted = append(admitted, u)
	}
}

// scheduleSweepLocked arms a one-shot timer to sweep again after a
// rate-limited admission attempt. Callers must hold q.mu.
func (q *Queue) scheduleSweepLocked(d time.Duration) {
	if q.closed || q.sweepTimer != nil {
		return
	}
	q.sweepTimer = time.AfterFunc(d, func() {
		ctx := context.Background()
		q.mu.Lock()
		q.sweepTimer = nil
		admitted := q.sweepLocked(ctx)
		q.mu.Unlock()
		q.dispatchAdmitted(ctx, admitted)
	})
}

// dispatchAdmitted emits the started hook and launches the extraction
// goroutine for each freshly admitted upload. Called without q.mu held.
func (q *Queue) dispatchAdmitted(ctx context.Context, admitted []*upload.Upload) {
	for _, u := range admitted {
		q.extensions.EmitUploadStarted(ctx, u)
		go q.run(u)
	}
}

// run executes one extraction attempt. The corresponding wg.Add happened
// at admission time, inside the critical section.
func (q *Queue) run(u *upload.Upload) {
	defer q.wg.Done()

	ctx := context.Background()
	start := time.Now()
	addresses, err := q.dispatcher.Execute(ctx, u)
	q.finish(ctx, u.ID, addresses, err, time.Since(start))
}

// finish records the outcome of an extraction attempt, frees the slot,
// and sweeps the backlog. If the upload was removed while in flight, the
// outcome is discarded: nothing is recorded and nothing is delivered.
func (q *Queue) finish(ctx context.Context, uploadID id.UploadID, addresses []string, execErr error, elapsed time.Duration) {
	q.mu.Lock()
	u, err := q.store.GetUpload(ctx, uploadID)
	if err != nil {
		q.sched.Release()
		admitted := q.sweepLocked(ctx)
		q.mu.Unlock()

		q.logger.Debug("discarding outcome of removed upload",
			slog.String("upload_id", uploadID.String()),
		)
		q.dispatchAdmitted(ctx, admitted)
		return
	}

	now := time.Now().UTC()
	u.UpdatedAt = now
	u.CompletedAt = &now
	if execErr != nil {
		u.State = upload.StateFailed
		u.LastError = execErr.Error()
		u.Addresses = nil
	} else {
		u.State = upload.StateCompleted
		u.Addresses = addresses
		u.LastError = ""
	}
	if updateErr := q.store.UpdateUpload(ctx, u); updateErr != nil {
		q.logger.Error("failed to record upload outcome",
			slog.String("upload_id", uploadID.String()),
			slog.String("error", updateErr.Error()),
		)
	}
	q.notifyLocked(u)
	q.sched.Release()
	admitted := q.sweepLocked(ctx)
	q.mu.Unlock()

	if execErr != nil {
		q.logger.Warn("upload failed",
			slog.String("upload_id", uploadID.String()),
			slog.String("error", execErr.Error()),
		)
		q.extensions.EmitUploadFailed(ctx, u, execErr)
	} else {
		q.extensions.EmitUploadCompleted(ctx, u, elapsed)
	}
	q.dispatchAdmitted(ctx, admitted)
}

// notifyLocked queues a snapshot delivery to the upload's observer, if
// one is registered. Callers must hold q.mu; delivery itself happens on
// the watcher's drain goroutine.
func (q *Queue) notifyLocked(u *upload.Upload) {
	if w, ok := q.watchers[u.ID.String()]; ok {
		w.notify(u.Snapshot())
	}
}
