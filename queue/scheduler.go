// Package queue provides admission control for the upload pipeline: a
// strict FIFO backlog of queued upload IDs and a global concurrency cap
// on in-flight extractions, with optional token-bucket rate limiting of
// admissions.
package queue

import (
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/reecejunior/newrouteplanner/id"
)

// DefaultMaxConcurrency is the admission cap used when none is configured.
const DefaultMaxConcurrency = 5

// Config defines admission behaviour for the scheduler.
type Config struct {
	// MaxConcurrency limits how many uploads may be in flight at once.
	// Zero or negative falls back to DefaultMaxConcurrency.
	MaxConcurrency int

	// AdmitRate is the maximum sustained admissions per second.
	// Zero disables rate limiting.
	AdmitRate float64

	// AdmitBurst is the burst size for the token-bucket rate limiter.
	// Defaults to 1 if AdmitRate is set but AdmitBurst is zero.
	AdmitBurst int
}

// Scheduler holds the FIFO backlog and the processing counter. All
// bookkeeping passes through one mutex: no upload is admitted twice and
// no slot is double-counted under concurrent submissions and
// completions. It is safe for concurrent use.
type Scheduler struct {
	mu         sync.Mutex
	cap        int
	limiter    *rate.Limiter
	backlog    []id.UploadID
	processing int
}

// NewScheduler creates a Scheduler with the given configuration.
func NewScheduler(cfg Config) *Scheduler {
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = DefaultMaxConcurrency
	}

	s := &Scheduler{cap: cfg.MaxConcurrency}
	if cfg.AdmitRate > 0 {
		burst := cfg.AdmitBurst
		if burst <= 0 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(cfg.AdmitRate), burst)
	}
	return s
}

// Enqueue appends the upload to the back of the backlog. Retried uploads
// go through here too: they receive a fresh position at the back, not
// their original one.
func (s *Scheduler) Enqueue(uploadID id.UploadID) {
	s.mu.Lock()
	s.backlog = append(s.backlog, uploadID)
	s.mu.Unlock()
}

// TryAdmit pops the oldest backlog entry if a concurrency slot is free,
// increments the processing counter, and returns the admitted ID. The
// caller MUST call Release when that upload's attempt finishes.
//
// When admission is rate limited, retryAfter is the delay after which a
// sweep should be attempted again; ok is false and no state changes.
func (s *Scheduler) TryAdmit() (admitted id.UploadID, ok bool, retryAfter time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.processing >= s.cap || len(s.backlog) == 0 {
		return id.Nil, false, 0
	}

	if s.limiter != nil {
		r := s.limiter.Reserve()
		if !r.OK() {
			return id.Nil, false, 0
		}
		if d := r.Delay(); d > 0 {
			r.Cancel()
			return id.Nil, false, d
		}
	}

	admitted = s.backlog[0]
	s.backlog = s.backlog[1:]
	s.processing++
	return admitted, true, 0
}

// Release frees one concurrency slot. Called once per admitted upload
// when its attempt resolves, whether or not the upload still exists.
func (s *Scheduler) Release() {
	s.mu.Lock()
	if s.processing > 0 {
		s.processing--
	}
	s.mu.Unlock()
}

// Drop removes the upload from the backlog, if present. Used when a
// queued upload is removed before admission. Returns true if an entry
// was dropped.
func (s *Scheduler) Drop(uploadID id.UploadID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, queued := range s.backlog {
		if queued == uploadID {
			s.backlog = append(s.backlog[:i], s.backlog[i+1:]...)
			return true
		}
	}
	return false
}

// ProcessingCount returns the number of uploads currently holding a slot.
func (s *Scheduler) ProcessingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.processing
}

// BacklogLen returns the number of uploads waiting for admission.
func (s *Scheduler) BacklogLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.backlog)
}

// MaxConcurrency returns the admission cap.
func (s *Scheduler) MaxConcurrency() int { return s.cap }
