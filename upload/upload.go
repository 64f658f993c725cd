// Package upload defines the job record for the upload processing queue:
// the Upload struct, its lifecycle state machine, the observer snapshot,
// and the persistence contract.
package upload

import (
	"time"

	routeplanner "github.com/reecejunior/newrouteplanner"
	"github.com/reecejunior/newrouteplanner/id"
)

// State represents the lifecycle state of an upload.
type State string

const (
	// StateQueued means the upload sits in the FIFO backlog waiting for a
	// free concurrency slot.
	StateQueued State = "queued"
	// StateProcessing means the upload holds a slot and its extraction
	// call is in flight.
	StateProcessing State = "processing"
	// StateCompleted means extraction finished and Addresses holds the
	// (possibly empty) result.
	StateCompleted State = "completed"
	// StateFailed means extraction failed; the upload stays in the live
	// set until an explicit retry or removal.
	StateFailed State = "failed"
)

// Terminal reports whether s is a resting state: no further transition
// happens without an explicit caller action (retry or remove).
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}

// CanTransitionTo reports whether the state machine permits moving from
// s to next. Queued → Processing → {Completed, Failed}; Failed → Queued
// via retry. Removal is an exit from the machine, not a state.
func (s State) CanTransitionTo(next State) bool {
	switch s {
	case StateQueued:
		return next == StateProcessing
	case StateProcessing:
		return next == StateCompleted || next == StateFailed
	case StateFailed:
		return next == StateQueued
	default:
		return false
	}
}

// Upload represents one unit of work: an image payload destined for
// address extraction.
type Upload struct {
	routeplanner.Entity

	ID        id.UploadID `json:"id"`
	Payload   []byte      `json:"-"`
	MediaType string      `json:"media_type"`
	State     State       `json:"state"`

	// Addresses is the extraction result, populated only in StateCompleted.
	// An empty slice is a valid result.
	Addresses []string `json:"addresses,omitempty"`

	// LastError describes the most recent failure, populated only in
	// StateFailed.
	LastError string `json:"last_error,omitempty"`

	// RetryCount is the number of explicit retries requested so far.
	RetryCount int `json:"retry_count"`

	// PreviewID references the preview handle allocated at submission.
	PreviewID id.PreviewID `json:"preview_id,omitempty"`

	// SubmittedAt orders the FIFO backlog. A retried upload keeps its
	// original SubmittedAt but re-enters the backlog at the back.
	SubmittedAt time.Time `json:"submitted_at"`

	// Timeout is the maximum duration the extraction call may run.
	// Zero means no deadline.
	Timeout time.Duration `json:"timeout,omitempty"`

	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Snapshot returns the observer-facing view of the upload. The returned
// value shares no mutable state with the receiver.
func (u *Upload) Snapshot() Snapshot {
	s := Snapshot{
		ID:          u.ID,
		State:       u.State,
		Error:       u.LastError,
		RetryCount:  u.RetryCount,
		SubmittedAt: u.SubmittedAt,
	}
	if u.Addresses != nil {
		s.Addresses = make([]string, len(u.Addresses))
		copy(s.Addresses, u.Addresses)
	}
	return s
}

// Snapshot is the immutable view of an upload delivered to observers,
// one per state transition, in transition order.
type Snapshot struct {
	ID          id.UploadID `json:"id"`
	State       State       `json:"state"`
	Addresses   []string    `json:"addresses,omitempty"`
	Error       string      `json:"error,omitempty"`
	RetryCount  int         `json:"retry_count"`
	SubmittedAt time.Time   `json:"submitted_at"`
}
