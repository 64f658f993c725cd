package routeplanner

import "time"

// Config holds configuration for the upload queue.
type Config struct {
	// MaxConcurrency is the maximum number of uploads processed
	// concurrently. Uploads beyond the cap wait in the FIFO backlog.
	MaxConcurrency int

	// ExtractTimeout is the maximum duration a single extraction call may
	// run before its context is cancelled. Zero disables the deadline and
	// lets a stalled extraction occupy its slot indefinitely.
	ExtractTimeout time.Duration

	// AdmitRate is the maximum sustained admissions per second.
	// Zero disables admission rate limiting.
	AdmitRate float64

	// AdmitBurst is the burst size for the admission token bucket.
	// Defaults to 1 if AdmitRate is set but AdmitBurst is zero.
	AdmitBurst int

	// ShutdownTimeout is the maximum time Close waits for in-flight
	// extractions when the caller's context has no deadline of its own.
	ShutdownTimeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxConcurrency:  5,
		ShutdownTimeout: 30 * time.Second,
	}
}
