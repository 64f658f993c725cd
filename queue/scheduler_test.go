package queue

import (
	"sync"
	"testing"
	"time"

	"github.com/reecejunior/newrouteplanner/id"
)

// ---------------------------------------------------------------------------
// Scheduler basics
// ---------------------------------------------------------------------------

func TestNewScheduler_Defaults(t *testing.T) {
	s := NewScheduler(Config{})
	if s.MaxConcurrency() != DefaultMaxConcurrency {
		t.Errorf("MaxConcurrency() = %d, want %d", s.MaxConcurrency(), DefaultMaxConcurrency)
	}
	if s.ProcessingCount() != 0 {
		t.Errorf("ProcessingCount() = %d, want 0", s.ProcessingCount())
	}
	if s.BacklogLen() != 0 {
		t.Errorf("BacklogLen() = %d, want 0", s.BacklogLen())
	}
}

func TestTryAdmit_EmptyBacklog(t *testing.T) {
	s := NewScheduler(Config{MaxConcurrency: 2})
	if _, ok, _ := s.TryAdmit(); ok {
		t.Fatal("TryAdmit on empty backlog should not admit")
	}
}

// ---------------------------------------------------------------------------
// FIFO ordering
// ---------------------------------------------------------------------------

func TestTryAdmit_FIFO(t *testing.T) {
	s := NewScheduler(Config{MaxConcurrency: 10})

	ids := []id.UploadID{id.NewUploadID(), id.NewUploadID(), id.NewUploadID()}
	for _, u := range ids {
		s.Enqueue(u)
	}

	for i, want := range ids {
		got, ok, _ := s.TryAdmit()
		if !ok {
			t.Fatalf("admission %d should succeed", i)
		}
		if got != want {
			t.Errorf("admission %d = %v, want %v", i, got, want)
		}
	}
}

// ---------------------------------------------------------------------------
// Concurrency cap
// ---------------------------------------------------------------------------

func TestTryAdmit_RespectsCap(t *testing.T) {
	s := NewScheduler(Config{MaxConcurrency: 2})

	for range 3 {
		s.Enqueue(id.NewUploadID())
	}

	if _, ok, _ := s.TryAdmit(); !ok {
		t.Fatal("first admission should succeed")
	}
	if _, ok, _ := s.TryAdmit(); !ok {
		t.Fatal("second admission should succeed")
	}
	if _, ok, _ := s.TryAdmit(); ok {
		t.Fatal("third admission should fail (cap 2)")
	}
	if s.ProcessingCount() != 2 {
		t.Errorf("ProcessingCount() = %d, want 2", s.ProcessingCount())
	}
	if s.BacklogLen() != 1 {
		t.Errorf("BacklogLen() = %d, want 1", s.BacklogLen())
	}

	// Freeing a slot lets the backlog through again.
	s.Release()
	if _, ok, _ := s.TryAdmit(); !ok {
		t.Fatal("admission should succeed after Release")
	}
}

func TestRelease_FloorsAtZero(t *testing.T) {
	s := NewScheduler(Config{MaxConcurrency: 1})
	s.Release()
	s.Release()
	if s.ProcessingCount() != 0 {
		t.Errorf("ProcessingCount() = %d, want 0", s.ProcessingCount())
	}
}

func TestScheduler_ConcurrentAdmission(t *testing.T) {
	const maxConc = 5
	s := NewScheduler(Config{MaxConcurrency: maxConc})

	for range 50 {
		s.Enqueue(id.NewUploadID())
	}

	// Hammer TryAdmit from many goroutines; the cap must never be
	// exceeded and no entry may be admitted twice.
	var (
		mu       sync.Mutex
		admitted = make(map[string]struct{})
	)
	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				got, ok, _ := s.TryAdmit()
				if !ok {
					return
				}
				mu.Lock()
				if _, dup := admitted[got.String()]; dup {
					t.Errorf("upload %v admitted twice", got)
				}
				admitted[got.String()] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if len(admitted) != maxConc {
		t.Errorf("admitted %d uploads, want %d", len(admitted), maxConc)
	}
	if s.ProcessingCount() != maxConc {
		t.Errorf("ProcessingCount() = %d, want %d", s.ProcessingCount(), maxConc)
	}
}

// ---------------------------------------------------------------------------
// Drop
// ---------------------------------------------------------------------------

func TestDrop(t *testing.T) {
	s := NewScheduler(Config{MaxConcurrency: 1})

	first, second, third := id.NewUploadID(), id.NewUploadID(), id.NewUploadID()
	s.Enqueue(first)
	s.Enqueue(second)
	s.Enqueue(third)

	if !s.Drop(second) {
		t.Fatal("Drop of a queued upload should return true")
	}
	if s.Drop(second) {
		t.Fatal("second Drop of the same upload should return false")
	}
	if s.BacklogLen() != 2 {
		t.Errorf("BacklogLen() = %d, want 2", s.BacklogLen())
	}

	got, ok, _ := s.TryAdmit()
	if !ok || got != first {
		t.Errorf("first admission = %v, want %v", got, first)
	}
	s.Release()
	got, ok, _ = s.TryAdmit()
	if !ok || got != third {
		t.Errorf("second admission = %v, want %v (dropped entry skipped)", got, third)
	}
}

// ---------------------------------------------------------------------------
// Rate limiting
// ---------------------------------------------------------------------------

func TestTryAdmit_RateLimited(t *testing.T) {
	s := NewScheduler(Config{
		MaxConcurrency: 10,
		AdmitRate:      1.0, // 1 per second
		AdmitBurst:     1,
	})

	s.Enqueue(id.NewUploadID())
	s.Enqueue(id.NewUploadID())

	// First admission consumes the burst token.
	if _, ok, _ := s.TryAdmit(); !ok {
		t.Fatal("first admission should succeed (within burst)")
	}

	// Second is throttled and reports a retry delay; nothing changes.
	_, ok, retryAfter := s.TryAdmit()
	if ok {
		t.Fatal("second admission should be rate limited")
	}
	if retryAfter <= 0 || retryAfter > 2*time.Second {
		t.Errorf("retryAfter = %v, want a positive sub-second-ish delay", retryAfter)
	}
	if s.BacklogLen() != 1 {
		t.Errorf("BacklogLen() = %d, want 1 (rate-limited entry stays queued)", s.BacklogLen())
	}
	if s.ProcessingCount() != 1 {
		t.Errorf("ProcessingCount() = %d, want 1", s.ProcessingCount())
	}
}
