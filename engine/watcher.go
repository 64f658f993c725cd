package engine

import (
	"sync"

	"github.com/reecejunior/newrouteplanner/upload"
)

// watcher delivers snapshots to the per-upload observer registered at
// submission: exactly one delivery per transition, in transition order,
// and none after the upload is removed.
//
// Deliveries are queued under the controller's critical section and
// drained by a single goroutine, so the observer never runs with the
// controller lock held and may call back into the queue freely. close
// waits for an in-flight delivery to return, so once it completes no
// callback ever begins again.
type watcher struct {
	fn func(upload.Snapshot)

	mu         sync.Mutex
	idle       sync.Cond
	pending    []upload.Snapshot
	draining   bool
	delivering bool
	closed     bool
}

func newWatcher(fn func(upload.Snapshot)) *watcher {
	w := &watcher{fn: fn}
	w.idle.L = &w.mu
	return w
}

// notify appends a snapshot to the delivery queue and starts a drain
// goroutine if none is running. It never blocks.
func (w *watcher) notify(s upload.Snapshot) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.pending = append(w.pending, s)
	if w.draining {
		w.mu.Unlock()
		return
	}
	w.draining = true
	w.mu.Unlock()

	go w.drain()
}

func (w *watcher) drain() {
	for {
		w.mu.Lock()
		if w.closed || len(w.pending) == 0 {
			w.draining = false
			w.mu.Unlock()
			return
		}
		next := w.pending[0]
		w.pending = w.pending[1:]
		w.delivering = true
		w.mu.Unlock()

		w.fn(next)

		w.mu.Lock()
		w.delivering = false
		w.idle.Broadcast()
		w.mu.Unlock()
	}
}

// close stops delivery, drops anything still pending, and waits for a
// delivery already in flight to return. Called on removal, outside the
// controller's critical section: the in-flight callback may be calling
// back into the queue. After close returns the observer sees nothing
// more for this upload.
func (w *watcher) close() {
	w.mu.Lock()
	w.closed = true
	w.pending = nil
	for w.delivering {
		w.idle.Wait()
	}
	w.mu.Unlock()
}
