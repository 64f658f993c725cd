// Package routeplanner provides the upload processing core for the route
// planner: an in-memory, bounded-concurrency queue that accepts image
// uploads, extracts delivery addresses from them through an external
// extraction service, and reports every lifecycle transition to observers.
//
// The queue is a library, not a service. Construct one with the engine
// package and functional options:
//
//	q, err := engine.New(
//	    engine.WithExtractor(svc),
//	    engine.WithMaxConcurrency(5),
//	)
//	uploadID, err := q.Submit(ctx, imageBytes, "image/jpeg",
//	    engine.OnUpdate(func(s upload.Snapshot) { ... }))
//
// # Architecture
//
// Each concern lives in its own package: upload (the job record and its
// state machine), preview (per-upload resource lifecycle), queue (FIFO
// backlog and admission control), extract (the external service contract),
// worker (execution), ext (lifecycle hooks), middleware (composable
// execution wrappers), store/memory (the in-memory store). The engine
// package wires them together and owns the single serialized critical
// section for admission and completion bookkeeping.
//
// All entity IDs use TypeID — type-prefixed, K-sortable, UUIDv7-based
// identifiers.
//
// Nothing here is durable: the queue is ephemeral for the process
// lifetime, and resource cleanup is caller-driven through Remove.
package routeplanner
