// Package memory provides a fully in-memory upload.Store. The queue has
// no durable state: this is the store used in production as well as in
// tests.
package memory

import (
	"context"
	"sort"
	"sync"

	routeplanner "github.com/reecejunior/newrouteplanner"
	"github.com/reecejunior/newrouteplanner/id"
	"github.com/reecejunior/newrouteplanner/upload"
)

// Ensure Store implements upload.Store at compile time.
var _ upload.Store = (*Store)(nil)

// Store is a mutex-guarded map of uploads. Safe for concurrent access.
// All reads and writes go through copies so callers never share mutable
// state with the store.
type Store struct {
	mu      sync.RWMutex
	uploads map[string]*upload.Upload
}

// New returns a new empty Store.
func New() *Store {
	return &Store{
		uploads: make(map[string]*upload.Upload),
	}
}

// CreateUpload persists a new upload in queued state.
func (m *Store) CreateUpload(_ context.Context, u *upload.Upload) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := u.ID.String()
	if _, exists := m.uploads[key]; exists {
		return routeplanner.ErrUploadExists
	}
	cp := *u
	m.uploads[key] = &cp
	return nil
}

// GetUpload retrieves an upload by ID.
func (m *Store) GetUpload(_ context.Context, uploadID id.UploadID) (*upload.Upload, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.uploads[uploadID.String()]
	if !ok {
		return nil, routeplanner.ErrUploadNotFound
	}
	cp := *u
	return &cp, nil
}

// UpdateUpload persists changes to an existing upload.
func (m *Store) UpdateUpload(_ context.Context, u *upload.Upload) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := u.ID.String()
	if _, ok := m.uploads[key]; !ok {
		return routeplanner.ErrUploadNotFound
	}
	cp := *u
	m.uploads[key] = &cp
	return nil
}

// DeleteUpload removes an upload by ID.
func (m *Store) DeleteUpload(_ context.Context, uploadID id.UploadID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := uploadID.String()
	if _, ok := m.uploads[key]; !ok {
		return routeplanner.ErrUploadNotFound
	}
	delete(m.uploads, key)
	return nil
}

// ListUploads returns uploads matching opts, ordered by SubmittedAt
// ascending.
func (m *Store) ListUploads(_ context.Context, opts upload.ListOpts) ([]*upload.Upload, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*upload.Upload, 0, len(m.uploads))
	for _, u := range m.uploads {
		if opts.State != "" && u.State != opts.State {
			continue
		}
		cp := *u
		result = append(result, &cp)
	}

	sort.Slice(result, func(i, k int) bool {
		return result[i].SubmittedAt.Before(result[k].SubmittedAt)
	})

	if opts.Limit > 0 && len(result) > opts.Limit {
		result = result[:opts.Limit]
	}
	return result, nil
}

// CountUploads returns the number of uploads matching opts.
func (m *Store) CountUploads(_ context.Context, opts upload.CountOpts) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var n int64
	for _, u := range m.uploads {
		if opts.State != "" && u.State != opts.State {
			continue
		}
		n++
	}
	return n, nil
}
