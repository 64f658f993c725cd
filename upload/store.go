package upload

import (
	"context"

	"github.com/reecejunior/newrouteplanner/id"
)

// ListOpts controls filtering for upload list queries.
type ListOpts struct {
	// State filters by upload state. Empty means all states.
	State State
	// Limit is the maximum number of uploads to return. Zero means no limit.
	Limit int
}

// CountOpts controls filtering for upload count queries.
type CountOpts struct {
	// State filters by upload state. Empty means all states.
	State State
}

// Store defines the persistence contract for uploads. The queue is
// in-memory for the process lifetime; the interface exists so the engine
// and its tests share one contract.
//
// Implementations must be safe for concurrent use and must return copies:
// a caller mutating a returned Upload must not race with the store.
type Store interface {
	// CreateUpload persists a new upload in queued state.
	CreateUpload(ctx context.Context, u *Upload) error

	// GetUpload retrieves an upload by ID.
	GetUpload(ctx context.Context, uploadID id.UploadID) (*Upload, error)

	// UpdateUpload persists changes to an existing upload.
	UpdateUpload(ctx context.Context, u *Upload) error

	// DeleteUpload removes an upload by ID.
	DeleteUpload(ctx context.Context, uploadID id.UploadID) error

	// ListUploads returns uploads matching opts, ordered by SubmittedAt
	// ascending.
	ListUploads(ctx context.Context, opts ListOpts) ([]*Upload, error)

	// CountUploads returns the number of uploads matching opts.
	CountUploads(ctx context.Context, opts CountOpts) (int64, error)
}
