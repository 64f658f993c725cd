package routeplanner

import "errors"

var (
	// Not found errors.
	ErrUploadNotFound  = errors.New("routeplanner: upload not found")
	ErrPreviewNotFound = errors.New("routeplanner: preview not found")

	// Conflict errors.
	ErrUploadExists = errors.New("routeplanner: upload already exists")

	// Admission-time validation errors. These are the only failures that
	// surface synchronously from Submit.
	ErrEmptyPayload         = errors.New("routeplanner: empty payload")
	ErrUnsupportedMediaType = errors.New("routeplanner: unsupported media type")

	// State errors.
	ErrInvalidState = errors.New("routeplanner: invalid state transition")

	// Lifecycle errors.
	ErrNoExtractor = errors.New("routeplanner: no extraction service configured")
	ErrQueueClosed = errors.New("routeplanner: queue closed")
)
