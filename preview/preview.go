// Package preview owns the auxiliary resource allocated for each upload:
// a display handle carrying the payload as a data URI. Allocation happens
// synchronously at submission time and doubles as payload validation;
// release happens exactly once, on removal.
package preview

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	routeplanner "github.com/reecejunior/newrouteplanner"
	"github.com/reecejunior/newrouteplanner/id"
)

// allowedMediaTypes is the set of image formats the queue accepts.
var allowedMediaTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/gif":  {},
	"image/webp": {},
}

// Handle is an allocated preview resource. The data URI is suitable for
// direct use by a display layer.
type Handle struct {
	ID          id.PreviewID `json:"id"`
	UploadID    id.UploadID  `json:"upload_id"`
	MediaType   string       `json:"media_type"`
	DataURI     string       `json:"data_uri"`
	Size        int          `json:"size"`
	AllocatedAt time.Time    `json:"allocated_at"`
}

// Manager allocates and releases preview handles. It is safe for
// concurrent use. Each handle is released at most once; releasing an
// unknown or already-released handle is a no-op.
type Manager struct {
	mu      sync.Mutex
	handles map[string]*Handle
	logger  *slog.Logger
}

// NewManager creates an empty preview manager.
func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		handles: make(map[string]*Handle),
		logger:  logger,
	}
}

// Allocate validates the payload and creates a preview handle for the
// upload. It fails if the payload is empty or the media type (declared,
// or sniffed from the payload when absent) is not an accepted image
// format. On failure no handle exists.
func (m *Manager) Allocate(uploadID id.UploadID, payload []byte, mediaType string) (*Handle, error) {
	if len(payload) == 0 {
		return nil, routeplanner.ErrEmptyPayload
	}

	mt := normalizeMediaType(mediaType)
	if mt == "" {
		mt = http.DetectContentType(payload)
	}
	if _, ok := allowedMediaTypes[mt]; !ok {
		return nil, fmt.Errorf("%w: %q", routeplanner.ErrUnsupportedMediaType, mt)
	}

	h := &Handle{
		ID:          id.NewPreviewID(),
		UploadID:    uploadID,
		MediaType:   mt,
		DataURI:     "data:" + mt + ";base64," + base64.StdEncoding.EncodeToString(payload),
		Size:        len(payload),
		AllocatedAt: time.Now().UTC(),
	}

	m.mu.Lock()
	m.handles[h.ID.String()] = h
	m.mu.Unlock()

	m.logger.Debug("preview allocated",
		slog.String("preview_id", h.ID.String()),
		slog.String("upload_id", uploadID.String()),
		slog.String("media_type", mt),
		slog.Int("size", h.Size),
	)

	return h, nil
}

// Get retrieves a live handle by ID.
func (m *Manager) Get(previewID id.PreviewID) (*Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	h, ok := m.handles[previewID.String()]
	if !ok {
		return nil, routeplanner.ErrPreviewNotFound
	}
	cp := *h
	return &cp, nil
}

// Release frees the handle. The first call releases; every later call
// (and a call for an unknown ID) is a no-op.
func (m *Manager) Release(previewID id.PreviewID) {
	m.mu.Lock()
	h, ok := m.handles[previewID.String()]
	if ok {
		delete(m.handles, previewID.String())
	}
	m.mu.Unlock()

	if ok {
		m.logger.Debug("preview released",
			slog.String("preview_id", h.ID.String()),
			slog.String("upload_id", h.UploadID.String()),
		)
	}
}

// Len returns the number of live handles.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.handles)
}

// normalizeMediaType lowercases the declared type and strips any
// parameters ("image/jpeg; charset=binary" -> "image/jpeg").
func normalizeMediaType(mt string) string {
	mt = strings.TrimSpace(strings.ToLower(mt))
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	return mt
}
