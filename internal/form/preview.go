package form

import (
	"sync"

	"github.com/google/uuid"
)

// PreviewRegistry 本地预览句柄
// Every handle handed out must come back through Release; Live counts the ones
// that have not.
type PreviewRegistry struct {
	mu      sync.Mutex
	handles map[string]struct{}
}

func NewPreviewRegistry() *PreviewRegistry {
	return &PreviewRegistry{handles: map[string]struct{}{}}
}

func (r *PreviewRegistry) Allocate() string {
	h := "preview:" + uuid.NewString()
	r.mu.Lock()
	r.handles[h] = struct{}{}
	r.mu.Unlock()
	return h
}

// Release reports false for unknown or already released handles.
func (r *PreviewRegistry) Release(handle string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.handles[handle]; !ok {
		return false
	}
	delete(r.handles, handle)
	return true
}

func (r *PreviewRegistry) Live() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.handles)
}
