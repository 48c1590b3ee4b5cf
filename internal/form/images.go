package form

// StagedImage is a file picked for upload but not yet submitted.
type StagedImage struct {
	Handle      string
	FileName    string
	ContentType string
	Data        []byte
}

// ImageRemovals stages removal of a room's existing images.
// Current keeps the original order, so a restored URL reappears at its old index.
type ImageRemovals struct {
	original []string
	removed  map[int]bool
	pending  []int
}

func NewImageRemovals(urls []string) *ImageRemovals {
	return &ImageRemovals{
		original: append([]string(nil), urls...),
		removed:  map[int]bool{},
	}
}

func (r *ImageRemovals) indexOf(url string, removed bool) int {
	for i, u := range r.original {
		if u == url && r.removed[i] == removed {
			return i
		}
	}
	return -1
}

// Mark moves url from the current list to the pending-removal list.
func (r *ImageRemovals) Mark(url string) bool {
	i := r.indexOf(url, false)
	if i < 0 {
		return false
	}
	r.removed[i] = true
	r.pending = append(r.pending, i)
	return true
}

// Restore undoes Mark.
func (r *ImageRemovals) Restore(url string) bool {
	i := r.indexOf(url, true)
	if i < 0 {
		return false
	}
	delete(r.removed, i)
	for k, p := range r.pending {
		if p == i {
			r.pending = append(r.pending[:k], r.pending[k+1:]...)
			break
		}
	}
	return true
}

func (r *ImageRemovals) Current() []string {
	out := make([]string, 0, len(r.original)-len(r.removed))
	for i, u := range r.original {
		if !r.removed[i] {
			out = append(out, u)
		}
	}
	return out
}

// Pending lists URLs marked for removal, in marking order.
func (r *ImageRemovals) Pending() []string {
	out := make([]string, 0, len(r.pending))
	for _, i := range r.pending {
		out = append(out, r.original[i])
	}
	return out
}
