package detail

import (
	"fmt"
	"sync"
)

// Gallery 图片浏览游标
// The cursor survives Close/Open and is reset only when a different room's
// images are loaded.
type Gallery struct {
	mu     sync.Mutex
	roomID int64
	images []string
	cursor int
	open   bool
}

// Load installs a room's image sequence.
func (g *Gallery) Load(roomID int64, images []string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if roomID != g.roomID {
		g.cursor = 0
		g.open = false
	}
	g.roomID = roomID
	g.images = append([]string(nil), images...)
	if g.cursor >= len(g.images) {
		g.cursor = 0
	}
}

func (g *Gallery) Open() {
	g.mu.Lock()
	g.open = true
	g.mu.Unlock()
}

func (g *Gallery) Close() {
	g.mu.Lock()
	g.open = false
	g.mu.Unlock()
}

func (g *Gallery) IsOpen() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.open
}

func (g *Gallery) Next() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if n := len(g.images); n > 0 {
		g.cursor = (g.cursor + 1) % n
	}
}

func (g *Gallery) Prev() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if n := len(g.images); n > 0 {
		g.cursor = (g.cursor - 1 + n) % n
	}
}

// Select jumps to a thumbnail.
func (g *Gallery) Select(i int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if i < 0 || i >= len(g.images) {
		return fmt.Errorf("image index %d out of range [0,%d)", i, len(g.images))
	}
	g.cursor = i
	return nil
}

func (g *Gallery) Cursor() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.cursor
}

func (g *Gallery) Current() (string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.images) == 0 {
		return "", false
	}
	return g.images[g.cursor], true
}

func (g *Gallery) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.images)
}
