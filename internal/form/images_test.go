package form

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestImageRemovals_RestoreAtOriginalIndex(t *testing.T) {
	r := NewImageRemovals([]string{"a", "b", "c", "d"})

	assert.True(t, r.Mark("c"))
	assert.True(t, r.Mark("a"))
	assert.False(t, r.Mark("a"))
	assert.False(t, r.Mark("zzz"))
	assert.Equal(t, []string{"b", "d"}, r.Current())
	assert.Equal(t, []string{"c", "a"}, r.Pending())

	assert.True(t, r.Restore("c"))
	assert.False(t, r.Restore("c"))
	assert.Equal(t, []string{"b", "c", "d"}, r.Current())
	assert.Equal(t, []string{"a"}, r.Pending())
}

func TestImageRemovals_DuplicateURLs(t *testing.T) {
	r := NewImageRemovals([]string{"x", "y", "x"})
	assert.True(t, r.Mark("x"))
	assert.Equal(t, []string{"y", "x"}, r.Current())
	assert.True(t, r.Mark("x"))
	assert.Equal(t, []string{"y"}, r.Current())
	assert.True(t, r.Restore("x"))
	assert.Equal(t, []string{"x", "y"}, r.Current())
}

func TestPreviewRegistry(t *testing.T) {
	r := NewPreviewRegistry()
	a, b := r.Allocate(), r.Allocate()
	assert.NotEqual(t, a, b)
	assert.Equal(t, 2, r.Live())
	assert.True(t, r.Release(a))
	assert.False(t, r.Release(a))
	assert.Equal(t, 1, r.Live())
}
