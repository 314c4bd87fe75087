package ringbuf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckedVariantsOnEmpty(t *testing.T) {
	r := New[int, uint8](2)
	r.PushBack(5)
	r.PopFront()

	_, ok := r.TryPopFront()
	assert.False(t, ok)
	_, ok = r.TryPopBack()
	assert.False(t, ok)
	_, ok = r.TryAt(0)
	assert.False(t, ok)
	_, ok = r.Front()
	assert.False(t, ok)
	_, ok = r.Back()
	assert.False(t, ok)
	assert.True(t, r.IsEmpty())
}

func TestCheckedVariants(t *testing.T) {
	r := New[string, uint8](3)
	r.PushBack("b")
	r.PushBack("c")
	r.PushFront("a")

	v, ok := r.Front()
	assert.True(t, ok)
	assert.Equal(t, "a", v)

	v, ok = r.Back()
	assert.True(t, ok)
	assert.Equal(t, "c", v)

	v, ok = r.TryAt(1)
	assert.True(t, ok)
	assert.Equal(t, "b", v)

	_, ok = r.TryAt(3)
	assert.False(t, ok, "TryAt must not clamp like At")

	v, ok = r.TryPopBack()
	assert.True(t, ok)
	assert.Equal(t, "c", v)

	v, ok = r.TryPopFront()
	assert.True(t, ok)
	assert.Equal(t, "a", v)

	assert.Equal(t, uint8(1), r.Len())
}
