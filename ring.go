package ringbuf

// Index is the set of unsigned integer types a Ring may use for its
// positions and element count. The chosen type must be able to hold the
// ring's capacity.
type Index interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uint | ~uintptr
}

// Ring is a fixed-capacity double-ended circular buffer with
// overwrite-on-full semantics.
//
// A Ring never allocates after construction and never fails: inserting into
// a full ring overwrites the element at the opposite end, and reading from an
// empty ring (or past its end) yields whatever the fallback slot holds. Those
// fallbacks are easy to misuse; check IsEmpty or Len first, or use the Try*
// variants.
//
// A Ring is not safe for concurrent use.
type Ring[T any, I Index] struct {
	storage []T
	head    I
	tail    I
	count   I
}

// New creates a ring with the given capacity. It panics if capacity is 0.
func New[T any, I Index](capacity I) *Ring[T, I] {
	if capacity == 0 {
		panic("ringbuf: capacity must be > 0")
	}
	return new(Ring[T, I]).Init(make([]T, capacity))
}

// Init adopts storage as the ring's backing array and resets the ring to
// empty. The capacity is len(storage). Passing a slice of a fixed-size array
// keeps the ring entirely off the heap:
//
//	var buf [16]Sample
//	var r ringbuf.Ring[Sample, uint8]
//	r.Init(buf[:])
//
// Init panics if storage is empty or its length does not fit in I.
func (r *Ring[T, I]) Init(storage []T) *Ring[T, I] {
	if len(storage) == 0 {
		panic("ringbuf: capacity must be > 0")
	}
	if uint64(len(storage)) > uint64(^I(0)) {
		panic("ringbuf: capacity does not fit in index type")
	}
	r.storage = storage
	r.Clear()
	return r
}

func (r *Ring[T, I]) capacity() I {
	return I(len(r.storage))
}

func (r *Ring[T, I]) next(i I) I {
	i++
	if i == r.capacity() {
		return 0
	}
	return i
}

func (r *Ring[T, I]) prev(i I) I {
	if i == 0 {
		return r.capacity() - 1
	}
	return i - 1
}

// slot maps logical index i (< count) to its physical position.
func (r *Ring[T, I]) slot(i I) I {
	if room := r.capacity() - r.head; i >= room {
		return i - room
	}
	return r.head + i
}

// PushBack inserts v as the newest element. If the ring is full the oldest
// element is overwritten and PushBack returns false.
func (r *Ring[T, I]) PushBack(v T) bool {
	r.tail = r.next(r.tail)
	r.storage[r.tail] = v

	if r.count == r.capacity() {
		r.head = r.next(r.head)
		return false
	}

	r.count++
	if r.count == 1 {
		r.head = r.tail
	}
	return true
}

// PushFront inserts v as the oldest element. If the ring is full the newest
// element is overwritten and PushFront returns false.
func (r *Ring[T, I]) PushFront(v T) bool {
	r.head = r.prev(r.head)
	r.storage[r.head] = v

	if r.count == r.capacity() {
		r.tail = r.prev(r.tail)
		return false
	}

	r.count++
	if r.count == 1 {
		r.tail = r.head
	}
	return true
}

// PopFront removes and returns the oldest element.
//
// On an empty ring it returns the value in the head slot and changes
// nothing. That value is meaningless; callers must check IsEmpty first.
func (r *Ring[T, I]) PopFront() T {
	v := r.storage[r.head]
	r.DiscardFront()
	return v
}

// PopBack removes and returns the newest element.
//
// On an empty ring it returns the value in the tail slot and changes
// nothing. That value is meaningless; callers must check IsEmpty first.
func (r *Ring[T, I]) PopBack() T {
	v := r.storage[r.tail]
	r.DiscardBack()
	return v
}

// DiscardFront removes the oldest element without reading it. It is a no-op
// on an empty ring.
func (r *Ring[T, I]) DiscardFront() {
	if r.count == 0 {
		return
	}
	r.head = r.next(r.head)
	r.count--
	if r.count == 0 {
		r.tail = r.head
	}
}

// DiscardBack removes the newest element without reading it. It is a no-op
// on an empty ring.
func (r *Ring[T, I]) DiscardBack() {
	if r.count == 0 {
		return
	}
	r.tail = r.prev(r.tail)
	r.count--
	if r.count == 0 {
		r.head = r.tail
	}
}

// At returns the i-th element in logical order, where 0 is the oldest.
// An index at or beyond Len yields the newest element instead.
func (r *Ring[T, I]) At(i I) T {
	return *r.Ptr(i)
}

// Ptr is like At but returns a pointer into the ring's storage. The pointer
// stays valid for the life of the ring, but the slot it names may be reused
// by the next mutating call.
func (r *Ring[T, I]) Ptr(i I) *T {
	if i >= r.count {
		return &r.storage[r.tail]
	}
	return &r.storage[r.slot(i)]
}

// Len returns the number of live elements.
func (r *Ring[T, I]) Len() I {
	return r.count
}

// Cap returns the fixed capacity.
func (r *Ring[T, I]) Cap() I {
	return r.capacity()
}

// Available returns how many more elements fit before PushBack or PushFront
// start overwriting.
func (r *Ring[T, I]) Available() I {
	return r.capacity() - r.count
}

func (r *Ring[T, I]) IsEmpty() bool {
	return r.count == 0
}

func (r *Ring[T, I]) IsFull() bool {
	return r.count == r.capacity()
}

// Clear empties the ring. Storage is left untouched.
func (r *Ring[T, I]) Clear() {
	r.head = 0
	r.tail = 0
	r.count = 0
}
