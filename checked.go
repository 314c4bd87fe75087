package ringbuf

// The methods in this file are the checked counterparts of PopFront,
// PopBack and At. They report ok == false instead of returning a fallback
// value and leave the ring unchanged in that case.

// TryPopFront removes and returns the oldest element if there is one.
func (r *Ring[T, I]) TryPopFront() (v T, ok bool) {
	if r.count == 0 {
		return v, false
	}
	return r.PopFront(), true
}

// TryPopBack removes and returns the newest element if there is one.
func (r *Ring[T, I]) TryPopBack() (v T, ok bool) {
	if r.count == 0 {
		return v, false
	}
	return r.PopBack(), true
}

// TryAt returns the i-th element in logical order if i < Len.
func (r *Ring[T, I]) TryAt(i I) (v T, ok bool) {
	if i >= r.count {
		return v, false
	}
	return r.storage[r.slot(i)], true
}

// Front returns the oldest element without removing it.
func (r *Ring[T, I]) Front() (v T, ok bool) {
	if r.count == 0 {
		return v, false
	}
	return r.storage[r.head], true
}

// Back returns the newest element without removing it.
func (r *Ring[T, I]) Back() (v T, ok bool) {
	if r.count == 0 {
		return v, false
	}
	return r.storage[r.tail], true
}
