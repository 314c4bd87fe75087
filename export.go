package ringbuf

import (
	"encoding/json"
)

// Slices returns the live elements in logical order as two runs over the
// ring's storage: a from the oldest element to the physical end, b from the
// start of storage onward. b is empty unless the contents wrap. Both alias
// the ring and are only valid until the next mutating call.
func (r *Ring[T, I]) Slices() (a, b []T) {
	if r.count == 0 {
		return nil, nil
	}

	n := int(r.count)
	head := int(r.head)
	if end := head + n; end <= len(r.storage) {
		return r.storage[head:end], nil
	}

	a = r.storage[head:]
	b = r.storage[:n-len(a)]
	return
}

// Slice returns a freshly allocated copy of the live elements in logical
// order.
func (r *Ring[T, I]) Slice() []T {
	out := make([]T, r.count)
	r.Export(out)
	return out
}

// Export copies the live elements, oldest first, into dst and returns how
// many were written. It stops early if dst is shorter than Len.
func (r *Ring[T, I]) Export(dst []T) I {
	a, b := r.Slices()
	n := copy(dst, a)
	n += copy(dst[n:], b)
	return I(n)
}

// ExportFunc is Export with a per-element conversion. It is a function
// rather than a method because methods cannot declare type parameters.
func ExportFunc[T any, I Index, U any](r *Ring[T, I], dst []U, convert func(T) U) I {
	a, b := r.Slices()

	n := 0
	for _, run := range [2][]T{a, b} {
		for _, v := range run {
			if n == len(dst) {
				return I(n)
			}
			dst[n] = convert(v)
			n++
		}
	}
	return I(n)
}

func (r *Ring[T, I]) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Slice())
}
