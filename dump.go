package ringbuf

import (
	"fmt"
	"io"
)

// Dump writes a human-readable description of every physical slot to w:
// its index, its stored value and whether head or tail points at it. Slots
// outside the live range still show whatever they last held. The format is
// meant for people, not parsers.
func (r *Ring[T, I]) Dump(w io.Writer) error {
	return r.DumpFunc(w, func(v T) string {
		return fmt.Sprintf("%v", v)
	})
}

// DumpFunc is Dump with a caller-supplied formatter for values.
func (r *Ring[T, I]) DumpFunc(w io.Writer, format func(T) string) error {
	_, err := fmt.Fprintf(w, "ring cap=%d len=%d head=%d tail=%d\n",
		uint64(r.capacity()), uint64(r.count), uint64(r.head), uint64(r.tail))
	if err != nil {
		return err
	}

	for i := range r.storage {
		marker := ""
		if I(i) == r.head {
			marker += " <head"
		}
		if I(i) == r.tail {
			marker += " <tail"
		}
		if _, err := fmt.Fprintf(w, "[%d] %s%s\n", i, format(r.storage[i]), marker); err != nil {
			return err
		}
	}
	return nil
}
