package ringbuf

import (
	"fmt"
	"testing"

	"pgregory.net/rapid"
)

// model is a slice-backed deque with the same overwrite rules as Ring.
type model struct {
	cap   int
	items []int
}

func (m *model) pushBack(v int) bool {
	if len(m.items) == m.cap {
		m.items = append(m.items[1:], v)
		return false
	}
	m.items = append(m.items, v)
	return true
}

func (m *model) pushFront(v int) bool {
	full := len(m.items) == m.cap
	if full {
		m.items = m.items[:len(m.items)-1]
	}
	m.items = append([]int{v}, m.items...)
	return !full
}

func checkAgainstModel(t *rapid.T, r *Ring[int, uint8], m *model) {
	if int(r.Len()) != len(m.items) {
		t.Fatalf("Len = %d, model has %d", r.Len(), len(m.items))
	}
	if r.Available()+r.Len() != r.Cap() {
		t.Fatalf("Available %d + Len %d != Cap %d", r.Available(), r.Len(), r.Cap())
	}
	if r.IsFull() != (len(m.items) == m.cap) || r.IsEmpty() != (len(m.items) == 0) {
		t.Fatalf("IsFull=%v IsEmpty=%v with %d of %d", r.IsFull(), r.IsEmpty(), len(m.items), m.cap)
	}
	for i, want := range m.items {
		if got := r.At(uint8(i)); got != want {
			t.Fatalf("At(%d) = %d, model %v", i, got, m.items)
		}
	}
	if got := fmt.Sprint(r.Slice()); got != fmt.Sprint(m.items) {
		t.Fatalf("Slice = %s, model %v", got, m.items)
	}
	if r.count > 0 {
		if r.slot(r.count-1) != r.tail {
			t.Fatalf("head %d + count %d - 1 does not land on tail %d", r.head, r.count, r.tail)
		}
	} else if r.head != r.tail {
		t.Fatalf("empty ring with head %d != tail %d", r.head, r.tail)
	}
}

func TestRingMatchesModel(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		capacity := rapid.IntRange(1, 9).Draw(t, "capacity")
		r := New[int, uint8](uint8(capacity))
		m := &model{cap: capacity}

		ops := rapid.IntRange(1, 60).Draw(t, "ops")
		for i := 0; i < ops; i++ {
			switch op := rapid.SampledFrom([]string{
				"pushBack", "pushFront", "popFront", "popBack",
				"discardFront", "discardBack", "clear",
			}).Draw(t, "op"); op {
			case "pushBack":
				v := rapid.Int().Draw(t, "v")
				if got, want := r.PushBack(v), m.pushBack(v); got != want {
					t.Fatalf("PushBack(%d) = %v, want %v", v, got, want)
				}
			case "pushFront":
				v := rapid.Int().Draw(t, "v")
				if got, want := r.PushFront(v), m.pushFront(v); got != want {
					t.Fatalf("PushFront(%d) = %v, want %v", v, got, want)
				}
			case "popFront":
				if len(m.items) == 0 {
					r.PopFront()
					break
				}
				if got := r.PopFront(); got != m.items[0] {
					t.Fatalf("PopFront = %d, want %d", got, m.items[0])
				}
				m.items = m.items[1:]
			case "popBack":
				if len(m.items) == 0 {
					r.PopBack()
					break
				}
				last := m.items[len(m.items)-1]
				if got := r.PopBack(); got != last {
					t.Fatalf("PopBack = %d, want %d", got, last)
				}
				m.items = m.items[:len(m.items)-1]
			case "discardFront":
				r.DiscardFront()
				if len(m.items) > 0 {
					m.items = m.items[1:]
				}
			case "discardBack":
				r.DiscardBack()
				if len(m.items) > 0 {
					m.items = m.items[:len(m.items)-1]
				}
			case "clear":
				r.Clear()
				m.items = nil
			}
			checkAgainstModel(t, r, m)
		}
	})
}

func TestPushBackEvictsOldest(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		capacity := rapid.IntRange(1, 64).Draw(t, "capacity")
		r := New[int, uint16](uint16(capacity))
		for i := 0; i < capacity; i++ {
			if !r.PushBack(i) {
				t.Fatalf("push %d returned false before full", i)
			}
		}
		if r.PushBack(capacity) {
			t.Fatalf("push %d into a full ring returned true", capacity)
		}
		if int(r.Len()) != capacity {
			t.Fatalf("Len = %d, want %d", r.Len(), capacity)
		}
		if r.At(0) != 1 {
			t.Fatalf("At(0) = %d, want the second value pushed", r.At(0))
		}
	})
}

func TestExportMatchesAt(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		capacity := rapid.IntRange(1, 32).Draw(t, "capacity")
		pushes := rapid.IntRange(0, 100).Draw(t, "pushes")
		r := New[int, uint](uint(capacity))
		for i := 0; i < pushes; i++ {
			r.PushBack(i)
		}

		dst := make([]int, capacity)
		n := r.Export(dst)
		if n != r.Len() {
			t.Fatalf("Export wrote %d, Len %d", n, r.Len())
		}
		for i := uint(0); i < n; i++ {
			if dst[i] != r.At(i) {
				t.Fatalf("dst[%d] = %d, At = %d", i, dst[i], r.At(i))
			}
		}
	})
}
