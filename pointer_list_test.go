package mempool

import (
	"testing"
	"unsafe"
)

// newRegion returns a heap-backed region large enough to carry a list link.
func newRegion() unsafe.Pointer {
	buf := make([]byte, ptrWidth)
	return unsafe.Pointer(&buf[0])
}

func TestPointerList(t *testing.T) {
	t.Run("New list is empty", func(t *testing.T) {
		var l pointerList
		if !l.empty() {
			t.Fatal("expected a new list to be empty")
		}
	})

	t.Run("Push and pop are LIFO", func(t *testing.T) {
		var l pointerList
		regions := []unsafe.Pointer{newRegion(), newRegion(), newRegion()}
		for _, r := range regions {
			l.push(r)
		}
		if l.empty() {
			t.Fatal("expected list to be non-empty after pushes")
		}

		for i := len(regions) - 1; i >= 0; i-- {
			if got := l.pop(); got != regions[i] {
				t.Errorf("expected pop %d to return %p, got %p", len(regions)-i, regions[i], got)
			}
		}
		if !l.empty() {
			t.Fatal("expected list to be empty after popping everything")
		}
	})

	t.Run("Interleaved push and pop", func(t *testing.T) {
		var l pointerList
		a, b, c := newRegion(), newRegion(), newRegion()

		l.push(a)
		l.push(b)
		if got := l.pop(); got != b {
			t.Errorf("expected %p, got %p", b, got)
		}
		l.push(c)
		if got := l.pop(); got != c {
			t.Errorf("expected %p, got %p", c, got)
		}
		if got := l.pop(); got != a {
			t.Errorf("expected %p, got %p", a, got)
		}
		if !l.empty() {
			t.Fatal("expected list to be empty")
		}
	})
}
