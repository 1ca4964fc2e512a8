//go:build poolcheck

package mempool

import (
	"testing"

	"github.com/artemisia0/go-mempool/internal/testutils"
)

// go test -tags poolcheck .

func TestPoolcheck(t *testing.T) {
	t.Run("Clean churn passes the checks", func(t *testing.T) {
		pool := Custom[pair](DefaultConfig(), testutils.NewMockAllocator())
		defer pool.Release()

		for range 100 {
			slot := pool.Get()
			slot.a, slot.b = 1, 2
			pool.Put(slot)
		}
	})

	t.Run("Double free panics", func(t *testing.T) {
		pool := Custom[pair](DefaultConfig(), testutils.NewMockAllocator())
		defer pool.Release()

		slot := pool.Get()
		pool.Put(slot)
		defer func() {
			if r := recover(); r == nil {
				t.Fatal("expected a panic for a double free, got none")
			}
		}()
		pool.Put(slot)
	})

	t.Run("Write through a stale pointer panics", func(t *testing.T) {
		pool := Custom[pair](DefaultConfig(), testutils.NewMockAllocator())
		defer pool.Release()

		slot := pool.Get()
		pool.Put(slot)

		// The slot's first word carries the free-list link; the write
		// goes past it, into the fingerprinted body.
		slot.b = 42

		defer func() {
			if r := recover(); r == nil {
				t.Fatal("expected a panic for a modified free slot, got none")
			}
		}()
		pool.Get()
	})

	t.Run("Fingerprints are dropped on Release", func(t *testing.T) {
		pool := Custom[pair](DefaultConfig(), testutils.NewMockAllocator())

		slot := pool.Get()
		pool.Put(slot)
		pool.Release()

		// A new generation must not be haunted by old fingerprints.
		for range 10 {
			got := pool.Get()
			if got == nil {
				t.Fatal("expected Get to succeed after Release")
			}
			pool.Put(got)
			if pool.Get() != got {
				t.Fatal("expected LIFO reuse after Release")
			}
		}
		pool.Release()
	})
}
