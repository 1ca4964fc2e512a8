//go:build poolcheck

package mempool

import (
	"fmt"
	"unsafe"

	"github.com/cespare/xxhash/v2"
)

// poisonByte fills the body of every freed slot while it waits on the
// free-list.
const poisonByte = 0xDB

// checkState fingerprints freed slots so that a double free or a write
// through a stale pointer halts the program instead of silently
// corrupting the free-list. Compiled only under the poolcheck tag.
type checkState struct {
	// fingerprints maps a free slot's address to the xxhash sum of its
	// poisoned body. An entry exists exactly while the slot is free.
	fingerprints map[uintptr]uint64
}

// slotBody returns a freed slot's bytes past the link word.
func slotBody(slot unsafe.Pointer, size uintptr) []byte {
	return unsafe.Slice((*byte)(unsafe.Add(slot, ptrWidth)), size-ptrWidth)
}

func (c *checkState) onPush(slot unsafe.Pointer, size uintptr) {
	if c.fingerprints == nil {
		c.fingerprints = make(map[uintptr]uint64)
	}
	if _, ok := c.fingerprints[uintptr(slot)]; ok {
		panic(fmt.Errorf("mempool: double free of slot %#x", uintptr(slot)))
	}
	body := slotBody(slot, size)
	for i := range body {
		body[i] = poisonByte
	}
	c.fingerprints[uintptr(slot)] = xxhash.Sum64(body)
}

func (c *checkState) onPop(slot unsafe.Pointer, size uintptr) {
	body := slotBody(slot, size)
	if c.fingerprints[uintptr(slot)] != xxhash.Sum64(body) {
		panic(fmt.Errorf("mempool: free slot %#x was modified while on the free-list", uintptr(slot)))
	}
	delete(c.fingerprints, uintptr(slot))
}

func (c *checkState) onRelease() {
	c.fingerprints = nil
}
