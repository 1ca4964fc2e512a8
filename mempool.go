// Package mempool implements a fixed-type pooled memory allocator.
//
// A Pool[T] hands out raw, uninitialized slots sized and aligned for T,
// reuses freed slots before requesting new memory, and amortizes the
// cost of the system allocator by acquiring memory in geometrically
// growing blocks rather than per object.
//
// Slot memory lives outside the Go heap: the pool never constructs or
// destroys T values, and the garbage collector neither scans nor
// reclaims pool memory. Object lifecycles are layered on top by the
// caller, and every block is returned to the system in one Release call.
// Because the collector cannot see through pool memory, a T stored in a
// slot must not hold the only reference to a Go-heap object; pointers
// between pool slots are fine.
//
// A Pool is not safe for concurrent use.
package mempool

import (
	"errors"
	"fmt"
	"unsafe"
)

// headerWidth is the space reserved at the start of every block for the
// owned-block list link. Slots begin at the first alignment boundary
// past the header.
const headerWidth = ptrWidth

// noCopy triggers a go vet copylocks warning when a Pool is copied by
// value. A copied pool would release its blocks twice.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Pool is a single-threaded pooled allocator for values of type T.
//
// A Pool exclusively owns every block of memory it acquires; transfer
// it by pointer, never by value. The zero value is not usable; create
// pools with New or Custom.
type Pool[T any] struct {
	noCopy noCopy

	// blocks links every acquired block through its header word so
	// Release can return each one to the system allocator exactly once.
	blocks pointerList

	// free holds reclaimed slots, reused in LIFO order before any new
	// memory is requested.
	free pointerList

	bump  unsafe.Pointer // Next unassigned byte of the current block.
	limit uintptr        // End of the current block's slot region.

	size  uintptr // Slot size, unsafe.Sizeof(T).
	align uintptr // Slot alignment, unsafe.Alignof(T).

	nextSlots int     // Slot count to request for the next block.
	initSlots int     // Slot count to request after a Release.
	growth    float64 // Block growth factor.

	check checkState // Free-slot integrity checks; no-op without the poolcheck build tag.

	sys Allocator
}

// New creates a pool for values of type T with the default configuration,
// backed by the operating system's virtual memory.
func New[T any]() *Pool[T] {
	return Custom[T](DefaultConfig(), NewMmapAllocator())
}

// Custom creates a pool for values of type T with a custom configuration
// and system allocator backend.
//
// It panics if the config is invalid or if T is smaller than a pointer:
// a freed slot doubles as a free-list link and must be able to hold one.
// No memory is acquired until the first Get or Reserve.
func Custom[T any](config Config, sys Allocator) *Pool[T] {
	if err := config.Validate(); err != nil {
		panic(err)
	}
	var zero T
	if size := unsafe.Sizeof(zero); size < ptrWidth {
		panic(fmt.Errorf("mempool: element size %d is below the pointer width %d", size, ptrWidth))
	}
	return &Pool[T]{
		size:      unsafe.Sizeof(zero),
		align:     unsafe.Alignof(zero),
		nextSlots: config.BlockSlots,
		initSlots: config.BlockSlots,
		growth:    config.GrowthFactor,
		sys:       sys,
	}
}

// Get returns a slot of raw memory sized and aligned for one T, or nil
// if and only if the system allocator is exhausted.
//
// The slot's content is unspecified: the pool does not construct a T in
// it, it only supplies the storage.
func (p *Pool[T]) Get() *T {
	if !p.free.empty() {
		slot := p.free.pop()
		p.check.onPop(slot, p.size)
		return (*T)(slot)
	}

	// Lazy slot carving if the current block has room.
	if uintptr(p.bump)+p.size <= p.limit {
		return (*T)(p.carve())
	}

	if !p.grow() {
		return nil
	}
	return (*T)(p.carve())
}

// Put returns a slot to the pool for reuse.
//
// The slot must have come from Get or Reserve on this same pool and must
// not already have been returned: the pool performs no bookkeeping to
// detect a double free (build with the poolcheck tag to catch one during
// development). The most recently returned slot is handed out first.
func (p *Pool[T]) Put(slot *T) {
	if slot == nil {
		panic(errors.New("mempool: put of nil slot"))
	}
	ptr := unsafe.Pointer(slot)
	p.check.onPush(ptr, p.size)
	p.free.push(ptr)
}

// Reserve arranges for the next n Gets to be served without touching the
// system allocator: it acquires one block sized for exactly n slots and
// eagerly pushes every slot onto the free-list. Callers that know their
// working-set size up front pay one system round trip and one linear
// partitioning pass instead of n lazy carves.
//
// If the system allocation fails, Reserve is a silent no-op. Reserving
// zero or fewer slots is a caller bug.
func (p *Pool[T]) Reserve(n int) {
	if n <= 0 {
		panic(fmt.Errorf("mempool: reserve of %d slots", n))
	}
	p.nextSlots = n
	base, _, ok := p.acquire(uintptr(n))
	if !ok {
		return
	}
	slot := base
	for range n {
		p.check.onPush(slot, p.size)
		p.free.push(slot)
		slot = unsafe.Add(slot, p.size)
	}
}

// Release returns every block the pool has ever acquired to the system
// allocator, each exactly once, regardless of how many slots are still
// in use. Outstanding slot pointers become invalid.
//
// Slots are not inspected on the way out: any T values logically living
// in them are the caller's concern. After Release the pool is back in
// its freshly constructed state and may be reused.
func (p *Pool[T]) Release() {
	for !p.blocks.empty() {
		p.sys.Free(p.blocks.pop())
	}
	p.free = pointerList{}
	p.bump, p.limit = nil, 0
	p.nextSlots = p.initSlots
	p.check.onRelease()
}

// carve advances the bump pointer by one slot and returns the slot.
// The current block must have room.
func (p *Pool[T]) carve() unsafe.Pointer {
	slot := p.bump
	p.bump = unsafe.Add(p.bump, p.size)
	return slot
}

// grow acquires a new block sized for nextSlots slots and makes it the
// current bump block. The previous block keeps its place on the owned
// list so Release can still return it. It reports whether the
// acquisition succeeded.
func (p *Pool[T]) grow() bool {
	base, end, ok := p.acquire(uintptr(p.nextSlots))
	if !ok {
		return false
	}
	p.bump, p.limit = base, end
	return true
}

// acquire requests one raw block with room for n slots, registers it on
// the owned-block list, and returns the aligned slot region [base, end).
//
// The raw base is registered before the alignment step so that a block
// is never lost once the system allocator has handed it out. The extra
// align bytes in the request absorb the worst-case alignment adjustment
// past the header.
func (p *Pool[T]) acquire(n uintptr) (base unsafe.Pointer, end uintptr, ok bool) {
	bytes := headerWidth + n*p.size + p.align
	raw, err := p.sys.Alloc(int(bytes))
	if err != nil {
		return nil, 0, false
	}
	p.blocks.push(raw)
	offset := alignUp(uintptr(raw)+headerWidth, p.align) - uintptr(raw)
	base = unsafe.Add(raw, offset)
	p.nextSlots = int(float64(p.nextSlots) * p.growth)
	return base, uintptr(base) + n*p.size, true
}
