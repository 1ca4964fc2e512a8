// Package testutils provides test doubles for the pool's system
// allocator boundary.
package testutils

import (
	"fmt"
	"unsafe"
)

// MockAllocator is an instrumented, in-process stand-in for a system
// allocator. It serves regions from the Go heap, records every call,
// and can be configured to fail or to hand out misaligned addresses.
//
// Like the pool it backs, it is not safe for concurrent use.
type MockAllocator struct {
	// FailAllocs makes every Alloc call report exhaustion while set.
	FailAllocs bool

	// Misalign offsets every returned base address by this many bytes,
	// to exercise the pool's alignment adjustment.
	Misalign int

	allocCalls int
	freeCalls  int
	allocSizes []int              // Requested size of every successful Alloc, in call order.
	regions    map[uintptr][]byte // Returned base address → backing buffer.
}

func NewMockAllocator() *MockAllocator {
	return &MockAllocator{regions: make(map[uintptr][]byte)}
}

// Alloc serves a region of at least size bytes from the Go heap.
// The backing buffer is retained until Free so the region cannot be
// collected while the pool owns it.
func (a *MockAllocator) Alloc(size int) (unsafe.Pointer, error) {
	a.allocCalls++
	if a.FailAllocs {
		return nil, fmt.Errorf("mock allocator: out of memory (%d bytes requested)", size)
	}
	buf := make([]byte, size+a.Misalign)
	base := unsafe.Pointer(&buf[a.Misalign])
	a.regions[uintptr(base)] = buf
	a.allocSizes = append(a.allocSizes, size)
	return base, nil
}

// Free forgets a previously served region.
// Freeing an address Alloc never returned fails the calling test loudly.
func (a *MockAllocator) Free(base unsafe.Pointer) {
	a.freeCalls++
	if _, ok := a.regions[uintptr(base)]; !ok {
		panic(fmt.Errorf("mock allocator: free of unknown base address %#x", uintptr(base)))
	}
	delete(a.regions, uintptr(base))
}

// AllocCalls returns the number of Alloc calls, including failed ones.
func (a *MockAllocator) AllocCalls() int {
	return a.allocCalls
}

// FreeCalls returns the number of Free calls.
func (a *MockAllocator) FreeCalls() int {
	return a.freeCalls
}

// AllocSizes returns the byte size of every successful Alloc, in call order.
func (a *MockAllocator) AllocSizes() []int {
	return a.allocSizes
}

// RegionsInUse returns the number of regions served and not yet freed.
func (a *MockAllocator) RegionsInUse() int {
	return len(a.regions)
}

// Reset clears all counters and forgets all regions.
func (a *MockAllocator) Reset() {
	a.FailAllocs = false
	a.Misalign = 0
	a.allocCalls = 0
	a.freeCalls = 0
	a.allocSizes = nil
	a.regions = make(map[uintptr][]byte)
}
