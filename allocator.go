package mempool

import (
	"fmt"
	"log/slog"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Allocator defines the contract for a malloc/free-style system allocator.
//
// Alloc returns an uninitialized region of at least size bytes, with no
// alignment guarantee beyond whatever the implementation happens to
// provide. Free releases a region by the exact base address Alloc
// returned, at most once; the pool calls it only from Release.
type Allocator interface {
	Alloc(size int) (unsafe.Pointer, error) // Acquires a raw region of at least size bytes.
	Free(base unsafe.Pointer)               // Releases a previously acquired region.
}

// MmapAllocator serves regions backed by anonymous private memory
// mappings. The memory is not part of the Go heap: the garbage collector
// never scans or moves it, which is what allows pool slots to carry
// intrusive free-list links. Not safe for concurrent use.
type MmapAllocator struct {
	// regions maps a region's base address to its mapping, which is
	// needed to size the eventual munmap.
	regions map[uintptr][]byte
}

// NewMmapAllocator creates a new, empty mmap-backed allocator.
func NewMmapAllocator() *MmapAllocator {
	return &MmapAllocator{regions: make(map[uintptr][]byte)}
}

// Alloc maps a region of at least size bytes outside the Go heap.
// The kernel hands the region back zero-filled and page-aligned.
func (a *MmapAllocator) Alloc(size int) (unsafe.Pointer, error) {
	if size <= 0 {
		panic(fmt.Errorf("mempool: invalid allocation size %d", size))
	}
	data, err := unix.Mmap(-1, 0, size,
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_ANON|unix.MAP_PRIVATE,
	)
	if err != nil {
		return nil, fmt.Errorf("cannot map %d bytes: %w", size, err)
	}
	base := unsafe.Pointer(&data[0])
	a.regions[uintptr(base)] = data
	return base, nil
}

// Free unmaps a previously acquired region, releasing its memory back to
// the operating system. Freeing an address Alloc never returned, or
// freeing the same region twice, is a caller bug.
func (a *MmapAllocator) Free(base unsafe.Pointer) {
	data, ok := a.regions[uintptr(base)]
	if !ok {
		panic(fmt.Errorf("mempool: free of unknown base address %#x", uintptr(base)))
	}
	delete(a.regions, uintptr(base))
	if err := unix.Munmap(data); err != nil {
		slog.Error("failed to unmap region", "size", len(data), "error", err)
	}
}

// numRegions returns the number of live mappings.
// It is primarily intended as a helper method in tests.
func (a *MmapAllocator) numRegions() int {
	return len(a.regions)
}
