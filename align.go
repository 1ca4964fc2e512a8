package mempool

// alignUp rounds p up to the next multiple of align.
// align must be a power of two; Go guarantees this for any type's
// alignment.
func alignUp(p, align uintptr) uintptr {
	return (p + align - 1) &^ (align - 1)
}
