//go:build !poolcheck

package mempool

import "unsafe"

// checkState is compiled out without the poolcheck build tag.
type checkState struct{}

func (*checkState) onPush(unsafe.Pointer, uintptr) {}
func (*checkState) onPop(unsafe.Pointer, uintptr)  {}
func (*checkState) onRelease()                     {}
