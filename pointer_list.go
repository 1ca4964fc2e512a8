package mempool

import "unsafe"

// ptrWidth is the size of a free-list link, and therefore the minimum
// size of anything pushed onto a pointerList.
const ptrWidth = unsafe.Sizeof(uintptr(0))

// listNode is the view a memory region takes while it sits on a
// pointerList: its first pointer-width bytes hold the link to the next
// region on the list.
type listNode struct {
	next *listNode
}

// pointerList is an intrusive LIFO stack of raw memory regions.
// Links are stored inside the regions themselves, so a pushed region
// must be at least ptrWidth bytes and its first word must stay
// untouched for as long as it remains on the list.
type pointerList struct {
	head *listNode
}

// push adds p to the head of the list.
// p must point to at least ptrWidth writable bytes.
func (l *pointerList) push(p unsafe.Pointer) {
	n := (*listNode)(p)
	n.next = l.head
	l.head = n
}

// pop removes and returns the head of the list.
// Popping an empty list is a caller bug and faults immediately.
func (l *pointerList) pop() unsafe.Pointer {
	n := l.head
	l.head = n.next
	return unsafe.Pointer(n)
}

// empty reports whether the list holds no regions.
func (l *pointerList) empty() bool {
	return l.head == nil
}
