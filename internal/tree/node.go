package tree

import (
	"sync"
	"sync/atomic"

	"github.com/chlohal/geostore/internal/paging"
)

// node is one node of the spatial tree. Its rectangle and split axis
// live only in memory, reconstructed while descending from the root
// (see skeleton.go); only the page id, the split/no-split flag, and
// the child count are ever persisted.
type node struct {
	pageID     paging.PageID
	rect       Rect
	axis       Axis
	childCount atomic.Int64
	split      onceChildren
}

// childPair is the fixed left/right pair a node transitions to exactly
// once, when it splits.
type childPair struct {
	left, right *node
}

// onceChildren guards a node's one-time split transition: unset means
// "not yet split", and once set it never changes again. This plays the
// role the teacher's one-shot atomic.Bool CompareAndSwap transitions
// play elsewhere, generalized here to also carry the resulting pointer
// pair (the Rust original's OnceLock<Box<(Node, Node)>>).
type onceChildren struct {
	ptr atomic.Pointer[childPair]
	mu  sync.Mutex
}

// get returns the split children, if a split has already happened.
func (o *onceChildren) get() (left, right *node, ok bool) {
	p := o.ptr.Load()
	if p == nil {
		return nil, nil, false
	}
	return p.left, p.right, true
}

// trySplit runs fn at most once across the lifetime of o, only if no
// split has happened yet. fn performs the actual split and returns the
// new children, or (nil, nil) if it decided not to split after all
// (for instance, finding the page no longer saturated once it held the
// lock) — in that case no state is recorded, and a future caller may
// try again.
func (o *onceChildren) trySplit(fn func() (*node, *node)) (left, right *node, didSplit bool) {
	if p := o.ptr.Load(); p != nil {
		return p.left, p.right, true
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if p := o.ptr.Load(); p != nil {
		return p.left, p.right, true
	}

	left, right = fn()
	if left == nil || right == nil {
		return nil, nil, false
	}

	o.ptr.Store(&childPair{left: left, right: right})
	return left, right, true
}

// set installs children directly, used when reconstructing a node from
// the skeleton file rather than splitting it live.
func (o *onceChildren) set(left, right *node) {
	o.ptr.Store(&childPair{left: left, right: right})
}
