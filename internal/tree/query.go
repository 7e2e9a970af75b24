package tree

// Hit is one entry returned by a range query: its reconstructed
// absolute box and opaque value bytes.
type Hit struct {
	Box   Rect
	Value []byte
}

// Query streams every stored entry whose box overlaps box, in no
// particular order, to visit(). visit may return false to stop the
// query early.
//
// Descent first follows the unique child containing box down to the
// smallest node whose rectangle still contains it — every node
// visited along that path may itself hold straddler entries from a
// split below it, so each is scanned too — then fans out by DFS over
// every descendant whose rectangle overlaps box.
func (t *Tree) Query(box Rect, visit func(Hit) bool) error {
	err := t.query(box, visit)
	if err == errQueryStopped {
		return nil
	}
	return err
}

func (t *Tree) query(box Rect, visit func(Hit) bool) error {
	n := t.root
	for {
		if err := t.scanPage(n, box, visit); err != nil {
			return err
		}

		left, right, split := n.split.get()
		if !split {
			return nil
		}
		switch {
		case left.rect.ContainsRect(box):
			n = left
		case right.rect.ContainsRect(box):
			n = right
		default:
			return t.queryDescendants(n, box, visit)
		}
	}
}

// queryDescendants visits n's children (n's own page was already
// scanned by the caller) via DFS, pruning any subtree whose rectangle
// does not overlap box.
func (t *Tree) queryDescendants(n *node, box Rect, visit func(Hit) bool) error {
	left, right, split := n.split.get()
	if !split {
		return nil
	}

	for _, child := range [2]*node{left, right} {
		if !child.rect.Overlaps(box) {
			continue
		}
		if err := t.scanPage(child, box, visit); err != nil {
			return err
		}
		if err := t.queryDescendants(child, box, visit); err != nil {
			return err
		}
	}
	return nil
}

// scanPage streams n's own page entries that overlap box.
func (t *Tree) scanPage(n *node, box Rect, visit func(Hit) bool) error {
	handle, err := t.storage.Get(n.pageID)
	if err != nil {
		return err
	}
	defer handle.Release()

	var stop bool
	handle.View(func(c PageContent) {
		state := c.Children.BeginIteration()
		for {
			var key uint64
			var entry Entry
			var ok bool
			state, key, entry, ok = c.Children.StatelessNext(state)
			if !ok {
				return
			}
			abs := AbsoluteBox(key, entry.Width, entry.Height, n.rect)
			if !abs.Overlaps(box) {
				continue
			}
			if !visit(Hit{Box: abs, Value: entry.Value}) {
				stop = true
				return
			}
		}
	})
	if stop {
		return errQueryStopped
	}
	return nil
}

// errQueryStopped is a sentinel used internally to unwind out of a
// query once visit() asks to stop; Query itself never returns it.
var errQueryStopped = queryStoppedError{}

type queryStoppedError struct{}

func (queryStoppedError) Error() string { return "query stopped early" }

// Get performs an exact lookup: box must match a stored entry's
// reconstructed absolute box exactly. Returns ok=false if no such
// entry exists.
func (t *Tree) Get(box Rect) (value []byte, ok bool, err error) {
	n := t.root
	for {
		left, right, split := n.split.get()
		if !split {
			break
		}
		switch {
		case left.rect.ContainsRect(box):
			n = left
		case right.rect.ContainsRect(box):
			n = right
		default:
			return t.lookupInPage(n, box)
		}
	}
	return t.lookupInPage(n, box)
}

func (t *Tree) lookupInPage(n *node, box Rect) (value []byte, ok bool, err error) {
	handle, err := t.storage.Get(n.pageID)
	if err != nil {
		return nil, false, err
	}
	defer handle.Release()

	key, width, height := DeltaKey(box, n.rect)
	handle.View(func(c PageContent) {
		bag, found := c.Children.Get(key)
		if !found {
			return
		}
		for _, v := range bag {
			if v.Width == width && v.Height == height {
				value, ok = v.Value, true
				return
			}
		}
	})
	return value, ok, nil
}
