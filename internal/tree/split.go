package tree

import (
	"github.com/chlohal/geostore/internal/paging"
	"github.com/chlohal/geostore/pkg/btreevec"
)

// trySplitIfSaturated splits n's page into two new children when its
// live child count has crossed the tree's saturation point, per spec
// §4.7's split policy: items strictly inside one half move to that
// half's page, items crossing the midline stay on n's own page.
//
// The attempt is gated on the node's own atomic counter, so a node
// below saturation costs no page fetch; splitNode then re-checks the
// item count on the fetched page before splitting.
func (t *Tree) trySplitIfSaturated(n *node) (left, right *node, didSplit bool) {
	if n.childCount.Load() < int64(t.saturation) {
		return nil, nil, false
	}
	return n.split.trySplit(func() (*node, *node) { return t.splitNode(n) })
}

// splitNode performs the actual split of n, returning its new children.
// Returns (nil, nil) if the fetched page holds fewer items than the
// saturation point.
func (t *Tree) splitNode(n *node) (*node, *node) {
	handle, err := t.storage.Get(n.pageID)
	if err != nil {
		t.log.Errorw("failed to fetch page for split", "pageId", n.pageID, "error", err)
		return nil, nil
	}

	var items []btreevec.Pair[uint64, Entry]
	handle.View(func(c PageContent) { items = c.Children.All() })

	if len(items) < t.saturation {
		handle.Release()
		return nil, nil
	}

	leftRect, rightRect := n.rect.Split(n.axis)
	childAxis := n.axis.Flip()

	leftItems := btreevec.New[uint64, Entry]()
	rightItems := btreevec.New[uint64, Entry]()
	stay := make([]btreevec.Pair[uint64, Entry], 0)

	for _, p := range items {
		abs := AbsoluteBox(p.Key, p.Value.Width, p.Value.Height, n.rect)

		switch {
		case leftRect.ContainsRect(abs):
			k, w, h := DeltaKey(abs, leftRect)
			leftItems.Push(k, Entry{Width: w, Height: h, Value: p.Value.Value})
		case rightRect.ContainsRect(abs):
			k, w, h := DeltaKey(abs, rightRect)
			rightItems.Push(k, Entry{Width: w, Height: h, Value: p.Value.Value})
		default:
			stay = append(stay, p)
		}
	}

	handle.Update(func(c *PageContent) {
		remaining := btreevec.New[uint64, Entry]()
		for _, p := range stay {
			remaining.Push(p.Key, p.Value)
		}
		c.Children = remaining
	})
	n.childCount.Store(int64(len(stay)))
	handle.Release()

	leftID, leftHandle, err := t.storage.NewPage(PageContent{Children: leftItems})
	if err != nil {
		t.log.Errorw("failed to allocate left split page", "error", err)
		return nil, nil
	}
	leftHandle.Release()

	rightID, rightHandle, err := t.storage.NewPage(PageContent{Children: rightItems})
	if err != nil {
		t.log.Errorw("failed to allocate right split page", "error", err)
		return nil, nil
	}
	rightHandle.Release()

	left := newNode(leftID, leftRect, childAxis)
	left.childCount.Store(int64(leftItems.Len()))

	right := newNode(rightID, rightRect, childAxis)
	right.childCount.Store(int64(rightItems.Len()))

	t.structureDirty.Store(true)

	return left, right
}

func newNode(id paging.PageID, rect Rect, axis Axis) *node {
	return &node{pageID: id, rect: rect, axis: axis}
}
