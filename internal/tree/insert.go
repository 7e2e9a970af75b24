package tree

// Insert places box (with its opaque value bytes) into the tree,
// descending toward the unique child that wholly contains box and
// attempting a split whenever the node it lands on has reached
// saturation. An item that fits neither half after a split remains on
// its current node forever (structure.rs's straddler case).
func (t *Tree) Insert(box Rect, value []byte) error {
	n := t.root
	for {
		left, right, split := n.split.get()
		if split {
			switch {
			case left.rect.ContainsRect(box):
				n = left
				continue
			case right.rect.ContainsRect(box):
				n = right
				continue
			default:
				return t.writeInto(n, box, value)
			}
		}

		if n.childCount.Load() >= int64(t.saturation) {
			newLeft, newRight, didSplit := t.trySplitIfSaturated(n)
			if didSplit {
				switch {
				case newLeft.rect.ContainsRect(box):
					n = newLeft
					continue
				case newRight.rect.ContainsRect(box):
					n = newRight
					continue
				default:
					return t.writeInto(n, box, value)
				}
			}
		}

		return t.writeInto(n, box, value)
	}
}

// writeInto appends one entry to n's own page and bumps its live count.
func (t *Tree) writeInto(n *node, box Rect, value []byte) error {
	handle, err := t.storage.Get(n.pageID)
	if err != nil {
		return err
	}
	defer handle.Release()

	key, width, height := DeltaKey(box, n.rect)
	handle.Update(func(c *PageContent) {
		c.Children.Push(key, Entry{Width: width, Height: height, Value: value})
	})
	n.childCount.Add(1)
	return nil
}
