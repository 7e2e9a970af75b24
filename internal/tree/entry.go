package tree

import "github.com/chlohal/geostore/internal/lutmorton"

// Entry is what a node's content page stores alongside a BTreeVec key:
// the stored box's extent (its origin is recovered from the key) and
// the caller's opaque value bytes.
type Entry struct {
	Width, Height uint32
	Value         []byte
}

// DeltaKey encodes box relative to rect: the xy-Morton interleave of
// box's origin offset from rect's origin becomes the BTreeVec sort
// key, with box's width and height carried alongside in the Entry.
func DeltaKey(box, rect Rect) (morton uint64, width, height uint32) {
	dx := uint32(box.MinX - rect.MinX)
	dy := uint32(box.MinY - rect.MinY)
	return lutmorton.Morton(dx, dy), box.Width(), box.Height()
}

// AbsoluteBox reconstructs the box a delta key and entry extent
// describe, relative to rect.
func AbsoluteBox(morton uint64, width, height uint32, rect Rect) Rect {
	dx, dy := lutmorton.Unmorton(morton)
	minX := rect.MinX + int32(dx)
	minY := rect.MinY + int32(dy)
	return Rect{MinX: minX, MinY: minY, MaxX: minX + int32(width), MaxY: minY + int32(height)}
}
