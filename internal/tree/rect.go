package tree

// Axis is the coordinate a node's children split along. It alternates
// strictly with depth and is never persisted: the skeleton format
// relies on the invariant that a node's axis is always the flip of its
// parent's, so storing it redundantly would risk the two sources
// drifting apart.
type Axis int

const (
	AxisX Axis = iota
	AxisY
)

// Flip returns the axis a node's children split along.
func (a Axis) Flip() Axis {
	if a == AxisX {
		return AxisY
	}
	return AxisX
}

// Rect is an axis-aligned rectangle with inclusive signed 32-bit
// bounds. The same type serves two roles in this package: a tree
// node's governing sub-rectangle, and a stored object's bounding box
// (a point is just a Rect whose Min equals its Max).
type Rect struct {
	MinX, MinY, MaxX, MaxY int32
}

// ContainsRect reports whether o lies wholly inside r.
func (r Rect) ContainsRect(o Rect) bool {
	return r.MinX <= o.MinX && o.MaxX <= r.MaxX && r.MinY <= o.MinY && o.MaxY <= r.MaxY
}

// Overlaps reports whether r and o share any point.
func (r Rect) Overlaps(o Rect) bool {
	return r.MinX <= o.MaxX && o.MinX <= r.MaxX && r.MinY <= o.MaxY && o.MinY <= r.MaxY
}

// Width returns the box's horizontal extent.
func (r Rect) Width() uint32 { return uint32(r.MaxX - r.MinX) }

// Height returns the box's vertical extent.
func (r Rect) Height() uint32 { return uint32(r.MaxY - r.MinY) }

// Split divides r at its axis's midpoint into two halves. The midpoint
// is computed as a/2+b/2 rather than a+(b-a)/2: the latter's
// intermediate difference overflows int32 for a universe as wide as
// the default (3.6e9 across), silently wrapping to a degenerate
// partition, per _examples/original_source/tree/src/tree_traits.rs's
// Average::avg.
func (r Rect) Split(axis Axis) (left, right Rect) {
	if axis == AxisX {
		mid := r.MinX/2 + r.MaxX/2
		return Rect{r.MinX, r.MinY, mid, r.MaxY}, Rect{mid, r.MinY, r.MaxX, r.MaxY}
	}
	mid := r.MinY/2 + r.MaxY/2
	return Rect{r.MinX, r.MinY, r.MaxX, mid}, Rect{r.MinX, mid, r.MaxX, r.MaxY}
}
