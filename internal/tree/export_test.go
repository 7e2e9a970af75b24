package tree

// SetSaturationForTest overrides a tree's split threshold, letting
// tests exercise splitting without inserting DefaultSaturation items.
func SetSaturationForTest(t *Tree, saturation int) {
	t.saturation = saturation
}
