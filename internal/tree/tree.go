// Package tree implements the spatial index: a sparse, disk-backed
// binary tree over axis-aligned rectangles, alternating split axis by
// depth (a kd-tree variant), grounded on
// _examples/original_source/tree/src/sparse/{structure.rs,tree.rs,tree_serde.rs}.
//
// Each tree node owns exactly one page of its own (its PageContent,
// holding the items that fit inside its rectangle but not wholly
// inside either child's half), plus — once split — two children whose
// rectangles exactly halve its own along its axis. A node splits at
// most once in its lifetime; an item that straddles both halves after
// a split stays on the node's own page forever.
package tree

import (
	"sync/atomic"

	"github.com/chlohal/geostore/internal/paging"
	"go.uber.org/zap"
)

const (
	// DefaultSaturation is the child count a node must reach before an
	// insert attempts to split it, mirroring structure.rs's constant
	// threshold for when a leaf becomes "full".
	DefaultSaturation = 64

	rootPageID paging.PageID = 1
)

// Tree is a spatial index over one paged file of PageContent pages.
type Tree struct {
	storage    *paging.Storage[PageContent]
	root       *node
	rootRect   Rect
	saturation int
	log        *zap.SugaredLogger

	// structureDirty tracks whether the in-memory split structure has
	// changed (a split happened) since the skeleton file was last
	// written, independent of the paging layer's own per-page dirty
	// tracking.
	structureDirty atomic.Bool
}

// Open opens the tree rooted over universe, creating the backing page
// file and an empty root page if absent, or loading the existing
// skeleton and root page file otherwise.
func Open(dataPath, skeletonPath string, universe Rect, pageSize uint64, cacheCapacityPages int, log *zap.SugaredLogger) (*Tree, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	storage, err := paging.Open[PageContent](dataPath, pageSize, cacheCapacityPages, SerializePageContent, DeserializePageContent, log)
	if err != nil {
		return nil, err
	}

	t := &Tree{
		storage:    storage,
		rootRect:   universe,
		saturation: DefaultSaturation,
		log:        log,
	}

	root, loadedRect, err := loadSkeleton(skeletonPath)
	if err != nil {
		return nil, err
	}
	if root != nil {
		t.root = root
		t.rootRect = loadedRect
		return t, nil
	}

	if handle, err := storage.Get(rootPageID); err == nil {
		handle.Release()
	} else if _, rootHandle, allocErr := storage.NewPage(newPageContent()); allocErr != nil {
		return nil, allocErr
	} else {
		rootHandle.Release()
	}

	t.root = &node{pageID: rootPageID, rect: universe, axis: AxisX}
	return t, nil
}

// SetSaturation overrides the per-node value count above which an
// insert attempts to split, in place of DefaultSaturation. Callers
// apply this immediately after Open, before any Insert.
func (t *Tree) SetSaturation(saturation int) {
	if saturation > 0 {
		t.saturation = saturation
	}
}

// Flush persists every dirty page and, if the split structure has
// changed since the last flush, rewrites the skeleton file.
func (t *Tree) Flush(skeletonPath string) error {
	t.storage.Flush()
	if t.structureDirty.CompareAndSwap(true, false) {
		return saveSkeleton(skeletonPath, t.root, t.rootRect)
	}
	return nil
}

// Close flushes and releases the backing page file. The caller is
// responsible for a prior Flush if the skeleton file must be current.
func (t *Tree) Close() error {
	return t.storage.Close()
}
