// Package options provides data structures and functions for configuring
// the geostore engine. It defines the parameters that control page size,
// cache capacity, split behavior, and the coordinate universe, following
// the functional-options pattern used across the rest of this module.
package options

import (
	"strings"

	gerrors "github.com/chlohal/geostore/pkg/errors"
)

// BoundingBox describes the rectangular universe the spatial tree's root
// node governs. Coordinates are signed 32-bit, inclusive.
type BoundingBox struct {
	MinX, MinY int32
	MaxX, MaxY int32
}

// Options defines the configuration parameters for a geostore instance.
type Options struct {
	// DataDir is the base path where the page file, skeleton file, and
	// pool stream are stored.
	//
	// Default: "/var/lib/geostore"
	DataDir string `json:"dataDir"`

	// PageSize is the fixed byte size of every physical page, including
	// its 16-byte header.
	//
	// Default: 8192
	PageSize uint32 `json:"pageSize"`

	// CacheCapacity bounds the page cache in page-byte-size equivalents.
	//
	// Default: 3000
	CacheCapacity int `json:"cacheCapacity"`

	// NodeSaturationPoint is the value count above which a tree node
	// attempts to split.
	//
	// Default: 8000
	NodeSaturationPoint int `json:"nodeSaturationPoint"`

	// PoolRecencyCapacity bounds the value pool's recent-write and
	// recent-read caches.
	//
	// Default: 300
	PoolRecencyCapacity int `json:"poolRecencyCapacity"`

	// Universe is the root bounding box of the spatial tree.
	Universe BoundingBox `json:"universe"`
}

// OptionFunc is a function type that modifies the geostore configuration.
type OptionFunc func(*Options)

// WithDefaultOptions applies a predefined set of default configuration
// values to the Options struct.
func WithDefaultOptions() OptionFunc {
	return func(o *Options) {
		*o = NewDefaultOptions()
	}
}

// WithDataDir sets the primary data directory for geostore.
func WithDataDir(directory string) OptionFunc {
	return func(o *Options) {
		directory = strings.TrimSpace(directory)
		if directory != "" {
			o.DataDir = directory
		}
	}
}

// WithPageSize sets the physical page size in bytes. Values at or below
// the header size are rejected silently, matching the other With*
// option guards in this package.
func WithPageSize(size uint32) OptionFunc {
	return func(o *Options) {
		if size > HeaderSize {
			o.PageSize = size
		}
	}
}

// WithCacheCapacity sets the page cache's capacity in page-equivalents.
func WithCacheCapacity(capacity int) OptionFunc {
	return func(o *Options) {
		if capacity > 0 {
			o.CacheCapacity = capacity
		}
	}
}

// WithNodeSaturationPoint sets the per-node value count above which the
// spatial tree attempts to split.
func WithNodeSaturationPoint(point int) OptionFunc {
	return func(o *Options) {
		if point > 0 {
			o.NodeSaturationPoint = point
		}
	}
}

// WithPoolRecencyCapacity sets the value pool's recency cache capacity.
func WithPoolRecencyCapacity(capacity int) OptionFunc {
	return func(o *Options) {
		if capacity > 0 {
			o.PoolRecencyCapacity = capacity
		}
	}
}

// WithUniverse sets the root bounding box of the spatial tree.
func WithUniverse(universe BoundingBox) OptionFunc {
	return func(o *Options) {
		if universe.MinX < universe.MaxX && universe.MinY < universe.MaxY {
			o.Universe = universe
		}
	}
}

// Validate reports the first invariant o violates, if any. The With*
// constructors above silently ignore out-of-range values rather than
// erroring, so a zero-value or hand-built Options can still reach here
// unvalidated; callers (geostore.Open, via internal/engine.New) run
// this once before touching disk.
func (o Options) Validate() error {
	if strings.TrimSpace(o.DataDir) == "" {
		return gerrors.NewRequiredFieldError("DataDir")
	}
	if o.PageSize <= HeaderSize {
		return gerrors.NewFieldRangeError("PageSize", o.PageSize, HeaderSize+1, nil)
	}
	if o.CacheCapacity <= 0 {
		return gerrors.NewFieldRangeError("CacheCapacity", o.CacheCapacity, 1, nil)
	}
	if o.NodeSaturationPoint <= 0 {
		return gerrors.NewFieldRangeError("NodeSaturationPoint", o.NodeSaturationPoint, 1, nil)
	}
	if o.PoolRecencyCapacity <= 0 {
		return gerrors.NewFieldRangeError("PoolRecencyCapacity", o.PoolRecencyCapacity, 1, nil)
	}
	if !(o.Universe.MinX < o.Universe.MaxX && o.Universe.MinY < o.Universe.MaxY) {
		return gerrors.NewConfigurationValidationError("Universe", "MinX/MinY must be strictly less than MaxX/MaxY")
	}
	return nil
}
