// Package geostore provides a paged, disk-backed spatial data store
// for world map extracts, built on a recursive KD-style tree index
// and a content-addressed value pool. It combines a spatial index
// (the sparse tree) with a compact binary encoding for map objects
// (nodes, ways, relations) to achieve compact, queryable on-disk
// storage, inspired by the upstream geostore project this engine
// ports. It is designed for applications ingesting worldwide map
// extracts and serving bounding-box range queries, aiming to provide
// a simple, efficient, and reliable spatial store in Go applications.
//
// This package is a thin façade over internal/engine, the way the
// teacher's pkg/ignite façade wraps internal/engine: Open opens or
// creates a store under a data directory, and InsertNode/InsertWay/
// InsertRelation/Query/Get/Flush/Close are the only operations a
// caller needs.
package geostore

import (
	"context"

	"github.com/chlohal/geostore/internal/engine"
	"github.com/chlohal/geostore/internal/osmcodec"
	"github.com/chlohal/geostore/internal/tree"
	"github.com/chlohal/geostore/pkg/logger"
	"github.com/chlohal/geostore/pkg/options"
)

// Re-exported so callers never need to import internal/tree or
// internal/osmcodec directly.
type (
	// Box is an axis-aligned bounding rectangle with inclusive signed
	// 32-bit coordinates — a query rectangle, a node's point location
	// (Min == Max), or a way/relation's own bounding box.
	Box = tree.Rect
	// Object is a decoded map-object blob returned by Query/Get.
	Object = engine.Object
	// WayPoint is one child node's absolute coordinate on a way.
	WayPoint = osmcodec.WayPoint
	// RelationMember is one child reference of a relation.
	RelationMember = osmcodec.RelationMember
	// Option configures a store at open time.
	Option = options.OptionFunc
)

var (
	WithDataDir             = options.WithDataDir
	WithPageSize            = options.WithPageSize
	WithCacheCapacity       = options.WithCacheCapacity
	WithNodeSaturationPoint = options.WithNodeSaturationPoint
	WithPoolRecencyCapacity = options.WithPoolRecencyCapacity
	WithUniverse            = options.WithUniverse
)

// Instance is a single open geostore: a spatial tree over one paged
// data file plus the field/literal pools its object encoding
// resolves through. Instance is the primary entry point for
// interacting with the geostore: Insert/Query/Get for reads and
// writes, Flush/Close for lifecycle.
type Instance struct {
	engine  *engine.Engine
	options *options.Options
}

// Open creates and initializes a new geostore Instance rooted at
// opts.DataDir (default options.NewDefaultOptions, overridden by opt).
func Open(ctx context.Context, service string, opt ...Option) (*Instance, error) {
	log, err := logger.New(service)
	if err != nil {
		return nil, err
	}

	defaultOpts := options.NewDefaultOptions()
	for _, o := range opt {
		o(&defaultOpts)
	}

	eng, err := engine.New(ctx, &engine.Config{Logger: log, Options: &defaultOpts})
	if err != nil {
		return nil, err
	}

	return &Instance{engine: eng, options: &defaultOpts}, nil
}

// InsertNode stores a point node at box (Min must equal Max) tagged
// with tags.
func (i *Instance) InsertNode(box Box, id uint64, tags map[string]string) error {
	return i.engine.InsertNode(box, id, tags)
}

// InsertWay stores a way spanning box, whose child node coordinates
// are points, tagged with tags.
func (i *Instance) InsertWay(box Box, id uint64, points []WayPoint, tags map[string]string) error {
	return i.engine.InsertWay(box, id, points, tags)
}

// InsertRelation stores a relation spanning box, over members, tagged
// with tags.
func (i *Instance) InsertRelation(box Box, id uint64, tags map[string]string, members []RelationMember) error {
	return i.engine.InsertRelation(box, id, tags, members)
}

// Query streams every stored object whose box overlaps box to visit.
// visit may return false to stop the query early.
func (i *Instance) Query(box Box, visit func(Object) bool) error {
	return i.engine.Query(box, visit)
}

// Get performs an exact lookup for box. ok is false if no stored
// object's box matches exactly.
func (i *Instance) Get(box Box) (Object, bool, error) {
	return i.engine.Get(box)
}

// Flush persists every dirty page, the tree skeleton (if its split
// structure changed), and fsyncs both pool streams, without closing
// the store.
func (i *Instance) Flush() error {
	return i.engine.Flush()
}

// Close flushes and releases every file this instance owns.
func (i *Instance) Close() error {
	return i.engine.Close()
}
