// Package engine coordinates the three subsystems spec §1 names as the
// storage engine's core — the paged file, the spatial tree, and the
// value pool — into the single top-level store a caller opens. It
// mirrors the teacher's engine.Engine, which wires its own
// index+storage+compaction subsystems behind one Config/New/Close
// surface; here the wiring is tree+pools+options instead.
package engine

import (
	"bytes"
	"context"
	"path/filepath"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/chlohal/geostore/internal/osmcodec"
	"github.com/chlohal/geostore/internal/pool"
	"github.com/chlohal/geostore/internal/tree"
	gerrors "github.com/chlohal/geostore/pkg/errors"
	"github.com/chlohal/geostore/pkg/filesys"
	"github.com/chlohal/geostore/pkg/options"
)

const (
	dataFileName     = "geostore.pages"
	skeletonFileName = "geostore.skeleton"
	fieldsFileName   = "geostore.fields.pool"
	literalsFileName = "geostore.literals.pool"
)

// ErrEngineClosed is returned when attempting to perform operations on
// a closed engine.
var ErrEngineClosed = gerrors.NewEngineError(nil, gerrors.ErrorCodeInternal, "operation failed: cannot access closed engine")

// Config holds everything New needs to open or create a store.
type Config struct {
	Options *options.Options
	Logger  *zap.SugaredLogger
}

// Engine is the coordinator: the spatial tree keyed by object bounding
// box, the two content-addressed pools (§4.8's field pool and the
// literal-value pool fields resolve through), and the lifecycle state
// shared by every operation the public façade exposes.
type Engine struct {
	options *options.Options
	log     *zap.SugaredLogger
	closed  atomic.Bool

	tree  *tree.Tree
	pools *osmcodec.Pools
}

// New opens (creating if absent) every on-disk component this engine
// owns under opts.DataDir: the paged data file and skeleton the
// spatial tree uses, and the two pool streams fields and literals
// resolve through.
func New(ctx context.Context, config *Config) (*Engine, error) {
	opts := config.Options
	log := config.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	if err := opts.Validate(); err != nil {
		if gerrors.IsValidationError(err) {
			log.Warnw("refusing to open store: invalid options", "err", err)
		}
		return nil, err
	}

	if err := filesys.CreateDir(opts.DataDir, 0o755, true); err != nil {
		return nil, err
	}

	universe := tree.Rect{
		MinX: opts.Universe.MinX, MinY: opts.Universe.MinY,
		MaxX: opts.Universe.MaxX, MaxY: opts.Universe.MaxY,
	}

	t, err := tree.Open(
		filepath.Join(opts.DataDir, dataFileName),
		filepath.Join(opts.DataDir, skeletonFileName),
		universe,
		uint64(opts.PageSize),
		opts.CacheCapacity,
		log,
	)
	if err != nil {
		return nil, err
	}
	t.SetSaturation(opts.NodeSaturationPoint)

	fieldsPool, err := pool.Open(filepath.Join(opts.DataDir, fieldsFileName), uint64(opts.PageSize), opts.PoolRecencyCapacity, log)
	if err != nil {
		t.Close()
		return nil, err
	}

	literalsPool, err := pool.Open(filepath.Join(opts.DataDir, literalsFileName), uint64(opts.PageSize), opts.PoolRecencyCapacity, log)
	if err != nil {
		fieldsPool.Close()
		t.Close()
		return nil, err
	}

	return &Engine{
		options: opts,
		log:     log,
		tree:    t,
		pools:   &osmcodec.Pools{Fields: fieldsPool, Literals: literalsPool},
	}, nil
}

// InsertNode encodes a node blob for id/tags and inserts it into the
// spatial tree keyed by its point box (box.Min == box.Max, per §4.8:
// "geographic coordinates are recorded by the spatial tree key, not
// the blob").
func (e *Engine) InsertNode(box tree.Rect, id uint64, tags map[string]string) error {
	if e.closed.Load() {
		return ErrEngineClosed
	}

	fields := osmcodec.ClassifyNodeTags(tags)

	var buf bytes.Buffer
	if err := osmcodec.EncodeNode(&buf, e.pools, id, fields); err != nil {
		return err
	}
	return e.tree.Insert(box, buf.Bytes())
}

// InsertWay encodes a way blob for id/points/tags and inserts it into
// the spatial tree keyed by box, the way's own bounding box (also the
// (dx,dy) origin §4.8's point offsets are relative to).
func (e *Engine) InsertWay(box tree.Rect, id uint64, points []osmcodec.WayPoint, tags map[string]string) error {
	if e.closed.Load() {
		return ErrEngineClosed
	}

	fields := osmcodec.ClassifyFreeformFields(tags)

	var buf bytes.Buffer
	if err := osmcodec.EncodeWay(&buf, e.pools, id, points, box.MinX, box.MinY, fields); err != nil {
		return err
	}
	return e.tree.Insert(box, buf.Bytes())
}

// InsertRelation encodes a relation blob for id/tags/members and
// inserts it into the spatial tree keyed by box, the relation's
// bounding box over its own members.
func (e *Engine) InsertRelation(box tree.Rect, id uint64, tags map[string]string, members []osmcodec.RelationMember) error {
	if e.closed.Load() {
		return ErrEngineClosed
	}

	fields := osmcodec.ClassifyFreeformFields(tags)

	var buf bytes.Buffer
	if err := osmcodec.EncodeRelation(&buf, e.pools, id, fields, members); err != nil {
		return err
	}
	return e.tree.Insert(box, buf.Bytes())
}

// Object is a decoded map-object blob, discriminated by Kind; exactly
// one of NodeFields/WayPoints+Fields/Fields+Members is populated,
// matching Kind.
type Object struct {
	Box  tree.Rect
	Kind osmcodec.ObjectKind
	ID   uint64

	NodeFields osmcodec.NodeFields
	WayPoints  []osmcodec.WayPoint
	Fields     []osmcodec.Field
	Members    []osmcodec.RelationMember
}

// Query streams every stored object whose box overlaps box to visit,
// decoding each blob through this engine's pools. visit may return
// false to stop the query early. Malformed entries are logged and
// skipped rather than aborting the whole query, per spec §7's
// user-visible policy: "queries omit malformed entries from their
// output."
func (e *Engine) Query(box tree.Rect, visit func(Object) bool) error {
	if e.closed.Load() {
		return ErrEngineClosed
	}

	return e.tree.Query(box, func(hit tree.Hit) bool {
		obj, err := e.decode(hit)
		if err != nil {
			if gerrors.IsIndexError(err) {
				e.log.Warnw("skipping object with a dangling pool reference during query", "box", hit.Box, "err", err)
			} else {
				e.log.Warnw("skipping malformed object during query", "box", hit.Box, "err", err)
			}
			return true
		}
		return visit(obj)
	})
}

// Get performs an exact lookup for box, decoding the stored blob if
// present. ok is false if no entry's reconstructed box matches box
// exactly (spec §7's NotFound: "returned as an absent result, not an
// error").
func (e *Engine) Get(box tree.Rect) (Object, bool, error) {
	if e.closed.Load() {
		return Object{}, false, ErrEngineClosed
	}

	value, ok, err := e.tree.Get(box)
	if err != nil || !ok {
		return Object{}, false, err
	}

	obj, err := e.decode(tree.Hit{Box: box, Value: value})
	if err != nil {
		return Object{}, false, err
	}
	return obj, true, nil
}

func (e *Engine) decode(hit tree.Hit) (Object, error) {
	r := bytes.NewReader(hit.Value)
	kind, err := osmcodec.PeekKind(hit.Value)
	if err != nil {
		return Object{}, err
	}

	switch kind {
	case osmcodec.ObjectKindNode:
		id, fields, err := osmcodec.DecodeNode(r, e.pools)
		if err != nil {
			return Object{}, err
		}
		return Object{Box: hit.Box, Kind: kind, ID: id, NodeFields: fields}, nil

	case osmcodec.ObjectKindWay:
		id, points, fields, err := osmcodec.DecodeWay(r, e.pools, hit.Box.MinX, hit.Box.MinY)
		if err != nil {
			return Object{}, err
		}
		return Object{Box: hit.Box, Kind: kind, ID: id, WayPoints: points, Fields: fields}, nil

	default:
		id, fields, members, err := osmcodec.DecodeRelation(r, e.pools)
		if err != nil {
			return Object{}, err
		}
		return Object{Box: hit.Box, Kind: kind, ID: id, Fields: fields, Members: members}, nil
	}
}

// Flush persists every dirty page, the tree's skeleton if its split
// structure changed, and fsyncs both pool streams.
func (e *Engine) Flush() error {
	if e.closed.Load() {
		return ErrEngineClosed
	}
	if err := e.tree.Flush(filepath.Join(e.options.DataDir, skeletonFileName)); err != nil {
		return err
	}
	if err := e.pools.Fields.Sync(); err != nil {
		return err
	}
	return e.pools.Literals.Sync()
}

// Close flushes and releases every backing file. Close is idempotent:
// a second call returns ErrEngineClosed rather than double-closing the
// underlying files.
func (e *Engine) Close() error {
	if !e.closed.CompareAndSwap(false, true) {
		return ErrEngineClosed
	}

	if err := e.tree.Flush(filepath.Join(e.options.DataDir, skeletonFileName)); err != nil {
		if gerrors.IsStorageError(err) {
			e.log.Errorw("flush failed during close: storage layer unavailable", "err", err)
		} else {
			e.log.Errorw("flush failed during close", "err", err)
		}
	}
	if err := e.tree.Close(); err != nil {
		return err
	}
	if err := e.pools.Fields.Close(); err != nil {
		return err
	}
	return e.pools.Literals.Close()
}
