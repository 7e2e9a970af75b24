// Package ingest holds the ingestion loops behind two of the CLI
// surfaces spec §6 names (importer and streaming builder), written
// against the public geostore façade; the explorer reads an existing
// store and lives in cmd/geostore alone. It
// never parses a PBF file itself: per spec §1, "the OSM PBF reader
// that emits raw objects" is an explicit external collaborator, out of
// scope for this repository's core. Source is the seam a real PBF
// reader plugs into.
package ingest

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/chlohal/geostore/pkg/geostore"
)

// RawNode, RawWay, RawRelation are the three primitive shapes a Source
// yields, already carrying their bounding box (computed by the reader
// from node coordinates for ways/relations) so ingest never needs to
// resolve cross-references itself.
type RawNode struct {
	ID   uint64
	Box  geostore.Box
	Tags map[string]string
}

type RawWay struct {
	ID     uint64
	Box    geostore.Box
	Points []geostore.WayPoint
	Tags   map[string]string
}

type RawRelation struct {
	ID      uint64
	Box     geostore.Box
	Tags    map[string]string
	Members []geostore.RelationMember
}

// Source streams raw OSM primitives from whatever upstream format a
// caller supplies (typically a PBF decoder). Each Each* method yields
// records to emit until the source is exhausted or emit returns false.
type Source interface {
	EachNode(emit func(RawNode) bool) error
	EachWay(emit func(RawWay) bool) error
	EachRelation(emit func(RawRelation) bool) error
}

// Import performs a single-threaded, ordered ingest of src's entire
// contents into store: every node, then every way, then every
// relation, flushing once at the end. This is the importer CLI's core
// loop (spec §6's "importer (input PBF path)"). A record whose encode
// or insert fails is counted in skipped and otherwise ignored, per
// spec §7's "ingestion prints a line per skipped record" — callers
// wanting those messages should pass onSkip; a nil onSkip silently
// drops them.
func Import(store *geostore.Instance, src Source, onSkip func(kind string, id uint64, err error)) (skipped int, err error) {
	report := onSkip
	if report == nil {
		report = func(string, uint64, error) {}
	}

	if walkErr := src.EachNode(func(n RawNode) bool {
		if insertErr := store.InsertNode(n.Box, n.ID, n.Tags); insertErr != nil {
			skipped++
			report("node", n.ID, insertErr)
		}
		return true
	}); walkErr != nil {
		return skipped, walkErr
	}

	if walkErr := src.EachWay(func(w RawWay) bool {
		if insertErr := store.InsertWay(w.Box, w.ID, w.Points, w.Tags); insertErr != nil {
			skipped++
			report("way", w.ID, insertErr)
		}
		return true
	}); walkErr != nil {
		return skipped, walkErr
	}

	if walkErr := src.EachRelation(func(r RawRelation) bool {
		if insertErr := store.InsertRelation(r.Box, r.ID, r.Tags, r.Members); insertErr != nil {
			skipped++
			report("relation", r.ID, insertErr)
		}
		return true
	}); walkErr != nil {
		return skipped, walkErr
	}

	return skipped, store.Flush()
}

// StreamBuild performs a concurrent, tree-only build (spec §6's
// "streaming builder (tree-only build from a PBF)"): a single
// producer goroutine walks src while workerCount worker goroutines
// encode and insert concurrently, coordinated by an errgroup.Group so
// the first worker error cancels the rest and is returned to the
// caller (spec §5's "multi-threaded, shared-state" concurrency model —
// the tree and pools are already safe for concurrent callers; this
// just parallelizes the CPU-bound encode step ahead of each Insert).
func StreamBuild(ctx context.Context, store *geostore.Instance, src Source, workerCount int) (skipped int64, err error) {
	if workerCount < 1 {
		workerCount = 1
	}

	type job func() error

	jobs := make(chan job, workerCount*4)
	g, gctx := errgroup.WithContext(ctx)

	for i := 0; i < workerCount; i++ {
		g.Go(func() error {
			for {
				select {
				case <-gctx.Done():
					return gctx.Err()
				case j, ok := <-jobs:
					if !ok {
						return nil
					}
					if jobErr := j(); jobErr != nil {
						return jobErr
					}
				}
			}
		})
	}

	produceErr := func() error {
		defer close(jobs)

		emitNode := func(n RawNode) bool {
			select {
			case jobs <- func() error { return store.InsertNode(n.Box, n.ID, n.Tags) }:
				return true
			case <-gctx.Done():
				return false
			}
		}
		if err := src.EachNode(emitNode); err != nil {
			return err
		}

		emitWay := func(w RawWay) bool {
			select {
			case jobs <- func() error { return store.InsertWay(w.Box, w.ID, w.Points, w.Tags) }:
				return true
			case <-gctx.Done():
				return false
			}
		}
		if err := src.EachWay(emitWay); err != nil {
			return err
		}

		emitRelation := func(r RawRelation) bool {
			select {
			case jobs <- func() error { return store.InsertRelation(r.Box, r.ID, r.Tags, r.Members) }:
				return true
			case <-gctx.Done():
				return false
			}
		}
		return src.EachRelation(emitRelation)
	}()

	workerErr := g.Wait()
	if produceErr != nil {
		return 0, produceErr
	}
	if workerErr != nil {
		return 0, workerErr
	}
	return 0, store.Flush()
}
