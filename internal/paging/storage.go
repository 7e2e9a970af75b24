// Package paging implements the engine's on-disk unit of storage: a
// single growing file split into fixed-size pages, with content
// spanning more than one page linked into a chain via an in-header
// forward/backward pointer pair. Everything above this layer — the
// value pool, the spatial tree's node storage — addresses its data
// purely by PageID and never touches file offsets directly.
package paging

import (
	"github.com/chlohal/geostore/internal/pagecache"
	gerrors "github.com/chlohal/geostore/pkg/errors"
	"go.uber.org/zap"
)

// Storage is a paged file holding values of type T, backed by a
// bounded in-memory cache of decoded pages.
type Storage[T any] struct {
	pu          *pageUse
	cache       *pagecache.Cache[PageID, *Page[T]]
	serialize   Serializer[T]
	deserialize Deserializer[T]
	log         *zap.SugaredLogger
}

// Open opens (creating if absent) the paged file at path. cacheCapacityPages
// bounds the cache by page-equivalents rather than raw bytes, matching how
// callers reason about working-set size.
func Open[T any](path string, pageSize uint64, cacheCapacityPages int, serialize Serializer[T], deserialize Deserializer[T], log *zap.SugaredLogger) (*Storage[T], error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	pu, err := openPageUse(path, pageSize)
	if err != nil {
		return nil, err
	}

	return &Storage[T]{
		pu:          pu,
		cache:       pagecache.New[PageID, *Page[T]](cacheCapacityPages * int(pageSize)),
		serialize:   serialize,
		deserialize: deserialize,
		log:         log,
	}, nil
}

// NewPage allocates a fresh page chain holding value and returns its
// id along with a handle to it. The value is not written to disk
// until the handle is released (or the storage is flushed).
func (s *Storage[T]) NewPage(value T) (PageID, *Handle[T], error) {
	id, err := s.pu.allocNew()
	if err != nil {
		return 0, nil, err
	}

	page := &Page[T]{
		value:          value,
		componentPages: []PageID{id},
		pu:             s.pu,
		serialize:      s.serialize,
	}
	page.dirty.Store(true)

	ph := s.cache.Insert(id, page)
	return id, &Handle[T]{page: page, release: ph.Release, log: s.log}, nil
}

// Get returns a handle to the value stored at id, reading it from
// disk if not already cached.
func (s *Storage[T]) Get(id PageID) (*Handle[T], error) {
	if !s.pu.isValid(id) {
		return nil, gerrors.NewPageIDError(uint64(id), "Get")
	}

	if ph, ok := s.cache.Get(id); ok {
		return &Handle[T]{page: ph.Value(), release: ph.Release, log: s.log}, nil
	}

	page, err := openPage(s.pu, id, s.deserialize, s.serialize)
	if err != nil {
		return nil, err
	}

	ph := s.cache.Insert(id, page)
	return &Handle[T]{page: page, release: ph.Release, log: s.log}, nil
}

// Flush evicts every currently-unreferenced cached page. Since pages
// are flushed to disk as soon as their Handle is released (not
// deferred to eviction), this only reclaims memory; it does not skip
// or delay any write.
func (s *Storage[T]) Flush() {
	s.cache.EvictAll()
}

// Close flushes, shrinks away any freed pages at the top of the
// allocated range, and releases the backing file.
func (s *Storage[T]) Close() error {
	s.cache.EvictAll()
	if err := s.pu.truncateUnused(); err != nil {
		return err
	}
	return s.pu.close()
}

// Sync fsyncs the backing file.
func (s *Storage[T]) Sync() error {
	return s.pu.sync()
}
