package paging

import (
	"bufio"
	"io"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// Serializer writes a value's minimal wire encoding.
type Serializer[T any] func(w io.Writer, v T) error

// Deserializer reads a value back from its minimal wire encoding.
type Deserializer[T any] func(r io.Reader) (T, error)

// Page holds one decoded value together with the chain of physical
// pages it currently occupies. A Page is never directly constructed
// by callers; it is returned wrapped in a Handle by Storage.
type Page[T any] struct {
	mu             sync.RWMutex
	value          T
	dirty          atomic.Bool
	componentPages []PageID

	pu        *pageUse
	serialize Serializer[T]
}

// EstimatedBytes satisfies pagecache.Sized: a page's cache weight is
// the full physical size of every page in its chain.
func (p *Page[T]) EstimatedBytes() int {
	return len(p.componentPages) * int(p.pu.pageSize)
}

// View runs fn with read access to the page's value.
func (p *Page[T]) View(fn func(T)) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	fn(p.value)
}

// Update runs fn with mutable access to the page's value and marks
// the page dirty, regardless of whether fn actually changes anything.
func (p *Page[T]) Update(fn func(*T)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dirty.Store(true)
	fn(&p.value)
}

func openPage[T any](pu *pageUse, id PageID, deserialize Deserializer[T], serialize Serializer[T]) (*Page[T], error) {
	r := newPageReader(pu, id, true)
	br := bufio.NewReaderSize(r, int(pu.dataSize()))

	value, err := deserialize(br)
	if err != nil {
		return nil, err
	}

	return &Page[T]{
		value:          value,
		componentPages: r.componentIDs,
		pu:             pu,
		serialize:      serialize,
	}, nil
}

// flush writes the page's value back to its chain if dirty, growing
// or truncating the chain as the new encoding's length requires.
func (p *Page[T]) flush() error {
	if !p.dirty.Load() {
		return nil
	}

	w := newPageWriter(p.pu, p.componentPages)
	// Claim the chain's head page up front, even if serialize below
	// turns out to write zero bytes: otherwise a zero-length encoding
	// would leave the writer untouched and free every page, including
	// the head whose id callers depend on staying stable.
	if _, err := w.Write(nil); err != nil {
		return err
	}
	bw := bufio.NewWriterSize(w, int(p.pu.dataSize()))

	if err := p.serialize(bw, p.value); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return err
	}

	unused := w.unused()
	validLen := len(p.componentPages) - len(unused)
	p.componentPages = append(p.componentPages[:validLen:validLen], w.added...)

	for _, id := range unused {
		if err := p.pu.freePage(id); err != nil {
			return err
		}
	}

	p.dirty.Store(false)
	return nil
}

// Handle is a caller's live reference to a cached page, obtained from
// Storage.Get or Storage.NewPage. Release must be called exactly once
// per Handle: it flushes the page if dirty (logging, not returning,
// any flush failure, since by the time a page would be evicted under
// Rust's Arc-drop model the flush has already happened here) and then
// returns the underlying cache slot for potential eviction.
type Handle[T any] struct {
	page    *Page[T]
	release func()
	log     *zap.SugaredLogger
}

// View runs fn with read access to the held value.
func (h *Handle[T]) View(fn func(T)) { h.page.View(fn) }

// Update runs fn with mutable access to the held value.
func (h *Handle[T]) Update(fn func(*T)) { h.page.Update(fn) }

// Release flushes the page if dirty and releases the cache reference.
func (h *Handle[T]) Release() {
	if err := h.page.flush(); err != nil && h.log != nil {
		h.log.Errorw("failed to flush page", "error", err)
	}
	h.release()
}
