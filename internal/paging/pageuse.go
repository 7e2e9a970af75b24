package paging

import (
	"container/heap"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"sync"

	gerrors "github.com/chlohal/geostore/pkg/errors"
)

// pageIDHeap is a min-heap of freed page ids: spec §4.3 requires
// allocate() to hand back the smallest freed id, not the most recently
// freed one, so the free list is ordered rather than a plain stack.
type pageIDHeap []PageID

func (h pageIDHeap) Len() int            { return len(h) }
func (h pageIDHeap) Less(i, j int) bool  { return h[i] < h[j] }
func (h pageIDHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *pageIDHeap) Push(x interface{}) { *h = append(*h, x.(PageID)) }
func (h *pageIDHeap) Pop() interface{} {
	old := *h
	n := len(old)
	id := old[n-1]
	*h = old[:n-1]
	return id
}

// pageUse owns the backing file and the bookkeeping needed to hand out
// fresh page ids: a high-water mark for ids never used before, and a
// min-heap of ids freed by chain truncation and available for reuse.
// The high-water mark is persisted in page 1's header bytes 8-15, per
// spec §6; the free list is not persisted and is rebuilt empty on
// reopen; pages freed in one process lifetime are simply never reused
// again in a later one.
type pageUse struct {
	mu                sync.Mutex
	file              *os.File
	path              string
	pageSize          uint64
	lowestUnallocated uint64
	freed             pageIDHeap
}

func openPageUse(path string, pageSize uint64) (*pageUse, error) {
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, gerrors.ClassifyFileOpenError(err, path, filepath.Base(path))
	}

	info, err := file.Stat()
	if err != nil {
		return nil, gerrors.NewStorageError(err, gerrors.ErrorCodeIO, "failed to stat page file").WithPath(path)
	}

	lowest := uint64(1) // id 0 is reserved
	if info.Size() != 0 {
		var buf [8]byte
		if _, err := file.ReadAt(buf[:], highWaterMarkOffset); err != nil {
			return nil, gerrors.NewStorageError(err, gerrors.ErrorCodeIO, "failed to read high-water mark").WithPath(path)
		}
		lowest = binary.LittleEndian.Uint64(buf[:])
	}

	return &pageUse{file: file, path: path, pageSize: pageSize, lowestUnallocated: lowest}, nil
}

func (pu *pageUse) close() error {
	return pu.file.Close()
}

func (pu *pageUse) sync() error {
	if err := pu.file.Sync(); err != nil {
		return gerrors.ClassifySyncError(err, filepath.Base(pu.path), pu.path, int(mustSize(pu.file)))
	}
	return nil
}

// allocNew returns a fresh, zero-header page: either reused from the
// free list, or bumped off the high-water mark.
func (pu *pageUse) allocNew() (PageID, error) {
	pu.mu.Lock()
	defer pu.mu.Unlock()

	if len(pu.freed) > 0 {
		return heap.Pop(&pu.freed).(PageID), nil
	}

	id := PageID(pu.lowestUnallocated)
	pu.lowestUnallocated++

	if end := pu.endByteOffset(id); uint64(mustSize(pu.file)) < end {
		if err := pu.file.Truncate(int64(end)); err != nil {
			return 0, gerrors.NewStorageError(err, gerrors.ErrorCodeIO, "failed to grow page file")
		}
	}

	var zero [16]byte
	if _, err := pu.file.WriteAt(zero[:], int64(pu.byteOffset(id))); err != nil {
		return 0, gerrors.NewStorageError(err, gerrors.ErrorCodeIO, "failed to zero new page header")
	}

	// Written after the header is zeroed: allocating page 1 zeroes the
	// very bytes that hold the mark.
	var mark [8]byte
	binary.LittleEndian.PutUint64(mark[:], pu.lowestUnallocated)
	if _, err := pu.file.WriteAt(mark[:], highWaterMarkOffset); err != nil {
		return 0, gerrors.NewStorageError(err, gerrors.ErrorCodeIO, "failed to persist high-water mark")
	}

	return id, nil
}

func mustSize(f *os.File) int64 {
	info, err := f.Stat()
	if err != nil {
		return 0
	}
	return info.Size()
}

// allocNewAfter allocates a fresh page and links it into the chain
// immediately after old: old's forward link becomes new, and new's
// backward link becomes old.
func (pu *pageUse) allocNewAfter(old PageID) (PageID, error) {
	newID, err := pu.allocNew()
	if err != nil {
		return 0, err
	}

	pu.mu.Lock()
	defer pu.mu.Unlock()

	var idBytes [8]byte
	binary.LittleEndian.PutUint64(idBytes[:], uint64(newID))
	if _, err := pu.file.WriteAt(idBytes[:], int64(pu.byteOffset(old))); err != nil {
		return 0, gerrors.NewStorageError(err, gerrors.ErrorCodeIO, "failed to link page chain forward")
	}

	binary.LittleEndian.PutUint64(idBytes[:], uint64(old))
	if _, err := pu.file.WriteAt(idBytes[:], int64(pu.byteOffset(newID)+8)); err != nil {
		return 0, gerrors.NewStorageError(err, gerrors.ErrorCodeIO, "failed to link page chain backward")
	}

	return newID, nil
}

// freePage releases the tail page of a chain: it clears the previous
// page's forward link (if any) so the chain no longer points at free,
// pushes free onto the free-id heap, and zeroes free's own header.
func (pu *pageUse) freePage(free PageID) error {
	pu.mu.Lock()
	defer pu.mu.Unlock()

	var prevBytes [8]byte
	if _, err := pu.file.ReadAt(prevBytes[:], int64(pu.byteOffset(free)+8)); err != nil {
		return gerrors.NewStorageError(err, gerrors.ErrorCodeIO, "failed to read backward link before free")
	}
	previous := PageID(binary.LittleEndian.Uint64(prevBytes[:]))

	heap.Push(&pu.freed, free)

	if previous.valid() {
		var zero [8]byte
		if _, err := pu.file.WriteAt(zero[:], int64(pu.byteOffset(previous))); err != nil {
			return gerrors.NewStorageError(err, gerrors.ErrorCodeIO, "failed to clear forward link of predecessor")
		}
	}

	var zeroHeader [16]byte
	if _, err := pu.file.WriteAt(zeroHeader[:], int64(pu.byteOffset(free))); err != nil {
		return gerrors.NewStorageError(err, gerrors.ErrorCodeIO, "failed to zero freed page header")
	}

	return nil
}

// truncateUnused shrinks the file when the top of the allocated range
// is entirely covered by freed ids, per spec §4.3's truncate_unused():
// it walks down from the high-water mark while the id just below it is
// on the free list, removing each from the free list and lowering the
// mark, then truncates the file to the new end and persists the mark.
func (pu *pageUse) truncateUnused() error {
	pu.mu.Lock()
	defer pu.mu.Unlock()

	shrunk := false
	for pu.lowestUnallocated > 1 {
		top := PageID(pu.lowestUnallocated - 1)

		idx := -1
		for i, id := range pu.freed {
			if id == top {
				idx = i
				break
			}
		}
		if idx < 0 {
			break
		}

		heap.Remove(&pu.freed, idx)
		pu.lowestUnallocated--
		shrunk = true
	}
	if !shrunk {
		return nil
	}

	var mark [8]byte
	binary.LittleEndian.PutUint64(mark[:], pu.lowestUnallocated)
	if _, err := pu.file.WriteAt(mark[:], highWaterMarkOffset); err != nil {
		return gerrors.NewStorageError(err, gerrors.ErrorCodeIO, "failed to persist high-water mark after truncate")
	}

	newEnd := pu.pageSize
	if pu.lowestUnallocated > 1 {
		newEnd = pu.endByteOffset(PageID(pu.lowestUnallocated - 1))
	}
	if err := pu.file.Truncate(int64(newEnd)); err != nil {
		return gerrors.NewStorageError(err, gerrors.ErrorCodeIO, "failed to shrink page file")
	}
	return nil
}

func (pu *pageUse) isValid(id PageID) bool {
	pu.mu.Lock()
	defer pu.mu.Unlock()
	return id != 0 && uint64(id) < pu.lowestUnallocated
}

// readForwardLink reads the next-page link from id's header, returning
// 0 (invalid) if id is the tail of its chain.
func (pu *pageUse) readForwardLink(id PageID) (PageID, error) {
	var buf [8]byte
	if _, err := pu.file.ReadAt(buf[:], int64(pu.byteOffset(id))); err != nil {
		if err == io.EOF {
			return 0, nil
		}
		return 0, gerrors.NewStorageError(err, gerrors.ErrorCodeIO, "failed to read page forward link")
	}
	return PageID(binary.LittleEndian.Uint64(buf[:])), nil
}
