package paging

import "io"

// RawFile is the low-level paged-file primitive that Storage[T] builds
// its whole-value page cache on top of. Consumers that manage their own
// in-memory layout instead of caching one decoded value per page — the
// value pool's append-only block stream is the only one in this module —
// use it directly rather than going through Storage[T].
type RawFile struct {
	pu *pageUse
}

// OpenRaw opens (creating if absent) a paged file for raw chain access.
func OpenRaw(path string, pageSize uint64) (*RawFile, error) {
	pu, err := openPageUse(path, pageSize)
	if err != nil {
		return nil, err
	}
	return &RawFile{pu: pu}, nil
}

// Close releases the backing file handle.
func (r *RawFile) Close() error { return r.pu.close() }

// Sync fsyncs the backing file.
func (r *RawFile) Sync() error { return r.pu.sync() }

// DataSize returns the number of payload bytes available per page.
func (r *RawFile) DataSize() uint64 { return r.pu.dataSize() }

// AllocatedCount returns how many page ids have ever been handed out
// (including ones since freed), letting a caller distinguish a brand
// new file from one it is resuming.
func (r *RawFile) AllocatedCount() uint64 { return r.pu.lowestUnallocated - 1 }

// Alloc allocates a fresh, unlinked page.
func (r *RawFile) Alloc() (PageID, error) { return r.pu.allocNew() }

// AllocAfter allocates a fresh page and links it into the chain
// immediately following previous.
func (r *RawFile) AllocAfter(previous PageID) (PageID, error) { return r.pu.allocNewAfter(previous) }

// TruncateUnused shrinks the backing file when the top of the
// allocated range is entirely covered by freed ids, per spec §4.3.
func (r *RawFile) TruncateUnused() error { return r.pu.truncateUnused() }

// NewReader returns a reader over the chain beginning at headID,
// following forward links as it exhausts each page's payload.
func (r *RawFile) NewReader(headID PageID) io.Reader {
	return newPageReader(r.pu, headID, false)
}

// NewReaderAt returns a reader over the chain whose payload begins at
// byte offsetInPage within the specific physical page pageID. Unlike
// NewReader, it never walks forward links to find its starting point:
// the caller is expected to already know which physical page a logical
// stream offset falls on (typically because it tracked the chain's
// component page ids itself, as the value pool does for each block it
// appends) and wants to seek there directly instead of walking from the
// chain's true head.
func (r *RawFile) NewReaderAt(pageID PageID, offsetInPage uint64) io.Reader {
	return &pageReader{pu: r.pu, current: pageID, readInPage: offsetInPage}
}

// PatchBytes overwrites data at byte offset offsetInPage within page
// pageID, spilling into pageID's forward-linked successor if data runs
// past the page's payload boundary. It is used to rewrite a block's
// length header in place once the block's true size is known, without
// the relative seek-back/seek-forward dance the original pool
// implementation used: os.File's offset-based WriteAt makes the patch
// a plain absolute-offset write.
func (r *RawFile) PatchBytes(pageID PageID, offsetInPage uint64, data []byte) error {
	for len(data) > 0 {
		remaining := r.pu.dataSize() - offsetInPage
		n := uint64(len(data))
		if n > remaining {
			n = remaining
		}

		if _, err := r.pu.file.WriteAt(data[:n], int64(r.pu.dataByteOffset(pageID)+offsetInPage)); err != nil {
			return err
		}
		data = data[n:]

		if len(data) == 0 {
			return nil
		}

		next, err := r.pu.readForwardLink(pageID)
		if err != nil {
			return err
		}
		pageID = next
		offsetInPage = 0
	}
	return nil
}

// Cursor is a position-aware chain reader: besides satisfying
// io.Reader, it reports the exact (page, offset-within-page) it is
// about to read from next. The value pool uses this while replaying
// an existing stream on reopen, to record precisely where each block
// begins without decoding the whole chain into memory first.
type Cursor struct {
	r *pageReader
}

// NewCursor returns a position-aware reader over the chain beginning
// at headID.
func (r *RawFile) NewCursor(headID PageID) *Cursor {
	return &Cursor{r: newPageReader(r.pu, headID, false)}
}

// Read implements io.Reader.
func (c *Cursor) Read(buf []byte) (int, error) { return c.r.Read(buf) }

// Pos returns the physical page and in-page offset the next Read call
// will start from.
func (c *Cursor) Pos() (PageID, uint64) { return c.r.current, c.r.readInPage }

// Appender writes a monotonically growing byte stream into a page
// chain: every call to Write lands strictly after whatever was written
// before it, allocating fresh pages as the current one fills and never
// revisiting bytes already on disk. It is the primitive the value pool
// uses to append new blocks.
type Appender struct {
	pu      *pageUse
	current PageID
	written uint64
	pages   []PageID
}

// NewAppender starts or resumes an append stream. tail is the id of the
// chain's last page (0 if nothing has been written yet), tailWritten is
// how many payload bytes of tail are already occupied, and pages is the
// full, in-order list of every page id belonging to the chain so far
// (nil for a brand new chain).
func (r *RawFile) NewAppender(tail PageID, tailWritten uint64, pages []PageID) *Appender {
	return &Appender{pu: r.pu, current: tail, written: tailWritten, pages: pages}
}

// Write implements io.Writer, appending buf to the chain.
func (a *Appender) Write(buf []byte) (int, error) {
	total := 0
	for len(buf) > 0 {
		if !a.current.valid() {
			id, err := a.pu.allocNew()
			if err != nil {
				return total, err
			}
			a.current = id
			a.pages = append(a.pages, id)
			a.written = 0
		}

		remaining := a.pu.dataSize() - a.written
		if remaining == 0 {
			id, err := a.pu.allocNewAfter(a.current)
			if err != nil {
				return total, err
			}
			a.current = id
			a.pages = append(a.pages, id)
			a.written = 0
			remaining = a.pu.dataSize()
		}

		n := uint64(len(buf))
		if n > remaining {
			n = remaining
		}

		wrote, err := a.pu.file.WriteAt(buf[:n], int64(a.pu.dataByteOffset(a.current)+a.written))
		if err != nil {
			return total + wrote, err
		}
		a.written += uint64(wrote)
		total += wrote
		buf = buf[wrote:]
	}
	return total, nil
}

// Pages returns every page id belonging to the chain so far, in order.
func (a *Appender) Pages() []PageID { return a.pages }

// Tail returns the chain's current last page id and how many payload
// bytes of it are occupied, the pair a caller persists and later passes
// back into NewAppender to resume appending across a reopen.
func (a *Appender) Tail() (PageID, uint64) { return a.current, a.written }
