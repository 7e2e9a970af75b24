package paging

import "io"

// pageReader streams the data region of a page chain as a flat byte
// stream, transparently following forward links from one physical
// page to the next. Once the chain ends it behaves like a normal
// exhausted io.Reader, returning io.EOF.
type pageReader struct {
	pu         *pageUse
	current    PageID
	readInPage uint64
	exhausted  bool

	trackComponents bool
	componentIDs    []PageID
}

func newPageReader(pu *pageUse, start PageID, trackComponents bool) *pageReader {
	r := &pageReader{pu: pu, current: start, trackComponents: trackComponents}
	if trackComponents {
		r.componentIDs = []PageID{start}
	}
	return r
}

func (r *pageReader) Read(buf []byte) (int, error) {
	if len(buf) == 0 {
		return 0, nil
	}
	if r.exhausted {
		return 0, io.EOF
	}

	available := r.pu.dataSize() - r.readInPage
	n := len(buf)
	if uint64(n) > available {
		n = int(available)
	}

	read, err := r.pu.file.ReadAt(buf[:n], int64(r.pu.dataByteOffset(r.current)+r.readInPage))
	if err != nil && err != io.EOF {
		return read, err
	}

	r.readInPage += uint64(read)

	if r.readInPage == r.pu.dataSize() {
		next, lerr := r.pu.readForwardLink(r.current)
		if lerr != nil {
			return read, lerr
		}
		if next.valid() {
			if r.trackComponents {
				r.componentIDs = append(r.componentIDs, next)
			}
			r.current = next
			r.readInPage = 0
		} else {
			r.exhausted = true
		}
	}

	if read == 0 {
		return 0, io.EOF
	}
	return read, nil
}
