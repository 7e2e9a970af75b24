package paging

type writerState int

const (
	writerBegin writerState = iota
	writerWritingAllocated
	writerWritingNew
	writerNeedsNewAllocation
)

// pageWriter streams bytes into a page chain, reusing the chain's
// existing pages in order before allocating fresh ones. After a
// serialization pass completes, Added holds any pages allocated beyond
// the original chain and Unused holds any original pages never
// reached: the caller extends its component list with Added and frees
// Unused. The two never happen in the same pass.
type pageWriter struct {
	pu      *pageUse
	toWrite []PageID
	state   writerState
	current PageID
	written uint64
	added   []PageID
}

func newPageWriter(pu *pageUse, existingChain []PageID) *pageWriter {
	return &pageWriter{pu: pu, toWrite: existingChain, state: writerBegin}
}

func (w *pageWriter) Write(buf []byte) (int, error) {
	var dataOffset uint64

	switch w.state {
	case writerBegin:
		if len(w.toWrite) == 0 {
			w.state = writerNeedsNewAllocation
			return w.Write(buf)
		}
		w.current = w.toWrite[0]
		w.toWrite = w.toWrite[1:]
		w.state = writerWritingAllocated
		w.written = 0
		dataOffset = 0

	case writerWritingAllocated, writerWritingNew:
		dataOffset = w.written

	case writerNeedsNewAllocation:
		newID, err := w.pu.allocNewAfter(w.current)
		if err != nil {
			return 0, err
		}
		w.added = append(w.added, newID)
		w.current = newID
		w.state = writerWritingNew
		w.written = 0
		dataOffset = 0
	}

	remaining := w.pu.dataSize() - dataOffset
	n := len(buf)
	if uint64(n) > remaining {
		n = int(remaining)
	}

	wrote, err := w.pu.file.WriteAt(buf[:n], int64(w.pu.dataByteOffset(w.current)+dataOffset))
	if err != nil {
		return wrote, err
	}

	if uint64(wrote) == remaining {
		switch w.state {
		case writerWritingAllocated:
			if len(w.toWrite) == 0 {
				w.state = writerNeedsNewAllocation
			} else {
				w.state = writerBegin
			}
		case writerWritingNew:
			w.state = writerNeedsNewAllocation
		}
	} else {
		w.written += uint64(wrote)
	}

	return wrote, nil
}

// unused returns the pages from the original chain that were never
// reached because the freshly written content ended sooner.
func (w *pageWriter) unused() []PageID {
	switch w.state {
	case writerBegin, writerWritingAllocated:
		return w.toWrite
	default:
		return nil
	}
}
