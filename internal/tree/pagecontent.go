package tree

import (
	"io"

	"github.com/chlohal/geostore/pkg/btreevec"
	"github.com/chlohal/geostore/pkg/varint"
)

// PageContent is what one tree node's own physical page stores: its
// items, keyed by the Morton interleave of their bounding box's offset
// from the node's rectangle (see DeltaKey/AbsoluteBox in entry.go).
type PageContent struct {
	Children *btreevec.BTreeVec[uint64, Entry]
}

// newPageContent returns an empty PageContent, the value a freshly
// allocated node page starts with.
func newPageContent() PageContent {
	return PageContent{Children: btreevec.New[uint64, Entry]()}
}

// SerializePageContent is the paging.Serializer for PageContent: a
// varint entry count followed by (key, width, height, value-length,
// value-bytes) per entry, in ascending key order.
func SerializePageContent(w io.Writer, c PageContent) error {
	pairs := c.Children.All()

	if err := varint.WriteUint64(w, uint64(len(pairs))); err != nil {
		return err
	}
	for _, p := range pairs {
		if err := varint.WriteUint64(w, p.Key); err != nil {
			return err
		}
		if err := varint.WriteUint32(w, p.Value.Width); err != nil {
			return err
		}
		if err := varint.WriteUint32(w, p.Value.Height); err != nil {
			return err
		}
		if err := varint.WriteUint64(w, uint64(len(p.Value.Value))); err != nil {
			return err
		}
		if _, err := w.Write(p.Value.Value); err != nil {
			return err
		}
	}
	return nil
}

// DeserializePageContent is the paging.Deserializer for PageContent.
func DeserializePageContent(r io.Reader) (PageContent, error) {
	n, err := varint.ReadUint64(r)
	if err != nil {
		return PageContent{}, err
	}

	pairs := make([]btreevec.Pair[uint64, Entry], 0, n)
	for i := uint64(0); i < n; i++ {
		key, err := varint.ReadUint64(r)
		if err != nil {
			return PageContent{}, err
		}
		width, err := varint.ReadUint32(r)
		if err != nil {
			return PageContent{}, err
		}
		height, err := varint.ReadUint32(r)
		if err != nil {
			return PageContent{}, err
		}
		length, err := varint.ReadUint64(r)
		if err != nil {
			return PageContent{}, err
		}

		value := make([]byte, length)
		if _, err := io.ReadFull(r, value); err != nil {
			return PageContent{}, err
		}

		pairs = append(pairs, btreevec.Pair[uint64, Entry]{
			Key:   key,
			Value: Entry{Width: width, Height: height, Value: value},
		})
	}

	return PageContent{Children: btreevec.FromSorted(pairs)}, nil
}
