package tree

import (
	"bufio"
	"io"
	"os"

	"github.com/chlohal/geostore/internal/paging"
	"github.com/chlohal/geostore/pkg/varint"
	"github.com/klauspost/compress/zstd"
)

// The skeleton file records the tree's split structure separately from
// its page data: the root rectangle once, then a pre-order walk of
// every node — a 'y'/'n' split flag, the node's page id, its live
// child count, and (if split) its two children recursively —
// mirroring tree_serde.rs's serialize_tree. Rect and axis are never
// stored directly; axis alternates by depth and rect is halved from
// the parent on the way down.
const (
	flagSplit   = 'y'
	flagNoSplit = 'n'
)

// loadSkeleton reads the skeleton file at path, or reports (nil, Rect{}, nil)
// if the file does not exist yet.
func loadSkeleton(path string) (*node, Rect, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, Rect{}, nil
		}
		return nil, Rect{}, err
	}
	defer f.Close()

	zr, err := zstd.NewReader(f)
	if err != nil {
		return nil, Rect{}, err
	}
	defer zr.Close()

	br := bufio.NewReader(zr)

	rect, err := readRect(br)
	if err != nil {
		return nil, Rect{}, err
	}

	root, err := readSkeletonNode(br, rect, AxisX)
	if err != nil {
		return nil, Rect{}, err
	}

	return root, rect, nil
}

// saveSkeleton atomically rewrites the skeleton file at path.
func saveSkeleton(path string, root *node, rootRect Rect) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}

	zw, err := zstd.NewWriter(f)
	if err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}

	if err := writeRect(zw, rootRect); err != nil {
		zw.Close()
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := writeSkeletonNode(zw, root); err != nil {
		zw.Close()
		f.Close()
		os.Remove(tmp)
		return err
	}

	if err := zw.Close(); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}

	return os.Rename(tmp, path)
}

func readSkeletonNode(r io.Reader, rect Rect, axis Axis) (*node, error) {
	var flag [1]byte
	if _, err := io.ReadFull(r, flag[:]); err != nil {
		return nil, err
	}

	pageID, err := varint.ReadUint64(r)
	if err != nil {
		return nil, err
	}
	childCount, err := varint.ReadUint64(r)
	if err != nil {
		return nil, err
	}

	n := &node{pageID: paging.PageID(pageID), rect: rect, axis: axis}
	n.childCount.Store(int64(childCount))

	if flag[0] != flagSplit {
		return n, nil
	}

	leftRect, rightRect := rect.Split(axis)
	childAxis := axis.Flip()

	left, err := readSkeletonNode(r, leftRect, childAxis)
	if err != nil {
		return nil, err
	}
	right, err := readSkeletonNode(r, rightRect, childAxis)
	if err != nil {
		return nil, err
	}

	n.split.set(left, right)
	return n, nil
}

func writeSkeletonNode(w io.Writer, n *node) error {
	left, right, split := n.split.get()

	flag := byte(flagNoSplit)
	if split {
		flag = flagSplit
	}
	if _, err := w.Write([]byte{flag}); err != nil {
		return err
	}

	if err := varint.WriteUint64(w, uint64(n.pageID)); err != nil {
		return err
	}
	if err := varint.WriteUint64(w, uint64(n.childCount.Load())); err != nil {
		return err
	}

	if !split {
		return nil
	}

	if err := writeSkeletonNode(w, left); err != nil {
		return err
	}
	return writeSkeletonNode(w, right)
}

func writeRect(w io.Writer, r Rect) error {
	if err := varint.WriteInt32(w, r.MinX); err != nil {
		return err
	}
	if err := varint.WriteInt32(w, r.MinY); err != nil {
		return err
	}
	if err := varint.WriteInt32(w, r.MaxX); err != nil {
		return err
	}
	return varint.WriteInt32(w, r.MaxY)
}

func readRect(r io.Reader) (Rect, error) {
	minX, err := varint.ReadInt32(r)
	if err != nil {
		return Rect{}, err
	}
	minY, err := varint.ReadInt32(r)
	if err != nil {
		return Rect{}, err
	}
	maxX, err := varint.ReadInt32(r)
	if err != nil {
		return Rect{}, err
	}
	maxY, err := varint.ReadInt32(r)
	if err != nil {
		return Rect{}, err
	}
	return Rect{MinX: minX, MinY: minY, MaxX: maxX, MaxY: maxY}, nil
}
