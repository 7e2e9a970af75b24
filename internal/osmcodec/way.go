package osmcodec

import (
	"io"

	"github.com/chlohal/geostore/internal/pool"
	gerrors "github.com/chlohal/geostore/pkg/errors"
	"github.com/chlohal/geostore/pkg/varint"
)

// WayPoint is one child node's absolute coordinate, as reconstructed
// from the (dx,dy) offset way.rs stores relative to the way's own
// bounding-box corner.
type WayPoint struct {
	X, Y int32
}

// EncodeWay writes a way blob: header byte, id, child point count, the
// (dx,dy) offset of each child node from originX/originY (typically the
// way's bounding box's minimum corner), and then the field count and
// field-pool-id sequence for the way's tags.
func EncodeWay(w io.Writer, pools *Pools, id uint64, points []WayPoint, originX, originY int32, fields []Field) error {
	header := byte(0b01_00_0000)
	if _, err := w.Write([]byte{header}); err != nil {
		return err
	}
	if err := varint.WriteUint64(w, id); err != nil {
		return err
	}

	if err := varint.WriteUint64(w, uint64(len(points))); err != nil {
		return err
	}
	for _, p := range points {
		dx := absDiffI32(originX, p.X)
		dy := absDiffI32(originY, p.Y)
		if err := varint.WriteUint32(w, dx); err != nil {
			return err
		}
		if err := varint.WriteUint32(w, dy); err != nil {
			return err
		}
	}

	if err := varint.WriteUint64(w, uint64(len(fields))); err != nil {
		return err
	}
	for _, f := range fields {
		fieldID, err := pools.InsertField(f)
		if err != nil {
			return err
		}
		if err := varint.WriteUint64(w, uint64(fieldID)); err != nil {
			return err
		}
	}

	return nil
}

func absDiffI32(a, b int32) uint32 {
	if a > b {
		return uint32(a - b)
	}
	return uint32(b - a)
}

// DecodeWay reads a full way blob, resolving every field reference
// through pools. originX/originY must be the same bounding-box corner
// EncodeWay used.
func DecodeWay(r io.Reader, pools *Pools, originX, originY int32) (id uint64, points []WayPoint, fields []Field, err error) {
	id, points, err = decodeWayHeaderAndPoints(r, originX, originY)
	if err != nil {
		return 0, nil, nil, err
	}

	count, err := varint.ReadUint64(r)
	if err != nil {
		return 0, nil, nil, err
	}

	fields = make([]Field, 0, count)
	for i := uint64(0); i < count; i++ {
		fieldID, err := varint.ReadUint64(r)
		if err != nil {
			return 0, nil, nil, err
		}
		f, err := pools.GetField(pool.ID(fieldID))
		if err != nil {
			return 0, nil, nil, err
		}
		fields = append(fields, f)
	}

	return id, points, fields, nil
}

// DecodeWayPoints reads only a way blob's id and point geometry,
// skipping the field-pool lookups entirely. This mirrors way.rs's
// get_points fast path used by geometry-only spatial tree consumers
// that never need a way's tags.
func DecodeWayPoints(r io.Reader, originX, originY int32) (id uint64, points []WayPoint, err error) {
	return decodeWayHeaderAndPoints(r, originX, originY)
}

func decodeWayHeaderAndPoints(r io.Reader, originX, originY int32) (uint64, []WayPoint, error) {
	var header [1]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return 0, nil, gerrors.NewMalformedInputError(err, "way-header", 0)
	}
	if peekBlobTypeTag(header[0]) != blobTypeWay {
		return 0, nil, gerrors.NewMalformedInputError(nil, "way-header", 0).
			WithMessage("blob type tag was not a way")
	}

	id, err := varint.ReadUint64(r)
	if err != nil {
		return 0, nil, err
	}

	count, err := varint.ReadUint64(r)
	if err != nil {
		return 0, nil, err
	}

	points := make([]WayPoint, 0, count)
	for i := uint64(0); i < count; i++ {
		dx, err := varint.ReadUint32(r)
		if err != nil {
			return 0, nil, err
		}
		dy, err := varint.ReadUint32(r)
		if err != nil {
			return 0, nil, err
		}
		points = append(points, WayPoint{
			X: wrappingAddUnsigned(originX, dx),
			Y: wrappingAddUnsigned(originY, dy),
		})
	}

	return id, points, nil
}

// wrappingAddUnsigned adds an unsigned offset to a signed base with
// two's-complement wraparound, mirroring Rust's i32::wrapping_add_unsigned.
func wrappingAddUnsigned(base int32, offset uint32) int32 {
	return int32(uint32(base) + offset)
}
