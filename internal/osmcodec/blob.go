package osmcodec

import (
	gerrors "github.com/chlohal/geostore/pkg/errors"
)

// ObjectKind distinguishes the three OSM primitive types when they are
// flattened into a single 64-bit id space, letting a relation's member
// list and the spatial tree's keys share one id type.
type ObjectKind byte

const (
	ObjectKindNode ObjectKind = iota
	ObjectKindWay
	ObjectKindRelation
)

// flattenedIDShift is the bit position of the 2-bit kind tag within a
// flattened id; everything below it is the OSM object's own numeric id.
const flattenedIDShift = 62

// flattenedIDMask covers the 2 reserved high bits.
const flattenedIDMask = uint64(0b11) << flattenedIDShift

// FlattenID packs kind and innerID into a single 64-bit value, the top
// two bits carrying kind and the rest carrying innerID. Returns an
// IdOverflow error if innerID is large enough to collide with the
// reserved bits.
func FlattenID(kind ObjectKind, innerID uint64) (uint64, error) {
	if innerID&flattenedIDMask != 0 {
		return 0, gerrors.NewIdOverflowError(innerID, "flattened-osm-id")
	}
	return innerID | (uint64(kind) << flattenedIDShift), nil
}

// UnflattenID is the inverse of FlattenID.
func UnflattenID(id uint64) (ObjectKind, uint64) {
	kind := ObjectKind(id >> flattenedIDShift)
	return kind, id &^ flattenedIDMask
}

// blobTypeTag is the top two bits of a serialized object blob's first
// byte, per §4.8: node is 10, way is 01, relation is 00.
type blobTypeTag byte

const (
	blobTypeNode     blobTypeTag = 0b10
	blobTypeWay      blobTypeTag = 0b01
	blobTypeRelation blobTypeTag = 0b00
)

func peekBlobTypeTag(header byte) blobTypeTag {
	return blobTypeTag(header >> 6)
}

// PeekKind reports which of the three blob variants blob's header byte
// selects, without otherwise decoding it. Returns MalformedInput if
// blob is empty or its header matches none of the three tags.
func PeekKind(blob []byte) (ObjectKind, error) {
	if len(blob) == 0 {
		return 0, gerrors.NewMalformedInputError(nil, "blob-header", 0).WithMessage("empty object blob")
	}

	switch peekBlobTypeTag(blob[0]) {
	case blobTypeNode:
		return ObjectKindNode, nil
	case blobTypeWay:
		return ObjectKindWay, nil
	case blobTypeRelation:
		return ObjectKindRelation, nil
	default:
		return 0, gerrors.NewMalformedInputError(nil, "blob-header", 0).WithMessage("unrecognized blob type tag")
	}
}
