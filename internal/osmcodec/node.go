package osmcodec

import (
	"io"

	"github.com/chlohal/geostore/internal/pool"
	gerrors "github.com/chlohal/geostore/pkg/errors"
	"github.com/chlohal/geostore/pkg/varint"
)

// NodeSingleInlined is the small fixed set of node tag shapes common
// enough to niche directly into the blob header byte instead of
// spending a field-pool reference, ported from
// compressed_data/node.rs's NodeSingleInlined enum.
type NodeSingleInlined byte

const (
	NodeSingleTree             NodeSingleInlined = 1
	NodeSinglePowerTower       NodeSingleInlined = 2
	NodeSinglePowerPole        NodeSingleInlined = 3
	NodeSingleBroadleavedTree  NodeSingleInlined = 4
	NodeSingleBench            NodeSingleInlined = 5
	NodeSingleHydrant          NodeSingleInlined = 6
	NodeSingleNeedleleavedTree NodeSingleInlined = 7
)

// wellKnownSingleTags maps a (key,value) tag pair directly to its
// niched NodeSingleInlined variant.
var wellKnownSingleTags = map[[2]string]NodeSingleInlined{
	{"natural", "tree"}:           NodeSingleTree,
	{"power", "tower"}:            NodeSinglePowerTower,
	{"power", "pole"}:             NodeSinglePowerPole,
	{"amenity", "bench"}:          NodeSingleBench,
	{"emergency", "fire_hydrant"}: NodeSingleHydrant,
}

// NodeSingleInlinedFromTags attempts to niche a node's complete tag set
// into a single NodeSingleInlined variant. ok is false if tags doesn't
// match exactly one of the recognized shapes; per node.rs, this only
// applies to a node with exactly one tag, or the two-tag leaf_type
// composites below.
func NodeSingleInlinedFromTags(tags map[string]string) (NodeSingleInlined, bool) {
	if len(tags) == 2 {
		if tags["natural"] == "tree" {
			switch tags["leaf_type"] {
			case "needleleaved":
				return NodeSingleNeedleleavedTree, true
			case "broadleaved":
				return NodeSingleBroadleavedTree, true
			}
		}
		return 0, false
	}

	if len(tags) != 1 {
		return 0, false
	}

	for k, v := range tags {
		if single, ok := wellKnownSingleTags[[2]string{k, v}]; ok {
			return single, true
		}
	}
	return 0, false
}

// NodeFields is a node's tag payload. It is a closed sum type with two
// variants, per the source's NodeFields::Single/Multiple enum: a node
// either niches into a single well-known tag, or spills its tags to the
// field pool, never both.
type NodeFields interface {
	encodeNode(w io.Writer, pools *Pools, id uint64) error
}

// NodeNoTags is the Single(None) case: a node with no stored tags at
// all.
type NodeNoTags struct{}

// NodeSingleTag is the Single(Some(_)) case: a node whose entire tag
// set niched into one NodeSingleInlined value.
type NodeSingleTag struct {
	Tag NodeSingleInlined
}

// NodeMultipleTags is the Multiple case: a node whose tags are written
// out as field-pool references.
type NodeMultipleTags struct {
	Fields []Field
}

func (NodeNoTags) encodeNode(w io.Writer, _ *Pools, id uint64) error {
	return encodeNodeSingle(w, 0, id)
}

func (t NodeSingleTag) encodeNode(w io.Writer, _ *Pools, id uint64) error {
	return encodeNodeSingle(w, t.Tag, id)
}

func (m NodeMultipleTags) encodeNode(w io.Writer, pools *Pools, id uint64) error {
	return encodeNodeMultiple(w, pools, m.Fields, id)
}

// EncodeNode writes a node blob: a header byte, the node's own OSM id,
// and then either nothing more (the niched single-tag cases) or a
// field count plus field-pool-id sequence (the multiple-tags case).
func EncodeNode(w io.Writer, pools *Pools, id uint64, tags NodeFields) error {
	return tags.encodeNode(w, pools, id)
}

// nodeMultipleFlag distinguishes the field-pool-backed header shape
// from the niched single-tag shape. The source's two encoders emit an
// identical header prefix for both cases, relying on external bookkeeping
// to know which decoder to call; this bit makes the blob
// self-describing instead.
const nodeMultipleFlag = 0b00_00_1_000

func encodeNodeSingle(w io.Writer, single NodeSingleInlined, id uint64) error {
	header := byte(0b10_00_0_000) | byte(single)
	if _, err := w.Write([]byte{header}); err != nil {
		return err
	}
	return varint.WriteUint64(w, id)
}

func encodeNodeMultiple(w io.Writer, pools *Pools, fields []Field, id uint64) error {
	const inlineCountMax = 0b111

	header := byte(0b10_00_0_000) | nodeMultipleFlag
	count := len(fields)
	if count < inlineCountMax {
		header |= byte(count)
	} else {
		header |= inlineCountMax
	}

	if _, err := w.Write([]byte{header}); err != nil {
		return err
	}
	if err := varint.WriteUint64(w, id); err != nil {
		return err
	}
	if count >= inlineCountMax {
		if err := varint.WriteUint64(w, uint64(count)); err != nil {
			return err
		}
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

// DecodeNode reads a node blob (the type-tag byte having already been
// confirmed to carry the node tag by the caller) and returns the node's
// id and tag payload.
func DecodeNode(r io.Reader, pools *Pools) (uint64, NodeFields, error) {
	var header [1]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return 0, nil, gerrors.NewMalformedInputError(err, "node-header", 0)
	}
	if peekBlobTypeTag(header[0]) != blobTypeNode {
		return 0, nil, gerrors.NewMalformedInputError(nil, "node-header", 0).
			WithMessage("blob type tag was not a node")
	}

	id, err := varint.ReadUint64(r)
	if err != nil {
		return 0, nil, err
	}

	if header[0]&nodeMultipleFlag == 0 {
		single := NodeSingleInlined(header[0] & 0b111)
		if single == 0 {
			return id, NodeNoTags{}, nil
		}
		return id, NodeSingleTag{Tag: single}, nil
	}

	count := int(header[0] & 0b111)
	if count == 0b111 {
		n, err := varint.ReadUint64(r)
		if err != nil {
			return 0, nil, err
		}
		count = int(n)
	}

	fields := make([]Field, 0, count)
	for i := 0; i < count; i++ {
		fieldID, err := varint.ReadUint64(r)
		if err != nil {
			return 0, nil, err
		}
		f, err := pools.GetField(pool.ID(fieldID))
		if err != nil {
			return 0, nil, err
		}
		fields = append(fields, f)
	}

	return id, NodeMultipleTags{Fields: fields}, nil
}
