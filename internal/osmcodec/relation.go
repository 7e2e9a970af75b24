package osmcodec

import (
	"bytes"
	"io"

	"github.com/chlohal/geostore/internal/pool"
	gerrors "github.com/chlohal/geostore/pkg/errors"
	"github.com/chlohal/geostore/pkg/strcodec"
	"github.com/chlohal/geostore/pkg/varint"
)

// RelationMember is one child reference of a relation: its role string
// (often empty), the member's own kind, and its id within that kind's
// space. EncodeRelation flattens Kind/ChildID into the single 64-bit id
// the wire format stores; a caller never constructs the flattened form
// itself.
type RelationMember struct {
	Role    string
	Kind    ObjectKind
	ChildID uint64
}

// EncodeRelation writes a relation blob: header byte, id, field count
// and field-pool-id sequence, then child count followed by a two-phase
// buffer — every member's role string written first, then every
// member's flattened child id appended after — mirroring relation.rs's
// role-then-id buffer-then-append ordering.
func EncodeRelation(w io.Writer, pools *Pools, id uint64, fields []Field, members []RelationMember) error {
	header := byte(0b00_00_0000)
	if _, err := w.Write([]byte{header}); err != nil {
		return err
	}
	if err := varint.WriteUint64(w, id); err != nil {
		return err
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

	if err := varint.WriteUint64(w, uint64(len(members))); err != nil {
		return err
	}

	var idBuf bytes.Buffer
	for _, m := range members {
		flat, err := FlattenID(m.Kind, m.ChildID)
		if err != nil {
			return err
		}
		if err := strcodec.Serialize(w, m.Role, 0); err != nil {
			return err
		}
		if err := varint.WriteUint64(&idBuf, flat); err != nil {
			return err
		}
	}

	_, err := w.Write(idBuf.Bytes())
	return err
}

// DecodeRelation is the inverse of EncodeRelation.
func DecodeRelation(r io.Reader, pools *Pools) (id uint64, fields []Field, members []RelationMember, err error) {
	var header [1]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return 0, nil, nil, gerrors.NewMalformedInputError(err, "relation-header", 0)
	}
	if peekBlobTypeTag(header[0]) != blobTypeRelation {
		return 0, nil, nil, gerrors.NewMalformedInputError(nil, "relation-header", 0).
			WithMessage("blob type tag was not a relation")
	}

	id, err = varint.ReadUint64(r)
	if err != nil {
		return 0, nil, nil, err
	}

	fieldCount, err := varint.ReadUint64(r)
	if err != nil {
		return 0, nil, nil, err
	}
	fields = make([]Field, 0, fieldCount)
	for i := uint64(0); i < fieldCount; i++ {
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

	memberCount, err := varint.ReadUint64(r)
	if err != nil {
		return 0, nil, nil, err
	}

	roles := make([]string, memberCount)
	for i := range roles {
		role, _, err := strcodec.Deserialize(r)
		if err != nil {
			return 0, nil, nil, err
		}
		roles[i] = role
	}

	members = make([]RelationMember, memberCount)
	for i := range members {
		flat, err := varint.ReadUint64(r)
		if err != nil {
			return 0, nil, nil, err
		}
		kind, childID := UnflattenID(flat)
		members[i] = RelationMember{Role: roles[i], Kind: kind, ChildID: childID}
	}

	return id, fields, members, nil
}
