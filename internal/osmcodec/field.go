package osmcodec

import (
	"io"

	"github.com/chlohal/geostore/internal/pool"
	gerrors "github.com/chlohal/geostore/pkg/errors"
	"github.com/chlohal/geostore/pkg/varint"
)

// fieldTag is the single discriminant byte that opens a Field's
// serialized form (0 for Other, 1..8 for the structured kinds), per
// §4.8: "a field is encoded into a packed header word plus a body
// whose shape is chosen by the field kind."
type fieldTag byte

const (
	fieldTagOther       fieldTag = 0
	fieldTagAddress     fieldTag = 1
	fieldTagContact     fieldTag = 2
	fieldTagColor       fieldTag = 3
	fieldTagDate        fieldTag = 4
	fieldTagLocalized   fieldTag = 5
	fieldTagAccess      fieldTag = 6
	fieldTagDirectional fieldTag = 7
	fieldTagMultiYes    fieldTag = 8
)

// Field is a single tag-derived attribute, either a free-form key/value
// pair (OtherField) or one of the schema's well-known structured
// shapes. It mirrors the source's `Field::Other` / `Field::Field` sum
// type (field.rs), generalized here to cover every structured kind
// spec §4.8 names rather than only the two the retrieved slice shows.
type Field interface {
	fieldTagOf() fieldTag
}

// OtherField is a free-form key/value pair that doesn't match any
// schema-recognized field. Per spec §6 and the source's field.rs, both
// the key and the value independently go through the literal pool.
type OtherField struct {
	Key   LiteralValue
	Value LiteralValue
}

func (OtherField) fieldTagOf() fieldTag { return fieldTagOther }

// EncodeField writes f's packed header and body to w, inserting any
// LiteralValue sub-fields into pools.Literals as it goes.
func EncodeField(w io.Writer, pools *Pools, f Field) error {
	switch v := f.(type) {
	case OtherField:
		if _, err := w.Write([]byte{byte(fieldTagOther)}); err != nil {
			return err
		}
		return encodeOtherField(w, pools, v)

	case *Address:
		return writeFieldTag(w, fieldTagAddress, func() error { return v.Encode(w, pools) })
	case *Contact:
		return writeFieldTag(w, fieldTagContact, func() error { return v.Encode(w, pools) })
	case Color:
		return writeFieldTag(w, fieldTagColor, func() error { return v.Encode(w) })
	case Date:
		return writeFieldTag(w, fieldTagDate, func() error { return v.Encode(w) })
	case *LocalizedString:
		return writeFieldTag(w, fieldTagLocalized, func() error { return v.Encode(w, pools) })
	case AccessCombo:
		return writeFieldTag(w, fieldTagAccess, func() error { return v.Encode(w) })
	case DirectionalCombo:
		return writeFieldTag(w, fieldTagDirectional, func() error { return v.Encode(w) })
	case MultiYesCombo:
		return writeFieldTag(w, fieldTagMultiYes, func() error { return v.Encode(w) })

	default:
		return gerrors.NewEngineError(nil, gerrors.ErrorCodeInternal, "unknown field implementation")
	}
}

func writeFieldTag(w io.Writer, tag fieldTag, body func() error) error {
	if _, err := w.Write([]byte{byte(tag)}); err != nil {
		return err
	}
	return body()
}

func encodeOtherField(w io.Writer, pools *Pools, f OtherField) error {
	keyID, err := pools.InsertLiteral(f.Key)
	if err != nil {
		return err
	}
	if err := varint.WriteUint64(w, uint64(keyID)); err != nil {
		return err
	}
	valueID, err := pools.InsertLiteral(f.Value)
	if err != nil {
		return err
	}
	return varint.WriteUint64(w, uint64(valueID))
}

// DecodeField reads a field tag and dispatches to the matching
// structured decoder.
func DecodeField(r io.Reader, pools *Pools) (Field, error) {
	var tagByte [1]byte
	if _, err := io.ReadFull(r, tagByte[:]); err != nil {
		return nil, gerrors.NewMalformedInputError(err, "field-tag", 0)
	}

	switch fieldTag(tagByte[0]) {
	case fieldTagOther:
		return decodeOtherField(r, pools)
	case fieldTagAddress:
		return DecodeAddress(r, pools)
	case fieldTagContact:
		return DecodeContact(r, pools)
	case fieldTagColor:
		return DecodeColor(r)
	case fieldTagDate:
		return DecodeDate(r)
	case fieldTagLocalized:
		return DecodeLocalizedString(r, pools)
	case fieldTagAccess:
		return DecodeAccessCombo(r)
	case fieldTagDirectional:
		return DecodeDirectionalCombo(r)
	case fieldTagMultiYes:
		return DecodeMultiYesCombo(r)
	default:
		return nil, gerrors.NewMalformedInputError(nil, "field-tag", 0).
			WithMessage("unknown field tag byte")
	}
}

func decodeOtherField(r io.Reader, pools *Pools) (Field, error) {
	keyID, err := varint.ReadUint64(r)
	if err != nil {
		return nil, err
	}
	key, err := pools.GetLiteral(pool.ID(keyID))
	if err != nil {
		return nil, err
	}

	valueID, err := varint.ReadUint64(r)
	if err != nil {
		return nil, err
	}
	value, err := pools.GetLiteral(pool.ID(valueID))
	if err != nil {
		return nil, err
	}

	return OtherField{Key: key, Value: value}, nil
}
