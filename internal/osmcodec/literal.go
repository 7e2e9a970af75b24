// Package osmcodec implements spec §4.8's compressed map-object encoding:
// the node/way/relation blob layouts, the field and literal-value pool
// wiring, and the structured-field codecs (address, contact, color,
// localized string, and the combo enumerations) that the `iD` tagging
// schema would otherwise generate. The schema-code generator itself is
// an external collaborator per spec §1's scope boundary; this package
// hand-writes the fixed, high-frequency subset of structured fields
// spec §4.8 and §6 name explicitly, and falls back to free-form
// key/value pairs (Field.Other) for everything else.
package osmcodec

import (
	"bytes"
	"io"
	"strconv"

	gerrors "github.com/chlohal/geostore/pkg/errors"
	"github.com/chlohal/geostore/pkg/strcodec"
	"github.com/chlohal/geostore/pkg/varint"
)

// literalKind is the top nibble of a LiteralValue's header byte,
// selecting which of the small fixed-shape variants follows.
type literalKind byte

const (
	literalKindBlank          literalKind = 0x0
	literalKindBoolNo         literalKind = 0x1
	literalKindBoolYes        literalKind = 0x2
	literalKindUInt           literalKind = 0x3
	literalKindIInt           literalKind = 0x4
	literalKindTinyUNumber    literalKind = 0x5
	literalKindTinyINumber    literalKind = 0x6
	literalKindTwoUpperAbbrev literalKind = 0xA
	literalKindRef            literalKind = 0xB
	literalKindString         literalKind = 0xC
)

// LiteralValue is the atomic value type a Field's sub-attributes and
// free-form tag values resolve to. Niche-encoded cases (blank, yes/no,
// small numbers, two-letter abbreviations like "US" or "CA") avoid ever
// touching the string codec; everything else falls through to it.
type LiteralValue struct {
	kind literalKind

	uintVal   uint64
	intVal    int64
	abbrevA   byte
	abbrevB   byte
	stringVal string
}

// Blank is the literal value produced by an empty tag value.
var Blank = LiteralValue{kind: literalKindBlank}

// BoolYes is the literal value produced by a tag value of "yes".
var BoolYes = LiteralValue{kind: literalKindBoolYes}

// BoolNo is the literal value produced by a tag value of "no".
var BoolNo = LiteralValue{kind: literalKindBoolNo}

// NewUInt returns the literal value for a non-negative integer.
func NewUInt(v uint64) LiteralValue { return LiteralValue{kind: literalKindUInt, uintVal: v} }

// NewIInt returns the literal value for a negative integer.
func NewIInt(v int64) LiteralValue { return LiteralValue{kind: literalKindIInt, intVal: v} }

// NewRef returns the literal value referencing another object's id,
// used by fields like `ref` that point at an external identifier space.
func NewRef(v uint64) LiteralValue { return LiteralValue{kind: literalKindRef, uintVal: v} }

// NewString returns the literal value for an arbitrary string, after
// the niche cases in LiteralValueFromTag have been ruled out.
func NewString(s string) LiteralValue { return LiteralValue{kind: literalKindString, stringVal: s} }

// LiteralValueFromTag converts a raw OSM tag value into its most
// compact LiteralValue representation, trying each niche in the same
// order the original tag-value classifier did: blank/yes/no, small
// signed or unsigned integers, two-uppercase-letter abbreviations
// (ISO country/region codes), then a plain string.
func LiteralValueFromTag(value string) LiteralValue {
	switch value {
	case "":
		return Blank
	case "yes":
		return BoolYes
	case "no":
		return BoolNo
	}

	if n, err := strconv.ParseInt(value, 10, 64); err == nil {
		switch {
		case n >= 0 && n < 0b1_0000:
			// TinyUNumber's low nibble is the whole value: 4 bits, 0..15.
			return LiteralValue{kind: literalKindTinyUNumber, uintVal: uint64(n)}
		case n >= -0b111 && n < 0:
			// TinyINumber's low nibble is a sign bit plus 3 magnitude bits,
			// so the representable magnitude is 0..7; zero is already
			// claimed by TinyUNumber above, leaving -7..-1 here.
			return LiteralValue{kind: literalKindTinyINumber, intVal: n}
		case n >= 0:
			return NewUInt(uint64(n))
		default:
			return NewIInt(n)
		}
	}

	if len(value) == 2 && isAsciiUpperAlpha(value) {
		return LiteralValue{kind: literalKindTwoUpperAbbrev, abbrevA: value[0], abbrevB: value[1]}
	}

	return NewString(value)
}

func isAsciiUpperAlpha(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return false
		}
	}
	return true
}

// AsString renders the literal value back into its original tag-value
// text, the inverse of LiteralValueFromTag.
func (v LiteralValue) AsString() string {
	switch v.kind {
	case literalKindBlank:
		return ""
	case literalKindBoolYes:
		return "yes"
	case literalKindBoolNo:
		return "no"
	case literalKindUInt:
		return strconv.FormatUint(v.uintVal, 10)
	case literalKindIInt:
		return strconv.FormatInt(v.intVal, 10)
	case literalKindTinyUNumber:
		return strconv.FormatUint(v.uintVal, 10)
	case literalKindTinyINumber:
		return strconv.FormatInt(v.intVal, 10)
	case literalKindTwoUpperAbbrev:
		return string([]byte{v.abbrevA, v.abbrevB})
	case literalKindRef:
		return strconv.FormatUint(v.uintVal, 10)
	default:
		return v.stringVal
	}
}

// AsNumber returns the literal's numeric value when it holds one,
// parsing its string form as a last resort the way the source's
// as_number did.
func (v LiteralValue) AsNumber() (int64, bool) {
	switch v.kind {
	case literalKindUInt:
		return int64(v.uintVal), true
	case literalKindIInt:
		return v.intVal, true
	case literalKindTinyUNumber:
		return int64(v.uintVal), true
	case literalKindTinyINumber:
		return v.intVal, true
	case literalKindString:
		n, err := strconv.ParseInt(v.stringVal, 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}

// EncodeLiteralValue serializes v to its minimal wire encoding, the
// byte slice handed to the literal-value pool's Insert.
func EncodeLiteralValue(v LiteralValue) []byte {
	var buf bytes.Buffer

	switch v.kind {
	case literalKindBlank, literalKindBoolNo, literalKindBoolYes:
		buf.WriteByte(byte(v.kind) << 4)

	case literalKindUInt:
		buf.WriteByte(byte(literalKindUInt) << 4)
		varint.WriteUint64(&buf, v.uintVal)

	case literalKindIInt:
		buf.WriteByte(byte(literalKindIInt) << 4)
		varint.WriteInt64(&buf, v.intVal)

	case literalKindTinyUNumber:
		buf.WriteByte(byte(literalKindTinyUNumber)<<4 | byte(v.uintVal&0xf))

	case literalKindTinyINumber:
		n := v.intVal
		sign := byte(0)
		mag := n
		if n < 0 {
			sign = 0x8
			mag = -n
		}
		buf.WriteByte(byte(literalKindTinyINumber)<<4 | sign | byte(mag&0x7))

	case literalKindTwoUpperAbbrev:
		buf.WriteByte(byte(literalKindTwoUpperAbbrev) << 4)
		buf.WriteByte(v.abbrevA)
		buf.WriteByte(v.abbrevB)

	case literalKindRef:
		buf.WriteByte(byte(literalKindRef) << 4)
		varint.WriteUint64(&buf, v.uintVal)

	case literalKindString:
		buf.WriteByte(byte(literalKindString) << 4)
		strcodec.Serialize(&buf, v.stringVal, 0)
	}

	return buf.Bytes()
}

// DecodeLiteralValue is the inverse of EncodeLiteralValue.
func DecodeLiteralValue(b []byte) (LiteralValue, error) {
	r := bytes.NewReader(b)
	return decodeLiteralValue(r)
}

func decodeLiteralValue(r io.Reader) (LiteralValue, error) {
	var header [1]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return LiteralValue{}, gerrors.NewMalformedInputError(err, "literal-value-header", 0)
	}

	kind := literalKind(header[0] >> 4)
	lowNibble := header[0] & 0xf

	switch kind {
	case literalKindBlank:
		return Blank, nil
	case literalKindBoolNo:
		return BoolNo, nil
	case literalKindBoolYes:
		return BoolYes, nil

	case literalKindUInt:
		v, err := varint.ReadUint64(r)
		if err != nil {
			return LiteralValue{}, err
		}
		return NewUInt(v), nil

	case literalKindIInt:
		v, err := varint.ReadInt64(r)
		if err != nil {
			return LiteralValue{}, err
		}
		return NewIInt(v), nil

	case literalKindTinyUNumber:
		return LiteralValue{kind: literalKindTinyUNumber, uintVal: uint64(lowNibble & 0xf)}, nil

	case literalKindTinyINumber:
		mag := int64(lowNibble & 0x7)
		if lowNibble&0x8 != 0 {
			mag = -mag
		}
		return LiteralValue{kind: literalKindTinyINumber, intVal: mag}, nil

	case literalKindTwoUpperAbbrev:
		var ab [2]byte
		if _, err := io.ReadFull(r, ab[:]); err != nil {
			return LiteralValue{}, gerrors.NewMalformedInputError(err, "literal-value-abbrev", 1)
		}
		return LiteralValue{kind: literalKindTwoUpperAbbrev, abbrevA: ab[0], abbrevB: ab[1]}, nil

	case literalKindRef:
		v, err := varint.ReadUint64(r)
		if err != nil {
			return LiteralValue{}, err
		}
		return NewRef(v), nil

	case literalKindString:
		s, _, err := strcodec.Deserialize(r)
		if err != nil {
			return LiteralValue{}, err
		}
		return NewString(s), nil

	default:
		return LiteralValue{}, gerrors.NewMalformedInputError(nil, "literal-value-header", 0).
			WithMessage("unknown literal value kind nibble")
	}
}
