// Package strcodec implements the priority-ordered string encoding used
// for map-object attribute values: a single header byte selects one of
// five variants in its low 5 bits, leaving the high 3 bits free for the
// caller to pack its own flag bits into the same byte (the header
// nibble convention shared with pkg/bitsection and the field codecs in
// internal/osmcodec).
//
// Variants, tried in this order when encoding a string so the smallest
// representation always wins:
//
//  1. single ASCII character
//  2. fixed-alphabet nibble encodings (phone digits / mostly numeric /
//     numeric identifier), two characters packed per body byte
//  3. five-bit lowercase-latin, three characters packed per 16-bit body
//     section
//  4. ASCII varint string, one body byte per character with the
//     end-of-string marker on the last byte's high bit
//  5. UTF-8 fallback: varint length prefix then the raw bytes
package strcodec

import (
	"bufio"
	"bytes"
	"io"
	"unicode/utf8"

	gerrors "github.com/chlohal/geostore/pkg/errors"
	"github.com/chlohal/geostore/pkg/varint"
)

type variant byte

const (
	variantSingleChar variant = 0
	variantPhone      variant = 1
	variantNumeric    variant = 2
	variantIdentifier variant = 3
	// Five-bit lowercase-latin carries its remainder count (0, 1, or 2
	// trailing characters that don't fill a full 3-character, 16-bit
	// section) in the variant value itself, consuming three adjacent
	// variant codes.
	variantFiveBitRem0 variant = 4
	variantFiveBitRem1 variant = 5
	variantFiveBitRem2 variant = 6
	variantASCIIVarint variant = 7
	variantUTF8        variant = 8
)

const variantMask = 0x1f

// phoneAlphabet covers phone-number digits plus common punctuation;
// index 0xF is reserved as the nibble-pair terminator.
var phoneAlphabet = [16]byte{'0', '1', '2', '3', '4', '5', '6', '7', '8', '9', '+', '-', '(', ')', ' ', 0}

// numericAlphabet covers a "mostly numeric" value: digits plus a
// decimal point and sign, used for things like numeric address
// fractions.
var numericAlphabet = [16]byte{'0', '1', '2', '3', '4', '5', '6', '7', '8', '9', '.', '-', ',', '/', ' ', 0}

// identifierAlphabet covers alphanumeric identifier fragments commonly
// seen in reference/ref tags.
var identifierAlphabet = [16]byte{'0', '1', '2', '3', '4', '5', '6', '7', '8', '9', 'A', 'B', 'C', 'D', '-', 0}

// fiveBitAlphabet is `a`..`z` plus `: _ - / . space`, 32 entries
// addressable with 5 bits.
var fiveBitAlphabet = buildFiveBitAlphabet()

func buildFiveBitAlphabet() [32]byte {
	var a [32]byte
	for i := 0; i < 26; i++ {
		a[i] = byte('a' + i)
	}
	a[26] = ':'
	a[27] = '_'
	a[28] = '-'
	a[29] = '/'
	a[30] = '.'
	a[31] = ' '
	return a
}

func reverseAlphabet16(table [16]byte) map[byte]byte {
	m := make(map[byte]byte, 16)
	for i, c := range table {
		if i == 0xF {
			continue
		}
		m[c] = byte(i)
	}
	return m
}

func reverseAlphabet32(table [32]byte) map[byte]byte {
	m := make(map[byte]byte, 32)
	for i, c := range table {
		m[c] = byte(i)
	}
	return m
}

var (
	phoneReverse      = reverseAlphabet16(phoneAlphabet)
	numericReverse    = reverseAlphabet16(numericAlphabet)
	identifierReverse = reverseAlphabet16(identifierAlphabet)
	fiveBitReverse    = reverseAlphabet32(fiveBitAlphabet)
)

func allIn(s string, rev map[byte]byte) bool {
	for i := 0; i < len(s); i++ {
		if _, ok := rev[s[i]]; !ok {
			return false
		}
	}
	return true
}

// Serialize writes s preceded by a header byte carrying callerNibble
// (0..7) in its high 3 bits, choosing the smallest variant that can
// represent s losslessly.
func Serialize(w io.Writer, s string, callerNibble byte) error {
	header := (callerNibble & 0x7) << 5

	switch {
	// The empty string can't self-terminate inside the nibble-pair or
	// five-bit body encodings (there is no byte to carry a terminator),
	// so it always takes the explicit length-prefixed path.
	case len(s) == 0:
		return serializeUTF8(w, header, s)

	case len(s) == 1 && s[0] < 0x80:
		return writeHeaderAndBody(w, header|byte(variantSingleChar), []byte{s[0]})

	case allIn(s, phoneReverse):
		return serializeNibblePairs(w, header|byte(variantPhone), s, phoneReverse)

	case allIn(s, numericReverse):
		return serializeNibblePairs(w, header|byte(variantNumeric), s, numericReverse)

	case allIn(s, identifierReverse):
		return serializeNibblePairs(w, header|byte(variantIdentifier), s, identifierReverse)

	case allIn(s, fiveBitReverse):
		return serializeFiveBit(w, header, s)

	case isASCII(s):
		return serializeASCIIVarint(w, header, s)

	default:
		return serializeUTF8(w, header, s)
	}
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

func writeHeaderAndBody(w io.Writer, header byte, body []byte) error {
	if _, err := w.Write([]byte{header}); err != nil {
		return err
	}
	_, err := w.Write(body)
	return err
}

func serializeNibblePairs(w io.Writer, header byte, s string, rev map[byte]byte) error {
	body := make([]byte, 0, len(s)/2+1)
	i := 0
	for ; i+1 < len(s); i += 2 {
		body = append(body, (rev[s[i]]<<4)|rev[s[i+1]])
	}
	// Always terminate explicitly: a dangling single character packs its
	// nibble into the high half with the terminator in the low half;
	// an even-length string needs a dedicated terminator-only byte, since
	// otherwise nothing in the stream would mark the string's end.
	if i < len(s) {
		body = append(body, (rev[s[i]]<<4)|0xF)
	} else {
		body = append(body, 0xFF)
	}
	return writeHeaderAndBody(w, header, body)
}

func serializeFiveBit(w io.Writer, header byte, s string) error {
	rem := len(s) % 3
	full := len(s) / 3

	var variantByte byte
	switch rem {
	case 0:
		variantByte = header | byte(variantFiveBitRem0)
	case 1:
		variantByte = header | byte(variantFiveBitRem1)
	case 2:
		variantByte = header | byte(variantFiveBitRem2)
	}

	var body bytes.Buffer
	for i := 0; i < full; i++ {
		a := fiveBitReverse[s[i*3]]
		b := fiveBitReverse[s[i*3+1]]
		c := fiveBitReverse[s[i*3+2]]
		section := uint16(a)<<11 | uint16(b)<<6 | uint16(c)<<1
		if i == full-1 && rem == 0 {
			section |= 1 // final-section sentinel bit
		}
		body.WriteByte(byte(section >> 8))
		body.WriteByte(byte(section))
	}

	if rem > 0 {
		var a, b uint16
		a = uint16(fiveBitReverse[s[full*3]])
		if rem == 2 {
			b = uint16(fiveBitReverse[s[full*3+1]])
		}
		section := a<<11 | b<<6
		section |= 1 // final-section sentinel bit
		body.WriteByte(byte(section >> 8))
		body.WriteByte(byte(section))
	}

	return writeHeaderAndBody(w, variantByte, body.Bytes())
}

func serializeASCIIVarint(w io.Writer, header byte, s string) error {
	body := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		b := s[i] & 0x7f
		if i == len(s)-1 {
			b |= 0x80
		}
		body[i] = b
	}
	return writeHeaderAndBody(w, header|byte(variantASCIIVarint), body)
}

func serializeUTF8(w io.Writer, header byte, s string) error {
	if _, err := w.Write([]byte{header | byte(variantUTF8)}); err != nil {
		return err
	}
	if err := varint.WriteUint64(w, uint64(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func byteReader(r io.Reader) io.ByteReader {
	if br, ok := r.(io.ByteReader); ok {
		return br
	}
	return bufio.NewReader(r)
}

// Deserialize reads a header byte and its body from r, returning the
// decoded string and the caller nibble that was packed into the
// header's high 3 bits.
func Deserialize(r io.Reader) (string, byte, error) {
	br := byteReader(r)

	headerByte, err := br.ReadByte()
	if err != nil {
		return "", 0, gerrors.NewMalformedInputError(err, "string-header", 0)
	}
	callerNibble := (headerByte >> 5) & 0x7
	v := variant(headerByte & variantMask)

	switch v {
	case variantSingleChar:
		c, err := br.ReadByte()
		if err != nil {
			return "", 0, gerrors.NewMalformedInputError(err, "string-single-char", 1)
		}
		return string([]byte{c}), callerNibble, nil

	case variantPhone:
		s, err := deserializeNibblePairs(br, phoneAlphabet)
		return s, callerNibble, err

	case variantNumeric:
		s, err := deserializeNibblePairs(br, numericAlphabet)
		return s, callerNibble, err

	case variantIdentifier:
		s, err := deserializeNibblePairs(br, identifierAlphabet)
		return s, callerNibble, err

	case variantFiveBitRem0, variantFiveBitRem1, variantFiveBitRem2:
		s, err := deserializeFiveBit(br, v)
		return s, callerNibble, err

	case variantASCIIVarint:
		s, err := deserializeASCIIVarint(br)
		return s, callerNibble, err

	case variantUTF8:
		s, err := deserializeUTF8(br)
		return s, callerNibble, err

	default:
		return "", 0, gerrors.NewMalformedInputError(nil, "string-header", 0).
			WithMessage("unknown string codec variant nibble")
	}
}

func deserializeNibblePairs(br io.ByteReader, table [16]byte) (string, error) {
	var out []byte
	for {
		b, err := br.ReadByte()
		if err != nil {
			return "", gerrors.NewMalformedInputError(err, "string-nibble-pair", int64(len(out)))
		}
		hi := b >> 4
		lo := b & 0xf
		if hi == 0xF {
			return string(out), nil
		}
		out = append(out, table[hi])
		if lo == 0xF {
			return string(out), nil
		}
		out = append(out, table[lo])
	}
}

func deserializeFiveBit(br io.ByteReader, v variant) (string, error) {
	var out []byte
	for {
		hiByte, err := br.ReadByte()
		if err != nil {
			return "", gerrors.NewMalformedInputError(err, "string-fivebit", int64(len(out)))
		}
		loByte, err := br.ReadByte()
		if err != nil {
			return "", gerrors.NewMalformedInputError(err, "string-fivebit", int64(len(out)))
		}
		section := uint16(hiByte)<<8 | uint16(loByte)
		a := byte((section >> 11) & 0x1f)
		b := byte((section >> 6) & 0x1f)
		c := byte((section >> 1) & 0x1f)
		final := section&1 != 0

		if final {
			switch v {
			case variantFiveBitRem0:
				out = append(out, fiveBitAlphabet[a], fiveBitAlphabet[b], fiveBitAlphabet[c])
			case variantFiveBitRem1:
				out = append(out, fiveBitAlphabet[a])
			case variantFiveBitRem2:
				out = append(out, fiveBitAlphabet[a], fiveBitAlphabet[b])
			}
			return string(out), nil
		}

		out = append(out, fiveBitAlphabet[a], fiveBitAlphabet[b], fiveBitAlphabet[c])
	}
}

func deserializeASCIIVarint(br io.ByteReader) (string, error) {
	var out []byte
	for {
		b, err := br.ReadByte()
		if err != nil {
			return "", gerrors.NewMalformedInputError(err, "string-ascii-varint", int64(len(out)))
		}
		c := b & 0x7f
		last := b&0x80 != 0
		out = append(out, c)
		if last {
			return string(out), nil
		}
	}
}

func deserializeUTF8(br io.ByteReader) (string, error) {
	r, ok := br.(io.Reader)
	if !ok {
		r = byteReaderAsReader{br}
	}
	n, err := varint.ReadUint64(r)
	if err != nil {
		return "", gerrors.NewMalformedInputError(err, "string-utf8-length", 0)
	}
	buf := make([]byte, n)
	for i := range buf {
		b, err := br.ReadByte()
		if err != nil {
			return "", gerrors.NewMalformedInputError(err, "string-utf8-body", int64(i))
		}
		buf[i] = b
	}
	if !utf8.Valid(buf) {
		return "", gerrors.NewMalformedInputError(nil, "string-utf8-body", int64(n)).
			WithMessage("invalid UTF-8 in string body")
	}
	return string(buf), nil
}

type byteReaderAsReader struct{ io.ByteReader }

func (b byteReaderAsReader) Read(p []byte) (int, error) {
	for i := range p {
		c, err := b.ReadByte()
		if err != nil {
			if i > 0 {
				return i, nil
			}
			return 0, err
		}
		p[i] = c
	}
	return len(p), nil
}
