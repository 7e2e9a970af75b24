// Package varint implements the big-endian, continuation-bit variable
// length integer encoding used throughout the on-disk formats in this
// module: page ids, child counts, string lengths, and field references
// are all varints.
//
// Each byte carries 7 bits of payload in its low bits; bit 7 ("more
// follows") is set on every byte except the last. Bytes are emitted
// most-significant-group first, so the encoded form is directly
// comparable byte-by-byte for values of equal encoded length.
//
// Signed values are mapped to unsigned ones with a bit rotation rather
// than the more common XOR zig-zag: the unsigned-cast value is rotated
// left by one bit before encoding, and rotated right by one after
// decoding. This keeps the sign bit in the low bit of the encoding
// (matching the source this format was ported from). Small non-negative
// values stay small (v becomes 2v), but a negative value keeps its high
// bits set: -1 becomes the all-ones value and takes the full ten bytes.
package varint

import (
	"bufio"
	"io"
	"math/bits"

	gerrors "github.com/chlohal/geostore/pkg/errors"
)

// continuationBit marks "more bytes follow" in the high bit of a varint
// byte.
const continuationBit = 0x80

// payloadMask extracts the 7 payload bits of a varint byte.
const payloadMask = 0x7f

// WriteUint64 writes v as an unsigned varint to w.
func WriteUint64(w io.Writer, v uint64) error {
	var buf [10]byte
	n := len(buf) - 1
	buf[n] = byte(v & payloadMask)
	for v >>= 7; v != 0; v >>= 7 {
		n--
		buf[n] = byte(v&payloadMask) | continuationBit
	}
	_, err := w.Write(buf[n:])
	return err
}

// WriteUint32 writes v as an unsigned varint to w.
func WriteUint32(w io.Writer, v uint32) error { return WriteUint64(w, uint64(v)) }

// WriteUint writes v as an unsigned varint to w.
func WriteUint(w io.Writer, v uint) error { return WriteUint64(w, uint64(v)) }

// WriteInt64 zig-zags v (via left rotation of its unsigned bit pattern)
// and writes it as an unsigned varint.
func WriteInt64(w io.Writer, v int64) error {
	return WriteUint64(w, bits.RotateLeft64(uint64(v), 1))
}

// WriteInt32 zig-zags v and writes it as an unsigned varint.
func WriteInt32(w io.Writer, v int32) error {
	return WriteUint64(w, uint64(bits.RotateLeft32(uint32(v), 1)))
}

// byteReader adapts an io.Reader lacking ReadByte into one that has it,
// mirroring the bufio.Reader fallback idiom used across the standard
// library's varint-adjacent readers.
func byteReader(r io.Reader) io.ByteReader {
	if br, ok := r.(io.ByteReader); ok {
		return br
	}
	return bufio.NewReader(r)
}

// ReadUint64 reads an unsigned varint from r. Returns MalformedInput if
// the stream ends before a terminal byte (continuation bit unset) is
// seen.
func ReadUint64(r io.Reader) (uint64, error) {
	br := byteReader(r)

	var result uint64
	for i := 0; i < 10; i++ {
		b, err := br.ReadByte()
		if err != nil {
			if err == io.EOF && i > 0 {
				return 0, gerrors.NewMalformedInputError(err, "varint", int64(i)).
					WithMessage("varint truncated mid-sequence")
			}
			return 0, err
		}
		result = result<<7 | uint64(b&payloadMask)
		if b&continuationBit == 0 {
			return result, nil
		}
	}
	return 0, gerrors.NewMalformedInputError(nil, "varint", 10).
		WithMessage("varint exceeded maximum encoded length")
}

// ReadUint32 reads an unsigned varint from r and narrows it to 32 bits.
func ReadUint32(r io.Reader) (uint32, error) {
	v, err := ReadUint64(r)
	return uint32(v), err
}

// ReadUint reads an unsigned varint from r and narrows it to the
// platform int size.
func ReadUint(r io.Reader) (uint, error) {
	v, err := ReadUint64(r)
	return uint(v), err
}

// ReadInt64 reads a rotate-left-zig-zagged varint and un-rotates it back
// to a signed 64-bit value.
func ReadInt64(r io.Reader) (int64, error) {
	v, err := ReadUint64(r)
	if err != nil {
		return 0, err
	}
	return int64(bits.RotateLeft64(v, -1)), nil
}

// ReadInt32 reads a rotate-left-zig-zagged varint and un-rotates it back
// to a signed 32-bit value.
func ReadInt32(r io.Reader) (int32, error) {
	v, err := ReadUint64(r)
	if err != nil {
		return 0, err
	}
	return int32(bits.RotateLeft32(uint32(v), -1)), nil
}

// EncodedLenUint64 returns the number of bytes WriteUint64 would emit
// for v, without allocating.
func EncodedLenUint64(v uint64) int {
	n := 1
	for v >>= 7; v != 0; v >>= 7 {
		n++
	}
	return n
}
