package bitsection_test

import (
	"testing"

	"github.com/chlohal/geostore/pkg/bitsection"
	"github.com/stretchr/testify/require"
)

func TestHeaderPreservesCallerNibble(t *testing.T) {
	h := bitsection.NewHeader(0b1011_0000)
	h = h.SetLow(0b0000_0101)

	require.Equal(t, byte(0b1011), h.High())
	require.Equal(t, byte(0b0101), h.Low())
	require.Equal(t, byte(0b1011_0101), h.Byte())
}

func TestGetSetBitsRoundTrip(t *testing.T) {
	var v uint64
	v = bitsection.SetBits(v, 4, 10, 0b101011)
	require.Equal(t, uint64(0b101011), bitsection.GetBits(v, 4, 10))

	// Bits outside the range are untouched.
	v = bitsection.SetBits(v, 0, 4, 0b1111)
	require.Equal(t, uint64(0b1111), bitsection.GetBits(v, 0, 4))
	require.Equal(t, uint64(0b101011), bitsection.GetBits(v, 4, 10))
}

func TestSetBitGetBit(t *testing.T) {
	var v uint64
	v = bitsection.SetBit(v, 3, true)
	require.True(t, bitsection.GetBit(v, 3))
	v = bitsection.SetBit(v, 3, false)
	require.False(t, bitsection.GetBit(v, 3))
}

func TestMask(t *testing.T) {
	require.Equal(t, uint64(0), bitsection.Mask(0))
	require.Equal(t, uint64(0b111), bitsection.Mask(3))
	require.Equal(t, ^uint64(0), bitsection.Mask(64))
}

func TestCopyBits(t *testing.T) {
	dst := uint64(0xFF00)
	src := uint64(0x00AB)
	got := bitsection.CopyBits(dst, src, 0, 8)
	require.Equal(t, uint64(0xFFAB), got)
}
