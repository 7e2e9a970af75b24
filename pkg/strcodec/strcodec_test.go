package strcodec_test

import (
	"bytes"
	"testing"

	"github.com/chlohal/geostore/pkg/strcodec"
	"github.com/stretchr/testify/require"
)

func TestRoundTripAllVariants(t *testing.T) {
	cases := []string{
		"",
		"x",
		"5",
		"12025550123",    // phone digits
		"40.7128,-74.01", // numeric
		"A1-B2",          // identifier
		"main_st",        // five-bit lowercase latin, rem 1
		"ab",             // five-bit, rem 2
		"abc",            // five-bit, rem 0
		"abcd",           // five-bit, rem 1
		"Hello, World!",  // ascii varint (mixed case forces fallback past fixed alphabets)
		"café 中文", // utf-8 fallback
	}

	for _, s := range cases {
		for nibble := byte(0); nibble < 8; nibble++ {
			var buf bytes.Buffer
			require.NoError(t, strcodec.Serialize(&buf, s, nibble), "serialize %q", s)

			got, gotNibble, err := strcodec.Deserialize(&buf)
			require.NoError(t, err, "deserialize %q", s)
			require.Equal(t, s, got)
			require.Equal(t, nibble, gotNibble)
			require.Equal(t, 0, buf.Len(), "entire body must be consumed for %q", s)
		}
	}
}

func TestSequentialStringsDoNotBleedIntoEachOther(t *testing.T) {
	var buf bytes.Buffer
	inputs := []string{"ab", "Hello there", "", "x", "main_st_ne"}
	for _, s := range inputs {
		require.NoError(t, strcodec.Serialize(&buf, s, 3))
	}

	for _, want := range inputs {
		got, nibble, err := strcodec.Deserialize(&buf)
		require.NoError(t, err)
		require.Equal(t, want, got)
		require.Equal(t, byte(3), nibble)
	}
	require.Equal(t, 0, buf.Len())
}

func TestUnknownVariantIsMalformed(t *testing.T) {
	buf := bytes.NewBuffer([]byte{0b000_11001}) // variant 25, undefined
	_, _, err := strcodec.Deserialize(buf)
	require.Error(t, err)
}
