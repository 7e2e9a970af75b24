package varint_test

import (
	"bytes"
	"math"
	"testing"

	"github.com/chlohal/geostore/pkg/varint"
	"github.com/stretchr/testify/require"
)

func TestUint64RoundTrip(t *testing.T) {
	values := []uint64{0, 1, 127, 128, 300, 1 << 20, math.MaxUint32, math.MaxUint64}
	for _, v := range values {
		var buf bytes.Buffer
		require.NoError(t, varint.WriteUint64(&buf, v))
		require.LessOrEqual(t, buf.Len(), 10)

		got, err := varint.ReadUint64(&buf)
		require.NoError(t, err)
		require.Equal(t, v, got)
	}
}

func TestInt64RoundTrip(t *testing.T) {
	values := []int64{0, 1, -1, 63, -63, 1 << 40, -(1 << 40), math.MinInt64, math.MaxInt64}
	for _, v := range values {
		var buf bytes.Buffer
		require.NoError(t, varint.WriteInt64(&buf, v))

		got, err := varint.ReadInt64(&buf)
		require.NoError(t, err)
		require.Equal(t, v, got)
	}
}

func TestInt32RoundTrip(t *testing.T) {
	values := []int32{0, 1, -1, 1000, -1000, math.MinInt32, math.MaxInt32}
	for _, v := range values {
		var buf bytes.Buffer
		require.NoError(t, varint.WriteInt32(&buf, v))

		got, err := varint.ReadInt32(&buf)
		require.NoError(t, err)
		require.Equal(t, v, got)
	}
}

func TestTruncatedStreamIsMalformed(t *testing.T) {
	buf := bytes.NewReader([]byte{0x80, 0x80})
	_, err := varint.ReadUint64(buf)
	require.Error(t, err)
}

func TestEncodedLenMatchesActualOutput(t *testing.T) {
	values := []uint64{0, 1, 127, 128, 16384, math.MaxUint64}
	for _, v := range values {
		var buf bytes.Buffer
		require.NoError(t, varint.WriteUint64(&buf, v))
		require.Equal(t, buf.Len(), varint.EncodedLenUint64(v))
	}
}
