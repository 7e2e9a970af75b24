package osmcodec

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLiteralValueFromTagRoundTripSmallIntegers(t *testing.T) {
	for n := -100; n <= 100; n++ {
		n := n
		t.Run(strconv.Itoa(n), func(t *testing.T) {
			v := LiteralValueFromTag(strconv.Itoa(n))

			encoded := EncodeLiteralValue(v)
			decoded, err := DecodeLiteralValue(encoded)
			require.NoError(t, err)
			require.Equal(t, strconv.Itoa(n), decoded.AsString())

			num, ok := decoded.AsNumber()
			require.True(t, ok)
			require.EqualValues(t, n, num)
		})
	}
}

func TestLiteralValueFromTagNiches(t *testing.T) {
	cases := []struct {
		value string
		kind  literalKind
	}{
		{"", literalKindBlank},
		{"yes", literalKindBoolYes},
		{"no", literalKindBoolNo},
		{"0", literalKindTinyUNumber},
		{"15", literalKindTinyUNumber},
		{"16", literalKindUInt},
		{"-1", literalKindTinyINumber},
		{"-7", literalKindTinyINumber},
		{"-8", literalKindIInt},
		{"US", literalKindTwoUpperAbbrev},
		{"hello", literalKindString},
	}

	for _, c := range cases {
		t.Run(c.value, func(t *testing.T) {
			v := LiteralValueFromTag(c.value)
			require.Equal(t, c.kind, v.kind)

			decoded, err := DecodeLiteralValue(EncodeLiteralValue(v))
			require.NoError(t, err)
			require.Equal(t, c.value, decoded.AsString())
		})
	}
}

func TestLiteralValueTwoUpperAbbrevRoundTrip(t *testing.T) {
	v := LiteralValueFromTag("CA")
	decoded, err := DecodeLiteralValue(EncodeLiteralValue(v))
	require.NoError(t, err)
	require.Equal(t, "CA", decoded.AsString())
}

func TestLiteralValueStringRoundTrip(t *testing.T) {
	v := NewString("a long free-form string value that isn't niched")
	decoded, err := DecodeLiteralValue(EncodeLiteralValue(v))
	require.NoError(t, err)
	require.Equal(t, v.AsString(), decoded.AsString())
}

func TestLiteralValueRefRoundTrip(t *testing.T) {
	v := NewRef(123456789)
	decoded, err := DecodeLiteralValue(EncodeLiteralValue(v))
	require.NoError(t, err)
	require.Equal(t, "123456789", decoded.AsString())
}

func TestLiteralValueLargeUIntRoundTrip(t *testing.T) {
	v := NewUInt(1 << 40)
	decoded, err := DecodeLiteralValue(EncodeLiteralValue(v))
	require.NoError(t, err)
	num, ok := decoded.AsNumber()
	require.True(t, ok)
	require.EqualValues(t, 1<<40, num)
}

func TestLiteralValueLargeIIntRoundTrip(t *testing.T) {
	v := NewIInt(-(1 << 40))
	decoded, err := DecodeLiteralValue(EncodeLiteralValue(v))
	require.NoError(t, err)
	num, ok := decoded.AsNumber()
	require.True(t, ok)
	require.EqualValues(t, -(1 << 40), num)
}
