package osmcodec

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/chlohal/geostore/internal/pool"
	"github.com/stretchr/testify/require"
)

// openTestPools opens a fresh pair of on-disk pools under t.TempDir(),
// mirroring internal/tree's openTestTree fixture helper.
func openTestPools(t *testing.T) *Pools {
	t.Helper()
	dir := t.TempDir()

	fields, err := pool.Open(filepath.Join(dir, "fields.pool"), 4096, 64, nil)
	require.NoError(t, err)
	t.Cleanup(func() { fields.Close() })

	literals, err := pool.Open(filepath.Join(dir, "literals.pool"), 4096, 64, nil)
	require.NoError(t, err)
	t.Cleanup(func() { literals.Close() })

	return &Pools{Fields: fields, Literals: literals}
}

func TestOtherFieldRoundTrip(t *testing.T) {
	pools := openTestPools(t)

	f := OtherField{Key: LiteralValueFromTag("shop"), Value: LiteralValueFromTag("bakery")}

	var buf bytes.Buffer
	require.NoError(t, EncodeField(&buf, pools, f))

	decoded, err := DecodeField(&buf, pools)
	require.NoError(t, err)

	other, ok := decoded.(OtherField)
	require.True(t, ok)
	require.Equal(t, "shop", other.Key.AsString())
	require.Equal(t, "bakery", other.Value.AsString())
}

func TestAddressRoundTripKarlsruheMinimal(t *testing.T) {
	pools := openTestPools(t)

	number := NewUInt(42)
	street := NewString("Main Street")
	a := &Address{Number: &number, Street: &street}
	require.True(t, a.IsKarlsruheMinimal())

	var buf bytes.Buffer
	require.NoError(t, a.Encode(&buf, pools))

	decoded, err := DecodeAddress(&buf, pools)
	require.NoError(t, err)
	require.Equal(t, "42", decoded.Number.AsString())
	require.Equal(t, "Main Street", decoded.Street.AsString())
}

func TestAddressRoundTripFullNesting(t *testing.T) {
	pools := openTestPools(t)

	number := NewUInt(7)
	street := NewString("Side Street")
	city := NewString("Springfield")
	unit := NewString("B")
	block := NewString("12")

	a := &Address{
		Number: &number,
		Street: &street,
		City:   &city,
		Extra: &AddressExtra{
			Unit: &unit,
			EvenMore: &AddressEvenMore{
				Block: &block,
			},
		},
	}
	require.False(t, a.IsKarlsruheMinimal())

	var buf bytes.Buffer
	require.NoError(t, a.Encode(&buf, pools))

	decoded, err := DecodeAddress(&buf, pools)
	require.NoError(t, err)
	require.Equal(t, "7", decoded.Number.AsString())
	require.Equal(t, "Side Street", decoded.Street.AsString())
	require.Equal(t, "Springfield", decoded.City.AsString())
	require.NotNil(t, decoded.Extra)
	require.Equal(t, "B", decoded.Extra.Unit.AsString())
	require.NotNil(t, decoded.Extra.EvenMore)
	require.Equal(t, "12", decoded.Extra.EvenMore.Block.AsString())
}

func TestAddressRoundTripNone(t *testing.T) {
	pools := openTestPools(t)

	a := &Address{}
	require.True(t, a.IsNone())

	var buf bytes.Buffer
	require.NoError(t, a.Encode(&buf, pools))

	decoded, err := DecodeAddress(&buf, pools)
	require.NoError(t, err)
	require.True(t, decoded.IsNone())
}

func TestContactRoundTrip(t *testing.T) {
	pools := openTestPools(t)

	phone := NewString("+1-555-0100")
	website := NewString("https://example.com")
	c := &Contact{Phone: &phone, Website: &website}

	var buf bytes.Buffer
	require.NoError(t, c.Encode(&buf, pools))

	decoded, err := DecodeContact(&buf, pools)
	require.NoError(t, err)
	require.Equal(t, "+1-555-0100", decoded.Phone.AsString())
	require.Equal(t, "https://example.com", decoded.Website.AsString())
	require.Nil(t, decoded.Email)
}

func TestLocalizedStringRoundTripAllLanguages(t *testing.T) {
	pools := openTestPools(t)

	def := NewString("Default Name")
	l := &LocalizedString{Default: &def}
	for i := range l.Localized {
		v := NewString("name-" + languageSuffix(i))
		l.Localized[i] = &v
	}

	var buf bytes.Buffer
	require.NoError(t, l.Encode(&buf, pools))

	decoded, err := DecodeLocalizedString(&buf, pools)
	require.NoError(t, err)
	require.Equal(t, "Default Name", decoded.Default.AsString())
	for i := range decoded.Localized {
		require.NotNil(t, decoded.Localized[i], "language %s did not round-trip", languageSuffix(i))
		require.Equal(t, "name-"+languageSuffix(i), decoded.Localized[i].AsString())
	}
}

func TestColorRoundTrip(t *testing.T) {
	c, ok := ColorFromTag("red")
	require.True(t, ok)
	var buf bytes.Buffer
	require.NoError(t, c.Encode(&buf))
	decoded, err := DecodeColor(&buf)
	require.NoError(t, err)
	require.Equal(t, c, decoded)

	hex, ok := ColorFromTag("#336699")
	require.True(t, ok)
	buf.Reset()
	require.NoError(t, hex.Encode(&buf))
	decodedHex, err := DecodeColor(&buf)
	require.NoError(t, err)
	require.Equal(t, hex, decodedHex)
}

func TestDateRoundTrip(t *testing.T) {
	d := Date{Year: 2024, Month: 3, Day: 15}
	var buf bytes.Buffer
	require.NoError(t, d.Encode(&buf))
	decoded, err := DecodeDate(&buf)
	require.NoError(t, err)
	require.Equal(t, d, decoded)

	yearOnly := Date{Year: -44}
	buf.Reset()
	require.NoError(t, yearOnly.Encode(&buf))
	decodedYearOnly, err := DecodeDate(&buf)
	require.NoError(t, err)
	require.Equal(t, yearOnly, decodedYearOnly)
}

func TestAccessComboRoundTrip(t *testing.T) {
	a, ok := AccessComboFromTag("bicycle", "designated")
	require.True(t, ok)
	var buf bytes.Buffer
	require.NoError(t, a.Encode(&buf))
	decoded, err := DecodeAccessCombo(&buf)
	require.NoError(t, err)
	require.Equal(t, a, decoded)
}

func TestDirectionalComboRoundTrip(t *testing.T) {
	d, ok := DirectionalComboFromTag("-1")
	require.True(t, ok)
	require.Equal(t, DirectionBackward, d.Direction)

	var buf bytes.Buffer
	require.NoError(t, d.Encode(&buf))
	decoded, err := DecodeDirectionalCombo(&buf)
	require.NoError(t, err)
	require.Equal(t, d, decoded)
}

func TestMultiYesComboRoundTrip(t *testing.T) {
	var m MultiYesCombo
	require.True(t, m.SetMode("foot"))
	require.True(t, m.SetMode("bus"))
	require.False(t, m.SetMode("not-a-mode"))

	var buf bytes.Buffer
	require.NoError(t, m.Encode(&buf))
	decoded, err := DecodeMultiYesCombo(&buf)
	require.NoError(t, err)
	require.True(t, decoded.HasMode("foot"))
	require.True(t, decoded.HasMode("bus"))
	require.False(t, decoded.HasMode("bicycle"))
}

func TestStructuredFieldsRoundTripThroughFieldDispatch(t *testing.T) {
	pools := openTestPools(t)

	number := NewUInt(10)
	street := NewString("Oak Ave")

	fields := []Field{
		&Address{Number: &number, Street: &street},
		AccessCombo{Subject: AccessSubjectFoot, Level: AccessDesignated},
		Color{standard: ColorBlue},
		Date{Year: 1999, Month: 12, Day: 31},
		DirectionalCombo{Direction: DirectionForward},
		MultiYesCombo{Mask: 0b101},
	}

	for _, f := range fields {
		var buf bytes.Buffer
		require.NoError(t, EncodeField(&buf, pools, f))
		decoded, err := DecodeField(&buf, pools)
		require.NoError(t, err)
		require.Equal(t, f.fieldTagOf(), decoded.fieldTagOf())
	}
}
