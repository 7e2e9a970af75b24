package osmcodec

import (
	"io"

	gerrors "github.com/chlohal/geostore/pkg/errors"
	"github.com/chlohal/geostore/pkg/varint"
)

// Date is the structured date field (opening_hours start dates,
// start_date, etc). The source's LiteralValue::Date(usize,usize,usize)
// variant was left `todo!()` in both its serializer and deserializer
// (osm_value_atom/literal_value.rs); this is the completed
// implementation, a flagged year/month/day triple where month and day
// of 0 mean "unknown" (a year-only date).
type Date struct {
	Year  int32
	Month uint8
	Day   uint8
}

func (Date) fieldTagOf() fieldTag { return fieldTagDate }

// Encode writes a zig-zag varint year followed by one byte for the
// month and one byte for the day.
func (d Date) Encode(w io.Writer) error {
	if err := varint.WriteInt32(w, d.Year); err != nil {
		return err
	}
	if _, err := w.Write([]byte{d.Month, d.Day}); err != nil {
		return err
	}
	return nil
}

// DecodeDate is the inverse of Date.Encode.
func DecodeDate(r io.Reader) (Date, error) {
	year, err := varint.ReadInt32(r)
	if err != nil {
		return Date{}, err
	}
	var md [2]byte
	if _, err := io.ReadFull(r, md[:]); err != nil {
		return Date{}, gerrors.NewMalformedInputError(err, "date-month-day", 0)
	}
	return Date{Year: year, Month: md[0], Day: md[1]}, nil
}
