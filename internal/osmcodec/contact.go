package osmcodec

import (
	"bytes"
	"io"

	gerrors "github.com/chlohal/geostore/pkg/errors"
)

// Contact is the structured `contact:*`/`phone`/`website` field group,
// ported from osm_structures/structured_elements/contact.rs. All eight
// sub-fields fit in a single bitmask header byte.
type Contact struct {
	Phone     *LiteralValue
	Website   *LiteralValue
	Email     *LiteralValue
	Facebook  *LiteralValue
	Instagram *LiteralValue
	VK        *LiteralValue
	Twitter   *LiteralValue
	Prefix    *LiteralValue
}

func (Contact) fieldTagOf() fieldTag { return fieldTagContact }

// IsNone reports whether every sub-field is absent.
func (c *Contact) IsNone() bool {
	return c.Phone == nil && c.Website == nil && c.Email == nil && c.Facebook == nil &&
		c.Instagram == nil && c.VK == nil && c.Twitter == nil && c.Prefix == nil
}

// Encode writes one header byte (one bit per sub-field, high bits
// first) followed by the literal pool ids of every present sub-field
// in declaration order, matching the structured-field shape spec §6
// describes for address/contact/localized-string/directional-combo/
// access.
func (c *Contact) Encode(w io.Writer, pools *Pools) error {
	var extra bytes.Buffer
	var header byte

	if err := insertWithBit(pools, c.Phone, &extra, &header, 7); err != nil {
		return err
	}
	if err := insertWithBit(pools, c.Website, &extra, &header, 6); err != nil {
		return err
	}
	if err := insertWithBit(pools, c.Email, &extra, &header, 5); err != nil {
		return err
	}
	if err := insertWithBit(pools, c.Facebook, &extra, &header, 4); err != nil {
		return err
	}
	if err := insertWithBit(pools, c.Instagram, &extra, &header, 3); err != nil {
		return err
	}
	if err := insertWithBit(pools, c.VK, &extra, &header, 2); err != nil {
		return err
	}
	if err := insertWithBit(pools, c.Twitter, &extra, &header, 1); err != nil {
		return err
	}
	if err := insertWithBit(pools, c.Prefix, &extra, &header, 0); err != nil {
		return err
	}

	if _, err := w.Write([]byte{header}); err != nil {
		return err
	}
	_, err := w.Write(extra.Bytes())
	return err
}

// DecodeContact is the inverse of Contact.Encode.
func DecodeContact(r io.Reader, pools *Pools) (*Contact, error) {
	var header [1]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, gerrors.NewMalformedInputError(err, "contact-header", 0)
	}

	c := &Contact{}
	var err error

	if header[0]&(1<<7) != 0 {
		if c.Phone, err = readLiteralField(r, pools); err != nil {
			return nil, err
		}
	}
	if header[0]&(1<<6) != 0 {
		if c.Website, err = readLiteralField(r, pools); err != nil {
			return nil, err
		}
	}
	if header[0]&(1<<5) != 0 {
		if c.Email, err = readLiteralField(r, pools); err != nil {
			return nil, err
		}
	}
	if header[0]&(1<<4) != 0 {
		if c.Facebook, err = readLiteralField(r, pools); err != nil {
			return nil, err
		}
	}
	if header[0]&(1<<3) != 0 {
		if c.Instagram, err = readLiteralField(r, pools); err != nil {
			return nil, err
		}
	}
	if header[0]&(1<<2) != 0 {
		if c.VK, err = readLiteralField(r, pools); err != nil {
			return nil, err
		}
	}
	if header[0]&(1<<1) != 0 {
		if c.Twitter, err = readLiteralField(r, pools); err != nil {
			return nil, err
		}
	}
	if header[0]&1 != 0 {
		if c.Prefix, err = readLiteralField(r, pools); err != nil {
			return nil, err
		}
	}

	return c, nil
}
