package osmcodec

import (
	"bytes"
	"io"

	"github.com/chlohal/geostore/internal/pool"
	gerrors "github.com/chlohal/geostore/pkg/errors"
	"github.com/chlohal/geostore/pkg/varint"
)

// Address is the structured `addr:*` field, ported from
// osm_structures/structured_elements/address.rs. Number/Street/City/
// State/Province/Prefix are the "base" group; Extra and EvenMore hold
// progressively rarer sub-fields, each only allocated when at least one
// of its members is present.
type Address struct {
	Number   *LiteralValue
	Street   *LiteralValue
	City     *LiteralValue
	State    *LiteralValue
	Province *LiteralValue
	Prefix   *LiteralValue
	Extra    *AddressExtra
}

// AddressExtra holds the second tier of address sub-fields.
type AddressExtra struct {
	HouseName *LiteralValue
	Unit      *LiteralValue
	Floor     *LiteralValue
	Postbox   *LiteralValue
	Full      *LiteralValue
	Postcode  *LiteralValue
	EvenMore  *AddressEvenMore
}

// AddressEvenMore holds the rarest address sub-fields.
type AddressEvenMore struct {
	Hamlet      *LiteralValue
	Suburb      *LiteralValue
	Subdistrict *LiteralValue
	County      *LiteralValue
	Door        *LiteralValue
	Flats       *LiteralValue
	Block       *LiteralValue
	BlockNumber *LiteralValue
}

func (Address) fieldTagOf() fieldTag { return fieldTagAddress }

// IsNone reports whether every sub-field of the address is absent.
func (a *Address) IsNone() bool {
	return a.Number == nil && a.Street == nil && a.City == nil && a.State == nil &&
		a.Province == nil && a.Prefix == nil && a.Extra == nil
}

// IsKarlsruheMinimal reports whether a holds exactly a house number
// and street and nothing else — the common case spec §6 niches into a
// single header byte followed by the street's literal pool id.
func (a *Address) IsKarlsruheMinimal() bool {
	return a.State == nil && a.Number != nil && a.Street != nil && a.City == nil &&
		a.Prefix == nil && a.Province == nil && a.Extra == nil
}

func (e *AddressExtra) isNone() bool {
	return e == nil || (e.HouseName == nil && e.Unit == nil && e.Floor == nil &&
		e.Postbox == nil && e.Full == nil && e.Postcode == nil && e.EvenMore == nil)
}

func (m *AddressEvenMore) isNone() bool {
	return m == nil || (m.Hamlet == nil && m.Suburb == nil && m.Subdistrict == nil &&
		m.County == nil && m.Door == nil && m.Flats == nil && m.Block == nil && m.BlockNumber == nil)
}

// insertWithBit inserts value into the literal pool if present, sets
// bit bitIndex of *header, and appends the resulting pool id's varint
// encoding to extra.
func insertWithBit(pools *Pools, value *LiteralValue, extra *bytes.Buffer, header *byte, bitIndex uint) error {
	if value == nil {
		return nil
	}
	id, err := pools.InsertLiteral(*value)
	if err != nil {
		return err
	}
	*header |= 1 << bitIndex
	return varint.WriteUint64(extra, uint64(id))
}

// Encode writes a's packed header bytes (one to three, depending on
// how many optional groups are populated) followed by the literal pool
// ids of every present sub-field, in declaration order.
func (a *Address) Encode(w io.Writer, pools *Pools) error {
	var extra bytes.Buffer

	if a.IsKarlsruheMinimal() {
		if num, ok := a.Number.AsNumber(); ok && num > 0 && num <= 0b111111+1 {
			first := byte(0b1100_0000) | byte(num-1)
			streetID, err := pools.InsertLiteral(*a.Street)
			if err != nil {
				return err
			}
			if _, err := w.Write([]byte{first}); err != nil {
				return err
			}
			return varint.WriteUint64(w, uint64(streetID))
		}
	}

	var first, second, third byte

	if err := insertWithBit(pools, a.Number, &extra, &first, 6); err != nil {
		return err
	}
	if err := insertWithBit(pools, a.Street, &extra, &first, 5); err != nil {
		return err
	}
	if err := insertWithBit(pools, a.City, &extra, &first, 4); err != nil {
		return err
	}
	if err := insertWithBit(pools, a.State, &extra, &first, 3); err != nil {
		return err
	}
	if err := insertWithBit(pools, a.Province, &extra, &first, 2); err != nil {
		return err
	}
	if err := insertWithBit(pools, a.Prefix, &extra, &first, 1); err != nil {
		return err
	}

	if !a.Extra.isNone() {
		first |= 1 << 0

		if err := insertWithBit(pools, a.Extra.HouseName, &extra, &second, 7); err != nil {
			return err
		}
		if err := insertWithBit(pools, a.Extra.Unit, &extra, &second, 6); err != nil {
			return err
		}
		if err := insertWithBit(pools, a.Extra.Floor, &extra, &second, 5); err != nil {
			return err
		}
		if err := insertWithBit(pools, a.Extra.Postbox, &extra, &second, 4); err != nil {
			return err
		}
		if err := insertWithBit(pools, a.Extra.Full, &extra, &second, 3); err != nil {
			return err
		}
		if err := insertWithBit(pools, a.Extra.Postcode, &extra, &second, 2); err != nil {
			return err
		}

		if !a.Extra.EvenMore.isNone() {
			second |= 1 << 1
			em := a.Extra.EvenMore

			if err := insertWithBit(pools, em.Hamlet, &extra, &third, 7); err != nil {
				return err
			}
			if err := insertWithBit(pools, em.Suburb, &extra, &third, 6); err != nil {
				return err
			}
			if err := insertWithBit(pools, em.Subdistrict, &extra, &third, 5); err != nil {
				return err
			}
			if err := insertWithBit(pools, em.County, &extra, &third, 4); err != nil {
				return err
			}
			if err := insertWithBit(pools, em.Door, &extra, &third, 3); err != nil {
				return err
			}
			if err := insertWithBit(pools, em.Flats, &extra, &third, 2); err != nil {
				return err
			}
			if err := insertWithBit(pools, em.Block, &extra, &third, 1); err != nil {
				return err
			}
			if err := insertWithBit(pools, em.BlockNumber, &extra, &third, 0); err != nil {
				return err
			}
		}
	}

	headers := []byte{first}
	if !a.Extra.isNone() {
		headers = append(headers, second)
		if !a.Extra.EvenMore.isNone() {
			headers = append(headers, third)
		}
	}

	if _, err := w.Write(headers); err != nil {
		return err
	}
	_, err := w.Write(extra.Bytes())
	return err
}

// DecodeAddress is the inverse of Address.Encode.
func DecodeAddress(r io.Reader, pools *Pools) (*Address, error) {
	var first [1]byte
	if _, err := io.ReadFull(r, first[:]); err != nil {
		return nil, gerrors.NewMalformedInputError(err, "address-header", 0)
	}

	if first[0]&0b1100_0000 == 0b1100_0000 {
		num := int64(first[0]&0b0011_1111) + 1
		streetID, err := varint.ReadUint64(r)
		if err != nil {
			return nil, err
		}
		street, err := pools.GetLiteral(pool.ID(streetID))
		if err != nil {
			return nil, err
		}
		number := NewUInt(uint64(num))
		return &Address{Number: &number, Street: &street}, nil
	}

	a := &Address{}
	var err error

	if first[0]&(1<<6) != 0 {
		if a.Number, err = readLiteralField(r, pools); err != nil {
			return nil, err
		}
	}
	if first[0]&(1<<5) != 0 {
		if a.Street, err = readLiteralField(r, pools); err != nil {
			return nil, err
		}
	}
	if first[0]&(1<<4) != 0 {
		if a.City, err = readLiteralField(r, pools); err != nil {
			return nil, err
		}
	}
	if first[0]&(1<<3) != 0 {
		if a.State, err = readLiteralField(r, pools); err != nil {
			return nil, err
		}
	}
	if first[0]&(1<<2) != 0 {
		if a.Province, err = readLiteralField(r, pools); err != nil {
			return nil, err
		}
	}
	if first[0]&(1<<1) != 0 {
		if a.Prefix, err = readLiteralField(r, pools); err != nil {
			return nil, err
		}
	}

	if first[0]&1 != 0 {
		var second [1]byte
		if _, err := io.ReadFull(r, second[:]); err != nil {
			return nil, gerrors.NewMalformedInputError(err, "address-extra-header", 1)
		}

		extra := &AddressExtra{}
		if second[0]&(1<<7) != 0 {
			if extra.HouseName, err = readLiteralField(r, pools); err != nil {
				return nil, err
			}
		}
		if second[0]&(1<<6) != 0 {
			if extra.Unit, err = readLiteralField(r, pools); err != nil {
				return nil, err
			}
		}
		if second[0]&(1<<5) != 0 {
			if extra.Floor, err = readLiteralField(r, pools); err != nil {
				return nil, err
			}
		}
		if second[0]&(1<<4) != 0 {
			if extra.Postbox, err = readLiteralField(r, pools); err != nil {
				return nil, err
			}
		}
		if second[0]&(1<<3) != 0 {
			if extra.Full, err = readLiteralField(r, pools); err != nil {
				return nil, err
			}
		}
		if second[0]&(1<<2) != 0 {
			if extra.Postcode, err = readLiteralField(r, pools); err != nil {
				return nil, err
			}
		}

		if second[0]&(1<<1) != 0 {
			var third [1]byte
			if _, err := io.ReadFull(r, third[:]); err != nil {
				return nil, gerrors.NewMalformedInputError(err, "address-evenmore-header", 2)
			}

			em := &AddressEvenMore{}
			if third[0]&(1<<7) != 0 {
				if em.Hamlet, err = readLiteralField(r, pools); err != nil {
					return nil, err
				}
			}
			if third[0]&(1<<6) != 0 {
				if em.Suburb, err = readLiteralField(r, pools); err != nil {
					return nil, err
				}
			}
			if third[0]&(1<<5) != 0 {
				if em.Subdistrict, err = readLiteralField(r, pools); err != nil {
					return nil, err
				}
			}
			if third[0]&(1<<4) != 0 {
				if em.County, err = readLiteralField(r, pools); err != nil {
					return nil, err
				}
			}
			if third[0]&(1<<3) != 0 {
				if em.Door, err = readLiteralField(r, pools); err != nil {
					return nil, err
				}
			}
			if third[0]&(1<<2) != 0 {
				if em.Flats, err = readLiteralField(r, pools); err != nil {
					return nil, err
				}
			}
			if third[0]&(1<<1) != 0 {
				if em.Block, err = readLiteralField(r, pools); err != nil {
					return nil, err
				}
			}
			if third[0]&1 != 0 {
				if em.BlockNumber, err = readLiteralField(r, pools); err != nil {
					return nil, err
				}
			}
			extra.EvenMore = em
		}

		a.Extra = extra
	}

	return a, nil
}

func readLiteralField(r io.Reader, pools *Pools) (*LiteralValue, error) {
	id, err := varint.ReadUint64(r)
	if err != nil {
		return nil, err
	}
	v, err := pools.GetLiteral(pool.ID(id))
	if err != nil {
		return nil, err
	}
	return &v, nil
}
