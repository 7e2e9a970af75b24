package osmcodec

import (
	"bytes"

	"github.com/chlohal/geostore/internal/pool"
)

// Pools bundles the two content-addressed pools §4.8/§6 name for
// tag-derived data: free-form and structured fields go through the
// field pool, and every LiteralValue a field references (its own
// key/value text, or a structured sub-field like a street name) goes
// through the literal pool. A field's serialized bytes therefore embed
// literal pool ids rather than raw strings, letting "Example Street"
// dedup once across every field that names it.
type Pools struct {
	Fields   *pool.Pool
	Literals *pool.Pool
}

// InsertLiteral writes v into the literal pool (or resolves it to an
// existing id if an equal value was recently inserted).
func (p *Pools) InsertLiteral(v LiteralValue) (pool.ID, error) {
	return p.Literals.Insert(EncodeLiteralValue(v))
}

// GetLiteral resolves a literal pool id back to its value.
func (p *Pools) GetLiteral(id pool.ID) (LiteralValue, error) {
	b, err := p.Literals.Get(id)
	if err != nil {
		return LiteralValue{}, err
	}
	return DecodeLiteralValue(b)
}

// InsertField serializes f (resolving any LiteralValue sub-fields
// through the literal pool as it goes) and writes the result into the
// field pool.
func (p *Pools) InsertField(f Field) (pool.ID, error) {
	var buf bytes.Buffer
	if err := EncodeField(&buf, p, f); err != nil {
		return 0, err
	}
	return p.Fields.Insert(buf.Bytes())
}

// GetField resolves a field pool id back to its decoded Field.
func (p *Pools) GetField(id pool.ID) (Field, error) {
	b, err := p.Fields.Get(id)
	if err != nil {
		return nil, err
	}
	return DecodeField(bytes.NewReader(b), p)
}
