package pbf

import (
	"math"

	"github.com/motis-project/protozero/internal/wire"
)

// packedVarint is the shared cursor for every varint-encoded packed
// iterator (bool, enum, int32/64, uint32/64, sint32/64): a lazy,
// single-pass walk over a length-delimited payload that decodes one
// varint per step. It does not support restarting, matching the
// original's iterator-style packed ranges.
type packedVarint struct {
	data []byte
	pos  int
	err  error
}

func (p *packedVarint) hasNext() bool { return p.err == nil && p.pos < len(p.data) }

func (p *packedVarint) next() (uint64, bool) {
	if !p.hasNext() {
		return 0, false
	}
	v, n, err := wire.DecodeUvarint(p.data[p.pos:])
	if err != nil {
		p.err = mapWireError(err)
		return 0, false
	}
	p.pos += n
	return v, true
}

// packedFixed is the shared cursor for the fixed-width packed iterators
// (fixed32/64, sfixed32/64, float, double): the element width evenly
// divides the payload length, so truncation is detected up front rather
// than mid-iteration.
type packedFixed struct {
	data  []byte
	width int
	pos   int
	err   error
}

func newPackedFixed(data []byte, width int) *packedFixed {
	if len(data)%width != 0 {
		return &packedFixed{err: ErrEndOfBuffer}
	}
	return &packedFixed{data: data, width: width}
}

func (p *packedFixed) hasNext() bool { return p.err == nil && p.pos < len(p.data) }

func (p *packedFixed) advance() []byte {
	if !p.hasNext() {
		return nil
	}
	b := p.data[p.pos : p.pos+p.width]
	p.pos += p.width
	return b
}

// PackedBoolIter iterates a packed bool field. Decode false iff the
// decoded value is zero, accepting multi-byte varint encodings.
type PackedBoolIter struct{ v *packedVarint }

func (it PackedBoolIter) HasNext() bool { return it.v.hasNext() }
func (it PackedBoolIter) Err() error    { return it.v.err }
func (it PackedBoolIter) Next() (bool, bool) {
	v, ok := it.v.next()
	return v != 0, ok
}

// PackedEnumIter iterates a packed enum field (wire-identical to int32).
type PackedEnumIter struct{ v *packedVarint }

func (it PackedEnumIter) HasNext() bool { return it.v.hasNext() }
func (it PackedEnumIter) Err() error    { return it.v.err }
func (it PackedEnumIter) Next() (int32, bool) {
	v, ok := it.v.next()
	return int32(uint32(v)), ok
}

// PackedInt32Iter iterates a packed int32 field.
type PackedInt32Iter struct{ v *packedVarint }

func (it PackedInt32Iter) HasNext() bool { return it.v.hasNext() }
func (it PackedInt32Iter) Err() error    { return it.v.err }
func (it PackedInt32Iter) Next() (int32, bool) {
	v, ok := it.v.next()
	return int32(uint32(v)), ok
}

// PackedInt64Iter iterates a packed int64 field.
type PackedInt64Iter struct{ v *packedVarint }

func (it PackedInt64Iter) HasNext() bool { return it.v.hasNext() }
func (it PackedInt64Iter) Err() error    { return it.v.err }
func (it PackedInt64Iter) Next() (int64, bool) {
	v, ok := it.v.next()
	return int64(v), ok
}

// PackedUint32Iter iterates a packed uint32 field.
type PackedUint32Iter struct{ v *packedVarint }

func (it PackedUint32Iter) HasNext() bool { return it.v.hasNext() }
func (it PackedUint32Iter) Err() error    { return it.v.err }
func (it PackedUint32Iter) Next() (uint32, bool) {
	v, ok := it.v.next()
	return uint32(v), ok
}

// PackedUint64Iter iterates a packed uint64 field.
type PackedUint64Iter struct{ v *packedVarint }

func (it PackedUint64Iter) HasNext() bool { return it.v.hasNext() }
func (it PackedUint64Iter) Err() error    { return it.v.err }
func (it PackedUint64Iter) Next() (uint64, bool) {
	return it.v.next()
}

// PackedSint32Iter iterates a packed zigzag-encoded sint32 field.
type PackedSint32Iter struct{ v *packedVarint }

func (it PackedSint32Iter) HasNext() bool { return it.v.hasNext() }
func (it PackedSint32Iter) Err() error    { return it.v.err }
func (it PackedSint32Iter) Next() (int32, bool) {
	v, ok := it.v.next()
	return int32(wire.DecodeZigzag64(v)), ok
}

// PackedSint64Iter iterates a packed zigzag-encoded sint64 field.
type PackedSint64Iter struct{ v *packedVarint }

func (it PackedSint64Iter) HasNext() bool { return it.v.hasNext() }
func (it PackedSint64Iter) Err() error    { return it.v.err }
func (it PackedSint64Iter) Next() (int64, bool) {
	v, ok := it.v.next()
	return wire.DecodeZigzag64(v), ok
}

// PackedFixed32Iter iterates a packed fixed32 field.
type PackedFixed32Iter struct{ f *packedFixed }

func (it PackedFixed32Iter) HasNext() bool { return it.f.hasNext() }
func (it PackedFixed32Iter) Err() error    { return it.f.err }
func (it PackedFixed32Iter) Next() (uint32, bool) {
	b := it.f.advance()
	if b == nil {
		return 0, false
	}
	return wire.DecodeFixed32(b), true
}

// PackedFixed64Iter iterates a packed fixed64 field.
type PackedFixed64Iter struct{ f *packedFixed }

func (it PackedFixed64Iter) HasNext() bool { return it.f.hasNext() }
func (it PackedFixed64Iter) Err() error    { return it.f.err }
func (it PackedFixed64Iter) Next() (uint64, bool) {
	b := it.f.advance()
	if b == nil {
		return 0, false
	}
	return wire.DecodeFixed64(b), true
}

// PackedSFixed32Iter iterates a packed sfixed32 field.
type PackedSFixed32Iter struct{ f *packedFixed }

func (it PackedSFixed32Iter) HasNext() bool { return it.f.hasNext() }
func (it PackedSFixed32Iter) Err() error    { return it.f.err }
func (it PackedSFixed32Iter) Next() (int32, bool) {
	b := it.f.advance()
	if b == nil {
		return 0, false
	}
	return int32(wire.DecodeFixed32(b)), true
}

// PackedSFixed64Iter iterates a packed sfixed64 field.
type PackedSFixed64Iter struct{ f *packedFixed }

func (it PackedSFixed64Iter) HasNext() bool { return it.f.hasNext() }
func (it PackedSFixed64Iter) Err() error    { return it.f.err }
func (it PackedSFixed64Iter) Next() (int64, bool) {
	b := it.f.advance()
	if b == nil {
		return 0, false
	}
	return int64(wire.DecodeFixed64(b)), true
}

// PackedFloatIter iterates a packed float (32-bit) field.
type PackedFloatIter struct{ f *packedFixed }

func (it PackedFloatIter) HasNext() bool { return it.f.hasNext() }
func (it PackedFloatIter) Err() error    { return it.f.err }
func (it PackedFloatIter) Next() (float32, bool) {
	b := it.f.advance()
	if b == nil {
		return 0, false
	}
	return math.Float32frombits(wire.DecodeFixed32(b)), true
}

// PackedDoubleIter iterates a packed double (64-bit) field.
type PackedDoubleIter struct{ f *packedFixed }

func (it PackedDoubleIter) HasNext() bool { return it.f.hasNext() }
func (it PackedDoubleIter) Err() error    { return it.f.err }
func (it PackedDoubleIter) Next() (float64, bool) {
	b := it.f.advance()
	if b == nil {
		return 0, false
	}
	return math.Float64frombits(wire.DecodeFixed64(b)), true
}
