package pbf

import (
	"unsafe"

	"github.com/motis-project/protozero/internal/wire"
)

// Reader is a field cursor over a borrowed byte range. It owns nothing:
// Next advances to the next field header, and a typed accessor or Skip
// consumes the current field's payload. There is no notion of a .proto
// schema — the caller decides, from Tag() and WireType(), which typed
// accessor to call.
//
// Reader is a sticky-error object, like the teacher's Reader/Writer: the
// first failure is recorded in err, and every subsequent operation
// becomes a no-op returning the zero value. Call Err() after driving a
// field loop to find out whether something went wrong.
type Reader struct {
	data     []byte
	pos      int
	hasField bool
	tag      int
	wireType wire.WireType
	depth    int
	limits   Limits
	err      error
}

// NewReader returns a Reader over data, with DefaultLimits.
func NewReader(data []byte) *Reader {
	return &Reader{data: data, limits: DefaultLimits}
}

// NewReaderWithLimits returns a Reader over data bounded by limits.
// Use SecureLimits when data comes from an untrusted source.
func NewReaderWithLimits(data []byte, limits Limits) *Reader {
	return &Reader{data: data, limits: limits}
}

// Err returns the first error encountered, if any.
func (r *Reader) Err() error { return r.err }

// Data returns the full byte range the Reader was constructed over.
func (r *Reader) Data() []byte { return r.data }

// Pos returns the current cursor offset into Data().
func (r *Reader) Pos() int { return r.pos }

// HasMore reports whether any bytes remain to be read. False once Err()
// is non-nil.
func (r *Reader) HasMore() bool { return r.err == nil && r.pos < len(r.data) }

// RemainingLength returns the number of unread bytes.
func (r *Reader) RemainingLength() int {
	if r.pos >= len(r.data) {
		return 0
	}
	return len(r.data) - r.pos
}

// Tag returns the field number of the current field. Only meaningful
// while a current field exists (i.e. after Next returns true and before
// it is consumed).
func (r *Reader) Tag() int { return r.tag }

// WireType returns the wire type of the current field.
func (r *Reader) WireType() wire.WireType { return r.wireType }

func (r *Reader) fail(message string, cause error) {
	if r.err != nil {
		return
	}
	if r.hasField {
		r.err = newFieldDecodeError(r.pos, r.tag, r.wireType, message, cause)
	} else {
		r.err = newDecodeError(r.pos, message, cause)
	}
}

// Next attempts to advance to the next field. Returns false when the
// buffer is exhausted (Err() stays nil) or when a malformed field header
// is encountered (Err() is set). Calling Next while a current field has
// not been consumed implicitly abandons it — callers that care about its
// payload must read or Skip it first.
func (r *Reader) Next() bool {
	if r.err != nil {
		return false
	}
	if r.pos >= len(r.data) {
		r.hasField = false
		return false
	}
	fieldNum, wt, n, err := wire.DecodeTag(r.data[r.pos:])
	if err != nil {
		r.hasField = false
		r.fail("invalid field tag", err)
		return false
	}
	r.pos += n
	r.tag = fieldNum
	r.wireType = wt
	r.hasField = true
	return true
}

// NextTag advances through fields, skipping any whose tag does not match,
// until a field with the given tag is found (returns true, it becomes
// current) or the buffer is exhausted (returns false).
func (r *Reader) NextTag(tag int) bool {
	for r.Next() {
		if r.tag == tag {
			return true
		}
		r.Skip()
		if r.err != nil {
			return false
		}
	}
	return false
}

// Skip consumes the current field's payload according to its wire type
// without decoding a value.
func (r *Reader) Skip() {
	if r.err != nil {
		return
	}
	if !r.hasField {
		r.fail("skip with no current field", nil)
		return
	}
	switch r.wireType {
	case wire.Varint:
		_, n, err := wire.DecodeUvarint(r.data[r.pos:])
		if err != nil {
			r.fail("truncated varint", err)
			return
		}
		r.pos += n
	case wire.Fixed64:
		if !r.advance(wire.Fixed64Size) {
			return
		}
	case wire.Fixed32:
		if !r.advance(wire.Fixed32Size) {
			return
		}
	case wire.Bytes:
		headerPos := r.pos
		n := r.readLength()
		if r.err != nil {
			return
		}
		if !r.advance(n) {
			r.pos = headerPos
			return
		}
	default:
		r.fail("unknown wire type", ErrUnknownWireType)
		return
	}
	r.hasField = false
}

func (r *Reader) advance(n int) bool {
	if n < 0 || r.pos+n > len(r.data) {
		r.fail("end of buffer", ErrEndOfBuffer)
		return false
	}
	r.pos += n
	return true
}

func (r *Reader) readLength() int {
	v, n, err := wire.DecodeUvarint(r.data[r.pos:])
	if err != nil {
		r.fail("truncated length", err)
		return 0
	}
	if v > uint64(maxInt) {
		r.fail("length overflow", nil)
		return 0
	}
	r.pos += n
	return int(v)
}

// decodeVarintField decodes the current field's payload as a varint and
// marks the field consumed. It does not check that WireType() is
// actually Varint: like the original, dispatch by wire type is the
// caller's responsibility, matching Next/WireType's observed value.
func (r *Reader) decodeVarintField() uint64 {
	if r.err != nil {
		return 0
	}
	if !r.hasField {
		r.fail("no current field", nil)
		return 0
	}
	v, n, err := wire.DecodeUvarint(r.data[r.pos:])
	if err != nil {
		r.fail("truncated varint", err)
		return 0
	}
	r.pos += n
	r.hasField = false
	return v
}

// Bool decodes the current field as a bool: false iff the decoded
// varint is zero. Multi-byte encodings of zero or one are accepted.
func (r *Reader) Bool() bool { return r.decodeVarintField() != 0 }

// Int32 decodes the current field as int32 (two's-complement truncation
// of the payload varint to 32 bits).
func (r *Reader) Int32() int32 { return int32(uint32(r.decodeVarintField())) }

// Int64 decodes the current field as int64.
func (r *Reader) Int64() int64 { return int64(r.decodeVarintField()) }

// Uint32 decodes the current field as uint32.
func (r *Reader) Uint32() uint32 { return uint32(r.decodeVarintField()) }

// Uint64 decodes the current field as uint64.
func (r *Reader) Uint64() uint64 { return r.decodeVarintField() }

// Enum decodes the current field as an enum value, wire-identical to
// Int32.
func (r *Reader) Enum() int32 { return r.Int32() }

// Sint32 decodes the current field as a zigzag-encoded int32.
func (r *Reader) Sint32() int32 { return int32(wire.DecodeZigzag64(r.decodeVarintField())) }

// Sint64 decodes the current field as a zigzag-encoded int64.
func (r *Reader) Sint64() int64 { return wire.DecodeZigzag64(r.decodeVarintField()) }

func (r *Reader) decodeFixedField(size int) []byte {
	if r.err != nil {
		return nil
	}
	if !r.hasField {
		r.fail("no current field", nil)
		return nil
	}
	if r.pos+size > len(r.data) {
		r.fail("end of buffer", ErrEndOfBuffer)
		return nil
	}
	b := r.data[r.pos : r.pos+size]
	r.pos += size
	r.hasField = false
	return b
}

// Fixed32 decodes the current field as a little-endian fixed32.
func (r *Reader) Fixed32() uint32 {
	b := r.decodeFixedField(wire.Fixed32Size)
	if b == nil {
		return 0
	}
	return wire.DecodeFixed32(b)
}

// Fixed64 decodes the current field as a little-endian fixed64.
func (r *Reader) Fixed64() uint64 {
	b := r.decodeFixedField(wire.Fixed64Size)
	if b == nil {
		return 0
	}
	return wire.DecodeFixed64(b)
}

// SFixed32 decodes the current field as a signed fixed32.
func (r *Reader) SFixed32() int32 { return int32(r.Fixed32()) }

// SFixed64 decodes the current field as a signed fixed64.
func (r *Reader) SFixed64() int64 { return int64(r.Fixed64()) }

// Float decodes the current field as an IEEE-754 32-bit float, bit-exact
// (NaN payloads and the sign of zero are preserved).
func (r *Reader) Float() float32 {
	b := r.decodeFixedField(wire.Fixed32Size)
	if b == nil {
		return 0
	}
	return wire.DecodeFloat32(b)
}

// Double decodes the current field as an IEEE-754 64-bit float, bit-exact.
func (r *Reader) Double() float64 {
	b := r.decodeFixedField(wire.Fixed64Size)
	if b == nil {
		return 0
	}
	return wire.DecodeFloat64(b)
}

// decodeLengthField validates and consumes a length-delimited field's
// header, returning the byte range [start, start+n) of its payload. On
// failure it returns ok=false and leaves the cursor unchanged, so views
// and packed iterators keep the strong guarantee; owned copies (Bytes,
// String) still advance past the header+payload before allocating,
// which is the documented basic-guarantee exception.
func (r *Reader) decodeLengthField(limit int) (start, n int, ok bool) {
	if r.err != nil {
		return 0, 0, false
	}
	if !r.hasField {
		r.fail("no current field", nil)
		return 0, 0, false
	}
	headerPos := r.pos
	length := r.readLength()
	if r.err != nil {
		return 0, 0, false
	}
	if limit > 0 && length > limit {
		r.fail("length-delimited payload exceeds limit", ErrAllocationFailure)
		r.pos = headerPos
		return 0, 0, false
	}
	if r.pos+length > len(r.data) {
		r.fail("end of buffer", ErrEndOfBuffer)
		r.pos = headerPos
		return 0, 0, false
	}
	start = r.pos
	r.pos += length
	r.hasField = false
	return start, length, true
}

// BytesView returns a borrowed view of the current field's payload: no
// copy is made, and the slice aliases the Reader's input data. The
// slice is valid for as long as that backing array is.
func (r *Reader) BytesView() []byte {
	start, n, ok := r.decodeLengthField(r.limits.MaxBytesLength)
	if !ok {
		return nil
	}
	return r.data[start : start+n]
}

// StringView returns a borrowed, zero-copy string view of the current
// field's payload, aliasing the Reader's input data.
func (r *Reader) StringView() string {
	start, n, ok := r.decodeLengthField(r.limits.MaxStringLength)
	if !ok {
		return ""
	}
	if n == 0 {
		return ""
	}
	return unsafe.String(&r.data[start], n)
}

// Bytes returns an owned copy of the current field's payload. Unlike
// BytesView, this does not satisfy the strong exception guarantee: the
// cursor advances before the copy is made, so a failing allocation (were
// Go's allocator to fail rather than panic) would leave the cursor past
// the field with no value returned.
func (r *Reader) Bytes() []byte {
	start, n, ok := r.decodeLengthField(r.limits.MaxBytesLength)
	if !ok {
		return nil
	}
	out := make([]byte, n)
	copy(out, r.data[start:start+n])
	return out
}

// String returns an owned copy of the current field's payload as a
// string. Same basic-guarantee caveat as Bytes.
func (r *Reader) String() string {
	start, n, ok := r.decodeLengthField(r.limits.MaxStringLength)
	if !ok {
		return ""
	}
	return string(r.data[start : start+n])
}

// Message returns an independent Reader over the current field's
// payload, for descending into a submessage. The returned Reader shares
// no mutable state with its parent.
func (r *Reader) Message() (*Reader, error) {
	if r.err != nil {
		return nil, r.err
	}
	if r.limits.MaxDepth > 0 && r.depth >= r.limits.MaxDepth {
		r.fail("maximum nesting depth exceeded", ErrMaxDepthExceeded)
		return nil, r.err
	}
	start, n, ok := r.decodeLengthField(r.limits.MaxBytesLength)
	if !ok {
		return nil, r.err
	}
	return &Reader{
		data:   r.data[start : start+n],
		limits: r.limits,
		depth:  r.depth + 1,
	}, nil
}

func (r *Reader) packedPayload() []byte {
	start, n, ok := r.decodeLengthField(r.limits.MaxBytesLength)
	if !ok {
		return nil
	}
	return r.data[start : start+n]
}

// PackedBool returns a lazy iterator over a packed bool field.
func (r *Reader) PackedBool() PackedBoolIter {
	return PackedBoolIter{&packedVarint{data: r.packedPayload()}}
}

// PackedEnum returns a lazy iterator over a packed enum field.
func (r *Reader) PackedEnum() PackedEnumIter {
	return PackedEnumIter{&packedVarint{data: r.packedPayload()}}
}

// PackedInt32 returns a lazy iterator over a packed int32 field.
func (r *Reader) PackedInt32() PackedInt32Iter {
	return PackedInt32Iter{&packedVarint{data: r.packedPayload()}}
}

// PackedInt64 returns a lazy iterator over a packed int64 field.
func (r *Reader) PackedInt64() PackedInt64Iter {
	return PackedInt64Iter{&packedVarint{data: r.packedPayload()}}
}

// PackedUint32 returns a lazy iterator over a packed uint32 field.
func (r *Reader) PackedUint32() PackedUint32Iter {
	return PackedUint32Iter{&packedVarint{data: r.packedPayload()}}
}

// PackedUint64 returns a lazy iterator over a packed uint64 field.
func (r *Reader) PackedUint64() PackedUint64Iter {
	return PackedUint64Iter{&packedVarint{data: r.packedPayload()}}
}

// PackedSint32 returns a lazy iterator over a packed zigzag-encoded
// sint32 field.
func (r *Reader) PackedSint32() PackedSint32Iter {
	return PackedSint32Iter{&packedVarint{data: r.packedPayload()}}
}

// PackedSint64 returns a lazy iterator over a packed zigzag-encoded
// sint64 field.
func (r *Reader) PackedSint64() PackedSint64Iter {
	return PackedSint64Iter{&packedVarint{data: r.packedPayload()}}
}

// PackedFixed32 returns a lazy iterator over a packed fixed32 field.
func (r *Reader) PackedFixed32() PackedFixed32Iter {
	return PackedFixed32Iter{newPackedFixed(r.packedPayload(), wire.Fixed32Size)}
}

// PackedFixed64 returns a lazy iterator over a packed fixed64 field.
func (r *Reader) PackedFixed64() PackedFixed64Iter {
	return PackedFixed64Iter{newPackedFixed(r.packedPayload(), wire.Fixed64Size)}
}

// PackedSFixed32 returns a lazy iterator over a packed sfixed32 field.
func (r *Reader) PackedSFixed32() PackedSFixed32Iter {
	return PackedSFixed32Iter{newPackedFixed(r.packedPayload(), wire.Fixed32Size)}
}

// PackedSFixed64 returns a lazy iterator over a packed sfixed64 field.
func (r *Reader) PackedSFixed64() PackedSFixed64Iter {
	return PackedSFixed64Iter{newPackedFixed(r.packedPayload(), wire.Fixed64Size)}
}

// PackedFloat returns a lazy iterator over a packed float field.
func (r *Reader) PackedFloat() PackedFloatIter {
	return PackedFloatIter{newPackedFixed(r.packedPayload(), wire.Fixed32Size)}
}

// PackedDouble returns a lazy iterator over a packed double field.
func (r *Reader) PackedDouble() PackedDoubleIter {
	return PackedDoubleIter{newPackedFixed(r.packedPayload(), wire.Fixed64Size)}
}

// maxInt is the maximum value of int on the host platform.
const maxInt = int(^uint(0) >> 1)
