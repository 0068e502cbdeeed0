package pbf

import (
	"math"

	"github.com/motis-project/protozero/internal/wire"
)

// Writer is an appending encoder over a Buffer. A root Writer is created
// with NewWriter; a child Writer for a nested submessage is created by
// calling OpenMessage (or OpenMessageSized) on the open writer and must
// be finished with exactly one of Commit or Rollback — Go has no
// destructors, so closing a submessage is never implicit.
//
// Like Reader, Writer is a sticky-error object: once Err() is non-nil,
// every method becomes a no-op.
type Writer struct {
	buf    Buffer
	parent *Writer
	depth  int
	limits Limits
	err    error

	// childOpen is set on a writer while one of its submessages is
	// open; any Add*/OpenMessage* call on this writer fails until the
	// child is closed.
	childOpen bool

	// closed marks a child writer that has already been Commit'd or
	// Rollback'd — rollback() on the original clears the writer's
	// buffer reference so reuse is a detectable error rather than a
	// silent write into the parent past the truncation point.
	closed bool

	// Fields below are only meaningful for a child writer, describing
	// where it was opened in the parent's buffer.
	rollbackPos      int // parent.buf.Len() before the field header was appended
	placeholderStart int // offset of the 10-byte length placeholder (unknown-size case)
	dataPos          int // offset where the submessage payload starts
	sizeKnown        bool
	targetSize       int
}

// NewWriter returns a root Writer appending to buf, with DefaultLimits.
func NewWriter(buf Buffer) *Writer {
	return &Writer{buf: buf, limits: DefaultLimits}
}

// NewWriterWithLimits returns a root Writer bounded by limits.
func NewWriterWithLimits(buf Buffer, limits Limits) *Writer {
	return &Writer{buf: buf, limits: limits}
}

// Err returns the first error encountered, if any.
func (w *Writer) Err() error { return w.err }

func (w *Writer) setError(err error) {
	if w.err == nil {
		w.err = err
	}
}

// checkReady reports whether w may accept a new field write or submessage
// open right now.
func (w *Writer) checkReady() bool {
	if w.closed {
		w.setError(ErrWriterClosed)
		return false
	}
	if w.err != nil {
		return false
	}
	if w.childOpen {
		w.setError(ErrSubmessageOpen)
		return false
	}
	return true
}

func (w *Writer) beginField(tag int, wt wire.WireType) bool {
	if !w.checkReady() {
		return false
	}
	if err := wire.ValidateFieldNumber(tag); err != nil {
		w.setError(newEncodeError(tag, "invalid field number", err))
		return false
	}
	w.putUvarint(uint64(wire.NewTag(tag, wt)))
	return true
}

// putUvarint appends exactly as many bytes as v needs and fills them in
// place — the Buffer contract only offers "append n zero bytes" plus
// random-access patching, never a direct byte-slice append.
func (w *Writer) putUvarint(v uint64) {
	n := wire.UvarintSize(v)
	start := w.buf.AppendZeroBytes(n)
	wire.PutUvarint(w.buf.At(start), v)
}

func (w *Writer) putFixed32(v uint32) {
	start := w.buf.AppendZeroBytes(wire.Fixed32Size)
	wire.PutFixed32(w.buf.At(start), v)
}

func (w *Writer) putFixed64(v uint64) {
	start := w.buf.AppendZeroBytes(wire.Fixed64Size)
	wire.PutFixed64(w.buf.At(start), v)
}

func (w *Writer) addVarintField(tag int, v uint64) {
	if !w.beginField(tag, wire.Varint) {
		return
	}
	w.putUvarint(v)
}

// AddBool appends a bool field.
func (w *Writer) AddBool(tag int, v bool) {
	var u uint64
	if v {
		u = 1
	}
	w.addVarintField(tag, u)
}

// AddInt32 appends an int32 field.
func (w *Writer) AddInt32(tag int, v int32) { w.addVarintField(tag, uint64(int64(v))) }

// AddInt64 appends an int64 field.
func (w *Writer) AddInt64(tag int, v int64) { w.addVarintField(tag, uint64(v)) }

// AddUint32 appends a uint32 field.
func (w *Writer) AddUint32(tag int, v uint32) { w.addVarintField(tag, uint64(v)) }

// AddUint64 appends a uint64 field.
func (w *Writer) AddUint64(tag int, v uint64) { w.addVarintField(tag, v) }

// AddEnum appends an enum field, wire-identical to AddInt32.
func (w *Writer) AddEnum(tag int, v int32) { w.AddInt32(tag, v) }

// AddSint32 appends a zigzag-encoded int32 field.
func (w *Writer) AddSint32(tag int, v int32) { w.addVarintField(tag, wire.EncodeZigzag64(int64(v))) }

// AddSint64 appends a zigzag-encoded int64 field.
func (w *Writer) AddSint64(tag int, v int64) { w.addVarintField(tag, wire.EncodeZigzag64(v)) }

// AddFixed32 appends a little-endian fixed32 field.
func (w *Writer) AddFixed32(tag int, v uint32) {
	if !w.beginField(tag, wire.Fixed32) {
		return
	}
	w.putFixed32(v)
}

// AddFixed64 appends a little-endian fixed64 field.
func (w *Writer) AddFixed64(tag int, v uint64) {
	if !w.beginField(tag, wire.Fixed64) {
		return
	}
	w.putFixed64(v)
}

// AddSFixed32 appends a signed fixed32 field.
func (w *Writer) AddSFixed32(tag int, v int32) {
	if !w.beginField(tag, wire.Fixed32) {
		return
	}
	w.putFixed32(uint32(v))
}

// AddSFixed64 appends a signed fixed64 field.
func (w *Writer) AddSFixed64(tag int, v int64) {
	if !w.beginField(tag, wire.Fixed64) {
		return
	}
	w.putFixed64(uint64(v))
}

// AddFloat appends an IEEE-754 32-bit float field, bit-exact.
func (w *Writer) AddFloat(tag int, v float32) {
	if !w.beginField(tag, wire.Fixed32) {
		return
	}
	w.putFixed32(math.Float32bits(v))
}

// AddDouble appends an IEEE-754 64-bit float field, bit-exact.
func (w *Writer) AddDouble(tag int, v float64) {
	if !w.beginField(tag, wire.Fixed64) {
		return
	}
	w.putFixed64(math.Float64bits(v))
}

func (w *Writer) addBytesField(tag int, b []byte) {
	if !w.beginField(tag, wire.Bytes) {
		return
	}
	w.putUvarint(uint64(len(b)))
	start := w.buf.AppendZeroBytes(len(b))
	copy(w.buf.At(start), b)
}

// AddString appends a length-delimited string field.
func (w *Writer) AddString(tag int, s string) { w.addBytesField(tag, []byte(s)) }

// AddBytes appends a length-delimited bytes field.
func (w *Writer) AddBytes(tag int, b []byte) { w.addBytesField(tag, b) }

// Reserve hints that n more bytes are about to be appended, so the
// target Buffer may grow its capacity ahead of time. Purely an
// optimization.
func (w *Writer) Reserve(n int) {
	if w.err != nil {
		return
	}
	w.buf.Reserve(n)
}

// OpenMessage opens a nested submessage of unknown size under the given
// tag, returning a child Writer. The child must be finished with
// exactly one of Commit or Rollback before w accepts any further field
// write.
func (w *Writer) OpenMessage(tag int) *Writer {
	if !w.checkReady() {
		return &Writer{err: w.err, closed: true}
	}
	if err := wire.ValidateFieldNumber(tag); err != nil {
		w.setError(newEncodeError(tag, "invalid field number", err))
		return &Writer{err: w.err, closed: true}
	}
	if w.limits.MaxDepth > 0 && w.depth >= w.limits.MaxDepth {
		w.setError(newEncodeError(tag, "maximum nesting depth exceeded", ErrMaxDepthExceeded))
		return &Writer{err: w.err, closed: true}
	}
	rollbackPos := w.buf.Len()
	w.putUvarint(uint64(wire.NewTag(tag, wire.Bytes)))
	placeholderStart := w.buf.AppendZeroBytes(wire.MaxVarintLen64)
	dataPos := w.buf.Len()
	w.childOpen = true
	return &Writer{
		buf:              w.buf,
		parent:           w,
		limits:           w.limits,
		depth:            w.depth + 1,
		rollbackPos:      rollbackPos,
		placeholderStart: placeholderStart,
		dataPos:          dataPos,
	}
}

// OpenMessageSized opens a nested submessage of a caller-declared size.
// No placeholder is reserved and no erase happens on Commit — the length
// varint is written at its natural size immediately. The caller must
// write exactly size bytes into the returned child before calling
// Commit, or Commit reports a size mismatch.
func (w *Writer) OpenMessageSized(tag, size int) *Writer {
	if !w.checkReady() {
		return &Writer{err: w.err, closed: true}
	}
	if err := wire.ValidateFieldNumber(tag); err != nil {
		w.setError(newEncodeError(tag, "invalid field number", err))
		return &Writer{err: w.err, closed: true}
	}
	if size < 0 {
		w.setError(newEncodeError(tag, "negative submessage size", nil))
		return &Writer{err: w.err, closed: true}
	}
	if w.limits.MaxDepth > 0 && w.depth >= w.limits.MaxDepth {
		w.setError(newEncodeError(tag, "maximum nesting depth exceeded", ErrMaxDepthExceeded))
		return &Writer{err: w.err, closed: true}
	}
	rollbackPos := w.buf.Len()
	w.putUvarint(uint64(wire.NewTag(tag, wire.Bytes)))
	w.putUvarint(uint64(size))
	dataPos := w.buf.Len()
	w.childOpen = true
	return &Writer{
		buf:         w.buf,
		parent:      w,
		limits:      w.limits,
		depth:       w.depth + 1,
		rollbackPos: rollbackPos,
		dataPos:     dataPos,
		sizeKnown:   true,
		targetSize:  size,
	}
}

// Commit closes a child writer opened with OpenMessage/OpenMessageSized,
// patching its parent's length placeholder (or validating the declared
// size) and re-enabling further writes on the parent.
func (c *Writer) Commit() {
	if c.closed {
		c.setError(ErrWriterClosed)
		return
	}
	if c.err != nil {
		return
	}
	if c.parent == nil {
		c.setError(ErrNotOpen)
		return
	}
	if c.childOpen {
		c.setError(ErrSubmessageOpen)
		return
	}
	p := c.parent
	if c.sizeKnown {
		if p.buf.Len()-c.dataPos != c.targetSize {
			c.setError(newEncodeError(0, "declared submessage size does not match bytes written", nil))
			p.childOpen = false
			c.parent = nil
			c.closed = true
			return
		}
	} else {
		length := p.buf.Len() - c.dataPos
		if length == 0 {
			p.buf.Erase(c.rollbackPos, p.buf.Len())
		} else {
			var lenBuf [wire.MaxVarintLen64]byte
			n := wire.PutUvarint(lenBuf[:], uint64(length))
			copy(p.buf.At(c.placeholderStart), lenBuf[:n])
			p.buf.Erase(c.placeholderStart+n, c.dataPos)
		}
	}
	p.childOpen = false
	c.parent = nil
	c.closed = true
}

// Rollback closes a child writer, discarding everything written to it
// (and its own field header) so the parent's buffer is left exactly as
// it was before OpenMessage/OpenMessageSized was called. Mirrors the
// original's rollback() poisoning the writer: after Rollback, c is
// unusable.
func (c *Writer) Rollback() {
	if c.closed {
		c.setError(ErrWriterClosed)
		return
	}
	if c.err != nil {
		return
	}
	if c.parent == nil {
		c.setError(ErrNotOpen)
		return
	}
	p := c.parent
	p.buf.Erase(c.rollbackPos, p.buf.Len())
	p.childOpen = false
	c.parent = nil
	c.buf = nil
	c.closed = true
}

// AddMessage is a convenience wrapper around OpenMessage/Commit for the
// common case of encoding a nested message in one call: if encode sets
// an error on the child, the submessage is rolled back instead of
// committed.
func (w *Writer) AddMessage(tag int, encode func(*Writer)) {
	child := w.OpenMessage(tag)
	if child.err != nil {
		w.setError(child.err)
		return
	}
	encode(child)
	if err := child.err; err != nil {
		w.setError(err)
		// Rollback is a no-op on a writer holding an error, so clear it
		// for the rollback and restore it afterwards.
		child.err = nil
		child.Rollback()
		child.err = err
		return
	}
	child.Commit()
	if child.err != nil {
		w.setError(child.err)
	}
}

// addPackedVarint writes a packed varint-encoded field (bool, enum,
// int32/64, uint32/64, sint32/64) via an internal submessage, since the
// encoded size of each element is not known up front.
func (w *Writer) addPackedVarint(tag, n int, get func(i int) uint64) {
	if !w.checkReady() {
		return
	}
	child := w.OpenMessage(tag)
	if child.err != nil {
		w.setError(child.err)
		return
	}
	child.Reserve(n * 2)
	for i := 0; i < n; i++ {
		child.putUvarint(get(i))
	}
	child.Commit()
	if child.err != nil {
		w.setError(child.err)
	}
}

// addPackedFixed writes a packed fixed-width field (fixed32/64,
// sfixed32/64, float, double) directly: the total length is known up
// front from n*width, so no submessage indirection is needed.
func (w *Writer) addPackedFixed(tag, n, width int, fill func(dst []byte)) {
	if !w.beginField(tag, wire.Bytes) {
		return
	}
	total := n * width
	w.putUvarint(uint64(total))
	start := w.buf.AppendZeroBytes(total)
	fill(w.buf.At(start)[:total])
}

// AddPackedBool appends a packed bool field.
func (w *Writer) AddPackedBool(tag int, values []bool) {
	w.addPackedVarint(tag, len(values), func(i int) uint64 {
		if values[i] {
			return 1
		}
		return 0
	})
}

// AddPackedEnum appends a packed enum field.
func (w *Writer) AddPackedEnum(tag int, values []int32) { w.AddPackedInt32(tag, values) }

// AddPackedInt32 appends a packed int32 field.
func (w *Writer) AddPackedInt32(tag int, values []int32) {
	w.addPackedVarint(tag, len(values), func(i int) uint64 { return uint64(int64(values[i])) })
}

// AddPackedInt64 appends a packed int64 field.
func (w *Writer) AddPackedInt64(tag int, values []int64) {
	w.addPackedVarint(tag, len(values), func(i int) uint64 { return uint64(values[i]) })
}

// AddPackedUint32 appends a packed uint32 field.
func (w *Writer) AddPackedUint32(tag int, values []uint32) {
	w.addPackedVarint(tag, len(values), func(i int) uint64 { return uint64(values[i]) })
}

// AddPackedUint64 appends a packed uint64 field.
func (w *Writer) AddPackedUint64(tag int, values []uint64) {
	w.addPackedVarint(tag, len(values), func(i int) uint64 { return values[i] })
}

// AddPackedSint32 appends a packed zigzag-encoded int32 field.
func (w *Writer) AddPackedSint32(tag int, values []int32) {
	w.addPackedVarint(tag, len(values), func(i int) uint64 { return wire.EncodeZigzag64(int64(values[i])) })
}

// AddPackedSint64 appends a packed zigzag-encoded int64 field.
func (w *Writer) AddPackedSint64(tag int, values []int64) {
	w.addPackedVarint(tag, len(values), func(i int) uint64 { return wire.EncodeZigzag64(values[i]) })
}

// AddPackedFixed32 appends a packed fixed32 field.
func (w *Writer) AddPackedFixed32(tag int, values []uint32) {
	w.addPackedFixed(tag, len(values), wire.Fixed32Size, func(dst []byte) {
		for i, v := range values {
			wire.PutFixed32(dst[i*wire.Fixed32Size:], v)
		}
	})
}

// AddPackedFixed64 appends a packed fixed64 field.
func (w *Writer) AddPackedFixed64(tag int, values []uint64) {
	w.addPackedFixed(tag, len(values), wire.Fixed64Size, func(dst []byte) {
		for i, v := range values {
			wire.PutFixed64(dst[i*wire.Fixed64Size:], v)
		}
	})
}

// AddPackedSFixed32 appends a packed sfixed32 field.
func (w *Writer) AddPackedSFixed32(tag int, values []int32) {
	w.addPackedFixed(tag, len(values), wire.Fixed32Size, func(dst []byte) {
		for i, v := range values {
			wire.PutFixed32(dst[i*wire.Fixed32Size:], uint32(v))
		}
	})
}

// AddPackedSFixed64 appends a packed sfixed64 field.
func (w *Writer) AddPackedSFixed64(tag int, values []int64) {
	w.addPackedFixed(tag, len(values), wire.Fixed64Size, func(dst []byte) {
		for i, v := range values {
			wire.PutFixed64(dst[i*wire.Fixed64Size:], uint64(v))
		}
	})
}

// AddPackedFloat appends a packed float field.
func (w *Writer) AddPackedFloat(tag int, values []float32) {
	w.addPackedFixed(tag, len(values), wire.Fixed32Size, func(dst []byte) {
		for i, v := range values {
			wire.PutFixed32(dst[i*wire.Fixed32Size:], math.Float32bits(v))
		}
	})
}

// AddPackedDouble appends a packed double field.
func (w *Writer) AddPackedDouble(tag int, values []float64) {
	w.addPackedFixed(tag, len(values), wire.Fixed64Size, func(dst []byte) {
		for i, v := range values {
			wire.PutFixed64(dst[i*wire.Fixed64Size:], math.Float64bits(v))
		}
	})
}
