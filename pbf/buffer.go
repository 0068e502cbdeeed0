package pbf

// Buffer is the mutation contract a Writer requires from its target byte
// store: append n zero bytes, reserve additional capacity, erase a
// half-open byte range by shifting the tail left, and get a random-access
// pointer at a byte offset. A Writer never asks for anything else, so any
// container satisfying this interface — not just a plain slice — can
// receive encoded output.
type Buffer interface {
	// Len returns the number of bytes currently stored.
	Len() int

	// AppendZeroBytes grows the buffer by n zero bytes and returns the
	// offset at which they start.
	AppendZeroBytes(n int) int

	// Reserve hints that at least n more bytes are about to be appended,
	// so the buffer may grow its capacity ahead of time. Purely an
	// optimization; implementations may ignore it.
	Reserve(n int)

	// Erase removes the half-open byte range [from, to), shifting
	// everything after to the left. Used to collapse the unused tail of
	// a submessage-length placeholder.
	Erase(from, to int)

	// At returns a slice view starting at offset and running to the
	// current end of the buffer. Writes through the returned slice
	// mutate the buffer in place.
	At(offset int) []byte
}

// Bytes is the default Buffer implementation, backed by a plain []byte.
// The zero value is an empty, ready-to-use buffer.
type Bytes struct {
	buf []byte
}

// NewBytes returns an empty Bytes buffer.
func NewBytes() *Bytes {
	return &Bytes{}
}

// NewBytesFromSlice wraps an existing slice for writing. The slice's
// current contents are kept; appends start after them.
func NewBytesFromSlice(b []byte) *Bytes {
	return &Bytes{buf: b}
}

// Bytes returns the accumulated bytes. The returned slice aliases the
// buffer's internal storage and is invalidated by further writes.
func (b *Bytes) Bytes() []byte { return b.buf }

func (b *Bytes) Len() int { return len(b.buf) }

func (b *Bytes) Reserve(n int) {
	if cap(b.buf)-len(b.buf) >= n {
		return
	}
	grown := make([]byte, len(b.buf), len(b.buf)+n)
	copy(grown, b.buf)
	b.buf = grown
}

func (b *Bytes) AppendZeroBytes(n int) int {
	start := len(b.buf)
	b.buf = append(b.buf, make([]byte, n)...)
	return start
}

func (b *Bytes) Erase(from, to int) {
	b.buf = append(b.buf[:from], b.buf[to:]...)
}

func (b *Bytes) At(offset int) []byte { return b.buf[offset:] }

// Reset empties the buffer while retaining its capacity, for reuse
// across multiple encode passes.
func (b *Bytes) Reset() { b.buf = b.buf[:0] }
