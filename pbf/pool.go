package pbf

import (
	"math/bits"
	"sync"
)

// Size-tiered pools for the default Bytes buffer, so repeated
// encode passes of similarly sized messages avoid a fresh allocation
// each time. Pooled in size classes: 64, 256, 1024, 4096, 16384, 65536.
var bufferPools = [6]sync.Pool{
	{New: func() any { return NewBytesFromSlice(make([]byte, 0, 64)) }},
	{New: func() any { return NewBytesFromSlice(make([]byte, 0, 256)) }},
	{New: func() any { return NewBytesFromSlice(make([]byte, 0, 1024)) }},
	{New: func() any { return NewBytesFromSlice(make([]byte, 0, 4096)) }},
	{New: func() any { return NewBytesFromSlice(make([]byte, 0, 16384)) }},
	{New: func() any { return NewBytesFromSlice(make([]byte, 0, 65536)) }},
}

var bufferSizes = [6]int{64, 256, 1024, 4096, 16384, 65536}

func poolIndex(size int) int {
	for i, s := range bufferSizes {
		if size <= s {
			return i
		}
	}
	return -1
}

// GetBytesBuffer returns a *Bytes from the appropriate size-tiered pool,
// reset to zero length but retaining its capacity. Buffers larger than
// 64KB are not pooled; a fresh one is allocated instead.
func GetBytesBuffer(sizeHint int) *Bytes {
	idx := poolIndex(sizeHint)
	if idx < 0 {
		return NewBytesFromSlice(make([]byte, 0, sizeHint))
	}
	b := bufferPools[idx].Get().(*Bytes)
	b.Reset()
	return b
}

// PutBytesBuffer returns b to the appropriate size-tiered pool, keyed by
// its current capacity. Buffers larger than 64KB are dropped for the GC
// to reclaim rather than pooled.
func PutBytesBuffer(b *Bytes) {
	c := cap(b.buf)
	if c > 65536 {
		return
	}
	idx := poolIndex(c)
	if idx >= 0 {
		b.Reset()
		bufferPools[idx].Put(b)
	}
}

// OptimalBufferSize rounds dataSize up to the nearest pool size class,
// or to the next power of two above 64KB, for efficient reuse.
func OptimalBufferSize(dataSize int) int {
	if dataSize <= 0 {
		return bufferSizes[0]
	}
	if dataSize > bufferSizes[len(bufferSizes)-1] {
		return 1 << bits.Len(uint(dataSize-1))
	}
	for _, size := range bufferSizes {
		if dataSize <= size {
			return size
		}
	}
	return dataSize
}

// writerPool recycles root Writer values across encode passes; the
// Buffer they wrap is supplied separately (typically via
// GetBytesBuffer) since a Writer does not own its Buffer.
var writerPool = sync.Pool{New: func() any { return &Writer{} }}

// GetWriter returns a pooled root Writer targeting buf, ready to use.
func GetWriter(buf Buffer) *Writer {
	w := writerPool.Get().(*Writer)
	*w = Writer{buf: buf, limits: DefaultLimits}
	return w
}

// PutWriter returns w to the pool. Do not use w after calling this.
func PutWriter(w *Writer) {
	if w == nil {
		return
	}
	*w = Writer{}
	writerPool.Put(w)
}

// readerPool recycles root Reader values across decode passes.
var readerPool = sync.Pool{New: func() any { return &Reader{} }}

// GetReader returns a pooled root Reader over data, ready to use.
func GetReader(data []byte) *Reader {
	r := readerPool.Get().(*Reader)
	*r = Reader{data: data, limits: DefaultLimits}
	return r
}

// PutReader returns r to the pool. Do not use r after calling this.
func PutReader(r *Reader) {
	if r == nil {
		return
	}
	*r = Reader{}
	readerPool.Put(r)
}
