package pbf

import (
	"errors"
	"testing"

	"github.com/motis-project/protozero/internal/wire"
)

func TestSecurityVarintTooLong(t *testing.T) {
	data := make([]byte, 11)
	for i := range data {
		data[i] = 0x80
	}
	data[10] = 0x00

	buf := wire.AppendTag(nil, 1, wire.Varint)
	buf = append(buf, data...)

	r := NewReader(buf)
	r.Next()
	_ = r.Uint64()
	if !errors.Is(r.Err(), ErrVarintTooLong) {
		t.Errorf("Err() = %v, want ErrVarintTooLong", r.Err())
	}
}

func TestSecurityDepthBombRejected(t *testing.T) {
	const bombDepth = 50
	buf := NewBytes()
	w := NewWriter(buf)

	var build func(w *Writer, level int)
	build = func(w *Writer, level int) {
		if level == 0 {
			w.AddUint32(1, 1)
			return
		}
		child := w.OpenMessage(1)
		build(child, level-1)
		child.Commit()
	}
	build(w, bombDepth)
	if w.Err() != nil {
		t.Fatalf("build Err() = %v", w.Err())
	}

	r := NewReaderWithLimits(buf.Bytes(), SecureLimits)
	var descend func(r *Reader) error
	descend = func(r *Reader) error {
		if !r.Next() {
			return r.Err()
		}
		sub, err := r.Message()
		if err != nil {
			return err
		}
		return descend(sub)
	}
	err := descend(r)
	if !errors.Is(err, ErrMaxDepthExceeded) {
		t.Errorf("descend error = %v, want ErrMaxDepthExceeded", err)
	}
}

func TestSecurityOversizedLengthDelimitedClaim(t *testing.T) {
	buf := wire.AppendTag(nil, 1, wire.Bytes)
	buf = wire.AppendUvarint(buf, 1<<32) // declares 4GB payload, buffer has none

	r := NewReader(buf)
	r.Next()
	before := r.Pos()
	if v := r.BytesView(); v != nil {
		t.Errorf("BytesView() = %v, want nil", v)
	}
	if r.Err() == nil {
		t.Fatal("expected an error for oversized length claim")
	}
	if r.Pos() != before {
		t.Errorf("cursor advanced despite rejected length claim: %d != %d", r.Pos(), before)
	}
}

func TestSecurityStringLengthLimitEnforced(t *testing.T) {
	payload := make([]byte, 2048)
	buf := wire.AppendTag(nil, 1, wire.Bytes)
	buf = wire.AppendUvarint(buf, uint64(len(payload)))
	buf = append(buf, payload...)

	limits := Limits{MaxDepth: 32, MaxStringLength: 1024, MaxBytesLength: 1024}
	r := NewReaderWithLimits(buf, limits)
	r.Next()
	if v := r.String(); v != "" {
		t.Errorf("String() = %q, want empty on limit violation", v)
	}
	if !errors.Is(r.Err(), ErrAllocationFailure) {
		t.Errorf("Err() = %v, want ErrAllocationFailure", r.Err())
	}
}

func TestSecurityBytesLengthLimitEnforced(t *testing.T) {
	payload := make([]byte, 2048)
	buf := wire.AppendTag(nil, 1, wire.Bytes)
	buf = wire.AppendUvarint(buf, uint64(len(payload)))
	buf = append(buf, payload...)

	limits := Limits{MaxDepth: 32, MaxStringLength: 1024, MaxBytesLength: 1024}
	r := NewReaderWithLimits(buf, limits)
	r.Next()
	if v := r.Bytes(); v != nil {
		t.Errorf("Bytes() = %v, want nil on limit violation", v)
	}
	if !errors.Is(r.Err(), ErrAllocationFailure) {
		t.Errorf("Err() = %v, want ErrAllocationFailure", r.Err())
	}
}

func TestSecurityMalformedWireTypeRejected(t *testing.T) {
	for _, wt := range []uint64{3, 4, 6, 7} {
		tag := uint64(1)<<3 | wt
		buf := wire.AppendUvarint(nil, tag)
		r := NewReader(buf)
		if r.Next() {
			t.Errorf("wire type %d: Next() succeeded, want failure", wt)
			continue
		}
		if !errors.Is(r.Err(), ErrUnknownWireType) {
			t.Errorf("wire type %d: Err() = %v, want ErrUnknownWireType", wt, r.Err())
		}
	}
}

func TestSecurityZeroFieldNumberRejected(t *testing.T) {
	buf := wire.AppendUvarint(nil, uint64(wire.Varint))
	r := NewReader(buf)
	if r.Next() {
		t.Fatal("Next() succeeded with field number 0, want failure")
	}
	if !errors.Is(r.Err(), ErrInvalidTag) {
		t.Errorf("Err() = %v, want ErrInvalidTag", r.Err())
	}
}

func TestSecurityReaderStopsAdvancingAfterError(t *testing.T) {
	buf := wire.AppendUvarint(nil, uint64(wire.NewTag(1, 3)))
	buf = append(buf, wire.AppendTag(nil, 2, wire.Varint)...)
	buf = wire.AppendUvarint(buf, 5)

	r := NewReader(buf)
	r.Next()
	firstErr := r.Err()
	pos := r.Pos()

	r.Next()
	r.Skip()
	_ = r.Uint64()

	if r.Err() != firstErr {
		t.Errorf("error changed after first failure: %v -> %v", firstErr, r.Err())
	}
	if r.Pos() != pos {
		t.Errorf("cursor advanced after sticky error: %d != %d", r.Pos(), pos)
	}
}

func TestSecurityWriterRejectsReservedTagRange(t *testing.T) {
	for tag := 19000; tag < 20000; tag += 333 {
		buf := NewBytes()
		w := NewWriter(buf)
		w.AddUint32(tag, 1)
		if w.Err() == nil {
			t.Errorf("tag %d in reserved range should be rejected", tag)
		}
		if !errors.Is(w.Err(), ErrInvalidTag) {
			t.Errorf("tag %d: Err() = %v, want ErrInvalidTag", tag, w.Err())
		}
	}
}

func TestSecurityNegativeFieldNumberRejected(t *testing.T) {
	buf := NewBytes()
	w := NewWriter(buf)
	w.AddUint32(-1, 1)
	if w.Err() == nil {
		t.Fatal("expected error for negative field number")
	}
}

func TestSecurityTruncatedTagAtEveryOffset(t *testing.T) {
	full := wire.AppendTag(nil, 1, wire.Varint)
	full = wire.AppendUvarint(full, 0xffffffffffffffff)

	for k := 0; k < len(full); k++ {
		r := NewReader(full[:k])
		for r.HasMore() {
			if !r.Next() {
				break
			}
			r.Skip()
		}
		if r.Pos() > k {
			t.Fatalf("offset %d: cursor exceeded buffer", k)
		}
	}
}

func TestSecurityNoOverflowDetectionBeyondTenBytes(t *testing.T) {
	buf := wire.AppendTag(nil, 1, wire.Varint)
	for i := 0; i < 9; i++ {
		buf = append(buf, 0xff)
	}
	buf = append(buf, 0x7f) // value bits past bit 63 are dropped, not rejected

	r := NewReader(buf)
	r.Next()
	_ = r.Uint64()
	if r.Err() != nil {
		t.Errorf("10-byte varint overflowing 64 bits should decode, got %v", r.Err())
	}
}
