package pbf

import "testing"

// FuzzReaderFieldLoop drives Reader.Next/Skip over arbitrary bytes. The
// decoder must never panic and the cursor must never exceed the input
// length, regardless of how malformed the input is.
func FuzzReaderFieldLoop(f *testing.F) {
	f.Add([]byte{})
	f.Add([]byte{0x08, 0x01})
	f.Add([]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff})
	f.Add([]byte{0x0a, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x01})

	f.Fuzz(func(t *testing.T, data []byte) {
		r := NewReaderWithLimits(data, SecureLimits)
		for r.HasMore() {
			if !r.Next() {
				break
			}
			switch r.WireType() {
			case 0:
				_ = r.Uint64()
			case 1:
				_ = r.Fixed64()
			case 5:
				_ = r.Fixed32()
			default:
				r.Skip()
			}
			if r.Pos() > len(data) {
				t.Fatalf("cursor %d exceeded input length %d", r.Pos(), len(data))
			}
		}
	})
}

// FuzzReaderMessageDescent exercises nested Message() descent against
// arbitrary bytes, bounded by SecureLimits.MaxDepth, asserting the same
// no-panic / no-overrun properties at every nesting level.
func FuzzReaderMessageDescent(f *testing.F) {
	f.Add([]byte{0x0a, 0x02, 0x08, 0x01})

	f.Fuzz(func(t *testing.T, data []byte) {
		var descend func(r *Reader, depth int)
		descend = func(r *Reader, depth int) {
			if depth > 64 {
				return
			}
			for r.HasMore() {
				if !r.Next() {
					return
				}
				if r.WireType() == 2 {
					sub, err := r.Message()
					if err == nil {
						descend(sub, depth+1)
					}
					continue
				}
				r.Skip()
				if r.Pos() > len(data) {
					t.Fatalf("cursor %d exceeded input length %d", r.Pos(), len(data))
				}
			}
		}
		r := NewReaderWithLimits(data, SecureLimits)
		descend(r, 0)
	})
}
