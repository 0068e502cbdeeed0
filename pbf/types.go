package pbf

// Limits bounds the resources a Reader will commit to untrusted input.
// Any of these can be left at zero to mean "no limit", but decoding data
// from an untrusted source without some limit set defeats the purpose of
// having one.
type Limits struct {
	// MaxDepth is the maximum submessage nesting depth Message() will
	// descend to before returning ErrMaxDepthExceeded.
	MaxDepth int

	// MaxStringLength is the maximum byte length String() and
	// StringView() will accept before returning ErrAllocationFailure.
	MaxStringLength int

	// MaxBytesLength is the maximum declared size of a length-delimited
	// field that Bytes(), BytesView(), Message() and the Packed*
	// accessors accept before failing with ErrAllocationFailure. Skip()
	// does not check it.
	MaxBytesLength int
}

// DefaultLimits are generous limits suitable for decoding data produced
// by a cooperating encoder.
var DefaultLimits = Limits{
	MaxDepth:        100,
	MaxStringLength: 64 * 1024 * 1024,
	MaxBytesLength:  64 * 1024 * 1024,
}

// SecureLimits are conservative limits appropriate for decoding
// untrusted input.
var SecureLimits = Limits{
	MaxDepth:        32,
	MaxStringLength: 1 * 1024 * 1024,
	MaxBytesLength:  4 * 1024 * 1024,
}

// NoLimits disables all resource limits. Only appropriate for trusted
// input, since a malicious length-delimited field can otherwise force an
// unbounded allocation.
var NoLimits = Limits{}

// Size constants for the fixed-width wire types, re-exported from
// internal/wire for callers computing sizes without a Writer in hand.
const (
	Fixed32Size = 4
	Fixed64Size = 8
	Float32Size = 4
	Float64Size = 8

	// MaxVarintLen64 is the maximum encoded size of a 64-bit varint.
	MaxVarintLen64 = 10

	// MaxTagSize is the maximum encoded size of a field tag.
	MaxTagSize = MaxVarintLen64
)
