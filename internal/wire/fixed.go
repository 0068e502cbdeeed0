package wire

import (
	"encoding/binary"
	"math"
)

// Size constants for the fixed-width wire types.
const (
	Fixed32Size = 4
	Fixed64Size = 8
)

// AppendFixed32 appends v to buf as 4 little-endian bytes.
func AppendFixed32(buf []byte, v uint32) []byte {
	return append(buf,
		byte(v),
		byte(v>>8),
		byte(v>>16),
		byte(v>>24),
	)
}

// AppendFixed64 appends v to buf as 8 little-endian bytes.
func AppendFixed64(buf []byte, v uint64) []byte {
	return append(buf,
		byte(v),
		byte(v>>8),
		byte(v>>16),
		byte(v>>24),
		byte(v>>32),
		byte(v>>40),
		byte(v>>48),
		byte(v>>56),
	)
}

// DecodeFixed32 decodes a little-endian 32-bit value from the front of
// data. data must have at least 4 bytes; callers validate length before
// calling this (the reader checks remaining bytes against the wire type's
// fixed size, same as it does before any other field read).
func DecodeFixed32(data []byte) uint32 {
	return binary.LittleEndian.Uint32(data)
}

// DecodeFixed64 decodes a little-endian 64-bit value from the front of
// data. data must have at least 8 bytes.
func DecodeFixed64(data []byte) uint64 {
	return binary.LittleEndian.Uint64(data)
}

// PutFixed32 writes v to buf[0:4] in little-endian order. buf must have
// at least 4 bytes available.
func PutFixed32(buf []byte, v uint32) {
	buf[0] = byte(v)
	buf[1] = byte(v >> 8)
	buf[2] = byte(v >> 16)
	buf[3] = byte(v >> 24)
}

// PutFixed64 writes v to buf[0:8] in little-endian order. buf must have
// at least 8 bytes available.
func PutFixed64(buf []byte, v uint64) {
	buf[0] = byte(v)
	buf[1] = byte(v >> 8)
	buf[2] = byte(v >> 16)
	buf[3] = byte(v >> 24)
	buf[4] = byte(v >> 32)
	buf[5] = byte(v >> 40)
	buf[6] = byte(v >> 48)
	buf[7] = byte(v >> 56)
}

// AppendFloat32 appends v's IEEE-754 bit pattern to buf as 4 little-endian
// bytes. NaN payloads, the sign of NaN, and the sign of zero are all
// preserved exactly — there is no canonicalization, since the wire format
// must reproduce the exact bytes a conformant protobuf encoder would
// produce for the same bit pattern.
func AppendFloat32(buf []byte, v float32) []byte {
	return AppendFixed32(buf, math.Float32bits(v))
}

// DecodeFloat32 decodes a float32 from 4 little-endian bytes.
func DecodeFloat32(data []byte) float32 {
	return math.Float32frombits(DecodeFixed32(data))
}

// PutFloat32 writes v's bit pattern to buf[0:4] in little-endian order.
func PutFloat32(buf []byte, v float32) {
	PutFixed32(buf, math.Float32bits(v))
}

// AppendFloat64 appends v's IEEE-754 bit pattern to buf as 8 little-endian
// bytes, bit-exact and uncanonicalized (see AppendFloat32).
func AppendFloat64(buf []byte, v float64) []byte {
	return AppendFixed64(buf, math.Float64bits(v))
}

// DecodeFloat64 decodes a float64 from 8 little-endian bytes.
func DecodeFloat64(data []byte) float64 {
	return math.Float64frombits(DecodeFixed64(data))
}

// PutFloat64 writes v's bit pattern to buf[0:8] in little-endian order.
func PutFloat64(buf []byte, v float64) {
	PutFixed64(buf, math.Float64bits(v))
}
