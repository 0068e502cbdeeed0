package pbf

// Field is a compile-time schema field descriptor binding a field
// number to the pair of typed Reader/Writer methods that read and write
// it, parameterized by the field's logical Go type T. It is the
// FIELD_VALUE/ADD_FIELD entry point of the original design: a thin
// facade that eliminates tag/type mismatches at the call site by
// construction, not by a runtime schema-validation pass — Field carries
// no validation behavior of its own.
//
// Field values are typically declared once per message type as package
// or struct-level vars built with the constructors below.
type Field[T any] struct {
	Tag    int
	Name   string
	decode func(*Reader) T
	encode func(*Writer, int, T)
}

// FieldValue decodes the current field of r using f's typed accessor.
// Equivalent to calling the corresponding Reader method directly, but
// lets a message type describe its fields once, as a table of Fields,
// rather than spelling out the tag at every call site.
func FieldValue[T any](r *Reader, f Field[T]) T { return f.decode(r) }

// AddField appends v to w as field f.Tag, via f's typed writer method.
func AddField[T any](w *Writer, f Field[T], v T) { f.encode(w, f.Tag, v) }

// BoolField declares a bool-typed schema field.
func BoolField(tag int, name string) Field[bool] {
	return Field[bool]{Tag: tag, Name: name, decode: (*Reader).Bool, encode: (*Writer).AddBool}
}

// EnumField declares an enum-typed schema field (wire-identical to int32).
func EnumField(tag int, name string) Field[int32] {
	return Field[int32]{Tag: tag, Name: name, decode: (*Reader).Enum, encode: (*Writer).AddEnum}
}

// Int32Field declares an int32-typed schema field.
func Int32Field(tag int, name string) Field[int32] {
	return Field[int32]{Tag: tag, Name: name, decode: (*Reader).Int32, encode: (*Writer).AddInt32}
}

// Int64Field declares an int64-typed schema field.
func Int64Field(tag int, name string) Field[int64] {
	return Field[int64]{Tag: tag, Name: name, decode: (*Reader).Int64, encode: (*Writer).AddInt64}
}

// Uint32Field declares a uint32-typed schema field.
func Uint32Field(tag int, name string) Field[uint32] {
	return Field[uint32]{Tag: tag, Name: name, decode: (*Reader).Uint32, encode: (*Writer).AddUint32}
}

// Uint64Field declares a uint64-typed schema field.
func Uint64Field(tag int, name string) Field[uint64] {
	return Field[uint64]{Tag: tag, Name: name, decode: (*Reader).Uint64, encode: (*Writer).AddUint64}
}

// Sint32Field declares a zigzag-encoded int32 schema field.
func Sint32Field(tag int, name string) Field[int32] {
	return Field[int32]{Tag: tag, Name: name, decode: (*Reader).Sint32, encode: (*Writer).AddSint32}
}

// Sint64Field declares a zigzag-encoded int64 schema field.
func Sint64Field(tag int, name string) Field[int64] {
	return Field[int64]{Tag: tag, Name: name, decode: (*Reader).Sint64, encode: (*Writer).AddSint64}
}

// Fixed32Field declares a fixed32-typed schema field.
func Fixed32Field(tag int, name string) Field[uint32] {
	return Field[uint32]{Tag: tag, Name: name, decode: (*Reader).Fixed32, encode: (*Writer).AddFixed32}
}

// Fixed64Field declares a fixed64-typed schema field.
func Fixed64Field(tag int, name string) Field[uint64] {
	return Field[uint64]{Tag: tag, Name: name, decode: (*Reader).Fixed64, encode: (*Writer).AddFixed64}
}

// SFixed32Field declares a signed fixed32 schema field.
func SFixed32Field(tag int, name string) Field[int32] {
	return Field[int32]{Tag: tag, Name: name, decode: (*Reader).SFixed32, encode: (*Writer).AddSFixed32}
}

// SFixed64Field declares a signed fixed64 schema field.
func SFixed64Field(tag int, name string) Field[int64] {
	return Field[int64]{Tag: tag, Name: name, decode: (*Reader).SFixed64, encode: (*Writer).AddSFixed64}
}

// FloatField declares a float (32-bit) schema field.
func FloatField(tag int, name string) Field[float32] {
	return Field[float32]{Tag: tag, Name: name, decode: (*Reader).Float, encode: (*Writer).AddFloat}
}

// DoubleField declares a double (64-bit) schema field.
func DoubleField(tag int, name string) Field[float64] {
	return Field[float64]{Tag: tag, Name: name, decode: (*Reader).Double, encode: (*Writer).AddDouble}
}

// StringField declares a string schema field, decoded as an owned copy.
func StringField(tag int, name string) Field[string] {
	return Field[string]{Tag: tag, Name: name, decode: (*Reader).String, encode: (*Writer).AddString}
}

// BytesField declares a bytes schema field, decoded as an owned copy.
func BytesField(tag int, name string) Field[[]byte] {
	return Field[[]byte]{Tag: tag, Name: name, decode: (*Reader).Bytes, encode: (*Writer).AddBytes}
}

// MessageField declares a nested-message schema field. Unlike the
// scalar Fields above, reading and writing a submessage does not fit
// Field[T]'s decode-a-value / encode-a-value shape — Get returns a
// sub-Reader to keep decoding, and Open returns a child Writer that
// must still be closed with Commit or Rollback.
type MessageField struct {
	Tag  int
	Name string
}

// Get descends into the current field of r as a submessage.
func (f MessageField) Get(r *Reader) (*Reader, error) { return r.Message() }

// Open starts writing the submessage as field f.Tag of w.
func (f MessageField) Open(w *Writer) *Writer { return w.OpenMessage(f.Tag) }
