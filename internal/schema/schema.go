// Package schema describes flatbuffer types to the codec: table, struct and
// enum shapes, per-field elementary types, inline sizes and alignments, and
// enum name/value lookup. Two implementations exist: hand-authored TypeDef
// descriptors, and types loaded from a compiled schema binary (Load).
package schema

// Kind classifies a described type.
type Kind int

const (
	// TableKind is a record with optional fields behind a vtable.
	TableKind Kind = iota
	// StructKind is a fixed-layout record with every field inline.
	StructKind
	// EnumKind is a named integer type.
	EnumKind
)

// ElementaryType is the leaf classification of a field.
type ElementaryType int

const (
	Bool ElementaryType = iota
	Int8
	UInt8
	Int16
	UInt16
	Int32
	UInt32
	Int64
	UInt64
	Float32
	Float64
	String
	// Sequence is a nested table or struct.
	Sequence
	// Union marks union/utype fields, which the codec does not support.
	Union
)

var elementaryTypeNames = [...]string{
	Bool:     "bool",
	Int8:     "int8",
	UInt8:    "uint8",
	Int16:    "int16",
	UInt16:   "uint16",
	Int32:    "int32",
	UInt32:   "uint32",
	Int64:    "int64",
	UInt64:   "uint64",
	Float32:  "float",
	Float64:  "double",
	String:   "string",
	Sequence: "sequence",
	Union:    "union",
}

func (e ElementaryType) String() string {
	if int(e) < len(elementaryTypeNames) {
		return elementaryTypeNames[e]
	}
	return "unknown"
}

// IsInteger reports whether e is one of the integer widths.
func (e ElementaryType) IsInteger() bool {
	switch e {
	case Int8, UInt8, Int16, UInt16, Int32, UInt32, Int64, UInt64:
		return true
	}
	return false
}

// ScalarSize returns the inline byte width of a scalar elementary type.
// Strings and sequences are stored as 4-byte offsets; struct sequences are
// wider and must be sized through the owning Type instead.
func (e ElementaryType) ScalarSize() int {
	switch e {
	case Bool, Int8, UInt8:
		return 1
	case Int16, UInt16:
		return 2
	case Int32, UInt32, Float32, String, Sequence:
		return 4
	case Int64, UInt64, Float64:
		return 8
	}
	return 0
}

// Type is the accessor contract the codec is written against. A Type
// describes one table, struct, or enum; field methods take a field index,
// which is the vtable slot for tables and the declaration index for structs.
type Type interface {
	Kind() Kind
	Name() string

	NumFields() int
	// FieldIndex resolves a field name to its index, or -1.
	FieldIndex(name string) int
	FieldName(i int) string
	FieldElementaryType(i int) ElementaryType
	// FieldIsRepeating reports whether field i is a vector.
	FieldIsRepeating(i int) bool
	// FieldIsSequence reports whether field i holds a nested table or struct
	// (directly or as vector elements).
	FieldIsSequence(i int) bool
	FieldIsEnum(i int) bool
	// FieldType returns the nested table/struct type or the enum type of
	// field i.
	FieldType(i int) Type
	// FieldInlineSize returns the inline byte width of one value (one
	// element, for vectors) of field i.
	FieldInlineSize(i int) int
	FieldInlineAlignment(i int) int
	// StructFieldOffset returns the byte offset of field i inside a struct.
	StructFieldOffset(i int) int

	// InlineSize and Alignment describe the type itself when inlined
	// (structs only).
	InlineSize() int
	Alignment() int

	// EnumValue and EnumName translate between enum names and values.
	EnumValue(name string) (int64, bool)
	EnumName(value int64) (string, bool)
}
