package schema

import (
	"fmt"

	flatbuffers "github.com/google/flatbuffers/go"
)

// reflection.fbs base types.
const (
	baseTypeNone   = 0
	baseTypeUType  = 1
	baseTypeBool   = 2
	baseTypeByte   = 3
	baseTypeUByte  = 4
	baseTypeShort  = 5
	baseTypeUShort = 6
	baseTypeInt    = 7
	baseTypeUInt   = 8
	baseTypeLong   = 9
	baseTypeULong  = 10
	baseTypeFloat  = 11
	baseTypeDouble = 12
	baseTypeString = 13
	baseTypeVector = 14
	baseTypeObj    = 15
	baseTypeUnion  = 16
)

// Schema is a parsed schema binary. It resolves type names and exposes each
// object and enum through the Type interface.
type Schema struct {
	objects []*reflObject
	enums   []*reflEnum
	root    *reflObject
	byName  map[string]*reflObject
}

type reflObject struct {
	name     string
	isStruct bool
	minalign int
	bytesize int
	fields   []reflField
}

type reflField struct {
	name      string
	valid     bool
	et        ElementaryType
	repeating bool
	obj       *reflObject
	enum      *reflEnum
	offset    int
}

type reflEnum struct {
	name   string
	values []EnumValDef
}

// rtable is a cursor over one table in the schema binary.
type rtable struct {
	tab flatbuffers.Table
}

func (t rtable) slot(i int) flatbuffers.UOffsetT {
	return flatbuffers.UOffsetT(t.tab.Offset(flatbuffers.VOffsetT(4 + 2*i)))
}

func (t rtable) str(i int) string {
	o := t.slot(i)
	if o == 0 {
		return ""
	}
	return string(t.tab.ByteVector(o + t.tab.Pos))
}

func (t rtable) boolean(i int, def bool) bool {
	o := t.slot(i)
	if o == 0 {
		return def
	}
	return t.tab.GetBool(o + t.tab.Pos)
}

func (t rtable) int32v(i int, def int32) int32 {
	o := t.slot(i)
	if o == 0 {
		return def
	}
	return t.tab.GetInt32(o + t.tab.Pos)
}

func (t rtable) int64v(i int, def int64) int64 {
	o := t.slot(i)
	if o == 0 {
		return def
	}
	return t.tab.GetInt64(o + t.tab.Pos)
}

func (t rtable) uint16v(i int, def uint16) uint16 {
	o := t.slot(i)
	if o == 0 {
		return def
	}
	return t.tab.GetUint16(o + t.tab.Pos)
}

func (t rtable) int8v(i int, def int8) int8 {
	o := t.slot(i)
	if o == 0 {
		return def
	}
	return t.tab.GetInt8(o + t.tab.Pos)
}

func (t rtable) table(i int) (rtable, bool) {
	o := t.slot(i)
	if o == 0 {
		return rtable{}, false
	}
	pos := t.tab.Indirect(o + t.tab.Pos)
	return rtable{flatbuffers.Table{Bytes: t.tab.Bytes, Pos: pos}}, true
}

// vector returns the element count and a table cursor per element of the
// table vector in slot i.
func (t rtable) tables(i int) []rtable {
	o := t.slot(i)
	if o == 0 {
		return nil
	}
	n := t.tab.VectorLen(o)
	start := t.tab.Vector(o)
	out := make([]rtable, n)
	for j := 0; j < n; j++ {
		pos := t.tab.Indirect(start + flatbuffers.UOffsetT(j)*flatbuffers.SizeUOffsetT)
		out[j] = rtable{flatbuffers.Table{Bytes: t.tab.Bytes, Pos: pos}}
	}
	return out
}

// Load parses a compiled schema binary (reflection.fbs layout) and returns
// the schema it describes. No generated accessor code is involved; the
// buffer is read directly.
func Load(bfbs []byte) (*Schema, error) {
	if len(bfbs) < flatbuffers.SizeUOffsetT {
		return nil, fmt.Errorf("schema binary too short (%d bytes)", len(bfbs))
	}
	pos := flatbuffers.GetUOffsetT(bfbs)
	if int(pos)+flatbuffers.SizeSOffsetT > len(bfbs) {
		return nil, fmt.Errorf("schema binary root offset out of range")
	}
	root := rtable{flatbuffers.Table{Bytes: bfbs, Pos: pos}}

	s := &Schema{byName: make(map[string]*reflObject)}

	// Shells first: fields reference objects and enums by index.
	objTables := root.tables(0)
	enumTables := root.tables(1)
	if len(objTables) == 0 {
		return nil, fmt.Errorf("schema binary has no objects")
	}
	for _, ot := range objTables {
		obj := &reflObject{
			name:     ot.str(0),
			isStruct: ot.boolean(2, false),
			minalign: int(ot.int32v(3, 0)),
			bytesize: int(ot.int32v(4, 0)),
		}
		s.objects = append(s.objects, obj)
		s.byName[obj.name] = obj
	}
	for _, et := range enumTables {
		e := &reflEnum{name: et.str(0)}
		for _, vt := range et.tables(1) {
			e.values = append(e.values, EnumValDef{Name: vt.str(0), Value: vt.int64v(1, 0)})
		}
		s.enums = append(s.enums, e)
	}

	for i, ot := range objTables {
		if err := s.loadFields(s.objects[i], ot); err != nil {
			return nil, fmt.Errorf("object %s: %w", s.objects[i].name, err)
		}
	}

	if rt, ok := root.table(4); ok {
		name := rt.str(0)
		s.root = s.byName[name]
	}
	return s, nil
}

func (s *Schema) loadFields(obj *reflObject, ot rtable) error {
	fts := ot.tables(1)
	maxID := -1
	for _, ft := range fts {
		if id := int(ft.uint16v(2, 0)); id > maxID {
			maxID = id
		}
	}
	obj.fields = make([]reflField, maxID+1)

	for _, ft := range fts {
		id := int(ft.uint16v(2, 0))
		f := reflField{
			name:   ft.str(0),
			offset: int(ft.uint16v(3, 0)),
		}
		if ft.boolean(6, false) {
			// Deprecated fields keep their vtable slot but are not
			// addressable by name.
			obj.fields[id] = f
			continue
		}
		tt, ok := ft.table(1)
		if !ok {
			return fmt.Errorf("field %s has no type", f.name)
		}
		base := int(tt.int8v(0, 0))
		element := int(tt.int8v(1, 0))
		index := int(tt.int32v(2, -1))

		bt := base
		if base == baseTypeVector {
			f.repeating = true
			bt = element
		}
		et, ok := elementaryFromBaseType(bt)
		if !ok {
			return fmt.Errorf("field %s has unsupported base type %d", f.name, bt)
		}
		f.et = et
		if index >= 0 {
			switch {
			case et == Sequence:
				if index >= len(s.objects) {
					return fmt.Errorf("field %s references object %d of %d", f.name, index, len(s.objects))
				}
				f.obj = s.objects[index]
			case et.IsInteger():
				if index >= len(s.enums) {
					return fmt.Errorf("field %s references enum %d of %d", f.name, index, len(s.enums))
				}
				f.enum = s.enums[index]
			}
		}
		f.valid = true
		obj.fields[id] = f
	}
	return nil
}

func elementaryFromBaseType(bt int) (ElementaryType, bool) {
	switch bt {
	case baseTypeBool:
		return Bool, true
	case baseTypeByte:
		return Int8, true
	case baseTypeUByte:
		return UInt8, true
	case baseTypeShort:
		return Int16, true
	case baseTypeUShort:
		return UInt16, true
	case baseTypeInt:
		return Int32, true
	case baseTypeUInt:
		return UInt32, true
	case baseTypeLong:
		return Int64, true
	case baseTypeULong:
		return UInt64, true
	case baseTypeFloat:
		return Float32, true
	case baseTypeDouble:
		return Float64, true
	case baseTypeString:
		return String, true
	case baseTypeObj:
		return Sequence, true
	case baseTypeUType, baseTypeUnion:
		// Surfaced as Union so every codec dispatch rejects it.
		return Union, true
	}
	return Union, false
}

// Root returns the schema's declared root table type.
func (s *Schema) Root() (Type, bool) {
	if s.root == nil {
		return nil, false
	}
	return s.root, true
}

// Lookup returns the named table or struct type.
func (s *Schema) Lookup(name string) (Type, bool) {
	obj, ok := s.byName[name]
	return obj, ok
}

// Objects returns every table and struct type in declaration order.
func (s *Schema) Objects() []Type {
	out := make([]Type, len(s.objects))
	for i, o := range s.objects {
		out[i] = o
	}
	return out
}

// Enums returns every enum type in declaration order.
func (s *Schema) Enums() []Type {
	out := make([]Type, len(s.enums))
	for i, e := range s.enums {
		out[i] = e
	}
	return out
}

var _ Type = (*reflObject)(nil)

func (o *reflObject) Kind() Kind {
	if o.isStruct {
		return StructKind
	}
	return TableKind
}

func (o *reflObject) Name() string { return o.name }

func (o *reflObject) NumFields() int { return len(o.fields) }

func (o *reflObject) FieldIndex(name string) int {
	for i := range o.fields {
		if o.fields[i].valid && o.fields[i].name == name {
			return i
		}
	}
	return -1
}

func (o *reflObject) FieldName(i int) string { return o.fields[i].name }

func (o *reflObject) FieldElementaryType(i int) ElementaryType {
	if !o.fields[i].valid {
		return Union
	}
	return o.fields[i].et
}

func (o *reflObject) FieldIsRepeating(i int) bool { return o.fields[i].repeating }

func (o *reflObject) FieldIsSequence(i int) bool { return o.fields[i].valid && o.fields[i].et == Sequence }

func (o *reflObject) FieldIsEnum(i int) bool { return o.fields[i].enum != nil }

func (o *reflObject) FieldType(i int) Type {
	f := &o.fields[i]
	if f.obj != nil {
		return f.obj
	}
	if f.enum != nil {
		return f.enum
	}
	return nil
}

func (o *reflObject) FieldInlineSize(i int) int {
	f := &o.fields[i]
	if f.et == Sequence && f.obj != nil && f.obj.isStruct {
		return f.obj.bytesize
	}
	return f.et.ScalarSize()
}

func (o *reflObject) FieldInlineAlignment(i int) int {
	f := &o.fields[i]
	if f.et == Sequence && f.obj != nil && f.obj.isStruct {
		return f.obj.minalign
	}
	return f.et.ScalarSize()
}

func (o *reflObject) StructFieldOffset(i int) int { return o.fields[i].offset }

func (o *reflObject) InlineSize() int { return o.bytesize }
func (o *reflObject) Alignment() int {
	if o.minalign == 0 {
		return 1
	}
	return o.minalign
}

func (o *reflObject) EnumValue(string) (int64, bool) { return 0, false }
func (o *reflObject) EnumName(int64) (string, bool)  { return "", false }

var _ Type = (*reflEnum)(nil)

func (e *reflEnum) Kind() Kind   { return EnumKind }
func (e *reflEnum) Name() string { return e.name }

func (e *reflEnum) NumFields() int                         { return 0 }
func (e *reflEnum) FieldIndex(string) int                  { return -1 }
func (e *reflEnum) FieldName(int) string                   { return "" }
func (e *reflEnum) FieldElementaryType(int) ElementaryType { return Union }
func (e *reflEnum) FieldIsRepeating(int) bool              { return false }
func (e *reflEnum) FieldIsSequence(int) bool               { return false }
func (e *reflEnum) FieldIsEnum(int) bool                   { return false }
func (e *reflEnum) FieldType(int) Type                     { return nil }
func (e *reflEnum) FieldInlineSize(int) int                { return 0 }
func (e *reflEnum) FieldInlineAlignment(int) int           { return 0 }
func (e *reflEnum) StructFieldOffset(int) int              { return 0 }
func (e *reflEnum) InlineSize() int                        { return 0 }
func (e *reflEnum) Alignment() int                         { return 1 }

func (e *reflEnum) EnumValue(name string) (int64, bool) {
	for _, v := range e.values {
		if v.Name == name {
			return v.Value, true
		}
	}
	return 0, false
}

func (e *reflEnum) EnumName(value int64) (string, bool) {
	for _, v := range e.values {
		if v.Value == value {
			return v.Name, true
		}
	}
	return "", false
}
