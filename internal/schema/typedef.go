package schema

// FieldDef describes one field of a hand-authored type.
type FieldDef struct {
	Name string
	// Type is the elementary type of one value. Enum-backed fields use the
	// underlying integer type here and point Ref at the enum.
	Type ElementaryType
	// Repeating marks vector fields; Type then describes one element.
	Repeating bool
	// Ref is the nested table/struct type for Sequence fields, or the enum
	// type for enum-backed integer fields.
	Ref *TypeDef
	// Offset is the byte offset of the field inside its struct. Unused for
	// tables.
	Offset int
}

// EnumValDef is one name/value pair of an enum. Values need not be
// consecutive.
type EnumValDef struct {
	Name  string
	Value int64
}

// TypeDef is the compile-time implementation of Type: a plain-data
// description of a table, struct, or enum, authored in Go the way generated
// type tables would be.
type TypeDef struct {
	TypeName string
	TypeKind Kind
	// Fields are indexed by field index: vtable slot for tables,
	// declaration order for structs.
	Fields []FieldDef
	// Values lists the enum members (enums only).
	Values []EnumValDef
	// Size and Align describe the inline struct layout (structs only).
	Size  int
	Align int
}

var _ Type = (*TypeDef)(nil)

func (d *TypeDef) Kind() Kind   { return d.TypeKind }
func (d *TypeDef) Name() string { return d.TypeName }

func (d *TypeDef) NumFields() int { return len(d.Fields) }

func (d *TypeDef) FieldIndex(name string) int {
	for i := range d.Fields {
		if d.Fields[i].Name == name {
			return i
		}
	}
	return -1
}

func (d *TypeDef) FieldName(i int) string { return d.Fields[i].Name }

func (d *TypeDef) FieldElementaryType(i int) ElementaryType { return d.Fields[i].Type }

func (d *TypeDef) FieldIsRepeating(i int) bool { return d.Fields[i].Repeating }

func (d *TypeDef) FieldIsSequence(i int) bool { return d.Fields[i].Type == Sequence }

func (d *TypeDef) FieldIsEnum(i int) bool {
	f := &d.Fields[i]
	return f.Ref != nil && f.Ref.TypeKind == EnumKind && f.Type.IsInteger()
}

func (d *TypeDef) FieldType(i int) Type {
	if d.Fields[i].Ref == nil {
		return nil
	}
	return d.Fields[i].Ref
}

func (d *TypeDef) FieldInlineSize(i int) int {
	f := &d.Fields[i]
	if f.Type == Sequence && f.Ref != nil && f.Ref.TypeKind == StructKind {
		return f.Ref.Size
	}
	return f.Type.ScalarSize()
}

func (d *TypeDef) FieldInlineAlignment(i int) int {
	f := &d.Fields[i]
	if f.Type == Sequence && f.Ref != nil && f.Ref.TypeKind == StructKind {
		return f.Ref.Align
	}
	return f.Type.ScalarSize()
}

func (d *TypeDef) StructFieldOffset(i int) int { return d.Fields[i].Offset }

func (d *TypeDef) InlineSize() int { return d.Size }
func (d *TypeDef) Alignment() int  { return d.Align }

func (d *TypeDef) EnumValue(name string) (int64, bool) {
	for _, v := range d.Values {
		if v.Name == name {
			return v.Value, true
		}
	}
	return 0, false
}

func (d *TypeDef) EnumName(value int64) (string, bool) {
	for _, v := range d.Values {
		if v.Value == value {
			return v.Name, true
		}
	}
	return "", false
}
