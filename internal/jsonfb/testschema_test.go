package jsonfb_test

import "github.com/TFMV/flatjson/internal/schema"

// testConfig is a hand-built type covering every scalar width, strings,
// enums, structs, nested tables and vectors of each.
var testConfig = newTestConfig()

func scalarField(name string, et schema.ElementaryType) schema.FieldDef {
	return schema.FieldDef{Name: name, Type: et}
}

func vectorField(name string, et schema.ElementaryType) schema.FieldDef {
	return schema.FieldDef{Name: name, Type: et, Repeating: true}
}

func newTestConfig() *schema.TypeDef {
	baseType := &schema.TypeDef{
		TypeName: "BaseType",
		TypeKind: schema.EnumKind,
		Values: []schema.EnumValDef{
			{Name: "None", Value: 0},
			{Name: "UType", Value: 1},
			{Name: "Bool", Value: 2},
			{Name: "Byte", Value: 3},
			{Name: "UByte", Value: 4},
			{Name: "Short", Value: 5},
			{Name: "UShort", Value: 6},
			{Name: "Int", Value: 7},
			{Name: "UInt", Value: 8},
			{Name: "Long", Value: 9},
			{Name: "ULong", Value: 10},
			{Name: "Float", Value: 11},
			{Name: "Double", Value: 12},
			{Name: "String", Value: 13},
			{Name: "Vector", Value: 14},
			{Name: "Obj", Value: 15},
		},
	}
	nonConsecutive := &schema.TypeDef{
		TypeName: "NonConsecutive",
		TypeKind: schema.EnumKind,
		Values: []schema.EnumValDef{
			{Name: "Zero", Value: 0},
			{Name: "Big", Value: 10000000},
		},
	}

	application := &schema.TypeDef{
		TypeName: "Application",
		TypeKind: schema.TableKind,
		Fields: []schema.FieldDef{
			scalarField("name", schema.String),
			scalarField("priority", schema.Int32),
			scalarField("long_thingy", schema.UInt64),
		},
	}
	vectorOfStrings := &schema.TypeDef{
		TypeName: "VectorOfStrings",
		TypeKind: schema.TableKind,
		Fields: []schema.FieldDef{
			vectorField("str", schema.String),
		},
	}
	vectorOfVectorOfString := &schema.TypeDef{
		TypeName: "VectorOfVectorOfString",
		TypeKind: schema.TableKind,
		Fields: []schema.FieldDef{
			{Name: "v", Type: schema.Sequence, Repeating: true, Ref: vectorOfStrings},
		},
	}

	fooStructNested := &schema.TypeDef{
		TypeName: "FooStructNested",
		TypeKind: schema.StructKind,
		Fields: []schema.FieldDef{
			{Name: "foo_byte", Type: schema.Int8, Offset: 0},
		},
		Size:  1,
		Align: 1,
	}
	fooStruct := &schema.TypeDef{
		TypeName: "FooStruct",
		TypeKind: schema.StructKind,
		Fields: []schema.FieldDef{
			{Name: "foo_byte", Type: schema.Int8, Offset: 0},
			{Name: "nested_struct", Type: schema.Sequence, Ref: fooStructNested, Offset: 1},
		},
		Size:  2,
		Align: 1,
	}
	fooStructScalars := &schema.TypeDef{
		TypeName: "FooStructScalars",
		TypeKind: schema.StructKind,
		Fields: []schema.FieldDef{
			{Name: "foo_float", Type: schema.Float32, Offset: 0},
			{Name: "foo_double", Type: schema.Float64, Offset: 8},
			{Name: "foo_int32", Type: schema.Int32, Offset: 16},
			{Name: "foo_uint32", Type: schema.UInt32, Offset: 20},
			{Name: "foo_int64", Type: schema.Int64, Offset: 24},
			{Name: "foo_uint64", Type: schema.UInt64, Offset: 32},
		},
		Size:  40,
		Align: 8,
	}
	fooStructEnum := &schema.TypeDef{
		TypeName: "FooStructEnum",
		TypeKind: schema.StructKind,
		Fields: []schema.FieldDef{
			{Name: "foo_enum", Type: schema.UInt8, Ref: baseType, Offset: 0},
		},
		Size:  1,
		Align: 1,
	}

	return &schema.TypeDef{
		TypeName: "Configuration",
		TypeKind: schema.TableKind,
		Fields: []schema.FieldDef{
			{Name: "apps", Type: schema.Sequence, Repeating: true, Ref: application},
			{Name: "single_application", Type: schema.Sequence, Ref: application},
			{Name: "vov", Type: schema.Sequence, Ref: vectorOfVectorOfString},
			scalarField("foo_bool", schema.Bool),
			scalarField("foo_byte", schema.Int8),
			scalarField("foo_ubyte", schema.UInt8),
			scalarField("foo_short", schema.Int16),
			scalarField("foo_ushort", schema.UInt16),
			scalarField("foo_int", schema.Int32),
			scalarField("foo_uint", schema.UInt32),
			scalarField("foo_long", schema.Int64),
			scalarField("foo_ulong", schema.UInt64),
			scalarField("foo_float", schema.Float32),
			scalarField("foo_double", schema.Float64),
			scalarField("foo_string", schema.String),
			{Name: "foo_enum", Type: schema.Int8, Ref: baseType},
			{Name: "foo_enum_nonconsecutive", Type: schema.Int32, Ref: nonConsecutive},
			vectorField("vector_foo_byte", schema.Int8),
			vectorField("vector_foo_ubyte", schema.UInt8),
			vectorField("vector_foo_bool", schema.Bool),
			vectorField("vector_foo_short", schema.Int16),
			vectorField("vector_foo_ushort", schema.UInt16),
			vectorField("vector_foo_int", schema.Int32),
			vectorField("vector_foo_uint", schema.UInt32),
			vectorField("vector_foo_long", schema.Int64),
			vectorField("vector_foo_ulong", schema.UInt64),
			vectorField("vector_foo_float", schema.Float32),
			vectorField("vector_foo_double", schema.Float64),
			vectorField("vector_foo_string", schema.String),
			{Name: "vector_foo_enum", Type: schema.Int8, Repeating: true, Ref: baseType},
			{Name: "foo_struct", Type: schema.Sequence, Ref: fooStruct},
			{Name: "foo_struct_scalars", Type: schema.Sequence, Ref: fooStructScalars},
			{Name: "foo_struct_enum", Type: schema.Sequence, Ref: fooStructEnum},
			{Name: "vector_foo_struct", Type: schema.Sequence, Repeating: true, Ref: fooStruct},
			{Name: "vector_foo_struct_scalars", Type: schema.Sequence, Repeating: true, Ref: fooStructScalars},
		},
	}
}
