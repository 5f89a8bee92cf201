package schema

// reflectionSchema mirrors the reflection.fbs layout that compiled schema
// binaries use. Field order matches the vtable slot ids assigned by flatc.
var reflectionSchema = buildReflectionSchema()

// ReflectionSchema returns the type of a compiled schema binary's root
// table. Serializing a JSON schema description against it yields a buffer
// that Load accepts.
func ReflectionSchema() *TypeDef { return reflectionSchema }

func buildReflectionSchema() *TypeDef {
	baseType := &TypeDef{
		TypeName: "reflection.BaseType",
		TypeKind: EnumKind,
		Values: []EnumValDef{
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
			{Name: "Union", Value: 16},
			{Name: "Array", Value: 17},
			{Name: "Vector64", Value: 18},
		},
	}
	advancedFeatures := &TypeDef{
		TypeName: "reflection.AdvancedFeatures",
		TypeKind: EnumKind,
		Values: []EnumValDef{
			{Name: "AdvancedArrayFeatures", Value: 1},
			{Name: "AdvancedUnionFeatures", Value: 2},
			{Name: "OptionalScalars", Value: 4},
			{Name: "DefaultVectorsAndStrings", Value: 8},
		},
	}

	typeT := &TypeDef{
		TypeName: "reflection.Type",
		TypeKind: TableKind,
		Fields: []FieldDef{
			{Name: "base_type", Type: Int8, Ref: baseType},
			{Name: "element", Type: Int8, Ref: baseType},
			{Name: "index", Type: Int32},
			{Name: "fixed_length", Type: UInt16},
			{Name: "base_size", Type: UInt32},
			{Name: "element_size", Type: UInt32},
		},
	}
	keyValue := &TypeDef{
		TypeName: "reflection.KeyValue",
		TypeKind: TableKind,
		Fields: []FieldDef{
			{Name: "key", Type: String},
			{Name: "value", Type: String},
		},
	}
	enumVal := &TypeDef{
		TypeName: "reflection.EnumVal",
		TypeKind: TableKind,
		Fields: []FieldDef{
			{Name: "name", Type: String},
			{Name: "value", Type: Int64},
			{Name: "object", Type: Sequence},
			{Name: "union_type", Type: Sequence, Ref: typeT},
			{Name: "documentation", Type: String, Repeating: true},
			{Name: "attributes", Type: Sequence, Repeating: true, Ref: keyValue},
		},
	}
	enum := &TypeDef{
		TypeName: "reflection.Enum",
		TypeKind: TableKind,
		Fields: []FieldDef{
			{Name: "name", Type: String},
			{Name: "values", Type: Sequence, Repeating: true, Ref: enumVal},
			{Name: "is_union", Type: Bool},
			{Name: "underlying_type", Type: Sequence, Ref: typeT},
			{Name: "attributes", Type: Sequence, Repeating: true, Ref: keyValue},
			{Name: "documentation", Type: String, Repeating: true},
			{Name: "declaration_file", Type: String},
		},
	}
	field := &TypeDef{
		TypeName: "reflection.Field",
		TypeKind: TableKind,
		Fields: []FieldDef{
			{Name: "name", Type: String},
			{Name: "type", Type: Sequence, Ref: typeT},
			{Name: "id", Type: UInt16},
			{Name: "offset", Type: UInt16},
			{Name: "default_integer", Type: Int64},
			{Name: "default_real", Type: Float64},
			{Name: "deprecated", Type: Bool},
			{Name: "required", Type: Bool},
			{Name: "key", Type: Bool},
			{Name: "attributes", Type: Sequence, Repeating: true, Ref: keyValue},
			{Name: "documentation", Type: String, Repeating: true},
			{Name: "optional", Type: Bool},
			{Name: "padding", Type: UInt16},
			{Name: "offset64", Type: Bool},
		},
	}
	object := &TypeDef{
		TypeName: "reflection.Object",
		TypeKind: TableKind,
		Fields: []FieldDef{
			{Name: "name", Type: String},
			{Name: "fields", Type: Sequence, Repeating: true, Ref: field},
			{Name: "is_struct", Type: Bool},
			{Name: "minalign", Type: Int32},
			{Name: "bytesize", Type: Int32},
			{Name: "attributes", Type: Sequence, Repeating: true, Ref: keyValue},
			{Name: "documentation", Type: String, Repeating: true},
			{Name: "declaration_file", Type: String},
		},
	}
	// EnumVal's deprecated object slot still counts toward its vtable; the
	// placeholder reference keeps slot numbering intact.
	enumVal.Fields[2].Ref = object

	rpcCall := &TypeDef{
		TypeName: "reflection.RPCCall",
		TypeKind: TableKind,
		Fields: []FieldDef{
			{Name: "name", Type: String},
			{Name: "request", Type: Sequence, Ref: object},
			{Name: "response", Type: Sequence, Ref: object},
			{Name: "attributes", Type: Sequence, Repeating: true, Ref: keyValue},
			{Name: "documentation", Type: String, Repeating: true},
		},
	}
	service := &TypeDef{
		TypeName: "reflection.Service",
		TypeKind: TableKind,
		Fields: []FieldDef{
			{Name: "name", Type: String},
			{Name: "calls", Type: Sequence, Repeating: true, Ref: rpcCall},
			{Name: "attributes", Type: Sequence, Repeating: true, Ref: keyValue},
			{Name: "documentation", Type: String, Repeating: true},
			{Name: "declaration_file", Type: String},
		},
	}
	schemaFile := &TypeDef{
		TypeName: "reflection.SchemaFile",
		TypeKind: TableKind,
		Fields: []FieldDef{
			{Name: "filename", Type: String},
			{Name: "included_filenames", Type: String, Repeating: true},
		},
	}
	return &TypeDef{
		TypeName: "reflection.Schema",
		TypeKind: TableKind,
		Fields: []FieldDef{
			{Name: "objects", Type: Sequence, Repeating: true, Ref: object},
			{Name: "enums", Type: Sequence, Repeating: true, Ref: enum},
			{Name: "file_ident", Type: String},
			{Name: "file_ext", Type: String},
			{Name: "root_table", Type: Sequence, Ref: object},
			{Name: "services", Type: Sequence, Repeating: true, Ref: service},
			{Name: "advanced_features", Type: UInt64, Ref: advancedFeatures},
			{Name: "fbs_files", Type: Sequence, Repeating: true, Ref: schemaFile},
		},
	}
}
