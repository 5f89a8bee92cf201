package jsonfb

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"

	flatbuffers "github.com/google/flatbuffers/go"

	"github.com/TFMV/flatjson/internal/schema"
	"github.com/TFMV/flatjson/internal/token"
)

// frame tracks one partially parsed table or struct. Scalar and offset
// values accumulate in elements until the closing brace, when the whole
// object is committed to the builder at once. vectors holds the open array
// accumulators for the current field; it only reaches depth two for byte
// array elements inside a string vector.
type frame struct {
	typ        schema.Type
	fieldIndex int
	fieldName  string
	elements   []fieldElement
	vectors    [][]element
}

type parser struct {
	b   *flatbuffers.Builder
	tok *token.Tokenizer

	stack    []frame
	root     flatbuffers.UOffsetT
	haveRoot bool
}

// Encode serializes a JSON document against the given table type and
// returns a finished flatbuffer.
func Encode(data []byte, typ schema.Type) ([]byte, error) {
	b := flatbuffers.NewBuilder(1024)
	root, err := EncodeBuilder(data, typ, b)
	if err != nil {
		return nil, err
	}
	b.Finish(root)
	return b.FinishedBytes(), nil
}

// EncodeBuilder serializes a JSON document into an existing builder and
// returns the offset of the root table, leaving the buffer unfinished.
func EncodeBuilder(data []byte, typ schema.Type, b *flatbuffers.Builder) (flatbuffers.UOffsetT, error) {
	if typ.Kind() != schema.TableKind {
		return 0, fmt.Errorf("root type %s is not a table", typ.Name())
	}
	p := &parser{b: b, tok: token.New(data)}
	return p.run(typ)
}

func (p *parser) run(root schema.Type) (flatbuffers.UOffsetT, error) {
	for {
		t := p.tok.Next()
		var err error
		switch t {
		case token.Error:
			return 0, p.tok.Err()
		case token.End:
			if !p.haveRoot {
				return 0, fmt.Errorf("no document found")
			}
			return p.root, nil
		case token.StartObject:
			err = p.startObject(root)
		case token.EndObject:
			err = p.endObject()
		case token.StartArray:
			err = p.startArray()
		case token.EndArray:
			err = p.finishVector()
		case token.Field:
			err = p.setField(p.tok.FieldName())
		case token.NumberValue:
			err = p.addNumber()
		case token.StringValue:
			err = p.addString(p.tok.Value())
		case token.TrueValue:
			err = p.addInt(intValue{Magnitude: 1})
		case token.FalseValue:
			err = p.addInt(intValue{})
		case token.NullValue:
			err = p.addNull()
		}
		if err != nil {
			return 0, err
		}
	}
}

func (p *parser) top() *frame { return &p.stack[len(p.stack)-1] }

func (p *parser) startObject(root schema.Type) error {
	if len(p.stack) == 0 {
		if p.haveRoot {
			return fmt.Errorf("multiple root objects")
		}
		p.stack = append(p.stack, frame{typ: root, fieldIndex: -1})
		return nil
	}
	f := p.top()
	if f.fieldIndex < 0 {
		return fmt.Errorf("object value with no field in %s", f.typ.Name())
	}
	if !f.typ.FieldIsSequence(f.fieldIndex) {
		return fmt.Errorf("field %q in %s is not an object", f.fieldName, f.typ.Name())
	}
	if f.typ.FieldIsRepeating(f.fieldIndex) && len(f.vectors) == 0 {
		return fmt.Errorf("field %q in %s is a vector", f.fieldName, f.typ.Name())
	}
	sub := f.typ.FieldType(f.fieldIndex)
	if sub == nil {
		return fmt.Errorf("field %q in %s has no object type", f.fieldName, f.typ.Name())
	}
	p.stack = append(p.stack, frame{typ: sub, fieldIndex: -1})
	return nil
}

func (p *parser) endObject() error {
	f := p.top()
	if len(f.vectors) > 0 {
		return fmt.Errorf("unclosed array in %s", f.typ.Name())
	}
	elem, err := p.writeObject(f)
	p.stack = p.stack[:len(p.stack)-1]
	if err != nil {
		return err
	}
	if len(p.stack) == 0 {
		if elem.kind != elemOffset {
			return fmt.Errorf("root type %s is not a table", f.typ.Name())
		}
		p.root = elem.offset
		p.haveRoot = true
		return nil
	}
	return p.deliver(elem)
}

// deliver routes a completed value to the enclosing frame, either into the
// open array accumulator or directly onto the pending field.
func (p *parser) deliver(elem element) error {
	f := p.top()
	if len(f.vectors) > 0 {
		f.vectors[len(f.vectors)-1] = append(f.vectors[len(f.vectors)-1], elem)
		return nil
	}
	if f.fieldIndex < 0 {
		return fmt.Errorf("value with no field in %s", f.typ.Name())
	}
	f.elements = append(f.elements, fieldElement{index: f.fieldIndex, elem: elem})
	return nil
}

func (p *parser) startArray() error {
	if len(p.stack) == 0 {
		return fmt.Errorf("root value must be an object")
	}
	f := p.top()
	if f.fieldIndex < 0 {
		return fmt.Errorf("array value with no field in %s", f.typ.Name())
	}
	et := f.typ.FieldElementaryType(f.fieldIndex)
	if len(f.vectors) > 0 {
		// A nested array is only meaningful as raw string bytes inside
		// a string vector.
		if et != schema.String || !f.typ.FieldIsRepeating(f.fieldIndex) {
			return fmt.Errorf("vectors of vectors are not supported for field %q in %s", f.fieldName, f.typ.Name())
		}
	} else if !f.typ.FieldIsRepeating(f.fieldIndex) && et != schema.String {
		return fmt.Errorf("field %q in %s is not a vector", f.fieldName, f.typ.Name())
	}
	f.vectors = append(f.vectors, []element{})
	return nil
}

func (p *parser) setField(name string) error {
	if len(p.stack) == 0 {
		return fmt.Errorf("field %q outside of any object", name)
	}
	f := p.top()
	i := f.typ.FieldIndex(name)
	if i < 0 {
		return fmt.Errorf("invalid field name %q in %s", name, f.typ.Name())
	}
	f.fieldIndex = i
	f.fieldName = name
	return nil
}

func (p *parser) addNumber() error {
	if neg, mag, ok := p.tok.AsInt(); ok {
		return p.addInt(intValue{Negative: neg, Magnitude: mag})
	}
	d, ok := p.tok.AsDouble()
	if !ok {
		return fmt.Errorf("invalid number %q", p.tok.Value())
	}
	return p.addDouble(d)
}

func (p *parser) addInt(v intValue) error {
	if len(p.stack) == 0 {
		return fmt.Errorf("root value must be an object")
	}
	f := p.top()
	if len(f.vectors) == 0 && f.fieldIndex < 0 {
		return fmt.Errorf("value with no field in %s", f.typ.Name())
	}
	et := f.typ.FieldElementaryType(f.fieldIndex)
	switch {
	case et.IsInteger() || et == schema.Bool || et == schema.Float32 || et == schema.Float64:
	case et == schema.String && len(f.vectors) > 0:
		// Byte values inside an array form a raw string.
	default:
		return fmt.Errorf("cannot put a number in field %q in %s", f.fieldName, f.typ.Name())
	}
	return p.deliver(intElement(v))
}

func (p *parser) addDouble(d float64) error {
	if len(p.stack) == 0 {
		return fmt.Errorf("root value must be an object")
	}
	f := p.top()
	if len(f.vectors) == 0 && f.fieldIndex < 0 {
		return fmt.Errorf("value with no field in %s", f.typ.Name())
	}
	et := f.typ.FieldElementaryType(f.fieldIndex)
	if !et.IsInteger() && et != schema.Float32 && et != schema.Float64 {
		return fmt.Errorf("cannot put a number in field %q in %s", f.fieldName, f.typ.Name())
	}
	return p.deliver(doubleElement(d))
}

func (p *parser) addString(s string) error {
	if len(p.stack) == 0 {
		return fmt.Errorf("root value must be an object")
	}
	f := p.top()
	if len(f.vectors) == 0 && f.fieldIndex < 0 {
		return fmt.Errorf("value with no field in %s", f.typ.Name())
	}
	et := f.typ.FieldElementaryType(f.fieldIndex)
	switch {
	case et == schema.String:
		if f.typ.FieldIsRepeating(f.fieldIndex) && len(f.vectors) == 0 {
			return fmt.Errorf("field %q in %s is a vector", f.fieldName, f.typ.Name())
		}
		return p.deliver(offsetElement(p.b.CreateString(s)))
	case f.typ.FieldIsEnum(f.fieldIndex):
		v, ok := f.typ.FieldType(f.fieldIndex).EnumValue(s)
		if !ok {
			return fmt.Errorf("enum value %q not found for field %q in %s", s, f.fieldName, f.typ.Name())
		}
		if v < 0 {
			return p.deliver(intElement(intValue{Negative: true, Magnitude: uint64(-v)}))
		}
		return p.deliver(intElement(intValue{Magnitude: uint64(v)}))
	case et == schema.Float32 || et == schema.Float64:
		d, ok := parseQuotedDouble(s)
		if !ok {
			return fmt.Errorf("invalid number %q for field %q in %s", s, f.fieldName, f.typ.Name())
		}
		return p.deliver(doubleElement(d))
	}
	return fmt.Errorf("cannot put a string in field %q in %s", f.fieldName, f.typ.Name())
}

// parseQuotedDouble accepts the quoted spellings of non-finite values in
// addition to ordinary decimal text.
func parseQuotedDouble(s string) (float64, bool) {
	body := strings.TrimPrefix(s, "-")
	switch body {
	case "nan":
		v := math.NaN()
		if body != s {
			v = math.Float64frombits(math.Float64bits(v) | 1<<63)
		}
		return v, true
	case "inf":
		if body != s {
			return math.Inf(-1), true
		}
		return math.Inf(1), true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func (p *parser) addNull() error {
	if len(p.stack) == 0 {
		return fmt.Errorf("root value must be an object")
	}
	f := p.top()
	if len(f.vectors) > 0 {
		return fmt.Errorf("null is not allowed inside vectors in %s", f.typ.Name())
	}
	if f.fieldIndex < 0 {
		return fmt.Errorf("value with no field in %s", f.typ.Name())
	}
	// A null value leaves the field unset.
	f.fieldIndex = -1
	return nil
}

// finishVector commits the innermost open array to the builder and routes
// the resulting offset to its destination.
func (p *parser) finishVector() error {
	if len(p.stack) == 0 {
		return fmt.Errorf("unexpected array close")
	}
	f := p.top()
	if len(f.vectors) == 0 {
		return fmt.Errorf("unexpected array close in %s", f.typ.Name())
	}
	vec := f.vectors[len(f.vectors)-1]
	f.vectors = f.vectors[:len(f.vectors)-1]

	i := f.fieldIndex
	et := f.typ.FieldElementaryType(i)

	// A byte array standing in for a string, either directly on a string
	// field or as one element of a string vector.
	if et == schema.String && (len(f.vectors) > 0 || !f.typ.FieldIsRepeating(i)) {
		raw := make([]byte, len(vec))
		for j, e := range vec {
			if e.kind != elemInt || !e.i.fitsUnsigned(8) {
				return fmt.Errorf("non-byte value in raw string for field %q in %s", f.fieldName, f.typ.Name())
			}
			raw[j] = byte(e.i.Magnitude)
		}
		off := p.b.CreateByteString(raw)
		if len(f.vectors) > 0 {
			f.vectors[len(f.vectors)-1] = append(f.vectors[len(f.vectors)-1], offsetElement(off))
			return nil
		}
		f.elements = append(f.elements, fieldElement{index: i, elem: offsetElement(off)})
		return nil
	}

	off, err := p.writeVector(f, i, et, vec)
	if err != nil {
		return err
	}
	f.elements = append(f.elements, fieldElement{index: i, elem: offsetElement(off)})
	return nil
}

func (p *parser) writeVector(f *frame, i int, et schema.ElementaryType, vec []element) (flatbuffers.UOffsetT, error) {
	n := len(vec)
	b := p.b
	switch et {
	case schema.String:
		b.StartVector(flatbuffers.SizeUOffsetT, n, flatbuffers.SizeUOffsetT)
		for j := n - 1; j >= 0; j-- {
			if vec[j].kind != elemOffset {
				return 0, fmt.Errorf("non-string value in vector field %q in %s", f.fieldName, f.typ.Name())
			}
			b.PrependUOffsetT(vec[j].offset)
		}
		return b.EndVector(n), nil

	case schema.Sequence:
		sub := f.typ.FieldType(i)
		if sub != nil && sub.Kind() == schema.StructKind {
			b.StartVector(sub.InlineSize(), n, sub.Alignment())
			for j := n - 1; j >= 0; j-- {
				if vec[j].kind != elemStruct {
					return 0, fmt.Errorf("non-struct value in vector field %q in %s", f.fieldName, f.typ.Name())
				}
				placeBytes(b, vec[j].raw)
			}
			return b.EndVector(n), nil
		}
		b.StartVector(flatbuffers.SizeUOffsetT, n, flatbuffers.SizeUOffsetT)
		for j := n - 1; j >= 0; j-- {
			if vec[j].kind != elemOffset {
				return 0, fmt.Errorf("non-table value in vector field %q in %s", f.fieldName, f.typ.Name())
			}
			b.PrependUOffsetT(vec[j].offset)
		}
		return b.EndVector(n), nil
	}

	size := et.ScalarSize()
	b.StartVector(size, n, size)
	for j := n - 1; j >= 0; j-- {
		e := vec[j]
		if e.kind != elemInt && e.kind != elemDouble {
			return 0, fmt.Errorf("non-scalar value in vector field %q in %s", f.fieldName, f.typ.Name())
		}
		prependScalar(b, et, e)
	}
	return b.EndVector(n), nil
}

// prependScalar pushes one scalar of the given elementary type, converting
// between the integer and double representations as needed.
func prependScalar(b *flatbuffers.Builder, et schema.ElementaryType, e element) {
	switch et {
	case schema.Bool:
		b.PrependBool(e.intBits() != 0)
	case schema.Int8:
		b.PrependInt8(int8(e.intBits()))
	case schema.UInt8:
		b.PrependUint8(uint8(e.intBits()))
	case schema.Int16:
		b.PrependInt16(int16(e.intBits()))
	case schema.UInt16:
		b.PrependUint16(uint16(e.intBits()))
	case schema.Int32:
		b.PrependInt32(int32(e.intBits()))
	case schema.UInt32:
		b.PrependUint32(uint32(e.intBits()))
	case schema.Int64:
		b.PrependInt64(int64(e.intBits()))
	case schema.UInt64:
		b.PrependUint64(e.intBits())
	case schema.Float32:
		b.PrependFloat32(float32(e.floatVal()))
	case schema.Float64:
		b.PrependFloat64(e.floatVal())
	}
}

// intBits returns the element as a two's-complement bit pattern, narrowing
// like a cast for every smaller width.
func (e element) intBits() uint64 {
	if e.kind == elemDouble {
		return uint64(int64(e.d))
	}
	return e.i.uint64()
}

func (e element) floatVal() float64 {
	if e.kind == elemInt {
		return e.i.float64()
	}
	return e.d
}

// placeBytes pushes raw inline bytes onto the builder without padding.
func placeBytes(b *flatbuffers.Builder, raw []byte) {
	for j := len(raw) - 1; j >= 0; j-- {
		b.PlaceByte(raw[j])
	}
}

// writeObject commits a completed frame: tables become an offset, structs
// become raw inline bytes for the enclosing table to place.
func (p *parser) writeObject(f *frame) (element, error) {
	if f.typ.Kind() == schema.StructKind {
		return p.writeStruct(f)
	}
	b := p.b
	b.StartObject(f.typ.NumFields())
	// When a field was given more than once the last value wins, so walk
	// backwards and keep the first slot written.
	written := make(map[int]bool, len(f.elements))
	for j := len(f.elements) - 1; j >= 0; j-- {
		fe := f.elements[j]
		if written[fe.index] {
			continue
		}
		written[fe.index] = true
		if err := p.writeTableField(f.typ, fe.index, fe.elem); err != nil {
			return element{}, err
		}
	}
	return offsetElement(b.EndObject()), nil
}

func (p *parser) writeTableField(typ schema.Type, i int, e element) error {
	b := p.b
	if typ.FieldIsRepeating(i) {
		if e.kind != elemOffset {
			return fmt.Errorf("field %q in %s is a vector", typ.FieldName(i), typ.Name())
		}
		b.PrependUOffsetT(e.offset)
		b.Slot(i)
		return nil
	}
	et := typ.FieldElementaryType(i)
	switch et {
	case schema.String:
		if e.kind != elemOffset {
			return fmt.Errorf("field %q in %s is a string", typ.FieldName(i), typ.Name())
		}
		b.PrependUOffsetT(e.offset)
		b.Slot(i)
		return nil
	case schema.Sequence:
		switch e.kind {
		case elemOffset:
			b.PrependUOffsetT(e.offset)
			b.Slot(i)
			return nil
		case elemStruct:
			b.Prep(typ.FieldInlineAlignment(i), len(e.raw))
			placeBytes(b, e.raw)
			b.PrependStructSlot(i, b.Offset(), 0)
			return nil
		}
		return fmt.Errorf("field %q in %s is an object", typ.FieldName(i), typ.Name())
	case schema.Union:
		return fmt.Errorf("field %q in %s is a union, which is not supported", typ.FieldName(i), typ.Name())
	}
	if e.kind != elemInt && e.kind != elemDouble {
		return fmt.Errorf("field %q in %s is a scalar", typ.FieldName(i), typ.Name())
	}
	// Scalars always get a slot so explicit zero and false values, and
	// negative zero in particular, survive serialization.
	prependScalar(b, et, e)
	b.Slot(i)
	return nil
}

// writeStruct lays out a struct's fields at their fixed offsets. Every
// field must be present.
func (p *parser) writeStruct(f *frame) (element, error) {
	typ := f.typ
	last := make(map[int]element, typ.NumFields())
	for _, fe := range f.elements {
		last[fe.index] = fe.elem
	}
	raw := make([]byte, typ.InlineSize())
	for i := 0; i < typ.NumFields(); i++ {
		e, ok := last[i]
		if !ok {
			return element{}, fmt.Errorf("all fields must be specified for struct types (field %s missing)", typ.FieldName(i))
		}
		if err := setStructElement(raw, typ, i, e); err != nil {
			return element{}, err
		}
	}
	return structElement(raw), nil
}

func setStructElement(raw []byte, typ schema.Type, i int, e element) error {
	off := typ.StructFieldOffset(i)
	et := typ.FieldElementaryType(i)
	switch et {
	case schema.Sequence:
		if e.kind != elemStruct {
			return fmt.Errorf("field %q in %s is a struct", typ.FieldName(i), typ.Name())
		}
		copy(raw[off:], e.raw)
		return nil
	case schema.String, schema.Union:
		return fmt.Errorf("field %q in %s cannot be stored inline", typ.FieldName(i), typ.Name())
	}
	if e.kind != elemInt && e.kind != elemDouble {
		return fmt.Errorf("field %q in %s is a scalar", typ.FieldName(i), typ.Name())
	}
	switch et {
	case schema.Bool:
		if e.intBits() != 0 {
			raw[off] = 1
		}
	case schema.Int8, schema.UInt8:
		raw[off] = byte(e.intBits())
	case schema.Int16, schema.UInt16:
		binary.LittleEndian.PutUint16(raw[off:], uint16(e.intBits()))
	case schema.Int32, schema.UInt32:
		binary.LittleEndian.PutUint32(raw[off:], uint32(e.intBits()))
	case schema.Int64, schema.UInt64:
		binary.LittleEndian.PutUint64(raw[off:], e.intBits())
	case schema.Float32:
		binary.LittleEndian.PutUint32(raw[off:], math.Float32bits(float32(e.floatVal())))
	case schema.Float64:
		binary.LittleEndian.PutUint64(raw[off:], math.Float64bits(e.floatVal()))
	}
	return nil
}
