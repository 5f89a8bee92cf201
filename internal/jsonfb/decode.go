package jsonfb

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	flatbuffers "github.com/google/flatbuffers/go"

	"github.com/TFMV/flatjson/internal/schema"
)

// Options controls JSON rendering.
type Options struct {
	// MultiLine renders one field or element per line with one space of
	// indentation per nesting level.
	MultiLine bool
	// MaxVectorSize replaces vectors with more elements than this by a
	// placeholder. Zero means no limit.
	MaxVectorSize int
	// UseStandardJSON quotes non-finite numbers and rewrites strings that
	// are not valid UTF-8 as byte arrays, so the output parses with
	// ordinary JSON tooling.
	UseStandardJSON bool
	// FloatPrecision fixes the number of decimal digits printed for
	// floating point values. Nil selects the shortest round-trippable
	// form.
	FloatPrecision *int
}

// ToJSON renders a finished flatbuffer as JSON text against the given table
// type. A buffer too short to hold a root offset renders as null.
func ToJSON(buf []byte, typ schema.Type, opts Options) string {
	if len(buf) < flatbuffers.SizeUOffsetT {
		return "null"
	}
	base := &toStringVisitor{multiLine: opts.MultiLine}
	v := &truncatingVisitor{
		base:         base,
		maxVector:    opts.MaxVectorSize,
		standardJSON: opts.UseStandardJSON,
		precision:    opts.FloatPrecision,
	}
	tab := flatbuffers.Table{Bytes: buf, Pos: flatbuffers.GetUOffsetT(buf)}
	iterateTable(tab, typ, v)
	return base.String()
}

// visitor receives one callback per structural event while walking a
// buffer. field and element fire before the value they introduce.
type visitor interface {
	startObject()
	endObject()
	field(setIdx int, name string)
	startVector(size int)
	endVector()
	element(idx int)
	boolean(v bool)
	int64v(v int64, enumName string)
	uint64v(v uint64, enumName string)
	float32v(v float32)
	float64v(v float64)
	str(b []byte)
}

func iterateTable(tab flatbuffers.Table, typ schema.Type, v visitor) {
	v.startObject()
	setIdx := 0
	for i := 0; i < typ.NumFields(); i++ {
		et := typ.FieldElementaryType(i)
		if et == schema.Union {
			continue
		}
		rel := flatbuffers.UOffsetT(tab.Offset(flatbuffers.VOffsetT(4 + 2*i)))
		if rel == 0 {
			continue
		}
		v.field(setIdx, typ.FieldName(i))
		setIdx++
		if typ.FieldIsRepeating(i) {
			iterateVector(tab, rel, typ, i, v)
			continue
		}
		abs := rel + tab.Pos
		switch et {
		case schema.String:
			v.str(tab.ByteVector(abs))
		case schema.Sequence:
			sub := typ.FieldType(i)
			if sub.Kind() == schema.StructKind {
				iterateStruct(flatbuffers.Table{Bytes: tab.Bytes, Pos: abs}, sub, v)
			} else {
				iterateTable(flatbuffers.Table{Bytes: tab.Bytes, Pos: tab.Indirect(abs)}, sub, v)
			}
		default:
			emitScalar(tab, abs, et, enumOf(typ, i), v)
		}
	}
	v.endObject()
}

// iterateStruct walks an inline struct starting at tab.Pos. Struct fields
// are always present.
func iterateStruct(tab flatbuffers.Table, typ schema.Type, v visitor) {
	v.startObject()
	for i := 0; i < typ.NumFields(); i++ {
		v.field(i, typ.FieldName(i))
		pos := tab.Pos + flatbuffers.UOffsetT(typ.StructFieldOffset(i))
		if et := typ.FieldElementaryType(i); et == schema.Sequence {
			iterateStruct(flatbuffers.Table{Bytes: tab.Bytes, Pos: pos}, typ.FieldType(i), v)
		} else {
			emitScalar(tab, pos, et, enumOf(typ, i), v)
		}
	}
	v.endObject()
}

func iterateVector(tab flatbuffers.Table, rel flatbuffers.UOffsetT, typ schema.Type, i int, v visitor) {
	n := tab.VectorLen(rel)
	v.startVector(n)
	start := tab.Vector(rel)
	elemSize := flatbuffers.UOffsetT(typ.FieldInlineSize(i))
	et := typ.FieldElementaryType(i)
	for j := 0; j < n; j++ {
		v.element(j)
		pos := start + flatbuffers.UOffsetT(j)*elemSize
		switch et {
		case schema.String:
			v.str(tab.ByteVector(pos))
		case schema.Sequence:
			sub := typ.FieldType(i)
			if sub.Kind() == schema.StructKind {
				iterateStruct(flatbuffers.Table{Bytes: tab.Bytes, Pos: pos}, sub, v)
			} else {
				iterateTable(flatbuffers.Table{Bytes: tab.Bytes, Pos: tab.Indirect(pos)}, sub, v)
			}
		default:
			emitScalar(tab, pos, et, enumOf(typ, i), v)
		}
	}
	v.endVector()
}

func enumOf(typ schema.Type, i int) schema.Type {
	if typ.FieldIsEnum(i) {
		return typ.FieldType(i)
	}
	return nil
}

func emitScalar(tab flatbuffers.Table, pos flatbuffers.UOffsetT, et schema.ElementaryType, enum schema.Type, v visitor) {
	name := func(val int64) string {
		if enum == nil {
			return ""
		}
		n, _ := enum.EnumName(val)
		return n
	}
	switch et {
	case schema.Bool:
		v.boolean(tab.GetBool(pos))
	case schema.Int8:
		x := int64(tab.GetInt8(pos))
		v.int64v(x, name(x))
	case schema.Int16:
		x := int64(tab.GetInt16(pos))
		v.int64v(x, name(x))
	case schema.Int32:
		x := int64(tab.GetInt32(pos))
		v.int64v(x, name(x))
	case schema.Int64:
		x := tab.GetInt64(pos)
		v.int64v(x, name(x))
	case schema.UInt8:
		x := uint64(tab.GetUint8(pos))
		v.uint64v(x, name(int64(x)))
	case schema.UInt16:
		x := uint64(tab.GetUint16(pos))
		v.uint64v(x, name(int64(x)))
	case schema.UInt32:
		x := uint64(tab.GetUint32(pos))
		v.uint64v(x, name(int64(x)))
	case schema.UInt64:
		x := tab.GetUint64(pos)
		v.uint64v(x, name(int64(x)))
	case schema.Float32:
		v.float32v(tab.GetFloat32(pos))
	case schema.Float64:
		v.float64v(tab.GetFloat64(pos))
	}
}

// toStringVisitor renders the callback stream as JSON text. Single line
// output pads braces and brackets with spaces; multi-line output indents
// one space per nesting level.
type toStringVisitor struct {
	sb        strings.Builder
	multiLine bool
	depth     int
}

func (v *toStringVisitor) String() string { return v.sb.String() }

func (v *toStringVisitor) raw(s string) { v.sb.WriteString(s) }

func (v *toStringVisitor) delim() {
	if v.multiLine {
		v.sb.WriteString("\n")
		for i := 0; i < v.depth; i++ {
			v.sb.WriteString(" ")
		}
	} else {
		v.sb.WriteString(" ")
	}
}

func (v *toStringVisitor) startObject() {
	v.sb.WriteString("{")
	v.depth++
	v.delim()
}

func (v *toStringVisitor) endObject() {
	v.depth--
	v.delim()
	v.sb.WriteString("}")
}

func (v *toStringVisitor) field(setIdx int, name string) {
	if setIdx > 0 {
		v.sb.WriteString(",")
		v.delim()
	}
	v.sb.WriteString("\"")
	v.sb.WriteString(name)
	v.sb.WriteString("\": ")
}

func (v *toStringVisitor) startVector(int) {
	v.sb.WriteString("[")
	v.depth++
	v.delim()
}

func (v *toStringVisitor) endVector() {
	v.depth--
	v.delim()
	v.sb.WriteString("]")
}

func (v *toStringVisitor) element(idx int) {
	if idx > 0 {
		v.sb.WriteString(",")
		v.delim()
	}
}

func (v *toStringVisitor) boolean(x bool) {
	if x {
		v.sb.WriteString("true")
	} else {
		v.sb.WriteString("false")
	}
}

func (v *toStringVisitor) int64v(x int64, enumName string) {
	if enumName != "" {
		v.str([]byte(enumName))
		return
	}
	v.sb.WriteString(strconv.FormatInt(x, 10))
}

func (v *toStringVisitor) uint64v(x uint64, enumName string) {
	if enumName != "" {
		v.str([]byte(enumName))
		return
	}
	v.sb.WriteString(strconv.FormatUint(x, 10))
}

func (v *toStringVisitor) float32v(x float32) { v.raw(formatFloat(float64(x), 32)) }

func (v *toStringVisitor) float64v(x float64) { v.raw(formatFloat(x, 64)) }

func (v *toStringVisitor) str(b []byte) {
	v.sb.WriteString("\"")
	escapeString(&v.sb, b)
	v.sb.WriteString("\"")
}

// escapeString writes the string body with JSON escapes for the quote, the
// backslash and control characters. All other bytes pass through verbatim,
// so the output may contain raw non-UTF-8 data.
func escapeString(sb *strings.Builder, b []byte) {
	for _, c := range b {
		switch c {
		case '"':
			sb.WriteString("\\\"")
		case '\\':
			sb.WriteString("\\\\")
		case '\b':
			sb.WriteString("\\b")
		case '\f':
			sb.WriteString("\\f")
		case '\n':
			sb.WriteString("\\n")
		case '\r':
			sb.WriteString("\\r")
		case '\t':
			sb.WriteString("\\t")
		default:
			if c < 0x20 {
				fmt.Fprintf(sb, "\\u%04x", c)
			} else {
				sb.WriteByte(c)
			}
		}
	}
}

// truncatingVisitor wraps toStringVisitor with the rendering options:
// oversized vectors collapse to a placeholder, floats honor the precision
// setting, and standard JSON mode keeps the output parseable by ordinary
// JSON tooling. skip counts vector nesting below a collapsed vector.
type truncatingVisitor struct {
	base         *toStringVisitor
	maxVector    int
	standardJSON bool
	precision    *int
	skip         int
}

func (t *truncatingVisitor) startObject() {
	if t.skip > 0 {
		return
	}
	t.base.startObject()
}

func (t *truncatingVisitor) endObject() {
	if t.skip > 0 {
		return
	}
	t.base.endObject()
}

func (t *truncatingVisitor) field(setIdx int, name string) {
	if t.skip > 0 {
		return
	}
	t.base.field(setIdx, name)
}

func (t *truncatingVisitor) startVector(size int) {
	if t.skip > 0 {
		t.skip++
		return
	}
	if t.maxVector > 0 && size > t.maxVector {
		t.base.startVector(1)
		t.base.element(0)
		t.base.str([]byte(fmt.Sprintf("... %d elements ...", size)))
		t.base.endVector()
		t.skip = 1
		return
	}
	t.base.startVector(size)
}

func (t *truncatingVisitor) endVector() {
	if t.skip > 0 {
		t.skip--
		return
	}
	t.base.endVector()
}

func (t *truncatingVisitor) element(idx int) {
	if t.skip > 0 {
		return
	}
	t.base.element(idx)
}

func (t *truncatingVisitor) boolean(x bool) {
	if t.skip > 0 {
		return
	}
	t.base.boolean(x)
}

func (t *truncatingVisitor) int64v(x int64, enumName string) {
	if t.skip > 0 {
		return
	}
	t.base.int64v(x, enumName)
}

func (t *truncatingVisitor) uint64v(x uint64, enumName string) {
	if t.skip > 0 {
		return
	}
	t.base.uint64v(x, enumName)
}

func (t *truncatingVisitor) float32v(x float32) { t.handleFloat(float64(x), 32) }

func (t *truncatingVisitor) float64v(x float64) { t.handleFloat(x, 64) }

func (t *truncatingVisitor) handleFloat(x float64, bits int) {
	if t.skip > 0 {
		return
	}
	// Negative zero keeps its sign regardless of precision settings.
	if x == 0 && math.Signbit(x) {
		t.base.raw("-0.0")
		return
	}
	if math.IsNaN(x) || math.IsInf(x, 0) {
		s := nonFiniteName(x)
		if t.standardJSON {
			t.base.str([]byte(s))
		} else {
			t.base.raw(s)
		}
		return
	}
	if t.precision != nil {
		t.base.raw(formatFloatPrec(x, *t.precision))
		return
	}
	t.base.raw(formatFloat(x, bits))
}

func nonFiniteName(x float64) string {
	switch {
	case math.IsInf(x, 1):
		return "inf"
	case math.IsInf(x, -1):
		return "-inf"
	case math.Signbit(x):
		return "-nan"
	}
	return "nan"
}

func (t *truncatingVisitor) str(b []byte) {
	if t.skip > 0 {
		return
	}
	if t.standardJSON && !utf8.Valid(b) {
		// Standard JSON cannot carry arbitrary bytes in a string, so
		// rewrite it as the byte array it came from.
		t.base.startVector(len(b))
		for i, c := range b {
			t.base.element(i)
			t.base.uint64v(uint64(c), "")
		}
		t.base.endVector()
		return
	}
	t.base.str(b)
}
