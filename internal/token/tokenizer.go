// Package token provides a streaming tokenizer for schema-driven JSON
// documents. Beyond standard JSON it accepts C and C++ style comments and
// the bare non-finite number spellings nan, -nan, inf and -inf. Trailing
// commas are rejected.
package token

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// Type is the kind of a token returned by Next.
type Type int

const (
	End Type = iota
	Error
	StartObject
	EndObject
	StartArray
	EndArray
	Field
	NumberValue
	StringValue
	TrueValue
	FalseValue
	NullValue
)

func (t Type) String() string {
	switch t {
	case End:
		return "end"
	case Error:
		return "error"
	case StartObject:
		return "start object"
	case EndObject:
		return "end object"
	case StartArray:
		return "start array"
	case EndArray:
		return "end array"
	case Field:
		return "field"
	case NumberValue:
		return "number"
	case StringValue:
		return "string"
	case TrueValue:
		return "true"
	case FalseValue:
		return "false"
	case NullValue:
		return "null"
	}
	return "unknown"
}

type state int

const (
	// Expecting any value. Used at the root, after a field's colon and
	// after a comma inside an array.
	stateValue state = iota
	// Right after an open bracket, where an immediate close is allowed.
	stateValueOrArrayEnd
	// Right after an open brace, where an immediate close is allowed.
	stateFieldOrObjectEnd
	// After a comma inside an object.
	stateField
	// After a completed value inside a container.
	stateCommaOrEnd
	stateEnd
)

// Tokenizer walks a JSON document one token at a time. After a Field or
// value token the corresponding accessor holds the token's text.
type Tokenizer struct {
	data  []byte
	pos   int
	state state
	stack []byte

	field string
	value string
	err   error
}

func New(data []byte) *Tokenizer {
	return &Tokenizer{data: data}
}

// FieldName returns the name of the most recent Field token.
func (t *Tokenizer) FieldName() string { return t.field }

// Value returns the decoded text of the most recent string or number token.
func (t *Tokenizer) Value() string { return t.value }

// Err returns the detail of the most recent Error token.
func (t *Tokenizer) Err() error { return t.err }

func (t *Tokenizer) fail(format string, args ...interface{}) Type {
	t.err = fmt.Errorf(format, args...)
	return Error
}

// Next returns the next token, or End once the document is exhausted.
func (t *Tokenizer) Next() Type {
	if t.err != nil {
		return Error
	}
	if !t.skipSpace() {
		return Error
	}

	if t.state == stateEnd {
		if t.pos < len(t.data) {
			return t.fail("unexpected data after document at offset %d", t.pos)
		}
		return End
	}
	if t.pos >= len(t.data) {
		return t.fail("unexpected end of input")
	}

	c := t.data[t.pos]
	switch t.state {
	case stateValue, stateValueOrArrayEnd:
		if c == ']' && t.state == stateValueOrArrayEnd {
			return t.closeContainer(']', EndArray)
		}
		return t.parseValue()

	case stateFieldOrObjectEnd, stateField:
		if c == '}' && t.state == stateFieldOrObjectEnd {
			return t.closeContainer('}', EndObject)
		}
		if c != '"' {
			return t.fail("expected field name at offset %d, got %q", t.pos, c)
		}
		name, ok := t.parseString()
		if !ok {
			return Error
		}
		if !t.skipSpace() {
			return Error
		}
		if t.pos >= len(t.data) || t.data[t.pos] != ':' {
			return t.fail("expected ':' after field %q", name)
		}
		t.pos++
		t.field = name
		t.state = stateValue
		return Field

	case stateCommaOrEnd:
		switch c {
		case ',':
			t.pos++
			if t.stack[len(t.stack)-1] == '{' {
				t.state = stateField
			} else {
				t.state = stateValue
			}
			return t.Next()
		case '}':
			if t.stack[len(t.stack)-1] != '{' {
				return t.fail("mismatched '}' at offset %d", t.pos)
			}
			return t.closeContainer('}', EndObject)
		case ']':
			if t.stack[len(t.stack)-1] != '[' {
				return t.fail("mismatched ']' at offset %d", t.pos)
			}
			return t.closeContainer(']', EndArray)
		}
		return t.fail("expected ',' or close at offset %d, got %q", t.pos, c)
	}
	return t.fail("bad tokenizer state")
}

func (t *Tokenizer) closeContainer(_ byte, tok Type) Type {
	t.pos++
	t.stack = t.stack[:len(t.stack)-1]
	if len(t.stack) == 0 {
		t.state = stateEnd
	} else {
		t.state = stateCommaOrEnd
	}
	return tok
}

func (t *Tokenizer) parseValue() Type {
	c := t.data[t.pos]
	switch {
	case c == '{':
		t.pos++
		t.stack = append(t.stack, '{')
		t.state = stateFieldOrObjectEnd
		return StartObject
	case c == '[':
		t.pos++
		t.stack = append(t.stack, '[')
		t.state = stateValueOrArrayEnd
		return StartArray
	case c == '"':
		s, ok := t.parseString()
		if !ok {
			return Error
		}
		t.value = s
		return t.finishValue(StringValue)
	case c == 't':
		return t.parseKeyword("true", TrueValue)
	case c == 'f':
		return t.parseKeyword("false", FalseValue)
	case c == 'n' && strings.HasPrefix(string(t.data[t.pos:]), "null"):
		return t.parseKeyword("null", NullValue)
	case c == '-' || c >= '0' && c <= '9' || c == 'n' || c == 'i':
		return t.parseNumber()
	}
	return t.fail("unexpected character %q at offset %d", c, t.pos)
}

func (t *Tokenizer) finishValue(tok Type) Type {
	if len(t.stack) == 0 {
		t.state = stateEnd
	} else {
		t.state = stateCommaOrEnd
	}
	return tok
}

func (t *Tokenizer) parseKeyword(word string, tok Type) Type {
	if !strings.HasPrefix(string(t.data[t.pos:]), word) {
		return t.fail("bad literal at offset %d", t.pos)
	}
	t.pos += len(word)
	return t.finishValue(tok)
}

func (t *Tokenizer) parseNumber() Type {
	start := t.pos
	if t.data[t.pos] == '-' {
		t.pos++
	}
	rest := string(t.data[t.pos:])
	switch {
	case strings.HasPrefix(rest, "nan"):
		t.pos += 3
	case strings.HasPrefix(rest, "inf"):
		t.pos += 3
	default:
		digits := 0
		for t.pos < len(t.data) {
			c := t.data[t.pos]
			if c >= '0' && c <= '9' || c == '.' || c == 'e' || c == 'E' || c == '+' || c == '-' {
				if c >= '0' && c <= '9' {
					digits++
				}
				t.pos++
				continue
			}
			break
		}
		if digits == 0 {
			return t.fail("malformed number at offset %d", start)
		}
	}
	t.value = string(t.data[start:t.pos])
	return t.finishValue(NumberValue)
}

// AsInt interprets the most recent number token as an integer, reported as
// a sign and magnitude so the full uint64 range stays representable.
func (t *Tokenizer) AsInt() (negative bool, magnitude uint64, ok bool) {
	text := t.value
	if text == "" {
		return false, 0, false
	}
	if text[0] == '-' {
		negative = true
		text = text[1:]
	}
	for i := 0; i < len(text); i++ {
		if text[i] < '0' || text[i] > '9' {
			return false, 0, false
		}
	}
	magnitude, err := strconv.ParseUint(text, 10, 64)
	if err != nil {
		return false, 0, false
	}
	return negative, magnitude, true
}

// AsDouble interprets the most recent number token as a float64. The
// spellings nan, -nan, inf and -inf map to the correspondingly signed
// non-finite values.
func (t *Tokenizer) AsDouble() (float64, bool) {
	text := t.value
	negative := false
	if strings.HasPrefix(text, "-") {
		negative = true
		text = text[1:]
	}
	switch text {
	case "nan":
		v := math.NaN()
		if negative {
			v = math.Float64frombits(math.Float64bits(v) | 1<<63)
		}
		return v, true
	case "inf":
		if negative {
			return math.Inf(-1), true
		}
		return math.Inf(1), true
	}
	v, err := strconv.ParseFloat(t.value, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// skipSpace advances past whitespace and comments. It returns false after
// recording an error for an unterminated block comment or a stray slash.
func (t *Tokenizer) skipSpace() bool {
	for t.pos < len(t.data) {
		switch t.data[t.pos] {
		case ' ', '\t', '\n', '\r':
			t.pos++
		case '/':
			if t.pos+1 >= len(t.data) {
				t.fail("stray '/' at offset %d", t.pos)
				return false
			}
			switch t.data[t.pos+1] {
			case '/':
				t.pos += 2
				for t.pos < len(t.data) && t.data[t.pos] != '\n' {
					t.pos++
				}
			case '*':
				end := strings.Index(string(t.data[t.pos+2:]), "*/")
				if end < 0 {
					t.fail("unterminated block comment at offset %d", t.pos)
					return false
				}
				t.pos += 2 + end + 2
			default:
				t.fail("stray '/' at offset %d", t.pos)
				return false
			}
		default:
			return true
		}
	}
	return true
}

// parseString consumes a double-quoted string starting at the current
// position and returns its decoded contents. Bytes outside escapes pass
// through untouched, so strings are not required to be valid UTF-8.
func (t *Tokenizer) parseString() (string, bool) {
	t.pos++ // opening quote
	var sb strings.Builder
	for t.pos < len(t.data) {
		c := t.data[t.pos]
		switch c {
		case '"':
			t.pos++
			return sb.String(), true
		case '\\':
			if !t.parseEscape(&sb) {
				return "", false
			}
		default:
			sb.WriteByte(c)
			t.pos++
		}
	}
	t.fail("unterminated string")
	return "", false
}

func (t *Tokenizer) parseEscape(sb *strings.Builder) bool {
	if t.pos+1 >= len(t.data) {
		t.fail("unterminated escape sequence")
		return false
	}
	c := t.data[t.pos+1]
	t.pos += 2
	switch c {
	case '"':
		sb.WriteByte('"')
	case '\\':
		sb.WriteByte('\\')
	case '/':
		sb.WriteByte('/')
	case 'b':
		sb.WriteByte('\b')
	case 'f':
		sb.WriteByte('\f')
	case 'n':
		sb.WriteByte('\n')
	case 'r':
		sb.WriteByte('\r')
	case 't':
		sb.WriteByte('\t')
	case 'u':
		return t.parseUnicodeEscape(sb)
	default:
		t.fail("invalid escape '\\%c'", c)
		return false
	}
	return true
}

func (t *Tokenizer) parseUnicodeEscape(sb *strings.Builder) bool {
	first, ok := t.hex4()
	if !ok {
		return false
	}
	r := rune(first)
	if utf16.IsSurrogate(r) {
		if t.pos+1 >= len(t.data) || t.data[t.pos] != '\\' || t.data[t.pos+1] != 'u' {
			t.fail("unpaired surrogate \\u%04X", first)
			return false
		}
		t.pos += 2
		second, ok := t.hex4()
		if !ok {
			return false
		}
		r = utf16.DecodeRune(rune(first), rune(second))
		if r == utf8.RuneError {
			t.fail("invalid surrogate pair \\u%04X\\u%04X", first, second)
			return false
		}
	}
	sb.WriteRune(r)
	return true
}

func (t *Tokenizer) hex4() (uint16, bool) {
	if t.pos+4 > len(t.data) {
		t.fail("truncated unicode escape")
		return 0, false
	}
	var v uint16
	for i := 0; i < 4; i++ {
		c := t.data[t.pos+i]
		switch {
		case c >= '0' && c <= '9':
			v = v<<4 | uint16(c-'0')
		case c >= 'a' && c <= 'f':
			v = v<<4 | uint16(c-'a'+10)
		case c >= 'A' && c <= 'F':
			v = v<<4 | uint16(c-'A'+10)
		default:
			t.fail("invalid unicode escape character %q", c)
			return 0, false
		}
	}
	t.pos += 4
	return v, true
}
