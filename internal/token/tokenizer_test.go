package token

import (
	"math"
	"testing"
)

type step struct {
	typ   Type
	text  string
	field string
}

func expectStream(t *testing.T, input string, steps []step) {
	t.Helper()
	tok := New([]byte(input))
	for i, s := range steps {
		got := tok.Next()
		if got != s.typ {
			t.Fatalf("step %d: got %v, want %v (err: %v)", i, got, s.typ, tok.Err())
		}
		if s.field != "" && tok.FieldName() != s.field {
			t.Fatalf("step %d: field name %q, want %q", i, tok.FieldName(), s.field)
		}
		if s.text != "" && tok.Value() != s.text {
			t.Fatalf("step %d: value %q, want %q", i, tok.Value(), s.text)
		}
	}
}

func TestBasicStream(t *testing.T) {
	t.Parallel()
	expectStream(t, `{ "foo": 971, "bar":1.5, "ok": true, "no": false, "nothing": null }`, []step{
		{typ: StartObject},
		{typ: Field, field: "foo"},
		{typ: NumberValue, text: "971"},
		{typ: Field, field: "bar"},
		{typ: NumberValue, text: "1.5"},
		{typ: Field, field: "ok"},
		{typ: TrueValue},
		{typ: Field, field: "no"},
		{typ: FalseValue},
		{typ: Field, field: "nothing"},
		{typ: NullValue},
		{typ: EndObject},
		{typ: End},
	})
}

func TestNestedStream(t *testing.T) {
	t.Parallel()
	expectStream(t, `{"a":{"b":[1,[2],{"c":"d"}]}}`, []step{
		{typ: StartObject},
		{typ: Field, field: "a"},
		{typ: StartObject},
		{typ: Field, field: "b"},
		{typ: StartArray},
		{typ: NumberValue, text: "1"},
		{typ: StartArray},
		{typ: NumberValue, text: "2"},
		{typ: EndArray},
		{typ: StartObject},
		{typ: Field, field: "c"},
		{typ: StringValue, text: "d"},
		{typ: EndObject},
		{typ: EndArray},
		{typ: EndObject},
		{typ: EndObject},
		{typ: End},
	})
}

func TestEmptyContainers(t *testing.T) {
	t.Parallel()
	expectStream(t, `{ "v": [  ], "o": {  } }`, []step{
		{typ: StartObject},
		{typ: Field, field: "v"},
		{typ: StartArray},
		{typ: EndArray},
		{typ: Field, field: "o"},
		{typ: StartObject},
		{typ: EndObject},
		{typ: EndObject},
		{typ: End},
	})
}

func TestComments(t *testing.T) {
	t.Parallel()
	expectStream(t, "{ // line comment\n \"foo\": /* block */ 5 }", []step{
		{typ: StartObject},
		{typ: Field, field: "foo"},
		{typ: NumberValue, text: "5"},
		{typ: EndObject},
		{typ: End},
	})
}

func TestEscapes(t *testing.T) {
	t.Parallel()
	expectStream(t, `{ "s": "\"\\\/\b\f\n\r\t" }`, []step{
		{typ: StartObject},
		{typ: Field, field: "s"},
		{typ: StringValue, text: "\"\\/\b\f\n\r\t"},
		{typ: EndObject},
		{typ: End},
	})
}

func TestUnicodeEscapes(t *testing.T) {
	t.Parallel()
	expectStream(t, `{ "s": "\u00e9\uD83C\uDF32" }`, []step{
		{typ: StartObject},
		{typ: Field, field: "s"},
		{typ: StringValue, text: "\u00e9\U0001F332"},
		{typ: EndObject},
		{typ: End},
	})
}

func TestRawBytesInString(t *testing.T) {
	t.Parallel()
	expectStream(t, "{ \"s\": \"\xff\" }", []step{
		{typ: StartObject},
		{typ: Field, field: "s"},
		{typ: StringValue, text: "\xff"},
		{typ: EndObject},
		{typ: End},
	})
}

func TestErrors(t *testing.T) {
	t.Parallel()
	inputs := []string{
		`{ "foo": 5, }`,
		`{ "vec": [1, 2,] }`,
		`{ "obj": { "a": 1, } }`,
		`{ "foo": 5 } trailing`,
		`{ "foo" 5 }`,
		`{ foo: 5 }`,
		`{ "foo": }`,
		`{ "foo": 5`,
		`{ "s": "\uP890" }`,
		`{ "s": "\uF89" }`,
		`{ "s": "\uD83C" }`,
		`{ "s": "\q" }`,
		`{ "s": "unterminated }`,
		"{ /* never closed \"foo\": 5 }",
		`{ "foo": 5 ]`,
	}
	for _, in := range inputs {
		tok := New([]byte(in))
		last := tok.Next()
		for last != Error && last != End {
			last = tok.Next()
		}
		if last != Error {
			t.Errorf("input %q: expected an error token", in)
		}
		if tok.Err() == nil {
			t.Errorf("input %q: Err is nil after error token", in)
		}
	}
}

func parseNumber(t *testing.T, text string) *Tokenizer {
	t.Helper()
	tok := New([]byte(`{ "n": ` + text + ` }`))
	tok.Next()
	tok.Next()
	if got := tok.Next(); got != NumberValue {
		t.Fatalf("%q: got %v, want number (err: %v)", text, got, tok.Err())
	}
	return tok
}

func TestAsInt(t *testing.T) {
	t.Parallel()
	cases := []struct {
		text     string
		negative bool
		mag      uint64
		ok       bool
	}{
		{"0", false, 0, true},
		{"-0", true, 0, true},
		{"971", false, 971, true},
		{"-9223372036854775808", true, 9223372036854775808, true},
		{"18446744073709551615", false, 18446744073709551615, true},
		{"1.5", false, 0, false},
		{"1e3", false, 0, false},
		{"nan", false, 0, false},
	}
	for _, c := range cases {
		tok := parseNumber(t, c.text)
		neg, mag, ok := tok.AsInt()
		if ok != c.ok || neg != c.negative || mag != c.mag {
			t.Errorf("AsInt(%q) = (%v, %d, %v), want (%v, %d, %v)", c.text, neg, mag, ok, c.negative, c.mag, c.ok)
		}
	}
}

func TestAsDouble(t *testing.T) {
	t.Parallel()
	for _, c := range []struct {
		text string
		want float64
	}{
		{"1.5", 1.5},
		{"-1.5", -1.5},
		{"2.1e2", 210},
		{"971", 971},
		{"inf", math.Inf(1)},
		{"-inf", math.Inf(-1)},
	} {
		tok := parseNumber(t, c.text)
		got, ok := tok.AsDouble()
		if !ok || got != c.want {
			t.Errorf("AsDouble(%q) = (%v, %v), want %v", c.text, got, ok, c.want)
		}
	}

	tok := parseNumber(t, "nan")
	got, ok := tok.AsDouble()
	if !ok || !math.IsNaN(got) || math.Signbit(got) {
		t.Errorf("AsDouble(nan) = (%v, %v), want positive NaN", got, ok)
	}
	tok = parseNumber(t, "-nan")
	got, ok = tok.AsDouble()
	if !ok || !math.IsNaN(got) || !math.Signbit(got) {
		t.Errorf("AsDouble(-nan) = (%v, %v), want negative NaN", got, ok)
	}
}
