package jsonfb_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TFMV/flatjson/internal/jsonfb"
)

func encodeOrDie(t *testing.T, in string) []byte {
	t.Helper()
	buf, err := jsonfb.Encode([]byte(in), testConfig)
	require.NoError(t, err, "input: %s", in)
	return buf
}

func decodeWith(t *testing.T, in string, opts jsonfb.Options) string {
	t.Helper()
	return jsonfb.ToJSON(encodeOrDie(t, in), testConfig, opts)
}

func TestNullBuffer(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "null", jsonfb.ToJSON(nil, testConfig, jsonfb.Options{}))
	assert.Equal(t, "null", jsonfb.ToJSON([]byte{1, 2}, testConfig, jsonfb.Options{}))
}

func intVectorJSON(n int) string {
	var sb strings.Builder
	sb.WriteString(`{ "vector_foo_int": [ `)
	for i := 0; i < n; i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%d", i)
	}
	sb.WriteString(` ] }`)
	return sb.String()
}

func TestVectorTruncation(t *testing.T) {
	t.Parallel()
	opts := jsonfb.Options{MaxVectorSize: 100}

	in := intVectorJSON(100)
	assert.Equal(t, in, decodeWith(t, in, opts))

	got := decodeWith(t, intVectorJSON(101), opts)
	assert.Equal(t, `{ "vector_foo_int": [ "... 101 elements ..." ] }`, got)

	// Sibling fields after a truncated vector still render.
	buf := encodeOrDie(t, `{ "foo_int": 5, "vector_foo_byte": [ 1, 2, 3 ] }`)
	got = jsonfb.ToJSON(buf, testConfig, jsonfb.Options{MaxVectorSize: 2})
	assert.Equal(t, `{ "foo_int": 5, "vector_foo_byte": [ "... 3 elements ..." ] }`, got)

	// Tables inside an oversized vector are skipped entirely, including
	// their own vectors.
	buf = encodeOrDie(t, `{ "apps": [ { "name": "a" }, { "name": "b" }, { "name": "c" } ] }`)
	got = jsonfb.ToJSON(buf, testConfig, jsonfb.Options{MaxVectorSize: 2})
	assert.Equal(t, `{ "apps": [ "... 3 elements ..." ] }`, got)
}

func precision(n int) jsonfb.Options {
	return jsonfb.Options{FloatPrecision: &n}
}

func TestFloatPrecision(t *testing.T) {
	t.Parallel()
	cases := []struct {
		in   string
		prec int
		want string
	}{
		{`{ "foo_float": 3.141592653589793 }`, 1, `{ "foo_float": 3.1 }`},
		{`{ "foo_float": 3.141592653589793 }`, 5, `{ "foo_float": 3.14159 }`},
		{`{ "foo_float": 3.141592653589793 }`, 7, `{ "foo_float": 3.1415927 }`},
		{`{ "foo_double": 3.141592653589793 }`, 5, `{ "foo_double": 3.14159 }`},
		{`{ "foo_double": 3.141592653589793 }`, 15, `{ "foo_double": 3.141592653589793 }`},
		{`{ "foo_double": 971 }`, 2, `{ "foo_double": 971.0 }`},
		{`{ "foo_double": 971 }`, 0, `{ "foo_double": 971 }`},
		{`{ "foo_double": 3.5 }`, 0, `{ "foo_double": 4 }`},
		{`{ "foo_double": 2.1 }`, 0, `{ "foo_double": 2 }`},
		{`{ "foo_double": 0.25 }`, 20, `{ "foo_double": 0.25 }`},
		{`{ "foo_double": 0.1 }`, 20, `{ "foo_double": 0.10000000000000000555 }`},
		{`{ "vector_foo_double": [ 1.5, 2 ] }`, 2, `{ "vector_foo_double": [ 1.5, 2.0 ] }`},
		{`{ "foo_double": -0.0 }`, 0, `{ "foo_double": -0.0 }`},
		{`{ "foo_double": -0.0 }`, 5, `{ "foo_double": -0.0 }`},
		{`{ "foo_float": -0.0 }`, 2, `{ "foo_float": -0.0 }`},
	}
	for _, c := range cases {
		got := decodeWith(t, c.in, precision(c.prec))
		assert.Equal(t, c.want, got, "input %s at precision %d", c.in, c.prec)
	}
}

func TestStandardJSON(t *testing.T) {
	t.Parallel()
	opts := jsonfb.Options{UseStandardJSON: true}

	assert.Equal(t, `{ "foo_double": "nan" }`,
		decodeWith(t, `{ "foo_double": nan }`, opts))
	assert.Equal(t, `{ "foo_double": "-nan" }`,
		decodeWith(t, `{ "foo_double": -nan }`, opts))
	assert.Equal(t, `{ "foo_float": "inf" }`,
		decodeWith(t, `{ "foo_float": inf }`, opts))
	assert.Equal(t, `{ "foo_double": "-inf" }`,
		decodeWith(t, `{ "foo_double": -inf }`, opts))

	// Strings that are not valid UTF-8 come back as byte arrays.
	assert.Equal(t, `{ "foo_string": [ 255 ] }`,
		decodeWith(t, `{ "foo_string": [ 255 ] }`, opts))
	assert.Equal(t, `{ "foo_string": "baba" }`,
		decodeWith(t, `{ "foo_string": "baba" }`, opts))
	assert.Equal(t, `{ "vector_foo_string": [ [ 255 ], "baba" ] }`,
		decodeWith(t, `{ "vector_foo_string": [ [ 255 ], "baba" ] }`, opts))

	// Negative zero is finite and keeps its sign.
	assert.Equal(t, `{ "foo_double": -0.0 }`,
		decodeWith(t, `{ "foo_double": -0.0 }`, opts))
}

func TestMultiLine(t *testing.T) {
	t.Parallel()
	opts := jsonfb.Options{MultiLine: true}

	got := decodeWith(t, `{ "foo_int": 5, "vector_foo_int": [ 1, 2 ] }`, opts)
	want := "{\n \"foo_int\": 5,\n \"vector_foo_int\": [\n  1,\n  2\n ]\n}"
	assert.Equal(t, want, got)

	got = decodeWith(t, `{ "single_application": { "name": "woot" } }`, opts)
	want = "{\n \"single_application\": {\n  \"name\": \"woot\"\n }\n}"
	assert.Equal(t, want, got)
}
