// Package jsonfb converts JSON text to flatbuffers and back using a
// runtime type description instead of generated accessor code.
package jsonfb

import flatbuffers "github.com/google/flatbuffers/go"

type elementKind int

const (
	elemInt elementKind = iota
	elemDouble
	elemOffset
	elemStruct
)

// intValue is a sign and magnitude pair, so the full int64 and uint64
// ranges are both representable without loss.
type intValue struct {
	Negative  bool
	Magnitude uint64
}

// uint64 returns the two's-complement bit pattern, which narrows correctly
// to every smaller width.
func (v intValue) uint64() uint64 {
	if v.Negative {
		return -v.Magnitude
	}
	return v.Magnitude
}

func (v intValue) float64() float64 {
	if v.Negative {
		return -float64(v.Magnitude)
	}
	return float64(v.Magnitude)
}

// fitsUnsigned reports whether the value is in range for an unsigned
// integer of the given bit width.
func (v intValue) fitsUnsigned(bits uint) bool {
	if v.Negative {
		return v.Magnitude == 0
	}
	if bits == 64 {
		return true
	}
	return v.Magnitude < 1<<bits
}

// element is one parsed value waiting to be written: an integer, a double,
// an offset already pushed to the builder, or raw inline struct bytes.
type element struct {
	kind   elementKind
	i      intValue
	d      float64
	offset flatbuffers.UOffsetT
	raw    []byte
}

func intElement(v intValue) element { return element{kind: elemInt, i: v} }

func doubleElement(v float64) element { return element{kind: elemDouble, d: v} }

func offsetElement(o flatbuffers.UOffsetT) element { return element{kind: elemOffset, offset: o} }

func structElement(raw []byte) element { return element{kind: elemStruct, raw: raw} }

// fieldElement pairs a pending element with the field slot it belongs to.
type fieldElement struct {
	index int
	elem  element
}
