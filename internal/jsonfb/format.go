package jsonfb

import (
	"strconv"
	"strings"
)

// formatFloat renders the shortest decimal text that round-trips to the
// same value at the given width.
func formatFloat(v float64, bits int) string {
	return strconv.FormatFloat(v, 'g', -1, bits)
}

// formatFloatPrec renders with a fixed number of decimal digits, then
// drops trailing zeros. At least one digit stays after the point so the
// value still reads as floating point, except at precision zero where the
// point itself disappears.
func formatFloatPrec(v float64, prec int) string {
	s := strconv.FormatFloat(v, 'f', prec, 64)
	if prec == 0 || !strings.Contains(s, ".") {
		return s
	}
	s = strings.TrimRight(s, "0")
	if strings.HasSuffix(s, ".") {
		s += "0"
	}
	return s
}
