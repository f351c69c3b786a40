package value

import (
	"bytes"
	"math"
	"strings"
)

// magnitudeCap bounds the digit-string comparator. Operands whose rendered
// magnitude exceeds this many characters cannot be ordered precisely and are
// rejected with ErrRange rather than silently aliased.
const magnitudeCap = 40

// compareFormatMax bounds the stringified side when Compare bridges a buffer
// operand against a numeric one.
const compareFormatMax = magnitudeCap + 8

// Compare orders two values of possibly different kinds, returning -1, 0 or
// +1. Null sorts before any non-null. When exactly one side is a buffer kind
// the other side is stringified first; if both resulting strings parse as
// numbers the pair orders numerically (so a uint64 1000 sorts above the text
// "999.0"), otherwise and for two buffer operands the order is length then
// content. All remaining pairs order as float64, which loses precision for
// very large integers — use ComparePrecise where that matters.
func (v *Value) Compare(o *Value) int {
	switch {
	case v.isAbsent() && o.isAbsent():
		return 0
	case v.isAbsent():
		return -1
	case o.isAbsent():
		return 1
	}

	if v.kind.Buffer() != o.kind.Buffer() {
		af, aerr := v.Float()
		bf, berr := o.Float()
		if aerr == nil && berr == nil {
			return compareFloats(af, bf)
		}
		return compareBuffers(v.bridge(), o.bridge())
	}
	if v.kind.Buffer() {
		return compareBuffers(v.buf, o.buf)
	}

	af, _ := v.Float()
	bf, _ := o.Float()
	return compareFloats(af, bf)
}

// compareFloats is a total order over float64: NaN sorts before every number
// and equal to itself, so sorting never sees an inconsistent comparator.
func compareFloats(a, b float64) int {
	switch {
	case math.IsNaN(a) && math.IsNaN(b):
		return 0
	case math.IsNaN(a):
		return -1
	case math.IsNaN(b):
		return 1
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// ComparePrecise orders two values without going through float64 for integer
// operands. Two floating-kind values still compare as reals; every other
// pair compares by a fixed-width decimal rendering, which preserves full
// integer precision up to magnitudeCap characters. Returns ErrRange when an
// operand's magnitude does not fit, and ErrInvalid when an operand is not
// numeric.
func (v *Value) ComparePrecise(o *Value) (int, error) {
	switch {
	case v.isAbsent() && o.isAbsent():
		return 0, nil
	case v.isAbsent():
		return -1, nil
	case o.isAbsent():
		return 1, nil
	}

	if v.kind.Floating() && o.kind.Floating() {
		af, _ := v.Float()
		bf, _ := o.Float()
		return compareFloats(af, bf), nil
	}

	da, err := v.decimal()
	if err != nil {
		return 0, err
	}
	db, err := o.decimal()
	if err != nil {
		return 0, err
	}

	negA, magA := splitSign(da)
	negB, magB := splitSign(db)
	magA = normalizeFraction(magA)
	magB = normalizeFraction(magB)

	// "-0" and "-0.0" are the same point as zero; drop the sign before the
	// mismatch shortcut so they don't order strictly below it.
	negA = negA && !zeroMagnitude(magA)
	negB = negB && !zeroMagnitude(magB)
	if negA != negB {
		if negA {
			return -1, nil
		}
		return 1, nil
	}

	if len(magA) > magnitudeCap || len(magB) > magnitudeCap {
		return 0, ErrRange
	}

	var pa, pb [magnitudeCap]byte
	rightJustify(&pa, magA)
	rightJustify(&pb, magB)

	c := bytes.Compare(pa[:], pb[:])
	if negA {
		c = -c
	}
	return c, nil
}

// isAbsent treats both sentinel kinds as "no value" for ordering purposes.
func (v *Value) isAbsent() bool {
	return v == nil || v.kind == Null || v.kind == KindCount
}

// bridge returns the value itself for buffer kinds and a text rendering of
// the payload otherwise, so mixed buffer/numeric pairs compare as text.
func (v *Value) bridge() []byte {
	if v.kind.Buffer() {
		return v.buf
	}
	s, _ := v.Format(compareFormatMax)
	return []byte(s)
}

func compareBuffers(a, b []byte) int {
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	return bytes.Compare(a, b)
}

// decimal renders a numeric or text operand as a plain decimal string for
// the precise comparator.
func (v *Value) decimal() (string, error) {
	if v.kind == Bytes {
		return "", ErrInvalid
	}
	s, err := v.Format(compareFormatMax)
	if err != nil {
		return "", err
	}
	if !validDecimal(s) {
		return "", ErrInvalid
	}
	return s, nil
}

func validDecimal(s string) bool {
	if s == "" {
		return false
	}
	if s[0] == '-' || s[0] == '+' {
		s = s[1:]
	}
	digits, dots := 0, 0
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] >= '0' && s[i] <= '9':
			digits++
		case s[i] == '.':
			dots++
		default:
			return false
		}
	}
	return digits > 0 && dots <= 1
}

// splitSign strips a leading sign and reports whether it was negative.
func splitSign(s string) (bool, string) {
	switch {
	case strings.HasPrefix(s, "-"):
		return true, s[1:]
	case strings.HasPrefix(s, "+"):
		return false, s[1:]
	}
	return false, s
}

// zeroMagnitude reports whether a normalized magnitude has no nonzero digit.
func zeroMagnitude(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] != '0' && s[i] != '.' {
			return false
		}
	}
	return true
}

// normalizeFraction forces exactly one fractional digit: integral magnitudes
// get ".0" appended, longer fractions are truncated after the first digit.
func normalizeFraction(s string) string {
	dot := strings.IndexByte(s, '.')
	if dot < 0 {
		return s + ".0"
	}
	if dot == len(s)-1 {
		return s + "0"
	}
	return s[:dot+2]
}

// rightJustify copies s against the right edge of dst, zero-filling the left.
func rightJustify(dst *[magnitudeCap]byte, s string) {
	for i := range dst {
		dst[i] = '0'
	}
	copy(dst[magnitudeCap-len(s):], s)
}
