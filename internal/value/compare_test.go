package value

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func uintVal(t *testing.T, u uint64) *Value {
	t.Helper()
	v := New(Uint64)
	require.NoError(t, v.SetUint(u))
	return v
}

func intVal(t *testing.T, i int64) *Value {
	t.Helper()
	v := New(Int64)
	require.NoError(t, v.SetInt(i))
	return v
}

func floatVal(t *testing.T, f float64) *Value {
	t.Helper()
	v := New(Float64)
	require.NoError(t, v.SetFloat(f))
	return v
}

func textVal(t *testing.T, s string) *Value {
	t.Helper()
	v := New(Text)
	require.NoError(t, v.SetText(s))
	return v
}

func TestCompareNullSortsFirst(t *testing.T) {
	null := New(Null)
	require.Equal(t, 0, null.Compare(New(Null)))
	require.Equal(t, -1, null.Compare(uintVal(t, 0)))
	require.Equal(t, 1, uintVal(t, 0).Compare(null))
}

func TestCompareNumeric(t *testing.T) {
	require.Equal(t, -1, intVal(t, -5).Compare(uintVal(t, 3)))
	require.Equal(t, 1, floatVal(t, 2.5).Compare(intVal(t, 2)))
	require.Equal(t, 0, uintVal(t, 10).Compare(floatVal(t, 10)))
}

func TestCompareNaNSortsBeforeNumbers(t *testing.T) {
	nan := floatVal(t, math.NaN())

	require.Equal(t, 0, nan.Compare(floatVal(t, math.NaN())))
	require.Equal(t, -1, nan.Compare(floatVal(t, math.Inf(-1))))
	require.Equal(t, -1, nan.Compare(intVal(t, -1)))
	require.Equal(t, 1, floatVal(t, 0).Compare(nan))
}

func TestCompareNumericAgainstText(t *testing.T) {
	// 1000 > 999.0 even though "1000" sorts below "999.0" as a string.
	require.Equal(t, 1, uintVal(t, 1000).Compare(textVal(t, "999.0")))
	require.Equal(t, -1, textVal(t, "999.0").Compare(uintVal(t, 1000)))
}

func TestCompareNonNumericTextBridgesAsString(t *testing.T) {
	require.Equal(t, 1, textVal(t, "enabled").Compare(uintVal(t, 7)))
	require.Equal(t, -1, uintVal(t, 7).Compare(textVal(t, "enabled")))
}

func TestCompareBuffersByLengthThenContent(t *testing.T) {
	require.Equal(t, -1, textVal(t, "ab").Compare(textVal(t, "abc")))
	require.Equal(t, 1, textVal(t, "b").Compare(textVal(t, "a")))
	require.Equal(t, 0, textVal(t, "same").Compare(textVal(t, "same")))
}

func TestComparePreciseLargeIntegers(t *testing.T) {
	// Adjacent uint64 values collapse to the same float64; the precise
	// comparator must still tell them apart.
	a := uintVal(t, math.MaxUint64-1)
	b := uintVal(t, math.MaxUint64)

	c, err := a.ComparePrecise(b)
	require.NoError(t, err)
	require.Equal(t, -1, c)

	c, err = b.ComparePrecise(a)
	require.NoError(t, err)
	require.Equal(t, 1, c)
}

func TestComparePreciseMixedSigns(t *testing.T) {
	c, err := intVal(t, -1).ComparePrecise(uintVal(t, 1))
	require.NoError(t, err)
	require.Equal(t, -1, c)

	c, err = intVal(t, -2).ComparePrecise(intVal(t, -10))
	require.NoError(t, err)
	require.Equal(t, 1, c)
}

func TestComparePreciseNegativeZero(t *testing.T) {
	// -0.0 renders as "-0" but is the same point as zero; the sign must not
	// order it strictly below 0.
	c, err := floatVal(t, math.Copysign(0, -1)).ComparePrecise(intVal(t, 0))
	require.NoError(t, err)
	require.Equal(t, 0, c)

	c, err = textVal(t, "-0.0").ComparePrecise(uintVal(t, 0))
	require.NoError(t, err)
	require.Equal(t, 0, c)

	c, err = textVal(t, "-0").ComparePrecise(intVal(t, -1))
	require.NoError(t, err)
	require.Equal(t, 1, c)
}

func TestComparePreciseMixedIntegerAndFloat(t *testing.T) {
	c, err := intVal(t, 2).ComparePrecise(floatVal(t, 2.5))
	require.NoError(t, err)
	require.Equal(t, -1, c)

	c, err = floatVal(t, 2.5).ComparePrecise(intVal(t, 2))
	require.NoError(t, err)
	require.Equal(t, 1, c)
}

func TestComparePreciseTransitive(t *testing.T) {
	ordered := []*Value{
		intVal(t, -1000),
		floatVal(t, -1.5),
		uintVal(t, 0),
		floatVal(t, 0.5),
		intVal(t, 2),
		uintVal(t, 999),
		uintVal(t, 1000),
		uintVal(t, math.MaxUint64),
	}

	for i := range ordered {
		for j := range ordered {
			c, err := ordered[i].ComparePrecise(ordered[j])
			require.NoError(t, err)
			switch {
			case i < j:
				require.LessOrEqual(t, c, 0, "i=%d j=%d", i, j)
			case i > j:
				require.GreaterOrEqual(t, c, 0, "i=%d j=%d", i, j)
			default:
				require.Equal(t, 0, c)
			}
		}
	}
}

func TestComparePreciseRejectsOversizedMagnitude(t *testing.T) {
	wide := textVal(t, strings.Repeat("9", magnitudeCap+1))
	_, err := wide.ComparePrecise(uintVal(t, 1))
	require.ErrorIs(t, err, ErrRange)
}

func TestComparePreciseRejectsNonNumeric(t *testing.T) {
	raw := New(Bytes)
	require.NoError(t, raw.SetBytes([]byte{1}))
	_, err := raw.ComparePrecise(uintVal(t, 1))
	require.ErrorIs(t, err, ErrInvalid)

	_, err = textVal(t, "not a number").ComparePrecise(uintVal(t, 1))
	require.ErrorIs(t, err, ErrInvalid)
}
