// Package value implements the runtime-typed sensor value model: a closed
// sum over integer, floating, buffer and null representations with
// population, formatting, coercion and comparison semantics that stay
// consistent across kinds.
package value

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
)

var (
	// ErrInvalid signals an absent or unusable argument, or a payload that
	// cannot be coerced to the requested representation.
	ErrInvalid = errors.New("value: invalid argument")

	// ErrRange signals a coercion whose result had to be clamped because the
	// source exceeds the destination's representable range.
	ErrRange = errors.New("value: out of range")
)

const (
	// DefaultTextCap is the capacity of a Text payload unless overridden.
	DefaultTextCap = 64

	// DefaultBytesCap is the capacity of a Bytes payload unless overridden.
	DefaultBytesCap = 32
)

// Value is a discriminated sensor reading. The kind is fixed at construction
// time; only the payload mutates on refresh.
type Value struct {
	kind Kind
	u    uint64     // Uint8..Uint64
	i    int64      // Int8..Int64
	f    float64    // Float32 (widened), Float64
	big  *big.Float // BigFloat
	buf  []byte     // Bytes and Text; len is used, cap is fixed
}

// New returns a zero value of the given kind. Buffer kinds get the default
// capacity.
func New(kind Kind) *Value {
	switch kind {
	case Bytes:
		return NewBuffer(kind, DefaultBytesCap)
	case Text:
		return NewBuffer(kind, DefaultTextCap)
	case BigFloat:
		return &Value{kind: kind, big: new(big.Float)}
	default:
		return &Value{kind: kind}
	}
}

// NewBuffer returns a zero buffer value (Bytes or Text) with the given
// capacity.
func NewBuffer(kind Kind, capacity int) *Value {
	return &Value{kind: kind, buf: make([]byte, 0, capacity)}
}

// Kind returns the value's fixed kind tag.
func (v *Value) Kind() Kind {
	return v.kind
}

// Clone returns an independent copy of the value.
func (v *Value) Clone() *Value {
	c := *v
	if v.big != nil {
		c.big = new(big.Float).Copy(v.big)
	}
	if v.buf != nil {
		c.buf = make([]byte, len(v.buf), cap(v.buf))
		copy(c.buf, v.buf)
	}
	return &c
}

// SetRaw populates the payload from untyped memory according to the value's
// kind. Integer and floating payloads are decoded in host byte order. Buffer
// payloads are truncated silently at capacity; Text is additionally bounded
// at the first NUL byte. Null payloads accept any source unchanged.
func (v *Value) SetRaw(src []byte) error {
	if v == nil || src == nil {
		return ErrInvalid
	}

	need := map[Kind]int{
		Uint8: 1, Int8: 1,
		Uint16: 2, Int16: 2,
		Uint32: 4, Int32: 4, Float32: 4,
		Uint64: 8, Int64: 8, Float64: 8, BigFloat: 8,
	}[v.kind]
	if len(src) < need {
		return ErrInvalid
	}

	switch v.kind {
	case Uint8:
		v.u = uint64(src[0])
	case Uint16:
		v.u = uint64(binary.NativeEndian.Uint16(src))
	case Uint32:
		v.u = uint64(binary.NativeEndian.Uint32(src))
	case Uint64:
		v.u = binary.NativeEndian.Uint64(src)
	case Int8:
		v.i = int64(int8(src[0]))
	case Int16:
		v.i = int64(int16(binary.NativeEndian.Uint16(src)))
	case Int32:
		v.i = int64(int32(binary.NativeEndian.Uint32(src)))
	case Int64:
		v.i = int64(binary.NativeEndian.Uint64(src))
	case Float32:
		v.f = float64(math.Float32frombits(binary.NativeEndian.Uint32(src)))
	case Float64:
		v.f = math.Float64frombits(binary.NativeEndian.Uint64(src))
	case BigFloat:
		v.big = big.NewFloat(math.Float64frombits(binary.NativeEndian.Uint64(src)))
	case Bytes:
		n := min(len(src), cap(v.buf))
		v.buf = v.buf[:n]
		copy(v.buf, src)
	case Text:
		n := min(len(src), cap(v.buf))
		v.buf = v.buf[:n]
		copy(v.buf, src)
		if i := bytes.IndexByte(v.buf, 0); i >= 0 {
			v.buf = v.buf[:i]
		}
	case Null, KindCount:
		// No payload.
	default:
		return ErrInvalid
	}
	return nil
}

// SetUint stores an unsigned payload, masked to the kind's width.
func (v *Value) SetUint(u uint64) error {
	switch v.kind {
	case Uint8:
		v.u = u & 0xff
	case Uint16:
		v.u = u & 0xffff
	case Uint32:
		v.u = u & 0xffffffff
	case Uint64:
		v.u = u
	default:
		return ErrInvalid
	}
	return nil
}

// SetInt stores a signed payload, truncated to the kind's width.
func (v *Value) SetInt(i int64) error {
	switch v.kind {
	case Int8:
		v.i = int64(int8(i))
	case Int16:
		v.i = int64(int16(i))
	case Int32:
		v.i = int64(int32(i))
	case Int64:
		v.i = i
	default:
		return ErrInvalid
	}
	return nil
}

// SetFloat stores a floating payload. Float32 narrows the input first so the
// stored value round-trips at single precision.
func (v *Value) SetFloat(f float64) error {
	switch v.kind {
	case Float32:
		v.f = float64(float32(f))
	case Float64:
		v.f = f
	case BigFloat:
		v.big = big.NewFloat(f)
	default:
		return ErrInvalid
	}
	return nil
}

// SetBig stores an extended-precision payload.
func (v *Value) SetBig(f *big.Float) error {
	if v.kind != BigFloat {
		return ErrInvalid
	}
	if f == nil {
		return ErrInvalid
	}
	v.big = new(big.Float).Copy(f)
	return nil
}

// SetBytes stores a byte-buffer payload, truncated silently at capacity.
func (v *Value) SetBytes(b []byte) error {
	if v.kind != Bytes {
		return ErrInvalid
	}
	n := min(len(b), cap(v.buf))
	v.buf = v.buf[:n]
	copy(v.buf, b)
	return nil
}

// SetText stores a text payload, truncated silently at capacity.
func (v *Value) SetText(s string) error {
	if v.kind != Text {
		return ErrInvalid
	}
	n := min(len(s), cap(v.buf))
	v.buf = v.buf[:n]
	copy(v.buf, s)
	return nil
}

// Format renders the payload as text, truncated to at most max bytes.
// Integers render in decimal, floating kinds in fixed notation at their own
// precision, byte buffers as space-delimited two-digit hex, text verbatim and
// Null as the empty string. Fails with ErrInvalid when max is not positive.
func (v *Value) Format(max int) (string, error) {
	if v == nil || max <= 0 {
		return "", ErrInvalid
	}

	var s string
	switch v.kind {
	case Uint8, Uint16, Uint32, Uint64:
		s = strconv.FormatUint(v.u, 10)
	case Int8, Int16, Int32, Int64:
		s = strconv.FormatInt(v.i, 10)
	case Float32:
		// Narrow before formatting so a float32 payload keeps its own
		// shortest representation instead of the widened double's.
		s = strconv.FormatFloat(v.f, 'f', -1, 32)
	case Float64:
		s = strconv.FormatFloat(v.f, 'f', -1, 64)
	case BigFloat:
		if v.big == nil {
			s = "0"
		} else {
			s = v.big.Text('f', -1)
		}
	case Bytes:
		var b strings.Builder
		for i, c := range v.buf {
			if i > 0 {
				b.WriteByte(' ')
			}
			fmt.Fprintf(&b, "%02x", c)
		}
		s = b.String()
	case Text:
		s = string(v.buf)
	case Null, KindCount:
		s = ""
	}

	if len(s) > max {
		s = s[:max]
	}
	return s, nil
}

// String implements fmt.Stringer for logging.
func (v *Value) String() string {
	s, err := v.Format(128)
	if err != nil {
		return "<invalid>"
	}
	return s
}

// Float coerces the payload to a float64. Byte buffers, Null and text that
// does not fully parse as a number fail with ErrInvalid.
func (v *Value) Float() (float64, error) {
	switch v.kind {
	case Uint8, Uint16, Uint32, Uint64:
		return float64(v.u), nil
	case Int8, Int16, Int32, Int64:
		return float64(v.i), nil
	case Float32, Float64:
		return v.f, nil
	case BigFloat:
		if v.big == nil {
			return 0, nil
		}
		f, _ := v.big.Float64()
		return f, nil
	case Text:
		f, err := strconv.ParseFloat(string(v.buf), 64)
		if err != nil {
			return 0, ErrInvalid
		}
		return f, nil
	default:
		return 0, ErrInvalid
	}
}

// Int coerces the payload to the widest signed integer. Results outside the
// representable range come back clamped alongside ErrRange instead of
// wrapping.
func (v *Value) Int() (int64, error) {
	switch v.kind {
	case Uint8, Uint16, Uint32, Uint64:
		if v.u > math.MaxInt64 {
			return math.MaxInt64, ErrRange
		}
		return int64(v.u), nil
	case Int8, Int16, Int32, Int64:
		return v.i, nil
	case Float32, Float64:
		return floatToInt(v.f)
	case BigFloat:
		if v.big == nil {
			return 0, nil
		}
		i, acc := v.big.Int64()
		if (i == math.MaxInt64 && acc == big.Below) || (i == math.MinInt64 && acc == big.Above) {
			return i, ErrRange
		}
		return i, nil
	case Text:
		if i, err := strconv.ParseInt(string(v.buf), 10, 64); err == nil {
			return i, nil
		}
		f, err := strconv.ParseFloat(string(v.buf), 64)
		if err != nil {
			return 0, ErrInvalid
		}
		return floatToInt(f)
	default:
		return 0, ErrInvalid
	}
}

func floatToInt(f float64) (int64, error) {
	if f >= math.MaxInt64 {
		return math.MaxInt64, ErrRange
	}
	if f <= math.MinInt64 {
		return math.MinInt64, ErrRange
	}
	return int64(f), nil
}

// Equal reports exact payload equality. Values of different kinds are never
// equal; floating kinds compare with == and buffer kinds by length then
// content. Null values are always equal to each other.
func (v *Value) Equal(o *Value) bool {
	if v == nil || o == nil {
		return v == o
	}
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case Null, KindCount:
		return true
	case Uint8, Uint16, Uint32, Uint64:
		return v.u == o.u
	case Int8, Int16, Int32, Int64:
		return v.i == o.i
	case Float32:
		return float32(v.f) == float32(o.f)
	case Float64:
		return v.f == o.f
	case BigFloat:
		return bigOrZero(v.big).Cmp(bigOrZero(o.big)) == 0
	case Bytes, Text:
		return bytes.Equal(v.buf, o.buf)
	}
	return false
}

func bigOrZero(f *big.Float) *big.Float {
	if f == nil {
		return new(big.Float)
	}
	return f
}
