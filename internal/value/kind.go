package value

// Kind identifies the concrete representation carried by a Value.
type Kind uint8

const (
	Null Kind = iota
	Uint8
	Uint16
	Uint32
	Uint64
	Int8
	Int16
	Int32
	Int64
	Float32
	Float64
	BigFloat
	Bytes
	Text

	// KindCount marks the end of the valid kind range.
	KindCount
)

var kindNames = map[Kind]string{
	Null:     "null",
	Uint8:    "uint8",
	Uint16:   "uint16",
	Uint32:   "uint32",
	Uint64:   "uint64",
	Int8:     "int8",
	Int16:    "int16",
	Int32:    "int32",
	Int64:    "int64",
	Float32:  "float32",
	Float64:  "float64",
	BigFloat: "bigfloat",
	Bytes:    "bytes",
	Text:     "text",
}

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Numeric reports whether the kind coerces to a real number.
func (k Kind) Numeric() bool {
	switch k {
	case Uint8, Uint16, Uint32, Uint64, Int8, Int16, Int32, Int64, Float32, Float64, BigFloat:
		return true
	}
	return false
}

// Buffer reports whether the kind carries a fixed-capacity buffer payload.
func (k Kind) Buffer() bool {
	return k == Bytes || k == Text
}

// Floating reports whether the kind is one of the floating-point
// representations.
func (k Kind) Floating() bool {
	return k == Float32 || k == Float64 || k == BigFloat
}
