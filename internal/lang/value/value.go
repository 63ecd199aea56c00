// Package value implements the toy language's runtime values: a tagged
// union over integer, real, string, boolean and void.
package value

import (
	"errors"
	"fmt"
	"strconv"
)

// Kind identifies which alternative of Value is populated.
type Kind int

const (
	Int Kind = iota
	Real
	String
	Boolean
	Void
)

func (k Kind) String() string {
	switch k {
	case Int:
		return "int"
	case Real:
		return "real"
	case String:
		return "string"
	case Boolean:
		return "boolean"
	case Void:
		return "void"
	default:
		return "unknown"
	}
}

// ErrWrongKind is returned by the typed accessors when the Value does not
// hold the requested alternative.
var ErrWrongKind = errors.New("value: wrong kind")

// ErrUnsupportedConversion is returned by FromString for a (Kind, text)
// combination that cannot be parsed.
var ErrUnsupportedConversion = errors.New("value: unsupported conversion")

// Value is an immutable tagged union over the toy language's four
// primitive types plus Void (the "no value" result of declarations and
// statements).
type Value struct {
	kind   Kind
	i      int64
	r      float64
	s      string
	b      bool
}

// void is the Value of kind Void returned by VoidValue. (The Go zero
// Value{} is not void: it holds the integer 0.)
var void = Value{kind: Void}

func VoidValue() Value { return void }

func NewInt(i int64) Value     { return Value{kind: Int, i: i} }
func NewReal(r float64) Value  { return Value{kind: Real, r: r} }
func NewString(s string) Value { return Value{kind: String, s: s} }
func NewBool(b bool) Value     { return Value{kind: Boolean, b: b} }

// Kind reports the alternative currently held.
func (v Value) Kind() Kind { return v.kind }

// Int returns the held integer, or an error if v does not hold one.
func (v Value) Int() (int64, error) {
	if v.kind != Int {
		return 0, fmt.Errorf("%w: %s is not an integer", ErrWrongKind, v.kind)
	}
	return v.i, nil
}

// Real returns the held real, or an error if v does not hold one.
func (v Value) Real() (float64, error) {
	if v.kind != Real {
		return 0, fmt.Errorf("%w: %s is not a real number", ErrWrongKind, v.kind)
	}
	return v.r, nil
}

// Str returns the held string, or an error if v does not hold one.
func (v Value) Str() (string, error) {
	if v.kind != String {
		return "", fmt.Errorf("%w: %s is not a string", ErrWrongKind, v.kind)
	}
	return v.s, nil
}

// Bool returns the held boolean, or an error if v does not hold one.
func (v Value) Bool() (bool, error) {
	if v.kind != Boolean {
		return false, fmt.Errorf("%w: %s is not a boolean", ErrWrongKind, v.kind)
	}
	return v.b, nil
}

// Display renders v the way a write() statement would: INT decimal, REAL
// in general-precision decimal, STRING verbatim, BOOLEAN as true/false,
// VOID as "void".
func (v Value) Display() string {
	switch v.kind {
	case Int:
		return strconv.FormatInt(v.i, 10)
	case Real:
		return strconv.FormatFloat(v.r, 'g', -1, 64)
	case String:
		return v.s
	case Boolean:
		if v.b {
			return "true"
		}
		return "false"
	case Void:
		return "void"
	default:
		return "unknown"
	}
}

// FromString parses text into a Value of the requested kind: integers
// and reals are parsed with strconv, "true"/"false" map to booleans, and
// strings pass through unchanged. Any other combination fails.
func FromString(kind Kind, text string) (Value, error) {
	switch kind {
	case Int:
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %q as int: %v", ErrUnsupportedConversion, text, err)
		}
		return NewInt(n), nil
	case Real:
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %q as real: %v", ErrUnsupportedConversion, text, err)
		}
		return NewReal(f), nil
	case String:
		return NewString(text), nil
	case Boolean:
		switch text {
		case "true":
			return NewBool(true), nil
		case "false":
			return NewBool(false), nil
		default:
			return Value{}, fmt.Errorf("%w: %q is not a valid boolean", ErrUnsupportedConversion, text)
		}
	default:
		return Value{}, fmt.Errorf("%w: kind %s", ErrUnsupportedConversion, kind)
	}
}

// ZeroValue returns the type-specific zero value used when a declaration
// has no initializer: 0, 0.0, "", false.
func ZeroValue(kind Kind) Value {
	switch kind {
	case Int:
		return NewInt(0)
	case Real:
		return NewReal(0)
	case String:
		return NewString("")
	case Boolean:
		return NewBool(false)
	default:
		return VoidValue()
	}
}

// ReadInput parses one line of "read" input into the declared type:
// INT as a decimal integer, REAL as a double, STRING verbatim, BOOLEAN as
// true|1 / false|0.
func ReadInput(kind Kind, line string) (Value, error) {
	switch kind {
	case Boolean:
		switch line {
		case "true", "1":
			return NewBool(true), nil
		case "false", "0":
			return NewBool(false), nil
		default:
			return Value{}, fmt.Errorf("%w: %q is not a valid boolean input", ErrUnsupportedConversion, line)
		}
	default:
		return FromString(kind, line)
	}
}
