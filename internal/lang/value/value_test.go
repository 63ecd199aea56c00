package value

import (
	"errors"
	"testing"
)

func TestAccessorsRejectWrongKind(t *testing.T) {
	v := NewInt(5)
	if _, err := v.Real(); !errors.Is(err, ErrWrongKind) {
		t.Fatalf("expected ErrWrongKind, got %v", err)
	}
	if _, err := v.Str(); !errors.Is(err, ErrWrongKind) {
		t.Fatalf("expected ErrWrongKind, got %v", err)
	}
	if _, err := v.Bool(); !errors.Is(err, ErrWrongKind) {
		t.Fatalf("expected ErrWrongKind, got %v", err)
	}
}

func TestDisplay(t *testing.T) {
	cases := []struct {
		v    Value
		want string
	}{
		{NewInt(42), "42"},
		{NewReal(3.5), "3.5"},
		{NewString("hi"), "hi"},
		{NewBool(true), "true"},
		{NewBool(false), "false"},
		{VoidValue(), "void"},
	}
	for _, c := range cases {
		if got := c.v.Display(); got != c.want {
			t.Errorf("Display() = %q, want %q", got, c.want)
		}
	}
}

func TestFromString(t *testing.T) {
	v, err := FromString(Int, "7")
	if err != nil {
		t.Fatal(err)
	}
	if n, _ := v.Int(); n != 7 {
		t.Fatalf("got %d", n)
	}

	if _, err := FromString(Int, "nope"); !errors.Is(err, ErrUnsupportedConversion) {
		t.Fatalf("expected ErrUnsupportedConversion, got %v", err)
	}

	if _, err := FromString(Boolean, "maybe"); !errors.Is(err, ErrUnsupportedConversion) {
		t.Fatalf("expected ErrUnsupportedConversion, got %v", err)
	}
}

func TestZeroValue(t *testing.T) {
	if got := ZeroValue(Int).Display(); got != "0" {
		t.Fatalf("got %q", got)
	}
	if got := ZeroValue(String).Display(); got != "" {
		t.Fatalf("got %q", got)
	}
	if got := ZeroValue(Boolean).Display(); got != "false" {
		t.Fatalf("got %q", got)
	}
}

func TestReadInputBoolean(t *testing.T) {
	for _, line := range []string{"true", "1"} {
		v, err := ReadInput(Boolean, line)
		if err != nil {
			t.Fatalf("%q: %v", line, err)
		}
		if b, _ := v.Bool(); !b {
			t.Fatalf("%q: expected true", line)
		}
	}
	for _, line := range []string{"false", "0"} {
		v, err := ReadInput(Boolean, line)
		if err != nil {
			t.Fatalf("%q: %v", line, err)
		}
		if b, _ := v.Bool(); b {
			t.Fatalf("%q: expected false", line)
		}
	}
	if _, err := ReadInput(Boolean, "nah"); !errors.Is(err, ErrUnsupportedConversion) {
		t.Fatalf("expected error, got %v", err)
	}
}

func TestReadInputDelegatesForNonBoolean(t *testing.T) {
	v, err := ReadInput(Real, "1.5")
	if err != nil {
		t.Fatal(err)
	}
	if r, _ := v.Real(); r != 1.5 {
		t.Fatalf("got %v", r)
	}
}
