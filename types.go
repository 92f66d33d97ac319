package omsvalues

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Type tags the scalar kind of a variable.
type Type int

const (
	TypeReal Type = iota + 1
	TypeInteger
	TypeBoolean
)

// String returns the SSV element name for the type ("Real", "Integer", "Boolean").
func (t Type) String() string {
	switch t {
	case TypeReal:
		return "Real"
	case TypeInteger:
		return "Integer"
	case TypeBoolean:
		return "Boolean"
	default:
		return "Unknown"
	}
}

// ParseType converts an SSV/FMI element name into a Type. ok is false for
// types the engine does not store (String, Enumeration, Binary, ...).
func ParseType(s string) (Type, bool) {
	switch strings.ToLower(s) {
	case "real":
		return TypeReal, true
	case "integer":
		return TypeInteger, true
	case "boolean":
		return TypeBoolean, true
	default:
		return 0, false
	}
}

// Value is a typed scalar: exactly one of real, integer or boolean.
type Value struct {
	typ Type
	r   float64
	i   int
	b   bool
}

// Real returns a real-typed value.
func Real(v float64) Value { return Value{typ: TypeReal, r: v} }

// Integer returns an integer-typed value.
func Integer(v int) Value { return Value{typ: TypeInteger, i: v} }

// Boolean returns a boolean-typed value.
func Boolean(v bool) Value { return Value{typ: TypeBoolean, b: v} }

// ParseValue parses an XML attribute literal as a value of type t.
// Booleans accept "true"/"false"/"1"/"0".
func ParseValue(t Type, literal string) (Value, error) {
	literal = strings.TrimSpace(literal)
	switch t {
	case TypeReal:
		f, err := strconv.ParseFloat(literal, 64)
		if err != nil {
			return Value{}, fmt.Errorf("parse real %q: %w", literal, err)
		}
		return Real(f), nil
	case TypeInteger:
		n, err := strconv.Atoi(literal)
		if err != nil {
			return Value{}, fmt.Errorf("parse integer %q: %w", literal, err)
		}
		return Integer(n), nil
	case TypeBoolean:
		switch literal {
		case "true", "1":
			return Boolean(true), nil
		case "false", "0":
			return Boolean(false), nil
		}
		return Value{}, fmt.Errorf("parse boolean %q: expected true or false", literal)
	default:
		return Value{}, fmt.Errorf("parse value: unsupported type %s", t)
	}
}

// Type returns the value's type tag. The zero Value has type 0.
func (v Value) Type() Type { return v.typ }

// IsZero reports whether v is the zero Value (no type).
func (v Value) IsZero() bool { return v.typ == 0 }

// Real returns the float and whether v is real-typed.
func (v Value) Real() (float64, bool) { return v.r, v.typ == TypeReal }

// Integer returns the int and whether v is integer-typed.
func (v Value) Integer() (int, bool) { return v.i, v.typ == TypeInteger }

// Boolean returns the bool and whether v is boolean-typed.
func (v Value) Boolean() (bool, bool) { return v.b, v.typ == TypeBoolean }

// Equal reports whether both values have the same type and payload.
// NaN equals NaN so a stored NaN survives a round trip.
func (v Value) Equal(o Value) bool {
	if v.typ != o.typ {
		return false
	}
	switch v.typ {
	case TypeReal:
		return v.r == o.r || (math.IsNaN(v.r) && math.IsNaN(o.r))
	case TypeInteger:
		return v.i == o.i
	case TypeBoolean:
		return v.b == o.b
	default:
		return true
	}
}

// Literal formats the payload the way it is written to XML attributes.
// Reals use the shortest representation that parses back to the same float.
func (v Value) Literal() string {
	switch v.typ {
	case TypeReal:
		return strconv.FormatFloat(v.r, 'g', -1, 64)
	case TypeInteger:
		return strconv.Itoa(v.i)
	case TypeBoolean:
		return strconv.FormatBool(v.b)
	default:
		return ""
	}
}

// String returns "Type(literal)", e.g. "Real(3.5)".
func (v Value) String() string {
	return v.typ.String() + "(" + v.Literal() + ")"
}

// ModelState is the lifecycle phase of the model owning a Values store.
type ModelState int

const (
	StateVirgin ModelState = iota
	StateEnterInstantiation
	StateInstantiated
	StateInitialization
	StateSimulation
	StateError
)

var modelStateNames = map[ModelState]string{
	StateVirgin:             "virgin",
	StateEnterInstantiation: "enterInstantiation",
	StateInstantiated:       "instantiated",
	StateInitialization:     "initialization",
	StateSimulation:         "simulation",
	StateError:              "error",
}

func (s ModelState) String() string {
	if name, ok := modelStateNames[s]; ok {
		return name
	}
	return "unknown"
}

// ParseModelState converts a state name (case-insensitive) into a ModelState.
func ParseModelState(s string) (ModelState, bool) {
	for state, name := range modelStateNames {
		if strings.EqualFold(name, s) {
			return state, true
		}
	}
	return 0, false
}

// ModelStates lists all states in lifecycle order.
func ModelStates() []ModelState {
	return []ModelState{
		StateVirgin,
		StateEnterInstantiation,
		StateInstantiated,
		StateInitialization,
		StateSimulation,
		StateError,
	}
}

// Initialized reports whether the model has left the setup phases.
func (s ModelState) Initialized() bool {
	return s == StateSimulation || s == StateError
}
