// value.go: Value types, actions and the tagged slot storage
//
// Argument values are held in one of four slot vectors (bool, int, float64,
// string) behind the sealed slots interface. Accessors switch on the
// concrete vector and never reinterpret storage.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package argparse

import (
	"strconv"
	"strings"
)

// ValueType is the element type of an argument's values.
type ValueType int

const (
	Bool ValueType = iota
	Int
	Float
	String
)

// String returns the lower-case type name.
func (vt ValueType) String() string {
	switch vt {
	case Bool:
		return "bool"
	case Int:
		return "int"
	case Float:
		return "float"
	case String:
		return "string"
	default:
		return "unknown"
	}
}

// ParseValueType converts a type name (bool, int, float, string and common
// aliases) into a ValueType.
func ParseValueType(s string) (ValueType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bool", "boolean":
		return Bool, nil
	case "int", "integer":
		return Int, nil
	case "float", "float64", "double", "number":
		return Float, nil
	case "", "string", "str":
		return String, nil
	}
	e := newError(KindTypeMismatch, "unknown value type")
	e.Token = s
	return String, e
}

// Action controls how a switch consumes tokens.
type Action int

const (
	// ActionDefault consumes nargs value tokens after the switch.
	ActionDefault Action = iota
	// ActionStoreTrue consumes nothing and sets the value to true.
	ActionStoreTrue
	// ActionStoreFalse consumes nothing and sets the value to false.
	ActionStoreFalse
)

func (a Action) String() string {
	switch a {
	case ActionDefault:
		return "default"
	case ActionStoreTrue:
		return "store_true"
	case ActionStoreFalse:
		return "store_false"
	default:
		return "unknown"
	}
}

// ParseAction converts an action name into an Action.
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "default", "store":
		return ActionDefault, nil
	case "store_true", "storetrue", "store-true":
		return ActionStoreTrue, nil
	case "store_false", "storefalse", "store-false":
		return ActionStoreFalse, nil
	}
	e := newError(KindIllegalAction, "unknown action")
	e.Token = s
	return ActionDefault, e
}

// binary reports whether the action consumes no value tokens.
func (a Action) binary() bool {
	return a == ActionStoreTrue || a == ActionStoreFalse
}

// stored returns the value a binary action writes when its switch appears.
func (a Action) stored() bool {
	return a == ActionStoreTrue
}

// ParseBool interprets a token with the canonical boolean vocabulary:
// true/True/TRUE/T/t/1 and false/False/FALSE/F/f/0.
func ParseBool(token string) (bool, error) {
	switch token {
	case "true", "True", "TRUE", "T", "t", "1":
		return true, nil
	case "false", "False", "FALSE", "F", "f", "0":
		return false, nil
	}
	e := newError(KindUnrecognizedBoolean, "token is not a boolean")
	e.Token = token
	return false, e
}

// IsNumeric reports whether s is a plain decimal literal: an optional
// leading '-', at least one digit and at most one '.'. Exponents are not
// accepted.
func IsNumeric(s string) bool {
	if s == "" || s == "-" {
		return false
	}
	digits, dots := 0, 0
	for i, c := range s {
		switch {
		case c == '-':
			if i != 0 {
				return false
			}
		case c == '.':
			dots++
			if dots > 1 {
				return false
			}
		case c >= '0' && c <= '9':
			digits++
		default:
			return false
		}
	}
	return digits > 0
}

// parseFloat converts a numeric literal into a float64.
func parseFloat(token string) (float64, error) {
	if !IsNumeric(token) {
		e := newError(KindUnrecognizedNumber, "token is not a number")
		e.Token = token
		return 0, e
	}
	f, err := strconv.ParseFloat(token, 64)
	if err != nil {
		e := newError(KindUnrecognizedNumber, "number out of range")
		e.Token = token
		e.Err = err
		return 0, e
	}
	return f, nil
}

// parseInt converts a numeric literal into an int. A fractional part is
// truncated toward zero.
func parseInt(token string) (int, error) {
	if !IsNumeric(token) {
		e := newError(KindUnrecognizedNumber, "token is not a number")
		e.Token = token
		return 0, e
	}
	whole := token
	if dot := strings.IndexByte(token, '.'); dot >= 0 {
		whole = token[:dot]
	}
	if whole == "" || whole == "-" {
		return 0, nil
	}
	n, err := strconv.ParseInt(whole, 10, 0)
	if err != nil {
		e := newError(KindUnrecognizedNumber, "integer out of range")
		e.Token = token
		e.Err = err
		return 0, e
	}
	return int(n), nil
}

// slots is the tagged union of value vectors.
type slots interface {
	valueType() ValueType
	len() int
	format(i int) string
	clone() slots
	value() any
}

type boolSlots []bool
type intSlots []int
type floatSlots []float64
type stringSlots []string

func (s boolSlots) valueType() ValueType   { return Bool }
func (s intSlots) valueType() ValueType    { return Int }
func (s floatSlots) valueType() ValueType  { return Float }
func (s stringSlots) valueType() ValueType { return String }

func (s boolSlots) len() int   { return len(s) }
func (s intSlots) len() int    { return len(s) }
func (s floatSlots) len() int  { return len(s) }
func (s stringSlots) len() int { return len(s) }

func (s boolSlots) format(i int) string {
	if s[i] {
		return "true"
	}
	return "false"
}
func (s intSlots) format(i int) string    { return strconv.Itoa(s[i]) }
func (s floatSlots) format(i int) string  { return strconv.FormatFloat(s[i], 'g', -1, 64) }
func (s stringSlots) format(i int) string { return s[i] }

func (s boolSlots) clone() slots   { return append(boolSlots(nil), s...) }
func (s intSlots) clone() slots    { return append(intSlots(nil), s...) }
func (s floatSlots) clone() slots  { return append(floatSlots(nil), s...) }
func (s stringSlots) clone() slots { return append(stringSlots(nil), s...) }

func (s boolSlots) value() any   { return []bool(s) }
func (s intSlots) value() any    { return []int(s) }
func (s floatSlots) value() any  { return []float64(s) }
func (s stringSlots) value() any { return []string(s) }

// parseSlots converts raw tokens into a slot vector of the given type. No
// partial vector is returned on failure.
func parseSlots(vt ValueType, tokens []string) (slots, error) {
	switch vt {
	case Bool:
		out := make(boolSlots, len(tokens))
		for i, tok := range tokens {
			b, err := ParseBool(tok)
			if err != nil {
				return nil, err
			}
			out[i] = b
		}
		return out, nil
	case Int:
		out := make(intSlots, len(tokens))
		for i, tok := range tokens {
			n, err := parseInt(tok)
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	case Float:
		out := make(floatSlots, len(tokens))
		for i, tok := range tokens {
			f, err := parseFloat(tok)
			if err != nil {
				return nil, err
			}
			out[i] = f
		}
		return out, nil
	default:
		return append(stringSlots(nil), tokens...), nil
	}
}

// formatSlots renders every slot as a string.
func formatSlots(s slots) []string {
	if s == nil {
		return nil
	}
	out := make([]string, s.len())
	for i := range out {
		out[i] = s.format(i)
	}
	return out
}

// fillBool returns n copies of b.
func fillBool(b bool, n int) boolSlots {
	out := make(boolSlots, n)
	for i := range out {
		out[i] = b
	}
	return out
}
