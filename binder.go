// binder.go: Binding parsed values into Go variables
//
// A ResultBinder collects (target, destination key) pairs through a fluent
// API and copies the parsed values on Apply. Targets are held as raw
// pointers tagged with a bindKind, so Apply needs no reflection.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package argparse

import (
	"time"
	"unsafe"

	"github.com/agilira/go-errors"
)

type bindKind uint8

const (
	bindString bindKind = iota
	bindInt
	bindBool
	bindFloat64
	bindDuration
	bindStrings
	bindInts
	bindBools
	bindFloat64s
)

type binding struct {
	target unsafe.Pointer
	dest   string
	def    any // nil when no default was given
	kind   bindKind
}

// ResultBinder binds parser results into variables.
type ResultBinder struct {
	parser   *ArgumentParser
	bindings []binding
}

// Bind starts a binder over the parser's current values.
func (p *ArgumentParser) Bind() *ResultBinder {
	return &ResultBinder{parser: p, bindings: make([]binding, 0, 8)}
}

func (rb *ResultBinder) add(target unsafe.Pointer, dest string, kind bindKind, def any) *ResultBinder {
	rb.bindings = append(rb.bindings, binding{target: target, dest: dest, def: def, kind: kind})
	return rb
}

// String binds a single string argument. The optional default is used when
// the argument holds no value.
func (rb *ResultBinder) String(target *string, dest string, defaultValue ...string) *ResultBinder {
	var def any
	if len(defaultValue) > 0 {
		def = defaultValue[0]
	}
	return rb.add(unsafe.Pointer(target), dest, bindString, def) // #nosec G103 -- typed by the fluent API
}

// Int binds a single int argument.
func (rb *ResultBinder) Int(target *int, dest string, defaultValue ...int) *ResultBinder {
	var def any
	if len(defaultValue) > 0 {
		def = defaultValue[0]
	}
	return rb.add(unsafe.Pointer(target), dest, bindInt, def) // #nosec G103 -- typed by the fluent API
}

// Bool binds a single bool argument.
func (rb *ResultBinder) Bool(target *bool, dest string, defaultValue ...bool) *ResultBinder {
	var def any
	if len(defaultValue) > 0 {
		def = defaultValue[0]
	}
	return rb.add(unsafe.Pointer(target), dest, bindBool, def) // #nosec G103 -- typed by the fluent API
}

// Float64 binds a single float argument.
func (rb *ResultBinder) Float64(target *float64, dest string, defaultValue ...float64) *ResultBinder {
	var def any
	if len(defaultValue) > 0 {
		def = defaultValue[0]
	}
	return rb.add(unsafe.Pointer(target), dest, bindFloat64, def) // #nosec G103 -- typed by the fluent API
}

// Duration binds a string argument holding a Go duration such as "1m30s".
func (rb *ResultBinder) Duration(target *time.Duration, dest string, defaultValue ...time.Duration) *ResultBinder {
	var def any
	if len(defaultValue) > 0 {
		def = defaultValue[0]
	}
	return rb.add(unsafe.Pointer(target), dest, bindDuration, def) // #nosec G103 -- typed by the fluent API
}

// Strings binds every value of a string argument.
func (rb *ResultBinder) Strings(target *[]string, dest string) *ResultBinder {
	return rb.add(unsafe.Pointer(target), dest, bindStrings, nil) // #nosec G103 -- typed by the fluent API
}

// Ints binds every value of an int argument.
func (rb *ResultBinder) Ints(target *[]int, dest string) *ResultBinder {
	return rb.add(unsafe.Pointer(target), dest, bindInts, nil) // #nosec G103 -- typed by the fluent API
}

// Bools binds every value of a bool argument.
func (rb *ResultBinder) Bools(target *[]bool, dest string) *ResultBinder {
	return rb.add(unsafe.Pointer(target), dest, bindBools, nil) // #nosec G103 -- typed by the fluent API
}

// Float64s binds every value of a float argument.
func (rb *ResultBinder) Float64s(target *[]float64, dest string) *ResultBinder {
	return rb.add(unsafe.Pointer(target), dest, bindFloat64s, nil) // #nosec G103 -- typed by the fluent API
}

// Apply resolves every binding and then assigns them. Nothing is assigned
// when any binding fails. Arguments without a value take the bind default,
// or leave the target untouched when there is none.
func (rb *ResultBinder) Apply() error {
	values := make([]any, len(rb.bindings))
	for i, b := range rb.bindings {
		v, err := rb.resolve(b)
		if err != nil {
			return err
		}
		values[i] = v
	}
	for i, b := range rb.bindings {
		if values[i] != nil {
			assign(b, values[i])
		}
	}
	return nil
}

func (rb *ResultBinder) resolve(b binding) (any, error) {
	a, err := rb.parser.Arg(b.dest)
	if err != nil {
		return nil, err
	}
	if !a.IsSet() {
		return b.def, nil
	}

	var v any
	switch b.kind {
	case bindString:
		v, err = a.AsString()
	case bindInt:
		v, err = a.AsInt()
	case bindBool:
		v, err = a.AsBool()
	case bindFloat64:
		v, err = a.AsFloat()
	case bindDuration:
		var s string
		if s, err = a.AsString(); err == nil {
			var d time.Duration
			if d, err = time.ParseDuration(s); err != nil {
				return nil, errors.Wrap(err, ErrCodeTypeMismatch, "argument is not a duration").
					WithContext("dest", b.dest).
					WithContext("value", s)
			}
			v = d
		}
	case bindStrings:
		v, err = a.AsStrings()
	case bindInts:
		v, err = a.AsInts()
	case bindBools:
		v, err = a.AsBools()
	case bindFloat64s:
		v, err = a.AsFloats()
	}
	if err != nil {
		return nil, annotate(err, b.dest, "", -1)
	}
	return v, nil
}

func assign(b binding, v any) {
	switch b.kind {
	case bindString:
		*(*string)(b.target) = v.(string)
	case bindInt:
		*(*int)(b.target) = v.(int)
	case bindBool:
		*(*bool)(b.target) = v.(bool)
	case bindFloat64:
		*(*float64)(b.target) = v.(float64)
	case bindDuration:
		*(*time.Duration)(b.target) = v.(time.Duration)
	case bindStrings:
		*(*[]string)(b.target) = v.([]string)
	case bindInts:
		*(*[]int)(b.target) = v.([]int)
	case bindBools:
		*(*[]bool)(b.target) = v.([]bool)
	case bindFloat64s:
		*(*[]float64)(b.target) = v.([]float64)
	}
}
