// argument.go: Typed, cardinality-bound argument values
//
// An Argument owns nargs value slots of a single ValueType, optional
// defaults, per-position acceptance predicates and, for optional arguments,
// alternate switch spellings. Construction validates every structural rule
// and fails closed.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package argparse

import (
	"fmt"
	"strings"
)

// Argument is a typed value slot declared on a parser.
//
// Arguments are not safe for concurrent mutation. After parsing they are
// read-only and may be shared.
type Argument struct {
	name        string
	help        string
	vt          ValueType
	action      Action
	nargs       int
	positional  bool
	altSwitches []string

	value     slots // nil until set
	defaults  slots // nil when no default
	acceptSet []string
}

// switchDashes returns 1 or 2 for valid single-dash and double-dash switch
// spellings, 0 for names without a leading dash and -1 for malformed
// spellings such as "-", "--" or "---x".
func switchDashes(name string) int {
	n := 0
	for n < len(name) && name[n] == '-' {
		n++
	}
	switch {
	case n == 0:
		return 0
	case n == len(name), n > 2:
		return -1
	default:
		return n
	}
}

// NewArgument validates and builds an argument. Names starting with '-' or
// '--' declare optional arguments; any other non-empty name declares a
// positional argument.
func NewArgument(name string, vt ValueType, help string, action Action, altSwitches []string, nargs int) (*Argument, error) {
	dashes := switchDashes(name)
	if name == "" || dashes < 0 {
		e := newError(KindIllegalName, "argument name must be a positional label, -x or --name")
		e.Name = name
		return nil, e
	}
	if vt < Bool || vt > String {
		e := newError(KindTypeMismatch, "unknown value type")
		e.Name = name
		return nil, e
	}
	positional := dashes == 0

	if positional && action != ActionDefault {
		e := newError(KindIllegalAction, "positional arguments only accept the default action")
		e.Name = name
		return nil, e
	}
	if action.binary() && vt != Bool {
		e := newError(KindIllegalAction, fmt.Sprintf("%s requires a bool argument", action))
		e.Name = name
		return nil, e
	}
	if nargs < 1 {
		e := newError(KindIllegalNArgs, "nargs must be at least 1")
		e.Name = name
		e.Got = nargs
		return nil, e
	}
	if action.binary() && nargs != 1 {
		e := newError(KindIllegalNArgs, fmt.Sprintf("%s requires nargs == 1", action))
		e.Name = name
		e.Expected, e.Got = 1, nargs
		return nil, e
	}
	if positional && nargs > 1 {
		e := newError(KindIllegalNArgs, "positional arguments hold exactly one value")
		e.Name = name
		e.Expected, e.Got = 1, nargs
		return nil, e
	}
	if len(altSwitches) > 0 && positional {
		e := newError(KindIllegalAltSwitches, "positional arguments cannot have alternate switches")
		e.Name = name
		return nil, e
	}
	for _, alt := range altSwitches {
		if switchDashes(alt) <= 0 {
			e := newError(KindIllegalAltSwitches, "alternate switch must be -x or --name")
			e.Name = name
			e.Token = alt
			return nil, e
		}
	}

	a := &Argument{
		name:        name,
		help:        help,
		vt:          vt,
		action:      action,
		nargs:       nargs,
		positional:  positional,
		altSwitches: append([]string(nil), altSwitches...),
	}
	a.reset()
	return a, nil
}

// reset restores the value a parse starts from: the defaults, the unused
// value of a binary switch, or unset.
func (a *Argument) reset() {
	switch {
	case a.defaults != nil:
		a.value = a.defaults.clone()
	case a.action.binary():
		a.value = fillBool(!a.action.stored(), a.nargs)
	default:
		a.value = nil
	}
}

// Name returns the primary name.
func (a *Argument) Name() string { return a.name }

// Help returns the help text.
func (a *Argument) Help() string { return a.help }

// Type returns the value type.
func (a *Argument) Type() ValueType { return a.vt }

// Action returns the switch action.
func (a *Argument) Action() Action { return a.action }

// NArgs returns the number of values the argument holds.
func (a *Argument) NArgs() int { return a.nargs }

// IsPositional reports whether the argument is positional.
func (a *Argument) IsPositional() bool { return a.positional }

// AltSwitches returns a copy of the alternate switch spellings.
func (a *Argument) AltSwitches() []string { return append([]string(nil), a.altSwitches...) }

// AcceptSet returns a copy of the per-position acceptance predicates, or nil.
func (a *Argument) AcceptSet() []string { return append([]string(nil), a.acceptSet...) }

// IsSet reports whether the argument holds a value.
func (a *Argument) IsSet() bool { return a.value != nil }

// HasDefault reports whether defaults were configured.
func (a *Argument) HasDefault() bool { return a.defaults != nil }

// DefaultStrings returns the defaults rendered as strings, or nil.
func (a *Argument) DefaultStrings() []string { return formatSlots(a.defaults) }

// spellings returns the primary name followed by alternate switches.
func (a *Argument) spellings() []string {
	if a.positional {
		return nil
	}
	return append([]string{a.name}, a.altSwitches...)
}

// SetAcceptSet applies one predicate to every position.
func (a *Argument) SetAcceptSet(pred string) {
	set := make([]string, a.nargs)
	for i := range set {
		set[i] = pred
	}
	a.acceptSet = set
}

// SetAcceptSets applies one predicate per position. len(preds) must equal
// NArgs.
func (a *Argument) SetAcceptSets(preds []string) error {
	if len(preds) != a.nargs {
		e := newError(KindAcceptSetSizeMismatch, "one predicate per value is required")
		e.Name = a.name
		e.Expected, e.Got = a.nargs, len(preds)
		return e
	}
	a.acceptSet = append([]string(nil), preds...)
	return nil
}

// SetDefaultBool sets a single bool default.
func (a *Argument) SetDefaultBool(v bool) error { return a.setDefault(boolSlots{v}) }

// SetDefaultInt sets a single int default.
func (a *Argument) SetDefaultInt(v int) error { return a.setDefault(intSlots{v}) }

// SetDefaultFloat sets a single float default.
func (a *Argument) SetDefaultFloat(v float64) error { return a.setDefault(floatSlots{v}) }

// SetDefaultString sets a single string default.
func (a *Argument) SetDefaultString(v string) error { return a.setDefault(stringSlots{v}) }

// SetDefaultBools sets one bool default per position.
func (a *Argument) SetDefaultBools(v []bool) error {
	return a.setDefault(append(boolSlots(nil), v...))
}

// SetDefaultInts sets one int default per position.
func (a *Argument) SetDefaultInts(v []int) error {
	return a.setDefault(append(intSlots(nil), v...))
}

// SetDefaultFloats sets one float default per position.
func (a *Argument) SetDefaultFloats(v []float64) error {
	return a.setDefault(append(floatSlots(nil), v...))
}

// SetDefaultStrings sets one string default per position.
func (a *Argument) SetDefaultStrings(v []string) error {
	return a.setDefault(append(stringSlots(nil), v...))
}

// SetDefault sets defaults from a dynamically typed value: a scalar or a
// slice of bool, int, float64 or string.
func (a *Argument) SetDefault(v any) error {
	switch x := v.(type) {
	case bool:
		return a.SetDefaultBool(x)
	case int:
		return a.SetDefaultInt(x)
	case float64:
		return a.SetDefaultFloat(x)
	case string:
		return a.SetDefaultString(x)
	case []bool:
		return a.SetDefaultBools(x)
	case []int:
		return a.SetDefaultInts(x)
	case []float64:
		return a.SetDefaultFloats(x)
	case []string:
		return a.SetDefaultStrings(x)
	}
	e := newError(KindTypeMismatch, fmt.Sprintf("unsupported default of type %T", v))
	e.Name = a.name
	return e
}

// SetDefaultTokens parses tokens with the argument's type and uses them as
// defaults.
func (a *Argument) SetDefaultTokens(tokens []string) error {
	if a.positional {
		return a.defaultOnPositional()
	}
	s, err := parseSlots(a.vt, tokens)
	if err != nil {
		if ae, ok := err.(*ArgError); ok {
			ae.Name = a.name
		}
		return err
	}
	return a.setDefault(s)
}

func (a *Argument) defaultOnPositional() error {
	e := newError(KindDefaultOnPositional, "positional arguments cannot have defaults")
	e.Name = a.name
	return e
}

func (a *Argument) setDefault(s slots) error {
	if a.positional {
		return a.defaultOnPositional()
	}
	if s.valueType() != a.vt {
		e := newError(KindTypeMismatch, fmt.Sprintf("default is %s, argument is %s", s.valueType(), a.vt))
		e.Name = a.name
		return e
	}
	if s.len() != a.nargs {
		e := newError(KindValueCountMismatch, "one default per value is required")
		e.Name = a.name
		e.Expected, e.Got = a.nargs, s.len()
		return e
	}
	if a.action.binary() {
		want := !a.action.stored()
		for _, b := range s.(boolSlots) {
			if b != want {
				e := newError(KindLogicalConflict, fmt.Sprintf("%s switch cannot default to %t", a.action, b))
				e.Name = a.name
				return e
			}
		}
	}

	// every later Parse starts from the defaults, so they are checked even
	// when a value is already held
	if err := a.check(s); err != nil {
		return err
	}
	if !a.IsSet() {
		a.value = s.clone()
	}
	a.defaults = s
	return nil
}

// SetVal sets a single-value argument from one token.
func (a *Argument) SetVal(token string) error {
	if a.nargs != 1 {
		e := newError(KindValueCountMismatch, "argument holds more than one value")
		e.Name = a.name
		e.Expected, e.Got = a.nargs, 1
		return e
	}
	return a.SetVals([]string{token})
}

// SetVals replaces every value slot from exactly NArgs tokens and then
// runs the acceptance check. A value that parses but is rejected by the
// acceptance set stays stored; the returned error is authoritative.
func (a *Argument) SetVals(tokens []string) error {
	_, err := a.setVals(tokens)
	return err
}

// setVals is SetVals that also returns the position of the offending
// token, or -1 when the failure is not tied to one token.
func (a *Argument) setVals(tokens []string) (int, error) {
	if len(tokens) != a.nargs {
		e := newError(KindValueCountMismatch, "wrong number of values")
		e.Name = a.name
		e.Expected, e.Got = a.nargs, len(tokens)
		return -1, e
	}
	s, err := parseSlots(a.vt, tokens)
	if err != nil {
		pos := -1
		if ae, ok := err.(*ArgError); ok {
			ae.Name = a.name
			for i, tok := range tokens {
				if tok == ae.Token {
					pos = i
					break
				}
			}
		}
		return pos, err
	}
	a.value = s
	i, err := a.rejected(s)
	if err != nil {
		return -1, err
	}
	if i >= 0 {
		return i, a.outside(s, i)
	}
	return -1, nil
}

// store commits the switch value of a binary action.
func (a *Argument) store() {
	a.value = fillBool(a.action.stored(), a.nargs)
}

// Accept reports whether the current value satisfies the acceptance set.
// An unset argument is accepted.
func (a *Argument) Accept() (bool, error) {
	if a.value == nil {
		return true, nil
	}
	i, err := a.rejected(a.value)
	return i < 0, err
}

// check returns an OutsideAcceptanceSet or LogicalConflict error when s
// fails the acceptance set.
func (a *Argument) check(s slots) error {
	i, err := a.rejected(s)
	if err != nil {
		return err
	}
	if i >= 0 {
		return a.outside(s, i)
	}
	return nil
}

func (a *Argument) outside(s slots, i int) error {
	e := newError(KindOutsideAcceptanceSet, "value not accepted")
	e.Name = a.name
	e.Token = s.format(i)
	e.Predicate = a.acceptSet[i]
	return e
}

// rejected returns the first position of s that fails its predicate, or -1.
func (a *Argument) rejected(s slots) (int, error) {
	for i := 0; i < s.len() && i < len(a.acceptSet); i++ {
		pred := a.acceptSet[i]
		if pred == "" {
			continue
		}
		ok, err := acceptAt(s, i, pred)
		if err != nil {
			e := newError(KindLogicalConflict, "acceptance predicate cannot be evaluated")
			e.Name = a.name
			e.Predicate = pred
			e.Err = err
			return -1, e
		}
		if !ok {
			return i, nil
		}
	}
	return -1, nil
}

// acceptAt evaluates the comma-separated clauses of pred against slot i.
func acceptAt(s slots, i int, pred string) (bool, error) {
	for _, clause := range splitClauses(pred) {
		ok, err := clauseMatches(s, i, clause)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func clauseMatches(s slots, i int, clause string) (bool, error) {
	switch v := s.(type) {
	case boolSlots:
		b, err := ParseBool(clause)
		if err != nil {
			return false, err
		}
		return v[i] == b, nil
	case stringSlots:
		return v[i] == clause, nil
	case intSlots:
		if IsNumeric(clause) {
			n, err := parseInt(clause)
			return err == nil && n == v[i], err
		}
		return Evaluate(float64(v[i]), clause)
	case floatSlots:
		if IsNumeric(clause) {
			f, err := parseFloat(clause)
			return err == nil && f == v[i], err
		}
		return Evaluate(v[i], clause)
	}
	return false, nil
}

// accessor checks shared by every typed getter.
func (a *Argument) readable(vt ValueType, single bool) error {
	if single && a.nargs != 1 {
		e := newError(KindValueCountMismatch, "argument holds more than one value, use the slice accessor")
		e.Name = a.name
		e.Expected, e.Got = 1, a.nargs
		return e
	}
	if a.value == nil {
		e := newError(KindNotSet, "argument has no value")
		e.Name = a.name
		return e
	}
	if a.vt != vt {
		e := newError(KindTypeMismatch, fmt.Sprintf("argument is %s, requested %s", a.vt, vt))
		e.Name = a.name
		return e
	}
	return nil
}

// AsBool returns the value of a single bool argument.
func (a *Argument) AsBool() (bool, error) {
	if err := a.readable(Bool, true); err != nil {
		return false, err
	}
	return a.value.(boolSlots)[0], nil
}

// AsInt returns the value of a single int argument.
func (a *Argument) AsInt() (int, error) {
	if err := a.readable(Int, true); err != nil {
		return 0, err
	}
	return a.value.(intSlots)[0], nil
}

// AsFloat returns the value of a single float argument.
func (a *Argument) AsFloat() (float64, error) {
	if err := a.readable(Float, true); err != nil {
		return 0, err
	}
	return a.value.(floatSlots)[0], nil
}

// AsString returns the value of a single string argument.
func (a *Argument) AsString() (string, error) {
	if err := a.readable(String, true); err != nil {
		return "", err
	}
	return a.value.(stringSlots)[0], nil
}

// AsBools returns a copy of every bool value.
func (a *Argument) AsBools() ([]bool, error) {
	if err := a.readable(Bool, false); err != nil {
		return nil, err
	}
	return append([]bool(nil), a.value.(boolSlots)...), nil
}

// AsInts returns a copy of every int value.
func (a *Argument) AsInts() ([]int, error) {
	if err := a.readable(Int, false); err != nil {
		return nil, err
	}
	return append([]int(nil), a.value.(intSlots)...), nil
}

// AsFloats returns a copy of every float value.
func (a *Argument) AsFloats() ([]float64, error) {
	if err := a.readable(Float, false); err != nil {
		return nil, err
	}
	return append([]float64(nil), a.value.(floatSlots)...), nil
}

// AsStrings returns a copy of every string value.
func (a *Argument) AsStrings() ([]string, error) {
	if err := a.readable(String, false); err != nil {
		return nil, err
	}
	return append([]string(nil), a.value.(stringSlots)...), nil
}

// Value returns the value as a scalar when NArgs is 1, or as a typed slice
// otherwise.
func (a *Argument) Value() (any, error) {
	if err := a.readable(a.vt, false); err != nil {
		return nil, err
	}
	v := a.value.clone().value()
	if a.nargs != 1 {
		return v, nil
	}
	switch x := v.(type) {
	case []bool:
		return x[0], nil
	case []int:
		return x[0], nil
	case []float64:
		return x[0], nil
	case []string:
		return x[0], nil
	}
	return v, nil
}

// ValueStrings returns the current values rendered as strings.
func (a *Argument) ValueStrings() ([]string, error) {
	if err := a.readable(a.vt, false); err != nil {
		return nil, err
	}
	return formatSlots(a.value), nil
}

// String summarizes the argument for diagnostics.
func (a *Argument) String() string {
	var b strings.Builder
	b.WriteString(a.name)
	fmt.Fprintf(&b, " %s", a.vt)
	if a.nargs > 1 {
		fmt.Fprintf(&b, "x%d", a.nargs)
	}
	if a.action != ActionDefault {
		fmt.Fprintf(&b, " %s", a.action)
	}
	return b.String()
}
