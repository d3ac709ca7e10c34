// predicate.go: Numeric range predicates
//
// A predicate is a run of comparison terms, each an operator followed by a
// numeric literal, all of which must hold: ">10<=20" accepts values in
// (10, 20]. The empty predicate accepts everything.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package argparse

import (
	"strings"
)

// Comparator is a predicate comparison operator.
type Comparator int

const (
	OpEq Comparator = iota
	OpNe
	OpLe
	OpGe
	OpLt
	OpGt
)

// two-character operators come first so that "<=" wins over "<"
var operators = []struct {
	token string
	op    Comparator
}{
	{"==", OpEq},
	{"!=", OpNe},
	{"<=", OpLe},
	{">=", OpGe},
	{"<", OpLt},
	{">", OpGt},
}

func (c Comparator) String() string {
	for _, o := range operators {
		if o.op == c {
			return o.token
		}
	}
	return "?"
}

// Term is a single comparison.
type Term struct {
	Op      Comparator
	Operand float64
}

// Holds reports whether v satisfies the term.
func (t Term) Holds(v float64) bool {
	switch t.Op {
	case OpEq:
		return v == t.Operand
	case OpNe:
		return v != t.Operand
	case OpLe:
		return v <= t.Operand
	case OpGe:
		return v >= t.Operand
	case OpLt:
		return v < t.Operand
	case OpGt:
		return v > t.Operand
	}
	return false
}

// Predicate is a parsed conjunction of terms.
type Predicate struct {
	Terms  []Term
	source string
}

// String returns the source text.
func (p Predicate) String() string { return p.source }

// Eval reports whether v satisfies every term. Evaluation stops at the
// first term that fails.
func (p Predicate) Eval(v float64) bool {
	for _, t := range p.Terms {
		if !t.Holds(v) {
			return false
		}
	}
	return true
}

// matchOperator returns the operator at the start of s. The operator must
// be followed by at least one character.
func matchOperator(s string) (Comparator, int, bool) {
	for _, o := range operators {
		if len(s) > len(o.token) && strings.HasPrefix(s, o.token) {
			return o.op, len(o.token), true
		}
	}
	return 0, 0, false
}

// nextOperator returns the index of the earliest operator occurrence in s,
// or len(s) when there is none.
func nextOperator(s string) int {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<', '>':
			return i
		case '=', '!':
			if i+1 < len(s) && s[i+1] == '=' {
				return i
			}
		}
	}
	return len(s)
}

// ParsePredicate parses a predicate expression.
func ParsePredicate(expr string) (Predicate, error) {
	p := Predicate{source: expr}
	rest := expr
	for rest != "" {
		op, width, ok := matchOperator(rest)
		if !ok {
			e := newError(KindPredicateSyntax, "expected comparison operator")
			e.Predicate = expr
			e.Token = rest
			return Predicate{}, e
		}
		rest = rest[width:]
		end := nextOperator(rest)
		literal := rest[:end]
		rest = rest[end:]

		operand, err := parseFloat(literal)
		if err != nil {
			e := newError(KindPredicateSyntax, "operand is not a number")
			e.Predicate = expr
			e.Token = literal
			e.Err = err
			return Predicate{}, e
		}
		p.Terms = append(p.Terms, Term{Op: op, Operand: operand})
	}
	return p, nil
}

// Evaluate parses predicate and applies it to value. Malformed predicates
// return a KindPredicateSyntax error and false.
func Evaluate(value float64, predicate string) (bool, error) {
	p, err := ParsePredicate(predicate)
	if err != nil {
		return false, err
	}
	return p.Eval(value), nil
}

// splitClauses splits a comma-separated acceptance predicate into its
// alternatives.
func splitClauses(pred string) []string {
	return strings.Split(pred, ",")
}
