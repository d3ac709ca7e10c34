// validation.go: Static validation of a parser's declarations
//
// Registration already rejects structurally invalid arguments. Validation
// covers what can only be detected by evaluating the configuration:
// acceptance predicates that would fail at parse time, defaults outside
// their own acceptance sets, and environment key collisions.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package argparse

import (
	"fmt"
	"strings"
)

// ValidationResult is the outcome of ValidateDetailed.
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`

	first error
}

// String returns a human-readable summary.
func (vr ValidationResult) String() string {
	if vr.Valid {
		if len(vr.Warnings) == 0 {
			return "Declaration is valid"
		}
		return fmt.Sprintf("Declaration is valid with %d warning(s)", len(vr.Warnings))
	}
	return fmt.Sprintf("Declaration is invalid: %d error(s), %d warning(s)",
		len(vr.Errors), len(vr.Warnings))
}

func (vr *ValidationResult) addError(err error) {
	if vr.first == nil {
		vr.first = err
	}
	vr.Errors = append(vr.Errors, err.Error())
	vr.Valid = false
}

func (vr *ValidationResult) addWarning(format string, args ...any) {
	vr.Warnings = append(vr.Warnings, fmt.Sprintf(format, args...))
}

// Validate returns the first validation error, or nil.
func (p *ArgumentParser) Validate() error {
	return p.ValidateDetailed().first
}

// ValidateDetailed checks every argument and reports all findings.
func (p *ArgumentParser) ValidateDetailed() ValidationResult {
	result := ValidationResult{Valid: true}
	envKeys := make(map[string]string)

	p.VisitAll(func(dest string, a *Argument) {
		if strings.TrimSpace(a.help) == "" {
			result.addWarning("%s: no help text", dest)
		}
		p.validateAcceptSet(dest, a, &result)

		if a.defaults != nil {
			if err := a.check(a.defaults); err != nil {
				result.addError(annotate(err, dest, "", -1))
			}
		}

		if p.envPrefix != "" && !a.positional {
			key := EnvKey(p.envPrefix, dest)
			if other, taken := envKeys[key]; taken {
				result.addWarning("%s and %s share environment variable %s", other, dest, key)
			}
			envKeys[key] = dest
		}
	})
	return result
}

func (p *ArgumentParser) validateAcceptSet(dest string, a *Argument, result *ValidationResult) {
	for i, pred := range a.acceptSet {
		if pred == "" {
			continue
		}
		for _, clause := range splitClauses(pred) {
			if clause != strings.TrimSpace(clause) {
				result.addWarning("%s: acceptance clause %q has surrounding spaces", slotLabel(a, dest, i), clause)
			}
			if err := checkClause(a.vt, clause); err != nil {
				e := newError(KindLogicalConflict, "acceptance predicate cannot be evaluated")
				e.Dest = dest
				e.Name = a.name
				e.Predicate = pred
				e.Err = err
				result.addError(e)
			}
		}
	}
}

// checkClause reports whether clause can be evaluated for values of vt.
func checkClause(vt ValueType, clause string) error {
	switch vt {
	case Bool:
		_, err := ParseBool(clause)
		return err
	case Int, Float:
		if IsNumeric(clause) {
			return nil
		}
		_, err := ParsePredicate(clause)
		return err
	}
	return nil
}
