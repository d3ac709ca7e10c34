// registry.go: Switch spelling bookkeeping
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package argparse

// switchRegistry maps every registered switch spelling to its destination
// key. Single-dash and double-dash spellings live in separate namespaces.
type switchRegistry struct {
	single map[string]string
	double map[string]string
}

func newSwitchRegistry() *switchRegistry {
	return &switchRegistry{
		single: make(map[string]string),
		double: make(map[string]string),
	}
}

func (r *switchRegistry) namespace(spelling string) map[string]string {
	if switchDashes(spelling) == 2 {
		return r.double
	}
	return r.single
}

// lookup resolves an exact spelling.
func (r *switchRegistry) lookup(spelling string) (string, bool) {
	switch switchDashes(spelling) {
	case 1:
		dest, ok := r.single[spelling]
		return dest, ok
	case 2:
		dest, ok := r.double[spelling]
		return dest, ok
	}
	return "", false
}

// check reports the first spelling that is already taken, including
// repeats inside spellings itself.
func (r *switchRegistry) check(dest string, spellings []string) error {
	seen := make(map[string]bool, len(spellings))
	for _, s := range spellings {
		owner, taken := r.namespace(s)[s]
		if taken || seen[s] {
			e := newError(KindDuplicateSwitch, "switch already registered")
			e.Dest = dest
			e.Name = s
			if taken {
				e.Detail = "switch already registered by " + owner
			}
			return e
		}
		seen[s] = true
	}
	return nil
}

// add registers spellings for dest. Callers run check first.
func (r *switchRegistry) add(dest string, spellings []string) {
	for _, s := range spellings {
		r.namespace(s)[s] = dest
	}
}

// remove drops every spelling owned by dest.
func (r *switchRegistry) remove(dest string) {
	for s, d := range r.single {
		if d == dest {
			delete(r.single, s)
		}
	}
	for s, d := range r.double {
		if d == dest {
			delete(r.double, s)
		}
	}
}

// combinable reports whether a can take part in combine-mode: bool
// arguments must be spelled -x with a single character.
func combinable(a *Argument) bool {
	if a.vt != Bool {
		return true
	}
	return switchDashes(a.name) == 1 && len(a.name) == 2
}
