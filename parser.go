// parser.go: Argument registration and lookup
//
// An ArgumentParser owns its arguments, keyed by destination key in
// registration order, plus the switch registry and the ordered list of
// positional slots. Registration validates everything before committing,
// so a failed AddArgument leaves the parser untouched.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package argparse

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ArgumentParser declares arguments and parses token lists against them.
//
// A parser is not safe for concurrent use. Parse concurrent token streams
// with separate parsers (see ParseConcurrently).
type ArgumentParser struct {
	command     string
	description string
	combine     bool

	args        *orderedmap.OrderedMap[string, *Argument]
	positionals []string
	switches    *switchRegistry

	envPrefix    string
	auditor      Auditor
	errorHandler func(err error, tokens []string)
}

// Option configures an ArgumentParser.
type Option func(*ArgumentParser)

// WithCombineSwitches enables combined single-character bool switches
// such as -cd for -c -d.
func WithCombineSwitches(enabled bool) Option {
	return func(p *ArgumentParser) { p.combine = enabled }
}

// WithEnvPrefix enables the environment fallback for optional arguments.
func WithEnvPrefix(prefix string) Option {
	return func(p *ArgumentParser) { p.envPrefix = prefix }
}

// WithAuditor records every Parse call.
func WithAuditor(a Auditor) Option {
	return func(p *ArgumentParser) { p.auditor = a }
}

// WithErrorHandler installs a callback invoked with every parse failure.
// The parser itself never prints.
func WithErrorHandler(h func(err error, tokens []string)) Option {
	return func(p *ArgumentParser) { p.errorHandler = h }
}

// New creates an empty parser.
func New(command, description string, opts ...Option) *ArgumentParser {
	p := &ArgumentParser{
		command:     command,
		description: description,
		args:        orderedmap.New[string, *Argument](),
		switches:    newSwitchRegistry(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Command returns the command name used in help output.
func (p *ArgumentParser) Command() string { return p.command }

// Description returns the free-text description.
func (p *ArgumentParser) Description() string { return p.description }

// CombineSwitches reports whether combine-mode is active.
func (p *ArgumentParser) CombineSwitches() bool { return p.combine }

// EnvPrefix returns the environment fallback prefix, empty when disabled.
func (p *ArgumentParser) EnvPrefix() string { return p.envPrefix }

// argSpec collects AddArgument options.
type argSpec struct {
	vt          ValueType
	typed       bool
	action      Action
	altSwitches []string
	nargs       int
}

// ArgOption configures an argument at registration.
type ArgOption func(*argSpec)

// WithType sets the value type. The default is String.
func WithType(vt ValueType) ArgOption {
	return func(s *argSpec) { s.vt, s.typed = vt, true }
}

// WithAction sets the switch action. The default is ActionDefault.
func WithAction(a Action) ArgOption {
	return func(s *argSpec) { s.action = a }
}

// WithAltSwitches adds alternate switch spellings.
func WithAltSwitches(switches ...string) ArgOption {
	return func(s *argSpec) { s.altSwitches = append(s.altSwitches, switches...) }
}

// WithNArgs sets the number of values. The default is 1.
func WithNArgs(n int) ArgOption {
	return func(s *argSpec) { s.nargs = n }
}

// AddArgument registers an argument under dest. Binary actions imply the
// Bool type unless WithType says otherwise.
func (p *ArgumentParser) AddArgument(dest, name, help string, opts ...ArgOption) (*Argument, error) {
	cfg := argSpec{vt: String, action: ActionDefault, nargs: 1}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.action.binary() && !cfg.typed {
		cfg.vt = Bool
	}

	if dest == "" {
		e := newError(KindEmptyDestinationName, "destination key is empty")
		e.Name = name
		return nil, e
	}
	if _, exists := p.args.Get(dest); exists {
		e := newError(KindDuplicateArgument, "destination key already registered")
		e.Dest = dest
		e.Name = name
		return nil, e
	}

	a, err := NewArgument(name, cfg.vt, help, cfg.action, cfg.altSwitches, cfg.nargs)
	if err != nil {
		return nil, annotate(err, dest, "", -1)
	}
	if err := p.register(dest, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Register adds a pre-built argument under dest.
func (p *ArgumentParser) Register(dest string, a *Argument) error {
	if dest == "" {
		e := newError(KindEmptyDestinationName, "destination key is empty")
		e.Name = a.name
		return e
	}
	if _, exists := p.args.Get(dest); exists {
		e := newError(KindDuplicateArgument, "destination key already registered")
		e.Dest = dest
		e.Name = a.name
		return e
	}
	return p.register(dest, a)
}

func (p *ArgumentParser) register(dest string, a *Argument) error {
	spellings := a.spellings()
	if err := p.switches.check(dest, spellings); err != nil {
		return err
	}
	if p.combine && !combinable(a) {
		e := newError(KindIncompatibleSwitches, "bool arguments must be spelled -x in combine mode")
		e.Dest = dest
		e.Name = a.name
		return e
	}

	p.switches.add(dest, spellings)
	p.args.Set(dest, a)
	if a.positional {
		p.positionals = append(p.positionals, dest)
	}
	return nil
}

// RemoveArgument unregisters dest together with its switches and
// positional slot.
func (p *ArgumentParser) RemoveArgument(dest string) error {
	a, ok := p.args.Get(dest)
	if !ok {
		return unknownArgument(dest)
	}
	p.args.Delete(dest)
	p.switches.remove(dest)
	if a.positional {
		for i, d := range p.positionals {
			if d == dest {
				p.positionals = append(p.positionals[:i], p.positionals[i+1:]...)
				break
			}
		}
	}
	return nil
}

// SetCombineSwitches toggles combine-mode. Enabling it re-checks every
// registered argument; on failure the mode is left unchanged.
func (p *ArgumentParser) SetCombineSwitches(enabled bool) error {
	if enabled {
		for pair := p.args.Oldest(); pair != nil; pair = pair.Next() {
			if !combinable(pair.Value) {
				e := newError(KindIncompatibleSwitches, "bool arguments must be spelled -x in combine mode")
				e.Dest = pair.Key
				e.Name = pair.Value.name
				return e
			}
		}
	}
	p.combine = enabled
	return nil
}

func unknownArgument(dest string) error {
	e := newError(KindUnknownArgument, "no argument registered under this key")
	e.Dest = dest
	return e
}

// Arg returns the argument registered under dest.
func (p *ArgumentParser) Arg(dest string) (*Argument, error) {
	a, ok := p.args.Get(dest)
	if !ok {
		return nil, unknownArgument(dest)
	}
	return a, nil
}

// Len returns the number of registered arguments.
func (p *ArgumentParser) Len() int { return p.args.Len() }

// Positionals returns the positional destination keys in order.
func (p *ArgumentParser) Positionals() []string {
	return append([]string(nil), p.positionals...)
}

// Dests returns every destination key in registration order.
func (p *ArgumentParser) Dests() []string {
	out := make([]string, 0, p.args.Len())
	for pair := p.args.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Key)
	}
	return out
}

// VisitAll calls fn for every argument in registration order.
func (p *ArgumentParser) VisitAll(fn func(dest string, a *Argument)) {
	for pair := p.args.Oldest(); pair != nil; pair = pair.Next() {
		fn(pair.Key, pair.Value)
	}
}

// Typed getters by destination key.

func (p *ArgumentParser) GetBool(dest string) (bool, error) {
	a, err := p.Arg(dest)
	if err != nil {
		return false, err
	}
	v, err := a.AsBool()
	return v, annotate(err, dest, "", -1)
}

func (p *ArgumentParser) GetInt(dest string) (int, error) {
	a, err := p.Arg(dest)
	if err != nil {
		return 0, err
	}
	v, err := a.AsInt()
	return v, annotate(err, dest, "", -1)
}

func (p *ArgumentParser) GetFloat(dest string) (float64, error) {
	a, err := p.Arg(dest)
	if err != nil {
		return 0, err
	}
	v, err := a.AsFloat()
	return v, annotate(err, dest, "", -1)
}

func (p *ArgumentParser) GetString(dest string) (string, error) {
	a, err := p.Arg(dest)
	if err != nil {
		return "", err
	}
	v, err := a.AsString()
	return v, annotate(err, dest, "", -1)
}

func (p *ArgumentParser) GetBools(dest string) ([]bool, error) {
	a, err := p.Arg(dest)
	if err != nil {
		return nil, err
	}
	v, err := a.AsBools()
	return v, annotate(err, dest, "", -1)
}

func (p *ArgumentParser) GetInts(dest string) ([]int, error) {
	a, err := p.Arg(dest)
	if err != nil {
		return nil, err
	}
	v, err := a.AsInts()
	return v, annotate(err, dest, "", -1)
}

func (p *ArgumentParser) GetFloats(dest string) ([]float64, error) {
	a, err := p.Arg(dest)
	if err != nil {
		return nil, err
	}
	v, err := a.AsFloats()
	return v, annotate(err, dest, "", -1)
}

func (p *ArgumentParser) GetStrings(dest string) ([]string, error) {
	a, err := p.Arg(dest)
	if err != nil {
		return nil, err
	}
	v, err := a.AsStrings()
	return v, annotate(err, dest, "", -1)
}
