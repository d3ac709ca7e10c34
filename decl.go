// decl.go: Parser declarations loaded from configuration files
//
// A Declaration describes a parser and its arguments as data, so command
// line surfaces can be defined in JSON, YAML, TOML or HCL files and built
// at runtime. The format is detected from the file extension; custom
// decoders can be registered for additional formats or stricter schemas.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package argparse

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/agilira/go-errors"
)

// DeclFormat is a declaration file format.
type DeclFormat int

const (
	DeclJSON DeclFormat = iota
	DeclYAML
	DeclTOML
	DeclHCL
	DeclUnknown
)

func (f DeclFormat) String() string {
	switch f {
	case DeclJSON:
		return "json"
	case DeclYAML:
		return "yaml"
	case DeclTOML:
		return "toml"
	case DeclHCL:
		return "hcl"
	default:
		return "unknown"
	}
}

// DetectDeclFormat picks the format from the file extension.
func DetectDeclFormat(path string) DeclFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return DeclJSON
	case ".yml", ".yaml":
		return DeclYAML
	case ".toml":
		return DeclTOML
	case ".hcl":
		return DeclHCL
	default:
		return DeclUnknown
	}
}

// Declaration describes a parser.
type Declaration struct {
	Command         string         `json:"command" yaml:"command" toml:"command" hcl:"command"`
	Description     string         `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty" hcl:"description,optional"`
	CombineSwitches bool           `json:"combine_switches,omitempty" yaml:"combine_switches,omitempty" toml:"combine_switches,omitempty" hcl:"combine_switches,optional"`
	EnvPrefix       string         `json:"env_prefix,omitempty" yaml:"env_prefix,omitempty" toml:"env_prefix,omitempty" hcl:"env_prefix,optional"`
	Arguments       []ArgumentDecl `json:"arguments" yaml:"arguments" toml:"arguments" hcl:"argument,block"`
}

// ArgumentDecl describes one argument. Defaults are tokens parsed with the
// argument's type. Accept holds either one predicate for every position or
// one per position.
type ArgumentDecl struct {
	Dest        string   `json:"dest" yaml:"dest" toml:"dest" hcl:"dest,label"`
	Name        string   `json:"name" yaml:"name" toml:"name" hcl:"name"`
	Help        string   `json:"help,omitempty" yaml:"help,omitempty" toml:"help,omitempty" hcl:"help,optional"`
	Type        string   `json:"type,omitempty" yaml:"type,omitempty" toml:"type,omitempty" hcl:"type,optional"`
	Action      string   `json:"action,omitempty" yaml:"action,omitempty" toml:"action,omitempty" hcl:"action,optional"`
	AltSwitches []string `json:"alt_switches,omitempty" yaml:"alt_switches,omitempty" toml:"alt_switches,omitempty" hcl:"alt_switches,optional"`
	NArgs       int      `json:"nargs,omitempty" yaml:"nargs,omitempty" toml:"nargs,omitempty" hcl:"nargs,optional"`
	Defaults    []string `json:"defaults,omitempty" yaml:"defaults,omitempty" toml:"defaults,omitempty" hcl:"defaults,optional"`
	Accept      []string `json:"accept,omitempty" yaml:"accept,omitempty" toml:"accept,omitempty" hcl:"accept,optional"`
}

// DeclDecoder decodes declaration files. Registered decoders are tried
// before the built-in ones.
type DeclDecoder interface {
	Decode(data []byte, into *Declaration) error
	Supports(format DeclFormat) bool
	Name() string
}

var (
	customDecoders []DeclDecoder
	decoderMutex   sync.RWMutex
)

// RegisterDeclDecoder registers a custom declaration decoder.
func RegisterDeclDecoder(d DeclDecoder) {
	decoderMutex.Lock()
	defer decoderMutex.Unlock()
	customDecoders = append(customDecoders, d)
}

func invalidDeclaration(detail string, cause error) *ArgError {
	e := newError(KindInvalidDeclaration, detail)
	e.Err = cause
	return e
}

// ParseDeclaration decodes data in the given format.
func ParseDeclaration(data []byte, format DeclFormat) (*Declaration, error) {
	decl := &Declaration{}

	decoderMutex.RLock()
	for _, d := range customDecoders {
		if d.Supports(format) {
			decoderMutex.RUnlock()
			if err := d.Decode(data, decl); err != nil {
				return nil, invalidDeclaration("decoder "+d.Name()+" failed", err)
			}
			return decl.checked()
		}
	}
	decoderMutex.RUnlock()

	var err error
	switch format {
	case DeclJSON:
		err = decodeJSON(data, decl)
	case DeclYAML:
		err = decodeYAML(data, decl)
	case DeclTOML:
		err = decodeTOML(data, decl)
	case DeclHCL:
		err = decodeHCL(data, decl)
	default:
		return nil, invalidDeclaration("unsupported declaration format", nil)
	}
	if err != nil {
		return nil, invalidDeclaration("cannot decode "+format.String()+" declaration", err)
	}
	return decl.checked()
}

// LoadDeclaration reads and decodes a declaration file.
func LoadDeclaration(path string) (*Declaration, error) {
	format := DetectDeclFormat(path)
	if format == DeclUnknown {
		e := invalidDeclaration("unknown declaration file extension", nil)
		e.Name = path
		return nil, e
	}
	data, err := os.ReadFile(path) // #nosec G304 -- declaration path is caller supplied
	if err != nil {
		return nil, errors.Wrap(err, ErrCodeInvalidDeclaration, "cannot read declaration file").
			WithContext("path", path)
	}
	decl, err := ParseDeclaration(data, format)
	if err != nil {
		if ae, ok := err.(*ArgError); ok && ae.Name == "" {
			ae.Name = path
		}
		return nil, err
	}
	return decl, nil
}

// checked validates the parts of a declaration that the parser cannot.
func (d *Declaration) checked() (*Declaration, error) {
	if strings.TrimSpace(d.Command) == "" {
		return nil, invalidDeclaration("command is required", nil)
	}
	for _, ad := range d.Arguments {
		if ad.Dest == "" {
			e := invalidDeclaration("argument without dest", nil)
			e.Name = ad.Name
			return nil, e
		}
	}
	return d, nil
}

// Build creates a parser from the declaration. Extra options are applied
// after the declared ones.
func (d *Declaration) Build(opts ...Option) (*ArgumentParser, error) {
	base := []Option{WithCombineSwitches(d.CombineSwitches)}
	if d.EnvPrefix != "" {
		base = append(base, WithEnvPrefix(d.EnvPrefix))
	}
	p := New(d.Command, d.Description, append(base, opts...)...)

	for _, ad := range d.Arguments {
		if err := ad.register(p); err != nil {
			return nil, annotate(err, ad.Dest, "", -1)
		}
	}
	return p, nil
}

func (ad ArgumentDecl) register(p *ArgumentParser) error {
	var argOpts []ArgOption
	if ad.Type != "" {
		vt, err := ParseValueType(ad.Type)
		if err != nil {
			return err
		}
		argOpts = append(argOpts, WithType(vt))
	}
	action, err := ParseAction(ad.Action)
	if err != nil {
		return err
	}
	argOpts = append(argOpts, WithAction(action))
	if len(ad.AltSwitches) > 0 {
		argOpts = append(argOpts, WithAltSwitches(ad.AltSwitches...))
	}
	if ad.NArgs != 0 {
		argOpts = append(argOpts, WithNArgs(ad.NArgs))
	}

	a, err := p.AddArgument(ad.Dest, ad.Name, ad.Help, argOpts...)
	if err != nil {
		return err
	}

	switch len(ad.Accept) {
	case 0:
	case 1:
		a.SetAcceptSet(ad.Accept[0])
	default:
		if err := a.SetAcceptSets(ad.Accept); err != nil {
			_ = p.RemoveArgument(ad.Dest)
			return err
		}
	}
	if len(ad.Defaults) > 0 {
		if err := a.SetDefaultTokens(ad.Defaults); err != nil {
			_ = p.RemoveArgument(ad.Dest)
			return err
		}
	}
	return nil
}

// Declare captures a parser as a Declaration, the inverse of Build.
func (p *ArgumentParser) Declare() *Declaration {
	d := &Declaration{
		Command:         p.command,
		Description:     p.description,
		CombineSwitches: p.combine,
		EnvPrefix:       p.envPrefix,
	}
	p.VisitAll(func(dest string, a *Argument) {
		ad := ArgumentDecl{
			Dest:        dest,
			Name:        a.name,
			Help:        a.help,
			Type:        a.vt.String(),
			AltSwitches: a.AltSwitches(),
			Defaults:    a.DefaultStrings(),
			Accept:      compactAccept(a.acceptSet),
		}
		if a.action != ActionDefault {
			ad.Action = a.action.String()
		}
		if a.nargs != 1 {
			ad.NArgs = a.nargs
		}
		if len(ad.AltSwitches) == 0 {
			ad.AltSwitches = nil
		}
		d.Arguments = append(d.Arguments, ad)
	})
	return d
}

// compactAccept collapses identical per-position predicates into one.
func compactAccept(set []string) []string {
	if len(set) == 0 {
		return nil
	}
	for _, s := range set[1:] {
		if s != set[0] {
			return append([]string(nil), set...)
		}
	}
	if set[0] == "" {
		return nil
	}
	return []string{set[0]}
}
