// Package cli provides the command-line interface for argparse declarations.
//
// The CLI loads parser declarations (JSON, YAML, TOML or HCL), validates
// them, renders their help text, parses token lists against them and
// inspects the parse audit trail. It is built on the Orpheus framework.
//
// Commands:
//   - check <decl>              validate a declaration
//   - parse <decl> [tokens...]  parse tokens and print the typed results
//   - render <decl>             render the help text of a declaration
//   - convert <in> <out>        convert a declaration between formats
//   - eval <value> <predicate>  evaluate a numeric range predicate
//   - audit stats <file>        summarize a parse audit trail
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package cli

import (
	"io"
	"os"

	"github.com/agilira/argparse"
	"github.com/agilira/orpheus/pkg/orpheus"
)

// Manager wires the CLI commands to the argparse package.
type Manager struct {
	app         *orpheus.App
	auditLogger *argparse.AuditLogger // Optional audit integration

	out    io.Writer
	errOut io.Writer

	// tokens following a literal "--" on the command line, handed to the
	// parse command untouched
	passthrough []string
}

// NewManager creates a CLI manager with every command registered.
func NewManager() *Manager {
	app := orpheus.New("argparse").
		SetDescription("Declare, validate and exercise typed command-line parsers").
		SetVersion("1.0.0")

	manager := &Manager{
		app:    app,
		out:    os.Stdout,
		errOut: os.Stderr,
	}

	manager.setupDeclarationCommands()
	manager.setupEvalCommands()
	manager.setupAuditCommands()

	return manager
}

// WithAudit records every parse performed by the parse command.
func (m *Manager) WithAudit(auditLogger *argparse.AuditLogger) *Manager {
	m.auditLogger = auditLogger
	return m
}

// WithOutput redirects regular and diagnostic output.
func (m *Manager) WithOutput(out, errOut io.Writer) *Manager {
	if out != nil {
		m.out = out
	}
	if errOut != nil {
		m.errOut = errOut
	}
	return m
}

// Run executes the CLI with the provided arguments (program name
// excluded). Everything after the first "--" is passed to the parse
// command verbatim, so tokens that look like switches reach the
// declaration instead of the CLI.
func (m *Manager) Run(args []string) error {
	m.passthrough = nil
	for i, a := range args {
		if a == "--" {
			m.passthrough = append([]string{}, args[i+1:]...)
			args = args[:i]
			break
		}
	}
	return m.app.Run(args)
}

// setupDeclarationCommands registers check, parse, render and convert.
func (m *Manager) setupDeclarationCommands() {
	// check <decl> [--strict]
	checkCmd := orpheus.NewCommand("check", "Validate a parser declaration")
	checkCmd.SetHandler(m.handleCheck)
	checkCmd.AddBoolFlag("strict", "s", false, "Treat warnings as errors")
	m.app.AddCommand(checkCmd)

	// parse <decl> [tokens...] [--line=...] [--output=text]
	parseCmd := orpheus.NewCommand("parse", "Parse tokens against a declaration").
		AddFlag("line", "l", "", "Token line split with shell quoting rules").
		AddFlag("output", "o", "text", "Output format (text|json|yaml)").
		AddFlag("audit", "a", "", "Append the parse to this audit trail (.db or .jsonl)").
		SetHandler(m.handleParse)
	m.app.AddCommand(parseCmd)

	// render <decl> [--width=0] [--left=24]
	renderCmd := orpheus.NewCommand("render", "Render the help text of a declaration")
	renderCmd.SetHandler(m.handleRender)
	renderCmd.AddIntFlag("width", "w", 0, "Console width (0 detects the terminal)")
	renderCmd.AddIntFlag("left", "l", argparse.DefaultLeftWidth, "Width of the switch column")
	m.app.AddCommand(renderCmd)

	// convert <input> <output>
	convertCmd := orpheus.NewCommand("convert", "Convert a declaration between formats").
		SetHandler(m.handleConvert)
	m.app.AddCommand(convertCmd)
}

// setupEvalCommands registers the predicate evaluator.
func (m *Manager) setupEvalCommands() {
	// eval <value> <predicate>
	evalCmd := orpheus.NewCommand("eval", "Evaluate a numeric range predicate such as >0<=10").
		SetHandler(m.handleEval)
	m.app.AddCommand(evalCmd)
}

// setupAuditCommands registers the audit trail inspection commands.
func (m *Manager) setupAuditCommands() {
	auditCmd := orpheus.NewCommand("audit", "Parse audit trail inspection")

	// audit stats <file> [--output=text]
	statsCmd := auditCmd.Subcommand("stats", "Summarize a parse audit trail", m.handleAuditStats)
	statsCmd.AddFlag("output", "o", "text", "Output format (text|json|yaml)")

	m.app.AddCommand(auditCmd)
}
