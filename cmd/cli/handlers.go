// Command handlers for the argparse CLI
//
// Each handler loads what it needs, performs one operation and writes its
// report to the manager's output. Failures are returned to the caller
// after a colored diagnostic has been printed.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/agilira/argparse"
	"github.com/agilira/go-errors"
	"github.com/agilira/orpheus/pkg/orpheus"
	"github.com/fatih/color"
)

// handleCheck loads a declaration, builds the parser and runs the
// detailed validation.
func (m *Manager) handleCheck(ctx *orpheus.Context) error {
	operands := m.operands(ctx)
	if len(operands) != 1 {
		return usageError("check <decl>")
	}
	path := operands[0]

	p, err := loadParser(path)
	if err != nil {
		m.diagnostic(err)
		return err
	}

	result := p.ValidateDetailed()
	for _, e := range result.Errors {
		_, _ = color.New(color.FgRed).Fprintf(m.out, "  error:   %s\n", e)
	}
	for _, w := range result.Warnings {
		_, _ = color.New(color.FgYellow).Fprintf(m.out, "  warning: %s\n", w)
	}

	switch {
	case !result.Valid:
		_, _ = color.New(color.FgRed, color.Bold).Fprintf(m.out, "%s: %s\n", path, result)
		return errors.New(argparse.ErrCodeInvalidDeclaration,
			fmt.Sprintf("declaration %s has %d error(s)", path, len(result.Errors)))
	case ctx.GetFlagBool("strict") && len(result.Warnings) > 0:
		_, _ = color.New(color.FgYellow, color.Bold).Fprintf(m.out, "%s: %s\n", path, result)
		return errors.New(argparse.ErrCodeInvalidDeclaration,
			fmt.Sprintf("declaration %s has %d warning(s) in strict mode", path, len(result.Warnings)))
	}

	_, _ = color.New(color.FgGreen).Fprintf(m.out, "%s: %s (%d arguments)\n", path, result, p.Len())
	return nil
}

// handleParse parses tokens against a declaration and prints the typed
// results in registration order.
func (m *Manager) handleParse(ctx *orpheus.Context) error {
	operands := m.operands(ctx)
	if len(operands) == 0 {
		return usageError("parse <decl> [tokens...] | parse <decl> -- <tokens...> | parse <decl> --line \"...\"")
	}
	path, tokens := operands[0], operands[1:]

	format, err := parseOutputFormat(ctx.GetFlagString("output"))
	if err != nil {
		return err
	}

	var opts []argparse.Option
	auditLogger := m.auditLogger
	if auditPath := ctx.GetFlagString("audit"); auditPath != "" {
		logger, err := openAuditLog(auditPath)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := logger.Close(); cerr != nil {
				m.diagnostic(cerr)
			}
		}()
		auditLogger = logger
	}
	if auditLogger != nil {
		opts = append(opts, argparse.WithAuditor(auditLogger))
	}

	p, err := loadParser(path, opts...)
	if err != nil {
		m.diagnostic(err)
		return err
	}

	if line := ctx.GetFlagString("line"); line != "" {
		if len(tokens) > 0 {
			return usageError("parse accepts either --line or tokens, not both")
		}
		err = p.ParseString(line)
	} else {
		err = p.Parse(tokens)
	}
	if err != nil {
		m.diagnostic(err)
		_, _ = fmt.Fprintf(m.errOut, "run 'argparse render %s' for usage\n", path)
		return err
	}

	return writeResults(m.out, collectResults(p), format)
}

// handleRender prints the help text of a declaration.
func (m *Manager) handleRender(ctx *orpheus.Context) error {
	operands := m.operands(ctx)
	if len(operands) != 1 {
		return usageError("render <decl> [--width=N] [--left=N]")
	}

	p, err := loadParser(operands[0])
	if err != nil {
		m.diagnostic(err)
		return err
	}

	width := ctx.GetFlagInt("width")
	if width <= 0 {
		width = argparse.TerminalWidth(m.out)
	}
	text, err := p.HelpString(width, ctx.GetFlagInt("left"))
	if err != nil {
		m.diagnostic(err)
		return err
	}
	_, err = fmt.Fprint(m.out, text)
	return err
}

// handleConvert re-encodes a declaration in the format implied by the
// output file extension.
func (m *Manager) handleConvert(ctx *orpheus.Context) error {
	operands := m.operands(ctx)
	if len(operands) != 2 {
		return usageError("convert <input> <output>")
	}
	input, output := operands[0], operands[1]

	// build first so that only loadable declarations are converted
	p, err := loadParser(input)
	if err != nil {
		m.diagnostic(err)
		return err
	}

	format := argparse.DetectDeclFormat(output)
	data, err := argparse.EncodeDeclaration(p.Declare(), format)
	if err != nil {
		m.diagnostic(err)
		return err
	}
	if err := os.WriteFile(output, data, 0600); err != nil {
		return errors.Wrap(err, argparse.ErrCodeInvalidDeclaration, "failed to write declaration").
			WithContext("path", output)
	}

	_, _ = color.New(color.FgGreen).Fprintf(m.out, "Converted %s -> %s (%s)\n", input, output, format)
	return nil
}

// handleEval evaluates a predicate against a numeric value.
func (m *Manager) handleEval(ctx *orpheus.Context) error {
	operands := m.operands(ctx)
	if len(operands) != 2 {
		return usageError("eval <value> <predicate> (use -- before negative values)")
	}

	raw, predicate := operands[0], operands[1]
	if !argparse.IsNumeric(raw) {
		e := &argparse.ArgError{Kind: argparse.KindUnrecognizedNumber, Token: raw, Index: -1,
			Detail: "value is not a number"}
		m.diagnostic(e)
		return e
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return errors.Wrap(err, argparse.ErrCodeUnrecognizedNumber, "value out of range")
	}

	ok, err := argparse.Evaluate(value, predicate)
	if err != nil {
		m.diagnostic(err)
		return err
	}
	if ok {
		_, _ = color.New(color.FgGreen).Fprintf(m.out, "%s %s: true\n", raw, predicate)
	} else {
		_, _ = color.New(color.FgRed).Fprintf(m.out, "%s %s: false\n", raw, predicate)
	}
	return nil
}

// handleAuditStats summarizes an existing audit trail.
func (m *Manager) handleAuditStats(ctx *orpheus.Context) error {
	operands := m.operands(ctx)
	if len(operands) != 1 {
		return usageError("audit stats <file>")
	}
	path := operands[0]

	format, err := parseOutputFormat(ctx.GetFlagString("output"))
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err != nil {
		return errors.Wrap(err, argparse.ErrCodeAuditFailure, "audit trail not found").
			WithContext("path", path)
	}

	logger, err := openAuditLog(path)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Close() }()

	stats, err := logger.Stats()
	if err != nil {
		return errors.Wrap(err, argparse.ErrCodeAuditFailure, "failed to read audit statistics")
	}
	return writeStats(m.out, stats, format)
}
