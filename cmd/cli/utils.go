// Utility functions for the argparse CLI
//
// This file provides operand collection, declaration loading, audit log
// opening and the text, JSON and YAML renderers shared by the handlers.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/agilira/argparse"
	"github.com/agilira/go-errors"
	"github.com/agilira/orpheus/pkg/orpheus"
	"github.com/fatih/color"
	"go.yaml.in/yaml/v3"
)

// outputFormat selects how results are printed.
type outputFormat int

const (
	outputText outputFormat = iota
	outputJSON
	outputYAML
)

func parseOutputFormat(s string) (outputFormat, error) {
	switch strings.ToLower(s) {
	case "", "text":
		return outputText, nil
	case "json":
		return outputJSON, nil
	case "yaml", "yml":
		return outputYAML, nil
	}
	return outputText, errors.New(argparse.ErrCodeInvalidDeclaration,
		fmt.Sprintf("unknown output format '%s' (text|json|yaml)", s))
}

// operands returns the positional arguments of the current command
// followed by the tokens given after "--".
func (m *Manager) operands(ctx *orpheus.Context) []string {
	var out []string
	for i := 0; ; i++ {
		arg := ctx.GetArg(i)
		if arg == "" {
			break
		}
		out = append(out, arg)
	}
	return append(out, m.passthrough...)
}

func usageError(usage string) error {
	return errors.New(argparse.ErrCodeInvalidDeclaration, "usage: argparse "+usage)
}

// diagnostic prints err in red. Structured errors also get their code.
func (m *Manager) diagnostic(err error) {
	red := color.New(color.FgRed, color.Bold)
	if ec, ok := err.(errors.ErrorCoder); ok {
		_, _ = red.Fprintf(m.errOut, "error [%s]: ", ec.ErrorCode())
	} else {
		_, _ = red.Fprint(m.errOut, "error: ")
	}
	_, _ = fmt.Fprintln(m.errOut, err.Error())
}

// loadParser loads a declaration file and builds its parser.
func loadParser(path string, opts ...argparse.Option) (*argparse.ArgumentParser, error) {
	decl, err := argparse.LoadDeclaration(path)
	if err != nil {
		return nil, err
	}
	return decl.Build(opts...)
}

// openAuditLog opens an audit trail without a background flusher; events
// are written on Close.
func openAuditLog(path string) (*argparse.AuditLogger, error) {
	config := argparse.DefaultAuditConfig()
	config.OutputFile = path
	config.FlushInterval = 0
	return argparse.NewAuditLogger(config)
}

// argResult is the printable form of one parsed argument.
type argResult struct {
	Dest   string   `json:"dest" yaml:"dest"`
	Type   string   `json:"type" yaml:"type"`
	Set    bool     `json:"set" yaml:"set"`
	Values []string `json:"values,omitempty" yaml:"values,omitempty"`
}

func collectResults(p *argparse.ArgumentParser) []argResult {
	results := make([]argResult, 0, p.Len())
	p.VisitAll(func(dest string, a *argparse.Argument) {
		r := argResult{Dest: dest, Type: a.Type().String(), Set: a.IsSet()}
		if r.Set {
			r.Values, _ = a.ValueStrings()
		}
		results = append(results, r)
	})
	return results
}

func writeResults(w io.Writer, results []argResult, format outputFormat) error {
	switch format {
	case outputJSON, outputYAML:
		return writeStructured(w, results, format)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, r := range results {
		value := "<unset>"
		if r.Set {
			value = strings.Join(r.Values, " ")
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Dest, r.Type, value)
	}
	return tw.Flush()
}

func writeStats(w io.Writer, stats *argparse.AuditStats, format outputFormat) error {
	switch format {
	case outputJSON, outputYAML:
		return writeStructured(w, stats, format)
	}

	_, _ = fmt.Fprintf(w, "Backend:       %s\n", stats.Backend)
	_, _ = fmt.Fprintf(w, "Total events:  %d\n", stats.TotalEvents)
	_, _ = fmt.Fprintf(w, "Storage size:  %d bytes\n", stats.StorageSize)
	if stats.OldestEvent != nil {
		_, _ = fmt.Fprintf(w, "Oldest event:  %s\n", stats.OldestEvent.Format(time.RFC3339))
	}
	if stats.NewestEvent != nil {
		_, _ = fmt.Fprintf(w, "Newest event:  %s\n", stats.NewestEvent.Format(time.RFC3339))
	}
	writeCounts(w, "Outcomes", stats.EventsByOutcome)
	writeCounts(w, "Error codes", stats.EventsByCode)
	return nil
}

func writeCounts(w io.Writer, title string, counts map[string]int64) {
	if len(counts) == 0 {
		return
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	_, _ = fmt.Fprintf(w, "%s:\n", title)
	for _, k := range keys {
		_, _ = fmt.Fprintf(w, "  %-36s %d\n", k, counts[k])
	}
}

func writeStructured(w io.Writer, v any, format outputFormat) error {
	if format == outputYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
