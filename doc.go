// Package argparse declares typed command-line arguments, validates their
// values against acceptance ranges and parses token lists into queryable,
// typed results.
//
// # Overview
//
// A parser is built by registering arguments under destination keys. Each
// argument has a primary name, a value type (Bool, Int, Float or String),
// a cardinality (nargs) and an action. Names starting with "-" or "--"
// declare optional arguments, anything else declares a positional one.
//
//	p := argparse.New("ship", "Create a new ship")
//
//	class, _ := p.AddArgument("class", "class", "Ship class")
//	class.SetAcceptSet("frigate,destroyer,cruiser")
//
//	qty, _ := p.AddArgument("quantity", "quantity", "How many",
//		argparse.WithType(argparse.Int))
//	qty.SetAcceptSet(">0")
//
//	speed, _ := p.AddArgument("speed", "-s", "Cruise speed",
//		argparse.WithType(argparse.Float),
//		argparse.WithAltSwitches("--speed"))
//	_ = speed.SetDefaultFloat(1000)
//	speed.SetAcceptSet(">0<299792458")
//
//	_, _ = p.AddArgument("cloak", "-c", "Cloaking device",
//		argparse.WithAction(argparse.ActionStoreTrue))
//
//	if err := p.Parse(os.Args[1:]); err != nil {
//		_ = p.WriteHelp(os.Stderr)
//		log.Fatal(err)
//	}
//	v, _ := p.GetFloat("speed")
//
// # Acceptance sets
//
// Each value position may carry a predicate. Comma-separated clauses are
// alternatives. For strings and booleans a clause is a literal; for numbers
// a clause is either a literal (equality) or a run of comparisons that must
// all hold, such as ">10<=20". Operators are ==, !=, <=, >=, < and >.
//
// # Parsing
//
// Parse scans tokens once from left to right. Switches are matched by
// primary name or alternate spelling; with combine-mode enabled a token
// like -cd sets the binary switches -c and -d together, or fails as a whole.
// Value-taking switches consume the next nargs tokens. Other tokens fill
// positional slots in registration order. An argument can be addressed only
// once per parse. The first error aborts the parse and is returned as an
// *ArgError; the parser never prints or exits.
//
// # Errors
//
// Every error is an *ArgError with a closed ErrorKind, stable go-errors
// code (ARGPARSE_*) and context fields (Dest, Token, Index, Expected, Got).
// Use KindOf, IsKind or errors.Is with the Err* sentinels to branch.
//
// # Collaborators
//
// Around the core the package offers help rendering (HelpString,
// WriteHelp), a reflection-free result binder (Bind), parser declarations
// in JSON, YAML, TOML and HCL (LoadDeclaration), an environment fallback
// for optional arguments (WithEnvPrefix), a SQLite or JSONL audit trail of
// parse calls (NewAuditLogger, WithAuditor) and concurrent parsing of
// independent token streams (ParseConcurrently).
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0
package argparse
