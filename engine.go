// engine.go: Token scanning and resolution
//
// Parse walks the token list once from left to right. Each switch token is
// resolved to destination keys without touching any argument; values are
// committed only once the whole token is known to be valid. The first
// error aborts the parse.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package argparse

import (
	"os"

	"github.com/ef-ds/deque"
	"github.com/google/shlex"
)

// tokenStream hands out the remaining tokens together with their index in
// the original list.
type tokenStream struct {
	queue *deque.Deque
	index int
}

func newTokenStream(tokens []string) *tokenStream {
	q := deque.New()
	for _, t := range tokens {
		q.PushBack(t)
	}
	return &tokenStream{queue: q}
}

func (s *tokenStream) next() (string, int, bool) {
	v, ok := s.queue.PopFront()
	if !ok {
		return "", s.index, false
	}
	i := s.index
	s.index++
	return v.(string), i, true
}

func (s *tokenStream) remaining() int { return s.queue.Len() }

// take removes the next n tokens. Callers check remaining first.
func (s *tokenStream) take(n int) []string {
	out := make([]string, 0, n)
	for len(out) < n {
		tok, _, ok := s.next()
		if !ok {
			break
		}
		out = append(out, tok)
	}
	return out
}

// isSwitchToken reports whether tok is a candidate switch. A lone "-" is
// a positional value.
func isSwitchToken(tok string) bool {
	return len(tok) > 1 && tok[0] == '-'
}

// parseState is the per-call scanner state.
type parseState struct {
	p         *ArgumentParser
	stream    *tokenStream
	filled    int
	addressed map[string]bool
}

// Parse matches tokens (program name excluded) against the registered
// arguments. Every argument is first reset to its initial value, so a
// second Parse fully replaces the results of the first.
func (p *ArgumentParser) Parse(tokens []string) (err error) {
	defer func() { p.finish(tokens, err) }()

	p.VisitAll(func(_ string, a *Argument) { a.reset() })

	st := &parseState{
		p:         p,
		stream:    newTokenStream(tokens),
		addressed: make(map[string]bool, p.args.Len()),
	}
	for {
		tok, idx, ok := st.stream.next()
		if !ok {
			break
		}
		if isSwitchToken(tok) {
			err = st.switchToken(tok, idx)
		} else {
			err = st.positional(tok, idx)
		}
		if err != nil {
			return err
		}
	}

	if p.envPrefix != "" {
		if err = p.applyEnv(st.addressed); err != nil {
			return err
		}
	}

	if st.filled < len(p.positionals) {
		e := newError(KindMissingPositional, "not enough positional arguments")
		e.Dest = p.positionals[st.filled]
		e.Expected, e.Got = len(p.positionals), st.filled
		return e
	}
	return nil
}

// ParseArgs parses the process arguments without the program name.
func (p *ArgumentParser) ParseArgs() error {
	return p.Parse(os.Args[1:])
}

// ParseString splits line with shell quoting rules and parses the result.
func (p *ArgumentParser) ParseString(line string) error {
	tokens, err := shlex.Split(line)
	if err != nil {
		e := newError(KindInvalidTokenLine, "cannot split argument line")
		e.Token = line
		e.Err = err
		p.finish(nil, e)
		return e
	}
	return p.Parse(tokens)
}

func (p *ArgumentParser) finish(tokens []string, err error) {
	if err != nil && p.errorHandler != nil {
		p.errorHandler(err, tokens)
	}
	if p.auditor != nil {
		p.auditor.RecordParse(newParseEvent(p.command, tokens, err))
	}
}

// resolve maps a switch token to the destination keys it addresses
// without mutating anything.
func (st *parseState) resolve(tok string, idx int) ([]string, error) {
	if dest, ok := st.p.switches.lookup(tok); ok {
		return []string{dest}, nil
	}

	if st.p.combine && switchDashes(tok) == 1 && len(tok) > 2 {
		var dests []string
		for _, c := range tok[1:] {
			dest, ok := st.p.switches.lookup("-" + string(c))
			if !ok {
				return nil, unrecognizedSwitch(tok, idx, "combined switch -"+string(c)+" is not registered")
			}
			a, _ := st.p.args.Get(dest)
			if !a.action.binary() {
				return nil, unrecognizedSwitch(tok, idx, "combined switch -"+string(c)+" takes values")
			}
			dests = append(dests, dest)
		}
		return dests, nil
	}

	return nil, unrecognizedSwitch(tok, idx, "")
}

func unrecognizedSwitch(tok string, idx int, detail string) error {
	if detail == "" {
		detail = "no argument uses this switch"
	}
	e := newError(KindUnrecognizedSwitch, detail)
	e.Token = tok
	e.Index = idx
	return e
}

func (st *parseState) switchToken(tok string, idx int) error {
	dests, err := st.resolve(tok, idx)
	if err != nil {
		return err
	}

	seen := make(map[string]bool, len(dests))
	for _, dest := range dests {
		if st.addressed[dest] || seen[dest] {
			e := newError(KindRepeatedArgument, "argument given more than once")
			e.Dest = dest
			e.Token = tok
			e.Index = idx
			return e
		}
		seen[dest] = true
	}

	if len(dests) == 1 {
		a, _ := st.p.args.Get(dests[0])
		if !a.action.binary() {
			return st.consume(dests[0], a, tok, idx)
		}
	}
	for _, dest := range dests {
		a, _ := st.p.args.Get(dest)
		a.store()
		st.addressed[dest] = true
	}
	return nil
}

// consume feeds the next nargs tokens to a value-taking switch.
func (st *parseState) consume(dest string, a *Argument, tok string, idx int) error {
	if st.stream.remaining() < a.nargs {
		e := newError(KindInsufficientArguments, "switch needs more values")
		e.Dest = dest
		e.Name = a.name
		e.Token = tok
		e.Index = idx
		e.Expected, e.Got = a.nargs, st.stream.remaining()
		return e
	}
	st.addressed[dest] = true
	values := st.stream.take(a.nargs)
	if pos, err := a.setVals(values); err != nil {
		at := idx
		if pos >= 0 {
			at = idx + 1 + pos
		}
		return annotate(err, dest, "", at)
	}
	return nil
}

func (st *parseState) positional(tok string, idx int) error {
	if st.filled >= len(st.p.positionals) {
		e := newError(KindTooManyPositional, "unexpected positional argument")
		e.Token = tok
		e.Index = idx
		e.Expected, e.Got = len(st.p.positionals), st.filled+1
		return e
	}
	dest := st.p.positionals[st.filled]
	a, _ := st.p.args.Get(dest)
	if err := a.SetVal(tok); err != nil {
		return annotate(err, dest, tok, idx)
	}
	st.filled++
	st.addressed[dest] = true
	return nil
}
