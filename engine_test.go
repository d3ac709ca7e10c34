// engine_test.go: Tests for token scanning and resolution
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package argparse

import (
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParse_Ship(t *testing.T) {
	p := newShipParser(t)

	if err := p.Parse([]string{"cruiser", "3", "-s", "3000", "-c"}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	class, _ := p.GetString("class")
	qty, _ := p.GetInt("quantity")
	speed, _ := p.GetFloat("speed")
	cloak, _ := p.GetBool("cloak")
	drones, _ := p.GetBool("drones")

	if class != "cruiser" || qty != 3 || speed != 3000 || !cloak || drones {
		t.Errorf("Unexpected results: class=%s qty=%d speed=%v cloak=%v drones=%v",
			class, qty, speed, cloak, drones)
	}

	coords, _ := p.Arg("coords")
	if coords.IsSet() {
		t.Error("coords has no default and was not given")
	}
}

func TestParse_SwitchesBeforePositionals(t *testing.T) {
	p := newShipParser(t)

	if err := p.Parse([]string{"--speed", "12.5", "-d", "frigate", "1"}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if v, _ := p.GetFloat("speed"); v != 12.5 {
		t.Errorf("Expected 12.5, got %v", v)
	}
	if v, _ := p.GetBool("drones"); !v {
		t.Error("Expected drones true")
	}
	if v, _ := p.GetString("class"); v != "frigate" {
		t.Errorf("Expected frigate, got %q", v)
	}
}

func TestParse_SpeedOutsideAcceptance(t *testing.T) {
	p := newShipParser(t)

	err := p.Parse([]string{"cruiser", "3", "-s", "400000000"})
	ae := expectKind(t, err, KindOutsideAcceptanceSet)
	if ae.Dest != "speed" {
		t.Errorf("Expected dest speed, got %q", ae.Dest)
	}
	if ae.Index != 3 {
		t.Errorf("Expected index of the rejected value (3), got %d", ae.Index)
	}
	if ae.Predicate != ">0<299792458" {
		t.Errorf("Expected predicate in error, got %q", ae.Predicate)
	}
}

func TestParse_CombinedSwitches(t *testing.T) {
	p := newShipParser(t, WithCombineSwitches(true))

	if err := p.Parse([]string{"frigate", "1", "-cd"}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	cloak, _ := p.GetBool("cloak")
	drones, _ := p.GetBool("drones")
	if !cloak || !drones {
		t.Errorf("Expected both switches set, got cloak=%v drones=%v", cloak, drones)
	}
}

func TestParse_CombinedSwitchesAllOrNothing(t *testing.T) {
	p := newShipParser(t, WithCombineSwitches(true))

	tests := []struct {
		name  string
		token string
	}{
		{"unknown member", "-cx"},
		{"value-taking member", "-cs"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := p.Parse([]string{"frigate", "1", tt.token})
			ae := expectKind(t, err, KindUnrecognizedSwitch)
			if ae.Token != tt.token || ae.Index != 2 {
				t.Errorf("Expected token %s at 2, got %q at %d", tt.token, ae.Token, ae.Index)
			}
			if cloak, _ := p.GetBool("cloak"); cloak {
				t.Error("No member of a rejected combined token may be applied")
			}
		})
	}
}

func TestParse_CombinedSwitchesRequireMode(t *testing.T) {
	p := newShipParser(t)
	err := p.Parse([]string{"frigate", "1", "-cd"})
	expectKind(t, err, KindUnrecognizedSwitch)
}

func TestParse_RepeatedArgument(t *testing.T) {
	tests := []struct {
		name    string
		combine bool
		tokens  []string
		dest    string
	}{
		{"same switch", false, []string{"frigate", "1", "-c", "-c"}, "cloak"},
		{"alternate spelling", false, []string{"frigate", "1", "-s", "1", "--speed", "2"}, "speed"},
		{"inside combined token", true, []string{"frigate", "1", "-cc"}, "cloak"},
		{"combined after single", true, []string{"frigate", "1", "-d", "-cd"}, "drones"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newShipParser(t, WithCombineSwitches(tt.combine))
			ae := expectKind(t, p.Parse(tt.tokens), KindRepeatedArgument)
			if ae.Dest != tt.dest {
				t.Errorf("Expected dest %s, got %q", tt.dest, ae.Dest)
			}
		})
	}
}

func TestParse_PositionalCount(t *testing.T) {
	p := newShipParser(t)

	ae := expectKind(t, p.Parse([]string{"frigate"}), KindMissingPositional)
	if ae.Dest != "quantity" || ae.Expected != 2 || ae.Got != 1 {
		t.Errorf("Expected quantity 2/1, got %s %d/%d", ae.Dest, ae.Expected, ae.Got)
	}

	ae = expectKind(t, p.Parse([]string{"frigate", "1", "extra"}), KindTooManyPositional)
	if ae.Token != "extra" || ae.Index != 2 {
		t.Errorf("Expected extra at 2, got %q at %d", ae.Token, ae.Index)
	}
}

func TestParse_InsufficientArguments(t *testing.T) {
	p := newShipParser(t)

	ae := expectKind(t, p.Parse([]string{"frigate", "1", "-s"}), KindInsufficientArguments)
	if ae.Dest != "speed" || ae.Expected != 1 || ae.Got != 0 {
		t.Errorf("Expected speed 1/0, got %s %d/%d", ae.Dest, ae.Expected, ae.Got)
	}

	ae = expectKind(t, p.Parse([]string{"frigate", "1", "--coords", "1", "2"}), KindInsufficientArguments)
	if ae.Expected != 3 || ae.Got != 2 {
		t.Errorf("Expected 3/2, got %d/%d", ae.Expected, ae.Got)
	}
}

// Value-taking switches consume the next tokens even when they look like
// switches.
func TestParse_ValuesAreNotInterpreted(t *testing.T) {
	p := newShipParser(t)

	ae := expectKind(t, p.Parse([]string{"frigate", "1", "-s", "-c"}), KindUnrecognizedNumber)
	if ae.Dest != "speed" || ae.Token != "-c" {
		t.Errorf("Expected speed/-c, got %q/%q", ae.Dest, ae.Token)
	}

	if err := p.Parse([]string{"frigate", "1", "--coords", "-1", "-2.5", "3"}); err != nil {
		t.Fatalf("Negative values must be consumed: %v", err)
	}
	coords, _ := p.GetFloats("coords")
	if diff := cmp.Diff([]float64{-1, -2.5, 3}, coords); diff != "" {
		t.Errorf("coords mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_ValueErrors(t *testing.T) {
	p := newShipParser(t)

	ae := expectKind(t, p.Parse([]string{"frigate", "three"}), KindUnrecognizedNumber)
	if ae.Dest != "quantity" || ae.Token != "three" || ae.Index != 1 {
		t.Errorf("Expected quantity/three/1, got %q/%q/%d", ae.Dest, ae.Token, ae.Index)
	}

	ae = expectKind(t, p.Parse([]string{"yacht", "1"}), KindOutsideAcceptanceSet)
	if ae.Dest != "class" {
		t.Errorf("Expected dest class, got %q", ae.Dest)
	}

	// a lone dash is a positional value
	expectKind(t, p.Parse([]string{"-", "1"}), KindOutsideAcceptanceSet)

	ae = expectKind(t, p.Parse([]string{"frigate", "1", "--warp"}), KindUnrecognizedSwitch)
	if ae.Token != "--warp" || ae.Index != 2 {
		t.Errorf("Expected --warp at 2, got %q at %d", ae.Token, ae.Index)
	}
}

func TestParse_ResetsBetweenCalls(t *testing.T) {
	p := newShipParser(t)

	if err := p.Parse([]string{"cruiser", "3", "-s", "3000", "-c", "--coords", "1", "2", "3"}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if err := p.Parse([]string{"frigate", "1"}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if v, _ := p.GetFloat("speed"); v != 1000 {
		t.Errorf("Expected speed back at its default, got %v", v)
	}
	if v, _ := p.GetBool("cloak"); v {
		t.Error("Expected cloak back at false")
	}
	coords, _ := p.Arg("coords")
	if coords.IsSet() {
		t.Error("Expected coords unset again")
	}
}

func TestParse_StoreFalse(t *testing.T) {
	p := New("tool", "")
	if _, err := p.AddArgument("color", "--no-color", "", WithAction(ActionStoreFalse)); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if err := p.Parse(nil); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if v, _ := p.GetBool("color"); !v {
		t.Error("Expected color true without the switch")
	}

	if err := p.Parse([]string{"--no-color"}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if v, _ := p.GetBool("color"); v {
		t.Error("Expected color false with the switch")
	}
}

func TestParse_BoolValueSwitch(t *testing.T) {
	p := New("tool", "")
	if _, err := p.AddArgument("debug", "--debug", "", WithType(Bool)); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if err := p.Parse([]string{"--debug", "F"}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if v, err := p.GetBool("debug"); err != nil || v {
		t.Errorf("Expected false, got %v (%v)", v, err)
	}

	expectKind(t, p.Parse([]string{"--debug", "maybe"}), KindUnrecognizedBoolean)
}

func TestParseString(t *testing.T) {
	p := newShipParser(t)

	if err := p.ParseString(`cruiser 2 --speed "1500" -c`); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if v, _ := p.GetFloat("speed"); v != 1500 {
		t.Errorf("Expected 1500, got %v", v)
	}

	var handled error
	p = newShipParser(t, WithErrorHandler(func(err error, _ []string) { handled = err }))
	err := p.ParseString(`cruiser "2`)
	ae := expectKind(t, err, KindInvalidTokenLine)
	if ae.Err == nil {
		t.Error("Expected the split failure as cause")
	}
	if string(ae.ErrorCode()) != ErrCodeInvalidTokenLine {
		t.Errorf("Expected %s, got %s", ErrCodeInvalidTokenLine, ae.ErrorCode())
	}
	if handled != err {
		t.Errorf("Expected the error handler to receive %v, got %v", err, handled)
	}
}

func TestParse_ValueErrorIndex(t *testing.T) {
	p := newShipParser(t)

	tests := []struct {
		name  string
		args  []string
		kind  ErrorKind
		index int
	}{
		{"rejected scalar", []string{"frigate", "1", "--speed", "0"}, KindOutsideAcceptanceSet, 3},
		{"unparsable member", []string{"frigate", "1", "--coords", "1", "y", "3"}, KindUnrecognizedNumber, 4},
		{"last member", []string{"--coords", "1", "2", "z", "frigate", "1"}, KindUnrecognizedNumber, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ae := expectKind(t, p.Parse(tt.args), tt.kind)
			if ae.Index != tt.index {
				t.Errorf("Expected index %d, got %d (%v)", tt.index, ae.Index, ae)
			}
			if ae.Token != tt.args[tt.index] {
				t.Errorf("Expected token %q, got %q", tt.args[tt.index], ae.Token)
			}
		})
	}
}

func TestParseArgs(t *testing.T) {
	saved := os.Args
	defer func() { os.Args = saved }()
	os.Args = []string{"ship", "destroyer", "4", "-d"}

	p := newShipParser(t)
	if err := p.ParseArgs(); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if v, _ := p.GetInt("quantity"); v != 4 {
		t.Errorf("Expected 4, got %d", v)
	}
}

func TestParse_ErrorHandler(t *testing.T) {
	var calls int
	var gotErr error
	var gotTokens []string

	p := newShipParser(t, WithErrorHandler(func(err error, tokens []string) {
		calls++
		gotErr = err
		gotTokens = tokens
	}))

	if err := p.Parse([]string{"frigate", "1"}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if calls != 0 {
		t.Errorf("Handler must not run on success, ran %d times", calls)
	}

	tokens := []string{"frigate", "1", "-x"}
	err := p.Parse(tokens)
	if calls != 1 {
		t.Fatalf("Expected one handler call, got %d", calls)
	}
	if gotErr != err {
		t.Errorf("Handler received %v, Parse returned %v", gotErr, err)
	}
	if diff := cmp.Diff(tokens, gotTokens); diff != "" {
		t.Errorf("Tokens mismatch (-want +got):\n%s", diff)
	}
}

func TestTokenStream(t *testing.T) {
	s := newTokenStream([]string{"a", "b", "c"})
	if s.remaining() != 3 {
		t.Fatalf("Expected 3 remaining, got %d", s.remaining())
	}

	tok, idx, ok := s.next()
	if !ok || tok != "a" || idx != 0 {
		t.Errorf("Expected a at 0, got %q at %d", tok, idx)
	}
	if diff := cmp.Diff([]string{"b", "c"}, s.take(2)); diff != "" {
		t.Errorf("take mismatch (-want +got):\n%s", diff)
	}
	if _, _, ok := s.next(); ok {
		t.Error("Expected exhausted stream")
	}
}
