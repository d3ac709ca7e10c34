// helpers_test.go: Shared fixtures for the argparse test suite
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package argparse

import (
	"testing"
)

// newShipParser builds the parser used throughout the tests:
//
//	ship <class> <quantity> [-s speed] [-c] [-d] [--coords x y z]
func newShipParser(t *testing.T, opts ...Option) *ArgumentParser {
	t.Helper()

	p := New("ship", "Create a new ship", opts...)

	class, err := p.AddArgument("class", "class", "Ship class")
	if err != nil {
		t.Fatalf("Failed to add class: %v", err)
	}
	class.SetAcceptSet("frigate,destroyer,cruiser")

	qty, err := p.AddArgument("quantity", "quantity", "How many ships to build", WithType(Int))
	if err != nil {
		t.Fatalf("Failed to add quantity: %v", err)
	}
	qty.SetAcceptSet(">0")

	speed, err := p.AddArgument("speed", "-s", "Cruise speed in m/s",
		WithType(Float), WithAltSwitches("--speed"))
	if err != nil {
		t.Fatalf("Failed to add speed: %v", err)
	}
	speed.SetAcceptSet(">0<299792458")
	if err := speed.SetDefaultFloat(1000); err != nil {
		t.Fatalf("Failed to set speed default: %v", err)
	}

	if _, err := p.AddArgument("cloak", "-c", "Install a cloaking device",
		WithAction(ActionStoreTrue)); err != nil {
		t.Fatalf("Failed to add cloak: %v", err)
	}
	if _, err := p.AddArgument("drones", "-d", "Carry a drone bay",
		WithAction(ActionStoreTrue)); err != nil {
		t.Fatalf("Failed to add drones: %v", err)
	}
	if _, err := p.AddArgument("coords", "--coords", "Launch coordinates",
		WithType(Float), WithNArgs(3)); err != nil {
		t.Fatalf("Failed to add coords: %v", err)
	}
	return p
}

// expectKind fails the test unless err is an *ArgError of the given kind
// and returns it.
func expectKind(t *testing.T, err error, kind ErrorKind) *ArgError {
	t.Helper()

	if err == nil {
		t.Fatalf("Expected %s error, got nil", kind)
	}
	ae, ok := err.(*ArgError)
	if !ok {
		t.Fatalf("Expected *ArgError, got %T: %v", err, err)
	}
	if ae.Kind != kind {
		t.Fatalf("Expected %s, got %s (%v)", kind, ae.Kind, err)
	}
	return ae
}
