// handlers_test.go: Tests for the individual CLI command handlers
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package cli

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
)

func TestHandleCheck_Warnings(t *testing.T) {
	fixture := NewCLITestFixture(t)
	decl := fixture.CreateTempDecl("tool.yaml", `command: tool
arguments:
  - dest: mode
    name: --mode
    accept: ["fast, slow"]
`)

	output, err := fixture.RunCLI("check", decl)
	if err != nil {
		t.Fatalf("Warnings alone must not fail: %v", err)
	}
	for _, want := range []string{"warning: mode: no help text", "has surrounding spaces", "valid with 2 warning(s)"} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected %q in:\n%s", want, output)
		}
	}

	if _, err := fixture.RunCLI("check", decl, "--strict"); err == nil {
		t.Error("Strict mode must fail on warnings")
	}
}

func TestHandleCheck_Errors(t *testing.T) {
	fixture := NewCLITestFixture(t)
	decl := fixture.CreateTempDecl("tool.toml", `command = "tool"

[[arguments]]
dest = "level"
name = "--level"
type = "int"
help = "Level"
accept = [">x"]
`)

	output, err := fixture.RunCLI("check", decl)
	if err == nil {
		t.Fatal("Expected an invalid predicate to fail validation")
	}
	if !strings.Contains(output, "error:") || !strings.Contains(output, "LogicalConflict") {
		t.Errorf("Expected the validation error in:\n%s", output)
	}
	if !strings.Contains(output, "Declaration is invalid: 1 error(s)") {
		t.Errorf("Expected the invalid summary in:\n%s", output)
	}
}

func TestHandleCheck_Usage(t *testing.T) {
	fixture := NewCLITestFixture(t)
	if _, err := fixture.RunCLI("check"); err == nil {
		t.Error("Expected a usage error without a declaration")
	}
}

func TestHandleParse_OutputFormats(t *testing.T) {
	fixture := NewCLITestFixture(t)
	decl := fixture.CreateTempDecl("ship.json", shipDeclJSON)

	output, err := fixture.RunCLI("parse", decl, "--output", "json", "--", "frigate", "3", "-s", "42")
	if err != nil {
		t.Fatalf("parse failed: %v\n%s", err, fixture.Stderr())
	}
	var results []argResult
	if err := json.Unmarshal([]byte(output), &results); err != nil {
		t.Fatalf("Invalid JSON output %q: %v", output, err)
	}
	if len(results) != 4 || results[2].Dest != "speed" || results[2].Values[0] != "42" {
		t.Errorf("Unexpected results: %+v", results)
	}

	output, err = fixture.RunCLI("parse", decl, "--output", "yaml", "--", "frigate", "3")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if !strings.Contains(output, "dest: quantity") {
		t.Errorf("Unexpected YAML output:\n%s", output)
	}

	if _, err := fixture.RunCLI("parse", decl, "--output", "xml", "--", "frigate", "3"); err == nil {
		t.Error("Expected an unknown output format to fail")
	}
}

func TestHandleParse_Line(t *testing.T) {
	fixture := NewCLITestFixture(t)
	decl := fixture.CreateTempDecl("ship.json", shipDeclJSON)

	output, err := fixture.RunCLI("parse", decl, "--line", "cruiser 7 --speed 1000.5")
	if err != nil {
		t.Fatalf("parse failed: %v\n%s", err, fixture.Stderr())
	}
	if !strings.Contains(output, "cruiser") || !strings.Contains(output, "7") {
		t.Errorf("Unexpected output:\n%s", output)
	}

	if _, err := fixture.RunCLI("parse", decl, "--line", "cruiser 7", "--", "frigate", "1"); err == nil {
		t.Error("Expected --line combined with tokens to fail")
	}
	if _, err := fixture.RunCLI("parse", decl, "--line", `cruiser "7`); err == nil {
		t.Error("Expected an unterminated quote to fail")
	}
}

func TestHandleRender_Layout(t *testing.T) {
	fixture := NewCLITestFixture(t)
	decl := fixture.CreateTempDecl("ship.json", shipDeclJSON)

	output, err := fixture.RunCLI("render", decl, "--width", "60", "--left", "20")
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	for _, line := range strings.Split(output, "\n") {
		if len(line) > 60 {
			t.Errorf("Line exceeds 60 columns: %q", line)
		}
	}
	if !strings.Contains(output, "Positional arguments:") {
		t.Errorf("Unexpected help text:\n%s", output)
	}

	if _, err := fixture.RunCLI("render", decl, "--width", "40", "--left", "40"); err == nil {
		t.Error("Expected an invalid layout to fail")
	}
	if !strings.Contains(fixture.Stderr(), "ARGPARSE_INVALID_LAYOUT") {
		t.Errorf("Expected the layout error code: %q", fixture.Stderr())
	}
}

func TestHandleEval(t *testing.T) {
	fixture := NewCLITestFixture(t)

	tests := []struct {
		args []string
		want string
	}{
		{[]string{"eval", "5", ">0<=10"}, "5 >0<=10: true"},
		{[]string{"eval", "11", ">0<=10"}, "11 >0<=10: false"},
		{[]string{"eval", "--", "-3", ">=-5<0"}, "-3 >=-5<0: true"},
	}
	for _, tt := range tests {
		output, err := fixture.RunCLI(tt.args...)
		if err != nil {
			t.Errorf("%v failed: %v", tt.args, err)
			continue
		}
		if strings.TrimSpace(output) != tt.want {
			t.Errorf("%v: expected %q, got %q", tt.args, tt.want, output)
		}
	}

	if _, err := fixture.RunCLI("eval", "abc", ">0"); err == nil {
		t.Error("Expected a non-numeric value to fail")
	}
	if !strings.Contains(fixture.Stderr(), "ARGPARSE_UNRECOGNIZED_NUMBER") {
		t.Errorf("Expected the number error code: %q", fixture.Stderr())
	}

	if _, err := fixture.RunCLI("eval", "1", "~5"); err == nil {
		t.Error("Expected a malformed predicate to fail")
	}
	if !strings.Contains(fixture.Stderr(), "ARGPARSE_PREDICATE_SYNTAX") {
		t.Errorf("Expected the predicate error code: %q", fixture.Stderr())
	}

	if _, err := fixture.RunCLI("eval", "1"); err == nil {
		t.Error("Expected a usage error")
	}
}

func TestHandleAuditStats(t *testing.T) {
	fixture := NewCLITestFixture(t)
	decl := fixture.CreateTempDecl("ship.json", shipDeclJSON)
	trail := filepath.Join(fixture.tempDir, "trail.db")

	if _, err := fixture.RunCLI("parse", decl, "--audit", trail, "--", "cruiser", "1"); err != nil {
		t.Fatalf("parse failed: %v\n%s", err, fixture.Stderr())
	}

	output, err := fixture.RunCLI("audit", "stats", trail, "--output", "json")
	if err != nil {
		t.Fatalf("audit stats failed: %v", err)
	}
	var stats struct {
		TotalEvents int64            `json:"total_events"`
		Outcomes    map[string]int64 `json:"events_by_outcome"`
		Backend     string           `json:"backend"`
	}
	if err := json.Unmarshal([]byte(output), &stats); err != nil {
		t.Fatalf("Invalid JSON output %q: %v", output, err)
	}
	if stats.TotalEvents != 1 || stats.Outcomes["ok"] != 1 || stats.Backend != "sqlite" {
		t.Errorf("Unexpected stats: %+v", stats)
	}

	if _, err := fixture.RunCLI("audit", "stats", filepath.Join(fixture.tempDir, "none.db")); err == nil {
		t.Error("Expected a missing trail to fail")
	}
}
