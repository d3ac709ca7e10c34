// argparse: command-line front end for parser declarations
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"fmt"
	"os"

	"github.com/agilira/argparse"
	"github.com/agilira/argparse/cmd/cli"
	"github.com/fatih/color"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	manager := cli.NewManager()

	if argparse.GetEnvBoolWithDefault("ARGPARSE_AUDIT_ENABLED", false) {
		auditLogger, err := argparse.NewAuditLogger(argparse.LoadAuditConfigFromEnv())
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s %v\n", color.YellowString("Warning: audit disabled:"), err)
		} else {
			defer func() { _ = auditLogger.Close() }()
			manager.WithAudit(auditLogger)
		}
	}

	if err := manager.Run(args); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", color.RedString("Error:"), err)
		return 1
	}
	return 0
}
