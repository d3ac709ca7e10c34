// env.go: Environment variable support
//
// Two concerns live here: the per-parser environment fallback that fills
// optional arguments not given on the command line, and loading the audit
// configuration from ARGPARSE_AUDIT_* variables for container deployments.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package argparse

import (
	"os"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// EnvKey returns the environment variable consulted for dest under prefix:
// "ship" and "droneBay" give SHIP_DRONE_BAY.
func EnvKey(prefix, dest string) string {
	var b strings.Builder
	b.WriteString(strings.ToUpper(prefix))
	b.WriteByte('_')
	prevLower := false
	for _, r := range dest {
		switch {
		case r == '-' || r == '.' || r == ' ':
			b.WriteByte('_')
			prevLower = false
		case unicode.IsUpper(r):
			if prevLower {
				b.WriteByte('_')
			}
			b.WriteRune(r)
			prevLower = false
		default:
			b.WriteRune(unicode.ToUpper(r))
			prevLower = unicode.IsLower(r) || unicode.IsDigit(r)
		}
	}
	return b.String()
}

// applyEnv fills optional arguments that the command line did not address.
// Command line values win over the environment, which wins over defaults.
func (p *ArgumentParser) applyEnv(addressed map[string]bool) error {
	for pair := p.args.Oldest(); pair != nil; pair = pair.Next() {
		dest, a := pair.Key, pair.Value
		if a.positional || addressed[dest] {
			continue
		}
		key := EnvKey(p.envPrefix, dest)
		raw, ok := os.LookupEnv(key)
		if !ok {
			continue
		}

		if a.action.binary() {
			on, err := ParseBool(strings.TrimSpace(raw))
			if err != nil {
				return annotate(err, dest, raw, -1)
			}
			if on {
				a.store()
			}
			continue
		}

		if err := a.SetVals(strings.Fields(raw)); err != nil {
			if ae, ok := err.(*ArgError); ok && ae.Detail != "" {
				ae.Detail += " (from " + key + ")"
			}
			return annotate(err, dest, raw, -1)
		}
	}
	return nil
}

// LoadAuditConfigFromEnv builds an AuditConfig from ARGPARSE_AUDIT_ENABLED,
// ARGPARSE_AUDIT_OUTPUT_FILE, ARGPARSE_AUDIT_BUFFER_SIZE and
// ARGPARSE_AUDIT_FLUSH_INTERVAL, starting from DefaultAuditConfig.
func LoadAuditConfigFromEnv() AuditConfig {
	cfg := DefaultAuditConfig()
	cfg.Enabled = GetEnvBoolWithDefault("ARGPARSE_AUDIT_ENABLED", cfg.Enabled)
	cfg.OutputFile = GetEnvWithDefault("ARGPARSE_AUDIT_OUTPUT_FILE", cfg.OutputFile)
	cfg.BufferSize = GetEnvIntWithDefault("ARGPARSE_AUDIT_BUFFER_SIZE", cfg.BufferSize)
	cfg.FlushInterval = GetEnvDurationWithDefault("ARGPARSE_AUDIT_FLUSH_INTERVAL", cfg.FlushInterval)
	return cfg
}

// GetEnvWithDefault returns the environment variable value or default
func GetEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetEnvDurationWithDefault returns environment variable as duration or default
func GetEnvDurationWithDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// GetEnvIntWithDefault returns environment variable as int or default
func GetEnvIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

// GetEnvBoolWithDefault returns environment variable as bool or default.
// The boolean vocabulary is the same one used for argument values.
func GetEnvBoolWithDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
