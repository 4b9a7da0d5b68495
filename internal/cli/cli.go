// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - Argument parsing and command dispatch for the aranea client.
package cli

import (
	"fmt"
	"runtime"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdPlain
	CmdSignup
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	Command Command

	// Global flags
	Plain     bool   // force the line-oriented REPL
	User      string // skip the username prompt
	Backend   string // override the configured backend URL
	NoHistory bool   // disable the local history cache for this run

	// Raw args (remaining after flag parsing)
	Raw []string
}

const usageText = `aranea - terminal client for the Aranea pentest assistant

Aranea streams assistant responses over a WebSocket and renders them
in a terminal transcript, with chat threads managed through the
backend REST API.

Usage:
  aranea                     Start TUI (default)
  aranea plain               Line-oriented REPL (no TUI)
  aranea signup              Create an account
  aranea version, -v         Show version
  aranea help, -h            Show this help

Flags:
  --plain                 Use the line-oriented REPL
  --user NAME             Log in as NAME (prompts for password only)
  --backend URL           Backend base URL (overrides config)
  --no-history            Disable the local history cache

Environment:
  ARANEA_BACKEND_URL      Backend base URL
  ARANEA_PLAIN            "1" or "true" selects the REPL
  ARANEA_TYPING_INTERVAL_MS   Reveal cadence in milliseconds

Configuration:
  ~/.aranea/config.toml   (config.json accepted as fallback)
`

// Parse parses command-line arguments into Args.
func Parse(argv []string) (Args, error) {
	args := Args{Command: CmdTUI}

	i := 0
	for i < len(argv) {
		arg := argv[i]
		switch arg {
		case "--plain":
			args.Plain = true
		case "--no-history":
			args.NoHistory = true
		case "--user", "-u":
			i++
			if i >= len(argv) {
				return args, fmt.Errorf("%s requires a value", arg)
			}
			args.User = argv[i]
		case "--backend":
			i++
			if i >= len(argv) {
				return args, fmt.Errorf("%s requires a value", arg)
			}
			args.Backend = argv[i]
		case "plain", "repl":
			args.Command = CmdPlain
		case "signup", "register":
			args.Command = CmdSignup
		case "version", "--version", "-v":
			args.Command = CmdVersion
		case "help", "--help", "-h":
			args.Command = CmdHelp
		default:
			if len(arg) > 0 && arg[0] == '-' {
				return args, fmt.Errorf("unknown flag: %s", arg)
			}
			args.Raw = append(args.Raw, arg)
		}
		i++
	}

	if args.Plain && args.Command == CmdTUI {
		args.Command = CmdPlain
	}
	return args, nil
}

// PrintUsage writes the usage text to stdout.
func PrintUsage() {
	fmt.Print(usageText)
}

// PrintVersion writes version information to stdout.
func PrintVersion() {
	fmt.Printf("aranea %s (%s, built %s, %s/%s)\n",
		Version, GitCommit, BuildDate, runtime.GOOS, runtime.GOARCH)
}
