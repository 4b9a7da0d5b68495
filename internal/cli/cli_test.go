// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"testing"
)

func TestParse_Defaults(t *testing.T) {
	args, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if args.Command != CmdTUI {
		t.Errorf("default command = %v, want CmdTUI", args.Command)
	}
	if args.Plain || args.NoHistory {
		t.Error("flags should default to false")
	}
}

func TestParse_Commands(t *testing.T) {
	tests := []struct {
		name string
		argv []string
		want Command
	}{
		{"plain", []string{"plain"}, CmdPlain},
		{"repl alias", []string{"repl"}, CmdPlain},
		{"signup", []string{"signup"}, CmdSignup},
		{"register alias", []string{"register"}, CmdSignup},
		{"version", []string{"version"}, CmdVersion},
		{"version flag", []string{"-v"}, CmdVersion},
		{"help", []string{"help"}, CmdHelp},
		{"help flag", []string{"--help"}, CmdHelp},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args, err := Parse(tt.argv)
			if err != nil {
				t.Fatalf("Parse(%v): %v", tt.argv, err)
			}
			if args.Command != tt.want {
				t.Errorf("command = %v, want %v", args.Command, tt.want)
			}
		})
	}
}

func TestParse_PlainFlagSelectsRepl(t *testing.T) {
	args, err := Parse([]string{"--plain"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if args.Command != CmdPlain {
		t.Errorf("command = %v, want CmdPlain", args.Command)
	}
	if !args.Plain {
		t.Error("Plain flag not set")
	}
}

func TestParse_ValueFlags(t *testing.T) {
	args, err := Parse([]string{"--user", "operator", "--backend", "http://host:9000", "--no-history"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if args.User != "operator" {
		t.Errorf("User = %q", args.User)
	}
	if args.Backend != "http://host:9000" {
		t.Errorf("Backend = %q", args.Backend)
	}
	if !args.NoHistory {
		t.Error("NoHistory not set")
	}
}

func TestParse_Errors(t *testing.T) {
	for _, argv := range [][]string{
		{"--user"},
		{"--backend"},
		{"--bogus"},
	} {
		if _, err := Parse(argv); err == nil {
			t.Errorf("Parse(%v) = nil error, want error", argv)
		}
	}
}

func TestParse_RawArgsPreserved(t *testing.T) {
	args, err := Parse([]string{"plain", "extra"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(args.Raw) != 1 || args.Raw[0] != "extra" {
		t.Errorf("Raw = %v, want [extra]", args.Raw)
	}
}

func TestBackendMessage(t *testing.T) {
	if got := backendMessage(errTest); got != "boom" {
		t.Errorf("backendMessage = %q", got)
	}
}

var errTest = errFixture("boom")

type errFixture string

func (e errFixture) Error() string { return string(e) }
