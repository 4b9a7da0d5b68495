// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"io"
	"os"
	"strings"
	"testing"
)

// promptFixture swaps stdin/stderr for a prompt call and returns the
// entered value plus what was rendered.
func promptFixture(t *testing.T, typed string, call func() (string, error)) (string, string) {
	t.Helper()

	inR, inW, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	errR, errW, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}

	oldIn, oldErr := os.Stdin, os.Stderr
	os.Stdin, os.Stderr = inR, errW
	t.Cleanup(func() {
		os.Stdin, os.Stderr = oldIn, oldErr
	})

	if _, err := inW.WriteString(typed); err != nil {
		t.Fatalf("write stdin: %v", err)
	}
	inW.Close()

	got, err := call()
	if err != nil {
		t.Fatalf("prompt: %v", err)
	}

	errW.Close()
	rendered, _ := io.ReadAll(errR)
	return got, string(rendered)
}

func TestPromptLine_RendersLabelOnce(t *testing.T) {
	got, rendered := promptFixture(t, "operator\n", func() (string, error) {
		return PromptLine("username")
	})
	if got != "operator" {
		t.Errorf("value = %q, want operator", got)
	}
	// The helper owns the separator; a bare label must render exactly
	// "username: ", never a doubled colon.
	if rendered != "username: " {
		t.Errorf("rendered prompt = %q, want %q", rendered, "username: ")
	}
	if strings.Contains(rendered, ": :") || strings.Contains(rendered, "::") {
		t.Errorf("rendered prompt %q has a doubled separator", rendered)
	}
}

func TestPromptLine_TrimsInput(t *testing.T) {
	got, _ := promptFixture(t, "  operator \n", func() (string, error) {
		return PromptLine("username")
	})
	if got != "operator" {
		t.Errorf("value = %q, want trimmed operator", got)
	}
}

func TestPromptPassword_NonTerminalFallback(t *testing.T) {
	got, rendered := promptFixture(t, "hunter2hunter2\n", func() (string, error) {
		return PromptPassword("password")
	})
	if got != "hunter2hunter2" {
		t.Errorf("value = %q", got)
	}
	if !strings.HasPrefix(rendered, "password: ") {
		t.Errorf("rendered prompt = %q, want password: prefix", rendered)
	}
}
