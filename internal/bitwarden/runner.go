// Copyright (c) 2026 ToeiRei
// Keyferry - Bitwarden SSH key loader
// This source code is licensed under the MIT license found in the LICENSE file.

package bitwarden

import (
	"os"
	"os/exec"
)

// Runner abstracts execution of the vault CLI so tests can substitute a
// fake. Every call blocks until the subprocess exits.
type Runner interface {
	// Output runs the command and returns its captured stdout. A non-zero
	// exit reports as a non-nil error.
	Output(name string, args ...string) ([]byte, error)
	// Interactive runs the command with the user's terminal attached to
	// stdin and stderr so the CLI can prompt for credentials, capturing
	// stdout.
	Interactive(name string, args ...string) ([]byte, error)
}

// execRunner is the production Runner backed by os/exec.
type execRunner struct{}

func (execRunner) Output(name string, args ...string) ([]byte, error) {
	cmd := exec.Command(name, args...)
	cmd.Stderr = os.Stderr
	return cmd.Output()
}

func (execRunner) Interactive(name string, args ...string) ([]byte, error) {
	cmd := exec.Command(name, args...)
	cmd.Stdin = os.Stdin
	cmd.Stderr = os.Stderr
	return cmd.Output()
}
