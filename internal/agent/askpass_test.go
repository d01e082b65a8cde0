// Copyright (c) 2026 ToeiRei
// Keyferry - Bitwarden SSH key loader
// This source code is licensed under the MIT license found in the LICENSE file.
package agent

import (
	"bytes"
	"testing"
)

func fakeExecutable(t *testing.T, path string) {
	t.Helper()
	orig := executablePath
	executablePath = func() (string, error) { return path, nil }
	t.Cleanup(func() { executablePath = orig })
}

func TestIsAskpassMatchesOwnPath(t *testing.T) {
	fakeExecutable(t, "/usr/local/bin/keyferry")
	t.Setenv(askpassEnv, "/usr/local/bin/keyferry")

	if !IsAskpass() {
		t.Fatal("expected askpass identity match")
	}
}

func TestIsAskpassIgnoresOtherHelpers(t *testing.T) {
	fakeExecutable(t, "/usr/local/bin/keyferry")
	t.Setenv(askpassEnv, "/usr/bin/ssh-askpass")

	if IsAskpass() {
		t.Fatal("matched a foreign askpass helper")
	}
}

func TestIsAskpassWithoutVariable(t *testing.T) {
	fakeExecutable(t, "/usr/local/bin/keyferry")
	t.Setenv(askpassEnv, "")

	if IsAskpass() {
		t.Fatal("askpass mode without SSH_ASKPASS set")
	}
}

func TestRunAskpassPrintsPassphrase(t *testing.T) {
	t.Setenv(passphraseEnv, "s3cr3t")

	var buf bytes.Buffer
	RunAskpass(&buf)

	if buf.String() != "s3cr3t\n" {
		t.Fatalf("unexpected askpass output: %q", buf.String())
	}
}
