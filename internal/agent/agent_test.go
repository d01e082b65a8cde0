// Copyright (c) 2026 ToeiRei
// Keyferry - Bitwarden SSH key loader
// This source code is licensed under the MIT license found in the LICENSE file.
package agent

import (
	"errors"
	"io"
	"os/exec"
	"slices"
	"strings"
	"testing"

	"github.com/toeirei/keyferry/internal/security"
)

// captureRun replaces runCmd so the constructed command can be inspected
// without starting a subprocess.
func captureRun(t *testing.T, runErr error) *[]*exec.Cmd {
	t.Helper()
	var captured []*exec.Cmd
	origRun := runCmd
	origExe := executablePath
	runCmd = func(c *exec.Cmd) error {
		captured = append(captured, c)
		return runErr
	}
	executablePath = func() (string, error) { return "/usr/local/bin/keyferry", nil }
	t.Cleanup(func() {
		runCmd = origRun
		executablePath = origExe
	})
	return &captured
}

func stdinOf(t *testing.T, c *exec.Cmd) string {
	t.Helper()
	data, err := io.ReadAll(c.Stdin)
	if err != nil {
		t.Fatalf("reading command stdin: %v", err)
	}
	return string(data)
}

func envValue(c *exec.Cmd, key string) (string, bool) {
	prefix := key + "="
	// last assignment wins, as the OS would resolve it
	for i := len(c.Env) - 1; i >= 0; i-- {
		if strings.HasPrefix(c.Env[i], prefix) {
			return strings.TrimPrefix(c.Env[i], prefix), true
		}
	}
	return "", false
}

func TestAddAppendsMissingNewline(t *testing.T) {
	captured := captureRun(t, nil)

	if err := Add("-----BEGIN KEY-----", security.Secret(nil), false); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if got := stdinOf(t, (*captured)[0]); got != "-----BEGIN KEY-----\n" {
		t.Fatalf("newline not appended: %q", got)
	}
}

func TestAddKeepsExistingNewline(t *testing.T) {
	captured := captureRun(t, nil)

	if err := Add("-----BEGIN KEY-----\n", security.Secret(nil), false); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if got := stdinOf(t, (*captured)[0]); got != "-----BEGIN KEY-----\n" {
		t.Fatalf("key with newline was altered: %q", got)
	}
}

func TestAddWithoutPassphraseDisablesPrompting(t *testing.T) {
	captured := captureRun(t, nil)

	if err := Add("key", security.Secret(nil), false); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	c := (*captured)[0]
	if v, ok := envValue(c, askpassRequireEnv); !ok || v != "never" {
		t.Fatalf("expected %s=never, got %q (%v)", askpassRequireEnv, v, ok)
	}
	if _, ok := envValue(c, passphraseEnv); ok {
		t.Fatalf("passphrase variable set without a passphrase")
	}
	if !slices.Equal(c.Args, []string{"ssh-add", "-"}) {
		t.Fatalf("unexpected args: %v", c.Args)
	}
}

func TestAddWithPassphraseConfiguresAskpass(t *testing.T) {
	captured := captureRun(t, nil)

	if err := Add("key", security.FromString("s3cr3t"), false); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	c := (*captured)[0]
	if v, ok := envValue(c, askpassEnv); !ok || v != "/usr/local/bin/keyferry" {
		t.Fatalf("askpass helper not configured: %q (%v)", v, ok)
	}
	if v, ok := envValue(c, passphraseEnv); !ok || v != "s3cr3t" {
		t.Fatalf("passphrase not carried in child env: %q (%v)", v, ok)
	}
	if v, ok := envValue(c, askpassRequireEnv); ok && v == "never" {
		t.Fatalf("prompting disabled despite passphrase")
	}
}

func TestAddQuietFlag(t *testing.T) {
	captured := captureRun(t, nil)

	if err := Add("key", security.Secret(nil), true); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if !slices.Equal((*captured)[0].Args, []string{"ssh-add", "-q", "-"}) {
		t.Fatalf("unexpected args: %v", (*captured)[0].Args)
	}
}

func TestAddReportsAgentError(t *testing.T) {
	captureRun(t, errors.New("exit status 1"))

	err := Add("key", security.Secret(nil), false)
	if !errors.Is(err, ErrAgent) {
		t.Fatalf("expected ErrAgent, got %v", err)
	}
}
