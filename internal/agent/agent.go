// Copyright (c) 2026 ToeiRei
// Keyferry - Bitwarden SSH key loader
// This source code is licensed under the MIT license found in the LICENSE file.

// package agent feeds resolved key material into the running SSH agent by
// piping it to ssh-add. Passphrase-protected keys are decrypted through an
// askpass helper: this same executable, re-invoked by ssh-add with the
// passphrase carried in the child's environment (see askpass.go).
package agent

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/toeirei/keyferry/internal/i18n"
	"github.com/toeirei/keyferry/internal/logging"
	"github.com/toeirei/keyferry/internal/security"
)

const (
	// askpassEnv is the variable ssh-add consults for the program to run
	// when a key needs a passphrase.
	askpassEnv = "SSH_ASKPASS"
	// askpassRequireEnv set to "never" forbids interactive prompting,
	// suitable for keys without a passphrase.
	askpassRequireEnv = "SSH_ASKPASS_REQUIRE"
	// passphraseEnv carries the passphrase to the askpass child process.
	// It exists only in that one child's environment.
	passphraseEnv = "SSH_KEY_PASSPHRASE"
)

// ErrAgent indicates the agent process rejected the key. Per-item; the
// batch continues.
var ErrAgent = errors.New("ssh-add failed")

// Injection points for tests; production code never changes these.
var (
	execCommand    = exec.Command
	runCmd         = func(c *exec.Cmd) error { return c.Run() }
	executablePath = resolveExecutable
)

// Add pipes the key to `ssh-add -`. With a passphrase set, the child is
// configured to call this executable back as its askpass helper; without
// one, prompting is disabled entirely. The parent's environment is never
// mutated. A non-zero exit maps to ErrAgent.
func Add(key string, passphrase security.Secret, quiet bool) error {
	key = ensureTrailingNewline(key)

	var args []string
	if quiet {
		args = append(args, "-q")
	}
	args = append(args, "-")

	cmd := execCommand("ssh-add", args...)
	cmd.Stdin = strings.NewReader(key)
	cmd.Stderr = os.Stderr

	env := os.Environ()
	if passphrase.IsZero() {
		env = append(env, askpassRequireEnv+"=never")
	} else {
		exe, err := executablePath()
		if err != nil {
			return fmt.Errorf("resolving own executable path: %w", err)
		}
		env = append(env,
			askpassEnv+"="+exe,
			passphraseEnv+"="+passphrase.Reveal(),
		)
	}
	cmd.Env = env

	logging.Debugf(i18n.T("agent.running"))

	// ssh-add provides no useful output, even at maximum verbosity; the
	// exit code is the entire contract.
	if err := runCmd(cmd); err != nil {
		return fmt.Errorf("%w: %v", ErrAgent, err)
	}
	return nil
}

// ensureTrailingNewline appends a final newline when the key text lacks
// one. Key text already ending in a newline passes through unchanged.
func ensureTrailingNewline(key string) string {
	if !strings.HasSuffix(key, "\n") {
		logging.Debugf(i18n.T("agent.newline"))
		key += "\n"
	}
	return key
}

// resolveExecutable returns the symlink-resolved path of this binary. It
// must match what ssh-add will invoke, so the askpass identity check in
// IsAskpass compares equal paths.
func resolveExecutable() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(exe)
}
