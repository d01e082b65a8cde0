// Copyright (c) 2026 ToeiRei
// Keyferry - Bitwarden SSH key loader
// This source code is licensed under the MIT license found in the LICENSE file.

package agent

import (
	"fmt"
	"io"
	"os"
)

// IsAskpass reports whether this process was launched by ssh-add as its
// askpass helper: SSH_ASKPASS names exactly this executable. The check is
// side-effect free and must run before any other startup logic.
func IsAskpass() bool {
	askpass := os.Getenv(askpassEnv)
	if askpass == "" {
		return false
	}
	exe, err := executablePath()
	if err != nil {
		return false
	}
	return askpass == exe
}

// RunAskpass answers the askpass invocation: it prints the passphrase from
// the environment and returns. The caller exits immediately afterwards.
func RunAskpass(w io.Writer) {
	fmt.Fprintln(w, os.Getenv(passphraseEnv))
}
