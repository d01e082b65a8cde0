// Copyright (c) 2026 ToeiRei
// Keyferry - Bitwarden SSH key loader
// This source code is licensed under the MIT license found in the LICENSE file.

package bitwarden

import (
	"fmt"
	"os"

	"github.com/toeirei/keyferry/internal/i18n"
	"github.com/toeirei/keyferry/internal/logging"
	"github.com/toeirei/keyferry/internal/security"
)

// SessionEnv is the environment variable the Bitwarden CLI itself uses to
// carry a session token between invocations.
const SessionEnv = "BW_SESSION"

// GetSession resolves an authenticated vault session. An explicit token, or
// one from BW_SESSION, is returned unchanged without validation. Otherwise
// the login state is probed and an interactive login or unlock is run; its
// stdout is the token. The obtained token is logged once so it can be
// exported for later runs. Failure to obtain a session is fatal for the run.
func (c *Client) GetSession(explicit string) (security.Secret, error) {
	token := explicit
	if token == "" {
		token = os.Getenv(SessionEnv)
	}
	if token != "" {
		logging.Debugf(i18n.T("session.existing"))
		return security.FromString(token), nil
	}

	operation := "unlock"
	if c.loggedIn() {
		logging.Debugf(i18n.T("session.locked"))
	} else {
		logging.Debugf(i18n.T("session.not_logged_in"))
		operation = "login"
	}

	out, err := c.run.Interactive(c.bin, "--raw", operation)
	if err != nil {
		return nil, fmt.Errorf("bw %s: %w", operation, err)
	}

	token = string(out)
	logging.Infof(i18n.T("session.reuse_hint"), token)
	return security.FromString(token), nil
}

// loggedIn probes the CLI's login state without side effects. Only the exit
// code carries meaning: zero means logged in, so the vault merely needs an
// unlock rather than a full login.
func (c *Client) loggedIn() bool {
	_, err := c.run.Output(c.bin, "login", "--check", "--quiet")
	return err == nil
}
