// Copyright (c) 2026 ToeiRei
// Keyferry - Bitwarden SSH key loader
// This source code is licensed under the MIT license found in the LICENSE file.

package bitwarden

import (
	"encoding/json"
	"fmt"

	"github.com/toeirei/keyferry/internal/i18n"
	"github.com/toeirei/keyferry/internal/logging"
	"github.com/toeirei/keyferry/internal/security"
)

// RootFolderID is the sentinel folder id the CLI accepts for "no folder".
// Listing items against it returns the vault root.
const RootFolderID = "null"

// Client invokes the Bitwarden CLI. The zero value is not usable; construct
// one with New.
type Client struct {
	bin string
	run Runner
}

// New returns a Client backed by the `bw` binary on PATH.
func New() *Client {
	return &Client{bin: "bw", run: execRunner{}}
}

// NewWithRunner returns a Client that executes commands through r. Used by
// tests to avoid real subprocesses.
func NewWithRunner(r Runner) *Client {
	return &Client{bin: "bw", run: r}
}

// GetFolderID looks up the id of the folder with exactly the given name.
// The CLI search is a substring match, so the results are filtered for an
// exact name. When no folder matches, the root folder sentinel is returned;
// that is a logged fallback, not an error. A malformed listing is fatal for
// the run.
func (c *Client) GetFolderID(session security.Secret, name string) (string, error) {
	logging.Debugf(i18n.T("folder.name"), name)

	out, err := c.run.Output(c.bin, "list", "folders", "--search", name, "--session", session.Reveal())
	if err != nil {
		return "", fmt.Errorf("bw list folders: %w", err)
	}

	var folders []Folder
	if err := json.Unmarshal(out, &folders); err != nil {
		return "", fmt.Errorf("decoding folder list: %w", err)
	}

	for _, f := range folders {
		if f.Name == name {
			return f.ID, nil
		}
	}

	logging.Debugf(i18n.T("folder.fallback"), name)
	return RootFolderID, nil
}

// ListItems returns all items under the given folder id. The root folder
// sentinel lists items at the vault root. A malformed listing is fatal for
// the run.
func (c *Client) ListItems(session security.Secret, folderID string) ([]Item, error) {
	logging.Debugf(i18n.T("folder.id"), folderID)

	out, err := c.run.Output(c.bin, "list", "items", "--folderid", folderID, "--session", session.Reveal())
	if err != nil {
		return nil, fmt.Errorf("bw list items: %w", err)
	}

	var items []Item
	if err := json.Unmarshal(out, &items); err != nil {
		return nil, fmt.Errorf("decoding item list: %w", err)
	}
	return items, nil
}

// GetAttachment downloads the raw bytes of an attachment. A non-zero exit
// maps to ErrAttachmentFetch so callers can classify it as a per-item
// failure.
func (c *Client) GetAttachment(session security.Secret, attachmentID, itemID string) ([]byte, error) {
	out, err := c.run.Output(c.bin, "get", "attachment", attachmentID, "--itemid", itemID, "--raw", "--session", session.Reveal())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAttachmentFetch, err)
	}
	return out, nil
}
