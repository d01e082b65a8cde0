// Copyright (c) 2026 ToeiRei
// Keyferry - Bitwarden SSH key loader
// This source code is licensed under the MIT license found in the LICENSE file.

// package bitwarden wraps the Bitwarden CLI (`bw`). All vault access goes
// through subprocess invocations of that binary; this package owns the
// argument construction and the decoding of its JSON output.
package bitwarden // import "github.com/toeirei/keyferry/internal/bitwarden"

// Folder is one entry of `bw list folders` output.
type Folder struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SSHKey is the structured SSH key record newer Bitwarden items carry.
type SSHKey struct {
	PrivateKey     string `json:"privateKey"`
	PublicKey      string `json:"publicKey"`
	KeyFingerprint string `json:"keyFingerprint"`
}

// Field is a custom name/value field on a vault item. Order is preserved
// as returned by the CLI.
type Field struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Attachment describes a file attached to a vault item.
type Attachment struct {
	ID       string `json:"id"`
	FileName string `json:"fileName"`
}

// Item is one entry of `bw list items` output, reduced to the fields this
// tool reads. Items are read-only; the vault owns them.
type Item struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Notes       string       `json:"notes"`
	SSHKey      *SSHKey      `json:"sshKey,omitempty"`
	Fields      []Field      `json:"fields,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// FieldValue looks up a custom field by name. The boolean distinguishes
// "field not found" from an empty value so callers can fall back only on
// the former.
func (it Item) FieldValue(name string) (string, bool) {
	for _, f := range it.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// HasStructuredKey reports whether the item carries a non-empty structured
// private key.
func (it Item) HasStructuredKey() bool {
	return it.SSHKey != nil && it.SSHKey.PrivateKey != ""
}
