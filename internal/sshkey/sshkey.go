// Copyright (c) 2026 ToeiRei
// Keyferry - Bitwarden SSH key loader
// This source code is licensed under the MIT license found in the LICENSE file.

// package sshkey identifies resolved private key material so a batch run
// can report what it loaded. It never gates loading: the agent remains the
// authority on what it accepts.
package sshkey

import (
	"encoding/pem"
	"errors"

	"golang.org/x/crypto/ssh"
)

// Info describes a piece of private key material.
type Info struct {
	// Type is the PEM block type, e.g. "OPENSSH PRIVATE KEY".
	Type string
	// Fingerprint is the SHA256 fingerprint of the public half, when it
	// could be derived without a passphrase.
	Fingerprint string
	// Encrypted reports whether the key needs a passphrase.
	Encrypted bool
}

// Describe parses PEM-formatted private key material. For encrypted keys it
// still reports the type, and the fingerprint when the format exposes the
// public half without decryption.
func Describe(key string) (Info, error) {
	block, _ := pem.Decode([]byte(key))
	if block == nil {
		return Info{}, errors.New("no PEM block in key material")
	}
	info := Info{Type: block.Type}

	// Legacy PEM encryption announces itself in the block headers.
	if block.Headers["Proc-Type"] == "4,ENCRYPTED" {
		info.Encrypted = true
		return info, nil
	}

	signer, err := ssh.ParsePrivateKey([]byte(key))
	if err != nil {
		var missing *ssh.PassphraseMissingError
		if errors.As(err, &missing) {
			info.Encrypted = true
			// OpenSSH-format keys store the public half in the clear.
			if missing.PublicKey != nil {
				info.Fingerprint = ssh.FingerprintSHA256(missing.PublicKey)
			}
			return info, nil
		}
		return Info{}, err
	}

	info.Fingerprint = ssh.FingerprintSHA256(signer.PublicKey())
	return info, nil
}
