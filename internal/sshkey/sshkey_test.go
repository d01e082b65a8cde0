// Copyright (c) 2026 ToeiRei
// Keyferry - Bitwarden SSH key loader
// This source code is licensed under the MIT license found in the LICENSE file.
package sshkey

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"testing"

	"golang.org/x/crypto/ssh"
)

func generateKeyPEM(t *testing.T, passphrase string) string {
	t.Helper()
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generating ed25519 key: %v", err)
	}

	var block *pem.Block
	if passphrase == "" {
		block, err = ssh.MarshalPrivateKey(priv, "test@keyferry")
	} else {
		block, err = ssh.MarshalPrivateKeyWithPassphrase(priv, "test@keyferry", []byte(passphrase))
	}
	if err != nil {
		t.Fatalf("marshaling private key: %v", err)
	}
	return string(pem.EncodeToMemory(block))
}

func TestDescribeUnencryptedKey(t *testing.T) {
	key := generateKeyPEM(t, "")

	info, err := Describe(key)
	if err != nil {
		t.Fatalf("Describe failed: %v", err)
	}
	if info.Type != "OPENSSH PRIVATE KEY" {
		t.Fatalf("unexpected PEM type: %q", info.Type)
	}
	if info.Encrypted {
		t.Fatal("unencrypted key reported as encrypted")
	}
	if info.Fingerprint == "" {
		t.Fatal("missing fingerprint for unencrypted key")
	}
}

func TestDescribeEncryptedKey(t *testing.T) {
	key := generateKeyPEM(t, "s3cr3t")

	info, err := Describe(key)
	if err != nil {
		t.Fatalf("Describe failed: %v", err)
	}
	if !info.Encrypted {
		t.Fatal("encrypted key not detected")
	}
	if info.Type != "OPENSSH PRIVATE KEY" {
		t.Fatalf("unexpected PEM type: %q", info.Type)
	}
}

func TestDescribeRejectsNonPEM(t *testing.T) {
	if _, err := Describe("this is not a key"); err == nil {
		t.Fatal("expected error for non-PEM input")
	}
}
