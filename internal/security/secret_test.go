// Copyright (c) 2026 ToeiRei
// Keyferry - Bitwarden SSH key loader
// This source code is licensed under the MIT license found in the LICENSE file.
package security

import (
	"encoding/json"
	"fmt"
	"testing"
)

func TestSecretRedactionAndJSON(t *testing.T) {
	s := FromString("supersecret")
	if fmt.Sprintf("%v", s) != "[SECRET]" {
		t.Fatalf("unexpected fmt output: %q", fmt.Sprintf("%v", s))
	}
	b, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("json.Marshal failed: %v", err)
	}
	if string(b) != "\"[SECRET]\"" {
		t.Fatalf("unexpected json marshal: %s", string(b))
	}
}

func TestSecretReveal(t *testing.T) {
	s := FromString("tok-123")
	if s.Reveal() != "tok-123" {
		t.Fatalf("Reveal returned %q", s.Reveal())
	}
	if s.IsZero() {
		t.Fatal("non-empty secret reported IsZero")
	}
	if !FromString("").IsZero() {
		t.Fatal("empty secret did not report IsZero")
	}
}

func TestSecretZero(t *testing.T) {
	s := FromString("abc123")
	(&s).Zero()
	// Inspect the underlying bytes using Use to avoid creating copies.
	if err := s.Use(func(b []byte) error {
		for i := range b {
			if b[i] != 0 {
				t.Fatalf("expected zeroed byte at index %d, got %d", i, b[i])
			}
		}
		return nil
	}); err != nil {
		t.Fatalf("s.Use failed: %v", err)
	}
}
