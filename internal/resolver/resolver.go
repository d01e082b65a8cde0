// Copyright (c) 2026 ToeiRei
// Keyferry - Bitwarden SSH key loader
// This source code is licensed under the MIT license found in the LICENSE file.

// package resolver decides which private key material a vault item carries.
// The candidates are tried as an ordered list of strategies: the structured
// SSH key field, a matching file attachment, and finally a legacy note
// holding a bare PEM block. The first strategy that yields a key wins.
package resolver

import (
	"errors"
	"fmt"
	"strings"

	"github.com/toeirei/keyferry/internal/bitwarden"
	"github.com/toeirei/keyferry/internal/i18n"
	"github.com/toeirei/keyferry/internal/logging"
	"github.com/toeirei/keyferry/internal/security"
)

// pemHeaderPrefix marks a legacy note that holds raw key material.
const pemHeaderPrefix = "-----BEGIN"

// defaultKeyPrefix is the conventional filename prefix of SSH private keys,
// used as the attachment fallback when no custom field names one.
const defaultKeyPrefix = "id_"

var (
	// ErrKeyNotFound means no strategy produced key material for the item.
	ErrKeyNotFound = errors.New("no SSH key found")
	// ErrAttachmentNotFound means the item has attachments but none
	// matched; resolution falls through to the next strategy.
	ErrAttachmentNotFound = errors.New("attachment not found")
)

// errNoMatch signals that a strategy had nothing to offer and the next one
// should be tried. It never escapes Resolve.
var errNoMatch = errors.New("no match")

// Fetcher retrieves attachment bytes from the vault. *bitwarden.Client
// satisfies it.
type Fetcher interface {
	GetAttachment(session security.Secret, attachmentID, itemID string) ([]byte, error)
}

// Options control the resolution chain for a batch run.
type Options struct {
	// KeyField is the custom field whose value names the expected
	// attachment filename.
	KeyField string
	// Legacy enables the attachment and note fallbacks. Without it only
	// the structured key field is consulted.
	Legacy bool
}

// resolveContext bundles the per-item inputs handed to each strategy.
type resolveContext struct {
	fetcher Fetcher
	session security.Secret
	item    bitwarden.Item
	opts    Options
}

// strategyFunc is one step of the resolution chain. It returns the key
// material, errNoMatch to pass to the next strategy, ErrAttachmentNotFound
// to pass with a warning, or any other error to stop resolution for this
// item.
type strategyFunc func(rc resolveContext) (string, error)

// Resolve determines the best-available private key material for an item.
// On failure the returned error wraps one of the sentinel errors above;
// the caller decides whether the batch continues (it always should).
func Resolve(f Fetcher, session security.Secret, item bitwarden.Item, opts Options) (string, error) {
	strategies := []strategyFunc{fromStructuredKey}
	if opts.Legacy {
		strategies = append(strategies, fromAttachment, fromNotes)
	}

	rc := resolveContext{fetcher: f, session: session, item: item, opts: opts}
	for _, strategy := range strategies {
		key, err := strategy(rc)
		switch {
		case err == nil:
			return key, nil
		case errors.Is(err, ErrAttachmentNotFound):
			logging.Warnf("%v", err)
		case errors.Is(err, errNoMatch):
			// try the next strategy
		default:
			return "", err
		}
	}

	return "", fmt.Errorf("item %q: %w", item.Name, ErrKeyNotFound)
}

// fromStructuredKey returns the item's structured private key field. This
// is always the first strategy, regardless of legacy mode.
func fromStructuredKey(rc resolveContext) (string, error) {
	if !rc.item.HasStructuredKey() {
		return "", errNoMatch
	}
	logging.Debugf(i18n.T("resolver.using_item_key"), rc.item.Name)
	return rc.item.SSHKey.PrivateKey, nil
}

// fromAttachment fetches key material from a file attachment. The custom
// field named by Options.KeyField carries the expected filename; when the
// field is missing, only the "id_" filename convention is consulted. A
// missing candidate falls through to the next strategy; a failed download
// is a hard per-item failure.
func fromAttachment(rc resolveContext) (string, error) {
	logging.Debugf(i18n.T("resolver.attachment_fallback"))
	if len(rc.item.Attachments) == 0 {
		return "", errNoMatch
	}
	logging.Debugf(i18n.T("resolver.attachment_search"), rc.item.Name, rc.opts.KeyField)

	expected, ok := rc.item.FieldValue(rc.opts.KeyField)
	if !ok || expected == "" {
		logging.Warnf(i18n.T("resolver.no_key_field"), rc.opts.KeyField, rc.item.Name)
		expected = ""
	}

	attachment := findAttachment(rc.item.Attachments, expected)
	if attachment == nil {
		return "", fmt.Errorf("item %q has no attachment named %q: %w", rc.item.Name, expected, ErrAttachmentNotFound)
	}
	logging.Debugf(i18n.T("resolver.attachment_ids"), rc.item.ID, attachment.ID)

	data, err := rc.fetcher.GetAttachment(rc.session, attachment.ID, rc.item.ID)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// findAttachment picks the attachment candidate: an exact filename match on
// the expected name first, then the first attachment following the "id_"
// naming convention.
func findAttachment(attachments []bitwarden.Attachment, expected string) *bitwarden.Attachment {
	if expected != "" {
		for i := range attachments {
			if attachments[i].FileName == expected {
				return &attachments[i]
			}
		}
	}
	for i := range attachments {
		if strings.HasPrefix(attachments[i].FileName, defaultKeyPrefix) {
			return &attachments[i]
		}
	}
	return nil
}

// fromNotes returns the item's notes verbatim when they start with a PEM
// header marker. Last resort of the legacy chain.
func fromNotes(rc resolveContext) (string, error) {
	logging.Debugf(i18n.T("resolver.notes_fallback"))
	if strings.HasPrefix(rc.item.Notes, pemHeaderPrefix) {
		return rc.item.Notes, nil
	}
	return "", errNoMatch
}

// Passphrase resolves the passphrase for an item's key: the item's custom
// field wins over the batch-level fallback. Independent of key resolution.
func Passphrase(item bitwarden.Item, field string, fallback security.Secret) security.Secret {
	if len(item.Fields) == 0 {
		return fallback
	}
	if v, ok := item.FieldValue(field); ok {
		logging.Debugf(i18n.T("resolver.passphrase_declared"))
		return security.FromString(v)
	}
	logging.Warnf(i18n.T("resolver.no_passphrase_field"), field, item.Name)
	return fallback
}
