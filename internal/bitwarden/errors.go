// Copyright (c) 2026 ToeiRei
// Keyferry - Bitwarden SSH key loader
// This source code is licensed under the MIT license found in the LICENSE file.

package bitwarden

import "errors"

// ErrAttachmentFetch indicates the vault CLI failed while downloading an
// attachment. It is a per-item failure; the batch continues.
var ErrAttachmentFetch = errors.New("could not get attachment from Bitwarden")
