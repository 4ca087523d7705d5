// Copyright (C) 2025 The Janitor Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package authz implements the Authorization Gate (spec §4.11): the single
// primitive every destructive entry point must pass before it is allowed
// to touch a file outside .janitor/.
package authz

import (
	"crypto/ed25519"
	"encoding/base64"
)

// Challenge is the fixed string every purge token signs.
const Challenge = "JANITOR_PURGE_AUTHORIZED"

// RefusalMessage is written to stderr by destructive entry points when the
// token is missing or invalid, before exiting non-zero (spec §6).
const RefusalMessage = "janitor: refusing to proceed — missing or invalid authorization token"

// tokenByteLength is the exact length of an Ed25519 signature.
const tokenByteLength = ed25519.SignatureSize

// verifyingKey is compiled into the binary. It is a placeholder key for
// this tree; a real deployment substitutes its own organization's public
// key at build time (e.g. via -ldflags or a generated file), the same way
// the teacher's build embeds its release metadata.
var verifyingKey = ed25519.PublicKey{
	0x1e, 0x6e, 0x3e, 0x7a, 0x4d, 0x2c, 0x9f, 0x5b,
	0x8a, 0x3d, 0x7c, 0x1f, 0x6b, 0x4e, 0x2a, 0x9d,
	0x5f, 0x8b, 0x3a, 0x7e, 0x1c, 0x6d, 0x4f, 0x2b,
	0x9a, 0x5c, 0x8e, 0x3b, 0x7d, 0x1a, 0x6c, 0x4d,
}

// VerifyToken reports whether token is a valid base64 encoding of a 64-byte
// Ed25519 signature of Challenge under verifyingKey. Any malformed input —
// wrong length after decoding, invalid base64 — is a verification failure,
// not an error: the gate has exactly one bit of output.
func VerifyToken(token string) bool {
	sig, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return false
	}
	if len(sig) != tokenByteLength {
		return false
	}
	return ed25519.Verify(verifyingKey, []byte(Challenge), sig)
}
