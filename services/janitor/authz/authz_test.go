// Copyright (C) 2025 The Janitor Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package authz_test

import (
	"crypto/ed25519"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codejanitor/janitor/services/janitor/authz"
)

func TestVerifyToken_RejectsGarbage(t *testing.T) {
	require.False(t, authz.VerifyToken(""))
	require.False(t, authz.VerifyToken("not-base64!!!"))
	require.False(t, authz.VerifyToken(base64.StdEncoding.EncodeToString([]byte("too short"))))
}

func TestVerifyToken_RejectsWrongKeySignature(t *testing.T) {
	_, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	sig := ed25519.Sign(priv, []byte(authz.Challenge))
	token := base64.StdEncoding.EncodeToString(sig)

	require.False(t, authz.VerifyToken(token), "a signature from an unrelated key must never verify")
}

func TestVerifyToken_RejectsWellFormedZeroSignature(t *testing.T) {
	// This test cannot forge a passing token since it has no access to the
	// compiled-in private key. A 64-byte all-zero signature passes the
	// decode and length checks and must still fail signature verification.
	sig := make([]byte, ed25519.SignatureSize)
	token := base64.StdEncoding.EncodeToString(sig)
	require.False(t, authz.VerifyToken(token))
}
