// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package validate

import (
	"testing"

	"github.com/luxfi/crypto"
	"github.com/luxfi/drp/hashgraph"
	"github.com/stretchr/testify/require"
)

func signedVertex(t *testing.T, hash string) (*hashgraph.Vertex, string) {
	t.Helper()
	priv, err := crypto.GenerateKey()
	require.NoError(t, err)
	peerID := PeerID(&priv.PublicKey)
	sig, err := Sign(priv, hash)
	require.NoError(t, err)
	return &hashgraph.Vertex{Hash: hash, PeerID: peerID, Signature: sig}, peerID
}

func TestVerifyVertexSignatureAccepts(t *testing.T) {
	v, _ := signedVertex(t, "abc123")
	require.NoError(t, VerifyVertexSignature(v))
}

func TestVerifyVertexSignatureRejectsWrongPeerID(t *testing.T) {
	v, _ := signedVertex(t, "abc123")
	v.PeerID = "not-the-signer"
	require.ErrorIs(t, VerifyVertexSignature(v), ErrSignatureMismatch)
}

func TestVerifyVertexSignatureSkipsRoot(t *testing.T) {
	require.NoError(t, VerifyVertexSignature(hashgraph.NewRootVertex()))
}

func TestFilterValidDropsBadSignatures(t *testing.T) {
	good, _ := signedVertex(t, "h1")
	bad, _ := signedVertex(t, "h2")
	bad.Signature = []byte("garbage")

	valid, dropped := FilterValid([]*hashgraph.Vertex{good, bad}, false)
	require.Len(t, valid, 1)
	require.Same(t, good, valid[0])
	require.Len(t, dropped, 1)
	require.Same(t, bad, dropped[0])
}

func TestFilterValidSkipsCheckWhenPermissionless(t *testing.T) {
	bad, _ := signedVertex(t, "h2")
	bad.Signature = []byte("garbage")

	valid, dropped := FilterValid([]*hashgraph.Vertex{bad}, true)
	require.Len(t, valid, 1)
	require.Empty(t, dropped)
}
