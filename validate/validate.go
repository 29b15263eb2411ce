// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package validate recovers and checks the secp256k1 signature a peer
// attaches to every vertex it authors. Vertex hash, dependency, and
// timestamp-skew checks live in hashgraph.AddVertex itself; this package
// covers the one admission check that needs a peer's public key: is the
// signer of vertex.signature actually vertex.peerId.
package validate

import (
	"crypto/ecdsa"
	"crypto/sha256"
	"errors"

	"github.com/luxfi/crypto"
	"github.com/luxfi/drp/hashgraph"
)

// ErrSignatureMismatch is returned when the address recovered from a
// vertex's signature does not match its claimed peer id.
var ErrSignatureMismatch = errors.New("validate: recovered signer does not match vertex peer id")

// PeerID derives the peer identifier for a public key: the hex-encoded
// address crypto.PubkeyToAddress produces, which is what a signing
// keychain's Sign/PeerID pair must agree on.
func PeerID(pub *ecdsa.PublicKey) string {
	return crypto.PubkeyToAddress(*pub).Hex()
}

// digest is the fixed preimage a vertex signature covers.
func digest(vertexHash string) [32]byte {
	return sha256.Sum256([]byte(vertexHash))
}

// Sign produces the signature a peer attaches to a vertex it authored:
// an ECDSA signature over sha256(vertex.hash).
func Sign(priv *ecdsa.PrivateKey, vertexHash string) ([]byte, error) {
	d := digest(vertexHash)
	return crypto.Sign(d[:], priv)
}

// VerifyVertexSignature recovers the signer of v.Signature over
// sha256(v.Hash) and requires it match v.PeerID. The root vertex carries no
// signature and always passes.
func VerifyVertexSignature(v *hashgraph.Vertex) error {
	if v.IsRoot() {
		return nil
	}
	d := digest(v.Hash)
	pub, err := crypto.SigToPub(d[:], v.Signature)
	if err != nil {
		return err
	}
	if PeerID(pub) != v.PeerID {
		return ErrSignatureMismatch
	}
	return nil
}

// FilterValid splits vs into those whose signature checks out and those
// that don't; invalid vertices are dropped rather than surfaced as an
// error, matching the "drop invalid ones" policy for incoming updates. When
// permissionless is true every vertex passes unchecked.
func FilterValid(vs []*hashgraph.Vertex, permissionless bool) (valid, dropped []*hashgraph.Vertex) {
	if permissionless {
		return vs, nil
	}
	valid = make([]*hashgraph.Vertex, 0, len(vs))
	for _, v := range vs {
		if err := VerifyVertexSignature(v); err != nil {
			dropped = append(dropped, v)
			continue
		}
		valid = append(valid, v)
	}
	return valid, dropped
}
