// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package node

import (
	"crypto/ecdsa"
	"crypto/sha256"

	"github.com/luxfi/crypto"
	"github.com/luxfi/crypto/bls"
	"github.com/luxfi/crypto/bls/signer/localsigner"

	"github.com/luxfi/drp/config"
	"github.com/luxfi/drp/validate"
)

// blsSigner is the common shape of a BLS private key, satisfied by both
// *bls.SecretKey and *localsigner.LocalSigner.
type blsSigner interface {
	PublicKey() *bls.PublicKey
	Sign(msg []byte) (*bls.Signature, error)
}

// Keychain holds a node's two signing identities: a secp256k1 identity key
// used to sign authored vertices and derive the node's peer id, and a BLS
// key used to produce finality attestations. Both are derived from the same
// configured seed when one is given, so a node's identity is reproducible
// across restarts.
type Keychain struct {
	identity *ecdsa.PrivateKey
	peerID   string
	bls      blsSigner
	blsKey   *bls.PublicKey
}

// NewKeychain builds a Keychain from cfg. With no seed configured, both keys
// are freshly generated.
func NewKeychain(cfg config.Keychain) (*Keychain, error) {
	seed, err := cfg.PrivateKeySeed()
	if err != nil {
		return nil, err
	}

	var identity *ecdsa.PrivateKey
	var signer blsSigner
	if len(seed) == 0 {
		identity, err = crypto.GenerateKey()
		if err != nil {
			return nil, err
		}
		ls, err := localsigner.New()
		if err != nil {
			return nil, err
		}
		signer = ls
	} else {
		identity, err = crypto.ToECDSA(seed)
		if err != nil {
			return nil, err
		}
		blsSeed := sha256.Sum256(seed)
		sk, err := bls.SecretKeyFromSeed(blsSeed[:])
		if err != nil {
			return nil, err
		}
		signer = sk
	}

	return &Keychain{
		identity: identity,
		peerID:   validate.PeerID(&identity.PublicKey),
		bls:      signer,
		blsKey:   signer.PublicKey(),
	}, nil
}

// PeerID returns the node's identity-derived peer id.
func (k *Keychain) PeerID() string { return k.peerID }

// BLSPublicKeyCompressed returns the compressed BLS public key to register
// with an object's ACL via setKey.
func (k *Keychain) BLSPublicKeyCompressed() []byte {
	return bls.PublicKeyToCompressedBytes(k.blsKey)
}

// SignVertex signs vertexHash with the identity key, for attachment to a
// locally-authored vertex.
func (k *Keychain) SignVertex(vertexHash string) ([]byte, error) {
	return validate.Sign(k.identity, vertexHash)
}

// SignAttestation signs vertexHash with the BLS key, for a finality
// attestation.
func (k *Keychain) SignAttestation(vertexHash string) ([]byte, error) {
	sig, err := k.bls.Sign([]byte(vertexHash))
	if err != nil {
		return nil, err
	}
	return bls.SignatureToBytes(sig), nil
}
