// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package finality tracks BLS-aggregated attestations over hash graph
// vertices, reaching finality once a configurable quorum of a
// dynamically-changing signer set has signed.
package finality

import (
	"math"
	"sync"

	"github.com/luxfi/crypto/bls"
	"github.com/luxfi/log"
)

// Attestation is a single signature over a vertex hash.
type Attestation struct {
	Data      string
	Signature []byte
}

// SignerAttestation pairs an attestation with the peer that produced it, for
// batch merges received from a remote peer during sync.
type SignerAttestation struct {
	PeerID      string
	Attestation Attestation
}

type vertexState struct {
	signerKeys map[string]*bls.PublicKey
	signed     map[string]struct{}
	sigs       []*bls.Signature
	aggregate  *bls.Signature
}

func (vs *vertexState) recomputeAggregate() error {
	if len(vs.sigs) == 0 {
		vs.aggregate = nil
		return nil
	}
	agg, err := bls.AggregateSignatures(vs.sigs)
	if err != nil {
		return err
	}
	vs.aggregate = agg
	return nil
}

// Config configures a Store's quorum rule.
type Config struct {
	MinFinalitySigners  int
	FinalitySignerRatio float64
	Logger              log.Logger
}

// Store holds per-vertex signer eligibility and collected attestations.
type Store struct {
	mu    sync.RWMutex
	log   log.Logger
	min   int
	ratio float64

	vertices map[string]*vertexState
}

// New returns a Store configured with the given quorum rule.
func New(cfg Config) *Store {
	if cfg.Logger == nil {
		cfg.Logger = log.NewNoOpLogger()
	}
	if cfg.FinalitySignerRatio <= 0 {
		cfg.FinalitySignerRatio = 1
	}
	if cfg.MinFinalitySigners <= 0 {
		cfg.MinFinalitySigners = 1
	}
	return &Store{
		log:      cfg.Logger,
		min:      cfg.MinFinalitySigners,
		ratio:    cfg.FinalitySignerRatio,
		vertices: make(map[string]*vertexState),
	}
}

// InitializeState seeds the eligible signer set for a vertex from a snapshot
// of peerId -> compressed BLS public key, as observed by ACL at that vertex.
// Keys that fail to parse are dropped with a logged warning rather than
// rejecting the whole set.
func (s *Store) InitializeState(hash string, signers map[string][]byte) {
	keys := make(map[string]*bls.PublicKey, len(signers))
	for peer, keyBytes := range signers {
		pk, err := bls.PublicKeyFromCompressedBytes(keyBytes)
		if err != nil {
			s.log.Warn("dropping signer with unparseable BLS key", "peer", peer, "err", err)
			continue
		}
		keys[peer] = pk
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.vertices[hash] = &vertexState{
		signerKeys: keys,
		signed:     make(map[string]struct{}),
	}
}

// CanSign reports whether peerID is an eligible signer for hash and has not
// signed it yet.
func (s *Store) CanSign(peerID, hash string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	vs, ok := s.vertices[hash]
	if !ok {
		return false
	}
	if _, already := vs.signed[peerID]; already {
		return false
	}
	_, eligible := vs.signerKeys[peerID]
	return eligible
}

// AddSignatures inserts every attestation from peerID whose CanSign check
// passes, optionally verifying the BLS signature first. It returns the
// subset actually added.
func (s *Store) AddSignatures(peerID string, atts []Attestation, verify bool) ([]Attestation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var added []Attestation
	for _, att := range atts {
		vs, ok := s.vertices[att.Data]
		if !ok {
			continue
		}
		if _, already := vs.signed[peerID]; already {
			continue
		}
		pubkey, eligible := vs.signerKeys[peerID]
		if !eligible {
			continue
		}
		sig, err := bls.SignatureFromBytes(att.Signature)
		if err != nil {
			s.log.Warn("dropping unparseable attestation", "peer", peerID, "hash", att.Data, "err", err)
			continue
		}
		if verify && !bls.Verify(pubkey, sig, []byte(att.Data)) {
			s.log.Warn("dropping attestation failing BLS verification", "peer", peerID, "hash", att.Data)
			continue
		}

		vs.signed[peerID] = struct{}{}
		vs.sigs = append(vs.sigs, sig)
		if err := vs.recomputeAggregate(); err != nil {
			return added, err
		}
		added = append(added, att)
	}
	return added, nil
}

// MergeSignatures applies a batch of attestations from possibly many peers,
// as received from a remote during sync.
func (s *Store) MergeSignatures(entries []SignerAttestation, verify bool) ([]SignerAttestation, error) {
	var added []SignerAttestation
	for _, e := range entries {
		got, err := s.AddSignatures(e.PeerID, []Attestation{e.Attestation}, verify)
		if err != nil {
			return added, err
		}
		if len(got) == 1 {
			added = append(added, e)
		}
	}
	return added, nil
}

// GetAttestation returns the current aggregated attestation for hash, if any
// signature has been collected.
func (s *Store) GetAttestation(hash string) (Attestation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	vs, ok := s.vertices[hash]
	if !ok || vs.aggregate == nil {
		return Attestation{}, false
	}
	return Attestation{Data: hash, Signature: bls.SignatureToBytes(vs.aggregate)}, true
}

// GetNumberOfSignatures returns the count of distinct peers that have signed
// hash.
func (s *Store) GetNumberOfSignatures(hash string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	vs, ok := s.vertices[hash]
	if !ok {
		return 0
	}
	return len(vs.signed)
}

// IsFinalized reports whether hash has reached quorum: at least
// max(minFinalitySigners, ceil(finalitySignerRatio * |eligible signers|)).
func (s *Store) IsFinalized(hash string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	vs, ok := s.vertices[hash]
	if !ok {
		return false
	}
	return len(vs.signed) >= s.quorum(len(vs.signerKeys))
}

func (s *Store) quorum(numSigners int) int {
	ratioQuorum := int(math.Ceil(s.ratio * float64(numSigners)))
	if s.min > ratioQuorum {
		return s.min
	}
	return ratioQuorum
}
