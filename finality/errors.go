// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package finality

import "errors"

var (
	ErrUnknownVertex     = errors.New("finality: vertex has no initialized signer state")
	ErrNotEligibleSigner = errors.New("finality: peer is not an eligible signer for this vertex")
	ErrAlreadySigned     = errors.New("finality: peer has already signed this vertex")
	ErrInvalidSignature  = errors.New("finality: BLS signature verification failed")
	ErrNoSignerKey       = errors.New("finality: signer has no registered BLS public key")
)
