// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import "errors"

var (
	ErrInvalidFinalityRatio  = errors.New("config: finalitySignerRatio must be in (0, 1]")
	ErrInvalidMinSigners     = errors.New("config: minFinalitySigners must be >= 1")
	ErrInvalidDiscovery      = errors.New("config: discovery interval and searchDuration must be > 0")
	ErrInvalidReconnect      = errors.New("config: reconnect interval must be > 0")
	ErrInvalidPeerDiscovery  = errors.New("config: pubsub.peer_discovery_interval must be > 0")
	ErrInvalidPrivateKeySeed = errors.New("config: keychain.private_key_seed must decode as hex")
)
