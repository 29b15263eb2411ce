// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package config holds the Node's static configuration: network listen/
// bootstrap addresses, the discovery and reconnect interval runners,
// finality quorum thresholds, logging, and the keychain seed.
package config

import (
	"encoding/hex"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Network configures the transport adapter's addresses and peer discovery.
type Network struct {
	ListenAddresses   []string      `json:"listen_addresses" yaml:"listen_addresses"`
	AnnounceAddresses []string      `json:"announce_addresses" yaml:"announce_addresses"`
	Bootstrap         bool          `json:"bootstrap" yaml:"bootstrap"`
	BootstrapPeers    []string      `json:"bootstrap_peers" yaml:"bootstrap_peers"`
	PeerDiscoveryInt  time.Duration `json:"pubsub_peer_discovery_interval" yaml:"pubsub.peer_discovery_interval"`
}

// Discovery configures the per-object DiscoveryRunner.
type Discovery struct {
	Interval       time.Duration `json:"interval" yaml:"interval"`
	SearchDuration time.Duration `json:"searchDuration" yaml:"searchDuration"`
}

// Reconnect configures the ReconnectRunner.
type Reconnect struct {
	Interval time.Duration `json:"interval" yaml:"interval"`
}

// Finality configures the quorum rule shared by every object's FinalityStore.
type Finality struct {
	FinalitySignerRatio float64 `json:"finalitySignerRatio" yaml:"finalitySignerRatio"`
	MinFinalitySigners  int     `json:"minFinalitySigners" yaml:"minFinalitySigners"`
}

// Logging configures the node's logger.
type Logging struct {
	Level string `json:"level" yaml:"level"`
}

// Keychain configures the node's signing identity.
type Keychain struct {
	// PrivateKeySeedHex, if set, is hex-decoded into a deterministic
	// secp256k1 seed. Left empty, a fresh key is generated at startup.
	PrivateKeySeedHex string `json:"private_key_seed" yaml:"private_key_seed"`
}

// PrivateKeySeed decodes Keychain.PrivateKeySeedHex, if set.
func (k Keychain) PrivateKeySeed() ([]byte, error) {
	if k.PrivateKeySeedHex == "" {
		return nil, nil
	}
	seed, err := hex.DecodeString(k.PrivateKeySeedHex)
	if err != nil {
		return nil, ErrInvalidPrivateKeySeed
	}
	return seed, nil
}

// Config is the Node's complete static configuration.
type Config struct {
	Network   Network   `json:"network" yaml:"network"`
	Discovery Discovery `json:"discovery" yaml:"discovery"`
	Reconnect Reconnect `json:"reconnect" yaml:"reconnect"`
	Finality  Finality  `json:"finality" yaml:"finality"`
	Logging   Logging   `json:"logging" yaml:"logging"`
	Keychain  Keychain  `json:"keychain" yaml:"keychain"`
}

// Default returns the configuration the canonical implementation ships
// with: no bootstrap peers, a 30s discovery tick with a 5 minute search
// window, a 10s reconnect tick, and a two-thirds finality quorum with a
// floor of one signer.
func Default() Config {
	return Config{
		Network: Network{
			PeerDiscoveryInt: 30 * time.Second,
		},
		Discovery: Discovery{
			Interval:       30 * time.Second,
			SearchDuration: 5 * time.Minute,
		},
		Reconnect: Reconnect{
			Interval: 10 * time.Second,
		},
		Finality: Finality{
			FinalitySignerRatio: 2.0 / 3.0,
			MinFinalitySigners:  1,
		},
		Logging: Logging{Level: "info"},
	}
}

// Load reads and parses a YAML configuration file, applying Default()
// first so unset fields keep their defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Valid(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Valid reports whether every field holds a legal value.
func (c Config) Valid() error {
	if c.Finality.FinalitySignerRatio <= 0 || c.Finality.FinalitySignerRatio > 1 {
		return ErrInvalidFinalityRatio
	}
	if c.Finality.MinFinalitySigners < 1 {
		return ErrInvalidMinSigners
	}
	if c.Discovery.Interval <= 0 || c.Discovery.SearchDuration <= 0 {
		return ErrInvalidDiscovery
	}
	if c.Reconnect.Interval <= 0 {
		return ErrInvalidReconnect
	}
	if c.Network.PeerDiscoveryInt <= 0 {
		return ErrInvalidPeerDiscovery
	}
	if _, err := c.Keychain.PrivateKeySeed(); err != nil {
		return err
	}
	return nil
}
