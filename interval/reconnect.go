// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package interval

import (
	"context"
	"time"

	"github.com/luxfi/log"

	"github.com/luxfi/drp/network"
)

// BootstrapPeer is a peer id plus the multiaddrs to dial it at.
type BootstrapPeer struct {
	PeerID string
	Addrs  []string
}

// ReconnectRunner dials any configured bootstrap peer that is not currently
// connected.
type ReconnectRunner struct {
	*Runner

	peers   []BootstrapPeer
	adapter network.Adapter
	log     log.Logger
}

// NewReconnectRunner returns a ReconnectRunner for the given bootstrap
// peers, not yet started.
func NewReconnectRunner(peers []BootstrapPeer, interval time.Duration, adapter network.Adapter, logger log.Logger) *ReconnectRunner {
	if logger == nil {
		logger = log.NewNoOpLogger()
	}
	r := &ReconnectRunner{peers: peers, adapter: adapter, log: logger}
	r.Runner = New("reconnect", interval, r.onTick, logger)
	return r
}

func (r *ReconnectRunner) onTick(ctx context.Context) {
	for _, p := range r.peers {
		if r.adapter.Connected(p.PeerID) {
			continue
		}
		if err := r.adapter.Connect(ctx, p.PeerID, p.Addrs); err != nil {
			r.log.Error("reconnect dial failed", "peerId", p.PeerID, "err", err)
		}
	}
}
