// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package interval

import (
	"context"
	"sync"
	"time"

	"github.com/luxfi/log"

	"github.com/luxfi/drp/network"
)

// DiscoveryRunner broadcasts a DRP_DISCOVERY request on the shared
// discovery topic whenever its object currently has no known peers. After
// searchDuration of continuous searching it logs that fact and restarts its
// search clock, and keeps broadcasting on every tick.
type DiscoveryRunner struct {
	*Runner

	objectID       string
	selfPeerID     string
	searchDuration time.Duration
	adapter        network.Adapter
	log            log.Logger

	mu              sync.Mutex
	searchStartedAt time.Time
}

// NewDiscoveryRunner returns a DiscoveryRunner for objectID, not yet started.
func NewDiscoveryRunner(objectID, selfPeerID string, interval, searchDuration time.Duration, adapter network.Adapter, logger log.Logger) *DiscoveryRunner {
	if logger == nil {
		logger = log.NewNoOpLogger()
	}
	d := &DiscoveryRunner{
		objectID:       objectID,
		selfPeerID:     selfPeerID,
		searchDuration: searchDuration,
		adapter:        adapter,
		log:            logger,
	}
	d.Runner = New("discovery:"+objectID, interval, d.onTick, logger)
	return d
}

func (d *DiscoveryRunner) onTick(ctx context.Context) {
	peers := d.adapter.GroupPeers(d.objectID)
	if len(peers) > 0 {
		d.mu.Lock()
		d.searchStartedAt = time.Time{}
		d.mu.Unlock()
		return
	}

	d.mu.Lock()
	if d.searchStartedAt.IsZero() {
		d.searchStartedAt = time.Now()
	}
	elapsed := time.Since(d.searchStartedAt)
	d.mu.Unlock()

	if elapsed > d.searchDuration {
		d.log.Info("discovery search exceeded deadline, still retrying", "objectId", d.objectID, "elapsed", elapsed)
		d.mu.Lock()
		d.searchStartedAt = time.Time{}
		d.mu.Unlock()
	}

	msg := network.Message{
		Sender:   d.selfPeerID,
		Type:     network.DRPDiscovery,
		ObjectID: d.objectID,
	}
	if err := d.adapter.Broadcast(ctx, network.DiscoveryTopic, msg); err != nil {
		d.log.Error("discovery broadcast failed", "objectId", d.objectID, "err", err)
	}
}
