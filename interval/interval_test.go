// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package interval

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/drp/network"
)

type fakeAdapter struct {
	mu          sync.Mutex
	peerID      string
	groupPeers  map[string][]string
	connected   map[string]bool
	broadcasts  []network.Message
	connectErrs map[string]error
	connects    []string
}

func newFakeAdapter() *fakeAdapter {
	return &fakeAdapter{
		groupPeers:  make(map[string][]string),
		connected:   make(map[string]bool),
		connectErrs: make(map[string]error),
	}
}

func (f *fakeAdapter) PeerID() string                                          { return f.peerID }
func (f *fakeAdapter) Start(ctx context.Context) error                         { return nil }
func (f *fakeAdapter) Stop(ctx context.Context) error                          { return nil }
func (f *fakeAdapter) Subscribe(ctx context.Context, topic string) error       { return nil }
func (f *fakeAdapter) Unsubscribe(ctx context.Context, topic string) error     { return nil }
func (f *fakeAdapter) OnMessage(handler network.IncomingHandler)               {}
func (f *fakeAdapter) Send(ctx context.Context, peerID string, m network.Message) error {
	return nil
}

func (f *fakeAdapter) Broadcast(ctx context.Context, topic string, m network.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.broadcasts = append(f.broadcasts, m)
	return nil
}

func (f *fakeAdapter) GroupPeers(topic string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.groupPeers[topic]
}

func (f *fakeAdapter) Connect(ctx context.Context, peerID string, addrs []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connects = append(f.connects, peerID)
	if err, ok := f.connectErrs[peerID]; ok {
		return err
	}
	f.connected[peerID] = true
	return nil
}

func (f *fakeAdapter) Connected(peerID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected[peerID]
}

func (f *fakeAdapter) broadcastCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.broadcasts)
}

func TestDiscoveryRunnerBroadcastsWhileNoPeers(t *testing.T) {
	adapter := newFakeAdapter()
	d := NewDiscoveryRunner("obj-1", "self", 10*time.Millisecond, time.Minute, adapter, nil)
	d.Start()
	defer d.Stop()

	require.Eventually(t, func() bool {
		return adapter.broadcastCount() > 0
	}, time.Second, 5*time.Millisecond)
}

func TestDiscoveryRunnerStopsBroadcastingOncePeersAppear(t *testing.T) {
	adapter := newFakeAdapter()
	d := NewDiscoveryRunner("obj-1", "self", 10*time.Millisecond, time.Minute, adapter, nil)
	d.Start()
	defer d.Stop()

	require.Eventually(t, func() bool {
		return adapter.broadcastCount() > 0
	}, time.Second, 5*time.Millisecond)

	adapter.mu.Lock()
	adapter.groupPeers["obj-1"] = []string{"peer-2"}
	adapter.mu.Unlock()

	time.Sleep(20 * time.Millisecond)
	n := adapter.broadcastCount()
	time.Sleep(30 * time.Millisecond)
	require.Equal(t, n, adapter.broadcastCount())
}

func TestReconnectRunnerDialsDisconnectedBootstrapPeers(t *testing.T) {
	adapter := newFakeAdapter()
	r := NewReconnectRunner([]BootstrapPeer{{PeerID: "boot-1", Addrs: []string{"/ip4/1.2.3.4/tcp/1"}}}, 10*time.Millisecond, adapter, nil)
	r.Start()
	defer r.Stop()

	require.Eventually(t, func() bool {
		return adapter.Connected("boot-1")
	}, time.Second, 5*time.Millisecond)
}

func TestRunnerStartStopIdempotent(t *testing.T) {
	calls := 0
	var mu sync.Mutex
	r := New("x", 5*time.Millisecond, func(ctx context.Context) {
		mu.Lock()
		calls++
		mu.Unlock()
	}, nil)
	r.Start()
	r.Start() // idempotent, logs a warning
	require.Equal(t, Running, r.State())

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return calls > 0
	}, time.Second, 5*time.Millisecond)

	r.Stop()
	r.Stop() // idempotent, logs a warning
	require.Equal(t, Stopped, r.State())
}
