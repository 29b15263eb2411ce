// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package node

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/drp/aclobj"
	"github.com/luxfi/drp/config"
	"github.com/luxfi/drp/hashgraph"
	"github.com/luxfi/drp/network"
	"github.com/luxfi/drp/object"
	"github.com/luxfi/drp/validate"
)

type broadcastCall struct {
	topic string
	msg   network.Message
}

type sendCall struct {
	peerID string
	msg    network.Message
}

type fakeAdapter struct {
	mu         sync.Mutex
	handler    network.IncomingHandler
	broadcasts []broadcastCall
	sends      []sendCall
	groupPeers map[string][]string
	connected  map[string]bool
}

func newFakeAdapter() *fakeAdapter {
	return &fakeAdapter{groupPeers: make(map[string][]string), connected: make(map[string]bool)}
}

func (a *fakeAdapter) PeerID() string                            { return "adapter" }
func (a *fakeAdapter) Start(context.Context) error                { return nil }
func (a *fakeAdapter) Stop(context.Context) error                 { return nil }
func (a *fakeAdapter) Subscribe(context.Context, string) error    { return nil }
func (a *fakeAdapter) Unsubscribe(context.Context, string) error  { return nil }
func (a *fakeAdapter) OnMessage(h network.IncomingHandler)        { a.handler = h }

func (a *fakeAdapter) Broadcast(_ context.Context, topic string, m network.Message) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.broadcasts = append(a.broadcasts, broadcastCall{topic, m})
	return nil
}

func (a *fakeAdapter) Send(_ context.Context, peerID string, m network.Message) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sends = append(a.sends, sendCall{peerID, m})
	return nil
}

func (a *fakeAdapter) GroupPeers(topic string) []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.groupPeers[topic]...)
}

func (a *fakeAdapter) Connect(_ context.Context, peerID string, _ []string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.connected[peerID] = true
	return nil
}

func (a *fakeAdapter) Connected(peerID string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.connected[peerID]
}

func (a *fakeAdapter) deliver(t *testing.T, m network.Message) {
	t.Helper()
	require.NotNil(t, a.handler, "adapter handler not registered")
	require.NoError(t, a.handler(context.Background(), m))
}

func (a *fakeAdapter) lastBroadcast() (broadcastCall, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.broadcasts) == 0 {
		return broadcastCall{}, false
	}
	return a.broadcasts[len(a.broadcasts)-1], true
}

func (a *fakeAdapter) lastSend() (sendCall, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.sends) == 0 {
		return sendCall{}, false
	}
	return a.sends[len(a.sends)-1], true
}

func newTestNode(t *testing.T) (*Node, *fakeAdapter) {
	t.Helper()
	adapter := newFakeAdapter()
	n, err := NewNode(config.Default(), adapter, nil)
	require.NoError(t, err)
	return n, adapter
}

func newTestObject(t *testing.T, n *Node, id string, admins []string, permissionless bool) *object.Object {
	t.Helper()
	acl := aclobj.New(admins, permissionless)
	obj := object.New(n.NewObjectConfig(id, hashgraph.SemanticsPair, acl, nil))
	require.NoError(t, n.RegisterObject(context.Background(), obj))
	return obj
}

func TestNodeSignsAndBroadcastsLocalVertex(t *testing.T) {
	n, adapter := newTestNode(t)
	obj := newTestObject(t, n, "obj-1", []string{n.PeerID()}, false)

	_, err := obj.CallACL("grant", []any{"peer-x", "Writer"})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		_, ok := adapter.lastBroadcast()
		return ok
	}, time.Second, 5*time.Millisecond)

	call, ok := adapter.lastBroadcast()
	require.True(t, ok)
	require.Equal(t, "obj-1", call.topic)
	require.Equal(t, network.Update, call.msg.Type)

	payload, err := network.UnmarshalUpdatePayload(call.msg.Data)
	require.NoError(t, err)
	require.Len(t, payload.Vertices, 1)

	v, err := network.DecodeVertex(payload.Vertices[0])
	require.NoError(t, err)
	require.Equal(t, n.PeerID(), v.PeerID)
	require.NoError(t, validate.VerifyVertexSignature(v))
}

func TestNodeHandleFetchStateServesRootState(t *testing.T) {
	n, adapter := newTestNode(t)
	newTestObject(t, n, "obj-1", []string{n.PeerID()}, false)

	req := network.FetchStatePayload{VertexHash: hashgraph.RootHash}
	adapter.deliver(t, network.Message{
		Sender:   "peer-y",
		Type:     network.FetchState,
		ObjectID: "obj-1",
		Data:     req.Marshal(),
	})

	require.Eventually(t, func() bool {
		_, ok := adapter.lastSend()
		return ok
	}, time.Second, 5*time.Millisecond)

	call, _ := adapter.lastSend()
	require.Equal(t, "peer-y", call.peerID)
	require.Equal(t, network.FetchStateResponse, call.msg.Type)

	resp, err := network.UnmarshalFetchStateResponsePayload(call.msg.Data)
	require.NoError(t, err)
	require.Equal(t, hashgraph.RootHash, resp.VertexHash)
	require.NotEmpty(t, resp.ACLState)
}

func TestNodeHandleUpdateMergesSignedVertex(t *testing.T) {
	nodeA, adapterA := newTestNode(t)
	objA := newTestObject(t, nodeA, "obj-1", []string{nodeA.PeerID()}, false)

	nodeB, _ := newTestNode(t)
	objB := newTestObject(t, nodeB, "obj-1", []string{nodeA.PeerID()}, false)

	_, err := objB.CallACL("setKey", []any{[]byte("key")})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		_, ok := nodeFakeLastBroadcast(nodeB)
		return ok
	}, time.Second, 5*time.Millisecond)

	broadcast, ok := nodeFakeLastBroadcast(nodeB)
	require.True(t, ok)
	payload, err := network.UnmarshalUpdatePayload(broadcast.msg.Data)
	require.NoError(t, err)
	require.Len(t, payload.Vertices, 1)

	adapterA.deliver(t, network.Message{
		Sender:   nodeB.PeerID(),
		Type:     network.Update,
		ObjectID: "obj-1",
		Data:     payload.Marshal(),
	})

	wv := payload.Vertices[0]
	require.Eventually(t, func() bool {
		return objA.HashGraph().Has(wv.Hash)
	}, time.Second, 5*time.Millisecond)
}

// nodeFakeLastBroadcast is a small helper to reach into a node created by
// newTestNode without threading its adapter through every caller.
func nodeFakeLastBroadcast(n *Node) (broadcastCall, bool) {
	a, ok := n.net.(*fakeAdapter)
	if !ok {
		return broadcastCall{}, false
	}
	return a.lastBroadcast()
}

func TestNodeHandleDiscoveryAnswersWithGroupPeers(t *testing.T) {
	n, adapter := newTestNode(t)
	require.NoError(t, n.Start(context.Background()))
	newTestObject(t, n, "obj-1", []string{n.PeerID()}, false)
	adapter.groupPeers["obj-1"] = []string{"peer-a", "peer-b"}

	adapter.deliver(t, network.Message{
		Sender:   "peer-c",
		Type:     network.DRPDiscovery,
		ObjectID: "obj-1",
	})

	require.Eventually(t, func() bool {
		_, ok := adapter.lastSend()
		return ok
	}, time.Second, 5*time.Millisecond)

	call, _ := adapter.lastSend()
	require.Equal(t, "peer-c", call.peerID)
	require.Equal(t, network.DRPDiscoveryResponse, call.msg.Type)

	resp, err := network.UnmarshalDiscoveryResponsePayload(call.msg.Data)
	require.NoError(t, err)
	require.Contains(t, resp.Subscribers, "peer-a")
	require.Contains(t, resp.Subscribers, "peer-b")
}

func TestNodeHandleDiscoveryResponseConnectsUnknownPeers(t *testing.T) {
	n, adapter := newTestNode(t)
	require.NoError(t, n.Start(context.Background()))
	newTestObject(t, n, "obj-1", []string{n.PeerID()}, false)

	resp := network.DiscoveryResponsePayload{
		Subscribers: map[string]network.PeerAddrs{
			"peer-d": {Multiaddrs: []string{"/ip4/10.0.0.1/tcp/4001"}},
		},
	}
	adapter.deliver(t, network.Message{
		Sender:   "peer-d",
		Type:     network.DRPDiscoveryResponse,
		ObjectID: "obj-1",
		Data:     resp.Marshal(),
	})

	require.Eventually(t, func() bool {
		return adapter.Connected("peer-d")
	}, time.Second, 5*time.Millisecond)
}
