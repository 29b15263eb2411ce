// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package node implements the Node orchestrator: it owns a signing
// Keychain, the objects a peer hosts, and the interval runners that drive
// discovery and reconnection, and wires incoming network.Message traffic to
// the right Object through a per-object queue.Manager.
package node

import (
	"context"
	"errors"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/singleflight"

	"github.com/luxfi/log"

	"github.com/luxfi/drp/aclobj"
	"github.com/luxfi/drp/config"
	"github.com/luxfi/drp/drp"
	"github.com/luxfi/drp/finality"
	"github.com/luxfi/drp/hashgraph"
	"github.com/luxfi/drp/interval"
	"github.com/luxfi/drp/network"
	"github.com/luxfi/drp/object"
	"github.com/luxfi/drp/queue"
	"github.com/luxfi/drp/validate"
)

// discoveryQueueID is the queue.Manager id DRP_DISCOVERY and
// DRP_DISCOVERY_RESPONSE messages are routed to, since they carry no
// object id of their own topic concern beyond the object being searched for.
const discoveryQueueID = "discovery"

// Node is a single peer in the network: it dispatches inbound messages to
// the Object they target, signs and broadcasts locally-authored vertices,
// and keeps the per-object DiscoveryRunner and the shared ReconnectRunner
// running for as long as it's started.
type Node struct {
	cfg      config.Config
	log      log.Logger
	keychain *Keychain
	net      network.Adapter
	mq       *queue.Manager[network.Message]
	store    *Store

	customHandler network.IncomingHandler

	mu               sync.Mutex
	discoveryRunners map[string]*interval.DiscoveryRunner
	reconnectRunner  *interval.ReconnectRunner

	sf        singleflight.Group
	pendingMu sync.Mutex
	pending   map[string]chan network.FetchStateResponsePayload

	aggCacheMu sync.Mutex
	aggCache   map[string]map[string]network.AggregatedAttestation

	syncMu      sync.Mutex
	pendingSync map[string][]string

	metrics *metrics
}

// NewNode builds a Node from cfg, deriving its signing Keychain, and
// registers itself as adapter's single message handler.
func NewNode(cfg config.Config, adapter network.Adapter, logger log.Logger) (*Node, error) {
	if logger == nil {
		logger = log.NewNoOpLogger()
	}
	kc, err := NewKeychain(cfg.Keychain)
	if err != nil {
		return nil, err
	}
	n := &Node{
		cfg:              cfg,
		log:              logger,
		keychain:         kc,
		net:              adapter,
		mq:               queue.NewManager[network.Message](256, 0, logger),
		store:            NewStore(),
		discoveryRunners: make(map[string]*interval.DiscoveryRunner),
		pending:          make(map[string]chan network.FetchStateResponsePayload),
		aggCache:         make(map[string]map[string]network.AggregatedAttestation),
		pendingSync:      make(map[string][]string),
	}
	adapter.OnMessage(n.dispatchMessage)
	return n, nil
}

// PeerID returns the node's own peer identifier.
func (n *Node) PeerID() string { return n.keychain.PeerID() }

// SetCustomHandler installs the handler CUSTOM messages are delivered to;
// they carry no core semantics of their own.
func (n *Node) SetCustomHandler(h network.IncomingHandler) { n.customHandler = h }

// EnableMetrics registers the node's vertex, dispatch, and queue-depth
// counters against registerer. Metrics stay disabled, and every instrumented
// call point a no-op, until this is called: a Node used purely as an
// embedded library has no obligation to run a metrics server.
func (n *Node) EnableMetrics(registerer prometheus.Registerer) error {
	m, err := newMetrics(registerer)
	if err != nil {
		return err
	}
	n.metrics = m
	return nil
}

// Start subscribes to the shared discovery topic, starts the transport
// adapter, and dials any configured bootstrap peers.
func (n *Node) Start(ctx context.Context) error {
	if err := n.mq.Subscribe(discoveryQueueID, n.handleQueueMessage); err != nil {
		return err
	}
	if err := n.net.Start(ctx); err != nil {
		return err
	}
	if err := n.net.Subscribe(ctx, network.DiscoveryTopic); err != nil {
		return err
	}

	if len(n.cfg.Network.BootstrapPeers) > 0 {
		peers := make([]interval.BootstrapPeer, 0, len(n.cfg.Network.BootstrapPeers))
		for _, addr := range n.cfg.Network.BootstrapPeers {
			peers = append(peers, interval.BootstrapPeer{PeerID: addr, Addrs: []string{addr}})
		}
		n.mu.Lock()
		n.reconnectRunner = interval.NewReconnectRunner(peers, n.cfg.Reconnect.Interval, n.net, n.log)
		n.mu.Unlock()
		n.reconnectRunner.Start()
	}
	return nil
}

// Stop stops every discovery and reconnect runner, closes the message
// queues, and tears down the transport adapter.
func (n *Node) Stop(ctx context.Context) error {
	n.mu.Lock()
	runners := make([]*interval.DiscoveryRunner, 0, len(n.discoveryRunners))
	for _, dr := range n.discoveryRunners {
		runners = append(runners, dr)
	}
	reconnect := n.reconnectRunner
	n.mu.Unlock()

	for _, dr := range runners {
		dr.Stop()
	}
	if reconnect != nil {
		reconnect.Stop()
	}
	n.mq.Close()
	return n.net.Stop(ctx)
}

// NewObjectConfig builds an object.Config for id from the node's own
// peer id and configured finality quorum, ready to pass to object.New.
func (n *Node) NewObjectConfig(id string, semantics hashgraph.SemanticsType, acl *aclobj.ACL, appDRP drp.DRP) object.Config {
	return object.Config{
		ID:        id,
		PeerID:    n.keychain.PeerID(),
		Semantics: semantics,
		ACL:       acl,
		DRP:       appDRP,
		FinalityConfig: finality.Config{
			MinFinalitySigners:  n.cfg.Finality.MinFinalitySigners,
			FinalitySignerRatio: n.cfg.Finality.FinalitySignerRatio,
			Logger:              n.log,
		},
		Logger: n.log,
	}
}

// RegisterObject hosts obj on this node: it subscribes to the object's
// topic, registers its message queue, and starts a DiscoveryRunner that
// searches for peers until the object has at least one.
func (n *Node) RegisterObject(ctx context.Context, obj *object.Object) error {
	n.store.Put(obj)
	obj.Subscribe(n.objectEventHandler(obj))

	if err := n.mq.Subscribe(obj.ID(), n.handleQueueMessage); err != nil {
		return err
	}
	if err := n.net.Subscribe(ctx, network.ObjectTopic(obj.ID())); err != nil {
		return err
	}

	dr := interval.NewDiscoveryRunner(obj.ID(), n.keychain.PeerID(), n.cfg.Discovery.Interval, n.cfg.Discovery.SearchDuration, n.net, n.log)
	n.mu.Lock()
	n.discoveryRunners[obj.ID()] = dr
	n.mu.Unlock()
	dr.Start()
	return nil
}

// UnregisterObject stops hosting id: its DiscoveryRunner is stopped and it
// is dropped from the store. The object's topic subscription is left in
// place, since other objects may still be arriving on the shared adapter.
func (n *Node) UnregisterObject(id string) {
	n.mu.Lock()
	dr, ok := n.discoveryRunners[id]
	delete(n.discoveryRunners, id)
	n.mu.Unlock()
	if ok {
		dr.Stop()
	}
	if obj, ok := n.store.Get(id); ok {
		obj.Close()
	}
	n.store.Delete(id)
}

// dispatchMessage is the adapter's single inbound handler: it routes
// DRP_DISCOVERY traffic to the shared discovery queue and everything else to
// the queue named after the message's object id.
func (n *Node) dispatchMessage(_ context.Context, m network.Message) error {
	id := m.ObjectID
	if m.Type == network.DRPDiscovery || m.Type == network.DRPDiscoveryResponse {
		id = discoveryQueueID
	}
	n.mq.Enqueue(id, m)
	if n.metrics != nil {
		n.metrics.dispatched(m.Type.String())
		n.metrics.observeQueueDepths(n.mq.Depths())
	}
	return nil
}

// handleQueueMessage is invoked by a queue.MessageQueue's dispatcher
// goroutine, one message at a time, in delivery order for that queue.
func (n *Node) handleQueueMessage(m network.Message) error {
	ctx := context.Background()
	switch m.Type {
	case network.FetchState:
		return n.handleFetchState(ctx, m)
	case network.FetchStateResponse:
		return n.handleFetchStateResponse(ctx, m)
	case network.Update:
		return n.handleUpdate(ctx, m)
	case network.Sync:
		return n.handleSync(ctx, m)
	case network.SyncAccept:
		return n.handleSyncAccept(ctx, m)
	case network.SyncReject:
		return nil
	case network.AttestationUpdate:
		return n.handleAttestationUpdate(ctx, m)
	case network.DRPDiscovery:
		return n.handleDiscovery(ctx, m)
	case network.DRPDiscoveryResponse:
		return n.handleDiscoveryResponse(ctx, m)
	case network.Custom:
		if n.customHandler != nil {
			return n.customHandler(ctx, m)
		}
		return nil
	default:
		return nil
	}
}

// objectEventHandler returns obj's subscriber: it signs and broadcasts
// vertices obj commits locally, and signs finality attestations for any
// vertex (local or merged) this node is an eligible signer for.
func (n *Node) objectEventHandler(obj *object.Object) object.EventHandler {
	return func(event any) {
		ctx := context.Background()
		switch e := event.(type) {
		case object.CallEvent:
			sig, err := n.keychain.SignVertex(e.Vertex.Hash)
			if err != nil {
				n.log.Error("sign vertex failed", "objectId", e.ObjectID, "hash", e.Vertex.Hash, "err", err)
				return
			}
			e.Vertex.Signature = sig
			n.broadcastUpdate(ctx, e.ObjectID, []*hashgraph.Vertex{e.Vertex})
			n.signAndBroadcastAttestations(ctx, obj, e.ObjectID, []*hashgraph.Vertex{e.Vertex})
		case object.MergeEvent:
			n.signAndBroadcastAttestations(ctx, obj, e.ObjectID, e.Vertices)
		}
	}
}

func (n *Node) broadcastUpdate(ctx context.Context, objectID string, vertices []*hashgraph.Vertex) {
	wireVertices := make([]network.WireVertex, 0, len(vertices))
	for _, v := range vertices {
		wv, err := network.EncodeVertex(v)
		if err != nil {
			n.log.Error("encode vertex failed", "objectId", objectID, "hash", v.Hash, "err", err)
			continue
		}
		wireVertices = append(wireVertices, wv)
	}
	if len(wireVertices) == 0 {
		return
	}
	payload := network.UpdatePayload{Vertices: wireVertices}
	msg := network.Message{Sender: n.keychain.PeerID(), Type: network.Update, ObjectID: objectID, Data: payload.Marshal()}
	if err := n.net.Broadcast(ctx, network.ObjectTopic(objectID), msg); err != nil {
		n.log.Error("broadcast update failed", "objectId", objectID, "err", err)
	}
}

// signAndBroadcastAttestations signs, with the node's BLS key, every vertex
// this node is a currently-eligible and not-yet-signed finality signer for,
// records the signature locally, and broadcasts the resulting batch as a
// single ATTESTATION_UPDATE.
func (n *Node) signAndBroadcastAttestations(ctx context.Context, obj *object.Object, objectID string, vertices []*hashgraph.Vertex) {
	peerID := n.keychain.PeerID()
	atts := make([]network.Attestation, 0, len(vertices))
	for _, v := range vertices {
		if !obj.FinalityStore().CanSign(peerID, v.Hash) {
			continue
		}
		sig, err := n.keychain.SignAttestation(v.Hash)
		if err != nil {
			n.log.Error("sign attestation failed", "objectId", objectID, "hash", v.Hash, "err", err)
			continue
		}
		added, err := obj.FinalityStore().AddSignatures(peerID, []finality.Attestation{{Data: v.Hash, Signature: sig}}, false)
		if err != nil {
			n.log.Error("record own attestation failed", "objectId", objectID, "hash", v.Hash, "err", err)
			continue
		}
		if len(added) == 0 {
			continue
		}
		atts = append(atts, network.Attestation{Data: v.Hash, Signature: sig})
	}
	if len(atts) == 0 {
		return
	}
	payload := network.AttestationUpdatePayload{Attestations: atts}
	msg := network.Message{Sender: peerID, Type: network.AttestationUpdate, ObjectID: objectID, Data: payload.Marshal()}
	if err := n.net.Broadcast(ctx, network.ObjectTopic(objectID), msg); err != nil {
		n.log.Error("broadcast attestation update failed", "objectId", objectID, "err", err)
	}
}

// handleFetchState serves the (aclState, drpState) recorded at a vertex, if
// this node has it.
func (n *Node) handleFetchState(ctx context.Context, m network.Message) error {
	obj, ok := n.store.Get(m.ObjectID)
	if !ok {
		return nil
	}
	req, err := network.UnmarshalFetchStatePayload(m.Data)
	if err != nil {
		return err
	}
	aclState, drpState, ok := obj.GetState(req.VertexHash)
	if !ok {
		return nil
	}
	wireACL, err := network.EncodeState(aclState)
	if err != nil {
		return err
	}
	wireDRP, err := network.EncodeState(drpState)
	if err != nil {
		return err
	}
	resp := network.FetchStateResponsePayload{VertexHash: req.VertexHash, ACLState: wireACL, DRPState: wireDRP}
	msg := network.Message{Sender: n.keychain.PeerID(), Type: network.FetchStateResponse, ObjectID: m.ObjectID, Data: resp.Marshal()}
	return n.net.Send(ctx, m.Sender, msg)
}

// handleFetchStateResponse installs the received state locally and resolves
// any caller blocked in FetchState waiting for this exact hash.
func (n *Node) handleFetchStateResponse(_ context.Context, m network.Message) error {
	resp, err := network.UnmarshalFetchStateResponsePayload(m.Data)
	if err != nil {
		return err
	}

	key := fetchKey(m.ObjectID, resp.VertexHash)
	n.pendingMu.Lock()
	ch, waiting := n.pending[key]
	n.pendingMu.Unlock()
	if waiting {
		select {
		case ch <- resp:
		default:
		}
	}

	obj, ok := n.store.Get(m.ObjectID)
	if !ok {
		return nil
	}
	aclState, err := network.DecodeState(resp.ACLState)
	if err != nil {
		return err
	}
	drpState, err := network.DecodeState(resp.DRPState)
	if err != nil {
		return err
	}
	obj.InstallState(resp.VertexHash, aclState, drpState)
	return nil
}

// FetchState requests the state recorded at hash from peerID and blocks
// until the response arrives or ctx is done. Concurrent callers requesting
// the same (objectID, hash) share a single outstanding request.
func (n *Node) FetchState(ctx context.Context, objectID, peerID, hash string) ([]drp.StateEntry, []drp.StateEntry, error) {
	if _, ok := n.store.Get(objectID); !ok {
		return nil, nil, ErrUnknownObject
	}

	key := fetchKey(objectID, hash)
	v, err, _ := n.sf.Do(key, func() (any, error) {
		ch := make(chan network.FetchStateResponsePayload, 1)
		n.pendingMu.Lock()
		n.pending[key] = ch
		n.pendingMu.Unlock()
		defer func() {
			n.pendingMu.Lock()
			delete(n.pending, key)
			n.pendingMu.Unlock()
		}()

		req := network.FetchStatePayload{VertexHash: hash}
		msg := network.Message{Sender: n.keychain.PeerID(), Type: network.FetchState, ObjectID: objectID, Data: req.Marshal()}
		if err := n.net.Send(ctx, peerID, msg); err != nil {
			return nil, err
		}
		select {
		case resp := <-ch:
			return resp, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	})
	if err != nil {
		return nil, nil, err
	}

	resp := v.(network.FetchStateResponsePayload)
	aclState, err := network.DecodeState(resp.ACLState)
	if err != nil {
		return nil, nil, err
	}
	drpState, err := network.DecodeState(resp.DRPState)
	if err != nil {
		return nil, nil, err
	}
	return aclState, drpState, nil
}

func fetchKey(objectID, hash string) string { return objectID + "|" + hash }

// handleUpdate verifies each vertex's authorship signature (unless the
// object is permissionless), merges the valid ones, requests any still-
// missing dependencies from the sender, records the sender's attestations,
// and signs and re-broadcasts attestations for any newly-mergeable vertex
// this node is eligible to sign.
func (n *Node) handleUpdate(ctx context.Context, m network.Message) error {
	obj, ok := n.store.Get(m.ObjectID)
	if !ok {
		return nil
	}
	payload, err := network.UnmarshalUpdatePayload(m.Data)
	if err != nil {
		return err
	}

	vertices := make([]*hashgraph.Vertex, 0, len(payload.Vertices))
	for _, wv := range payload.Vertices {
		v, err := network.DecodeVertex(wv)
		if err != nil {
			n.log.Warn("dropping unparseable vertex", "objectId", m.ObjectID, "err", err)
			continue
		}
		vertices = append(vertices, v)
	}
	valid, dropped := validate.FilterValid(vertices, n.isPermissionless(obj))

	accepted, mergeErr := obj.Merge(valid)
	if n.metrics != nil {
		n.metrics.merged(len(accepted), len(dropped))
	}
	if errors.Is(mergeErr, object.ErrSyncNeeded) {
		n.sendSync(ctx, m.ObjectID, m.Sender, missingHashes(obj, valid))
	} else {
		n.clearPendingSync(m.ObjectID)
	}

	if len(payload.Attestations) > 0 {
		atts := make([]finality.Attestation, 0, len(payload.Attestations))
		for _, a := range payload.Attestations {
			atts = append(atts, finality.Attestation{Data: a.Data, Signature: a.Signature})
		}
		if _, err := obj.FinalityStore().AddSignatures(m.Sender, atts, true); err != nil {
			n.log.Warn("dropping attestations from update", "objectId", m.ObjectID, "sender", m.Sender, "err", err)
		}
	}

	n.signAndBroadcastAttestations(ctx, obj, m.ObjectID, accepted)
	return nil
}

func missingHashes(obj *object.Object, vertices []*hashgraph.Vertex) []string {
	var missing []string
	for _, v := range vertices {
		if !obj.HashGraph().Has(v.Hash) {
			missing = append(missing, v.Hash)
		}
	}
	return missing
}

func (n *Node) sendSync(ctx context.Context, objectID, peerID string, hashes []string) {
	if len(hashes) == 0 {
		return
	}
	n.syncMu.Lock()
	n.pendingSync[objectID] = hashes
	n.syncMu.Unlock()

	payload := network.SyncPayload{VertexHashes: hashes}
	msg := network.Message{Sender: n.keychain.PeerID(), Type: network.Sync, ObjectID: objectID, Data: payload.Marshal()}
	if err := n.net.Send(ctx, peerID, msg); err != nil {
		n.log.Error("sync request failed", "objectId", objectID, "peer", peerID, "err", err)
	}
}

func (n *Node) clearPendingSync(objectID string) {
	n.syncMu.Lock()
	delete(n.pendingSync, objectID)
	n.syncMu.Unlock()
}

// handleSync answers with the vertices the sender asked for that this node
// has, plus this node's own currently outstanding sync gap and any cached
// aggregated attestations, so a single round trip can close the loop in
// both directions.
func (n *Node) handleSync(ctx context.Context, m network.Message) error {
	obj, ok := n.store.Get(m.ObjectID)
	if !ok {
		return nil
	}
	req, err := network.UnmarshalSyncPayload(m.Data)
	if err != nil {
		return err
	}

	requested := n.encodeKnownVertices(obj, req.VertexHashes)

	n.syncMu.Lock()
	requesting := append([]string(nil), n.pendingSync[m.ObjectID]...)
	n.syncMu.Unlock()

	n.aggCacheMu.Lock()
	var atts []network.AggregatedAttestation
	for _, a := range n.aggCache[m.ObjectID] {
		atts = append(atts, a)
	}
	n.aggCacheMu.Unlock()

	resp := network.SyncAcceptPayload{Requested: requested, Requesting: requesting, Attestations: atts}
	msg := network.Message{Sender: n.keychain.PeerID(), Type: network.SyncAccept, ObjectID: m.ObjectID, Data: resp.Marshal()}
	return n.net.Send(ctx, m.Sender, msg)
}

func (n *Node) encodeKnownVertices(obj *object.Object, hashes []string) []network.WireVertex {
	out := make([]network.WireVertex, 0, len(hashes))
	for _, hash := range hashes {
		v, ok := obj.HashGraph().GetVertex(hash)
		if !ok {
			continue
		}
		wv, err := network.EncodeVertex(v)
		if err != nil {
			n.log.Error("encode vertex failed", "hash", hash, "err", err)
			continue
		}
		out = append(out, wv)
	}
	return out
}

// handleSyncAccept merges the returned vertices, caches the reported
// aggregated attestations (which, being already aggregated, cannot be
// decomposed back into per-signer contributions the local finality.Store
// can merge), signs attestations for anything newly mergeable, and answers
// any further-requested hashes this node now has.
func (n *Node) handleSyncAccept(ctx context.Context, m network.Message) error {
	obj, ok := n.store.Get(m.ObjectID)
	if !ok {
		return nil
	}
	resp, err := network.UnmarshalSyncAcceptPayload(m.Data)
	if err != nil {
		return err
	}

	vertices := make([]*hashgraph.Vertex, 0, len(resp.Requested))
	for _, wv := range resp.Requested {
		v, err := network.DecodeVertex(wv)
		if err != nil {
			n.log.Warn("dropping unparseable vertex", "objectId", m.ObjectID, "err", err)
			continue
		}
		vertices = append(vertices, v)
	}
	valid, dropped := validate.FilterValid(vertices, n.isPermissionless(obj))

	accepted, mergeErr := obj.Merge(valid)
	if n.metrics != nil {
		n.metrics.merged(len(accepted), len(dropped))
	}
	if errors.Is(mergeErr, object.ErrSyncNeeded) {
		n.sendSync(ctx, m.ObjectID, m.Sender, missingHashes(obj, valid))
	} else {
		n.clearPendingSync(m.ObjectID)
	}

	if len(resp.Attestations) > 0 {
		n.aggCacheMu.Lock()
		if n.aggCache[m.ObjectID] == nil {
			n.aggCache[m.ObjectID] = make(map[string]network.AggregatedAttestation)
		}
		for _, a := range resp.Attestations {
			n.aggCache[m.ObjectID][a.Data] = a
		}
		n.aggCacheMu.Unlock()
	}

	n.signAndBroadcastAttestations(ctx, obj, m.ObjectID, accepted)

	if len(resp.Requesting) == 0 {
		return nil
	}
	further := n.encodeKnownVertices(obj, resp.Requesting)
	if len(further) == 0 {
		return nil
	}
	reply := network.SyncAcceptPayload{Requested: further}
	msg := network.Message{Sender: n.keychain.PeerID(), Type: network.SyncAccept, ObjectID: m.ObjectID, Data: reply.Marshal()}
	return n.net.Send(ctx, m.Sender, msg)
}

// handleAttestationUpdate records the sender's attestations only if it is
// currently an eligible finality signer for the object.
func (n *Node) handleAttestationUpdate(_ context.Context, m network.Message) error {
	obj, ok := n.store.Get(m.ObjectID)
	if !ok {
		return nil
	}
	if !n.isFinalitySigner(obj, m.Sender) {
		return nil
	}
	payload, err := network.UnmarshalAttestationUpdatePayload(m.Data)
	if err != nil {
		return err
	}
	atts := make([]finality.Attestation, 0, len(payload.Attestations))
	for _, a := range payload.Attestations {
		atts = append(atts, finality.Attestation{Data: a.Data, Signature: a.Signature})
	}
	_, err = obj.FinalityStore().AddSignatures(m.Sender, atts, true)
	return err
}

// handleDiscovery answers a DRP_DISCOVERY request with the peers this node
// currently knows are subscribed to the requested object's topic.
func (n *Node) handleDiscovery(ctx context.Context, m network.Message) error {
	peers := n.net.GroupPeers(network.ObjectTopic(m.ObjectID))
	if len(peers) == 0 {
		return nil
	}
	subs := make(map[string]network.PeerAddrs, len(peers))
	for _, p := range peers {
		subs[p] = network.PeerAddrs{}
	}
	resp := network.DiscoveryResponsePayload{Subscribers: subs}
	msg := network.Message{Sender: n.keychain.PeerID(), Type: network.DRPDiscoveryResponse, ObjectID: m.ObjectID, Data: resp.Marshal()}
	return n.net.Send(ctx, m.Sender, msg)
}

// handleDiscoveryResponse dials every reported subscriber this node isn't
// already connected to.
func (n *Node) handleDiscoveryResponse(ctx context.Context, m network.Message) error {
	resp, err := network.UnmarshalDiscoveryResponsePayload(m.Data)
	if err != nil {
		return err
	}
	self := n.keychain.PeerID()
	for peerID, addrs := range resp.Subscribers {
		if peerID == self || n.net.Connected(peerID) {
			continue
		}
		if err := n.net.Connect(ctx, peerID, addrs.Multiaddrs); err != nil {
			n.log.Warn("connect after discovery failed", "peer", peerID, "err", err)
		}
	}
	return nil
}

func (n *Node) isPermissionless(obj *object.Object) bool {
	v, err := obj.QueryACL("query_isPermissionless", nil)
	if err != nil {
		return false
	}
	permissionless, _ := v.(bool)
	return permissionless
}

func (n *Node) isFinalitySigner(obj *object.Object, peerID string) bool {
	v, err := obj.QueryACL("query_isFinalitySigner", []any{peerID})
	if err != nil {
		return false
	}
	ok, _ := v.(bool)
	return ok
}
