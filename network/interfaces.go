// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package network

import "context"

// DiscoveryTopic is the pubsub topic used to find peers for any object
// before any of its own vertices have been seen.
const DiscoveryTopic = "drp::discovery"

// IntervalDiscoveryTopic is a reserved pubsub topic name. Nothing in this
// module publishes or subscribes to it: DiscoveryRunner ticks publish their
// DRP_DISCOVERY requests on DiscoveryTopic.
const IntervalDiscoveryTopic = "drp::interval-discovery"

// ProtocolID identifies the point-to-point stream protocol used for direct
// sends (as opposed to topic broadcast).
const ProtocolID = "/drp/message/0.0.1"

// ObjectTopic returns the pubsub topic an object's vertices and
// attestations are broadcast on: the object id itself.
func ObjectTopic(objectID string) string { return objectID }

// IncomingHandler is invoked once per received Message, in delivery order.
type IncomingHandler func(ctx context.Context, m Message) error

// Adapter is the boundary between a Node and the underlying transport
// (pubsub mesh, direct streams, peer discovery). Its implementation is out
// of scope here: this interface only fixes the shape a Node depends on.
type Adapter interface {
	// PeerID returns this node's own peer identifier.
	PeerID() string

	// Start begins accepting inbound messages and dialing bootstrap peers.
	Start(ctx context.Context) error

	// Stop tears down all subscriptions and connections.
	Stop(ctx context.Context) error

	// Subscribe joins the topic for objectID (or a reserved topic such as
	// DiscoveryTopic) so its messages are delivered to the handler
	// registered via OnMessage.
	Subscribe(ctx context.Context, topic string) error

	// Unsubscribe leaves a previously joined topic.
	Unsubscribe(ctx context.Context, topic string) error

	// Broadcast publishes m on topic to every subscriber.
	Broadcast(ctx context.Context, topic string, m Message) error

	// Send delivers m directly to peerID over the point-to-point protocol.
	Send(ctx context.Context, peerID string, m Message) error

	// OnMessage registers the single handler invoked for every inbound
	// message regardless of topic; a Node installs exactly one.
	OnMessage(handler IncomingHandler)

	// GroupPeers lists the peers currently known to be subscribed to
	// topic, without performing a new discovery round.
	GroupPeers(topic string) []string

	// Connect dials peerID at one of addrs, recording the connection for
	// GroupPeers and future Send calls.
	Connect(ctx context.Context, peerID string, addrs []string) error

	// Connected reports whether peerID currently has an open connection.
	Connected(peerID string) bool
}
