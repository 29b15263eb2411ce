// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package network defines the wire message envelope and payload types
// carried between nodes, and the Adapter interface the transport layer
// (pubsub mesh, direct streams, peer discovery) must satisfy. The concrete
// transport is out of scope; only the shape peers agree on lives here.
package network

import (
	"github.com/luxfi/drp/codec"
	"github.com/luxfi/drp/drp"
	"github.com/luxfi/drp/hashgraph"
)

// MessageType identifies the payload carried in a Message.
type MessageType uint8

const (
	Unspecified MessageType = iota
	FetchState
	FetchStateResponse
	Update
	Sync
	SyncAccept
	SyncReject
	AttestationUpdate
	DRPDiscovery
	DRPDiscoveryResponse
	Custom
)

func (t MessageType) String() string {
	switch t {
	case FetchState:
		return "FETCH_STATE"
	case FetchStateResponse:
		return "FETCH_STATE_RESPONSE"
	case Update:
		return "UPDATE"
	case Sync:
		return "SYNC"
	case SyncAccept:
		return "SYNC_ACCEPT"
	case SyncReject:
		return "SYNC_REJECT"
	case AttestationUpdate:
		return "ATTESTATION_UPDATE"
	case DRPDiscovery:
		return "DRP_DISCOVERY"
	case DRPDiscoveryResponse:
		return "DRP_DISCOVERY_RESPONSE"
	case Custom:
		return "CUSTOM"
	default:
		return "UNSPECIFIED"
	}
}

// Message is the length-delimited wire envelope: the framing and transport
// are the Adapter's concern, this is just the logical payload.
type Message struct {
	Sender   string
	Type     MessageType
	Data     []byte
	ObjectID string
}

// WireVertex is the over-the-wire form of a hashgraph.Vertex: the
// operation's value tree is pre-encoded with the typed codec so it can
// travel as an opaque byte string.
type WireVertex struct {
	Hash         string
	PeerID       string
	DRPType      string
	OpType       string
	Value        []byte
	Dependencies []string
	Timestamp    int64
	Signature    []byte
	HasOperation bool
}

// EncodeVertex converts a hashgraph.Vertex to its wire form.
func EncodeVertex(v *hashgraph.Vertex) (WireVertex, error) {
	wv := WireVertex{
		Hash:         v.Hash,
		PeerID:       v.PeerID,
		Dependencies: v.Dependencies,
		Timestamp:    v.Timestamp,
		Signature:    v.Signature,
	}
	if v.Operation != nil {
		wv.HasOperation = true
		wv.DRPType = string(v.Operation.DRPType)
		wv.OpType = v.Operation.OpType
		valueBytes, err := codec.Encode(v.Operation.Value)
		if err != nil {
			return WireVertex{}, err
		}
		wv.Value = valueBytes
	}
	return wv, nil
}

// DecodeVertex reconstructs a hashgraph.Vertex from its wire form.
func DecodeVertex(wv WireVertex) (*hashgraph.Vertex, error) {
	v := &hashgraph.Vertex{
		Hash:         wv.Hash,
		PeerID:       wv.PeerID,
		Dependencies: wv.Dependencies,
		Timestamp:    wv.Timestamp,
		Signature:    wv.Signature,
	}
	if wv.HasOperation {
		decoded, err := codec.Decode(wv.Value)
		if err != nil {
			return nil, err
		}
		value, _ := decoded.([]any)
		v.Operation = &hashgraph.Operation{
			DRPType: hashgraph.DRPType(wv.DRPType),
			OpType:  wv.OpType,
			Value:   value,
		}
	}
	return v, nil
}

// Attestation is a single BLS signature over a vertex hash.
type Attestation struct {
	Data      string
	Signature []byte
}

// AggregatedAttestation is a BLS-aggregated signature plus the bitset of
// which signers (by index into the object's finality signer set) it covers.
type AggregatedAttestation struct {
	Data         string
	Signature    []byte
	SignerBitset []byte
}

// StateEntry is the wire form of one drp.StateEntry: its value pre-encoded
// with the typed codec.
type StateEntry struct {
	Key  string
	Data []byte
}

// EncodeState converts a drp.StateEntry list to its wire form, encoding each
// entry's value with the typed codec.
func EncodeState(entries []drp.StateEntry) ([]StateEntry, error) {
	out := make([]StateEntry, 0, len(entries))
	for _, e := range entries {
		data, err := codec.Encode(e.Value)
		if err != nil {
			return nil, err
		}
		out = append(out, StateEntry{Key: e.Key, Data: data})
	}
	return out, nil
}

// DecodeState reconstructs a drp.StateEntry list from its wire form.
func DecodeState(entries []StateEntry) ([]drp.StateEntry, error) {
	out := make([]drp.StateEntry, 0, len(entries))
	for _, e := range entries {
		value, err := codec.Decode(e.Data)
		if err != nil {
			return nil, err
		}
		out = append(out, drp.StateEntry{Key: e.Key, Value: value})
	}
	return out, nil
}

// FetchStatePayload requests the (aclState, drpState) recorded at a vertex.
type FetchStatePayload struct {
	VertexHash string
}

// FetchStateResponsePayload answers a FetchStatePayload.
type FetchStateResponsePayload struct {
	VertexHash string
	ACLState   []StateEntry
	DRPState   []StateEntry
}

// UpdatePayload broadcasts new vertices and any attestations for them.
type UpdatePayload struct {
	Vertices     []WireVertex
	Attestations []Attestation
}

// SyncPayload requests vertices the sender is missing.
type SyncPayload struct {
	VertexHashes []string
}

// SyncAcceptPayload answers a SyncPayload with the requested vertices, the
// hashes the responder itself still lacks, and any known attestations.
type SyncAcceptPayload struct {
	Requested    []WireVertex
	Requesting   []string
	Attestations []AggregatedAttestation
}

// AttestationUpdatePayload carries freshly produced attestations.
type AttestationUpdatePayload struct {
	Attestations []Attestation
}

// DiscoveryPayload is an empty DRP_DISCOVERY request.
type DiscoveryPayload struct{}

// PeerAddrs is one peer's known multiaddrs.
type PeerAddrs struct {
	Multiaddrs []string
}

// DiscoveryResponsePayload answers a DiscoveryPayload with known subscribers
// of the requested object topic.
type DiscoveryResponsePayload struct {
	Subscribers map[string]PeerAddrs
}
