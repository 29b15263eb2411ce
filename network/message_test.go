// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package network

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/drp/drp"
	"github.com/luxfi/drp/hashgraph"
)

func TestMessageRoundTrip(t *testing.T) {
	m := Message{Sender: "p1", Type: Update, Data: []byte("payload"), ObjectID: "obj-1"}
	got, err := UnmarshalMessage(m.Marshal())
	require.NoError(t, err)
	require.Equal(t, m, got)
}

func TestEncodeDecodeVertexRoundTrip(t *testing.T) {
	v, err := hashgraph.NewVertex("p1", &hashgraph.Operation{
		DRPType: hashgraph.DRPTypeDRP,
		OpType:  "add",
		Value:   []any{int64(1)},
	}, []string{hashgraph.RootHash}, 1000)
	require.NoError(t, err)
	v.Signature = []byte("sig")

	wv, err := EncodeVertex(v)
	require.NoError(t, err)

	got, err := DecodeVertex(wv)
	require.NoError(t, err)
	require.Equal(t, v.Hash, got.Hash)
	require.Equal(t, v.PeerID, got.PeerID)
	require.Equal(t, v.Dependencies, got.Dependencies)
	require.Equal(t, v.Timestamp, got.Timestamp)
	require.Equal(t, v.Signature, got.Signature)
	require.Equal(t, v.Operation.DRPType, got.Operation.DRPType)
	require.Equal(t, v.Operation.OpType, got.Operation.OpType)
	require.Equal(t, v.Operation.Value, got.Operation.Value)
}

func TestEncodeDecodeStateRoundTrip(t *testing.T) {
	entries := []drp.StateEntry{
		{Key: "a", Value: int64(1)},
		{Key: "b", Value: "hello"},
	}
	wire, err := EncodeState(entries)
	require.NoError(t, err)

	got, err := DecodeState(wire)
	require.NoError(t, err)
	require.Equal(t, entries, got)
}

func TestUpdatePayloadRoundTrip(t *testing.T) {
	p := UpdatePayload{
		Vertices: []WireVertex{
			{Hash: "h1", PeerID: "p1", HasOperation: true, DRPType: "DRP", OpType: "add", Value: []byte{1, 2, 3}, Dependencies: []string{hashgraph.RootHash}, Timestamp: 5, Signature: []byte("sig1")},
		},
		Attestations: []Attestation{{Data: "h1", Signature: []byte("sig")}},
	}
	got, err := UnmarshalUpdatePayload(p.Marshal())
	require.NoError(t, err)
	require.Equal(t, p, got)
}

func TestSyncAcceptPayloadRoundTrip(t *testing.T) {
	p := SyncAcceptPayload{
		Requested: []WireVertex{
			{Hash: "h1", PeerID: "p1", Dependencies: []string{hashgraph.RootHash}, Value: []byte{}, Signature: []byte{}},
		},
		Requesting: []string{"h2", "h3"},
		Attestations: []AggregatedAttestation{
			{Data: "h1", Signature: []byte("agg"), SignerBitset: []byte{0b0000_0011}},
		},
	}
	got, err := UnmarshalSyncAcceptPayload(p.Marshal())
	require.NoError(t, err)
	require.Equal(t, p, got)
}

func TestDiscoveryResponsePayloadRoundTrip(t *testing.T) {
	p := DiscoveryResponsePayload{
		Subscribers: map[string]PeerAddrs{
			"p1": {Multiaddrs: []string{"/ip4/1.2.3.4/tcp/1"}},
		},
	}
	got, err := UnmarshalDiscoveryResponsePayload(p.Marshal())
	require.NoError(t, err)
	require.Equal(t, p, got)
}

func TestFetchStateResponsePayloadRoundTrip(t *testing.T) {
	p := FetchStateResponsePayload{
		VertexHash: "h1",
		ACLState:   []StateEntry{{Key: "k", Data: []byte{9}}},
		DRPState:   []StateEntry{},
	}
	got, err := UnmarshalFetchStateResponsePayload(p.Marshal())
	require.NoError(t, err)
	require.Equal(t, p, got)
}
