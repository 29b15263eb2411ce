// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package hashgraph implements the append-only DAG of signed operation
// vertices that backs every replicated object: vertex storage, frontier
// tracking, topological sort, lowest-common-ancestor queries, and
// conflict-resolving linearization.
package hashgraph

import "github.com/luxfi/drp/codec"

// DRPType selects which in-graph object an Operation targets.
type DRPType string

const (
	DRPTypeDRP DRPType = "DRP"
	DRPTypeACL DRPType = "ACL"
)

// RootHash is the fixed sentinel hash of the graph's root vertex.
const RootHash = "rootHash"

// Operation is a serializable call record carried by a non-root Vertex.
type Operation struct {
	DRPType DRPType
	OpType  string
	Value   []any
}

// Vertex is an immutable signed entry in the hash graph.
type Vertex struct {
	Hash         string
	PeerID       string
	Operation    *Operation // nil for the root
	Dependencies []string
	Timestamp    int64 // unix milliseconds
	Signature    []byte
}

// IsRoot reports whether v is the graph's sentinel root vertex.
func (v *Vertex) IsRoot() bool {
	return v.Hash == RootHash
}

// NewRootVertex builds the fixed sentinel root vertex: peerId "",
// no operation, no dependencies, empty signature.
func NewRootVertex() *Vertex {
	return &Vertex{
		Hash:         RootHash,
		PeerID:       "",
		Operation:    nil,
		Dependencies: nil,
		Timestamp:    0,
		Signature:    nil,
	}
}

// ComputeHash recomputes the content-hash of v from its fields. The
// root vertex's hash is the fixed sentinel and is never recomputed.
func ComputeHash(v *Vertex) (string, error) {
	if v.IsRoot() {
		return RootHash, nil
	}

	var drpType, opType string
	var value []any
	hasOp := v.Operation != nil
	if hasOp {
		drpType = string(v.Operation.DRPType)
		opType = v.Operation.OpType
		value = v.Operation.Value
	}
	return codec.ComputeVertexHash(v.PeerID, drpType, opType, value, hasOp, v.Dependencies, v.Timestamp)
}

// NewVertex builds (but does not insert) a Vertex for peerID performing op
// against deps at timestamp, computing its content-hash.
func NewVertex(peerID string, op *Operation, deps []string, timestampMs int64) (*Vertex, error) {
	v := &Vertex{
		PeerID:       peerID,
		Operation:    op,
		Dependencies: append([]string(nil), deps...),
		Timestamp:    timestampMs,
	}
	h, err := ComputeHash(v)
	if err != nil {
		return nil, err
	}
	v.Hash = h
	return v, nil
}
