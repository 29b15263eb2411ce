// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package hashgraph

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// nopResolver always returns Nop, exercising the default tie-break order.
type nopResolver struct{}

func (nopResolver) ResolveConflicts([]*Vertex) (ResolveResult, error) {
	return ResolveResult{Action: ActionNop}, nil
}

func TestLinearizeNoResolverUsesTieBreak(t *testing.T) {
	require := require.New(t)
	g := New(Config{PeerID: "p1", Semantics: SemanticsPair})

	v1, err := addOp(g, "p1", "add", 10, nil)
	require.NoError(err)

	a, err := NewVertex("p1", &Operation{DRPType: DRPTypeDRP, OpType: "delete", Value: []any{int64(1)}}, []string{v1.Hash}, 20)
	require.NoError(err)
	require.NoError(g.AddVertex(a))
	b, err := NewVertex("p2", &Operation{DRPType: DRPTypeDRP, OpType: "add", Value: []any{int64(1)}}, []string{v1.Hash}, 21)
	require.NoError(err)
	require.NoError(g.AddVertex(b))

	order, err := g.LinearizeVertices(RootHash, nil)
	require.NoError(err)
	require.Len(order, 3)
	// a (delete, ts=20) sorts before b (add, ts=21) under the (timestamp,hash) tie-break.
	require.Equal(v1.Hash, order[0].Hash)
	require.Equal(a.Hash, order[1].Hash)
	require.Equal(b.Hash, order[2].Hash)
}

func TestLinearizeReversedTimestampsChangesOrder(t *testing.T) {
	require := require.New(t)
	g := New(Config{PeerID: "p1", Semantics: SemanticsPair, ResolveDRP: nopResolver{}})

	v1, err := addOp(g, "p1", "add", 10, nil)
	require.NoError(err)

	// delete at 30, add at 20: add now sorts first.
	del, err := NewVertex("p1", &Operation{DRPType: DRPTypeDRP, OpType: "delete", Value: []any{int64(1)}}, []string{v1.Hash}, 30)
	require.NoError(err)
	require.NoError(g.AddVertex(del))
	add, err := NewVertex("p2", &Operation{DRPType: DRPTypeDRP, OpType: "add", Value: []any{int64(1)}}, []string{v1.Hash}, 20)
	require.NoError(err)
	require.NoError(g.AddVertex(add))

	order, err := g.LinearizeVertices(RootHash, nil)
	require.NoError(err)
	require.Equal(add.Hash, order[1].Hash)
	require.Equal(del.Hash, order[2].Hash)
}

// revokeWinsACL implements a grant/revoke resolver: when exactly one of a
// concurrent pair is revoke and the other grant, the grant is dropped; the
// operations' targets and groups are not compared.
type revokeWinsACL struct{}

func (revokeWinsACL) ResolveConflicts(vs []*Vertex) (ResolveResult, error) {
	if len(vs) != 2 {
		return ResolveResult{Action: ActionNop}, nil
	}
	a, b := vs[0], vs[1]
	if a.Operation.OpType == "grant" && b.Operation.OpType == "revoke" {
		return ResolveResult{Action: ActionDropLeft}, nil
	}
	if a.Operation.OpType == "revoke" && b.Operation.OpType == "grant" {
		return ResolveResult{Action: ActionDropRight}, nil
	}
	return ResolveResult{Action: ActionNop}, nil
}

func TestACLRevokeWinsOverConcurrentGrant(t *testing.T) {
	require := require.New(t)
	g := New(Config{PeerID: "p1", Semantics: SemanticsPair, ResolveACL: revokeWinsACL{}})

	base, err := NewVertex("p1", &Operation{DRPType: DRPTypeACL, OpType: "grant", Value: []any{"p2", "Writer"}}, g.GetFrontier(), 5)
	require.NoError(err)
	require.NoError(g.AddVertex(base))

	grant, err := NewVertex("p1", &Operation{DRPType: DRPTypeACL, OpType: "grant", Value: []any{"p3", "Writer"}}, []string{base.Hash}, 10)
	require.NoError(err)
	require.NoError(g.AddVertex(grant))
	revoke, err := NewVertex("p1", &Operation{DRPType: DRPTypeACL, OpType: "revoke", Value: []any{"p3", "Writer"}}, []string{base.Hash}, 11)
	require.NoError(err)
	require.NoError(g.AddVertex(revoke))

	order, err := g.LinearizeVertices(RootHash, nil)
	require.NoError(err)

	var sawGrant bool
	for _, v := range order {
		if v.Hash == grant.Hash {
			sawGrant = true
		}
	}
	require.False(sawGrant, "concurrent grant must be dropped when revoke wins")
}

func TestACLOrdersBeforeDRPInSameLayer(t *testing.T) {
	require := require.New(t)
	g := New(Config{PeerID: "p1", Semantics: SemanticsPair})

	root := g.GetFrontier()
	aclOp, err := NewVertex("p1", &Operation{DRPType: DRPTypeACL, OpType: "grant", Value: []any{"p2", "Writer"}}, root, 10)
	require.NoError(err)
	require.NoError(g.AddVertex(aclOp))
	drpOp, err := NewVertex("p1", &Operation{DRPType: DRPTypeDRP, OpType: "add", Value: []any{int64(1)}}, root, 10)
	require.NoError(err)
	require.NoError(g.AddVertex(drpOp))

	order, err := g.LinearizeVertices(RootHash, nil)
	require.NoError(err)
	require.Equal(aclOp.Hash, order[0].Hash)
	require.Equal(drpOp.Hash, order[1].Hash)
}
