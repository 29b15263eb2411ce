// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package aclobj

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/drp/drp"
	"github.com/luxfi/drp/hashgraph"
)

func TestGrantRequiresAdmin(t *testing.T) {
	require := require.New(t)
	a := New([]string{"admin1"}, false)

	_, err := a.Apply(drp.OpContext{Caller: "notadmin"}, "grant", []any{"p2", string(Writer)})
	require.ErrorIs(err, ErrNotAdmin)

	_, err = a.Apply(drp.OpContext{Caller: "admin1"}, "grant", []any{"p2", string(Writer)})
	require.NoError(err)
	require.True(a.QueryIsWriter("p2"))
}

func TestGrantWriterForbiddenWhenPermissionless(t *testing.T) {
	require := require.New(t)
	a := New([]string{"admin1"}, true)
	_, err := a.Apply(drp.OpContext{Caller: "admin1"}, "grant", []any{"p2", string(Writer)})
	require.ErrorIs(err, ErrPermissionlessForbidsWriterGrant)
}

func TestPermissionlessAnyKnownPeerIsWriter(t *testing.T) {
	require := require.New(t)
	a := New([]string{"admin1"}, true)
	require.False(a.QueryIsWriter("p2"))
	_, err := a.Apply(drp.OpContext{Caller: "p2"}, "setKey", []any{[]byte{1, 2, 3}})
	require.NoError(err)
	require.True(a.QueryIsWriter("p2"))
}

func TestQueryIsPermissionlessReflectsConstruction(t *testing.T) {
	require := require.New(t)
	require.False(New([]string{"admin1"}, false).QueryIsPermissionless())
	require.True(New([]string{"admin1"}, true).QueryIsPermissionless())

	a := New([]string{"admin1"}, true)
	v, err := a.Query("query_isPermissionless", nil)
	require.NoError(err)
	require.Equal(true, v)
}

func TestRevokeCannotTargetAdmin(t *testing.T) {
	require := require.New(t)
	a := New([]string{"admin1", "admin2"}, false)
	_, err := a.Apply(drp.OpContext{Caller: "admin1"}, "revoke", []any{"admin2", string(Writer)})
	require.ErrorIs(err, ErrCannotRevokeFromAdmin)
}

func TestSetKeyEffectiveOnceFinalityGranted(t *testing.T) {
	require := require.New(t)
	a := New([]string{"admin1"}, false)
	_, err := a.Apply(drp.OpContext{Caller: "p2"}, "setKey", []any{[]byte{9, 9}})
	require.NoError(err)
	require.Empty(a.QueryGetFinalitySigners())

	_, err = a.Apply(drp.OpContext{Caller: "admin1"}, "grant", []any{"p2", string(Finality)})
	require.NoError(err)
	signers := a.QueryGetFinalitySigners()
	require.Equal([]byte{9, 9}, signers["p2"])
}

func TestSetKeyBeforeWriterGrantIsPreservedAcrossGrant(t *testing.T) {
	require := require.New(t)
	a := New([]string{"admin1"}, false)

	_, err := a.Apply(drp.OpContext{Caller: "admin1"}, "grant", []any{"p2", string(Finality)})
	require.NoError(err)
	_, err = a.Apply(drp.OpContext{Caller: "p2"}, "setKey", []any{[]byte("K2")})
	require.NoError(err)

	require.False(a.QueryIsWriter("p2"))
	key, ok := a.QueryGetPeerKey("p2")
	require.True(ok)
	require.Equal([]byte("K2"), key)

	_, err = a.Apply(drp.OpContext{Caller: "admin1"}, "grant", []any{"p2", string(Writer)})
	require.NoError(err)
	require.True(a.QueryIsWriter("p2"))
	key, ok = a.QueryGetPeerKey("p2")
	require.True(ok)
	require.Equal([]byte("K2"), key)
}

func TestCloneIsIndependent(t *testing.T) {
	require := require.New(t)
	a := New([]string{"admin1"}, false)
	cloneAny := a.Clone()
	clone := cloneAny.(*ACL)

	_, err := a.Apply(drp.OpContext{Caller: "admin1"}, "grant", []any{"p2", string(Writer)})
	require.NoError(err)
	require.False(clone.QueryIsWriter("p2"))
}

func TestExportImportStateRoundTrip(t *testing.T) {
	require := require.New(t)
	a := New([]string{"admin1"}, true)
	_, err := a.Apply(drp.OpContext{Caller: "admin1"}, "grant", []any{"p2", string(Finality)})
	require.NoError(err)
	_, err = a.Apply(drp.OpContext{Caller: "p2"}, "setKey", []any{[]byte{7}})
	require.NoError(err)

	state := a.ExportState()
	restored := &ACL{}
	require.NoError(restored.ImportState(state))

	require.True(restored.QueryIsAdmin("admin1"))
	require.True(restored.QueryIsFinalitySigner("p2"))
	key, ok := restored.QueryGetPeerKey("p2")
	require.True(ok)
	require.Equal([]byte{7}, key)
	require.True(restored.Permissionless)
}

func TestResolverRevokeWinsOverGrant(t *testing.T) {
	require := require.New(t)
	grant := &hashgraph.Vertex{Hash: "a", Operation: &hashgraph.Operation{OpType: "grant", Value: []any{"p2", string(Writer)}}}
	revoke := &hashgraph.Vertex{Hash: "b", Operation: &hashgraph.Operation{OpType: "revoke", Value: []any{"p2", string(Writer)}}}

	res, err := (Resolver{}).ResolveConflicts([]*hashgraph.Vertex{grant, revoke})
	require.NoError(err)
	require.Equal(hashgraph.ActionDropLeft, res.Action)

	res, err = (Resolver{}).ResolveConflicts([]*hashgraph.Vertex{revoke, grant})
	require.NoError(err)
	require.Equal(hashgraph.ActionDropRight, res.Action)
}

func TestResolverSetKeyNeverConflicts(t *testing.T) {
	require := require.New(t)
	setKey := &hashgraph.Vertex{Hash: "a", Operation: &hashgraph.Operation{OpType: "setKey", Value: []any{[]byte{1}}}}
	grant := &hashgraph.Vertex{Hash: "b", Operation: &hashgraph.Operation{OpType: "grant", Value: []any{"p2", string(Writer)}}}

	res, err := (Resolver{}).ResolveConflicts([]*hashgraph.Vertex{setKey, grant})
	require.NoError(err)
	require.Equal(hashgraph.ActionNop, res.Action)
}
