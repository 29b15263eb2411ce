// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package aclobj implements ObjectACL, the built-in access-control DRP every
// DRPObject carries alongside its optional application DRP. It governs who
// may write application operations, who may sign finality attestations, and
// who may mutate the ACL itself.
package aclobj

import (
	"github.com/luxfi/drp/drp"
	"github.com/luxfi/drp/hashgraph"
)

var (
	_ drp.DRP                    = (*ACL)(nil)
	_ hashgraph.ConflictResolver = Resolver{}
)

// Group names a permission bucket a peer can hold.
type Group string

const (
	Admin    Group = "Admin"
	Writer   Group = "Writer"
	Finality Group = "Finality"
)

func validGroup(g Group) bool {
	switch g {
	case Admin, Writer, Finality:
		return true
	default:
		return false
	}
}

// PeerEntry is one authorized peer's permission set and registered BLS key.
type PeerEntry struct {
	Permissions  map[Group]struct{}
	BLSPublicKey []byte
}

func (e *PeerEntry) clone() *PeerEntry {
	perms := make(map[Group]struct{}, len(e.Permissions))
	for g := range e.Permissions {
		perms[g] = struct{}{}
	}
	return &PeerEntry{
		Permissions:  perms,
		BLSPublicKey: append([]byte(nil), e.BLSPublicKey...),
	}
}

func (e *PeerEntry) has(g Group) bool {
	_, ok := e.Permissions[g]
	return ok
}

// ACL is the ObjectACL state: the admin set, every peer that has ever been
// granted a permission or registered a key, and the permissionless flag.
type ACL struct {
	Admins          map[string]struct{}
	AuthorizedPeers map[string]*PeerEntry
	Permissionless  bool
}

// New returns an ACL seeded with admins, each granted the Admin group.
func New(admins []string, permissionless bool) *ACL {
	a := &ACL{
		Admins:          make(map[string]struct{}, len(admins)),
		AuthorizedPeers: make(map[string]*PeerEntry),
		Permissionless:  permissionless,
	}
	for _, p := range admins {
		a.Admins[p] = struct{}{}
		a.entry(p).Permissions[Admin] = struct{}{}
	}
	return a
}

func (a *ACL) entry(peer string) *PeerEntry {
	e, ok := a.AuthorizedPeers[peer]
	if !ok {
		e = &PeerEntry{Permissions: make(map[Group]struct{})}
		a.AuthorizedPeers[peer] = e
	}
	return e
}

func (a *ACL) isAdmin(peer string) bool {
	_, ok := a.Admins[peer]
	return ok
}

// SemanticsType reports that ACL vertices are resolved in adjacent pairs.
func (a *ACL) SemanticsType() hashgraph.SemanticsType { return hashgraph.SemanticsPair }

// Clone returns a deep copy suitable for replaying operations against
// without mutating the stored state.
func (a *ACL) Clone() drp.DRP {
	clone := &ACL{
		Admins:          make(map[string]struct{}, len(a.Admins)),
		AuthorizedPeers: make(map[string]*PeerEntry, len(a.AuthorizedPeers)),
		Permissionless:  a.Permissionless,
	}
	for p := range a.Admins {
		clone.Admins[p] = struct{}{}
	}
	for p, e := range a.AuthorizedPeers {
		clone.AuthorizedPeers[p] = e.clone()
	}
	return clone
}

// Apply dispatches a mutating operation by name.
func (a *ACL) Apply(ctx drp.OpContext, opType string, value []any) (any, error) {
	switch opType {
	case "grant":
		target, group, err := targetAndGroup(value)
		if err != nil {
			return nil, err
		}
		return nil, a.grant(ctx.Caller, target, group)
	case "revoke":
		target, group, err := targetAndGroup(value)
		if err != nil {
			return nil, err
		}
		return nil, a.revoke(ctx.Caller, target, group)
	case "setKey":
		if len(value) != 1 {
			return nil, ErrInvalidArguments
		}
		key, ok := value[0].([]byte)
		if !ok {
			return nil, ErrInvalidArguments
		}
		return nil, a.setKey(ctx.Caller, key)
	default:
		return nil, ErrUnknownOperation
	}
}

func targetAndGroup(value []any) (string, Group, error) {
	if len(value) != 2 {
		return "", "", ErrInvalidArguments
	}
	target, ok := value[0].(string)
	if !ok {
		return "", "", ErrInvalidArguments
	}
	groupStr, ok := value[1].(string)
	if !ok {
		return "", "", ErrInvalidArguments
	}
	group := Group(groupStr)
	if !validGroup(group) {
		return "", "", ErrUnknownGroup
	}
	return target, group, nil
}

func (a *ACL) grant(caller, target string, group Group) error {
	if !a.isAdmin(caller) {
		return ErrNotAdmin
	}
	if group == Writer && a.Permissionless {
		return ErrPermissionlessForbidsWriterGrant
	}
	e := a.entry(target)
	e.Permissions[group] = struct{}{}
	if group == Admin {
		a.Admins[target] = struct{}{}
	}
	return nil
}

func (a *ACL) revoke(caller, target string, group Group) error {
	if !a.isAdmin(caller) {
		return ErrNotAdmin
	}
	if a.isAdmin(target) {
		return ErrCannotRevokeFromAdmin
	}
	if e, ok := a.AuthorizedPeers[target]; ok {
		delete(e.Permissions, group)
	}
	return nil
}

// setKey always records the key; whether it has any effect depends on
// whether the caller holds Finality at query time.
func (a *ACL) setKey(caller string, key []byte) error {
	e := a.entry(caller)
	e.BLSPublicKey = append([]byte(nil), key...)
	return nil
}

// QueryIsAdmin reports whether peer is in the admin set.
func (a *ACL) QueryIsAdmin(peer string) bool { return a.isAdmin(peer) }

// QueryIsWriter reports whether peer may write DRP operations: admins and
// the Writer group always may; any registered peer may when the object is
// permissionless.
func (a *ACL) QueryIsWriter(peer string) bool {
	if a.isAdmin(peer) {
		return true
	}
	e, ok := a.AuthorizedPeers[peer]
	if !ok {
		return false
	}
	if e.has(Writer) {
		return true
	}
	return a.Permissionless
}

// QueryIsPermissionless reports whether the object accepts writes from any
// registered peer regardless of Writer grants.
func (a *ACL) QueryIsPermissionless() bool { return a.Permissionless }

// QueryIsFinalitySigner reports whether peer currently holds Finality.
func (a *ACL) QueryIsFinalitySigner(peer string) bool {
	e, ok := a.AuthorizedPeers[peer]
	return ok && e.has(Finality)
}

// QueryGetFinalitySigners returns the registered BLS key of every peer
// currently in the Finality group that has set one.
func (a *ACL) QueryGetFinalitySigners() map[string][]byte {
	out := make(map[string][]byte)
	for peer, e := range a.AuthorizedPeers {
		if e.has(Finality) && len(e.BLSPublicKey) > 0 {
			out[peer] = append([]byte(nil), e.BLSPublicKey...)
		}
	}
	return out
}

// QueryGetPeerKey returns the BLS key a peer has registered, if any.
func (a *ACL) QueryGetPeerKey(peer string) ([]byte, bool) {
	e, ok := a.AuthorizedPeers[peer]
	if !ok || len(e.BLSPublicKey) == 0 {
		return nil, false
	}
	return append([]byte(nil), e.BLSPublicKey...), true
}

// Query dispatches a read-only query by name.
func (a *ACL) Query(opType string, value []any) (any, error) {
	var peer string
	if len(value) > 0 {
		p, ok := value[0].(string)
		if !ok && opType != "query_getFinalitySigners" {
			return nil, ErrInvalidArguments
		}
		peer = p
	}
	switch opType {
	case "query_isAdmin":
		return a.QueryIsAdmin(peer), nil
	case "query_isWriter":
		return a.QueryIsWriter(peer), nil
	case "query_isFinalitySigner":
		return a.QueryIsFinalitySigner(peer), nil
	case "query_isPermissionless":
		return a.QueryIsPermissionless(), nil
	case "query_getFinalitySigners":
		return a.QueryGetFinalitySigners(), nil
	case "query_getPeerKey":
		key, ok := a.QueryGetPeerKey(peer)
		if !ok {
			return nil, nil
		}
		return key, nil
	default:
		return nil, ErrUnknownQuery
	}
}

// ExportState returns the ordered field snapshot used by DRPObject to store
// and replay ACL state at a hash graph vertex.
func (a *ACL) ExportState() []drp.StateEntry {
	admins := make([]string, 0, len(a.Admins))
	for p := range a.Admins {
		admins = append(admins, p)
	}
	peers := make(map[string]*PeerEntry, len(a.AuthorizedPeers))
	for p, e := range a.AuthorizedPeers {
		peers[p] = e.clone()
	}
	return []drp.StateEntry{
		{Key: "admins", Value: admins},
		{Key: "authorizedPeers", Value: peers},
		{Key: "permissionless", Value: a.Permissionless},
	}
}

// ImportState restores a previously exported snapshot.
func (a *ACL) ImportState(entries []drp.StateEntry) error {
	for _, e := range entries {
		switch e.Key {
		case "admins":
			admins, ok := e.Value.([]string)
			if !ok {
				return ErrInvalidStateEntry
			}
			a.Admins = make(map[string]struct{}, len(admins))
			for _, p := range admins {
				a.Admins[p] = struct{}{}
			}
		case "authorizedPeers":
			peers, ok := e.Value.(map[string]*PeerEntry)
			if !ok {
				return ErrInvalidStateEntry
			}
			a.AuthorizedPeers = make(map[string]*PeerEntry, len(peers))
			for p, pe := range peers {
				a.AuthorizedPeers[p] = pe.clone()
			}
		case "permissionless":
			pl, ok := e.Value.(bool)
			if !ok {
				return ErrInvalidStateEntry
			}
			a.Permissionless = pl
		default:
			return ErrInvalidStateEntry
		}
	}
	return nil
}
