// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package aclobj

import "github.com/luxfi/drp/hashgraph"

// Resolver implements hashgraph.ConflictResolver for ACL vertices: a revoke
// always beats a concurrent grant of the same target and group, a setKey
// never conflicts with anything, and every other pairing is left as-is.
type Resolver struct{}

func (Resolver) ResolveConflicts(vs []*hashgraph.Vertex) (hashgraph.ResolveResult, error) {
	nop := hashgraph.ResolveResult{Action: hashgraph.ActionNop}
	if len(vs) != 2 {
		return nop, nil
	}
	a, b := vs[0], vs[1]
	if a.Operation == nil || b.Operation == nil {
		return nop, nil
	}
	if a.Operation.OpType == "setKey" || b.Operation.OpType == "setKey" {
		return nop, nil
	}
	if a.Operation.OpType == "grant" && b.Operation.OpType == "revoke" && sameTargetGroup(a, b) {
		return hashgraph.ResolveResult{Action: hashgraph.ActionDropLeft}, nil
	}
	if a.Operation.OpType == "revoke" && b.Operation.OpType == "grant" && sameTargetGroup(a, b) {
		return hashgraph.ResolveResult{Action: hashgraph.ActionDropRight}, nil
	}
	return nop, nil
}

func sameTargetGroup(a, b *hashgraph.Vertex) bool {
	at, ag := targetGroupOf(a)
	bt, bg := targetGroupOf(b)
	return at == bt && ag == bg
}

func targetGroupOf(v *hashgraph.Vertex) (string, string) {
	if v.Operation == nil || len(v.Operation.Value) < 2 {
		return "", ""
	}
	t, _ := v.Operation.Value[0].(string)
	g, _ := v.Operation.Value[1].(string)
	return t, g
}
