// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package drp declares the interface a replicated data structure implements
// in order to be hosted by a DRPObject: mutating methods reachable through
// Apply, read-only queries reachable through Query, and the state export
// used to snapshot and replay it at any vertex in its hash graph.
package drp

import "github.com/luxfi/drp/hashgraph"

// OpContext carries the identity of the peer whose operation is currently
// being applied or replayed. Mutating methods may inspect it to implement
// caller-gated logic (an admin check, an ownership check, and so on).
type OpContext struct {
	Caller string
}

// StateEntry is one field of a DRP's exported state, keyed by field name.
// A State is the ordered list of entries for every non-function field of a
// DRP instance.
type StateEntry struct {
	Key   string
	Value any
}

// Stateful types can be snapshotted and later reconstituted from a snapshot.
// DRPObject uses this to replay operations starting from the state recorded
// at a vertex's lowest common ancestor rather than from genesis every time.
type Stateful interface {
	ExportState() []StateEntry
	ImportState(entries []StateEntry) error
}

// DRP is a replicated data type hostable by a DRPObject. Mutating operations
// are named by opType and take positional arguments in value; queries are
// named with a "query_" prefix by convention, though DRP itself does not
// enforce the prefix — the pipeline routes by whether the caller asked for
// a query or a mutation.
//
// A DRP may additionally implement hashgraph.ConflictResolver to override
// the default timestamp/hash tie-break when its operations conflict.
type DRP interface {
	Stateful
	SemanticsType() hashgraph.SemanticsType
	Clone() DRP
	Apply(ctx OpContext, opType string, value []any) (any, error)
	Query(opType string, value []any) (any, error)
}
