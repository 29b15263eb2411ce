// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package object implements DRPObject, the runtime that intercepts calls on
// an ACL and an optional application DRP, turns each accepted mutation into
// a hash graph vertex, and replays the operation pipeline to reconstruct
// state at any point in the graph.
package object

import (
	"reflect"
	"sync"

	"github.com/luxfi/drp/aclobj"
	"github.com/luxfi/drp/drp"
	"github.com/luxfi/drp/finality"
	"github.com/luxfi/drp/hashgraph"
	"github.com/luxfi/drp/queue"
	"github.com/luxfi/log"
)

// eventQueueCapacity bounds how many CallEvent/MergeEvent notifications may
// be outstanding before a mutation blocks waiting for subscribers to drain.
const eventQueueCapacity = 64

// CallEvent is emitted to subscribers after a local mutation commits a new
// vertex. Node uses it to sign the vertex and broadcast it.
type CallEvent struct {
	ObjectID string
	Vertex   *hashgraph.Vertex
}

// MergeEvent is emitted once per batch after remote vertices are merged.
type MergeEvent struct {
	ObjectID string
	Vertices []*hashgraph.Vertex
}

// EventHandler receives CallEvent and MergeEvent values.
type EventHandler func(event any)

// Config configures a new Object.
type Config struct {
	ID             string
	PeerID         string
	Semantics      hashgraph.SemanticsType
	ACL            *aclobj.ACL
	DRP            drp.DRP
	FinalityConfig finality.Config
	Logger         log.Logger
	Now            func() int64
}

// Object is a DRPObject: a hash graph paired with the ACL and application
// DRP it replicates, and the machinery to apply, merge, and query them.
type Object struct {
	mu  sync.RWMutex
	log log.Logger

	id string
	hg *hashgraph.HashGraph

	originalACL *aclobj.ACL
	originalDRP drp.DRP

	acl     *aclobj.ACL
	userDRP drp.DRP

	aclStates map[string][]drp.StateEntry
	drpStates map[string][]drp.StateEntry

	finalityStore *finality.Store
	events        *queue.MessageQueue[any]
}

// New constructs an Object seeded with the given ACL and optional DRP.
func New(cfg Config) *Object {
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewNoOpLogger()
	}

	var resolveDRP hashgraph.ConflictResolver
	if r, ok := any(cfg.DRP).(hashgraph.ConflictResolver); ok {
		resolveDRP = r
	}

	hg := hashgraph.New(hashgraph.Config{
		PeerID:     cfg.PeerID,
		Semantics:  cfg.Semantics,
		ResolveACL: aclobj.Resolver{},
		ResolveDRP: resolveDRP,
		Logger:     logger,
		Now:        cfg.Now,
	})

	o := &Object{
		log:           logger,
		id:            cfg.ID,
		hg:            hg,
		originalACL:   cfg.ACL,
		originalDRP:   cfg.DRP,
		acl:           cfg.ACL.Clone().(*aclobj.ACL),
		aclStates:     map[string][]drp.StateEntry{hashgraph.RootHash: cfg.ACL.ExportState()},
		drpStates:     make(map[string][]drp.StateEntry),
		finalityStore: finality.New(cfg.FinalityConfig),
		events:        queue.NewMessageQueue[any](eventQueueCapacity, logger),
	}
	if cfg.DRP != nil {
		o.userDRP = cfg.DRP.Clone()
		o.drpStates[hashgraph.RootHash] = cfg.DRP.ExportState()
	}
	o.finalityStore.InitializeState(hashgraph.RootHash, o.acl.QueryGetFinalitySigners())
	return o
}

// ID returns the object's identifier.
func (o *Object) ID() string { return o.id }

// HashGraph returns the underlying hash graph.
func (o *Object) HashGraph() *hashgraph.HashGraph { return o.hg }

// FinalityStore returns the object's attestation store.
func (o *Object) FinalityStore() *finality.Store { return o.finalityStore }

// Subscribe registers h to receive CallEvent and MergeEvent notifications.
// h runs on the object's own event-dispatch goroutine, never on the
// goroutine that produced the event, so it is safe for h to call back into
// the Object (CallACL, CallDRP, queries) without deadlocking against the
// mutation that triggered it.
func (o *Object) Subscribe(h EventHandler) {
	o.events.Subscribe(func(event any) error {
		h(event)
		return nil
	})
}

// Close stops the object's event-dispatch goroutine. Subsequent CallACL,
// CallDRP, and Merge calls still succeed; their events are simply dropped.
func (o *Object) Close() { o.events.Close() }

// notify enqueues event for asynchronous delivery to subscribers. Called
// while o.mu is held; it only blocks if eventQueueCapacity outstanding
// events haven't yet been drained by subscribers.
func (o *Object) notify(event any) {
	if err := o.events.Enqueue(event); err != nil {
		o.log.Warn("dropping event after object closed", "objectId", o.id)
	}
}

// CallACL invokes a mutating ACL operation through the pipeline.
func (o *Object) CallACL(opType string, value []any) (any, error) {
	return o.call(true, opType, value)
}

// CallDRP invokes a mutating application-DRP operation through the pipeline.
func (o *Object) CallDRP(opType string, value []any) (any, error) {
	return o.call(false, opType, value)
}

// QueryACL invokes a read-only ACL query against live state, bypassing the
// pipeline entirely.
func (o *Object) QueryACL(opType string, value []any) (any, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.acl.Query(opType, value)
}

// QueryDRP invokes a read-only application-DRP query against live state.
func (o *Object) QueryDRP(opType string, value []any) (any, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.userDRP == nil {
		return nil, ErrNoDRP
	}
	return o.userDRP.Query(opType, value)
}

// call runs stages 1 and 3-13 of the operation pipeline for a
// locally-originated mutation; the vertex checks of stage 2 are left to
// hashgraph.AddVertex at stage 11.
func (o *Object) call(isACL bool, opType string, value []any) (any, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	drpType := hashgraph.DRPTypeDRP
	if isACL {
		drpType = hashgraph.DRPTypeACL
	}

	// Stage 1: createVertex.
	vertex, err := o.hg.CreateVertex(&hashgraph.Operation{DRPType: drpType, OpType: opType, Value: value}, nil, 0)
	if err != nil {
		return nil, err
	}

	// Stage 3: getLCA.
	lca, linearizedBetween, err := o.hg.LowestCommonAncestor(vertex.Dependencies)
	if err != nil {
		return nil, err
	}

	// Stage 4: splitLCAOperation.
	aclVertices, drpVertices := splitByType(linearizedBetween)

	// Stage 5: computeOperation.
	clonedACL, clonedDRP, err := o.stateAtLCA(lca, aclVertices, drpVertices)
	if err != nil {
		return nil, err
	}

	// Stage 6: validateWriterPermission.
	if !isACL {
		if clonedDRP == nil {
			return nil, ErrNoDRP
		}
		if !clonedACL.QueryIsWriter(o.hg.PeerID()) {
			return nil, ErrNotAWriter
		}
	}

	before := exportOf(isACL, clonedACL, clonedDRP)

	// Stage 7: applyFn.
	ctx := drp.OpContext{Caller: o.hg.PeerID()}
	var result any
	if isACL {
		result, err = clonedACL.Apply(ctx, opType, value)
	} else {
		result, err = clonedDRP.Apply(ctx, opType, value)
	}
	if err != nil {
		return nil, err
	}

	// Stage 8: equal.
	after := exportOf(isACL, clonedACL, clonedDRP)
	if statesEqual(before, after) {
		return result, nil
	}

	// Stage 9: assign.
	if isACL {
		o.acl = clonedACL
	} else {
		o.userDRP = clonedDRP
	}

	// Stage 10: assignState.
	o.aclStates[vertex.Hash] = clonedACL.ExportState()
	if clonedDRP != nil {
		o.drpStates[vertex.Hash] = clonedDRP.ExportState()
	}

	// Stage 11: addVertexToHashGraph.
	if err := o.hg.AddVertex(vertex); err != nil {
		return nil, err
	}

	// Stage 12: initializeFinalityStore.
	o.finalityStore.InitializeState(vertex.Hash, clonedACL.QueryGetFinalitySigners())

	// Stage 13: notify.
	o.notify(CallEvent{ObjectID: o.id, Vertex: vertex})

	return result, nil
}

// Merge applies remote vertices, accepting as many as have their
// dependencies already satisfied. It returns the accepted subset; if any
// vertex could not be applied for lack of a dependency, it also returns
// ErrSyncNeeded so the caller (Node) knows to initiate a sync with the
// sender.
func (o *Object) Merge(vertices []*hashgraph.Vertex) ([]*hashgraph.Vertex, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	remaining := append([]*hashgraph.Vertex(nil), vertices...)
	var accepted []*hashgraph.Vertex

	for len(remaining) > 0 {
		var next []*hashgraph.Vertex
		progressed := false
		for _, v := range remaining {
			if o.hg.Has(v.Hash) {
				continue
			}
			if err := o.mergeOne(v); err != nil {
				if err == hashgraph.ErrMissingDependency {
					next = append(next, v)
					continue
				}
				o.log.Warn("dropping vertex during merge", "hash", v.Hash, "err", err)
				continue
			}
			accepted = append(accepted, v)
			progressed = true
		}
		if !progressed {
			remaining = next
			break
		}
		remaining = next
	}

	if err := o.refreshLiveStateLocked(); err != nil {
		return accepted, err
	}

	if len(accepted) > 0 {
		o.notify(MergeEvent{ObjectID: o.id, Vertices: accepted})
	}
	if len(remaining) > 0 {
		return accepted, ErrSyncNeeded
	}
	return accepted, nil
}

// mergeOne runs stages 2, 3, 4, 5, 6, 7, 10, 11, 12 for one remote vertex.
// Stages 8 (equal), 9 (assign), and 13 (notify) are batch-level: the live
// proxies are recomputed once after the whole merge via
// refreshLiveStateLocked, and a single MergeEvent is emitted by the caller.
func (o *Object) mergeOne(v *hashgraph.Vertex) error {
	for _, d := range v.Dependencies {
		if !o.hg.Has(d) {
			return hashgraph.ErrMissingDependency
		}
	}
	if !v.IsRoot() {
		want, err := hashgraph.ComputeHash(v)
		if err != nil {
			return err
		}
		if want != v.Hash {
			return hashgraph.ErrInvalidHash
		}
	}

	lca, linearizedBetween, err := o.hg.LowestCommonAncestor(v.Dependencies)
	if err != nil {
		return err
	}
	aclVertices, drpVertices := splitByType(linearizedBetween)

	clonedACL, clonedDRP, err := o.stateAtLCA(lca, aclVertices, drpVertices)
	if err != nil {
		return err
	}

	isACL := v.Operation != nil && v.Operation.DRPType == hashgraph.DRPTypeACL
	if !isACL {
		if clonedDRP == nil {
			return ErrNoDRP
		}
		if !clonedACL.QueryIsWriter(v.PeerID) {
			return ErrNotAWriter
		}
	}

	ctx := drp.OpContext{Caller: v.PeerID}
	if isACL {
		if _, err := clonedACL.Apply(ctx, v.Operation.OpType, v.Operation.Value); err != nil {
			return err
		}
	} else {
		if _, err := clonedDRP.Apply(ctx, v.Operation.OpType, v.Operation.Value); err != nil {
			return err
		}
	}

	if err := o.hg.AddVertex(v); err != nil {
		return err
	}

	o.aclStates[v.Hash] = clonedACL.ExportState()
	if clonedDRP != nil {
		o.drpStates[v.Hash] = clonedDRP.ExportState()
	}
	o.finalityStore.InitializeState(v.Hash, clonedACL.QueryGetFinalitySigners())
	return nil
}

// refreshLiveStateLocked recomputes the live ACL/DRP proxies from the
// current frontier. Caller must hold o.mu.
func (o *Object) refreshLiveStateLocked() error {
	frontier := o.hg.GetFrontier()
	lca, linearizedBetween, err := o.hg.LowestCommonAncestor(frontier)
	if err != nil {
		return err
	}
	aclVertices, drpVertices := splitByType(linearizedBetween)
	acl, userDRP, err := o.stateAtLCA(lca, aclVertices, drpVertices)
	if err != nil {
		return err
	}
	o.acl = acl
	o.userDRP = userDRP
	return nil
}

// stateAtLCA implements the state-at-LCA algorithm: clone the originals,
// import the snapshot recorded at lca, then replay the linearized
// intermediate vertices on top.
func (o *Object) stateAtLCA(lca string, aclVertices, drpVertices []*hashgraph.Vertex) (*aclobj.ACL, drp.DRP, error) {
	aclSnap, ok := o.aclStates[lca]
	if !ok {
		return nil, nil, ErrMissingState
	}
	clonedACL := o.originalACL.Clone().(*aclobj.ACL)
	if err := clonedACL.ImportState(aclSnap); err != nil {
		return nil, nil, err
	}

	var clonedDRP drp.DRP
	if o.originalDRP != nil {
		clonedDRP = o.originalDRP.Clone()
		if drpSnap, ok := o.drpStates[lca]; ok {
			if err := clonedDRP.ImportState(drpSnap); err != nil {
				return nil, nil, err
			}
		}
	}

	for _, v := range aclVertices {
		ctx := drp.OpContext{Caller: v.PeerID}
		if _, err := clonedACL.Apply(ctx, v.Operation.OpType, v.Operation.Value); err != nil {
			o.log.Debug("acl replay rejected", "hash", v.Hash, "err", err)
		}
	}
	if clonedDRP != nil {
		for _, v := range drpVertices {
			ctx := drp.OpContext{Caller: v.PeerID}
			if _, err := clonedDRP.Apply(ctx, v.Operation.OpType, v.Operation.Value); err != nil {
				o.log.Debug("drp replay rejected", "hash", v.Hash, "err", err)
			}
		}
	}
	return clonedACL, clonedDRP, nil
}

// GetState returns the recorded (aclState, drpState) at hash, for serving
// FETCH_STATE requests.
func (o *Object) GetState(hash string) ([]drp.StateEntry, []drp.StateEntry, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	acl, ok := o.aclStates[hash]
	if !ok {
		return nil, nil, false
	}
	return acl, o.drpStates[hash], true
}

// InstallState overwrites the recorded state at hash, used when a
// FETCH_STATE_RESPONSE arrives (including re-rooting when hash is root).
func (o *Object) InstallState(hash string, aclState, drpState []drp.StateEntry) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.aclStates[hash] = aclState
	if drpState != nil {
		o.drpStates[hash] = drpState
	}
}

func splitByType(vs []*hashgraph.Vertex) (aclVertices, drpVertices []*hashgraph.Vertex) {
	for _, v := range vs {
		if v.Operation != nil && v.Operation.DRPType == hashgraph.DRPTypeACL {
			aclVertices = append(aclVertices, v)
		} else {
			drpVertices = append(drpVertices, v)
		}
	}
	return aclVertices, drpVertices
}

func exportOf(isACL bool, acl *aclobj.ACL, userDRP drp.DRP) []drp.StateEntry {
	if isACL {
		return acl.ExportState()
	}
	return userDRP.ExportState()
}

func statesEqual(a, b []drp.StateEntry) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Key != b[i].Key {
			return false
		}
		if !reflect.DeepEqual(a[i].Value, b[i].Value) {
			return false
		}
	}
	return true
}
