// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package hashgraph

import (
	"sort"
	"sync"
	"time"

	"github.com/luxfi/drp/bitset"
	"github.com/luxfi/log"
)

// SemanticsType selects the arity at which a DRP's resolveConflicts is
// invoked during linearization.
type SemanticsType int

const (
	SemanticsPair SemanticsType = iota
	SemanticsMultiple
)

// Action is the verdict a ConflictResolver returns for one or more
// concurrent vertices.
type Action int

const (
	ActionNop Action = iota
	ActionDropLeft
	ActionDropRight
	ActionDrop
	ActionSwap
)

// ResolveResult is the outcome of a ConflictResolver call.
type ResolveResult struct {
	Action        Action
	DroppedHashes []string
}

// ConflictResolver resolves concurrent vertices into a deterministic order.
// Pair-semantics resolvers are always called with exactly two vertices;
// multiple-semantics resolvers are called with the full concurrent layer.
type ConflictResolver interface {
	ResolveConflicts(vertices []*Vertex) (ResolveResult, error)
}

// DefaultSkew is the timestamp skew tolerance used by Invariant H2/H3 when
// a HashGraph is built with New's default Config.
const DefaultSkew = 100 * time.Millisecond

// Config configures a HashGraph instance.
type Config struct {
	PeerID        string
	Semantics     SemanticsType
	ResolveACL    ConflictResolver
	ResolveDRP    ConflictResolver
	Skew          time.Duration
	Logger        log.Logger
	// Now returns the current time in unix milliseconds; overridable for
	// deterministic tests.
	Now func() int64
}

// HashGraph is the append-only DAG of signed operation vertices.
type HashGraph struct {
	mu  sync.RWMutex
	log log.Logger

	peerID     string
	semantics  SemanticsType
	resolveACL ConflictResolver
	resolveDRP ConflictResolver
	skew       time.Duration
	now        func() int64

	vertices     map[string]*Vertex
	frontier     map[string]struct{}
	forwardEdges map[string]map[string]struct{}

	bitIndex map[string]int
	bitsets  map[string]*bitset.BitSet
	nextBit  int
	capacity int
}

// New creates a HashGraph seeded with the root vertex.
func New(cfg Config) *HashGraph {
	if cfg.Skew == 0 {
		cfg.Skew = DefaultSkew
	}
	if cfg.Logger == nil {
		cfg.Logger = log.NewNoOpLogger()
	}
	if cfg.Now == nil {
		cfg.Now = func() int64 { return time.Now().UnixMilli() }
	}

	g := &HashGraph{
		log:          cfg.Logger,
		peerID:       cfg.PeerID,
		semantics:    cfg.Semantics,
		resolveACL:   cfg.ResolveACL,
		resolveDRP:   cfg.ResolveDRP,
		skew:         cfg.Skew,
		now:          cfg.Now,
		vertices:     make(map[string]*Vertex),
		frontier:     make(map[string]struct{}),
		forwardEdges: make(map[string]map[string]struct{}),
		bitIndex:     make(map[string]int),
		bitsets:      make(map[string]*bitset.BitSet),
		capacity:     1,
	}

	root := NewRootVertex()
	g.vertices[root.Hash] = root
	g.frontier[root.Hash] = struct{}{}
	g.bitIndex[root.Hash] = 0
	g.bitsets[root.Hash] = bitset.New(g.capacity)
	g.nextBit = 1
	return g
}

// PeerID returns the local peer id this graph instance signs as.
func (g *HashGraph) PeerID() string { return g.peerID }

// CreateVertex builds (without inserting) a Vertex for a local operation,
// defaulting deps to the current frontier and timestamp to now.
func (g *HashGraph) CreateVertex(op *Operation, deps []string, timestampMs int64) (*Vertex, error) {
	g.mu.RLock()
	if deps == nil {
		deps = g.frontierLocked()
	}
	g.mu.RUnlock()

	if timestampMs == 0 {
		timestampMs = g.now()
	}
	return NewVertex(g.peerID, op, deps, timestampMs)
}

func (g *HashGraph) frontierLocked() []string {
	out := make([]string, 0, len(g.frontier))
	for h := range g.frontier {
		out = append(out, h)
	}
	sort.Strings(out)
	return out
}

// GetFrontier returns the current set of vertices with no forward edges.
func (g *HashGraph) GetFrontier() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.frontierLocked()
}

// GetVertex returns the vertex with the given hash, if known.
func (g *HashGraph) GetVertex(hash string) (*Vertex, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	v, ok := g.vertices[hash]
	return v, ok
}

// Has reports whether hash is already a vertex in the graph.
func (g *HashGraph) Has(hash string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.vertices[hash]
	return ok
}

// Len returns the number of vertices stored, including the root.
func (g *HashGraph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.vertices)
}

// AddVertex validates and inserts v, updating forward edges and the
// frontier. It is the caller's responsibility (the DRPObject pipeline) to
// run the higher-level permission/application checks before calling this.
func (g *HashGraph) AddVertex(v *Vertex) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.vertices[v.Hash]; exists {
		return ErrDuplicate
	}

	if !v.IsRoot() {
		want, err := ComputeHash(v)
		if err != nil {
			return err
		}
		if want != v.Hash {
			return ErrInvalidHash
		}
		if len(v.Dependencies) == 0 {
			return ErrMissingDependency
		}
		if v.Timestamp > g.now()+g.skew.Milliseconds() {
			return ErrInvalidTimestamp
		}
	}

	for _, d := range v.Dependencies {
		dep, ok := g.vertices[d]
		if !ok {
			return ErrMissingDependency
		}
		if dep.Timestamp-v.Timestamp > g.skew.Milliseconds() {
			return ErrInvalidTimestamp
		}
	}

	g.vertices[v.Hash] = v
	g.frontier[v.Hash] = struct{}{}
	for _, d := range v.Dependencies {
		if g.forwardEdges[d] == nil {
			g.forwardEdges[d] = make(map[string]struct{})
		}
		g.forwardEdges[d][v.Hash] = struct{}{}
		delete(g.frontier, d)
	}

	g.growBitset(v)
	g.log.Debug("vertex added", "hash", v.Hash, "peer", v.PeerID, "deps", len(v.Dependencies))
	return nil
}

func (g *HashGraph) growBitset(v *Vertex) {
	idx := g.nextBit
	g.bitIndex[v.Hash] = idx
	g.nextBit++
	if g.nextBit > g.capacity {
		newCap := g.nextBit
		for h, bs := range g.bitsets {
			g.bitsets[h] = bitset.FromBytes(newCap, bs.ToBytes())
		}
		g.capacity = newCap
	}

	bs := bitset.New(g.capacity)
	for _, d := range v.Dependencies {
		if depBS, ok := g.bitsets[d]; ok {
			merged, err := bs.Or(depBS)
			if err == nil {
				bs = merged
			}
		}
		if depIdx, ok := g.bitIndex[d]; ok {
			_ = bs.Set(depIdx)
		}
	}
	g.bitsets[v.Hash] = bs
}

// AreCausallyRelated reports whether one of u, v is a transitive dependency
// of the other.
func (g *HashGraph) AreCausallyRelated(u, v string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if uIdx, ok := g.bitIndex[u]; ok {
		if vBS, ok := g.bitsets[v]; ok {
			if set, _ := vBS.Get(uIdx); set {
				return true
			}
		}
	}
	if vIdx, ok := g.bitIndex[v]; ok {
		if uBS, ok := g.bitsets[u]; ok {
			if set, _ := uBS.Get(vIdx); set {
				return true
			}
		}
	}
	return false
}

// AncestorCount returns the number of transitive dependencies of hash,
// read directly off its bitset.
func (g *HashGraph) AncestorCount(hash string) int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	bs, ok := g.bitsets[hash]
	if !ok {
		return 0
	}
	return bs.Count()
}

// ancestorsLocked returns the set of transitive dependencies of hash,
// excluding hash itself. Caller must hold g.mu for reading.
func (g *HashGraph) ancestorsLocked(hash string) map[string]struct{} {
	visited := make(map[string]struct{})
	queue := []string{hash}
	for len(queue) > 0 {
		h := queue[0]
		queue = queue[1:]
		v, ok := g.vertices[h]
		if !ok {
			continue
		}
		for _, d := range v.Dependencies {
			if _, seen := visited[d]; !seen {
				visited[d] = struct{}{}
				queue = append(queue, d)
			}
		}
	}
	return visited
}

func (g *HashGraph) isAncestorLocked(a, b string) bool {
	if a == b {
		return false
	}
	_, ok := g.ancestorsLocked(b)[a]
	return ok
}

// childrenLocked returns the forward edges of hash, optionally sorted for
// stable traversal.
func (g *HashGraph) childrenLocked(hash string, stable bool) []string {
	edges := g.forwardEdges[hash]
	out := make([]string, 0, len(edges))
	for h := range edges {
		out = append(out, h)
	}
	if stable {
		sort.Strings(out)
	}
	return out
}

// TopologicalSort returns every vertex in an order respecting dependencies,
// via a recursive depth-first search from the root. When stable is true, children are
// visited in lexicographic order for a deterministic result across peers.
func (g *HashGraph) TopologicalSort(stable bool) ([]*Vertex, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	const (
		white = iota
		gray
		black
	)
	color := make(map[string]int, len(g.vertices))
	order := make([]string, 0, len(g.vertices))

	var visit func(h string) error
	visit = func(h string) error {
		color[h] = gray
		for _, c := range g.childrenLocked(h, stable) {
			switch color[c] {
			case white:
				if err := visit(c); err != nil {
					return err
				}
			case gray:
				return ErrCycleDetected
			}
		}
		color[h] = black
		order = append(order, h)
		return nil
	}

	if err := visit(RootHash); err != nil {
		return nil, err
	}

	result := make([]*Vertex, len(order))
	for i, h := range order {
		result[len(order)-1-i] = g.vertices[h]
	}
	return result, nil
}
