// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package hashgraph

import "sort"

// LowestCommonAncestor computes the LCA of deps and the conflict-resolved
// linearization of the vertices strictly between the LCA and deps.
// For a single dependency it returns that dependency with an empty
// linearization.
func (g *HashGraph) LowestCommonAncestor(deps []string) (string, []*Vertex, error) {
	if len(deps) == 0 {
		return "", nil, ErrUnknownVertex
	}

	g.mu.RLock()
	for _, d := range deps {
		if _, ok := g.vertices[d]; !ok {
			g.mu.RUnlock()
			return "", nil, ErrUnknownVertex
		}
	}
	if len(deps) == 1 {
		g.mu.RUnlock()
		return deps[0], nil, nil
	}

	sets := make([]map[string]struct{}, len(deps))
	for i, d := range deps {
		s := g.ancestorsLocked(d)
		s[d] = struct{}{}
		sets[i] = s
	}
	inter := sets[0]
	for _, s := range sets[1:] {
		next := make(map[string]struct{})
		for h := range inter {
			if _, ok := s[h]; ok {
				next[h] = struct{}{}
			}
		}
		inter = next
	}
	if len(inter) == 0 {
		inter = map[string]struct{}{RootHash: {}}
	}

	lca := g.pickMaximalLocked(inter)

	lcaAncestry := g.ancestorsLocked(lca)
	lcaAncestry[lca] = struct{}{}

	between := make(map[string]struct{})
	for _, d := range deps {
		depAncestry := g.ancestorsLocked(d)
		depAncestry[d] = struct{}{}
		for h := range depAncestry {
			if _, excluded := lcaAncestry[h]; !excluded {
				between[h] = struct{}{}
			}
		}
	}
	g.mu.RUnlock()

	linearized, err := g.LinearizeVertices(lca, between)
	if err != nil {
		return "", nil, err
	}
	return lca, linearized, nil
}

// pickMaximalLocked returns the element of candidates that is not an
// ancestor of any other element, i.e. the most causally-recent one.
// Caller must hold g.mu for reading.
func (g *HashGraph) pickMaximalLocked(candidates map[string]struct{}) string {
	names := make([]string, 0, len(candidates))
	for h := range candidates {
		names = append(names, h)
	}
	sort.Strings(names)

	for _, cand := range names {
		maximal := true
		for _, other := range names {
			if other == cand {
				continue
			}
			if g.isAncestorLocked(cand, other) {
				maximal = false
				break
			}
		}
		if maximal {
			return cand
		}
	}
	return names[0]
}

// LinearizeVertices returns the conflict-resolved total order of the
// vertices in subgraph, descending from origin. A nil subgraph
// means "every non-origin vertex".
func (g *HashGraph) LinearizeVertices(origin string, subgraph map[string]struct{}) ([]*Vertex, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if subgraph == nil {
		subgraph = make(map[string]struct{}, len(g.vertices))
		for h := range g.vertices {
			subgraph[h] = struct{}{}
		}
		delete(subgraph, origin)
	}

	indeg := make(map[string]int, len(subgraph))
	children := make(map[string][]string, len(subgraph))
	for h := range subgraph {
		v := g.vertices[h]
		if v == nil {
			continue
		}
		for _, d := range v.Dependencies {
			if _, inSub := subgraph[d]; inSub {
				indeg[h]++
				children[d] = append(children[d], h)
			}
		}
	}

	var ready []string
	for h := range subgraph {
		if indeg[h] == 0 {
			ready = append(ready, h)
		}
	}
	sort.Strings(ready)

	var result []*Vertex
	for len(ready) > 0 {
		layer := ready
		ready = nil

		ordered := g.resolveLayer(layer)
		result = append(result, ordered...)

		next := make(map[string]struct{})
		for _, h := range layer {
			for _, c := range children[h] {
				indeg[c]--
				if indeg[c] == 0 {
					next[c] = struct{}{}
				}
			}
		}
		for h := range next {
			ready = append(ready, h)
		}
		sort.Strings(ready)
	}
	return result, nil
}

// resolveLayer orders one layer of mutually-concurrent vertex hashes,
// resolving ACL vertices before DRP vertices when both are concurrent in the same layer.
func (g *HashGraph) resolveLayer(hashes []string) []*Vertex {
	var aclVertices, drpVertices []*Vertex
	for _, h := range hashes {
		v := g.vertices[h]
		if v == nil {
			continue
		}
		if v.Operation != nil && v.Operation.DRPType == DRPTypeACL {
			aclVertices = append(aclVertices, v)
		} else {
			drpVertices = append(drpVertices, v)
		}
	}

	out := make([]*Vertex, 0, len(hashes))
	out = append(out, g.resolveSemantics(aclVertices, g.resolveACL)...)
	out = append(out, g.resolveSemantics(drpVertices, g.resolveDRP)...)
	return out
}

func sortByTieBreak(vs []*Vertex) {
	sort.Slice(vs, func(i, j int) bool {
		if vs[i].Timestamp != vs[j].Timestamp {
			return vs[i].Timestamp < vs[j].Timestamp
		}
		return vs[i].Hash < vs[j].Hash
	})
}

func sortByHash(vs []*Vertex) {
	sort.Slice(vs, func(i, j int) bool { return vs[i].Hash < vs[j].Hash })
}

func (g *HashGraph) resolveSemantics(vs []*Vertex, resolver ConflictResolver) []*Vertex {
	if len(vs) <= 1 {
		return vs
	}
	if resolver == nil {
		sortByTieBreak(vs)
		return vs
	}
	switch g.semantics {
	case SemanticsMultiple:
		return resolveMultiple(vs, resolver)
	default:
		return resolvePair(vs, resolver)
	}
}

// resolvePair walks adjacent concurrent pairs (sorted by the deterministic
// tie-break) applying the resolver's verdict.
func resolvePair(vs []*Vertex, resolver ConflictResolver) []*Vertex {
	work := append([]*Vertex(nil), vs...)
	sortByTieBreak(work)

	out := make([]*Vertex, 0, len(work))
	i := 0
	for i < len(work) {
		if i+1 >= len(work) {
			out = append(out, work[i])
			i++
			continue
		}
		a, b := work[i], work[i+1]
		res, err := resolver.ResolveConflicts([]*Vertex{a, b})
		if err != nil {
			res = ResolveResult{Action: ActionNop}
		}
		switch res.Action {
		case ActionDropLeft:
			out = append(out, b)
		case ActionDropRight:
			out = append(out, a)
		case ActionSwap:
			out = append(out, b, a)
		case ActionDrop:
			dropped := toSet(res.DroppedHashes)
			if !dropped[a.Hash] {
				out = append(out, a)
			}
			if !dropped[b.Hash] {
				out = append(out, b)
			}
		default: // Nop
			out = append(out, a, b)
		}
		i += 2
	}
	return out
}

// resolveMultiple hands the whole concurrent layer to the resolver at once.
func resolveMultiple(vs []*Vertex, resolver ConflictResolver) []*Vertex {
	res, err := resolver.ResolveConflicts(vs)
	if err != nil {
		sortByHash(vs)
		return vs
	}
	if res.Action == ActionDrop {
		dropped := toSet(res.DroppedHashes)
		out := make([]*Vertex, 0, len(vs))
		for _, v := range vs {
			if !dropped[v.Hash] {
				out = append(out, v)
			}
		}
		sortByHash(out)
		return out
	}
	sortByHash(vs)
	return vs
}

func toSet(hashes []string) map[string]bool {
	s := make(map[string]bool, len(hashes))
	for _, h := range hashes {
		s[h] = true
	}
	return s
}
