package hashgraph

import "errors"

var (
	// ErrInvalidHash is returned when a vertex's stored hash does not match
	// its recomputed content-hash.
	ErrInvalidHash = errors.New("hashgraph: invalid hash")
	// ErrMissingDependency is returned when addVertex references a
	// dependency not yet present in the graph.
	ErrMissingDependency = errors.New("hashgraph: missing dependency")
	// ErrInvalidTimestamp is returned when a dependency's timestamp exceeds
	// the vertex's timestamp by more than the configured skew tolerance.
	ErrInvalidTimestamp = errors.New("hashgraph: invalid timestamp")
	// ErrDuplicate is returned when a vertex with the same hash already
	// exists in the graph.
	ErrDuplicate = errors.New("hashgraph: duplicate vertex")
	// ErrCycleDetected is returned by TopologicalSort when a back-edge is
	// observed.
	ErrCycleDetected = errors.New("hashgraph: cycle detected")
	// ErrUnknownVertex is returned when a queried hash is not in the graph.
	ErrUnknownVertex = errors.New("hashgraph: unknown vertex")
)
