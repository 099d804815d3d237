// Package coregraph implements CoreGraph: the ordered edge list backing
// every LP column in the engine, with an O(1) (u,v)->index lookup and a
// per-node adjacency rebuilt on every append.
//
// Edges are never removed, only appended (spec.md §3): the pricer and the
// branch executor both rely on edge indices staying stable for the whole
// session so that ExternalCuts coefficient caches and TourBank's edge
// indicator vector can be indexed by core-graph position.
package coregraph

import (
	"fmt"
)

// Edge is one column of the LP: an undirected pair of endpoints and a
// length supplied by the distance oracle.
type Edge struct {
	U, V int
	Len  float64
}

// Neighbor is one entry of a node's adjacency list: the vertex on the
// other end of the edge, and that edge's index in CoreGraph.Edges.
type Neighbor struct {
	Node      int
	EdgeIndex int
}

// CoreGraph is the ordered sequence of edges under consideration by the
// LP, plus the index structures used to look an edge up by endpoints or
// enumerate a node's incident edges.
//
// Invariant: for every key (lo,hi) in index, Edges[index[(lo,hi)]] has
// endpoints {lo,hi}; adjacency reflects every edge in Edges exactly once
// per endpoint.
type CoreGraph struct {
	n     int
	Edges []Edge

	index map[edgeKey]int
	adj   [][]Neighbor
}

type edgeKey struct{ lo, hi int }

func key(u, v int) edgeKey {
	if u > v {
		u, v = v, u
	}
	return edgeKey{u, v}
}

// New builds an empty CoreGraph over n nodes (0..n-1).
func New(n int) *CoreGraph {
	return &CoreGraph{
		n:     n,
		index: make(map[edgeKey]int),
		adj:   make([][]Neighbor, n),
	}
}

// NumNodes returns n.
func (g *CoreGraph) NumNodes() int { return g.n }

// NumEdges returns the number of edges appended so far.
func (g *CoreGraph) NumEdges() int { return len(g.Edges) }

// EdgeIndex returns the index of edge (u,v) if present.
func (g *CoreGraph) EdgeIndex(u, v int) (int, bool) {
	idx, ok := g.index[key(u, v)]
	return idx, ok
}

// Edge returns the edge at idx.
func (g *CoreGraph) Edge(idx int) Edge { return g.Edges[idx] }

// Neighbors returns v's adjacency list: (neighbor, edge-index) pairs.
func (g *CoreGraph) Neighbors(v int) []Neighbor { return g.adj[v] }

// AddEdge appends a new edge (u,v,length), rebuilding adjacency for both
// endpoints. Returns the new edge's index. Returns an error if the edge
// already exists (edges are append-only and never deduplicated silently;
// the pricer is responsible for not re-offering an edge already priced in).
func (g *CoreGraph) AddEdge(u, v int, length float64) (int, error) {
	if u == v {
		return -1, fmt.Errorf("coregraph: self-loop (%d,%d) not allowed", u, v)
	}
	if u < 0 || u >= g.n || v < 0 || v >= g.n {
		return -1, fmt.Errorf("coregraph: endpoint out of range (%d,%d), n=%d", u, v, g.n)
	}
	k := key(u, v)
	if _, exists := g.index[k]; exists {
		return -1, fmt.Errorf("coregraph: edge (%d,%d) already present", u, v)
	}

	idx := len(g.Edges)
	g.Edges = append(g.Edges, Edge{U: u, V: v, Len: length})
	g.index[k] = idx
	g.adj[u] = append(g.adj[u], Neighbor{Node: v, EdgeIndex: idx})
	g.adj[v] = append(g.adj[v], Neighbor{Node: u, EdgeIndex: idx})

	return idx, nil
}

// AddEdges appends a batch of (u,v,length) triples in order, stopping (and
// returning the partial index list plus the error) at the first failure so
// callers can decide whether to roll back.
func (g *CoreGraph) AddEdges(batch []Edge) ([]int, error) {
	idxs := make([]int, 0, len(batch))
	for _, e := range batch {
		idx, err := g.AddEdge(e.U, e.V, e.Len)
		if err != nil {
			return idxs, err
		}
		idxs = append(idxs, idx)
	}
	return idxs, nil
}

// Degree returns the number of incident edges recorded for v.
func (g *CoreGraph) Degree(v int) int { return len(g.adj[v]) }
