package separate

import "math"

// minCut computes a global min s-t cut value and the source-side vertex
// set for a dense, symmetric capacity matrix (cap[u][v]==cap[v][u]),
// using Dinic's level-graph/blocking-flow method adapted from the
// teacher's string-keyed Dinic (flow/dinic.go) to a dense int-indexed
// residual matrix, since the separator works over small, already-compact
// node sets (support-graph components) rather than arbitrary-ID graphs.
//
// Steps:
//  1. Build a residual capacity matrix from cap (undirected: both
//     directions start with the same residual capacity).
//  2. Repeat: BFS to build levels from source; if sink unreachable, stop.
//  3. DFS blocking flow over the level graph, using per-node iteration
//     cursors to avoid revisiting exhausted edges within one phase.
//  4. Accumulate pushed flow into maxFlow; update residual capacities.
//  5. Once no augmenting path remains, the reachable set from source in
//     the final residual graph is the source-side min-cut partition.
//
// Complexity: O(V^2 * E) worst case, acceptable for the separator's small
// per-call node counts (tens to low hundreds of nodes per subproblem).
func minCut(n int, cap_ [][]float64, source, sink int) (value float64, sourceSide []bool) {
	res := make([][]float64, n)
	for i := range res {
		res[i] = append([]float64(nil), cap_[i]...)
	}

	for {
		level := make([]int, n)
		for i := range level {
			level[i] = -1
		}
		level[source] = 0
		queue := []int{source}
		for qi := 0; qi < len(queue); qi++ {
			u := queue[qi]
			for v := 0; v < n; v++ {
				if res[u][v] > 1e-12 && level[v] < 0 {
					level[v] = level[u] + 1
					queue = append(queue, v)
				}
			}
		}
		if level[sink] < 0 {
			break
		}

		iter := make([]int, n)
		for {
			pushed := dfsBlockingPush(res, level, iter, source, sink, math.Inf(1))
			if pushed <= 1e-12 {
				break
			}
			value += pushed
		}
	}

	sourceSide = make([]bool, n)
	visited := make([]bool, n)
	visited[source] = true
	queue := []int{source}
	for qi := 0; qi < len(queue); qi++ {
		u := queue[qi]
		sourceSide[u] = true
		for v := 0; v < n; v++ {
			if res[u][v] > 1e-12 && !visited[v] {
				visited[v] = true
				queue = append(queue, v)
			}
		}
	}
	return value, sourceSide
}

func dfsBlockingPush(res [][]float64, level, iter []int, u, sink int, available float64) float64 {
	if u == sink {
		return available
	}
	n := len(res)
	for ; iter[u] < n; iter[u]++ {
		v := iter[u]
		if res[u][v] <= 1e-12 || level[v] != level[u]+1 {
			continue
		}
		send := available
		if res[u][v] < send {
			send = res[u][v]
		}
		pushed := dfsBlockingPush(res, level, iter, v, sink, send)
		if pushed > 1e-12 {
			res[u][v] -= pushed
			res[v][u] += pushed
			return pushed
		}
	}
	return 0
}
