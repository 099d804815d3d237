// Package heur builds the starting tour handed to TourBank before the
// engine's first CoreLP construction: a nearest-neighbor greedy
// construction followed by an optional first-improvement 2-opt polish.
// This is the concrete stand-in for "Lin-Kernighan, greedy" named as an
// external collaborator — a full Lin-Kernighan is not implemented, and the
// engine's correctness never depends on the quality of this starting tour,
// only on it being a valid Hamiltonian cycle.
package heur

import (
	"math"
)

// Options controls the optional 2-opt polish. MaxPasses bounds the number
// of full improvement scans (0 means unbounded, i.e. run to local
// optimum). The distance function is treated as symmetric.
type Options struct {
	MaxPasses int
}

// distOf is the minimal surface heur needs from instance.Instance, kept as
// a plain function type so this package does not import instance and
// create a cycle with anything instance might later need from heur.
type distOf = func(i, j int) float64

// GreedyTour constructs a tour by repeated nearest-neighbor extension
// starting at node 0: at each step, append the nearest not-yet-visited
// node to the current path's end. O(n^2) time, O(n) space.
func GreedyTour(n int, dist distOf) []int {
	if n <= 0 {
		return nil
	}
	visited := make([]bool, n)
	tour := make([]int, 0, n)
	cur := 0
	visited[0] = true
	tour = append(tour, 0)
	for len(tour) < n {
		best, bestD := -1, math.Inf(1)
		for v := 0; v < n; v++ {
			if visited[v] {
				continue
			}
			if d := dist(cur, v); d < bestD {
				best, bestD = v, d
			}
		}
		visited[best] = true
		tour = append(tour, best)
		cur = best
	}
	return tour
}

// TwoOpt runs deterministic first-improvement 2-opt on a closed tour given
// as a node sequence (not repeating the start node at the end). On each
// accepted move it reverses the segment between the two edges being
// swapped, exactly as the classic 2-opt formula requires:
//
//	a=tour[i-1], b=tour[i], c=tour[k], d=tour[k+1]
//	Δ = d(a,c) + d(b,d) − d(a,b) − d(c,d)
//
// A move is accepted whenever Δ < -eps. After an accepted move the scan
// goes on within the same pass from the updated tour; passes repeat until
// a full pass finds no improving move or opts.MaxPasses passes have run,
// whichever comes first.
func TwoOpt(n int, dist distOf, initTour []int, opts Options) []int {
	const eps = 1e-9
	tour := append([]int(nil), initTour...)
	if n < 4 {
		return tour
	}

	at := func(pos int) int { return tour[(pos%n+n)%n] }

	passes := 0
	for {
		improved := false
		for i := 1; i < n-1; i++ {
			a, b := at(i-1), at(i)
			for k := i + 1; k < n; k++ {
				c, d := at(k), at((k+1)%n)
				if b == c || a == d {
					continue
				}
				delta := (dist(a, c) + dist(b, d)) - (dist(a, b) + dist(c, d))
				if delta < -eps {
					reverse(tour, i, k)
					improved = true
					a, b = at(i-1), at(i)
				}
			}
		}
		passes++
		if !improved {
			break
		}
		if opts.MaxPasses > 0 && passes >= opts.MaxPasses {
			break
		}
	}
	return tour
}

func reverse(tour []int, i, k int) {
	for i < k {
		tour[i], tour[k] = tour[k], tour[i]
		i++
		k--
	}
}
