package heur_test

import (
	"math"
	"testing"

	"github.com/katalvlaran/primalcut/heur"
	"github.com/stretchr/testify/require"
)

func squareDist() func(i, j int) float64 {
	xs := []float64{0, 1, 1, 0}
	ys := []float64{0, 0, 1, 1}
	return func(i, j int) float64 {
		dx, dy := xs[i]-xs[j], ys[i]-ys[j]
		return math.Sqrt(dx*dx + dy*dy)
	}
}

func TestGreedyTour_NearestNeighborOnSquare(t *testing.T) {
	tour := heur.GreedyTour(4, squareDist())
	require.Equal(t, []int{0, 1, 2, 3}, tour)
}

func TestTwoOpt_UncrossesBowtie(t *testing.T) {
	dist := squareDist()
	crossed := []int{0, 2, 1, 3}
	fixed := heur.TwoOpt(4, dist, crossed, heur.Options{})
	require.Equal(t, []int{0, 1, 2, 3}, fixed)

	length := dist(fixed[0], fixed[1]) + dist(fixed[1], fixed[2]) + dist(fixed[2], fixed[3]) + dist(fixed[3], fixed[0])
	require.InDelta(t, 4.0, length, 1e-9)
}
