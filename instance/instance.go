// Package instance loads and generates the symmetric-TSP node sets and
// distance oracles the engine pivots against. It has no dependency on
// CoreGraph/CoreLP: an Instance is pure data, turned into LP columns by
// whatever caller builds the initial CoreGraph.
package instance

import (
	"bufio"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"strconv"
	"strings"
)

// ErrEmptyInstance is returned by constructors asked to build an instance
// with fewer than 3 nodes; a tour needs at least 3 nodes to be meaningful.
var ErrEmptyInstance = errors.New("instance: need at least 3 nodes")

// ErrMalformedTSPLIB is returned by LoadTSPLIB on any structurally invalid
// input (missing DIMENSION, missing NODE_COORD_SECTION, short coordinate
// rows, non-numeric fields).
var ErrMalformedTSPLIB = errors.New("instance: malformed TSPLIB file")

// EdgeWeightType selects the distance rounding rule a TSPLIB file declares.
type EdgeWeightType int

const (
	EUC2D EdgeWeightType = iota
	CEIL2D
	ATT
)

// Instance is an immutable node set plus distance oracle. Dist must be
// symmetric and satisfy the triangle inequality for the separators'
// primal-tightness reasoning to hold, though nothing here enforces that —
// callers feeding a non-metric oracle get a correct LP relaxation, just not
// the usual TSP guarantees on heuristic starting tours.
type Instance struct {
	N    int
	Dist func(i, j int) float64
	Seed int64
}

// RandomEuclidean builds an n-node instance with points drawn uniformly
// from [0,grid]^2, seeded via math/rand/v2 for reproducibility (scenario
// seed 99 in the engine's end-to-end tests). Distances are rounded to the
// nearest integer (TSPLIB EUC_2D convention) so results are comparable
// against TSPLIB-sourced instances.
func RandomEuclidean(n int, grid float64, seed int64) (*Instance, error) {
	if n < 3 {
		return nil, ErrEmptyInstance
	}
	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))
	xs := make([]float64, n)
	ys := make([]float64, n)
	for i := 0; i < n; i++ {
		xs[i] = rng.Float64() * grid
		ys[i] = rng.Float64() * grid
	}
	dist := func(i, j int) float64 {
		dx := xs[i] - xs[j]
		dy := ys[i] - ys[j]
		return math.Round(math.Sqrt(dx*dx + dy*dy))
	}
	return &Instance{N: n, Dist: dist, Seed: seed}, nil
}

// LoadTSPLIB parses the NODE_COORD_SECTION of a TSPLIB .tsp file under the
// EUC_2D, CEIL_2D, or ATT edge-weight conventions. Sections other than
// NAME/TYPE/DIMENSION/EDGE_WEIGHT_TYPE/NODE_COORD_SECTION are ignored; this
// is not a general TSPLIB reader (no explicit edge-weight matrices, no
// geographic GEO distances).
func LoadTSPLIB(path string) (*Instance, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("instance: LoadTSPLIB: %w", err)
	}
	defer f.Close()

	var (
		dimension int
		ewType    = EUC2D
		inCoords  bool
		xs, ys    []float64
	)

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || line == "EOF" {
			continue
		}
		if inCoords {
			if line == "NODE_COORD_SECTION" || strings.Contains(line, ":") {
				inCoords = false
			} else {
				fields := strings.Fields(line)
				if len(fields) < 3 {
					return nil, fmt.Errorf("%w: short coordinate row %q", ErrMalformedTSPLIB, line)
				}
				x, errX := strconv.ParseFloat(fields[1], 64)
				y, errY := strconv.ParseFloat(fields[2], 64)
				if errX != nil || errY != nil {
					return nil, fmt.Errorf("%w: non-numeric coordinate row %q", ErrMalformedTSPLIB, line)
				}
				xs = append(xs, x)
				ys = append(ys, y)
				continue
			}
		}
		switch {
		case strings.HasPrefix(line, "DIMENSION"):
			dimension, err = parseColonInt(line)
			if err != nil {
				return nil, err
			}
		case strings.HasPrefix(line, "EDGE_WEIGHT_TYPE"):
			ewType, err = parseEdgeWeightType(line)
			if err != nil {
				return nil, err
			}
		case line == "NODE_COORD_SECTION":
			inCoords = true
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("instance: LoadTSPLIB: %w", err)
	}
	if dimension == 0 || len(xs) != dimension {
		return nil, fmt.Errorf("%w: DIMENSION=%d but read %d coordinate rows", ErrMalformedTSPLIB, dimension, len(xs))
	}

	dist := edgeWeightFunc(ewType, xs, ys)
	return &Instance{N: dimension, Dist: dist, Seed: 0}, nil
}

func edgeWeightFunc(ewType EdgeWeightType, xs, ys []float64) func(i, j int) float64 {
	switch ewType {
	case CEIL2D:
		return func(i, j int) float64 {
			dx, dy := xs[i]-xs[j], ys[i]-ys[j]
			return math.Ceil(math.Sqrt(dx*dx + dy*dy))
		}
	case ATT:
		return func(i, j int) float64 {
			dx, dy := xs[i]-xs[j], ys[i]-ys[j]
			r := math.Sqrt((dx*dx + dy*dy) / 10.0)
			t := math.Round(r)
			if t < r {
				return t + 1
			}
			return t
		}
	default: // EUC2D
		return func(i, j int) float64 {
			dx, dy := xs[i]-xs[j], ys[i]-ys[j]
			return math.Round(math.Sqrt(dx*dx + dy*dy))
		}
	}
}

func parseColonInt(line string) (int, error) {
	parts := strings.SplitN(line, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("%w: %q", ErrMalformedTSPLIB, line)
	}
	v, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedTSPLIB, line)
	}
	return v, nil
}

func parseEdgeWeightType(line string) (EdgeWeightType, error) {
	parts := strings.SplitN(line, ":", 2)
	if len(parts) != 2 {
		return EUC2D, fmt.Errorf("%w: %q", ErrMalformedTSPLIB, line)
	}
	switch strings.TrimSpace(parts[1]) {
	case "EUC_2D":
		return EUC2D, nil
	case "CEIL_2D":
		return CEIL2D, nil
	case "ATT":
		return ATT, nil
	default:
		return EUC2D, fmt.Errorf("instance: unsupported EDGE_WEIGHT_TYPE %q", parts[1])
	}
}

// ReadStartTour reads one node index per line, returning an error unless
// the result is exactly a permutation of 0..n-1.
func ReadStartTour(path string, n int) ([]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("instance: ReadStartTour: %w", err)
	}
	defer f.Close()

	var tour []int
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		v, err := strconv.Atoi(line)
		if err != nil {
			return nil, fmt.Errorf("instance: ReadStartTour: non-integer line %q", line)
		}
		tour = append(tour, v)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("instance: ReadStartTour: %w", err)
	}
	if len(tour) != n {
		return nil, fmt.Errorf("instance: ReadStartTour: read %d nodes, want %d", len(tour), n)
	}
	seen := make([]bool, n)
	for _, v := range tour {
		if v < 0 || v >= n || seen[v] {
			return nil, fmt.Errorf("instance: ReadStartTour: not a permutation of 0..%d", n-1)
		}
		seen[v] = true
	}
	return tour, nil
}
