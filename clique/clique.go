package clique

import "sort"

// Clique is an ordered (by convention, sorted) list of disjoint Segments,
// interpreted against a fixed source tour. Two cliques are equal iff their
// segment lists are equal; Cliques are immutable once constructed.
type Clique struct {
	segs []Segment
}

// New builds a Clique from a segment list, sorting it into canonical order
// so that Equal/Hash are insensitive to caller-supplied order.
func New(segs []Segment) Clique {
	cp := append([]Segment(nil), segs...)
	sort.Slice(cp, func(i, j int) bool {
		if cp[i].Start != cp[j].Start {
			return cp[i].Start < cp[j].Start
		}
		return cp[i].End < cp[j].End
	})
	return Clique{segs: cp}
}

// Segments returns the canonical segment list.
func (c Clique) Segments() []Segment { return c.segs }

// Equal reports exact segment-list equality.
func (c Clique) Equal(o Clique) bool {
	if len(c.segs) != len(o.segs) {
		return false
	}
	for i := range c.segs {
		if !c.segs[i].Equal(o.segs[i]) {
			return false
		}
	}
	return true
}

// Hash computes the FNV-like clique hash from spec.md §9 / CCtsp_hashclique.
func (c Clique) Hash() uint64 {
	var val uint64
	for _, s := range c.segs {
		val = val*65537 + uint64(s.Start)*4099 + uint64(s.End)
	}
	return val
}

// Cardinality returns the number of tour positions covered, given n.
func (c Clique) Cardinality(n int) int {
	total := 0
	for _, s := range c.segs {
		total += s.Size(n)
	}
	return total
}

// ContainsPos reports whether tour position pos lies in any segment.
func (c Clique) ContainsPos(pos int) bool {
	for _, s := range c.segs {
		if s.Contains(pos) {
			return true
		}
	}
	return false
}

// NodeList expands the clique back into a node list, given the tour that
// defines tour position -> node (the bank's saved tour).
func (c Clique) NodeList(savedTour []int) []int {
	n := len(savedTour)
	var nodes []int
	for _, s := range c.segs {
		if s.Start <= s.End {
			for p := s.Start; p <= s.End; p++ {
				nodes = append(nodes, savedTour[p])
			}
		} else {
			for p := s.Start; p < n; p++ {
				nodes = append(nodes, savedTour[p])
			}
			for p := 0; p <= s.End; p++ {
				nodes = append(nodes, savedTour[p])
			}
		}
	}
	return nodes
}
