package clique

// Tooth is an ordered pair of disjoint, non-empty cliques (Root, Body)
// whose union is not the whole vertex set — the building block of simple
// domino-parity cuts (spec.md §3, §4.5).
type Tooth struct {
	Root Clique
	Body Clique
}

// Equal compares two teeth by structural equality of both cliques.
func (t Tooth) Equal(o Tooth) bool {
	return t.Root.Equal(o.Root) && t.Body.Equal(o.Body)
}

// Hash combines the root and body clique hashes.
func (t Tooth) Hash() uint64 {
	return t.Root.Hash()*1099511628211 + t.Body.Hash()
}
