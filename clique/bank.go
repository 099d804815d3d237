package clique

// Handle is a reference-counted, shared handle to an interned Clique. Each
// HyperGraph that references a clique holds one Handle; Del decrements the
// refcount and removes the entry from its bank at zero (spec.md §3, §8
// "Banks refcount correctness").
type Handle struct {
	Value Clique
	refs  int
}

// Refs reports the current reference count (exported for tests asserting
// the refcount invariant).
func (h *Handle) Refs() int { return h.refs }

// Bank is CliqueBank: a hash map clique -> (clique, refcount), keyed by
// segment-list hash with a collision chain resolved by Equal. Each bank
// owns a saved tour + perm used to dereference the cliques it produced;
// every HyperGraph built against a bank must not outlive it.
type Bank struct {
	savedTour []int
	perm      []int

	buckets map[uint64][]*Handle
	size    int
}

// NewBank creates a CliqueBank anchored to tour (the "source tour"): tour
// is the node-visiting order at the moment cliques are interned, and perm
// is its inverse (perm[v] = position of v in tour).
func NewBank(tour, perm []int) *Bank {
	return &Bank{
		savedTour: append([]int(nil), tour...),
		perm:      append([]int(nil), perm...),
		buckets:   make(map[uint64][]*Handle),
	}
}

// SavedTour returns the bank's source tour (node-visiting order).
func (b *Bank) SavedTour() []int { return b.savedTour }

// Perm returns perm[v] = position of v in the bank's source tour. Used by
// HyperGraph.GetCoeff to test clique membership of an edge's endpoints.
func (b *Bank) Perm() []int { return b.perm }

// Size returns the number of distinct interned cliques.
func (b *Bank) Size() int { return b.size }

// Add interns segs, incrementing the refcount of the existing handle if
// already present, or inserting a new handle with refcount 1.
func (b *Bank) Add(segs []Segment) *Handle {
	c := New(segs)
	h := b.Hash(c)
	for _, cand := range b.buckets[h] {
		if cand.Value.Equal(c) {
			cand.refs++
			return cand
		}
	}
	nh := &Handle{Value: c, refs: 1}
	b.buckets[h] = append(b.buckets[h], nh)
	b.size++
	return nh
}

// Hash exposes the clique hash used for bucketing (test/debug visibility).
func (b *Bank) Hash(c Clique) uint64 { return c.Hash() }

// Del decrements h's refcount, removing it from the bank at zero. Del is a
// no-op (other than the decrement check) if h is not owned by b; callers
// must only pass handles obtained from this bank's Add.
func (b *Bank) Del(h *Handle) {
	if h == nil {
		return
	}
	h.refs--
	if h.refs > 0 {
		return
	}
	bucket := b.buckets[h.Value.Hash()]
	for i, cand := range bucket {
		if cand == h {
			bucket[i] = bucket[len(bucket)-1]
			b.buckets[h.Value.Hash()] = bucket[:len(bucket)-1]
			b.size--
			return
		}
	}
}

// ToothHandle is the Tooth analogue of Handle.
type ToothHandle struct {
	Value Tooth
	refs  int
}

// Refs reports the current reference count.
func (h *ToothHandle) Refs() int { return h.refs }

// ToothBank is the Tooth analogue of Bank, anchored to the same kind of
// source tour.
type ToothBank struct {
	savedTour []int
	perm      []int
	buckets   map[uint64][]*ToothHandle
	size      int
}

// NewToothBank creates a ToothBank anchored to tour/perm.
func NewToothBank(tour, perm []int) *ToothBank {
	return &ToothBank{
		savedTour: append([]int(nil), tour...),
		perm:      append([]int(nil), perm...),
		buckets:   make(map[uint64][]*ToothHandle),
	}
}

// Perm returns the tooth bank's perm.
func (b *ToothBank) Perm() []int { return b.perm }

// Size returns the number of distinct interned teeth.
func (b *ToothBank) Size() int { return b.size }

// Add interns t, incrementing refcount on a hit.
func (b *ToothBank) Add(t Tooth) *ToothHandle {
	h := t.Hash()
	for _, cand := range b.buckets[h] {
		if cand.Value.Equal(t) {
			cand.refs++
			return cand
		}
	}
	nh := &ToothHandle{Value: t, refs: 1}
	b.buckets[h] = append(b.buckets[h], nh)
	b.size++
	return nh
}

// Del decrements h's refcount, removing it from the bank at zero.
func (b *ToothBank) Del(h *ToothHandle) {
	if h == nil {
		return
	}
	h.refs--
	if h.refs > 0 {
		return
	}
	bucket := b.buckets[h.Value.Hash()]
	for i, cand := range bucket {
		if cand == h {
			bucket[i] = bucket[len(bucket)-1]
			b.buckets[h.Value.Hash()] = bucket[:len(bucket)-1]
			b.size--
			return
		}
	}
}
