// Package hypergraph implements the 3-uniform hypergraph peeling solver
// used to orient the edges of an MWHC retrieval function: given n edges
// over an m-vertex, 3-segment vertex set, it determines whether the
// hypergraph can be fully "leaf stripped" and, if so, in what order.
package hypergraph

// Gamma is the default edge/vertex overhead constant recommended for
// peelability with high probability (m = ceil(gamma*n), rounded so m is a
// multiple of 3).
const Gamma = 1.23

// smallInstanceThreshold is the edge count below which the asymptotic
// gamma=1.23 peelability threshold no longer holds: with only a handful
// of vertices per segment, birthday collisions dominate and the graph
// is essentially never peelable no matter how many times it is reseeded.
// Below the threshold VertexCount substitutes smallInstanceGamma instead.
const smallInstanceThreshold = 32

// smallInstanceGamma is the overhead factor used for n < smallInstanceThreshold.
const smallInstanceGamma = 2.5

// VertexCount returns a vertex-set size m, a multiple of 3, large enough
// that a 3-uniform hypergraph over n random edges peels with high
// probability under the given gamma. For small n it substitutes a more
// generous overhead regardless of gamma, since the asymptotic threshold
// does not hold at small scale.
func VertexCount(n int, gamma float64) uint64 {
	if n == 0 {
		return 0
	}
	if n < smallInstanceThreshold {
		gamma = smallInstanceGamma
	}
	m := uint64(gamma*float64(n)) + 1
	if m < 3 {
		m = 3
	}
	// round up to a multiple of 3 so the three segments are equal sized.
	m = (m + 2) / 3 * 3
	return m
}

// VertexTriple maps a key's 64-bit hash triple into the three disjoint
// vertex segments [0,m/3), [m/3,2m/3), [2m/3,m) that make up an m-vertex,
// 3-uniform hypergraph.
func VertexTriple(h0, h1, h2, m uint64) (v0, v1, v2 uint64) {
	seg := m / 3
	v0 = h0 % seg
	v1 = seg + h1%seg
	v2 = 2*seg + h2%seg
	return v0, v1, v2
}

// Peel attempts to find a full peeling order for the 3-uniform hypergraph
// whose n edges are e_i = (vertex0[i], vertex1[i], vertex2[i]), over an
// m-vertex set starting at vertex id base (so vertex ids lie in
// [base, base+len(d))).
//
// On success, ok is true, hinges[i] holds the hinge vertex chosen for edge
// i, and order lists edge indices in the order they were peeled (i.e. the
// order in which degree-1 vertices were stripped). Callers wishing to
// assign cell values must walk order in reverse, so that by the time an
// edge's hinge cell is written, both of its non-hinge cells have already
// settled.
//
// On failure (graph not peelable), ok is false and hinges/order are not
// meaningful; the caller should reseed and retry with fresh hash triples.
func Peel(d []uint64, vertex0, vertex1, vertex2 []uint64, hinges []uint64, base uint64) (order []uint64, ok bool) {
	n := len(vertex0)
	if len(vertex1) != n || len(vertex2) != n || len(hinges) != n {
		panic("hypergraph: mismatched edge array lengths")
	}
	m := len(d)

	deg := make([]uint64, m)
	copy(deg, d)
	edgeXor := make([]uint64, m)

	for e := 0; e < n; e++ {
		verts := [3]uint64{vertex0[e], vertex1[e], vertex2[e]}
		for _, v := range verts {
			edgeXor[v-base] ^= uint64(e)
		}
	}

	queue := make([]uint64, 0, m)
	for v := 0; v < m; v++ {
		if deg[v] == 1 {
			queue = append(queue, uint64(v))
		}
	}

	order = make([]uint64, 0, n)
	peeled := make([]bool, n)

	for len(queue) > 0 {
		v := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		if deg[v] != 1 {
			continue
		}

		e := edgeXor[v]
		if peeled[e] {
			continue
		}

		hinges[e] = v + base
		order = append(order, e)
		peeled[e] = true

		verts := [3]uint64{vertex0[e], vertex1[e], vertex2[e]}
		for _, w := range verts {
			idx := w - base
			deg[idx]--
			edgeXor[idx] ^= e
			if deg[idx] == 1 {
				queue = append(queue, idx)
			}
		}
	}

	return order, len(order) == n
}
