// Package mwhc implements the MWHC-style retrieval function: given n keys
// with precomputed hash triples and a value per key, it builds a
// bit-packed cell array such that XORing the three cells addressed by a
// key's triple reconstructs that key's value.
package mwhc

import (
	"github.com/hillbig/rsdic"

	"github.com/aogurtsov/mmphf/hypergraph"
	"github.com/aogurtsov/mmphf/internal/bitpack"
	"github.com/aogurtsov/mmphf/internal/errutil"
)

// DefaultMaxAttempts bounds the reseed-and-retry loop run when a draw of
// vertex triples fails to peel.
const DefaultMaxAttempts = 64

// Triple is a key's three hypergraph hash values, computed upstream
// (typically by a ChunkedHashStore) from a BitVector and a shared seed.
type Triple struct {
	H0, H1, H2 uint64
}

// ValueSupplier supplies the value to retrieve for key index i, without
// requiring the caller to pre-buffer all values - the "indirect mode" of
// spec.md's value supplier contract.
type ValueSupplier interface {
	Value(i int) uint64
	Len() int
}

// SliceValues adapts a plain []uint64 to ValueSupplier.
type SliceValues []uint64

func (s SliceValues) Value(i int) uint64 { return s[i] }
func (s SliceValues) Len() int           { return len(s) }

// Stats reports diagnostics about a completed build.
type Stats struct {
	Attempts   int
	M          uint64
	BitsPerKey float64
}

// MWHCFunction is a built retrieval function: Get(h0,h1,h2) reconstructs
// the value stored for the key that produced that triple.
type MWHCFunction struct {
	n        int
	m        uint64
	width    int
	salt     uint64
	cells    *bitpack.PackedList
	occupied *rsdic.RSDic
}

// Build constructs an MWHCFunction over n keys, given their hash triples
// and a width-bit value per key. It repeatedly perturbs how triples map
// into hypergraph vertices (via a per-attempt salt) until the resulting
// 3-uniform hypergraph peels, up to maxAttempts times; maxAttempts <= 0
// uses DefaultMaxAttempts.
//
// The triples themselves are not re-derived here: spec.md's ChunkedHashStore
// owns reseeding to eliminate triple collisions across the whole key set,
// and that seed is shared by every function built from the same store.
// What MWHCFunction reseeds locally is the vertex-mapping salt, since
// distinct triples do not by themselves guarantee a peelable graph.
func Build(triples []Triple, values ValueSupplier, width int, maxAttempts int) (*MWHCFunction, Stats, error) {
	n := len(triples)
	errutil.BugOn(values.Len() != n, "mwhc: value supplier length %d != triple count %d", values.Len(), n)

	if n == 0 {
		return &MWHCFunction{width: width}, Stats{}, nil
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	m := hypergraph.VertexCount(n, hypergraph.Gamma)

	var (
		vertex0, vertex1, vertex2 []uint64
		hinges, order             []uint64
		salt                      uint64
		ok                        bool
	)

	attempt := 0
	for ; attempt < maxAttempts; attempt++ {
		salt = attemptSalt(attempt)
		vertex0 = make([]uint64, n)
		vertex1 = make([]uint64, n)
		vertex2 = make([]uint64, n)
		d := make([]uint64, m)
		for i, t := range triples {
			v0, v1, v2 := hypergraph.VertexTriple(t.H0^salt, t.H1^salt, t.H2^salt, m)
			vertex0[i], vertex1[i], vertex2[i] = v0, v1, v2
			d[v0]++
			d[v1]++
			d[v2]++
		}
		hinges = make([]uint64, n)
		order, ok = hypergraph.Peel(d, vertex0, vertex1, vertex2, hinges, 0)
		if ok {
			break
		}
	}
	if !ok {
		return nil, Stats{Attempts: attempt, M: m}, ErrConstructionFailed
	}

	cells := bitpack.New(int(m), width)
	occBits := make([]bool, m)

	for i := len(order) - 1; i >= 0; i-- {
		e := order[i]
		h := hinges[e]
		a, b := otherTwo(vertex0[e], vertex1[e], vertex2[e], h)
		val := values.Value(int(e))
		cells.Set(int(h), val^cells.Get(int(a))^cells.Get(int(b)))
		occBits[h] = true
	}

	occupied := rsdic.New()
	for i := uint64(0); i < m; i++ {
		occupied.PushBack(occBits[i])
	}

	bitsPerKey := 0.0
	if n > 0 {
		bitsPerKey = float64(cells.NumBits()) / float64(n)
	}

	f := &MWHCFunction{
		n:        n,
		m:        m,
		width:    width,
		salt:     salt,
		cells:    cells,
		occupied: occupied,
	}
	return f, Stats{Attempts: attempt + 1, M: m, BitsPerKey: bitsPerKey}, nil
}

// Get reconstructs the value associated with the hash triple (h0,h1,h2).
// There is no bounds failure: a triple that never corresponded to a build
// key yields an arbitrary width-bit value.
func (f *MWHCFunction) Get(h0, h1, h2 uint64) uint64 {
	if f.m == 0 {
		return 0
	}
	v0, v1, v2 := hypergraph.VertexTriple(h0^f.salt, h1^f.salt, h2^f.salt, f.m)
	return f.cells.Get(int(v0)) ^ f.cells.Get(int(v1)) ^ f.cells.Get(int(v2))
}

// Len returns the number of keys this function was built over.
func (f *MWHCFunction) Len() int { return f.n }

// Width returns the per-cell bit width.
func (f *MWHCFunction) Width() int { return f.width }

// M returns the hypergraph's vertex count (cell count).
func (f *MWHCFunction) M() uint64 { return f.m }

// Occupancy exposes the succinct rank-capable bitvector recording which
// cells were written during the peel assignment pass, for size/diagnostic
// accounting by callers.
func (f *MWHCFunction) Occupancy() *rsdic.RSDic { return f.occupied }

func otherTwo(v0, v1, v2, h uint64) (a, b uint64) {
	switch h {
	case v0:
		return v1, v2
	case v1:
		return v0, v2
	default:
		return v0, v1
	}
}

// attemptSalt derives a distinct 64-bit salt per retry attempt from a
// splitmix64-style increment so successive attempts draw independent
// vertex mappings without re-deriving the underlying hash triples.
func attemptSalt(attempt int) uint64 {
	x := uint64(attempt)*0x9E3779B97F4A7C15 + 0x9E3779B97F4A7C15
	x ^= x >> 33
	x *= 0xff51afd7ed558ccd
	x ^= x >> 33
	x *= 0xc4ceb9fe1a85ec53
	x ^= x >> 33
	return x
}
