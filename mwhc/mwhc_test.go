package mwhc

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func randomTriples(r *rand.Rand, n int) []Triple {
	out := make([]Triple, n)
	for i := range out {
		out[i] = Triple{H0: r.Uint64(), H1: r.Uint64(), H2: r.Uint64()}
	}
	return out
}

func TestBuildAndGetRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(5))
	n := 200
	triples := randomTriples(r, n)
	values := make(SliceValues, n)
	for i := range values {
		values[i] = uint64(r.Intn(256))
	}

	f, stats, err := Build(triples, values, 8, 0)
	require.NoError(t, err)
	require.Equal(t, n, f.Len())
	require.Equal(t, 8, f.Width())
	require.Greater(t, stats.M, uint64(0))

	for i, tr := range triples {
		got := f.Get(tr.H0, tr.H1, tr.H2)
		require.Equal(t, values[i], got, "key %d", i)
	}
}

func TestBuildWithWiderValues(t *testing.T) {
	r := rand.New(rand.NewSource(99))
	n := 500
	triples := randomTriples(r, n)
	values := make(SliceValues, n)
	for i := range values {
		values[i] = r.Uint64() & ((1 << 37) - 1)
	}

	f, _, err := Build(triples, values, 37, 0)
	require.NoError(t, err)
	for i, tr := range triples {
		require.Equal(t, values[i], f.Get(tr.H0, tr.H1, tr.H2))
	}
}

func TestBuildEmpty(t *testing.T) {
	f, stats, err := Build(nil, SliceValues{}, 8, 0)
	require.NoError(t, err)
	require.Equal(t, 0, f.Len())
	require.Zero(t, stats.M)
	require.Equal(t, uint64(0), f.Get(1, 2, 3))
}

func TestBuildSingleKey(t *testing.T) {
	triples := []Triple{{H0: 42, H1: 7, H2: 99}}
	values := SliceValues{13}
	f, _, err := Build(triples, values, 8, 0)
	require.NoError(t, err)
	require.Equal(t, uint64(13), f.Get(42, 7, 99))
}

func TestOccupancyReflectsWrittenCells(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	n := 50
	triples := randomTriples(r, n)
	values := make(SliceValues, n)
	for i := range values {
		values[i] = uint64(i)
	}
	f, _, err := Build(triples, values, 8, 0)
	require.NoError(t, err)

	occ := f.Occupancy()
	require.Equal(t, f.M(), occ.Num())
	written := occ.Rank(occ.Num(), true)
	require.Equal(t, uint64(n), written)
}
