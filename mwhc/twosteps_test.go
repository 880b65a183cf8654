package mwhc

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTwoStepsRoundTripSkewedDistribution(t *testing.T) {
	r := rand.New(rand.NewSource(17))
	n := 1000
	triples := randomTriples(r, n)
	values := make([]uint64, n)
	// Skewed: most keys map to one of a handful of common lcp-length-like
	// values, a few map to rare wide ones.
	common := []uint64{1, 2, 3}
	for i := range values {
		if r.Intn(100) < 90 {
			values[i] = common[r.Intn(len(common))]
		} else {
			values[i] = 100 + uint64(r.Intn(50))
		}
	}

	f, err := BuildTwoSteps(triples, values, 8, 1.23, 0)
	require.NoError(t, err)

	for i, tr := range triples {
		require.Equal(t, values[i], f.Get(tr.H0, tr.H1, tr.H2), "key %d", i)
	}
	require.Greater(t, f.RankMean, 0.0)
}

func TestTwoStepsUniformDistribution(t *testing.T) {
	r := rand.New(rand.NewSource(31))
	n := 300
	triples := randomTriples(r, n)
	values := make([]uint64, n)
	for i := range values {
		values[i] = uint64(i) // every value distinct: worst case for the rank table
	}

	f, err := BuildTwoSteps(triples, values, 16, 1.23, 0)
	require.NoError(t, err)
	for i, tr := range triples {
		require.Equal(t, values[i], f.Get(tr.H0, tr.H1, tr.H2))
	}
}

func TestTwoStepsEmpty(t *testing.T) {
	f, err := BuildTwoSteps(nil, nil, 8, 1.23, 0)
	require.NoError(t, err)
	require.Equal(t, uint64(0), f.Get(1, 2, 3))
}

func TestTwoStepsAllIdenticalValue(t *testing.T) {
	r := rand.New(rand.NewSource(41))
	n := 100
	triples := randomTriples(r, n)
	values := make([]uint64, n)
	for i := range values {
		values[i] = 7
	}
	f, err := BuildTwoSteps(triples, values, 8, 1.23, 0)
	require.NoError(t, err)
	for _, tr := range triples {
		require.Equal(t, uint64(7), f.Get(tr.H0, tr.H1, tr.H2))
	}
}
