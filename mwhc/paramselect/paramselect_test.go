package paramselect

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWidthForMaxValue(t *testing.T) {
	require.Equal(t, Width8, WidthForMaxValue(0))
	require.Equal(t, Width8, WidthForMaxValue(0xFF))
	require.Equal(t, Width16, WidthForMaxValue(0x100))
	require.Equal(t, Width16, WidthForMaxValue(0xFFFF))
	require.Equal(t, Width32, WidthForMaxValue(0x10000))
	require.Equal(t, Width64, WidthForMaxValue(1<<40))
}

func TestBucketCount(t *testing.T) {
	require.Equal(t, 0, BucketCount(0, 8))
	require.Equal(t, 1, BucketCount(1, 8))
	require.Equal(t, 1, BucketCount(8, 8))
	require.Equal(t, 2, BucketCount(9, 8))
}

func TestWidthCandidates(t *testing.T) {
	require.Equal(t, []int{Width8, Width16, Width32, Width64}, WidthCandidates(1))
	require.Equal(t, []int{Width16, Width32, Width64}, WidthCandidates(9))
	require.Equal(t, []int{Width64}, WidthCandidates(33))
}

func TestRankRemainderSplitValidRange(t *testing.T) {
	s, ok := RankRemainderSplit(0.5, 5, 1.23)
	require.True(t, ok)
	require.InDelta(t, -0.4484, s, 1e-3)
}

func TestRankRemainderSplitOutOfDomain(t *testing.T) {
	_, ok := RankRemainderSplit(0.9, 1, 1.23)
	require.False(t, ok)

	_, ok = RankRemainderSplit(0, 5, 1.23)
	require.False(t, ok)

	_, ok = RankRemainderSplit(1, 5, 1.23)
	require.False(t, ok)
}

func TestRankCodeWidthFallsBackOutOfDomain(t *testing.T) {
	w := RankCodeWidth(0.9, 1, 1.23, 1000)
	require.Equal(t, WidthForMaxValue(1000), w)
}

func TestRankCodeWidthInDomain(t *testing.T) {
	w := RankCodeWidth(0.5, 5, 1.23, 1000)
	require.GreaterOrEqual(t, w, 1)
	require.LessOrEqual(t, w, Width64)
}
