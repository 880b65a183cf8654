// Package paramselect collects the small closed-form sizing calculations
// used when building MWHCFunction and TwoStepsMWHCFunction: cell widths,
// bucket counts, and the rank/remainder split threshold.
package paramselect

import (
	"math"

	"github.com/aogurtsov/mmphf/internal/errutil"
)

const (
	Width8  = 8
	Width16 = 16
	Width32 = 32
	Width64 = 64
)

var supportedWidths = []int{Width8, Width16, Width32, Width64}

// WidthForMaxValue returns the minimum unsigned integer width (in bits)
// required to represent values in [0..maxInclusive].
func WidthForMaxValue(maxInclusive uint64) int {
	switch {
	case maxInclusive <= 0xFF:
		return Width8
	case maxInclusive <= 0xFFFF:
		return Width16
	case maxInclusive <= 0xFFFFFFFF:
		return Width32
	default:
		return Width64
	}
}

// WidthForCountWithSentinel returns the minimum width (in bits) for indices
// [0..count-1] plus one sentinel value (represented as count itself).
func WidthForCountWithSentinel(count int) int {
	errutil.BugOn(count < 0, "count must be non-negative, got %d", count)
	return WidthForMaxValue(uint64(count))
}

// BucketCount returns ceil(totalKeys / bucketSize).
func BucketCount(totalKeys, bucketSize int) int {
	errutil.BugOn(totalKeys < 0, "totalKeys must be non-negative, got %d", totalKeys)
	errutil.BugOn(bucketSize <= 0, "bucketSize must be positive, got %d", bucketSize)
	if totalKeys == 0 {
		return 0
	}
	return (totalKeys + bucketSize - 1) / bucketSize
}

// WidthCandidates returns supported widths >= minBits.
func WidthCandidates(minBits int) []int {
	errutil.BugOn(minBits <= 0, "minBits must be positive, got %d", minBits)
	out := make([]int, 0, len(supportedWidths))
	for _, w := range supportedWidths {
		if w >= minBits {
			out = append(out, w)
		}
	}
	return out
}

// lambertWNegBranch evaluates the closed-form negative-branch approximation
// W(x) = -ln(-1/x) - ln(ln(-1/x)), valid for x in (-1, 0).
func lambertWNegBranch(x float64) (float64, bool) {
	if x <= -1 || x >= 0 {
		return 0, false
	}
	invNeg := -1 / x
	inner := math.Log(invNeg)
	if inner <= 0 {
		return 0, false
	}
	return -inner - math.Log(inner), true
}

// RankRemainderSplit computes the rank-table split threshold s(p, r) used
// to size TwoStepsMWHCFunction's rank code: p is the fraction of keys
// expected to be covered by the 2^s-1 most frequent values, r is the ratio
// of remaining (rare) values to covered ones, and gamma is the hypergraph
// overhead constant.
//
// W(x) = -ln(-1/x) - ln(ln(-1/x))
// s(p, r) = log2( W( 1 / (ln2 * (r+gamma) * (p-1)) ) / ln(1-p) )
//
// The closed form is only real-valued for a sub-range of (p, r); ok is
// false outside it, in which case callers should fall back to a width
// derived from WidthForMaxValue over the observed value count.
func RankRemainderSplit(p, r, gamma float64) (s float64, ok bool) {
	if p <= 0 || p >= 1 || r < 0 {
		return 0, false
	}
	x := 1 / (math.Ln2 * (r + gamma) * (p - 1))
	w, ok := lambertWNegBranch(x)
	if !ok {
		return 0, false
	}
	denom := math.Log(1 - p)
	if denom == 0 {
		return 0, false
	}
	s = math.Log2(w / denom)
	if math.IsNaN(s) || math.IsInf(s, 0) {
		return 0, false
	}
	return s, true
}

// RankCodeWidth rounds RankRemainderSplit up to an integer bit width
// suitable for a rank code, falling back to fallbackMaxValue's width when
// the closed form doesn't apply.
func RankCodeWidth(p, r, gamma float64, fallbackMaxValue uint64) int {
	s, ok := RankRemainderSplit(p, r, gamma)
	if !ok || s <= 0 {
		return WidthForMaxValue(fallbackMaxValue)
	}
	width := int(math.Ceil(s))
	if width < 1 {
		width = 1
	}
	if width > Width64 {
		width = Width64
	}
	return width
}
