package mwhc

import (
	"sort"

	"github.com/aogurtsov/mmphf/mwhc/paramselect"
)

// maxRankWidth caps the rank code width so the frequent-value table never
// dominates the layered function's footprint.
const maxRankWidth = 16

// defaultCoverageTarget is the fraction of keys the rank table tries to
// cover with frequent values before falling back to the remainder
// function; growth stops early if maxRankWidth is reached first.
const defaultCoverageTarget = 0.9

// TwoStepsMWHCFunction is the layered retrieval function of spec.md
// §4.2: a small F_rank maps every key to either 0 ("rare") or a 1-based
// code identifying one of the most frequent values; a wider F_remainder,
// built only over the keys with a rare value, stores the full value.
type TwoStepsMWHCFunction struct {
	rank      *MWHCFunction
	remainder *MWHCFunction
	rankTable []uint64

	// RankMean and Width are plain fields for callers to read after
	// build: the mean of the distinct values held in the rank table, and
	// the full bit width used by F_remainder.
	RankMean float64
	Width    int

	// Split is the Lambert-W closed-form threshold computed for the
	// achieved coverage split, exposed for diagnostics; SplitOK reports
	// whether the closed form was defined for that split (it is only
	// real-valued over a sub-range of (p, r), see paramselect).
	Split   float64
	SplitOK bool
}

type valueCount struct {
	value uint64
	count int
}

// BuildTwoSteps constructs a TwoStepsMWHCFunction over n keys and their
// width-bit values. gamma is the hypergraph overhead constant used both
// by the two MWHC sub-builds and by the diagnostic split computation.
func BuildTwoSteps(triples []Triple, values []uint64, width int, gamma float64, maxAttempts int) (*TwoStepsMWHCFunction, error) {
	n := len(triples)
	if n == 0 {
		return &TwoStepsMWHCFunction{Width: width}, nil
	}

	freq := make(map[uint64]int, n)
	for _, v := range values {
		freq[v]++
	}
	sorted := make([]valueCount, 0, len(freq))
	for v, c := range freq {
		sorted = append(sorted, valueCount{value: v, count: c})
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].count != sorted[j].count {
			return sorted[i].count > sorted[j].count
		}
		return sorted[i].value < sorted[j].value
	})

	maxChosen := (1 << maxRankWidth) - 1
	chosen := make([]uint64, 0, maxChosen)
	code := make(map[uint64]uint64, maxChosen)
	covered := 0
	for _, vc := range sorted {
		if len(chosen) >= maxChosen {
			break
		}
		chosen = append(chosen, vc.value)
		code[vc.value] = uint64(len(chosen))
		covered += vc.count
		if float64(covered)/float64(n) >= defaultCoverageTarget {
			break
		}
	}

	rankWidth := paramselect.WidthForCountWithSentinel(len(chosen))

	rankValues := make(SliceValues, n)
	for i, v := range values {
		rankValues[i] = code[v] // 0 when v is not in the chosen set
	}
	rankFn, _, err := Build(triples, rankValues, rankWidth, maxAttempts)
	if err != nil {
		return nil, err
	}

	var remainderTriples []Triple
	var remainderValues SliceValues
	for i, v := range values {
		if code[v] == 0 {
			remainderTriples = append(remainderTriples, triples[i])
			remainderValues = append(remainderValues, v)
		}
	}
	remainderFn, _, err := Build(remainderTriples, remainderValues, width, maxAttempts)
	if err != nil {
		return nil, err
	}

	rankMean := 0.0
	if len(chosen) > 0 {
		sum := 0.0
		for _, v := range chosen {
			sum += float64(v)
		}
		rankMean = sum / float64(len(chosen))
	}

	rare := n - covered
	p := float64(covered) / float64(n)
	r := 0.0
	if covered > 0 {
		r = float64(rare) / float64(covered)
	}
	split, ok := paramselect.RankRemainderSplit(p, r, gamma)

	return &TwoStepsMWHCFunction{
		rank:      rankFn,
		remainder: remainderFn,
		rankTable: chosen,
		RankMean:  rankMean,
		Width:     width,
		Split:     split,
		SplitOK:   ok,
	}, nil
}

// Bits returns the combined storage footprint, in bits, of the rank and
// remainder sub-functions, for size accounting by callers.
func (f *TwoStepsMWHCFunction) Bits() int {
	bits := 0
	if f.rank != nil {
		bits += int(f.rank.M()) * f.rank.Width()
	}
	if f.remainder != nil {
		bits += int(f.remainder.M()) * f.remainder.Width()
	}
	return bits
}

// Get reconstructs the value for the key that produced (h0,h1,h2): a
// frequent value served directly from the rank table, or a rare one
// looked up in the remainder function.
func (f *TwoStepsMWHCFunction) Get(h0, h1, h2 uint64) uint64 {
	if f.rank == nil {
		return 0
	}
	code := f.rank.Get(h0, h1, h2)
	if code != 0 && int(code) <= len(f.rankTable) {
		return f.rankTable[code-1]
	}
	if f.remainder == nil {
		return 0
	}
	return f.remainder.Get(h0, h1, h2)
}
