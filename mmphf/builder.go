package mmphf

import (
	"crypto/rand"
	"io"
	"math"
	"math/bits"
	"strconv"

	"github.com/aogurtsov/mmphf/bitstring"
	"github.com/aogurtsov/mmphf/hypergraph"
	"github.com/aogurtsov/mmphf/internal/bitpack"
	"github.com/aogurtsov/mmphf/mwhc"
	"github.com/aogurtsov/mmphf/store"
	"github.com/aogurtsov/mmphf/transform"
)

// ProgressFunc is an optional build-progress sink; stage names are
// "extract", "lcp2Bucket", "offsets", "lcpLengths" in that order.
type ProgressFunc func(stage string, done, total int)

// Config configures Build. Keys must already be lexicographically sorted,
// prefix-free and distinct under Transform; Build detects and rejects
// violations rather than sorting or deduplicating them itself.
type Config struct {
	// Keys is the ordered, sorted, prefix-free key set to build over.
	Keys []string
	// NumKeys, when > 0, overrides len(Keys) for callers that stream keys
	// through a pre-sized Keys slice; the zero value uses len(Keys).
	NumKeys int
	// Transform converts keys to BitVectors; nil defaults to transform.UTF8{}.
	Transform transform.Strategy
	// SignatureWidth: 0 disables the signature guard; k > 0 stores a
	// k-bit signature per rank for non-member rejection. Negative values
	// are accepted with the same magnitude-based guard as |k| (the
	// "dictionary" mode spec.md §9 leaves unconfirmed is not implemented).
	SignatureWidth int
	// TempDir is forwarded to the underlying ChunkedHashStore as a spill
	// directory hint; this implementation keeps everything in memory.
	TempDir string
	// DefRetValue is the sentinel Get returns for out-of-domain queries.
	// Zero value of Config yields -1, the package default.
	DefRetValue int64
	// Rand supplies entropy for seed retries; nil defaults to crypto/rand.Reader.
	Rand io.Reader
	// ChunkSize is forwarded to the ChunkedHashStore; <= 0 uses its default.
	ChunkSize int
	// MaxAttempts bounds every reseed-and-retry loop; <= 0 uses each
	// component's own default.
	MaxAttempts int
	// Progress, if non-nil, is called as each build stage completes.
	Progress ProgressFunc
}

func (c Config) numKeys() int {
	if c.NumKeys > 0 {
		return c.NumKeys
	}
	return len(c.Keys)
}

// Build constructs a monotone MMPHF over cfg.Keys per spec.md §4.4: bucket
// the sorted keys, extract one LCP distributor per bucket, and compose
// lcp2Bucket/offsets/lcpLengths into the rank query.
func Build(cfg Config) (*MMPHF, error) {
	n := cfg.numKeys()
	defRet := cfg.DefRetValue
	if defRet == 0 {
		defRet = -1
	}
	strat := cfg.Transform
	if strat == nil {
		strat = transform.UTF8{}
	}

	if n == 0 {
		return &MMPHF{defRetValue: defRet, transform: strat}, nil
	}

	rng := cfg.Rand
	if rng == nil {
		rng = rand.Reader
	}
	maxAttempts := cfg.MaxAttempts

	bvs := make([]bitstring.BitVector, n)
	for i := 0; i < n; i++ {
		bvs[i] = strat.ToBitVector(cfg.Keys[i])
	}

	bucketSize, log2BucketSize := bucketSizeFor(n, hypergraph.Gamma)
	distributors, lcpLen, err := extractBuckets(bvs, bucketSize)
	if err != nil {
		return nil, err
	}
	if cfg.Progress != nil {
		cfg.Progress("extract", n, n)
	}
	numBuckets := len(distributors)

	if err := assertDistinctDistributors(distributors); err != nil {
		return nil, err
	}

	// The key set and the distributor set are each fed into their own,
	// independent MWHC hypergraph (offsets/lcpLengths over keys,
	// lcp2Bucket over distributors), so a triple collision between a key
	// and an unrelated distributor is harmless - only within-set
	// collisions are fatal. A distributor can also be byte-identical to
	// its bucket's own first key whenever that bucket holds a single
	// key, which would make the two sets permanently collide under any
	// seed if they were stabilized together. So the two sets are
	// stabilized against a shared seed in lockstep instead of through
	// one combined store.
	seed := uint64(0)
	var keyRecords []store.Record
	var distTriples []mwhc.Triple
	stabilized := false

	keyAttempts := maxAttempts
	if keyAttempts <= 0 {
		keyAttempts = store.DefaultMaxAttempts
	}
	for attempt := 0; attempt < keyAttempts; attempt++ {
		st := store.New(seed, cfg.ChunkSize)
		if cfg.TempDir != "" {
			st.WithTempDir(cfg.TempDir)
		}
		for _, bv := range bvs {
			st.Add(bv)
		}
		if err := st.CheckAndRetry(rng, 1); err == nil {
			recs, rerr := st.Records()
			if rerr != nil {
				return nil, ioFailedErr(rerr)
			}
			if dt, ok := distinctDistributorTriples(distributors, seed); ok {
				keyRecords, distTriples, stabilized = recs, dt, true
				break
			}
		}
		next, serr := drawSeed(rng)
		if serr != nil {
			return nil, ioFailedErr(serr)
		}
		seed = next
	}
	if !stabilized {
		return nil, constructionFailedErr("store seed stabilization: reseed budget exhausted")
	}

	keyTriples := make([]mwhc.Triple, n)
	for i, r := range keyRecords {
		keyTriples[i] = mwhc.Triple{H0: r.H0, H1: r.H1, H2: r.H2}
	}
	distributorTriples := distTriples

	bucketIDWidth := ceilLog2(uint64(numBuckets))
	lcp2Bucket, _, err := mwhc.Build(distributorTriples, bucketIndexValues(numBuckets), bucketIDWidth, maxAttempts)
	if err != nil {
		return nil, constructionFailedErr("lcp2Bucket: " + err.Error())
	}
	if cfg.Progress != nil {
		cfg.Progress("lcp2Bucket", numBuckets, numBuckets)
	}

	offsets, _, err := mwhc.Build(keyTriples, offsetSupplier{bucketSize: bucketSize, n: n}, log2BucketSize, maxAttempts)
	if err != nil {
		return nil, constructionFailedErr("offsets: " + err.Error())
	}
	if cfg.Progress != nil {
		cfg.Progress("offsets", n, n)
	}

	maxLcp := uint64(0)
	lcpValues := make([]uint64, n)
	for i := 0; i < n; i++ {
		v := lcpLen[i/bucketSize]
		lcpValues[i] = uint64(v)
		if uint64(v) > maxLcp {
			maxLcp = uint64(v)
		}
	}
	lcpWidth := ceilLog2(maxLcp + 1)
	lcpLengths, err := mwhc.BuildTwoSteps(keyTriples, lcpValues, lcpWidth, hypergraph.Gamma, maxAttempts)
	if err != nil {
		return nil, constructionFailedErr("lcpLengths: " + err.Error())
	}
	if cfg.Progress != nil {
		cfg.Progress("lcpLengths", n, n)
	}

	m := &MMPHF{
		n:              n,
		bucketSize:     bucketSize,
		log2BucketSize: log2BucketSize,
		seed:           seed,
		offsets:        offsets,
		lcpLengths:     lcpLengths,
		lcp2Bucket:     lcp2Bucket,
		defRetValue:    defRet,
		transform:      strat,
	}

	if cfg.SignatureWidth != 0 {
		width := cfg.SignatureWidth
		if width < 0 {
			width = -width
		}
		if width > 64 {
			width = 64
		}
		mask := signatureMaskFor(width)
		sigs := bitpack.New(n, width)
		for i, r := range keyRecords {
			sigs.Set(i, r.H0&mask)
		}
		m.signatures = sigs
		m.signatureMask = mask
	}

	return m, nil
}

// bucketSizeFor computes bucketSize and log2BucketSize per spec.md §4.4:
// t = ceil(1 + gamma*ln2 + ln(n) - ln(1+ln(n))), log2BucketSize = ceil(log2(t)).
func bucketSizeFor(n int, gamma float64) (bucketSize, log2BucketSize int) {
	lnN := math.Log(float64(n))
	t := math.Ceil(1 + gamma*math.Ln2 + lnN - math.Log(1+lnN))
	if t < 1 {
		t = 1
	}
	log2BucketSize = int(math.Ceil(math.Log2(t)))
	if log2BucketSize < 0 {
		log2BucketSize = 0
	}
	bucketSize = 1 << uint(log2BucketSize)
	return bucketSize, log2BucketSize
}

// ceilLog2 returns ceil(log2(x)) for x >= 1; ceilLog2(0) and ceilLog2(1) are 0.
func ceilLog2(x uint64) int {
	if x <= 1 {
		return 0
	}
	return bits.Len64(x - 1)
}

// extractBuckets performs the single-pass LCP extraction described in
// spec.md §4.4: it validates every globally-adjacent pair of sorted keys
// (duplicate / not-prefix-free / not-sorted, in that exact order) and
// separately tracks, per bucket, the minimum LCP among that bucket's own
// internal adjacent pairs - the value that becomes the bucket's distributor.
//
// Cross-bucket-boundary pairs are validated like every other adjacent pair
// (the dataset-wide sortedness/uniqueness invariants do not stop at a
// bucket boundary) but do not narrow the next bucket's currLcp: each
// bucket's currLcp resets to its own first key's length, since the
// distributor only needs to disambiguate the bucket's own members.
func extractBuckets(keys []bitstring.BitVector, bucketSize int) (distributors []bitstring.BitVector, lcpLen []uint32, err error) {
	n := len(keys)
	numBuckets := (n + bucketSize - 1) / bucketSize
	distributors = make([]bitstring.BitVector, numBuckets)
	lcpLen = make([]uint32, numBuckets)

	bucketStart := 0
	currLcp := keys[0].Len()

	finish := func(b int) {
		first := keys[bucketStart]
		distributors[b] = first.Prefix(currLcp)
		lcpLen[b] = currLcp
	}

	for i := 1; i < n; i++ {
		prev := keys[i-1]
		curr := keys[i]
		prefix := prev.LCPLen(curr)

		switch {
		case prefix == prev.Len() && prefix == curr.Len():
			return nil, nil, duplicateKeyErr(i)
		case prefix == prev.Len() || prefix == curr.Len():
			return nil, nil, notPrefixFreeErr(i)
		case prev.At(prefix):
			return nil, nil, notSortedErr(i)
		}

		if i%bucketSize == 0 {
			b := i/bucketSize - 1
			finish(b)
			bucketStart = i
			currLcp = keys[i].Len()
		} else if prefix < currLcp {
			currLcp = prefix
		}
	}
	finish(numBuckets - 1)

	return distributors, lcpLen, nil
}

func assertDistinctDistributors(distributors []bitstring.BitVector) error {
	seen := make(map[string]bool, len(distributors))
	for _, d := range distributors {
		key := strconv.FormatUint(uint64(d.Len()), 10) + "|" + string(d.Bytes())
		if seen[key] {
			return constructionFailedErr("distributor set is not internally distinct")
		}
		seen[key] = true
	}
	return nil
}

type bucketIndexValues int

func (b bucketIndexValues) Value(i int) uint64 { return uint64(i) }
func (b bucketIndexValues) Len() int           { return int(b) }

type offsetSupplier struct {
	bucketSize int
	n          int
}

func (o offsetSupplier) Value(i int) uint64 { return uint64(i % o.bucketSize) }
func (o offsetSupplier) Len() int           { return o.n }

// distinctDistributorTriples hashes every distributor under seed and
// reports whether the resulting triples are pairwise distinct - the
// within-set invariant lcp2Bucket needs, independent of the key set's own
// hash triples.
func distinctDistributorTriples(distributors []bitstring.BitVector, seed uint64) ([]mwhc.Triple, bool) {
	type triple struct{ h0, h1, h2 uint64 }
	seen := make(map[triple]struct{}, len(distributors))
	out := make([]mwhc.Triple, len(distributors))
	for i, d := range distributors {
		h0, h1, h2, _ := d.HashTriple(seed)
		t := triple{h0, h1, h2}
		if _, dup := seen[t]; dup {
			return nil, false
		}
		seen[t] = struct{}{}
		out[i] = mwhc.Triple{H0: h0, H1: h1, H2: h2}
	}
	return out, true
}

func drawSeed(rng io.Reader) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(rng, buf[:]); err != nil {
		return 0, err
	}
	var seed uint64
	for _, b := range buf {
		seed = seed<<8 | uint64(b)
	}
	return seed, nil
}

func signatureMaskFor(width int) uint64 {
	if width >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << uint(width)) - 1
}
