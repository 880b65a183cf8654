// Package mmphf implements the monotone minimal perfect hash function
// assembler of spec.md §4.4: it buckets a sorted, prefix-free key set,
// extracts one longest-common-prefix distributor per bucket, and composes
// three retrieval functions (lcp2Bucket, offsets, lcpLengths) into a
// constant-time rank query.
package mmphf

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/aogurtsov/mmphf/internal/bitpack"
	"github.com/aogurtsov/mmphf/mwhc"
	"github.com/aogurtsov/mmphf/transform"
)

// MMPHF is a built monotone minimal perfect hash function. The zero value
// is not usable; construct with Build.
type MMPHF struct {
	n              int
	bucketSize     int
	log2BucketSize int
	seed           uint64

	offsets    *mwhc.MWHCFunction
	lcpLengths *mwhc.TwoStepsMWHCFunction
	lcp2Bucket *mwhc.MWHCFunction

	signatures    *bitpack.PackedList
	signatureMask uint64

	defRetValue int64
	transform   transform.Strategy
}

// Len returns the number of keys the function was built over.
func (m *MMPHF) Len() int { return m.n }

// Seed returns the shared hash seed every sub-function keys into.
func (m *MMPHF) Seed() uint64 { return m.seed }

// BucketSize returns the fixed bucket size chosen at build time.
func (m *MMPHF) BucketSize() int { return m.bucketSize }

// Get returns key's rank in [0, n), or the configured sentinel
// (DefRetValue, -1 by default) if key is out of domain or, when a
// signature is configured, fails the guard. Get never fails and is
// safe for concurrent use.
func (m *MMPHF) Get(key string) int64 {
	if m.n == 0 {
		return m.defRetValue
	}

	bv := m.transform.ToBitVector(key)
	h0, h1, h2, _ := bv.HashTriple(m.seed)

	prefix := m.lcpLengths.Get(h0, h1, h2)
	if prefix > uint64(bv.Len()) {
		return m.defRetValue
	}
	slice := bv.Prefix(uint32(prefix))

	sh0, sh1, sh2, _ := slice.HashTriple(m.seed)
	bucketID := m.lcp2Bucket.Get(sh0, sh1, sh2)
	offset := m.offsets.Get(h0, h1, h2)

	result := bucketID*uint64(m.bucketSize) + offset
	if result >= uint64(m.n) {
		return m.defRetValue
	}

	if m.signatureMask != 0 {
		stored := m.signatures.Get(int(result))
		if (stored^h0)&m.signatureMask != 0 {
			return m.defRetValue
		}
	}

	return int64(result)
}

// Stats summarizes a built MMPHF's storage footprint, for diagnostics and
// CLI reporting.
type Stats struct {
	NumKeys        int
	BucketSize     int
	NumBuckets     int
	OffsetsBits    int
	LcpLengthsBits int
	Lcp2BucketBits int
	SignatureBits  int
	TotalBits      int
}

// Stats computes the current storage footprint.
func (m *MMPHF) Stats() Stats {
	s := Stats{
		NumKeys:    m.n,
		BucketSize: m.bucketSize,
	}
	if m.bucketSize > 0 {
		s.NumBuckets = (m.n + m.bucketSize - 1) / m.bucketSize
	}
	if m.offsets != nil {
		s.OffsetsBits = int(m.offsets.M()) * m.offsets.Width()
	}
	if m.lcpLengths != nil {
		s.LcpLengthsBits = m.lcpLengths.Bits()
	}
	if m.lcp2Bucket != nil {
		s.Lcp2BucketBits = int(m.lcp2Bucket.M()) * m.lcp2Bucket.Width()
	}
	if m.signatures != nil {
		s.SignatureBits = m.signatures.NumBits()
	}
	s.TotalBits = s.OffsetsBits + s.LcpLengthsBits + s.Lcp2BucketBits + s.SignatureBits
	return s
}

// Breakdown renders a per-sub-function indented tree of storage footprint,
// for diagnostics that want more structure than String's single line.
func (s Stats) Breakdown() string {
	var sb strings.Builder
	line := func(indent int, name string, bits int) {
		sb.WriteString(strings.Repeat("  ", indent))
		sb.WriteString(fmt.Sprintf("%s: %s\n", name, humanize.Bytes(uint64(bits/8))))
	}
	line(0, "mmphf", s.TotalBits)
	line(1, "offsets", s.OffsetsBits)
	line(1, "lcpLengths", s.LcpLengthsBits)
	line(1, "lcp2Bucket", s.Lcp2BucketBits)
	line(1, "signatures", s.SignatureBits)
	return sb.String()
}

// String renders Stats as a human-readable summary, e.g. for CLI output.
func (s Stats) String() string {
	bitsPerKey := 0.0
	if s.NumKeys > 0 {
		bitsPerKey = float64(s.TotalBits) / float64(s.NumKeys)
	}
	return humanize.Comma(int64(s.NumKeys)) + " keys, " +
		humanize.Bytes(uint64(s.TotalBits/8)) + " total, " +
		humanize.FormatFloat("#,###.##", bitsPerKey) + " bits/key"
}
