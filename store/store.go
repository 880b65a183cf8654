// Package store implements the ChunkedHashStore contract of spec.md §4.3:
// it buffers the hash triple derived from each key's BitVector, verifies
// the triples are pairwise distinct under the current seed (reseeding and
// rescanning when they are not), and then hands the confirmed records out
// in deterministic, chunk-sized batches so every retrieval function built
// from the store keys into the same stabilized seed.
package store

import (
	"encoding/binary"
	"errors"
	"io"

	"github.com/aogurtsov/mmphf/bitstring"
)

// DefaultChunkSize is used when a non-positive chunk size is requested.
const DefaultChunkSize = 1 << 16

// DefaultMaxAttempts bounds the reseed-and-rescan loop CheckAndRetry runs.
const DefaultMaxAttempts = 64

// ErrConstructionFailed is returned when the reseed budget is exhausted
// without finding a seed under which every key's hash triple is distinct.
var ErrConstructionFailed = errors.New("store: construction failed: reseed budget exhausted")

// errNotChecked is returned by ForEachChunk/Records if called before a
// successful CheckAndRetry.
var errNotChecked = errors.New("store: checkAndRetry has not completed successfully")

// Record is one key's stabilized hash triple and original build-time
// index. HashTriple's fourth "chunk slot" value is not carried here: the
// signature guard (spec.md §9 leaves slot-vs-h0 ambiguous) is built
// against h0 directly, see DESIGN.md, so no consumer needs the slot.
type Record struct {
	H0, H1, H2 uint64
	Index      int
}

// ChunkedHashStore ingests BitVectors in key order, then stabilizes a
// shared seed under which every key's hash triple is pairwise distinct.
type ChunkedHashStore struct {
	seed      uint64
	chunkSize int
	tempDir   string
	keys      []bitstring.BitVector
	records   []Record
}

// New creates a store seeded with the given initial seed; chunkSize <= 0
// uses DefaultChunkSize.
func New(seed uint64, chunkSize int) *ChunkedHashStore {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &ChunkedHashStore{seed: seed, chunkSize: chunkSize}
}

// WithTempDir records a spill directory hint. This implementation keeps
// all records in memory (spec.md §9 scopes on-disk spill out as a
// collaborator concern); the hint is retained only so callers that expect
// the option to round-trip see it reflected back via TempDir.
func (s *ChunkedHashStore) WithTempDir(dir string) *ChunkedHashStore {
	s.tempDir = dir
	return s
}

// TempDir returns the spill directory hint, if any.
func (s *ChunkedHashStore) TempDir() string { return s.tempDir }

// Add ingests one key's BitVector. Keys must be added in the final build
// order; Index in the resulting Record reflects that order.
func (s *ChunkedHashStore) Add(bv bitstring.BitVector) {
	s.keys = append(s.keys, bv)
}

// Len returns the number of keys added so far.
func (s *ChunkedHashStore) Len() int { return len(s.keys) }

// Seed returns the store's current seed. Before CheckAndRetry succeeds
// this is the initial seed; afterwards it is the stabilized one shared by
// every function built from this store.
func (s *ChunkedHashStore) Seed() uint64 { return s.seed }

// CheckAndRetry hashes every added key under the store's current seed and
// checks that all triples are pairwise distinct; on collision it draws a
// fresh seed from rng and rescans, up to maxAttempts times (maxAttempts <=
// 0 uses DefaultMaxAttempts). On success the seed is stable and Records /
// ForEachChunk become usable.
func (s *ChunkedHashStore) CheckAndRetry(rng io.Reader, maxAttempts int) error {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if records, ok := s.tryBuildRecords(); ok {
			s.records = records
			return nil
		}
		seed, err := nextSeed(rng)
		if err != nil {
			return err
		}
		s.seed = seed
	}
	return ErrConstructionFailed
}

func (s *ChunkedHashStore) tryBuildRecords() ([]Record, bool) {
	type triple struct{ h0, h1, h2 uint64 }
	seen := make(map[triple]struct{}, len(s.keys))
	records := make([]Record, len(s.keys))
	for i, bv := range s.keys {
		h0, h1, h2, _ := bv.HashTriple(s.seed)
		t := triple{h0, h1, h2}
		if _, dup := seen[t]; dup {
			return nil, false
		}
		seen[t] = struct{}{}
		records[i] = Record{H0: h0, H1: h1, H2: h2, Index: i}
	}
	return records, true
}

// Records returns the stabilized per-key records in build order. Valid
// only after CheckAndRetry has succeeded.
func (s *ChunkedHashStore) Records() ([]Record, error) {
	if s.records == nil {
		return nil, errNotChecked
	}
	return s.records, nil
}

// ForEachChunk iterates the stabilized records in ChunkSize-sized,
// deterministically ordered batches.
func (s *ChunkedHashStore) ForEachChunk(fn func(chunk []Record) error) error {
	if s.records == nil {
		return errNotChecked
	}
	for start := 0; start < len(s.records); start += s.chunkSize {
		end := start + s.chunkSize
		if end > len(s.records) {
			end = len(s.records)
		}
		if err := fn(s.records[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func nextSeed(rng io.Reader) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(rng, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}
