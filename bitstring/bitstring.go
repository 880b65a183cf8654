// Package bitstring implements the BitVector primitive shared by the
// hypergraph, mwhc, store and mmphf packages: an ordered, arbitrary-length
// sequence of bits with MSB-first semantics, so that lexicographic
// BitVector order matches ordinary byte-string order.
package bitstring

import (
	"encoding/binary"
	"math/bits"

	"github.com/zeebo/xxh3"
)

// BitVector is an immutable, MSB-first bit sequence backed by a packed
// []uint64 word array. Bit 0 is the most significant bit of the first
// byte of the logical byte representation.
type BitVector struct {
	words []uint64
	size  uint32 // number of valid bits
}

// FromBytes builds a BitVector out of the first size bits of data,
// interpreting data MSB-first (i.e. as an ordinary big-endian byte string).
func FromBytes(data []byte, size uint32) BitVector {
	if size == 0 {
		return BitVector{}
	}
	numBytes := (size + 7) / 8
	if uint32(len(data)) < numBytes {
		panic("bitstring: data too short for requested size")
	}
	words := make([]uint64, (size+63)/64)
	for i := uint32(0); i < numBytes; i++ {
		b := data[i]
		wordIdx := i / 8
		// Each word holds 8 bytes, MSB-first within the word: byte 0 of
		// the word occupies the top 8 bits.
		shift := 56 - 8*(i%8)
		words[wordIdx] |= uint64(b) << shift
	}
	return BitVector{words: words, size: size}
}

// FromString is a convenience constructor treating the UTF-8 bytes of s as
// the bit vector's contents, MSB-first.
func FromString(s string) BitVector {
	return FromBytes([]byte(s), uint32(len(s))*8)
}

// Len returns the number of valid bits in the vector.
func (b BitVector) Len() uint32 { return b.size }

// IsEmpty reports whether the vector has zero bits.
func (b BitVector) IsEmpty() bool { return b.size == 0 }

// At returns the bit at position i (0 = most significant bit overall).
func (b BitVector) At(i uint32) bool {
	if i >= b.size {
		panic("bitstring: index out of range")
	}
	word := b.words[i/64]
	// Within a word, bit 0 of the vector is the MSB of the word.
	shift := 63 - (i % 64)
	return (word>>shift)&1 == 1
}

// Equal reports whether two vectors have the same length and contents.
func (b BitVector) Equal(o BitVector) bool {
	if b.size != o.size {
		return false
	}
	for i := range b.words {
		if b.words[i] != o.words[i] {
			return false
		}
	}
	return true
}

// LCPLen returns the length, in bits, of the longest common prefix of b
// and o.
func (b BitVector) LCPLen(o BitVector) uint32 {
	min := b.size
	if o.size < min {
		min = o.size
	}
	if min == 0 {
		return 0
	}

	fullWords := min / 64
	var i uint32
	for i = 0; i < fullWords; i++ {
		if b.words[i] != o.words[i] {
			diff := b.words[i] ^ o.words[i]
			return i*64 + uint32(bits.LeadingZeros64(diff))
		}
	}

	result := fullWords * 64
	if result == min {
		return min
	}

	diff := b.words[fullWords] ^ o.words[fullWords]
	rem := min - result
	lead := uint32(bits.LeadingZeros64(diff))
	if lead > rem {
		lead = rem
	}
	return result + lead
}

// HasPrefix reports whether p is a prefix of b.
func (b BitVector) HasPrefix(p BitVector) bool {
	if p.size > b.size {
		return false
	}
	return b.LCPLen(p) == p.size
}

// Prefix returns the first n bits of b as a new BitVector. Panics if
// n > b.Len().
func (b BitVector) Prefix(n uint32) BitVector {
	if n > b.size {
		panic("bitstring: prefix length exceeds vector size")
	}
	return b.SubVector(0, n)
}

// SubVector returns the half-open bit range [from, to) as a new,
// word-aligned BitVector.
func (b BitVector) SubVector(from, to uint32) BitVector {
	if from > to || to > b.size {
		panic("bitstring: invalid subVector range")
	}
	n := to - from
	if n == 0 {
		return BitVector{}
	}
	words := make([]uint64, (n+63)/64)
	for i := uint32(0); i < n; i++ {
		if b.At(from + i) {
			words[i/64] |= 1 << (63 - i%64)
		}
	}
	return BitVector{words: words, size: n}
}

// Bytes packs the vector's bits into a big-endian ("MSB-first") byte
// slice, zero-padding the final partial byte.
func (b BitVector) Bytes() []byte {
	if b.size == 0 {
		return nil
	}
	numBytes := (b.size + 7) / 8
	out := make([]byte, numBytes)
	for i := uint32(0); i < numBytes; i++ {
		word := b.words[i/8]
		shift := 56 - 8*(i%8)
		out[i] = byte(word >> shift)
	}
	return out
}

// Hash returns a 64-bit digest of the vector seeded with seed. The bit
// length is folded into the hash so that vectors of different lengths
// that pack to the same bytes (e.g. a 9-bit and a 16-bit vector both
// packing to the bytes 0x61 0x00) do not collide.
func (b BitVector) Hash(seed uint64) uint64 {
	h := xxh3.New()
	var seedBuf [8]byte
	binary.LittleEndian.PutUint64(seedBuf[:], seed)
	h.Write(seedBuf[:])

	var sizeBuf [4]byte
	binary.LittleEndian.PutUint32(sizeBuf[:], b.size)
	h.Write(sizeBuf[:])

	h.Write(b.Bytes())
	return h.Sum64()
}

// HashTriple derives the three 64-bit hash values (plus a fourth "chunk
// slot" value) a hypergraph edge or store record needs from b and seed.
// h0 comes from the seeded xxh3 digest; h1, h2 and slot are produced by
// passing h0 through three rounds of a 64-bit avalanche mixer, each keyed
// by a distinct round constant so the four outputs are independent.
func (b BitVector) HashTriple(seed uint64) (h0, h1, h2, slot uint64) {
	h0 = b.Hash(seed)
	h1 = mix64(h0 ^ roundConst1)
	h2 = mix64(h1 ^ roundConst2)
	slot = mix64(h2 ^ roundConst3)
	return h0, h1, h2, slot
}

const (
	roundConst1 = 0x9E3779B97F4A7C15
	roundConst2 = 0xBF58476D1CE4E5B9
	roundConst3 = 0x94D049BB133111EB
)

// mix64 is a 64-bit avalanche finalizer (the splitmix64/murmur3-style
// mixing step): every input bit flip changes roughly half the output bits.
func mix64(x uint64) uint64 {
	x ^= x >> 33
	x *= 0xff51afd7ed558ccd
	x ^= x >> 33
	x *= 0xc4ceb9fe1a85ec53
	x ^= x >> 33
	return x
}

// Compare orders two vectors lexicographically (MSB-first byte order),
// with a shorter vector that is a strict prefix of a longer one sorting
// first.
func (b BitVector) Compare(o BitVector) int {
	lcp := b.LCPLen(o)
	if lcp == b.size && lcp == o.size {
		return 0
	}
	if lcp == b.size {
		return -1
	}
	if lcp == o.size {
		return 1
	}
	if b.At(lcp) {
		return 1
	}
	return -1
}

// String renders the vector as a string of '0'/'1' characters, for
// debugging.
func (b BitVector) String() string {
	out := make([]byte, b.size)
	for i := uint32(0); i < b.size; i++ {
		if b.At(i) {
			out[i] = '1'
		} else {
			out[i] = '0'
		}
	}
	return string(out)
}
