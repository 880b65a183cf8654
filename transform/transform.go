// Package transform implements the key -> BitVector strategy contract of
// spec.md §6: a small capability set (ToBitVector, BitLength, NumBits,
// Clone) the core consumes without knowing which text encoding produced
// the bits. UTF8 is the only concrete strategy implemented here;
// non-UTF-8 encodings (ISO-8859-1/UTF-16/UTF-32/Hu-Tucker) are external
// collaborators per spec.md's own framing.
package transform

import "github.com/aogurtsov/mmphf/bitstring"

// Strategy converts domain keys into the BitVectors the core operates on.
// Implementations must be deterministic and idempotent: ToBitVector(k)
// must return an equal result every time it is called for the same k.
type Strategy interface {
	// ToBitVector converts a key into its bit representation.
	ToBitVector(key string) bitstring.BitVector
	// BitLength reports the bit length ToBitVector(key) would produce,
	// without necessarily constructing it.
	BitLength(key string) uint32
	// NumBits reports the strategy's own per-instance bookkeeping
	// overhead in bits, for size accounting by callers.
	NumBits() int
	// Clone returns an independent copy of the strategy.
	Clone() Strategy
}

// UTF8 is the default strategy: a key's UTF-8 byte representation,
// MSB-first, with no additional framing.
type UTF8 struct{}

func (UTF8) ToBitVector(key string) bitstring.BitVector { return bitstring.FromString(key) }
func (UTF8) BitLength(key string) uint32                { return uint32(len(key)) * 8 }
func (UTF8) NumBits() int                               { return 0 }
func (UTF8) Clone() Strategy                            { return UTF8{} }
