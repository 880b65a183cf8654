package transform

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUTF8ToBitVector(t *testing.T) {
	var s Strategy = UTF8{}
	bv := s.ToBitVector("ab")
	require.EqualValues(t, 16, bv.Len())
	require.Equal(t, []byte("ab"), bv.Bytes())
}

func TestUTF8BitLengthMatchesToBitVector(t *testing.T) {
	var s Strategy = UTF8{}
	for _, k := range []string{"", "a", "apple", "monotone hashing"} {
		require.EqualValues(t, s.BitLength(k), s.ToBitVector(k).Len())
	}
}

func TestUTF8CloneIsIndependent(t *testing.T) {
	var s Strategy = UTF8{}
	c := s.Clone()
	require.Equal(t, s.ToBitVector("x"), c.ToBitVector("x"))
}
