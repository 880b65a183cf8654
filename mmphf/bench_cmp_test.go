package mmphf

import (
	"math/rand"
	"sort"
	"testing"

	iradix "github.com/hashicorp/go-immutable-radix"
)

func setupBenchKeys(n int) []string {
	r := rand.New(rand.NewSource(42))
	set := make(map[string]bool, n)
	for len(set) < n {
		buf := make([]byte, 8+r.Intn(8))
		for i := range buf {
			buf[i] = byte('a' + r.Intn(26))
		}
		set[string(buf)] = true
	}
	keys := make([]string, 0, n)
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return removePrefixPairs(keys)
}

func setupMMPHF(b *testing.B, n int) (*MMPHF, []string) {
	b.Helper()
	b.StopTimer()
	keys := setupBenchKeys(n)
	m, err := Build(Config{Keys: keys, Rand: rand.New(rand.NewSource(1))})
	if err != nil {
		b.Fatal(err)
	}
	b.StartTimer()
	return m, keys
}

func setupIradixRanks(b *testing.B, n int) (*iradix.Tree, []string) {
	b.Helper()
	b.StopTimer()
	keys := setupBenchKeys(n)
	r := iradix.New()
	for i, k := range keys {
		r, _, _ = r.Insert([]byte(k), i)
	}
	b.StartTimer()
	return r, keys
}

func BenchmarkMMPHF_Get_100k(b *testing.B) {
	m, keys := setupMMPHF(b, 100_000)
	mask := len(keys) - 1
	for i := 0; i < b.N; i++ {
		m.Get(keys[i&mask])
	}
}

func BenchmarkIradix_RankLookup_100k(b *testing.B) {
	r, keys := setupIradixRanks(b, 100_000)
	mask := len(keys) - 1
	for i := 0; i < b.N; i++ {
		r.Get([]byte(keys[i&mask]))
	}
}

func BenchmarkMMPHF_Build_100k(b *testing.B) {
	keys := setupBenchKeys(100_000)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Build(Config{Keys: keys, Rand: rand.New(rand.NewSource(int64(i)))}); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkIradix_Build_100k(b *testing.B) {
	keys := setupBenchKeys(100_000)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r := iradix.New()
		for j, k := range keys {
			r, _, _ = r.Insert([]byte(k), j)
		}
	}
}
