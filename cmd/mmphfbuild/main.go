// Command mmphfbuild builds a monotone MMPHF over a newline-delimited,
// pre-sorted key file and reports its storage footprint and query
// round-trip correctness. It is a diagnostic driver, not a serialization
// tool: spec.md scopes a byte-exact wire format out, so nothing is
// persisted to disk.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/aogurtsov/mmphf/mmphf"
)

func main() {
	var (
		inPath         = flag.String("in", "", "Path to a newline-delimited, sorted, prefix-free key file (required)")
		signatureWidth = flag.Int("signature", 0, "Signature width in bits (0 disables non-member rejection)")
		verify         = flag.Bool("verify", true, "Verify rank(key_i) == i for every input key after building")
		seed           = flag.Int64("seed", time.Now().UnixNano(), "Base RNG seed for reseed retries")
	)
	flag.Parse()

	if *inPath == "" {
		fail("missing required -in flag")
	}

	keys, err := readKeys(*inPath)
	if err != nil {
		fail("failed to read keys: %v", err)
	}
	if len(keys) == 0 {
		fail("input file contains no keys")
	}

	start := time.Now()
	m, err := mmphf.Build(mmphf.Config{
		Keys:           keys,
		SignatureWidth: *signatureWidth,
		Rand:           rand.New(rand.NewSource(*seed)),
		Progress: func(stage string, done, total int) {
			fmt.Printf("  %-12s %s/%s\n", stage, humanize.Comma(int64(done)), humanize.Comma(int64(total)))
		},
	})
	if err != nil {
		fail("build failed: %v", err)
	}
	elapsed := time.Since(start)

	stats := m.Stats()
	fmt.Printf("built %s keys in %s\n", humanize.Comma(int64(len(keys))), elapsed)
	fmt.Printf("%s\n", stats)
	fmt.Print(stats.Breakdown())

	if *verify {
		mismatches := 0
		for i, k := range keys {
			if got := m.Get(k); got != int64(i) {
				mismatches++
				if mismatches <= 10 {
					fmt.Fprintf(os.Stderr, "mismatch: get(%q) = %d, want %d\n", k, got, i)
				}
			}
		}
		if mismatches > 0 {
			fail("%d/%d keys failed round-trip verification", mismatches, len(keys))
		}
		fmt.Println("verification: all keys round-trip correctly")
	}
}

func readKeys(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var keys []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		keys = append(keys, line)
	}
	return keys, scanner.Err()
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
