// Package fingerprint produces 64-bit SimHash fingerprints of scraped
// pages. Callers store the hex form alongside a scrape and compare it on
// the next visit: a small Hamming distance means the page barely changed,
// a large one means it was rewritten.
package fingerprint

import (
	"fmt"
	"hash/fnv"
	"math/bits"
	"strings"
)

// Text computes a SimHash over the word tokens of visible page text.
// Empty or whitespace-only input yields 0.
func Text(text string) uint64 {
	return simhash(strings.Fields(text))
}

// Distance returns the Hamming distance between two fingerprints.
func Distance(a, b uint64) int {
	return bits.OnesCount64(a ^ b)
}

// Similar reports whether two fingerprints are within threshold bits of
// each other.
func Similar(a, b uint64, threshold int) bool {
	return Distance(a, b) <= threshold
}

// Hex renders a fingerprint in the fixed-width form used in API responses.
func Hex(fp uint64) string {
	return fmt.Sprintf("%016x", fp)
}

// simhash folds FNV-64a hashes of the tokens into a single signature: each
// token votes its hash bits up or down, the sign of each column becomes the
// output bit.
func simhash(tokens []string) uint64 {
	if len(tokens) == 0 {
		return 0
	}

	var vector [64]int
	for _, token := range tokens {
		h := fnv.New64a()
		h.Write([]byte(token))
		sum := h.Sum64()

		for i := 0; i < 64; i++ {
			if sum&(1<<uint(i)) != 0 {
				vector[i]++
			} else {
				vector[i]--
			}
		}
	}

	var fp uint64
	for i, v := range vector {
		if v > 0 {
			fp |= 1 << uint(i)
		}
	}
	return fp
}
