// Package editdistance computes Levenshtein distances and alignments.
//
// Strings are compared per Unicode code point with exact equality; no
// collation or grapheme segmentation is applied. Callers normalize first.
package editdistance

import (
	"github.com/baditaflorin/go_pronunciation/internal/pool"
)

var (
	runePool = pool.NewRuneBufferPool(64)
	rowPool  = pool.NewIntSlicePool(64)
)

// Calculator is the default DP-based distance calculator.
type Calculator struct{}

// NewCalculator returns the built-in Levenshtein calculator.
func NewCalculator() *Calculator {
	return &Calculator{}
}

// Distance implements ports.DistanceCalculator.
func (Calculator) Distance(a, b string) int {
	return Distance(a, b)
}

// Distance returns the minimum number of single-character insertions,
// deletions and substitutions needed to turn a into b.
func Distance(a, b string) int {
	if a == b {
		return 0
	}

	ar := runePool.Get()
	defer runePool.Put(ar)
	br := runePool.Get()
	defer runePool.Put(br)

	for _, r := range a {
		*ar = append(*ar, r)
	}
	for _, r := range b {
		*br = append(*br, r)
	}

	return Slices(*ar, *br)
}

// Slices returns the edit distance between two sequences of comparable
// elements. It keeps two rows of the DP table, sized by the shorter input.
func Slices[T comparable](a, b []T) int {
	// The distance is symmetric, so iterate the longer sequence in the
	// outer loop and keep rows as short as possible.
	if len(a) < len(b) {
		a, b = b, a
	}
	m, n := len(a), len(b)
	if n == 0 {
		return m
	}

	prevRow := rowPool.Get(n + 1)
	defer rowPool.Put(prevRow)
	curRow := rowPool.Get(n + 1)
	defer rowPool.Put(curRow)

	prev, cur := *prevRow, *curRow
	for j := 0; j <= n; j++ {
		prev[j] = j
	}

	for i := 1; i <= m; i++ {
		cur[0] = i
		for j := 1; j <= n; j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur[j] = min(
				prev[j]+1,      // deletion
				cur[j-1]+1,     // insertion
				prev[j-1]+cost, // substitution or match
			)
		}
		prev, cur = cur, prev
	}

	return prev[n]
}
