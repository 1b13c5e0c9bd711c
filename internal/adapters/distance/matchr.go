// Package distance provides alternative ports.DistanceCalculator
// implementations backed by third-party string metric libraries.
package distance

import (
	"github.com/antzucaro/matchr"

	"github.com/baditaflorin/go_pronunciation/internal/ports"
)

// MatchrCalculator computes Levenshtein distance with matchr. It indexes by
// code point, the same unit the built-in calculator uses.
type MatchrCalculator struct{}

// NewMatchrCalculator returns a matchr-backed distance calculator.
func NewMatchrCalculator() ports.DistanceCalculator {
	return MatchrCalculator{}
}

// Distance implements ports.DistanceCalculator.
func (MatchrCalculator) Distance(a, b string) int {
	if a == b {
		return 0
	}
	return matchr.Levenshtein(a, b)
}
