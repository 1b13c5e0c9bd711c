// pronunciation.go
// Package pronunciation scores how closely a recognized transcript matches the
// phrase a learner was asked to say.
//
// The score is derived from the Levenshtein distance between the normalized
// (trimmed, lowercased) phrases:
//
//	score = clamp(round(100 * (1 - dist / max(len(target), len(heard), 1))), 0, 100)
//
// Lengths are measured in Unicode code points. Use pkg/pronunciation for a
// configurable scorer with logging, thresholds and phonetic hints.
package pronunciation

import (
	"context"

	"github.com/baditaflorin/go_pronunciation/internal/adapters/logger"
	"github.com/baditaflorin/go_pronunciation/internal/adapters/normalizer"
	"github.com/baditaflorin/go_pronunciation/internal/core/domain"
	"github.com/baditaflorin/go_pronunciation/internal/core/editdistance"
	core "github.com/baditaflorin/go_pronunciation/internal/core/pronunciation"
)

var (
	distanceCalculator = editdistance.NewCalculator()
	defaultScorer      = mustDefaultScorer()
)

func mustDefaultScorer() *core.Calculator {
	c, err := core.NewCalculator(
		core.DefaultConfig(),
		logger.NewNopLogger(),
		normalizer.NewDefaultNormalizer(),
		distanceCalculator,
		nil,
	)
	if err != nil {
		panic(err)
	}
	return c
}

// ComputeEditDistance returns the minimum number of single-character
// insertions, deletions and substitutions that turn a into b. No
// normalization is applied.
func ComputeEditDistance(a, b string) int {
	return distanceCalculator.Distance(a, b)
}

// ScorePronunciation rates heard against target on a 0-100 scale. An empty
// heard string scores 0 unless target is empty too.
func ScorePronunciation(target, heard string) int {
	return defaultScorer.Compute(context.Background(), target, heard).Score
}

// Evaluate returns the full scoring result using the default pass threshold.
func Evaluate(target, heard string) domain.Result {
	return defaultScorer.Compute(context.Background(), target, heard)
}
