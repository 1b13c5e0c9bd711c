package ports

import (
	"context"

	"github.com/baditaflorin/go_pronunciation/internal/core/domain"
)

// DistanceCalculator computes the edit distance between two already
// normalized strings.
type DistanceCalculator interface {
	Distance(a, b string) int
}

// Scorer defines the interface for scoring a recognized utterance against a
// target phrase.
type Scorer interface {
	Compute(ctx context.Context, target, heard string) domain.Result
}

// PhoneticHinter reports whether two normalized phrases sound alike. It is
// informational only and never changes a score.
type PhoneticHinter interface {
	SoundsAlike(target, heard string) bool
}
