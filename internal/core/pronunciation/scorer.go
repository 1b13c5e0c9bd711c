// Package pronunciation turns a target phrase and a recognized transcript
// into a 0-100 intelligibility score.
//
// Both strings are normalized, their edit distance is computed, and the
// score is derived as
//
//	score = clamp(round(100 * (1 - dist / max(len(t), len(h), 1))), 0, 100)
//
// Lengths are counted in Unicode code points. Short phrases are penalized
// more per character than long ones.
package pronunciation

import (
	"context"
	"errors"
	"math"
	"unicode/utf8"

	"github.com/baditaflorin/go_pronunciation/internal/core/domain"
	"github.com/baditaflorin/go_pronunciation/internal/ports"
)

// DefaultThreshold is the score at or above which an attempt counts as passed.
const DefaultThreshold = 70

// ScorerConfig holds configuration for the pronunciation scorer.
type ScorerConfig struct {
	Threshold int
}

// DefaultConfig returns a default configuration.
func DefaultConfig() ScorerConfig {
	return ScorerConfig{
		Threshold: DefaultThreshold,
	}
}

// Validate checks if the configuration is valid.
func (c ScorerConfig) Validate() error {
	if c.Threshold < domain.MinScore || c.Threshold > domain.MaxScore {
		return errors.New("threshold must be between 0 and 100")
	}
	return nil
}

// Calculator implements the pronunciation score policy.
type Calculator struct {
	config     ScorerConfig
	logger     ports.Logger
	normalizer ports.Normalizer
	distance   ports.DistanceCalculator
	phonetic   ports.PhoneticHinter
}

// NewCalculator creates a new pronunciation scorer. phonetic may be nil.
func NewCalculator(
	config ScorerConfig,
	logger ports.Logger,
	normalizer ports.Normalizer,
	distance ports.DistanceCalculator,
	phonetic ports.PhoneticHinter,
) (*Calculator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil || normalizer == nil || distance == nil {
		return nil, errors.New("logger, normalizer and distance calculator are required")
	}

	return &Calculator{
		config:     config,
		logger:     logger,
		normalizer: normalizer,
		distance:   distance,
		phonetic:   phonetic,
	}, nil
}

// Score derives the bounded score from a distance and the two normalized
// lengths. It also returns the denominator used.
func Score(dist, targetLen, heardLen int) (score int, denom int) {
	denom = max(targetLen, heardLen, 1)
	raw := 1 - float64(dist)/float64(denom)
	score = int(math.Round(100 * raw))
	if score < domain.MinScore {
		score = domain.MinScore
	}
	if score > domain.MaxScore {
		score = domain.MaxScore
	}
	return score, denom
}

// Compute scores heard against target. It never fails: an empty heard
// string is a valid input and simply scores low. The context is not
// consulted; scoring runs to completion.
func (c *Calculator) Compute(ctx context.Context, target, heard string) domain.Result {
	c.logger.Debug("Starting pronunciation scoring",
		"target", target,
		"heard", heard,
	)

	t := c.normalizer.Normalize(target)
	h := c.normalizer.Normalize(heard)
	c.logger.Debug("Normalized phrases",
		"normalizedTarget", t,
		"normalizedHeard", h,
	)

	targetLen := utf8.RuneCountInString(t)
	heardLen := utf8.RuneCountInString(h)
	dist := c.distance.Distance(t, h)
	score, denom := Score(dist, targetLen, heardLen)
	passed := score >= c.config.Threshold

	details := map[string]interface{}{
		"target_length": targetLen,
		"heard_length":  heardLen,
		"threshold":     c.config.Threshold,
	}
	if h == "" {
		details["empty_transcript"] = true
	}
	if c.phonetic != nil {
		details["sounds_alike"] = c.phonetic.SoundsAlike(t, h)
	}

	c.logger.Debug("Computed pronunciation score",
		"distance", dist,
		"denominator", denom,
		"score", score,
		"passed", passed,
	)

	return domain.Result{
		Name:               domain.ResultName,
		Score:              score,
		Passed:             passed,
		Threshold:          c.config.Threshold,
		Target:             t,
		Heard:              h,
		Distance:           dist,
		Denominator:        denom,
		NormalizedDistance: float64(dist) / float64(denom),
		Details:            details,
	}
}
