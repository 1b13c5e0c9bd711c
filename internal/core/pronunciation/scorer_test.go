package pronunciation

import (
	"context"
	"testing"

	"github.com/baditaflorin/go_pronunciation/internal/adapters/logger"
	"github.com/baditaflorin/go_pronunciation/internal/adapters/normalizer"
	"github.com/baditaflorin/go_pronunciation/internal/core/editdistance"
)

func newTestCalculator(t *testing.T, cfg ScorerConfig) *Calculator {
	t.Helper()
	calc, err := NewCalculator(cfg, logger.NewNopLogger(), normalizer.NewDefaultNormalizer(), editdistance.NewCalculator(), nil)
	if err != nil {
		t.Fatalf("NewCalculator: %v", err)
	}
	return calc
}

func TestCompute(t *testing.T) {
	calc := newTestCalculator(t, DefaultConfig())

	tests := []struct {
		name          string
		target, heard string
		score         int
		distance      int
		denominator   int
		passed        bool
	}{
		{name: "Exact match", target: "environment", heard: "environment", score: 100, distance: 0, denominator: 11, passed: true},
		{name: "One letter missing", target: "environment", heard: "enviroment", score: 91, distance: 1, denominator: 11, passed: true},
		{name: "Nothing heard", target: "cat", heard: "", score: 0, distance: 3, denominator: 3, passed: false},
		{name: "Both empty", target: "", heard: "", score: 100, distance: 0, denominator: 1, passed: true},
		{name: "Case and surrounding whitespace", target: "Hello World", heard: "  hello world  ", score: 100, distance: 0, denominator: 11, passed: true},
		{name: "Doubled internal space", target: "hello world", heard: "hello  world", score: 92, distance: 1, denominator: 12, passed: true},
		{name: "Short word penalty", target: "cat", heard: "cap", score: 67, distance: 1, denominator: 3, passed: false},
		{name: "Heard longer than target", target: "ab", heard: "abcd", score: 50, distance: 2, denominator: 4, passed: false},
		{name: "Completely different", target: "a", heard: "b", score: 0, distance: 1, denominator: 1, passed: false},
		{name: "Kitten sitting", target: "kitten", heard: "sitting", score: 57, distance: 3, denominator: 7, passed: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := calc.Compute(context.Background(), tc.target, tc.heard)
			if result.Score != tc.score {
				t.Errorf("expected score %d, got %d (details: %v)", tc.score, result.Score, result.Details)
			}
			if result.Distance != tc.distance {
				t.Errorf("expected distance %d, got %d", tc.distance, result.Distance)
			}
			if result.Denominator != tc.denominator {
				t.Errorf("expected denominator %d, got %d", tc.denominator, result.Denominator)
			}
			if result.Passed != tc.passed {
				t.Errorf("expected passed=%v, got %v", tc.passed, result.Passed)
			}
			want := float64(tc.distance) / float64(tc.denominator)
			if result.NormalizedDistance != want {
				t.Errorf("expected normalized distance %v, got %v", want, result.NormalizedDistance)
			}
		})
	}
}

func TestComputeProperties(t *testing.T) {
	calc := newTestCalculator(t, DefaultConfig())
	ctx := context.Background()
	phrases := []string{
		"", "a", "cat", "Cat ", "environment", "enviroment", "hello world",
		"hello  world", "pronunciation", "naïve", "日本語", "the quick brown fox",
	}

	for _, a := range phrases {
		if a != "" {
			if s := calc.Compute(ctx, a, a).Score; s != 100 {
				t.Errorf("Score(%q, %q) = %d, expected 100", a, a, s)
			}
		}
		for _, b := range phrases {
			ab := calc.Compute(ctx, a, b).Score
			ba := calc.Compute(ctx, b, a).Score
			if ab != ba {
				t.Errorf("asymmetric score: (%q, %q) = %d, reversed = %d", a, b, ab, ba)
			}
			if ab < 0 || ab > 100 {
				t.Errorf("Score(%q, %q) = %d out of range", a, b, ab)
			}
		}
	}
}

func TestScoreMonotonic(t *testing.T) {
	for length := 1; length <= 20; length++ {
		prev := 101
		for dist := 0; dist <= length; dist++ {
			s, _ := Score(dist, length, length)
			if s > prev {
				t.Fatalf("score increased from %d to %d at dist=%d len=%d", prev, s, dist, length)
			}
			prev = s
		}
	}
}

func TestScoreClamp(t *testing.T) {
	// Cannot happen with a real edit distance, but the bound must hold.
	if s, _ := Score(10, 2, 3); s != 0 {
		t.Errorf("expected clamp to 0, got %d", s)
	}
	if s, _ := Score(-5, 2, 3); s != 100 {
		t.Errorf("expected clamp to 100, got %d", s)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name      string
		threshold int
		wantErr   bool
	}{
		{name: "Default", threshold: DefaultThreshold},
		{name: "Zero", threshold: 0},
		{name: "Hundred", threshold: 100},
		{name: "Negative", threshold: -1, wantErr: true},
		{name: "Too large", threshold: 101, wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ScorerConfig{Threshold: tc.threshold}.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

type alwaysAlike struct{}

func (alwaysAlike) SoundsAlike(string, string) bool { return true }

func TestPhoneticHintDoesNotChangeScore(t *testing.T) {
	plain := newTestCalculator(t, DefaultConfig())
	hinted, err := NewCalculator(DefaultConfig(), logger.NewNopLogger(), normalizer.NewDefaultNormalizer(), editdistance.NewCalculator(), alwaysAlike{})
	if err != nil {
		t.Fatalf("NewCalculator: %v", err)
	}

	a := plain.Compute(context.Background(), "knight", "night")
	b := hinted.Compute(context.Background(), "knight", "night")
	if a.Score != b.Score {
		t.Errorf("phonetic hint changed score: %d vs %d", a.Score, b.Score)
	}
	if b.Details["sounds_alike"] != true {
		t.Errorf("expected sounds_alike detail, got %v", b.Details)
	}
	if _, ok := a.Details["sounds_alike"]; ok {
		t.Errorf("unexpected sounds_alike detail without hinter")
	}
}

func TestNewCalculatorRequiresCollaborators(t *testing.T) {
	if _, err := NewCalculator(DefaultConfig(), nil, normalizer.NewDefaultNormalizer(), editdistance.NewCalculator(), nil); err == nil {
		t.Error("expected error for missing logger")
	}
}
