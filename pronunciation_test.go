// pronunciation_test.go
package pronunciation

import (
	"strings"
	"testing"
)

func TestComputeEditDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want int
	}{
		{"both empty", "", "", 0},
		{"kitten sitting", "kitten", "sitting", 3},
		{"identical", "environment", "environment", 0},
		{"one deletion", "environment", "enviroment", 1},
		{"against empty", "cat", "", 3},
		{"case sensitive", "Cat", "cat", 1},
		{"runes not bytes", "café", "cafe", 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ComputeEditDistance(tc.a, tc.b); got != tc.want {
				t.Errorf("ComputeEditDistance(%q, %q) = %d, want %d", tc.a, tc.b, got, tc.want)
			}
			if got := ComputeEditDistance(tc.b, tc.a); got != tc.want {
				t.Errorf("ComputeEditDistance(%q, %q) = %d, want %d (symmetry)", tc.b, tc.a, got, tc.want)
			}
		})
	}
}

func TestScorePronunciation(t *testing.T) {
	tests := []struct {
		name   string
		target string
		heard  string
		want   int
	}{
		{"exact match", "environment", "environment", 100},
		{"minor error", "environment", "enviroment", 91},
		{"nothing heard", "cat", "", 0},
		{"case and outer whitespace", "Hello World", " hello world ", 100},
		{"both empty", "", "", 100},
		{"whitespace only", "   ", "", 100},
		{"kitten", "kitten", "sitting", 57},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ScorePronunciation(tc.target, tc.heard); got != tc.want {
				t.Errorf("ScorePronunciation(%q, %q) = %d, want %d", tc.target, tc.heard, got, tc.want)
			}
		})
	}
}

func TestInternalWhitespaceIsSignificant(t *testing.T) {
	if got := ScorePronunciation("Hello World", "hello  world"); got == 100 {
		t.Errorf("doubled internal space scored 100")
	}
}

func TestScoreProperties(t *testing.T) {
	phrases := []string{"", "a", "cat", "the quick brown fox", "ÅNGSTRÖM", "hello world", strings.Repeat("ab", 50)}

	for _, x := range phrases {
		if got := ScorePronunciation(x, x); got != 100 {
			t.Errorf("ScorePronunciation(%q, %q) = %d, want 100", x, x, got)
		}
		for _, y := range phrases {
			s := ScorePronunciation(x, y)
			if s < 0 || s > 100 {
				t.Errorf("ScorePronunciation(%q, %q) = %d out of range", x, y, s)
			}
			if r := ScorePronunciation(y, x); r != s {
				t.Errorf("score not symmetric for %q/%q: %d vs %d", x, y, s, r)
			}
			d := ComputeEditDistance(x, y)
			if bound := max(len([]rune(x)), len([]rune(y))); d > bound {
				t.Errorf("distance %d exceeds bound %d for %q/%q", d, bound, x, y)
			}
		}
	}
}

func TestEvaluate(t *testing.T) {
	result := Evaluate("environment", "enviroment")
	if result.Score != 91 || !result.Passed || result.Distance != 1 || result.Denominator != 11 {
		t.Errorf("unexpected result: %+v", result)
	}
	if result.NormalizedDistance <= 0.09 || result.NormalizedDistance >= 0.091 {
		t.Errorf("NormalizedDistance = %v, want 1/11", result.NormalizedDistance)
	}
}
