// Package feedback explains a pronunciation attempt word by word. It is
// reported alongside the score and never influences it.
package feedback

import (
	"strings"

	"github.com/baditaflorin/go_pronunciation/internal/core/editdistance"
)

// Issue describes one target word that was not heard as expected.
type Issue struct {
	// Kind is "missed", "substituted" or "extra".
	Kind     string `json:"kind"`
	Expected string `json:"expected,omitempty"`
	Heard    string `json:"heard,omitempty"`
}

// Report is a word-level comparison of a target phrase and a transcript.
type Report struct {
	TargetWords int     `json:"target_words"`
	Matched     int     `json:"matched"`
	Issues      []Issue `json:"issues,omitempty"`
	// WordErrorRate is edits / max(TargetWords, 1).
	WordErrorRate float64 `json:"word_error_rate"`
}

// Words aligns the whitespace-separated words of two already normalized
// phrases.
func Words(target, heard string) Report {
	targetWords := strings.Fields(target)
	heardWords := strings.Fields(heard)

	report := Report{TargetWords: len(targetWords)}
	edits := 0
	for _, op := range editdistance.Align(targetWords, heardWords) {
		switch op.Kind {
		case editdistance.Match:
			report.Matched++
			continue
		case editdistance.Substitute:
			report.Issues = append(report.Issues, Issue{Kind: "substituted", Expected: op.Source, Heard: op.Target})
		case editdistance.Delete:
			report.Issues = append(report.Issues, Issue{Kind: "missed", Expected: op.Source})
		case editdistance.Insert:
			report.Issues = append(report.Issues, Issue{Kind: "extra", Heard: op.Target})
		}
		edits++
	}

	report.WordErrorRate = float64(edits) / float64(max(len(targetWords), 1))
	return report
}
